package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the server-assigned identity and timestamps shared by every record.
// IDs are UUIDv7 so ordering by id follows insertion order.
type Base struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (b *Base) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		b.ID = id
	}
	return nil
}

// Payment status values shared by flat expense records and installments.
const (
	PaymentPending    = "pendente"
	PaymentDone       = "efetuado"
	PaymentProcessing = "em_processamento"
	PaymentCancelled  = "cancelado"
	PaymentOverdue    = "atrasado"
)

// Payment methods.
const (
	MethodPix       = "pix"
	MethodTransfer  = "transferencia"
	MethodCash      = "avista"
	MethodCard      = "cartao"
	MethodBoleto    = "boleto"
	MethodCheque    = "cheque"
	MethodMoney     = "dinheiro"
	MethodInstalled = "parcelado"
	MethodOther     = "outro"
)

// RequiresPaymentKey reports whether a payment method needs a pix key or boleto line.
func RequiresPaymentKey(method string) bool {
	return method == MethodPix || method == MethodBoleto
}

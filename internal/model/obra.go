package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Project status values
const (
	ObraPlanning   = "planejamento"
	ObraInProgress = "em_andamento"
	ObraPaused     = "pausada"
	ObraDone       = "concluida"
	ObraCancelled  = "cancelada"
)

// Obra is a construction project. Deletion is soft so expenses keep a valid reference.
type Obra struct {
	Base
	Nome                string          `gorm:"type:varchar(255);not null;index" json:"nome"`
	Endereco            string          `gorm:"type:varchar(500);not null" json:"endereco"`
	Cliente             string          `gorm:"type:varchar(255);not null;index" json:"cliente"`
	ValorContrato       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"valorContrato"`
	DataInicio          time.Time       `gorm:"not null" json:"dataInicio"`
	DataPrevisaoTermino time.Time       `gorm:"not null" json:"dataPrevisaoTermino"`
	DataTermino         *time.Time      `json:"dataTermino"`
	Status              string          `gorm:"type:varchar(30);not null;default:'planejamento';index" json:"status"`
	Descricao           string          `gorm:"type:text" json:"descricao"`
	Observacoes         string          `gorm:"type:text" json:"observacoes"`
	SpreadsheetID       *string         `gorm:"type:varchar(255);index" json:"spreadsheetId"`
	CriadoPor           *uuid.UUID      `gorm:"type:uuid" json:"criadoPor"`
	DeletedAt           gorm.DeletedAt  `gorm:"index" json:"-"`
}

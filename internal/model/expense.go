package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Installment owner discriminators
const (
	OwnerContract  = "contrato"
	OwnerEquipment = "equipamento"
	OwnerMisc      = "outro_gasto"
)

// Installment types
const (
	InstallmentCash     = "avista"
	InstallmentSplit    = "parcelado"
	InstallmentMonthly  = "mensal"
	InstallmentPerStage = "por_etapa"
)

// Installment is one payment made against a contract, equipment purchase or misc expense.
type Installment struct {
	Base
	OwnerID         uuid.UUID       `gorm:"type:uuid;not null;index:idx_installment_owner" json:"-"`
	OwnerType       string          `gorm:"type:varchar(30);not null;index:idx_installment_owner" json:"-"`
	Valor           decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"valor"`
	TipoPagamento   string          `gorm:"type:varchar(30);not null" json:"tipoPagamento"`
	DataPagamento   time.Time       `gorm:"not null" json:"dataPagamento"`
	StatusPagamento string          `gorm:"type:varchar(30);not null;default:'pendente'" json:"statusPagamento"`
	Observacoes     string          `gorm:"type:text" json:"observacoes"`
}

// Material is a purchase of construction material.
type Material struct {
	Base
	NumeroNota      string          `gorm:"type:varchar(100);not null;index" json:"numeroNota"`
	Data            time.Time       `gorm:"not null;index" json:"data"`
	LocalCompra     string          `gorm:"type:varchar(255);not null" json:"localCompra"`
	Valor           decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"valor"`
	Solicitante     string          `gorm:"type:varchar(255);not null" json:"solicitante"`
	FormaPagamento  string          `gorm:"type:varchar(30);not null" json:"formaPagamento"`
	ChavePixBoleto  string          `gorm:"type:varchar(255)" json:"chavePixBoleto"`
	Descricao       string          `gorm:"type:text" json:"descricao"`
	ObraID          *uuid.UUID      `gorm:"type:uuid;index" json:"obraId"`
	Observacoes     string          `gorm:"type:text" json:"observacoes"`
	StatusPagamento string          `gorm:"type:varchar(30);not null;default:'pendente';index" json:"statusPagamento"`
	CriadoPor       *uuid.UUID      `gorm:"type:uuid" json:"criadoPor"`
}

// Labor hiring types
const (
	HireCLT       = "clt"
	HirePJ        = "pj"
	HireDaily     = "diaria"
	HireTask      = "empreitada"
	HireTemporary = "temporario"
)

// Labor status values
const (
	LaborActive   = "ativo"
	LaborInactive = "inativo"
	LaborFinished = "finalizado"
)

// Labor is a worker or crew hired for a project ("mão de obra").
type Labor struct {
	Base
	Nome            string          `gorm:"type:varchar(100);not null;index" json:"nome"`
	Funcao          string          `gorm:"type:varchar(50);not null" json:"funcao"`
	TipoContratacao string          `gorm:"type:varchar(30);not null" json:"tipoContratacao"`
	Valor           decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"valor"`
	InicioContrato  time.Time       `gorm:"not null;index" json:"inicioContrato"`
	FimContrato     *time.Time      `json:"fimContrato"`
	DiaPagamento    int             `gorm:"not null" json:"diaPagamento"`
	FormaPagamento  string          `gorm:"type:varchar(30);not null" json:"formaPagamento"`
	ChavePixBoleto  string          `gorm:"type:varchar(255)" json:"chavePixBoleto"`
	ObraID          *uuid.UUID      `gorm:"type:uuid;index" json:"obraId"`
	Status          string          `gorm:"type:varchar(30);not null;default:'ativo';index" json:"status"`
	StatusPagamento string          `gorm:"type:varchar(30);not null;default:'pendente'" json:"statusPagamento"`
	Observacoes     string          `gorm:"type:varchar(500)" json:"observacoes"`
	CriadoPor       *uuid.UUID      `gorm:"type:uuid" json:"criadoPor"`
}

func (Labor) TableName() string { return "mao_obra" }

// Equipment hiring types
const (
	EquipmentPurchase = "compra"
	EquipmentRental   = "aluguel"
	EquipmentLeasing  = "leasing"
	EquipmentLoan     = "comodato"
)

// Equipment is a purchased, rented or leased item of equipment.
type Equipment struct {
	Base
	NumeroNota      string          `gorm:"type:varchar(100);not null" json:"numeroNota"`
	Item            string          `gorm:"type:varchar(255);not null;index" json:"item"`
	Data            time.Time       `gorm:"not null;index" json:"data"`
	LocalCompra     string          `gorm:"type:varchar(255);not null" json:"localCompra"`
	Valor           decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"valor"`
	Solicitante     string          `gorm:"type:varchar(255);not null" json:"solicitante"`
	Descricao       string          `gorm:"type:text" json:"descricao"`
	TipoContratacao string          `gorm:"type:varchar(30);not null" json:"tipoContratacao"`
	FormaPagamento  string          `gorm:"type:varchar(30);not null" json:"formaPagamento"`
	Parcelas        *int            `json:"parcelas"`
	DiaPagamento    *int            `json:"diaPagamento"`
	ChavePixBoleto  string          `gorm:"type:varchar(255)" json:"chavePixBoleto"`
	ObraID          *uuid.UUID      `gorm:"type:uuid;index" json:"obraId"`
	Observacoes     string          `gorm:"type:text" json:"observacoes"`
	Pagamentos      []Installment   `gorm:"polymorphic:Owner;polymorphicValue:equipamento" json:"pagamentos"`
	CriadoPor       *uuid.UUID      `gorm:"type:uuid" json:"criadoPor"`
}

func (Equipment) TableName() string { return "equipamentos" }

// Contract status values
const (
	ContractActive    = "ativo"
	ContractFinished  = "finalizado"
	ContractCancelled = "cancelado"
)

// Contract is an agreement with a supplier paid in installments.
type Contract struct {
	Base
	ContratoID     string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"contratoId"`
	Loja           string          `gorm:"type:varchar(255);not null;index" json:"loja"`
	Valor          decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"valor"`
	ValorInicial   decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"valorInicial"`
	InicioContrato time.Time       `gorm:"not null;index" json:"inicioContrato"`
	FinalContrato  *time.Time      `json:"finalContrato"`
	ObraID         *uuid.UUID      `gorm:"type:uuid;index" json:"obraId"`
	Status         string          `gorm:"type:varchar(30);not null;default:'ativo';index" json:"status"`
	Observacoes    string          `gorm:"type:text" json:"observacoes"`
	Pagamentos     []Installment   `gorm:"polymorphic:Owner;polymorphicValue:contrato" json:"pagamentos"`
	CriadoPor      *uuid.UUID      `gorm:"type:uuid" json:"criadoPor"`
}

func (Contract) TableName() string { return "contratos" }

// MiscExpense is any other cost, free-form categorized.
type MiscExpense struct {
	Base
	Descricao       string          `gorm:"type:varchar(500);not null" json:"descricao"`
	Valor           decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"valor"`
	Data            time.Time       `gorm:"not null;index" json:"data"`
	CategoriaLivre  string          `gorm:"type:varchar(100);index" json:"categoriaLivre"`
	Observacoes     string          `gorm:"type:text" json:"observacoes"`
	FormaPagamento  string          `gorm:"type:varchar(30);not null" json:"formaPagamento"`
	ChavePixBoleto  string          `gorm:"type:varchar(255)" json:"chavePixBoleto"`
	NumeroDocumento string          `gorm:"type:varchar(100)" json:"numeroDocumento"`
	Fornecedor      string          `gorm:"type:varchar(255);index" json:"fornecedor"`
	ObraID          *uuid.UUID      `gorm:"type:uuid;index" json:"obraId"`
	Pagamentos      []Installment   `gorm:"polymorphic:Owner;polymorphicValue:outro_gasto" json:"pagamentos"`
	CriadoPor       *uuid.UUID      `gorm:"type:uuid" json:"criadoPor"`
}

func (MiscExpense) TableName() string { return "outros_gastos" }

// Income receipt status values
const (
	IncomePending    = "pendente"
	IncomeReceived   = "recebido"
	IncomeProcessing = "em_processamento"
	IncomeCancelled  = "cancelado"
	IncomeOverdue    = "atrasado"
)

// Income is money received for a project ("entrada").
type Income struct {
	Base
	Nome              string          `gorm:"type:varchar(255);not null;index" json:"nome"`
	Valor             decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"valor"`
	Data              time.Time       `gorm:"not null;index" json:"data"`
	Observacoes       string          `gorm:"type:text" json:"observacoes"`
	ObraID            *uuid.UUID      `gorm:"type:uuid;index" json:"obraId"`
	StatusRecebimento string          `gorm:"type:varchar(30);not null;default:'recebido';index" json:"statusRecebimento"`
	CriadoPor         *uuid.UUID      `gorm:"type:uuid" json:"criadoPor"`
}

func (Income) TableName() string { return "entradas" }

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Ledger project status values
const (
	LedgerPlanning   = "planejamento"
	LedgerInProgress = "em andamento"
	LedgerDone       = "concluida"
	LedgerPaused     = "pausada"
	LedgerCancelled  = "cancelada"
)

// Ledger contract status values
const (
	LedgerContractActive    = "ativo"
	LedgerContractDone      = "concluido"
	LedgerContractCancelled = "cancelado"
)

// Schedule stage status values
const (
	StagePlanned    = "previsto"
	StageInProgress = "em andamento"
	StageDone       = "concluida"
	StageLate       = "atrasada"
)

// Weekly payment status values
const (
	WeeklyToPay     = "pagar"
	WeeklyPaid      = "pagamento efetuado"
	WeeklyCancelled = "cancelado"
)

// LedgerProject is the project summary embedded in a ledger.
type LedgerProject struct {
	Nome             string          `gorm:"type:varchar(255);not null;index" json:"nome"`
	DataInicio       time.Time       `gorm:"not null" json:"dataInicio"`
	DataFinalEntrega time.Time       `gorm:"not null" json:"dataFinalEntrega"`
	Orcamento        decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"orcamento"`
	Descricao        string          `gorm:"type:text" json:"descricao"`
	Endereco         string          `gorm:"type:varchar(500)" json:"endereco"`
	Responsavel      string          `gorm:"type:varchar(255)" json:"responsavel"`
	Status           string          `gorm:"type:varchar(30);not null;default:'planejamento';index" json:"status"`
}

// Ledger is the aggregate financial container of one project ("pagamento").
type Ledger struct {
	Base
	Obra               LedgerProject    `gorm:"embedded;embeddedPrefix:obra_" json:"obra"`
	Gastos             []LedgerExpense  `gorm:"foreignKey:LedgerID;constraint:OnDelete:CASCADE" json:"gastos"`
	Contratos          []LedgerContract `gorm:"foreignKey:LedgerID;constraint:OnDelete:CASCADE" json:"contratos"`
	Cronograma         []ScheduleStage  `gorm:"foreignKey:LedgerID;constraint:OnDelete:CASCADE" json:"cronograma"`
	PagamentosSemanais []WeeklyPayment  `gorm:"foreignKey:LedgerID;constraint:OnDelete:CASCADE" json:"pagamentosSemanais"`
	CriadoPor          *uuid.UUID       `gorm:"type:uuid" json:"criadoPor"`
}

func (Ledger) TableName() string { return "pagamentos" }

type LedgerExpense struct {
	Base
	LedgerID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"-"`
	Descricao   string          `gorm:"type:varchar(500);not null" json:"descricao"`
	Categoria   string          `gorm:"type:varchar(100);not null" json:"categoria"`
	Valor       decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"valor"`
	Data        time.Time       `gorm:"not null" json:"data"`
	Fornecedor  string          `gorm:"type:varchar(255)" json:"fornecedor"`
	Observacoes string          `gorm:"type:text" json:"observacoes"`
}

func (LedgerExpense) TableName() string { return "pagamento_gastos" }

type LedgerContract struct {
	Base
	LedgerID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"-"`
	NomeContratado string          `gorm:"type:varchar(255);not null" json:"nomeContratado"`
	Servico        string          `gorm:"type:varchar(255);not null" json:"servico"`
	ValorTotal     decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"valorTotal"`
	DataInicio     time.Time       `gorm:"not null" json:"dataInicio"`
	DataFim        *time.Time      `json:"dataFim"`
	Status         string          `gorm:"type:varchar(30);not null;default:'ativo'" json:"status"`
	Observacoes    string          `gorm:"type:text" json:"observacoes"`
}

func (LedgerContract) TableName() string { return "pagamento_contratos" }

type ScheduleStage struct {
	Base
	LedgerID            uuid.UUID  `gorm:"type:uuid;not null;index" json:"-"`
	Etapa               string     `gorm:"type:varchar(255);not null" json:"etapa"`
	Descricao           string     `gorm:"type:text" json:"descricao"`
	DataInicio          time.Time  `gorm:"not null" json:"dataInicio"`
	DataFim             *time.Time `json:"dataFim"`
	Status              string     `gorm:"type:varchar(30);not null;default:'previsto'" json:"status"`
	Responsavel         string     `gorm:"type:varchar(255)" json:"responsavel"`
	PercentualConcluido int        `gorm:"not null;default:0" json:"percentualConcluido"`
}

func (ScheduleStage) TableName() string { return "pagamento_cronograma" }

// WeeklyPayment is one payroll-style disbursement. TotalReceber is always
// ValorPagar + ValorVA + ValorVT and is recomputed on every save.
type WeeklyPayment struct {
	Base
	LedgerID              uuid.UUID       `gorm:"type:uuid;not null;index" json:"-"`
	Nome                  string          `gorm:"type:varchar(255)" json:"nome,omitempty"`
	Funcao                string          `gorm:"type:varchar(100)" json:"funcao,omitempty"`
	ChavePix              string          `gorm:"type:varchar(255)" json:"chavePix,omitempty"`
	Semana                int             `gorm:"not null;index" json:"semana"`
	Ano                   int             `gorm:"not null;index" json:"ano"`
	ValorPagar            decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"valorPagar"`
	ValorVA               decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"valorVA"`
	ValorVT               decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"valorVT"`
	TotalReceber          decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"totalReceber"`
	DataVencimento        *time.Time      `json:"dataVencimento"`
	Status                string          `gorm:"type:varchar(30);not null;default:'pagar';index" json:"status"`
	DataPagamentoEfetuado *time.Time      `json:"dataPagamentoEfetuado"`
	Observacoes           string          `gorm:"type:text" json:"observacoes"`
}

func (WeeklyPayment) TableName() string { return "pagamentos_semanais" }

func (w *WeeklyPayment) BeforeSave(_ *gorm.DB) error {
	w.TotalReceber = w.ValorPagar.Add(w.ValorVA).Add(w.ValorVT)
	return nil
}

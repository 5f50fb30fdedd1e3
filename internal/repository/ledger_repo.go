package repository

import (
	"context"

	"obrafin/internal/model"

	"gorm.io/gorm"
)

// WeeklyCriteria narrows weekly payments; zero values match everything.
type WeeklyCriteria struct {
	Semana int
	Ano    int
	Status string
}

func (c WeeklyCriteria) apply(db *gorm.DB) *gorm.DB {
	if c.Semana != 0 {
		db = db.Where("semana = ?", c.Semana)
	}
	if c.Ano != 0 {
		db = db.Where("ano = ?", c.Ano)
	}
	if c.Status != "" {
		db = db.Where("status = ?", c.Status)
	}
	return db
}

// LedgerRepository stores ledgers together with their four collections.
type LedgerRepository interface {
	Store[model.Ledger]
	// WithWeeklyPayments returns, in creation order, every ledger holding at
	// least one matching weekly payment, preloaded with only those payments.
	WithWeeklyPayments(ctx context.Context, c WeeklyCriteria) ([]model.Ledger, error)
}

type ledgerRepository struct {
	Store[model.Ledger]
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{
		Store: NewStore[model.Ledger](db,
			WithPreload("Gastos", "Contratos", "Cronograma", "PagamentosSemanais"),
			WithCascade("Gastos", "Contratos", "Cronograma", "PagamentosSemanais"),
		),
		db: db,
	}
}

func (r *ledgerRepository) WithWeeklyPayments(ctx context.Context, c WeeklyCriteria) ([]model.Ledger, error) {
	db := GetDB(ctx, r.db)

	matching := c.apply(db.Model(&model.WeeklyPayment{}).Select("ledger_id"))

	var ledgers []model.Ledger
	err := db.Where("id IN (?)", matching).
		Preload("PagamentosSemanais", func(tx *gorm.DB) *gorm.DB {
			return c.apply(tx).Order("created_at ASC, id ASC")
		}).
		Order("created_at ASC, id ASC").
		Find(&ledgers).Error
	if err != nil {
		return nil, err
	}
	return ledgers, nil
}

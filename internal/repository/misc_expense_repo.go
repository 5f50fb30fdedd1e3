package repository

import (
	"context"

	"obrafin/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CategoryTotal is the spend of one free-form category.
type CategoryTotal struct {
	Categoria  string          `json:"categoria"`
	Total      decimal.Decimal `json:"total"`
	Quantidade int64           `json:"quantidade"`
}

type MiscExpenseRepository interface {
	Store[model.MiscExpense]
	TotalsByCategory(ctx context.Context, q Query) ([]CategoryTotal, error)
}

type miscExpenseRepository struct {
	Store[model.MiscExpense]
	db *gorm.DB
}

func NewMiscExpenseRepository(db *gorm.DB) MiscExpenseRepository {
	return &miscExpenseRepository{
		Store: NewStore[model.MiscExpense](db,
			WithPreload("Pagamentos"),
			WithOrder("data DESC"),
			WithCascade("Pagamentos"),
		),
		db: db,
	}
}

// TotalsByCategory groups matching expenses by category, largest total first.
func (r *miscExpenseRepository) TotalsByCategory(ctx context.Context, q Query) ([]CategoryTotal, error) {
	totals := make([]CategoryTotal, 0)
	if q.MatchesNothing() {
		return totals, nil
	}

	err := q.Apply(GetDB(ctx, r.db).Model(&model.MiscExpense{})).
		Select("COALESCE(categoria_livre, '') AS categoria, SUM(valor) AS total, COUNT(*) AS quantidade").
		Group("COALESCE(categoria_livre, '')").
		Order("total DESC").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return totals, nil
}

package finance

import (
	"testing"
	"time"

	"obrafin/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ledgerWithSpend(budget, spent string) model.Ledger {
	return model.Ledger{
		Obra:   model.LedgerProject{Orcamento: d(budget)},
		Gastos: []model.LedgerExpense{{Valor: d(spent)}},
	}
}

func TestBudgetStatus_Boundaries(t *testing.T) {
	tests := []struct {
		spent string
		want  string
	}{
		{"0", BudgetWithin},
		{"700", BudgetWithin},
		{"700.01", BudgetWarning},
		{"900", BudgetWarning},
		{"900.01", BudgetNear},
		{"1000", BudgetNear},
		{"1000.01", BudgetOver},
	}

	for _, tt := range tests {
		t.Run(tt.spent, func(t *testing.T) {
			assert.Equal(t, tt.want, BudgetStatus(ledgerWithSpend("1000", tt.spent)))
		})
	}
}

func TestBudgetStatus_ZeroBudget(t *testing.T) {
	assert.Equal(t, BudgetWithin, BudgetStatus(ledgerWithSpend("0", "0")))
	assert.Equal(t, BudgetOver, BudgetStatus(ledgerWithSpend("0", "0.01")))
}

func TestTotalSpentAndRemaining(t *testing.T) {
	l := model.Ledger{
		Obra: model.LedgerProject{Orcamento: d("10000")},
		Gastos: []model.LedgerExpense{
			{Valor: d("1500.50")},
			{Valor: d("499.50")},
		},
		Contratos: []model.LedgerContract{{ValorTotal: d("3000")}},
		PagamentosSemanais: []model.WeeklyPayment{
			{ValorPagar: d("800"), ValorVA: d("150"), ValorVT: d("50")},
		},
	}

	assert.True(t, d("6000").Equal(TotalSpent(l)))
	assert.True(t, d("4000").Equal(RemainingBalance(l)))
}

func TestRemainingBalanceCanBeNegative(t *testing.T) {
	l := ledgerWithSpend("100", "250")

	assert.True(t, d("-150").Equal(RemainingBalance(l)))
	assert.Equal(t, BudgetOver, BudgetStatus(l))
}

func TestScheduleCompletion(t *testing.T) {
	stages := func(statuses ...string) model.Ledger {
		l := model.Ledger{}
		for _, s := range statuses {
			l.Cronograma = append(l.Cronograma, model.ScheduleStage{Status: s})
		}
		return l
	}

	assert.Equal(t, 0, ScheduleCompletion(model.Ledger{}))
	assert.Equal(t, 0, ScheduleCompletion(stages(model.StagePlanned)))
	assert.Equal(t, 33, ScheduleCompletion(stages(model.StageDone, model.StagePlanned, model.StageLate)))
	assert.Equal(t, 67, ScheduleCompletion(stages(model.StageDone, model.StageDone, model.StageLate)))
	assert.Equal(t, 50, ScheduleCompletion(stages(model.StageDone, model.StageInProgress)))
	assert.Equal(t, 100, ScheduleCompletion(stages(model.StageDone)))
	// 1/8 = 12.5% rounds up
	assert.Equal(t, 13, ScheduleCompletion(stages(model.StageDone,
		model.StagePlanned, model.StagePlanned, model.StagePlanned,
		model.StagePlanned, model.StagePlanned, model.StagePlanned, model.StagePlanned)))
}

func TestDaysRemaining(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	at := func(t time.Time) model.Ledger {
		return model.Ledger{Obra: model.LedgerProject{DataFinalEntrega: t}}
	}

	assert.Equal(t, 10, DaysRemaining(at(now.Add(10*24*time.Hour)), now))
	assert.Equal(t, 1, DaysRemaining(at(now.Add(time.Hour)), now))
	assert.Equal(t, 0, DaysRemaining(at(now), now))
	assert.Equal(t, -2, DaysRemaining(at(now.Add(-50*time.Hour)), now))
}

func TestSpentPercentage(t *testing.T) {
	assert.Equal(t, "70.00", SpentPercentage(d("700"), d("1000")).StringFixed(2))
	assert.Equal(t, "33.33", SpentPercentage(d("1"), d("3")).StringFixed(2))
	assert.Equal(t, "0.00", SpentPercentage(d("10"), d("0")).StringFixed(2))
}

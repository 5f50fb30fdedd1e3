// Package finance derives read-only metrics from stored records. Nothing here
// touches the database; every value is recomputed from its inputs on each call.
package finance

import (
	"math"
	"time"

	"obrafin/internal/model"

	"github.com/shopspring/decimal"
)

// Budget status labels
const (
	BudgetWithin  = "dentro do orçamento"
	BudgetWarning = "atenção"
	BudgetNear    = "próximo do limite"
	BudgetOver    = "acima do orçamento"
)

var hundred = decimal.NewFromInt(100)

// TotalSpent sums ledger expenses, contract totals and weekly payment totals.
func TotalSpent(l model.Ledger) decimal.Decimal {
	return sumExpenses(l.Gastos).
		Add(sumContracts(l.Contratos)).
		Add(sumWeekly(l.PagamentosSemanais, nil))
}

// RemainingBalance is the budget minus the total spent; it may be negative.
func RemainingBalance(l model.Ledger) decimal.Decimal {
	return l.Obra.Orcamento.Sub(TotalSpent(l))
}

// BudgetStatus classifies spend as a percentage of budget with inclusive
// upper bounds at 70, 90 and 100. Comparisons are exact (no division).
func BudgetStatus(l model.Ledger) string {
	return ClassifyBudget(TotalSpent(l), l.Obra.Orcamento)
}

// ClassifyBudget is BudgetStatus over raw amounts. A zero budget is within
// budget only while nothing has been spent.
func ClassifyBudget(spent, budget decimal.Decimal) string {
	if budget.Sign() <= 0 {
		if spent.Sign() <= 0 {
			return BudgetWithin
		}
		return BudgetOver
	}
	scaled := spent.Mul(hundred)
	switch {
	case scaled.LessThanOrEqual(budget.Mul(decimal.NewFromInt(70))):
		return BudgetWithin
	case scaled.LessThanOrEqual(budget.Mul(decimal.NewFromInt(90))):
		return BudgetWarning
	case scaled.LessThanOrEqual(budget.Mul(hundred)):
		return BudgetNear
	default:
		return BudgetOver
	}
}

// SpentPercentage is spent/budget*100 rounded to two places; zero when the budget is zero.
func SpentPercentage(spent, budget decimal.Decimal) decimal.Decimal {
	if budget.IsZero() {
		return decimal.Zero
	}
	return spent.Mul(hundred).Div(budget).Round(2)
}

// ScheduleCompletion is the rounded percentage of milestones marked done,
// zero when there are none. Halves round up.
func ScheduleCompletion(l model.Ledger) int {
	total := len(l.Cronograma)
	if total == 0 {
		return 0
	}
	done := 0
	for _, s := range l.Cronograma {
		if s.Status == model.StageDone {
			done++
		}
	}
	return (200*done + total) / (2 * total)
}

// DaysRemaining is the ceiling of the days between now and the delivery date.
// Negative once the deadline has passed.
func DaysRemaining(l model.Ledger, now time.Time) int {
	diff := l.Obra.DataFinalEntrega.Sub(now)
	return int(math.Ceil(diff.Hours() / 24))
}

// WeeklyTotal is the amount a weekly payment disburses.
func WeeklyTotal(base, meal, transport decimal.Decimal) decimal.Decimal {
	return base.Add(meal).Add(transport)
}

func sumExpenses(items []model.LedgerExpense) decimal.Decimal {
	total := decimal.Zero
	for _, g := range items {
		total = total.Add(g.Valor)
	}
	return total
}

func sumContracts(items []model.LedgerContract) decimal.Decimal {
	total := decimal.Zero
	for _, c := range items {
		total = total.Add(c.ValorTotal)
	}
	return total
}

// sumWeekly totals weekly payments, optionally restricted to those matching keep.
func sumWeekly(items []model.WeeklyPayment, keep func(model.WeeklyPayment) bool) decimal.Decimal {
	total := decimal.Zero
	for _, w := range items {
		if keep != nil && !keep(w) {
			continue
		}
		total = total.Add(WeeklyTotal(w.ValorPagar, w.ValorVA, w.ValorVT))
	}
	return total
}

package finance

import (
	"testing"
	"time"

	"obrafin/internal/model"

	"github.com/stretchr/testify/assert"
)

func installments(statuses ...string) []model.Installment {
	out := make([]model.Installment, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, model.Installment{Valor: d("100"), StatusPagamento: s})
	}
	return out
}

func TestInstallmentTotal(t *testing.T) {
	items := []model.Installment{{Valor: d("100")}, {Valor: d("250.50")}}

	assert.True(t, d("350.50").Equal(InstallmentTotal(items)))
	assert.True(t, InstallmentTotal(nil).IsZero())
}

func TestInstallmentStatus(t *testing.T) {
	tests := []struct {
		name  string
		items []model.Installment
		want  string
	}{
		{"empty", nil, InstallmentsNone},
		{"all paid", installments(model.PaymentDone, model.PaymentDone), InstallmentsAllPaid},
		{"one overdue", installments(model.PaymentDone, model.PaymentOverdue, model.PaymentPending), InstallmentsOverdue},
		{"pending", installments(model.PaymentDone, model.PaymentPending), InstallmentsPending},
		{"processing", installments(model.PaymentDone, model.PaymentProcessing), InstallmentsProcessing},
		{"cancelled only", installments(model.PaymentCancelled), InstallmentsProcessing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InstallmentStatus(tt.items))
		})
	}
}

func TestDescribeLabor(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	l := model.Labor{
		InicioContrato:  start,
		FimContrato:     &end,
		Status:          model.LaborActive,
		StatusPagamento: model.PaymentPending,
		DiaPagamento:    10,
	}

	terms := DescribeLabor(l, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 30, terms.DuracaoContrato)
	assert.True(t, terms.ContratoAtivo)
	assert.True(t, terms.PagamentoAtrasado)

	terms = DescribeLabor(l, time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC))
	assert.False(t, terms.ContratoAtivo)
	assert.False(t, terms.PagamentoAtrasado)

	l.FimContrato = nil
	assert.Equal(t, 0, DescribeLabor(l, start).DuracaoContrato)
}

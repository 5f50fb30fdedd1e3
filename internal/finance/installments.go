package finance

import (
	"math"
	"time"

	"obrafin/internal/model"

	"github.com/shopspring/decimal"
)

// Overall installment status labels
const (
	InstallmentsNone       = "sem_pagamentos"
	InstallmentsAllPaid    = "todos_pagos"
	InstallmentsOverdue    = "com_atraso"
	InstallmentsPending    = "pendente"
	InstallmentsProcessing = "em_processamento"
)

// InstallmentTotal sums installment values.
func InstallmentTotal(items []model.Installment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range items {
		total = total.Add(p.Valor)
	}
	return total
}

// InstallmentStatus summarizes installments. Checks run in order: empty,
// all paid, any overdue, any pending, otherwise processing.
func InstallmentStatus(items []model.Installment) string {
	if len(items) == 0 {
		return InstallmentsNone
	}

	allPaid := true
	overdue := false
	pending := false
	for _, p := range items {
		if p.StatusPagamento != model.PaymentDone {
			allPaid = false
		}
		switch p.StatusPagamento {
		case model.PaymentOverdue:
			overdue = true
		case model.PaymentPending:
			pending = true
		}
	}

	switch {
	case allPaid:
		return InstallmentsAllPaid
	case overdue:
		return InstallmentsOverdue
	case pending:
		return InstallmentsPending
	default:
		return InstallmentsProcessing
	}
}

// LaborTerms are derived facts about a labor contract.
type LaborTerms struct {
	DuracaoContrato   int  `json:"duracaoContrato"`
	ContratoAtivo     bool `json:"contratoAtivo"`
	PagamentoAtrasado bool `json:"pagamentoAtrasado"`
}

// DescribeLabor derives contract length in whole days (rounded up, zero
// without an end date), whether the contract is running at now, and whether
// this month's pay day has passed while payment is still pending.
func DescribeLabor(l model.Labor, now time.Time) LaborTerms {
	var terms LaborTerms

	if l.FimContrato != nil {
		diff := l.FimContrato.Sub(l.InicioContrato)
		if diff < 0 {
			diff = -diff
		}
		terms.DuracaoContrato = int(math.Ceil(diff.Hours() / 24))
	}

	terms.ContratoAtivo = l.Status == model.LaborActive &&
		!now.Before(l.InicioContrato) &&
		(l.FimContrato == nil || !now.After(*l.FimContrato))

	terms.PagamentoAtrasado = l.StatusPagamento == model.PaymentPending &&
		l.DiaPagamento > 0 && now.Day() > l.DiaPagamento

	return terms
}

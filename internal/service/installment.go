package service

import (
	"context"
	"strings"

	"obrafin/internal/access"
	"obrafin/internal/finance"
	"obrafin/internal/model"
	"obrafin/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InstallmentRequest struct {
	Valor           *decimal.Decimal `json:"valor" binding:"required"`
	TipoPagamento   string           `json:"tipoPagamento" binding:"required"`
	DataPagamento   string           `json:"dataPagamento" binding:"required,isodate"`
	StatusPagamento string           `json:"statusPagamento" binding:"omitempty,oneof=pendente efetuado em_processamento cancelado atrasado"`
	Observacoes     string           `json:"observacoes"`
}

type UpdateInstallmentRequest struct {
	Valor           *decimal.Decimal `json:"valor"`
	TipoPagamento   *string          `json:"tipoPagamento"`
	DataPagamento   *string          `json:"dataPagamento" binding:"omitempty,isodate"`
	StatusPagamento *string          `json:"statusPagamento" binding:"omitempty,oneof=pendente efetuado em_processamento cancelado atrasado"`
	Observacoes     *string          `json:"observacoes"`
}

// InstallmentOwner manages the payments list of a record.
type InstallmentOwner[R any] interface {
	AddPayment(ctx context.Context, p access.Principal, parentID uuid.UUID, req InstallmentRequest) (R, error)
	GetPayment(ctx context.Context, p access.Principal, parentID, paymentID uuid.UUID) (model.Installment, error)
	UpdatePayment(ctx context.Context, p access.Principal, parentID, paymentID uuid.UUID, req UpdateInstallmentRequest) (R, error)
	RemovePayment(ctx context.Context, p access.Principal, parentID, paymentID uuid.UUID) (R, error)
}

var installmentTypes = map[string]bool{
	model.InstallmentCash:     true,
	model.InstallmentSplit:    true,
	model.InstallmentMonthly:  true,
	model.InstallmentPerStage: true,
	model.MethodPix:           true,
	model.MethodTransfer:      true,
	model.MethodCard:          true,
	model.MethodBoleto:        true,
	model.MethodCheque:        true,
}

func installmentType(v problems, raw string) string {
	t := strings.ToLower(strings.TrimSpace(raw))
	if !installmentTypes[t] {
		v.add("tipoPagamento", "must be one of: avista, parcelado, mensal, por_etapa, pix, transferencia, cartao, boleto, cheque")
	}
	return t
}

func summarize(items []model.Installment) PaymentSummary {
	return PaymentSummary{
		ValorTotalPagamentos:  finance.InstallmentTotal(items),
		StatusGeralPagamentos: finance.InstallmentStatus(items),
	}
}

// installments wires a NestedStore of payments to its scoped parent records.
type installments[T any] struct {
	parent *records[T]
	nested repository.NestedStore[model.Installment]
}

const installmentNotFound = "Pagamento não encontrado"

func (i *installments[T]) add(ctx context.Context, p access.Principal, parentID uuid.UUID, req InstallmentRequest) (*T, error) {
	if _, err := i.parent.load(ctx, p, parentID); err != nil {
		return nil, err
	}

	v := problems{}
	v.nonNegative("valor", req.Valor)
	inst := model.Installment{
		Valor:           amount(req.Valor),
		TipoPagamento:   installmentType(v, req.TipoPagamento),
		DataPagamento:   v.date("dataPagamento", req.DataPagamento),
		StatusPagamento: orDefault(req.StatusPagamento, model.PaymentPending),
		Observacoes:     req.Observacoes,
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	if err := i.nested.Append(ctx, parentID, &inst); err != nil {
		return nil, storeError(err, i.parent.notFound, installmentNotFound)
	}
	i.parent.audit.record(ctx, p, model.ActionAppendElement, i.parent.entity, parentID, inst)
	return i.parent.reload(ctx, parentID)
}

func (i *installments[T]) get(ctx context.Context, p access.Principal, parentID, paymentID uuid.UUID) (model.Installment, error) {
	if _, err := i.parent.load(ctx, p, parentID); err != nil {
		return model.Installment{}, err
	}
	inst, err := i.nested.Find(ctx, parentID, paymentID)
	if err != nil {
		return model.Installment{}, storeError(err, i.parent.notFound, installmentNotFound)
	}
	return *inst, nil
}

func (i *installments[T]) update(ctx context.Context, p access.Principal, parentID, paymentID uuid.UUID, req UpdateInstallmentRequest) (*T, error) {
	if _, err := i.parent.load(ctx, p, parentID); err != nil {
		return nil, err
	}

	inst, err := i.nested.Update(ctx, parentID, paymentID, func(inst *model.Installment) error {
		v := problems{}
		v.nonNegative("valor", req.Valor)
		if req.Valor != nil {
			inst.Valor = *req.Valor
		}
		if req.TipoPagamento != nil {
			inst.TipoPagamento = installmentType(v, *req.TipoPagamento)
		}
		if req.DataPagamento != nil {
			inst.DataPagamento = v.date("dataPagamento", *req.DataPagamento)
		}
		if req.StatusPagamento != nil {
			inst.StatusPagamento = *req.StatusPagamento
		}
		if req.Observacoes != nil {
			inst.Observacoes = *req.Observacoes
		}
		return v.err()
	})
	if err != nil {
		return nil, storeError(err, i.parent.notFound, installmentNotFound)
	}
	i.parent.audit.record(ctx, p, model.ActionUpdateElement, i.parent.entity, parentID, inst)
	return i.parent.reload(ctx, parentID)
}

func (i *installments[T]) remove(ctx context.Context, p access.Principal, parentID, paymentID uuid.UUID) (*T, error) {
	if _, err := i.parent.load(ctx, p, parentID); err != nil {
		return nil, err
	}
	if err := i.nested.Remove(ctx, parentID, paymentID); err != nil {
		return nil, storeError(err, i.parent.notFound, installmentNotFound)
	}
	i.parent.audit.record(ctx, p, model.ActionRemoveElement, i.parent.entity, parentID, map[string]string{"pagamentoId": paymentID.String()})
	return i.parent.reload(ctx, parentID)
}

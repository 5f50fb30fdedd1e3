package service

import (
	"context"

	"obrafin/internal/access"
	"obrafin/internal/model"
	"obrafin/internal/repository"
	"obrafin/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateEquipmentRequest struct {
	NumeroNota      string           `json:"numeroNota" binding:"required"`
	Item            string           `json:"item" binding:"required"`
	Data            string           `json:"data" binding:"required,isodate"`
	LocalCompra     string           `json:"localCompra" binding:"required"`
	Valor           *decimal.Decimal `json:"valor" binding:"required"`
	Solicitante     string           `json:"solicitante" binding:"required"`
	Descricao       string           `json:"descricao"`
	TipoContratacao string           `json:"tipoContratacao" binding:"required,oneof=compra aluguel leasing comodato"`
	FormaPagamento  string           `json:"formaPagamento" binding:"required,oneof=pix transferencia avista cartao boleto cheque outro"`
	Parcelas        *int             `json:"parcelas" binding:"omitempty,min=1"`
	DiaPagamento    *int             `json:"diaPagamento" binding:"omitempty,min=1,max=31"`
	ChavePixBoleto  string           `json:"chavePixBoleto"`
	ObraID          *string          `json:"obraId" binding:"omitempty,uuid"`
	Observacoes     string           `json:"observacoes"`
}

type UpdateEquipmentRequest struct {
	NumeroNota      *string          `json:"numeroNota"`
	Item            *string          `json:"item"`
	Data            *string          `json:"data" binding:"omitempty,isodate"`
	LocalCompra     *string          `json:"localCompra"`
	Valor           *decimal.Decimal `json:"valor"`
	Solicitante     *string          `json:"solicitante"`
	Descricao       *string          `json:"descricao"`
	TipoContratacao *string          `json:"tipoContratacao" binding:"omitempty,oneof=compra aluguel leasing comodato"`
	FormaPagamento  *string          `json:"formaPagamento" binding:"omitempty,oneof=pix transferencia avista cartao boleto cheque outro"`
	Parcelas        *int             `json:"parcelas" binding:"omitempty,min=1"`
	DiaPagamento    *int             `json:"diaPagamento" binding:"omitempty,min=1,max=31"`
	ChavePixBoleto  *string          `json:"chavePixBoleto"`
	ObraID          *string          `json:"obraId" binding:"omitempty,uuid"`
	Observacoes     *string          `json:"observacoes"`
}

type EquipmentView struct {
	model.Equipment
	PaymentSummary
}

type EquipmentService interface {
	Resource[CreateEquipmentRequest, UpdateEquipmentRequest, EquipmentView]
	InstallmentOwner[EquipmentView]
}

type equipmentService struct {
	records[model.Equipment]
	payments installments[model.Equipment]
}

func NewEquipmentService(store repository.Store[model.Equipment], payments repository.NestedStore[model.Installment], resolver *access.Resolver, audit repository.AuditRepository) EquipmentService {
	s := &equipmentService{records: records[model.Equipment]{
		store:    store,
		resolver: resolver,
		audit:    &auditor{repo: audit},
		entity:   "equipamento",
		notFound: "Equipamento não encontrado",
		column:   "obra_id",
		project:  func(e *model.Equipment) *uuid.UUID { return e.ObraID },
		id:       func(e *model.Equipment) uuid.UUID { return e.ID },
	}}
	s.payments = installments[model.Equipment]{parent: &s.records, nested: payments}
	return s
}

func equipmentView(e model.Equipment) EquipmentView {
	if e.Pagamentos == nil {
		e.Pagamentos = []model.Installment{}
	}
	return EquipmentView{Equipment: e, PaymentSummary: summarize(e.Pagamentos)}
}

func (s *equipmentService) Create(ctx context.Context, p access.Principal, req CreateEquipmentRequest) (EquipmentView, error) {
	v := problems{}
	v.requireText("numeroNota", &req.NumeroNota)
	v.requireText("item", &req.Item)
	v.requireText("localCompra", &req.LocalCompra)
	v.requireText("solicitante", &req.Solicitante)
	v.nonNegative("valor", req.Valor)
	v.dayOfMonth("diaPagamento", req.DiaPagamento)
	v.paymentKey(req.FormaPagamento, req.ChavePixBoleto)
	e := model.Equipment{
		NumeroNota:      req.NumeroNota,
		Item:            req.Item,
		Data:            v.date("data", req.Data),
		LocalCompra:     req.LocalCompra,
		Valor:           amount(req.Valor),
		Solicitante:     req.Solicitante,
		Descricao:       req.Descricao,
		TipoContratacao: req.TipoContratacao,
		FormaPagamento:  req.FormaPagamento,
		Parcelas:        req.Parcelas,
		DiaPagamento:    req.DiaPagamento,
		ChavePixBoleto:  req.ChavePixBoleto,
		ObraID:          v.optionalID("obraId", req.ObraID),
		Observacoes:     req.Observacoes,
		CriadoPor:       p.Actor(),
	}
	if err := v.err(); err != nil {
		return EquipmentView{}, err
	}

	if err := s.create(ctx, p, &e); err != nil {
		return EquipmentView{}, err
	}
	return equipmentView(e), nil
}

func (s *equipmentService) Get(ctx context.Context, p access.Principal, id uuid.UUID) (EquipmentView, error) {
	e, err := s.load(ctx, p, id)
	if err != nil {
		return EquipmentView{}, err
	}
	return equipmentView(*e), nil
}

func (s *equipmentService) List(ctx context.Context, p access.Principal, q repository.Query) (pagination.Page[EquipmentView], error) {
	page, err := s.list(ctx, p, q)
	if err != nil {
		return pagination.Page[EquipmentView]{}, err
	}
	return pagination.Map(page, equipmentView), nil
}

func (s *equipmentService) Update(ctx context.Context, p access.Principal, id uuid.UUID, req UpdateEquipmentRequest) (EquipmentView, error) {
	e, err := s.load(ctx, p, id)
	if err != nil {
		return EquipmentView{}, err
	}

	v := problems{}
	v.requireText("numeroNota", req.NumeroNota)
	v.requireText("item", req.Item)
	v.requireText("localCompra", req.LocalCompra)
	v.requireText("solicitante", req.Solicitante)
	v.nonNegative("valor", req.Valor)

	if req.NumeroNota != nil {
		e.NumeroNota = *req.NumeroNota
	}
	if req.Item != nil {
		e.Item = *req.Item
	}
	if req.Data != nil {
		e.Data = v.date("data", *req.Data)
	}
	if req.LocalCompra != nil {
		e.LocalCompra = *req.LocalCompra
	}
	if req.Valor != nil {
		e.Valor = *req.Valor
	}
	if req.Solicitante != nil {
		e.Solicitante = *req.Solicitante
	}
	if req.Descricao != nil {
		e.Descricao = *req.Descricao
	}
	if req.TipoContratacao != nil {
		e.TipoContratacao = *req.TipoContratacao
	}
	if req.FormaPagamento != nil {
		e.FormaPagamento = *req.FormaPagamento
	}
	if req.Parcelas != nil {
		e.Parcelas = req.Parcelas
	}
	if req.DiaPagamento != nil {
		e.DiaPagamento = req.DiaPagamento
	}
	if req.ChavePixBoleto != nil {
		e.ChavePixBoleto = *req.ChavePixBoleto
	}
	if req.ObraID != nil {
		e.ObraID = v.optionalID("obraId", req.ObraID)
	}
	if req.Observacoes != nil {
		e.Observacoes = *req.Observacoes
	}
	v.paymentKey(e.FormaPagamento, e.ChavePixBoleto)
	if err := v.err(); err != nil {
		return EquipmentView{}, err
	}

	if err := s.save(ctx, p, e); err != nil {
		return EquipmentView{}, err
	}
	return equipmentView(*e), nil
}

func (s *equipmentService) Delete(ctx context.Context, p access.Principal, id uuid.UUID) error {
	return s.remove(ctx, p, id)
}

func (s *equipmentService) AddPayment(ctx context.Context, p access.Principal, parentID uuid.UUID, req InstallmentRequest) (EquipmentView, error) {
	e, err := s.payments.add(ctx, p, parentID, req)
	if err != nil {
		return EquipmentView{}, err
	}
	return equipmentView(*e), nil
}

func (s *equipmentService) GetPayment(ctx context.Context, p access.Principal, parentID, paymentID uuid.UUID) (model.Installment, error) {
	return s.payments.get(ctx, p, parentID, paymentID)
}

func (s *equipmentService) UpdatePayment(ctx context.Context, p access.Principal, parentID, paymentID uuid.UUID, req UpdateInstallmentRequest) (EquipmentView, error) {
	e, err := s.payments.update(ctx, p, parentID, paymentID, req)
	if err != nil {
		return EquipmentView{}, err
	}
	return equipmentView(*e), nil
}

func (s *equipmentService) RemovePayment(ctx context.Context, p access.Principal, parentID, paymentID uuid.UUID) (EquipmentView, error) {
	e, err := s.payments.remove(ctx, p, parentID, paymentID)
	if err != nil {
		return EquipmentView{}, err
	}
	return equipmentView(*e), nil
}

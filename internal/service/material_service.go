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

type CreateMaterialRequest struct {
	NumeroNota      string           `json:"numeroNota" binding:"required"`
	Data            string           `json:"data" binding:"required,isodate"`
	LocalCompra     string           `json:"localCompra" binding:"required"`
	Valor           *decimal.Decimal `json:"valor" binding:"required"`
	Solicitante     string           `json:"solicitante" binding:"required"`
	FormaPagamento  string           `json:"formaPagamento" binding:"required,oneof=pix transferencia avista cartao boleto cheque outro"`
	ChavePixBoleto  string           `json:"chavePixBoleto"`
	Descricao       string           `json:"descricao"`
	ObraID          *string          `json:"obraId" binding:"omitempty,uuid"`
	Observacoes     string           `json:"observacoes"`
	StatusPagamento string           `json:"statusPagamento" binding:"omitempty,oneof=pendente efetuado em_processamento cancelado atrasado"`
}

type UpdateMaterialRequest struct {
	NumeroNota      *string          `json:"numeroNota"`
	Data            *string          `json:"data" binding:"omitempty,isodate"`
	LocalCompra     *string          `json:"localCompra"`
	Valor           *decimal.Decimal `json:"valor"`
	Solicitante     *string          `json:"solicitante"`
	FormaPagamento  *string          `json:"formaPagamento" binding:"omitempty,oneof=pix transferencia avista cartao boleto cheque outro"`
	ChavePixBoleto  *string          `json:"chavePixBoleto"`
	Descricao       *string          `json:"descricao"`
	ObraID          *string          `json:"obraId" binding:"omitempty,uuid"`
	Observacoes     *string          `json:"observacoes"`
	StatusPagamento *string          `json:"statusPagamento" binding:"omitempty,oneof=pendente efetuado em_processamento cancelado atrasado"`
}

type MaterialService = Resource[CreateMaterialRequest, UpdateMaterialRequest, model.Material]

type materialService struct {
	records[model.Material]
}

func NewMaterialService(store repository.Store[model.Material], resolver *access.Resolver, audit repository.AuditRepository) MaterialService {
	return &materialService{records[model.Material]{
		store:    store,
		resolver: resolver,
		audit:    &auditor{repo: audit},
		entity:   "material",
		notFound: "Material não encontrado",
		column:   "obra_id",
		project:  func(m *model.Material) *uuid.UUID { return m.ObraID },
		id:       func(m *model.Material) uuid.UUID { return m.ID },
	}}
}

func (s *materialService) Create(ctx context.Context, p access.Principal, req CreateMaterialRequest) (model.Material, error) {
	v := problems{}
	v.requireText("numeroNota", &req.NumeroNota)
	v.requireText("localCompra", &req.LocalCompra)
	v.requireText("solicitante", &req.Solicitante)
	v.nonNegative("valor", req.Valor)
	v.paymentKey(req.FormaPagamento, req.ChavePixBoleto)
	m := model.Material{
		NumeroNota:      req.NumeroNota,
		Data:            v.date("data", req.Data),
		LocalCompra:     req.LocalCompra,
		Valor:           amount(req.Valor),
		Solicitante:     req.Solicitante,
		FormaPagamento:  req.FormaPagamento,
		ChavePixBoleto:  req.ChavePixBoleto,
		Descricao:       req.Descricao,
		ObraID:          v.optionalID("obraId", req.ObraID),
		Observacoes:     req.Observacoes,
		StatusPagamento: orDefault(req.StatusPagamento, model.PaymentPending),
		CriadoPor:       p.Actor(),
	}
	if err := v.err(); err != nil {
		return model.Material{}, err
	}

	if err := s.create(ctx, p, &m); err != nil {
		return model.Material{}, err
	}
	return m, nil
}

func (s *materialService) Get(ctx context.Context, p access.Principal, id uuid.UUID) (model.Material, error) {
	m, err := s.load(ctx, p, id)
	if err != nil {
		return model.Material{}, err
	}
	return *m, nil
}

func (s *materialService) List(ctx context.Context, p access.Principal, q repository.Query) (pagination.Page[model.Material], error) {
	return s.list(ctx, p, q)
}

func (s *materialService) Update(ctx context.Context, p access.Principal, id uuid.UUID, req UpdateMaterialRequest) (model.Material, error) {
	m, err := s.load(ctx, p, id)
	if err != nil {
		return model.Material{}, err
	}

	v := problems{}
	v.requireText("numeroNota", req.NumeroNota)
	v.requireText("localCompra", req.LocalCompra)
	v.requireText("solicitante", req.Solicitante)
	v.nonNegative("valor", req.Valor)

	if req.NumeroNota != nil {
		m.NumeroNota = *req.NumeroNota
	}
	if req.Data != nil {
		m.Data = v.date("data", *req.Data)
	}
	if req.LocalCompra != nil {
		m.LocalCompra = *req.LocalCompra
	}
	if req.Valor != nil {
		m.Valor = *req.Valor
	}
	if req.Solicitante != nil {
		m.Solicitante = *req.Solicitante
	}
	if req.FormaPagamento != nil {
		m.FormaPagamento = *req.FormaPagamento
	}
	if req.ChavePixBoleto != nil {
		m.ChavePixBoleto = *req.ChavePixBoleto
	}
	if req.Descricao != nil {
		m.Descricao = *req.Descricao
	}
	if req.ObraID != nil {
		m.ObraID = v.optionalID("obraId", req.ObraID)
	}
	if req.Observacoes != nil {
		m.Observacoes = *req.Observacoes
	}
	if req.StatusPagamento != nil {
		m.StatusPagamento = *req.StatusPagamento
	}
	v.paymentKey(m.FormaPagamento, m.ChavePixBoleto)
	if err := v.err(); err != nil {
		return model.Material{}, err
	}

	if err := s.save(ctx, p, m); err != nil {
		return model.Material{}, err
	}
	return *m, nil
}

func (s *materialService) Delete(ctx context.Context, p access.Principal, id uuid.UUID) error {
	return s.remove(ctx, p, id)
}

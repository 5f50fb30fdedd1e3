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

type CreateIncomeRequest struct {
	Nome              string           `json:"nome" binding:"required"`
	Valor             *decimal.Decimal `json:"valor" binding:"required"`
	Data              string           `json:"data" binding:"required,isodate"`
	Observacoes       string           `json:"observacoes"`
	ObraID            *string          `json:"obraId" binding:"omitempty,uuid"`
	StatusRecebimento string           `json:"statusRecebimento" binding:"omitempty,oneof=pendente recebido em_processamento cancelado atrasado"`
}

type UpdateIncomeRequest struct {
	Nome              *string          `json:"nome"`
	Valor             *decimal.Decimal `json:"valor"`
	Data              *string          `json:"data" binding:"omitempty,isodate"`
	Observacoes       *string          `json:"observacoes"`
	ObraID            *string          `json:"obraId" binding:"omitempty,uuid"`
	StatusRecebimento *string          `json:"statusRecebimento" binding:"omitempty,oneof=pendente recebido em_processamento cancelado atrasado"`
}

type IncomeService = Resource[CreateIncomeRequest, UpdateIncomeRequest, model.Income]

type incomeService struct {
	records[model.Income]
}

func NewIncomeService(store repository.Store[model.Income], resolver *access.Resolver, audit repository.AuditRepository) IncomeService {
	return &incomeService{records[model.Income]{
		store:    store,
		resolver: resolver,
		audit:    &auditor{repo: audit},
		entity:   "entrada",
		notFound: "Entrada não encontrada",
		column:   "obra_id",
		project:  func(i *model.Income) *uuid.UUID { return i.ObraID },
		id:       func(i *model.Income) uuid.UUID { return i.ID },
	}}
}

func (s *incomeService) Create(ctx context.Context, p access.Principal, req CreateIncomeRequest) (model.Income, error) {
	v := problems{}
	v.requireText("nome", &req.Nome)
	v.nonNegative("valor", req.Valor)
	in := model.Income{
		Nome:              req.Nome,
		Valor:             amount(req.Valor),
		Data:              v.date("data", req.Data),
		Observacoes:       req.Observacoes,
		ObraID:            v.optionalID("obraId", req.ObraID),
		StatusRecebimento: orDefault(req.StatusRecebimento, model.IncomeReceived),
		CriadoPor:         p.Actor(),
	}
	if err := v.err(); err != nil {
		return model.Income{}, err
	}

	if err := s.create(ctx, p, &in); err != nil {
		return model.Income{}, err
	}
	return in, nil
}

func (s *incomeService) Get(ctx context.Context, p access.Principal, id uuid.UUID) (model.Income, error) {
	in, err := s.load(ctx, p, id)
	if err != nil {
		return model.Income{}, err
	}
	return *in, nil
}

func (s *incomeService) List(ctx context.Context, p access.Principal, q repository.Query) (pagination.Page[model.Income], error) {
	return s.list(ctx, p, q)
}

func (s *incomeService) Update(ctx context.Context, p access.Principal, id uuid.UUID, req UpdateIncomeRequest) (model.Income, error) {
	in, err := s.load(ctx, p, id)
	if err != nil {
		return model.Income{}, err
	}

	v := problems{}
	v.requireText("nome", req.Nome)
	v.nonNegative("valor", req.Valor)
	if req.Nome != nil {
		in.Nome = *req.Nome
	}
	if req.Valor != nil {
		in.Valor = *req.Valor
	}
	if req.Data != nil {
		in.Data = v.date("data", *req.Data)
	}
	if req.Observacoes != nil {
		in.Observacoes = *req.Observacoes
	}
	if req.ObraID != nil {
		in.ObraID = v.optionalID("obraId", req.ObraID)
	}
	if req.StatusRecebimento != nil {
		in.StatusRecebimento = *req.StatusRecebimento
	}
	if err := v.err(); err != nil {
		return model.Income{}, err
	}

	if err := s.save(ctx, p, in); err != nil {
		return model.Income{}, err
	}
	return *in, nil
}

func (s *incomeService) Delete(ctx context.Context, p access.Principal, id uuid.UUID) error {
	return s.remove(ctx, p, id)
}

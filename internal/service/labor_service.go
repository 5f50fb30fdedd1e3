package service

import (
	"context"
	"time"

	"obrafin/internal/access"
	"obrafin/internal/finance"
	"obrafin/internal/model"
	"obrafin/internal/repository"
	"obrafin/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateLaborRequest struct {
	Nome            string           `json:"nome" binding:"required,max=100"`
	Funcao          string           `json:"funcao" binding:"required,max=50"`
	TipoContratacao string           `json:"tipoContratacao" binding:"required,oneof=clt pj diaria empreitada temporario"`
	Valor           *decimal.Decimal `json:"valor" binding:"required"`
	InicioContrato  string           `json:"inicioContrato" binding:"required,isodate"`
	FimContrato     *string          `json:"fimContrato" binding:"omitempty,isodate"`
	DiaPagamento    int              `json:"diaPagamento" binding:"required,min=1,max=31"`
	FormaPagamento  string           `json:"formaPagamento" binding:"required,oneof=pix transferencia avista cartao boleto cheque outro"`
	ChavePixBoleto  string           `json:"chavePixBoleto"`
	ObraID          *string          `json:"obraId" binding:"omitempty,uuid"`
	Status          string           `json:"status" binding:"omitempty,oneof=ativo inativo finalizado"`
	StatusPagamento string           `json:"statusPagamento" binding:"omitempty,oneof=pendente efetuado em_processamento cancelado atrasado"`
	Observacoes     string           `json:"observacoes" binding:"max=500"`
}

type UpdateLaborRequest struct {
	Nome            *string          `json:"nome" binding:"omitempty,max=100"`
	Funcao          *string          `json:"funcao" binding:"omitempty,max=50"`
	TipoContratacao *string          `json:"tipoContratacao" binding:"omitempty,oneof=clt pj diaria empreitada temporario"`
	Valor           *decimal.Decimal `json:"valor"`
	InicioContrato  *string          `json:"inicioContrato" binding:"omitempty,isodate"`
	FimContrato     *string          `json:"fimContrato" binding:"omitempty,isodate"`
	DiaPagamento    *int             `json:"diaPagamento"`
	FormaPagamento  *string          `json:"formaPagamento" binding:"omitempty,oneof=pix transferencia avista cartao boleto cheque outro"`
	ChavePixBoleto  *string          `json:"chavePixBoleto"`
	ObraID          *string          `json:"obraId" binding:"omitempty,uuid"`
	Status          *string          `json:"status" binding:"omitempty,oneof=ativo inativo finalizado"`
	StatusPagamento *string          `json:"statusPagamento" binding:"omitempty,oneof=pendente efetuado em_processamento cancelado atrasado"`
	Observacoes     *string          `json:"observacoes" binding:"omitempty,max=500"`
}

// LaborView is a labor record with its derived contract facts.
type LaborView struct {
	model.Labor
	finance.LaborTerms
}

type LaborService = Resource[CreateLaborRequest, UpdateLaborRequest, LaborView]

type laborService struct {
	records[model.Labor]
	now func() time.Time
}

func NewLaborService(store repository.Store[model.Labor], resolver *access.Resolver, audit repository.AuditRepository) LaborService {
	return &laborService{
		records: records[model.Labor]{
			store:    store,
			resolver: resolver,
			audit:    &auditor{repo: audit},
			entity:   "mao_obra",
			notFound: "Mão de obra não encontrada",
			column:   "obra_id",
			project:  func(l *model.Labor) *uuid.UUID { return l.ObraID },
			id:       func(l *model.Labor) uuid.UUID { return l.ID },
		},
		now: time.Now,
	}
}

func (s *laborService) view(l model.Labor) LaborView {
	return LaborView{Labor: l, LaborTerms: finance.DescribeLabor(l, s.now())}
}

func validateLaborPeriod(v problems, l *model.Labor) {
	if l.FimContrato != nil && !l.FimContrato.After(l.InicioContrato) {
		v.add("fimContrato", "must be after inicioContrato")
	}
}

func (s *laborService) Create(ctx context.Context, p access.Principal, req CreateLaborRequest) (LaborView, error) {
	v := problems{}
	v.requireText("nome", &req.Nome)
	v.requireText("funcao", &req.Funcao)
	v.nonNegative("valor", req.Valor)
	v.dayOfMonth("diaPagamento", &req.DiaPagamento)
	v.paymentKey(req.FormaPagamento, req.ChavePixBoleto)
	l := model.Labor{
		Nome:            req.Nome,
		Funcao:          req.Funcao,
		TipoContratacao: req.TipoContratacao,
		Valor:           amount(req.Valor),
		InicioContrato:  v.date("inicioContrato", req.InicioContrato),
		FimContrato:     v.optionalDate("fimContrato", req.FimContrato),
		DiaPagamento:    req.DiaPagamento,
		FormaPagamento:  req.FormaPagamento,
		ChavePixBoleto:  req.ChavePixBoleto,
		ObraID:          v.optionalID("obraId", req.ObraID),
		Status:          orDefault(req.Status, model.LaborActive),
		StatusPagamento: orDefault(req.StatusPagamento, model.PaymentPending),
		Observacoes:     req.Observacoes,
		CriadoPor:       p.Actor(),
	}
	validateLaborPeriod(v, &l)
	if err := v.err(); err != nil {
		return LaborView{}, err
	}

	if err := s.create(ctx, p, &l); err != nil {
		return LaborView{}, err
	}
	return s.view(l), nil
}

func (s *laborService) Get(ctx context.Context, p access.Principal, id uuid.UUID) (LaborView, error) {
	l, err := s.load(ctx, p, id)
	if err != nil {
		return LaborView{}, err
	}
	return s.view(*l), nil
}

func (s *laborService) List(ctx context.Context, p access.Principal, q repository.Query) (pagination.Page[LaborView], error) {
	page, err := s.list(ctx, p, q)
	if err != nil {
		return pagination.Page[LaborView]{}, err
	}
	return pagination.Map(page, s.view), nil
}

func (s *laborService) Update(ctx context.Context, p access.Principal, id uuid.UUID, req UpdateLaborRequest) (LaborView, error) {
	l, err := s.load(ctx, p, id)
	if err != nil {
		return LaborView{}, err
	}

	v := problems{}
	v.requireText("nome", req.Nome)
	v.requireText("funcao", req.Funcao)
	v.nonNegative("valor", req.Valor)
	v.dayOfMonth("diaPagamento", req.DiaPagamento)

	if req.Nome != nil {
		l.Nome = *req.Nome
	}
	if req.Funcao != nil {
		l.Funcao = *req.Funcao
	}
	if req.TipoContratacao != nil {
		l.TipoContratacao = *req.TipoContratacao
	}
	if req.Valor != nil {
		l.Valor = *req.Valor
	}
	if req.InicioContrato != nil {
		l.InicioContrato = v.date("inicioContrato", *req.InicioContrato)
	}
	if req.FimContrato != nil {
		l.FimContrato = v.optionalDate("fimContrato", req.FimContrato)
	}
	if req.DiaPagamento != nil {
		l.DiaPagamento = *req.DiaPagamento
	}
	if req.FormaPagamento != nil {
		l.FormaPagamento = *req.FormaPagamento
	}
	if req.ChavePixBoleto != nil {
		l.ChavePixBoleto = *req.ChavePixBoleto
	}
	if req.ObraID != nil {
		l.ObraID = v.optionalID("obraId", req.ObraID)
	}
	if req.Status != nil {
		l.Status = *req.Status
	}
	if req.StatusPagamento != nil {
		l.StatusPagamento = *req.StatusPagamento
	}
	if req.Observacoes != nil {
		l.Observacoes = *req.Observacoes
	}
	v.paymentKey(l.FormaPagamento, l.ChavePixBoleto)
	validateLaborPeriod(v, l)
	if err := v.err(); err != nil {
		return LaborView{}, err
	}

	if err := s.save(ctx, p, l); err != nil {
		return LaborView{}, err
	}
	return s.view(*l), nil
}

func (s *laborService) Delete(ctx context.Context, p access.Principal, id uuid.UUID) error {
	return s.remove(ctx, p, id)
}

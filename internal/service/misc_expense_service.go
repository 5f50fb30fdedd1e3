package service

import (
	"context"
	"fmt"

	"obrafin/internal/access"
	"obrafin/internal/model"
	"obrafin/internal/repository"
	"obrafin/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateMiscExpenseRequest struct {
	Descricao       string           `json:"descricao" binding:"required,max=500"`
	Valor           *decimal.Decimal `json:"valor" binding:"required"`
	Data            string           `json:"data" binding:"required,isodate"`
	CategoriaLivre  string           `json:"categoriaLivre" binding:"max=100"`
	Observacoes     string           `json:"observacoes"`
	FormaPagamento  string           `json:"formaPagamento" binding:"required,oneof=pix transferencia avista cartao boleto cheque dinheiro parcelado outro"`
	ChavePixBoleto  string           `json:"chavePixBoleto"`
	NumeroDocumento string           `json:"numeroDocumento"`
	Fornecedor      string           `json:"fornecedor"`
	ObraID          *string          `json:"obraId" binding:"omitempty,uuid"`
}

type UpdateMiscExpenseRequest struct {
	Descricao       *string          `json:"descricao" binding:"omitempty,max=500"`
	Valor           *decimal.Decimal `json:"valor"`
	Data            *string          `json:"data" binding:"omitempty,isodate"`
	CategoriaLivre  *string          `json:"categoriaLivre" binding:"omitempty,max=100"`
	Observacoes     *string          `json:"observacoes"`
	FormaPagamento  *string          `json:"formaPagamento" binding:"omitempty,oneof=pix transferencia avista cartao boleto cheque dinheiro parcelado outro"`
	ChavePixBoleto  *string          `json:"chavePixBoleto"`
	NumeroDocumento *string          `json:"numeroDocumento"`
	Fornecedor      *string          `json:"fornecedor"`
	ObraID          *string          `json:"obraId" binding:"omitempty,uuid"`
}

type MiscExpenseView struct {
	model.MiscExpense
	PaymentSummary
}

// CategoryReport is the per-category spend of the misc expenses in scope.
type CategoryReport struct {
	Categorias []repository.CategoryTotal `json:"categorias"`
	Total      decimal.Decimal            `json:"total"`
}

type MiscExpenseService interface {
	Resource[CreateMiscExpenseRequest, UpdateMiscExpenseRequest, MiscExpenseView]
	InstallmentOwner[MiscExpenseView]
	CategoryReport(ctx context.Context, p access.Principal, q repository.Query) (CategoryReport, error)
}

type miscExpenseService struct {
	records[model.MiscExpense]
	payments installments[model.MiscExpense]
	repo     repository.MiscExpenseRepository
}

func NewMiscExpenseService(repo repository.MiscExpenseRepository, payments repository.NestedStore[model.Installment], resolver *access.Resolver, audit repository.AuditRepository) MiscExpenseService {
	s := &miscExpenseService{
		records: records[model.MiscExpense]{
			store:    repo,
			resolver: resolver,
			audit:    &auditor{repo: audit},
			entity:   "outro_gasto",
			notFound: "Gasto não encontrado",
			column:   "obra_id",
			project:  func(m *model.MiscExpense) *uuid.UUID { return m.ObraID },
			id:       func(m *model.MiscExpense) uuid.UUID { return m.ID },
		},
		repo: repo,
	}
	s.payments = installments[model.MiscExpense]{parent: &s.records, nested: payments}
	return s
}

func miscExpenseView(m model.MiscExpense) MiscExpenseView {
	if m.Pagamentos == nil {
		m.Pagamentos = []model.Installment{}
	}
	return MiscExpenseView{MiscExpense: m, PaymentSummary: summarize(m.Pagamentos)}
}

func (s *miscExpenseService) Create(ctx context.Context, p access.Principal, req CreateMiscExpenseRequest) (MiscExpenseView, error) {
	v := problems{}
	v.requireText("descricao", &req.Descricao)
	v.nonNegative("valor", req.Valor)
	v.paymentKey(req.FormaPagamento, req.ChavePixBoleto)
	m := model.MiscExpense{
		Descricao:       req.Descricao,
		Valor:           amount(req.Valor),
		Data:            v.date("data", req.Data),
		CategoriaLivre:  req.CategoriaLivre,
		Observacoes:     req.Observacoes,
		FormaPagamento:  req.FormaPagamento,
		ChavePixBoleto:  req.ChavePixBoleto,
		NumeroDocumento: req.NumeroDocumento,
		Fornecedor:      req.Fornecedor,
		ObraID:          v.optionalID("obraId", req.ObraID),
		CriadoPor:       p.Actor(),
	}
	if err := v.err(); err != nil {
		return MiscExpenseView{}, err
	}

	if err := s.create(ctx, p, &m); err != nil {
		return MiscExpenseView{}, err
	}
	return miscExpenseView(m), nil
}

func (s *miscExpenseService) Get(ctx context.Context, p access.Principal, id uuid.UUID) (MiscExpenseView, error) {
	m, err := s.load(ctx, p, id)
	if err != nil {
		return MiscExpenseView{}, err
	}
	return miscExpenseView(*m), nil
}

func (s *miscExpenseService) List(ctx context.Context, p access.Principal, q repository.Query) (pagination.Page[MiscExpenseView], error) {
	page, err := s.list(ctx, p, q)
	if err != nil {
		return pagination.Page[MiscExpenseView]{}, err
	}
	return pagination.Map(page, miscExpenseView), nil
}

func (s *miscExpenseService) Update(ctx context.Context, p access.Principal, id uuid.UUID, req UpdateMiscExpenseRequest) (MiscExpenseView, error) {
	m, err := s.load(ctx, p, id)
	if err != nil {
		return MiscExpenseView{}, err
	}

	v := problems{}
	v.requireText("descricao", req.Descricao)
	v.nonNegative("valor", req.Valor)

	if req.Descricao != nil {
		m.Descricao = *req.Descricao
	}
	if req.Valor != nil {
		m.Valor = *req.Valor
	}
	if req.Data != nil {
		m.Data = v.date("data", *req.Data)
	}
	if req.CategoriaLivre != nil {
		m.CategoriaLivre = *req.CategoriaLivre
	}
	if req.Observacoes != nil {
		m.Observacoes = *req.Observacoes
	}
	if req.FormaPagamento != nil {
		m.FormaPagamento = *req.FormaPagamento
	}
	if req.ChavePixBoleto != nil {
		m.ChavePixBoleto = *req.ChavePixBoleto
	}
	if req.NumeroDocumento != nil {
		m.NumeroDocumento = *req.NumeroDocumento
	}
	if req.Fornecedor != nil {
		m.Fornecedor = *req.Fornecedor
	}
	if req.ObraID != nil {
		m.ObraID = v.optionalID("obraId", req.ObraID)
	}
	v.paymentKey(m.FormaPagamento, m.ChavePixBoleto)
	if err := v.err(); err != nil {
		return MiscExpenseView{}, err
	}

	if err := s.save(ctx, p, m); err != nil {
		return MiscExpenseView{}, err
	}
	return miscExpenseView(*m), nil
}

func (s *miscExpenseService) Delete(ctx context.Context, p access.Principal, id uuid.UUID) error {
	return s.remove(ctx, p, id)
}

func (s *miscExpenseService) CategoryReport(ctx context.Context, p access.Principal, q repository.Query) (CategoryReport, error) {
	scope, err := s.scope(ctx, p)
	if err != nil {
		return CategoryReport{}, err
	}
	totals, err := s.repo.TotalsByCategory(ctx, scope.Narrow(q, s.column))
	if err != nil {
		return CategoryReport{}, fmt.Errorf("category totals: %w", err)
	}

	report := CategoryReport{Categorias: totals, Total: decimal.Zero}
	for _, t := range totals {
		report.Total = report.Total.Add(t.Total)
	}
	return report, nil
}

func (s *miscExpenseService) AddPayment(ctx context.Context, p access.Principal, parentID uuid.UUID, req InstallmentRequest) (MiscExpenseView, error) {
	m, err := s.payments.add(ctx, p, parentID, req)
	if err != nil {
		return MiscExpenseView{}, err
	}
	return miscExpenseView(*m), nil
}

func (s *miscExpenseService) GetPayment(ctx context.Context, p access.Principal, parentID, paymentID uuid.UUID) (model.Installment, error) {
	return s.payments.get(ctx, p, parentID, paymentID)
}

func (s *miscExpenseService) UpdatePayment(ctx context.Context, p access.Principal, parentID, paymentID uuid.UUID, req UpdateInstallmentRequest) (MiscExpenseView, error) {
	m, err := s.payments.update(ctx, p, parentID, paymentID, req)
	if err != nil {
		return MiscExpenseView{}, err
	}
	return miscExpenseView(*m), nil
}

func (s *miscExpenseService) RemovePayment(ctx context.Context, p access.Principal, parentID, paymentID uuid.UUID) (MiscExpenseView, error) {
	m, err := s.payments.remove(ctx, p, parentID, paymentID)
	if err != nil {
		return MiscExpenseView{}, err
	}
	return miscExpenseView(*m), nil
}

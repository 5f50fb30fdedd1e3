package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"obrafin/internal/access"
	"obrafin/internal/model"
	"obrafin/internal/repository"
	"obrafin/pkg/apperror"
	"obrafin/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateContractRequest struct {
	ContratoID     string           `json:"contratoId" binding:"max=50"`
	Loja           string           `json:"loja" binding:"required"`
	Valor          *decimal.Decimal `json:"valor" binding:"required"`
	ValorInicial   *decimal.Decimal `json:"valorInicial" binding:"required"`
	InicioContrato string           `json:"inicioContrato" binding:"required,isodate"`
	FinalContrato  *string          `json:"finalContrato" binding:"omitempty,isodate"`
	ObraID         *string          `json:"obraId" binding:"omitempty,uuid"`
	Status         string           `json:"status" binding:"omitempty,oneof=ativo finalizado cancelado"`
	Observacoes    string           `json:"observacoes"`
}

type UpdateContractRequest struct {
	ContratoID     *string          `json:"contratoId" binding:"omitempty,max=50"`
	Loja           *string          `json:"loja"`
	Valor          *decimal.Decimal `json:"valor"`
	ValorInicial   *decimal.Decimal `json:"valorInicial"`
	InicioContrato *string          `json:"inicioContrato" binding:"omitempty,isodate"`
	FinalContrato  *string          `json:"finalContrato" binding:"omitempty,isodate"`
	ObraID         *string          `json:"obraId" binding:"omitempty,uuid"`
	Status         *string          `json:"status" binding:"omitempty,oneof=ativo finalizado cancelado"`
	Observacoes    *string          `json:"observacoes"`
}

type ContractView struct {
	model.Contract
	PaymentSummary
}

type ContractService interface {
	Resource[CreateContractRequest, UpdateContractRequest, ContractView]
	InstallmentOwner[ContractView]
}

type contractService struct {
	records[model.Contract]
	payments installments[model.Contract]
	now      func() time.Time
}

func NewContractService(store repository.Store[model.Contract], payments repository.NestedStore[model.Installment], resolver *access.Resolver, audit repository.AuditRepository) ContractService {
	s := &contractService{
		records: records[model.Contract]{
			store:    store,
			resolver: resolver,
			audit:    &auditor{repo: audit},
			entity:   "contrato",
			notFound: "Contrato não encontrado",
			column:   "obra_id",
			project:  func(c *model.Contract) *uuid.UUID { return c.ObraID },
			id:       func(c *model.Contract) uuid.UUID { return c.ID },
		},
		now: time.Now,
	}
	s.payments = installments[model.Contract]{parent: &s.records, nested: payments}
	return s
}

func contractView(c model.Contract) ContractView {
	if c.Pagamentos == nil {
		c.Pagamentos = []model.Installment{}
	}
	return ContractView{Contract: c, PaymentSummary: summarize(c.Pagamentos)}
}

// nextContractID builds CONT-<last 6 digits of the unix millis>-<sequence>.
func (s *contractService) nextContractID(ctx context.Context) (string, error) {
	total, err := s.store.Count(ctx, repository.NewQuery(pagination.Params{}))
	if err != nil {
		return "", fmt.Errorf("count contracts: %w", err)
	}
	return fmt.Sprintf("CONT-%06d-%04d", s.now().UnixMilli()%1000000, total+1), nil
}

// ensureUniqueID rejects a contratoId already held by another contract.
func (s *contractService) ensureUniqueID(ctx context.Context, contratoID string, self uuid.UUID) error {
	q := repository.NewQuery(pagination.Params{}).Where("contrato_id = ?", contratoID)
	if self != uuid.Nil {
		q = q.Where("id <> ?", self)
	}
	n, err := s.store.Count(ctx, q)
	if err != nil {
		return fmt.Errorf("check contract id: %w", err)
	}
	if n > 0 {
		return apperror.Conflict("contratoId já cadastrado")
	}
	return nil
}

func (s *contractService) Create(ctx context.Context, p access.Principal, req CreateContractRequest) (ContractView, error) {
	v := problems{}
	v.requireText("loja", &req.Loja)
	v.nonNegative("valor", req.Valor)
	v.nonNegative("valorInicial", req.ValorInicial)
	c := model.Contract{
		ContratoID:     strings.TrimSpace(req.ContratoID),
		Loja:           req.Loja,
		Valor:          amount(req.Valor),
		ValorInicial:   amount(req.ValorInicial),
		InicioContrato: v.date("inicioContrato", req.InicioContrato),
		FinalContrato:  v.optionalDate("finalContrato", req.FinalContrato),
		ObraID:         v.optionalID("obraId", req.ObraID),
		Status:         orDefault(req.Status, model.ContractActive),
		Observacoes:    req.Observacoes,
		CriadoPor:      p.Actor(),
	}
	v.notBefore("finalContrato", c.InicioContrato, c.FinalContrato, "must not be before inicioContrato")
	if err := v.err(); err != nil {
		return ContractView{}, err
	}

	if c.ContratoID == "" {
		id, err := s.nextContractID(ctx)
		if err != nil {
			return ContractView{}, err
		}
		c.ContratoID = id
	}
	if err := s.ensureUniqueID(ctx, c.ContratoID, uuid.Nil); err != nil {
		return ContractView{}, err
	}

	if err := s.create(ctx, p, &c); err != nil {
		return ContractView{}, err
	}
	return contractView(c), nil
}

func (s *contractService) Get(ctx context.Context, p access.Principal, id uuid.UUID) (ContractView, error) {
	c, err := s.load(ctx, p, id)
	if err != nil {
		return ContractView{}, err
	}
	return contractView(*c), nil
}

func (s *contractService) List(ctx context.Context, p access.Principal, q repository.Query) (pagination.Page[ContractView], error) {
	page, err := s.list(ctx, p, q)
	if err != nil {
		return pagination.Page[ContractView]{}, err
	}
	return pagination.Map(page, contractView), nil
}

func (s *contractService) Update(ctx context.Context, p access.Principal, id uuid.UUID, req UpdateContractRequest) (ContractView, error) {
	c, err := s.load(ctx, p, id)
	if err != nil {
		return ContractView{}, err
	}

	v := problems{}
	v.requireText("contratoId", req.ContratoID)
	v.requireText("loja", req.Loja)
	v.nonNegative("valor", req.Valor)
	v.nonNegative("valorInicial", req.ValorInicial)

	if req.ContratoID != nil {
		c.ContratoID = strings.TrimSpace(*req.ContratoID)
	}
	if req.Loja != nil {
		c.Loja = *req.Loja
	}
	if req.Valor != nil {
		c.Valor = *req.Valor
	}
	if req.ValorInicial != nil {
		c.ValorInicial = *req.ValorInicial
	}
	if req.InicioContrato != nil {
		c.InicioContrato = v.date("inicioContrato", *req.InicioContrato)
	}
	if req.FinalContrato != nil {
		c.FinalContrato = v.optionalDate("finalContrato", req.FinalContrato)
	}
	if req.ObraID != nil {
		c.ObraID = v.optionalID("obraId", req.ObraID)
	}
	if req.Status != nil {
		c.Status = *req.Status
	}
	if req.Observacoes != nil {
		c.Observacoes = *req.Observacoes
	}
	v.notBefore("finalContrato", c.InicioContrato, c.FinalContrato, "must not be before inicioContrato")
	if err := v.err(); err != nil {
		return ContractView{}, err
	}
	if req.ContratoID != nil {
		if err := s.ensureUniqueID(ctx, c.ContratoID, c.ID); err != nil {
			return ContractView{}, err
		}
	}

	if err := s.save(ctx, p, c); err != nil {
		return ContractView{}, err
	}
	return contractView(*c), nil
}

func (s *contractService) Delete(ctx context.Context, p access.Principal, id uuid.UUID) error {
	return s.remove(ctx, p, id)
}

func (s *contractService) AddPayment(ctx context.Context, p access.Principal, parentID uuid.UUID, req InstallmentRequest) (ContractView, error) {
	c, err := s.payments.add(ctx, p, parentID, req)
	if err != nil {
		return ContractView{}, err
	}
	return contractView(*c), nil
}

func (s *contractService) GetPayment(ctx context.Context, p access.Principal, parentID, paymentID uuid.UUID) (model.Installment, error) {
	return s.payments.get(ctx, p, parentID, paymentID)
}

func (s *contractService) UpdatePayment(ctx context.Context, p access.Principal, parentID, paymentID uuid.UUID, req UpdateInstallmentRequest) (ContractView, error) {
	c, err := s.payments.update(ctx, p, parentID, paymentID, req)
	if err != nil {
		return ContractView{}, err
	}
	return contractView(*c), nil
}

func (s *contractService) RemovePayment(ctx context.Context, p access.Principal, parentID, paymentID uuid.UUID) (ContractView, error) {
	c, err := s.payments.remove(ctx, p, parentID, paymentID)
	if err != nil {
		return ContractView{}, err
	}
	return contractView(*c), nil
}

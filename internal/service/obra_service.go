package service

import (
	"context"
	"fmt"
	"strings"

	"obrafin/internal/access"
	"obrafin/internal/model"
	"obrafin/internal/repository"
	"obrafin/pkg/apperror"
	"obrafin/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateObraRequest struct {
	Nome                string           `json:"nome" binding:"required,max=255"`
	Endereco            string           `json:"endereco" binding:"required,max=500"`
	Cliente             string           `json:"cliente" binding:"required,max=255"`
	ValorContrato       *decimal.Decimal `json:"valorContrato" binding:"required"`
	DataInicio          string           `json:"dataInicio" binding:"required,isodate"`
	DataPrevisaoTermino string           `json:"dataPrevisaoTermino" binding:"required,isodate"`
	DataTermino         *string          `json:"dataTermino" binding:"omitempty,isodate"`
	Status              string           `json:"status" binding:"omitempty,oneof=planejamento em_andamento pausada concluida cancelada"`
	Descricao           string           `json:"descricao"`
	Observacoes         string           `json:"observacoes"`
	SpreadsheetID       *string          `json:"spreadsheetId"`
}

type UpdateObraRequest struct {
	Nome                *string          `json:"nome" binding:"omitempty,max=255"`
	Endereco            *string          `json:"endereco" binding:"omitempty,max=500"`
	Cliente             *string          `json:"cliente" binding:"omitempty,max=255"`
	ValorContrato       *decimal.Decimal `json:"valorContrato"`
	DataInicio          *string          `json:"dataInicio" binding:"omitempty,isodate"`
	DataPrevisaoTermino *string          `json:"dataPrevisaoTermino" binding:"omitempty,isodate"`
	DataTermino         *string          `json:"dataTermino" binding:"omitempty,isodate"`
	Status              *string          `json:"status" binding:"omitempty,oneof=planejamento em_andamento pausada concluida cancelada"`
	Descricao           *string          `json:"descricao"`
	Observacoes         *string          `json:"observacoes"`
}

type LinkSpreadsheetRequest struct {
	SpreadsheetID string `json:"spreadsheetId" binding:"required"`
}

// ProjectGrants appends a project to a user's allow-list.
type ProjectGrants interface {
	GrantProject(ctx context.Context, userID, projectID uuid.UUID) error
}

type ObraService interface {
	Resource[CreateObraRequest, UpdateObraRequest, model.Obra]
	LinkSpreadsheet(ctx context.Context, p access.Principal, id uuid.UUID, req LinkSpreadsheetRequest) (model.Obra, error)
	GetBySpreadsheet(ctx context.Context, p access.Principal, spreadsheetID string) (model.Obra, error)
}

type obraService struct {
	records[model.Obra]
	tx     repository.TransactionManager
	grants ProjectGrants
}

func NewObraService(store repository.Store[model.Obra], tx repository.TransactionManager, grants ProjectGrants, resolver *access.Resolver, audit repository.AuditRepository) ObraService {
	return &obraService{
		records: records[model.Obra]{
			store:    store,
			resolver: resolver,
			audit:    &auditor{repo: audit},
			entity:   "obra",
			notFound: "Obra não encontrada",
			column:   "id",
			project:  func(o *model.Obra) *uuid.UUID { return &o.ID },
			id:       func(o *model.Obra) uuid.UUID { return o.ID },
		},
		tx:     tx,
		grants: grants,
	}
}

func validateObraDates(v problems, o *model.Obra) {
	v.notBefore("dataTermino", o.DataInicio, o.DataTermino, "must not be before dataInicio")
}

func (s *obraService) Create(ctx context.Context, p access.Principal, req CreateObraRequest) (model.Obra, error) {
	v := problems{}
	v.requireText("nome", &req.Nome)
	v.requireText("endereco", &req.Endereco)
	v.requireText("cliente", &req.Cliente)
	v.nonNegative("valorContrato", req.ValorContrato)
	o := model.Obra{
		Nome:                req.Nome,
		Endereco:            req.Endereco,
		Cliente:             req.Cliente,
		ValorContrato:       amount(req.ValorContrato),
		DataInicio:          v.date("dataInicio", req.DataInicio),
		DataPrevisaoTermino: v.date("dataPrevisaoTermino", req.DataPrevisaoTermino),
		DataTermino:         v.optionalDate("dataTermino", req.DataTermino),
		Status:              orDefault(req.Status, model.ObraPlanning),
		Descricao:           req.Descricao,
		Observacoes:         req.Observacoes,
		CriadoPor:           p.Actor(),
	}
	if req.SpreadsheetID != nil && strings.TrimSpace(*req.SpreadsheetID) != "" {
		id := strings.TrimSpace(*req.SpreadsheetID)
		o.SpreadsheetID = &id
	}
	validateObraDates(v, &o)
	if err := v.err(); err != nil {
		return model.Obra{}, err
	}

	// the creator of a project may always see it
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.store.Create(txCtx, &o); err != nil {
			return err
		}
		if p.IsAdmin() || p.UserID == uuid.Nil {
			return nil
		}
		return s.grants.GrantProject(txCtx, p.UserID, o.ID)
	})
	if err != nil {
		return model.Obra{}, fmt.Errorf("create obra: %w", err)
	}
	s.audit.record(ctx, p, model.ActionCreate, s.entity, o.ID, o)
	return o, nil
}

func (s *obraService) Get(ctx context.Context, p access.Principal, id uuid.UUID) (model.Obra, error) {
	o, err := s.load(ctx, p, id)
	if err != nil {
		return model.Obra{}, err
	}
	return *o, nil
}

func (s *obraService) List(ctx context.Context, p access.Principal, q repository.Query) (pagination.Page[model.Obra], error) {
	return s.list(ctx, p, q)
}

func (s *obraService) Update(ctx context.Context, p access.Principal, id uuid.UUID, req UpdateObraRequest) (model.Obra, error) {
	o, err := s.load(ctx, p, id)
	if err != nil {
		return model.Obra{}, err
	}

	v := problems{}
	v.requireText("nome", req.Nome)
	v.requireText("endereco", req.Endereco)
	v.requireText("cliente", req.Cliente)
	v.nonNegative("valorContrato", req.ValorContrato)

	if req.Nome != nil {
		o.Nome = *req.Nome
	}
	if req.Endereco != nil {
		o.Endereco = *req.Endereco
	}
	if req.Cliente != nil {
		o.Cliente = *req.Cliente
	}
	if req.ValorContrato != nil {
		o.ValorContrato = *req.ValorContrato
	}
	if req.DataInicio != nil {
		o.DataInicio = v.date("dataInicio", *req.DataInicio)
	}
	if req.DataPrevisaoTermino != nil {
		o.DataPrevisaoTermino = v.date("dataPrevisaoTermino", *req.DataPrevisaoTermino)
	}
	if req.DataTermino != nil {
		o.DataTermino = v.optionalDate("dataTermino", req.DataTermino)
	}
	if req.Status != nil {
		o.Status = *req.Status
	}
	if req.Descricao != nil {
		o.Descricao = *req.Descricao
	}
	if req.Observacoes != nil {
		o.Observacoes = *req.Observacoes
	}
	validateObraDates(v, o)
	if err := v.err(); err != nil {
		return model.Obra{}, err
	}

	if err := s.save(ctx, p, o); err != nil {
		return model.Obra{}, err
	}
	return *o, nil
}

func (s *obraService) Delete(ctx context.Context, p access.Principal, id uuid.UUID) error {
	return s.remove(ctx, p, id)
}

func (s *obraService) LinkSpreadsheet(ctx context.Context, p access.Principal, id uuid.UUID, req LinkSpreadsheetRequest) (model.Obra, error) {
	sheetID := strings.TrimSpace(req.SpreadsheetID)
	if sheetID == "" {
		return model.Obra{}, apperror.Field("spreadsheetId", "is required")
	}

	o, err := s.load(ctx, p, id)
	if err != nil {
		return model.Obra{}, err
	}
	o.SpreadsheetID = &sheetID
	if err := s.store.Update(ctx, o); err != nil {
		return model.Obra{}, fmt.Errorf("link spreadsheet: %w", err)
	}
	s.audit.record(ctx, p, model.ActionLinkSpreadsheet, s.entity, o.ID, map[string]string{"spreadsheetId": sheetID})
	return *o, nil
}

func (s *obraService) GetBySpreadsheet(ctx context.Context, p access.Principal, spreadsheetID string) (model.Obra, error) {
	q := repository.NewQuery(pagination.Params{Page: 1, Limit: 1}).
		Where("spreadsheet_id = ?", strings.TrimSpace(spreadsheetID))
	page, err := s.list(ctx, p, q)
	if err != nil {
		return model.Obra{}, err
	}
	if len(page.Records) == 0 {
		return model.Obra{}, apperror.NotFound("Nenhuma obra vinculada a esta planilha")
	}
	return page.Records[0], nil
}

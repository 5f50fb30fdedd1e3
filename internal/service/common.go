package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"obrafin/internal/access"
	"obrafin/internal/model"
	"obrafin/internal/repository"
	"obrafin/pkg/apperror"
	"obrafin/pkg/pagination"
	"obrafin/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Resource is the uniform CRUD contract the HTTP layer exposes per entity.
type Resource[C any, U any, R any] interface {
	Create(ctx context.Context, p access.Principal, req C) (R, error)
	Get(ctx context.Context, p access.Principal, id uuid.UUID) (R, error)
	List(ctx context.Context, p access.Principal, q repository.Query) (pagination.Page[R], error)
	Update(ctx context.Context, p access.Principal, id uuid.UUID, req U) (R, error)
	Delete(ctx context.Context, p access.Principal, id uuid.UUID) error
}

// PaymentSummary is derived from a record's installments on every read.
type PaymentSummary struct {
	ValorTotalPagamentos  decimal.Decimal `json:"valorTotalPagamentos"`
	StatusGeralPagamentos string          `json:"statusGeralPagamentos"`
}

// problems collects per-field validation messages.
type problems map[string]string

func (p problems) add(field, msg string) {
	if _, exists := p[field]; !exists {
		p[field] = msg
	}
}

func (p problems) err() error {
	if len(p) == 0 {
		return nil
	}
	return apperror.Validation(p)
}

func (p problems) requireText(field string, v *string) {
	if v != nil && strings.TrimSpace(*v) == "" {
		p.add(field, "is required")
	}
}

func (p problems) nonNegative(field string, v *decimal.Decimal) {
	if v != nil && v.IsNegative() {
		p.add(field, "must be greater than or equal to 0")
	}
}

func (p problems) date(field, raw string) time.Time {
	t, err := validator.ParseDate(raw)
	if err != nil {
		p.add(field, "must be a valid date (YYYY-MM-DD or RFC 3339)")
	}
	return t
}

// optionalDate parses a nullable date; nil or "" yields nil.
func (p problems) optionalDate(field string, raw *string) *time.Time {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}
	t := p.date(field, *raw)
	return &t
}

// optionalID parses a nullable reference; nil or "" yields nil.
func (p problems) optionalID(field string, raw *string) *uuid.UUID {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		p.add(field, "must be a valid id")
		return nil
	}
	return &id
}

func (p problems) paymentKey(method, key string) {
	if model.RequiresPaymentKey(method) && strings.TrimSpace(key) == "" {
		p.add("chavePixBoleto", "is required for pix and boleto payments")
	}
}

func (p problems) dayOfMonth(field string, v *int) {
	if v != nil && (*v < 1 || *v > 31) {
		p.add(field, "must be between 1 and 31")
	}
}

func (p problems) notBefore(field string, start time.Time, end *time.Time, msg string) {
	if end != nil && !start.IsZero() && end.Before(start) {
		p.add(field, msg)
	}
}

func amount(v *decimal.Decimal) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return *v
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// storeError maps repository sentinels onto the public error taxonomy.
func storeError(err error, notFound, elementNotFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrElementNotFound):
		return apperror.ElementNotFound(elementNotFound)
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NotFound(notFound)
	case apperror.KindOf(err) != apperror.KindInternal:
		return err
	default:
		return fmt.Errorf("store: %w", err)
	}
}

// auditor writes audit entries. Failures are logged and never fail the caller.
type auditor struct {
	repo repository.AuditRepository
}

func (a *auditor) record(ctx context.Context, p access.Principal, action, entity string, id uuid.UUID, details any) {
	if a == nil || a.repo == nil {
		return
	}
	payload, err := json.Marshal(details)
	if err != nil {
		payload = []byte("{}")
	}
	entry := &model.AuditLog{
		UserID:   p.Actor(),
		Action:   action,
		Entity:   entity,
		EntityID: id.String(),
		Details:  payload,
	}
	if err := a.repo.Log(ctx, entry); err != nil {
		log.Printf("audit: failed to record %s %s %s: %v", action, entity, id, err)
	}
}

// records is the scoped CRUD core shared by every top-level record service.
type records[T any] struct {
	store    repository.Store[T]
	resolver *access.Resolver
	audit    *auditor
	entity   string
	notFound string
	column   string
	project  func(*T) *uuid.UUID
	id       func(*T) uuid.UUID
}

func (r *records[T]) scope(ctx context.Context, p access.Principal) (access.Scope, error) {
	return r.resolver.Resolve(ctx, p)
}

func (r *records[T]) authorize(ctx context.Context, p access.Principal, rec *T) error {
	scope, err := r.scope(ctx, p)
	if err != nil {
		return err
	}
	if !scope.Allows(r.project(rec)) {
		return apperror.Forbidden("acesso negado a esta obra")
	}
	return nil
}

func (r *records[T]) load(ctx context.Context, p access.Principal, id uuid.UUID) (*T, error) {
	rec, err := r.store.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, r.notFound, "")
	}
	if err := r.authorize(ctx, p, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *records[T]) list(ctx context.Context, p access.Principal, q repository.Query) (pagination.Page[T], error) {
	scope, err := r.scope(ctx, p)
	if err != nil {
		return pagination.Page[T]{}, err
	}
	recs, total, err := r.store.List(ctx, scope.Narrow(q, r.column))
	if err != nil {
		return pagination.Page[T]{}, fmt.Errorf("list %s: %w", r.entity, err)
	}
	return pagination.NewPage(recs, q.Page, total), nil
}

func (r *records[T]) create(ctx context.Context, p access.Principal, rec *T) error {
	if err := r.authorize(ctx, p, rec); err != nil {
		return err
	}
	if err := r.store.Create(ctx, rec); err != nil {
		return fmt.Errorf("create %s: %w", r.entity, err)
	}
	r.audit.record(ctx, p, model.ActionCreate, r.entity, r.id(rec), rec)
	return nil
}

// save persists rec after an update. The caller has already loaded it with load,
// so only a change of project needs re-checking.
func (r *records[T]) save(ctx context.Context, p access.Principal, rec *T) error {
	if err := r.authorize(ctx, p, rec); err != nil {
		return err
	}
	if err := r.store.Update(ctx, rec); err != nil {
		return fmt.Errorf("update %s: %w", r.entity, err)
	}
	r.audit.record(ctx, p, model.ActionUpdate, r.entity, r.id(rec), rec)
	return nil
}

func (r *records[T]) remove(ctx context.Context, p access.Principal, id uuid.UUID) error {
	if _, err := r.load(ctx, p, id); err != nil {
		return err
	}
	if err := r.store.Delete(ctx, id); err != nil {
		return storeError(err, r.notFound, "")
	}
	r.audit.record(ctx, p, model.ActionDelete, r.entity, id, nil)
	return nil
}

// reload re-reads rec so associations and timestamps reflect the stored state.
func (r *records[T]) reload(ctx context.Context, id uuid.UUID) (*T, error) {
	rec, err := r.store.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, r.notFound, "")
	}
	return rec, nil
}

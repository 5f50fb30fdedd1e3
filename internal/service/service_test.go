package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"obrafin/internal/access"
	"obrafin/internal/database"
	"obrafin/internal/model"
	"obrafin/internal/repository"
	"obrafin/pkg/apperror"
	"obrafin/pkg/token"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordedEvent struct {
	name    string
	payload any
}

type eventRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *eventRecorder) Publish(event string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{name: event, payload: payload})
}

func (r *eventRecorder) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.name == name {
			n++
		}
	}
	return n
}

type sheetCall struct {
	spreadsheetID string
	target        string
	values        [][]any
}

type fakeSheets struct {
	tabs   []string
	writes []sheetCall
	err    error
}

func (f *fakeSheets) AddSheet(_ context.Context, spreadsheetID, title string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.tabs = append(f.tabs, title)
	return int64(len(f.tabs)), nil
}

func (f *fakeSheets) UpdateValues(_ context.Context, spreadsheetID, rng string, values [][]any) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.writes = append(f.writes, sheetCall{spreadsheetID: spreadsheetID, target: rng, values: values})
	cells := 0
	for _, row := range values {
		cells += len(row)
	}
	return int64(cells), nil
}

type fixture struct {
	db        *gorm.DB
	users     repository.UserRepository
	auditRepo repository.AuditRepository
	events    *eventRecorder
	sheets    *fakeSheets

	userSvc   UserService
	auditSvc  AuditService
	obras     ObraService
	materials MaterialService
	labor     LaborService
	contracts ContractService
	misc      MiscExpenseService
	incomes   IncomeService
	ledger    *ledgerService
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenMemory("service_test_" + t.Name())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	users := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	obraStore := repository.NewStore[model.Obra](db)
	resolver := access.NewResolver(users)
	events := &eventRecorder{}
	sheets := &fakeSheets{}

	contractStore := repository.NewStore[model.Contract](db,
		repository.WithPreload("Pagamentos"),
		repository.WithOrder("inicio_contrato DESC"),
		repository.WithCascade("Pagamentos"),
	)
	miscRepo := repository.NewMiscExpenseRepository(db)
	collections := LedgerCollections{
		Gastos:             repository.NewLedgerCollection(db, func(e *model.LedgerExpense, id uuid.UUID) { e.LedgerID = id }),
		Contratos:          repository.NewLedgerCollection(db, func(e *model.LedgerContract, id uuid.UUID) { e.LedgerID = id }),
		Cronograma:         repository.NewLedgerCollection(db, func(e *model.ScheduleStage, id uuid.UUID) { e.LedgerID = id }),
		PagamentosSemanais: repository.NewLedgerCollection(db, func(e *model.WeeklyPayment, id uuid.UUID) { e.LedgerID = id }),
	}

	return &fixture{
		db:        db,
		users:     users,
		auditRepo: auditRepo,
		events:    events,
		sheets:    sheets,
		userSvc:   NewUserService(users, obraStore, token.New("test-secret", time.Hour), auditRepo),
		auditSvc:  NewAuditService(auditRepo),
		obras:     NewObraService(obraStore, repository.NewTransactionManager(db), users, resolver, auditRepo),
		materials: NewMaterialService(repository.NewStore[model.Material](db, repository.WithOrder("data DESC")), resolver, auditRepo),
		labor:     NewLaborService(repository.NewStore[model.Labor](db, repository.WithOrder("inicio_contrato DESC")), resolver, auditRepo),
		contracts: NewContractService(contractStore, repository.NewInstallmentStore[model.Contract](db, model.OwnerContract), resolver, auditRepo),
		misc:      NewMiscExpenseService(miscRepo, repository.NewInstallmentStore[model.MiscExpense](db, model.OwnerMisc), resolver, auditRepo),
		incomes:   NewIncomeService(repository.NewStore[model.Income](db, repository.WithOrder("data DESC")), resolver, auditRepo),
		ledger:    NewLedgerService(repository.NewLedgerRepository(db), collections, auditRepo, events, sheets).(*ledgerService),
	}
}

// principal stores a user with the given role and returns it as a caller.
func (f *fixture) principal(t *testing.T, role string) access.Principal {
	t.Helper()
	u := &model.User{
		Nome:     role + " user",
		Email:    uuid.NewString() + "@obrafin.test",
		Password: "unused",
		Role:     role,
		Approved: role != model.RolePending,
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return access.Principal{UserID: u.ID, Role: role}
}

func (f *fixture) grant(t *testing.T, p access.Principal, obraIDs ...uuid.UUID) {
	t.Helper()
	require.NoError(t, f.users.SetAllowedProjects(context.Background(), p.UserID, obraIDs))
}

func (f *fixture) obra(t *testing.T, nome string) model.Obra {
	t.Helper()
	admin := access.Principal{Role: model.RoleAdmin}
	o, err := f.obras.Create(context.Background(), admin, CreateObraRequest{
		Nome:                nome,
		Endereco:            "Av. Central, 100",
		Cliente:             "Construtora " + nome,
		ValorContrato:       dec(250000),
		DataInicio:          "2024-01-15",
		DataPrevisaoTermino: "2024-12-20",
	})
	require.NoError(t, err)
	return o
}

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func str(s string) *string { return &s }

func num(n int) *int { return &n }

func assertKind(t *testing.T, err error, kind apperror.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperror.KindOf(err), "unexpected error: %v", err)
}

package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"obrafin/internal/access"
	"obrafin/internal/finance"
	"obrafin/internal/model"
	"obrafin/internal/repository"
	"obrafin/pkg/apperror"
	"obrafin/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger events pushed to websocket clients.
const (
	EventLedgerUpdated = "pagamento.atualizado"
	EventWeeklyPaid    = "pagamento_semanal.efetuado"
)

const (
	ledgerNotFound  = "Pagamento não encontrado"
	elementNotFound = "Item não encontrado"
)

// Publisher fans ledger events out to subscribers.
type Publisher interface {
	Publish(event string, payload any)
}

// SheetWriter is the part of the spreadsheet client the ledger export needs.
type SheetWriter interface {
	AddSheet(ctx context.Context, spreadsheetID, title string) (int64, error)
	UpdateValues(ctx context.Context, spreadsheetID, rng string, values [][]any) (int64, error)
}

type CreateLedgerRequest struct {
	Obra               LedgerProjectRequest    `json:"obra"`
	Gastos             []LedgerExpenseRequest  `json:"gastos" binding:"omitempty,dive"`
	Contratos          []LedgerContractRequest `json:"contratos" binding:"omitempty,dive"`
	Cronograma         []ScheduleStageRequest  `json:"cronograma" binding:"omitempty,dive"`
	PagamentosSemanais []WeeklyPaymentRequest  `json:"pagamentosSemanais" binding:"omitempty,dive"`
}

type ExportWeeklyRequest struct {
	SpreadsheetID string `json:"spreadsheetId" binding:"required"`
	Aba           string `json:"aba"`
}

type ExportResult struct {
	SpreadsheetID string `json:"spreadsheetId"`
	Aba           string `json:"aba"`
	Linhas        int    `json:"linhas"`
}

// LedgerView is a ledger with its derived metrics.
type LedgerView struct {
	model.Ledger
	TotalGasto          decimal.Decimal `json:"totalGasto"`
	SaldoRestante       decimal.Decimal `json:"saldoRestante"`
	StatusOrcamento     string          `json:"statusOrcamento"`
	PercentualConcluido int             `json:"percentualConcluido"`
	DiasRestantes       int             `json:"diasRestantes"`
}

type WeeklyReport struct {
	Pagamentos []finance.WeeklyEntry `json:"pagamentos"`
	Resumo     finance.WeeklySummary `json:"resumo"`
}

type LedgerService interface {
	Create(ctx context.Context, p access.Principal, req CreateLedgerRequest) (LedgerView, error)
	Get(ctx context.Context, id uuid.UUID) (LedgerView, error)
	List(ctx context.Context, q repository.Query) (pagination.Page[LedgerView], error)
	UpdateObra(ctx context.Context, p access.Principal, id uuid.UUID, req UpdateLedgerProjectRequest) (LedgerView, error)
	Delete(ctx context.Context, p access.Principal, id uuid.UUID) error

	AddExpense(ctx context.Context, p access.Principal, id uuid.UUID, req LedgerExpenseRequest) (LedgerView, error)
	UpdateExpense(ctx context.Context, p access.Principal, id, elemID uuid.UUID, req UpdateLedgerExpenseRequest) (LedgerView, error)
	RemoveExpense(ctx context.Context, p access.Principal, id, elemID uuid.UUID) (LedgerView, error)

	AddContract(ctx context.Context, p access.Principal, id uuid.UUID, req LedgerContractRequest) (LedgerView, error)
	UpdateContract(ctx context.Context, p access.Principal, id, elemID uuid.UUID, req UpdateLedgerContractRequest) (LedgerView, error)
	RemoveContract(ctx context.Context, p access.Principal, id, elemID uuid.UUID) (LedgerView, error)

	AddStage(ctx context.Context, p access.Principal, id uuid.UUID, req ScheduleStageRequest) (LedgerView, error)
	UpdateStage(ctx context.Context, p access.Principal, id, elemID uuid.UUID, req UpdateScheduleStageRequest) (LedgerView, error)
	RemoveStage(ctx context.Context, p access.Principal, id, elemID uuid.UUID) (LedgerView, error)

	AddWeeklyPayment(ctx context.Context, p access.Principal, id uuid.UUID, req WeeklyPaymentRequest) (LedgerView, error)
	UpdateWeeklyPayment(ctx context.Context, p access.Principal, id, elemID uuid.UUID, req UpdateWeeklyPaymentRequest) (LedgerView, error)
	RemoveWeeklyPayment(ctx context.Context, p access.Principal, id, elemID uuid.UUID) (LedgerView, error)
	MarkWeeklyPaid(ctx context.Context, p access.Principal, id, elemID uuid.UUID) (LedgerView, error)

	FinancialReport(ctx context.Context, id uuid.UUID) (finance.Report, error)
	PendingWeekly(ctx context.Context) ([]finance.WeeklyEntry, error)
	WeeklyReport(ctx context.Context, f finance.WeeklyFilter) (WeeklyReport, error)
	ExportWeekly(ctx context.Context, p access.Principal, id uuid.UUID, req ExportWeeklyRequest) (ExportResult, error)
}

// LedgerCollections are the four nested stores of a ledger.
type LedgerCollections struct {
	Gastos             repository.NestedStore[model.LedgerExpense]
	Contratos          repository.NestedStore[model.LedgerContract]
	Cronograma         repository.NestedStore[model.ScheduleStage]
	PagamentosSemanais repository.NestedStore[model.WeeklyPayment]
}

type ledgerService struct {
	repo   repository.LedgerRepository
	nested LedgerCollections
	audit  *auditor
	events Publisher
	sheets SheetWriter
	now    func() time.Time
}

// NewLedgerService wires the ledger aggregate. events and sheets may be nil.
func NewLedgerService(repo repository.LedgerRepository, nested LedgerCollections, audit repository.AuditRepository, events Publisher, sheets SheetWriter) LedgerService {
	return &ledgerService{
		repo:   repo,
		nested: nested,
		audit:  &auditor{repo: audit},
		events: events,
		sheets: sheets,
		now:    time.Now,
	}
}

func (s *ledgerService) view(l model.Ledger) LedgerView {
	if l.Gastos == nil {
		l.Gastos = []model.LedgerExpense{}
	}
	if l.Contratos == nil {
		l.Contratos = []model.LedgerContract{}
	}
	if l.Cronograma == nil {
		l.Cronograma = []model.ScheduleStage{}
	}
	if l.PagamentosSemanais == nil {
		l.PagamentosSemanais = []model.WeeklyPayment{}
	}
	return LedgerView{
		Ledger:              l,
		TotalGasto:          finance.TotalSpent(l),
		SaldoRestante:       finance.RemainingBalance(l),
		StatusOrcamento:     finance.BudgetStatus(l),
		PercentualConcluido: finance.ScheduleCompletion(l),
		DiasRestantes:       finance.DaysRemaining(l, s.now()),
	}
}

func (s *ledgerService) publish(event string, payload any) {
	if s.events != nil {
		s.events.Publish(event, payload)
	}
}

func (s *ledgerService) load(ctx context.Context, id uuid.UUID) (*model.Ledger, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, ledgerNotFound, "")
	}
	return l, nil
}

// changed reloads the ledger after a mutation and notifies subscribers.
func (s *ledgerService) changed(ctx context.Context, id uuid.UUID) (LedgerView, error) {
	l, err := s.load(ctx, id)
	if err != nil {
		return LedgerView{}, err
	}
	v := s.view(*l)
	s.publish(EventLedgerUpdated, map[string]any{"_id": l.ID, "obra": l.Obra.Nome})
	return v, nil
}

func indexed(collection string, i int) string {
	return collection + "[" + strconv.Itoa(i) + "]."
}

func (s *ledgerService) Create(ctx context.Context, p access.Principal, req CreateLedgerRequest) (LedgerView, error) {
	now := s.now()
	v := problems{}
	l := model.Ledger{
		Obra:      buildLedgerProject(v, req.Obra),
		CriadoPor: p.Actor(),
	}
	for i, g := range req.Gastos {
		l.Gastos = append(l.Gastos, buildLedgerExpense(v, indexed("gastos", i), g, now))
	}
	for i, c := range req.Contratos {
		l.Contratos = append(l.Contratos, buildLedgerContract(v, indexed("contratos", i), c))
	}
	for i, st := range req.Cronograma {
		l.Cronograma = append(l.Cronograma, buildScheduleStage(v, indexed("cronograma", i), st))
	}
	for i, w := range req.PagamentosSemanais {
		l.PagamentosSemanais = append(l.PagamentosSemanais, buildWeeklyPayment(v, indexed("pagamentosSemanais", i), w, now))
	}
	if err := v.err(); err != nil {
		return LedgerView{}, err
	}

	if err := s.repo.Create(ctx, &l); err != nil {
		return LedgerView{}, fmt.Errorf("create ledger: %w", err)
	}
	s.audit.record(ctx, p, model.ActionCreate, "pagamento", l.ID, l.Obra)
	return s.changed(ctx, l.ID)
}

func (s *ledgerService) Get(ctx context.Context, id uuid.UUID) (LedgerView, error) {
	l, err := s.load(ctx, id)
	if err != nil {
		return LedgerView{}, err
	}
	return s.view(*l), nil
}

func (s *ledgerService) List(ctx context.Context, q repository.Query) (pagination.Page[LedgerView], error) {
	ledgers, total, err := s.repo.List(ctx, q)
	if err != nil {
		return pagination.Page[LedgerView]{}, fmt.Errorf("list ledgers: %w", err)
	}
	return pagination.Map(pagination.NewPage(ledgers, q.Page, total), s.view), nil
}

func (s *ledgerService) UpdateObra(ctx context.Context, p access.Principal, id uuid.UUID, req UpdateLedgerProjectRequest) (LedgerView, error) {
	l, err := s.load(ctx, id)
	if err != nil {
		return LedgerView{}, err
	}

	v := problems{}
	applyLedgerProject(v, &l.Obra, req)
	if err := v.err(); err != nil {
		return LedgerView{}, err
	}
	if err := s.repo.Update(ctx, l); err != nil {
		return LedgerView{}, fmt.Errorf("update ledger: %w", err)
	}
	s.audit.record(ctx, p, model.ActionUpdate, "pagamento", id, l.Obra)
	return s.changed(ctx, id)
}

func (s *ledgerService) Delete(ctx context.Context, p access.Principal, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err, ledgerNotFound, "")
	}
	s.audit.record(ctx, p, model.ActionDelete, "pagamento", id, nil)
	s.publish(EventLedgerUpdated, map[string]any{"_id": id, "removido": true})
	return nil
}

// appended finishes an Append on one of the collections.
func (s *ledgerService) appended(ctx context.Context, p access.Principal, id uuid.UUID, err error, collection string, elem any) (LedgerView, error) {
	if err != nil {
		return LedgerView{}, storeError(err, ledgerNotFound, elementNotFound)
	}
	s.audit.record(ctx, p, model.ActionAppendElement, "pagamento", id, map[string]any{collection: elem})
	return s.changed(ctx, id)
}

func (s *ledgerService) updated(ctx context.Context, p access.Principal, id uuid.UUID, err error, collection string, elem any) (LedgerView, error) {
	if err != nil {
		return LedgerView{}, storeError(err, ledgerNotFound, elementNotFound)
	}
	s.audit.record(ctx, p, model.ActionUpdateElement, "pagamento", id, map[string]any{collection: elem})
	return s.changed(ctx, id)
}

func (s *ledgerService) removed(ctx context.Context, p access.Principal, id, elemID uuid.UUID, err error, collection string) (LedgerView, error) {
	if err != nil {
		return LedgerView{}, storeError(err, ledgerNotFound, elementNotFound)
	}
	s.audit.record(ctx, p, model.ActionRemoveElement, "pagamento", id, map[string]string{"colecao": collection, "itemId": elemID.String()})
	return s.changed(ctx, id)
}

func (s *ledgerService) AddExpense(ctx context.Context, p access.Principal, id uuid.UUID, req LedgerExpenseRequest) (LedgerView, error) {
	v := problems{}
	g := buildLedgerExpense(v, "", req, s.now())
	if err := v.err(); err != nil {
		return LedgerView{}, err
	}
	err := s.nested.Gastos.Append(ctx, id, &g)
	return s.appended(ctx, p, id, err, "gastos", g)
}

func (s *ledgerService) UpdateExpense(ctx context.Context, p access.Principal, id, elemID uuid.UUID, req UpdateLedgerExpenseRequest) (LedgerView, error) {
	g, err := s.nested.Gastos.Update(ctx, id, elemID, func(g *model.LedgerExpense) error {
		v := problems{}
		applyLedgerExpense(v, g, req)
		return v.err()
	})
	return s.updated(ctx, p, id, err, "gastos", g)
}

func (s *ledgerService) RemoveExpense(ctx context.Context, p access.Principal, id, elemID uuid.UUID) (LedgerView, error) {
	err := s.nested.Gastos.Remove(ctx, id, elemID)
	return s.removed(ctx, p, id, elemID, err, "gastos")
}

func (s *ledgerService) AddContract(ctx context.Context, p access.Principal, id uuid.UUID, req LedgerContractRequest) (LedgerView, error) {
	v := problems{}
	c := buildLedgerContract(v, "", req)
	if err := v.err(); err != nil {
		return LedgerView{}, err
	}
	err := s.nested.Contratos.Append(ctx, id, &c)
	return s.appended(ctx, p, id, err, "contratos", c)
}

func (s *ledgerService) UpdateContract(ctx context.Context, p access.Principal, id, elemID uuid.UUID, req UpdateLedgerContractRequest) (LedgerView, error) {
	c, err := s.nested.Contratos.Update(ctx, id, elemID, func(c *model.LedgerContract) error {
		v := problems{}
		applyLedgerContract(v, c, req)
		return v.err()
	})
	return s.updated(ctx, p, id, err, "contratos", c)
}

func (s *ledgerService) RemoveContract(ctx context.Context, p access.Principal, id, elemID uuid.UUID) (LedgerView, error) {
	err := s.nested.Contratos.Remove(ctx, id, elemID)
	return s.removed(ctx, p, id, elemID, err, "contratos")
}

func (s *ledgerService) AddStage(ctx context.Context, p access.Principal, id uuid.UUID, req ScheduleStageRequest) (LedgerView, error) {
	v := problems{}
	st := buildScheduleStage(v, "", req)
	if err := v.err(); err != nil {
		return LedgerView{}, err
	}
	err := s.nested.Cronograma.Append(ctx, id, &st)
	return s.appended(ctx, p, id, err, "cronograma", st)
}

func (s *ledgerService) UpdateStage(ctx context.Context, p access.Principal, id, elemID uuid.UUID, req UpdateScheduleStageRequest) (LedgerView, error) {
	st, err := s.nested.Cronograma.Update(ctx, id, elemID, func(st *model.ScheduleStage) error {
		v := problems{}
		applyScheduleStage(v, st, req)
		return v.err()
	})
	return s.updated(ctx, p, id, err, "cronograma", st)
}

func (s *ledgerService) RemoveStage(ctx context.Context, p access.Principal, id, elemID uuid.UUID) (LedgerView, error) {
	err := s.nested.Cronograma.Remove(ctx, id, elemID)
	return s.removed(ctx, p, id, elemID, err, "cronograma")
}

func (s *ledgerService) AddWeeklyPayment(ctx context.Context, p access.Principal, id uuid.UUID, req WeeklyPaymentRequest) (LedgerView, error) {
	v := problems{}
	w := buildWeeklyPayment(v, "", req, s.now())
	if err := v.err(); err != nil {
		return LedgerView{}, err
	}
	err := s.nested.PagamentosSemanais.Append(ctx, id, &w)
	return s.appended(ctx, p, id, err, "pagamentosSemanais", w)
}

func (s *ledgerService) UpdateWeeklyPayment(ctx context.Context, p access.Principal, id, elemID uuid.UUID, req UpdateWeeklyPaymentRequest) (LedgerView, error) {
	wasPaid := false
	w, err := s.nested.PagamentosSemanais.Update(ctx, id, elemID, func(w *model.WeeklyPayment) error {
		wasPaid = w.Status == model.WeeklyPaid
		v := problems{}
		applyWeeklyPayment(v, w, req, s.now())
		return v.err()
	})
	if err == nil && !wasPaid && w.Status == model.WeeklyPaid {
		s.publish(EventWeeklyPaid, weeklyEvent(id, w))
	}
	return s.updated(ctx, p, id, err, "pagamentosSemanais", w)
}

func (s *ledgerService) RemoveWeeklyPayment(ctx context.Context, p access.Principal, id, elemID uuid.UUID) (LedgerView, error) {
	err := s.nested.PagamentosSemanais.Remove(ctx, id, elemID)
	return s.removed(ctx, p, id, elemID, err, "pagamentosSemanais")
}

// MarkWeeklyPaid moves a weekly payment to paid. Repeating it keeps the
// original payment date.
func (s *ledgerService) MarkWeeklyPaid(ctx context.Context, p access.Principal, id, elemID uuid.UUID) (LedgerView, error) {
	wasPaid := false
	w, err := s.nested.PagamentosSemanais.Update(ctx, id, elemID, func(w *model.WeeklyPayment) error {
		wasPaid = w.Status == model.WeeklyPaid
		w.Status = model.WeeklyPaid
		markPaid(w, s.now())
		return nil
	})
	if err != nil {
		return LedgerView{}, storeError(err, ledgerNotFound, elementNotFound)
	}
	if !wasPaid {
		s.audit.record(ctx, p, model.ActionMarkWeeklyPaid, "pagamento", id, w)
		s.publish(EventWeeklyPaid, weeklyEvent(id, w))
	}
	return s.changed(ctx, id)
}

func weeklyEvent(ledgerID uuid.UUID, w *model.WeeklyPayment) map[string]any {
	return map[string]any{
		"obraId":                ledgerID,
		"pagamentoId":           w.ID,
		"totalReceber":          w.TotalReceber,
		"dataPagamentoEfetuado": w.DataPagamentoEfetuado,
	}
}

func (s *ledgerService) FinancialReport(ctx context.Context, id uuid.UUID) (finance.Report, error) {
	l, err := s.load(ctx, id)
	if err != nil {
		return finance.Report{}, err
	}
	return finance.BuildReport(*l, s.now()), nil
}

func (s *ledgerService) PendingWeekly(ctx context.Context) ([]finance.WeeklyEntry, error) {
	f := finance.WeeklyFilter{Status: model.WeeklyToPay}
	ledgers, err := s.repo.WithWeeklyPayments(ctx, repository.WeeklyCriteria{Status: f.Status})
	if err != nil {
		return nil, fmt.Errorf("pending weekly payments: %w", err)
	}
	return finance.CollectWeekly(ledgers, f), nil
}

func (s *ledgerService) WeeklyReport(ctx context.Context, f finance.WeeklyFilter) (WeeklyReport, error) {
	v := problems{}
	if f.Semana != 0 {
		v.between("semana", &f.Semana, 1, 53)
	}
	if f.Ano != 0 {
		v.between("ano", &f.Ano, 2020, 2050)
	}
	if f.Status != "" {
		v.oneOf("status", &f.Status, weeklyStatuses)
	}
	if err := v.err(); err != nil {
		return WeeklyReport{}, err
	}

	ledgers, err := s.repo.WithWeeklyPayments(ctx, repository.WeeklyCriteria{Semana: f.Semana, Ano: f.Ano, Status: f.Status})
	if err != nil {
		return WeeklyReport{}, fmt.Errorf("weekly report: %w", err)
	}
	entries := finance.CollectWeekly(ledgers, f)
	return WeeklyReport{Pagamentos: entries, Resumo: finance.SummarizeWeekly(entries, f)}, nil
}

var weeklyHeader = []any{"Semana", "Ano", "Nome", "Função", "Valor a pagar", "VA", "VT", "Total", "Status", "Vencimento", "Pago em"}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// weeklyRows renders a ledger's weekly payments as sheet rows, header first.
func weeklyRows(l model.Ledger) [][]any {
	rows := make([][]any, 0, len(l.PagamentosSemanais)+1)
	rows = append(rows, weeklyHeader)
	for _, w := range l.PagamentosSemanais {
		rows = append(rows, []any{
			w.Semana,
			w.Ano,
			w.Nome,
			w.Funcao,
			w.ValorPagar.StringFixed(2),
			w.ValorVA.StringFixed(2),
			w.ValorVT.StringFixed(2),
			finance.WeeklyTotal(w.ValorPagar, w.ValorVA, w.ValorVT).StringFixed(2),
			w.Status,
			formatDate(w.DataVencimento),
			formatDate(w.DataPagamentoEfetuado),
		})
	}
	return rows
}

func (s *ledgerService) ExportWeekly(ctx context.Context, p access.Principal, id uuid.UUID, req ExportWeeklyRequest) (ExportResult, error) {
	if s.sheets == nil {
		return ExportResult{}, apperror.Integration("integração com Google não configurada", nil)
	}
	sheetID := strings.TrimSpace(req.SpreadsheetID)
	if sheetID == "" {
		return ExportResult{}, apperror.Field("spreadsheetId", "is required")
	}

	l, err := s.load(ctx, id)
	if err != nil {
		return ExportResult{}, err
	}

	tab := strings.TrimSpace(req.Aba)
	if tab == "" {
		tab = "Pagamentos " + s.now().UTC().Format("2006-01-02 15h04")
	}
	if _, err := s.sheets.AddSheet(ctx, sheetID, tab); err != nil {
		return ExportResult{}, err
	}
	rows := weeklyRows(*l)
	if _, err := s.sheets.UpdateValues(ctx, sheetID, "'"+tab+"'!A1", rows); err != nil {
		return ExportResult{}, err
	}

	s.audit.record(ctx, p, model.ActionExportSpreadsheet, "pagamento", id, map[string]string{"spreadsheetId": sheetID, "aba": tab})
	return ExportResult{SpreadsheetID: sheetID, Aba: tab, Linhas: len(rows) - 1}, nil
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"obrafin/internal/finance"
	"obrafin/internal/model"
	"obrafin/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ledgerRequest() CreateLedgerRequest {
	return CreateLedgerRequest{
		Obra: LedgerProjectRequest{
			Nome:             "Condomínio Horizonte",
			DataInicio:       "2024-01-01",
			DataFinalEntrega: "2024-12-31",
			Orcamento:        dec(10000),
			Status:           model.LedgerInProgress,
		},
		Gastos: []LedgerExpenseRequest{
			{Descricao: "Cimento", Categoria: "material", Valor: dec(2000), Data: str("2024-02-01")},
		},
		Contratos: []LedgerContractRequest{
			{NomeContratado: "Hidráulica Silva", Servico: "encanamento", ValorTotal: dec(3000), DataInicio: "2024-02-10"},
		},
		Cronograma: []ScheduleStageRequest{
			{Etapa: "Fundação", DataInicio: "2024-01-10", Status: model.StageDone, PercentualConcluido: num(100)},
			{Etapa: "Estrutura", DataInicio: "2024-03-01", Status: model.StageInProgress, PercentualConcluido: num(50)},
		},
	}
}

func weeklyRequest(semana int) WeeklyPaymentRequest {
	return WeeklyPaymentRequest{
		Nome:       "Marcos",
		Funcao:     "Servente",
		Semana:     num(semana),
		Ano:        num(2024),
		ValorPagar: dec(700),
		ValorVA:    dec(80),
		ValorVT:    dec(40),
	}
}

func TestLedgerService_CreateDerivesMetrics(t *testing.T) {
	f := setupFixture(t)
	admin := f.principal(t, model.RoleAdmin)
	f.ledger.now = func() time.Time { return time.Date(2024, time.December, 21, 12, 0, 0, 0, time.UTC) }

	view, err := f.ledger.Create(context.Background(), admin, ledgerRequest())
	require.NoError(t, err)

	assert.Len(t, view.Gastos, 1)
	assert.Len(t, view.Contratos, 1)
	assert.Len(t, view.Cronograma, 2)
	assert.NotNil(t, view.PagamentosSemanais)
	assert.True(t, view.TotalGasto.Equal(decimal.NewFromInt(5000)), view.TotalGasto.String())
	assert.True(t, view.SaldoRestante.Equal(decimal.NewFromInt(5000)), view.SaldoRestante.String())
	assert.Equal(t, 50, view.PercentualConcluido)
	assert.Equal(t, 10, view.DiasRestantes)
	assert.Equal(t, 1, f.events.count(EventLedgerUpdated))
}

func TestLedgerService_CreateValidatesNestedItems(t *testing.T) {
	f := setupFixture(t)
	admin := f.principal(t, model.RoleAdmin)

	req := ledgerRequest()
	req.PagamentosSemanais = []WeeklyPaymentRequest{weeklyRequest(60)}
	_, err := f.ledger.Create(context.Background(), admin, req)
	assertKind(t, err, apperror.KindValidation)
	assert.Contains(t, apperror.FieldsOf(err), "pagamentosSemanais[0].semana")
}

func TestLedgerService_ElementLifecycle(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	admin := f.principal(t, model.RoleAdmin)

	view, err := f.ledger.Create(ctx, admin, ledgerRequest())
	require.NoError(t, err)
	id := view.ID

	view, err = f.ledger.AddExpense(ctx, admin, id, LedgerExpenseRequest{Descricao: "Areia", Categoria: "material", Valor: dec(500)})
	require.NoError(t, err)
	require.Len(t, view.Gastos, 2)
	areia := view.Gastos[1]
	assert.False(t, areia.Data.IsZero(), "missing date defaults to now")

	view, err = f.ledger.UpdateExpense(ctx, admin, id, areia.ID, UpdateLedgerExpenseRequest{Valor: dec(650)})
	require.NoError(t, err)
	assert.True(t, view.Gastos[1].Valor.Equal(decimal.NewFromInt(650)))
	assert.True(t, view.TotalGasto.Equal(decimal.NewFromInt(5650)))

	_, err = f.ledger.UpdateExpense(ctx, admin, id, uuid.New(), UpdateLedgerExpenseRequest{Valor: dec(1)})
	assertKind(t, err, apperror.KindElementNotFound)

	_, err = f.ledger.RemoveStage(ctx, admin, uuid.New(), uuid.New())
	assertKind(t, err, apperror.KindNotFound)

	view, err = f.ledger.RemoveExpense(ctx, admin, id, areia.ID)
	require.NoError(t, err)
	assert.Len(t, view.Gastos, 1)

	_, err = f.ledger.RemoveExpense(ctx, admin, id, areia.ID)
	assertKind(t, err, apperror.KindElementNotFound)

	view, err = f.ledger.UpdateObra(ctx, admin, id, UpdateLedgerProjectRequest{Orcamento: dec(4000)})
	require.NoError(t, err)
	assert.Equal(t, finance.BudgetStatus(view.Ledger), view.StatusOrcamento)
	assert.True(t, view.SaldoRestante.IsNegative())

	_, err = f.ledger.UpdateObra(ctx, admin, id, UpdateLedgerProjectRequest{Status: str("arquivada")})
	assertKind(t, err, apperror.KindValidation)
}

func TestLedgerService_MarkWeeklyPaidIsIdempotent(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	admin := f.principal(t, model.RoleAdmin)
	firstPaid := time.Date(2024, time.March, 8, 17, 30, 0, 0, time.UTC)
	f.ledger.now = func() time.Time { return firstPaid }

	req := ledgerRequest()
	req.PagamentosSemanais = []WeeklyPaymentRequest{weeklyRequest(10)}
	view, err := f.ledger.Create(ctx, admin, req)
	require.NoError(t, err)
	w := view.PagamentosSemanais[0]
	assert.Equal(t, model.WeeklyToPay, w.Status)
	assert.True(t, w.TotalReceber.Equal(decimal.NewFromInt(820)))
	assert.Nil(t, w.DataPagamentoEfetuado)

	view, err = f.ledger.MarkWeeklyPaid(ctx, admin, view.ID, w.ID)
	require.NoError(t, err)
	paid := view.PagamentosSemanais[0]
	assert.Equal(t, model.WeeklyPaid, paid.Status)
	require.NotNil(t, paid.DataPagamentoEfetuado)
	assert.True(t, paid.DataPagamentoEfetuado.Equal(firstPaid))

	f.ledger.now = func() time.Time { return firstPaid.Add(72 * time.Hour) }
	view, err = f.ledger.MarkWeeklyPaid(ctx, admin, view.ID, w.ID)
	require.NoError(t, err)
	again := view.PagamentosSemanais[0]
	require.NotNil(t, again.DataPagamentoEfetuado)
	assert.True(t, again.DataPagamentoEfetuado.Equal(firstPaid))

	assert.Equal(t, 1, f.events.count(EventWeeklyPaid))

	_, err = f.ledger.MarkWeeklyPaid(ctx, admin, view.ID, uuid.New())
	assertKind(t, err, apperror.KindElementNotFound)
}

func TestLedgerService_WeeklyReports(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	admin := f.principal(t, model.RoleAdmin)

	req := ledgerRequest()
	req.PagamentosSemanais = []WeeklyPaymentRequest{weeklyRequest(10), weeklyRequest(11)}
	view, err := f.ledger.Create(ctx, admin, req)
	require.NoError(t, err)
	_, err = f.ledger.MarkWeeklyPaid(ctx, admin, view.ID, view.PagamentosSemanais[1].ID)
	require.NoError(t, err)

	pending, err := f.ledger.PendingWeekly(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, view.ID, pending[0].ObraID)
	assert.Equal(t, "Condomínio Horizonte", pending[0].ObraNome)
	assert.Equal(t, 10, pending[0].PagamentoSemanal.Semana)

	report, err := f.ledger.WeeklyReport(ctx, finance.WeeklyFilter{Ano: 2024})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Resumo.TotalPagamentos)
	assert.True(t, report.Resumo.ValorTotal.Equal(decimal.NewFromInt(1640)))

	_, err = f.ledger.WeeklyReport(ctx, finance.WeeklyFilter{Semana: 54})
	assertKind(t, err, apperror.KindValidation)
}

func TestLedgerService_ExportWeekly(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	admin := f.principal(t, model.RoleAdmin)
	f.ledger.now = func() time.Time { return time.Date(2024, time.March, 8, 9, 5, 0, 0, time.UTC) }

	req := ledgerRequest()
	req.PagamentosSemanais = []WeeklyPaymentRequest{weeklyRequest(10), weeklyRequest(11)}
	view, err := f.ledger.Create(ctx, admin, req)
	require.NoError(t, err)

	res, err := f.ledger.ExportWeekly(ctx, admin, view.ID, ExportWeeklyRequest{SpreadsheetID: "sheet-9"})
	require.NoError(t, err)
	assert.Equal(t, "Pagamentos 2024-03-08 09h05", res.Aba)
	assert.Equal(t, 2, res.Linhas)

	require.Equal(t, []string{res.Aba}, f.sheets.tabs)
	require.Len(t, f.sheets.writes, 1)
	write := f.sheets.writes[0]
	assert.Equal(t, "sheet-9", write.spreadsheetID)
	assert.Equal(t, "'Pagamentos 2024-03-08 09h05'!A1", write.target)
	require.Len(t, write.values, 3)
	assert.Equal(t, weeklyHeader, write.values[0])
	assert.Equal(t, "820.00", write.values[1][7])

	_, err = f.ledger.ExportWeekly(ctx, admin, view.ID, ExportWeeklyRequest{SpreadsheetID: " "})
	assertKind(t, err, apperror.KindValidation)

	_, err = f.ledger.ExportWeekly(ctx, admin, uuid.New(), ExportWeeklyRequest{SpreadsheetID: "sheet-9"})
	assertKind(t, err, apperror.KindNotFound)

	f.sheets.err = apperror.Integration("Google Sheets indisponível", errors.New("quota"))
	_, err = f.ledger.ExportWeekly(ctx, admin, view.ID, ExportWeeklyRequest{SpreadsheetID: "sheet-9", Aba: "Março"})
	assertKind(t, err, apperror.KindIntegration)
}

func TestLedgerService_ExportWithoutSheets(t *testing.T) {
	f := setupFixture(t)
	admin := f.principal(t, model.RoleAdmin)
	f.ledger.sheets = nil

	_, err := f.ledger.ExportWeekly(context.Background(), admin, uuid.New(), ExportWeeklyRequest{SpreadsheetID: "x"})
	assertKind(t, err, apperror.KindIntegration)
}

func TestLedgerService_FinancialReportAndDelete(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	admin := f.principal(t, model.RoleAdmin)

	view, err := f.ledger.Create(ctx, admin, ledgerRequest())
	require.NoError(t, err)

	_, err = f.ledger.FinancialReport(ctx, view.ID)
	require.NoError(t, err)

	require.NoError(t, f.ledger.Delete(ctx, admin, view.ID))
	_, err = f.ledger.Get(ctx, view.ID)
	assertKind(t, err, apperror.KindNotFound)
	assertKind(t, f.ledger.Delete(ctx, admin, view.ID), apperror.KindNotFound)
}

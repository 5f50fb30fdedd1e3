package service

import (
	"context"
	"strings"
	"testing"

	"obrafin/internal/access"
	"obrafin/internal/finance"
	"obrafin/internal/model"
	"obrafin/internal/repository"
	"obrafin/pkg/apperror"
	"obrafin/pkg/pagination"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func firstPage() repository.Query {
	return repository.NewQuery(pagination.New("", ""))
}

func materialRequest(obraID string) CreateMaterialRequest {
	req := CreateMaterialRequest{
		NumeroNota:     "NF-1001",
		Data:           "2024-03-10",
		LocalCompra:    "Casa do Construtor",
		Valor:          dec(1500),
		Solicitante:    "João",
		FormaPagamento: model.MethodTransfer,
	}
	if obraID != "" {
		req.ObraID = str(obraID)
	}
	return req
}

func TestObraService_CreatorIsGranted(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	member := f.principal(t, model.RoleUser)
	stranger := f.principal(t, model.RoleUser)

	o, err := f.obras.Create(ctx, member, CreateObraRequest{
		Nome:                "Casa Verde",
		Endereco:            "Rua das Flores, 12",
		Cliente:             "Família Souza",
		ValorContrato:       dec(180000),
		DataInicio:          "2024-02-01",
		DataPrevisaoTermino: "2024-10-01",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ObraPlanning, o.Status)
	require.NotNil(t, o.CriadoPor)
	assert.Equal(t, member.UserID, *o.CriadoPor)

	ids, err := f.users.AllowedProjectIDs(ctx, member.UserID)
	require.NoError(t, err)
	assert.Contains(t, ids, o.ID)

	got, err := f.obras.Get(ctx, member, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "Casa Verde", got.Nome)

	_, err = f.obras.Get(ctx, stranger, o.ID)
	assertKind(t, err, apperror.KindForbidden)

	page, err := f.obras.List(ctx, stranger, firstPage())
	require.NoError(t, err)
	assert.Empty(t, page.Records)
	assert.Zero(t, page.Pagination.Total)
}

func TestObraService_RejectsInvertedDates(t *testing.T) {
	f := setupFixture(t)
	admin := f.principal(t, model.RoleAdmin)

	_, err := f.obras.Create(context.Background(), admin, CreateObraRequest{
		Nome:                "Ponte",
		Endereco:            "Rodovia 1",
		Cliente:             "Prefeitura",
		ValorContrato:       dec(1000),
		DataInicio:          "2024-05-01",
		DataPrevisaoTermino: "2024-06-01",
		DataTermino:         str("2024-04-01"),
	})
	assertKind(t, err, apperror.KindValidation)
	assert.Contains(t, apperror.FieldsOf(err), "dataTermino")
}

func TestObraService_SpreadsheetLink(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	admin := f.principal(t, model.RoleAdmin)
	o := f.obra(t, "Hospital")

	_, err := f.obras.GetBySpreadsheet(ctx, admin, "sheet-1")
	assertKind(t, err, apperror.KindNotFound)

	_, err = f.obras.LinkSpreadsheet(ctx, admin, o.ID, LinkSpreadsheetRequest{SpreadsheetID: " sheet-1 "})
	require.NoError(t, err)

	got, err := f.obras.GetBySpreadsheet(ctx, admin, "sheet-1")
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	_, err = f.obras.LinkSpreadsheet(ctx, admin, o.ID, LinkSpreadsheetRequest{SpreadsheetID: "  "})
	assertKind(t, err, apperror.KindValidation)
}

func TestMaterialService_RoundTrip(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	member := f.principal(t, model.RoleUser)
	o := f.obra(t, "Residencial")
	f.grant(t, member, o.ID)

	created, err := f.materials.Create(ctx, member, materialRequest(o.ID.String()))
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPending, created.StatusPagamento)

	got, err := f.materials.Get(ctx, member, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "NF-1001", got.NumeroNota)
	assert.True(t, got.Valor.Equal(decimal.NewFromInt(1500)))

	updated, err := f.materials.Update(ctx, member, created.ID, UpdateMaterialRequest{
		StatusPagamento: str(model.PaymentDone),
		Valor:           dec(1600),
	})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentDone, updated.StatusPagamento)
	assert.True(t, updated.Valor.Equal(decimal.NewFromInt(1600)))

	require.NoError(t, f.materials.Delete(ctx, member, created.ID))
	_, err = f.materials.Get(ctx, member, created.ID)
	assertKind(t, err, apperror.KindNotFound)
}

func TestMaterialService_ScopesByAllowList(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	admin := f.principal(t, model.RoleAdmin)
	member := f.principal(t, model.RoleUser)
	mine, theirs := f.obra(t, "Minha"), f.obra(t, "Alheia")
	f.grant(t, member, mine.ID)

	_, err := f.materials.Create(ctx, admin, materialRequest(mine.ID.String()))
	require.NoError(t, err)
	foreign, err := f.materials.Create(ctx, admin, materialRequest(theirs.ID.String()))
	require.NoError(t, err)
	unbound, err := f.materials.Create(ctx, admin, materialRequest(""))
	require.NoError(t, err)

	page, err := f.materials.List(ctx, member, firstPage())
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	assert.Equal(t, mine.ID, *page.Records[0].ObraID)

	all, err := f.materials.List(ctx, admin, firstPage())
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Pagination.Total)

	_, err = f.materials.Get(ctx, member, foreign.ID)
	assertKind(t, err, apperror.KindForbidden)
	_, err = f.materials.Get(ctx, member, unbound.ID)
	assertKind(t, err, apperror.KindForbidden)

	// moving a record to a project outside the allow-list is refused
	_, err = f.materials.Create(ctx, member, materialRequest(theirs.ID.String()))
	assertKind(t, err, apperror.KindForbidden)
}

func TestMaterialService_EmptyAllowListSeesNothing(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	admin := f.principal(t, model.RoleAdmin)
	member := f.principal(t, model.RoleUser)
	o := f.obra(t, "Qualquer")

	_, err := f.materials.Create(ctx, admin, materialRequest(o.ID.String()))
	require.NoError(t, err)

	page, err := f.materials.List(ctx, member, firstPage())
	require.NoError(t, err)
	assert.NotNil(t, page.Records)
	assert.Empty(t, page.Records)
	assert.Equal(t, pagination.Meta{Page: 1, Limit: 10, Total: 0, Pages: 0}, page.Pagination)
}

func TestMaterialService_PixRequiresKey(t *testing.T) {
	f := setupFixture(t)
	admin := f.principal(t, model.RoleAdmin)

	req := materialRequest("")
	req.FormaPagamento = model.MethodPix
	_, err := f.materials.Create(context.Background(), admin, req)
	assertKind(t, err, apperror.KindValidation)
	assert.Contains(t, apperror.FieldsOf(err), "chavePixBoleto")

	req.Valor = dec(-1)
	req.ChavePixBoleto = "chave@pix"
	_, err = f.materials.Create(context.Background(), admin, req)
	assertKind(t, err, apperror.KindValidation)
	assert.Contains(t, apperror.FieldsOf(err), "valor")
}

func TestLaborService_RejectsEndBeforeStart(t *testing.T) {
	f := setupFixture(t)
	admin := f.principal(t, model.RoleAdmin)

	_, err := f.labor.Create(context.Background(), admin, CreateLaborRequest{
		Nome:            "Carlos",
		Funcao:          "Pedreiro",
		TipoContratacao: model.HireDaily,
		Valor:           dec(200),
		InicioContrato:  "2024-06-01",
		FimContrato:     str("2024-05-01"),
		DiaPagamento:    5,
		FormaPagamento:  model.MethodTransfer,
	})
	assertKind(t, err, apperror.KindValidation)
	assert.Contains(t, apperror.FieldsOf(err), "fimContrato")
}

func contractRequest(contratoID string) CreateContractRequest {
	return CreateContractRequest{
		ContratoID:     contratoID,
		Loja:           "Elétrica Norte",
		Valor:          dec(12000),
		ValorInicial:   dec(12000),
		InicioContrato: "2024-04-01",
	}
}

func TestContractService_ContractIDs(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	admin := f.principal(t, model.RoleAdmin)

	generated, err := f.contracts.Create(ctx, admin, contractRequest(""))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(generated.ContratoID, "CONT-"), generated.ContratoID)
	assert.True(t, strings.HasSuffix(generated.ContratoID, "-0001"), generated.ContratoID)

	_, err = f.contracts.Create(ctx, admin, contractRequest("OBRA-42"))
	require.NoError(t, err)
	_, err = f.contracts.Create(ctx, admin, contractRequest("OBRA-42"))
	assertKind(t, err, apperror.KindConflict)

	_, err = f.contracts.Update(ctx, admin, generated.ID, UpdateContractRequest{ContratoID: str("OBRA-42")})
	assertKind(t, err, apperror.KindConflict)

	// keeping its own id is not a conflict
	_, err = f.contracts.Update(ctx, admin, generated.ID, UpdateContractRequest{ContratoID: str(generated.ContratoID)})
	require.NoError(t, err)
}

func TestContractService_Installments(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	admin := f.principal(t, model.RoleAdmin)

	c, err := f.contracts.Create(ctx, admin, contractRequest(""))
	require.NoError(t, err)
	assert.Equal(t, finance.InstallmentsNone, c.StatusGeralPagamentos)
	assert.Empty(t, c.Pagamentos)

	c, err = f.contracts.AddPayment(ctx, admin, c.ID, InstallmentRequest{
		Valor:           dec(4000),
		TipoPagamento:   "PIX",
		DataPagamento:   "2024-04-10",
		StatusPagamento: model.PaymentDone,
	})
	require.NoError(t, err)
	require.Len(t, c.Pagamentos, 1)
	assert.Equal(t, model.MethodPix, c.Pagamentos[0].TipoPagamento)

	c, err = f.contracts.AddPayment(ctx, admin, c.ID, InstallmentRequest{
		Valor:         dec(4000),
		TipoPagamento: model.InstallmentMonthly,
		DataPagamento: "2024-05-10",
	})
	require.NoError(t, err)
	require.Len(t, c.Pagamentos, 2)
	assert.True(t, c.ValorTotalPagamentos.Equal(decimal.NewFromInt(8000)))
	assert.Equal(t, finance.InstallmentsPending, c.StatusGeralPagamentos)

	second := c.Pagamentos[1].ID
	c, err = f.contracts.UpdatePayment(ctx, admin, c.ID, second, UpdateInstallmentRequest{StatusPagamento: str(model.PaymentDone)})
	require.NoError(t, err)
	assert.Equal(t, finance.InstallmentsAllPaid, c.StatusGeralPagamentos)

	inst, err := f.contracts.GetPayment(ctx, admin, c.ID, second)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentDone, inst.StatusPagamento)

	_, err = f.contracts.AddPayment(ctx, admin, c.ID, InstallmentRequest{
		Valor:         dec(10),
		TipoPagamento: "bitcoin",
		DataPagamento: "2024-05-10",
	})
	assertKind(t, err, apperror.KindValidation)

	_, err = f.contracts.RemovePayment(ctx, admin, c.ID, c.ID)
	assertKind(t, err, apperror.KindElementNotFound)

	c, err = f.contracts.RemovePayment(ctx, admin, c.ID, second)
	require.NoError(t, err)
	assert.Len(t, c.Pagamentos, 1)
}

func TestMiscExpenseService_CategoryReport(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	admin := f.principal(t, model.RoleAdmin)
	member := f.principal(t, model.RoleUser)
	o := f.obra(t, "Loja")

	for _, e := range []struct {
		categoria string
		valor     int64
	}{{"frete", 120}, {"frete", 80}, {"taxas", 50}} {
		_, err := f.misc.Create(ctx, admin, CreateMiscExpenseRequest{
			Descricao:      "gasto " + e.categoria,
			Valor:          dec(e.valor),
			Data:           "2024-07-01",
			CategoriaLivre: e.categoria,
			FormaPagamento: model.MethodMoney,
			ObraID:         str(o.ID.String()),
		})
		require.NoError(t, err)
	}

	report, err := f.misc.CategoryReport(ctx, admin, firstPage())
	require.NoError(t, err)
	require.Len(t, report.Categorias, 2)
	assert.Equal(t, "frete", report.Categorias[0].Categoria)
	assert.True(t, report.Total.Equal(decimal.NewFromInt(250)))

	empty, err := f.misc.CategoryReport(ctx, member, firstPage())
	require.NoError(t, err)
	assert.Empty(t, empty.Categorias)
	assert.True(t, empty.Total.IsZero())
}

func TestIncomeService_DefaultsToReceived(t *testing.T) {
	f := setupFixture(t)
	admin := f.principal(t, model.RoleAdmin)

	in, err := f.incomes.Create(context.Background(), admin, CreateIncomeRequest{
		Nome:  "Medição 1",
		Valor: dec(30000),
		Data:  "2024-08-05",
	})
	require.NoError(t, err)
	assert.Equal(t, model.IncomeReceived, in.StatusRecebimento)
}

func TestAuditService_RecordsActor(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	admin := f.principal(t, model.RoleAdmin)

	m, err := f.materials.Create(ctx, admin, materialRequest(""))
	require.NoError(t, err)
	require.NoError(t, f.materials.Delete(ctx, admin, m.ID))

	q, err := repository.ParseQuery(
		[]repository.FilterField{repository.Exact("entityId", "entity_id")},
		func(k string) string {
			if k == "entityId" {
				return m.ID.String()
			}
			return ""
		},
		pagination.New("", ""),
	)
	require.NoError(t, err)

	page, err := f.auditSvc.GetAuditLogs(ctx, q)
	require.NoError(t, err)
	require.Len(t, page.Records, 2)

	actions := []string{page.Records[0].Action, page.Records[1].Action}
	assert.ElementsMatch(t, []string{model.ActionCreate, model.ActionDelete}, actions)
	for _, entry := range page.Records {
		assert.Equal(t, "material", entry.Entity)
		assert.Equal(t, admin.UserID.String(), entry.UserID)
		assert.Equal(t, model.RoleAdmin+" user", entry.Nome)
	}
}

func TestResolverAdminSeesUnboundRecords(t *testing.T) {
	f := setupFixture(t)
	scope, err := access.NewResolver(f.users).Resolve(context.Background(), access.Principal{Role: model.RoleAdmin})
	require.NoError(t, err)
	assert.True(t, scope.Allows(nil))
}

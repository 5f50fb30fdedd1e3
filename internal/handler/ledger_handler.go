package handler

import (
	"context"
	"strconv"
	"strings"

	"obrafin/internal/access"
	"obrafin/internal/finance"
	"obrafin/internal/repository"
	"obrafin/internal/service"
	"obrafin/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var ledgerFilters = []repository.FilterField{
	repository.Exact("status", "obra_status"),
	repository.Contains("nome", "obra_nome"),
}

type LedgerHandler struct {
	ledgerService service.LedgerService
}

func NewLedgerHandler(ledgerService service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// RegisterRoutes binds /pagamentos and its nested collections
func (h *LedgerHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/pagamentos", members())
	{
		group.GET("", h.ListLedgers)
		group.POST("", h.CreateLedger)
		group.GET("/semanais/pendentes", h.GetPendingWeekly)
		group.GET("/relatorio-semanais", h.GetWeeklyReport)
		group.GET("/:id", h.GetLedger)
		group.PUT("/:id/obra", h.UpdateLedgerObra)
		group.DELETE("/:id", h.DeleteLedger)
		group.GET("/:id/relatorio-financeiro", h.GetFinancialReport)
		group.POST("/:id/exportar", h.ExportWeekly)

		group.POST("/:id/gastos", h.AddExpense)
		group.PUT("/:id/gastos/:elementId", h.UpdateExpense)
		group.DELETE("/:id/gastos/:elementId", h.RemoveExpense)

		group.POST("/:id/contratos", h.AddContract)
		group.PUT("/:id/contratos/:elementId", h.UpdateContract)
		group.DELETE("/:id/contratos/:elementId", h.RemoveContract)

		group.POST("/:id/cronograma", h.AddStage)
		group.PUT("/:id/cronograma/:elementId", h.UpdateStage)
		group.DELETE("/:id/cronograma/:elementId", h.RemoveStage)

		group.POST("/:id/pagamentos-semanais", h.AddWeeklyPayment)
		group.PUT("/:id/pagamentos-semanais/:elementId", h.UpdateWeeklyPayment)
		group.DELETE("/:id/pagamentos-semanais/:elementId", h.RemoveWeeklyPayment)
		group.PATCH("/:id/pagamentos-semanais/:elementId/efetuado", h.MarkWeeklyPaid)
	}
}

// CreateLedger handles POST /pagamentos
// @Summary      Create a ledger
// @Description  Creates the financial container of a project, optionally with initial collections
// @Tags         pagamentos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateLedgerRequest  true  "Ledger"
// @Success      201      {object}  response.Response{data=service.LedgerView}
// @Failure      400      {object}  response.Response
// @Router       /api/pagamentos [post]
func (h *LedgerHandler) CreateLedger(c *gin.Context) {
	createWith(c, h.ledgerService.Create)
}

// ListLedgers handles GET /pagamentos
// @Summary      List ledgers
// @Tags         pagamentos
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Project status"
// @Param        nome    query     string  false  "Project name substring"
// @Param        page    query     int     false  "Page number"
// @Param        limit   query     int     false  "Page size"
// @Success      200     {object}  response.Response{data=pagination.Page[service.LedgerView]}
// @Router       /api/pagamentos [get]
func (h *LedgerHandler) ListLedgers(c *gin.Context) {
	q, err := parseQuery(c, ledgerFilters)
	if err != nil {
		fail(c, err)
		return
	}
	page, err := h.ledgerService.List(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, page)
}

// GetLedger handles GET /pagamentos/:id
// @Summary      Get a ledger with its derived metrics
// @Tags         pagamentos
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Ledger ID"
// @Success      200  {object}  response.Response{data=service.LedgerView}
// @Failure      404  {object}  response.Response
// @Router       /api/pagamentos/{id} [get]
func (h *LedgerHandler) GetLedger(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	view, err := h.ledgerService.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, view)
}

// UpdateLedgerObra handles PUT /pagamentos/:id/obra
// @Summary      Update the project summary of a ledger
// @Tags         pagamentos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                               true  "Ledger ID"
// @Param        payload  body      service.UpdateLedgerProjectRequest  true  "Changed fields"
// @Success      200      {object}  response.Response{data=service.LedgerView}
// @Router       /api/pagamentos/{id}/obra [put]
func (h *LedgerHandler) UpdateLedgerObra(c *gin.Context) {
	updateWith(c, h.ledgerService.UpdateObra)
}

// DeleteLedger handles DELETE /pagamentos/:id
// @Summary      Delete a ledger and its collections
// @Tags         pagamentos
// @Security     BearerAuth
// @Param        id   path      string  true  "Ledger ID"
// @Success      200  {object}  response.Response
// @Router       /api/pagamentos/{id} [delete]
func (h *LedgerHandler) DeleteLedger(c *gin.Context) {
	deleteWith(c, h.ledgerService.Delete)
}

// GetFinancialReport handles GET /pagamentos/:id/relatorio-financeiro
// @Summary      Financial report of a ledger
// @Tags         pagamentos
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Ledger ID"
// @Success      200  {object}  response.Response{data=finance.Report}
// @Failure      404  {object}  response.Response
// @Router       /api/pagamentos/{id}/relatorio-financeiro [get]
func (h *LedgerHandler) GetFinancialReport(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	report, err := h.ledgerService.FinancialReport(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, report)
}

// GetPendingWeekly handles GET /pagamentos/semanais/pendentes
// @Summary      Weekly payments still to pay
// @Description  Every weekly payment with status "pagar", annotated with its ledger id and project name
// @Tags         pagamentos
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]finance.WeeklyEntry}
// @Router       /api/pagamentos/semanais/pendentes [get]
func (h *LedgerHandler) GetPendingWeekly(c *gin.Context) {
	entries, err := h.ledgerService.PendingWeekly(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, entries)
}

// GetWeeklyReport handles GET /pagamentos/relatorio-semanais
// @Summary      Weekly payments report
// @Tags         pagamentos
// @Produce      json
// @Security     BearerAuth
// @Param        semana  query     int     false  "ISO week (1-53)"
// @Param        ano     query     int     false  "Year"
// @Param        status  query     string  false  "pagar, pagamento efetuado or cancelado"
// @Success      200     {object}  response.Response{data=service.WeeklyReport}
// @Failure      400     {object}  response.Response
// @Router       /api/pagamentos/relatorio-semanais [get]
func (h *LedgerHandler) GetWeeklyReport(c *gin.Context) {
	filter, err := weeklyFilter(c)
	if err != nil {
		fail(c, err)
		return
	}
	report, err := h.ledgerService.WeeklyReport(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, report)
}

func weeklyFilter(c *gin.Context) (finance.WeeklyFilter, error) {
	invalid := map[string]string{}
	number := func(param string) int {
		raw := strings.TrimSpace(c.Query(param))
		if raw == "" {
			return 0
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			invalid[param] = "must be a number"
		}
		return n
	}

	f := finance.WeeklyFilter{
		Semana: number("semana"),
		Ano:    number("ano"),
		Status: strings.TrimSpace(c.Query("status")),
	}
	if len(invalid) > 0 {
		return finance.WeeklyFilter{}, apperror.Validation(invalid)
	}
	return f, nil
}

// ExportWeekly handles POST /pagamentos/:id/exportar
// @Summary      Export weekly payments to a spreadsheet
// @Description  Adds a tab to the spreadsheet and writes the ledger's weekly payments into it
// @Tags         pagamentos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                       true  "Ledger ID"
// @Param        payload  body      service.ExportWeeklyRequest  true  "Target spreadsheet"
// @Success      200      {object}  response.Response{data=service.ExportResult}
// @Failure      502      {object}  response.Response
// @Router       /api/pagamentos/{id}/exportar [post]
func (h *LedgerHandler) ExportWeekly(c *gin.Context) {
	updateWith(c, h.ledgerService.ExportWeekly)
}

// Nested collections share the same shape: parse both ids, bind, call.

func addElement[Req any](c *gin.Context, fn func(context.Context, access.Principal, uuid.UUID, Req) (service.LedgerView, error)) {
	id, err := parseID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	var req Req
	if err := bind(c, &req); err != nil {
		fail(c, err)
		return
	}
	view, err := fn(c.Request.Context(), principal(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, view)
}

func elementIDs(c *gin.Context) (uuid.UUID, uuid.UUID, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	elemID, err := parseID(c, "elementId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return id, elemID, nil
}

func updateElement[Req any](c *gin.Context, fn func(context.Context, access.Principal, uuid.UUID, uuid.UUID, Req) (service.LedgerView, error)) {
	id, elemID, err := elementIDs(c)
	if err != nil {
		fail(c, err)
		return
	}
	var req Req
	if err := bind(c, &req); err != nil {
		fail(c, err)
		return
	}
	view, err := fn(c.Request.Context(), principal(c), id, elemID, req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, view)
}

func changeElement(c *gin.Context, fn func(context.Context, access.Principal, uuid.UUID, uuid.UUID) (service.LedgerView, error)) {
	id, elemID, err := elementIDs(c)
	if err != nil {
		fail(c, err)
		return
	}
	view, err := fn(c.Request.Context(), principal(c), id, elemID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, view)
}

// AddExpense handles POST /pagamentos/:id/gastos
// @Summary      Append an expense to a ledger
// @Tags         pagamentos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Ledger ID"
// @Param        payload  body      service.LedgerExpenseRequest  true  "Expense"
// @Success      201      {object}  response.Response{data=service.LedgerView}
// @Router       /api/pagamentos/{id}/gastos [post]
func (h *LedgerHandler) AddExpense(c *gin.Context) {
	addElement(c, h.ledgerService.AddExpense)
}

func (h *LedgerHandler) UpdateExpense(c *gin.Context) {
	updateElement(c, h.ledgerService.UpdateExpense)
}

func (h *LedgerHandler) RemoveExpense(c *gin.Context) {
	changeElement(c, h.ledgerService.RemoveExpense)
}

// AddContract handles POST /pagamentos/:id/contratos
// @Summary      Append a contract to a ledger
// @Tags         pagamentos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                         true  "Ledger ID"
// @Param        payload  body      service.LedgerContractRequest  true  "Contract"
// @Success      201      {object}  response.Response{data=service.LedgerView}
// @Router       /api/pagamentos/{id}/contratos [post]
func (h *LedgerHandler) AddContract(c *gin.Context) {
	addElement(c, h.ledgerService.AddContract)
}

func (h *LedgerHandler) UpdateContract(c *gin.Context) {
	updateElement(c, h.ledgerService.UpdateContract)
}

func (h *LedgerHandler) RemoveContract(c *gin.Context) {
	changeElement(c, h.ledgerService.RemoveContract)
}

// AddStage handles POST /pagamentos/:id/cronograma
// @Summary      Append a schedule stage to a ledger
// @Tags         pagamentos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Ledger ID"
// @Param        payload  body      service.ScheduleStageRequest  true  "Stage"
// @Success      201      {object}  response.Response{data=service.LedgerView}
// @Router       /api/pagamentos/{id}/cronograma [post]
func (h *LedgerHandler) AddStage(c *gin.Context) {
	addElement(c, h.ledgerService.AddStage)
}

func (h *LedgerHandler) UpdateStage(c *gin.Context) {
	updateElement(c, h.ledgerService.UpdateStage)
}

func (h *LedgerHandler) RemoveStage(c *gin.Context) {
	changeElement(c, h.ledgerService.RemoveStage)
}

// AddWeeklyPayment handles POST /pagamentos/:id/pagamentos-semanais
// @Summary      Append a weekly payment to a ledger
// @Tags         pagamentos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Ledger ID"
// @Param        payload  body      service.WeeklyPaymentRequest  true  "Weekly payment"
// @Success      201      {object}  response.Response{data=service.LedgerView}
// @Router       /api/pagamentos/{id}/pagamentos-semanais [post]
func (h *LedgerHandler) AddWeeklyPayment(c *gin.Context) {
	addElement(c, h.ledgerService.AddWeeklyPayment)
}

func (h *LedgerHandler) UpdateWeeklyPayment(c *gin.Context) {
	updateElement(c, h.ledgerService.UpdateWeeklyPayment)
}

func (h *LedgerHandler) RemoveWeeklyPayment(c *gin.Context) {
	changeElement(c, h.ledgerService.RemoveWeeklyPayment)
}

// MarkWeeklyPaid handles PATCH /pagamentos/:id/pagamentos-semanais/:elementId/efetuado
// @Summary      Mark a weekly payment as paid
// @Description  Idempotent: repeating the call keeps the first payment date
// @Tags         pagamentos
// @Produce      json
// @Security     BearerAuth
// @Param        id         path      string  true  "Ledger ID"
// @Param        elementId  path      string  true  "Weekly payment ID"
// @Success      200        {object}  response.Response{data=service.LedgerView}
// @Failure      404        {object}  response.Response
// @Router       /api/pagamentos/{id}/pagamentos-semanais/{elementId}/efetuado [patch]
func (h *LedgerHandler) MarkWeeklyPaid(c *gin.Context) {
	changeElement(c, h.ledgerService.MarkWeeklyPaid)
}

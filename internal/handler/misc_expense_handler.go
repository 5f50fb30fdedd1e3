package handler

import (
	"obrafin/internal/repository"
	"obrafin/internal/service"

	"github.com/gin-gonic/gin"
)

var miscExpenseFilters = []repository.FilterField{
	repository.ID("obraId", "obra_id"),
	repository.Exact("formaPagamento", "forma_pagamento"),
	repository.Contains("categoriaLivre", "categoria_livre"),
	repository.Contains("fornecedor", "fornecedor"),
	repository.DateRange("data"),
}

var categoryReportFilters = []repository.FilterField{
	repository.ID("obraId", "obra_id"),
	repository.DateRange("data"),
}

type MiscExpenseHandler struct {
	miscExpenseService service.MiscExpenseService
}

func NewMiscExpenseHandler(miscExpenseService service.MiscExpenseService) *MiscExpenseHandler {
	return &MiscExpenseHandler{miscExpenseService: miscExpenseService}
}

func (h *MiscExpenseHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/outros-gastos", members())
	{
		group.GET("", h.ListMiscExpenses)
		group.POST("", h.CreateMiscExpense)
		group.GET("/relatorio/categorias", h.GetCategoryReport)
		group.GET("/:id", h.GetMiscExpense)
		group.PUT("/:id", h.UpdateMiscExpense)
		group.DELETE("/:id", h.DeleteMiscExpense)
	}
	installmentRoutes[service.MiscExpenseView]{svc: h.miscExpenseService}.register(group)
}

// CreateMiscExpense handles POST /outros-gastos
// @Summary      Register a miscellaneous expense
// @Tags         outros-gastos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateMiscExpenseRequest  true  "Expense"
// @Success      201      {object}  response.Response{data=service.MiscExpenseView}
// @Failure      400      {object}  response.Response
// @Router       /api/outros-gastos [post]
func (h *MiscExpenseHandler) CreateMiscExpense(c *gin.Context) {
	createWith(c, h.miscExpenseService.Create)
}

// ListMiscExpenses handles GET /outros-gastos
// @Summary      List miscellaneous expenses
// @Tags         outros-gastos
// @Produce      json
// @Security     BearerAuth
// @Param        obraId          query     string  false  "Project ID"
// @Param        formaPagamento  query     string  false  "Payment method"
// @Param        categoriaLivre  query     string  false  "Category substring"
// @Param        fornecedor      query     string  false  "Supplier substring"
// @Param        dataInicio      query     string  false  "From date"
// @Param        dataFim         query     string  false  "To date"
// @Success      200             {object}  response.Response{data=pagination.Page[service.MiscExpenseView]}
// @Router       /api/outros-gastos [get]
func (h *MiscExpenseHandler) ListMiscExpenses(c *gin.Context) {
	listWith(c, miscExpenseFilters, h.miscExpenseService.List)
}

// GetCategoryReport handles GET /outros-gastos/relatorio/categorias
// @Summary      Spend per category
// @Description  Totals of the visible miscellaneous expenses grouped by category, largest first
// @Tags         outros-gastos
// @Produce      json
// @Security     BearerAuth
// @Param        obraId      query     string  false  "Project ID"
// @Param        dataInicio  query     string  false  "From date"
// @Param        dataFim     query     string  false  "To date"
// @Success      200         {object}  response.Response{data=service.CategoryReport}
// @Router       /api/outros-gastos/relatorio/categorias [get]
func (h *MiscExpenseHandler) GetCategoryReport(c *gin.Context) {
	q, err := parseQuery(c, categoryReportFilters)
	if err != nil {
		fail(c, err)
		return
	}
	report, err := h.miscExpenseService.CategoryReport(c.Request.Context(), principal(c), q)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, report)
}

func (h *MiscExpenseHandler) GetMiscExpense(c *gin.Context) {
	getWith(c, h.miscExpenseService.Get)
}

func (h *MiscExpenseHandler) UpdateMiscExpense(c *gin.Context) {
	updateWith(c, h.miscExpenseService.Update)
}

func (h *MiscExpenseHandler) DeleteMiscExpense(c *gin.Context) {
	deleteWith(c, h.miscExpenseService.Delete)
}

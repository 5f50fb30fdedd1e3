package handler

import (
	"obrafin/internal/repository"
	"obrafin/internal/service"

	"github.com/gin-gonic/gin"
)

var incomeFilters = []repository.FilterField{
	repository.ID("obraId", "obra_id"),
	repository.Exact("statusRecebimento", "status_recebimento"),
	repository.Contains("nome", "nome"),
	repository.DateRange("data"),
}

type IncomeHandler struct {
	incomeService service.IncomeService
}

func NewIncomeHandler(incomeService service.IncomeService) *IncomeHandler {
	return &IncomeHandler{incomeService: incomeService}
}

func (h *IncomeHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/entradas", members())
	{
		group.GET("", h.ListIncome)
		group.POST("", h.CreateIncome)
		group.GET("/:id", h.GetIncome)
		group.PUT("/:id", h.UpdateIncome)
		group.DELETE("/:id", h.DeleteIncome)
	}
}

// CreateIncome handles POST /entradas
// @Summary      Register an income entry
// @Tags         entradas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateIncomeRequest  true  "Income"
// @Success      201      {object}  response.Response{data=model.Income}
// @Router       /api/entradas [post]
func (h *IncomeHandler) CreateIncome(c *gin.Context) {
	createWith(c, h.incomeService.Create)
}

// ListIncome handles GET /entradas
// @Summary      List income entries
// @Tags         entradas
// @Produce      json
// @Security     BearerAuth
// @Param        obraId             query     string  false  "Project ID"
// @Param        statusRecebimento  query     string  false  "Receipt status"
// @Param        nome               query     string  false  "Name substring"
// @Param        dataInicio         query     string  false  "From date"
// @Param        dataFim            query     string  false  "To date"
// @Success      200                {object}  response.Response{data=pagination.Page[model.Income]}
// @Router       /api/entradas [get]
func (h *IncomeHandler) ListIncome(c *gin.Context) {
	listWith(c, incomeFilters, h.incomeService.List)
}

// GetIncome handles GET /entradas/:id
func (h *IncomeHandler) GetIncome(c *gin.Context) {
	getWith(c, h.incomeService.Get)
}

// UpdateIncome handles PUT /entradas/:id
func (h *IncomeHandler) UpdateIncome(c *gin.Context) {
	updateWith(c, h.incomeService.Update)
}

func (h *IncomeHandler) DeleteIncome(c *gin.Context) {
	deleteWith(c, h.incomeService.Delete)
}

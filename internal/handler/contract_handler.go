package handler

import (
	"obrafin/internal/repository"
	"obrafin/internal/service"

	"github.com/gin-gonic/gin"
)

var contractFilters = []repository.FilterField{
	repository.ID("obraId", "obra_id"),
	repository.Exact("status", "status"),
	repository.Contains("loja", "loja"),
	repository.Contains("contratoId", "contrato_id"),
	repository.DateRange("inicio_contrato"),
}

type ContractHandler struct {
	contractService service.ContractService
}

func NewContractHandler(contractService service.ContractService) *ContractHandler {
	return &ContractHandler{contractService: contractService}
}

func (h *ContractHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/contratos", members())
	{
		group.GET("", h.ListContracts)
		group.POST("", h.CreateContract)
		group.GET("/:id", h.GetContract)
		group.PUT("/:id", h.UpdateContract)
		group.DELETE("/:id", h.DeleteContract)
	}
	installmentRoutes[service.ContractView]{svc: h.contractService}.register(group)
}

// CreateContract handles POST /contratos
// @Summary      Register a supplier contract
// @Description  A missing contratoId is generated; a duplicate one is rejected with 409
// @Tags         contratos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateContractRequest  true  "Contract"
// @Success      201      {object}  response.Response{data=service.ContractView}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/contratos [post]
func (h *ContractHandler) CreateContract(c *gin.Context) {
	createWith(c, h.contractService.Create)
}

// ListContracts handles GET /contratos
// @Summary      List supplier contracts
// @Tags         contratos
// @Produce      json
// @Security     BearerAuth
// @Param        obraId      query     string  false  "Project ID"
// @Param        status      query     string  false  "ativo, concluido or cancelado"
// @Param        loja        query     string  false  "Supplier substring"
// @Param        contratoId  query     string  false  "Contract code substring"
// @Param        dataInicio  query     string  false  "Start from"
// @Param        dataFim     query     string  false  "Start to"
// @Success      200         {object}  response.Response{data=pagination.Page[service.ContractView]}
// @Router       /api/contratos [get]
func (h *ContractHandler) ListContracts(c *gin.Context) {
	listWith(c, contractFilters, h.contractService.List)
}

// GetContract handles GET /contratos/:id
// @Summary      Get a supplier contract
// @Tags         contratos
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Contract ID"
// @Success      200  {object}  response.Response{data=service.ContractView}
// @Failure      404  {object}  response.Response
// @Router       /api/contratos/{id} [get]
func (h *ContractHandler) GetContract(c *gin.Context) {
	getWith(c, h.contractService.Get)
}

// UpdateContract handles PUT /contratos/:id
// @Summary      Update a supplier contract
// @Tags         contratos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                         true  "Contract ID"
// @Param        payload  body      service.UpdateContractRequest  true  "Changed fields"
// @Success      200      {object}  response.Response{data=service.ContractView}
// @Router       /api/contratos/{id} [put]
func (h *ContractHandler) UpdateContract(c *gin.Context) {
	updateWith(c, h.contractService.Update)
}

// DeleteContract handles DELETE /contratos/:id
// @Summary      Delete a supplier contract
// @Tags         contratos
// @Security     BearerAuth
// @Param        id   path      string  true  "Contract ID"
// @Success      200  {object}  response.Response
// @Router       /api/contratos/{id} [delete]
func (h *ContractHandler) DeleteContract(c *gin.Context) {
	deleteWith(c, h.contractService.Delete)
}

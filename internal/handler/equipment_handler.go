package handler

import (
	"obrafin/internal/repository"
	"obrafin/internal/service"

	"github.com/gin-gonic/gin"
)

var equipmentFilters = []repository.FilterField{
	repository.ID("obraId", "obra_id"),
	repository.Exact("tipoContratacao", "tipo_contratacao"),
	repository.Exact("formaPagamento", "forma_pagamento"),
	repository.Contains("item", "item"),
	repository.Contains("localCompra", "local_compra"),
	repository.DateRange("data"),
}

type EquipmentHandler struct {
	equipmentService service.EquipmentService
}

func NewEquipmentHandler(equipmentService service.EquipmentService) *EquipmentHandler {
	return &EquipmentHandler{equipmentService: equipmentService}
}

func (h *EquipmentHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/equipamentos", members())
	{
		group.GET("", h.ListEquipment)
		group.POST("", h.CreateEquipment)
		group.GET("/:id", h.GetEquipment)
		group.PUT("/:id", h.UpdateEquipment)
		group.DELETE("/:id", h.DeleteEquipment)
	}
	installmentRoutes[service.EquipmentView]{svc: h.equipmentService}.register(group)
}

// CreateEquipment handles POST /equipamentos
// @Summary      Register equipment
// @Description  Registers a purchase, rental, leasing or loan of equipment
// @Tags         equipamentos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateEquipmentRequest  true  "Equipment"
// @Success      201      {object}  response.Response{data=service.EquipmentView}
// @Failure      400      {object}  response.Response
// @Router       /api/equipamentos [post]
func (h *EquipmentHandler) CreateEquipment(c *gin.Context) {
	createWith(c, h.equipmentService.Create)
}

// ListEquipment handles GET /equipamentos
// @Summary      List equipment
// @Tags         equipamentos
// @Produce      json
// @Security     BearerAuth
// @Param        obraId           query     string  false  "Project ID"
// @Param        tipoContratacao  query     string  false  "compra, aluguel, leasing or emprestimo"
// @Param        formaPagamento   query     string  false  "Payment method"
// @Param        item             query     string  false  "Item substring"
// @Param        localCompra      query     string  false  "Store substring"
// @Param        dataInicio       query     string  false  "From date"
// @Param        dataFim          query     string  false  "To date"
// @Success      200              {object}  response.Response{data=pagination.Page[service.EquipmentView]}
// @Router       /api/equipamentos [get]
func (h *EquipmentHandler) ListEquipment(c *gin.Context) {
	listWith(c, equipmentFilters, h.equipmentService.List)
}

// GetEquipment handles GET /equipamentos/:id
// @Summary      Get equipment
// @Tags         equipamentos
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Equipment ID"
// @Success      200  {object}  response.Response{data=service.EquipmentView}
// @Failure      404  {object}  response.Response
// @Router       /api/equipamentos/{id} [get]
func (h *EquipmentHandler) GetEquipment(c *gin.Context) {
	getWith(c, h.equipmentService.Get)
}

// UpdateEquipment handles PUT /equipamentos/:id
// @Summary      Update equipment
// @Tags         equipamentos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                          true  "Equipment ID"
// @Param        payload  body      service.UpdateEquipmentRequest  true  "Changed fields"
// @Success      200      {object}  response.Response{data=service.EquipmentView}
// @Router       /api/equipamentos/{id} [put]
func (h *EquipmentHandler) UpdateEquipment(c *gin.Context) {
	updateWith(c, h.equipmentService.Update)
}

// DeleteEquipment handles DELETE /equipamentos/:id
func (h *EquipmentHandler) DeleteEquipment(c *gin.Context) {
	deleteWith(c, h.equipmentService.Delete)
}

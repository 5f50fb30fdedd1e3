package handler

import (
	"obrafin/internal/repository"
	"obrafin/internal/service"

	"github.com/gin-gonic/gin"
)

var materialFilters = []repository.FilterField{
	repository.ID("obraId", "obra_id"),
	repository.Exact("statusPagamento", "status_pagamento"),
	repository.Exact("formaPagamento", "forma_pagamento"),
	repository.Contains("solicitante", "solicitante"),
	repository.Contains("localCompra", "local_compra"),
	repository.Contains("numeroNota", "numero_nota"),
	repository.DateRange("data"),
}

type MaterialHandler struct {
	materialService service.MaterialService
}

func NewMaterialHandler(materialService service.MaterialService) *MaterialHandler {
	return &MaterialHandler{materialService: materialService}
}

func (h *MaterialHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/materiais", members())
	{
		group.GET("", h.ListMaterials)
		group.POST("", h.CreateMaterial)
		group.GET("/:id", h.GetMaterial)
		group.PUT("/:id", h.UpdateMaterial)
		group.DELETE("/:id", h.DeleteMaterial)
	}
}

// CreateMaterial handles POST /materiais
// @Summary      Register a material purchase
// @Tags         materiais
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateMaterialRequest  true  "Material"
// @Success      201      {object}  response.Response{data=model.Material}
// @Failure      400      {object}  response.Response
// @Router       /api/materiais [post]
func (h *MaterialHandler) CreateMaterial(c *gin.Context) {
	createWith(c, h.materialService.Create)
}

// ListMaterials handles GET /materiais
// @Summary      List material purchases
// @Tags         materiais
// @Produce      json
// @Security     BearerAuth
// @Param        obraId           query     string  false  "Project ID"
// @Param        statusPagamento  query     string  false  "Payment status"
// @Param        formaPagamento   query     string  false  "Payment method"
// @Param        solicitante      query     string  false  "Requester substring"
// @Param        localCompra      query     string  false  "Store substring"
// @Param        numeroNota       query     string  false  "Invoice number substring"
// @Param        dataInicio       query     string  false  "From date"
// @Param        dataFim          query     string  false  "To date (inclusive)"
// @Param        page             query     int     false  "Page number"
// @Param        limit            query     int     false  "Page size"
// @Success      200              {object}  response.Response{data=pagination.Page[model.Material]}
// @Router       /api/materiais [get]
func (h *MaterialHandler) ListMaterials(c *gin.Context) {
	listWith(c, materialFilters, h.materialService.List)
}

// GetMaterial handles GET /materiais/:id
// @Summary      Get a material purchase
// @Tags         materiais
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Material ID"
// @Success      200  {object}  response.Response{data=model.Material}
// @Failure      404  {object}  response.Response
// @Router       /api/materiais/{id} [get]
func (h *MaterialHandler) GetMaterial(c *gin.Context) {
	getWith(c, h.materialService.Get)
}

// UpdateMaterial handles PUT /materiais/:id
// @Summary      Update a material purchase
// @Tags         materiais
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                         true  "Material ID"
// @Param        payload  body      service.UpdateMaterialRequest  true  "Changed fields"
// @Success      200      {object}  response.Response{data=model.Material}
// @Router       /api/materiais/{id} [put]
func (h *MaterialHandler) UpdateMaterial(c *gin.Context) {
	updateWith(c, h.materialService.Update)
}

// DeleteMaterial handles DELETE /materiais/:id
// @Summary      Delete a material purchase
// @Tags         materiais
// @Security     BearerAuth
// @Param        id   path      string  true  "Material ID"
// @Success      200  {object}  response.Response
// @Router       /api/materiais/{id} [delete]
func (h *MaterialHandler) DeleteMaterial(c *gin.Context) {
	deleteWith(c, h.materialService.Delete)
}

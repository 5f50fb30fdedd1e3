package handler

import (
	"obrafin/internal/repository"
	"obrafin/internal/service"

	"github.com/gin-gonic/gin"
)

var laborFilters = []repository.FilterField{
	repository.ID("obraId", "obra_id"),
	repository.Exact("status", "status"),
	repository.Exact("statusPagamento", "status_pagamento"),
	repository.Exact("tipoContratacao", "tipo_contratacao"),
	repository.Contains("nome", "nome"),
	repository.Contains("funcao", "funcao"),
	repository.DateRange("inicio_contrato"),
}

type LaborHandler struct {
	laborService service.LaborService
}

func NewLaborHandler(laborService service.LaborService) *LaborHandler {
	return &LaborHandler{laborService: laborService}
}

func (h *LaborHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/mao-obra", members())
	{
		group.GET("", h.ListLabor)
		group.POST("", h.CreateLabor)
		group.GET("/:id", h.GetLabor)
		group.PUT("/:id", h.UpdateLabor)
		group.DELETE("/:id", h.DeleteLabor)
	}
}

// CreateLabor handles POST /mao-obra
// @Summary      Register a worker
// @Tags         mao-obra
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateLaborRequest  true  "Worker"
// @Success      201      {object}  response.Response{data=service.LaborView}
// @Failure      400      {object}  response.Response
// @Router       /api/mao-obra [post]
func (h *LaborHandler) CreateLabor(c *gin.Context) {
	createWith(c, h.laborService.Create)
}

// ListLabor handles GET /mao-obra
// @Summary      List workers
// @Tags         mao-obra
// @Produce      json
// @Security     BearerAuth
// @Param        obraId           query     string  false  "Project ID"
// @Param        status           query     string  false  "Contract status"
// @Param        statusPagamento  query     string  false  "Payment status"
// @Param        tipoContratacao  query     string  false  "Hiring type"
// @Param        nome             query     string  false  "Name substring"
// @Param        funcao           query     string  false  "Role substring"
// @Param        dataInicio       query     string  false  "Contract start from"
// @Param        dataFim          query     string  false  "Contract start to"
// @Param        page             query     int     false  "Page number"
// @Param        limit            query     int     false  "Page size"
// @Success      200              {object}  response.Response{data=pagination.Page[service.LaborView]}
// @Router       /api/mao-obra [get]
func (h *LaborHandler) ListLabor(c *gin.Context) {
	listWith(c, laborFilters, h.laborService.List)
}

// GetLabor handles GET /mao-obra/:id
// @Summary      Get a worker
// @Tags         mao-obra
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Worker ID"
// @Success      200  {object}  response.Response{data=service.LaborView}
// @Failure      404  {object}  response.Response
// @Router       /api/mao-obra/{id} [get]
func (h *LaborHandler) GetLabor(c *gin.Context) {
	getWith(c, h.laborService.Get)
}

// UpdateLabor handles PUT /mao-obra/:id
// @Summary      Update a worker
// @Tags         mao-obra
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "Worker ID"
// @Param        payload  body      service.UpdateLaborRequest  true  "Changed fields"
// @Success      200      {object}  response.Response{data=service.LaborView}
// @Router       /api/mao-obra/{id} [put]
func (h *LaborHandler) UpdateLabor(c *gin.Context) {
	updateWith(c, h.laborService.Update)
}

// DeleteLabor handles DELETE /mao-obra/:id
// @Summary      Delete a worker
// @Tags         mao-obra
// @Security     BearerAuth
// @Param        id   path      string  true  "Worker ID"
// @Success      200  {object}  response.Response
// @Router       /api/mao-obra/{id} [delete]
func (h *LaborHandler) DeleteLabor(c *gin.Context) {
	deleteWith(c, h.laborService.Delete)
}

package handler

import (
	"obrafin/internal/repository"
	"obrafin/internal/service"

	"github.com/gin-gonic/gin"
)

var obraFilters = []repository.FilterField{
	repository.Exact("status", "status"),
	repository.Contains("cliente", "cliente"),
	repository.Contains("nome", "nome"),
}

type ObraHandler struct {
	obraService service.ObraService
}

func NewObraHandler(obraService service.ObraService) *ObraHandler {
	return &ObraHandler{obraService: obraService}
}

// RegisterRoutes binds the project endpoints to an authenticated group
func (h *ObraHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/obras", members())
	{
		group.GET("", h.ListObras)
		group.POST("", h.CreateObra)
		group.GET("/planilha/:spreadsheetId", h.GetObraBySpreadsheet)
		group.GET("/:id", h.GetObra)
		group.PUT("/:id", h.UpdateObra)
		group.DELETE("/:id", h.DeleteObra)
		group.PUT("/:id/planilha", h.LinkSpreadsheet)
	}
}

// CreateObra handles POST /obras
// @Summary      Create a project
// @Description  Creates a project. Non-admin creators get the new project added to their allow-list.
// @Tags         obras
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateObraRequest  true  "Project"
// @Success      201      {object}  response.Response{data=model.Obra}
// @Failure      400      {object}  response.Response
// @Router       /api/obras [post]
func (h *ObraHandler) CreateObra(c *gin.Context) {
	createWith(c, h.obraService.Create)
}

// ListObras handles GET /obras
// @Summary      List projects
// @Tags         obras
// @Produce      json
// @Security     BearerAuth
// @Param        status   query     string  false  "Exact status"
// @Param        cliente  query     string  false  "Client substring"
// @Param        nome     query     string  false  "Name substring"
// @Param        page     query     int     false  "Page number (default 1)"
// @Param        limit    query     int     false  "Page size (default 10, max 100)"
// @Success      200      {object}  response.Response{data=pagination.Page[model.Obra]}
// @Router       /api/obras [get]
func (h *ObraHandler) ListObras(c *gin.Context) {
	listWith(c, obraFilters, h.obraService.List)
}

// GetObra handles GET /obras/:id
// @Summary      Get a project
// @Tags         obras
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  response.Response{data=model.Obra}
// @Failure      404  {object}  response.Response
// @Router       /api/obras/{id} [get]
func (h *ObraHandler) GetObra(c *gin.Context) {
	getWith(c, h.obraService.Get)
}

// UpdateObra handles PUT /obras/:id
// @Summary      Update a project
// @Tags         obras
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "Project ID"
// @Param        payload  body      service.UpdateObraRequest  true  "Changed fields"
// @Success      200      {object}  response.Response{data=model.Obra}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/obras/{id} [put]
func (h *ObraHandler) UpdateObra(c *gin.Context) {
	updateWith(c, h.obraService.Update)
}

// DeleteObra handles DELETE /obras/:id
// @Summary      Delete a project
// @Tags         obras
// @Security     BearerAuth
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/obras/{id} [delete]
func (h *ObraHandler) DeleteObra(c *gin.Context) {
	deleteWith(c, h.obraService.Delete)
}

// LinkSpreadsheet handles PUT /obras/:id/planilha
// @Summary      Link a spreadsheet to a project
// @Tags         obras
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                          true  "Project ID"
// @Param        payload  body      service.LinkSpreadsheetRequest  true  "Spreadsheet"
// @Success      200      {object}  response.Response{data=model.Obra}
// @Router       /api/obras/{id}/planilha [put]
func (h *ObraHandler) LinkSpreadsheet(c *gin.Context) {
	updateWith(c, h.obraService.LinkSpreadsheet)
}

// GetObraBySpreadsheet handles GET /obras/planilha/:spreadsheetId
// @Summary      Find the project linked to a spreadsheet
// @Tags         obras
// @Produce      json
// @Security     BearerAuth
// @Param        spreadsheetId  path      string  true  "Spreadsheet ID"
// @Success      200            {object}  response.Response{data=model.Obra}
// @Failure      404            {object}  response.Response
// @Router       /api/obras/planilha/{spreadsheetId} [get]
func (h *ObraHandler) GetObraBySpreadsheet(c *gin.Context) {
	obra, err := h.obraService.GetBySpreadsheet(c.Request.Context(), principal(c), c.Param("spreadsheetId"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, obra)
}

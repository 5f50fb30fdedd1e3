package handler

import (
	"obrafin/internal/google"

	"github.com/gin-gonic/gin"
)

type CreateSpreadsheetRequest struct {
	Titulo string `json:"titulo" binding:"max=255"`
}

type CopySpreadsheetRequest struct {
	TemplateID string `json:"templateId" binding:"required"`
	Titulo     string `json:"titulo" binding:"required,max=255"`
	PastaID    string `json:"pastaId"`
}

type SheetRangeRequest struct {
	SpreadsheetID string `json:"spreadsheetId" binding:"required"`
	Range         string `json:"range" binding:"required"`
}

type UpdateSheetRequest struct {
	SpreadsheetID string  `json:"spreadsheetId" binding:"required"`
	Range         string  `json:"range" binding:"required"`
	Values        [][]any `json:"values" binding:"required"`
}

type AddSheetRequest struct {
	Titulo string `json:"titulo" binding:"required,max=100"`
}

type GoogleHandler struct {
	client google.Client
}

func NewGoogleHandler(client google.Client) *GoogleHandler {
	return &GoogleHandler{client: client}
}

func (h *GoogleHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/google", members())
	{
		group.GET("/drive/folders", h.ListFolders)
		group.GET("/drive/:folderId", h.ListFiles)
		group.DELETE("/drive/files/:fileId", h.DeleteFile)
		group.POST("/sheets/create", h.CreateSpreadsheet)
		group.POST("/sheets/copy", h.CopySpreadsheet)
		group.POST("/sheets/data", h.GetValues)
		group.PUT("/sheets/data", h.UpdateValues)
		group.POST("/sheets/:spreadsheetId/abas", h.AddSheet)
	}
}

// ListFolders handles GET /google/drive/folders
// @Summary      List Drive folders shared with the service account
// @Tags         google
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]google.File}
// @Failure      502  {object}  response.Response
// @Router       /api/google/drive/folders [get]
func (h *GoogleHandler) ListFolders(c *gin.Context) {
	folders, err := h.client.ListFolders(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, folders)
}

// ListFiles handles GET /google/drive/:folderId
// @Summary      List files in a Drive folder
// @Tags         google
// @Produce      json
// @Security     BearerAuth
// @Param        folderId  path      string  true  "Folder ID"
// @Success      200       {object}  response.Response{data=[]google.File}
// @Failure      502       {object}  response.Response
// @Router       /api/google/drive/{folderId} [get]
func (h *GoogleHandler) ListFiles(c *gin.Context) {
	files, err := h.client.ListFiles(c.Request.Context(), c.Param("folderId"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, files)
}

// DeleteFile handles DELETE /google/drive/files/:fileId
func (h *GoogleHandler) DeleteFile(c *gin.Context) {
	if err := h.client.DeleteFile(c.Request.Context(), c.Param("fileId")); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"message": "Arquivo excluído com sucesso"})
}

// CreateSpreadsheet handles POST /google/sheets/create
// @Summary      Create a spreadsheet
// @Tags         google
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      CreateSpreadsheetRequest  true  "Title"
// @Success      201      {object}  response.Response
// @Failure      502      {object}  response.Response
// @Router       /api/google/sheets/create [post]
func (h *GoogleHandler) CreateSpreadsheet(c *gin.Context) {
	var req CreateSpreadsheetRequest
	if err := bind(c, &req); err != nil {
		fail(c, err)
		return
	}
	id, err := h.client.CreateSpreadsheet(c.Request.Context(), req.Titulo)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, gin.H{"spreadsheetId": id})
}

// CopySpreadsheet handles POST /google/sheets/copy
// @Summary      Copy a template spreadsheet
// @Tags         google
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      CopySpreadsheetRequest  true  "Template and target"
// @Success      201      {object}  response.Response
// @Router       /api/google/sheets/copy [post]
func (h *GoogleHandler) CopySpreadsheet(c *gin.Context) {
	var req CopySpreadsheetRequest
	if err := bind(c, &req); err != nil {
		fail(c, err)
		return
	}
	id, err := h.client.CopySpreadsheet(c.Request.Context(), req.TemplateID, req.Titulo, req.PastaID)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, gin.H{"spreadsheetId": id})
}

// GetValues handles POST /google/sheets/data
// @Summary      Read a range of cells
// @Tags         google
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      SheetRangeRequest  true  "Range"
// @Success      200      {object}  response.Response{data=google.ValueRange}
// @Router       /api/google/sheets/data [post]
func (h *GoogleHandler) GetValues(c *gin.Context) {
	var req SheetRangeRequest
	if err := bind(c, &req); err != nil {
		fail(c, err)
		return
	}
	values, err := h.client.GetValues(c.Request.Context(), req.SpreadsheetID, req.Range)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, values)
}

// UpdateValues handles PUT /google/sheets/data
// @Summary      Write a range of cells
// @Tags         google
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      UpdateSheetRequest  true  "Range and values"
// @Success      200      {object}  response.Response
// @Router       /api/google/sheets/data [put]
func (h *GoogleHandler) UpdateValues(c *gin.Context) {
	var req UpdateSheetRequest
	if err := bind(c, &req); err != nil {
		fail(c, err)
		return
	}
	cells, err := h.client.UpdateValues(c.Request.Context(), req.SpreadsheetID, req.Range, req.Values)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"celulasAtualizadas": cells})
}

// AddSheet handles POST /google/sheets/:spreadsheetId/abas
func (h *GoogleHandler) AddSheet(c *gin.Context) {
	var req AddSheetRequest
	if err := bind(c, &req); err != nil {
		fail(c, err)
		return
	}
	sheetID, err := h.client.AddSheet(c.Request.Context(), c.Param("spreadsheetId"), req.Titulo)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, gin.H{"sheetId": sheetID, "titulo": req.Titulo})
}

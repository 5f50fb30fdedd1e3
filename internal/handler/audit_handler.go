package handler

import (
	"obrafin/internal/repository"
	"obrafin/internal/service"

	"github.com/gin-gonic/gin"
)

var auditFilters = []repository.FilterField{
	repository.Exact("action", "action"),
	repository.Exact("entity", "entity"),
	repository.Exact("entityId", "entity_id"),
	repository.ID("userId", "user_id"),
	repository.DateRange("created_at"),
}

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/audit-logs", admins())
	{
		group.GET("", h.GetAuditLogs)
	}
}

// GetAuditLogs retrieves paginated audit entries, newest first, with the acting user's name
// @Summary      Get audit logs
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        action      query     string  false  "Action"
// @Param        entity      query     string  false  "Entity"
// @Param        entityId    query     string  false  "Entity ID"
// @Param        userId      query     string  false  "Acting user"
// @Param        dataInicio  query     string  false  "From date"
// @Param        dataFim     query     string  false  "To date"
// @Param        page        query     int     false  "Page number (default 1)"
// @Param        limit       query     int     false  "Number of items per page (default 10)"
// @Success      200         {object}  response.Response{data=pagination.Page[service.AuditLogResponse]}
// @Router       /api/audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	q, err := parseQuery(c, auditFilters)
	if err != nil {
		fail(c, err)
		return
	}
	logs, err := h.auditService.GetAuditLogs(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, logs)
}

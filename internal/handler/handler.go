// Package handler exposes the services over HTTP.
package handler

import (
	"context"
	"net/http"

	"obrafin/internal/access"
	"obrafin/internal/middleware"
	"obrafin/internal/model"
	"obrafin/internal/repository"
	"obrafin/internal/service"
	"obrafin/pkg/apperror"
	"obrafin/pkg/pagination"
	"obrafin/pkg/response"
	"obrafin/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// members is the gate for every data route: approved accounts only.
func members() gin.HandlerFunc {
	return middleware.RequireRole(model.RoleUser, model.RoleAdmin)
}

func admins() gin.HandlerFunc {
	return middleware.RequireRole(model.RoleAdmin)
}

// fail writes the error envelope. Server errors are attached to the context for ErrorLogger.
func fail(c *gin.Context, err error) {
	status, res := response.FromError(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, res)
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, data))
}

func created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, data))
}

func parseID(c *gin.Context, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return uuid.Nil, apperror.Field(param, "must be a valid id")
	}
	return id, nil
}

// bind decodes the JSON body into req and reports binding failures per field.
func bind(c *gin.Context, req any) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return validator.Translate(err)
	}
	return nil
}

func principal(c *gin.Context) access.Principal {
	return middleware.CurrentPrincipal(c)
}

func parseQuery(c *gin.Context, filters []repository.FilterField) (repository.Query, error) {
	return repository.ParseQuery(filters, c.Query, pagination.Parse(c))
}

// The helpers below implement the uniform CRUD contract on top of a service method.

func createWith[C, R any](c *gin.Context, fn func(context.Context, access.Principal, C) (R, error)) {
	var req C
	if err := bind(c, &req); err != nil {
		fail(c, err)
		return
	}
	res, err := fn(c.Request.Context(), principal(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, res)
}

func getWith[R any](c *gin.Context, fn func(context.Context, access.Principal, uuid.UUID) (R, error)) {
	id, err := parseID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	res, err := fn(c.Request.Context(), principal(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, res)
}

func listWith[R any](c *gin.Context, filters []repository.FilterField, fn func(context.Context, access.Principal, repository.Query) (pagination.Page[R], error)) {
	q, err := parseQuery(c, filters)
	if err != nil {
		fail(c, err)
		return
	}
	page, err := fn(c.Request.Context(), principal(c), q)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, page)
}

func updateWith[U, R any](c *gin.Context, fn func(context.Context, access.Principal, uuid.UUID, U) (R, error)) {
	id, err := parseID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	var req U
	if err := bind(c, &req); err != nil {
		fail(c, err)
		return
	}
	res, err := fn(c.Request.Context(), principal(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, res)
}

func deleteWith(c *gin.Context, fn func(context.Context, access.Principal, uuid.UUID) error) {
	id, err := parseID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	if err := fn(c.Request.Context(), principal(c), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"message": "Registro excluído com sucesso"})
}

// installmentRoutes serves the payments list of a record under /:id/pagamentos.
type installmentRoutes[R any] struct {
	svc service.InstallmentOwner[R]
}

func (h installmentRoutes[R]) register(g *gin.RouterGroup) {
	g.POST("/:id/pagamentos", h.add)
	g.GET("/:id/pagamentos/:pagamentoId", h.get)
	g.PUT("/:id/pagamentos/:pagamentoId", h.update)
	g.DELETE("/:id/pagamentos/:pagamentoId", h.remove)
}

func (h installmentRoutes[R]) ids(c *gin.Context) (uuid.UUID, uuid.UUID, error) {
	parentID, err := parseID(c, "id")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	paymentID, err := parseID(c, "pagamentoId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return parentID, paymentID, nil
}

func (h installmentRoutes[R]) add(c *gin.Context) {
	parentID, err := parseID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	var req service.InstallmentRequest
	if err := bind(c, &req); err != nil {
		fail(c, err)
		return
	}
	res, err := h.svc.AddPayment(c.Request.Context(), principal(c), parentID, req)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, res)
}

func (h installmentRoutes[R]) get(c *gin.Context) {
	parentID, paymentID, err := h.ids(c)
	if err != nil {
		fail(c, err)
		return
	}
	res, err := h.svc.GetPayment(c.Request.Context(), principal(c), parentID, paymentID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, res)
}

func (h installmentRoutes[R]) update(c *gin.Context) {
	parentID, paymentID, err := h.ids(c)
	if err != nil {
		fail(c, err)
		return
	}
	var req service.UpdateInstallmentRequest
	if err := bind(c, &req); err != nil {
		fail(c, err)
		return
	}
	res, err := h.svc.UpdatePayment(c.Request.Context(), principal(c), parentID, paymentID, req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, res)
}

func (h installmentRoutes[R]) remove(c *gin.Context) {
	parentID, paymentID, err := h.ids(c)
	if err != nil {
		fail(c, err)
		return
	}
	res, err := h.svc.RemovePayment(c.Request.Context(), principal(c), parentID, paymentID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, res)
}

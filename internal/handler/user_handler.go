package handler

import (
	"time"

	"obrafin/internal/middleware"
	"obrafin/internal/repository"
	"obrafin/internal/service"
	"obrafin/pkg/token"

	"github.com/gin-gonic/gin"
)

var userFilters = []repository.FilterField{
	repository.Exact("role", "role"),
	repository.Contains("nome", "nome"),
	repository.Contains("email", "email"),
}

// SessionCookie configures the cookie set on login.
type SessionCookie struct {
	TTL    time.Duration
	Secure bool
}

type UserHandler struct {
	userService service.UserService
	tokens      *token.Service
	cookie      SessionCookie
}

// NewUserHandler sets up the routing dependencies for User endpoints
func NewUserHandler(userService service.UserService, tokens *token.Service, cookie SessionCookie) *UserHandler {
	return &UserHandler{userService: userService, tokens: tokens, cookie: cookie}
}

// RegisterRoutes binds the endpoints to the public /api group; each route picks its own guard.
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.Authenticate(h.tokens)

	router.POST("/login", h.Login)
	router.POST("/logout", h.Logout)
	router.GET("/me", auth, members(), h.GetMe)

	users := router.Group("/users")
	{
		users.POST("", middleware.OptionalAuthenticate(h.tokens), h.Register)

		users.PUT("/self", auth, members(), h.UpdateSelf)
		users.DELETE("/self", auth, members(), h.DeleteSelf)

		users.GET("", auth, admins(), h.ListUsers)
		users.GET("/pending", auth, admins(), h.ListPendingUsers)
		users.GET("/:id", auth, admins(), h.GetUser)
		users.PUT("/:id", auth, admins(), h.UpdateUser)
		users.DELETE("/:id", auth, admins(), h.DeleteUser)
		users.PUT("/:id/obras", auth, admins(), h.SetAllowedProjects)
	}
}

// Register handles POST /users
// @Summary      Register a user
// @Description  Public sign-up creates a pending account. Only an admin caller may create Admin accounts.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RegisterUserRequest  true  "User"
// @Success      201      {object}  response.Response{data=service.UserResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/users [post]
func (h *UserHandler) Register(c *gin.Context) {
	createWith(c, h.userService.Register)
}

// Login handles POST /login to authenticate and return a JWT token
// @Summary      Login user
// @Description  Authenticates a user by email and password, returning a JWT token. Pending accounts are refused.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginUserRequest  true  "Login Credentials"
// @Success      200      {object}  response.Response{data=service.LoginResponse}
// @Failure      401      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req service.LoginUserRequest
	if err := bind(c, &req); err != nil {
		fail(c, err)
		return
	}

	res, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}

	middleware.SetTokenCookie(c, res.Token, h.cookie.TTL, h.cookie.Secure)
	ok(c, res)
}

// Logout handles POST /logout
// @Summary      Logout
// @Tags         auth
// @Success      200  {object}  response.Response
// @Router       /api/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	middleware.ClearTokenCookie(c, h.cookie.Secure)
	ok(c, gin.H{"message": "Logout realizado com sucesso"})
}

// GetMe handles GET /me to return current authenticated user based on JWT
// @Summary      Get current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.UserResponse}
// @Failure      401  {object}  response.Response
// @Router       /api/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.userService.Me(c.Request.Context(), principal(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, user)
}

// ListUsers handles GET /users
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        role   query     string  false  "Exact role"
// @Param        nome   query     string  false  "Name substring"
// @Param        email  query     string  false  "Email substring"
// @Success      200    {object}  response.Response{data=pagination.Page[service.UserResponse]}
// @Router       /api/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	q, err := parseQuery(c, userFilters)
	if err != nil {
		fail(c, err)
		return
	}
	page, err := h.userService.List(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, page)
}

// ListPendingUsers handles GET /users/pending
// @Summary      List accounts awaiting approval
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=pagination.Page[service.UserResponse]}
// @Router       /api/users/pending [get]
func (h *UserHandler) ListPendingUsers(c *gin.Context) {
	q, err := parseQuery(c, userFilters)
	if err != nil {
		fail(c, err)
		return
	}
	page, err := h.userService.Pending(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, page)
}

// GetUser handles GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	user, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, user)
}

// UpdateUser handles PUT /users/:id
// @Summary      Update a user
// @Description  Setting approved=true promotes a pending account to User
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "User ID"
// @Param        payload  body      service.UpdateUserRequest  true  "Changed fields"
// @Success      200      {object}  response.Response{data=service.UserResponse}
// @Router       /api/users/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	updateWith(c, h.userService.Update)
}

// DeleteUser handles DELETE /users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	deleteWith(c, h.userService.Delete)
}

// UpdateSelf handles PUT /users/self
// @Summary      Update own profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.UpdateSelfRequest  true  "Changed fields"
// @Success      200      {object}  response.Response{data=service.UserResponse}
// @Router       /api/users/self [put]
func (h *UserHandler) UpdateSelf(c *gin.Context) {
	var req service.UpdateSelfRequest
	if err := bind(c, &req); err != nil {
		fail(c, err)
		return
	}
	user, err := h.userService.UpdateSelf(c.Request.Context(), principal(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, user)
}

// DeleteSelf handles DELETE /users/self
func (h *UserHandler) DeleteSelf(c *gin.Context) {
	if err := h.userService.DeleteSelf(c.Request.Context(), principal(c)); err != nil {
		fail(c, err)
		return
	}
	middleware.ClearTokenCookie(c, h.cookie.Secure)
	ok(c, gin.H{"message": "Conta excluída com sucesso"})
}

// SetAllowedProjects handles PUT /users/:id/obras
// @Summary      Replace a user's project allow-list
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                          true  "User ID"
// @Param        payload  body      service.AllowedProjectsRequest  true  "Project IDs"
// @Success      200      {object}  response.Response{data=service.UserResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/users/{id}/obras [put]
func (h *UserHandler) SetAllowedProjects(c *gin.Context) {
	updateWith(c, h.userService.SetAllowedProjects)
}

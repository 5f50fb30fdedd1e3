package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"obrafin/internal/access"
	"obrafin/internal/model"
	"obrafin/internal/repository"
	"obrafin/pkg/apperror"
	"obrafin/pkg/pagination"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DTOs for Request validation
type RegisterUserRequest struct {
	Nome     string `json:"nome" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"omitempty,oneof=PreAprovacao User Admin"`
}

type UpdateUserRequest struct {
	Nome     *string `json:"nome" binding:"omitempty,max=255"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=6"`
	Role     *string `json:"role" binding:"omitempty,oneof=PreAprovacao User Admin"`
	Approved *bool   `json:"approved"`
}

type UpdateSelfRequest struct {
	Nome     *string `json:"nome" binding:"omitempty,max=255"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=6"`
}

type LoginUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AllowedProjectsRequest struct {
	ObrasPermitidas []string `json:"obrasPermitidas" binding:"omitempty,dive,uuid"`
}

// UserResponse never exposes the password hash.
type UserResponse struct {
	ID              uuid.UUID   `json:"_id"`
	Nome            string      `json:"nome"`
	Email           string      `json:"email"`
	Role            string      `json:"role"`
	Approved        bool        `json:"approved"`
	ObrasPermitidas []uuid.UUID `json:"obrasPermitidas"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	GenerateToken(userID uuid.UUID, role string) (string, error)
}

// UserService defines the interface for business logic related to User
type UserService interface {
	Register(ctx context.Context, caller access.Principal, req RegisterUserRequest) (UserResponse, error)
	Login(ctx context.Context, req LoginUserRequest) (LoginResponse, error)
	Me(ctx context.Context, p access.Principal) (UserResponse, error)
	List(ctx context.Context, q repository.Query) (pagination.Page[UserResponse], error)
	Pending(ctx context.Context, q repository.Query) (pagination.Page[UserResponse], error)
	Get(ctx context.Context, id uuid.UUID) (UserResponse, error)
	Update(ctx context.Context, p access.Principal, id uuid.UUID, req UpdateUserRequest) (UserResponse, error)
	Delete(ctx context.Context, p access.Principal, id uuid.UUID) error
	UpdateSelf(ctx context.Context, p access.Principal, req UpdateSelfRequest) (UserResponse, error)
	DeleteSelf(ctx context.Context, p access.Principal) error
	SetAllowedProjects(ctx context.Context, p access.Principal, id uuid.UUID, req AllowedProjectsRequest) (UserResponse, error)
}

type userService struct {
	repo   repository.UserRepository
	obras  repository.Store[model.Obra]
	tokens TokenIssuer
	audit  *auditor
}

// NewUserService returns a new instance of UserService
func NewUserService(repo repository.UserRepository, obras repository.Store[model.Obra], tokens TokenIssuer, audit repository.AuditRepository) UserService {
	return &userService{repo: repo, obras: obras, tokens: tokens, audit: &auditor{repo: audit}}
}

const userNotFound = "Usuário não encontrado"

// Helper: parse model to standard json API response
func mapToResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:              user.ID,
		Nome:            user.Nome,
		Email:           user.Email,
		Role:            user.Role,
		Approved:        user.Approved,
		ObrasPermitidas: user.AllowedProjectIDs(),
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// ensureEmailFree fails with Conflict when another user holds email.
func (s *userService) ensureEmailFree(ctx context.Context, email string, self uuid.UUID) error {
	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("lookup email: %w", err)
	case existing.ID != self:
		return apperror.Conflict("email já cadastrado")
	default:
		return nil
	}
}

func (s *userService) load(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, userNotFound, "")
	}
	return user, nil
}

// Register creates an account. Anonymous and non-admin callers always get an
// unapproved account and may not ask for the Admin role.
func (s *userService) Register(ctx context.Context, caller access.Principal, req RegisterUserRequest) (UserResponse, error) {
	v := problems{}
	v.requireText("nome", &req.Nome)
	if err := v.err(); err != nil {
		return UserResponse{}, err
	}

	role := req.Role
	approved := false
	if caller.IsAdmin() {
		role = orDefault(role, model.RoleUser)
		approved = role != model.RolePending
	} else {
		if role == model.RoleAdmin {
			return UserResponse{}, apperror.Forbidden("apenas administradores podem criar administradores")
		}
		role = orDefault(role, model.RolePending)
	}

	email := normalizeEmail(req.Email)
	if err := s.ensureEmailFree(ctx, email, uuid.Nil); err != nil {
		return UserResponse{}, err
	}

	hashed, err := hashPassword(req.Password)
	if err != nil {
		return UserResponse{}, err
	}

	user := &model.User{
		Nome:     strings.TrimSpace(req.Nome),
		Email:    email,
		Password: hashed,
		Role:     role,
		Approved: approved,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return UserResponse{}, fmt.Errorf("create user: %w", err)
	}

	s.audit.record(ctx, caller, model.ActionCreate, "usuario", user.ID, mapToResponse(user))
	return mapToResponse(user), nil
}

func (s *userService) Login(ctx context.Context, req LoginUserRequest) (LoginResponse, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, repository.ErrNotFound) {
		return LoginResponse{}, apperror.InvalidCredential("email ou senha inválidos")
	}
	if err != nil {
		return LoginResponse{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return LoginResponse{}, apperror.InvalidCredential("email ou senha inválidos")
	}

	// only approved accounts receive a token
	if !user.Approved || user.Role == model.RolePending {
		return LoginResponse{}, apperror.Forbidden("usuário aguardando aprovação")
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		return LoginResponse{}, fmt.Errorf("generate token: %w", err)
	}
	return LoginResponse{Token: token, User: mapToResponse(user)}, nil
}

func (s *userService) Me(ctx context.Context, p access.Principal) (UserResponse, error) {
	return s.Get(ctx, p.UserID)
}

func (s *userService) list(ctx context.Context, q repository.Query) (pagination.Page[UserResponse], error) {
	users, total, err := s.repo.List(ctx, q)
	if err != nil {
		return pagination.Page[UserResponse]{}, fmt.Errorf("list users: %w", err)
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, mapToResponse(&users[i]))
	}
	return pagination.NewPage(responses, q.Page, total), nil
}

func (s *userService) List(ctx context.Context, q repository.Query) (pagination.Page[UserResponse], error) {
	return s.list(ctx, q)
}

// Pending lists accounts waiting for approval.
func (s *userService) Pending(ctx context.Context, q repository.Query) (pagination.Page[UserResponse], error) {
	return s.list(ctx, q.Where("approved = ?", false))
}

func (s *userService) Get(ctx context.Context, id uuid.UUID) (UserResponse, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return UserResponse{}, err
	}
	return mapToResponse(user), nil
}

// applyProfile handles the fields a user may change on their own account.
func (s *userService) applyProfile(ctx context.Context, user *model.User, nome, email, password *string) error {
	v := problems{}
	v.requireText("nome", nome)
	if err := v.err(); err != nil {
		return err
	}

	if nome != nil {
		user.Nome = strings.TrimSpace(*nome)
	}
	if email != nil {
		normalized := normalizeEmail(*email)
		if normalized != user.Email {
			if err := s.ensureEmailFree(ctx, normalized, user.ID); err != nil {
				return err
			}
			user.Email = normalized
		}
	}
	if password != nil {
		hashed, err := hashPassword(*password)
		if err != nil {
			return err
		}
		user.Password = hashed
	}
	return nil
}

func (s *userService) Update(ctx context.Context, p access.Principal, id uuid.UUID, req UpdateUserRequest) (UserResponse, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return UserResponse{}, err
	}
	if err := s.applyProfile(ctx, user, req.Nome, req.Email, req.Password); err != nil {
		return UserResponse{}, err
	}

	wasApproved := user.Approved
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Approved != nil {
		user.Approved = *req.Approved
	}
	// approving an account still in the queue promotes it to User
	if user.Approved && user.Role == model.RolePending {
		user.Role = model.RoleUser
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return UserResponse{}, fmt.Errorf("update user: %w", err)
	}

	action := model.ActionUpdate
	if !wasApproved && user.Approved {
		action = model.ActionApproveUser
	}
	s.audit.record(ctx, p, action, "usuario", user.ID, mapToResponse(user))
	return mapToResponse(user), nil
}

func (s *userService) Delete(ctx context.Context, p access.Principal, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err, userNotFound, "")
	}
	s.audit.record(ctx, p, model.ActionDelete, "usuario", id, nil)
	return nil
}

func (s *userService) UpdateSelf(ctx context.Context, p access.Principal, req UpdateSelfRequest) (UserResponse, error) {
	user, err := s.load(ctx, p.UserID)
	if err != nil {
		return UserResponse{}, err
	}
	if err := s.applyProfile(ctx, user, req.Nome, req.Email, req.Password); err != nil {
		return UserResponse{}, err
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return UserResponse{}, fmt.Errorf("update user: %w", err)
	}
	s.audit.record(ctx, p, model.ActionUpdate, "usuario", user.ID, mapToResponse(user))
	return mapToResponse(user), nil
}

func (s *userService) DeleteSelf(ctx context.Context, p access.Principal) error {
	return s.Delete(ctx, p, p.UserID)
}

// SetAllowedProjects replaces a user's allow-list. Every id must name an existing project.
func (s *userService) SetAllowedProjects(ctx context.Context, p access.Principal, id uuid.UUID, req AllowedProjectsRequest) (UserResponse, error) {
	if _, err := s.load(ctx, id); err != nil {
		return UserResponse{}, err
	}

	seen := make(map[uuid.UUID]bool, len(req.ObrasPermitidas))
	ids := make([]uuid.UUID, 0, len(req.ObrasPermitidas))
	for _, raw := range req.ObrasPermitidas {
		obraID, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return UserResponse{}, apperror.Field("obrasPermitidas", "must contain valid ids")
		}
		if !seen[obraID] {
			seen[obraID] = true
			ids = append(ids, obraID)
		}
	}

	if len(ids) > 0 {
		found, err := s.obras.Count(ctx, repository.NewQuery(pagination.Params{}).Where("id IN ?", ids))
		if err != nil {
			return UserResponse{}, fmt.Errorf("check projects: %w", err)
		}
		if found != int64(len(ids)) {
			return UserResponse{}, apperror.Field("obrasPermitidas", "contains unknown projects")
		}
	}

	if err := s.repo.SetAllowedProjects(ctx, id, ids); err != nil {
		return UserResponse{}, fmt.Errorf("set allowed projects: %w", err)
	}
	s.audit.record(ctx, p, model.ActionGrantProjects, "usuario", id, map[string]any{"obrasPermitidas": ids})
	return s.Get(ctx, id)
}

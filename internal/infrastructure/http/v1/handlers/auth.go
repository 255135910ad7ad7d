package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/id"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/auth"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/infrastructure/http/v1/dto"
)

// UserService is the identity use-case surface the handler needs.
type UserService interface {
	Register(ctx context.Context, req auth.RegisterRequest) (*auth.User, error)
	Login(ctx context.Context, creds auth.Credentials) (*auth.LoginResult, error)
	Me(ctx context.Context) (*auth.Profile, error)
	ListUsers(ctx context.Context) ([]auth.User, error)
	GetUser(ctx context.Context, userID id.ID) (*auth.User, error)
	ListEmployees(ctx context.Context, assigned *bool) ([]auth.Employee, error)
	UpdateUser(ctx context.Context, userID id.ID, req auth.UpdateUserRequest) (*auth.User, error)
	DeleteUser(ctx context.Context, userID id.ID) error
}

// AuthHandler handles registration, login and user management.
type AuthHandler struct {
	*BaseHandler
	service UserService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, service UserService) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Register handles POST /users/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.service.Register(c.Request.Context(), req.ToAuthRequest())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.RegisterResponse{Message: "user created", UserResponse: dto.FromUser(user)})
}

// Login handles POST /users/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Login(c.Request.Context(), req.ToCredentials())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromLoginResult(result))
}

// Me handles GET /users/me
func (h *AuthHandler) Me(c *gin.Context) {
	profile, err := h.service.Me(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, profile)
}

// List handles GET /users
func (h *AuthHandler) List(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.UsersResponse{Users: users})
}

// Employees handles GET /users/employees?assigned=
func (h *AuthHandler) Employees(c *gin.Context) {
	var q dto.EmployeesQuery
	if !h.BindQuery(c, &q) {
		return
	}

	employees, err := h.service.ListEmployees(c.Request.Context(), q.Assigned)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.EmployeesResponse{Employees: employees})
}

// Get handles GET /users/:id
func (h *AuthHandler) Get(c *gin.Context) {
	userID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, user)
}

// Update handles PUT /users/:id
func (h *AuthHandler) Update(c *gin.Context) {
	userID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.service.UpdateUser(c.Request.Context(), userID, req.ToAuthRequest())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"message": "user updated", "user": dto.FromUser(user)})
}

// Delete handles DELETE /users/:id
func (h *AuthHandler) Delete(c *gin.Context) {
	userID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteUser(c.Request.Context(), userID); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.MessageResponse{Message: "user deleted"})
}

var _ UserService = (*auth.Service)(nil)

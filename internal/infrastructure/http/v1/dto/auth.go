// Package dto provides data transfer objects for HTTP API.
package dto

import (
	"time"

	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/id"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/auth"
)

// --- Request DTOs ---

// RegisterRequest for user registration.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// ToAuthRequest converts to domain request.
func (r *RegisterRequest) ToAuthRequest() auth.RegisterRequest {
	return auth.RegisterRequest{
		Username: r.Username,
		Password: r.Password,
		Role:     r.Role,
	}
}

// LoginRequest for user login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ToCredentials converts to domain credentials.
func (r *LoginRequest) ToCredentials() auth.Credentials {
	return auth.Credentials{
		Username: r.Username,
		Password: r.Password,
	}
}

// UpdateUserRequest is a partial user update.
type UpdateUserRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

// ToAuthRequest converts to domain request.
func (r *UpdateUserRequest) ToAuthRequest() auth.UpdateUserRequest {
	return auth.UpdateUserRequest{
		Username: r.Username,
		Password: r.Password,
		Role:     r.Role,
	}
}

// EmployeesQuery filters the employee listing.
type EmployeesQuery struct {
	Assigned *bool `form:"assigned"`
}

// --- Response DTOs ---

// UserResponse represents user in API response.
type UserResponse struct {
	UserID   id.ID  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// FromUser creates response from domain user.
func FromUser(u *auth.User) UserResponse {
	return UserResponse{UserID: u.ID, Username: u.Username, Role: u.Role}
}

// RegisterResponse is returned after registration.
type RegisterResponse struct {
	Message string `json:"message"`
	UserResponse
}

// LoginResponse represents login response.
type LoginResponse struct {
	Message   string       `json:"message"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// FromLoginResult creates response from the domain login result.
func FromLoginResult(r *auth.LoginResult) LoginResponse {
	return LoginResponse{
		Message:   "login successful",
		Token:     r.Token,
		ExpiresAt: r.ExpiresAt,
		User:      FromUser(r.User),
	}
}

// UsersResponse wraps a user listing.
type UsersResponse struct {
	Users []auth.User `json:"users"`
}

// EmployeesResponse wraps an employee listing.
type EmployeesResponse struct {
	Employees []auth.Employee `json:"employees"`
}

// Package auth provides authentication and authorization domain logic.
package auth

import (
	"strings"
	"time"

	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/apperror"
	appctx "github.com/alenprastyaa/hakimah-laporan-harian/internal/core/context"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/id"
)

// roleAliases maps accepted role spellings to stored roles.
// "karyawan" is the role name used by the first generation of the data.
var roleAliases = map[string]string{
	appctx.RoleAdmin:    appctx.RoleAdmin,
	appctx.RoleEmployee: appctx.RoleEmployee,
	"karyawan":          appctx.RoleEmployee,
}

// NormalizeRole returns the stored role for input, or false when unknown.
func NormalizeRole(input string) (string, bool) {
	role, ok := roleAliases[strings.ToLower(strings.TrimSpace(input))]
	return role, ok
}

// User represents a system user.
type User struct {
	ID           id.ID     `db:"id" json:"user_id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// NewUser creates a new user with a fresh id.
func NewUser(username, passwordHash, role string) *User {
	return &User{
		ID:           id.New(),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
}

// IsEmployee reports whether the user has the employee role.
func (u *User) IsEmployee() bool {
	return u.Role == appctx.RoleEmployee
}

// Employee is an employee together with the stores they are assigned to.
type Employee struct {
	User
	StoreIDs []id.ID `db:"store_ids" json:"store_ids"`
}

// Profile is the authenticated user's own view.
type Profile struct {
	User
	StoreIDs []id.ID `json:"store_ids"`
}

// RegisterRequest contains data for user registration.
type RegisterRequest struct {
	Username string
	Password string
	Role     string
}

// Validate checks required fields and normalizes the role.
func (r *RegisterRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	if r.Username == "" || r.Password == "" || strings.TrimSpace(r.Role) == "" {
		return apperror.NewValidation("username, password and role are required")
	}
	role, ok := NormalizeRole(r.Role)
	if !ok {
		return apperror.NewInvalidInput("role", "role must be admin or employee")
	}
	r.Role = role
	return nil
}

// Credentials contains login credentials.
type Credentials struct {
	Username string
	Password string
}

// UpdateUserRequest is a partial update; nil fields are left unchanged.
type UpdateUserRequest struct {
	Username *string
	Password *string
	Role     *string
}

// Validate rejects empty updates and normalizes the role.
func (r *UpdateUserRequest) Validate() error {
	if r.Username == nil && r.Password == nil && r.Role == nil {
		return apperror.NewValidation("at least one of username, password or role is required")
	}
	if r.Username != nil {
		trimmed := strings.TrimSpace(*r.Username)
		if trimmed == "" {
			return apperror.NewInvalidInput("username", "username must not be empty")
		}
		r.Username = &trimmed
	}
	if r.Password != nil && *r.Password == "" {
		return apperror.NewInvalidInput("password", "password must not be empty")
	}
	if r.Role != nil {
		role, ok := NormalizeRole(*r.Role)
		if !ok {
			return apperror.NewInvalidInput("role", "role must be admin or employee")
		}
		r.Role = &role
	}
	return nil
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *User
}

package auth

import (
	"context"

	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/id"
)

// UserRepository defines user storage operations.
type UserRepository interface {
	// Create inserts a new user.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves user by ID. Returns NotFound when absent.
	GetByID(ctx context.Context, userID id.ID) (*User, error)

	// GetByUsername retrieves user by username. Returns NotFound when absent.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// UsernameTaken reports whether another user (not excludeID) has username.
	UsernameTaken(ctx context.Context, username string, excludeID *id.ID) (bool, error)

	// Update persists username, password hash and role.
	Update(ctx context.Context, user *User) error

	// Delete removes a user. Returns NotFound when absent.
	Delete(ctx context.Context, userID id.ID) error

	// List returns all users ordered by creation time.
	List(ctx context.Context) ([]User, error)

	// ListEmployees returns employees, filtered by assignment when assigned is set.
	ListEmployees(ctx context.Context, assigned *bool) ([]Employee, error)

	// StoreIDs returns the stores a user is assigned to.
	StoreIDs(ctx context.Context, userID id.ID) ([]id.ID, error)

	// CountAuthoredReports counts reports created by the user.
	CountAuthoredReports(ctx context.Context, userID id.ID) (int, error)
}

// AssignmentRepository answers store membership questions.
type AssignmentRepository interface {
	// IsAssigned reports whether userID has an assignment to storeID.
	IsAssigned(ctx context.Context, userID, storeID id.ID) (bool, error)
}

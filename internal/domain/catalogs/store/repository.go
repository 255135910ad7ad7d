package store

import (
	"context"

	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/id"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/auth"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/filter"
)

// Repository defines store storage operations.
type Repository interface {
	Create(ctx context.Context, s *Store) error
	Update(ctx context.Context, s *Store) error

	// Delete removes the store row. Returns NotFound when absent.
	Delete(ctx context.Context, storeID id.ID) error

	// GetByID ignores scope. Returns NotFound when absent.
	GetByID(ctx context.Context, storeID id.ID) (*Store, error)

	// GetDetail returns NotFound when absent or outside scope.
	GetDetail(ctx context.Context, storeID id.ID, scope filter.Scope) (*Detail, error)

	// List returns stores visible in scope ordered by name.
	List(ctx context.Context, scope filter.Scope) ([]Detail, error)

	// NameTaken reports whether another store (not excludeID) uses name.
	NameTaken(ctx context.Context, name string, excludeID *id.ID) (bool, error)

	// ReplaceEmployees deletes all assignments of the store and inserts userIDs.
	ReplaceEmployees(ctx context.Context, storeID id.ID, userIDs []id.ID) error

	// CountDependents returns the number of reports and banks of the store.
	CountDependents(ctx context.Context, storeID id.ID) (reports int, banks int, err error)
}

// UserLookup resolves employee ids during assignment.
type UserLookup interface {
	GetByID(ctx context.Context, userID id.ID) (*auth.User, error)
}

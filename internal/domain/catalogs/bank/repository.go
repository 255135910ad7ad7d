package bank

import (
	"context"

	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/id"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/catalogs/store"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/filter"
)

// Repository defines bank storage operations.
type Repository interface {
	Create(ctx context.Context, b *Bank) error

	// Rename changes the bank name. Returns NotFound when absent.
	Rename(ctx context.Context, bankID id.ID, name string) error

	// Delete removes the bank. Returns NotFound when absent.
	Delete(ctx context.Context, bankID id.ID) error

	// Get returns NotFound when absent or outside scope.
	Get(ctx context.Context, bankID id.ID, scope filter.Scope) (*View, error)

	// List returns banks visible in scope, optionally of one store, ordered
	// by store name then bank name.
	List(ctx context.Context, storeID *id.ID, scope filter.Scope) ([]View, error)

	// CountBalanceLines counts report balance lines referencing the bank.
	CountBalanceLines(ctx context.Context, bankID id.ID) (int, error)
}

// StoreLookup checks store existence.
type StoreLookup interface {
	GetByID(ctx context.Context, storeID id.ID) (*store.Store, error)
}

// AccessChecker authorizes the caller for a store.
type AccessChecker interface {
	RequireStoreAccess(ctx context.Context, storeID id.ID) error
}

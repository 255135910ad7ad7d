package reports

import (
	"context"

	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/id"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/types"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/catalogs/store"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/filter"
)

// Repository defines report storage operations.
type Repository interface {
	// Create inserts the report row. A concurrent insert for the same store
	// and day returns ConflictError.
	Create(ctx context.Context, r *Report) error

	// Update persists store, date, totals and note. Returns NotFound when absent.
	Update(ctx context.Context, r *Report) error

	// ReplaceBalances deletes the report's balance lines and inserts lines.
	ReplaceBalances(ctx context.Context, reportID id.ID, lines []BalanceLine) error

	// Delete removes the balance lines and the report.
	Delete(ctx context.Context, reportID id.ID) error

	// Get returns the report with balances. NotFound when absent or outside scope.
	Get(ctx context.Context, reportID id.ID, scope filter.Scope) (*Detail, error)

	// ExistsForDate reports whether the store has a report on date other than excludeID.
	ExistsForDate(ctx context.Context, storeID id.ID, date types.Date, excludeID *id.ID) (bool, error)

	// MissingBanks returns the ids in bankIDs that do not exist.
	MissingBanks(ctx context.Context, bankIDs []id.ID) ([]id.ID, error)

	// RemoveUangNitip zeroes uang nitip and subtracts it from the total.
	// Returns the removed amount and the new total.
	RemoveUangNitip(ctx context.Context, reportID id.ID) (removed, total types.Money, err error)

	// List returns reports with balances ordered by report_date DESC,
	// created_at DESC, and the total count. A nil page returns every row.
	List(ctx context.Context, f ListFilter, scope filter.Scope, page *filter.Page) ([]Detail, int, error)

	// Series returns the reports of the selected stores in a date range.
	Series(ctx context.Context, f SeriesFilter) ([]Point, error)
}

// StoreLookup reads stores for analysis.
type StoreLookup interface {
	GetByID(ctx context.Context, storeID id.ID) (*store.Store, error)
	List(ctx context.Context, scope filter.Scope) ([]store.Detail, error)
}

// AccessChecker authorizes the caller for a store.
type AccessChecker interface {
	RequireStoreAccess(ctx context.Context, storeID id.ID) error
}

// Cache stores dashboard responses as JSON. Invalidate drops every entry.
// Get returns the generation it read; Set with that generation is discarded
// if an Invalidate happened in between.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (gen int64, hit bool, err error)
	Set(ctx context.Context, gen int64, key string, value any) error
	Invalidate(ctx context.Context) error
}

// Metrics counts report operations.
type Metrics interface {
	ReportOperation(op string)
	CacheResult(result string)
}

// Package catalog_repo provides PostgreSQL implementations for the store and
// bank catalogs.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/apperror"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/id"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/catalogs/store"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/filter"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/infrastructure/storage/postgres"
)

var storeColumns = postgres.ExtractDBColumns[store.Store]()

// StoreRepo implements store.Repository.
type StoreRepo struct {
	txManager *postgres.TxManager
}

// NewStoreRepo creates a store repository.
func NewStoreRepo(txManager *postgres.TxManager) *StoreRepo {
	return &StoreRepo{txManager: txManager}
}

// Create inserts a store using its "db" tags.
func (r *StoreRepo) Create(ctx context.Context, s *store.Store) error {
	data := postgres.ColumnMap(s, []string{"id", "name", "address"})

	sql, args, err := postgres.Builder().Insert("stores").SetMap(data).Suffix("RETURNING created_at").ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	q := r.txManager.GetQuerier(ctx)
	if err := q.QueryRow(ctx, sql, args...).Scan(&s.CreatedAt); err != nil {
		if _, ok := postgres.UniqueViolation(err); ok {
			return apperror.NewDuplicate("store", "store_name", s.Name)
		}
		return fmt.Errorf("insert store: %w", err)
	}
	return nil
}

// Update persists name and address.
func (r *StoreRepo) Update(ctx context.Context, s *store.Store) error {
	sql, args, err := postgres.Builder().
		Update("stores").
		SetMap(postgres.ColumnMap(s, []string{"name", "address"})).
		Where(squirrel.Eq{"id": s.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		if _, ok := postgres.UniqueViolation(err); ok {
			return apperror.NewDuplicate("store", "store_name", s.Name)
		}
		return fmt.Errorf("update store: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("store", s.ID)
	}
	return nil
}

// Delete removes the store row.
func (r *StoreRepo) Delete(ctx context.Context, storeID id.ID) error {
	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, `DELETE FROM stores WHERE id = $1`, storeID)
	if err != nil {
		return fmt.Errorf("delete store: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("store", storeID)
	}
	return nil
}

// GetByID retrieves a store regardless of scope.
func (r *StoreRepo) GetByID(ctx context.Context, storeID id.ID) (*store.Store, error) {
	sql, args, err := postgres.Builder().
		Select(storeColumns...).
		From("stores").
		Where(squirrel.Eq{"id": storeID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var s store.Store
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("store", storeID)
		}
		return nil, fmt.Errorf("get store: %w", err)
	}
	return &s, nil
}

// detailSelect selects stores with aggregated assignments.
func detailSelect(scope filter.Scope) squirrel.SelectBuilder {
	q := postgres.Builder().
		Select(
			"s.id", "s.name", "s.address", "s.created_at",
			"COALESCE(array_agg(u.id ORDER BY u.username) FILTER (WHERE u.id IS NOT NULL), '{}') AS employee_ids",
			"COALESCE(array_agg(u.username ORDER BY u.username) FILTER (WHERE u.id IS NOT NULL), '{}') AS employee_usernames",
		).
		From("stores s").
		LeftJoin("store_employees se ON se.store_id = s.id").
		LeftJoin("users u ON u.id = se.user_id").
		GroupBy("s.id")
	return postgres.ApplyScope(q, "s.id", scope)
}

// GetDetail returns a store visible in scope with its employees.
func (r *StoreRepo) GetDetail(ctx context.Context, storeID id.ID, scope filter.Scope) (*store.Detail, error) {
	sql, args, err := detailSelect(scope).Where(squirrel.Eq{"s.id": storeID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var d store.Detail
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &d, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("store", storeID)
		}
		return nil, fmt.Errorf("get store detail: %w", err)
	}
	return &d, nil
}

// List returns stores visible in scope ordered by name.
func (r *StoreRepo) List(ctx context.Context, scope filter.Scope) ([]store.Detail, error) {
	sql, args, err := detailSelect(scope).OrderBy("s.name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	items := []store.Detail{}
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	return items, nil
}

// NameTaken reports whether another store uses name.
func (r *StoreRepo) NameTaken(ctx context.Context, name string, excludeID *id.ID) (bool, error) {
	inner := postgres.Builder().Select("1").From("stores").Where(squirrel.Eq{"name": name})
	if excludeID != nil {
		inner = inner.Where(squirrel.NotEq{"id": *excludeID})
	}
	sql, args, err := inner.Prefix("SELECT EXISTS (").Suffix(")").ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var taken bool
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&taken); err != nil {
		return false, fmt.Errorf("check store name: %w", err)
	}
	return taken, nil
}

// ReplaceEmployees rewrites the assignment set of a store.
func (r *StoreRepo) ReplaceEmployees(ctx context.Context, storeID id.ID, userIDs []id.ID) error {
	q := r.txManager.GetQuerier(ctx)

	if _, err := q.Exec(ctx, `DELETE FROM store_employees WHERE store_id = $1`, storeID); err != nil {
		return fmt.Errorf("delete assignments: %w", err)
	}
	if len(userIDs) == 0 {
		return nil
	}

	insert := postgres.Builder().Insert("store_employees").Columns("id", "store_id", "user_id")
	for _, userID := range userIDs {
		insert = insert.Values(id.New(), storeID, userID)
	}
	sql, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert assignments: %w", err)
	}
	return nil
}

// CountDependents counts the reports and banks of a store.
func (r *StoreRepo) CountDependents(ctx context.Context, storeID id.ID) (int, int, error) {
	query := `
		SELECT (SELECT COUNT(*) FROM reports WHERE store_id = $1),
		       (SELECT COUNT(*) FROM banks WHERE store_id = $1)
	`
	var reports, banks int
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, query, storeID).Scan(&reports, &banks); err != nil {
		return 0, 0, fmt.Errorf("count store dependents: %w", err)
	}
	return reports, banks, nil
}

var _ store.Repository = (*StoreRepo)(nil)

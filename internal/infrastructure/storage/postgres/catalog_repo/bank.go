package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/apperror"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/id"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/catalogs/bank"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/filter"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/infrastructure/storage/postgres"
)

// BankRepo implements bank.Repository.
type BankRepo struct {
	txManager *postgres.TxManager
}

// NewBankRepo creates a bank repository.
func NewBankRepo(txManager *postgres.TxManager) *BankRepo {
	return &BankRepo{txManager: txManager}
}

// Create inserts a bank.
func (r *BankRepo) Create(ctx context.Context, b *bank.Bank) error {
	sql, args, err := postgres.Builder().
		Insert("banks").
		SetMap(postgres.ColumnMap(b, []string{"id", "name", "store_id"})).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&b.CreatedAt); err != nil {
		if _, ok := postgres.ForeignKeyViolation(err); ok {
			return apperror.NewNotFound("store", b.StoreID)
		}
		return fmt.Errorf("insert bank: %w", err)
	}
	return nil
}

// Rename changes the bank name.
func (r *BankRepo) Rename(ctx context.Context, bankID id.ID, name string) error {
	sql, args, err := postgres.Builder().
		Update("banks").
		Set("name", name).
		Where(squirrel.Eq{"id": bankID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update bank: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("bank", bankID)
	}
	return nil
}

// Delete removes a bank. Referenced banks fail with a validation error.
func (r *BankRepo) Delete(ctx context.Context, bankID id.ID) error {
	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, `DELETE FROM banks WHERE id = $1`, bankID)
	if err != nil {
		if _, ok := postgres.ForeignKeyViolation(err); ok {
			return apperror.NewValidation("bank is used in reports and cannot be deleted")
		}
		return fmt.Errorf("delete bank: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("bank", bankID)
	}
	return nil
}

func bankSelect(scope filter.Scope) squirrel.SelectBuilder {
	q := postgres.Builder().
		Select("b.id", "b.name", "b.store_id", "b.created_at", "s.name AS store_name").
		From("banks b").
		Join("stores s ON s.id = b.store_id")
	return postgres.ApplyScope(q, "b.store_id", scope)
}

// Get returns a bank visible in scope.
func (r *BankRepo) Get(ctx context.Context, bankID id.ID, scope filter.Scope) (*bank.View, error) {
	sql, args, err := bankSelect(scope).Where(squirrel.Eq{"b.id": bankID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var v bank.View
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &v, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("bank", bankID)
		}
		return nil, fmt.Errorf("get bank: %w", err)
	}
	return &v, nil
}

// List returns banks visible in scope, optionally of one store.
func (r *BankRepo) List(ctx context.Context, storeID *id.ID, scope filter.Scope) ([]bank.View, error) {
	q := bankSelect(scope).OrderBy("s.name", "b.name", "b.created_at")
	if storeID != nil {
		q = q.Where(squirrel.Eq{"b.store_id": *storeID})
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	items := []bank.View{}
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list banks: %w", err)
	}
	return items, nil
}

// CountBalanceLines counts report balance lines referencing the bank.
func (r *BankRepo) CountBalanceLines(ctx context.Context, bankID id.ID) (int, error) {
	var n int
	err := r.txManager.GetQuerier(ctx).
		QueryRow(ctx, `SELECT COUNT(*) FROM report_balances WHERE bank_id = $1`, bankID).
		Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count balance lines: %w", err)
	}
	return n, nil
}

var _ bank.Repository = (*BankRepo)(nil)

// Package auth_repo provides PostgreSQL implementations for auth repositories.
package auth_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/apperror"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/id"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/auth"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/infrastructure/storage/postgres"
)

const userColumns = `id, username, password_hash, role, created_at`

// UserRepo implements auth.UserRepository and auth.AssignmentRepository.
type UserRepo struct {
	txManager *postgres.TxManager
}

// NewUserRepo creates a new user repository.
func NewUserRepo(txManager *postgres.TxManager) *UserRepo {
	return &UserRepo{txManager: txManager}
}

// Create creates a new user.
func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	q := r.txManager.GetQuerier(ctx)

	query := `
		INSERT INTO users (id, username, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := q.Exec(ctx, query, user.ID, user.Username, user.PasswordHash, user.Role, user.CreatedAt)
	if err != nil {
		if _, ok := postgres.UniqueViolation(err); ok {
			return apperror.NewDuplicate("user", "username", user.Username)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByID retrieves user by ID.
func (r *UserRepo) GetByID(ctx context.Context, userID id.ID) (*auth.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
}

// GetByUsername retrieves user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *UserRepo) getOne(ctx context.Context, query string, key any) (*auth.User, error) {
	q := r.txManager.GetQuerier(ctx)

	var user auth.User
	err := q.QueryRow(ctx, query, key).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.Role, &user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFound("user", key)
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &user, nil
}

// UsernameTaken reports whether another user already has username.
func (r *UserRepo) UsernameTaken(ctx context.Context, username string, excludeID *id.ID) (bool, error) {
	q := r.txManager.GetQuerier(ctx)

	query := `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 AND ($2::uuid IS NULL OR id <> $2))`

	var taken bool
	if err := q.QueryRow(ctx, query, username, excludeID).Scan(&taken); err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return taken, nil
}

// Update persists username, password hash and role.
func (r *UserRepo) Update(ctx context.Context, user *auth.User) error {
	q := r.txManager.GetQuerier(ctx)

	query := `UPDATE users SET username = $2, password_hash = $3, role = $4 WHERE id = $1`

	result, err := q.Exec(ctx, query, user.ID, user.Username, user.PasswordHash, user.Role)
	if err != nil {
		if _, ok := postgres.UniqueViolation(err); ok {
			return apperror.NewDuplicate("user", "username", user.Username)
		}
		return fmt.Errorf("update user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("user", user.ID)
	}

	return nil
}

// Delete removes a user. Store assignments cascade.
func (r *UserRepo) Delete(ctx context.Context, userID id.ID) error {
	q := r.txManager.GetQuerier(ctx)

	result, err := q.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("user", userID)
	}

	return nil
}

// List returns all users ordered by creation time.
func (r *UserRepo) List(ctx context.Context) ([]auth.User, error) {
	q := r.txManager.GetQuerier(ctx)

	users := []auth.User{}
	if err := pgxscan.Select(ctx, q, &users, `SELECT `+userColumns+` FROM users ORDER BY created_at, username`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// ListEmployees returns employees with their store ids. assigned filters on
// having at least one assignment.
func (r *UserRepo) ListEmployees(ctx context.Context, assigned *bool) ([]auth.Employee, error) {
	q := r.txManager.GetQuerier(ctx)

	query := `
		SELECT u.id, u.username, u.password_hash, u.role, u.created_at,
		       COALESCE(array_agg(se.store_id ORDER BY se.created_at) FILTER (WHERE se.store_id IS NOT NULL), '{}') AS store_ids
		FROM users u
		LEFT JOIN store_employees se ON se.user_id = u.id
		WHERE u.role = 'employee'
		GROUP BY u.id
		HAVING $1::boolean IS NULL OR (COUNT(se.store_id) > 0) = $1
		ORDER BY u.username
	`

	employees := []auth.Employee{}
	if err := pgxscan.Select(ctx, q, &employees, query, assigned); err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return employees, nil
}

// StoreIDs returns the stores a user is assigned to.
func (r *UserRepo) StoreIDs(ctx context.Context, userID id.ID) ([]id.ID, error) {
	q := r.txManager.GetQuerier(ctx)

	ids := []id.ID{}
	query := `SELECT store_id FROM store_employees WHERE user_id = $1 ORDER BY created_at`
	if err := pgxscan.Select(ctx, q, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("list user stores: %w", err)
	}
	return ids, nil
}

// CountAuthoredReports counts reports created by the user.
func (r *UserRepo) CountAuthoredReports(ctx context.Context, userID id.ID) (int, error) {
	q := r.txManager.GetQuerier(ctx)

	var n int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM reports WHERE created_by = $1`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count user reports: %w", err)
	}
	return n, nil
}

// IsAssigned reports whether userID is assigned to storeID.
func (r *UserRepo) IsAssigned(ctx context.Context, userID, storeID id.ID) (bool, error) {
	q := r.txManager.GetQuerier(ctx)

	query := `SELECT EXISTS (SELECT 1 FROM store_employees WHERE user_id = $1 AND store_id = $2)`

	var ok bool
	if err := q.QueryRow(ctx, query, userID, storeID).Scan(&ok); err != nil {
		return false, fmt.Errorf("check assignment: %w", err)
	}
	return ok, nil
}

var (
	_ auth.UserRepository       = (*UserRepo)(nil)
	_ auth.AssignmentRepository = (*UserRepo)(nil)
)

// Package report_repo provides the PostgreSQL implementation of the report
// repository.
package report_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/apperror"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/id"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/types"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/filter"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/reports"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/infrastructure/storage/postgres"
)

const storeDateConstraint = "reports_store_date_key"

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txManager *postgres.TxManager
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *postgres.TxManager) *ReportRepo {
	return &ReportRepo{txManager: txManager}
}

// translateWriteError maps constraint violations of report writes to
// domain errors.
func translateWriteError(err error, r *reports.Report, op string) error {
	if constraint, ok := postgres.UniqueViolation(err); ok && constraint == storeDateConstraint {
		return apperror.NewConflict("a report for this store and date already exists").
			WithDetail("store_id", r.StoreID).
			WithDetail("report_date", r.ReportDate.String()).
			WithCause(err)
	}
	if _, ok := postgres.ForeignKeyViolation(err); ok {
		return apperror.NewNotFound("store", r.StoreID)
	}
	return fmt.Errorf("%s report: %w", op, err)
}

// Create inserts the report row.
func (r *ReportRepo) Create(ctx context.Context, rep *reports.Report) error {
	query := `
		INSERT INTO reports (id, store_id, report_date, total_balance, uang_nitip, note, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx, query,
		rep.ID, rep.StoreID, rep.ReportDate, rep.TotalBalance, rep.UangNitip, rep.Note, rep.CreatedBy,
	).Scan(&rep.CreatedAt, &rep.UpdatedAt)
	if err != nil {
		return translateWriteError(err, rep, "insert")
	}
	return nil
}

// Update persists every mutable column.
func (r *ReportRepo) Update(ctx context.Context, rep *reports.Report) error {
	query := `
		UPDATE reports
		SET store_id = $2, report_date = $3, total_balance = $4, uang_nitip = $5, note = $6, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx, query,
		rep.ID, rep.StoreID, rep.ReportDate, rep.TotalBalance, rep.UangNitip, rep.Note,
	).Scan(&rep.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.NewNotFound("report", rep.ID)
	}
	if err != nil {
		return translateWriteError(err, rep, "update")
	}
	return nil
}

// ReplaceBalances rewrites the balance lines of a report.
func (r *ReportRepo) ReplaceBalances(ctx context.Context, reportID id.ID, lines []reports.BalanceLine) error {
	q := r.txManager.GetQuerier(ctx)

	if _, err := q.Exec(ctx, `DELETE FROM report_balances WHERE report_id = $1`, reportID); err != nil {
		return fmt.Errorf("delete balances: %w", err)
	}
	if len(lines) == 0 {
		return nil
	}

	sql, args, err := insertBalances(reportID, lines).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		if _, ok := postgres.ForeignKeyViolation(err); ok {
			return apperror.NewValidation("balance references an unknown bank").WithCause(err)
		}
		return fmt.Errorf("insert balances: %w", err)
	}
	return nil
}

func insertBalances(reportID id.ID, lines []reports.BalanceLine) squirrel.InsertBuilder {
	q := postgres.Builder().Insert("report_balances").Columns("id", "report_id", "bank_id", "saldo")
	for _, l := range lines {
		q = q.Values(id.New(), reportID, l.BankID, l.Saldo)
	}
	return q
}

// Delete removes the balance lines and the report.
func (r *ReportRepo) Delete(ctx context.Context, reportID id.ID) error {
	q := r.txManager.GetQuerier(ctx)

	if _, err := q.Exec(ctx, `DELETE FROM report_balances WHERE report_id = $1`, reportID); err != nil {
		return fmt.Errorf("delete balances: %w", err)
	}
	result, err := q.Exec(ctx, `DELETE FROM reports WHERE id = $1`, reportID)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("report", reportID)
	}
	return nil
}

// detailSelect joins store and creator. The creator join is outer because
// deleting a user keeps their reports.
func detailSelect(scope filter.Scope) squirrel.SelectBuilder {
	q := postgres.Builder().
		Select(
			"r.id", "r.store_id", "r.report_date", "r.total_balance", "r.uang_nitip", "r.note",
			"r.created_by", "r.created_at", "r.updated_at",
			"s.name AS store_name", "s.address AS store_address",
			"COALESCE(u.username, '') AS creator_username",
		).
		From("reports r").
		Join("stores s ON s.id = r.store_id").
		LeftJoin("users u ON u.id = r.created_by")
	return postgres.ApplyScope(q, "r.store_id", scope)
}

// Get returns a report visible in scope with its balance lines.
func (r *ReportRepo) Get(ctx context.Context, reportID id.ID, scope filter.Scope) (*reports.Detail, error) {
	sql, args, err := detailSelect(scope).Where(squirrel.Eq{"r.id": reportID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var d reports.Detail
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &d, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("report", reportID)
		}
		return nil, fmt.Errorf("get report: %w", err)
	}

	items := []reports.Detail{d}
	if err := r.attachBalances(ctx, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

// attachBalances loads the balance lines of all items with one query.
func (r *ReportRepo) attachBalances(ctx context.Context, items []reports.Detail) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]id.ID, len(items))
	for i := range items {
		ids[i] = items[i].ID
		items[i].Balances = []reports.BalanceDetail{}
	}

	sql, args, err := balancesQuery(ids).ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	var lines []reports.BalanceDetail
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &lines, sql, args...); err != nil {
		return fmt.Errorf("load balances: %w", err)
	}

	byReport := make(map[id.ID][]reports.BalanceDetail, len(items))
	for _, l := range lines {
		byReport[l.ReportID] = append(byReport[l.ReportID], l)
	}
	for i := range items {
		if ls, ok := byReport[items[i].ID]; ok {
			items[i].Balances = ls
		}
	}
	return nil
}

func balancesQuery(reportIDs []id.ID) squirrel.SelectBuilder {
	return postgres.Builder().
		Select("rb.report_id", "rb.bank_id", "b.name AS bank_name", "rb.saldo").
		From("report_balances rb").
		Join("banks b ON b.id = rb.bank_id").
		Where(squirrel.Eq{"rb.report_id": reportIDs}).
		OrderBy("rb.report_id", "b.name")
}

// ExistsForDate reports whether the store already has a report on date.
func (r *ReportRepo) ExistsForDate(ctx context.Context, storeID id.ID, date types.Date, excludeID *id.ID) (bool, error) {
	inner := postgres.Builder().
		Select("1").
		From("reports").
		Where(squirrel.Eq{"store_id": storeID, "report_date": date})
	if excludeID != nil {
		inner = inner.Where(squirrel.NotEq{"id": *excludeID})
	}
	sql, args, err := inner.Prefix("SELECT EXISTS (").Suffix(")").ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var exists bool
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check report date: %w", err)
	}
	return exists, nil
}

// MissingBanks returns the ids that match no bank.
func (r *ReportRepo) MissingBanks(ctx context.Context, bankIDs []id.ID) ([]id.ID, error) {
	if len(bankIDs) == 0 {
		return nil, nil
	}
	sql, args, err := postgres.Builder().
		Select("id").
		From("banks").
		Where(squirrel.Eq{"id": bankIDs}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var found []id.ID
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &found, sql, args...); err != nil {
		return nil, fmt.Errorf("load banks: %w", err)
	}

	existing := make(map[id.ID]struct{}, len(found))
	for _, b := range found {
		existing[b] = struct{}{}
	}
	var missing []id.ID
	for _, b := range bankIDs {
		if _, ok := existing[b]; !ok {
			missing = append(missing, b)
		}
	}
	return missing, nil
}

// RemoveUangNitip moves uang nitip out of the total in one statement.
func (r *ReportRepo) RemoveUangNitip(ctx context.Context, reportID id.ID) (types.Money, types.Money, error) {
	query := `
		WITH old AS (
			SELECT id, uang_nitip FROM reports WHERE id = $1 FOR UPDATE
		)
		UPDATE reports r
		SET total_balance = r.total_balance - old.uang_nitip, uang_nitip = 0, updated_at = now()
		FROM old
		WHERE r.id = old.id
		RETURNING old.uang_nitip, r.total_balance
	`
	var removed, total types.Money
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx, query, reportID).Scan(&removed, &total)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.Zero(), types.Zero(), apperror.NewNotFound("report", reportID)
	}
	if err != nil {
		return types.Zero(), types.Zero(), fmt.Errorf("remove uang nitip: %w", err)
	}
	return removed, total, nil
}

// applyListFilter adds the filter and scope conditions shared by the page
// and count queries.
func applyListFilter(q squirrel.SelectBuilder, f reports.ListFilter, scope filter.Scope) squirrel.SelectBuilder {
	q = postgres.ApplyScope(q, "r.store_id", scope)
	if f.StoreID != nil {
		q = q.Where(squirrel.Eq{"r.store_id": *f.StoreID})
	}
	if f.StartDate != nil {
		q = q.Where(squirrel.GtOrEq{"r.report_date": *f.StartDate})
	}
	if f.EndDate != nil {
		q = q.Where(squirrel.LtOrEq{"r.report_date": *f.EndDate})
	}
	if f.CreatorID != nil {
		q = q.Where(squirrel.Eq{"r.created_by": *f.CreatorID})
	}
	return q
}

func listQuery(f reports.ListFilter, scope filter.Scope, page *filter.Page) squirrel.SelectBuilder {
	q := applyListFilter(detailSelect(filter.Scope{}), f, scope).
		OrderBy("r.report_date DESC", "r.created_at DESC")
	if page != nil {
		n := page.Normalize()
		q = q.Limit(uint64(n.Limit)).Offset(uint64(n.Offset()))
	}
	return q
}

func countQuery(f reports.ListFilter, scope filter.Scope) squirrel.SelectBuilder {
	return applyListFilter(postgres.Builder().Select("COUNT(*)").From("reports r"), f, scope)
}

// List returns matching reports with balances and the total count.
func (r *ReportRepo) List(ctx context.Context, f reports.ListFilter, scope filter.Scope, page *filter.Page) ([]reports.Detail, int, error) {
	querier := r.txManager.GetQuerier(ctx)

	sql, args, err := listQuery(f, scope, page).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}
	items := []reports.Detail{}
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}

	total := len(items)
	if page != nil {
		sql, args, err = countQuery(f, scope).ToSql()
		if err != nil {
			return nil, 0, fmt.Errorf("build count: %w", err)
		}
		if err := querier.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count reports: %w", err)
		}
	}

	if err := r.attachBalances(ctx, items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func seriesQuery(f reports.SeriesFilter) squirrel.SelectBuilder {
	q := postgres.Builder().
		Select("r.store_id", "s.name AS store_name", "r.report_date", "r.total_balance", "r.uang_nitip").
		From("reports r").
		Join("stores s ON s.id = r.store_id").
		Where(squirrel.GtOrEq{"r.report_date": f.From}).
		Where(squirrel.LtOrEq{"r.report_date": f.To}).
		OrderBy("r.report_date", "s.name")
	if f.StoreIDs != nil {
		q = q.Where(squirrel.Eq{"r.store_id": f.StoreIDs})
	}
	return q
}

// Series returns report points in a date range.
func (r *ReportRepo) Series(ctx context.Context, f reports.SeriesFilter) ([]reports.Point, error) {
	sql, args, err := seriesQuery(f).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	points := []reports.Point{}
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &points, sql, args...); err != nil {
		return nil, fmt.Errorf("load report series: %w", err)
	}
	return points, nil
}

var _ reports.Repository = (*ReportRepo)(nil)

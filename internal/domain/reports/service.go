package reports

import (
	"context"
	"fmt"
	"strings"

	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/apperror"
	appctx "github.com/alenprastyaa/hakimah-laporan-harian/internal/core/context"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/id"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/tx"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/types"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/audit"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/auth"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/filter"
	"github.com/alenprastyaa/hakimah-laporan-harian/pkg/logger"
)

// Operation names reported to Metrics.
const (
	OpCreate          = "create"
	OpUpdate          = "update"
	OpDelete          = "delete"
	OpRemoveUangNitip = "remove_uang_nitip"
	OpExport          = "export"
)

const historyLimit = 100

// Service implements the report lifecycle and its analyses.
type Service struct {
	repo      Repository
	stores    StoreLookup
	access    AccessChecker
	txManager tx.Manager
	audit     audit.Recorder
	cache     Cache
	metrics   Metrics
	today     func() types.Date
}

// Deps groups the optional collaborators of Service.
type Deps struct {
	Audit   audit.Recorder
	Cache   Cache
	Metrics Metrics
}

// NewService creates a report service. Zero-valued deps are replaced with
// no-op implementations.
func NewService(repo Repository, stores StoreLookup, access AccessChecker, txManager tx.Manager, deps Deps) *Service {
	s := &Service{
		repo:      repo,
		stores:    stores,
		access:    access,
		txManager: txManager,
		audit:     deps.Audit,
		cache:     deps.Cache,
		metrics:   deps.Metrics,
		today:     types.Today,
	}
	if s.audit == nil {
		s.audit = audit.Noop{}
	}
	if s.metrics == nil {
		s.metrics = noopMetrics{}
	}
	return s
}

type noopMetrics struct{}

func (noopMetrics) ReportOperation(string) {}
func (noopMetrics) CacheResult(string)     {}

// Create stores a new report for a store and day.
func (s *Service) Create(ctx context.Context, in Input) (*Report, error) {
	v, err := in.validate()
	if err != nil {
		return nil, err
	}
	if err := s.access.RequireStoreAccess(ctx, v.storeID); err != nil {
		return nil, err
	}
	callerID, err := auth.CallerID(ctx)
	if err != nil {
		return nil, err
	}

	r := &Report{
		ID:           id.New(),
		StoreID:      v.storeID,
		ReportDate:   v.date,
		TotalBalance: v.total(),
		UangNitip:    v.uangNitip,
		Note:         v.note,
		CreatedBy:    callerID,
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.checkWritable(ctx, v, nil); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, r); err != nil {
			return err
		}
		if err := s.repo.ReplaceBalances(ctx, r.ID, v.lines); err != nil {
			return err
		}
		return s.audit.Record(ctx, audit.EntityReport, r.ID, audit.ActionCreate, snapshot(r, v.lines))
	})
	if err != nil {
		return nil, err
	}

	s.written(ctx, OpCreate)
	logger.Info(ctx, "report created", "report_id", r.ID, "store_id", r.StoreID, "report_date", r.ReportDate)
	return r, nil
}

// checkWritable verifies the target store, the one-report-per-day rule and
// the referenced banks.
func (s *Service) checkWritable(ctx context.Context, v *validated, excludeID *id.ID) error {
	if _, err := s.stores.GetByID(ctx, v.storeID); err != nil {
		return err
	}
	exists, err := s.repo.ExistsForDate(ctx, v.storeID, v.date, excludeID)
	if err != nil {
		return fmt.Errorf("check report date: %w", err)
	}
	if exists {
		return duplicateReport(v.storeID, v.date)
	}

	bankIDs := make([]id.ID, len(v.lines))
	for i, l := range v.lines {
		bankIDs[i] = l.BankID
	}
	missing, err := s.repo.MissingBanks(ctx, bankIDs)
	if err != nil {
		return fmt.Errorf("check banks: %w", err)
	}
	if len(missing) > 0 {
		return apperror.NewValidation(fmt.Sprintf("bank %s not found", missing[0])).
			WithDetail("bank_ids", missing)
	}
	return nil
}

func duplicateReport(storeID id.ID, date types.Date) error {
	return apperror.NewConflict("a report for this store and date already exists").
		WithDetail("store_id", storeID).
		WithDetail("report_date", date.String())
}

// Update replaces every field of a report, including its balance lines.
func (s *Service) Update(ctx context.Context, reportID id.ID, in Input) (*Report, error) {
	v, err := in.validate()
	if err != nil {
		return nil, err
	}
	user, callerID, err := auth.Caller(ctx)
	if err != nil {
		return nil, err
	}

	var updated *Report
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.Get(ctx, reportID, filter.Scope{})
		if err != nil {
			return err
		}
		if !user.IsAdmin() {
			if err := s.access.RequireStoreAccess(ctx, current.StoreID); err != nil {
				return err
			}
			if err := s.access.RequireStoreAccess(ctx, v.storeID); err != nil {
				return err
			}
			if current.CreatedBy != callerID {
				return apperror.NewForbidden("employees can only update reports they created")
			}
		}
		if err := s.checkWritable(ctx, v, &reportID); err != nil {
			return err
		}

		r := current.Report
		r.StoreID = v.storeID
		r.ReportDate = v.date
		r.TotalBalance = v.total()
		r.UangNitip = v.uangNitip
		r.Note = v.note
		if err := s.repo.Update(ctx, &r); err != nil {
			return err
		}
		if err := s.repo.ReplaceBalances(ctx, reportID, v.lines); err != nil {
			return err
		}
		updated = &r
		return s.audit.Record(ctx, audit.EntityReport, reportID, audit.ActionUpdate, map[string]any{
			"old": snapshot(&current.Report, linesOf(current.Balances)),
			"new": snapshot(&r, v.lines),
		})
	})
	if err != nil {
		return nil, err
	}

	s.written(ctx, OpUpdate)
	logger.Info(ctx, "report updated", "report_id", reportID)
	return updated, nil
}

// Delete removes a report and its balance lines.
func (s *Service) Delete(ctx context.Context, reportID id.ID) (*Detail, error) {
	var deleted *Detail
	err := s.mutateOwned(ctx, reportID, "delete", func(ctx context.Context, current *Detail) error {
		if err := s.repo.Delete(ctx, reportID); err != nil {
			return err
		}
		deleted = current
		return s.audit.Record(ctx, audit.EntityReport, reportID, audit.ActionDelete,
			snapshot(&current.Report, linesOf(current.Balances)))
	})
	if err != nil {
		return nil, err
	}

	s.written(ctx, OpDelete)
	logger.Info(ctx, "report deleted", "report_id", reportID, "store_id", deleted.StoreID)
	return deleted, nil
}

// RemoveUangNitip zeroes the uang nitip of a report and lowers its total
// by the same amount.
func (s *Service) RemoveUangNitip(ctx context.Context, reportID id.ID) (*UangNitipRemoval, error) {
	var result *UangNitipRemoval
	err := s.mutateOwned(ctx, reportID, "update", func(ctx context.Context, current *Detail) error {
		removed, total, err := s.repo.RemoveUangNitip(ctx, reportID)
		if err != nil {
			return err
		}
		result = &UangNitipRemoval{
			ReportID:         reportID,
			NewUangNitip:     types.Zero(),
			NewTotalBalance:  total,
			RemovedUangNitip: removed,
		}
		return s.audit.Record(ctx, audit.EntityReport, reportID, audit.ActionRemoveUangNitip, map[string]any{
			"removed_uang_nitip": removed,
			"old_total_balance":  current.TotalBalance,
			"new_total_balance":  total,
		})
	})
	if err != nil {
		return nil, err
	}

	s.written(ctx, OpRemoveUangNitip)
	logger.Info(ctx, "uang nitip removed", "report_id", reportID, "removed", result.RemovedUangNitip)
	return result, nil
}

// mutateOwned loads a report within the caller's scope and runs fn in a
// transaction. Employees may only change reports they created.
func (s *Service) mutateOwned(ctx context.Context, reportID id.ID, verb string, fn func(context.Context, *Detail) error) error {
	user, callerID, err := auth.Caller(ctx)
	if err != nil {
		return err
	}
	scope, err := filter.ScopeFor(ctx)
	if err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.get(ctx, reportID, scope)
		if err != nil {
			return err
		}
		if !user.IsAdmin() && current.CreatedBy != callerID {
			return apperror.NewForbidden(fmt.Sprintf("employees can only %s reports they created", verb))
		}
		return fn(ctx, current)
	})
}

// Get returns one report with its balance lines.
func (s *Service) Get(ctx context.Context, reportID id.ID) (*Detail, error) {
	scope, err := filter.ScopeFor(ctx)
	if err != nil {
		return nil, err
	}
	return s.get(ctx, reportID, scope)
}

func (s *Service) get(ctx context.Context, reportID id.ID, scope filter.Scope) (*Detail, error) {
	d, err := s.repo.Get(ctx, reportID, scope)
	if err != nil {
		if apperror.IsNotFound(err) && scope.Restricted() {
			return nil, apperror.NewNotFoundOrDenied("report", reportID)
		}
		return nil, err
	}
	return d, nil
}

// List returns one page of reports. Employees see only their own reports
// of their assigned stores unless they ask for a creator explicitly, which
// must then be themselves.
func (s *Service) List(ctx context.Context, f ListFilter) (*ListResult, error) {
	scope, err := s.listScope(ctx, &f)
	if err != nil {
		return nil, err
	}
	page := f.Page.Normalize()
	items, total, err := s.repo.List(ctx, f, scope, &page)
	if err != nil {
		return nil, err
	}
	return &ListResult{
		Reports:    items,
		Page:       page.Page,
		Limit:      page.Limit,
		Total:      total,
		TotalPages: page.TotalPages(total),
	}, nil
}

// Export returns every report matching f under the same rules as List.
func (s *Service) Export(ctx context.Context, f ListFilter) ([]Detail, error) {
	scope, err := s.listScope(ctx, &f)
	if err != nil {
		return nil, err
	}
	items, _, err := s.repo.List(ctx, f, scope, nil)
	if err != nil {
		return nil, err
	}
	s.metrics.ReportOperation(OpExport)
	return items, nil
}

func (s *Service) listScope(ctx context.Context, f *ListFilter) (filter.Scope, error) {
	if f.StartDate != nil && f.EndDate != nil && f.StartDate.After(*f.EndDate) {
		return filter.Scope{}, apperror.NewValidation("start_date must not be after end_date")
	}
	user, callerID, err := auth.Caller(ctx)
	if err != nil {
		return filter.Scope{}, err
	}
	if user.IsAdmin() {
		return filter.Scope{}, nil
	}

	if f.StoreID != nil {
		if err := s.access.RequireStoreAccess(ctx, *f.StoreID); err != nil {
			return filter.Scope{}, err
		}
	}
	switch {
	case f.CreatorID == nil:
		f.CreatorID = &callerID
	case *f.CreatorID != callerID:
		return filter.Scope{}, apperror.NewForbidden("employees can only view reports they created")
	}
	return filter.Scope{EmployeeID: &callerID}, nil
}

// Profit compares each store's balance on date with the day before.
// A day without a report counts as zero.
func (s *Service) Profit(ctx context.Context, storeID *id.ID, date string) ([]Profit, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return nil, apperror.NewInvalidInput("date", "date is required")
	}
	day, err := types.ParseDate(date)
	if err != nil {
		return nil, apperror.NewInvalidInput("date", err.Error())
	}
	user := appctx.GetUser(ctx)
	if user == nil {
		return nil, apperror.NewUnauthorized("authentication required")
	}

	type target struct {
		id   id.ID
		name string
	}
	var targets []target
	switch {
	case storeID == nil && !user.IsAdmin():
		return nil, apperror.NewInvalidInput("store_id", "store_id is required for employees")
	case storeID == nil:
		all, err := s.stores.List(ctx, filter.Scope{})
		if err != nil {
			return nil, err
		}
		for _, st := range all {
			targets = append(targets, target{id: st.ID, name: st.Name})
		}
	default:
		if !user.IsAdmin() {
			if err := s.access.RequireStoreAccess(ctx, *storeID); err != nil {
				return nil, err
			}
		}
		st, err := s.stores.GetByID(ctx, *storeID)
		if err != nil {
			return nil, err
		}
		targets = append(targets, target{id: st.ID, name: st.Name})
	}

	result := make([]Profit, 0, len(targets))
	if len(targets) == 0 {
		return result, nil
	}

	ids := make([]id.ID, len(targets))
	for i, t := range targets {
		ids[i] = t.id
	}
	yesterday := day.AddDays(-1)
	points, err := s.repo.Series(ctx, SeriesFilter{StoreIDs: ids, From: yesterday, To: day})
	if err != nil {
		return nil, err
	}

	type key struct {
		store id.ID
		date  types.Date
	}
	balances := make(map[key]types.Money, len(points))
	for _, p := range points {
		balances[key{p.StoreID, p.ReportDate}] = p.TotalBalance
	}
	for _, t := range targets {
		today := balances[key{t.id, day}]
		before := balances[key{t.id, yesterday}]
		result = append(result, Profit{
			StoreID:          t.id,
			StoreName:        t.name,
			Date:             day,
			TodayBalance:     today,
			YesterdayBalance: before,
			Profit:           today.Sub(before),
		})
	}
	return result, nil
}

// Dashboard aggregates the reports visible to the caller over a period.
func (s *Service) Dashboard(ctx context.Context, f DashboardFilter) (*Dashboard, error) {
	period, err := resolvePeriod(f, s.today())
	if err != nil {
		return nil, err
	}
	top := clampTop(f.Top)
	scope, err := filter.ScopeFor(ctx)
	if err != nil {
		return nil, err
	}

	var storeIDs []id.ID
	switch {
	case f.StoreID != nil:
		if err := s.access.RequireStoreAccess(ctx, *f.StoreID); err != nil {
			return nil, err
		}
		storeIDs = []id.ID{*f.StoreID}
	case scope.Restricted():
		assigned, err := s.stores.List(ctx, scope)
		if err != nil {
			return nil, err
		}
		storeIDs = make([]id.ID, 0, len(assigned))
		for _, st := range assigned {
			storeIDs = append(storeIDs, st.ID)
		}
	}

	key := dashboardKey(scope, f.StoreID, period, top)
	cached, gen, cacheable := s.cachedDashboard(ctx, key)
	if cached != nil {
		return cached, nil
	}

	var points []Point
	if storeIDs == nil || len(storeIDs) > 0 {
		from, to := seriesWindow(period)
		points, err = s.repo.Series(ctx, SeriesFilter{StoreIDs: storeIDs, From: from, To: to})
		if err != nil {
			return nil, err
		}
	}

	d := BuildDashboard(points, period, top)
	if cacheable {
		if err := s.cache.Set(ctx, gen, key, d); err != nil {
			logger.Warn(ctx, "dashboard cache write failed", "error", err)
		}
	}
	return d, nil
}

// cachedDashboard looks key up. On a miss it returns the generation to store
// the recomputed value under, and whether storing is worth trying.
func (s *Service) cachedDashboard(ctx context.Context, key string) (*Dashboard, int64, bool) {
	if s.cache == nil {
		return nil, 0, false
	}
	var d Dashboard
	gen, hit, err := s.cache.Get(ctx, key, &d)
	if err != nil {
		logger.Warn(ctx, "dashboard cache read failed", "error", err)
		return nil, 0, false
	}
	if !hit {
		s.metrics.CacheResult("miss")
		return nil, gen, true
	}
	s.metrics.CacheResult("hit")
	return &d, gen, true
}

func dashboardKey(scope filter.Scope, storeID *id.ID, p Period, top int) string {
	who, store := "all", "all"
	if scope.Restricted() {
		who = scope.EmployeeID.String()
	}
	if storeID != nil {
		store = storeID.String()
	}
	return fmt.Sprintf("dashboard:%s:%s:%s:%s:%d", who, store, p.StartDate, p.EndDate, top)
}

// History returns the audit trail of a report, newest first.
func (s *Service) History(ctx context.Context, reportID id.ID) ([]audit.Entry, error) {
	if !appctx.HasRole(ctx, appctx.RoleAdmin) {
		return nil, apperror.NewForbidden("only admins can view report history")
	}
	entries, err := s.audit.History(ctx, audit.EntityReport, reportID, historyLimit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	return entries, nil
}

// written records a successful mutation and drops cached dashboards.
func (s *Service) written(ctx context.Context, op string) {
	s.metrics.ReportOperation(op)
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.Warn(ctx, "dashboard cache invalidation failed", "error", err)
	}
}

func snapshot(r *Report, lines []BalanceLine) map[string]any {
	return map[string]any{
		"store_id":      r.StoreID,
		"report_date":   r.ReportDate.String(),
		"total_balance": r.TotalBalance,
		"uang_nitip":    r.UangNitip,
		"keterangan":    r.Note,
		"balances":      lines,
	}
}

func linesOf(details []BalanceDetail) []BalanceLine {
	lines := make([]BalanceLine, len(details))
	for i, d := range details {
		lines[i] = BalanceLine{BankID: d.BankID, Saldo: d.Saldo}
	}
	return lines
}

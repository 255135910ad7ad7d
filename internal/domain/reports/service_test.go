package reports

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/apperror"
	appctx "github.com/alenprastyaa/hakimah-laporan-harian/internal/core/context"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/id"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/tx"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/types"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/auth"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/catalogs/store"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/filter"
)

// memRepo keeps reports, stores, banks and assignments in memory.
type memRepo struct {
	stores   map[id.ID]store.Store
	assigned map[id.ID]map[id.ID]bool // user -> stores
	banks    map[id.ID]string
	reports  map[id.ID]*Detail
	seq      int
}

func newMemRepo() *memRepo {
	return &memRepo{
		stores:   map[id.ID]store.Store{},
		assigned: map[id.ID]map[id.ID]bool{},
		banks:    map[id.ID]string{},
		reports:  map[id.ID]*Detail{},
	}
}

func (r *memRepo) visible(storeID id.ID, scope filter.Scope) bool {
	return !scope.Restricted() || r.assigned[*scope.EmployeeID][storeID]
}

func (r *memRepo) Create(_ context.Context, rep *Report) error {
	for _, existing := range r.reports {
		if existing.StoreID == rep.StoreID && existing.ReportDate == rep.ReportDate {
			return apperror.NewConflict("duplicate")
		}
	}
	r.seq++
	stored := *rep
	stored.CreatedAt = time.Date(2024, 1, 1, 0, 0, r.seq, 0, time.UTC)
	r.reports[rep.ID] = &Detail{Report: stored}
	return nil
}

func (r *memRepo) Update(_ context.Context, rep *Report) error {
	d, ok := r.reports[rep.ID]
	if !ok {
		return apperror.NewNotFound("report", rep.ID)
	}
	d.Report = *rep
	return nil
}

func (r *memRepo) ReplaceBalances(_ context.Context, reportID id.ID, lines []BalanceLine) error {
	d := r.reports[reportID]
	d.Balances = nil
	for _, l := range lines {
		d.Balances = append(d.Balances, BalanceDetail{ReportID: reportID, BankID: l.BankID, BankName: r.banks[l.BankID], Saldo: l.Saldo})
	}
	return nil
}

func (r *memRepo) Delete(_ context.Context, reportID id.ID) error {
	delete(r.reports, reportID)
	return nil
}

func (r *memRepo) Get(_ context.Context, reportID id.ID, scope filter.Scope) (*Detail, error) {
	d, ok := r.reports[reportID]
	if !ok || !r.visible(d.StoreID, scope) {
		return nil, apperror.NewNotFound("report", reportID)
	}
	out := *d
	out.StoreName = r.stores[d.StoreID].Name
	out.Balances = append([]BalanceDetail{}, d.Balances...)
	return &out, nil
}

func (r *memRepo) ExistsForDate(_ context.Context, storeID id.ID, date types.Date, excludeID *id.ID) (bool, error) {
	for rid, d := range r.reports {
		if d.StoreID == storeID && d.ReportDate == date && (excludeID == nil || rid != *excludeID) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) MissingBanks(_ context.Context, bankIDs []id.ID) ([]id.ID, error) {
	var missing []id.ID
	for _, b := range bankIDs {
		if _, ok := r.banks[b]; !ok {
			missing = append(missing, b)
		}
	}
	return missing, nil
}

func (r *memRepo) RemoveUangNitip(_ context.Context, reportID id.ID) (types.Money, types.Money, error) {
	d := r.reports[reportID]
	removed := d.UangNitip
	d.TotalBalance = d.TotalBalance.Sub(removed)
	d.UangNitip = types.Zero()
	return removed, d.TotalBalance, nil
}

func (r *memRepo) List(_ context.Context, f ListFilter, scope filter.Scope, page *filter.Page) ([]Detail, int, error) {
	out := []Detail{}
	for _, d := range r.reports {
		switch {
		case !r.visible(d.StoreID, scope),
			f.StoreID != nil && d.StoreID != *f.StoreID,
			f.CreatorID != nil && d.CreatedBy != *f.CreatorID,
			f.StartDate != nil && d.ReportDate.Before(*f.StartDate),
			f.EndDate != nil && d.ReportDate.After(*f.EndDate):
			continue
		}
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ReportDate != out[j].ReportDate {
			return out[i].ReportDate.After(out[j].ReportDate)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	total := len(out)
	if page != nil {
		start := page.Offset()
		if start > total {
			start = total
		}
		end := start + page.Normalize().Limit
		if end > total {
			end = total
		}
		out = out[start:end]
	}
	return out, total, nil
}

func (r *memRepo) Series(_ context.Context, f SeriesFilter) ([]Point, error) {
	var points []Point
	for _, d := range r.reports {
		if d.ReportDate.Before(f.From) || d.ReportDate.After(f.To) {
			continue
		}
		if f.StoreIDs != nil && !contains(f.StoreIDs, d.StoreID) {
			continue
		}
		points = append(points, Point{
			StoreID:      d.StoreID,
			StoreName:    r.stores[d.StoreID].Name,
			ReportDate:   d.ReportDate,
			TotalBalance: d.TotalBalance,
			UangNitip:    d.UangNitip,
		})
	}
	return points, nil
}

func contains(ids []id.ID, v id.ID) bool {
	for _, x := range ids {
		if x == v {
			return true
		}
	}
	return false
}

type storeLookup struct{ r *memRepo }

func (l storeLookup) GetByID(_ context.Context, storeID id.ID) (*store.Store, error) {
	s, ok := l.r.stores[storeID]
	if !ok {
		return nil, apperror.NewNotFound("store", storeID)
	}
	return &s, nil
}

func (l storeLookup) List(_ context.Context, scope filter.Scope) ([]store.Detail, error) {
	var out []store.Detail
	for sid, s := range l.r.stores {
		if l.r.visible(sid, scope) {
			out = append(out, store.Detail{Store: s})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memRepo) IsAssigned(_ context.Context, userID, storeID id.ID) (bool, error) {
	return r.assigned[userID][storeID], nil
}

type memCache struct {
	entries     map[string]*Dashboard
	gen         int64
	invalidated int
	afterGet    func()
}

func (c *memCache) Get(_ context.Context, key string, dest any) (int64, bool, error) {
	gen := c.gen
	d, ok := c.entries[key]
	if ok {
		*dest.(*Dashboard) = *d
	}
	if hook := c.afterGet; hook != nil {
		c.afterGet = nil
		hook()
	}
	return gen, ok, nil
}

func (c *memCache) Set(_ context.Context, gen int64, key string, value any) error {
	if gen != c.gen {
		return nil
	}
	c.entries[key] = value.(*Dashboard)
	return nil
}

func (c *memCache) Invalidate(context.Context) error {
	c.entries = map[string]*Dashboard{}
	c.gen++
	c.invalidated++
	return nil
}

type countingMetrics struct{ ops, cache map[string]int }

func (m *countingMetrics) ReportOperation(op string) { m.ops[op]++ }
func (m *countingMetrics) CacheResult(result string) { m.cache[result]++ }

type fixture struct {
	repo    *memRepo
	cache   *memCache
	metrics *countingMetrics
	svc     *Service

	admin, emp, other context.Context
	empID, otherID    id.ID
	storeA, storeB    id.ID
	bankA, bankA2     id.ID
	bankB             id.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newMemRepo()
	f := &fixture{
		repo:    repo,
		cache:   &memCache{entries: map[string]*Dashboard{}},
		metrics: &countingMetrics{ops: map[string]int{}, cache: map[string]int{}},
		empID:   id.New(),
		otherID: id.New(),
		storeA:  id.New(),
		storeB:  id.New(),
		bankA:   id.New(),
		bankA2:  id.New(),
		bankB:   id.New(),
	}
	repo.stores[f.storeA] = store.Store{ID: f.storeA, Name: "Toko A"}
	repo.stores[f.storeB] = store.Store{ID: f.storeB, Name: "Toko B"}
	repo.banks[f.bankA] = "BCA"
	repo.banks[f.bankA2] = "BRI"
	repo.banks[f.bankB] = "Mandiri"
	repo.assigned[f.empID] = map[id.ID]bool{f.storeA: true}
	repo.assigned[f.otherID] = map[id.ID]bool{f.storeA: true, f.storeB: true}

	f.svc = NewService(repo, storeLookup{repo}, auth.NewAccessChecker(repo), tx.Passthrough{}, Deps{Cache: f.cache, Metrics: f.metrics})
	f.svc.today = func() types.Date { return types.NewDate(2024, time.February, 20) }
	f.admin = userCtx(id.New(), appctx.RoleAdmin)
	f.emp = userCtx(f.empID, appctx.RoleEmployee)
	f.other = userCtx(f.otherID, appctx.RoleEmployee)
	return f
}

func userCtx(userID id.ID, role string) context.Context {
	return appctx.WithUser(context.Background(), &appctx.UserContext{UserID: userID.String(), Username: "u", Role: role})
}

func money(s string) types.Money { return types.MustMoney(s) }

func ptr[T any](v T) *T { return &v }

func balance(bankID id.ID, saldo string) LineInput {
	return LineInput{BankID: bankID, Saldo: ptr(money(saldo))}
}

func (f *fixture) input(storeID id.ID, date string, nitip string, lines ...LineInput) Input {
	return Input{StoreID: storeID, ReportDate: date, Balances: lines, UangNitip: ptr(money(nitip))}
}

func TestReportLifecycleScenario(t *testing.T) {
	f := newFixture(t)

	r, err := f.svc.Create(f.emp, f.input(f.storeA, "2024-01-10", "200", balance(f.bankA, "1000")))
	require.NoError(t, err)
	assert.True(t, money("1200").Equal(r.TotalBalance))
	assert.Equal(t, f.empID, r.CreatedBy)

	_, err = f.svc.Create(f.admin, f.input(f.storeA, "2024-01-10", "0", balance(f.bankA, "5")))
	assert.True(t, apperror.IsConflict(err))
	assert.Len(t, f.repo.reports, 1, "conflicting create writes nothing")

	removal, err := f.svc.RemoveUangNitip(f.emp, r.ID)
	require.NoError(t, err)
	assert.True(t, money("200").Equal(removal.RemovedUangNitip))
	assert.True(t, money("1000").Equal(removal.NewTotalBalance))
	assert.True(t, removal.NewUangNitip.IsZero())

	got, err := f.svc.Get(f.emp, r.ID)
	require.NoError(t, err)
	assert.True(t, money("1000").Equal(got.TotalBalance))
	assert.True(t, got.UangNitip.IsZero())

	assert.Equal(t, 1, f.metrics.ops[OpCreate])
	assert.Equal(t, 1, f.metrics.ops[OpRemoveUangNitip])
	assert.Equal(t, 2, f.cache.invalidated)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	line := balance(f.bankA, "10")

	cases := map[string]Input{
		"missing store":    {ReportDate: "2024-01-10", Balances: []LineInput{line}, UangNitip: ptr(money("0"))},
		"missing nitip":    {StoreID: f.storeA, ReportDate: "2024-01-10", Balances: []LineInput{line}},
		"no balances":      {StoreID: f.storeA, ReportDate: "2024-01-10", UangNitip: ptr(money("0"))},
		"bad date":         f.input(f.storeA, "10/01/2024", "0", line),
		"negative saldo":   f.input(f.storeA, "2024-01-10", "0", balance(f.bankA, "-1")),
		"missing saldo":    f.input(f.storeA, "2024-01-10", "200", LineInput{BankID: f.bankA}),
		"duplicate bank":   f.input(f.storeA, "2024-01-10", "0", line, line),
		"unknown bank":     f.input(f.storeA, "2024-01-10", "0", balance(id.New(), "1")),
		"nil bank id line": f.input(f.storeA, "2024-01-10", "0", LineInput{Saldo: ptr(money("1"))}),
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Create(f.admin, in)
			assert.True(t, apperror.IsValidation(err), "got %v", err)
		})
	}

	_, err := f.svc.Create(f.emp, f.input(f.storeB, "2024-01-10", "0", balance(f.bankB, "1")))
	assert.True(t, apperror.IsForbidden(err))

	_, err = f.svc.Create(f.admin, f.input(id.New(), "2024-01-10", "0", line))
	assert.True(t, apperror.IsNotFound(err))
	assert.Empty(t, f.repo.reports)
}

func TestCreateAcceptsNegativeUangNitip(t *testing.T) {
	f := newFixture(t)

	r, err := f.svc.Create(f.admin, f.input(f.storeA, "2024-01-10", "-150", balance(f.bankA, "1000")))
	require.NoError(t, err)
	assert.True(t, money("-150").Equal(r.UangNitip))
	assert.True(t, money("850").Equal(r.TotalBalance))
}

func TestUpdateReplacesBalances(t *testing.T) {
	f := newFixture(t)
	r, err := f.svc.Create(f.emp, f.input(f.storeA, "2024-01-10", "50",
		balance(f.bankA, "100"),
		balance(f.bankA2, "200")))
	require.NoError(t, err)

	in := f.input(f.storeA, "2024-01-11", "0", balance(f.bankA2, "75.5"))
	in.Note = ptr("  setoran sore  ")
	updated, err := f.svc.Update(f.emp, r.ID, in)
	require.NoError(t, err)
	assert.True(t, money("75.5").Equal(updated.TotalBalance))
	assert.Equal(t, "2024-01-11", updated.ReportDate.String())
	assert.Equal(t, "setoran sore", *updated.Note)

	got, err := f.svc.Get(f.admin, r.ID)
	require.NoError(t, err)
	require.Len(t, got.Balances, 1)
	assert.Equal(t, f.bankA2, got.Balances[0].BankID)
	assert.Equal(t, "BRI", got.Balances[0].BankName)

	// Updating onto its own date is not a conflict.
	_, err = f.svc.Update(f.emp, r.ID, in)
	assert.NoError(t, err)
}

func TestUpdateRules(t *testing.T) {
	f := newFixture(t)
	line := balance(f.bankA, "10")
	mine, err := f.svc.Create(f.emp, f.input(f.storeA, "2024-01-10", "0", line))
	require.NoError(t, err)
	_, err = f.svc.Create(f.emp, f.input(f.storeA, "2024-01-11", "0", line))
	require.NoError(t, err)
	theirs, err := f.svc.Create(f.admin, f.input(f.storeB, "2024-01-10", "0", balance(f.bankB, "1")))
	require.NoError(t, err)

	_, err = f.svc.Update(f.emp, mine.ID, f.input(f.storeA, "2024-01-11", "0", line))
	assert.True(t, apperror.IsConflict(err))

	_, err = f.svc.Update(f.emp, mine.ID, f.input(f.storeB, "2024-01-12", "0", line))
	assert.True(t, apperror.IsForbidden(err), "target store must be accessible")

	_, err = f.svc.Update(f.other, mine.ID, f.input(f.storeA, "2024-01-12", "0", line))
	assert.True(t, apperror.IsForbidden(err), "only the creator may update")

	_, err = f.svc.Update(f.emp, theirs.ID, f.input(f.storeA, "2024-01-12", "0", line))
	assert.True(t, apperror.IsForbidden(err))

	_, err = f.svc.Update(f.admin, id.New(), f.input(f.storeA, "2024-01-12", "0", line))
	assert.True(t, apperror.IsNotFound(err))

	_, err = f.svc.Update(f.admin, mine.ID, f.input(f.storeB, "2024-01-12", "0", balance(f.bankB, "3")))
	assert.NoError(t, err, "admins may move a report to another store")
}

func TestDeleteReport(t *testing.T) {
	f := newFixture(t)
	line := balance(f.bankA, "10")
	r, err := f.svc.Create(f.emp, f.input(f.storeA, "2024-01-10", "0", line))
	require.NoError(t, err)
	theirs, err := f.svc.Create(f.admin, f.input(f.storeB, "2024-01-10", "0", balance(f.bankB, "1")))
	require.NoError(t, err)

	_, err = f.svc.Delete(f.emp, theirs.ID)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "report not found or access denied", appErr.Message)

	_, err = f.svc.Delete(f.other, r.ID)
	assert.True(t, apperror.IsForbidden(err))

	_, err = f.svc.RemoveUangNitip(f.other, r.ID)
	assert.True(t, apperror.IsForbidden(err))

	deleted, err := f.svc.Delete(f.emp, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Toko A", deleted.StoreName)
	_, ok = f.repo.reports[r.ID]
	assert.False(t, ok)

	_, err = f.svc.Delete(f.admin, r.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestListReports(t *testing.T) {
	f := newFixture(t)
	line := balance(f.bankA, "10")
	for _, d := range []string{"2024-01-10", "2024-01-12", "2024-01-11"} {
		_, err := f.svc.Create(f.emp, f.input(f.storeA, d, "0", line))
		require.NoError(t, err)
	}
	_, err := f.svc.Create(f.other, f.input(f.storeA, "2024-01-13", "0", line))
	require.NoError(t, err)
	_, err = f.svc.Create(f.admin, f.input(f.storeB, "2024-01-13", "0", balance(f.bankB, "1")))
	require.NoError(t, err)

	res, err := f.svc.List(f.emp, ListFilter{})
	require.NoError(t, err)
	require.Equal(t, 3, res.Total, "employees default to their own reports")
	assert.Equal(t, "2024-01-12", res.Reports[0].ReportDate.String())
	assert.Equal(t, "2024-01-10", res.Reports[2].ReportDate.String())
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, filter.DefaultLimit, res.Limit)

	_, err = f.svc.List(f.emp, ListFilter{CreatorID: &f.otherID})
	assert.True(t, apperror.IsForbidden(err))

	_, err = f.svc.List(f.emp, ListFilter{StoreID: &f.storeB})
	assert.True(t, apperror.IsForbidden(err))

	all, err := f.svc.List(f.admin, ListFilter{Page: filter.Page{Page: 2, Limit: 2}})
	require.NoError(t, err)
	assert.Equal(t, 5, all.Total)
	assert.Equal(t, 3, all.TotalPages)
	assert.Len(t, all.Reports, 2)

	start := types.NewDate(2024, time.January, 11)
	end := types.NewDate(2024, time.January, 12)
	ranged, err := f.svc.List(f.admin, ListFilter{StartDate: &start, EndDate: &end})
	require.NoError(t, err)
	assert.Equal(t, 2, ranged.Total)

	_, err = f.svc.List(f.admin, ListFilter{StartDate: &end, EndDate: &start})
	assert.True(t, apperror.IsValidation(err))

	exported, err := f.svc.Export(f.other, ListFilter{StoreID: &f.storeA})
	require.NoError(t, err)
	assert.Len(t, exported, 1)
	assert.Equal(t, 1, f.metrics.ops[OpExport])
}

func TestProfit(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(f.emp, f.input(f.storeA, "2024-01-10", "0", balance(f.bankA, "500")))
	require.NoError(t, err)

	res, err := f.svc.Profit(f.emp, &f.storeA, "2024-01-10")
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.True(t, money("500").Equal(res[0].Profit))
	assert.True(t, res[0].YesterdayBalance.IsZero())
	assert.Equal(t, "Toko A", res[0].StoreName)

	res, err = f.svc.Profit(f.emp, &f.storeA, "2024-01-11")
	require.NoError(t, err)
	assert.True(t, money("-500").Equal(res[0].Profit))

	all, err := f.svc.Profit(f.admin, nil, "2024-01-10")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Toko B", all[1].StoreName)
	assert.True(t, all[1].Profit.IsZero())

	_, err = f.svc.Profit(f.emp, nil, "2024-01-10")
	assert.True(t, apperror.IsValidation(err))

	_, err = f.svc.Profit(f.emp, &f.storeB, "2024-01-10")
	assert.True(t, apperror.IsForbidden(err))

	missing := id.New()
	_, err = f.svc.Profit(f.admin, &missing, "2024-01-10")
	assert.True(t, apperror.IsNotFound(err))

	_, err = f.svc.Profit(f.admin, nil, "")
	assert.True(t, apperror.IsValidation(err))
}

func TestDashboardScopingAndCache(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(f.emp, f.input(f.storeA, "2024-02-05", "10", balance(f.bankA, "100")))
	require.NoError(t, err)
	_, err = f.svc.Create(f.admin, f.input(f.storeB, "2024-02-06", "0", balance(f.bankB, "900")))
	require.NoError(t, err)

	d, err := f.svc.Dashboard(f.emp, DashboardFilter{})
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", d.Period.StartDate.String())
	assert.Equal(t, "2024-02-20", d.Period.EndDate.String())
	assert.Equal(t, 1, d.ReportsInPeriod, "employees only aggregate assigned stores")
	assert.Equal(t, 1, f.metrics.cache["miss"])

	_, err = f.svc.Dashboard(f.emp, DashboardFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, f.metrics.cache["hit"])

	admin, err := f.svc.Dashboard(f.admin, DashboardFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, admin.ReportsInPeriod)

	_, err = f.svc.Dashboard(f.emp, DashboardFilter{StoreID: &f.storeB})
	assert.True(t, apperror.IsForbidden(err))

	_, err = f.svc.Create(f.emp, f.input(f.storeA, "2024-02-07", "0", balance(f.bankA, "1")))
	require.NoError(t, err)
	d, err = f.svc.Dashboard(f.emp, DashboardFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, d.ReportsInPeriod, "writes invalidate cached dashboards")

	lonely := userCtx(id.New(), appctx.RoleEmployee)
	empty, err := f.svc.Dashboard(lonely, DashboardFilter{})
	require.NoError(t, err)
	assert.Zero(t, empty.ReportsInPeriod)
	assert.Empty(t, empty.TopStores)
}

func TestDashboardNotCachedAcrossConcurrentWrite(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(f.emp, f.input(f.storeA, "2024-02-05", "10", balance(f.bankA, "100")))
	require.NoError(t, err)

	// a report write invalidates while the missed dashboard is computed
	f.cache.afterGet = func() { _ = f.cache.Invalidate(context.Background()) }
	_, err = f.svc.Dashboard(f.emp, DashboardFilter{})
	require.NoError(t, err)
	assert.Empty(t, f.cache.entries, "stale dashboard must not be stored under the new generation")

	_, err = f.svc.Dashboard(f.emp, DashboardFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, f.metrics.cache["miss"])
	assert.Zero(t, f.metrics.cache["hit"])
}

func TestHistoryAdminOnly(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.History(f.emp, id.New())
	assert.True(t, apperror.IsForbidden(err))

	entries, err := f.svc.History(f.admin, id.New())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

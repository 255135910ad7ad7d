package reports

import (
	"sort"

	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/apperror"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/id"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/types"
)

// Top store limits.
const (
	DefaultTopStores = 5
	MaxTopStores     = 50
)

// DashboardFilter selects the dashboard period and stores.
type DashboardFilter struct {
	StoreID   *id.ID
	StartDate *types.Date
	EndDate   *types.Date
	Top       int
}

// Dashboard aggregates reports of a period.
type Dashboard struct {
	Period                 Period            `json:"period"`
	ReportsInPeriod        int               `json:"reports_in_period"`
	AverageBalance         types.Money       `json:"average_balance"`
	FirstBalance           types.Money       `json:"first_balance"`
	LastBalance            types.Money       `json:"last_balance"`
	PeriodProfit           types.Money       `json:"period_profit"`
	PeriodProfitPercentage types.Money       `json:"period_profit_percentage"`
	BalanceTrend           []DailyBalance    `json:"balance_trend"`
	ProfitTrend            []DailyProfit     `json:"profit_trend"`
	TopStores              []StoreGrowth     `json:"top_stores"`
	MonthlyComparison      MonthlyComparison `json:"monthly_comparison"`
}

// Period is an inclusive date range.
type Period struct {
	StartDate types.Date `json:"start_date"`
	EndDate   types.Date `json:"end_date"`
}

// Contains reports whether d lies within p.
func (p Period) Contains(d types.Date) bool {
	return !d.Before(p.StartDate) && !d.After(p.EndDate)
}

// DailyBalance sums all reports of one day.
type DailyBalance struct {
	Date         types.Date  `json:"date"`
	TotalBalance types.Money `json:"total_balance"`
	UangNitip    types.Money `json:"uang_nitip"`
}

// DailyProfit is the change against the previous reported day.
type DailyProfit struct {
	Date   types.Date  `json:"date"`
	Profit types.Money `json:"profit"`
}

// StoreGrowth is the balance spread of a store within the period.
type StoreGrowth struct {
	StoreID     id.ID       `json:"store_id"`
	StoreName   string      `json:"store_name"`
	MinBalance  types.Money `json:"min_balance"`
	MaxBalance  types.Money `json:"max_balance"`
	Growth      types.Money `json:"growth"`
	ReportCount int         `json:"report_count"`
}

// MonthSummary aggregates the reports of a calendar month.
type MonthSummary struct {
	Month          string      `json:"month"`
	ReportCount    int         `json:"report_count"`
	AverageBalance types.Money `json:"average_balance"`
	TotalUangNitip types.Money `json:"total_uang_nitip"`
}

// MonthlyComparison compares the month of the period end with the month before.
type MonthlyComparison struct {
	Current             MonthSummary `json:"current"`
	Previous            MonthSummary `json:"previous"`
	ReportCountDelta    int          `json:"report_count_delta"`
	AverageBalanceDelta types.Money  `json:"average_balance_delta"`
	UangNitipDelta      types.Money  `json:"uang_nitip_delta"`
}

// resolvePeriod applies the default period: first of the current month
// through today.
func resolvePeriod(f DashboardFilter, today types.Date) (Period, error) {
	p := Period{StartDate: today.MonthStart(), EndDate: today}
	if f.StartDate != nil {
		p.StartDate = *f.StartDate
	}
	if f.EndDate != nil {
		p.EndDate = *f.EndDate
	}
	if p.StartDate.After(p.EndDate) {
		return p, apperror.NewValidation("start_date must not be after end_date")
	}
	return p, nil
}

func clampTop(n int) int {
	if n <= 0 {
		return DefaultTopStores
	}
	if n > MaxTopStores {
		return MaxTopStores
	}
	return n
}

// seriesWindow is the date range that covers both the period and the two
// months of the monthly comparison.
func seriesWindow(p Period) (types.Date, types.Date) {
	from := p.EndDate.MonthStart().AddDays(-1).MonthStart()
	if p.StartDate.Before(from) {
		from = p.StartDate
	}
	to := p.EndDate.MonthEnd()
	return from, to
}

// BuildDashboard computes the dashboard of period from points. Points
// outside the period only feed the monthly comparison.
func BuildDashboard(points []Point, period Period, top int) *Dashboard {
	d := &Dashboard{
		Period:       period,
		BalanceTrend: []DailyBalance{},
		ProfitTrend:  []DailyProfit{},
		TopStores:    []StoreGrowth{},
	}

	inPeriod := make([]Point, 0, len(points))
	for _, p := range points {
		if period.Contains(p.ReportDate) {
			inPeriod = append(inPeriod, p)
		}
	}

	d.ReportsInPeriod = len(inPeriod)
	total := types.Zero()
	for _, p := range inPeriod {
		total = total.Add(p.TotalBalance)
	}
	d.AverageBalance = types.Average(total, len(inPeriod))

	d.BalanceTrend = dailySeries(inPeriod)
	if n := len(d.BalanceTrend); n > 0 {
		d.FirstBalance = d.BalanceTrend[0].TotalBalance
		d.LastBalance = d.BalanceTrend[n-1].TotalBalance
	}
	d.PeriodProfit = d.LastBalance.Sub(d.FirstBalance)
	d.PeriodProfitPercentage = types.Percentage(d.PeriodProfit, d.FirstBalance)

	for i := 1; i < len(d.BalanceTrend); i++ {
		d.ProfitTrend = append(d.ProfitTrend, DailyProfit{
			Date:   d.BalanceTrend[i].Date,
			Profit: d.BalanceTrend[i].TotalBalance.Sub(d.BalanceTrend[i-1].TotalBalance),
		})
	}

	d.TopStores = topStores(inPeriod, clampTop(top))
	d.MonthlyComparison = compareMonths(points, period.EndDate)
	return d
}

func dailySeries(points []Point) []DailyBalance {
	byDay := make(map[types.Date]*DailyBalance)
	for _, p := range points {
		day, ok := byDay[p.ReportDate]
		if !ok {
			day = &DailyBalance{Date: p.ReportDate, TotalBalance: types.Zero(), UangNitip: types.Zero()}
			byDay[p.ReportDate] = day
		}
		day.TotalBalance = day.TotalBalance.Add(p.TotalBalance)
		day.UangNitip = day.UangNitip.Add(p.UangNitip)
	}

	series := make([]DailyBalance, 0, len(byDay))
	for _, day := range byDay {
		series = append(series, *day)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
	return series
}

func topStores(points []Point, n int) []StoreGrowth {
	byStore := make(map[id.ID]*StoreGrowth)
	for _, p := range points {
		g, ok := byStore[p.StoreID]
		if !ok {
			byStore[p.StoreID] = &StoreGrowth{
				StoreID:     p.StoreID,
				StoreName:   p.StoreName,
				MinBalance:  p.TotalBalance,
				MaxBalance:  p.TotalBalance,
				ReportCount: 1,
			}
			continue
		}
		if p.TotalBalance.LessThan(g.MinBalance) {
			g.MinBalance = p.TotalBalance
		}
		if p.TotalBalance.GreaterThan(g.MaxBalance) {
			g.MaxBalance = p.TotalBalance
		}
		g.ReportCount++
	}

	out := make([]StoreGrowth, 0, len(byStore))
	for _, g := range byStore {
		g.Growth = g.MaxBalance.Sub(g.MinBalance)
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Growth.Cmp(out[j].Growth); c != 0 {
			return c > 0
		}
		return out[i].StoreName < out[j].StoreName
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func compareMonths(points []Point, end types.Date) MonthlyComparison {
	current := end.MonthStart()
	previous := current.AddDays(-1).MonthStart()
	cur := summarizeMonth(points, current)
	prev := summarizeMonth(points, previous)
	return MonthlyComparison{
		Current:             cur,
		Previous:            prev,
		ReportCountDelta:    cur.ReportCount - prev.ReportCount,
		AverageBalanceDelta: cur.AverageBalance.Sub(prev.AverageBalance),
		UangNitipDelta:      cur.TotalUangNitip.Sub(prev.TotalUangNitip),
	}
}

func summarizeMonth(points []Point, start types.Date) MonthSummary {
	month := Period{StartDate: start, EndDate: start.MonthEnd()}
	s := MonthSummary{Month: start.Month(), TotalUangNitip: types.Zero()}
	total := types.Zero()
	for _, p := range points {
		if !month.Contains(p.ReportDate) {
			continue
		}
		s.ReportCount++
		total = total.Add(p.TotalBalance)
		s.TotalUangNitip = s.TotalUangNitip.Add(p.UangNitip)
	}
	s.AverageBalance = types.Average(total, s.ReportCount)
	return s
}

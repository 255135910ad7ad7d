package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/id"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/types"
)

func day(d int) types.Date { return types.NewDate(2024, time.February, d) }

func TestBuildDashboard(t *testing.T) {
	a, b, c := id.New(), id.New(), id.New()
	points := []Point{
		{StoreID: a, StoreName: "Alpha", ReportDate: day(1), TotalBalance: money("100"), UangNitip: money("10")},
		{StoreID: b, StoreName: "Beta", ReportDate: day(1), TotalBalance: money("300"), UangNitip: money("0")},
		{StoreID: a, StoreName: "Alpha", ReportDate: day(2), TotalBalance: money("250"), UangNitip: money("5")},
		{StoreID: c, StoreName: "Gamma", ReportDate: day(3), TotalBalance: money("50"), UangNitip: money("0")},
		{StoreID: b, StoreName: "Beta", ReportDate: day(3), TotalBalance: money("450"), UangNitip: money("0")},
		// previous month, only for the comparison
		{StoreID: a, StoreName: "Alpha", ReportDate: types.NewDate(2024, time.January, 31), TotalBalance: money("80"), UangNitip: money("20")},
	}

	d := BuildDashboard(points, Period{StartDate: day(1), EndDate: day(10)}, 0)

	assert.Equal(t, 5, d.ReportsInPeriod)
	assert.Equal(t, "230", d.AverageBalance.String())

	require.Len(t, d.BalanceTrend, 3)
	assert.Equal(t, "400", d.BalanceTrend[0].TotalBalance.String())
	assert.Equal(t, "10", d.BalanceTrend[0].UangNitip.String())
	assert.Equal(t, "250", d.BalanceTrend[1].TotalBalance.String())
	assert.Equal(t, "500", d.BalanceTrend[2].TotalBalance.String())

	assert.Equal(t, "400", d.FirstBalance.String())
	assert.Equal(t, "500", d.LastBalance.String())
	assert.Equal(t, "100", d.PeriodProfit.String())
	assert.Equal(t, "25", d.PeriodProfitPercentage.String())

	require.Len(t, d.ProfitTrend, 2)
	assert.Equal(t, day(2), d.ProfitTrend[0].Date)
	assert.Equal(t, "-150", d.ProfitTrend[0].Profit.String())
	assert.Equal(t, "250", d.ProfitTrend[1].Profit.String())

	require.Len(t, d.TopStores, 3)
	assert.Equal(t, "Alpha", d.TopStores[0].StoreName, "ties on growth fall back to name")
	assert.Equal(t, "150", d.TopStores[0].Growth.String())
	assert.Equal(t, "Beta", d.TopStores[1].StoreName)
	assert.Equal(t, 2, d.TopStores[1].ReportCount)
	assert.Equal(t, "Gamma", d.TopStores[2].StoreName)
	assert.True(t, d.TopStores[2].Growth.IsZero())

	mc := d.MonthlyComparison
	assert.Equal(t, "2024-02", mc.Current.Month)
	assert.Equal(t, "2024-01", mc.Previous.Month)
	assert.Equal(t, 5, mc.Current.ReportCount)
	assert.Equal(t, 1, mc.Previous.ReportCount)
	assert.Equal(t, 4, mc.ReportCountDelta)
	assert.Equal(t, "150", mc.AverageBalanceDelta.String())
	assert.Equal(t, "-5", mc.UangNitipDelta.String())
}

func TestBuildDashboardEmptyAndTopLimit(t *testing.T) {
	d := BuildDashboard(nil, Period{StartDate: day(1), EndDate: day(29)}, 0)
	assert.Zero(t, d.ReportsInPeriod)
	assert.True(t, d.AverageBalance.IsZero())
	assert.True(t, d.PeriodProfitPercentage.IsZero())
	assert.Empty(t, d.BalanceTrend)
	assert.Empty(t, d.ProfitTrend)
	assert.NotNil(t, d.TopStores)

	var points []Point
	for i := 0; i < 8; i++ {
		points = append(points, Point{StoreID: id.New(), StoreName: string(rune('A' + i)), ReportDate: day(1), TotalBalance: money("1")})
	}
	assert.Len(t, BuildDashboard(points, Period{StartDate: day(1), EndDate: day(1)}, 0).TopStores, DefaultTopStores)
	assert.Len(t, BuildDashboard(points, Period{StartDate: day(1), EndDate: day(1)}, 2).TopStores, 2)
	assert.Equal(t, MaxTopStores, clampTop(1000))
}

func TestFirstBalanceZeroPercentage(t *testing.T) {
	s := id.New()
	points := []Point{
		{StoreID: s, StoreName: "S", ReportDate: day(1), TotalBalance: money("0")},
		{StoreID: s, StoreName: "S", ReportDate: day(2), TotalBalance: money("70")},
	}
	d := BuildDashboard(points, Period{StartDate: day(1), EndDate: day(2)}, 5)
	assert.Equal(t, "70", d.PeriodProfit.String())
	assert.True(t, d.PeriodProfitPercentage.IsZero())
}

func TestResolvePeriod(t *testing.T) {
	today := day(20)
	p, err := resolvePeriod(DashboardFilter{}, today)
	require.NoError(t, err)
	assert.Equal(t, day(1), p.StartDate)
	assert.Equal(t, today, p.EndDate)

	start := types.NewDate(2024, time.January, 5)
	p, err = resolvePeriod(DashboardFilter{StartDate: &start}, today)
	require.NoError(t, err)
	assert.Equal(t, start, p.StartDate)

	end := types.NewDate(2024, time.January, 1)
	_, err = resolvePeriod(DashboardFilter{StartDate: &start, EndDate: &end}, today)
	assert.Error(t, err)

	from, to := seriesWindow(Period{StartDate: day(10), EndDate: day(15)})
	assert.Equal(t, "2024-01-01", from.String())
	assert.Equal(t, "2024-02-29", to.String())
}

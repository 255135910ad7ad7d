package report_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/id"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/types"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/filter"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/reports"
)

func TestListQuery_AdminNoFilters(t *testing.T) {
	sql, args, err := listQuery(reports.ListFilter{}, filter.Scope{}, &filter.Page{Page: 3, Limit: 10}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM reports r JOIN stores s ON s.id = r.store_id LEFT JOIN users u ON u.id = r.created_by")
	assert.NotContains(t, sql, "WHERE")
	assert.Contains(t, sql, "ORDER BY r.report_date DESC, r.created_at DESC LIMIT 10 OFFSET 20")
	assert.Empty(t, args)
}

func TestListQuery_EmployeeFilters(t *testing.T) {
	emp, storeID := id.New(), id.New()
	start := types.NewDate(2024, time.January, 1)
	end := types.NewDate(2024, time.January, 31)
	f := reports.ListFilter{StoreID: &storeID, StartDate: &start, EndDate: &end, CreatorID: &emp}

	sql, args, err := listQuery(f, filter.Scope{EmployeeID: &emp}, nil).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "r.store_id IN (SELECT se.store_id FROM store_employees se WHERE se.user_id = $1)")
	assert.Contains(t, sql, "r.store_id = $2")
	assert.Contains(t, sql, "r.report_date >= $3")
	assert.Contains(t, sql, "r.report_date <= $4")
	assert.Contains(t, sql, "r.created_by = $5")
	assert.NotContains(t, sql, "LIMIT")
	require.Len(t, args, 5)
	assert.Equal(t, emp, args[0])
	assert.Equal(t, start, args[2])
}

func TestCountQuery(t *testing.T) {
	emp := id.New()
	sql, args, err := countQuery(reports.ListFilter{CreatorID: &emp}, filter.Scope{EmployeeID: &emp}).ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT COUNT(*) FROM reports r WHERE r.store_id IN (SELECT se.store_id FROM store_employees se WHERE se.user_id = $1) AND r.created_by = $2",
		sql)
	assert.Len(t, args, 2)
}

func TestSeriesQuery(t *testing.T) {
	from := types.NewDate(2024, time.January, 9)
	to := types.NewDate(2024, time.January, 10)
	a, b := id.New(), id.New()

	sql, args, err := seriesQuery(reports.SeriesFilter{StoreIDs: []id.ID{a, b}, From: from, To: to}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "r.report_date >= $1 AND r.report_date <= $2 AND r.store_id IN ($3,$4)")
	assert.Contains(t, sql, "ORDER BY r.report_date, s.name")
	assert.Len(t, args, 4)

	sql, _, err = seriesQuery(reports.SeriesFilter{From: from, To: to}).ToSql()
	require.NoError(t, err)
	assert.NotContains(t, sql, "store_id IN")

	sql, _, err = seriesQuery(reports.SeriesFilter{StoreIDs: []id.ID{}, From: from, To: to}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "(1=0)", "an empty store set matches nothing")
}

func TestInsertBalances(t *testing.T) {
	reportID := id.New()
	lines := []reports.BalanceLine{
		{BankID: id.New(), Saldo: types.MustMoney("1000")},
		{BankID: id.New(), Saldo: types.MustMoney("250.50")},
	}

	sql, args, err := insertBalances(reportID, lines).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO report_balances (id,report_id,bank_id,saldo) VALUES ($1,$2,$3,$4),($5,$6,$7,$8)", sql)
	require.Len(t, args, 8)
	assert.Equal(t, reportID, args[1])
	assert.Equal(t, lines[1].BankID, args[6])
}

func TestBalancesQuery(t *testing.T) {
	sql, args, err := balancesQuery([]id.ID{id.New()}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE rb.report_id IN ($1)")
	assert.Len(t, args, 1)
}

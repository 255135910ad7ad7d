package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-10")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", d.String())
	assert.Equal(t, "2024-01", d.Month())

	for _, bad := range []string{"", "2024-1-10", "10-01-2024", "2024-02-30", "2024-01-10T00:00:00Z"} {
		_, err := ParseDate(bad)
		assert.Error(t, err, bad)
	}
}

func TestDateArithmetic(t *testing.T) {
	d := NewDate(2024, time.March, 1)
	assert.Equal(t, "2024-02-29", d.AddDays(-1).String())
	assert.Equal(t, "2024-03-01", NewDate(2024, time.March, 17).MonthStart().String())
	assert.Equal(t, "2024-02-29", NewDate(2024, time.February, 3).MonthEnd().String())
	assert.Equal(t, "2023-12-01", NewDate(2024, time.January, 15).MonthStart().AddDays(-1).MonthStart().String())
	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.After(d.AddDays(-1)))
}

func TestDateJSON(t *testing.T) {
	var payload struct {
		Date Date `json:"date"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-01-11"}`), &payload))
	assert.Equal(t, NewDate(2024, time.January, 11), payload.Date)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-01-11"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"date":"11/01/2024"}`), &payload))
}

func TestDatePgtype(t *testing.T) {
	d := NewDate(2024, time.January, 10)
	v, err := d.DateValue()
	require.NoError(t, err)
	assert.True(t, v.Valid)

	var back Date
	require.NoError(t, back.ScanDate(v))
	assert.Equal(t, d, back)

	require.NoError(t, back.ScanDate(pgtype.Date{}))
	assert.True(t, back.IsZero())
}

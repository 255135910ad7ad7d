package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/id"
)

type BaseRow struct {
	ID        id.ID     `db:"id"`
	CreatedAt time.Time `db:"created_at"`
}

type testStore struct {
	BaseRow
	Name      string `db:"name"`
	Address   string `db:"address"`
	Employees []string
	Computed  int `db:"-"`
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[testStore]()
	assert.Equal(t, []string{"id", "created_at", "name", "address"}, cols)
}

func TestStructToMap(t *testing.T) {
	now := time.Now().UTC()
	s := &testStore{BaseRow: BaseRow{ID: id.New(), CreatedAt: now}, Name: "Toko A", Address: "Jl. Merdeka"}

	m := StructToMap(s)
	require.Len(t, m, 4)
	assert.Equal(t, s.ID, m["id"])
	assert.Equal(t, now, m["created_at"])
	assert.Equal(t, "Toko A", m["name"])
	assert.Nil(t, StructToMap(42))
}

func TestColumnMap(t *testing.T) {
	s := testStore{Name: "Toko B", Address: "x"}
	m := ColumnMap(s, []string{"name", "missing"})
	assert.Equal(t, map[string]any{"name": "Toko B"}, m)
}

func TestBuilderUsesDollarPlaceholders(t *testing.T) {
	sql, args, err := Builder().Delete("banks").Where("id = ?", 1).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM banks WHERE id = $1", sql)
	assert.Equal(t, []any{1}, args)
}

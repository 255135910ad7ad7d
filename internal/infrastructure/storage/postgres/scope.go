package postgres

import (
	"github.com/Masterminds/squirrel"

	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/filter"
)

// ApplyScope limits q to rows whose storeColumn belongs to the scoped
// employee's assigned stores. Unrestricted scopes leave q unchanged.
func ApplyScope(q squirrel.SelectBuilder, storeColumn string, scope filter.Scope) squirrel.SelectBuilder {
	if !scope.Restricted() {
		return q
	}
	return q.Where(squirrel.Expr(
		storeColumn+" IN (SELECT se.store_id FROM store_employees se WHERE se.user_id = ?)",
		*scope.EmployeeID,
	))
}

// Package filter holds row visibility and paging parameters shared by the
// store, bank and report repositories.
package filter

import (
	"context"

	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/apperror"
	appctx "github.com/alenprastyaa/hakimah-laporan-harian/internal/core/context"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/id"
)

// Scope restricts store-owned rows to the stores an employee is assigned to.
// The zero value sees every row.
type Scope struct {
	EmployeeID *id.ID
}

// Restricted reports whether the scope limits visibility.
func (s Scope) Restricted() bool {
	return s.EmployeeID != nil
}

// ScopeFor builds the scope of the authenticated caller: admins see
// everything, employees only their assigned stores.
func ScopeFor(ctx context.Context) (Scope, error) {
	user := appctx.GetUser(ctx)
	if user == nil {
		return Scope{}, apperror.NewUnauthorized("authentication required")
	}
	if user.IsAdmin() {
		return Scope{}, nil
	}
	userID, err := id.Parse(user.UserID)
	if err != nil {
		return Scope{}, apperror.NewInvalidToken(err)
	}
	return Scope{EmployeeID: &userID}, nil
}

// Paging defaults.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Page selects a window of an ordered result.
type Page struct {
	Page  int
	Limit int
}

// Normalize clamps page to >= 1 and limit to [1, MaxLimit].
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// TotalPages returns the page count for total rows.
func (p Page) TotalPages(total int) int {
	n := p.Normalize()
	if total == 0 {
		return 0
	}
	return (total + n.Limit - 1) / n.Limit
}

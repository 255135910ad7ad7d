// Package reports implements daily balance reports, profit analysis and the
// dashboard aggregates built from them.
package reports

import (
	"strings"
	"time"

	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/apperror"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/id"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/types"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/filter"
)

// Report is the end-of-day balance of one store.
// TotalBalance always equals the sum of the balance lines plus UangNitip.
type Report struct {
	ID           id.ID       `db:"id" json:"report_id"`
	StoreID      id.ID       `db:"store_id" json:"store_id"`
	ReportDate   types.Date  `db:"report_date" json:"report_date"`
	TotalBalance types.Money `db:"total_balance" json:"total_balance"`
	UangNitip    types.Money `db:"uang_nitip" json:"uang_nitip"`
	Note         *string     `db:"note" json:"keterangan"`
	CreatedBy    id.ID       `db:"created_by" json:"created_by"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

// BalanceLine is the saldo of one bank within a report.
type BalanceLine struct {
	BankID id.ID       `json:"bank_id"`
	Saldo  types.Money `json:"saldo"`
}

// BalanceDetail is a stored balance line with its bank name.
type BalanceDetail struct {
	ReportID id.ID       `db:"report_id" json:"-"`
	BankID   id.ID       `db:"bank_id" json:"bank_id"`
	BankName string      `db:"bank_name" json:"bank_name"`
	Saldo    types.Money `db:"saldo" json:"saldo"`
}

// Detail is a report joined with its store, creator and balance lines.
type Detail struct {
	Report
	StoreName       string          `db:"store_name" json:"store_name"`
	StoreAddress    string          `db:"store_address" json:"address,omitempty"`
	CreatorUsername string          `db:"creator_username" json:"creator_username"`
	Balances        []BalanceDetail `db:"-" json:"balances_detail"`
}

// LineInput is a submitted balance line. A nil Saldo means the field was absent.
type LineInput struct {
	BankID id.ID
	Saldo  *types.Money
}

// Input carries the fields of a report create or update.
type Input struct {
	StoreID    id.ID
	ReportDate string
	Balances   []LineInput
	Note       *string
	UangNitip  *types.Money
}

// validated is an Input after parsing.
type validated struct {
	storeID   id.ID
	date      types.Date
	lines     []BalanceLine
	note      *string
	uangNitip types.Money
}

// validate parses in and checks everything that needs no storage lookup.
func (in Input) validate() (*validated, error) {
	if id.IsNil(in.StoreID) || strings.TrimSpace(in.ReportDate) == "" || len(in.Balances) == 0 || in.UangNitip == nil {
		return nil, apperror.NewValidation("store_id, report_date, balances (at least one) and uang_nitip are required")
	}
	date, err := types.ParseDate(strings.TrimSpace(in.ReportDate))
	if err != nil {
		return nil, apperror.NewInvalidInput("report_date", err.Error())
	}
	seen := make(map[id.ID]struct{}, len(in.Balances))
	lines := make([]BalanceLine, 0, len(in.Balances))
	for i, line := range in.Balances {
		if id.IsNil(line.BankID) {
			return nil, apperror.NewValidation("every balance needs a bank_id").WithDetail("index", i)
		}
		if line.Saldo == nil {
			return nil, apperror.NewValidation("every balance needs a numeric saldo").
				WithDetail("bank_id", line.BankID)
		}
		if line.Saldo.IsNegative() {
			return nil, apperror.NewValidation("saldo must not be negative").
				WithDetail("bank_id", line.BankID)
		}
		if _, dup := seen[line.BankID]; dup {
			return nil, apperror.NewValidation("bank listed more than once").
				WithDetail("bank_id", line.BankID)
		}
		seen[line.BankID] = struct{}{}
		lines = append(lines, BalanceLine{BankID: line.BankID, Saldo: line.Saldo.Round(types.MoneyScale)})
	}

	var note *string
	if in.Note != nil {
		trimmed := strings.TrimSpace(*in.Note)
		if trimmed != "" {
			note = &trimmed
		}
	}
	return &validated{
		storeID:   in.StoreID,
		date:      date,
		lines:     lines,
		note:      note,
		uangNitip: in.UangNitip.Round(types.MoneyScale),
	}, nil
}

// total is the sum of all saldo plus uang nitip.
func (v *validated) total() types.Money {
	total := v.uangNitip
	for _, l := range v.lines {
		total = total.Add(l.Saldo)
	}
	return total
}

// UangNitipRemoval is the outcome of RemoveUangNitip.
type UangNitipRemoval struct {
	ReportID         id.ID       `json:"report_id"`
	NewUangNitip     types.Money `json:"new_uang_nitip"`
	NewTotalBalance  types.Money `json:"new_total_balance"`
	RemovedUangNitip types.Money `json:"removed_uang_nitip"`
}

// ListFilter selects reports for listing and export.
type ListFilter struct {
	StoreID   *id.ID
	StartDate *types.Date
	EndDate   *types.Date
	CreatorID *id.ID
	Page      filter.Page
}

// ListResult is one page of reports.
type ListResult struct {
	Reports    []Detail `json:"reports"`
	Page       int      `json:"page"`
	Limit      int      `json:"limit"`
	Total      int      `json:"total"`
	TotalPages int      `json:"total_pages"`
}

// Profit compares the balance of a store on a day with the day before.
type Profit struct {
	StoreID          id.ID       `json:"store_id"`
	StoreName        string      `json:"store_name"`
	Date             types.Date  `json:"date"`
	TodayBalance     types.Money `json:"today_balance"`
	YesterdayBalance types.Money `json:"yesterday_balance"`
	Profit           types.Money `json:"profit"`
}

// Point is one report reduced to the values aggregates need.
type Point struct {
	StoreID      id.ID       `db:"store_id"`
	StoreName    string      `db:"store_name"`
	ReportDate   types.Date  `db:"report_date"`
	TotalBalance types.Money `db:"total_balance"`
	UangNitip    types.Money `db:"uang_nitip"`
}

// SeriesFilter selects points in an inclusive date range.
type SeriesFilter struct {
	StoreIDs []id.ID
	From     types.Date
	To       types.Date
}

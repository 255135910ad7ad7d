package dto

import (
	"bytes"
	"errors"
	"strings"

	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/apperror"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/id"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/types"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/filter"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/reports"
)

// --- Request DTOs ---

var errQuotedAmount = errors.New("amounts must be JSON numbers, not strings")

// Amount is a money value that only decodes from a bare JSON number.
type Amount struct {
	types.Money
}

// UnmarshalJSON rejects quoted amounts.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return errQuotedAmount
	}
	return a.Money.UnmarshalJSON(data)
}

// value returns nil for an absent amount.
func (a *Amount) value() *types.Money {
	if a == nil {
		return nil
	}
	m := a.Money
	return &m
}

// BalanceRequest is one bank saldo of a report.
type BalanceRequest struct {
	BankID id.ID   `json:"bank_id"`
	Saldo  *Amount `json:"saldo"`
}

// ReportRequest is the body of report create and update.
type ReportRequest struct {
	StoreID    id.ID            `json:"store_id"`
	ReportDate string           `json:"report_date"`
	Balances   []BalanceRequest `json:"balances"`
	Keterangan *string          `json:"keterangan"`
	UangNitip  *Amount          `json:"uang_nitip"`
}

// ToInput converts to domain input.
func (r *ReportRequest) ToInput() reports.Input {
	lines := make([]reports.LineInput, len(r.Balances))
	for i, b := range r.Balances {
		lines[i] = reports.LineInput{BankID: b.BankID, Saldo: b.Saldo.value()}
	}
	return reports.Input{
		StoreID:    r.StoreID,
		ReportDate: r.ReportDate,
		Balances:   lines,
		Note:       r.Keterangan,
		UangNitip:  r.UangNitip.value(),
	}
}

// ReportListQuery holds report list and export filters.
type ReportListQuery struct {
	StoreID   string `form:"store_id"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	CreatorID string `form:"creator_id"`
	PageQuery
}

// ToFilter parses the query into a domain filter.
func (q *ReportListQuery) ToFilter() (reports.ListFilter, error) {
	var (
		f   reports.ListFilter
		err error
	)
	if f.StoreID, err = optionalID("store_id", q.StoreID); err != nil {
		return f, err
	}
	if f.CreatorID, err = optionalID("creator_id", q.CreatorID); err != nil {
		return f, err
	}
	if f.StartDate, err = optionalDate("start_date", q.StartDate); err != nil {
		return f, err
	}
	if f.EndDate, err = optionalDate("end_date", q.EndDate); err != nil {
		return f, err
	}
	f.Page = filter.Page{Page: q.Page, Limit: q.Limit}
	return f, nil
}

// ProfitQuery holds the profit analysis parameters.
type ProfitQuery struct {
	StoreID string `form:"store_id"`
	Date    string `form:"date"`
}

// StoreIDValue parses the optional store id.
func (q *ProfitQuery) StoreIDValue() (*id.ID, error) {
	return optionalID("store_id", q.StoreID)
}

// DashboardQuery holds the dashboard parameters.
type DashboardQuery struct {
	StoreID   string `form:"store_id"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Top       int    `form:"top" binding:"omitempty,min=1"`
}

// ToFilter parses the query into a domain filter.
func (q *DashboardQuery) ToFilter() (reports.DashboardFilter, error) {
	var (
		f   reports.DashboardFilter
		err error
	)
	if f.StoreID, err = optionalID("store_id", q.StoreID); err != nil {
		return f, err
	}
	if f.StartDate, err = optionalDate("start_date", q.StartDate); err != nil {
		return f, err
	}
	if f.EndDate, err = optionalDate("end_date", q.EndDate); err != nil {
		return f, err
	}
	f.Top = q.Top
	return f, nil
}

func optionalID(field, raw string) (*id.ID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := id.Parse(raw)
	if err != nil {
		return nil, apperror.NewInvalidInput(field, field+" must be a valid id")
	}
	return &v, nil
}

func optionalDate(field, raw string) (*types.Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := types.ParseDate(raw)
	if err != nil {
		return nil, apperror.NewInvalidInput(field, field+" must be YYYY-MM-DD")
	}
	return &d, nil
}

// --- Response DTOs ---

// ReportResponse is returned after create and update.
type ReportResponse struct {
	Message      string      `json:"message"`
	ReportID     id.ID       `json:"report_id"`
	StoreID      id.ID       `json:"store_id"`
	ReportDate   types.Date  `json:"report_date"`
	TotalBalance types.Money `json:"total_balance"`
	Keterangan   *string     `json:"keterangan"`
	UangNitip    types.Money `json:"uang_nitip"`
}

// FromReport creates response from a domain report.
func FromReport(message string, r *reports.Report) ReportResponse {
	return ReportResponse{
		Message:      message,
		ReportID:     r.ID,
		StoreID:      r.StoreID,
		ReportDate:   r.ReportDate,
		TotalBalance: r.TotalBalance,
		Keterangan:   r.Note,
		UangNitip:    r.UangNitip,
	}
}

// DeletedReport identifies a deleted report.
type DeletedReport struct {
	ReportID  id.ID  `json:"report_id"`
	StoreName string `json:"store_name"`
}

// DeletedReportResponse confirms a report deletion.
type DeletedReportResponse struct {
	Message       string        `json:"message"`
	DeletedReport DeletedReport `json:"deleted_report"`
}

// UangNitipResponse is returned after removing uang nitip.
type UangNitipResponse struct {
	Message string `json:"message"`
	*reports.UangNitipRemoval
}

// ProfitResponse wraps the profit analysis, one entry per store.
type ProfitResponse struct {
	Analysis []reports.Profit `json:"analysis"`
}

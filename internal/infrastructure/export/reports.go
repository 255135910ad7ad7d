// Package export renders report listings as xlsx workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/id"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/reports"
)

// SheetName is the worksheet holding the report rows.
const SheetName = "Reports"

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var leadingColumns = []string{"Report Date", "Store", "Created By"}

var trailingColumns = []string{"Uang Nitip", "Total Balance", "Keterangan"}

type bankColumn struct {
	id   id.ID
	name string
}

// bankColumns lists the distinct banks of rows in first-seen order.
func bankColumns(rows []reports.Detail) []bankColumn {
	seen := make(map[id.ID]struct{})
	var cols []bankColumn
	for _, r := range rows {
		for _, b := range r.Balances {
			if _, ok := seen[b.BankID]; ok {
				continue
			}
			seen[b.BankID] = struct{}{}
			cols = append(cols, bankColumn{id: b.BankID, name: b.BankName})
		}
	}
	return cols
}

// WriteReports writes one row per report, with one saldo column per bank
// appearing in rows, to w.
func WriteReports(w io.Writer, rows []reports.Detail) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	banks := bankColumns(rows)
	header := make([]any, 0, len(leadingColumns)+len(banks)+len(trailingColumns))
	for _, h := range leadingColumns {
		header = append(header, h)
	}
	for _, b := range banks {
		header = append(header, b.name)
	}
	for _, h := range trailingColumns {
		header = append(header, h)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	if err := styleHeader(f, len(header)); err != nil {
		return err
	}

	for i, r := range rows {
		saldo := make(map[id.ID]float64, len(r.Balances))
		for _, b := range r.Balances {
			saldo[b.BankID] = b.Saldo.InexactFloat64()
		}

		values := make([]any, 0, len(header))
		values = append(values, r.ReportDate.String(), r.StoreName, r.CreatorUsername)
		for _, b := range banks {
			if v, ok := saldo[b.id]; ok {
				values = append(values, v)
			} else {
				values = append(values, nil)
			}
		}
		note := ""
		if r.Note != nil {
			note = *r.Note
		}
		values = append(values, r.UangNitip.InexactFloat64(), r.TotalBalance.InexactFloat64(), note)

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func styleHeader(f *excelize.File, columns int) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(columns, 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", last, style); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(columns)
	if err != nil {
		return err
	}
	return f.SetColWidth(SheetName, "A", lastCol, 16)
}

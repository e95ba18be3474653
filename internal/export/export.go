// Package export renders expenses as CSV or XLSX.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"budgetbuddy/internal/models"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const sheetName = "Expenses"

var headers = []string{"Date", "Category", "Plan ID", "Amount", "Description"}

// ParseFormat accepts "csv" or "xlsx", case-insensitively. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Filename returns the attachment name for an export taken at now.
func (f Format) Filename(now time.Time) string {
	return fmt.Sprintf("expenses_%s.%s", now.Format("20060102"), f)
}

// Write renders expenses to w in the given format.
func Write(w io.Writer, format Format, expenses []models.Expense) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, expenses)
	case FormatXLSX:
		return WriteXLSX(w, expenses)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

func row(e models.Expense) []string {
	category := ""
	if e.Category != nil {
		category = e.Category.Name
	}
	return []string{
		e.ExpenseDate.UTC().Format(models.DateLayout),
		category,
		e.PlanID,
		e.Amount.StringFixed(2),
		e.Description,
	}
}

// WriteCSV writes a header row followed by one row per expense.
func WriteCSV(w io.Writer, expenses []models.Expense) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(headers); err != nil {
		return err
	}
	for _, e := range expenses {
		if err := writer.Write(row(e)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteXLSX writes a single-sheet workbook. Amounts are stored as numbers.
func WriteXLSX(w io.Writer, expenses []models.Expense) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return err
	}

	for i, e := range expenses {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row(e)
		amount, _ := e.Amount.Round(2).Float64()
		record := []any{values[0], values[1], values[2], amount, values[4]}
		if err := f.SetSheetRow(sheetName, cell, &record); err != nil {
			return err
		}
	}

	widths := map[string]float64{"A": 12, "B": 18, "C": 38, "D": 12, "E": 40}
	for col, width := range widths {
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return err
		}
	}

	return f.Write(w)
}

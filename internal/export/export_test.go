package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"budgetbuddy/internal/models"
)

func sampleExpenses() []models.Expense {
	food := &models.Category{Name: "Food"}
	return []models.Expense{
		{
			PlanID:      "0190f2c4-0000-7000-8000-000000000001",
			Amount:      decimal.RequireFromString("50"),
			Description: "groceries, weekly",
			ExpenseDate: time.Date(2024, 1, 5, 14, 0, 0, 0, time.UTC),
			Category:    food,
		},
		{
			PlanID:      "0190f2c4-0000-7000-8000-000000000001",
			Amount:      decimal.RequireFromString("30.5"),
			ExpenseDate: time.Date(2024, 1, 9, 8, 30, 0, 0, time.UTC),
		},
	}
}

func TestParseFormat(t *testing.T) {
	cases := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatCSV, false},
		{"csv", FormatCSV, false},
		{"XLSX", FormatXLSX, false},
		{"pdf", "", true},
	}
	for _, tc := range cases {
		got, err := ParseFormat(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleExpenses()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(records))
	}
	if records[0][0] != "Date" || records[0][3] != "Amount" {
		t.Errorf("unexpected header %v", records[0])
	}
	first := records[1]
	if first[0] != "2024-01-05" || first[1] != "Food" || first[3] != "50.00" || first[4] != "groceries, weekly" {
		t.Errorf("unexpected first row %v", first)
	}
	if records[2][1] != "" || records[2][3] != "30.50" {
		t.Errorf("unexpected second row %v", records[2])
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatXLSX, sampleExpenses()); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[1][1] != "Food" || rows[1][3] != "50" {
		t.Errorf("unexpected first row %v", rows[1])
	}
	if sheets := f.GetSheetList(); len(sheets) != 1 {
		t.Errorf("expected a single sheet, got %v", sheets)
	}
}

func TestFilename(t *testing.T) {
	now := time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)
	if got := FormatXLSX.Filename(now); got != "expenses_20240307.xlsx" {
		t.Errorf("unexpected filename %s", got)
	}
}

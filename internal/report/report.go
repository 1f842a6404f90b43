// Package report renders queue rows into spreadsheet exports.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"recognizer/internal/api"
)

// SheetName is the worksheet rows are written to.
const SheetName = "Rows"

var headers = []string{"ID", "Status", "Title", "Message"}

// WriteRowsXLSX writes rows as an XLSX workbook to w, preserving order. A
// second sheet records the totals and when the export was taken.
func WriteRowsXLSX(w io.Writer, rows api.RowsResponse, generated time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return err
		}
	}
	for r, row := range rows.Rows {
		values := []any{row.ID, row.Status, row.DisplayName, row.Message}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				return err
			}
		}
	}
	_ = f.SetColWidth(SheetName, "A", "A", 10)
	_ = f.SetColWidth(SheetName, "B", "B", 12)
	_ = f.SetColWidth(SheetName, "C", "C", 60)
	_ = f.SetColWidth(SheetName, "D", "D", 48)
	if err := f.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}

	const summary = "Summary"
	if _, err := f.NewSheet(summary); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	summaryRows := [][]any{
		{"Generated", generated.UTC().Format(time.RFC3339)},
		{"Total", rows.Total},
		{"Processed", rows.Processed},
	}
	for r, values := range summaryRows {
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			if err := f.SetCellValue(summary, cell, v); err != nil {
				return err
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

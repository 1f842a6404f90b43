package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"recognizer/internal/api"
)

func TestWriteRowsXLSX(t *testing.T) {
	rows := api.RowsResponse{
		Rows: []api.Row{
			{ID: 2, Status: "failed", DisplayName: "Second", Message: "No matches"},
			{ID: 1, Status: "succeeded", DisplayName: "First", Message: "A Found Title"},
		},
		Total:     2,
		Processed: 2,
	}
	var buf bytes.Buffer
	if err := WriteRowsXLSX(&buf, rows, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)); err != nil {
		t.Fatalf("WriteRowsXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	got, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(got))
	}
	if got[0][2] != "Title" || got[1][0] != "2" || got[1][3] != "No matches" || got[2][2] != "First" {
		t.Fatalf("unexpected sheet contents %v", got)
	}
	generated, _ := f.GetCellValue("Summary", "B1")
	if generated != "2024-01-02T03:04:05Z" {
		t.Fatalf("unexpected generated stamp %q", generated)
	}
	if idx, _ := f.GetSheetIndex("Sheet1"); idx != -1 {
		t.Fatal("default sheet should be removed")
	}
}

package source

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "eventmill-excel-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("Failed to compute cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("Failed to write row: %v", err)
		}
	}

	path := filepath.Join(dir, "export_2026_03_01.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("Failed to save workbook: %v", err)
	}
	return path
}

func TestParseExcel(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"timestamp", "user_id", "session_id", "name", "GPN", "Link_Label"},
		{"2026-03-01 10:00:01", "u1", "s1", "click", "1234567", "1234 Read"},
		{"2026-03-01 10:00:02", "u1", "s1", "click", "1234567", "1234 Like"},
	})

	res, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(res.Events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(res.Events))
	}

	ev := res.Events[0]
	if !ev.Timestamp.Equal(time.Date(2026, 3, 1, 10, 0, 1, 0, time.UTC)) {
		t.Errorf("Unexpected timestamp: %v", ev.Timestamp)
	}
	if ev.ActorRef != "01234567" {
		t.Errorf("Expected normalized actor ref, got %q", ev.ActorRef)
	}
	if ev.LinkLabel != "1234 Read" {
		t.Errorf("Link label not mapped: %q", ev.LinkLabel)
	}

	// Whole-second encoding: the precision warning flag stays false.
	if res.SubSecond {
		t.Error("Expected no sub-second precision in workbook export")
	}
}

func TestParseExcelEmptySheet(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"timestamp", "user_id", "session_id", "name"},
	})

	if _, err := Parse(path); err == nil {
		t.Fatal("Expected error for header-only workbook")
	}
}

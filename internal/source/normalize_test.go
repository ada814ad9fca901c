package source

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/eventmill/eventmill/internal/errors"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "eventmill-normalize-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	path := filepath.Join(dir, "export_2026_03_01.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write CSV: %v", err)
	}
	return path
}

func TestParseCSVCanonicalColumns(t *testing.T) {
	path := writeCSV(t, "timestamp,user_id,session_id,name,CP_GPN,CP_Email,CP_Link_Label,CP_LinkType,CP_Page_Title\n"+
		"2026-03-01 10:00:01.123456,u1,s1,click,1234567.0,u1@example.com,1234 Share your story,button,Home\n")

	res, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(res.Events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(res.Events))
	}

	ev := res.Events[0]
	if !ev.Timestamp.Equal(time.Date(2026, 3, 1, 10, 0, 1, 123456000, time.UTC)) {
		t.Errorf("Unexpected timestamp: %v", ev.Timestamp)
	}
	if ev.ActorID != "u1" || ev.SessionID != "s1" || ev.Name != "click" {
		t.Errorf("Identity fields wrong: %+v", ev)
	}
	if ev.ActorRef != "01234567" {
		t.Errorf("Expected normalized actor ref 01234567, got %q", ev.ActorRef)
	}
	if ev.Email != "u1@example.com" {
		t.Errorf("Email not mapped: %q", ev.Email)
	}
	if ev.LinkLabel != "1234 Share your story" || ev.LinkType != "button" || ev.Page != "Home" {
		t.Errorf("Link fields wrong: %+v", ev)
	}
	if !res.SubSecond {
		t.Error("Expected sub-second precision flag for microsecond timestamps")
	}
}

func TestParseCSVUnknownCustomProperty(t *testing.T) {
	path := writeCSV(t, "timestamp,user_id,session_id,name,CP_Experiment,other_col\n"+
		"2026-03-01 10:00:01,u1,s1,click,variant-b,ignored\n")

	res, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	ev := res.Events[0]
	if ev.Props["CP_Experiment"] != "variant-b" {
		t.Errorf("Expected unknown CP_ column preserved as property, got %v", ev.Props)
	}
	if len(res.DroppedColumns) != 1 || res.DroppedColumns[0] != "other_col" {
		t.Errorf("Expected other_col dropped and counted, got %v", res.DroppedColumns)
	}
}

func TestParseCSVMissingRequiredColumns(t *testing.T) {
	path := writeCSV(t, "timestamp,name\n2026-03-01 10:00:01,click\n")

	_, err := Parse(path)
	if err == nil {
		t.Fatal("Expected error for missing required columns")
	}
	if apperrors.GetCode(err) != apperrors.CodeMissingColumns {
		t.Errorf("Expected MISSING_COLUMNS, got %s", apperrors.GetCode(err))
	}
	if apperrors.GetCategory(err) != apperrors.ErrCategoryInput {
		t.Errorf("Expected INPUT category, got %s", apperrors.GetCategory(err))
	}
}

func TestParseCSVSkipsBadTimestamps(t *testing.T) {
	path := writeCSV(t, "timestamp,user_id,session_id,name\n"+
		"2026-03-01 10:00:01,u1,s1,click\n"+
		"garbage,u2,s2,click\n"+
		"2026-03-01 10:00:03,u3,s3,click\n")

	res, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(res.Events) != 2 {
		t.Errorf("Expected 2 parsed events, got %d", len(res.Events))
	}
	if res.SkippedRows != 1 {
		t.Errorf("Expected 1 skipped row, got %d", res.SkippedRows)
	}
}

func TestParseCSVEmpty(t *testing.T) {
	path := writeCSV(t, "timestamp,user_id,session_id,name\n")

	_, err := Parse(path)
	if err == nil {
		t.Fatal("Expected error for header-only file")
	}
	if apperrors.GetCode(err) != apperrors.CodeEmptyFile {
		t.Errorf("Expected EMPTY_FILE, got %s", apperrors.GetCode(err))
	}
}

func TestParseCSVBOMHeader(t *testing.T) {
	path := writeCSV(t, "﻿timestamp,user_id,session_id,name\n"+
		"2026-03-01 10:00:01,u1,s1,click\n")

	res, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse failed on BOM-prefixed header: %v", err)
	}
	if len(res.Events) != 1 {
		t.Errorf("Expected 1 event, got %d", len(res.Events))
	}
}

func TestParseCSVWholeSecondPrecision(t *testing.T) {
	path := writeCSV(t, "Timestamp [UTC],user_id,session_id,name\n"+
		"2026-03-01 10:00:01,u1,s1,click\n"+
		"2026-03-01 10:00:02,u1,s1,click\n")

	res, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if res.SubSecond {
		t.Error("Expected whole-second file to report no sub-second precision")
	}
}

func TestMapHeadersRoleClaimedOnce(t *testing.T) {
	// Two headers mapping to the same role: the first claims it, the second
	// survives as a custom property.
	layout, err := mapHeaders([]string{"timestamp", "user_id", "session_id", "name", "CP_Page_Title", "page"})
	if err != nil {
		t.Fatalf("mapHeaders failed: %v", err)
	}
	if layout.roles[4] != rolePage {
		t.Error("Expected first page header to claim the role")
	}
	if layout.roles[5] != roleProp || layout.propKeys[5] != "page" {
		t.Error("Expected duplicate page header demoted to custom property")
	}
}

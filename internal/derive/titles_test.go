package derive

import (
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/eventmill/eventmill/internal/errors"
)

func TestLoadStoryTitles(t *testing.T) {
	dir, err := os.MkdirTemp("", "eventmill-titles-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "story_titles.csv")
	content := "story_id,title\n1234,A story about onboarding\n5678, Trimmed title \n,skipped\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write feed: %v", err)
	}

	titles, err := LoadStoryTitles(path)
	if err != nil {
		t.Fatalf("LoadStoryTitles failed: %v", err)
	}
	if len(titles) != 2 {
		t.Errorf("Expected 2 titles, got %d", len(titles))
	}
	if titles["1234"] != "A story about onboarding" {
		t.Errorf("Unexpected title: %q", titles["1234"])
	}
	if titles["5678"] != "Trimmed title" {
		t.Errorf("Expected trimmed title, got %q", titles["5678"])
	}
}

func TestLoadStoryTitlesMissing(t *testing.T) {
	_, err := LoadStoryTitles("/nonexistent/story_titles.csv")
	if err == nil {
		t.Fatal("Expected error for missing feed")
	}
	if apperrors.GetCode(err) != apperrors.CodeFeedMissing {
		t.Errorf("Expected FEED_MISSING, got %s", apperrors.GetCode(err))
	}
}

func TestLoadStoryTitlesMissingColumns(t *testing.T) {
	dir, err := os.MkdirTemp("", "eventmill-titles-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "story_titles.csv")
	if err := os.WriteFile(path, []byte("id,name\n1,x\n"), 0644); err != nil {
		t.Fatalf("Failed to write feed: %v", err)
	}

	if _, err := LoadStoryTitles(path); err == nil {
		t.Fatal("Expected error for feed without required columns")
	}
}

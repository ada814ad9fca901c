package derive

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/eventmill/eventmill/internal/errors"
)

// LoadStoryTitles reads the optional story title feed, a CSV with story_id
// and title columns. A missing feed is a reference error with
// CodeFeedMissing; the pipeline logs it at info level and leaves titles
// empty.
func LoadStoryTitles(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewReferenceError(errors.CodeFeedMissing,
				fmt.Sprintf("story title feed not found: %s", path), err)
		}
		return nil, errors.NewReferenceError(errors.CodeFeedUnreadable, "failed to open story title feed", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.NewReferenceError(errors.CodeFeedUnreadable, "failed to read story title feed", err)
	}
	if len(records) < 2 {
		return map[string]string{}, nil
	}

	idCol, titleCol := -1, -1
	for i, h := range records[0] {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "﻿"))) {
		case "story_id":
			idCol = i
		case "title":
			titleCol = i
		}
	}
	if idCol < 0 || titleCol < 0 {
		return nil, errors.NewReferenceError(errors.CodeFeedUnreadable,
			"story title feed missing story_id or title column", nil)
	}

	titles := make(map[string]string)
	for _, rec := range records[1:] {
		if idCol >= len(rec) || titleCol >= len(rec) {
			continue
		}
		id := strings.TrimSpace(rec[idCol])
		if id == "" {
			continue
		}
		titles[id] = strings.TrimSpace(rec[titleCol])
	}
	return titles, nil
}

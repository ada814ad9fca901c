package hr

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/eventmill/eventmill/internal/errors"
	"github.com/eventmill/eventmill/pkg/types"
)

// snapshotHeaders maps accepted feed headers (lowercased) onto attribute
// setters. Both the canonical short names and the upstream HR system's
// column names are accepted.
var snapshotHeaders = map[string]func(*types.OrgSnapshot, string){
	"division":           func(s *types.OrgSnapshot, v string) { s.Division = v },
	"gcrs_division_desc": func(s *types.OrgSnapshot, v string) { s.Division = v },
	"unit":               func(s *types.OrgSnapshot, v string) { s.Unit = v },
	"gcrs_unit_desc":     func(s *types.OrgSnapshot, v string) { s.Unit = v },
	"region":               func(s *types.OrgSnapshot, v string) { s.Region = v },
	"work_location_region":  func(s *types.OrgSnapshot, v string) { s.Region = v },
	"country":               func(s *types.OrgSnapshot, v string) { s.Country = v },
	"work_location_country": func(s *types.OrgSnapshot, v string) { s.Country = v },
	"job_title":        func(s *types.OrgSnapshot, v string) { s.JobTitle = v },
	"management_level": func(s *types.OrgSnapshot, v string) { s.ManagementLevel = v },
}

var snapshotDateLayouts = []string{"2006-01-02", "02.01.2006", "2006-01-02 15:04:05"}

// LoadSnapshots reads the organizational snapshot feed. A missing file is a
// reference error with CodeFeedMissing so the pipeline can degrade instead
// of aborting.
func LoadSnapshots(path string) (*SnapshotIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewReferenceError(errors.CodeFeedMissing,
				fmt.Sprintf("snapshot feed not found: %s", path), err)
		}
		return nil, errors.NewReferenceError(errors.CodeFeedUnreadable, "failed to open snapshot feed", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.NewReferenceError(errors.CodeFeedUnreadable, "failed to read snapshot feed", err)
	}
	if len(records) < 2 {
		return nil, errors.NewReferenceError(errors.CodeFeedUnreadable, "snapshot feed has no data rows", nil)
	}

	headers := records[0]
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "﻿")
	}

	actorCol, dateCol := -1, -1
	setters := make(map[int]func(*types.OrgSnapshot, string))
	for i, h := range headers {
		key := strings.ToLower(strings.TrimSpace(h))
		switch key {
		case "actor_id", "gpn":
			actorCol = i
		case "snapshot_date":
			dateCol = i
		default:
			if set, ok := snapshotHeaders[key]; ok {
				setters[i] = set
			}
		}
	}
	if actorCol < 0 || dateCol < 0 {
		return nil, errors.NewReferenceError(errors.CodeFeedUnreadable,
			"snapshot feed missing actor_id or snapshot_date column", nil)
	}

	var snaps []types.OrgSnapshot
	for _, rec := range records[1:] {
		if actorCol >= len(rec) || dateCol >= len(rec) {
			continue
		}
		date, err := parseSnapshotDate(strings.TrimSpace(rec[dateCol]))
		if err != nil {
			continue
		}
		snap := types.OrgSnapshot{
			ActorID:      NormalizeActorID(rec[actorCol]),
			SnapshotDate: date,
		}
		if snap.ActorID == "" {
			continue
		}
		for i, set := range setters {
			if i < len(rec) {
				set(&snap, strings.TrimSpace(rec[i]))
			}
		}
		snaps = append(snaps, snap)
	}

	return NewIndex(snaps), nil
}

func parseSnapshotDate(val string) (time.Time, error) {
	for _, layout := range snapshotDateLayouts {
		if t, err := time.ParseInLocation(layout, val, time.UTC); err == nil {
			return t.Truncate(24 * time.Hour), nil
		}
	}
	return time.Time{}, fmt.Errorf("hr: unrecognized snapshot date: %q", val)
}

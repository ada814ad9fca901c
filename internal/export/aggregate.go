package export

import (
	"sort"

	"github.com/eventmill/eventmill/pkg/types"
)

// storyKey groups aggregate rows.
type storyKey struct {
	storyID  string
	date     string
	division string
	region   string
}

// BuildStoryAggregate rolls enriched events up to (story, local date,
// division, region) grain. Events without a story ID and events classified
// Other are excluded entirely. Output order is deterministic.
func BuildStoryAggregate(events []*types.EnrichedEvent) []StoryRow {
	groups := make(map[storyKey]*StoryRow)
	actors := make(map[storyKey]map[string]bool)
	sessions := make(map[storyKey]map[string]bool)

	for _, e := range events {
		if e.StoryID == "" || e.Action == types.ActionOther {
			continue
		}

		key := storyKey{storyID: e.StoryID, date: e.LocalDate}
		if e.Org != nil {
			key.division = e.Org.Division
			key.region = e.Org.Region
		}

		row, ok := groups[key]
		if !ok {
			row = &StoryRow{
				StoryID:    e.StoryID,
				StoryTitle: e.StoryTitle,
				LocalDate:  e.LocalDate,
				Division:   key.division,
				Region:     key.region,
			}
			groups[key] = row
			actors[key] = make(map[string]bool)
			sessions[key] = make(map[string]bool)
		}

		row.Events++
		actors[key][e.ActorID] = true
		sessions[key][e.SessionKey] = true

		switch e.Action {
		case types.ActionOpenForm:
			row.OpenForms++
		case types.ActionSubmit:
			row.Submits++
		case types.ActionCancel:
			row.Cancels++
		case types.ActionViewPrompt:
			row.ViewPrompts++
		case types.ActionHide:
			row.Hides++
		case types.ActionRead:
			row.Reads++
		case types.ActionShare:
			row.Shares++
		case types.ActionLike:
			row.Likes++
		}
	}

	rows := make([]StoryRow, 0, len(groups))
	for key, row := range groups {
		row.Actors = int64(len(actors[key]))
		row.Sessions = int64(len(sessions[key]))
		rows = append(rows, *row)
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		switch {
		case a.StoryID != b.StoryID:
			return a.StoryID < b.StoryID
		case a.LocalDate != b.LocalDate:
			return a.LocalDate < b.LocalDate
		case a.Division != b.Division:
			return a.Division < b.Division
		default:
			return a.Region < b.Region
		}
	})
	return rows
}

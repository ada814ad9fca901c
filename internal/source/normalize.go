package source

import (
	"strings"

	"github.com/eventmill/eventmill/internal/errors"
	"github.com/eventmill/eventmill/internal/hr"
	"github.com/eventmill/eventmill/pkg/types"
)

// columnRole identifies the canonical destination of a source column.
type columnRole int

const (
	roleTimestamp columnRole = iota
	roleActor
	roleSession
	roleName
	roleActorRef
	roleEmail
	roleLinkLabel
	roleLinkType
	rolePage
	roleProp
	roleDropped
)

// canonicalHeaders maps lowercased source headers onto roles. The variants
// cover both physical encodings: App Insights CSV exports flatten custom
// properties under a CP_ prefix, Excel exports carry some of them top-level.
var canonicalHeaders = map[string]columnRole{
	"timestamp":       roleTimestamp,
	"timestamp [utc]": roleTimestamp,
	"user_id":         roleActor,
	"session_id":      roleSession,
	"name":            roleName,
	"cp_gpn":          roleActorRef,
	"gpn":             roleActorRef,
	"email":           roleEmail,
	"cp_email":        roleEmail,
	"cp_link_label":   roleLinkLabel,
	"link_label":      roleLinkLabel,
	"cp_link_type":    roleLinkType,
	"cp_linktype":     roleLinkType,
	"cp_page_title":   rolePage,
	"cp_page":         rolePage,
	"page":            rolePage,
}

// fileLayout is the resolved column layout of one input file.
type fileLayout struct {
	roles    []columnRole
	propKeys []string // original header for roleProp columns, indexed by column
	dropped  []string
}

// mapHeaders resolves each source header to a role. Unknown CP_-prefixed
// headers become custom properties; anything else is dropped and counted.
// Missing required columns fail the file, never corrupt it.
func mapHeaders(headers []string) (*fileLayout, error) {
	l := &fileLayout{
		roles:    make([]columnRole, len(headers)),
		propKeys: make([]string, len(headers)),
	}
	seen := make(map[columnRole]bool)

	for i, h := range headers {
		key := strings.ToLower(strings.TrimSpace(h))
		role, ok := canonicalHeaders[key]
		switch {
		case ok && !seen[role]:
			l.roles[i] = role
			seen[role] = true
		case ok:
			// Duplicate mapping for an already-claimed role; keep as a
			// custom property under its original name.
			l.roles[i] = roleProp
			l.propKeys[i] = strings.TrimSpace(h)
		case strings.HasPrefix(key, "cp_"):
			l.roles[i] = roleProp
			l.propKeys[i] = strings.TrimSpace(h)
		default:
			l.roles[i] = roleDropped
			l.dropped = append(l.dropped, strings.TrimSpace(h))
		}
	}

	var missing []string
	for role, name := range map[columnRole]string{
		roleTimestamp: "timestamp",
		roleActor:     "user_id",
		roleSession:   "session_id",
		roleName:      "name",
	} {
		if !seen[role] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewInputError(errors.CodeMissingColumns,
			"required columns missing: "+strings.Join(missing, ", "), nil)
	}

	return l, nil
}

// buildEvent constructs a canonical event from one record. Returns nil when
// the row's timestamp is unparseable; the caller counts it as skipped.
func (l *fileLayout) buildEvent(record []string) *types.CanonicalEvent {
	ev := &types.CanonicalEvent{}
	for i, role := range l.roles {
		if i >= len(record) {
			break
		}
		val := strings.TrimSpace(record[i])
		if val == "" {
			continue
		}
		switch role {
		case roleTimestamp:
			ts, subSecond, err := parseTimestamp(val)
			if err != nil {
				return nil
			}
			ev.Timestamp = ts
			ev.SubSecond = subSecond
		case roleActor:
			ev.ActorID = val
		case roleSession:
			ev.SessionID = val
		case roleName:
			ev.Name = val
		case roleActorRef:
			ev.ActorRef = hr.NormalizeActorID(val)
		case roleEmail:
			ev.Email = val
		case roleLinkLabel:
			ev.LinkLabel = val
		case roleLinkType:
			ev.LinkType = val
		case rolePage:
			ev.Page = val
		case roleProp:
			if ev.Props == nil {
				ev.Props = make(map[string]string)
			}
			ev.Props[l.propKeys[i]] = val
		}
	}
	if ev.Timestamp.IsZero() {
		return nil
	}
	return ev
}

// normalizeRecords runs the shared normalization over a header row plus data
// rows, producing the parse result both decoders feed into.
func normalizeRecords(headers []string, rows [][]string) (*ParseResult, error) {
	layout, err := mapHeaders(headers)
	if err != nil {
		return nil, err
	}

	res := &ParseResult{DroppedColumns: layout.dropped}
	for _, row := range rows {
		ev := layout.buildEvent(row)
		if ev == nil {
			res.SkippedRows++
			continue
		}
		if ev.SubSecond {
			res.SubSecond = true
		}
		res.Events = append(res.Events, ev)
	}

	if len(res.Events) == 0 && res.SkippedRows == 0 {
		return nil, errors.NewInputError(errors.CodeEmptyFile, "file contains no data rows", nil)
	}
	return res, nil
}

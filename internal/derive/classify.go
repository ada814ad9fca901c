package derive

import (
	"regexp"
	"strings"

	"github.com/eventmill/eventmill/pkg/types"
)

// classifyRule maps a case-insensitive substring of the link label onto an
// action. Rules are ordered; the first match wins, so "share your story"
// must precede the bare "share".
type classifyRule struct {
	substring string
	action    string
}

var classifyRules = []classifyRule{
	{"share your story", types.ActionOpenForm},
	{"open form", types.ActionOpenForm},
	{"submit", types.ActionSubmit},
	{"cancel", types.ActionCancel},
	{"view prompt", types.ActionViewPrompt},
	{"hide", types.ActionHide},
	{"read", types.ActionRead},
	{"share", types.ActionShare},
	{"like", types.ActionLike},
}

// ClassifyAction maps a link label onto its action via the ordered rule
// list. Labels matching no rule classify as Other; Other rows are stored
// but excluded from every aggregate.
func ClassifyAction(label string) string {
	lower := strings.ToLower(label)
	for _, rule := range classifyRules {
		if strings.Contains(lower, rule.substring) {
			return rule.action
		}
	}
	return types.ActionOther
}

var leadingDigitsRe = regexp.MustCompile(`^(\d+)`)

// ExtractStoryID returns the leading digit run of a link label, empty when
// the label does not start with a digit.
func ExtractStoryID(label string) string {
	m := leadingDigitsRe.FindStringSubmatch(strings.TrimSpace(label))
	if m == nil {
		return ""
	}
	return m[1]
}

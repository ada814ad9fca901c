package types

// Action labels assigned by the classifier. ActionOther is the catch-all for
// labels matching no rule; it is stored but excluded from every aggregate.
const (
	ActionOpenForm   = "Open Form"
	ActionSubmit     = "Submit"
	ActionCancel     = "Cancel"
	ActionViewPrompt = "View Prompt"
	ActionHide       = "Hide"
	ActionRead       = "Read"
	ActionShare      = "Share"
	ActionLike       = "Like"
	ActionOther      = "Other"
)

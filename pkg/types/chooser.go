package types

// Choice is the outcome of an interactive question.
type Choice int

const (
	// ChoiceOK is the affirmative option (e.g. "Try again", "Use older").
	ChoiceOK Choice = iota

	// ChoiceCancel aborts the operation being asked about.
	ChoiceCancel

	// ChoiceExtra is the optional third option (e.g. "Use newer").
	ChoiceExtra
)

// String returns the string representation of the choice
func (c Choice) String() string {
	switch c {
	case ChoiceOK:
		return "ok"
	case ChoiceCancel:
		return "cancel"
	case ChoiceExtra:
		return "extra"
	default:
		return "unknown"
	}
}

// ChoiceLabels carries the user-visible labels for a question. An empty
// Extra means the question is a plain two-way ok/cancel.
type ChoiceLabels struct {
	OK     string
	Cancel string
	Extra  string
}

// Chooser renders a blocking interactive question and returns the
// selected option. The concrete rendering backend is irrelevant to the
// migration core and must be swappable.
type Chooser interface {
	Ask(title, body string, labels ChoiceLabels) (Choice, error)
}

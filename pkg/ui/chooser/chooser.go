// Package chooser implements the types.Chooser capability with a
// charmbracelet/huh select form. The migration core only sees the
// Ask contract; the rendering backend stays swappable.
package chooser

import (
	stderrors "errors"

	"github.com/charmbracelet/huh"

	"github.com/arthur-debert/savekeep/pkg/errors"
	"github.com/arthur-debert/savekeep/pkg/types"
	"github.com/arthur-debert/savekeep/pkg/ui"
)

// HuhChooser renders blocking questions as huh select forms.
type HuhChooser struct {
	isTerminal func() bool
}

// New creates a HuhChooser using the default terminal check.
func New() *HuhChooser {
	return &HuhChooser{isTerminal: ui.IsInteractive}
}

// NewWithTerminalCheck creates a HuhChooser with a custom terminal
// check, used by tests to force the non-interactive path.
func NewWithTerminalCheck(isTerminal func() bool) *HuhChooser {
	return &HuhChooser{isTerminal: isTerminal}
}

// Ask renders the question and blocks until the user picks an option.
// Aborting the form (Esc/Ctrl+C) is reported as cancel, matching the
// dialog contract: cancellation is always an explicit, safe outcome.
func (c *HuhChooser) Ask(title, body string, labels types.ChoiceLabels) (types.Choice, error) {
	if !c.isTerminal() {
		return types.ChoiceCancel, errors.New(errors.ErrChooserUnavailable,
			"interactive choice required but no terminal is attached")
	}

	options := []huh.Option[types.Choice]{
		huh.NewOption(labels.OK, types.ChoiceOK),
	}
	if labels.Extra != "" {
		options = append(options, huh.NewOption(labels.Extra, types.ChoiceExtra))
	}
	options = append(options, huh.NewOption(labels.Cancel, types.ChoiceCancel))

	choice := types.ChoiceCancel
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[types.Choice]().
			Title(title).
			Description(body).
			Options(options...).
			Value(&choice),
	))

	if err := form.Run(); err != nil {
		if stderrors.Is(err, huh.ErrUserAborted) {
			return types.ChoiceCancel, nil
		}
		return types.ChoiceCancel, errors.Wrap(err, errors.ErrChooserUnavailable, "choice form failed")
	}
	return choice, nil
}

package merge

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/savekeep/pkg/errors"
	"github.com/arthur-debert/savekeep/pkg/logging"
	"github.com/arthur-debert/savekeep/pkg/types"
)

// TimeWindow is the threshold for the automatic no-prompt resolution:
// two conflicting versions whose modification times differ by at most
// this much are treated as the same save session and the older one
// wins. Whether "older" is the right default for save freshness is a
// product decision; the constant and the tie-break are kept as
// observed behavior.
const TimeWindow = 300 * time.Second

// Conflict is one file pair awaiting resolution. OlderPath/NewerPath
// are the same two files as CanonicalPath/LocalPath, ordered by
// modification time with ties treating the canonical side as older.
type Conflict struct {
	CanonicalPath string
	LocalPath     string
	OlderPath     string
	NewerPath     string
	OlderTime     time.Time
	NewerTime     time.Time
}

// Resolver decides which side of a conflict becomes canonical.
type Resolver struct {
	chooser types.Chooser
	logger  zerolog.Logger
}

// NewResolver creates a Resolver asking through the given chooser.
func NewResolver(chooser types.Chooser) *Resolver {
	return &Resolver{
		chooser: chooser,
		logger:  logging.GetLogger("resolver"),
	}
}

// Choose returns the path whose content becomes canonical. Inside the
// time window the older file is selected automatically; outside it the
// user picks older or newer, and cancel returns ErrMergeCancelled.
func (r *Resolver) Choose(c Conflict) (string, error) {
	if c.NewerTime.Sub(c.OlderTime) <= TimeWindow {
		r.logger.Info().
			Str("chosen", c.OlderPath).
			Msg("Time-window rule applied, keeping older file")
		return c.OlderPath, nil
	}

	body := fmt.Sprintf(
		"SaveRAM conflict detected.\n\n"+
			"Canonical: %s\nLocal: %s\n\n"+
			"Older: %s (%s)\nNewer: %s (%s)\n\n"+
			"Choose which file should become the canonical save.\n"+
			"The non-selected file remains backed up.",
		c.CanonicalPath, c.LocalPath,
		c.OlderPath, c.OlderTime.Format(time.RFC1123),
		c.NewerPath, c.NewerTime.Format(time.RFC1123),
	)

	choice, err := r.chooser.Ask("SaveRAM conflict", body, types.ChoiceLabels{
		OK:     "Use older",
		Cancel: "Cancel",
		Extra:  "Use newer",
	})
	if err != nil {
		return "", err
	}

	switch choice {
	case types.ChoiceOK:
		r.logger.Info().Str("chosen", c.OlderPath).Msg("User chose older file")
		return c.OlderPath, nil
	case types.ChoiceExtra:
		r.logger.Info().Str("chosen", c.NewerPath).Msg("User chose newer file")
		return c.NewerPath, nil
	default:
		return "", errors.New(errors.ErrMergeCancelled, "user cancelled SaveRAM conflict resolution")
	}
}

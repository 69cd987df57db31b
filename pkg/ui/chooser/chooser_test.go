package chooser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/savekeep/pkg/errors"
	"github.com/arthur-debert/savekeep/pkg/types"
	"github.com/arthur-debert/savekeep/pkg/ui/chooser"
)

func TestAsk_RequiresTerminal(t *testing.T) {
	c := chooser.NewWithTerminalCheck(func() bool { return false })

	choice, err := c.Ask("SaveRAM conflict", "details", types.ChoiceLabels{
		OK:     "Use older",
		Cancel: "Cancel",
		Extra:  "Use newer",
	})

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrChooserUnavailable))
	assert.Equal(t, types.ChoiceCancel, choice, "no terminal degrades to cancel")
}

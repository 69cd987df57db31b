package launch_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/savekeep/pkg/errors"
	"github.com/arthur-debert/savekeep/pkg/filesystem"
	"github.com/arthur-debert/savekeep/pkg/launch"
)

func TestRelaunch_NoRunnerConfigured(t *testing.T) {
	r := launch.NewRelauncher(filesystem.NewOS(), "", []string{"--load", "game.sfc"})
	err := r.Relaunch()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrRelaunchFailed))
}

func TestRelaunch_RunnerMustBeAFile(t *testing.T) {
	r := launch.NewRelauncher(filesystem.NewOS(), t.TempDir(), []string{"--load", "game.sfc"})
	err := r.Relaunch()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrRelaunchFailed))
}

func TestRelaunch_NoCachedArgs(t *testing.T) {
	runner := filepath.Join(t.TempDir(), "run.sh")
	require.NoError(t, os.WriteFile(runner, []byte("#!/bin/sh\n"), 0o755))

	r := launch.NewRelauncher(filesystem.NewOS(), runner, nil)
	err := r.Relaunch()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrRelaunchFailed))
}

func TestRelaunch_StartsDetached(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "launched")
	runner := filepath.Join(t.TempDir(), "run.sh")
	script := "#!/bin/sh\ntouch \"$1\"\n"
	require.NoError(t, os.WriteFile(runner, []byte(script), 0o755))

	r := launch.NewRelauncher(filesystem.NewOS(), runner, []string{marker})
	require.NoError(t, r.Relaunch())

	assert.Eventually(t, func() bool {
		_, err := os.Stat(marker)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond, "runner should have been started")
}

// Package launch restarts the emulator after a targeted migration,
// using the runner and arguments cached by the previous launch.
package launch

import (
	"os/exec"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/savekeep/pkg/errors"
	"github.com/arthur-debert/savekeep/pkg/logging"
	"github.com/arthur-debert/savekeep/pkg/types"
)

// Relauncher implements types.Launcher by starting the configured
// runner detached and not waiting for it.
type Relauncher struct {
	fs     types.FS
	runner string
	args   []string
	logger zerolog.Logger
}

// NewRelauncher creates a Relauncher for the given runner and cached args.
func NewRelauncher(fs types.FS, runner string, args []string) *Relauncher {
	return &Relauncher{
		fs:     fs,
		runner: runner,
		args:   args,
		logger: logging.GetLogger("launch"),
	}
}

// Relaunch validates the cached launch state and starts the emulator.
func (r *Relauncher) Relaunch() error {
	if r.runner == "" {
		return errors.New(errors.ErrRelaunchFailed, "emulator runner not configured, cannot relaunch")
	}
	info, err := r.fs.Stat(r.runner)
	if err != nil || info.IsDir() {
		return errors.Newf(errors.ErrRelaunchFailed, "emulator runner is not a file: %s", r.runner)
	}
	if len(r.args) == 0 {
		return errors.New(errors.ErrRelaunchFailed, "no cached launch args, cannot relaunch")
	}

	r.logger.Info().Str("runner", r.runner).Strs("args", r.args).Msg("Relaunching emulator")
	cmd := exec.Command(r.runner, r.args...)
	if err := cmd.Start(); err != nil {
		return errors.Wrap(err, errors.ErrRelaunchFailed, "failed to start emulator runner")
	}
	// Detach: the migration process does not babysit the emulator.
	return cmd.Process.Release()
}

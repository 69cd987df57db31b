// Package supervisor ensures the emulator process is gone before any
// save file is touched. Termination escalates from a graceful stop to a
// forceful kill with bounded polling; a process that survives both is a
// fatal condition, never retried.
package supervisor

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/savekeep/pkg/errors"
	"github.com/arthur-debert/savekeep/pkg/logging"
	"github.com/arthur-debert/savekeep/pkg/types"
)

// Escalation timing. The waits bound each phase; the poll interval is
// how often liveness is re-probed inside a phase.
const (
	DefaultTermWait     = 2 * time.Second
	DefaultKillWait     = 2 * time.Second
	DefaultPollInterval = 100 * time.Millisecond
)

// Supervisor drives the close-before-migrate protocol for one emulator
// installation.
type Supervisor struct {
	proc    types.ProcessController
	chooser types.Chooser
	logger  zerolog.Logger

	// Overridable in tests; production uses the defaults.
	TermWait     time.Duration
	KillWait     time.Duration
	PollInterval time.Duration
}

// New creates a Supervisor with production timing.
func New(proc types.ProcessController, chooser types.Chooser) *Supervisor {
	return &Supervisor{
		proc:         proc,
		chooser:      chooser,
		logger:       logging.GetLogger("supervisor"),
		TermWait:     DefaultTermWait,
		KillWait:     DefaultKillWait,
		PollInterval: DefaultPollInterval,
	}
}

// EnsureClosed terminates targetPID when given, then blocks until no
// emulator process remains. The running-set is the union of the target
// pid, the last-known pid cached by the previous launch, and a
// process-table scan for the launcher script. While the set is
// non-empty the user is offered retry or cancel; cancel returns
// ErrMigrationBlocked.
func (s *Supervisor) EnsureClosed(targetPID, lastKnownPID int, launcherPattern string) error {
	if targetPID > 0 {
		if err := s.terminate(targetPID); err != nil {
			return err
		}
	}

	for {
		pids := s.runningSet(targetPID, lastKnownPID, launcherPattern)
		if len(pids) == 0 {
			return nil
		}

		s.logger.Warn().Ints("pids", pids).Msg("Emulator running, migration blocked")

		choice, err := s.chooser.Ask(
			"Emulator running",
			"The emulator is running. Migration cannot proceed while it is open.",
			types.ChoiceLabels{OK: "Try again", Cancel: "Cancel"},
		)
		if err != nil {
			return err
		}
		if choice == types.ChoiceOK {
			s.logger.Info().Msg("User chose to wait for emulator exit again")
			continue
		}

		s.logger.Info().Msg("User cancelled migration while emulator was running")
		return errors.New(errors.ErrMigrationBlocked, "migration cancelled while the emulator was running")
	}
}

// terminate escalates SIGTERM then SIGKILL against one pid, polling
// liveness between signals.
func (s *Supervisor) terminate(pid int) error {
	if !s.proc.Alive(pid) {
		return nil
	}

	s.logger.Info().Int("pid", pid).Msg("Requesting graceful emulator stop")
	if err := s.proc.Terminate(pid); err != nil {
		// The process vanished between the probe and the signal.
		return nil
	}

	if s.waitExit(pid, s.TermWait) {
		s.logger.Info().Int("pid", pid).Msg("Emulator exited after graceful stop")
		return nil
	}

	s.logger.Warn().Int("pid", pid).Msg("Emulator still alive, escalating to forceful kill")
	if err := s.proc.Kill(pid); err != nil {
		return errors.Wrapf(err, errors.ErrProcessSignal, "failed to kill emulator pid %d", pid)
	}

	if s.waitExit(pid, s.KillWait) {
		s.logger.Info().Int("pid", pid).Msg("Emulator exited after forceful kill")
		return nil
	}

	return errors.New(errors.ErrProcessUnkillable,
		fmt.Sprintf("emulator pid %d refused to exit after forceful kill", pid))
}

// waitExit polls liveness until the process exits or the deadline passes.
func (s *Supervisor) waitExit(pid int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if !s.proc.Alive(pid) {
			return true
		}
		time.Sleep(s.PollInterval)
	}
	return !s.proc.Alive(pid)
}

// runningSet unions the three liveness sources into a sorted pid list.
func (s *Supervisor) runningSet(targetPID, lastKnownPID int, launcherPattern string) []int {
	set := make(map[int]struct{})
	if lastKnownPID > 0 && s.proc.Alive(lastKnownPID) {
		set[lastKnownPID] = struct{}{}
	}
	if targetPID > 0 && s.proc.Alive(targetPID) {
		set[targetPID] = struct{}{}
	}
	if launcherPattern != "" {
		for _, pid := range s.proc.FindByPattern(launcherPattern) {
			set[pid] = struct{}{}
		}
	}

	pids := make([]int, 0, len(set))
	for pid := range set {
		pids = append(pids, pid)
	}
	sort.Ints(pids)
	return pids
}

// Package migrate is the top-level driver of SaveRAM migration. It
// discovers system directories, ensures the emulator is closed, runs
// the per-directory link state machine with merges where a real local
// directory exists, and relaunches the emulator in targeted mode.
//
// This is the single boundary that catches component errors, logs them
// with context and converts them to user-visible messages. Components
// below it only raise.
package migrate

import (
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/savekeep/pkg/config"
	"github.com/arthur-debert/savekeep/pkg/errors"
	"github.com/arthur-debert/savekeep/pkg/filesystem"
	"github.com/arthur-debert/savekeep/pkg/launch"
	"github.com/arthur-debert/savekeep/pkg/link"
	"github.com/arthur-debert/savekeep/pkg/logging"
	"github.com/arthur-debert/savekeep/pkg/merge"
	"github.com/arthur-debert/savekeep/pkg/paths"
	"github.com/arthur-debert/savekeep/pkg/supervisor"
	"github.com/arthur-debert/savekeep/pkg/types"
	"github.com/arthur-debert/savekeep/pkg/ui"
)

// Options configures an Orchestrator. Settings and Chooser are
// required; the rest default to production implementations.
type Options struct {
	Settings   *config.Settings
	Chooser    types.Chooser
	FileSystem types.FS                // nil: OS filesystem
	Process    types.ProcessController // nil: platform controller
	Launcher   types.Launcher          // nil: runner from settings
	Clock      func() time.Time        // nil: time.Now
}

// Orchestrator runs migrations for one emulator installation.
type Orchestrator struct {
	fs       types.FS
	settings *config.Settings
	sup      *supervisor.Supervisor
	links    *link.Manager
	merger   *merge.Merger
	launcher types.Launcher
	clock    func() time.Time
	logger   zerolog.Logger
}

// New creates an Orchestrator from options.
func New(opts Options) *Orchestrator {
	fs := opts.FileSystem
	if fs == nil {
		fs = filesystem.NewOS()
	}
	proc := opts.Process
	if proc == nil {
		proc = supervisor.NewUnixController()
	}
	launcher := opts.Launcher
	if launcher == nil {
		launcher = launch.NewRelauncher(fs, opts.Settings.RunnerPath(), opts.Settings.LastLaunchArgs())
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Orchestrator{
		fs:       fs,
		settings: opts.Settings,
		sup:      supervisor.New(proc, opts.Chooser),
		links:    link.NewManager(fs),
		merger:   merge.NewMerger(fs, opts.Chooser),
		launcher: launcher,
		clock:    clock,
		logger:   logging.GetLogger("migrate"),
	}
}

// MigrateOne migrates a single system directory, then relaunches the
// emulator with the cached launch arguments. targetPID, when positive,
// is terminated before any file is touched.
func (o *Orchestrator) MigrateOne(system string, targetPID int) error {
	emulatorRoot, err := o.settings.EmulatorRoot(o.fs)
	if err != nil {
		return o.report(system, err)
	}

	if err := o.ensureClosed(emulatorRoot, targetPID); err != nil {
		return o.report(system, err)
	}

	if err := o.migrateSystem(emulatorRoot, system); err != nil {
		return o.report(system, err)
	}

	if err := o.launcher.Relaunch(); err != nil {
		return o.report(system, err)
	}

	ui.ReportSuccess("SaveRAM migration finished for " + system)
	return nil
}

// MigrateAll repairs every system directory that needs it: the union
// of subdirectories under the save root and emulator subdirectories
// that carry a SaveRAM entry. Failures are isolated per directory and
// the emulator is not relaunched.
func (o *Orchestrator) MigrateAll() error {
	emulatorRoot, err := o.settings.EmulatorRoot(o.fs)
	if err != nil {
		return o.report("", err)
	}

	if err := o.ensureClosed(emulatorRoot, 0); err != nil {
		return o.report("", err)
	}

	systems := o.discoverSystems(emulatorRoot)
	if len(systems) == 0 {
		o.logger.Info().Msg("No system directories found for SaveRAM repair")
		return nil
	}
	o.logger.Info().Strs("systems", systems).Msg("Discovered system directories for SaveRAM repair")

	failed := 0
	for _, system := range systems {
		if err := o.migrateSystem(emulatorRoot, system); err != nil {
			o.report(system, err)
			failed++
		}
	}
	if failed > 0 {
		return errors.Newf(errors.ErrInternal, "%d of %d system directories failed to migrate", failed, len(systems))
	}
	return nil
}

// ensureClosed runs the supervisor against all three liveness sources.
func (o *Orchestrator) ensureClosed(emulatorRoot string, targetPID int) error {
	pattern := filepath.Join(emulatorRoot, o.settings.LauncherScript())
	return o.sup.EnsureClosed(targetPID, o.settings.LastPID(), pattern)
}

// migrateSystem applies the link state machine to one system directory.
func (o *Orchestrator) migrateSystem(emulatorRoot, system string) error {
	canonicalDir := paths.CanonicalDir(o.settings.SaveRoot(), system)
	saveRAMPath := paths.SaveRAMPath(emulatorRoot, system)

	if err := o.fs.MkdirAll(canonicalDir, 0o755); err != nil {
		return errors.Wrapf(err, errors.ErrInternal, "failed to create canonical directory %s", canonicalDir)
	}
	if err := o.fs.MkdirAll(filepath.Dir(saveRAMPath), 0o755); err != nil {
		return errors.Wrapf(err, errors.ErrInternal, "failed to create emulator system directory for %s", system)
	}

	state, err := o.links.Classify(canonicalDir, saveRAMPath)
	if err != nil {
		return err
	}
	o.logger.Debug().Str("system", system).Stringer("state", state).Msg("Classified SaveRAM path")

	switch state {
	case types.LinkValid:
		o.logger.Info().Str("system", system).Msg("SaveRAM link already valid")
		return nil

	case types.LinkMissing, types.LinkBroken:
		return o.links.Ensure(canonicalDir, saveRAMPath)

	case types.LinkRealDirectory:
		o.logger.Info().Str("system", system).Msg("Migrating local SaveRAM directory")
		if err := o.merger.MergeTree(saveRAMPath, canonicalDir, o.clock()); err != nil {
			return err
		}
		return o.links.Replace(canonicalDir, saveRAMPath)

	default:
		return errors.Newf(errors.ErrUnexpectedPathType, "unexpected SaveRAM path type: %s", saveRAMPath)
	}
}

// discoverSystems unions canonical-root subdirectories with emulator
// subdirectories that currently carry a SaveRAM entry of any kind.
func (o *Orchestrator) discoverSystems(emulatorRoot string) []string {
	set := make(map[string]struct{})

	if entries, err := o.fs.ReadDir(o.settings.SaveRoot()); err == nil {
		for _, entry := range entries {
			if entry.IsDir() {
				set[entry.Name()] = struct{}{}
			}
		}
	}

	if entries, err := o.fs.ReadDir(emulatorRoot); err == nil {
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			saveRAM := paths.SaveRAMPath(emulatorRoot, entry.Name())
			if _, err := o.fs.Lstat(saveRAM); err == nil {
				set[entry.Name()] = struct{}{}
			}
		}
	}

	systems := make([]string, 0, len(set))
	for name := range set {
		systems = append(systems, name)
	}
	sort.Strings(systems)
	return systems
}

// report logs a failure with context and surfaces it to the user,
// distinguishing explicit cancellation from real errors.
func (o *Orchestrator) report(system string, err error) error {
	level := zerolog.ErrorLevel
	if errors.IsUserCancellation(err) {
		level = zerolog.WarnLevel
	}
	event := o.logger.WithLevel(level)
	if system != "" {
		event = event.Str("system", system)
	}
	event.Err(err).Msg("SaveRAM migration failed")

	message := "SaveRAM migration failed"
	if system != "" {
		message += " for " + system
	}
	message += ": " + err.Error()

	if errors.IsUserCancellation(err) {
		ui.ReportAbort(message)
	} else {
		ui.ReportError(message)
	}
	return err
}

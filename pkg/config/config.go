// Package config is savekeep's read-only view of the launcher's
// settings store. The migration core consumes a handful of keys written
// by the surrounding application (install root, executable, runner,
// save root, last launch args, last pid) and never mutates them.
package config

import (
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/savekeep/pkg/errors"
	"github.com/arthur-debert/savekeep/pkg/paths"
	"github.com/arthur-debert/savekeep/pkg/types"
)

// Settings keys consumed from the launcher's store.
const (
	KeyInstallDir   = "bizhawk.install_dir"
	KeyExePath      = "bizhawk.exe"
	KeyRunnerPath   = "bizhawk.runner"
	KeySaveRoot     = "saveram.root"
	KeyLastArgs     = "launch.last_args"
	KeyLastPID      = "launch.last_pid"
	KeyLauncherName = "bizhawk.launcher_script"
)

// EnvPrefix is the prefix for environment variable overrides,
// e.g. SAVEKEEP_SAVERAM__ROOT overrides saveram.root.
const EnvPrefix = "SAVEKEEP_"

// defaultLauncherScript is the script name matched against the process
// table when scanning for a still-running emulator.
const defaultLauncherScript = "EmuHawkMono.sh"

// Settings provides typed access to the loaded configuration
type Settings struct {
	k *koanf.Koanf
}

// Load reads settings from the default locations: built-in defaults,
// then the first settings file found under the XDG config dir, then
// SAVEKEEP_* environment overrides.
func Load() (*Settings, error) {
	return load(paths.SettingsFileCandidates())
}

// LoadFrom reads settings from an explicit file path, still applying
// defaults and environment overrides. Used by tests and the --config flag.
func LoadFrom(path string) (*Settings, error) {
	return load([]string{path})
}

func load(candidates []string) (*Settings, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		KeySaveRoot:     paths.DefaultSaveRoot(),
		KeyLauncherName: defaultLauncherScript,
	}
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	for _, path := range candidates {
		parser := parserFor(path)
		if err := k.Load(file.Provider(path), parser); err == nil {
			break
		}
	}

	envCb := func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envCb), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	return &Settings{k: k}, nil
}

func parserFor(path string) koanf.Parser {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return yaml.Parser()
	default:
		return toml.Parser()
	}
}

// EmulatorRoot resolves the emulator installation directory: the
// configured install dir when it is a directory, otherwise the parent
// of the configured executable.
func (s *Settings) EmulatorRoot(fs types.FS) (string, error) {
	if root := s.k.String(KeyInstallDir); root != "" {
		if info, err := fs.Stat(root); err == nil && info.IsDir() {
			return root, nil
		}
	}
	if exe := s.k.String(KeyExePath); exe != "" {
		if info, err := fs.Stat(exe); err == nil && !info.IsDir() {
			return filepath.Dir(exe), nil
		}
	}
	return "", errors.New(errors.ErrConfigMissing, "emulator root directory not configured")
}

// SaveRoot returns the canonical save root.
func (s *Settings) SaveRoot() string {
	return s.k.String(KeySaveRoot)
}

// RunnerPath returns the configured relaunch runner script, which may
// be empty when relaunching was never set up.
func (s *Settings) RunnerPath() string {
	return s.k.String(KeyRunnerPath)
}

// LastLaunchArgs returns the launch arguments cached by the previous run.
func (s *Settings) LastLaunchArgs() []string {
	return s.k.Strings(KeyLastArgs)
}

// LastPID returns the emulator pid cached by the previous launch, or 0.
func (s *Settings) LastPID() int {
	return s.k.Int(KeyLastPID)
}

// LauncherScript returns the emulator launcher script name used for
// process-table scans.
func (s *Settings) LauncherScript() string {
	return s.k.String(KeyLauncherName)
}

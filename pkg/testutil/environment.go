// Package testutil provides the shared test environment and fakes used
// across savekeep's test suites: an isolated on-disk layout, a scripted
// chooser, and a controllable process table.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/savekeep/pkg/filesystem"
	"github.com/arthur-debert/savekeep/pkg/types"
)

// TestEnvironment provides an isolated emulator installation and save
// root inside t.TempDir, with the real filesystem behind the FS
// interface. Symlink and mtime behavior is what the migration core
// exercises, so tests run on disk rather than in memory.
type TestEnvironment struct {
	EmulatorRoot string
	SaveRoot     string
	FS           types.FS

	t *testing.T
}

// NewTestEnvironment creates an isolated test environment.
func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()
	tempDir := t.TempDir()

	env := &TestEnvironment{
		EmulatorRoot: filepath.Join(tempDir, "bizhawk"),
		SaveRoot:     filepath.Join(tempDir, "saveram"),
		FS:           filesystem.NewOS(),
		t:            t,
	}
	for _, dir := range []string{env.EmulatorRoot, env.SaveRoot} {
		if err := env.FS.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}
	}
	return env
}

// CanonicalDir returns (and creates) the canonical directory for a system.
func (env *TestEnvironment) CanonicalDir(system string) string {
	env.t.Helper()
	dir := filepath.Join(env.SaveRoot, system)
	if err := env.FS.MkdirAll(dir, 0o755); err != nil {
		env.t.Fatalf("failed to create canonical dir: %v", err)
	}
	return dir
}

// SaveRAMPath returns the emulator-visible SaveRAM path for a system,
// creating the system directory around it.
func (env *TestEnvironment) SaveRAMPath(system string) string {
	env.t.Helper()
	systemDir := filepath.Join(env.EmulatorRoot, system)
	if err := env.FS.MkdirAll(systemDir, 0o755); err != nil {
		env.t.Fatalf("failed to create system dir: %v", err)
	}
	return filepath.Join(systemDir, "SaveRAM")
}

// WriteFile writes a file with the given content and modification time,
// creating parents as needed.
func (env *TestEnvironment) WriteFile(path, content string, mtime time.Time) {
	env.t.Helper()
	if err := env.FS.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		env.t.Fatalf("failed to create parent of %s: %v", path, err)
	}
	if err := env.FS.WriteFile(path, []byte(content), 0o644); err != nil {
		env.t.Fatalf("failed to write %s: %v", path, err)
	}
	if err := env.FS.Chtimes(path, mtime, mtime); err != nil {
		env.t.Fatalf("failed to set mtime of %s: %v", path, err)
	}
}

// ReadFile returns a file's content as a string.
func (env *TestEnvironment) ReadFile(path string) string {
	env.t.Helper()
	data, err := env.FS.ReadFile(path)
	if err != nil {
		env.t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// IsSymlinkTo reports whether path is a symlink resolving to target.
func (env *TestEnvironment) IsSymlinkTo(path, target string) bool {
	env.t.Helper()
	info, err := env.FS.Lstat(path)
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		return false
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return false
	}
	expected, err := filepath.EvalSymlinks(target)
	if err != nil {
		return false
	}
	return resolved == expected
}

// Package paths centralizes the on-disk layout savekeep manages.
//
// Canonical data lives at <saveRoot>/<system>/..., the emulator-visible
// entry is <emulatorRoot>/<system>/SaveRAM (a symlink to the canonical
// directory after migration), and conflict backups are namespaced per
// migration session under <saveRoot>/<system>/.conflicts/<timestamp>/.
package paths

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

const (
	// SaveRAMDirName is the entry name the emulator reads and writes
	// inside each system directory.
	SaveRAMDirName = "SaveRAM"

	// ConflictsDirName is the hidden folder holding conflict backups
	// inside a canonical system directory.
	ConflictsDirName = ".conflicts"

	// SessionTimestampLayout names one migration session's conflict folder.
	SessionTimestampLayout = "20060102-150405"
)

// DefaultSaveRoot returns the canonical save root used when none is
// configured, under the XDG data directory.
func DefaultSaveRoot() string {
	return filepath.Join(xdg.DataHome, "savekeep", "saveram")
}

// CanonicalDir returns the durable save directory for one system.
func CanonicalDir(saveRoot, system string) string {
	return filepath.Join(saveRoot, system)
}

// SaveRAMPath returns the emulator-visible SaveRAM entry for one system.
func SaveRAMPath(emulatorRoot, system string) string {
	return filepath.Join(emulatorRoot, system, SaveRAMDirName)
}

// ConflictRoot returns the backup folder for one migration session.
func ConflictRoot(canonicalDir string, session time.Time) string {
	return filepath.Join(canonicalDir, ConflictsDirName, session.Format(SessionTimestampLayout))
}

// SettingsFileCandidates returns the settings file locations probed in
// order. TOML is preferred; YAML is accepted for hand-written configs.
func SettingsFileCandidates() []string {
	dir := filepath.Join(xdg.ConfigHome, "savekeep")
	return []string{
		filepath.Join(dir, "settings.toml"),
		filepath.Join(dir, "settings.yaml"),
	}
}

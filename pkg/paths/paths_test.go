package paths_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/arthur-debert/savekeep/pkg/paths"
)

func TestLayout(t *testing.T) {
	assert.Equal(t, filepath.Join("/srv/saves", "SNES"), paths.CanonicalDir("/srv/saves", "SNES"))
	assert.Equal(t, filepath.Join("/opt/bizhawk", "SNES", "SaveRAM"), paths.SaveRAMPath("/opt/bizhawk", "SNES"))
}

func TestConflictRootUsesSessionTimestamp(t *testing.T) {
	session := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	got := paths.ConflictRoot("/srv/saves/SNES", session)
	assert.Equal(t, filepath.Join("/srv/saves/SNES", ".conflicts", "20260314-150926"), got)
}

func TestSettingsFileCandidatesPreferTOML(t *testing.T) {
	candidates := paths.SettingsFileCandidates()
	assert.Len(t, candidates, 2)
	assert.Equal(t, "settings.toml", filepath.Base(candidates[0]))
	assert.Equal(t, "settings.yaml", filepath.Base(candidates[1]))
}

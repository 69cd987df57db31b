package merge_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/savekeep/pkg/errors"
	"github.com/arthur-debert/savekeep/pkg/merge"
	"github.com/arthur-debert/savekeep/pkg/paths"
	"github.com/arthur-debert/savekeep/pkg/testutil"
	"github.com/arthur-debert/savekeep/pkg/types"
)

var baseTime = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

// session is a fixed timestamp naming the conflict folder in tests.
var session = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

func conflictDir(canonicalDir string) string {
	return paths.ConflictRoot(canonicalDir, session)
}

func TestMergeTree_MovesFileWithoutConflict(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	canonical := env.CanonicalDir("SNES")
	local := filepath.Join(env.EmulatorRoot, "SNES", "SaveRAM")
	env.WriteFile(filepath.Join(local, "saveB.srm"), "fresh save", baseTime)

	chooser := testutil.NewScriptedChooser()
	m := merge.NewMerger(env.FS, chooser)
	require.NoError(t, m.MergeTree(local, canonical, session))

	assert.Equal(t, "fresh save", env.ReadFile(filepath.Join(canonical, "saveB.srm")))
	assert.NoFileExists(t, filepath.Join(local, "saveB.srm"), "moved file must leave the local tree")
	assert.NoDirExists(t, filepath.Join(canonical, paths.ConflictsDirName), "no backup for a one-sided file")
	assert.Zero(t, chooser.AskCount())
}

func TestMergeTree_ConflictPreservesBothSides(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	canonical := env.CanonicalDir("SNES")
	local := filepath.Join(env.EmulatorRoot, "SNES", "SaveRAM")
	env.WriteFile(filepath.Join(canonical, "saveA.srm"), "canonical content", baseTime)
	env.WriteFile(filepath.Join(local, "saveA.srm"), "local content", baseTime.Add(60*time.Second))

	m := merge.NewMerger(env.FS, testutil.NewScriptedChooser())
	require.NoError(t, m.MergeTree(local, canonical, session))

	backupDir := conflictDir(canonical)
	assert.Equal(t, "canonical content", env.ReadFile(filepath.Join(backupDir, "saveA.srm.canonical")))
	assert.Equal(t, "local content", env.ReadFile(filepath.Join(backupDir, "saveA.srm.local")))

	// The destination ends up as exactly one of the two originals.
	final := env.ReadFile(filepath.Join(canonical, "saveA.srm"))
	assert.Contains(t, []string{"canonical content", "local content"}, final)
}

func TestMergeTree_TimeWindowPicksOlderWithoutPrompt(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	canonical := env.CanonicalDir("SNES")
	local := filepath.Join(env.EmulatorRoot, "SNES", "SaveRAM")
	env.WriteFile(filepath.Join(canonical, "saveA.srm"), "older canonical", baseTime)
	env.WriteFile(filepath.Join(local, "saveA.srm"), "newer local", baseTime.Add(120*time.Second))

	chooser := testutil.NewScriptedChooser()
	m := merge.NewMerger(env.FS, chooser)
	require.NoError(t, m.MergeTree(local, canonical, session))

	assert.Zero(t, chooser.AskCount(), "120s apart is inside the window, no prompt")
	assert.Equal(t, "older canonical", env.ReadFile(filepath.Join(canonical, "saveA.srm")))
}

func TestMergeTree_TimeWindowAppliesOlderLocalFile(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	canonical := env.CanonicalDir("SNES")
	local := filepath.Join(env.EmulatorRoot, "SNES", "SaveRAM")
	env.WriteFile(filepath.Join(canonical, "saveA.srm"), "newer canonical", baseTime.Add(120*time.Second))
	env.WriteFile(filepath.Join(local, "saveA.srm"), "older local", baseTime)

	chooser := testutil.NewScriptedChooser()
	m := merge.NewMerger(env.FS, chooser)
	require.NoError(t, m.MergeTree(local, canonical, session))

	assert.Zero(t, chooser.AskCount())
	assert.Equal(t, "older local", env.ReadFile(filepath.Join(canonical, "saveA.srm")),
		"older local copy becomes canonical inside the window")
}

func TestMergeTree_EqualTimesKeepCanonical(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	canonical := env.CanonicalDir("SNES")
	local := filepath.Join(env.EmulatorRoot, "SNES", "SaveRAM")
	env.WriteFile(filepath.Join(canonical, "saveA.srm"), "canonical content", baseTime)
	env.WriteFile(filepath.Join(local, "saveA.srm"), "local content", baseTime)

	chooser := testutil.NewScriptedChooser()
	m := merge.NewMerger(env.FS, chooser)
	require.NoError(t, m.MergeTree(local, canonical, session))

	assert.Zero(t, chooser.AskCount())
	assert.Equal(t, "canonical content", env.ReadFile(filepath.Join(canonical, "saveA.srm")),
		"a tie treats the canonical side as older")
}

func TestMergeTree_BeyondWindowPromptsAndAppliesNewer(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	canonical := env.CanonicalDir("SNES")
	local := filepath.Join(env.EmulatorRoot, "SNES", "SaveRAM")
	env.WriteFile(filepath.Join(canonical, "saveA.srm"), "canonical content", baseTime)
	env.WriteFile(filepath.Join(local, "saveA.srm"), "local content", baseTime.Add(301*time.Second))

	chooser := testutil.NewScriptedChooser(types.ChoiceExtra) // use newer
	m := merge.NewMerger(env.FS, chooser)
	require.NoError(t, m.MergeTree(local, canonical, session))

	assert.Equal(t, 1, chooser.AskCount(), "301s apart is outside the window")
	assert.Equal(t, "local content", env.ReadFile(filepath.Join(canonical, "saveA.srm")))
}

func TestMergeTree_BeyondWindowUserKeepsOlder(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	canonical := env.CanonicalDir("SNES")
	local := filepath.Join(env.EmulatorRoot, "SNES", "SaveRAM")
	env.WriteFile(filepath.Join(canonical, "saveA.srm"), "canonical content", baseTime)
	env.WriteFile(filepath.Join(local, "saveA.srm"), "local content", baseTime.Add(400*time.Second))

	chooser := testutil.NewScriptedChooser(types.ChoiceOK) // use older
	m := merge.NewMerger(env.FS, chooser)
	require.NoError(t, m.MergeTree(local, canonical, session))

	assert.Equal(t, 1, chooser.AskCount())
	assert.Equal(t, "canonical content", env.ReadFile(filepath.Join(canonical, "saveA.srm")))
}

func TestMergeTree_CancelAbortsRemainingMerge(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	canonical := env.CanonicalDir("SNES")
	local := filepath.Join(env.EmulatorRoot, "SNES", "SaveRAM")
	env.WriteFile(filepath.Join(canonical, "saveA.srm"), "canonical content", baseTime)
	env.WriteFile(filepath.Join(local, "saveA.srm"), "local content", baseTime.Add(4000*time.Second))

	chooser := testutil.NewScriptedChooser(types.ChoiceCancel)
	m := merge.NewMerger(env.FS, chooser)
	err := m.MergeTree(local, canonical, session)

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrMergeCancelled))
	assert.Equal(t, "canonical content", env.ReadFile(filepath.Join(canonical, "saveA.srm")),
		"cancel leaves the destination untouched")
	// Backups are written before the choice and retained on cancel.
	backupDir := conflictDir(canonical)
	assert.FileExists(t, filepath.Join(backupDir, "saveA.srm.canonical"))
	assert.FileExists(t, filepath.Join(backupDir, "saveA.srm.local"))
}

func TestMergeTree_NestedFilesKeepRelativeLayout(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	canonical := env.CanonicalDir("SNES")
	local := filepath.Join(env.EmulatorRoot, "SNES", "SaveRAM")
	env.WriteFile(filepath.Join(canonical, "sub", "saveA.srm"), "canonical content", baseTime)
	env.WriteFile(filepath.Join(local, "sub", "saveA.srm"), "local content", baseTime.Add(30*time.Second))
	env.WriteFile(filepath.Join(local, "sub", "saveB.srm"), "new nested save", baseTime)

	m := merge.NewMerger(env.FS, testutil.NewScriptedChooser())
	require.NoError(t, m.MergeTree(local, canonical, session))

	assert.Equal(t, "new nested save", env.ReadFile(filepath.Join(canonical, "sub", "saveB.srm")))
	backupDir := filepath.Join(conflictDir(canonical), "sub")
	assert.FileExists(t, filepath.Join(backupDir, "saveA.srm.canonical"))
	assert.FileExists(t, filepath.Join(backupDir, "saveA.srm.local"))
}

func TestMergeFile_DestinationDirectoryIsFatalForThatFile(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	canonical := env.CanonicalDir("SNES")
	local := filepath.Join(env.EmulatorRoot, "SNES", "SaveRAM")
	// The destination of saveA.srm is a directory; saveB.srm is fine.
	require.NoError(t, env.FS.MkdirAll(filepath.Join(canonical, "saveA.srm"), 0o755))
	env.WriteFile(filepath.Join(local, "saveA.srm"), "local content", baseTime)
	env.WriteFile(filepath.Join(local, "saveB.srm"), "fresh save", baseTime)

	m := merge.NewMerger(env.FS, testutil.NewScriptedChooser())
	err := m.MergeTree(local, canonical, session)

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConflictDestIsDir))
	assert.Equal(t, "fresh save", env.ReadFile(filepath.Join(canonical, "saveB.srm")),
		"other files still merge")
	assert.FileExists(t, filepath.Join(local, "saveA.srm"), "the blocked file stays in place")
}

func TestMergeFile_PreservesModificationTime(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	canonical := env.CanonicalDir("SNES")
	local := filepath.Join(env.EmulatorRoot, "SNES", "SaveRAM")
	localFile := filepath.Join(local, "saveA.srm")
	env.WriteFile(filepath.Join(canonical, "saveA.srm"), "canonical content", baseTime)
	env.WriteFile(localFile, "local content", baseTime.Add(400*time.Second))

	m := merge.NewMerger(env.FS, testutil.NewScriptedChooser(types.ChoiceExtra))
	require.NoError(t, m.MergeTree(local, canonical, session))

	info, err := env.FS.Stat(filepath.Join(canonical, "saveA.srm"))
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(baseTime.Add(400*time.Second)),
		"applied file keeps the chosen version's mtime")
}

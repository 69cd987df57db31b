package merge

import (
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/savekeep/pkg/errors"
	"github.com/arthur-debert/savekeep/pkg/logging"
	"github.com/arthur-debert/savekeep/pkg/types"
)

// Backup labels. Both sides of a conflict are always archived, whatever
// the eventual resolution.
const (
	LabelCanonical = "canonical"
	LabelLocal     = "local"
)

// Archiver writes conflict backups into a per-session conflict folder.
type Archiver struct {
	fs     types.FS
	logger zerolog.Logger
}

// NewArchiver creates an Archiver on the given filesystem.
func NewArchiver(fs types.FS) *Archiver {
	return &Archiver{
		fs:     fs,
		logger: logging.GetLogger("archiver"),
	}
}

// Backup copies source into conflictRoot as <name>.<label>, preserving
// the source's modification time. The conflict folder is created on
// first use; the session timestamp in its path keeps backups from
// different runs apart.
func (a *Archiver) Backup(conflictRoot, label, source string) error {
	if err := a.fs.MkdirAll(conflictRoot, 0o755); err != nil {
		return errors.Wrapf(err, errors.ErrBackupWrite, "failed to create conflict folder %s", conflictRoot)
	}
	target := filepath.Join(conflictRoot, filepath.Base(source)+"."+label)
	if err := copyPreservingTime(a.fs, source, target); err != nil {
		return errors.Wrapf(err, errors.ErrBackupWrite, "failed to back up %s", source)
	}
	a.logger.Info().Str("source", source).Str("backup", target).Msg("Backed up conflict file")
	return nil
}

// copyPreservingTime copies a file and carries the source mtime over,
// so backups and resolved files keep their original timestamps.
func copyPreservingTime(fs types.FS, source, target string) error {
	info, err := fs.Stat(source)
	if err != nil {
		return err
	}
	data, err := fs.ReadFile(source)
	if err != nil {
		return err
	}
	if err := fs.WriteFile(target, data, info.Mode().Perm()); err != nil {
		return err
	}
	return fs.Chtimes(target, info.ModTime(), info.ModTime())
}

// Package merge implements the file-level conflict resolution used when
// both a canonical copy and a local copy of a save file exist.
//
// Files present on only one side are moved without ceremony. A true
// two-sided conflict always backs up both versions first, then resolves
// via the time-window rule or an interactive three-way choice. Nothing
// is deleted before its backup is written.
package merge

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/savekeep/pkg/errors"
	"github.com/arthur-debert/savekeep/pkg/logging"
	"github.com/arthur-debert/savekeep/pkg/paths"
	"github.com/arthur-debert/savekeep/pkg/types"
)

// Merger merges a local save tree into canonical storage.
type Merger struct {
	fs       types.FS
	archiver *Archiver
	resolver *Resolver
	logger   zerolog.Logger
}

// NewMerger creates a Merger resolving conflicts through the given chooser.
func NewMerger(fs types.FS, chooser types.Chooser) *Merger {
	return &Merger{
		fs:       fs,
		archiver: NewArchiver(fs),
		resolver: NewResolver(chooser),
		logger:   logging.GetLogger("merge"),
	}
}

// MergeTree walks the local real directory and merges every leaf file
// into canonicalDir. Directories are not merge units. A cancelled
// conflict aborts the remaining walk immediately; a destination that
// turns out to be a directory fails that one file and the walk
// continues, with the first such error reported at the end so the
// caller knows the tree is not fully merged.
func (m *Merger) MergeTree(sourceDir, canonicalDir string, session time.Time) error {
	conflictBase := paths.ConflictRoot(canonicalDir, session)

	var deferred error
	err := m.walk(sourceDir, "", func(relPath string) error {
		source := filepath.Join(sourceDir, relPath)
		dest := filepath.Join(canonicalDir, relPath)
		conflictRoot := filepath.Join(conflictBase, filepath.Dir(relPath))

		mergeErr := m.MergeFile(source, dest, conflictRoot)
		if mergeErr == nil {
			return nil
		}
		if errors.IsErrorCode(mergeErr, errors.ErrConflictDestIsDir) {
			m.logger.Error().Err(mergeErr).Str("file", relPath).Msg("Skipping file, destination is a directory")
			if deferred == nil {
				deferred = mergeErr
			}
			return nil
		}
		return mergeErr
	})
	if err != nil {
		return err
	}
	return deferred
}

// walk visits every non-directory entry under dir, depth first.
func (m *Merger) walk(root, rel string, visit func(relPath string) error) error {
	entries, err := m.fs.ReadDir(filepath.Join(root, rel))
	if err != nil {
		return errors.Wrapf(err, errors.ErrInternal, "failed to read local save directory %s", filepath.Join(root, rel))
	}
	for _, entry := range entries {
		entryRel := filepath.Join(rel, entry.Name())
		if entry.IsDir() {
			if err := m.walk(root, entryRel, visit); err != nil {
				return err
			}
			continue
		}
		if err := visit(entryRel); err != nil {
			return err
		}
	}
	return nil
}

// MergeFile merges one local file into its canonical destination. When
// the destination does not exist the file is moved directly, with no
// backup: backups exist only for genuine two-sided conflicts.
func (m *Merger) MergeFile(source, dest, conflictRoot string) error {
	destInfo, err := m.fs.Lstat(dest)
	if err != nil {
		if !os.IsNotExist(err) {
			return errors.Wrapf(err, errors.ErrInternal, "failed to inspect destination %s", dest)
		}
		if err := m.fs.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return errors.Wrapf(err, errors.ErrFileMove, "failed to create parent of %s", dest)
		}
		if err := m.fs.Rename(source, dest); err != nil {
			return errors.Wrapf(err, errors.ErrFileMove, "failed to move %s to %s", source, dest)
		}
		m.logger.Info().Str("dest", dest).Msg("Moved new file into canonical SaveRAM")
		return nil
	}

	if destInfo.IsDir() {
		return errors.Newf(errors.ErrConflictDestIsDir, "conflict destination is a directory: %s", dest)
	}

	if err := m.archiver.Backup(conflictRoot, LabelCanonical, dest); err != nil {
		return err
	}
	if err := m.archiver.Backup(conflictRoot, LabelLocal, source); err != nil {
		return err
	}

	sourceInfo, err := m.fs.Stat(source)
	if err != nil {
		return errors.Wrapf(err, errors.ErrInternal, "failed to stat %s", source)
	}

	conflict := orderConflict(dest, destInfo.ModTime(), source, sourceInfo.ModTime())
	chosen, err := m.resolver.Choose(conflict)
	if err != nil {
		return err
	}

	if chosen == source {
		if err := copyPreservingTime(m.fs, source, dest); err != nil {
			return errors.Wrapf(err, errors.ErrFileMove, "failed to apply chosen file to %s", dest)
		}
		m.logger.Info().Str("dest", dest).Msg("Conflict resolved, local file is now canonical")
	} else {
		m.logger.Info().Str("dest", dest).Msg("Conflict resolved, kept canonical file")
	}
	return nil
}

// orderConflict builds the Conflict with older/newer assigned by
// modification time. A tie treats the canonical side as older, so the
// window rule never lets an equal-aged local copy clobber the
// canonical one.
func orderConflict(canonicalPath string, canonicalTime time.Time, localPath string, localTime time.Time) Conflict {
	c := Conflict{
		CanonicalPath: canonicalPath,
		LocalPath:     localPath,
	}
	if localTime.Before(canonicalTime) {
		c.OlderPath, c.OlderTime = localPath, localTime
		c.NewerPath, c.NewerTime = canonicalPath, canonicalTime
	} else {
		c.OlderPath, c.OlderTime = canonicalPath, canonicalTime
		c.NewerPath, c.NewerTime = localPath, localTime
	}
	return c
}

// Package link maintains the symlink that makes the emulator read and
// write directly into canonical storage.
//
// Classification covers five states of the emulator-visible path:
// missing, a valid link, a broken or misdirected link, a real directory
// (which must be merged before linking), and anything else (never
// touched). Repair is idempotent once the state is LinkValid.
package link

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/savekeep/pkg/errors"
	"github.com/arthur-debert/savekeep/pkg/logging"
	"github.com/arthur-debert/savekeep/pkg/types"
)

// Manager classifies and repairs SaveRAM links.
type Manager struct {
	fs     types.FS
	logger zerolog.Logger
}

// NewManager creates a link Manager on the given filesystem.
func NewManager(fs types.FS) *Manager {
	return &Manager{
		fs:     fs,
		logger: logging.GetLogger("link"),
	}
}

// Classify determines what sits at linkPath relative to canonicalDir.
func (m *Manager) Classify(canonicalDir, linkPath string) (types.LinkState, error) {
	info, err := m.fs.Lstat(linkPath)
	if err != nil {
		if os.IsNotExist(err) {
			return types.LinkMissing, nil
		}
		return types.LinkMissing, errors.Wrapf(err, errors.ErrInternal, "failed to inspect %s", linkPath)
	}

	if info.Mode()&os.ModeSymlink != 0 {
		target, err := m.fs.Readlink(linkPath)
		if err != nil {
			return types.LinkBroken, nil
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(linkPath), target)
		}
		if m.resolvesTo(target, canonicalDir) {
			return types.LinkValid, nil
		}
		return types.LinkBroken, nil
	}

	if info.IsDir() {
		return types.LinkRealDirectory, nil
	}
	return types.LinkOtherPathType, nil
}

// resolvesTo reports whether target and canonicalDir name the same
// existing directory.
func (m *Manager) resolvesTo(target, canonicalDir string) bool {
	resolved, err := filepath.EvalSymlinks(target)
	if err != nil {
		return false
	}
	canonical, err := filepath.EvalSymlinks(canonicalDir)
	if err != nil {
		return false
	}
	return resolved == canonical
}

// Ensure makes linkPath a symlink to canonicalDir. It handles the
// missing, valid and broken states; a real directory must be merged and
// removed by the caller first, and any other entry type is fatal.
// Safe to call repeatedly once the state is LinkValid.
func (m *Manager) Ensure(canonicalDir, linkPath string) error {
	state, err := m.Classify(canonicalDir, linkPath)
	if err != nil {
		return err
	}

	switch state {
	case types.LinkValid:
		m.logger.Debug().Str("link", linkPath).Msg("SaveRAM link already valid")
		return nil

	case types.LinkMissing:
		m.logger.Info().Str("link", linkPath).Str("target", canonicalDir).Msg("Creating SaveRAM link")
		return m.create(canonicalDir, linkPath)

	case types.LinkBroken:
		m.logger.Info().Str("link", linkPath).Str("target", canonicalDir).Msg("Repairing SaveRAM link")
		if err := m.fs.Remove(linkPath); err != nil {
			return errors.Wrapf(err, errors.ErrLinkRemove, "failed to remove broken link %s", linkPath)
		}
		return m.create(canonicalDir, linkPath)

	case types.LinkRealDirectory:
		return errors.Newf(errors.ErrInternal,
			"real directory at %s must be merged before linking", linkPath)

	default:
		return errors.Newf(errors.ErrUnexpectedPathType,
			"unexpected entry type at SaveRAM path %s", linkPath)
	}
}

// Replace removes the (now emptied) real directory at linkPath and
// creates the link. Called by the orchestrator after a merge.
func (m *Manager) Replace(canonicalDir, linkPath string) error {
	if err := m.fs.RemoveAll(linkPath); err != nil {
		return errors.Wrapf(err, errors.ErrLinkRemove, "failed to remove migrated directory %s", linkPath)
	}
	return m.create(canonicalDir, linkPath)
}

func (m *Manager) create(canonicalDir, linkPath string) error {
	if err := m.fs.MkdirAll(filepath.Dir(linkPath), 0o755); err != nil {
		return errors.Wrapf(err, errors.ErrLinkCreate, "failed to create parent of %s", linkPath)
	}
	if err := m.fs.Symlink(canonicalDir, linkPath); err != nil {
		return errors.Wrapf(err, errors.ErrLinkCreate, "failed to link %s to %s", linkPath, canonicalDir)
	}
	return nil
}

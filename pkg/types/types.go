// Package types defines the shared data model and capability
// interfaces for savekeep's migration core.
package types

// LinkState classifies what currently sits at the emulator-visible
// SaveRAM path for one system directory.
type LinkState int

const (
	// LinkMissing means no entry exists at the SaveRAM path.
	LinkMissing LinkState = iota

	// LinkValid means the path is a symlink resolving to the canonical directory.
	LinkValid

	// LinkBroken means the path is a symlink that does not resolve,
	// or resolves somewhere other than the canonical directory.
	LinkBroken

	// LinkRealDirectory means a real directory sits at the path and
	// must be merged before the link can be created.
	LinkRealDirectory

	// LinkOtherPathType means some other entry (a regular file, a
	// device node) sits at the path. Never touched.
	LinkOtherPathType
)

// String returns the string representation of the link state
func (s LinkState) String() string {
	switch s {
	case LinkMissing:
		return "missing"
	case LinkValid:
		return "valid"
	case LinkBroken:
		return "broken"
	case LinkRealDirectory:
		return "real-directory"
	case LinkOtherPathType:
		return "other-path-type"
	default:
		return "unknown"
	}
}

// SystemDir identifies one emulated system's save area. Derived at each
// run by scanning the canonical root and the emulator installation; never
// persisted as an entity.
type SystemDir struct {
	// Name is the system directory name, e.g. "SNES".
	Name string

	// CanonicalDir is the durable save location under the save root.
	CanonicalDir string

	// SaveRAMPath is the emulator-visible path that must end up as a
	// link to CanonicalDir.
	SaveRAMPath string
}

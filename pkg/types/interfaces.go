package types

import (
	"io/fs"
	"time"
)

// FS is the filesystem interface required for savekeep operations
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	Chtimes(name string, atime, mtime time.Time) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Symlink operations
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)

	// Other operations
	Rename(oldpath, newpath string) error
	Remove(name string) error
	RemoveAll(path string) error
}

// ProcessController abstracts platform signal primitives so the
// escalation algorithm can run against any OS signal or handle API.
type ProcessController interface {
	// Alive probes liveness without affecting the process.
	Alive(pid int) bool

	// Terminate requests a graceful stop.
	Terminate(pid int) error

	// Kill requests a forceful stop.
	Kill(pid int) error

	// FindByPattern returns pids of processes whose command line
	// matches the given pattern.
	FindByPattern(pattern string) []int
}

// Launcher relaunches the emulator after a targeted migration.
type Launcher interface {
	Relaunch() error
}

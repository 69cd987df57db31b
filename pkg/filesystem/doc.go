// Package filesystem provides the OS implementation of the types.FS
// interface. Core components never call the os package directly; they
// take an FS so tests can run against isolated trees and so link
// creation can be swapped out on platforms where symlinks need
// privilege (junctions, marker files).
package filesystem

// Package ui provides savekeep's user-facing output: terminal
// detection and the message reporting used by the orchestrator
// boundary. Components below the orchestrator never print; they only
// raise errors.
package ui

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

// IsInteractive reports whether stdout is attached to a terminal that
// can host an interactive form.
func IsInteractive() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ReportError renders a user-visible failure message.
func ReportError(message string) {
	pterm.Error.Println(message)
}

// ReportAbort renders a user-cancelled outcome. Cancellation is an
// abort, not a bug, so it is styled as a warning.
func ReportAbort(message string) {
	pterm.Warning.Println(message)
}

// ReportSuccess renders a completed-migration message.
func ReportSuccess(message string) {
	pterm.Success.Println(message)
}

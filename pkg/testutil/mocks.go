package testutil

import (
	"sync"

	"github.com/arthur-debert/savekeep/pkg/errors"
	"github.com/arthur-debert/savekeep/pkg/types"
)

// ScriptedChooser replays a fixed sequence of choices and records the
// questions it was asked. Asking past the end of the script fails, so
// tests catch unexpected prompts.
type ScriptedChooser struct {
	Script []types.Choice

	Asked []string // titles, in order
	next  int
}

// NewScriptedChooser creates a chooser replaying the given choices.
func NewScriptedChooser(choices ...types.Choice) *ScriptedChooser {
	return &ScriptedChooser{Script: choices}
}

// Ask implements types.Chooser.
func (c *ScriptedChooser) Ask(title, body string, labels types.ChoiceLabels) (types.Choice, error) {
	c.Asked = append(c.Asked, title)
	if c.next >= len(c.Script) {
		return types.ChoiceCancel, errors.Newf(errors.ErrChooserUnavailable,
			"unexpected prompt %q, script exhausted", title)
	}
	choice := c.Script[c.next]
	c.next++
	return choice, nil
}

// AskCount returns how many prompts were shown.
func (c *ScriptedChooser) AskCount() int {
	return len(c.Asked)
}

// FakeProcessController simulates a process table. Processes survive a
// configurable number of liveness polls after each signal, so the
// escalation path can be exercised without real processes.
type FakeProcessController struct {
	mu sync.Mutex

	alive          map[int]bool
	ignoreTerm     map[int]bool // pid survives graceful stop
	ignoreKill     map[int]bool // pid survives forceful kill
	patternMatches []int

	TermSignals []int
	KillSignals []int
}

// NewFakeProcessController creates an empty fake process table.
func NewFakeProcessController() *FakeProcessController {
	return &FakeProcessController{
		alive:      make(map[int]bool),
		ignoreTerm: make(map[int]bool),
		ignoreKill: make(map[int]bool),
	}
}

// Spawn registers a running pid.
func (f *FakeProcessController) Spawn(pid int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alive[pid] = true
}

// IgnoreTerminate makes a pid survive graceful stop requests.
func (f *FakeProcessController) IgnoreTerminate(pid int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ignoreTerm[pid] = true
}

// IgnoreKill makes a pid survive forceful kill requests too.
func (f *FakeProcessController) IgnoreKill(pid int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ignoreKill[pid] = true
}

// SetPatternMatches fixes the result of FindByPattern.
func (f *FakeProcessController) SetPatternMatches(pids ...int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patternMatches = pids
}

// Alive implements types.ProcessController.
func (f *FakeProcessController) Alive(pid int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.alive[pid]
}

// Terminate implements types.ProcessController.
func (f *FakeProcessController) Terminate(pid int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.TermSignals = append(f.TermSignals, pid)
	if !f.ignoreTerm[pid] {
		delete(f.alive, pid)
	}
	return nil
}

// Kill implements types.ProcessController.
func (f *FakeProcessController) Kill(pid int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.KillSignals = append(f.KillSignals, pid)
	if !f.ignoreKill[pid] {
		delete(f.alive, pid)
	}
	return nil
}

// FindByPattern implements types.ProcessController.
func (f *FakeProcessController) FindByPattern(pattern string) []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	var live []int
	for _, pid := range f.patternMatches {
		if f.alive[pid] {
			live = append(live, pid)
		}
	}
	return live
}

// NopLauncher records relaunch requests without starting anything.
type NopLauncher struct {
	Calls int
}

// Relaunch implements types.Launcher.
func (l *NopLauncher) Relaunch() error {
	l.Calls++
	return nil
}

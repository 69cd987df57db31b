//go:build unix

package supervisor

import (
	"os/exec"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/arthur-debert/savekeep/pkg/types"
)

// unixController implements types.ProcessController with POSIX signals.
type unixController struct{}

// NewUnixController creates the platform ProcessController for unix.
func NewUnixController() types.ProcessController {
	return &unixController{}
}

// Alive probes with signal 0, which has no effect on the target. EPERM
// means the process exists but belongs to another user, so it counts
// as alive.
func (c *unixController) Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || err == unix.EPERM
}

func (c *unixController) Terminate(pid int) error {
	return unix.Kill(pid, unix.SIGTERM)
}

func (c *unixController) Kill(pid int) error {
	return unix.Kill(pid, unix.SIGKILL)
}

// FindByPattern scans the process table for command lines matching the
// pattern. A missing pgrep or no matches both yield an empty set.
func (c *unixController) FindByPattern(pattern string) []int {
	out, err := exec.Command("pgrep", "-f", pattern).Output()
	if err != nil {
		return nil
	}
	var pids []int
	for _, line := range strings.Split(string(out), "\n") {
		pid, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			continue
		}
		pids = append(pids, pid)
	}
	return pids
}

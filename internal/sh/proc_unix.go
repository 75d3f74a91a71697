//go:build !windows

package sh

import (
	"os"
	"os/exec"
	"syscall"
)

// setProcGroup puts the command in its own process group so the whole tree
// can be killed at once.
func setProcGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killTree kills the process and its entire process group.
func killTree(p *os.Process) {
	if p == nil {
		return
	}

	// Negative PID targets the group.
	_ = syscall.Kill(-p.Pid, syscall.SIGKILL)
}

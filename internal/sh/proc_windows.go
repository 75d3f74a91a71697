//go:build windows

package sh

import (
	"os"
	"os/exec"
)

// setProcGroup is a no-op on Windows; Job Objects would be needed for full
// process tree management.
func setProcGroup(cmd *exec.Cmd) {}

// killTree kills the process. Children may survive on Windows.
func killTree(p *os.Process) {
	if p == nil {
		return
	}

	_ = p.Kill()
}

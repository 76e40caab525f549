//go:build !windows

package build

import (
	"os/exec"
	"syscall"
)

// configureProcess puts the tool in its own process group so Stop reaches
// the worker processes it spawns.
func configureProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM)
	}
}

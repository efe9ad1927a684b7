//go:build !windows

package infra

import (
	"os/exec"

	"github.com/eliteGoblin/focusd/app_rm/internal/command"
	"github.com/eliteGoblin/focusd/app_rm/internal/domain"
)

// findShell locates a POSIX shell.
func findShell() string {
	if path, err := exec.LookPath("sh"); err == nil {
		return path
	}
	for _, path := range []string{"/bin/sh", "/usr/bin/sh"} {
		if _, err := exec.LookPath(path); err == nil {
			return path
		}
	}
	return "/bin/sh"
}

func directCommand(path, args string) *exec.Cmd {
	return exec.Command(path, command.SplitArgs(args)...)
}

func shellCommand(shell, cmdline string) *exec.Cmd {
	return exec.Command(shell, "-c", cmdline)
}

// launchElevated has no non-interactive equivalent here; the executor falls
// through to a direct launch.
func launchElevated(string, string) error {
	return domain.ErrElevationUnsupported
}

package infra

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"

	"github.com/eliteGoblin/focusd/app_rm/internal/domain"
)

// ProcessLauncherImpl implements domain.ProcessLauncher with os/exec.
// Children are never killed or timed out; uninstallers run to completion.
type ProcessLauncherImpl struct {
	shellPath string
}

// NewProcessLauncher creates a launcher using the platform shell.
func NewProcessLauncher() domain.ProcessLauncher {
	return &ProcessLauncherImpl{shellPath: findShell()}
}

// Run starts executable with args, waits for it and captures its output.
func (l *ProcessLauncherImpl) Run(executable, args string) (domain.ProcessResult, error) {
	path, err := exec.LookPath(executable)
	if err != nil {
		return domain.ProcessResult{}, fmt.Errorf("%w: %s: %w", domain.ErrExecutableNotFound, executable, err)
	}
	return runCapture(directCommand(path, args))
}

// RunShell hands command to the platform shell verbatim and returns its exit code.
func (l *ProcessLauncherImpl) RunShell(command string) (int, error) {
	cmd := shellCommand(l.shellPath, command)
	err := cmd.Run()
	if code, ok := exitCode(err); ok {
		return code, nil
	}
	return -1, fmt.Errorf("shell %s: %w", l.shellPath, err)
}

// LaunchElevated requests a privileged launch without waiting for the child.
func (l *ProcessLauncherImpl) LaunchElevated(executable, args string) error {
	return launchElevated(executable, args)
}

func runCapture(cmd *exec.Cmd) (domain.ProcessResult, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdin = nil
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := domain.ProcessResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	code, ok := exitCode(err)
	if !ok {
		return result, fmt.Errorf("run %s: %w", cmd.Path, err)
	}
	result.ExitCode = code
	return result, nil
}

// exitCode reports the exit status for a finished process. ok is false when
// err means the process never ran.
func exitCode(err error) (int, bool) {
	if err == nil {
		return 0, true
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), true
	}
	return 0, false
}

// Ensure ProcessLauncherImpl implements domain.ProcessLauncher.
var _ domain.ProcessLauncher = (*ProcessLauncherImpl)(nil)

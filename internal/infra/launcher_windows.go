//go:build windows

package infra

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/sys/windows"
)

// findShell locates cmd.exe: %ComSpec%, then PATH, then System32.
func findShell() string {
	if comspec := os.Getenv("ComSpec"); comspec != "" {
		return comspec
	}
	if path, err := exec.LookPath("cmd.exe"); err == nil {
		return path
	}
	root := os.Getenv("SystemRoot")
	if root == "" {
		root = `C:\Windows`
	}
	return filepath.Join(root, "System32", "cmd.exe")
}

// directCommand passes args through untouched. Uninstall strings are
// already in Windows command-line form, so re-quoting them would break
// switches such as /X{GUID} or KEY="a b".
func directCommand(path, args string) *exec.Cmd {
	cmd := exec.Command(path)
	line := syscall.EscapeArg(path)
	if args = strings.TrimSpace(args); args != "" {
		line += " " + args
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{CmdLine: line}
	return cmd
}

func shellCommand(shell, command string) *exec.Cmd {
	cmd := exec.Command(shell)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CmdLine: fmt.Sprintf(`%s /d /s /c "%s"`, syscall.EscapeArg(shell), command),
	}
	return cmd
}

// launchElevated uses ShellExecute with the "runas" verb, which shows the UAC
// prompt. ShellExecute returns once the request is accepted.
func launchElevated(executable, args string) error {
	verb, err := windows.UTF16PtrFromString("runas")
	if err != nil {
		return err
	}
	file, err := windows.UTF16PtrFromString(executable)
	if err != nil {
		return err
	}
	var params *uint16
	if args != "" {
		if params, err = windows.UTF16PtrFromString(args); err != nil {
			return err
		}
	}
	if err := windows.ShellExecute(0, verb, file, params, nil, windows.SW_SHOWNORMAL); err != nil {
		return fmt.Errorf("runas %s: %w", executable, err)
	}
	return nil
}

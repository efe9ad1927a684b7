//go:build !windows

package infra

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliteGoblin/focusd/app_rm/internal/domain"
)

func TestProcessLauncher_RunCapturesOutputAndExitCode(t *testing.T) {
	l := NewProcessLauncher()

	res, err := l.Run("sh", `-c "echo hello; echo oops 1>&2; exit 2"`)
	require.NoError(t, err)
	assert.Equal(t, 2, res.ExitCode)
	assert.Equal(t, "hello\n", res.Stdout)
	assert.Equal(t, "oops\n", res.Stderr)
}

func TestProcessLauncher_RunMissingExecutable(t *testing.T) {
	l := NewProcessLauncher()

	_, err := l.Run("apprm-definitely-missing-binary", "/S")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExecutableNotFound)
}

func TestProcessLauncher_RunShell(t *testing.T) {
	l := NewProcessLauncher()

	code, err := l.RunShell("exit 3")
	require.NoError(t, err)
	assert.Equal(t, 3, code)

	code, err = l.RunShell("true")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}

func TestProcessLauncher_RunShellMissingShell(t *testing.T) {
	l := &ProcessLauncherImpl{shellPath: "/nonexistent/sh"}

	_, err := l.RunShell("true")
	assert.Error(t, err)
}

func TestProcessLauncher_LaunchElevatedUnsupported(t *testing.T) {
	err := NewProcessLauncher().LaunchElevated("sh", "-c true")
	assert.ErrorIs(t, err, domain.ErrElevationUnsupported)
}

func TestFindShell(t *testing.T) {
	assert.NotEmpty(t, findShell())
	assert.Equal(t, findShell(), NewProcessLauncher().(*ProcessLauncherImpl).shellPath)
}

//go:build !windows

package infra

import (
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestProcessManager_FindByName verifies a spawned child is found by name and the caller is not.
func TestProcessManager_FindByName(t *testing.T) {
	cmd := exec.Command("sleep", "30")
	require.NoError(t, cmd.Start())
	t.Cleanup(func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	})

	pm := NewProcessManager()
	require.Eventually(t, func() bool {
		pids, err := pm.FindByName("SLEEP")
		if err != nil {
			return false
		}
		for _, pid := range pids {
			if pid == cmd.Process.Pid {
				return true
			}
		}
		return false
	}, 5*time.Second, 100*time.Millisecond)
}

func TestProcessManager_NoMatch(t *testing.T) {
	pids, err := NewProcessManager().FindByName("apprm-no-such-process-name")
	require.NoError(t, err)
	assert.Empty(t, pids)
}

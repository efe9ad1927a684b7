package infra

import (
	"errors"
	"os"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrivilegeDetector_QueryFailureIsNotElevated(t *testing.T) {
	d := &PrivilegeDetectorImpl{query: func() (bool, error) {
		return true, errors.New("token query failed")
	}}
	assert.False(t, d.IsElevated())
	assert.Equal(t, ExecModeUser, DetectExecMode(d))
}

func TestPrivilegeDetector_Elevated(t *testing.T) {
	d := &PrivilegeDetectorImpl{query: func() (bool, error) { return true, nil }}
	assert.True(t, d.IsElevated())
	assert.Equal(t, ExecModeElevated, DetectExecMode(d))
}

// TestPrivilegeDetector_MatchesEuid verifies the real detector agrees with the effective UID.
func TestPrivilegeDetector_MatchesEuid(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("euid is not meaningful on Windows")
	}
	assert.Equal(t, os.Geteuid() == 0, NewPrivilegeDetector().IsElevated())
}

func TestExecMode_String(t *testing.T) {
	assert.Contains(t, ExecModeElevated.String(), "elevated")
	assert.Contains(t, ExecModeUser.String(), "standard user")
	assert.Equal(t, "unknown", ExecMode("x").String())
}

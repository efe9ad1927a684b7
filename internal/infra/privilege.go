package infra

import "github.com/eliteGoblin/focusd/app_rm/internal/domain"

// ExecMode is the privilege level the process runs with.
type ExecMode string

const (
	// ExecModeElevated runs as administrator (Windows) or root.
	ExecModeElevated ExecMode = "elevated"
	// ExecModeUser runs without elevation; some uninstallers may fail.
	ExecModeUser ExecMode = "user"
)

// String returns a human-readable description of the mode.
func (m ExecMode) String() string {
	switch m {
	case ExecModeElevated:
		return "elevated (administrator)"
	case ExecModeUser:
		return "standard user (not elevated)"
	default:
		return "unknown"
	}
}

// DetectExecMode maps the detector's answer onto an ExecMode.
func DetectExecMode(d domain.PrivilegeDetector) ExecMode {
	if d.IsElevated() {
		return ExecModeElevated
	}
	return ExecModeUser
}

// PrivilegeDetectorImpl implements domain.PrivilegeDetector.
type PrivilegeDetectorImpl struct {
	query func() (bool, error)
}

// NewPrivilegeDetector creates a detector backed by the OS query.
func NewPrivilegeDetector() domain.PrivilegeDetector {
	return &PrivilegeDetectorImpl{query: queryElevation}
}

// IsElevated reports false when the OS query fails.
func (d *PrivilegeDetectorImpl) IsElevated() bool {
	elevated, err := d.query()
	if err != nil {
		return false
	}
	return elevated
}

// Ensure PrivilegeDetectorImpl implements domain.PrivilegeDetector.
var _ domain.PrivilegeDetector = (*PrivilegeDetectorImpl)(nil)

// Package domain contains core business entities and interfaces.
// This is the innermost layer in Clean Architecture - no external dependencies.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// RegistryRoot names a top-level registry hive.
type RegistryRoot string

const (
	RootLocalMachine RegistryRoot = "HKLM"
	RootCurrentUser  RegistryRoot = "HKCU"
	RootClassesRoot  RegistryRoot = "HKCR"
	RootUsers        RegistryRoot = "HKU"
)

// ParseRegistryRoot accepts short (HKLM) and long (HKEY_LOCAL_MACHINE) hive names.
func ParseRegistryRoot(s string) (RegistryRoot, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HKLM", "HKEY_LOCAL_MACHINE":
		return RootLocalMachine, nil
	case "HKCU", "HKEY_CURRENT_USER":
		return RootCurrentUser, nil
	case "HKCR", "HKEY_CLASSES_ROOT":
		return RootClassesRoot, nil
	case "HKU", "HKEY_USERS":
		return RootUsers, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRoot, s)
}

// RegistryLocation is one (root, path) pair the scanner enumerates.
type RegistryLocation struct {
	Root RegistryRoot
	Path string
}

func (l RegistryLocation) String() string {
	return string(l.Root) + `\` + l.Path
}

// ProgramRecord is one installed program discovered in the uninstall registry.
// Records are values; nothing downstream of the scanner mutates them.
type ProgramRecord struct {
	Name                  string `json:"name" yaml:"name"`
	UninstallCommand      string `json:"uninstall_command,omitempty" yaml:"uninstall_command,omitempty"`
	QuietUninstallCommand string `json:"quiet_uninstall_command,omitempty" yaml:"quiet_uninstall_command,omitempty"`
	Publisher             string `json:"publisher,omitempty" yaml:"publisher,omitempty"`
	Version               string `json:"version,omitempty" yaml:"version,omitempty"`
	InstallLocation       string `json:"install_location,omitempty" yaml:"install_location,omitempty"`
	SourceKey             string `json:"source_key,omitempty" yaml:"source_key,omitempty"`
}

// RecordKey identifies a program across registry locations.
type RecordKey struct {
	Name             string
	UninstallCommand string
}

// DedupKey is the uniqueness key across registry locations.
func (r ProgramRecord) DedupKey() RecordKey {
	return RecordKey{Name: r.Name, UninstallCommand: r.UninstallCommand}
}

// PreferredCommand returns the quiet uninstall command when present,
// otherwise the standard one. Empty means the record cannot be uninstalled.
func (r ProgramRecord) PreferredCommand() string {
	if strings.TrimSpace(r.QuietUninstallCommand) != "" {
		return r.QuietUninstallCommand
	}
	return r.UninstallCommand
}

// PlanEntry pairs a record with the command that will run for it.
type PlanEntry struct {
	Record  ProgramRecord
	Command string
}

// OutcomeKind enumerates the terminal states of one record in a batch.
type OutcomeKind string

const (
	OutcomePreview                OutcomeKind = "preview"
	OutcomeSkippedNoCommand       OutcomeKind = "skipped-no-command"
	OutcomeLaunchedElevated       OutcomeKind = "launched-elevated-unconfirmed"
	OutcomeCompleted              OutcomeKind = "completed"
	OutcomeShellFallbackCompleted OutcomeKind = "shell-fallback-completed"
	OutcomeFailed                 OutcomeKind = "failed"
)

// AllOutcomeKinds lists every kind in a stable order.
var AllOutcomeKinds = []OutcomeKind{
	OutcomePreview,
	OutcomeSkippedNoCommand,
	OutcomeLaunchedElevated,
	OutcomeCompleted,
	OutcomeShellFallbackCompleted,
	OutcomeFailed,
}

// Outcome is the result for a single record. Only the fields relevant to
// Kind are set: ExitCode for completed and shell-fallback-completed,
// Stdout/Stderr for completed, Err for failed.
type Outcome struct {
	Kind     OutcomeKind
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeCompleted, OutcomeShellFallbackCompleted:
		return fmt.Sprintf("%s (exit code %d)", o.Kind, o.ExitCode)
	case OutcomeFailed:
		return fmt.Sprintf("%s: %v", o.Kind, o.Err)
	case OutcomePreview:
		return fmt.Sprintf("%s: %s", o.Kind, o.Command)
	default:
		return string(o.Kind)
	}
}

// OutcomeEvent is one entry of a batch's ordered outcome stream.
type OutcomeEvent struct {
	Seq     int
	Record  ProgramRecord
	Outcome Outcome
	At      time.Time
}

// BatchSummary is available once a batch has signalled completion.
type BatchSummary struct {
	Total      int
	Counts     map[OutcomeKind]int
	StartedAt  time.Time
	FinishedAt time.Time
}

// ProcessResult is what a direct, output-capturing launch returns.
type ProcessResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

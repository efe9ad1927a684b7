package domain

// RegistryReader opens uninstall registry locations.
// Implementation: golang.org/x/sys/windows/registry on Windows, in-memory fixture in tests.
type RegistryReader interface {
	// Open returns the key at loc. A missing location yields ErrLocationNotFound;
	// any other error means the root itself is unreachable.
	Open(loc RegistryLocation) (RegistryKey, error)
}

// RegistryKey is an open registry key handle. Callers must Close it.
type RegistryKey interface {
	// SubKeyNames lists the immediate child key names.
	SubKeyNames() ([]string, error)

	// OpenSubKey opens an immediate child key.
	OpenSubKey(name string) (RegistryKey, error)

	// StringValue reads a REG_SZ / REG_EXPAND_SZ value.
	StringValue(name string) (string, error)

	// IntegerValue reads a REG_DWORD / REG_QWORD value.
	IntegerValue(name string) (uint64, error)

	Close() error
}

// Scanner builds the installed-program inventory.
type Scanner interface {
	// Scan returns deduplicated records sorted by name (case-insensitive).
	// Fails only with ErrNoRegistryRoot when no location is reachable.
	Scan() ([]ProgramRecord, error)
}

// ProcessLauncher is the platform process-launch facility.
type ProcessLauncher interface {
	// Run starts executable with the verbatim argument string, waits for it
	// and captures its output. A non-zero exit is not an error; an error means
	// the process could not be started (ErrExecutableNotFound when missing).
	Run(executable, args string) (ProcessResult, error)

	// RunShell runs the whole command string through the platform shell and
	// returns its exit code. Output is not captured.
	RunShell(command string) (int, error)

	// LaunchElevated requests a privileged launch and returns once the request
	// has been accepted. nil is the success indicator; the child is not awaited.
	LaunchElevated(executable, args string) error
}

// PrivilegeDetector reports whether the current process is elevated.
type PrivilegeDetector interface {
	// IsElevated returns false when the query fails.
	IsElevated() bool
}

// ProcessManager handles OS process lookups.
// Implementation: uses gopsutil for cross-platform support.
type ProcessManager interface {
	// FindByName returns PIDs of processes matching the pattern.
	FindByName(pattern string) ([]int, error)
}

// MetricsRecorder receives scan and batch measurements.
type MetricsRecorder interface {
	ObserveScan(records int)
	ObserveOutcome(kind OutcomeKind)
	ObserveBatch(summary BatchSummary)
}

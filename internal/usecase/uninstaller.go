package usecase

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/app_rm/internal/command"
	"github.com/eliteGoblin/focusd/app_rm/internal/domain"
	"github.com/eliteGoblin/focusd/app_rm/internal/metrics"
	"github.com/eliteGoblin/focusd/app_rm/internal/normalize"
)

// DefaultOutputLimit bounds each captured stream, in characters.
const DefaultOutputLimit = 1000

// installerEngine is the process name checked before MSI removals.
const installerEngine = "msiexec"

// CommandNormalizer rewrites commands and names the rule that claimed them.
type CommandNormalizer interface {
	Normalize(command string) string
	Match(command string) string
}

// ExecuteOptions controls one batch.
type ExecuteOptions struct {
	// TryElevate requests an elevated launch when the process is not elevated.
	TryElevate bool
	// DryRun reports a preview per record and launches nothing.
	DryRun bool
}

// Batch is the handle for a running Execute call. Events are delivered in
// record order; Events is closed before Done.
type Batch struct {
	events chan domain.OutcomeEvent
	done   chan struct{}

	mu      sync.Mutex
	summary domain.BatchSummary
}

func newBatch(n int) *Batch {
	return &Batch{
		// Sized so the worker never blocks on a consumer that reads late.
		events: make(chan domain.OutcomeEvent, n),
		done:   make(chan struct{}),
	}
}

// Events streams one event per record.
func (b *Batch) Events() <-chan domain.OutcomeEvent {
	return b.events
}

// Done is closed once every record has an outcome.
func (b *Batch) Done() <-chan struct{} {
	return b.done
}

// Summary returns per-kind totals. It is complete only after Done is closed.
func (b *Batch) Summary() domain.BatchSummary {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.summary
	s.Counts = make(map[domain.OutcomeKind]int, len(b.summary.Counts))
	for k, v := range b.summary.Counts {
		s.Counts[k] = v
	}
	return s
}

// Wait blocks until the batch completes and returns its summary.
func (b *Batch) Wait() domain.BatchSummary {
	<-b.done
	return b.Summary()
}

func (b *Batch) setSummary(s domain.BatchSummary) {
	b.mu.Lock()
	b.summary = s
	b.mu.Unlock()
}

// UninstallerOption configures an UninstallerImpl.
type UninstallerOption func(*UninstallerImpl)

// WithNormalizer replaces the default installer-family rules.
func WithNormalizer(n CommandNormalizer) UninstallerOption {
	return func(u *UninstallerImpl) { u.normalizer = n }
}

// WithProcessManager enables the installer-engine busy check.
func WithProcessManager(pm domain.ProcessManager) UninstallerOption {
	return func(u *UninstallerImpl) { u.processes = pm }
}

// WithMetrics records outcomes and batch timings.
func WithMetrics(m domain.MetricsRecorder) UninstallerOption {
	return func(u *UninstallerImpl) { u.metrics = metricsOrNop(m) }
}

// WithOutputLimit bounds captured stdout/stderr. Non-positive values keep the default.
func WithOutputLimit(n int) UninstallerOption {
	return func(u *UninstallerImpl) {
		if n > 0 {
			u.outputLimit = n
		}
	}
}

// UninstallerImpl runs vendor uninstall commands for selected records.
type UninstallerImpl struct {
	launcher    domain.ProcessLauncher
	privileges  domain.PrivilegeDetector
	normalizer  CommandNormalizer
	processes   domain.ProcessManager
	metrics     domain.MetricsRecorder
	outputLimit int
	logger      *zap.Logger
}

// NewUninstaller creates an uninstall executor.
func NewUninstaller(
	launcher domain.ProcessLauncher,
	privileges domain.PrivilegeDetector,
	logger *zap.Logger,
	opts ...UninstallerOption,
) *UninstallerImpl {
	u := &UninstallerImpl{
		launcher:    launcher,
		privileges:  privileges,
		normalizer:  normalize.NewRegistry(),
		metrics:     metrics.Nop{},
		outputLimit: DefaultOutputLimit,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Plan resolves the command each record will run: the quiet command when
// present, otherwise the standard one, normalized. Command is empty for
// records that cannot be uninstalled.
func (u *UninstallerImpl) Plan(records []domain.ProgramRecord) []domain.PlanEntry {
	plan := make([]domain.PlanEntry, 0, len(records))
	for _, rec := range records {
		entry := domain.PlanEntry{Record: rec}
		if raw := strings.TrimSpace(rec.PreferredCommand()); raw != "" {
			entry.Command = u.normalizer.Normalize(raw)
		}
		plan = append(plan, entry)
	}
	return plan
}

// Execute starts a batch and returns immediately. Records are processed one
// at a time, in order, on a single worker goroutine. A failing record never
// stops the batch.
func (u *UninstallerImpl) Execute(records []domain.ProgramRecord, opts ExecuteOptions) (*Batch, error) {
	if len(records) == 0 {
		return nil, domain.ErrEmptySelection
	}

	plan := u.Plan(records)
	b := newBatch(len(plan))
	go u.run(b, plan, opts)
	return b, nil
}

func (u *UninstallerImpl) run(b *Batch, plan []domain.PlanEntry, opts ExecuteOptions) {
	summary := domain.BatchSummary{
		Total:     len(plan),
		Counts:    make(map[domain.OutcomeKind]int),
		StartedAt: time.Now(),
	}
	elevation := &elevationCheck{detector: u.privileges}

	u.logger.Info("uninstall batch started",
		zap.Int("records", len(plan)),
		zap.Bool("dry_run", opts.DryRun),
		zap.Bool("try_elevate", opts.TryElevate))

	for i, entry := range plan {
		out := u.processEntry(entry, opts, elevation)

		summary.Counts[out.Kind]++
		u.metrics.ObserveOutcome(out.Kind)
		u.logOutcome(entry.Record, out)

		b.events <- domain.OutcomeEvent{
			Seq:     i,
			Record:  entry.Record,
			Outcome: out,
			At:      time.Now(),
		}
	}
	close(b.events)

	summary.FinishedAt = time.Now()
	b.setSummary(summary)
	u.metrics.ObserveBatch(summary)
	u.logger.Info("uninstall batch finished",
		zap.Int("records", summary.Total),
		zap.Duration("duration", summary.FinishedAt.Sub(summary.StartedAt)))
	close(b.done)
}

// processEntry converts a launcher panic into a failed outcome so the rest of
// the batch still runs.
func (u *UninstallerImpl) processEntry(entry domain.PlanEntry, opts ExecuteOptions, elevation *elevationCheck) (out domain.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = domain.Outcome{
				Kind:    domain.OutcomeFailed,
				Command: entry.Command,
				Err:     fmt.Errorf("uninstall panicked: %v", r),
			}
		}
	}()
	return u.process(entry, opts, elevation)
}

func (u *UninstallerImpl) process(entry domain.PlanEntry, opts ExecuteOptions, elevation *elevationCheck) domain.Outcome {
	cmdline := entry.Command
	if cmdline == "" {
		return domain.Outcome{Kind: domain.OutcomeSkippedNoCommand}
	}

	if opts.DryRun {
		return domain.Outcome{Kind: domain.OutcomePreview, Command: cmdline}
	}

	exe, ok, args := command.ParseExec(cmdline)
	if !ok {
		return u.shellFallback(cmdline, nil)
	}

	if !elevation.elevated() {
		u.logger.Warn("not running elevated; uninstaller may fail",
			zap.String("record", entry.Record.Name))
		if opts.TryElevate {
			err := u.launcher.LaunchElevated(exe, args)
			if err == nil {
				return domain.Outcome{Kind: domain.OutcomeLaunchedElevated, Command: cmdline}
			}
			u.logger.Warn("elevated launch failed; running unelevated",
				zap.String("record", entry.Record.Name),
				zap.Error(err))
		}
	}

	u.checkInstallerEngine(cmdline)

	res, err := u.launcher.Run(exe, args)
	if err != nil {
		u.logger.Debug("direct launch failed; trying shell",
			zap.String("executable", exe),
			zap.Error(err))
		return u.shellFallback(cmdline, err)
	}

	return domain.Outcome{
		Kind:     domain.OutcomeCompleted,
		Command:  cmdline,
		ExitCode: res.ExitCode,
		Stdout:   truncate(strings.TrimSpace(res.Stdout), u.outputLimit),
		Stderr:   truncate(strings.TrimSpace(res.Stderr), u.outputLimit),
	}
}

// shellFallback runs cmdline through the shell. directErr is the error from
// the direct launch, if there was one; it is kept alongside any shell error.
// A missing executable that the shell cannot run either is a failure, not a
// completed fallback.
func (u *UninstallerImpl) shellFallback(cmdline string, directErr error) domain.Outcome {
	code, err := u.launcher.RunShell(cmdline)
	if err != nil {
		return domain.Outcome{
			Kind:    domain.OutcomeFailed,
			Command: cmdline,
			Err:     errors.Join(directErr, err),
		}
	}

	if errors.Is(directErr, domain.ErrExecutableNotFound) && code != 0 {
		return domain.Outcome{
			Kind:     domain.OutcomeFailed,
			Command:  cmdline,
			ExitCode: code,
			Err:      fmt.Errorf("%w (shell exit code %d)", directErr, code),
		}
	}

	return domain.Outcome{
		Kind:     domain.OutcomeShellFallbackCompleted,
		Command:  cmdline,
		ExitCode: code,
	}
}

// checkInstallerEngine logs running Windows Installer processes before an
// MSI removal; msiexec queues behind an in-progress install.
func (u *UninstallerImpl) checkInstallerEngine(cmdline string) {
	if u.processes == nil || u.normalizer.Match(cmdline) != "msi" {
		return
	}
	pids, err := u.processes.FindByName(installerEngine)
	if err != nil {
		u.logger.Debug("installer engine check failed", zap.Error(err))
		return
	}
	if len(pids) > 0 {
		u.logger.Info("windows installer already running; removal may wait for it",
			zap.Ints("pids", pids))
	}
}

func (u *UninstallerImpl) logOutcome(rec domain.ProgramRecord, out domain.Outcome) {
	fields := []zap.Field{
		zap.String("record", rec.Name),
		zap.String("kind", string(out.Kind)),
		zap.String("command", out.Command),
	}
	switch out.Kind {
	case domain.OutcomeCompleted:
		fields = append(fields, zap.Int("exit_code", out.ExitCode))
		if out.Stdout != "" {
			fields = append(fields, zap.String("stdout", out.Stdout))
		}
		if out.Stderr != "" {
			fields = append(fields, zap.String("stderr", out.Stderr))
		}
	case domain.OutcomeShellFallbackCompleted:
		fields = append(fields, zap.Int("exit_code", out.ExitCode))
	case domain.OutcomeFailed:
		u.logger.Warn("uninstall failed", append(fields, zap.Error(out.Err))...)
		return
	}
	u.logger.Info("uninstall outcome", fields...)
}

// elevationCheck queries the detector at most once per batch, and only when
// a record actually needs a launch.
type elevationCheck struct {
	detector domain.PrivilegeDetector
	checked  bool
	value    bool
}

func (e *elevationCheck) elevated() bool {
	if !e.checked {
		e.value = e.detector.IsElevated()
		e.checked = true
	}
	return e.value
}

// truncate keeps at most n characters.
func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func metricsOrNop(m domain.MetricsRecorder) domain.MetricsRecorder {
	if m == nil {
		return metrics.Nop{}
	}
	return m
}

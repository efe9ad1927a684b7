// Package main is the CLI entry point for apprm.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/app_rm/internal/config"
	"github.com/eliteGoblin/focusd/app_rm/internal/domain"
	"github.com/eliteGoblin/focusd/app_rm/internal/infra"
	"github.com/eliteGoblin/focusd/app_rm/internal/metrics"
	"github.com/eliteGoblin/focusd/app_rm/internal/normalize"
	"github.com/eliteGoblin/focusd/app_rm/internal/usecase"
)

var (
	// Version info (set via ldflags)
	Version   = "0.1.0"
	Commit    = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "apprm",
	Short: "Installed program inventory and uninstaller",
	Long: `apprm lists programs registered in the Windows uninstall registry
and removes selected ones by running their vendor uninstall command.

When the current process is not elevated, "apprm uninstall --elevate" requests
an elevated launch for each uninstaller (UAC prompt). Elevated launches run
detached, so their output is not captured.`,
	Version:      Version,
	SilenceUsage: true,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed programs",
	Long:  `Scans the configured uninstall registry locations and lists installed programs sorted by name.`,
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var showCmd = &cobra.Command{
	Use:   "show <name>...",
	Short: "Show details of installed programs",
	Long:  `Prints publisher, version, install location, registry key and uninstall commands for each named program.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runShow,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show privilege level and scanned locations",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <name>...",
	Short: "Uninstall programs",
	Long: `Runs the uninstall command of each named program, one at a time, in order.
The quiet uninstall command is used when the program registers one.

Use --dry-run to see which commands would run without launching anything.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUninstall,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Prints version, commit, and build time. Use --json for machine-readable output.`,
	Run:   runVersion,
}

var (
	cfgFile    string
	verbose    bool
	jsonOutput bool

	listSearch string
	listOutput string

	dryRun     bool
	tryElevate bool
	assumeYes  bool
	rescan     bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: apprm.yaml in the user config dir or working directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Filter by name, publisher or version")
	listCmd.Flags().StringVarP(&listOutput, "output", "o", "table", "Output format: table, json or yaml")

	uninstallCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would run without launching anything")
	uninstallCmd.Flags().BoolVar(&tryElevate, "elevate", false, "Request an elevated launch (UAC prompt) when not running as administrator")
	uninstallCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
	uninstallCmd.Flags().BoolVar(&rescan, "rescan", false, "Re-scan the registry after the batch completes")

	versionCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(uninstallCmd)
	rootCmd.AddCommand(versionCmd)
}

// app holds the wired components for one command invocation.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	closeLog   func() error
	metrics    *metrics.Recorder
	scanner    domain.Scanner
	privileges domain.PrivilegeDetector
	rules      *normalize.Registry
}

func newApp(stderr io.Writer) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	logger, closeLog, err := infra.NewLogger(cfg.Log, stderr)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	rec := metrics.New()
	scanner := usecase.NewScanner(
		infra.NewRegistryReader(),
		cfg.Locations(),
		usecase.ScanOptions{HideSystemComponents: cfg.HideSystemComponents, Metrics: rec},
		logger,
	)

	return &app{
		cfg:        cfg,
		logger:     logger,
		closeLog:   closeLog,
		metrics:    rec,
		scanner:    scanner,
		privileges: infra.NewPrivilegeDetector(),
		rules:      normalize.NewRegistry(),
	}, nil
}

func (a *app) close() {
	if a.cfg.MetricsFile != "" {
		if err := a.metrics.WriteTextfile(a.cfg.MetricsFile); err != nil {
			a.logger.Warn("failed to write metrics file",
				zap.String("path", a.cfg.MetricsFile),
				zap.Error(err))
		}
	}
	_ = a.closeLog()
}

func (a *app) uninstaller() *usecase.UninstallerImpl {
	return usecase.NewUninstaller(
		infra.NewProcessLauncher(),
		a.privileges,
		a.logger,
		usecase.WithNormalizer(a.rules),
		usecase.WithProcessManager(infra.NewProcessManager()),
		usecase.WithMetrics(a.metrics),
		usecase.WithOutputLimit(a.cfg.OutputLimit),
	)
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.close()

	records, err := a.scanner.Scan()
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	return renderRecords(cmd.OutOrStdout(), usecase.Filter(records, listSearch), listOutput)
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.close()

	records, err := a.scanner.Scan()
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	selected, err := usecase.Select(records, args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, r := range selected {
		if i > 0 {
			fmt.Fprintln(out)
		}
		renderDetails(out, r)
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.close()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "\n=== apprm Status ===")
	fmt.Fprintf(out, "Privileges: %s\n", infra.DetectExecMode(a.privileges))
	fmt.Fprintln(out, "\nRegistry locations:")
	for _, loc := range a.cfg.Locations() {
		fmt.Fprintf(out, "  - %s\n", loc)
	}
	fmt.Fprintf(out, "Command rules: %s\n", strings.Join(a.rules.List(), ", "))

	records, err := a.scanner.Scan()
	if err != nil {
		fmt.Fprintf(out, "\nInventory: unavailable (%v)\n", err)
	} else {
		fmt.Fprintf(out, "\nInstalled programs: %d\n", len(records))
	}
	fmt.Fprintln(out, "====================")
	return nil
}

func runUninstall(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.close()

	records, err := a.scanner.Scan()
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	selected, err := usecase.Select(records, args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	u := a.uninstaller()
	renderPlan(out, u.Plan(selected))

	if !dryRun && !assumeYes {
		ok, err := confirm(cmd.InOrStdin(), out, fmt.Sprintf("Uninstall %d program(s)?", len(selected)))
		if err != nil {
			return err
		}
		if !ok {
			a.logger.Info("uninstall cancelled by user")
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	batch, err := u.Execute(selected, usecase.ExecuteOptions{TryElevate: tryElevate, DryRun: dryRun})
	if err != nil {
		return err
	}
	for ev := range batch.Events() {
		renderEvent(out, ev, len(selected))
	}
	summary := batch.Wait()
	renderSummary(out, summary)

	if rescan && !dryRun {
		time.Sleep(a.cfg.SettleDelay)
		refreshed, err := a.scanner.Scan()
		if err != nil {
			return fmt.Errorf("rescan failed: %w", err)
		}
		fmt.Fprintf(out, "Inventory refreshed: %d programs installed\n", len(refreshed))
	}

	if summary.Counts[domain.OutcomeFailed] > 0 {
		return errors.New("one or more uninstalls failed")
	}
	return nil
}

// confirm reads one line; only "y" or "yes" accept.
func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func runVersion(cmd *cobra.Command, args []string) {
	out := cmd.OutOrStdout()
	if jsonOutput {
		fmt.Fprintf(out, `{"version":"%s","commit":"%s","build_time":"%s"}`+"\n",
			Version, Commit, BuildTime)
	} else {
		fmt.Fprintf(out, "apprm %s (commit: %s, built: %s)\n",
			Version, Commit, BuildTime)
	}
}

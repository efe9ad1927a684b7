//go:build integration && !windows

package integration

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/app_rm/internal/config"
	"github.com/eliteGoblin/focusd/app_rm/internal/domain"
	"github.com/eliteGoblin/focusd/app_rm/internal/infra"
	"github.com/eliteGoblin/focusd/app_rm/internal/metrics"
	"github.com/eliteGoblin/focusd/app_rm/internal/usecase"
	"github.com/eliteGoblin/focusd/app_rm/test/fixtures"
)

// stubPrivileges reports a fixed elevation state.
type stubPrivileges struct{ elevated bool }

func (s stubPrivileges) IsElevated() bool { return s.elevated }

func drain(b *usecase.Batch) []domain.OutcomeEvent {
	var events []domain.OutcomeEvent
	Eventually(b.Done(), 10*time.Second).Should(BeClosed())
	for ev := range b.Events() {
		events = append(events, ev)
	}
	return events
}

var _ = Describe("Uninstall pipeline", func() {
	var (
		tmpDir    string
		reg       *fixtures.FakeRegistry
		locations []domain.RegistryLocation
		rec       *metrics.Recorder
		logger    *zap.Logger
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "apprm-integration-*")
		Expect(err).NotTo(HaveOccurred())

		locations = config.Default().Locations()
		reg = fixtures.NewFakeRegistry()
		rec = metrics.New()
		logger = zap.NewNop()

		hklm := reg.AddLocation(locations[0])
		hklm.AddEntry("{echo}", map[string]string{
			"DisplayName":     "Echo App",
			"UninstallString": "sh -c 'echo removed; echo warn 1>&2'",
			"Publisher":       "Acme",
		})
		hklm.AddEntry("{missing}", map[string]string{
			"DisplayName":     "Missing App",
			"UninstallString": "/nonexistent/dir/uninstall.exe /S",
		})
		hklm.AddEntry("{nocmd}", map[string]string{
			"DisplayName": "Orphan Entry",
		})
		reg.AddLocation(locations[2]).AddEntry("quiet", map[string]string{
			"DisplayName":          "Quiet App",
			"UninstallString":      "false",
			"QuietUninstallString": "sh -c 'exit 3'",
		})
		reg.AddLocation(locations[2]).AddEntry("broken", map[string]string{
			"DisplayName":     "Broken Quote",
			"UninstallString": `""`,
		})
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	scan := func() []domain.ProgramRecord {
		records, err := usecase.NewScanner(reg, locations, usecase.ScanOptions{Metrics: rec}, logger).Scan()
		Expect(err).NotTo(HaveOccurred())
		return records
	}

	Describe("Scanning", func() {
		It("should return every named entry sorted by name", func() {
			records := scan()
			names := make([]string, 0, len(records))
			for _, r := range records {
				names = append(names, r.Name)
			}
			Expect(names).To(Equal([]string{"Broken Quote", "Echo App", "Missing App", "Orphan Entry", "Quiet App"}))
			Expect(reg.OpenHandles()).To(BeZero())
		})

		It("should fail when no registry root is reachable", func() {
			broken := fixtures.NewFakeRegistry()
			broken.FailRoot(domain.RootLocalMachine, errors.New("access denied"))
			broken.FailRoot(domain.RootCurrentUser, errors.New("access denied"))

			_, err := usecase.NewScanner(broken, locations, usecase.ScanOptions{}, logger).Scan()
			Expect(err).To(MatchError(domain.ErrNoRegistryRoot))
		})
	})

	Describe("Executing", func() {
		var uninstaller *usecase.UninstallerImpl

		BeforeEach(func() {
			uninstaller = usecase.NewUninstaller(
				infra.NewProcessLauncher(),
				stubPrivileges{elevated: false},
				logger,
				usecase.WithProcessManager(infra.NewProcessManager()),
				usecase.WithMetrics(rec),
			)
		})

		Context("when running for real without elevation", func() {
			It("should report one ordered outcome per record", func() {
				records := scan()
				batch, err := uninstaller.Execute(records, usecase.ExecuteOptions{TryElevate: true})
				Expect(err).NotTo(HaveOccurred())

				events := drain(batch)
				Expect(events).To(HaveLen(len(records)))

				byName := map[string]domain.Outcome{}
				for i, ev := range events {
					Expect(ev.Seq).To(Equal(i))
					Expect(ev.Record.Name).To(Equal(records[i].Name))
					byName[ev.Record.Name] = ev.Outcome
				}

				By("capturing output of a direct launch")
				Expect(byName["Echo App"].Kind).To(Equal(domain.OutcomeCompleted))
				Expect(byName["Echo App"].ExitCode).To(Equal(0))
				Expect(byName["Echo App"].Stdout).To(Equal("removed"))
				Expect(byName["Echo App"].Stderr).To(Equal("warn"))

				By("preferring the quiet command")
				Expect(byName["Quiet App"].Kind).To(Equal(domain.OutcomeCompleted))
				Expect(byName["Quiet App"].ExitCode).To(Equal(3))

				By("failing a missing executable without stopping the batch")
				Expect(byName["Missing App"].Kind).To(Equal(domain.OutcomeFailed))
				Expect(byName["Missing App"].Err).To(MatchError(domain.ErrExecutableNotFound))

				By("handing unparseable commands to the shell")
				Expect(byName["Broken Quote"].Kind).To(Equal(domain.OutcomeShellFallbackCompleted))
				Expect(byName["Broken Quote"].ExitCode).NotTo(BeZero())

				By("skipping entries without a command")
				Expect(byName["Orphan Entry"].Kind).To(Equal(domain.OutcomeSkippedNoCommand))

				summary := batch.Summary()
				Expect(summary.Total).To(Equal(5))
				Expect(summary.Counts[domain.OutcomeCompleted]).To(Equal(2))
			})
		})

		Context("when dry running", func() {
			It("should launch nothing", func() {
				marker := filepath.Join(tmpDir, "ran")
				records := []domain.ProgramRecord{
					{Name: "Marker", UninstallCommand: "touch " + marker},
				}

				batch, err := uninstaller.Execute(records, usecase.ExecuteOptions{DryRun: true, TryElevate: true})
				Expect(err).NotTo(HaveOccurred())
				events := drain(batch)

				Expect(events).To(HaveLen(1))
				Expect(events[0].Outcome.Kind).To(Equal(domain.OutcomePreview))
				Expect(events[0].Outcome.Command).To(Equal("touch " + marker))
				_, statErr := os.Stat(marker)
				Expect(os.IsNotExist(statErr)).To(BeTrue())
			})
		})

		Context("when metrics are written", func() {
			It("should produce a textfile with outcome counters", func() {
				batch, err := uninstaller.Execute(scan(), usecase.ExecuteOptions{})
				Expect(err).NotTo(HaveOccurred())
				drain(batch)

				path := filepath.Join(tmpDir, "apprm.prom")
				Expect(rec.WriteTextfile(path)).To(Succeed())
				data, err := os.ReadFile(path)
				Expect(err).NotTo(HaveOccurred())
				Expect(string(data)).To(ContainSubstring(`apprm_uninstall_outcomes_total{kind="completed"} 2`))
				Expect(string(data)).To(ContainSubstring("apprm_inventory_programs 5"))
			})
		})
	})
})

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eliteGoblin/focusd/app_rm/internal/domain"
)

func renderRecords(w io.Writer, records []domain.ProgramRecord, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tPUBLISHER\tVERSION")
		for _, r := range records {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Name, orDash(r.Publisher), orDash(r.Version))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(w, "\n%d programs\n", len(records))
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
	}
}

func renderDetails(w io.Writer, r domain.ProgramRecord) {
	fmt.Fprintf(w, "Name:              %s\n", r.Name)
	fmt.Fprintf(w, "Publisher:         %s\n", orNone(r.Publisher))
	fmt.Fprintf(w, "Version:           %s\n", orNone(r.Version))
	fmt.Fprintf(w, "Install location:  %s\n", orNone(r.InstallLocation))
	fmt.Fprintf(w, "Registry key:      %s\n", orNone(r.SourceKey))
	fmt.Fprintf(w, "Uninstall:         %s\n", orNone(r.UninstallCommand))
	fmt.Fprintf(w, "Quiet uninstall:   %s\n", orNone(r.QuietUninstallCommand))
}

func renderPlan(w io.Writer, plan []domain.PlanEntry) {
	fmt.Fprintln(w, "Selected programs:")
	for _, e := range plan {
		fmt.Fprintf(w, "  - %s\n      %s\n", e.Record.Name, orNone(e.Command))
	}
}

func renderEvent(w io.Writer, ev domain.OutcomeEvent, total int) {
	fmt.Fprintf(w, "[%d/%d] %s: %s\n", ev.Seq+1, total, ev.Record.Name, ev.Outcome)
	if ev.Outcome.Stdout != "" {
		fmt.Fprintf(w, "      stdout: %s\n", ev.Outcome.Stdout)
	}
	if ev.Outcome.Stderr != "" {
		fmt.Fprintf(w, "      stderr: %s\n", ev.Outcome.Stderr)
	}
}

func renderSummary(w io.Writer, s domain.BatchSummary) {
	fmt.Fprintf(w, "\nDone: %d record(s) in %s\n", s.Total, s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond))
	for _, kind := range domain.AllOutcomeKinds {
		if n := s.Counts[kind]; n > 0 {
			fmt.Fprintf(w, "  %-30s %d\n", kind, n)
		}
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

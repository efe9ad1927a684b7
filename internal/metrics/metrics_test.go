package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliteGoblin/focusd/app_rm/internal/domain"
)

func TestRecorder_ObserveScan(t *testing.T) {
	r := New()
	r.ObserveScan(42)
	r.ObserveScan(40)

	assert.Equal(t, float64(40), testutil.ToFloat64(r.inventoryPrograms))
	assert.Equal(t, float64(2), testutil.ToFloat64(r.scansTotal))
}

func TestRecorder_ObserveOutcome(t *testing.T) {
	r := New()
	r.ObserveOutcome(domain.OutcomeCompleted)
	r.ObserveOutcome(domain.OutcomeCompleted)
	r.ObserveOutcome(domain.OutcomeFailed)

	assert.Equal(t, float64(2), testutil.ToFloat64(r.outcomes.WithLabelValues(string(domain.OutcomeCompleted))))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.outcomes.WithLabelValues(string(domain.OutcomeFailed))))
}

func TestRecorder_ObserveBatch(t *testing.T) {
	r := New()
	start := time.Now()
	r.ObserveBatch(domain.BatchSummary{Total: 3, StartedAt: start, FinishedAt: start.Add(2 * time.Second)})

	assert.Equal(t, float64(3), testutil.ToFloat64(r.batchRecords))
	assert.Equal(t, 1, testutil.CollectAndCount(r.batchDuration))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := New()
	r.ObserveScan(7)
	r.ObserveOutcome(domain.OutcomePreview)

	path := filepath.Join(t.TempDir(), "apprm.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "apprm_inventory_programs 7")
	assert.True(t, strings.Contains(text, `apprm_uninstall_outcomes_total{kind="preview"} 1`))
}

// TestRecorder_RegisterTwice verifies re-registration on the same registerer is tolerated.
func TestRecorder_RegisterTwice(t *testing.T) {
	r := New()
	reg := prometheus.NewRegistry()
	require.NoError(t, r.Register(reg))
	require.NoError(t, r.Register(reg))
}

func TestNop(t *testing.T) {
	var rec domain.MetricsRecorder = Nop{}
	rec.ObserveScan(1)
	rec.ObserveOutcome(domain.OutcomeFailed)
	rec.ObserveBatch(domain.BatchSummary{})
}

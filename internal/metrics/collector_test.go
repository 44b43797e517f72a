package metrics

import (
	"os"
	"path/filepath"
	"testing"

	dto "github.com/prometheus/client_model/go"
)

func gaugeValue(t *testing.T, g interface{ Write(*dto.Metric) error }) float64 {
	t.Helper()
	var metric dto.Metric
	if err := g.Write(&metric); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return metric.GetGauge().GetValue()
}

func TestCollectSystemMetrics(t *testing.T) {
	m := New()

	journal := filepath.Join(t.TempDir(), "jobs.db")
	if err := os.WriteFile(journal, make([]byte, 4096), 0o600); err != nil {
		t.Fatalf("write journal: %v", err)
	}

	c := NewCollector(m, journal)
	c.collectSystemMetrics()

	if got := gaugeValue(t, m.Goroutines); got < 1 {
		t.Errorf("Goroutines = %v, want >= 1", got)
	}
	if got := gaugeValue(t, m.UptimeSeconds); got < 0 {
		t.Errorf("UptimeSeconds = %v, want >= 0", got)
	}
	if got := gaugeValue(t, m.JournalUsedBytes); got != 4096 {
		t.Errorf("JournalUsedBytes = %v, want 4096", got)
	}
}

func TestCollectSystemMetricsMissingJournal(t *testing.T) {
	m := New()
	c := NewCollector(m, filepath.Join(t.TempDir(), "nope.db"))

	// A missing journal file must not panic or set the gauge.
	c.collectSystemMetrics()
	if got := gaugeValue(t, m.JournalUsedBytes); got != 0 {
		t.Errorf("JournalUsedBytes = %v, want 0", got)
	}
}

func TestCollectorStopIsIdempotent(t *testing.T) {
	c := NewCollector(New(), "")

	c.Stop()
	c.Stop()
}

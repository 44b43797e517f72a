package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNew(t *testing.T) {
	m := New()
	if m == nil {
		t.Fatal("New() returned nil")
	}

	if m.Registry() == nil {
		t.Error("Registry() returned nil")
	}

	// Check that all metrics are registered
	if m.ProviderRequestsTotal == nil {
		t.Error("ProviderRequestsTotal is nil")
	}
	if m.JobPolls == nil {
		t.Error("JobPolls is nil")
	}
	if m.JobsFinished == nil {
		t.Error("JobsFinished is nil")
	}
	if m.JobsTracked == nil {
		t.Error("JobsTracked is nil")
	}
	if m.APIRequestsTotal == nil {
		t.Error("APIRequestsTotal is nil")
	}
	if m.APIRequestDurationSeconds == nil {
		t.Error("APIRequestDurationSeconds is nil")
	}
	if m.APIErrorsTotal == nil {
		t.Error("APIErrorsTotal is nil")
	}
	if m.UptimeSeconds == nil {
		t.Error("UptimeSeconds is nil")
	}
	if m.JournalUsedBytes == nil {
		t.Error("JournalUsedBytes is nil")
	}
}

func TestGlobalMetrics(t *testing.T) {
	// Initially global should be nil
	if Global() != nil {
		t.Error("Global() should be nil before SetGlobal")
	}

	m := New()
	SetGlobal(m)

	if Global() != m {
		t.Error("Global() did not return the set metrics")
	}

	// Cleanup
	SetGlobal(nil)
}

func TestIncProviderRequest(t *testing.T) {
	m := New()
	SetGlobal(m)
	defer SetGlobal(nil)

	IncProviderRequest("figma", "list_slots", "ok")
	IncProviderRequest("figma", "list_slots", "ok")
	IncProviderRequest("canva", "list_targets", "error")

	counter, err := m.ProviderRequestsTotal.GetMetricWithLabelValues("figma", "list_slots", "ok")
	if err != nil {
		t.Fatalf("Failed to get counter: %v", err)
	}
	if got := counterValue(t, counter); got != 2 {
		t.Errorf("figma list_slots ok = %v, want 2", got)
	}

	counter, err = m.ProviderRequestsTotal.GetMetricWithLabelValues("canva", "list_targets", "error")
	if err != nil {
		t.Fatalf("Failed to get counter: %v", err)
	}
	if got := counterValue(t, counter); got != 1 {
		t.Errorf("canva list_targets error = %v, want 1", got)
	}
}

func TestIncProviderRequestWithoutGlobal(t *testing.T) {
	SetGlobal(nil)

	// Must not panic when no global metrics is set
	IncProviderRequest("figma", "list_slots", "ok")
	IncAPIErrors("upstream_error")
}

func TestIncAPIErrors(t *testing.T) {
	m := New()
	SetGlobal(m)
	defer SetGlobal(nil)

	IncAPIErrors("validation_error")
	IncAPIErrors("validation_error")

	counter, err := m.APIErrorsTotal.GetMetricWithLabelValues("validation_error")
	if err != nil {
		t.Fatalf("Failed to get counter: %v", err)
	}
	if got := counterValue(t, counter); got != 2 {
		t.Errorf("validation_error = %v, want 2", got)
	}
}

func TestJobsTrackedGauge(t *testing.T) {
	m := New()

	m.JobsTracked.Inc()
	m.JobsTracked.Inc()
	m.JobsTracked.Dec()

	var metric dto.Metric
	if err := m.JobsTracked.Write(&metric); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got := metric.GetGauge().GetValue(); got != 1 {
		t.Errorf("JobsTracked = %v, want 1", got)
	}
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var metric dto.Metric
	if err := c.Write(&metric); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return metric.GetCounter().GetValue()
}

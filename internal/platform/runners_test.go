package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crafthq/designbind/internal/jobs"
)

func TestMapStatus(t *testing.T) {
	tests := []struct {
		in   string
		want jobs.Status
	}{
		{"pending", jobs.StatusPending},
		{"queued", jobs.StatusPending},
		{"running", jobs.StatusProcessing},
		{"in_progress", jobs.StatusProcessing},
		{"success", jobs.StatusCompleted},
		{"completed", jobs.StatusCompleted},
		{"failed", jobs.StatusFailed},
		{"error", jobs.StatusFailed},
		{"what_even", ""},
	}

	for _, tt := range tests {
		if got := mapStatus(tt.in); got != tt.want {
			t.Errorf("mapStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResearchRunner(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/research/runs":
			var req ResearchTriggerRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode trigger: %v", err)
			}
			if req.WeekStart != "2026-08-31" {
				t.Errorf("week_start = %s", req.WeekStart)
			}
			w.Write([]byte(`{"id":"r1","status":"queued"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/research/runs/r1":
			w.Write([]byte(`{"id":"r1","status":"success","summary":{"topics":3}}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	runner := NewResearchRunner(NewClient(srv.URL, "key"))
	if runner.Kind() != KindResearch {
		t.Errorf("Kind() = %s", runner.Kind())
	}

	job, err := runner.Start(context.Background(), json.RawMessage(`{"week_start":"2026-08-31"}`))
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if job.ID != "r1" || job.Status != jobs.StatusPending {
		t.Errorf("Start() job = %+v", job)
	}

	job, err = runner.Poll(context.Background(), "r1")
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if job.Status != jobs.StatusCompleted {
		t.Errorf("Poll() status = %v", job.Status)
	}
	if string(job.Result) != `{"topics":3}` {
		t.Errorf("Poll() result = %s", job.Result)
	}
}

func TestVideoRunner(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/video/jobs":
			w.Write([]byte(`{"id":"v1","status":"queued"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/video/jobs/v1":
			w.Write([]byte(`{"id":"v1","status":"completed","video_url":"https://cdn/v.mp4","duration_seconds":42.5}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	runner := NewVideoRunner(NewClient(srv.URL, "key"))
	if runner.Kind() != KindVideo {
		t.Errorf("Kind() = %s", runner.Kind())
	}

	job, err := runner.Start(context.Background(), nil)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if job.ID != "v1" || job.Status != jobs.StatusPending {
		t.Errorf("Start() job = %+v", job)
	}

	job, err = runner.Poll(context.Background(), "v1")
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if job.Status != jobs.StatusCompleted {
		t.Errorf("Poll() status = %v", job.Status)
	}

	var result VideoResult
	if err := json.Unmarshal(job.Result, &result); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if result.VideoURL != "https://cdn/v.mp4" || result.DurationSeconds != 42.5 {
		t.Errorf("result = %+v", result)
	}
}

func TestVideoRunnerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"v2","status":"failed","error_message":"render timeout"}`))
	}))
	defer srv.Close()

	runner := NewVideoRunner(NewClient(srv.URL, "key"))
	job, err := runner.Poll(context.Background(), "v2")
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if job.Status != jobs.StatusFailed || job.Error != "render timeout" {
		t.Errorf("job = %+v", job)
	}
}

func TestRunnerBadParams(t *testing.T) {
	runner := NewVideoRunner(NewClient("http://unused", "key"))
	if _, err := runner.Start(context.Background(), json.RawMessage(`{broken`)); err == nil {
		t.Error("Start() expected error for malformed params")
	}
}

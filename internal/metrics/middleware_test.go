package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestHTTPMiddleware(t *testing.T) {
	m := New()
	SetGlobal(m)
	defer SetGlobal(nil)

	r := chi.NewRouter()
	r.Use(HTTPMiddleware)
	r.Get("/api/v1/jobs/{id}", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/api/v1/broken", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	for _, path := range []string{"/api/v1/jobs/a", "/api/v1/jobs/b", "/api/v1/broken"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	// Route pattern collapses per-job paths into one series.
	counter, err := m.APIRequestsTotal.GetMetricWithLabelValues(http.MethodGet, "/api/v1/jobs/{id}", "200")
	if err != nil {
		t.Fatalf("Failed to get counter: %v", err)
	}
	if got := counterValue(t, counter); got != 2 {
		t.Errorf("request count = %v, want 2", got)
	}

	errCounter, err := m.APIErrorsTotal.GetMetricWithLabelValues("upstream_error")
	if err != nil {
		t.Fatalf("Failed to get error counter: %v", err)
	}
	if got := counterValue(t, errCounter); got != 1 {
		t.Errorf("upstream_error count = %v, want 1", got)
	}
}

func TestHTTPMiddlewareWithoutGlobal(t *testing.T) {
	SetGlobal(nil)

	handler := HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/anything", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestNormalizePathFallback(t *testing.T) {
	// Outside a chi router the UUID heuristic kicks in.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/templates/0d4cf44d-9b32-4b12-9097-4c4eabbb1d27/design-source", nil)
	if got := normalizePath(req); got != "/api/v1/templates/{id}/design-source" {
		t.Errorf("normalizePath() = %s", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/providers", nil)
	if got := normalizePath(req); got != "/api/v1/providers" {
		t.Errorf("normalizePath() = %s", got)
	}
}

func TestIsUUID(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"0d4cf44d-9b32-4b12-9097-4c4eabbb1d27", true},
		{"0D4CF44D-9B32-4B12-9097-4C4EABBB1D27", true},
		{"not-a-uuid", false},
		{"0d4cf44d9b324b1290974c4eabbb1d27", false},
		{"0d4cf44d-9b32-4b12-9097-4c4eabbb1dzz", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isUUID(tt.in); got != tt.want {
			t.Errorf("isUUID(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCategorizeStatus(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{502, "upstream_error"},
		{500, "server_error"},
		{503, "server_error"},
		{401, "auth_error"},
		{403, "auth_error"},
		{404, "not_found"},
		{409, "conflict"},
		{422, "validation_error"},
		{400, "bad_request"},
		{418, "client_error"},
		{200, "unknown"},
	}

	for _, tt := range tests {
		if got := categorizeStatus(tt.status); got != tt.want {
			t.Errorf("categorizeStatus(%d) = %s, want %s", tt.status, got, tt.want)
		}
	}
}

func TestResponseWriterDefaultsTo200(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := wrapResponseWriter(rec)

	rw.Write([]byte("ok"))
	if rw.status != http.StatusOK {
		t.Errorf("status = %d, want 200", rw.status)
	}

	// A late WriteHeader must not overwrite the recorded status.
	rw.WriteHeader(http.StatusInternalServerError)
	if rw.status != http.StatusOK {
		t.Errorf("status = %d after late WriteHeader, want 200", rw.status)
	}
}

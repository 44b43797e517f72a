package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/crafthq/designbind/internal/binding"
	"github.com/crafthq/designbind/internal/catalog"
	"github.com/crafthq/designbind/internal/jobs"
	"github.com/crafthq/designbind/internal/mapping"
	"github.com/crafthq/designbind/internal/schema"
)

// ErrorResponse is the error response
type ErrorResponse struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}

// HealthResponse is the response for GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// ProviderStatus is one entry of the provider status listing
type ProviderStatus struct {
	Provider  catalog.Provider `json:"provider"`
	Connected bool             `json:"connected"`
	Error     string           `json:"error,omitempty"`
}

// ProposeRequest is the request body for POST /mappings/propose
type ProposeRequest struct {
	Fields   schema.Schema        `json:"fields"`
	Slots    []catalog.DesignSlot `json:"slots"`
	Existing mapping.FieldMap     `json:"existing,omitempty"`
}

// ProposeResponse is the response for POST /mappings/propose
type ProposeResponse struct {
	FieldMap mapping.FieldMap `json:"field_map"`
}

// DesignSourceRequest is the request body for PUT /templates/{id}/design-source
type DesignSourceRequest struct {
	Provider   string           `json:"provider"`
	TargetID   string           `json:"target_id"`
	TargetName string           `json:"target_name,omitempty"`
	FieldMap   mapping.FieldMap `json:"field_map,omitempty"`
}

// StartJobRequest is the request body for POST /jobs
type StartJobRequest struct {
	Kind   string          `json:"kind"`
	Params json.RawMessage `json:"params,omitempty"`
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: "0.1.0",
		Uptime:  time.Since(s.startTime).String(),
	})
}

// handleProviders handles GET /api/v1/providers
func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	providers := s.registry.Providers()
	statuses := make([]ProviderStatus, 0, len(providers))
	for _, p := range providers {
		src, err := s.registry.Source(p)
		if err != nil {
			continue
		}
		status := ProviderStatus{Provider: p}
		connected, err := src.IsConnected(r.Context())
		if err != nil {
			s.logger.Error("failed to check provider connection", "provider", p, "error", err)
			status.Error = "connection check failed"
		} else {
			status.Connected = connected
		}
		statuses = append(statuses, status)
	}

	s.sendJSON(w, http.StatusOK, statuses)
}

// handleListTargets handles GET /api/v1/providers/{provider}/targets
func (s *Server) handleListTargets(w http.ResponseWriter, r *http.Request) {
	src, ok := s.sourceParam(w, r)
	if !ok {
		return
	}

	targets, err := src.ListTargets(r.Context(), r.URL.Query().Get("locator"))
	if err != nil {
		s.sendProviderError(w, src.Provider(), err)
		return
	}
	if targets == nil {
		targets = []catalog.Target{}
	}

	s.sendJSON(w, http.StatusOK, targets)
}

// handleListSlots handles GET /api/v1/providers/{provider}/slots.
// The target ID travels as a query parameter because Figma target IDs
// contain a path separator.
func (s *Server) handleListSlots(w http.ResponseWriter, r *http.Request) {
	src, ok := s.sourceParam(w, r)
	if !ok {
		return
	}

	targetID := r.URL.Query().Get("target_id")
	if targetID == "" {
		s.sendError(w, http.StatusBadRequest, "target_id is required")
		return
	}

	slots, err := src.ListSlots(r.Context(), targetID)
	if err != nil {
		s.sendProviderError(w, src.Provider(), err)
		return
	}
	// A design with no fillable slots is a valid answer, not a failure.
	if slots == nil {
		slots = []catalog.DesignSlot{}
	}

	s.sendJSON(w, http.StatusOK, slots)
}

// handleProposeMapping handles POST /api/v1/mappings/propose
func (s *Server) handleProposeMapping(w http.ResponseWriter, r *http.Request) {
	var req ProposeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Fields.Validate(); err != nil {
		s.sendError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.sendJSON(w, http.StatusOK, ProposeResponse{
		FieldMap: mapping.Propose(req.Fields, req.Slots, req.Existing),
	})
}

// handleGetDesignSource handles GET /api/v1/templates/{id}/design-source
func (s *Server) handleGetDesignSource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	tmpl, err := s.platform.GetTemplate(r.Context(), id)
	if err != nil {
		s.logger.Error("failed to get template", "id", id, "error", err)
		s.sendError(w, http.StatusBadGateway, "Failed to get template")
		return
	}

	fields, err := schema.Parse(tmpl.Structure)
	if err != nil {
		s.sendError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	descriptor, err := binding.Parse(tmpl.DesignSource)
	if err != nil {
		s.sendError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	state, err := binding.Hydrate(r.Context(), s.registry, descriptor, fields)
	if err != nil {
		if descriptor != nil {
			s.sendProviderError(w, descriptor.Provider, err)
		} else {
			s.sendError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	s.sendJSON(w, http.StatusOK, state)
}

// handleSetDesignSource handles PUT /api/v1/templates/{id}/design-source.
// Validation failures reject the request before anything is persisted.
func (s *Server) handleSetDesignSource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req DesignSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	provider, err := catalog.ParseProvider(req.Provider)
	if err != nil {
		s.sendError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var target *catalog.Target
	if req.TargetID != "" {
		target = &catalog.Target{ID: req.TargetID, Name: req.TargetName}
	}

	descriptor, err := binding.Build(provider, target, req.FieldMap)
	if err != nil {
		s.sendError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var raw json.RawMessage
	if descriptor != nil {
		raw, err = json.Marshal(descriptor)
		if err != nil {
			s.sendError(w, http.StatusInternalServerError, "Failed to encode design source")
			return
		}
	}

	tmpl, err := s.platform.SetDesignSource(r.Context(), id, raw)
	if err != nil {
		s.logger.Error("failed to save design source", "id", id, "error", err)
		s.sendError(w, http.StatusBadGateway, "Failed to save design source")
		return
	}

	s.logger.Info("design source saved", "template_id", id, "provider", provider)
	s.sendJSON(w, http.StatusOK, tmpl)
}

// handleClearDesignSource handles DELETE /api/v1/templates/{id}/design-source
func (s *Server) handleClearDesignSource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := s.platform.SetDesignSource(r.Context(), id, nil); err != nil {
		s.logger.Error("failed to clear design source", "id", id, "error", err)
		s.sendError(w, http.StatusBadGateway, "Failed to clear design source")
		return
	}

	s.logger.Info("design source cleared", "template_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// handleStartJob handles POST /api/v1/jobs
func (s *Server) handleStartJob(w http.ResponseWriter, r *http.Request) {
	var req StartJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Kind == "" {
		s.sendError(w, http.StatusBadRequest, "kind is required")
		return
	}

	handle, err := s.tracker.Start(r.Context(), req.Kind, req.Params)
	if err != nil {
		s.logger.Error("failed to start job", "kind", req.Kind, "error", err)
		s.sendError(w, http.StatusBadGateway, "Failed to start job")
		return
	}

	s.sendJSON(w, http.StatusAccepted, handle.Job())
}

// handleListJobs handles GET /api/v1/jobs
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	filter := jobs.ListFilter{
		Kind:   r.URL.Query().Get("kind"),
		Status: jobs.Status(r.URL.Query().Get("status")),
		Limit:  100,
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			s.sendError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filter.Limit = limit
	}

	list, err := s.tracker.List(filter)
	if err != nil {
		s.logger.Error("failed to list jobs", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}
	if list == nil {
		list = []*jobs.Job{}
	}

	s.sendJSON(w, http.StatusOK, list)
}

// handleGetJob handles GET /api/v1/jobs/{id}
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Live handles are fresher than the journal.
	if h, ok := s.tracker.Handle(id); ok {
		job := h.Job()
		s.sendJSON(w, http.StatusOK, &job)
		return
	}

	job, err := s.tracker.Get(id)
	if err != nil {
		s.logger.Error("failed to get job", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to get job")
		return
	}
	if job == nil {
		s.sendError(w, http.StatusNotFound, "Job not found")
		return
	}

	s.sendJSON(w, http.StatusOK, job)
}

// handleCancelJob handles DELETE /api/v1/jobs/{id}. Cancellation stops
// the local polling loop only; the server-side operation runs on.
func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if s.tracker.Cancel(id) {
		s.logger.Info("job tracking cancelled", "job_id", id)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	job, err := s.tracker.Get(id)
	if err != nil {
		s.logger.Error("failed to get job", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to get job")
		return
	}
	if job == nil {
		s.sendError(w, http.StatusNotFound, "Job not found")
		return
	}

	s.sendError(w, http.StatusConflict, "Job is not being tracked")
}

// sourceParam resolves the {provider} URL parameter to a design source.
func (s *Server) sourceParam(w http.ResponseWriter, r *http.Request) (catalog.Source, bool) {
	provider, err := catalog.ParseProvider(chi.URLParam(r, "provider"))
	if err != nil {
		s.sendError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	src, err := s.registry.Source(provider)
	if err != nil {
		s.sendError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return src, true
}

// sendProviderError maps catalog errors onto the HTTP error taxonomy.
func (s *Server) sendProviderError(w http.ResponseWriter, provider catalog.Provider, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotConnected):
		s.sendJSON(w, http.StatusConflict, ErrorResponse{
			Error: string(provider) + " is not connected",
			Hint:  "Connect the account in Settings and try again",
		})
	case errors.Is(err, catalog.ErrInvalidLocator):
		s.sendError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrUpstream):
		s.logger.Error("upstream provider error", "provider", provider, "error", err)
		s.sendJSON(w, http.StatusBadGateway, ErrorResponse{
			Error: string(provider) + " request failed",
			Hint:  "The provider may be temporarily unavailable; retry shortly",
		})
	default:
		s.logger.Error("provider error", "provider", provider, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Internal error")
	}
}

// sendJSON sends a JSON response
func (s *Server) sendJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// sendError sends an error response
func (s *Server) sendError(w http.ResponseWriter, status int, message string) {
	s.sendJSON(w, status, ErrorResponse{Error: message})
}

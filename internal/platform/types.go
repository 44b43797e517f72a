package platform

import (
	"encoding/json"
	"time"
)

// ErrorResponse is the platform API error shape
type ErrorResponse struct {
	Error string `json:"error"`
}

// Connection describes a provider connection held by the platform
type Connection struct {
	Provider    string    `json:"provider"`
	Connected   bool      `json:"connected"`
	AccessToken string    `json:"access_token,omitempty"`
	AccountName string    `json:"account_name,omitempty"`
	ConnectedAt time.Time `json:"connected_at,omitempty"`
}

// Template is a content template as stored by the platform. Structure
// carries the field schema; DesignSource is the persisted binding, null
// when the builtin renderer applies.
type Template struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	ContentType  string          `json:"content_type,omitempty"`
	Structure    json.RawMessage `json:"structure"`
	DesignSource json.RawMessage `json:"design_source,omitempty"`
	CreatedAt    time.Time       `json:"created_at,omitempty"`
	UpdatedAt    time.Time       `json:"updated_at,omitempty"`
}

// TemplateListResponse is the paged template listing
type TemplateListResponse struct {
	Templates []Template `json:"templates"`
	Total     int        `json:"total"`
}

// TemplateCreateRequest creates a template
type TemplateCreateRequest struct {
	Name        string          `json:"name"`
	ContentType string          `json:"content_type,omitempty"`
	Structure   json.RawMessage `json:"structure"`
}

// TemplateUpdateRequest carries a partial template update. Pointer
// fields distinguish "leave unchanged" from "set to null".
type TemplateUpdateRequest struct {
	Name         *string          `json:"name,omitempty"`
	Structure    *json.RawMessage `json:"structure,omitempty"`
	DesignSource *json.RawMessage `json:"design_source,omitempty"`
}

// ResearchTriggerRequest starts a research run
type ResearchTriggerRequest struct {
	WeekStart string   `json:"week_start,omitempty"`
	Topics    []string `json:"topics,omitempty"`
}

// ResearchRun is the platform's view of a research job
type ResearchRun struct {
	ID           string          `json:"id"`
	Status       string          `json:"status"`
	Summary      json.RawMessage `json:"summary,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	CreatedAt    time.Time       `json:"created_at,omitempty"`
}

// VideoGenerateRequest starts a video generation job
type VideoGenerateRequest struct {
	TemplateID string          `json:"template_id,omitempty"`
	Script     string          `json:"script,omitempty"`
	Fields     json.RawMessage `json:"fields,omitempty"`
}

// VideoJob is the platform's view of a video generation job
type VideoJob struct {
	ID              string    `json:"id"`
	Status          string    `json:"status"`
	VideoURL        string    `json:"video_url,omitempty"`
	ThumbnailURL    string    `json:"thumbnail_url,omitempty"`
	DurationSeconds float64   `json:"duration_seconds,omitempty"`
	ErrorMessage    string    `json:"error_message,omitempty"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
}

// HealthResponse is the platform health probe response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// Package jobs tracks server-side long-running operations (research
// runs, video generation) by polling their status until a terminal
// state. The client only observes transitions; it never drives them.
package jobs

import (
	"encoding/json"
	"time"
)

// Status is the observed state of a server-side job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether the status ends the job's lifecycle.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Valid reports whether the status is one of the four known states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Job is the local mirror of a server-side operation.
type Job struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Status    Status          `json:"status"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Reduce applies an observed poll result to the current job state and
// reports whether anything changed. Terminal states absorb every later
// observation, so a stale in-flight poll resolving after completion
// cannot un-terminate the job. Unknown statuses are ignored.
func Reduce(current Job, observed Job) (Job, bool) {
	if current.Status.Terminal() {
		return current, false
	}
	if !observed.Status.Valid() {
		return current, false
	}
	if observed.Status == current.Status {
		return current, false
	}

	next := current
	next.Status = observed.Status
	if observed.Status == StatusCompleted {
		next.Result = observed.Result
	}
	if observed.Status == StatusFailed {
		next.Error = observed.Error
	}
	return next, true
}

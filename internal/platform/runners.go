package platform

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/crafthq/designbind/internal/jobs"
)

// Job kinds exposed through the tracker.
const (
	KindResearch = "research"
	KindVideo    = "video"
)

// mapStatus translates platform status strings onto the tracker's four
// states. Unknown statuses come back empty so Reduce ignores them.
func mapStatus(s string) jobs.Status {
	switch s {
	case "pending", "queued", "created":
		return jobs.StatusPending
	case "processing", "running", "in_progress":
		return jobs.StatusProcessing
	case "completed", "success", "succeeded", "done":
		return jobs.StatusCompleted
	case "failed", "error", "cancelled":
		return jobs.StatusFailed
	}
	return ""
}

// ResearchRunner drives weekly research runs through the platform API.
type ResearchRunner struct {
	client *Client
}

// NewResearchRunner creates a runner for research jobs.
func NewResearchRunner(client *Client) *ResearchRunner {
	return &ResearchRunner{client: client}
}

func (r *ResearchRunner) Kind() string { return KindResearch }

// Start triggers a research run. Params decode as ResearchTriggerRequest;
// empty params trigger a run with platform defaults.
func (r *ResearchRunner) Start(ctx context.Context, params json.RawMessage) (*jobs.Job, error) {
	var req ResearchTriggerRequest
	if len(params) > 0 {
		if err := json.Unmarshal(params, &req); err != nil {
			return nil, fmt.Errorf("decode research params: %w", err)
		}
	}

	run, err := r.client.TriggerResearch(ctx, &req)
	if err != nil {
		return nil, err
	}
	return researchToJob(run), nil
}

// Poll reads the run's current state.
func (r *ResearchRunner) Poll(ctx context.Context, id string) (*jobs.Job, error) {
	run, err := r.client.GetResearchRun(ctx, id)
	if err != nil {
		return nil, err
	}
	return researchToJob(run), nil
}

func researchToJob(run *ResearchRun) *jobs.Job {
	job := &jobs.Job{
		ID:     run.ID,
		Kind:   KindResearch,
		Status: mapStatus(run.Status),
		Error:  run.ErrorMessage,
	}
	if job.Status == jobs.StatusCompleted && len(run.Summary) > 0 {
		job.Result = run.Summary
	}
	return job
}

// VideoRunner drives video generation jobs through the platform API.
type VideoRunner struct {
	client *Client
}

// NewVideoRunner creates a runner for video jobs.
func NewVideoRunner(client *Client) *VideoRunner {
	return &VideoRunner{client: client}
}

func (r *VideoRunner) Kind() string { return KindVideo }

// VideoResult is the terminal payload of a completed video job.
type VideoResult struct {
	VideoURL        string  `json:"video_url"`
	ThumbnailURL    string  `json:"thumbnail_url,omitempty"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
}

// Start triggers a video generation job.
func (r *VideoRunner) Start(ctx context.Context, params json.RawMessage) (*jobs.Job, error) {
	var req VideoGenerateRequest
	if len(params) > 0 {
		if err := json.Unmarshal(params, &req); err != nil {
			return nil, fmt.Errorf("decode video params: %w", err)
		}
	}

	vj, err := r.client.GenerateVideo(ctx, &req)
	if err != nil {
		return nil, err
	}
	return videoToJob(vj)
}

// Poll reads the video job's current state.
func (r *VideoRunner) Poll(ctx context.Context, id string) (*jobs.Job, error) {
	vj, err := r.client.GetVideoJob(ctx, id)
	if err != nil {
		return nil, err
	}
	return videoToJob(vj)
}

func videoToJob(vj *VideoJob) (*jobs.Job, error) {
	job := &jobs.Job{
		ID:     vj.ID,
		Kind:   KindVideo,
		Status: mapStatus(vj.Status),
		Error:  vj.ErrorMessage,
	}
	if job.Status == jobs.StatusCompleted {
		result, err := json.Marshal(VideoResult{
			VideoURL:        vj.VideoURL,
			ThumbnailURL:    vj.ThumbnailURL,
			DurationSeconds: vj.DurationSeconds,
		})
		if err != nil {
			return nil, fmt.Errorf("marshal video result: %w", err)
		}
		job.Result = result
	}
	return job, nil
}

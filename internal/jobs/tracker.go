package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/crafthq/designbind/internal/metrics"
)

// Runner starts and polls one kind of server-side job. The returned job
// state is a mirror of what the server reports; runners never invent
// transitions.
type Runner interface {
	Kind() string
	Start(ctx context.Context, params json.RawMessage) (*Job, error)
	Poll(ctx context.Context, id string) (*Job, error)
}

// Config holds tracker configuration.
type Config struct {
	PollInterval time.Duration
	// MaxPollFailures is the number of consecutive transport errors
	// tolerated before the tracker gives up on a job. 0 disables the
	// bound (poll until cancelled).
	MaxPollFailures int
}

// DefaultConfig returns default tracker configuration.
func DefaultConfig() Config {
	return Config{
		PollInterval:    3 * time.Second,
		MaxPollFailures: 20,
	}
}

// Tracker owns the polling loops for all in-flight jobs. Each tracked
// job runs its own goroutine and ticker; jobs share nothing but the
// journal. Poll responses for one job apply in request order because a
// single goroutine issues them sequentially.
type Tracker struct {
	runners map[string]Runner
	store   *BoltStore
	logger  *slog.Logger
	metrics *metrics.Metrics

	interval    time.Duration
	maxFailures int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	handles map[string]*Handle
}

// New creates a tracker over the given runners.
func New(store *BoltStore, logger *slog.Logger, m *metrics.Metrics, cfg Config, runners ...Runner) *Tracker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultConfig().PollInterval
	}

	rm := make(map[string]Runner, len(runners))
	for _, r := range runners {
		rm[r.Kind()] = r
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Tracker{
		runners:     rm,
		store:       store,
		logger:      logger.With("component", "tracker"),
		metrics:     m,
		interval:    cfg.PollInterval,
		maxFailures: cfg.MaxPollFailures,
		ctx:         ctx,
		cancel:      cancel,
		handles:     make(map[string]*Handle),
	}
}

// Handle is the caller's grip on one tracked job. Cancel stops polling
// client-side only; no server-side cancellation API exists for these
// operations.
type Handle struct {
	id     string
	kind   string
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	job Job
}

// ID returns the server-issued job identifier.
func (h *Handle) ID() string { return h.id }

// Kind returns the job kind.
func (h *Handle) Kind() string { return h.kind }

// Job returns a snapshot of the job's last observed state.
func (h *Handle) Job() Job {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.job
}

// Done is closed when polling ends, whether terminal or cancelled.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Cancel stops the polling loop. The server-side operation keeps
// running; only the local observer goes away.
func (h *Handle) Cancel() { h.cancel() }

// Start issues the triggering request for a job kind and begins
// tracking the returned job until it reaches a terminal state.
func (t *Tracker) Start(ctx context.Context, kind string, params json.RawMessage) (*Handle, error) {
	runner, ok := t.runners[kind]
	if !ok {
		return nil, fmt.Errorf("unknown job kind %q", kind)
	}

	job, err := runner.Start(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("start %s job: %w", kind, err)
	}
	job.Kind = kind
	if job.ID == "" {
		// The journal is keyed by ID; never store under an empty key.
		job.ID = uuid.NewString()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	job.UpdatedAt = job.CreatedAt
	if !job.Status.Valid() {
		job.Status = StatusPending
	}

	if err := t.store.Put(job); err != nil {
		return nil, fmt.Errorf("journal job: %w", err)
	}

	t.logger.Info("job started", "kind", kind, "job_id", job.ID, "status", job.Status)
	return t.track(runner, *job), nil
}

// track spawns the polling loop for a job. The loop runs on the
// tracker's own context so it outlives the HTTP request that started it.
func (t *Tracker) track(runner Runner, job Job) *Handle {
	ctx, cancel := context.WithCancel(t.ctx)
	h := &Handle{
		id:     job.ID,
		kind:   job.Kind,
		cancel: cancel,
		done:   make(chan struct{}),
		job:    job,
	}

	t.mu.Lock()
	t.handles[job.ID] = h
	t.mu.Unlock()
	if t.metrics != nil {
		t.metrics.JobsTracked.Inc()
	}

	t.wg.Add(1)
	go t.loop(ctx, runner, h)

	if job.Status.Terminal() {
		// Already done at creation time; nothing to poll.
		cancel()
	}
	return h
}

func (t *Tracker) loop(ctx context.Context, runner Runner, h *Handle) {
	defer t.wg.Done()
	defer close(h.done)
	defer func() {
		t.mu.Lock()
		delete(t.handles, h.id)
		t.mu.Unlock()
		if t.metrics != nil {
			t.metrics.JobsTracked.Dec()
		}
	}()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		observed, err := runner.Poll(ctx, h.id)
		if err != nil {
			// Transport errors are transient: keep the job alive and
			// retry on the next tick, up to the configured bound.
			failures++
			if t.metrics != nil {
				t.metrics.JobPolls.WithLabelValues(h.kind, "error").Inc()
			}
			t.logger.Debug("poll failed", "kind", h.kind, "job_id", h.id, "failures", failures, "error", err)

			if t.maxFailures > 0 && failures >= t.maxFailures {
				t.giveUp(h, failures)
				return
			}
			continue
		}
		failures = 0
		if t.metrics != nil {
			t.metrics.JobPolls.WithLabelValues(h.kind, "ok").Inc()
		}

		h.mu.Lock()
		next, changed := Reduce(h.job, *observed)
		if changed {
			next.UpdatedAt = time.Now()
			h.job = next
		}
		terminal := h.job.Status.Terminal()
		snapshot := h.job
		h.mu.Unlock()

		if changed {
			if err := t.store.Put(&snapshot); err != nil {
				t.logger.Error("failed to journal job", "job_id", h.id, "error", err)
			}
			t.logger.Info("job transition", "kind", h.kind, "job_id", h.id, "status", snapshot.Status)
		}

		if terminal {
			if t.metrics != nil {
				t.metrics.JobsFinished.WithLabelValues(h.kind, string(snapshot.Status)).Inc()
			}
			return
		}
	}
}

// giveUp marks a job failed locally after exhausting the transport
// error budget. The server-side operation may still finish; the journal
// records why observation stopped.
func (t *Tracker) giveUp(h *Handle, failures int) {
	h.mu.Lock()
	if !h.job.Status.Terminal() {
		h.job.Status = StatusFailed
		h.job.Error = fmt.Sprintf("gave up after %d consecutive poll failures", failures)
		h.job.UpdatedAt = time.Now()
	}
	snapshot := h.job
	h.mu.Unlock()

	if err := t.store.Put(&snapshot); err != nil {
		t.logger.Error("failed to journal job", "job_id", h.id, "error", err)
	}
	if t.metrics != nil {
		t.metrics.JobsFinished.WithLabelValues(h.kind, "abandoned").Inc()
	}
	t.logger.Warn("job tracking abandoned", "kind", h.kind, "job_id", h.id, "failures", failures)
}

// Cancel stops polling for a job. Unknown IDs report false.
func (t *Tracker) Cancel(id string) bool {
	t.mu.Lock()
	h, ok := t.handles[id]
	t.mu.Unlock()
	if !ok {
		return false
	}
	h.Cancel()
	return true
}

// Handle returns the live handle for a job still being polled.
func (t *Tracker) Handle(id string) (*Handle, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.handles[id]
	return h, ok
}

// Get returns a job's last journaled state.
func (t *Tracker) Get(id string) (*Job, error) {
	return t.store.Get(id)
}

// List returns journaled jobs, newest first.
func (t *Tracker) List(filter ListFilter) ([]*Job, error) {
	return t.store.List(filter)
}

// Kinds returns the job kinds this tracker can start.
func (t *Tracker) Kinds() []string {
	kinds := make([]string, 0, len(t.runners))
	for k := range t.runners {
		kinds = append(kinds, k)
	}
	return kinds
}

// Stop cancels all polling loops and waits for them to exit.
func (t *Tracker) Stop() {
	t.cancel()
	t.wg.Wait()
}

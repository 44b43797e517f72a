package metrics

import (
	"context"
	"os"
	"runtime"
	"sync"
	"time"
)

// Collector updates system gauges in the background
type Collector struct {
	metrics     *Metrics
	journalPath string
	startTime   time.Time

	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// NewCollector creates a new system metrics collector
func NewCollector(m *Metrics, journalPath string) *Collector {
	return &Collector{
		metrics:     m,
		journalPath: journalPath,
		startTime:   time.Now(),
		stopCh:      make(chan struct{}),
	}
}

// Start begins the collector background task
func (c *Collector) Start(ctx context.Context) {
	c.wg.Add(1)
	go c.updateSystemMetrics(ctx)
}

// Stop stops the collector
func (c *Collector) Stop() {
	c.once.Do(func() { close(c.stopCh) })
	c.wg.Wait()
}

// updateSystemMetrics periodically updates system gauges
func (c *Collector) updateSystemMetrics(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.collectSystemMetrics()
		}
	}
}

// collectSystemMetrics collects current system state
func (c *Collector) collectSystemMetrics() {
	// Update uptime
	c.metrics.UptimeSeconds.Set(time.Since(c.startTime).Seconds())

	// Update goroutines
	c.metrics.Goroutines.Set(float64(runtime.NumGoroutine()))

	// Update journal size
	if c.journalPath != "" {
		if info, err := os.Stat(c.journalPath); err == nil {
			c.metrics.JournalUsedBytes.Set(float64(info.Size()))
		}
	}
}

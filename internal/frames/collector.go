package frames

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/calvingit/performance-tracker/internal/event"
	"github.com/calvingit/performance-tracker/internal/eventstore"
)

// Collector subscribes to a host frame scheduler and buffers raw frame
// timings alongside their wall-clock capture timestamps. Monitoring scope is
// one page at a time: idle -> monitoring -> idle, driven by Start, Stop and
// SwitchPage.
type Collector struct {
	store      *eventstore.Store
	sched      Scheduler
	interval   time.Duration
	maxSamples int
	now        func() time.Time

	mu          sync.Mutex
	monitoring  bool
	pageLabel   string
	refreshRate float64
	samples     []Timing
	capturedAt  []time.Time
	done        chan struct{}
}

func NewCollector(store *eventstore.Store, sched Scheduler, maxSamples int, interval time.Duration) *Collector {
	if maxSamples <= 0 {
		maxSamples = DefaultMaxSamples
	}
	if interval <= 0 {
		interval = DefaultReportInterval
	}
	return &Collector{
		store:       store,
		sched:       sched,
		interval:    interval,
		maxSamples:  maxSamples,
		now:         time.Now,
		refreshRate: DefaultRefreshRate,
	}
}

// Start begins monitoring under the given page label. It is a no-op while
// already monitoring or while the store is disabled. Both sample buffers are
// cleared, the refresh rate is re-detected, and the periodic frame-rate
// report is armed.
func (c *Collector) Start(label string) {
	if !c.store.Enabled() {
		return
	}

	c.mu.Lock()
	if c.monitoring {
		c.mu.Unlock()
		return
	}
	rate, err := c.sched.RefreshRate()
	if err != nil || rate <= 0 {
		log.Warn().
			Err(err).
			Float64("fallback_hz", DefaultRefreshRate).
			Msg("refresh rate detection failed")
		rate = DefaultRefreshRate
	}
	c.refreshRate = rate
	c.pageLabel = label
	c.samples = c.samples[:0]
	c.capturedAt = c.capturedAt[:0]
	c.monitoring = true
	done := make(chan struct{})
	c.done = done
	c.mu.Unlock()

	c.sched.Subscribe(c.handleTimings)
	go c.reportLoop(done)
}

// Stop ends monitoring. Remaining buffered samples are reduced synchronously
// into one final uiRendering summary record before the buffers are dropped.
// Safe to call when idle or when no samples ever arrived.
func (c *Collector) Stop() {
	c.mu.Lock()
	if !c.monitoring {
		c.mu.Unlock()
		return
	}
	c.monitoring = false
	close(c.done)
	label := c.pageLabel
	c.pageLabel = ""
	rate := c.refreshRate
	samples := c.samples
	capturedAt := c.capturedAt
	c.samples = nil
	c.capturedAt = nil
	c.mu.Unlock()

	c.sched.Unsubscribe()

	if len(samples) == 0 {
		return
	}
	m := computeInterval(samples, capturedAt, rate)
	name := label
	if name == "" {
		name = "frame_monitoring"
	}
	c.store.Add(event.New(event.UIRendering, name, m.summaryAttributes(rate)))
}

// SwitchPage retargets monitoring to a new page label. The previous page's
// remaining samples are captured into its final summary first.
func (c *Collector) SwitchPage(label string) {
	c.Stop()
	c.Start(label)
}

func (c *Collector) Monitoring() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.monitoring
}

func (c *Collector) RefreshRate() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshRate
}

func (c *Collector) reportLoop(done chan struct{}) {
	t := time.NewTicker(c.interval)
	defer t.Stop()
	for {
		select {
		case <-done:
			return
		case <-t.C:
			c.Flush()
		}
	}
}

// handleTimings is the scheduler callback: append each sample to both
// bounded buffers, then classify it for jank immediately.
func (c *Collector) handleTimings(timings []Timing) {
	if len(timings) == 0 {
		return
	}

	c.mu.Lock()
	if !c.monitoring {
		c.mu.Unlock()
		return
	}
	label := c.pageLabel
	now := c.now()
	c.samples = append(c.samples, timings...)
	for range timings {
		c.capturedAt = append(c.capturedAt, now)
	}
	if overflow := len(c.samples) - c.maxSamples; overflow > 0 {
		c.samples = append(c.samples[:0], c.samples[overflow:]...)
	}
	if overflow := len(c.capturedAt) - c.maxSamples; overflow > 0 {
		c.capturedAt = append(c.capturedAt[:0], c.capturedAt[overflow:]...)
	}
	c.mu.Unlock()

	for _, t := range timings {
		for _, r := range jankRecords(t, label) {
			c.store.Add(r)
		}
	}
}

package frames

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/calvingit/performance-tracker/internal/event"
	"github.com/calvingit/performance-tracker/internal/eventstore"
)

type fakeScheduler struct {
	rate         float64
	rateErr      error
	fn           func([]Timing)
	subscribes   int
	unsubscribes int
}

func (f *fakeScheduler) Subscribe(fn func([]Timing)) {
	f.fn = fn
	f.subscribes++
}

func (f *fakeScheduler) Unsubscribe() {
	f.fn = nil
	f.unsubscribes++
}

func (f *fakeScheduler) RefreshRate() (float64, error) {
	return f.rate, f.rateErr
}

func (f *fakeScheduler) emit(timings ...Timing) {
	f.fn(timings)
}

// fakeClock hands out timestamps a fixed step apart.
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

func newTestCollector(rate float64, step time.Duration) (*Collector, *fakeScheduler, *eventstore.Store) {
	store := eventstore.New(0)
	sched := &fakeScheduler{rate: rate}
	c := NewCollector(store, sched, 0, 0)
	c.now = (&fakeClock{t: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), step: step}).now
	return c, sched, store
}

func smoothFrame() Timing {
	return Timing{BuildDuration: 4 * time.Millisecond, RasterDuration: 4 * time.Millisecond, TotalSpan: 8 * time.Millisecond}
}

func TestStartStopStateMachine(t *testing.T) {
	c, sched, store := newTestCollector(60, 16*time.Millisecond)

	c.Start("home")
	if !c.Monitoring() {
		t.Fatal("expected monitoring after Start")
	}
	c.Start("other") // re-entrant start is a no-op
	if sched.subscribes != 1 {
		t.Fatalf("got %d subscriptions, want 1", sched.subscribes)
	}

	sched.emit(smoothFrame())
	c.Stop()
	if c.Monitoring() {
		t.Fatal("expected idle after Stop")
	}
	if sched.unsubscribes != 1 {
		t.Fatalf("got %d unsubscribes, want 1", sched.unsubscribes)
	}

	summaries := store.ByKind(event.UIRendering)
	if len(summaries) != 1 {
		t.Fatalf("got %d summary records, want 1", len(summaries))
	}
	if summaries[0].Name != "home" {
		t.Fatalf("got summary name %q, want home", summaries[0].Name)
	}

	// Stop when idle stays a no-op.
	c.Stop()
	if got := len(store.ByKind(event.UIRendering)); got != 1 {
		t.Fatalf("got %d summary records after second Stop, want 1", got)
	}
}

func TestStopWithoutSamplesEmitsNoSummary(t *testing.T) {
	c, _, store := newTestCollector(60, 16*time.Millisecond)
	c.Start("home")
	c.Stop()
	if got := store.Len(); got != 0 {
		t.Fatalf("got %d records, want 0", got)
	}
}

func TestStartWhileStoreDisabledIsANoOp(t *testing.T) {
	c, sched, store := newTestCollector(60, 16*time.Millisecond)
	store.SetEnabled(false)
	c.Start("home")
	if c.Monitoring() || sched.subscribes != 0 {
		t.Fatal("Start must be a no-op while the store is disabled")
	}
}

func TestRefreshRateFallback(t *testing.T) {
	c, sched, _ := newTestCollector(0, 16*time.Millisecond)
	sched.rateErr = errors.New("no display")
	c.Start("home")
	defer c.Stop()
	if got := c.RefreshRate(); got != DefaultRefreshRate {
		t.Fatalf("got refresh rate %v, want fallback %v", got, DefaultRefreshRate)
	}
}

func TestSampleBuffersAreBounded(t *testing.T) {
	c, sched, _ := newTestCollector(60, time.Millisecond)
	c.maxSamples = 10
	c.Start("home")
	defer c.Stop()

	for i := 0; i < 50; i++ {
		sched.emit(smoothFrame())
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.samples) != 10 || len(c.capturedAt) != 10 {
		t.Fatalf("got %d samples and %d timestamps, want 10 each", len(c.samples), len(c.capturedAt))
	}
}

func TestMildJankScenario(t *testing.T) {
	// Ten frames of 20ms total span at 60Hz: one mild jank record each, and
	// one aggregation pass yields a processing_fps record with
	// avgFrameTime about 20ms.
	c, sched, store := newTestCollector(60, 16*time.Millisecond)
	c.Start("home")

	for i := 0; i < 10; i++ {
		sched.emit(Timing{
			BuildDuration:  8 * time.Millisecond,
			RasterDuration: 8 * time.Millisecond,
			TotalSpan:      20 * time.Millisecond,
		})
	}

	janks := store.ByKind(event.JankDetection)
	if len(janks) != 10 {
		t.Fatalf("got %d jank records, want 10", len(janks))
	}
	for _, r := range janks {
		if r.Attributes["severity"] != string(SeverityMild) || r.Attributes["phase"] != "total" {
			t.Fatalf("got jank attributes %v, want mild total jank", r.Attributes)
		}
	}

	c.Flush()
	rates := store.ByKind(event.FrameRate)
	if len(rates) != 2 {
		t.Fatalf("got %d frame rate records, want 2", len(rates))
	}
	var processing *event.Record
	for i := range rates {
		if rates[i].Attributes["type"] == "processing_fps" {
			processing = &rates[i]
		}
	}
	if processing == nil {
		t.Fatal("missing processing_fps record")
	}
	avg, _ := processing.Attributes["avgFrameTimeMs"].(float64)
	if math.Abs(avg-20) > 0.001 {
		t.Fatalf("got avgFrameTimeMs %v, want about 20", avg)
	}
	if *processing.Value != 50 {
		t.Fatalf("got processing fps %v, want 50", *processing.Value)
	}
	if got, _ := processing.Attributes["jankTotalCount"].(int); got != 10 {
		t.Fatalf("got jankTotalCount %v, want 10", processing.Attributes["jankTotalCount"])
	}

	c.Stop()
}

func TestDisplayRateClamp(t *testing.T) {
	// Pathologically small inter-frame gaps must clamp the display rate to
	// refreshRate * 1.1.
	c, sched, store := newTestCollector(60, time.Millisecond)
	c.Start("home")

	for i := 0; i < 30; i++ {
		sched.emit(smoothFrame())
	}
	c.Flush()

	var display *event.Record
	rates := store.ByKind(event.FrameRate)
	for i := range rates {
		if rates[i].Attributes["type"] == "display_fps" {
			display = &rates[i]
		}
	}
	if display == nil {
		t.Fatal("missing display_fps record")
	}
	if math.Abs(*display.Value-60*displayRateClampFactor) > 1e-9 {
		t.Fatalf("got display fps %v, want clamp at %v", *display.Value, 60*displayRateClampFactor)
	}

	c.Stop()
}

func TestDisplayJankCounts(t *testing.T) {
	base := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	capturedAt := []time.Time{
		base,
		base.Add(16 * time.Millisecond),  // on schedule
		base.Add(46 * time.Millisecond),  // 30ms gap: mild (> 25ms)
		base.Add(86 * time.Millisecond),  // 40ms gap: severe (> 33.3ms)
		base.Add(102 * time.Millisecond), // on schedule
	}
	samples := make([]Timing, len(capturedAt))
	for i := range samples {
		samples[i] = smoothFrame()
	}

	m := computeInterval(samples, capturedAt, 60)
	if m.displayJankMild != 1 || m.displayJankSevere != 1 {
		t.Fatalf("got mild=%d severe=%d, want 1 and 1", m.displayJankMild, m.displayJankSevere)
	}
}

func TestFlushWithEmptyBuffersIsANoOp(t *testing.T) {
	c, _, store := newTestCollector(60, 16*time.Millisecond)
	c.Start("home")
	defer c.Stop()
	c.Flush()
	if got := store.Len(); got != 0 {
		t.Fatalf("got %d records, want 0", got)
	}
}

func TestFlushDrainsBuffers(t *testing.T) {
	c, sched, store := newTestCollector(60, 16*time.Millisecond)
	c.Start("home")
	defer c.Stop()

	sched.emit(smoothFrame(), smoothFrame(), smoothFrame())
	c.Flush()
	if got := len(store.ByKind(event.FrameRate)); got != 2 {
		t.Fatalf("got %d frame rate records, want 2", got)
	}

	// Nothing left for a second interval.
	c.Flush()
	if got := len(store.ByKind(event.FrameRate)); got != 2 {
		t.Fatalf("got %d frame rate records after empty interval, want still 2", got)
	}
}

func TestSwitchPage(t *testing.T) {
	c, sched, store := newTestCollector(60, 16*time.Millisecond)
	c.Start("home")
	sched.emit(smoothFrame())

	c.SwitchPage("settings")
	defer c.Stop()

	summaries := store.ByKind(event.UIRendering)
	if len(summaries) != 1 || summaries[0].Name != "home" {
		t.Fatalf("got summaries %v, want one for home", summaries)
	}
	if !c.Monitoring() {
		t.Fatal("expected monitoring to continue on the new page")
	}

	stats := c.CurrentStats()
	if stats.Page != "settings" || stats.FrameCount != 0 {
		t.Fatalf("got stats %+v, want empty buffers under settings", stats)
	}
}

func TestCurrentStats(t *testing.T) {
	c, sched, _ := newTestCollector(60, 16*time.Millisecond)
	c.Start("home")
	defer c.Stop()

	for i := 0; i < 5; i++ {
		sched.emit(Timing{
			BuildDuration:  10 * time.Millisecond,
			RasterDuration: 6 * time.Millisecond,
			TotalSpan:      16 * time.Millisecond,
		})
	}

	stats := c.CurrentStats()
	if stats.FrameCount != 5 {
		t.Fatalf("got frame count %d, want 5", stats.FrameCount)
	}
	if stats.RefreshRate != 60 {
		t.Fatalf("got refresh rate %v, want 60", stats.RefreshRate)
	}
	if math.Abs(stats.AvgFrameTimeMS-16) > 0.001 {
		t.Fatalf("got avg frame time %v, want 16", stats.AvgFrameTimeMS)
	}
	if stats.JankTotalCount != 0 {
		t.Fatalf("16ms frames are at the threshold, not over it: %+v", stats)
	}

	// CurrentStats must not drain the buffers.
	if again := c.CurrentStats(); again.FrameCount != 5 {
		t.Fatalf("buffers drained by CurrentStats: %+v", again)
	}
}

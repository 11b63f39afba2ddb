// Package tracker instruments a running application: a bounded telemetry
// event log, timed spans, scalar metrics, and a real-time frame-performance
// pipeline (jank classification plus periodic display/processing frame-rate
// computation).
//
// One Tracker is constructed at application start and passed by handle to
// every producer and consumer; there is no hidden global instance.
package tracker

import (
	"time"

	"github.com/calvingit/performance-tracker/internal/event"
	"github.com/calvingit/performance-tracker/internal/eventstore"
	"github.com/calvingit/performance-tracker/internal/export"
	"github.com/calvingit/performance-tracker/internal/frames"
	"github.com/calvingit/performance-tracker/internal/stats"
)

// Config carries the tunables. Zero values fall back to the defaults noted
// on each field.
type Config struct {
	// MaxRecords caps the event log; oldest records are evicted first.
	// Default 1000.
	MaxRecords int

	// FrameBufferSize caps the frame sample buffers. Default 300.
	FrameBufferSize int

	// ReportInterval is the period of the frame-rate computation.
	// Default 5s.
	ReportInterval time.Duration
}

type Tracker struct {
	store     *eventstore.Store
	collector *frames.Collector
}

// New wires a store and a frame collector against the given host frame
// scheduler.
func New(sched Scheduler, cfg Config) *Tracker {
	store := eventstore.New(cfg.MaxRecords)
	return &Tracker{
		store:     store,
		collector: frames.NewCollector(store, sched, cfg.FrameBufferSize, cfg.ReportInterval),
	}
}

// Store exposes the underlying event store, the single ingestion point for
// external producers such as the HTTP instrumentation middleware.
func (t *Tracker) Store() *eventstore.Store {
	return t.store
}

// Collector exposes the frame collector for consumers of the query surface.
func (t *Tracker) Collector() *frames.Collector {
	return t.collector
}

func (t *Tracker) SetEnabled(enabled bool) {
	t.store.SetEnabled(enabled)
}

func (t *Tracker) Enabled() bool {
	return t.store.Enabled()
}

func (t *Tracker) SetMaxRecords(n int) {
	t.store.SetMaxRecords(n)
}

// AddRecord appends an already-built record. No-op while disabled.
func (t *Tracker) AddRecord(r Record) {
	t.store.Add(r)
}

// StartPageLoad opens a timed page-load span; EndPageLoad closes it and
// emits a pageLoad record.
func (t *Tracker) StartPageLoad(page string) SpanHandle {
	return t.store.StartSpan(page)
}

func (t *Tracker) EndPageLoad(page string, h SpanHandle, attrs Attributes) {
	t.store.EndSpan(page, h, event.PageLoad, attrs)
}

// StartSpan opens a generic timed span; EndSpan closes it and emits a
// customMetric record.
func (t *Tracker) StartSpan(key string) SpanHandle {
	return t.store.StartSpan(key)
}

func (t *Tracker) EndSpan(key string, h SpanHandle, attrs Attributes) {
	t.store.EndSpan(key, h, event.CustomMetric, attrs)
}

// RecordScalar emits a customMetric record carrying a single measurement.
func (t *Tracker) RecordScalar(name string, value float64, attrs Attributes) {
	t.store.Add(event.NewScalar(event.CustomMetric, name, value, attrs))
}

// Measure times fn and records the outcome; errors and panics pass through
// unchanged.
func (t *Tracker) Measure(name string, attrs Attributes, fn func() error) error {
	return t.store.Measure(name, attrs, fn)
}

// StartMonitoring begins frame monitoring scoped to the given page label.
func (t *Tracker) StartMonitoring(page string) {
	t.collector.Start(page)
}

// StopMonitoring ends frame monitoring, flushing remaining samples into a
// final uiRendering summary.
func (t *Tracker) StopMonitoring() {
	t.collector.Stop()
}

// SwitchPage retargets frame monitoring to a new page label.
func (t *Tracker) SwitchPage(page string) {
	t.collector.SwitchPage(page)
}

func (t *Tracker) Monitoring() bool {
	return t.collector.Monitoring()
}

// CurrentFrameStats reduces the frame buffers on demand, without draining
// them.
func (t *Tracker) CurrentFrameStats() FrameStats {
	return t.collector.CurrentStats()
}

func (t *Tracker) Snapshot() []Record {
	return t.store.Snapshot()
}

func (t *Tracker) ByKind(kind Kind) []Record {
	return t.store.ByKind(kind)
}

func (t *Tracker) ByName(name string) []Record {
	return t.store.ByName(name)
}

// Stats aggregates the whole log; StatsByKind one kind's records.
func (t *Tracker) Stats() Summary {
	return stats.Collect(t.store.Snapshot())
}

func (t *Tracker) StatsByKind(kind Kind) Summary {
	return stats.Collect(t.store.ByKind(kind))
}

// Export serializes a snapshot of the log as the export envelope. The store
// is only held for the snapshot, never during marshaling.
func (t *Tracker) Export() ([]byte, error) {
	return export.Marshal(t.store.Snapshot())
}

func (t *Tracker) Clear() {
	t.store.Clear()
}

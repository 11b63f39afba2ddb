package tracker

import (
	"github.com/calvingit/performance-tracker/internal/event"
	"github.com/calvingit/performance-tracker/internal/eventstore"
	"github.com/calvingit/performance-tracker/internal/frames"
	"github.com/calvingit/performance-tracker/internal/stats"
)

// Aliases for the domain types, so consumers outside the module can build
// records and implement schedulers.
type (
	Record      = event.Record
	Kind        = event.Kind
	Attributes  = event.Attributes
	SpanHandle  = eventstore.SpanHandle
	Summary     = stats.Summary
	Scheduler   = frames.Scheduler
	FrameTiming = frames.Timing
	FrameStats  = frames.FrameStats
)

const (
	KindPageLoad       = event.PageLoad
	KindNetworkRequest = event.NetworkRequest
	KindCustomMetric   = event.CustomMetric
	KindUIRendering    = event.UIRendering
	KindFrameRate      = event.FrameRate
	KindJankDetection  = event.JankDetection
)

// NewRecord builds a marker record; NewTimedRecord and NewScalarRecord add
// the optional duration or value.
var (
	NewRecord       = event.New
	NewTimedRecord  = event.NewTimed
	NewScalarRecord = event.NewScalar
)

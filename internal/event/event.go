package event

import (
	"time"

	"github.com/calvingit/performance-tracker/internal/timeutil"
)

// Kind is the closed set of telemetry record types. Adding a kind is a schema
// change, not a runtime decision.
type Kind string

const (
	PageLoad       Kind = "pageLoad"
	NetworkRequest Kind = "networkRequest"
	CustomMetric   Kind = "customMetric"
	UIRendering    Kind = "uiRendering"
	FrameRate      Kind = "frameRate"
	JankDetection  Kind = "jankDetection"
)

func (k Kind) Valid() bool {
	switch k {
	case PageLoad, NetworkRequest, CustomMetric, UIRendering, FrameRate, JankDetection:
		return true
	}
	return false
}

type (
	// Attributes carries contextual metadata such as status code, page name
	// or severity. Values are scalars or strings.
	Attributes map[string]interface{}

	// Record is one telemetry observation. Records are immutable after
	// construction; optional fields are omitted from JSON when absent, never
	// emitted as null.
	Record struct {
		Kind       Kind          `json:"type"`
		Name       string        `json:"name"`
		Duration   *int64        `json:"duration,omitempty"`
		Value      *float64      `json:"value,omitempty"`
		Timestamp  timeutil.Time `json:"timestamp"`
		Attributes Attributes    `json:"additionalData,omitempty"`
	}
)

// New returns a marker record carrying neither a duration nor a value.
func New(kind Kind, name string, attrs Attributes) Record {
	return Record{
		Kind:       kind,
		Name:       name,
		Timestamp:  timeutil.Now(),
		Attributes: attrs.clone(),
	}
}

// NewTimed returns a record for a completed timed span. The duration is
// reported in whole milliseconds.
func NewTimed(kind Kind, name string, d time.Duration, attrs Attributes) Record {
	r := New(kind, name, attrs)
	ms := d.Milliseconds()
	r.Duration = &ms
	return r
}

// NewScalar returns a record for a single scalar measurement.
func NewScalar(kind Kind, name string, value float64, attrs Attributes) Record {
	r := New(kind, name, attrs)
	r.Value = &value
	return r
}

// clone keeps constructed records independent of the caller's map.
func (a Attributes) clone() Attributes {
	if a == nil {
		return nil
	}
	c := make(Attributes, len(a))
	for k, v := range a {
		c[k] = v
	}
	return c
}

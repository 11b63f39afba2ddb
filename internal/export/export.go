// Package export shapes the store's contents for serialization. It only
// builds the envelope; writing it anywhere is the caller's concern.
package export

import (
	gojson "github.com/goccy/go-json"

	"github.com/calvingit/performance-tracker/internal/event"
	"github.com/calvingit/performance-tracker/internal/stats"
	"github.com/calvingit/performance-tracker/internal/timeutil"
)

type Envelope struct {
	ExportTime   timeutil.Time  `json:"exportTime"`
	TotalRecords int            `json:"totalRecords"`
	Stats        stats.Summary  `json:"stats"`
	Records      []event.Record `json:"records"`
}

func NewEnvelope(records []event.Record) Envelope {
	if records == nil {
		records = []event.Record{}
	}
	return Envelope{
		ExportTime:   timeutil.Now(),
		TotalRecords: len(records),
		Stats:        stats.Collect(records),
		Records:      records,
	}
}

func Marshal(records []event.Record) ([]byte, error) {
	return gojson.Marshal(NewEnvelope(records))
}

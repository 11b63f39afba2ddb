// Package stats reduces a slice of telemetry records to count/min/max/mean
// summaries, computed independently for timed records and scalar records.
package stats

import (
	"github.com/calvingit/performance-tracker/internal/event"
)

// Summary aggregates one slice of records. Count is the size of the whole
// input; the duration fields only reflect records carrying a duration and the
// value fields only records carrying a value. Every optional field is nil,
// not zero, when its source subset is empty.
type Summary struct {
	Count       int      `json:"count"`
	AvgDuration *float64 `json:"avgDuration,omitempty"`
	MinDuration *int64   `json:"minDuration,omitempty"`
	MaxDuration *int64   `json:"maxDuration,omitempty"`
	AvgValue    *float64 `json:"avgValue,omitempty"`
	MinValue    *float64 `json:"minValue,omitempty"`
	MaxValue    *float64 `json:"maxValue,omitempty"`
}

func Collect(records []event.Record) Summary {
	s := Summary{Count: len(records)}

	var (
		durCount int
		durSum   int64
		durMin   int64
		durMax   int64

		valCount int
		valSum   float64
		valMin   float64
		valMax   float64
	)

	for _, r := range records {
		if r.Duration != nil {
			d := *r.Duration
			if durCount == 0 || d < durMin {
				durMin = d
			}
			if durCount == 0 || d > durMax {
				durMax = d
			}
			durSum += d
			durCount++
		}
		if r.Value != nil {
			v := *r.Value
			if valCount == 0 || v < valMin {
				valMin = v
			}
			if valCount == 0 || v > valMax {
				valMax = v
			}
			valSum += v
			valCount++
		}
	}

	if durCount > 0 {
		avg := float64(durSum) / float64(durCount)
		s.AvgDuration = &avg
		s.MinDuration = &durMin
		s.MaxDuration = &durMax
	}
	if valCount > 0 {
		avg := valSum / float64(valCount)
		s.AvgValue = &avg
		s.MinValue = &valMin
		s.MaxValue = &valMax
	}
	return s
}

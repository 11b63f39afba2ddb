package eventstore

import (
	"fmt"
	"time"

	"github.com/calvingit/performance-tracker/internal/event"
)

// Measure times fn and appends one customMetric record with the outcome. The
// caller's control flow is never altered: a returned error is passed through
// unchanged and a panic is recorded, then allowed to propagate.
func (s *Store) Measure(name string, attrs event.Attributes, fn func() error) error {
	start := time.Now()
	completed := false
	defer func() {
		if completed {
			return
		}
		s.Add(event.NewTimed(event.CustomMetric, name, time.Since(start), withOutcome(attrs, "panic")))
	}()

	err := fn()
	completed = true

	outcome := "success"
	if err != nil {
		outcome = fmt.Sprintf("error: %v", err)
	}
	s.Add(event.NewTimed(event.CustomMetric, name, time.Since(start), withOutcome(attrs, outcome)))
	return err
}

func withOutcome(attrs event.Attributes, outcome string) event.Attributes {
	merged := make(event.Attributes, len(attrs)+2)
	for k, v := range attrs {
		merged[k] = v
	}
	merged["success"] = outcome == "success"
	if outcome != "success" {
		merged["failure"] = outcome
	}
	return merged
}

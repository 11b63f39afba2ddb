package frames

import (
	"github.com/calvingit/performance-tracker/internal/event"
)

type Severity string

const (
	SeverityMild   Severity = "mild"
	SeveritySevere Severity = "severe"
)

// Classify grades one phase measurement in milliseconds. The second return
// is false when the measurement stayed within the mild threshold.
func Classify(ms float64) (Severity, bool) {
	switch {
	case ms > severeThresholdMS:
		return SeveritySevere, true
	case ms > mildThresholdMS:
		return SeverityMild, true
	}
	return "", false
}

// jankRecords inspects the build, raster and total measurements of one frame
// independently and returns a jankDetection record per phase that crossed a
// threshold, zero to three in total. Splitting per phase lets a consumer
// tell UI-thread stalls apart from composition stalls.
func jankRecords(t Timing, page string) []event.Record {
	phases := []struct {
		name string
		ms   float64
	}{
		{"build", durationMS(t.BuildDuration)},
		{"raster", durationMS(t.RasterDuration)},
		{"total", durationMS(t.TotalSpan)},
	}

	var out []event.Record
	for _, phase := range phases {
		severity, janky := Classify(phase.ms)
		if !janky {
			continue
		}
		attrs := event.Attributes{
			"phase":    phase.name,
			"severity": string(severity),
		}
		if page != "" {
			attrs["page"] = page
		}
		out = append(out, event.NewScalar(event.JankDetection, "frame_jank", phase.ms, attrs))
	}
	return out
}

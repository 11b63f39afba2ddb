// Package frames collects per-frame timing samples from a host frame
// scheduler, classifies jank synchronously, and periodically reduces the
// buffered samples into display and processing frame rates.
package frames

import "time"

const (
	// DefaultRefreshRate is the fallback when detection fails.
	DefaultRefreshRate = 60.0

	// DefaultMaxSamples bounds both sample buffers, roughly 5s at 60Hz.
	DefaultMaxSamples = 300

	// DefaultReportInterval is how often buffered samples are reduced into
	// frame-rate records.
	DefaultReportInterval = 5 * time.Second

	// mildThresholdMS is one frame at 60Hz, severeThresholdMS roughly one
	// at 30Hz. Comparisons are strict: a phase at exactly the threshold is
	// not jank.
	mildThresholdMS   = 16.0
	severeThresholdMS = 32.0

	// Successive-frame gaps beyond these multiples of the expected frame
	// interval count as display jank.
	displayJankMildFactor   = 1.5
	displayJankSevereFactor = 2.0

	// displayRateClampFactor absorbs timer jitter in the display rate.
	displayRateClampFactor = 1.1
)

type (
	// Timing is one frame's raw measurements as delivered by the host
	// scheduler, split into the build (layout/paint) and raster
	// (composition) phases plus the frame's total span.
	Timing struct {
		BuildDuration  time.Duration
		RasterDuration time.Duration
		TotalSpan      time.Duration
	}

	// Scheduler is the host frame source. Subscribe registers a callback
	// invoked with batches of frame timings in arrival order; RefreshRate
	// reports the primary display's refresh rate in Hz, best-effort.
	Scheduler interface {
		Subscribe(fn func([]Timing))
		Unsubscribe()
		RefreshRate() (float64, error)
	}
)

func durationMS(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

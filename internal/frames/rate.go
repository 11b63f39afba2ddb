package frames

import (
	"time"

	"github.com/calvingit/performance-tracker/internal/event"
)

type (
	// FrameStats is the on-demand view of the current buffers exposed to
	// consumers (dashboard, HTTP surface).
	FrameStats struct {
		DisplayFPS             float64 `json:"displayFps"`
		ProcessingFPS          float64 `json:"processingFps"`
		AvgBuildTimeMS         float64 `json:"avgBuildTimeMs"`
		AvgRasterTimeMS        float64 `json:"avgRasterTimeMs"`
		AvgFrameTimeMS         float64 `json:"avgFrameTimeMs"`
		JankBuildCount         int     `json:"jankBuildCount"`
		JankRasterCount        int     `json:"jankRasterCount"`
		JankTotalCount         int     `json:"jankTotalCount"`
		DisplayJankMildCount   int     `json:"displayJankMildCount"`
		DisplayJankSevereCount int     `json:"displayJankSevereCount"`
		FrameCount             int     `json:"frameCount"`
		RefreshRate            float64 `json:"refreshRate"`
		Monitoring             bool    `json:"monitoring"`
		Page                   string  `json:"page,omitempty"`
	}

	intervalMetrics struct {
		frameCount        int
		displayFPS        float64
		processingFPS     float64
		avgBuildMS        float64
		avgRasterMS       float64
		avgTotalMS        float64
		jankBuild         int
		jankRaster        int
		jankTotal         int
		displayJankMild   int
		displayJankSevere int
	}
)

// computeInterval reduces one interval's buffered samples into the two rate
// metrics and their sub-metrics. The display rate comes from the timestamp
// buffer alone, the processing rate from the duration buffer alone; the two
// are never averaged together.
func computeInterval(samples []Timing, capturedAt []time.Time, refreshRate float64) intervalMetrics {
	m := intervalMetrics{frameCount: len(samples)}
	if len(samples) == 0 {
		return m
	}

	var buildSum, rasterSum, totalSum float64
	for _, s := range samples {
		buildMS := durationMS(s.BuildDuration)
		rasterMS := durationMS(s.RasterDuration)
		totalMS := durationMS(s.TotalSpan)
		buildSum += buildMS
		rasterSum += rasterMS
		totalSum += totalMS
		if buildMS > mildThresholdMS {
			m.jankBuild++
		}
		if rasterMS > mildThresholdMS {
			m.jankRaster++
		}
		if totalMS > mildThresholdMS {
			m.jankTotal++
		}
	}
	n := float64(len(samples))
	m.avgBuildMS = buildSum / n
	m.avgRasterMS = rasterSum / n
	m.avgTotalMS = totalSum / n

	// Processing rate: inverse of the average per-frame cost, independent
	// of how far apart frames actually landed.
	if m.avgTotalMS > 0 {
		m.processingFPS = 1000 / m.avgTotalMS
	}

	// Display rate: implied by the wall-clock spacing of delivered frames,
	// clamped to absorb timer jitter.
	maxDisplay := refreshRate * displayRateClampFactor
	if len(capturedAt) >= 2 {
		span := capturedAt[len(capturedAt)-1].Sub(capturedAt[0]).Seconds()
		if span <= 0 {
			m.displayFPS = maxDisplay
		} else {
			m.displayFPS = float64(len(capturedAt)-1) / span
			if m.displayFPS > maxDisplay {
				m.displayFPS = maxDisplay
			}
		}
	}

	expectedGapMS := 1000 / refreshRate
	for i := 1; i < len(capturedAt); i++ {
		gapMS := durationMS(capturedAt[i].Sub(capturedAt[i-1]))
		switch {
		case gapMS > displayJankSevereFactor*expectedGapMS:
			m.displayJankSevere++
		case gapMS > displayJankMildFactor*expectedGapMS:
			m.displayJankMild++
		}
	}
	return m
}

// Flush is the periodic frame-rate computation: it drains both buffers and
// emits one display_fps and one processing_fps record. No-op when nothing is
// buffered.
func (c *Collector) Flush() {
	c.mu.Lock()
	if len(c.samples) == 0 || len(c.capturedAt) == 0 {
		c.mu.Unlock()
		return
	}
	label := c.pageLabel
	rate := c.refreshRate
	m := computeInterval(c.samples, c.capturedAt, rate)
	c.samples = c.samples[:0]
	c.capturedAt = c.capturedAt[:0]
	c.mu.Unlock()

	displayAttrs := event.Attributes{
		"type":                   "display_fps",
		"refreshRate":            rate,
		"frameCount":             m.frameCount,
		"displayJankMildCount":   m.displayJankMild,
		"displayJankSevereCount": m.displayJankSevere,
	}
	processingAttrs := event.Attributes{
		"type":            "processing_fps",
		"frameCount":      m.frameCount,
		"avgBuildTimeMs":  m.avgBuildMS,
		"avgRasterTimeMs": m.avgRasterMS,
		"avgFrameTimeMs":  m.avgTotalMS,
		"jankBuildCount":  m.jankBuild,
		"jankRasterCount": m.jankRaster,
		"jankTotalCount":  m.jankTotal,
	}
	if label != "" {
		displayAttrs["page"] = label
		processingAttrs["page"] = label
	}

	c.store.Add(event.NewScalar(event.FrameRate, "frame_rate", m.displayFPS, displayAttrs))
	c.store.Add(event.NewScalar(event.FrameRate, "frame_rate", m.processingFPS, processingAttrs))
}

// CurrentStats reduces the current buffers without draining them.
func (c *Collector) CurrentStats() FrameStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := computeInterval(c.samples, c.capturedAt, c.refreshRate)
	return FrameStats{
		DisplayFPS:             m.displayFPS,
		ProcessingFPS:          m.processingFPS,
		AvgBuildTimeMS:         m.avgBuildMS,
		AvgRasterTimeMS:        m.avgRasterMS,
		AvgFrameTimeMS:         m.avgTotalMS,
		JankBuildCount:         m.jankBuild,
		JankRasterCount:        m.jankRaster,
		JankTotalCount:         m.jankTotal,
		DisplayJankMildCount:   m.displayJankMild,
		DisplayJankSevereCount: m.displayJankSevere,
		FrameCount:             m.frameCount,
		RefreshRate:            c.refreshRate,
		Monitoring:             c.monitoring,
		Page:                   c.pageLabel,
	}
}

func (m intervalMetrics) summaryAttributes(refreshRate float64) event.Attributes {
	return event.Attributes{
		"frameCount":             m.frameCount,
		"displayFps":             m.displayFPS,
		"processingFps":          m.processingFPS,
		"avgBuildTimeMs":         m.avgBuildMS,
		"avgRasterTimeMs":        m.avgRasterMS,
		"avgFrameTimeMs":         m.avgTotalMS,
		"jankBuildCount":         m.jankBuild,
		"jankRasterCount":        m.jankRaster,
		"jankTotalCount":         m.jankTotal,
		"displayJankMildCount":   m.displayJankMild,
		"displayJankSevereCount": m.displayJankSevere,
		"refreshRate":            refreshRate,
	}
}

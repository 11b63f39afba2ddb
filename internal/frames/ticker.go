package frames

import (
	"errors"
	"sync"
	"time"
)

// TickerScheduler drives a frame callback off a wall-clock ticker at a fixed
// rate, building each delivered timing with the Sample function. It stands in
// for a real host scheduler in the demo binary and in tests.
type TickerScheduler struct {
	Rate   float64
	Sample func() Timing

	mu   sync.Mutex
	done chan struct{}
}

func (s *TickerScheduler) Subscribe(fn func([]Timing)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return
	}
	rate := s.Rate
	if rate <= 0 {
		rate = DefaultRefreshRate
	}
	done := make(chan struct{})
	s.done = done

	go func() {
		t := time.NewTicker(time.Duration(float64(time.Second) / rate))
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				timing := Timing{}
				if s.Sample != nil {
					timing = s.Sample()
				}
				fn([]Timing{timing})
			}
		}
	}()
}

func (s *TickerScheduler) Unsubscribe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == nil {
		return
	}
	close(s.done)
	s.done = nil
}

func (s *TickerScheduler) RefreshRate() (float64, error) {
	if s.Rate <= 0 {
		return 0, errors.New("refresh rate unknown")
	}
	return s.Rate, nil
}

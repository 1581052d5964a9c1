package engine

import (
	"sync"
	"time"
)

// ManualScheduler holds at most one pending callback until the host calls Fire. The GLFW host fires it
// once per iteration of its event loop.
type ManualScheduler struct {
	pending func(now time.Duration)
}

func (s *ManualScheduler) Schedule(fn func(now time.Duration)) { s.pending = fn }

func (s *ManualScheduler) Cancel() { s.pending = nil }

func (s *ManualScheduler) Pending() bool { return s.pending != nil }

// Fire runs the pending callback, if any, and reports whether one ran.
func (s *ManualScheduler) Fire(now time.Duration) bool {
	fn := s.pending
	if fn == nil {
		return false
	}
	s.pending = nil
	fn(now)
	return true
}

// TickerScheduler delivers callbacks through an EventQueue after a fixed period, measured from the
// scheduler's creation. Cancel also drops a callback that has already been posted but not yet run.
type TickerScheduler struct {
	queue  *EventQueue
	period time.Duration
	start  time.Time

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

func NewTickerScheduler(queue *EventQueue, period time.Duration) *TickerScheduler {
	return &TickerScheduler{queue: queue, period: period, start: time.Now()}
}

func (s *TickerScheduler) Schedule(fn func(now time.Duration)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.timer = time.AfterFunc(s.period, func() {
		_ = s.queue.Post(func() {
			if !s.current(gen) {
				return
			}
			fn(time.Since(s.start))
		})
	})
}

func (s *TickerScheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *TickerScheduler) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.gen
}

package timer

import (
	"sync"
	"time"
)

// Scheduler keeps at most one pending callback per room. Scheduling replaces
// any previous timer for that room, and Cancel stops it outright.
//
// Stopping a Go timer does not guarantee the callback has not already been
// queued, so callers must additionally validate a generation token inside the
// callback before mutating anything. The scheduler only bounds the number of
// live timers; the generation check is what makes firing exactly-once.
type Scheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

// New creates an empty scheduler.
func New() *Scheduler {
	return &Scheduler{
		timers: make(map[string]*time.Timer),
	}
}

// Schedule runs fn after d, replacing any pending callback for the room.
func (s *Scheduler) Schedule(roomCode string, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[roomCode]; ok {
		t.Stop()
	}
	s.timers[roomCode] = time.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.timers, roomCode)
		s.mu.Unlock()
		fn()
	})
}

// Cancel stops the pending callback for a room, if any. Must be called before
// any manual completion of a timed phase.
func (s *Scheduler) Cancel(roomCode string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[roomCode]; ok {
		t.Stop()
		delete(s.timers, roomCode)
	}
}

// Pending reports whether a callback is scheduled for the room.
func (s *Scheduler) Pending(roomCode string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[roomCode]
	return ok
}

package cooldown

import (
	"sync"
	"time"
)

// Tracker records the last failure time per upstream dependency and
// suppresses further calls within a cooldown window. A mark is cleared
// explicitly on success and ignored once the window has elapsed.
type Tracker struct {
	mu     sync.Mutex
	window time.Duration
	marks  map[string]time.Time
}

// NewTracker creates a Tracker with the given cooldown window.
// A window <= 0 disables suppression entirely.
func NewTracker(window time.Duration) *Tracker {
	return &Tracker{
		window: window,
		marks:  make(map[string]time.Time),
	}
}

// Available reports whether the dependency is outside its cooldown
// window and may be called.
func (t *Tracker) Available(dep string) bool {
	if t.window <= 0 {
		return true
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	last, ok := t.marks[dep]
	if !ok {
		return true
	}
	if time.Since(last) >= t.window {
		delete(t.marks, dep)
		return true
	}
	return false
}

// MarkFailure records a failure for the dependency, starting (or
// restarting) its cooldown window.
func (t *Tracker) MarkFailure(dep string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.marks[dep] = time.Now()
}

// MarkSuccess clears any failure mark for the dependency.
func (t *Tracker) MarkSuccess(dep string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.marks, dep)
}

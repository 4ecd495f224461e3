package auth

import (
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// FixedWindowLimiter is a simple fixed-window request counter keyed by an
// arbitrary string (client address + path here). Like the login throttle it
// is process-local with no cross-instance coordination.
type FixedWindowLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration
	now     func() time.Time
}

// NewFixedWindowLimiter creates a limiter allowing limit requests per period
// per key.
func NewFixedWindowLimiter(limit int, period time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
		now:     time.Now,
	}
}

// Allow counts one request against the key's current window and reports
// whether it fits. When over the limit it returns the time until the window
// resets, rounded up to whole seconds.
func (l *FixedWindowLimiter) Allow(key string) (allowed bool, retryAfter time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(l.period)}
		l.windows[key] = w
	}

	w.count++
	if w.count > l.limit {
		remaining := w.resetAt.Sub(now)
		secs := (remaining + time.Second - 1) / time.Second * time.Second
		return false, secs
	}
	return true, 0
}

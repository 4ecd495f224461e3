package auth

import (
	"strings"
	"sync"
	"time"
)

const (
	// MaxLoginAttempts is the number of consecutive failures before lockout.
	MaxLoginAttempts = 5
	// LockoutDuration is how long an identifier stays locked.
	LockoutDuration = 15 * time.Minute
)

type attemptRecord struct {
	count       int
	lockedUntil time.Time
}

// LoginThrottle tracks consecutive failed login attempts per identifier and
// enforces a temporary lockout. State is process-local and in-memory: it is
// lost on restart, and multiple server instances each keep their own
// counters.
type LoginThrottle struct {
	mu       sync.Mutex
	attempts map[string]*attemptRecord
	now      func() time.Time
}

// NewLoginThrottle creates an empty throttle.
func NewLoginThrottle() *LoginThrottle {
	return &LoginThrottle{
		attempts: make(map[string]*attemptRecord),
		now:      time.Now,
	}
}

// Check reports whether the identifier may attempt a login. When locked it
// returns the remaining lockout rounded up to whole seconds. An elapsed
// lockout resets the record before returning allowed.
func (t *LoginThrottle) Check(identifier string) (allowed bool, retryAfter time.Duration) {
	key := strings.ToLower(identifier)

	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.attempts[key]
	if !ok {
		return true, 0
	}

	now := t.now()
	if !rec.lockedUntil.IsZero() {
		if now.Before(rec.lockedUntil) {
			remaining := rec.lockedUntil.Sub(now)
			// round up to whole seconds
			secs := (remaining + time.Second - 1) / time.Second * time.Second
			return false, secs
		}
		rec.count = 0
		rec.lockedUntil = time.Time{}
	}

	return true, 0
}

// Record notes the outcome of a login attempt. Success clears the record;
// the fifth consecutive failure starts the lockout.
func (t *LoginThrottle) Record(identifier string, success bool) {
	key := strings.ToLower(identifier)

	t.mu.Lock()
	defer t.mu.Unlock()

	if success {
		delete(t.attempts, key)
		return
	}

	rec, ok := t.attempts[key]
	if !ok {
		rec = &attemptRecord{}
		t.attempts[key] = rec
	}

	rec.count++
	if rec.count >= MaxLoginAttempts {
		rec.lockedUntil = t.now().Add(LockoutDuration)
	}
}

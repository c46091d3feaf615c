package service

import (
	"sync"
	"time"
)

type attemptState struct {
	count        int
	firstAttempt time.Time
	lockedUntil  time.Time
}

// stale reports whether both the window and any lockout are over at now.
func (s *attemptState) stale(now time.Time, window time.Duration) bool {
	return now.Sub(s.firstAttempt) > window && !now.Before(s.lockedUntil)
}

// lockoutOver reports whether a lockout was imposed and has ended at now.
func (s *attemptState) lockoutOver(now time.Time) bool {
	return !s.lockedUntil.IsZero() && !now.Before(s.lockedUntil)
}

// LoginThrottle counts failed logins per client key inside a sliding window
// and locks the key out once the limit is reached.
type LoginThrottle struct {
	lock        sync.Mutex
	attempts    map[string]*attemptState
	maxAttempts int
	window      time.Duration
	lockout     time.Duration
	lastSweep   time.Time
	now         func() time.Time
}

func NewLoginThrottle(maxAttempts int, window, lockout time.Duration) *LoginThrottle {
	return &LoginThrottle{
		attempts:    make(map[string]*attemptState),
		maxAttempts: maxAttempts,
		window:      window,
		lockout:     lockout,
		now:         time.Now,
	}
}

// Check returns how long key stays locked out, or zero.
func (t *LoginThrottle) Check(key string) time.Duration {
	t.lock.Lock()
	defer t.lock.Unlock()

	state, ok := t.attempts[key]
	if !ok {
		return 0
	}
	now := t.now()
	if !now.Before(state.lockedUntil) {
		return 0
	}
	return state.lockedUntil.Sub(now)
}

// Failure records a failed attempt and returns the attempts left before lockout.
// A finished lockout starts a new window.
func (t *LoginThrottle) Failure(key string) int {
	t.lock.Lock()
	defer t.lock.Unlock()

	now := t.now()
	t.sweep(now)

	state, ok := t.attempts[key]
	if !ok || now.Sub(state.firstAttempt) > t.window || state.lockoutOver(now) {
		state = &attemptState{firstAttempt: now}
		t.attempts[key] = state
	}

	state.count++
	if state.count >= t.maxAttempts {
		state.lockedUntil = now.Add(t.lockout)
		state.count = t.maxAttempts
	}

	return t.maxAttempts - state.count
}

// sweep drops stale entries, at most once per window.
func (t *LoginThrottle) sweep(now time.Time) {
	if now.Sub(t.lastSweep) < t.window {
		return
	}
	t.lastSweep = now

	for key, state := range t.attempts {
		if state.stale(now, t.window) {
			delete(t.attempts, key)
		}
	}
}

// Reset forgets the failures of key.
func (t *LoginThrottle) Reset(key string) {
	t.lock.Lock()
	defer t.lock.Unlock()

	delete(t.attempts, key)
}

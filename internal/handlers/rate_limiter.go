package handlers

import (
	"strings"
	"sync"
	"time"
)

type rateLimiter interface {
	Allow(key string) bool
}

// fixedWindowLimiter counts requests per key inside a fixed window. Checkout
// intent creation is the only throttled surface, so the keyspace stays small
// (one entry per signed-in customer) and an in-process map is enough.
type fixedWindowLimiter struct {
	limit  int
	window time.Duration
	clock  func() time.Time

	mu        sync.Mutex
	windows   map[string]*countWindow
	lastSweep time.Time
}

type countWindow struct {
	seen  int
	until time.Time
}

func newFixedWindowLimiter(limit int, window time.Duration, clock func() time.Time) rateLimiter {
	if limit <= 0 || window <= 0 {
		return nil
	}
	if clock == nil {
		clock = time.Now
	}
	return &fixedWindowLimiter{
		limit:   limit,
		window:  window,
		clock:   clock,
		windows: make(map[string]*countWindow),
	}
}

func (l *fixedWindowLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = "anonymous"
	}

	now := l.clock()
	l.mu.Lock()
	defer l.mu.Unlock()

	w := l.windows[key]
	if w == nil || now.After(w.until) {
		l.windows[key] = &countWindow{seen: 1, until: now.Add(l.window)}
		l.sweepLocked(now)
		return true
	}
	if w.seen >= l.limit {
		return false
	}
	w.seen++
	return true
}

// sweepLocked drops expired windows at most once per window interval.
func (l *fixedWindowLimiter) sweepLocked(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	l.lastSweep = now
	for key, w := range l.windows {
		if now.After(w.until) {
			delete(l.windows, key)
		}
	}
}

package ratelimit

import (
	"sync"
	"time"

	"feedpulse/internal/logger"
)

// Limiter caps collaborator calls over a rolling day so a busy reading
// session cannot burn through the AI quota. Max <= 0 means unlimited.
type Limiter struct {
	mu        sync.Mutex
	count     int
	max       int
	resetTime time.Time
}

func New(max int) *Limiter {
	return &Limiter{
		max:       max,
		resetTime: time.Now().Add(24 * time.Hour),
	}
}

// Allow records one request against the budget and reports whether it
// may proceed.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.checkReset()

	if l.max > 0 && l.count >= l.max {
		logger.Warn("AI request budget exhausted", "used", l.count, "max", l.max)
		return false
	}

	l.count++
	return true
}

// Used returns the number of requests counted in the current window.
func (l *Limiter) Used() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.checkReset()
	return l.count
}

func (l *Limiter) checkReset() {
	if time.Now().After(l.resetTime) {
		l.count = 0
		l.resetTime = time.Now().Add(24 * time.Hour)
	}
}

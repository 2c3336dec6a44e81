// Package ratelimit caps how many paid AI requests a single run may make.
package ratelimit

import (
	"errors"
	"sync"
)

// ErrLimitReached is returned by Use once the budget is spent.
var ErrLimitReached = errors.New("request limit reached")

// Limiter is a per-run request budget. A max of 0 means unlimited.
type Limiter struct {
	mu      sync.Mutex
	name    string
	max     int
	used    int
	refused int
}

// New returns a limiter for the named service.
func New(name string, max int) *Limiter {
	if max < 0 {
		max = 0
	}
	return &Limiter{name: name, max: max}
}

// Allow reports whether a request can still be made, without spending it.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.max == 0 || l.used < l.max
}

// Use spends one request.
func (l *Limiter) Use() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.max > 0 && l.used >= l.max {
		l.refused++
		return ErrLimitReached
	}
	l.used++
	return nil
}

// Stats is a snapshot of a limiter.
type Stats struct {
	Name    string
	Used    int
	Max     int
	Refused int
}

func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Stats{Name: l.name, Used: l.used, Max: l.max, Refused: l.refused}
}

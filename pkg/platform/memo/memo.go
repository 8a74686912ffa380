// Package memo provides a single-slot TTL memoization primitive.
//
// The same expire-on-read slot pattern backs both the admin role cache and
// the dashboard stats cache, so it lives here once instead of being
// duplicated per consumer.
package memo

import (
	"sync"
	"time"
)

// Clock abstracts time.Now so tests can control expiry deterministically.
type Clock func() time.Time

// Slot holds at most one value together with the time it was stored.
// A value is fresh while now - storedAt < ttl; staleness is only ever
// checked lazily on Get. There is no sliding expiry and no background
// refresh.
type Slot[T any] struct {
	mu       sync.Mutex
	value    T
	storedAt time.Time
	ttl      time.Duration
	now      Clock
}

// NewSlot creates an empty slot with the given TTL.
// A nil clock defaults to time.Now.
func NewSlot[T any](ttl time.Duration, now Clock) *Slot[T] {
	if now == nil {
		now = time.Now
	}
	return &Slot[T]{ttl: ttl, now: now}
}

// Get returns the stored value and whether it is still fresh.
// It never triggers a fetch; an expired or empty slot reports false.
func (s *Slot[T]) Get() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.storedAt.IsZero() || s.now().Sub(s.storedAt) >= s.ttl {
		var zero T
		return zero, false
	}
	return s.value, true
}

// Put overwrites the slot value and resets its timestamp.
func (s *Slot[T]) Put(value T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.value = value
	s.storedAt = s.now()
}

// Invalidate clears the slot. Safe to call repeatedly.
func (s *Slot[T]) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	s.value = zero
	s.storedAt = time.Time{}
}

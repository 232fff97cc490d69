package clock

import (
	"sync/atomic"
	"time"
)

// Source provides the block/time marker stamped onto every state change.
// Markers are monotonic: two calls never go backwards.
type Source interface {
	Now() uint64
}

// systemSource derives markers from wall-clock seconds, forced monotonic.
type systemSource struct {
	last atomic.Uint64
}

func NewSystemSource() Source {
	return &systemSource{}
}

func (s *systemSource) Now() uint64 {
	now := uint64(time.Now().Unix())
	for {
		last := s.last.Load()
		if now <= last {
			now = last + 1
		}
		if s.last.CompareAndSwap(last, now) {
			return now
		}
	}
}

// Manual is a hand-advanced source for tests and replay.
type Manual struct {
	height atomic.Uint64
}

func NewManual(start uint64) *Manual {
	m := &Manual{}
	m.height.Store(start)
	return m
}

func (m *Manual) Now() uint64 {
	return m.height.Load()
}

// Advance moves the marker forward by n.
func (m *Manual) Advance(n uint64) {
	m.height.Add(n)
}

// Package clock provides the 32-bit millisecond tick source the player is
// driven by.
package clock

import (
	"sync"
	"time"
)

// Clock returns a free-running millisecond counter. It wraps to 0 after
// math.MaxUint32.
type Clock interface {
	Now() uint32
}

// Millis counts milliseconds since it was created.
type Millis struct {
	t0 time.Time
}

func NewMillis() *Millis { return &Millis{t0: time.Now()} }

// Now truncates the elapsed milliseconds to 32 bits, so it rolls over
// after about 49.7 days like a microcontroller's millis().
func (m *Millis) Now() uint32 {
	return uint32(time.Since(m.t0).Milliseconds())
}

// Manual is a Clock that only moves when told to.
type Manual struct {
	mu  sync.Mutex
	now uint32
}

func NewManual(start uint32) *Manual { return &Manual{now: start} }

func (m *Manual) Now() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) Set(now uint32) {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}

// Advance moves the clock forward by d milliseconds, wrapping on overflow,
// and returns the new time.
func (m *Manual) Advance(d uint32) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now += d
	return m.now
}

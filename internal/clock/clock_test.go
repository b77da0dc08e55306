package clock

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualWraps(t *testing.T) {
	c := NewManual(math.MaxUint32 - 1)
	assert.Equal(t, uint32(math.MaxUint32-1), c.Now())
	assert.Equal(t, uint32(3), c.Advance(5))
	c.Set(10)
	assert.Equal(t, uint32(10), c.Now())
}

func TestMillisTruncatesTo32Bits(t *testing.T) {
	m := &Millis{t0: time.Now().Add(-(time.Duration(math.MaxUint32)+101) * time.Millisecond)}
	now := m.Now()
	assert.GreaterOrEqual(t, now, uint32(100))
	assert.Less(t, now, uint32(10000))
}

func TestMillisMovesForward(t *testing.T) {
	m := NewMillis()
	a := m.Now()
	time.Sleep(5 * time.Millisecond)
	assert.Greater(t, m.Now()-a, uint32(0))
}

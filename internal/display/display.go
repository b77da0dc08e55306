// Package display projects frames onto numbered output lines.
package display

import (
	"fmt"

	"github.com/coreman2200/funtimes-chenillard/internal/sequence"
)

// LineCount is the number of LEDs on the row.
const LineCount = 8

// OutputPort sets one logical output line. Index is in [0, Count()).
type OutputPort interface {
	SetLine(index int, on bool) error
	Count() int
}

// Lines renders a frame by writing each bit to the matching line of a port.
type Lines struct {
	port OutputPort
	n    int
}

// NewLines wraps port. The port must expose between 1 and FrameWidth lines.
func NewLines(port OutputPort) (*Lines, error) {
	n := port.Count()
	if n < 1 || n > sequence.FrameWidth {
		return nil, fmt.Errorf("port has %d lines, want 1..%d", n, sequence.FrameWidth)
	}
	return &Lines{port: port, n: n}, nil
}

// Render writes bit i of f to line i. Every line is written even if an
// earlier one fails; the first error is returned.
func (l *Lines) Render(f sequence.Frame) error {
	var first error
	for i := 0; i < l.n; i++ {
		if err := l.port.SetLine(i, f.Bit(i)); err != nil && first == nil {
			first = fmt.Errorf("line %d: %w", i, err)
		}
	}
	return first
}

// Bits returns the first n line states of f.
func Bits(f sequence.Frame, n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = f.Bit(i)
	}
	return out
}

// Multi fans a frame out to several displays.
type Multi []sequence.Display

// Render renders f on every display and returns the first error.
func (m Multi) Render(f sequence.Frame) error {
	var first error
	for _, d := range m {
		if err := d.Render(f); err != nil && first == nil {
			first = err
		}
	}
	return first
}

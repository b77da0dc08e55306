package led

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// GPIO drives one digital output pin per line.
type GPIO struct {
	pins []gpio.PinOut
}

// OpenGPIO resolves each pin name through the periph registry and drives it
// low. host.Init must have been called first.
func OpenGPIO(names []string) (*GPIO, error) {
	pins := make([]gpio.PinOut, 0, len(names))
	for i, n := range names {
		p := gpioreg.ByName(n)
		if p == nil {
			return nil, fmt.Errorf("line %d: no gpio pin named %q", i, n)
		}
		pins = append(pins, p)
	}
	return NewGPIO(pins...)
}

// NewGPIO wraps already resolved pins, line i being pins[i].
func NewGPIO(pins ...gpio.PinOut) (*GPIO, error) {
	if len(pins) == 0 {
		return nil, fmt.Errorf("no gpio pins")
	}
	g := &GPIO{pins: pins}
	for _, p := range pins {
		if err := p.Out(gpio.Low); err != nil {
			return nil, fmt.Errorf("gpio %s: %w", p, err)
		}
	}
	return g, nil
}

func (g *GPIO) Count() int { return len(g.pins) }

func (g *GPIO) SetLine(index int, on bool) error {
	if index < 0 || index >= len(g.pins) {
		return fmt.Errorf("line %d out of range [0,%d)", index, len(g.pins))
	}
	return g.pins[index].Out(gpio.Level(on))
}

func (g *GPIO) Close() error {
	var first error
	for _, p := range g.pins {
		if err := p.Out(gpio.Low); err != nil && first == nil {
			first = err
		}
		if err := p.Halt(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

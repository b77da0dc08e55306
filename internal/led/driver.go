package led

import "github.com/coreman2200/funtimes-chenillard/internal/display"

// Driver abstracts a line output sink backed by a device.
type Driver interface {
	display.OutputPort
	// Close turns every line off and releases resources.
	Close() error
}

// DefaultPins is the reference wiring: LED i on GPIO 5+i.
var DefaultPins = []string{"GPIO5", "GPIO6", "GPIO7", "GPIO8", "GPIO9", "GPIO10", "GPIO11", "GPIO12"}

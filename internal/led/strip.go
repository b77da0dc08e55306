package led

import (
	"fmt"
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/extra/devices/screen"

	"github.com/coreman2200/funtimes-chenillard/internal/sequence"
)

// DefaultStripSpeedHz clocks 3 SPI bits per WS2812 bit at 800kHz, plus margin.
const DefaultStripSpeedHz = 2500000

// Strip shows a frame on an addressable pixel strip, one pixel per line.
// It renders whole frames rather than single lines.
type Strip struct {
	drawer display.Drawer
	closer spi.PortCloser
	on     color.NRGBA
	img    *image.NRGBA
}

// ParseColor reads a "#rrggbb" colour.
func ParseColor(hex string) (color.NRGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("colour %q: %w", hex, err)
	}
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// NewStrip draws n pixels on d, lit pixels in colour on.
func NewStrip(d display.Drawer, n int, on color.NRGBA) *Strip {
	return &Strip{
		drawer: d,
		on:     on,
		img:    image.NewNRGBA(image.Rect(0, 0, n, 1)),
	}
}

// OpenStrip opens the SPI port dev ("" picks the first one) and drives an
// nrzled strip of n pixels on it.
func OpenStrip(dev string, speedHz int, n int, on color.NRGBA) (*Strip, error) {
	if speedHz <= 0 {
		speedHz = DefaultStripSpeedHz
	}
	p, err := spireg.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("open spi %q: %w", dev, err)
	}
	d, err := nrzled.NewSPI(p, &nrzled.Opts{
		NumPixels: n,
		Channels:  3,
		Freq:      physic.Frequency(speedHz) * physic.Hertz,
	})
	if err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	s := NewStrip(d, n, on)
	s.closer = p
	return s, nil
}

// ConsoleStrip prints the strip to the terminal with ANSI colours.
func ConsoleStrip(n int, on color.NRGBA) *Strip {
	return NewStrip(screen.New(n), n, on)
}

func (s *Strip) Render(f sequence.Frame) error {
	n := s.img.Bounds().Dx()
	for i := 0; i < n; i++ {
		c := color.NRGBA{A: 255}
		if f.Bit(i) {
			c = s.on
		}
		s.img.SetNRGBA(i, 0, c)
	}
	return s.drawer.Draw(s.drawer.Bounds(), s.img, image.Point{})
}

func (s *Strip) Close() error {
	err := s.drawer.Halt()
	if s.closer != nil {
		if cerr := s.closer.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

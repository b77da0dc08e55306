package app

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-chenillard/internal/clock"
	"github.com/coreman2200/funtimes-chenillard/internal/config"
	"github.com/coreman2200/funtimes-chenillard/internal/display"
	"github.com/coreman2200/funtimes-chenillard/internal/led"
	"github.com/coreman2200/funtimes-chenillard/internal/sequence"
	"github.com/coreman2200/funtimes-chenillard/internal/stream"
	"github.com/coreman2200/funtimes-chenillard/internal/ws"
)

// Core is everything a running chenillard needs.
type Core struct {
	Conductor *Conductor
	Hub       *ws.Hub
	// Sim is set when the simulator drives the lines.
	Sim *led.Sim
	// Publisher is nil unless MQTT is configured and reachable.
	Publisher *stream.Publisher
	// Driver is the line driver actually in use.
	Driver string

	closers []io.Closer
}

// InitCore builds the playback stack described by cfg. Hardware that
// cannot be opened is replaced by the simulator; an invalid playlist is an
// error.
func InitCore(cfg *config.Config, c clock.Clock, l zerolog.Logger) (*Core, error) {
	pl, err := cfg.BuildPlaylist()
	if err != nil {
		return nil, fmt.Errorf("playlist: %w", err)
	}

	core := &Core{}
	lines, err := core.openLines(cfg, l)
	if err != nil {
		return nil, err
	}

	// 1) the LED row first, previews after it
	sinks := display.Multi{lines}

	core.Hub = ws.NewHub(len(cfg.Pins), l.With().Str("sink", "ws").Logger())
	core.closers = append(core.closers, core.Hub)
	sinks = append(sinks, core.Hub)

	// 2) optional MQTT mirror
	if cfg.MQTT.URL != "" {
		client, err := stream.Dial(cfg.MQTT)
		if err != nil {
			l.Warn().Err(err).Str("url", cfg.MQTT.URL).Msg("mqtt unavailable, not publishing")
		} else {
			core.Publisher = stream.NewPublisher(client, cfg.MQTT.Topic, l.With().Str("topic", cfg.MQTT.Topic).Logger())
			core.closers = append(core.closers, core.Publisher)
			sinks = append(sinks, core.Publisher)
		}
	}

	// 3) conductor
	poll := time.Duration(cfg.PollMs) * time.Millisecond
	core.Conductor, err = NewConductor(pl, sinks, c, poll, len(cfg.Pins), l)
	if err != nil {
		_ = core.Close()
		return nil, err
	}
	l.Info().
		Str("driver", core.Driver).
		Int("lines", len(cfg.Pins)).
		Int("animations", pl.Len()).
		Bool("mqtt", core.Publisher != nil).
		Msg("core ready")
	return core, nil
}

func (c *Core) openLines(cfg *config.Config, l zerolog.Logger) (sequence.Display, error) {
	n := len(cfg.Pins)
	switch cfg.Driver {
	case "gpio":
		g, err := led.OpenGPIO(cfg.Pins)
		if err == nil {
			d, err := display.NewLines(g)
			if err != nil {
				_ = g.Close()
				return nil, err
			}
			c.Driver = "gpio"
			c.closers = append(c.closers, g)
			return d, nil
		}
		l.Warn().Err(err).Str("driver", "gpio").Msg("falling back to sim")
	case "strip":
		on, err := led.ParseColor(cfg.Strip.Color)
		if err != nil {
			return nil, err
		}
		var s *led.Strip
		if cfg.Strip.Dev == "console" {
			s = led.ConsoleStrip(n, on)
		} else {
			s, err = led.OpenStrip(cfg.Strip.Dev, cfg.Strip.SpeedHz, n, on)
		}
		if err == nil {
			c.Driver = "strip"
			c.closers = append(c.closers, s)
			return s, nil
		}
		l.Warn().Err(err).Str("driver", "strip").Msg("falling back to sim")
	}

	c.Sim = led.NewSim(n, l.With().Str("driver", "sim").Logger())
	c.Driver = "sim"
	c.closers = append(c.closers, c.Sim)
	return display.NewLines(c.Sim)
}

// Close releases the sinks in reverse order of creation and returns the
// first error.
func (c *Core) Close() error {
	var first error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	c.closers = nil
	return first
}

package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-chenillard/internal/clock"
	"github.com/coreman2200/funtimes-chenillard/internal/sequence"
)

// ErrBusy is returned by Jump when too many requests are pending.
var ErrBusy = errors.New("control queue full")

// Status is a snapshot of playback, safe to hand to other goroutines.
type Status struct {
	State     sequence.State     `json:"state"`
	Animation sequence.Animation `json:"animation"`
	Frame     sequence.Frame     `json:"frame"`
	Lines     []bool             `json:"lines"`
	Rendered  uint64             `json:"rendered"`
	Errors    uint64             `json:"errors"`
	LastError string             `json:"lastError,omitempty"`
	Uptime    float64            `json:"uptimeS"`
}

// Conductor owns the Player and is the only goroutine that touches it.
// Other goroutines talk to it through Jump and Status.
type Conductor struct {
	player *sequence.Player
	clock  clock.Clock
	poll   time.Duration
	jumps  chan int
	log    zerolog.Logger
	start  time.Time

	// frame rendered by the current Tick, owned by the loop goroutine
	frame    sequence.Frame
	rendered bool

	mu     sync.RWMutex
	status Status
}

// NewConductor builds a Player over pl rendering to d, starting at the
// clock's current time. poll is the driving loop period and lines the
// number of LEDs reported in Status.
func NewConductor(pl *sequence.Playlist, d sequence.Display, c clock.Clock, poll time.Duration, lines int, l zerolog.Logger) (*Conductor, error) {
	if poll <= 0 {
		poll = time.Millisecond
	}
	if lines < 1 || lines > sequence.FrameWidth {
		lines = sequence.FrameWidth
	}
	cd := &Conductor{
		clock: c,
		poll:  poll,
		jumps: make(chan int, 8),
		log:   l,
		start: time.Now(),
	}
	p, err := sequence.NewPlayer(pl, d, c.Now(), sequence.Hooks{OnRender: cd.onRender})
	if err != nil {
		return nil, err
	}
	p.SetLogger(l)
	cd.player = p
	cd.status.Lines = make([]bool, lines)
	cd.publish()
	return cd, nil
}

// Playlist returns the playlist being played. It is immutable.
func (c *Conductor) Playlist() *sequence.Playlist { return c.player.Playlist() }

// Jump asks the loop to restart playback at animation index.
func (c *Conductor) Jump(index int) error {
	if n := c.Playlist().Len(); index < 0 || index >= n {
		return fmt.Errorf("%w: %d not in [0,%d)", sequence.ErrIndexRange, index, n)
	}
	select {
	case c.jumps <- index:
		return nil
	default:
		return ErrBusy
	}
}

// Status returns the latest snapshot.
func (c *Conductor) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.status
	s.Lines = append([]bool(nil), c.status.Lines...)
	s.Uptime = time.Since(c.start).Seconds()
	return s
}

// Run polls the clock every poll period until ctx is done.
func (c *Conductor) Run(ctx context.Context) {
	ticker := time.NewTicker(c.poll)
	defer ticker.Stop()
	c.log.Info().Dur("poll", c.poll).Int("animations", c.Playlist().Len()).Msg("playback started")
	for {
		select {
		case <-ctx.Done():
			c.log.Info().Msg("playback stopped")
			return
		case <-ticker.C:
			c.Step()
		}
	}
}

// Step applies pending jumps and ticks the player once.
func (c *Conductor) Step() {
	for {
		select {
		case idx := <-c.jumps:
			if err := c.player.Start(idx); err != nil {
				c.log.Warn().Err(err).Int("animation", idx).Msg("jump rejected")
				continue
			}
			c.log.Info().Int("animation", idx).Msg("jumped")
			c.publish()
		default:
			c.tick()
			return
		}
	}
}

func (c *Conductor) tick() {
	c.rendered = false
	rendered, err := c.player.Tick(c.clock.Now())
	if err != nil {
		c.log.Warn().Err(err).Msg("render failed")
		c.mu.Lock()
		c.status.Errors++
		c.status.LastError = err.Error()
		c.mu.Unlock()
	}
	if rendered {
		c.publish()
	}
}

// onRender runs on the loop goroutine, inside Tick, before the cursor moves.
func (c *Conductor) onRender(f sequence.Frame, _ sequence.State) {
	c.frame = f
	c.rendered = true
}

// publish copies the cursor, and the frame rendered by this tick if any, to
// the snapshot in one critical section.
func (c *Conductor) publish() {
	st := c.player.State()
	a := c.player.Current()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status.State = st
	c.status.Animation = a
	if c.rendered {
		c.rendered = false
		c.status.Frame = c.frame
		c.status.Rendered++
		for i := range c.status.Lines {
			c.status.Lines[i] = c.frame.Bit(i)
		}
	}
}

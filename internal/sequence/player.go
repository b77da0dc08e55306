package sequence

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Player walks a Playlist frame by frame. It is driven entirely by Tick and
// never blocks; all of its state is owned by the goroutine calling it.
type Player struct {
	playlist *Playlist
	display  Display
	state    State
	hooks    Hooks
	log      zerolog.Logger
}

// NewPlayer returns a Player positioned on animation 0 whose last render
// time is now.
func NewPlayer(pl *Playlist, d Display, now uint32, h Hooks) (*Player, error) {
	if pl == nil || pl.Len() == 0 {
		return nil, ErrEmptyPlaylist
	}
	if d == nil {
		return nil, errors.New("player needs a display")
	}
	p := &Player{
		playlist: pl,
		display:  d,
		hooks:    h,
		log:      zerolog.Nop(),
	}
	p.start(0)
	p.state.LastRenderMs = now
	return p, nil
}

// SetLogger replaces the no-op logger.
func (p *Player) SetLogger(l zerolog.Logger) { p.log = l }

// Playlist returns the playlist being played.
func (p *Player) Playlist() *Playlist { return p.playlist }

// State returns a copy of the playback cursor.
func (p *Player) State() State { return p.state }

// Current returns the active animation.
func (p *Player) Current() Animation { return p.playlist.animations[p.state.Animation] }

// Start rewinds playback to the first frame of animation index. The last
// render time is kept, so the first frame of the new animation is due one
// frame delay after the previous render.
func (p *Player) Start(index int) error {
	if index < 0 || index >= p.playlist.Len() {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrIndexRange, index, p.playlist.Len())
	}
	p.start(index)
	return nil
}

func (p *Player) start(index int) {
	p.state.Animation = index
	p.state.Frame = 0
	p.state.Repeat = 0
	a := p.playlist.animations[index]
	p.log.Debug().
		Int("animation", index).
		Str("name", a.Name).
		Int("frames", a.Frames).
		Uint32("delay_ms", a.DelayMs).
		Int("repeat", a.Repeat).
		Msg("animation started")
	if p.hooks.OnStart != nil {
		p.hooks.OnStart(index, a)
	}
}

// Elapsed returns the milliseconds since the last render. The subtraction
// wraps with the 32-bit clock.
func (p *Player) Elapsed(now uint32) uint32 {
	return now - p.state.LastRenderMs
}

// Tick renders the next frame when more than the active animation's frame
// delay has passed since the last render. It reports whether a frame was
// rendered; a display error is returned but playback still advances.
func (p *Player) Tick(now uint32) (bool, error) {
	if p.Elapsed(now) <= p.Current().DelayMs {
		return false, nil
	}
	err := p.advance()
	p.state.LastRenderMs = now
	return true, err
}

// advance renders the frame under the cursor and then moves the cursor:
// next frame, else next repeat, else next animation (wrapping to 0).
func (p *Player) advance() error {
	a := p.playlist.animations[p.state.Animation]
	f := p.playlist.Frame(a, p.state.Frame)

	var err error
	if rerr := p.display.Render(f); rerr != nil {
		err = fmt.Errorf("render frame %s: %w", f, rerr)
	}
	if p.hooks.OnRender != nil {
		p.hooks.OnRender(f, p.state)
	}

	switch {
	case p.state.Frame+1 < a.Frames:
		p.state.Frame++
	case p.state.Repeat+1 < a.Repeat:
		p.state.Frame = 0
		p.state.Repeat++
	default:
		p.start((p.state.Animation + 1) % p.playlist.Len())
	}
	return err
}

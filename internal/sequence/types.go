package sequence

import (
	"errors"
	"fmt"
)

// FrameWidth is the number of output lines a Frame can address.
const FrameWidth = 8

// Frame is one 8-bit pattern; bit i holds the state of output line i.
type Frame uint8

// Bit reports whether line i is lit in f.
func (f Frame) Bit(i int) bool {
	return (f>>uint(i))&1 == 1
}

// String renders f with line 0 first, '*' for lit and '.' for dark.
func (f Frame) String() string {
	buf := make([]byte, FrameWidth)
	for i := range buf {
		if f.Bit(i) {
			buf[i] = '*'
		} else {
			buf[i] = '.'
		}
	}
	return string(buf)
}

// Animation selects the frames [Start, Start+Frames) of the shared frame
// table, shows each one for DelayMs and plays the whole run Repeat times.
type Animation struct {
	Name    string `yaml:"name,omitempty" json:"name,omitempty"`
	Start   int    `yaml:"start" json:"start"`
	Frames  int    `yaml:"frames" json:"frames"`
	DelayMs uint32 `yaml:"delay_ms" json:"delayMs"`
	Repeat  int    `yaml:"repeat" json:"repeat"`
}

var (
	ErrEmptyPlaylist  = errors.New("playlist has no animations")
	ErrEmptyAnimation = errors.New("animation has no frames")
	ErrZeroRepeat     = errors.New("animation repeat count must be at least 1")
	ErrFrameRange     = errors.New("animation frames out of range")
	ErrIndexRange     = errors.New("animation index out of range")
)

// Playlist is the immutable, cyclic list of animations together with the
// frame table they index into.
type Playlist struct {
	frames     []Frame
	animations []Animation
}

// NewPlaylist copies frames and animations and checks every animation
// against the frame table. A playlist that fails here must not be played.
func NewPlaylist(frames []Frame, animations []Animation) (*Playlist, error) {
	if len(animations) == 0 {
		return nil, ErrEmptyPlaylist
	}
	for i, a := range animations {
		if err := a.check(len(frames)); err != nil {
			return nil, fmt.Errorf("animation %d: %w", i, err)
		}
	}
	p := &Playlist{
		frames:     make([]Frame, len(frames)),
		animations: make([]Animation, len(animations)),
	}
	copy(p.frames, frames)
	copy(p.animations, animations)
	return p, nil
}

func (a Animation) check(n int) error {
	switch {
	case a.Frames < 1:
		return ErrEmptyAnimation
	case a.Repeat < 1:
		return ErrZeroRepeat
	case a.Start < 0 || a.Start+a.Frames > n:
		return fmt.Errorf("%w: [%d,%d) of %d frames", ErrFrameRange, a.Start, a.Start+a.Frames, n)
	}
	return nil
}

// Len returns the number of animations.
func (p *Playlist) Len() int { return len(p.animations) }

// Animation returns the animation at index i. i must be in [0, Len()).
func (p *Playlist) Animation(i int) Animation { return p.animations[i] }

// Frame returns frame i of animation a.
func (p *Playlist) Frame(a Animation, i int) Frame { return p.frames[a.Start+i] }

// Animations returns a copy of the animation table.
func (p *Playlist) Animations() []Animation {
	out := make([]Animation, len(p.animations))
	copy(out, p.animations)
	return out
}

// Frames returns a copy of the shared frame table.
func (p *Playlist) Frames() []Frame {
	out := make([]Frame, len(p.frames))
	copy(out, p.frames)
	return out
}

// State is the playback cursor. The zero value points at the first frame
// of the first animation.
type State struct {
	Animation    int    `json:"animation"`
	Frame        int    `json:"frame"`
	Repeat       int    `json:"repeat"`
	LastRenderMs uint32 `json:"lastRenderMs"`
}

// Display renders a frame onto output lines.
type Display interface {
	Render(f Frame) error
}

// DisplayFunc adapts a plain function to Display.
type DisplayFunc func(f Frame) error

func (fn DisplayFunc) Render(f Frame) error { return fn(f) }

// Hooks are optional observers called by the Player.
type Hooks struct {
	// OnRender is called after each rendered frame with the state the
	// frame was rendered from.
	OnRender func(f Frame, s State)
	// OnStart is called whenever an animation is (re)started.
	OnStart func(index int, a Animation)
}

package sequence

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder keeps every frame it is asked to render.
type recorder struct {
	frames []Frame
}

func (r *recorder) Render(f Frame) error {
	r.frames = append(r.frames, f)
	return nil
}

func mustPlaylist(t *testing.T, frames []Frame, anims []Animation) *Playlist {
	t.Helper()
	pl, err := NewPlaylist(frames, anims)
	require.NoError(t, err)
	return pl
}

func TestSingleAnimationRepeatsThenWraps(t *testing.T) {
	pl := mustPlaylist(t,
		[]Frame{0b001, 0b010, 0b100},
		[]Animation{{Start: 0, Frames: 3, DelayMs: 40, Repeat: 2}},
	)
	rec := &recorder{}
	p, err := NewPlayer(pl, rec, 0, Hooks{})
	require.NoError(t, err)

	steps := []struct {
		now    uint32
		render Frame
		want   State
	}{
		{41, 0b001, State{Frame: 1, Repeat: 0, LastRenderMs: 41}},
		{82, 0b010, State{Frame: 2, Repeat: 0, LastRenderMs: 82}},
		{123, 0b100, State{Frame: 0, Repeat: 1, LastRenderMs: 123}},
		{164, 0b001, State{Frame: 1, Repeat: 1, LastRenderMs: 164}},
		{205, 0b010, State{Frame: 2, Repeat: 1, LastRenderMs: 205}},
		{246, 0b100, State{Animation: 0, Frame: 0, Repeat: 0, LastRenderMs: 246}},
	}
	for i, s := range steps {
		rendered, err := p.Tick(s.now)
		require.NoError(t, err)
		require.True(t, rendered, "step %d", i)
		assert.Equal(t, s.render, rec.frames[len(rec.frames)-1], "step %d", i)
		assert.Equal(t, s.want, p.State(), "step %d", i)
	}
	assert.Len(t, rec.frames, len(steps))
}

func TestAnimationChainsWithoutRepeat(t *testing.T) {
	pl := mustPlaylist(t,
		[]Frame{0xA, 0xB, 0xC},
		[]Animation{
			{Start: 0, Frames: 2, DelayMs: 10, Repeat: 1},
			{Start: 2, Frames: 1, DelayMs: 10, Repeat: 1},
		},
	)
	rec := &recorder{}
	p, err := NewPlayer(pl, rec, 0, Hooks{})
	require.NoError(t, err)

	wantAnim := []int{0, 1, 0, 0}
	for i, now := range []uint32{11, 22, 33, 44} {
		_, err := p.Tick(now)
		require.NoError(t, err)
		assert.Equal(t, wantAnim[i], p.State().Animation, "after tick %d", i)
		assert.Zero(t, p.State().Repeat, "after tick %d", i)
	}
	assert.Equal(t, []Frame{0xA, 0xB, 0xC, 0xA}, rec.frames)
}

func TestTickBoundaryIsStrict(t *testing.T) {
	pl := mustPlaylist(t, []Frame{1, 2}, []Animation{{Start: 0, Frames: 2, DelayMs: 40, Repeat: 1}})
	rec := &recorder{}
	p, err := NewPlayer(pl, rec, 0, Hooks{})
	require.NoError(t, err)

	rendered, err := p.Tick(40)
	require.NoError(t, err)
	assert.False(t, rendered)
	assert.Empty(t, rec.frames)
	assert.Equal(t, uint32(0), p.State().LastRenderMs)

	rendered, err = p.Tick(41)
	require.NoError(t, err)
	assert.True(t, rendered)
	assert.Equal(t, []Frame{1}, rec.frames)
}

func TestTickAcrossClockWraparound(t *testing.T) {
	pl := mustPlaylist(t, []Frame{7}, []Animation{{Start: 0, Frames: 1, DelayMs: 40, Repeat: 1}})
	rec := &recorder{}
	start := uint32(math.MaxUint32 - 10)
	p, err := NewPlayer(pl, rec, start, Hooks{})
	require.NoError(t, err)

	assert.Equal(t, uint32(40), p.Elapsed(29))

	rendered, err := p.Tick(20)
	require.NoError(t, err)
	assert.False(t, rendered, "31ms elapsed across rollover")

	rendered, err = p.Tick(29)
	require.NoError(t, err)
	assert.False(t, rendered, "exactly one delay elapsed")

	rendered, err = p.Tick(30)
	require.NoError(t, err)
	assert.True(t, rendered, "41ms elapsed across rollover")
	assert.Equal(t, uint32(30), p.State().LastRenderMs)
	assert.Equal(t, []Frame{7}, rec.frames)
}

func TestTickUsesActiveAnimationDelay(t *testing.T) {
	pl := mustPlaylist(t,
		[]Frame{1, 2},
		[]Animation{
			{Start: 0, Frames: 1, DelayMs: 10, Repeat: 1},
			{Start: 1, Frames: 1, DelayMs: 100, Repeat: 1},
		},
	)
	rec := &recorder{}
	p, err := NewPlayer(pl, rec, 0, Hooks{})
	require.NoError(t, err)

	rendered, _ := p.Tick(11)
	require.True(t, rendered)
	require.Equal(t, 1, p.State().Animation)

	rendered, _ = p.Tick(11 + 11)
	assert.False(t, rendered, "second animation waits for its own delay")
	rendered, _ = p.Tick(11 + 100)
	assert.False(t, rendered)
	rendered, _ = p.Tick(11 + 101)
	assert.True(t, rendered)
	assert.Equal(t, []Frame{1, 2}, rec.frames)
}

func TestOneFramePerTick(t *testing.T) {
	pl := mustPlaylist(t, []Frame{1, 2, 3}, []Animation{{Start: 0, Frames: 3, DelayMs: 5, Repeat: 1}})
	rec := &recorder{}
	p, err := NewPlayer(pl, rec, 0, Hooks{})
	require.NoError(t, err)

	// Many delays have passed, but a single tick renders a single frame.
	rendered, err := p.Tick(1000)
	require.NoError(t, err)
	assert.True(t, rendered)
	assert.Equal(t, []Frame{1}, rec.frames)

	rendered, _ = p.Tick(1000)
	assert.False(t, rendered)
	assert.Len(t, rec.frames, 1)
}

func TestStartKeepsLastRenderTime(t *testing.T) {
	pl := mustPlaylist(t,
		[]Frame{1, 2, 3},
		[]Animation{
			{Start: 0, Frames: 2, DelayMs: 10, Repeat: 3},
			{Start: 2, Frames: 1, DelayMs: 10, Repeat: 1},
		},
	)
	rec := &recorder{}
	p, err := NewPlayer(pl, rec, 0, Hooks{})
	require.NoError(t, err)

	_, err = p.Tick(11)
	require.NoError(t, err)
	require.Equal(t, State{Frame: 1, LastRenderMs: 11}, p.State())

	require.NoError(t, p.Start(1))
	assert.Equal(t, State{Animation: 1, Frame: 0, Repeat: 0, LastRenderMs: 11}, p.State())

	// The new animation is due one delay after the previous render.
	rendered, _ := p.Tick(21)
	assert.False(t, rendered)
	rendered, _ = p.Tick(22)
	assert.True(t, rendered)
	assert.Equal(t, []Frame{1, 3}, rec.frames)
}

func TestStartRejectsOutOfRange(t *testing.T) {
	pl := mustPlaylist(t, []Frame{1}, []Animation{{Start: 0, Frames: 1, DelayMs: 10, Repeat: 1}})
	p, err := NewPlayer(pl, &recorder{}, 5, Hooks{})
	require.NoError(t, err)

	for _, idx := range []int{-1, 1, 42} {
		err := p.Start(idx)
		assert.ErrorIs(t, err, ErrIndexRange, "index %d", idx)
	}
	assert.Equal(t, State{LastRenderMs: 5}, p.State())
}

func TestDisplayErrorStillAdvances(t *testing.T) {
	boom := errors.New("boom")
	pl := mustPlaylist(t, []Frame{1, 2}, []Animation{{Start: 0, Frames: 2, DelayMs: 1, Repeat: 1}})
	p, err := NewPlayer(pl, DisplayFunc(func(Frame) error { return boom }), 0, Hooks{})
	require.NoError(t, err)

	rendered, err := p.Tick(2)
	assert.True(t, rendered)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, p.State().Frame)
	assert.Equal(t, uint32(2), p.State().LastRenderMs)
}

func TestHooksSeePreTransitionState(t *testing.T) {
	pl := mustPlaylist(t,
		[]Frame{1, 2},
		[]Animation{
			{Start: 0, Frames: 1, DelayMs: 1, Repeat: 2},
			{Start: 1, Frames: 1, DelayMs: 1, Repeat: 1},
		},
	)
	var renders []State
	var starts []int
	h := Hooks{
		OnRender: func(f Frame, s State) { renders = append(renders, s) },
		OnStart:  func(i int, a Animation) { starts = append(starts, i) },
	}
	p, err := NewPlayer(pl, &recorder{}, 0, h)
	require.NoError(t, err)

	for now := uint32(2); now <= 8; now += 2 {
		_, err := p.Tick(now)
		require.NoError(t, err)
	}
	assert.Equal(t, []State{
		{Animation: 0, Frame: 0, Repeat: 0, LastRenderMs: 0},
		{Animation: 0, Frame: 0, Repeat: 1, LastRenderMs: 2},
		{Animation: 1, Frame: 0, Repeat: 0, LastRenderMs: 4},
		{Animation: 0, Frame: 0, Repeat: 0, LastRenderMs: 6},
	}, renders)
	assert.Equal(t, []int{0, 1, 0}, starts)
}

func TestBuiltinCycleNeverStalls(t *testing.T) {
	pl, err := Builtin(DefaultPlaylist)
	require.NoError(t, err)

	rec := &recorder{}
	p, err := NewPlayer(pl, rec, 0, Hooks{})
	require.NoError(t, err)

	cycle := 0
	for _, a := range pl.Animations() {
		cycle += a.Frames * a.Repeat
	}
	require.Equal(t, 347, cycle)

	now := uint32(0)
	prev := p.State()
	for i := 0; i < cycle; i++ {
		now += p.Current().DelayMs + 1
		rendered, err := p.Tick(now)
		require.NoError(t, err)
		require.True(t, rendered)

		cur := p.State()
		require.NotEqual(t,
			[3]int{prev.Animation, prev.Frame, prev.Repeat},
			[3]int{cur.Animation, cur.Frame, cur.Repeat},
			"step %d stalled", i)
		a := pl.Animation(cur.Animation)
		require.True(t, cur.Frame >= 0 && cur.Frame < a.Frames)
		require.True(t, cur.Repeat >= 0 && cur.Repeat < a.Repeat)
		prev = cur
	}

	assert.Equal(t, State{LastRenderMs: now}, p.State(), "cycle wraps to animation 0")
	assert.Equal(t, pl.Frames()[:14], rec.frames[:14])
	assert.Equal(t, pl.Frames()[52:], rec.frames[cycle-37:])
}

func TestNewPlayerValidation(t *testing.T) {
	pl := mustPlaylist(t, []Frame{1}, []Animation{{Start: 0, Frames: 1, DelayMs: 1, Repeat: 1}})

	_, err := NewPlayer(nil, &recorder{}, 0, Hooks{})
	assert.ErrorIs(t, err, ErrEmptyPlaylist)

	_, err = NewPlayer(pl, nil, 0, Hooks{})
	assert.Error(t, err)
}

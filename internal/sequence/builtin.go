package sequence

import (
	"fmt"
	"sort"
)

// chenillardFrames holds every frame of the default show, animation after
// animation. Bit 0 is the first LED of the row.
var chenillardFrames = []Frame{
	// scan: 14 frames
	0b10000000,
	0b01000000,
	0b00100000,
	0b00010000,
	0b00001000,
	0b00000100,
	0b00000010,
	0b00000001,
	0b00000010,
	0b00000100,
	0b00001000,
	0b00010000,
	0b00100000,
	0b01000000,

	// converge: 6 frames
	0b10000001,
	0b01000010,
	0b00100100,
	0b00011000,
	0b00100100,
	0b01000010,

	// triple: 10 frames
	0b11100000,
	0b01110000,
	0b00111000,
	0b00011100,
	0b00001110,
	0b00000111,
	0b00001110,
	0b00011100,
	0b00111000,
	0b01110000,

	// pulse: 8 frames
	0b00000000,
	0b00011000,
	0b00111100,
	0b01111110,
	0b11111111,
	0b01111110,
	0b00111100,
	0b00011000,

	// alternate: 2 frames
	0b01010101,
	0b10101010,

	// chase: 4 frames
	0b00010001,
	0b00100010,
	0b01000100,
	0b10001000,

	// sweep: 8 frames
	0b00000001,
	0b00000010,
	0b00000100,
	0b00001000,
	0b00010000,
	0b00100000,
	0b01000000,
	0b10000000,

	// bounce: 37 frames
	0b00000000,
	0b00010000,
	0b00001000,
	0b00010000,
	0b00100000,
	0b00010000,
	0b00001000,
	0b00000100,
	0b00001000,
	0b00010000,
	0b00100000,
	0b01000000,
	0b00100000,
	0b00010000,
	0b00001000,
	0b00000100,
	0b00000010,
	0b00000100,
	0b00001000,
	0b00010000,
	0b00100000,
	0b01000000,
	0b10000000,
	0b01000000,
	0b00100000,
	0b00010000,
	0b00001000,
	0b00000100,
	0b00000010,
	0b00000001,
	0b00000010,
	0b00000100,
	0b00001000,
	0b00010000,
	0b00100000,
	0b01000000,
	0b10000000,
}

var chenillardAnimations = []Animation{
	{Name: "scan", Start: 0, Frames: 14, DelayMs: 40, Repeat: 4},
	{Name: "converge", Start: 14, Frames: 6, DelayMs: 50, Repeat: 8},
	{Name: "triple", Start: 20, Frames: 10, DelayMs: 50, Repeat: 5},
	{Name: "pulse", Start: 30, Frames: 8, DelayMs: 50, Repeat: 6},
	{Name: "alternate", Start: 38, Frames: 2, DelayMs: 120, Repeat: 10},
	{Name: "chase", Start: 40, Frames: 4, DelayMs: 80, Repeat: 8},
	{Name: "sweep", Start: 44, Frames: 8, DelayMs: 60, Repeat: 7},
	{Name: "bounce", Start: 52, Frames: 37, DelayMs: 40, Repeat: 1},
}

// simpleFrames is a lone three-LED sweep, shown every 100ms.
var simpleFrames = []Frame{
	0b11100000,
	0b01110000,
	0b00111000,
	0b00011100,
	0b00001110,
	0b00000111,
	0b00001110,
	0b00011100,
	0b00111000,
	0b01110000,
}

var simpleAnimations = []Animation{
	{Name: "sweep", Start: 0, Frames: 10, DelayMs: 100, Repeat: 1},
}

var builtins = map[string]struct {
	frames     []Frame
	animations []Animation
}{
	"chenillard": {chenillardFrames, chenillardAnimations},
	"simple":     {simpleFrames, simpleAnimations},
}

// DefaultPlaylist names the playlist used when none is configured.
const DefaultPlaylist = "chenillard"

// Builtin returns the compiled-in playlist called name.
func Builtin(name string) (*Playlist, error) {
	b, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown playlist %q (have %v)", name, BuiltinNames())
	}
	return NewPlaylist(b.frames, b.animations)
}

// BuiltinNames lists the compiled-in playlists in sorted order.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for k := range builtins {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

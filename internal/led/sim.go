package led

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Sim keeps line states in memory. Useful without hardware and in tests.
type Sim struct {
	mu     sync.Mutex
	lines  []bool
	writes uint64
	log    zerolog.Logger
}

func NewSim(n int, l zerolog.Logger) *Sim {
	return &Sim{lines: make([]bool, n), log: l}
}

func (s *Sim) Count() int { return len(s.lines) }

func (s *Sim) SetLine(index int, on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.lines) {
		return fmt.Errorf("line %d out of range [0,%d)", index, len(s.lines))
	}
	s.lines[index] = on
	s.writes++
	s.log.Trace().Int("line", index).Bool("on", on).Msg("sim write")
	return nil
}

// Levels returns a copy of the current line states.
func (s *Sim) Levels() []bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]bool, len(s.lines))
	copy(out, s.lines)
	return out
}

// Writes returns how many line writes have been made.
func (s *Sim) Writes() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// String draws the row, line 0 first: '*' lit, '.' dark.
func (s *Sim) String() string {
	var b strings.Builder
	for _, on := range s.Levels() {
		if on {
			b.WriteByte('*')
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}

func (s *Sim) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lines {
		s.lines[i] = false
	}
	return nil
}

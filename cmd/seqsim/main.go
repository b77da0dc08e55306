package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-chenillard/internal/clock"
	"github.com/coreman2200/funtimes-chenillard/internal/config"
	"github.com/coreman2200/funtimes-chenillard/internal/display"
	"github.com/coreman2200/funtimes-chenillard/internal/led"
	"github.com/coreman2200/funtimes-chenillard/internal/sequence"
)

func main() {
	var (
		configPath string
		playlist   string
		start      int
		stepMs     uint
		durationMs uint
		lines      int
	)
	flag.StringVar(&configPath, "config", "", "YAML config with a custom playlist (optional)")
	flag.StringVar(&playlist, "playlist", sequence.DefaultPlaylist, "built-in playlist when no config is given")
	flag.IntVar(&start, "start", 0, "animation to start from")
	flag.UintVar(&stepMs, "step-ms", 1, "simulated milliseconds per poll")
	flag.UintVar(&durationMs, "duration-ms", 10000, "simulated run length (ms)")
	flag.IntVar(&lines, "lines", display.LineCount, "number of LEDs")
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	cfg := config.Default()
	cfg.Playlist = playlist
	if configPath != "" {
		c, err := config.Load(configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", configPath).Msg("config")
		}
		cfg = c
	}
	pl, err := cfg.BuildPlaylist()
	if err != nil {
		log.Fatal().Err(err).Msg("playlist")
	}
	if stepMs == 0 || stepMs > math.MaxUint32 {
		log.Fatal().Uint("step_ms", stepMs).Msg("-step-ms must be in 1..4294967295")
	}
	if durationMs > math.MaxUint32 {
		log.Fatal().Uint("duration_ms", durationMs).Msg("-duration-ms must fit the 32-bit clock")
	}

	sim := led.NewSim(lines, zerolog.Nop())
	out, err := display.NewLines(sim)
	if err != nil {
		log.Fatal().Err(err).Msg("display")
	}

	clk := clock.NewManual(0)
	h := sequence.Hooks{
		OnStart: func(i int, a sequence.Animation) {
			fmt.Printf("# animation %d %q: %d frames x%d every %dms\n", i, a.Name, a.Frames, a.Repeat, a.DelayMs)
		},
	}
	player, err := sequence.NewPlayer(pl, out, clk.Now(), h)
	if err != nil {
		log.Fatal().Err(err).Msg("player")
	}
	if start != 0 {
		if err := player.Start(start); err != nil {
			log.Fatal().Err(err).Msg("start")
		}
	}

	rendered := simulate(player, clk, uint32(stepMs), uint64(durationMs), func(now uint32) {
		fmt.Printf("%8d  %s\n", now, sim)
	})
	log.Info().Int("frames", rendered).Uint("ms", durationMs).Msg("simulation done")
}

// simulate advances clk by step until duration milliseconds have elapsed,
// ticking p after each step and calling emit for every rendered frame.
// Elapsed time is counted apart from the clock, which may wrap.
func simulate(p *sequence.Player, clk *clock.Manual, step uint32, duration uint64, emit func(now uint32)) int {
	var rendered int
	for elapsed := uint64(0); elapsed < duration; elapsed += uint64(step) {
		now := clk.Advance(step)
		ok, err := p.Tick(now)
		if err != nil {
			log.Warn().Err(err).Uint32("t_ms", now).Msg("render")
		}
		if ok {
			rendered++
			emit(now)
		}
	}
	return rendered
}

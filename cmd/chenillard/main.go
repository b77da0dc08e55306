package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/host/v3"

	"github.com/coreman2200/funtimes-chenillard/internal/api"
	"github.com/coreman2200/funtimes-chenillard/internal/app"
	"github.com/coreman2200/funtimes-chenillard/internal/clock"
	"github.com/coreman2200/funtimes-chenillard/internal/config"
)

func main() {
	var (
		configPath = flag.String("config", "chenillard.yaml", "path to the YAML config")
		driver     = flag.String("driver", "sim", "line driver: gpio | strip | sim")
		playlist   = flag.String("playlist", "chenillard", "built-in playlist: chenillard | simple")
		addr       = flag.String("addr", ":8080", "HTTP listen address, empty to disable")
		pollMs     = flag.Int("poll-ms", 1, "playback poll interval (ms)")
		logLevel   = flag.String("log-level", "info", "trace | debug | info | warn | error")
		simOnly    = flag.Bool("sim-only", false, "force simulation (no hardware output)")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	cfg, defaulted, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("invalid config file")
	}
	if defaulted {
		log.Warn().Str("path", *configPath).Msg("config file not found; proceeding with defaults")
	}

	// Flags set on the command line win over the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "driver":
			cfg.Driver = *driver
		case "playlist":
			cfg.Playlist = *playlist
			cfg.Frames, cfg.Animations = nil, nil
		case "addr":
			cfg.HTTP.Addr = *addr
		case "poll-ms":
			cfg.PollMs = *pollMs
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
	if *simOnly {
		cfg.Driver = "sim"
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Err(err).Str("level", cfg.LogLevel).Msg("unknown log level; using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Driver != "sim" {
		if _, err := host.Init(); err != nil {
			log.Warn().Err(err).Msg("periph host init failed")
		}
	}

	core, err := app.InitCore(cfg, clock.NewMillis(), log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		core.Conductor.Run(ctx)
		close(done)
	}()

	var srv *http.Server
	if cfg.HTTP.Addr != "" {
		gin.SetMode(gin.ReleaseMode)
		srv = &http.Server{
			Addr:         cfg.HTTP.Addr,
			Handler:      api.NewServer(core.Conductor, core.Hub.HandleFrames, log.Logger).Engine(),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			log.Info().Str("addr", cfg.HTTP.Addr).Str("driver", core.Driver).Msg("HTTP server starting")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal().Err(err).Msg("http server crashed")
			}
		}()
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	s := <-ch
	log.Info().Str("signal", s.String()).Msg("shutting down")

	if srv != nil {
		sctx, scancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = srv.Shutdown(sctx)
		scancel()
	}
	cancel()
	<-done
	if err := core.Close(); err != nil {
		log.Warn().Err(err).Msg("closing outputs")
	}
}

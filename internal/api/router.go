package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-chenillard/internal/app"
	"github.com/coreman2200/funtimes-chenillard/internal/sequence"
)

// Controller is the part of the conductor the API needs.
type Controller interface {
	Status() app.Status
	Playlist() *sequence.Playlist
	Jump(index int) error
}

// Response is the envelope of every JSON reply.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

type PlaylistResponse struct {
	Animations []sequence.Animation `json:"animations"`
	Frames     []sequence.Frame     `json:"frames"`
}

type Server struct {
	ctl     Controller
	preview http.HandlerFunc
	log     zerolog.Logger
	started time.Time
}

// NewServer serves ctl; preview, when not nil, is mounted on /ws.
func NewServer(ctl Controller, preview http.HandlerFunc, l zerolog.Logger) *Server {
	return &Server{ctl: ctl, preview: preview, log: l, started: time.Now()}
}

// Engine builds the gin engine with CORS and request logging.
func (s *Server) Engine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Length", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))
	s.SetupRoutes(r)
	return r
}

func (s *Server) SetupRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.GET("/health", s.handleHealth)
		api.GET("/status", s.handleStatus)
		api.GET("/playlist", s.handlePlaylist)
		api.POST("/animation/:index", s.handleJump)
	}
	if s.preview != nil {
		r.GET("/ws", gin.WrapF(s.preview))
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("http")
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Status: "success",
		Data: gin.H{
			"uptime_s": time.Since(s.started).Seconds(),
			"rendered": s.ctl.Status().Rendered,
		},
	})
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, Response{Status: "success", Data: s.ctl.Status()})
}

func (s *Server) handlePlaylist(c *gin.Context) {
	pl := s.ctl.Playlist()
	c.JSON(http.StatusOK, Response{
		Status: "success",
		Data:   PlaylistResponse{Animations: pl.Animations(), Frames: pl.Frames()},
	})
}

func (s *Server) handleJump(c *gin.Context) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Status: "error", Error: "animation index must be an integer"})
		return
	}
	switch err := s.ctl.Jump(idx); {
	case err == nil:
		s.log.Info().Int("animation", idx).Msg("jump requested")
		c.JSON(http.StatusAccepted, Response{Status: "success", Data: gin.H{"animation": idx}})
	case errors.Is(err, sequence.ErrIndexRange):
		c.JSON(http.StatusNotFound, Response{Status: "error", Error: err.Error()})
	case errors.Is(err, app.ErrBusy):
		c.JSON(http.StatusServiceUnavailable, Response{Status: "error", Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, Response{Status: "error", Error: err.Error()})
	}
}

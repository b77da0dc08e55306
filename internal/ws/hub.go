package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-chenillard/internal/display"
	"github.com/coreman2200/funtimes-chenillard/internal/sequence"
)

const (
	writeWait = 200 * time.Millisecond
	sendQueue = 16
)

// Message is what preview clients receive for every rendered frame.
type Message struct {
	T       int64          `json:"t"`
	FrameID uint64         `json:"frame_id"`
	Frame   sequence.Frame `json:"frame"`
	Pattern string         `json:"pattern"`
	Lines   []bool         `json:"lines"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub mirrors rendered frames to websocket clients. Render never waits on
// the network: each client has its own writer and slow clients drop frames.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]bool
	frameID uint64
	lines   int
	log     zerolog.Logger

	upgrader websocket.Upgrader
}

func NewHub(lines int, l zerolog.Logger) *Hub {
	if lines < 1 || lines > sequence.FrameWidth {
		lines = sequence.FrameWidth
	}
	return &Hub{
		clients:  map[*client]bool{},
		lines:    lines,
		log:      l,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Render(f sequence.Frame) error {
	h.mu.Lock()
	h.frameID++
	id := h.frameID
	h.mu.Unlock()

	b, err := json.Marshal(Message{
		T:       time.Now().UnixNano(),
		FrameID: id,
		Frame:   f,
		Pattern: f.String()[:h.lines],
		Lines:   display.Bits(f, h.lines),
	})
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
			h.log.Debug().Str("remote", c.conn.RemoteAddr().String()).Uint64("frame_id", id).Msg("preview client lagging, frame dropped")
		}
	}
	return nil
}

// HandleFrames upgrades the request and streams frames until the client goes away.
func (h *Hub) HandleFrames(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug().Err(err).Msg("websocket upgrade")
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendQueue)}
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	h.log.Info().Str("remote", conn.RemoteAddr().String()).Msg("preview client connected")

	go h.writer(c)
	go func() {
		defer h.drop(c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) writer(c *client) {
	for b := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
			h.log.Debug().Err(err).Msg("write frame")
			h.drop(c)
			return
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	c.conn.Close()
}

// Close disconnects every client.
func (h *Hub) Close() error {
	h.mu.RLock()
	cs := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		cs = append(cs, c)
	}
	h.mu.RUnlock()
	for _, c := range cs {
		h.drop(c)
	}
	return nil
}

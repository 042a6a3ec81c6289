package handlers

import (
	"sync"
	"time"

	"mqttdash/internal/dashboard"
)

// frameBuffer is how many frames a slow websocket client may lag behind
// before its oldest frames are dropped.
const frameBuffer = 8

// Frame is one render pushed to websocket clients.
type Frame struct {
	Header           string          `json:"header"`
	AnimationSpeedMs int64           `json:"animationSpeedMs"`
	Rows             []dashboard.Row `json:"rows"`
}

// Hub is a dashboard.Presenter that fans renders out to websocket clients.
type Hub struct {
	header string

	mu      sync.Mutex
	last    Frame
	clients map[chan Frame]struct{}
}

func NewHub(header string) *Hub {
	return &Hub{
		header:  header,
		last:    Frame{Header: header},
		clients: map[chan Frame]struct{}{},
	}
}

func (h *Hub) Present(rows []dashboard.Row, speed time.Duration) {
	f := Frame{Header: h.header, AnimationSpeedMs: speed.Milliseconds(), Rows: rows}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = f
	for ch := range h.clients {
		select {
		case ch <- f:
		default:
			// A lagging client skips its oldest frame, never the newest.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- f:
			default:
			}
		}
	}
}

// Last returns the most recent frame.
func (h *Hub) Last() Frame {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last
}

// subscribe registers a client and returns the frame it should start with.
func (h *Hub) subscribe() (chan Frame, Frame) {
	ch := make(chan Frame, frameBuffer)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[ch] = struct{}{}
	return ch, h.last
}

func (h *Hub) unsubscribe(ch chan Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, ch)
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"StockGuess/internal/model"
	"StockGuess/internal/skin"
)

// Message types pushed to websocket clients.
const (
	MsgSnapshot = "snapshot"
	MsgEvent    = "event"
	MsgSound    = "sound"
)

// Envelope wraps every websocket message.
type Envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
	Skin *skin.State `json:"skin,omitempty"`
	TS   string      `json:"ts"`
}

// Hub fans engine events and sound commands out to websocket clients. It is
// registered as an engine observer and as the skin's sound sink.
type Hub struct {
	// Snapshot returns the state sent to a client when it connects.
	Snapshot  func() model.Snapshot
	// SkinState, when set, is attached to snapshot and event messages.
	SkinState func() skin.State
	// OnClients is told the client count after every change.
	OnClients func(n int)

	log zerolog.Logger

	mu      sync.Mutex
	clients map[*Client]bool
}

// NewHub creates an empty hub.
func NewHub(snapshot func() model.Snapshot, log zerolog.Logger) *Hub {
	return &Hub{
		Snapshot: snapshot,
		log:      log,
		clients:  make(map[*Client]bool),
	}
}

// OnEvent implements game.Observer.
func (h *Hub) OnEvent(evt model.Event) {
	h.broadcast(h.envelope(MsgEvent, evt))
}

// Sound implements skin.SoundSink.
func (h *Hub) Sound(cmd skin.SoundCommand) {
	h.broadcast(h.envelope(MsgSound, cmd))
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// AddClient registers a client and queues its initial snapshot. Messages
// broadcast while the snapshot is being built are held back and delivered
// after it, so a client always sees the snapshot first.
func (h *Hub) AddClient(c *Client) {
	h.mu.Lock()
	c.warming = true
	h.clients[c] = true
	n := len(h.clients)
	h.mu.Unlock()
	h.reportClients(n)

	// The snapshot is taken outside h.mu: the engine may be publishing into
	// this hub while holding its own locks.
	var snap model.Snapshot
	if h.Snapshot != nil {
		snap = h.Snapshot()
	}
	msg := h.envelope(MsgSnapshot, snap)

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	c.enqueue(msg)
	for _, m := range c.backlog {
		c.enqueue(m)
	}
	c.backlog = nil
	c.warming = false
}

// RemoveClient unregisters a client and closes its send channel.
func (h *Hub) RemoveClient(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)
	n := len(h.clients)
	h.mu.Unlock()
	h.reportClients(n)
}

// CloseAll disconnects every client.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()
	for _, c := range clients {
		h.RemoveClient(c)
	}
}

func (h *Hub) broadcast(msg []byte) {
	if msg == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if c.warming {
			c.backlog = append(c.backlog, msg)
			continue
		}
		if !c.enqueue(msg) {
			h.log.Warn().Msg("ws client too slow, dropping message")
		}
	}
}

func (h *Hub) envelope(kind string, data interface{}) []byte {
	env := Envelope{
		Type: kind,
		Data: data,
		TS:   time.Now().UTC().Format(time.RFC3339Nano),
	}
	if kind != MsgSound && h.SkinState != nil {
		st := h.SkinState()
		env.Skin = &st
	}
	b, err := json.Marshal(env)
	if err != nil {
		h.log.Error().Err(err).Str("type", kind).Msg("marshal ws message failed")
		return nil
	}
	return b
}

func (h *Hub) reportClients(n int) {
	if h.OnClients != nil {
		h.OnClients(n)
	}
}

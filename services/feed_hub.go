package services

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// FeedClient is one connected dashboard session. Writes are serialized per
// connection: gorilla connections do not support concurrent writers.
type FeedClient struct {
	Conn *websocket.Conn

	mu sync.Mutex
}

func (c *FeedClient) send(msg []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.Conn.WriteMessage(websocket.TextMessage, msg)
}

// ActivityEvent is what the dashboard receives when an admin action lands.
type ActivityEvent struct {
	Type        string         `json:"type"`
	Description string         `json:"description"`
	AdminName   string         `json:"admin_name"`
	Details     map[string]any `json:"details,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// FeedHub fans activity events out to connected dashboard clients. Writes
// are best-effort; a dead connection is dropped on its next read cycle.
type FeedHub struct {
	mu      sync.RWMutex
	clients map[*FeedClient]struct{}
}

func NewFeedHub() *FeedHub {
	return &FeedHub{clients: make(map[*FeedClient]struct{})}
}

func (h *FeedHub) Register(c *FeedClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *FeedHub) Unregister(c *FeedClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	_ = c.Conn.Close()
}

func (h *FeedHub) Broadcast(ev ActivityEvent) {
	msg, _ := json.Marshal(ev)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.send(msg)
	}
}

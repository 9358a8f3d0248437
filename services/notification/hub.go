package notification

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"autocare/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Client is one websocket connection of one user.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	send   chan []byte
}

type envelope struct {
	userID  string
	payload []byte
}

// Hub pushes toasts to connected websocket clients. Toasts addressed to a
// user reach only that user's connections. Unaddressed informational toasts
// reach everyone; unaddressed failures are not pushed at all, since they
// belong to an anonymous request that already got its error response.
type Hub struct {
	logger     *zap.Logger
	clients    map[string]map[*Client]bool
	deliver    chan envelope
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:     logger,
		clients:    make(map[string]map[*Client]bool),
		deliver:    make(chan envelope, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run serves registrations and deliveries until ctx ends.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for _, set := range h.clients {
				for c := range set {
					close(c.send)
				}
			}
			h.clients = make(map[string]map[*Client]bool)
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			if h.clients[c.userID] == nil {
				h.clients[c.userID] = make(map[*Client]bool)
			}
			h.clients[c.userID][c] = true
			h.mu.Unlock()
			h.logger.Info("WebSocket client connected", zap.String("user_id", c.userID), zap.Int("total_clients", h.ClientCount()))

		case c := <-h.unregister:
			h.mu.Lock()
			h.drop(c)
			h.mu.Unlock()
			h.logger.Info("WebSocket client disconnected", zap.String("user_id", c.userID), zap.Int("total_clients", h.ClientCount()))

		case env := <-h.deliver:
			h.mu.Lock()
			for userID, set := range h.clients {
				if env.userID != "" && env.userID != userID {
					continue
				}
				for c := range set {
					select {
					case c.send <- env.payload:
					default:
						h.logger.Warn("Dropping slow websocket client", zap.String("user_id", userID))
						h.drop(c)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// drop must be called with mu held.
func (h *Hub) drop(c *Client) {
	set, ok := h.clients[c.userID]
	if !ok || !set[c] {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
}

// Notify queues n for delivery. It gives up when ctx ends.
func (h *Hub) Notify(ctx context.Context, n models.Notification) {
	if n.UserID == "" && n.Variant == models.VariantDestructive {
		return
	}
	payload, err := json.Marshal(n)
	if err != nil {
		h.logger.Error("Failed to marshal notification", zap.Error(err))
		return
	}
	select {
	case h.deliver <- envelope{userID: n.UserID, payload: payload}:
	case <-h.done:
	case <-ctx.Done():
		h.logger.Warn("Notification dropped", zap.String("title", n.Title), zap.Error(ctx.Err()))
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// Attach registers conn for userID and pumps messages until it closes.
func (h *Hub) Attach(conn *websocket.Conn, userID string) {
	c := &Client{hub: h, conn: conn, userID: userID, send: make(chan []byte, 32)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}
	go c.writePump()
	c.readPump()
}

// readPump keeps the connection alive; clients send nothing we act on.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

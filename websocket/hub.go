// Package websocket pushes feed events to connected browsers.
package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"postboard/auth"
	"postboard/observability"

	"github.com/gorilla/websocket"
)

// Event types broadcast to viewers.
const (
	EventPostCreated    = "post_created"
	EventPostLiked      = "post_liked"
	EventCommentAdded   = "comment_added"
	EventCommentUpdated = "comment_updated"
	EventCommentDeleted = "comment_deleted"
	EventCommentLiked   = "comment_liked"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 512
	sendBuffer     = 256
	broadcastQueue = 1024
)

type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Hub fans events out to every connected client. Run must be running for
// clients to connect.
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex

	tokens   *auth.Tokens
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

type Client struct {
	conn   *websocket.Conn
	userID string
	send   chan []byte
	hub    *Hub
}

// NewHub creates a hub. When tokens is non-nil a "token" query parameter,
// if present, must be valid; viewers without one connect anonymously.
func NewHub(tokens *auth.Tokens, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, broadcastQueue),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		tokens:     tokens,
		logger:     logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Run serves registrations and broadcasts until ctx is done, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()
	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			h.mu.Unlock()
			observability.RealtimeClients.Inc()
			h.logger.Debug("websocket client registered", slog.Int("clients", h.ClientCount()))

		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer
					close(client.send)
					delete(h.clients, client)
					observability.RealtimeClients.Dec()
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		observability.RealtimeClients.Dec()
	}
}

func (h *Hub) shutdown() {
	close(h.done)
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
		observability.RealtimeClients.Dec()
	}
}

// Broadcast queues an event for every client. It never blocks: when the
// queue is full the event is dropped.
func (h *Hub) Broadcast(eventType string, payload any) {
	msg, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		h.logger.Error("marshal websocket event", slog.String("type", eventType), slog.String("error", err.Error()))
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("websocket broadcast queue full, event dropped", slog.String("type", eventType))
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and registers the connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var userID string
	if token := r.URL.Query().Get("token"); token != "" && h.tokens != nil {
		id, err := h.tokens.Parse(token)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		userID = id
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := &Client{
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendBuffer),
		hub:    h,
	}
	// Queued before registration so it precedes any broadcast.
	welcome, _ := json.Marshal(Event{
		Type: "connected",
		Payload: map[string]any{
			"userId": userID,
			"time":   time.Now().Unix(),
		},
	})
	client.send <- welcome

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("websocket read error", slog.String("error", err.Error()))
			}
			return
		}

		var in Event
		if err := json.Unmarshal(message, &in); err != nil {
			continue
		}
		// The feed is one-way; only keepalives are answered.
		if in.Type == "ping" {
			c.reply(Event{Type: "pong", Payload: map[string]any{"time": time.Now().Unix()}})
		}
	}
}

func (c *Client) reply(ev Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		return
	}
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if _, ok := c.hub.clients[c]; ok {
		select {
		case c.send <- msg:
		default:
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
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

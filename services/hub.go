package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"algoquest/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	EventAttemptRecorded  = "attempt_recorded"
	EventBadgeAwarded     = "badge_awarded"
	EventProgressUpdated  = "progress_updated"
	EventProgressSnapshot = "progress_snapshot"
	EventPong             = "pong"
	EventError            = "error"
)

const (
	writeWait       = 10 * time.Second
	snapshotTimeout = 5 * time.Second
	sendBuffer      = 64
)

// Publisher delivers an event to every open socket of one user.
type Publisher interface {
	PublishToUser(userID uint, eventType string, payload interface{})
}

type ProgressProvider interface {
	GetProgress(ctx context.Context, userID uint) ([]MissionProgressView, error)
}

type Hub struct {
	clients    map[uint]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
	progress   ProgressProvider
	log        *logger.Logger
}

type Client struct {
	hub    *Hub
	id     string
	userID uint
	socket *websocket.Conn
	send   chan []byte
}

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[uint]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log.With("service", "Hub"),
	}
}

// SetProgressProvider wires the source of progress_snapshot replies. The hub
// is built before the progress service, which publishes through it.
func (h *Hub) SetProgressProvider(p ProgressProvider) {
	h.mutex.Lock()
	h.progress = p
	h.mutex.Unlock()
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for userID, set := range h.clients {
				for client := range set {
					close(client.send)
				}
				delete(h.clients, userID)
			}
			h.mutex.Unlock()
			h.log.Info("Hub stopped")
			return

		case client := <-h.register:
			h.mutex.Lock()
			set, ok := h.clients[client.userID]
			if !ok {
				set = make(map[*Client]bool)
				h.clients[client.userID] = set
			}
			set[client] = true
			h.mutex.Unlock()
			h.log.Debug("Client registered", "client_id", client.id, "user_id", client.userID)

		case client := <-h.unregister:
			h.mutex.Lock()
			if h.removeLocked(client) {
				h.log.Debug("Client unregistered", "client_id", client.id, "user_id", client.userID)
			}
			h.mutex.Unlock()
		}
	}
}

// removeLocked drops the client and closes its send channel once.
func (h *Hub) removeLocked(client *Client) bool {
	set, ok := h.clients[client.userID]
	if !ok || !set[client] {
		return false
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.clients, client.userID)
	}
	return true
}

func (h *Hub) PublishToUser(userID uint, eventType string, payload interface{}) {
	data, err := json.Marshal(Message{Type: eventType, Payload: payload})
	if err != nil {
		h.log.Error("Failed to marshal event", "type", eventType, "error", err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	sent := 0
	for client := range h.clients[userID] {
		select {
		case client.send <- data:
			sent++
		default:
			h.log.Warn("Send buffer full, dropping client", "client_id", client.id, "user_id", userID)
			h.removeLocked(client)
		}
	}
	if sent > 0 {
		h.log.Debug("Event published", "type", eventType, "user_id", userID, "clients", sent)
	}
}

// sendTo queues a reply for one client if it is still registered.
func (h *Hub) sendTo(client *Client, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("Failed to marshal reply", "type", msg.Type, "error", err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	if !h.clients[client.userID][client] {
		return
	}
	select {
	case client.send <- data:
	default:
		h.removeLocked(client)
	}
}

func (h *Hub) ClientCount(userID uint) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) RegisterClient(conn *websocket.Conn, userID uint) *Client {
	client := &Client{
		hub:    h,
		id:     uuid.NewString(),
		userID: userID,
		socket: conn,
		send:   make(chan []byte, sendBuffer),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return nil
	}

	go client.writePump()
	go client.readPump()

	return client
}

func (h *Hub) UnregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.UnregisterClient(c)
		c.socket.Close()
	}()

	for {
		_, message, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("WebSocket read error", "client_id", c.id, "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			c.hub.log.Debug("Ignoring malformed message", "client_id", c.id, "error", err)
			continue
		}

		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	defer c.socket.Close()

	for message := range c.send {
		c.socket.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.socket.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}

	c.socket.SetWriteDeadline(time.Now().Add(writeWait))
	c.socket.WriteMessage(websocket.CloseMessage, []byte{})
}

func (c *Client) handleMessage(msg Message) {
	switch msg.Type {
	case "ping":
		c.hub.sendTo(c, Message{Type: EventPong})

	case "request_progress":
		c.hub.mutex.RLock()
		provider := c.hub.progress
		c.hub.mutex.RUnlock()
		if provider == nil {
			c.hub.sendTo(c, Message{Type: EventError, Payload: "progress unavailable"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
		defer cancel()
		view, err := provider.GetProgress(ctx, c.userID)
		if err != nil {
			c.hub.log.Error("Failed to load progress for snapshot", "user_id", c.userID, "error", err)
			c.hub.sendTo(c, Message{Type: EventError, Payload: "server error"})
			return
		}
		c.hub.sendTo(c, Message{Type: EventProgressSnapshot, Payload: view})

	default:
		c.hub.log.Debug("Unknown message type", "type", msg.Type, "client_id", c.id)
	}
}

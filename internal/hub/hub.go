// Package hub provides connection management for WebSocket clients.
package hub

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Connection represents a single WebSocket connection bound to a session.
type Connection struct {
	ID        string
	SessionID string
	Conn      *websocket.Conn
	Send      chan []byte
}

// Hub fans run-state events out to the connections watching each session.
type Hub struct {
	connections map[string]*Connection
	sessions    map[string]map[string]bool

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *SessionEvent

	mu sync.RWMutex
}

// SessionEvent is one event destined for every watcher of a session.
type SessionEvent struct {
	SessionID string
	Data      []byte
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]*Connection),
		sessions:    make(map[string]map[string]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		broadcast:   make(chan *SessionEvent, 256),
	}
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.connections[conn.ID] = conn
			if h.sessions[conn.SessionID] == nil {
				h.sessions[conn.SessionID] = make(map[string]bool)
			}
			h.sessions[conn.SessionID][conn.ID] = true
			h.mu.Unlock()
			log.Printf("Connection registered: %s (session: %s)", conn.ID, conn.SessionID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.connections[conn.ID]; ok {
				delete(h.connections, conn.ID)
				if h.sessions[conn.SessionID] != nil {
					delete(h.sessions[conn.SessionID], conn.ID)
					if len(h.sessions[conn.SessionID]) == 0 {
						delete(h.sessions, conn.SessionID)
					}
				}
				close(conn.Send)
			}
			h.mu.Unlock()
			log.Printf("Connection unregistered: %s", conn.ID)

		case event := <-h.broadcast:
			h.mu.RLock()
			for connID := range h.sessions[event.SessionID] {
				if conn, exists := h.connections[connID]; exists {
					select {
					case conn.Send <- event.Data:
					default:
						// Buffer full, drop the connection.
						log.Printf("Connection %s buffer full, closing", connID)
						go h.Unregister(conn)
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register attaches a websocket connection to a session and starts its pumps.
func (h *Hub) Register(sessionID string, ws *websocket.Conn) *Connection {
	conn := &Connection{
		ID:        "conn_" + uuid.New().String()[:8],
		SessionID: sessionID,
		Conn:      ws,
		Send:      make(chan []byte, 64),
	}
	h.register <- conn
	go conn.writePump(h)
	go conn.readPump(h)
	return conn
}

// Unregister detaches a connection.
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// PushEvent broadcasts a JSON-encoded event to every watcher of a session.
func (h *Hub) PushEvent(sessionID string, event interface{}) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("ERROR: failed to marshal hub event: %v", err)
		return
	}
	select {
	case h.broadcast <- &SessionEvent{SessionID: sessionID, Data: data}:
	default:
		log.Printf("WARN: hub broadcast buffer full, dropping event for session %s", sessionID)
	}
}

func (c *Connection) writePump(h *Hub) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames; the socket is push-only. It exists to
// notice closes and answer pings.
func (c *Connection) readPump(h *Hub) {
	defer func() {
		h.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

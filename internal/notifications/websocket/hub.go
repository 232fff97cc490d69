package websocket

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// MarketMessage is one feed frame pushed to subscribers.
type MarketMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// Hub fans market events out to connected websocket clients.
type Hub struct {
	connections map[string]*Connection
	mu          sync.RWMutex
	broadcast   chan MarketMessage
	register    chan *Connection
	unregister  chan *Connection
	stop        chan struct{}
	upgrader    websocket.Upgrader
}

// Connection represents a subscribed client.
type Connection struct {
	ID           string
	Send         chan MarketMessage
	Conn         *websocket.Conn
	LastActivity time.Time
	mu           sync.Mutex
}

func NewHub() *Hub {
	h := &Hub{
		connections: make(map[string]*Connection),
		broadcast:   make(chan MarketMessage, 256),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		stop:        make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// In production, implement proper origin checking
				return true
			},
		},
	}
	go h.run()
	return h
}

// HandleConnection upgrades an HTTP request and subscribes the client.
func (h *Hub) HandleConnection(w http.ResponseWriter, r *http.Request) (*Connection, error) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:           uuid.New().String(),
		Conn:         conn,
		Send:         make(chan MarketMessage, 256),
		LastActivity: time.Now(),
	}

	h.register <- connection

	go h.readPump(connection)
	go h.writePump(connection)

	return connection, nil
}

// Broadcast queues a message for every subscriber.
func (h *Hub) Broadcast(msg MarketMessage) {
	select {
	case h.broadcast <- msg:
	default:
		log.Printf("market feed backlog full, dropping %s", msg.Type)
	}
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.connections[conn.ID] = conn
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.connections[conn.ID]; ok {
				delete(h.connections, conn.ID)
				close(conn.Send)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			for _, conn := range h.connections {
				select {
				case conn.Send <- msg:
				default:
					// Slow consumer; skip this frame.
				}
			}
			h.mu.RUnlock()

		case <-h.stop:
			return
		}
	}
}

func (h *Hub) readPump(conn *Connection) {
	defer func() {
		h.unregister <- conn
		conn.Conn.Close()
	}()

	conn.Conn.SetReadLimit(512)
	conn.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.Conn.SetPongHandler(func(string) error {
		conn.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		// The feed is one-way; reads only service control frames.
		if _, _, err := conn.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket error: %v", err)
			}
			break
		}
		conn.mu.Lock()
		conn.LastActivity = time.Now()
		conn.mu.Unlock()
	}
}

func (h *Hub) writePump(conn *Connection) {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		conn.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-conn.Send:
			if !ok {
				conn.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			conn.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.Conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close shuts the hub down and drops every connection.
func (h *Hub) Close() {
	close(h.stop)
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, conn := range h.connections {
		conn.Conn.Close()
		delete(h.connections, id)
	}
}

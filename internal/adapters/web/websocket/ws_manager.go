package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lcalzada-xor/wbands/internal/core/domain"
	"github.com/lcalzada-xor/wbands/internal/core/ports"
)

const writeTimeout = 5 * time.Second

// DefaultAllowedOrigins are accepted in addition to same-origin requests.
var DefaultAllowedOrigins = []string{
	"http://localhost:8080",
	"http://127.0.0.1:8080",
	"http://[::1]:8080",
}

// Message types pushed to clients.
const (
	TypeNetworks = "networks"
	TypeStatus   = "status"
)

type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// WSManager pushes orchestrator updates to connected browsers.
type WSManager struct {
	Service  ports.ScanService
	Clients  map[*websocket.Conn]struct{}
	mu       sync.Mutex
	upgrader websocket.Upgrader
	done     chan struct{}
}

func NewWSManager(service ports.ScanService, allowedOrigins ...string) *WSManager {
	if len(allowedOrigins) == 0 {
		allowedOrigins = DefaultAllowedOrigins
	}
	m := &WSManager{
		Service: service,
		Clients: make(map[*websocket.Conn]struct{}),
		done:    make(chan struct{}),
	}
	m.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			// Allow same-origin (no Origin header)
			if origin == "" {
				return true
			}
			for _, allowed := range allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			log.Printf("WebSocket: Rejected origin: %s", origin)
			return false
		},
	}
	return m
}

// Start subscribes to the orchestrator and broadcasts until ctx is done.
func (m *WSManager) Start(ctx context.Context) {
	updates, cancel := m.Service.Subscribe()
	go func() {
		defer close(m.done)
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				m.closeAll()
				return
			case u, ok := <-updates:
				if !ok {
					return
				}
				m.broadcastUpdate(u)
			}
		}
	}()
}

// Wait blocks until the broadcaster started by Start has exited.
func (m *WSManager) Wait() {
	<-m.done
}

func (m *WSManager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}

	// New clients get the current view right away instead of waiting a scan.
	initial := domain.SnapshotUpdate{Networks: m.Service.Networks(), State: m.Service.State()}
	for _, msg := range updateMessages(initial) {
		if err := writeMessage(conn, msg); err != nil {
			conn.Close()
			return
		}
	}

	m.mu.Lock()
	m.Clients[conn] = struct{}{}
	m.mu.Unlock()
	log.Printf("WebSocket connected: %s", r.RemoteAddr)

	// Clean up on disconnect
	go func() {
		defer func() {
			m.mu.Lock()
			if _, ok := m.Clients[conn]; ok {
				delete(m.Clients, conn)
				conn.Close()
			}
			m.mu.Unlock()
			log.Printf("WebSocket disconnected: %s", r.RemoteAddr)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

// ClientCount reports how many sockets are connected.
func (m *WSManager) ClientCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Clients)
}

func updateMessages(u domain.SnapshotUpdate) []WSMessage {
	views := make([]domain.NetworkView, len(u.Networks))
	for i, n := range u.Networks {
		views[i] = n.View()
	}
	return []WSMessage{
		{Type: TypeNetworks, Payload: views},
		{Type: TypeStatus, Payload: u.State},
	}
}

func (m *WSManager) broadcastUpdate(u domain.SnapshotUpdate) {
	for _, msg := range updateMessages(u) {
		m.broadcastMessage(msg)
	}
}

func writeMessage(conn *websocket.Conn, msg WSMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (m *WSManager) broadcastMessage(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for conn := range m.Clients {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			delete(m.Clients, conn)
		}
	}
}

func (m *WSManager) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for conn := range m.Clients {
		conn.Close()
		delete(m.Clients, conn)
	}
}

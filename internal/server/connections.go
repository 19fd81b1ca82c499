package server

import (
	"errors"
	"strings"
	"sync"

	"github.com/coder/websocket"
)

var ErrEmptyName = errors.New("EMPTY_NAME: Name cannot be empty")

// Connection is a live client connection. The declared name is bound at most
// once for the connection's lifetime.
type Connection struct {
	ID   string
	Name string
	Role Role

	send   chan []byte
	socket *websocket.Conn // nil in tests
}

// ConnectionRegistry tracks every live connection and its declared name.
type ConnectionRegistry struct {
	connections map[string]*Connection
	mu          sync.RWMutex
}

func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{
		connections: make(map[string]*Connection),
	}
}

// Add registers a connection with its outbound sink. The sink is drained by
// the connection's write pump; fan-out never writes to the socket directly.
func (cr *ConnectionRegistry) Add(id string, sink chan []byte, socket *websocket.Conn) *Connection {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	conn := &Connection{
		ID:     id,
		Role:   RoleObserver,
		send:   sink,
		socket: socket,
	}
	cr.connections[id] = conn
	return conn
}

// Remove destroys the connection record. Returns nil if already removed.
func (cr *ConnectionRegistry) Remove(id string) *Connection {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	conn := cr.connections[id]
	delete(cr.connections, id)
	return conn
}

func (cr *ConnectionRegistry) Get(id string) *Connection {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	return cr.connections[id]
}

// DeclareName trims and binds the display name. Fails with ErrEmptyName when
// the trimmed result is empty; no mutation happens in that case. A name that
// is already bound stays bound.
func (cr *ConnectionRegistry) DeclareName(id, raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", ErrEmptyName
	}

	cr.mu.Lock()
	defer cr.mu.Unlock()

	conn, exists := cr.connections[id]
	if !exists {
		return "", errors.New("CONNECTION_NOT_FOUND: Unknown connection")
	}
	if conn.Name != "" {
		return conn.Name, nil
	}
	conn.Name = name
	return name, nil
}

// NameOf returns the declared name, or "" if none was declared.
func (cr *ConnectionRegistry) NameOf(id string) string {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	if conn, exists := cr.connections[id]; exists {
		return conn.Name
	}
	return ""
}

// All returns a snapshot of the live connections.
func (cr *ConnectionRegistry) All() []*Connection {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	conns := make([]*Connection, 0, len(cr.connections))
	for _, conn := range cr.connections {
		conns = append(conns, conn)
	}
	return conns
}

// CloseAll closes every live socket. Used during server shutdown.
func (cr *ConnectionRegistry) CloseAll(code websocket.StatusCode, reason string) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	for _, conn := range cr.connections {
		if conn.socket != nil {
			_ = conn.socket.Close(code, reason)
		}
	}
}

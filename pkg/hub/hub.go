// Package hub tracks connected WebSocket clients and broadcasts engine
// output to all of them.
package hub

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// writeTimeout bounds one client write during a broadcast sweep. A client
// that cannot accept the write in time is dropped, not buffered, so it can
// never stall delivery to the others. Package-level so tests can shorten it.
var writeTimeout = 5 * time.Second

// Transport is the write side of a client connection. *websocket.Conn
// satisfies it; tests supply fakes.
type Transport interface {
	Write(ctx context.Context, typ websocket.MessageType, data []byte) error
	Close(code websocket.StatusCode, reason string) error
}

// Conn is one registered client connection.
type Conn struct {
	id        string
	transport Transport
}

// NewConn wraps a transport with a fresh connection ID.
func NewConn(transport Transport) *Conn {
	return &Conn{id: uuid.NewString(), transport: transport}
}

// ID returns the connection's unique identifier.
func (c *Conn) ID() string {
	return c.id
}

// Hub is the registry of live client connections.
//
// Broadcast writes to a snapshot of the registry, so a connection added mid
// broadcast simply misses that line. Failed connections are pruned after the
// sweep completes; a slow client never blocks removal of a dead one.
type Hub struct {
	log *slog.Logger

	mu    sync.RWMutex
	conns map[string]*Conn
}

// New returns an empty Hub.
func New(log *slog.Logger) *Hub {
	return &Hub{
		log:   log,
		conns: make(map[string]*Conn),
	}
}

// Add registers a connection and returns it.
func (h *Hub) Add(transport Transport) *Conn {
	conn := NewConn(transport)
	h.mu.Lock()
	h.conns[conn.id] = conn
	n := len(h.conns)
	h.mu.Unlock()

	h.log.Info("client connected", "conn", conn.id, "total", n)
	return conn
}

// Remove unregisters a connection. Removing an unknown connection is a no-op.
func (h *Hub) Remove(conn *Conn) {
	h.mu.Lock()
	_, ok := h.conns[conn.id]
	delete(h.conns, conn.id)
	n := len(h.conns)
	h.mu.Unlock()

	if ok {
		h.log.Info("client disconnected", "conn", conn.id, "total", n)
	}
}

// Count returns the number of registered connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Broadcast sends one text line to every registered connection. Each write
// carries its own deadline; connections whose write fails or times out are
// closed and removed.
func (h *Hub) Broadcast(ctx context.Context, line string) {
	h.mu.RLock()
	snapshot := make([]*Conn, 0, len(h.conns))
	for _, c := range h.conns {
		snapshot = append(snapshot, c)
	}
	h.mu.RUnlock()

	data := []byte(line)
	var failed []*Conn
	for _, c := range snapshot {
		wctx, cancel := context.WithTimeout(ctx, writeTimeout)
		err := c.transport.Write(wctx, websocket.MessageText, data)
		cancel()
		if err != nil {
			h.log.Warn("broadcast write failed", "conn", c.id, "error", err)
			failed = append(failed, c)
		}
	}

	for _, c := range failed {
		_ = c.transport.Close(websocket.StatusInternalError, "write failed")
		h.Remove(c)
	}
}

// CloseAll closes and removes every connection. Used at shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	conns := h.conns
	h.conns = make(map[string]*Conn)
	h.mu.Unlock()

	for _, c := range conns {
		_ = c.transport.Close(websocket.StatusGoingAway, "server shutting down")
	}
}

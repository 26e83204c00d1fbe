package ws

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Connection wraps a websocket.Conn with a write lock. gorilla/websocket
// allows at most one concurrent writer per connection. lastSeen is touched
// by the reader goroutine and the pong handler while Heartbeat reads it, so
// it has its own lock.
type Connection struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	UserID  string

	seenMu   sync.Mutex
	lastSeen time.Time
}

func (c *Connection) touch() {
	c.seenMu.Lock()
	c.lastSeen = time.Now()
	c.seenMu.Unlock()
}

// SinceSeen returns how long ago the connection last showed activity
// (a decoded message or a pong).
func (c *Connection) SinceSeen() time.Duration {
	c.seenMu.Lock()
	defer c.seenMu.Unlock()
	return time.Since(c.lastSeen)
}

// WriteJSON serializes v and sends it on the connection.
func (c *Connection) WriteJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

// ReadJSON reads the next message and decodes it into v.
func (c *Connection) ReadJSON(v any) error {
	err := c.conn.ReadJSON(v)
	if err == nil {
		c.touch()
	}
	return err
}

// Close closes the underlying connection.
func (c *Connection) Close() error {
	return c.conn.Close()
}

// Registry tracks open websocket connections per user.
type Registry struct {
	mu          sync.RWMutex
	connections map[string]map[*Connection]struct{}
	upgrader    websocket.Upgrader
	logger      *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		connections: make(map[string]map[*Connection]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  32 << 10,
			WriteBufferSize: 32 << 10,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Upgrade upgrades the HTTP request to a websocket and registers the
// resulting connection for the user.
func (r *Registry) Upgrade(w http.ResponseWriter, req *http.Request, userID string) (*Connection, error) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return nil, err
	}
	c := &Connection{conn: conn, UserID: userID, lastSeen: time.Now()}
	conn.SetPongHandler(func(string) error {
		c.touch()
		return nil
	})

	r.mu.Lock()
	if _, ok := r.connections[userID]; !ok {
		r.connections[userID] = make(map[*Connection]struct{})
	}
	r.connections[userID][c] = struct{}{}
	count := len(r.connections[userID])
	r.mu.Unlock()

	r.logger.Info("websocket connected", slog.String("userID", userID), slog.Int("connections", count))
	return c, nil
}

// Remove closes and deregisters a connection. Safe to call more than once.
func (r *Registry) Remove(c *Connection) {
	r.mu.Lock()
	if conns, ok := r.connections[c.UserID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(r.connections, c.UserID)
		}
	}
	r.mu.Unlock()

	_ = c.conn.Close()
	r.logger.Info("websocket disconnected", slog.String("userID", c.UserID))
}

// Send delivers a JSON message to every open connection of a user.
func (r *Registry) Send(userID string, msg any) {
	r.mu.RLock()
	conns := make([]*Connection, 0, len(r.connections[userID]))
	for c := range r.connections[userID] {
		conns = append(conns, c)
	}
	r.mu.RUnlock()

	for _, c := range conns {
		if err := c.WriteJSON(msg); err != nil {
			r.logger.Warn("websocket send failed", slog.String("userID", userID), slog.String("error", err.Error()))
			r.Remove(c)
		}
	}
}

// Heartbeat pings all connections on the given interval and drops the ones
// that stopped responding, until ctx is cancelled. Run it in its own
// goroutine. A connection counts as responsive while messages or pongs keep
// arriving; see SinceSeen.
func (r *Registry) Heartbeat(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		r.mu.RLock()
		var stale, live []*Connection
		for _, conns := range r.connections {
			for c := range conns {
				if c.SinceSeen() > 2*interval {
					stale = append(stale, c)
					continue
				}
				live = append(live, c)
			}
		}
		r.mu.RUnlock()

		for _, c := range stale {
			r.Remove(c)
		}
		for _, c := range live {
			c.writeMu.Lock()
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second))
			c.writeMu.Unlock()
		}
	}
}

package ws

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startEchoServer upgrades incoming requests into the registry and keeps
// reading them so control frames (pongs) are processed. The created
// connections are delivered on the returned channel.
func startEchoServer(t *testing.T, registry *Registry, userID string) (*httptest.Server, chan *Connection) {
	t.Helper()
	connCh := make(chan *Connection, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		c, err := registry.Upgrade(w, req, userID)
		if err != nil {
			return
		}
		connCh <- c
		for {
			var msg map[string]any
			if err := c.ReadJSON(&msg); err != nil {
				registry.Remove(c)
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv, connCh
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func (r *Registry) connectionCount(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections[userID])
}

func TestSeenTimestampConcurrentAccess(t *testing.T) {
	c := &Connection{lastSeen: time.Now()}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				c.touch()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_ = c.SinceSeen()
			}
		}()
	}
	wg.Wait()

	assert.Less(t, c.SinceSeen(), time.Second)
}

func TestHeartbeatKeepsResponsiveConnection(t *testing.T) {
	registry := NewRegistry(discardLogger())
	srv, connCh := startEchoServer(t, registry, "user-1")

	client := dial(t, srv)
	// Reading on the client side makes gorilla answer pings with pongs.
	go func() {
		for {
			if _, _, err := client.ReadMessage(); err != nil {
				return
			}
		}
	}()

	conn := <-connCh
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go registry.Heartbeat(ctx, 20*time.Millisecond)

	// Several heartbeat intervals pass without the client sending anything;
	// pong responses alone must keep the connection alive.
	time.Sleep(150 * time.Millisecond)

	assert.Equal(t, 1, registry.connectionCount("user-1"))
	assert.Less(t, conn.SinceSeen(), 100*time.Millisecond)
}

func TestHeartbeatDropsSilentConnection(t *testing.T) {
	registry := NewRegistry(discardLogger())
	srv, connCh := startEchoServer(t, registry, "user-2")

	// This client never reads, so it never answers pings.
	dial(t, srv)
	conn := <-connCh

	conn.seenMu.Lock()
	conn.lastSeen = time.Now().Add(-time.Hour)
	conn.seenMu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go registry.Heartbeat(ctx, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		return registry.connectionCount("user-2") == 0
	}, time.Second, 10*time.Millisecond)
}

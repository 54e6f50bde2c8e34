package websocket

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/xo3d-backend/internal/entity"
)

// socketPair returns the server end of a fresh connection and the peer that dialed it.
func socketPair(t *testing.T) (*websocket.Conn, *websocket.Conn) {
	t.Helper()

	accepted := make(chan *websocket.Conn, 1)
	upgrader := websocket.Upgrader{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		accepted <- conn
	}))
	t.Cleanup(server.Close)

	peer, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = peer.Close() })

	select {
	case conn := <-accepted:
		t.Cleanup(func() { _ = conn.Close() })
		return conn, peer
	case <-time.After(readTimeout):
		t.Fatal("connection was not accepted")
		return nil, nil
	}
}

func TestHub_PublishDeliversThroughWriter(t *testing.T) {
	// Given: a watching client with a running writer
	conn, peer := socketPair(t)
	c := newClient(conn)
	go c.writePump()
	t.Cleanup(c.close)

	hub := NewHub(slog.New(slog.NewJSONHandler(io.Discard, nil)))
	hub.subscribe("g1", c)

	// When: a snapshot is published
	require.NoError(t, hub.Publish(context.Background(), &entity.GameState{ID: "g1"}))

	// Then: the peer receives it
	require.NoError(t, peer.SetReadDeadline(time.Now().Add(readTimeout)))

	var message Message
	require.NoError(t, peer.ReadJSON(&message))
	assert.Equal(t, actionGameState, message.Action)
	assert.Contains(t, string(message.Payload), `"g1"`)
}

func TestHub_PublishDropsStalledClient(t *testing.T) {
	// Given: a watching client whose writer never drains the outbox
	conn, peer := socketPair(t)
	stalled := newClient(conn)

	hub := NewHub(slog.New(slog.NewJSONHandler(io.Discard, nil)))
	hub.subscribe("g1", stalled)

	// When: more snapshots are published than the outbox holds
	published := make(chan struct{})
	go func() {
		defer close(published)

		for range outboxSize + 1 {
			_ = hub.Publish(context.Background(), &entity.GameState{ID: "g1"})
		}
	}()

	// Then: publishing returns without waiting on the socket
	select {
	case <-published:
	case <-time.After(readTimeout):
		t.Fatal("publish blocked on a stalled client")
	}

	// And: the stalled client is closed and refuses further messages
	select {
	case <-stalled.done:
	default:
		t.Fatal("stalled client was not closed")
	}

	require.ErrorIs(t, stalled.send(actionGameState, ResponsePayload{}), errClientClosed)

	require.NoError(t, peer.SetReadDeadline(time.Now().Add(readTimeout)))
	_, _, err := peer.ReadMessage()
	require.Error(t, err)
}

func TestClient_SendOverflow(t *testing.T) {
	// Given: a client with a full outbox
	conn, _ := socketPair(t)
	c := newClient(conn)

	for range outboxSize {
		require.NoError(t, c.sendError("error", "filler"))
	}

	// When: one more message is queued
	err := c.sendError("error", "overflow")

	// Then: the client is dropped
	require.ErrorIs(t, err, errSlowConsumer)
	require.ErrorIs(t, c.sendError("error", "late"), errClientClosed)
}

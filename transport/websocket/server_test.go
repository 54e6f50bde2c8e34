package websocket

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/xo3d-backend/internal/apperror"
	"github.com/rocketscienceinc/xo3d-backend/internal/entity"
	"github.com/rocketscienceinc/xo3d-backend/internal/repository"
	"github.com/rocketscienceinc/xo3d-backend/internal/service"
	"github.com/rocketscienceinc/xo3d-backend/internal/usecase"
)

const readTimeout = 3 * time.Second

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	hub := NewHub(logger)

	manager := usecase.NewGameManager(
		logger,
		service.NewPlayerService(repository.NewMemoryPlayerRepository()),
		service.NewGameService(repository.NewMemoryGameRepository()),
		service.NewBotService(),
		usecase.NewTimerScheduler(),
		time.Hour,
	)
	manager.AddPublisher(hub)

	server := httptest.NewServer(New(logger, manager, hub).Handler())
	t.Cleanup(server.Close)

	return server
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func send(t *testing.T, conn *websocket.Conn, action string, payload any) {
	t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(Message{Action: action, Payload: raw}))
}

// readUntil skips messages until one with the given action arrives.
func readUntil(t *testing.T, conn *websocket.Conn, action string) ResponsePayload {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(readTimeout)))

	for {
		var message Message
		require.NoError(t, conn.ReadJSON(&message))

		if message.Action != action {
			continue
		}

		var payload ResponsePayload
		require.NoError(t, json.Unmarshal(message.Payload, &payload))

		return payload
	}
}

// readStateUntil skips game:state messages until match accepts one.
func readStateUntil(t *testing.T, conn *websocket.Conn, match func(state *entity.GameState) bool) *entity.GameState {
	t.Helper()

	for {
		payload := readUntil(t, conn, actionGameState)
		require.NotNil(t, payload.Game)

		if match(payload.Game) {
			return payload.Game
		}
	}
}

func connect(t *testing.T, conn *websocket.Conn, name string) *entity.Player {
	t.Helper()

	send(t, conn, "connect", RequestPayload{Player: &PlayerPayload{Name: name}})
	payload := readUntil(t, conn, "connect")
	require.Empty(t, payload.Error)
	require.NotNil(t, payload.Player)

	return payload.Player
}

func TestServer_Connect(t *testing.T) {
	server := newTestServer(t)

	t.Run("Actions before connect are rejected", func(t *testing.T) {
		// Given
		conn := dial(t, server)

		// When
		send(t, conn, "room:list", struct{}{})

		// Then
		payload := readUntil(t, conn, "room:list")
		assert.Equal(t, "connect first", payload.Error)
	})

	t.Run("New player gets an id and keeps it on reconnect", func(t *testing.T) {
		// Given
		conn := dial(t, server)
		player := connect(t, conn, "Alice")
		require.NotEmpty(t, player.ID)
		assert.Equal(t, "Alice", player.Name)

		// When
		again := dial(t, server)
		send(t, again, "connect", RequestPayload{Player: &PlayerPayload{ID: player.ID}})
		payload := readUntil(t, again, "connect")

		// Then
		require.NotNil(t, payload.Player)
		assert.Equal(t, player.ID, payload.Player.ID)
		assert.Equal(t, "Alice", payload.Player.Name)
	})

	t.Run("Bot id cannot be claimed", func(t *testing.T) {
		// Given
		conn := dial(t, server)

		// When
		send(t, conn, "connect", RequestPayload{Player: &PlayerPayload{ID: entity.BotPlayerID}})

		// Then
		payload := readUntil(t, conn, "connect")
		assert.Contains(t, payload.Error, service.ErrReservedPlayerID.Error())
	})

	t.Run("Unknown action", func(t *testing.T) {
		// Given
		conn := dial(t, server)
		connect(t, conn, "Dave")

		// When
		send(t, conn, "game:fly", struct{}{})

		// Then
		payload := readUntil(t, conn, "game:fly")
		assert.Equal(t, "unknown action", payload.Error)
	})
}

func TestServer_TwoPlayerGame(t *testing.T) {
	// Given
	server := newTestServer(t)

	alice := dial(t, server)
	connect(t, alice, "Alice")

	bob := dial(t, server)
	connect(t, bob, "Bob")

	send(t, alice, "room:create", RequestPayload{Room: &entity.RoomOptions{Name: "Cube"}})
	created := readUntil(t, alice, "room:create")
	require.Empty(t, created.Error)
	require.NotNil(t, created.Game)
	assert.Equal(t, entity.StatusWaiting, created.Game.Status)

	send(t, bob, "room:list", struct{}{})
	rooms := readUntil(t, bob, "room:list").Rooms
	require.Len(t, rooms, 1)
	assert.Equal(t, "Cube", rooms[0].Name)

	// When
	send(t, bob, "room:join", RequestPayload{GameID: created.Game.ID})

	// Then
	joined := readUntil(t, bob, "room:join")
	require.Empty(t, joined.Error)
	assert.Equal(t, entity.StatusOngoing, joined.Game.Status)

	started := readStateUntil(t, alice, func(state *entity.GameState) bool {
		return state.Status == entity.StatusOngoing
	})
	require.Len(t, started.Players, 2)

	// X moves; both players see the board change
	first, second := alice, bob
	if started.CurrentPlayer != playerMark(t, started, "Alice") {
		first, second = bob, alice
	}

	center := entity.NewCoord(1, 1, 1)

	// When
	send(t, second, "game:turn", RequestPayload{Cell: &center})

	// Then
	rejected := readUntil(t, second, "game:turn")
	assert.Contains(t, rejected.Error, "not your turn")

	// When
	send(t, first, "game:turn", RequestPayload{Cell: &center})

	// Then
	for _, conn := range []*websocket.Conn{first, second} {
		state := readStateUntil(t, conn, func(state *entity.GameState) bool {
			return state.Board.Get(center) != entity.MarkEmpty
		})
		assert.Equal(t, entity.MarkX, state.Board.Get(center))
		assert.Equal(t, entity.MarkO, state.CurrentPlayer)
	}

	// When
	require.NoError(t, second.Close())

	// Then
	ended := readStateUntil(t, first, func(state *entity.GameState) bool {
		return state.DisconnectedPlayer != nil
	})
	assert.Equal(t, entity.StatusFinished, ended.Status)
	assert.True(t, ended.IsGameOver)
}

func TestServer_Leave(t *testing.T) {
	// Given
	server := newTestServer(t)

	alice := dial(t, server)
	connect(t, alice, "Alice")

	send(t, alice, "room:create", RequestPayload{Room: &entity.RoomOptions{Name: "Solo", Password: "pw"}})
	created := readUntil(t, alice, "room:create")
	require.NotNil(t, created.Game)

	bob := dial(t, server)
	connect(t, bob, "Bob")

	send(t, bob, "room:join", RequestPayload{GameID: created.Game.ID, Password: "nope"})
	assert.Contains(t, readUntil(t, bob, "room:join").Error, "wrong room password")

	// When
	send(t, alice, "game:leave", struct{}{})

	// Then
	left := readUntil(t, alice, "game:leave")
	assert.Empty(t, left.Error)

	send(t, bob, "room:list", struct{}{})
	assert.Empty(t, readUntil(t, bob, "room:list").Rooms)

	send(t, alice, "game:turn", RequestPayload{Cell: &entity.Coord{}})
	assert.Equal(t, errNotInGame, readUntil(t, alice, "game:turn").Error)
}

func TestErrorText(t *testing.T) {
	assert.Equal(t, "internal server error", errorText(io.ErrUnexpectedEOF))
	assert.Equal(t, "failed to get game: session not found",
		errorText(fmt.Errorf("failed to get game: %w", apperror.ErrSessionNotFound)))
}

func playerMark(t *testing.T, state *entity.GameState, name string) entity.Mark {
	t.Helper()

	for _, player := range state.Players {
		if player.Name == name {
			return player.Symbol
		}
	}

	t.Fatalf("player %s not in game", name)

	return entity.MarkEmpty
}

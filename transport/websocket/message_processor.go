package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/xo3d-backend/internal/apperror"
	"github.com/rocketscienceinc/xo3d-backend/internal/entity"
	"github.com/rocketscienceinc/xo3d-backend/internal/repository"
	"github.com/rocketscienceinc/xo3d-backend/internal/service"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
	outboxSize     = 32
)

var (
	errClientClosed = errors.New("client is closed")
	errSlowConsumer = errors.New("client outbox is full")
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type PlayerPayload struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// RequestPayload is what clients send. Each action reads only the fields it needs.
type RequestPayload struct {
	Player   *PlayerPayload      `json:"player,omitempty"`
	Room     *entity.RoomOptions `json:"room,omitempty"`
	GameID   string              `json:"game_id,omitempty"`
	Password string              `json:"password,omitempty"`
	Cell     *entity.Coord       `json:"cell,omitempty"`
}

type ResponsePayload struct {
	Player *entity.Player    `json:"player,omitempty"`
	Game   *entity.GameState `json:"game,omitempty"`
	Rooms  []entity.RoomInfo `json:"rooms,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// client is one socket. Frames are queued on outbox and written by writePump, the only writer
// gorilla/websocket allows.
type client struct {
	conn      *websocket.Conn
	outbox    chan []byte
	done      chan struct{}
	closeOnce sync.Once

	mu       sync.RWMutex
	playerID string
	gameID   string
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn:   conn,
		outbox: make(chan []byte, outboxSize),
		done:   make(chan struct{}),
	}
}

// writePump drains outbox until the client is closed or a write fails.
func (that *client) writePump() {
	for {
		select {
		case <-that.done:
			return
		case frame := <-that.outbox:
			if err := that.write(frame); err != nil {
				that.close()
				return
			}
		}
	}
}

func (that *client) write(frame []byte) error {
	if err := that.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err := that.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

// send queues a message without blocking. A client whose outbox is full is closed.
func (that *client) send(action string, payload ResponsePayload) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	frame, err := json.Marshal(Message{Action: action, Payload: payloadJSON})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	select {
	case <-that.done:
		return errClientClosed
	default:
	}

	select {
	case that.outbox <- frame:
		return nil
	default:
		that.close()
		return errSlowConsumer
	}
}

// close stops the writer and the socket. The read loop then fails and the server cleans up.
func (that *client) close() {
	that.closeOnce.Do(func() {
		close(that.done)
		_ = that.conn.Close()
	})
}

func (that *client) sendError(action, message string) error {
	return that.send(action, ResponsePayload{Error: message})
}

func (that *client) session() (string, string) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.playerID, that.gameID
}

func (that *client) setPlayer(playerID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.playerID = playerID
}

func (that *client) setGame(gameID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.gameID = gameID
}

var clientErrors = []error{
	apperror.ErrIllegalMove,
	apperror.ErrSessionNotFound,
	apperror.ErrPlayerNotInSession,
	apperror.ErrSessionFull,
	apperror.ErrWrongPassword,
	apperror.ErrRoomNameTaken,
	apperror.ErrPlayerNameTaken,
	repository.ErrPlayerNotFound,
	service.ErrReservedPlayerID,
}

// errorText hides internal failures from clients and passes rule violations through.
func errorText(err error) string {
	for _, known := range clientErrors {
		if errors.Is(err, known) {
			return err.Error()
		}
	}

	return "internal server error"
}

package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/xo3d-backend/internal/entity"
)

const disconnectTimeout = 5 * time.Second

type uGame interface {
	GetOrCreatePlayer(ctx context.Context, id, name string) (*entity.Player, error)

	CreateSession(ctx context.Context, playerID string, opts entity.RoomOptions) (*entity.GameState, error)
	JoinSession(ctx context.Context, sessionID, playerID, password string) (*entity.GameState, error)
	LeaveSession(ctx context.Context, sessionID, playerID string) (*entity.GameState, error)
	NotifyPeerDisconnect(ctx context.Context, sessionID, playerID string) (*entity.GameState, error)

	SubmitMove(ctx context.Context, sessionID, playerID string, coord entity.Coord) (*entity.GameState, error)
	RequestRestart(ctx context.Context, sessionID, playerID string) (*entity.GameState, error)
	RequestEndGame(ctx context.Context, sessionID, playerID string) (*entity.GameState, error)

	GetState(ctx context.Context, sessionID string) (*entity.GameState, error)
	ListRooms(ctx context.Context) ([]entity.RoomInfo, error)
}

type handlerFunc func(ctx context.Context, c *client, payload *RequestPayload) error

type Server struct {
	logger   *slog.Logger
	uGame    uGame
	hub      *Hub
	upgrader websocket.Upgrader

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, uGame uGame, hub *Hub) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		uGame:  uGame,
		hub:    hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(_ *http.Request) bool { return true },
		},

		handlers: make(map[string]handlerFunc),
	}

	server.handlers["connect"] = server.handleConnect
	server.handlers["room:list"] = server.handleRoomList
	server.handlers["room:create"] = server.handleRoomCreate
	server.handlers["room:join"] = server.handleRoomJoin
	server.handlers["game:turn"] = server.handleGameTurn
	server.handlers["game:restart"] = server.handleGameRestart
	server.handlers["game:end"] = server.handleGameEnd
	server.handlers["game:leave"] = server.handleGameLeave
	server.handlers["game:state"] = server.handleGameState

	return server
}

// Handler returns the http handler serving the /ws endpoint.
func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.upgradeToWebSocket)

	return mux
}

// Start - starts WebSocket server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     that.Handler(),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down websocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection to WebSocket and serves it until it closes.
func (that *Server) upgradeToWebSocket(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := newClient(conn)
	defer that.closeClient(c)

	go c.writePump()

	log.Info("WebSocket connection established", "remote", req.RemoteAddr)

	that.handleMessages(req.Context(), c)
}

// handleMessages - processes messages from the client until the socket fails.
func (that *Server) handleMessages(ctx context.Context, c *client) {
	log := that.logger.With("method", "handleMessages")

	c.conn.SetReadLimit(maxMessageSize)

	for {
		var message Message
		if err := c.conn.ReadJSON(&message); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				log.Warn("failed to unmarshal message", "error", err)
				if sendErr := c.sendError("error", "malformed message"); sendErr != nil {
					return
				}

				continue
			}

			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("connection closed unexpectedly", "error", err)
			}

			return
		}

		if err := that.dispatch(ctx, c, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

func (that *Server) dispatch(ctx context.Context, c *client, message *Message) error {
	handler, ok := that.handlers[message.Action]
	if !ok {
		return c.sendError(message.Action, "unknown action")
	}

	var payload RequestPayload
	if len(message.Payload) > 0 {
		if err := json.Unmarshal(message.Payload, &payload); err != nil {
			return c.sendError(message.Action, "malformed payload")
		}
	}

	if message.Action != "connect" {
		if playerID, _ := c.session(); playerID == "" {
			return c.sendError(message.Action, "connect first")
		}
	}

	return handler(ctx, c, &payload)
}

// closeClient tells the game that the player is gone unless a newer socket took over.
func (that *Server) closeClient(c *client) {
	playerID, gameID := c.session()

	if current := that.hub.forget(c); current && gameID != "" {
		ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
		defer cancel()

		if _, err := that.uGame.NotifyPeerDisconnect(ctx, gameID, playerID); err != nil {
			that.logger.Warn("failed to notify disconnect", "gameID", gameID, "playerID", playerID, "error", err)
		}
	}

	c.close()
}

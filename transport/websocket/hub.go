package websocket

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/xo3d-backend/internal/entity"
)

const actionGameState = "game:state"

// Hub tracks which socket belongs to which player and which game it watches.
type Hub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	rooms   map[string]map[*client]struct{}
	players map[string]*client
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:  logger.With("component", "hub"),
		rooms:   make(map[string]map[*client]struct{}),
		players: make(map[string]*client),
	}
}

// bind makes c the current socket of playerID and returns the socket it replaced, if any.
func (that *Hub) bind(playerID string, c *client) *client {
	that.mu.Lock()
	defer that.mu.Unlock()

	previous := that.players[playerID]
	that.players[playerID] = c

	if previous == c {
		return nil
	}

	return previous
}

// isCurrent reports whether c is still the socket of playerID.
func (that *Hub) isCurrent(playerID string, c *client) bool {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.players[playerID] == c
}

// subscribe moves c to gameID's audience.
func (that *Hub) subscribe(gameID string, c *client) {
	_, previous := c.session()

	that.mu.Lock()
	if previous != "" {
		that.removeLocked(previous, c)
	}

	if _, ok := that.rooms[gameID]; !ok {
		that.rooms[gameID] = make(map[*client]struct{})
	}
	that.rooms[gameID][c] = struct{}{}
	that.mu.Unlock()

	c.setGame(gameID)
}

func (that *Hub) unsubscribe(c *client) {
	_, gameID := c.session()
	if gameID == "" {
		return
	}

	that.mu.Lock()
	that.removeLocked(gameID, c)
	that.mu.Unlock()

	c.setGame("")
}

// forget drops c entirely. It reports whether c was the player's current socket.
func (that *Hub) forget(c *client) bool {
	playerID, gameID := c.session()

	that.mu.Lock()
	defer that.mu.Unlock()

	if gameID != "" {
		that.removeLocked(gameID, c)
	}

	if playerID == "" || that.players[playerID] != c {
		return false
	}

	delete(that.players, playerID)

	return true
}

func (that *Hub) removeLocked(gameID string, c *client) {
	clients, ok := that.rooms[gameID]
	if !ok {
		return
	}

	delete(clients, c)
	if len(clients) == 0 {
		delete(that.rooms, gameID)
	}
}

// Publish queues the snapshot for every socket watching the game. It never waits on a socket: one
// that has fallen a full outbox behind is closed instead.
func (that *Hub) Publish(_ context.Context, state *entity.GameState) error {
	that.mu.RLock()
	audience := make([]*client, 0, len(that.rooms[state.ID]))
	for c := range that.rooms[state.ID] {
		audience = append(audience, c)
	}
	that.mu.RUnlock()

	for _, c := range audience {
		err := c.send(actionGameState, ResponsePayload{Game: state})
		switch {
		case errors.Is(err, errSlowConsumer):
			playerID, _ := c.session()
			that.logger.Warn("dropping slow client", "gameID", state.ID, "playerID", playerID)
		case err != nil:
			that.logger.Debug("failed to send game state", "gameID", state.ID, "error", err)
		}
	}

	return nil
}

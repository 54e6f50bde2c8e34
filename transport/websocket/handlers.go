package websocket

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/xo3d-backend/internal/apperror"
	"github.com/rocketscienceinc/xo3d-backend/internal/entity"
)

const errNotInGame = "not in a game"

func (that *Server) handleConnect(ctx context.Context, c *client, payload *RequestPayload) error {
	log := that.logger.With("method", "handleConnect")

	var id, name string
	if payload.Player != nil {
		id, name = payload.Player.ID, payload.Player.Name
	}

	player, err := that.uGame.GetOrCreatePlayer(ctx, id, name)
	if err != nil {
		log.Error("failed to create or get player", "playerID", id, "error", err)
		return c.sendError("connect", errorText(err))
	}

	c.setPlayer(player.ID)
	if previous := that.hub.bind(player.ID, c); previous != nil {
		that.hub.unsubscribe(previous)
	}

	response := ResponsePayload{Player: player}

	if player.GameID != "" {
		state, err := that.uGame.GetState(ctx, player.GameID)
		switch {
		case err == nil:
			that.hub.subscribe(state.ID, c)
			response.Game = state
		case errors.Is(err, apperror.ErrSessionNotFound):
			player.GameID = ""
		default:
			log.Error("failed to get game", "gameID", player.GameID, "error", err)
		}
	}

	if err = c.send("connect", response); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("successfully connected player", "playerID", player.ID)

	return nil
}

func (that *Server) handleRoomList(ctx context.Context, c *client, _ *RequestPayload) error {
	rooms, err := that.uGame.ListRooms(ctx)
	if err != nil {
		return c.sendError("room:list", errorText(err))
	}

	return c.send("room:list", ResponsePayload{Rooms: rooms})
}

func (that *Server) handleRoomCreate(ctx context.Context, c *client, payload *RequestPayload) error {
	playerID, _ := c.session()

	var opts entity.RoomOptions
	if payload.Room != nil {
		opts = *payload.Room
	}

	state, err := that.uGame.CreateSession(ctx, playerID, opts)
	if err != nil {
		return c.sendError("room:create", errorText(err))
	}

	that.hub.subscribe(state.ID, c)

	return c.send("room:create", ResponsePayload{Game: state})
}

func (that *Server) handleRoomJoin(ctx context.Context, c *client, payload *RequestPayload) error {
	playerID, _ := c.session()

	if payload.GameID == "" {
		return c.sendError("room:join", "game_id is required")
	}

	state, err := that.uGame.JoinSession(ctx, payload.GameID, playerID, payload.Password)
	if err != nil {
		return c.sendError("room:join", errorText(err))
	}

	that.hub.subscribe(state.ID, c)

	return c.send("room:join", ResponsePayload{Game: state})
}

// handleGameTurn answers only on failure; on success every watcher, the mover included, gets game:state.
func (that *Server) handleGameTurn(ctx context.Context, c *client, payload *RequestPayload) error {
	playerID, gameID := c.session()
	if gameID == "" {
		return c.sendError("game:turn", errNotInGame)
	}

	if payload.Cell == nil {
		return c.sendError("game:turn", "cell is required")
	}

	if _, err := that.uGame.SubmitMove(ctx, gameID, playerID, *payload.Cell); err != nil {
		return c.sendError("game:turn", errorText(err))
	}

	return nil
}

func (that *Server) handleGameRestart(ctx context.Context, c *client, _ *RequestPayload) error {
	playerID, gameID := c.session()
	if gameID == "" {
		return c.sendError("game:restart", errNotInGame)
	}

	if _, err := that.uGame.RequestRestart(ctx, gameID, playerID); err != nil {
		return c.sendError("game:restart", errorText(err))
	}

	return nil
}

func (that *Server) handleGameEnd(ctx context.Context, c *client, _ *RequestPayload) error {
	playerID, gameID := c.session()
	if gameID == "" {
		return c.sendError("game:end", errNotInGame)
	}

	if _, err := that.uGame.RequestEndGame(ctx, gameID, playerID); err != nil {
		return c.sendError("game:end", errorText(err))
	}

	return nil
}

func (that *Server) handleGameLeave(ctx context.Context, c *client, _ *RequestPayload) error {
	playerID, gameID := c.session()
	if gameID == "" {
		return c.sendError("game:leave", errNotInGame)
	}

	that.hub.unsubscribe(c)

	state, err := that.uGame.LeaveSession(ctx, gameID, playerID)
	if err != nil && !errors.Is(err, apperror.ErrSessionNotFound) {
		return c.sendError("game:leave", errorText(err))
	}

	return c.send("game:leave", ResponsePayload{Game: state})
}

func (that *Server) handleGameState(ctx context.Context, c *client, payload *RequestPayload) error {
	_, gameID := c.session()
	if payload.GameID != "" {
		gameID = payload.GameID
	}

	if gameID == "" {
		return c.sendError("game:state", errNotInGame)
	}

	state, err := that.uGame.GetState(ctx, gameID)
	if err != nil {
		return c.sendError("game:state", errorText(err))
	}

	return c.send("game:state", ResponsePayload{Game: state})
}

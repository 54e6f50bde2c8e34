package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/xo3d-backend/internal/apperror"
	"github.com/rocketscienceinc/xo3d-backend/internal/entity"
)

// Join seats player in the game. The second seat starts a fresh round.
func Join(game *entity.Game, player *entity.Player) error {
	if game.HasPlayer(player.ID) {
		return nil
	}

	if game.IsFull() {
		return fmt.Errorf("%w: game id %s", apperror.ErrSessionFull, game.ID)
	}

	if player.Name != "" && game.NameTaken(player.Name) {
		return fmt.Errorf("%w: %s", apperror.ErrPlayerNameTaken, player.Name)
	}

	player.Mark = game.FreeMark()
	player.GameID = game.ID
	game.Players = append(game.Players, player)

	if game.IsFull() && !game.IsOngoing() {
		game.ResetRound()
	}

	return nil
}

// MakeTurn places the player's mark and credits every newly completed line.
// On error the game is left exactly as it was.
func MakeTurn(game *entity.Game, playerID string, coord entity.Coord) ([]entity.Line, error) {
	player := game.PlayerByID(playerID)
	if player == nil {
		return nil, fmt.Errorf("%w: player %s", apperror.ErrPlayerNotInSession, playerID)
	}

	if err := game.ConfirmOngoingState(); err != nil {
		return nil, err
	}

	if err := validateMove(game, player.Mark, coord); err != nil {
		return nil, fmt.Errorf("invalid turn: %w", err)
	}

	// validated above, cannot fail
	_ = game.Board.Set(coord, player.Mark)

	claimed := make([]entity.Line, 0, 1)
	for _, line := range CheckMove(&game.Board, coord) {
		if game.Claim(player.Mark, line) {
			claimed = append(claimed, line)
		}
	}

	game.LastLines = claimed
	game.Turn = player.Mark.Opponent()

	if game.Board.IsFull() {
		game.DecideByScore()
	}

	return claimed, nil
}

// validateMove - checks if the move is valid.
func validateMove(game *entity.Game, mark entity.Mark, coord entity.Coord) error {
	if game.Turn != mark {
		return apperror.ErrNotYourTurn
	}

	if !coord.InBounds() {
		return fmt.Errorf("%w: %s", apperror.ErrOutOfBounds, coord)
	}

	if game.Board.Get(coord) != entity.MarkEmpty {
		return fmt.Errorf("%w: %s", apperror.ErrCellOccupied, coord)
	}

	return nil
}

// RequestRestart records a rematch vote. It reports whether the round was reset.
func RequestRestart(game *entity.Game, playerID string) (bool, error) {
	if !game.HasPlayer(playerID) {
		return false, fmt.Errorf("%w: player %s", apperror.ErrPlayerNotInSession, playerID)
	}

	switch {
	case game.IsWaiting():
		return false, apperror.ErrGameIsNotStarted
	case game.IsOngoing():
		return false, apperror.ErrGameInProgress
	}

	for _, player := range game.Players {
		if (player.ID == playerID || player.IsBot()) && !game.IsReady(player.ID) {
			game.ReadyPlayers = append(game.ReadyPlayers, player.ID)
		}
	}

	if !game.IsFull() {
		return false, nil
	}

	for _, player := range game.Players {
		if !game.IsReady(player.ID) {
			return false, nil
		}
	}

	game.ResetRound()

	return true, nil
}

// EndGame stops a running game early and decides it by score.
func EndGame(game *entity.Game, playerID string) error {
	if !game.HasPlayer(playerID) {
		return fmt.Errorf("%w: player %s", apperror.ErrPlayerNotInSession, playerID)
	}

	if err := game.ConfirmOngoingState(); err != nil {
		return err
	}

	game.DecideByScore()

	return nil
}

// Disconnect removes the player. A running game ends as a disconnect, without a winner.
func Disconnect(game *entity.Game, playerID string) error {
	player := game.PlayerByID(playerID)
	if player == nil {
		return fmt.Errorf("%w: player %s", apperror.ErrPlayerNotInSession, playerID)
	}

	players := make([]*entity.Player, 0, len(game.Players))
	for _, p := range game.Players {
		if p.ID != playerID {
			players = append(players, p)
		}
	}
	game.Players = players

	ready := make([]string, 0, len(game.ReadyPlayers))
	for _, id := range game.ReadyPlayers {
		if id != playerID {
			ready = append(ready, id)
		}
	}
	game.ReadyPlayers = ready

	game.Disconnected = player.Clone()

	if game.IsOngoing() {
		game.Winner = entity.WinnerDisconnect
		game.Status = entity.StatusFinished
		game.Turn = entity.MarkEmpty
		game.LastLines = nil
	}

	return nil
}

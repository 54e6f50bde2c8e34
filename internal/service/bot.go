package service

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/rocketscienceinc/xo3d-backend/internal/apperror"
	"github.com/rocketscienceinc/xo3d-backend/internal/entity"
	"github.com/rocketscienceinc/xo3d-backend/internal/tictactoe"
)

var ErrBotNotFound = errors.New("bot player not found")

// Positional weights of the fallback heuristic.
const (
	cornerBonus    = 3
	ownWeight      = 2
	opponentWeight = 1
	windowReach    = entity.Size - 1
)

var center = entity.NewCoord(1, 1, 1)

type BotService interface {
	ChooseMove(board *entity.Board, bot, opponent entity.Mark) (entity.Coord, error)
	MakeTurn(game *entity.Game) ([]entity.Line, error)
}

type botService struct {
	intn func(n int) int
}

func NewBotService() BotService {
	return &botService{
		intn: rand.Intn,
	}
}

// ChooseMove picks the bot's cell: win now, block, center, positional score, random.
func (that *botService) ChooseMove(board *entity.Board, bot, opponent entity.Mark) (entity.Coord, error) {
	empty := board.EmptyCells()
	if len(empty) == 0 {
		return entity.Coord{}, apperror.ErrNoAvailableMoves
	}

	if coord, ok := completingCell(board, empty, bot); ok {
		return coord, nil
	}

	if coord, ok := completingCell(board, empty, opponent); ok {
		return coord, nil
	}

	if board.Get(center) == entity.MarkEmpty {
		return center, nil
	}

	best, bestScore := entity.Coord{}, 0
	for _, coord := range empty {
		if score := positionalScore(board, coord, bot, opponent); score > bestScore {
			best, bestScore = coord, score
		}
	}

	if bestScore > 0 {
		return best, nil
	}

	return empty[that.intn(len(empty))], nil
}

// MakeTurn plays the bot's move in game.
func (that *botService) MakeTurn(game *entity.Game) ([]entity.Line, error) {
	var botPlayer *entity.Player
	for _, player := range game.Players {
		if player.IsBot() {
			botPlayer = player
			break
		}
	}

	if botPlayer == nil {
		return nil, ErrBotNotFound
	}

	coord, err := that.ChooseMove(&game.Board, botPlayer.Mark, botPlayer.Mark.Opponent())
	if err != nil {
		return nil, fmt.Errorf("bot failed to choose a cell: %w", err)
	}

	lines, err := tictactoe.MakeTurn(game, botPlayer.ID, coord)
	if err != nil {
		return nil, fmt.Errorf("bot failed to make turn: %w", err)
	}

	return lines, nil
}

// completingCell returns the first empty cell where mark would complete a line.
func completingCell(board *entity.Board, empty []entity.Coord, mark entity.Mark) (entity.Coord, bool) {
	if !mark.IsPlayable() {
		return entity.Coord{}, false
	}

	for _, coord := range empty {
		trial := *board
		trial[coord.Index()] = mark

		for _, line := range tictactoe.LinesThrough(coord) {
			if line.CompletedBy(&trial, mark) {
				return coord, true
			}
		}
	}

	return entity.Coord{}, false
}

func positionalScore(board *entity.Board, coord entity.Coord, bot, opponent entity.Mark) int {
	score := 0
	if isCorner(coord) {
		score += cornerBonus
	}

	for _, pair := range tictactoe.DirectionPairs {
		own, opp := 0, 0
		for _, dir := range pair {
			for step := 1; step <= windowReach; step++ {
				cell := coord.Add(dir.DX*step, dir.DY*step, dir.DZ*step)
				if !cell.InBounds() {
					break
				}

				switch board.Get(cell) {
				case bot:
					own++
				case opponent:
					opp++
				}
			}
		}

		switch {
		case opp == 0:
			score += ownWeight * own
		case own == 0:
			score += opponentWeight * opp
		}
	}

	return score
}

func isCorner(coord entity.Coord) bool {
	return coord.X != 1 && coord.Y != 1 && coord.Z != 1
}

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/xo3d-backend/internal/apperror"
	"github.com/rocketscienceinc/xo3d-backend/internal/entity"
)

func boardWith(marks map[entity.Coord]entity.Mark) *entity.Board {
	var board entity.Board
	for coord, mark := range marks {
		board[coord.Index()] = mark
	}

	return &board
}

func TestBotService_ChooseMove(t *testing.T) {
	tests := []struct {
		name  string
		marks map[entity.Coord]entity.Mark
		want  entity.Coord
	}{
		{
			name:  "Empty board takes the center",
			marks: map[entity.Coord]entity.Mark{},
			want:  entity.NewCoord(1, 1, 1),
		},
		{
			name: "Completes its own line before anything else",
			marks: map[entity.Coord]entity.Mark{
				entity.NewCoord(0, 0, 0): entity.MarkX,
				entity.NewCoord(1, 0, 0): entity.MarkX,
				entity.NewCoord(0, 2, 2): entity.MarkO,
				entity.NewCoord(2, 1, 2): entity.MarkO,
			},
			want: entity.NewCoord(2, 0, 0),
		},
		{
			name: "Win beats block",
			marks: map[entity.Coord]entity.Mark{
				entity.NewCoord(0, 0, 0): entity.MarkO,
				entity.NewCoord(0, 1, 0): entity.MarkO,
				entity.NewCoord(2, 2, 0): entity.MarkX,
				entity.NewCoord(2, 2, 1): entity.MarkX,
			},
			want: entity.NewCoord(2, 2, 2),
		},
		{
			name: "Blocks the opponent",
			marks: map[entity.Coord]entity.Mark{
				entity.NewCoord(0, 0, 0): entity.MarkO,
				entity.NewCoord(0, 1, 0): entity.MarkO,
				entity.NewCoord(2, 2, 2): entity.MarkX,
			},
			want: entity.NewCoord(0, 2, 0),
		},
		{
			name: "Contests the opponent from a corner",
			marks: map[entity.Coord]entity.Mark{
				entity.NewCoord(1, 1, 1): entity.MarkO,
			},
			want: entity.NewCoord(0, 0, 0),
		},
		{
			name: "Extends its own mark from the first best corner",
			marks: map[entity.Coord]entity.Mark{
				entity.NewCoord(1, 1, 1): entity.MarkO,
				entity.NewCoord(0, 0, 0): entity.MarkX,
			},
			want: entity.NewCoord(0, 0, 2),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: a board and the bot playing X
			board := boardWith(tt.marks)
			before := *board
			bot := NewBotService()

			// When: the bot chooses a move
			coord, err := bot.ChooseMove(board, entity.MarkX, entity.MarkO)

			// Then: it picks the expected cell and leaves the board untouched
			require.NoError(t, err)
			assert.Equal(t, tt.want, coord)
			assert.Equal(t, before, *board)
		})
	}
}

func TestBotService_ChooseMove_FullBoard(t *testing.T) {
	// Given: a full board
	var board entity.Board
	for i := range board {
		board[i] = entity.MarkO
	}

	// When: the bot is asked for a move
	_, err := NewBotService().ChooseMove(&board, entity.MarkX, entity.MarkO)

	// Then: there is nothing to play
	require.ErrorIs(t, err, apperror.ErrNoAvailableMoves)
}

func TestPositionalScore(t *testing.T) {
	board := boardWith(map[entity.Coord]entity.Mark{
		entity.NewCoord(1, 1, 1): entity.MarkO,
		entity.NewCoord(0, 0, 0): entity.MarkX,
	})

	assert.Equal(t, 6, positionalScore(board, entity.NewCoord(2, 0, 0), entity.MarkX, entity.MarkO))
	assert.Equal(t, 3, positionalScore(board, entity.NewCoord(1, 0, 0), entity.MarkX, entity.MarkO))
	assert.Equal(t, 1, positionalScore(board, entity.NewCoord(1, 2, 1), entity.MarkX, entity.MarkO))
}

func TestBotService_MakeTurn(t *testing.T) {
	t.Run("Plays the winning cell for its own mark", func(t *testing.T) {
		// Given: an ongoing bot game where the bot (O) can finish a column
		human := &entity.Player{ID: "p1", Name: "Alice", Mark: entity.MarkX}
		game := entity.NewGame("123", human, entity.RoomOptions{WithBot: true})
		game.Players = []*entity.Player{human, entity.NewBotPlayer(game.ID, entity.MarkO)}
		game.Status = entity.StatusOngoing
		game.Turn = entity.MarkO
		game.Board[entity.NewCoord(0, 0, 0).Index()] = entity.MarkO
		game.Board[entity.NewCoord(0, 0, 1).Index()] = entity.MarkO
		game.Board[entity.NewCoord(2, 2, 2).Index()] = entity.MarkX
		game.Board[entity.NewCoord(2, 1, 2).Index()] = entity.MarkX
		game.Board[entity.NewCoord(1, 2, 0).Index()] = entity.MarkX

		// When: the bot moves
		lines, err := NewBotService().MakeTurn(game)

		// Then: it scores and hands the turn back
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, entity.MarkO, game.Board.Get(entity.NewCoord(0, 0, 2)))
		assert.Equal(t, 1, game.ScoreO)
		assert.Equal(t, entity.MarkX, game.Turn)
	})

	t.Run("No bot in the game", func(t *testing.T) {
		human := &entity.Player{ID: "p1", Mark: entity.MarkX}
		game := entity.NewGame("123", human, entity.RoomOptions{})
		game.Players = []*entity.Player{human}

		_, err := NewBotService().MakeTurn(game)

		require.ErrorIs(t, err, ErrBotNotFound)
	})

	t.Run("Not the bot's turn", func(t *testing.T) {
		human := &entity.Player{ID: "p1", Mark: entity.MarkX}
		game := entity.NewGame("123", human, entity.RoomOptions{WithBot: true})
		game.Players = []*entity.Player{human, entity.NewBotPlayer(game.ID, entity.MarkO)}
		game.Status = entity.StatusOngoing

		_, err := NewBotService().MakeTurn(game)

		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.Equal(t, entity.Board{}, game.Board)
	})
}

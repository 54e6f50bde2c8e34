package tictactoe

import "github.com/rocketscienceinc/xo3d-backend/internal/entity"

// maxReach is how far a run can extend from the placed cell in one sense.
const maxReach = entity.Size - 1

// CheckMove returns every line through last that is fully held by the mark at last.
// The board must already contain the move. The result is deterministic and the board is not modified.
func CheckMove(board *entity.Board, last entity.Coord) []entity.Line {
	symbol := board.Get(last)
	if !symbol.IsPlayable() {
		return nil
	}

	var completed []entity.Line

	for _, pair := range DirectionPairs {
		run := []entity.Coord{last}

		for _, d := range pair {
			current := last
			for i := 0; i < maxReach; i++ {
				current = step(current, d, 1)
				if !current.InBounds() || board.Get(current) != symbol {
					break
				}
				run = append(run, current)
			}
		}

		if len(run) >= entity.Size {
			completed = append(completed, entity.NewLine(run[0], run[1], run[2]))
		}
	}

	return completed
}

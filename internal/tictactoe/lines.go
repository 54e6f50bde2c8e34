package tictactoe

import "github.com/rocketscienceinc/xo3d-backend/internal/entity"

// Direction is a unit step through the cube.
type Direction struct {
	DX, DY, DZ int
}

func (that Direction) Reverse() Direction {
	return Direction{DX: -that.DX, DY: -that.DY, DZ: -that.DZ}
}

// axes holds one sense of each of the 13 directions a line can run along.
var axes = [13]Direction{
	{1, 0, 0}, {0, 1, 0}, {0, 0, 1},

	// planar diagonals
	{1, 1, 0}, {1, -1, 0},
	{1, 0, 1}, {1, 0, -1},
	{0, 1, 1}, {0, 1, -1},

	// space diagonals
	{1, 1, 1}, {1, 1, -1}, {1, -1, 1}, {1, -1, -1},
}

// DirectionPairs are the 13 axes, each with both of its senses.
var DirectionPairs [13][2]Direction

var (
	catalog []entity.Line
	through [entity.CellCount][]entity.Line
)

func init() {
	for i, axis := range axes {
		DirectionPairs[i] = [2]Direction{axis, axis.Reverse()}
	}

	catalog = buildCatalog()

	for i := range through {
		cell := entity.CoordFromIndex(i)
		for _, line := range catalog {
			if line.Contains(cell) {
				through[i] = append(through[i], line)
			}
		}
	}
}

// buildCatalog walks every signed direction from every cell and keeps each line once.
func buildCatalog() []entity.Line {
	seen := make(map[[3]int]struct{})
	lines := make([]entity.Line, 0, 49)

	for i := 0; i < entity.CellCount; i++ {
		origin := entity.CoordFromIndex(i)

		for _, pair := range DirectionPairs {
			for _, d := range pair {
				second := step(origin, d, 1)
				third := step(origin, d, 2)
				if !second.InBounds() || !third.InBounds() {
					continue
				}

				line := entity.NewLine(origin, second, third)
				if _, ok := seen[line.Key()]; ok {
					continue
				}

				seen[line.Key()] = struct{}{}
				lines = append(lines, line)
			}
		}
	}

	return lines
}

func step(from entity.Coord, d Direction, n int) entity.Coord {
	return from.Add(d.DX*n, d.DY*n, d.DZ*n)
}

// AllLines returns every winning line of the cube.
func AllLines() []entity.Line {
	return append(make([]entity.Line, 0, len(catalog)), catalog...)
}

// LinesThrough returns the lines that contain coord.
func LinesThrough(coord entity.Coord) []entity.Line {
	if !coord.InBounds() {
		return nil
	}

	lines := through[coord.Index()]

	return append(make([]entity.Line, 0, len(lines)), lines...)
}

package tictactoe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/xo3d-backend/internal/entity"
)

func TestDirectionPairs(t *testing.T) {
	// Given: the direction catalog
	// Then: every pair holds one direction and its reverse
	seen := make(map[Direction]struct{}, 26)
	for _, pair := range DirectionPairs {
		assert.Equal(t, pair[0].Reverse(), pair[1])
		assert.NotEqual(t, Direction{}, pair[0])

		seen[pair[0]] = struct{}{}
		seen[pair[1]] = struct{}{}
	}

	// And: together they cover all 26 neighbours of a cell
	assert.Len(t, seen, 26)
}

func TestAllLines(t *testing.T) {
	t.Run("Catalog holds 49 distinct lines", func(t *testing.T) {
		// When: listing every line
		lines := AllLines()

		// Then: naive enumeration collapses into 49 distinct lines
		require.Len(t, lines, 49)

		keys := make(map[[3]int]struct{}, len(lines))
		for _, line := range lines {
			keys[line.Key()] = struct{}{}
		}
		assert.Len(t, keys, 49)
	})

	t.Run("Every line is three collinear cells inside the cube", func(t *testing.T) {
		for _, line := range AllLines() {
			for _, cell := range line {
				require.True(t, cell.InBounds(), "cell %s of line %v", cell, line)
			}

			a, b, c := line[0], line[1], line[2]
			assert.NotEqual(t, a, b)
			assert.NotEqual(t, b, c)
			assert.Equal(t, [3]int{b.X - a.X, b.Y - a.Y, b.Z - a.Z}, [3]int{c.X - b.X, c.Y - b.Y, c.Z - b.Z})
		}
	})

	t.Run("Catalog split by kind", func(t *testing.T) {
		var axis, planar, space int
		for _, line := range AllLines() {
			d := [3]int{line[1].X - line[0].X, line[1].Y - line[0].Y, line[1].Z - line[0].Z}
			nonZero := 0
			for _, v := range d {
				if v != 0 {
					nonZero++
				}
			}

			switch nonZero {
			case 1:
				axis++
			case 2:
				planar++
			case 3:
				space++
			}
		}

		assert.Equal(t, 27, axis)
		assert.Equal(t, 18, planar)
		assert.Equal(t, 4, space)
	})

	t.Run("Returned slice is a copy", func(t *testing.T) {
		lines := AllLines()
		lines[0] = entity.Line{}

		assert.NotEqual(t, entity.Line{}, AllLines()[0])
	})
}

func TestLinesThrough(t *testing.T) {
	tests := []struct {
		name  string
		coord entity.Coord
		want  int
	}{
		{name: "center", coord: entity.NewCoord(1, 1, 1), want: 13},
		{name: "corner", coord: entity.NewCoord(0, 0, 0), want: 7},
		{name: "opposite corner", coord: entity.NewCoord(2, 2, 2), want: 7},
		{name: "face center", coord: entity.NewCoord(1, 1, 0), want: 5},
		{name: "edge middle", coord: entity.NewCoord(1, 0, 0), want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// When: listing the lines through the cell
			lines := LinesThrough(tt.coord)

			// Then: the count matches the cell's position and every line contains the cell
			require.Len(t, lines, tt.want)
			for _, line := range lines {
				assert.True(t, line.Contains(tt.coord))
			}
		})
	}

	t.Run("Every line is reachable from each of its cells", func(t *testing.T) {
		total := 0
		for i := 0; i < entity.CellCount; i++ {
			total += len(LinesThrough(entity.CoordFromIndex(i)))
		}

		assert.Equal(t, 49*3, total)
	})

	t.Run("Out of bounds cell has no lines", func(t *testing.T) {
		assert.Empty(t, LinesThrough(entity.NewCoord(3, 0, 0)))
		assert.Empty(t, LinesThrough(entity.NewCoord(-1, 1, 1)))
	})
}

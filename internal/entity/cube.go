package entity

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/xo3d-backend/internal/apperror"
)

const (
	// Size is the length of every edge of the cube.
	Size = 3
	// CellCount is the number of cells in the cube.
	CellCount = Size * Size * Size
)

var (
	ErrInvalidMark  = errors.New("invalid mark")
	ErrInvalidCoord = errors.New("invalid coordinate")
)

// Mark is the content of a single cell.
type Mark uint8

const (
	MarkEmpty Mark = iota
	MarkX
	MarkO
)

func (that Mark) String() string {
	switch that {
	case MarkX:
		return PlayerX
	case MarkO:
		return PlayerO
	default:
		return EmptyCell
	}
}

// Opponent returns the other playing mark. Empty has no opponent.
func (that Mark) Opponent() Mark {
	switch that {
	case MarkX:
		return MarkO
	case MarkO:
		return MarkX
	default:
		return MarkEmpty
	}
}

func (that Mark) IsPlayable() bool {
	return that == MarkX || that == MarkO
}

func (that Mark) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Mark) UnmarshalText(text []byte) error {
	mark, err := ParseMark(string(text))
	if err != nil {
		return err
	}

	*that = mark

	return nil
}

func ParseMark(value string) (Mark, error) {
	switch value {
	case PlayerX:
		return MarkX, nil
	case PlayerO:
		return MarkO, nil
	case EmptyCell:
		return MarkEmpty, nil
	default:
		return MarkEmpty, fmt.Errorf("%w: %q", ErrInvalidMark, value)
	}
}

// Coord addresses one cell of the cube. On the wire it is a [x, y, z] triple.
type Coord struct {
	X int
	Y int
	Z int
}

func NewCoord(x, y, z int) Coord {
	return Coord{X: x, Y: y, Z: z}
}

// CoordFromIndex is the inverse of Coord.Index.
func CoordFromIndex(index int) Coord {
	return Coord{X: index / (Size * Size), Y: index / Size % Size, Z: index % Size}
}

func (that Coord) InBounds() bool {
	return inRange(that.X) && inRange(that.Y) && inRange(that.Z)
}

// Index packs the coordinate as x*9 + y*3 + z.
func (that Coord) Index() int {
	return that.X*Size*Size + that.Y*Size + that.Z
}

func (that Coord) Add(dx, dy, dz int) Coord {
	return Coord{X: that.X + dx, Y: that.Y + dy, Z: that.Z + dz}
}

func (that Coord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", that.X, that.Y, that.Z)
}

func (that Coord) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]int{that.X, that.Y, that.Z})
}

func (that *Coord) UnmarshalJSON(data []byte) error {
	var triple []int
	if err := json.Unmarshal(data, &triple); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCoord, err)
	}

	if len(triple) != 3 {
		return fmt.Errorf("%w: expected 3 components, got %d", ErrInvalidCoord, len(triple))
	}

	*that = Coord{X: triple[0], Y: triple[1], Z: triple[2]}

	return nil
}

func inRange(v int) bool {
	return v >= 0 && v < Size
}

// Board is the 27-cell cube. It is a plain array, so assigning it copies it.
type Board [CellCount]Mark

func (that *Board) Get(coord Coord) Mark {
	if !coord.InBounds() {
		return MarkEmpty
	}

	return that[coord.Index()]
}

// Set writes a mark into an empty cell.
func (that *Board) Set(coord Coord, mark Mark) error {
	if !mark.IsPlayable() {
		return fmt.Errorf("%w: %d", ErrInvalidMark, mark)
	}

	if !coord.InBounds() {
		return fmt.Errorf("%w: %s", apperror.ErrOutOfBounds, coord)
	}

	if that[coord.Index()] != MarkEmpty {
		return fmt.Errorf("%w: %s", apperror.ErrCellOccupied, coord)
	}

	that[coord.Index()] = mark

	return nil
}

func (that *Board) IsFull() bool {
	return that.Count(MarkEmpty) == 0
}

// EmptyCells lists the free cells in packed index order.
func (that *Board) EmptyCells() []Coord {
	cells := make([]Coord, 0, that.Count(MarkEmpty))
	for i, cell := range that {
		if cell == MarkEmpty {
			cells = append(cells, CoordFromIndex(i))
		}
	}

	return cells
}

func (that *Board) Count(mark Mark) int {
	count := 0
	for _, cell := range that {
		if cell == mark {
			count++
		}
	}

	return count
}

// Nested returns the board as board[x][y][z] strings, the shape clients render.
func (that *Board) Nested() [Size][Size][Size]string {
	var nested [Size][Size][Size]string
	for i, cell := range that {
		c := CoordFromIndex(i)
		nested[c.X][c.Y][c.Z] = cell.String()
	}

	return nested
}

func (that Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(that.Nested())
}

func (that *Board) UnmarshalJSON(data []byte) error {
	var nested [Size][Size][Size]string
	if err := json.Unmarshal(data, &nested); err != nil {
		return fmt.Errorf("failed to unmarshal board: %w", err)
	}

	var board Board
	for x := range nested {
		for y := range nested[x] {
			for z, value := range nested[x][y] {
				mark, err := ParseMark(value)
				if err != nil {
					return err
				}
				board[NewCoord(x, y, z).Index()] = mark
			}
		}
	}

	*that = board

	return nil
}

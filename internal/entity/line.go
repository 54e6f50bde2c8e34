package entity

import "sort"

// Line is three collinear cells, kept sorted by packed index so equal lines compare equal.
type Line [3]Coord

func NewLine(a, b, c Coord) Line {
	line := Line{a, b, c}
	sort.Slice(line[:], func(i, j int) bool {
		return line[i].Index() < line[j].Index()
	})

	return line
}

// Key identifies the line independent of the order its cells were given in.
func (that Line) Key() [3]int {
	normalized := NewLine(that[0], that[1], that[2])

	return [3]int{normalized[0].Index(), normalized[1].Index(), normalized[2].Index()}
}

func (that Line) Contains(coord Coord) bool {
	for _, cell := range that {
		if cell == coord {
			return true
		}
	}

	return false
}

// CompletedBy reports whether all three cells hold mark.
func (that Line) CompletedBy(board *Board, mark Mark) bool {
	if !mark.IsPlayable() {
		return false
	}

	for _, cell := range that {
		if board.Get(cell) != mark {
			return false
		}
	}

	return true
}

func cloneLines(lines []Line) []Line {
	if lines == nil {
		return nil
	}

	return append(make([]Line, 0, len(lines)), lines...)
}

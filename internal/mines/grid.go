package mines

import (
	"fmt"
	"strconv"
	"strings"
)

type CellState int8

const (
	Hidden  CellState = -2
	Flagged CellState = -1
	// 0-8 for a revealed cell with the given number of mined neighbours
	ExposedMineSurvived CellState = 64
	ExposedMineFatal    CellState = 65
	UnflaggedMine       CellState = 66 // post-game disclosure
	CorrectFlag         CellState = 67
	WrongFlag           CellState = 68
)

func Revealed(clue int) CellState {
	return CellState(clue)
}

// Clue returns the adjacency count of a revealed cell.
func (s CellState) Clue() (int, bool) {
	if 0 <= s && s <= 8 {
		return int(s), true
	}
	return 0, false
}

func (s CellState) String() string {
	switch s {
	case Hidden:
		return " "
	case Flagged, CorrectFlag:
		return "*"
	case WrongFlag:
		return "x"
	case ExposedMineSurvived:
		return "o"
	case ExposedMineFatal:
		return "#"
	case UnflaggedMine:
		return "@"
	case 0, 1, 2, 3, 4, 5, 6, 7, 8:
		return strconv.Itoa(int(s))
	default:
		return "!"
	}
}

// Grid is a row-major snapshot of per-cell states.
type Grid []CellState

func (g Grid) At(cols int, pt Point) CellState {
	return g[pt.Row*cols+pt.Col]
}

func (g Grid) ToString(cols int) string {
	var b strings.Builder
	for row := range len(g) / cols {
		for col := range cols {
			i := row*cols + col
			if i >= len(g) {
				break
			}
			fmt.Fprint(&b, g[i].String()+" ")
		}
		fmt.Fprint(&b, "\n")
	}
	return b.String()
}

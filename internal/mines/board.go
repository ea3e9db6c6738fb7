package mines

import (
	"fmt"
	"strings"
)

// Board is the immutable mine layout of a game together with the clue of
// every safe cell. Clues of mined cells are undefined.
type Board struct {
	params GameParams
	safe   Point
	mines  []bool
	clues  []int8
}

func (b *Board) Rows() int { return b.params.Rows }
func (b *Board) Cols() int { return b.params.Cols }

// Safe returns the first reveal the board was generated around.
func (b *Board) Safe() Point { return b.safe }

func (b *Board) MineAt(pt Point) bool {
	return b.mines[b.params.index(pt)]
}

// Clue returns the number of mined neighbours of a safe cell.
func (b *Board) Clue(pt Point) int {
	return int(b.clues[b.params.index(pt)])
}

func (b *Board) MineCount() (count int) {
	for _, m := range b.mines {
		if m {
			count++
		}
	}
	return
}

// Mines lists the mined cells in row-major order.
func (b *Board) Mines() []Point {
	points := make([]Point, 0, b.params.MineCount)
	for i, m := range b.mines {
		if m {
			points = append(points, b.params.point(i))
		}
	}
	return points
}

func (b *Board) countNeighbors(pt Point) (n int8) {
	for nb := range b.params.neighbors(pt) {
		if b.MineAt(nb) {
			n++
		}
	}
	return
}

func (b *Board) PrintGrid() string {
	var sb strings.Builder
	for row := range b.params.Rows {
		for col := range b.params.Cols {
			pt := Point{Row: row, Col: col}
			var ch string
			if pt == b.safe {
				ch = "S "
			} else if b.MineAt(pt) {
				ch = "* "
			} else {
				ch = fmt.Sprintf("%d ", b.Clue(pt))
			}
			fmt.Fprint(&sb, ch)
		}
		fmt.Fprint(&sb, "\n")
	}
	return sb.String()
}

func (b *Board) String() string {
	return fmt.Sprintf(
		"%dx%d(%d)@%d:%d",
		b.params.Rows, b.params.Cols, b.params.MineCount, b.safe.Row, b.safe.Col,
	)
}

package mines

import (
	"fmt"
	"iter"
	"strings"
)

type GameParams struct {
	Rows      int `json:"rows" yaml:"rows"`
	Cols      int `json:"cols" yaml:"cols"`
	MineCount int `json:"mine_count" yaml:"mines"`
	Lives     int `json:"lives" yaml:"lives"`
	TimeLimit int `json:"time_limit" yaml:"time_limit"` // clock ticks
}

func (p GameParams) Unpack() (rows, cols, mineCount int) {
	return p.Rows, p.Cols, p.MineCount
}

func (p GameParams) Seed() string {
	return fmt.Sprintf(
		"%d:%d:%d:%d:%d", p.Rows, p.Cols, p.MineCount, p.Lives, p.TimeLimit,
	)
}

func ParseSeed(seed string) (*GameParams, error) {
	p := &GameParams{}
	sseed := strings.ReplaceAll(seed, ":", " ")
	n, err := fmt.Sscanf(
		sseed, "%d %d %d %d %d",
		&p.Rows, &p.Cols, &p.MineCount, &p.Lives, &p.TimeLimit,
	)
	if n != 5 || err != nil {
		return nil, fmt.Errorf(
			`invalid game params seed (sseed = "%s", n = %d, err = %w)`,
			sseed, n, err,
		)
	}
	return p, nil
}

func (p GameParams) ValidatePosition(row, col int) bool {
	return 0 <= row && row < p.Rows && 0 <= col && col < p.Cols
}

// SafeCells is the number of cells that must be revealed to win.
func (p GameParams) SafeCells() int {
	return p.Rows*p.Cols - p.MineCount
}

// maxSafeZone is the size of the largest 3x3 safe zone the board can hold,
// i.e. the one around an interior cell.
func (p GameParams) maxSafeZone() int {
	return min(3, p.Rows) * min(3, p.Cols)
}

// Validate reports whether a board can be generated for every possible
// first reveal and whether the player state is well-formed.
func (p GameParams) Validate() error {
	switch {
	case p.Rows <= 0 || p.Cols <= 0:
		return invalidf("board must be at least 1x1, got %dx%d", p.Rows, p.Cols)
	case p.MineCount < 0:
		return invalidf("mine count cannot be negative, got %d", p.MineCount)
	case p.MineCount > p.Rows*p.Cols-p.maxSafeZone():
		return invalidf(
			"%d mines do not fit on a %dx%d board around a 3x3 safe zone",
			p.MineCount, p.Rows, p.Cols,
		)
	case p.Lives <= 0:
		return invalidf("at least one life is required, got %d", p.Lives)
	case p.TimeLimit <= 0:
		return invalidf("time limit must be positive, got %d", p.TimeLimit)
	}
	return nil
}

func (p GameParams) index(pt Point) int {
	return pt.Row*p.Cols + pt.Col
}

func (p GameParams) point(i int) Point {
	return Point{Row: i / p.Cols, Col: i % p.Cols}
}

// neighbors yields the in-bounds Moore neighbours of pt, pt excluded.
func (p GameParams) neighbors(pt Point) iter.Seq[Point] {
	return func(yield func(Point) bool) {
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				if dr == 0 && dc == 0 {
					continue
				}
				n := Point{Row: pt.Row + dr, Col: pt.Col + dc}
				if !p.ValidatePosition(n.Row, n.Col) {
					continue
				}
				if !yield(n) {
					return
				}
			}
		}
	}
}

type Point struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (pt Point) String() string {
	return fmt.Sprintf("(%d,%d)", pt.Row, pt.Col)
}

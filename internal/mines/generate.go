package mines

import (
	"math/rand/v2"
)

func absDiff(x, y int) int {
	if x > y {
		return x - y
	}
	return y - x
}

// Generate lays out p.MineCount mines so that none of them touches safe, and
// computes the clue of every other cell. The layout is uniformly random over
// the cells outside the safe zone and depends only on r.
func (p GameParams) Generate(safe Point, r *rand.Rand) (*Board, error) {
	rows, cols, mineCount := p.Unpack()

	if rows <= 0 || cols <= 0 {
		return nil, invalidf("board must be at least 1x1, got %dx%d", rows, cols)
	}
	if !p.ValidatePosition(safe.Row, safe.Col) {
		return nil, invalidf("safe cell %s is outside of a %dx%d board", safe, rows, cols)
	}

	/*
	 * Write down the list of possible mine locations: every cell that is
	 * not within one square of the safe cell.
	 */
	candidates := make([]int, 0, rows*cols)
	for row := range rows {
		for col := range cols {
			if absDiff(safe.Row, row) > 1 || absDiff(safe.Col, col) > 1 {
				candidates = append(candidates, row*cols+col)
			}
		}
	}

	if mineCount < 0 || mineCount > len(candidates) {
		return nil, invalidf(
			"cannot place %d mines in %d cells around %s",
			mineCount, len(candidates), safe,
		)
	}

	board := &Board{
		params: p,
		safe:   safe,
		mines:  make([]bool, rows*cols),
		clues:  make([]int8, rows*cols),
	}

	/*
	 * Now pick n off the list at random, swapping each pick with the
	 * last remaining candidate so it cannot be drawn again.
	 */
	k := len(candidates)
	for range mineCount {
		i := r.IntN(k)
		board.mines[candidates[i]] = true
		k--
		candidates[i] = candidates[k]
	}

	for i := range board.mines {
		if !board.mines[i] {
			board.clues[i] = board.countNeighbors(p.point(i))
		}
	}

	Log.WithField("board", board).Debug("generated board")

	return board, nil
}

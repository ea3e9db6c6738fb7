package mines

import (
	"encoding/json"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// layoutGame starts a game on a fixed board, '*' marking mines, as if the
// first reveal had already happened somewhere safe.
func layoutGame(t *testing.T, lives, timeLimit int, rows ...string) *Game {
	t.Helper()

	g, err := Start(GameParams{
		Rows: len(rows), Cols: len(rows[0]), Lives: lives, TimeLimit: timeLimit,
	}, nil)
	require.NoError(t, err)

	mines := make([]bool, len(rows)*len(rows[0]))
	for r, line := range rows {
		require.Len(t, line, len(rows[0]))
		for c, ch := range line {
			if ch == '*' {
				mines[g.params.index(Point{r, c})] = true
				g.params.MineCount++
			}
		}
	}

	board := &Board{
		params: g.params,
		mines:  mines,
		clues:  make([]int8, len(mines)),
	}
	for i := range mines {
		board.clues[i] = board.countNeighbors(g.params.point(i))
	}
	g.board = board
	g.transition(evStart)
	require.Equal(t, Playing, g.Phase())
	return g
}

type frozen struct {
	grid            Grid
	phase           Phase
	lives, timeLeft int
}

func freeze(g *Game) frozen {
	return frozen{g.Snapshot(), g.Phase(), g.Lives(), g.TimeRemaining()}
}

func checkInvariants(t *testing.T, g *Game) {
	t.Helper()
	n := 0
	for i := range g.revealed {
		assert.False(t, g.revealed[i] && g.flagged[i], "cell %s revealed and flagged", g.params.point(i))
		if g.revealed[i] {
			n++
			assert.False(t, g.board.mines[i], "mine %s revealed", g.params.point(i))
		}
	}
	assert.Equal(t, n, g.RevealedCount())
}

func revealedSet(g *Game) []Point {
	var points []Point
	for i, r := range g.revealed {
		if r {
			points = append(points, g.params.point(i))
		}
	}
	return points
}

func TestStartInvalid(t *testing.T) {
	tests := map[string]GameParams{
		"no rows":        {Rows: 0, Cols: 6, MineCount: 1, Lives: 1, TimeLimit: 10},
		"no cols":        {Rows: 6, Cols: 0, MineCount: 1, Lives: 1, TimeLimit: 10},
		"negative mines": {Rows: 6, Cols: 6, MineCount: -1, Lives: 1, TimeLimit: 10},
		"too many mines": {Rows: 6, Cols: 6, MineCount: 28, Lives: 1, TimeLimit: 10},
		"no lives":       {Rows: 6, Cols: 6, MineCount: 5, Lives: 0, TimeLimit: 10},
		"no time":        {Rows: 6, Cols: 6, MineCount: 5, Lives: 1, TimeLimit: 0},
		"tiny crowded":   {Rows: 2, Cols: 2, MineCount: 1, Lives: 1, TimeLimit: 10},
	}
	for name, params := range tests {
		t.Run(name, func(t *testing.T) {
			g, err := Start(params, rand.New(rand.NewPCG(1, 2)))
			assert.Nil(t, g)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
		})
	}
}

func TestStartPresets(t *testing.T) {
	for _, params := range []GameParams{
		{Rows: 6, Cols: 6, MineCount: 5, TimeLimit: 60, Lives: 1},
		{Rows: 10, Cols: 10, MineCount: 15, TimeLimit: 180, Lives: 2},
		{Rows: 16, Cols: 16, MineCount: 40, TimeLimit: 400, Lives: 3},
	} {
		g, err := Start(params, rand.New(rand.NewPCG(1, 2)))
		require.NoError(t, err, params.Seed())
		assert.Equal(t, NotStarted, g.Phase())
		assert.Equal(t, params.Lives, g.Lives())
		assert.Equal(t, params.TimeLimit, g.TimeRemaining())
		assert.Nil(t, g.Mines())
		for _, s := range g.Snapshot() {
			assert.Equal(t, Hidden, s)
		}
	}
}

func TestFirstRevealExample(t *testing.T) {
	params := GameParams{Rows: 6, Cols: 6, MineCount: 5, Lives: 1, TimeLimit: 60}

	var g *Game
	for seed := range uint64(100) {
		candidate, err := Start(params, rand.New(rand.NewPCG(seed, 1)))
		require.NoError(t, err)
		out := candidate.Reveal(Point{2, 2})
		require.NotEmpty(t, out.Changed)
		assert.Equal(t, Point{2, 2}, out.Changed[0].Point)
		assert.Equal(t, Revealed(0), out.Changed[0].State)
		if out.Phase == Playing && candidate.board.MineAt(Point{0, 0}) {
			g = candidate
			break
		}
	}
	require.NotNil(t, g, "no seed put a mine in the corner")

	for row := 1; row <= 3; row++ {
		for col := 1; col <= 3; col++ {
			assert.False(t, g.board.MineAt(Point{row, col}))
		}
	}

	out := g.Reveal(Point{0, 0})
	assert.Equal(t, LostLives, out.Phase)
	assert.Equal(t, 0, out.Lives)
	assert.Equal(t, &Point{0, 0}, out.Trigger)
	assert.Equal(t, []CellUpdate{{Point{0, 0}, ExposedMineFatal}}, out.Changed)
	assert.ElementsMatch(t, g.board.Mines(), out.Mines)
	assert.Len(t, out.Mines, 5)
	assert.Equal(t, ExposedMineFatal, g.CellState(Point{0, 0}))
}

func TestMineHitWithSpareLife(t *testing.T) {
	g := layoutGame(t, 2, 60,
		"*...",
		"....",
		"...*",
	)

	out := g.Reveal(Point{0, 0})
	assert.Equal(t, Playing, out.Phase)
	assert.Equal(t, 1, out.Lives)
	assert.Nil(t, out.Trigger)
	assert.Nil(t, out.Mines)
	assert.Equal(t, []CellUpdate{{Point{0, 0}, ExposedMineSurvived}}, out.Changed)
	assert.Equal(t, ExposedMineSurvived, g.CellState(Point{0, 0}))
	assert.Empty(t, revealedSet(g))

	// a spent mine cannot be stepped on again
	before := freeze(g)
	assert.Empty(t, g.Reveal(Point{0, 0}).Changed)
	assert.Equal(t, before, freeze(g))

	// but it can still be flagged and unflagged
	out = g.ToggleFlag(Point{0, 0})
	assert.Equal(t, []CellUpdate{{Point{0, 0}, Flagged}}, out.Changed)
	assert.Equal(t, 1, g.FlagCount())
	assert.Empty(t, g.Reveal(Point{0, 0}).Changed)
	out = g.ToggleFlag(Point{0, 0})
	assert.Equal(t, []CellUpdate{{Point{0, 0}, ExposedMineSurvived}}, out.Changed)
	assert.Equal(t, 0, g.FlagCount())
	assert.Equal(t, 1, g.Lives())

	out = g.Reveal(Point{2, 3})
	assert.Equal(t, LostLives, out.Phase)
	assert.Equal(t, 0, out.Lives)
	assert.Equal(t, &Point{2, 3}, out.Trigger)
	assert.ElementsMatch(t, []Point{{0, 0}, {2, 3}}, out.Mines)
	checkInvariants(t, g)
}

func TestMineHitWithLastLife(t *testing.T) {
	g := layoutGame(t, 1, 60,
		"..*",
		"...",
	)
	out := g.Reveal(Point{0, 2})
	assert.Equal(t, LostLives, out.Phase)
	assert.Equal(t, 0, g.Lives())
	assert.Equal(t, []Point{{0, 2}}, g.Mines())
}

func TestFloodFillStopsAtFlags(t *testing.T) {
	g := layoutGame(t, 1, 60,
		".....",
		".....",
		".....",
		"....*",
	)
	for row := range 4 {
		g.ToggleFlag(Point{row, 2})
	}
	checkInvariants(t, g)

	out := g.Reveal(Point{0, 0})
	assert.Equal(t, Playing, out.Phase)
	assert.Len(t, out.Changed, 8)
	assert.ElementsMatch(t, []Point{
		{0, 0}, {0, 1}, {1, 0}, {1, 1}, {2, 0}, {2, 1}, {3, 0}, {3, 1},
	}, revealedSet(g))
	checkInvariants(t, g)

	g.ToggleFlag(Point{0, 2})
	out = g.Reveal(Point{0, 2})
	assert.Equal(t, Playing, out.Phase)
	assert.Len(t, out.Changed, 7)
	assert.Equal(t, Hidden, g.CellState(Point{3, 3}))
	assert.Equal(t, Revealed(1), g.CellState(Point{2, 3}))
	for row := 1; row < 4; row++ {
		assert.Equal(t, Flagged, g.CellState(Point{row, 2}))
	}
	assert.Equal(t, 15, g.RevealedCount())
	checkInvariants(t, g)
}

func TestFloodFillRegion(t *testing.T) {
	params := GameParams{Rows: 12, Cols: 12, MineCount: 20}
	r := rand.New(rand.NewPCG(3, 4))

	for range 25 {
		safe := Point{r.IntN(params.Rows), r.IntN(params.Cols)}
		board, err := params.Generate(safe, r)
		require.NoError(t, err)

		g, err := Start(GameParams{
			Rows: params.Rows, Cols: params.Cols, MineCount: params.MineCount,
			Lives: 1, TimeLimit: 10,
		}, nil)
		require.NoError(t, err)
		g.board = board
		g.transition(evStart)

		g.Reveal(safe)
		checkInvariants(t, g)

		// independent search: zero cells connected to safe plus their rim
		want := map[Point]bool{safe: true}
		stack := []Point{safe}
		for len(stack) > 0 {
			pt := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if board.Clue(pt) != 0 {
				continue
			}
			for nb := range params.neighbors(pt) {
				if !want[nb] {
					want[nb] = true
					stack = append(stack, nb)
				}
			}
		}

		got := revealedSet(g)
		assert.Len(t, got, len(want))
		for _, pt := range got {
			assert.True(t, want[pt], "unexpected %s", pt)
			assert.False(t, board.MineAt(pt))
		}
	}
}

func TestWinRegardlessOfLives(t *testing.T) {
	// no zero clues, so every reveal uncovers exactly one cell
	g := layoutGame(t, 3, 60,
		"*.*",
		"...",
		".*.",
	)
	g.Reveal(Point{0, 0})
	require.Equal(t, 2, g.Lives())

	safe := []Point{{0, 1}, {1, 0}, {1, 1}, {1, 2}, {2, 0}, {2, 2}}
	for i, pt := range safe {
		out := g.Reveal(pt)
		checkInvariants(t, g)
		if i < len(safe)-1 {
			assert.Equal(t, Playing, out.Phase)
			assert.Nil(t, out.Mines)
		} else {
			assert.Equal(t, Won, out.Phase)
			assert.Equal(t, 2, out.Lives)
			assert.ElementsMatch(t, []Point{{0, 0}, {0, 2}, {2, 1}}, out.Mines)
		}
	}
	assert.Equal(t, "cleared", g.Phase().Result())
}

func TestWinOnFirstReveal(t *testing.T) {
	g, err := Start(GameParams{Rows: 3, Cols: 3, MineCount: 0, Lives: 1, TimeLimit: 5}, nil)
	require.NoError(t, err)

	out := g.Reveal(Point{1, 1})
	assert.Equal(t, Won, out.Phase)
	assert.Len(t, out.Changed, 9)
	assert.Empty(t, out.Mines)
}

func TestTickRunsOutOfTime(t *testing.T) {
	g, err := Start(GameParams{Rows: 6, Cols: 6, MineCount: 5, Lives: 1, TimeLimit: 2},
		rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)

	g.Tick()
	assert.Equal(t, 2, g.TimeRemaining(), "clock starts with the first reveal")
	// a flagged cell in the safe zone keeps the first reveal from winning
	g.ToggleFlag(Point{1, 1})

	out := g.Reveal(Point{0, 0})
	require.Equal(t, Playing, out.Phase)

	out = g.Tick()
	assert.Equal(t, Playing, out.Phase)
	assert.Equal(t, 1, out.TimeRemaining)

	out = g.Tick()
	assert.Equal(t, LostTime, out.Phase)
	assert.Equal(t, 0, out.TimeRemaining)
	assert.Equal(t, "timeout", out.Phase.Result())
	assert.Len(t, out.Mines, 5)

	before := freeze(g)
	for row := range 6 {
		for col := range 6 {
			assert.Empty(t, g.Reveal(Point{row, col}).Changed)
			assert.Empty(t, g.ToggleFlag(Point{row, col}).Changed)
		}
	}
	g.Tick()
	assert.Equal(t, before, freeze(g))
}

func TestToggleFlag(t *testing.T) {
	g, err := Start(GameParams{Rows: 6, Cols: 6, MineCount: 5, Lives: 1, TimeLimit: 60},
		rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)

	out := g.ToggleFlag(Point{2, 2})
	assert.Equal(t, []CellUpdate{{Point{2, 2}, Flagged}}, out.Changed)
	assert.Equal(t, NotStarted, out.Phase)
	assert.Equal(t, 1, g.FlagCount())

	// a flagged cell cannot be the first reveal either
	assert.Empty(t, g.Reveal(Point{2, 2}).Changed)
	assert.Equal(t, NotStarted, g.Phase())
	assert.Nil(t, g.board)

	out = g.ToggleFlag(Point{2, 2})
	assert.Equal(t, []CellUpdate{{Point{2, 2}, Hidden}}, out.Changed)
	assert.Equal(t, 0, g.FlagCount())

	g.Reveal(Point{2, 2})
	require.NotEqual(t, NotStarted, g.Phase())
	before := freeze(g)
	assert.Empty(t, g.ToggleFlag(Point{2, 2}).Changed)
	assert.Empty(t, g.ToggleFlag(Point{-1, 0}).Changed)
	assert.Empty(t, g.ToggleFlag(Point{0, 6}).Changed)
	assert.Equal(t, before, freeze(g))
	checkInvariants(t, g)
}

func TestRevealOutOfBounds(t *testing.T) {
	g, err := Start(GameParams{Rows: 4, Cols: 4, MineCount: 1, Lives: 1, TimeLimit: 60},
		rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)

	for _, pt := range []Point{{-1, 0}, {0, -1}, {4, 0}, {0, 4}} {
		assert.Empty(t, g.Reveal(pt).Changed)
	}
	assert.Equal(t, NotStarted, g.Phase())
	assert.Equal(t, Hidden, g.CellState(Point{9, 9}))
}

func TestDisclosure(t *testing.T) {
	g := layoutGame(t, 1, 60,
		"*.*",
		"...",
		"..*",
	)
	g.ToggleFlag(Point{0, 0})
	g.ToggleFlag(Point{1, 1})
	assert.Equal(t, g.Snapshot(), g.Disclosure())

	g.Reveal(Point{2, 2})
	require.Equal(t, LostLives, g.Phase())

	grid := g.Disclosure()
	assert.Equal(t, CorrectFlag, grid.At(3, Point{0, 0}))
	assert.Equal(t, WrongFlag, grid.At(3, Point{1, 1}))
	assert.Equal(t, UnflaggedMine, grid.At(3, Point{0, 2}))
	assert.Equal(t, ExposedMineFatal, grid.At(3, Point{2, 2}))
	assert.Equal(t, Hidden, grid.At(3, Point{1, 0}))
	assert.Equal(t, "*   @ \n  x   \n    # \n", grid.ToString(3))
}

func TestRandomPlayInvariants(t *testing.T) {
	if testing.Short() {
		t.Skip()
	}

	t.Parallel()

	r := rand.New(rand.NewPCG(5, 6))
	for range 30 {
		params := GameParams{Rows: 8, Cols: 9, MineCount: 12, Lives: 1 + r.IntN(3), TimeLimit: 40}
		g, err := Start(params, rand.New(rand.NewPCG(r.Uint64(), r.Uint64())))
		require.NoError(t, err)

		var prev []Point
		for range 200 {
			pt := Point{r.IntN(params.Rows), r.IntN(params.Cols)}
			var out Outcome
			switch r.IntN(4) {
			case 0:
				out = g.ToggleFlag(pt)
			case 1:
				out = g.Tick()
			default:
				out = g.Reveal(pt)
			}

			for _, upd := range out.Changed {
				assert.Equal(t, upd.State, g.CellState(upd.Point))
			}
			if g.board != nil {
				checkInvariants(t, g)
			}
			cur := revealedSet(g)
			for _, pt := range prev {
				assert.True(t, slices.Contains(cur, pt), "%s was hidden again", pt)
			}
			prev = cur
			if out.Phase.Terminal() {
				assert.Len(t, out.Mines, params.MineCount)
				break
			}
		}
	}
}

func TestOutcomeJSON(t *testing.T) {
	g := layoutGame(t, 1, 60, "*..")
	out := g.Reveal(Point{0, 2})

	b, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"changed": [{"row": 0, "col": 2, "state": 0}, {"row": 0, "col": 1, "state": 1}],
		"phase": "won",
		"lives": 1,
		"time_remaining": 60,
		"mines": [{"row": 0, "col": 0}]
	}`, string(b))

	var phase Phase
	require.NoError(t, phase.UnmarshalText([]byte("lost_time")))
	assert.Equal(t, LostTime, phase)
	assert.Error(t, phase.UnmarshalText([]byte("paused")))
}

package mines

import (
	"math/rand/v2"

	"github.com/gammazero/deque"
	"github.com/looplab/fsm"
	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

type CellUpdate struct {
	Point
	State CellState `json:"state"`
}

// Outcome describes what a single action did. Changed lists every cell whose
// [Game.CellState] differs from before the action, in the order they were
// touched; it is empty for a no-op. Mines is filled once the game is over.
type Outcome struct {
	Changed       []CellUpdate `json:"changed"`
	Phase         Phase        `json:"phase"`
	Lives         int          `json:"lives"`
	TimeRemaining int          `json:"time_remaining"`
	Trigger       *Point       `json:"trigger,omitempty"`
	Mines         []Point      `json:"mines,omitempty"`
}

// Game is a single round. It is not safe for concurrent use.
type Game struct {
	params  GameParams
	board   *Board
	machine *fsm.FSM
	rnd     *rand.Rand

	revealed  []bool
	flagged   []bool
	spent     []bool // mines the player stepped on and survived
	nrevealed int
	nflagged  int

	lives    int
	timeLeft int
	trigger  *Point
}

// Start creates a round that has not been revealed into yet. The board is
// generated from r on the first [Game.Reveal].
func Start(params GameParams, r *rand.Rand) (*Game, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	n := params.Rows * params.Cols
	g := &Game{
		params:   params,
		machine:  newPhaseMachine(params),
		rnd:      r,
		revealed: make([]bool, n),
		flagged:  make([]bool, n),
		spent:    make([]bool, n),
		lives:    params.Lives,
		timeLeft: params.TimeLimit,
	}
	return g, nil
}

func (g *Game) Params() GameParams { return g.params }
func (g *Game) Lives() int         { return g.lives }
func (g *Game) TimeRemaining() int { return g.timeLeft }
func (g *Game) FlagCount() int     { return g.nflagged }
func (g *Game) RevealedCount() int { return g.nrevealed }

// Mines discloses the mine layout once the game is over.
func (g *Game) Mines() []Point {
	if !g.Phase().Terminal() || g.board == nil {
		return nil
	}
	return g.board.Mines()
}

// Trigger is the mine that cost the last life, if any.
func (g *Game) Trigger() *Point {
	if g.trigger == nil {
		return nil
	}
	pt := *g.trigger
	return &pt
}

func (g *Game) CellState(pt Point) CellState {
	if !g.params.ValidatePosition(pt.Row, pt.Col) {
		return Hidden
	}
	return g.cellState(g.params.index(pt))
}

func (g *Game) cellState(i int) CellState {
	switch {
	case g.revealed[i]:
		return Revealed(int(g.board.clues[i]))
	case g.flagged[i]:
		// a spent mine may be flagged; unflagging shows it as spent again
		return Flagged
	case g.spent[i]:
		return ExposedMineSurvived
	case g.trigger != nil && g.params.index(*g.trigger) == i:
		return ExposedMineFatal
	default:
		return Hidden
	}
}

// Snapshot returns the state of every cell as the player sees it.
func (g *Game) Snapshot() Grid {
	grid := make(Grid, len(g.revealed))
	for i := range grid {
		grid[i] = g.cellState(i)
	}
	return grid
}

// Disclosure is [Game.Snapshot] with the remaining mines and the correctness
// of every flag uncovered. Before the game is over it equals the snapshot.
func (g *Game) Disclosure() Grid {
	grid := g.Snapshot()
	if !g.Phase().Terminal() || g.board == nil {
		return grid
	}
	for i, s := range grid {
		switch {
		case s == Flagged && g.board.mines[i]:
			grid[i] = CorrectFlag
		case s == Flagged:
			grid[i] = WrongFlag
		case s == Hidden && g.board.mines[i]:
			grid[i] = UnflaggedMine
		}
	}
	return grid
}

func (g *Game) outcome(changed []CellUpdate) Outcome {
	return Outcome{
		Changed:       changed,
		Phase:         g.Phase(),
		Lives:         g.lives,
		TimeRemaining: g.timeLeft,
		Trigger:       g.Trigger(),
		Mines:         g.Mines(),
	}
}

func (g *Game) Reveal(pt Point) Outcome {
	if !g.params.ValidatePosition(pt.Row, pt.Col) {
		return g.outcome(nil)
	}
	i := g.params.index(pt)

	switch g.Phase() {
	case NotStarted:
		if g.flagged[i] {
			return g.outcome(nil)
		}
		board, err := g.params.Generate(pt, g.rnd)
		if err != nil {
			// Start validated params against every possible safe cell
			Log.WithError(err).Error("unable to generate board")
			return g.outcome(nil)
		}
		g.board = board
		g.transition(evStart)
	case Playing:
	default:
		return g.outcome(nil)
	}

	if g.flagged[i] || g.revealed[i] || g.spent[i] {
		return g.outcome(nil)
	}

	if g.board.mines[i] {
		return g.stepOnMine(pt)
	}

	changed := g.floodFill(pt)
	if g.nrevealed == g.params.SafeCells() {
		g.transition(evClear)
	}
	return g.outcome(changed)
}

func (g *Game) stepOnMine(pt Point) Outcome {
	g.lives--
	if g.lives > 0 {
		g.spent[g.params.index(pt)] = true
		Log.WithFields(logrus.Fields{
			"cell":  pt,
			"lives": g.lives,
		}).Debug("survived a mine")
		return g.outcome([]CellUpdate{{Point: pt, State: ExposedMineSurvived}})
	}
	g.trigger = &pt
	g.transition(evExplode)
	return g.outcome([]CellUpdate{{Point: pt, State: ExposedMineFatal}})
}

// floodFill reveals start and, while it keeps meeting zero clues, their
// unrevealed and unflagged neighbours. Cells are marked when queued so each
// one is visited once.
func (g *Game) floodFill(start Point) []CellUpdate {
	var (
		todo    deque.Deque[Point]
		changed []CellUpdate
	)

	g.markRevealed(g.params.index(start))
	todo.PushBack(start)

	for todo.Len() > 0 {
		pt := todo.PopFront()
		clue := g.board.Clue(pt)
		changed = append(changed, CellUpdate{Point: pt, State: Revealed(clue)})
		if clue != 0 {
			continue
		}
		// a zero clue has no mined neighbours, so only flags stop the fill
		for nb := range g.params.neighbors(pt) {
			j := g.params.index(nb)
			if g.revealed[j] || g.flagged[j] {
				continue
			}
			g.markRevealed(j)
			todo.PushBack(nb)
		}
	}

	return changed
}

func (g *Game) markRevealed(i int) {
	g.revealed[i] = true
	g.nrevealed++
}

func (g *Game) ToggleFlag(pt Point) Outcome {
	if !g.params.ValidatePosition(pt.Row, pt.Col) {
		return g.outcome(nil)
	}
	if phase := g.Phase(); phase != NotStarted && phase != Playing {
		return g.outcome(nil)
	}
	i := g.params.index(pt)
	if g.revealed[i] {
		return g.outcome(nil)
	}

	g.flagged[i] = !g.flagged[i]
	if g.flagged[i] {
		g.nflagged++
	} else {
		g.nflagged--
	}
	return g.outcome([]CellUpdate{{Point: pt, State: g.cellState(i)}})
}

// Tick takes one unit off the clock. It has no effect unless the game is
// being played.
func (g *Game) Tick() Outcome {
	if g.Phase() != Playing {
		return g.outcome(nil)
	}
	g.timeLeft--
	if g.timeLeft <= 0 {
		g.timeLeft = 0
		g.transition(evExpire)
	}
	return g.outcome(nil)
}

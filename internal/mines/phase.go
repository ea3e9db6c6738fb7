package mines

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"
)

type Phase int

const (
	NotStarted Phase = iota
	Playing
	Won
	LostLives
	LostTime
)

var phaseNames = [...]string{
	NotStarted: "not_started",
	Playing:    "playing",
	Won:        "won",
	LostLives:  "lost_lives",
	LostTime:   "lost_time",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

func parsePhase(s string) (Phase, error) {
	for p, name := range phaseNames {
		if name == s {
			return Phase(p), nil
		}
	}
	return 0, fmt.Errorf("unknown phase %q", s)
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(b []byte) (err error) {
	*p, err = parsePhase(string(b))
	return
}

// Terminal reports whether the game is over.
func (p Phase) Terminal() bool {
	return p == Won || p == LostLives || p == LostTime
}

// Result is a short reason for a terminal phase, empty otherwise.
func (p Phase) Result() string {
	switch p {
	case Won:
		return "cleared"
	case LostLives:
		return "mine"
	case LostTime:
		return "timeout"
	default:
		return ""
	}
}

const (
	evStart   = "start"
	evClear   = "clear"
	evExplode = "explode"
	evExpire  = "expire"
)

func phaseTransitions() fsm.Events {
	return fsm.Events{
		{Name: evStart, Src: []string{NotStarted.String()}, Dst: Playing.String()},
		{Name: evClear, Src: []string{Playing.String()}, Dst: Won.String()},
		{Name: evExplode, Src: []string{Playing.String()}, Dst: LostLives.String()},
		{Name: evExpire, Src: []string{Playing.String()}, Dst: LostTime.String()},
	}
}

func newPhaseMachine(params GameParams) *fsm.FSM {
	return fsm.NewFSM(
		NotStarted.String(),
		phaseTransitions(),
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				Log.WithField("game", params.Seed()).
					Debugf("phase %s -> %s on %s", e.Src, e.Dst, e.Event)
			},
		},
	)
}

// transition fires event on the phase machine. Events that are not allowed
// from the current phase are dropped.
func (g *Game) transition(event string) {
	err := g.machine.Event(context.Background(), event)
	var invalid fsm.InvalidEventError
	if errors.As(err, &invalid) {
		Log.WithError(err).Debug("dropped phase event")
	} else if err != nil {
		Log.WithError(err).Warn("phase event failed")
	}
}

func (g *Game) Phase() Phase {
	p, err := parsePhase(g.machine.Current())
	if err != nil {
		// the machine only knows the states declared above
		panic(err)
	}
	return p
}

// Package session keeps the games that are being played together with their
// timers.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/vancomm/lifesweeper/internal/clock"
	"github.com/vancomm/lifesweeper/internal/mines"
)

var ErrClosed = errors.New("session is closed")

// Session is one game instance. All engine calls are serialised through it.
type Session struct {
	ID     string
	Preset string

	mu       sync.Mutex
	game     *mines.Game
	ticker   *clock.Ticker
	ctx      context.Context
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
	subs     map[chan mines.Outcome]struct{}
	closed   bool

	createdAt  time.Time
	startedAt  time.Time
	endedAt    time.Time
	lastActive time.Time
}

// State is a consistent copy of everything a client renders.
type State struct {
	ID            string
	Preset        string
	Params        mines.GameParams
	Grid          mines.Grid
	Phase         mines.Phase
	Lives         int
	TimeRemaining int
	Flags         int
	Trigger       *mines.Point
	Mines         []mines.Point
	CreatedAt     time.Time
	StartedAt     time.Time
	EndedAt       time.Time
}

func (s *Session) Params() mines.GameParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Params()
}

// Reveal uncovers pt. The returned state is taken together with the outcome,
// so no clock tick falls between the two.
func (s *Session) Reveal(pt mines.Point) (mines.Outcome, State, error) {
	return s.apply(func(g *mines.Game) mines.Outcome { return g.Reveal(pt) })
}

func (s *Session) ToggleFlag(pt mines.Point) (mines.Outcome, State, error) {
	return s.apply(func(g *mines.Game) mines.Outcome { return g.ToggleFlag(pt) })
}

func (s *Session) apply(action func(*mines.Game) mines.Outcome) (mines.Outcome, State, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return mines.Outcome{}, State{}, ErrClosed
	}

	before := s.game.Phase()
	out := action(s.game)
	now := s.now()
	s.lastActive = now

	if before == mines.NotStarted && out.Phase != mines.NotStarted {
		s.startedAt = now
		if out.Phase == mines.Playing {
			s.ticker = clock.Start(s.ctx, s.interval, s.tick)
			s.logger.Debug("clock started", slog.String("session", s.ID))
		}
	}

	var stale *clock.Ticker
	if !before.Terminal() && out.Phase.Terminal() {
		s.endedAt = now
		stale, s.ticker = s.ticker, nil
		s.logger.Info(
			"game over",
			slog.String("session", s.ID),
			slog.String("result", out.Phase.Result()),
			slog.Int("lives", out.Lives),
			slog.Int("timeRemaining", out.TimeRemaining),
		)
	}
	state := s.stateLocked()
	s.mu.Unlock()

	// a tick waiting on the lock sees the finished game and bails out
	if stale != nil {
		stale.Stop()
	}
	return out, state, nil
}

func (s *Session) tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	out := s.game.Tick()
	if out.Phase.Terminal() {
		if s.endedAt.IsZero() {
			s.endedAt = s.now()
			s.logger.Info(
				"game over",
				slog.String("session", s.ID),
				slog.String("result", out.Phase.Result()),
			)
		}
		s.ticker = nil
	}
	s.publish(out)
	return !out.Phase.Terminal()
}

// publish must be called with s.mu held. A subscriber that falls behind
// misses ticks but always receives the outcome that ends the game.
func (s *Session) publish(out mines.Outcome) {
	for ch := range s.subs {
		select {
		case ch <- out:
			continue
		default:
		}
		if !out.Phase.Terminal() {
			s.logger.Debug("dropped clock update", slog.String("session", s.ID))
			continue
		}
		// only publish sends on ch, so freeing one slot makes room
		select {
		case <-ch:
		default:
		}
		ch <- out
	}
}

// Subscribe returns a channel receiving the outcome of every clock tick.
// The channel is closed by the returned cancel function or when the session
// is closed.
func (s *Session) Subscribe() (<-chan mines.Outcome, func()) {
	ch := make(chan mines.Outcome, 8)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	s.subs[ch] = struct{}{}

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	return State{
		ID:            s.ID,
		Preset:        s.Preset,
		Params:        s.game.Params(),
		Grid:          s.game.Disclosure(),
		Phase:         s.game.Phase(),
		Lives:         s.game.Lives(),
		TimeRemaining: s.game.TimeRemaining(),
		Flags:         s.game.FlagCount(),
		Trigger:       s.game.Trigger(),
		Mines:         s.game.Mines(),
		CreatedAt:     s.createdAt,
		StartedAt:     s.startedAt,
		EndedAt:       s.endedAt,
	}
}

// Close discards the game. The clock is stopped before Close returns and
// every later action fails with [ErrClosed].
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	t := s.ticker
	s.ticker = nil
	for ch := range s.subs {
		close(ch)
	}
	s.subs = nil
	s.mu.Unlock()

	if t != nil {
		t.Stop()
	}
	s.logger.Debug("session closed", slog.String("session", s.ID))
}

// expired reports whether the session has been idle, or over, for longer
// than maxAge. A game whose clock is running is never idle.
func (s *Session) expired(now time.Time, maxAge time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ticker != nil {
		// the clock is running, the game ends on its own
		return false
	}
	if !s.endedAt.IsZero() {
		return now.Sub(s.endedAt) > maxAge
	}
	return now.Sub(s.lastActive) > maxAge
}

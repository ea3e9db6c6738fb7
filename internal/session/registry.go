package session

import (
	"context"
	"encoding/base64"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vancomm/lifesweeper/internal/mines"
)

type Registry struct {
	ctx      context.Context
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session

	rndMu sync.Mutex
	rnd   *rand.Rand
}

// NewRegistry creates an empty registry. Game clocks tick every interval and
// stop when ctx is cancelled; rnd seeds the board of every game.
func NewRegistry(
	ctx context.Context,
	logger *slog.Logger,
	interval time.Duration,
	rnd *rand.Rand,
) *Registry {
	return &Registry{
		ctx:      ctx,
		logger:   logger,
		interval: interval,
		now:      time.Now,
		sessions: make(map[string]*Session),
		rnd:      rnd,
	}
}

func newSessionID() string {
	u := [16]byte(uuid.New())
	return base64.RawURLEncoding.EncodeToString(u[:])
}

func (r *Registry) childRand() *rand.Rand {
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return rand.New(rand.NewPCG(r.rnd.Uint64(), r.rnd.Uint64()))
}

// Create starts a new game. It fails with [mines.ErrInvalidConfiguration] if
// params cannot produce a board.
func (r *Registry) Create(params mines.GameParams, preset string) (*Session, error) {
	game, err := mines.Start(params, r.childRand())
	if err != nil {
		return nil, err
	}

	now := r.now()
	s := &Session{
		ID:         newSessionID(),
		Preset:     preset,
		game:       game,
		ctx:        r.ctx,
		interval:   r.interval,
		logger:     r.logger,
		now:        r.now,
		subs:       make(map[chan mines.Outcome]struct{}),
		createdAt:  now,
		lastActive: now,
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	r.logger.Debug(
		"session created",
		slog.String("session", s.ID),
		slog.String("params", params.Seed()),
	)
	return s, nil
}

func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Close removes a session and stops its clock.
func (r *Registry) Close(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		s.Close()
	}
	return ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep closes sessions that have been idle or finished for longer than
// maxAge and returns how many were closed.
func (r *Registry) Sweep(maxAge time.Duration) int {
	now := r.now()

	r.mu.Lock()
	var stale []*Session
	for id, s := range r.sessions {
		if s.expired(now, maxAge) {
			stale = append(stale, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	if len(stale) > 0 {
		r.logger.Info("swept sessions", slog.Int("count", len(stale)))
	}
	return len(stale)
}

func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/vancomm/lifesweeper/internal/config"
	"github.com/vancomm/lifesweeper/internal/mines"
	"github.com/vancomm/lifesweeper/internal/session"
)

var ErrInvalidPosition = errors.New("invalid cell position")

type GameHandler struct {
	logger   *slog.Logger
	registry *session.Registry
	presets  config.Presets
	ws       *config.WebSocket
}

func NewGameHandler(
	logger *slog.Logger,
	registry *session.Registry,
	presets config.Presets,
	ws *config.WebSocket,
) *GameHandler {
	handler := &GameHandler{
		logger:   logger,
		registry: registry,
		presets:  presets,
		ws:       ws,
	}

	return handler
}

func (g GameHandler) Presets(w http.ResponseWriter, r *http.Request) {
	SendJSONOrLog(w, g.logger, g.presets)
}

func (g GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		SendErrorOrLog(w, g.logger, http.StatusBadRequest, err)
		return
	}

	dto, err := ParseCreateNewGameDTO(r.Form)
	if err != nil {
		SendErrorOrLog(w, g.logger, http.StatusBadRequest, err)
		return
	}

	params := dto.Params()
	if dto.Preset != "" {
		preset, err := g.presets.Lookup(dto.Preset)
		if err != nil {
			SendErrorOrLog(w, g.logger, http.StatusBadRequest, err)
			return
		}
		params = preset.GameParams
	}

	s, err := g.registry.Create(params, dto.Preset)
	if errors.Is(err, mines.ErrInvalidConfiguration) {
		SendErrorOrLog(w, g.logger, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.logger.Error("unable to create a game", slog.Any("error", err))
		return
	}

	w.Header().Set("Location", fmt.Sprintf("%s/game/%s", config.BasePath(), s.ID))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	SendJSONOrLog(w, g.logger, NewGameSessionDTO(s.State()))
}

func (g GameHandler) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, ok := g.registry.Get(r.PathValue("id"))
	if !ok {
		SendErrorOrLog(w, g.logger, http.StatusNotFound, fmt.Errorf("no such game"))
	}
	return s, ok
}

func (g GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	s, ok := g.lookup(w, r)
	if !ok {
		return
	}
	SendJSONOrLog(w, g.logger, NewGameSessionDTO(s.State()))
}

func (g GameHandler) MakeAMove(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	move, err := ParseGameMove(query.Get("move"))
	if err != nil {
		SendErrorOrLog(w, g.logger, http.StatusBadRequest, err)
		return
	}

	pos, err := ParsePosition(query)
	if err != nil {
		SendErrorOrLog(w, g.logger, http.StatusBadRequest, err)
		return
	}

	s, ok := g.lookup(w, r)
	if !ok {
		return
	}

	out, state, err := applyMove(s, move, pos)
	switch {
	case errors.Is(err, ErrInvalidPosition):
		SendErrorOrLog(w, g.logger, http.StatusBadRequest, err)
		return
	case errors.Is(err, session.ErrClosed):
		SendErrorOrLog(w, g.logger, http.StatusGone, err)
		return
	case err != nil:
		w.WriteHeader(http.StatusInternalServerError)
		g.logger.Error("unable to apply move", slog.Any("error", err))
		return
	}

	SendJSONOrLog(w, g.logger, NewMoveDTO(out, state))
}

// Discard ends the game and forgets it.
func (g GameHandler) Discard(w http.ResponseWriter, r *http.Request) {
	if !g.registry.Close(r.PathValue("id")) {
		SendErrorOrLog(w, g.logger, http.StatusNotFound, fmt.Errorf("no such game"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func applyMove(
	s *session.Session, move GameMove, pos mines.Point,
) (mines.Outcome, session.State, error) {
	if !s.Params().ValidatePosition(pos.Row, pos.Col) {
		return mines.Outcome{}, session.State{}, fmt.Errorf("%w: %s", ErrInvalidPosition, pos)
	}
	switch move {
	case Open:
		return s.Reveal(pos)
	case Flag:
		return s.ToggleFlag(pos)
	}
	return mines.Outcome{}, session.State{}, ErrUnknownMove
}

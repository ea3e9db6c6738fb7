package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/schema"

	"github.com/vancomm/lifesweeper/internal/mines"
	"github.com/vancomm/lifesweeper/internal/session"
)

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}

// CreateNewGameDTO names either a preset or a full set of parameters.
type CreateNewGameDTO struct {
	Preset    string `schema:"preset"`
	Rows      int    `schema:"rows"`
	Cols      int    `schema:"cols"`
	MineCount int    `schema:"mine_count"`
	Lives     int    `schema:"lives"`
	TimeLimit int    `schema:"time_limit"`
}

func ParseCreateNewGameDTO(src map[string][]string) (CreateNewGameDTO, error) {
	var dto CreateNewGameDTO
	err := decoder.Decode(&dto, src)
	return dto, err
}

func (dto CreateNewGameDTO) Params() mines.GameParams {
	return mines.GameParams{
		Rows:      dto.Rows,
		Cols:      dto.Cols,
		MineCount: dto.MineCount,
		Lives:     dto.Lives,
		TimeLimit: dto.TimeLimit,
	}
}

type PositionDTO struct {
	Row int `schema:"row,required"`
	Col int `schema:"col,required"`
}

func ParsePosition(src map[string][]string) (mines.Point, error) {
	var dto PositionDTO
	if err := decoder.Decode(&dto, src); err != nil {
		return mines.Point{}, err
	}
	return mines.Point{Row: dto.Row, Col: dto.Col}, nil
}

type GameMove int

const (
	Open GameMove = iota
	Flag
)

var ErrUnknownMove = errors.New("unknown move")

func ParseGameMove(s string) (GameMove, error) {
	switch s {
	case "open", "o":
		return Open, nil
	case "flag", "f":
		return Flag, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMove, s)
}

type GameSessionDTO struct {
	GameSessionId string        `json:"game_session_id"`
	Preset        string        `json:"preset,omitempty"`
	Grid          mines.Grid    `json:"grid"`
	Rows          int           `json:"rows"`
	Cols          int           `json:"cols"`
	MineCount     int           `json:"mine_count"`
	MaxLives      int           `json:"max_lives"`
	TimeLimit     int           `json:"time_limit"`
	Phase         mines.Phase   `json:"phase"`
	Result        string        `json:"result,omitempty"`
	Lives         int           `json:"lives"`
	TimeRemaining int           `json:"time_remaining"`
	Flags         int           `json:"flags"`
	Trigger       *mines.Point  `json:"trigger,omitempty"`
	Mines         []mines.Point `json:"mines,omitempty"`
	CreatedAt     int64         `json:"created_at"`
	StartedAt     *int64        `json:"started_at,omitempty"`
	EndedAt       *int64        `json:"ended_at,omitempty"`
}

func unixMilliOrNil(t time.Time) *int64 {
	if t.IsZero() {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

func NewGameSessionDTO(s session.State) *GameSessionDTO {
	return &GameSessionDTO{
		GameSessionId: s.ID,
		Preset:        s.Preset,
		Grid:          s.Grid,
		Rows:          s.Params.Rows,
		Cols:          s.Params.Cols,
		MineCount:     s.Params.MineCount,
		MaxLives:      s.Params.Lives,
		TimeLimit:     s.Params.TimeLimit,
		Phase:         s.Phase,
		Result:        s.Phase.Result(),
		Lives:         s.Lives,
		TimeRemaining: s.TimeRemaining,
		Flags:         s.Flags,
		Trigger:       s.Trigger,
		Mines:         s.Mines,
		CreatedAt:     s.CreatedAt.UnixMilli(),
		StartedAt:     unixMilliOrNil(s.StartedAt),
		EndedAt:       unixMilliOrNil(s.EndedAt),
	}
}

// MoveDTO answers a single action: what it changed and where the game
// stands afterwards.
type MoveDTO struct {
	Outcome mines.Outcome   `json:"outcome"`
	Result  string          `json:"result,omitempty"`
	Session *GameSessionDTO `json:"session"`
}

func NewMoveDTO(out mines.Outcome, s session.State) *MoveDTO {
	return &MoveDTO{
		Outcome: out,
		Result:  out.Phase.Result(),
		Session: NewGameSessionDTO(s),
	}
}

package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/lifesweeper/internal/mines"
	"github.com/vancomm/lifesweeper/internal/session"
)

const (
	msgState = "state"
	msgMove  = "move"
	msgTick  = "tick"
	msgError = "error"
)

type wsMessage struct {
	Type    string          `json:"type"`
	Outcome *mines.Outcome  `json:"outcome,omitempty"`
	Result  string          `json:"result,omitempty"`
	Session *GameSessionDTO `json:"session,omitempty"`
	Error   string          `json:"error,omitempty"`
}

var (
	errClientGone    = errors.New("client disconnected")
	errSessionClosed = errors.New("session closed")
)

var commandNargs = map[string]int{
	"g": 0,
	"o": 2,
	"f": 2,
}

func parseRowCol(args []string) (pt mines.Point, err error) {
	if pt.Row, err = strconv.Atoi(args[0]); err != nil {
		err = fmt.Errorf("first argument must be an int")
		return
	}
	if pt.Col, err = strconv.Atoi(args[1]); err != nil {
		err = fmt.Errorf("second argument must be an int")
		return
	}
	return
}

// execute runs one command line against the session and returns the reply.
func execute(s *session.Session, line string) (*wsMessage, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	nargs, ok := commandNargs[parts[0]]
	if !ok {
		return nil, fmt.Errorf("unknown command %q", parts[0])
	}
	if nargs != len(parts)-1 {
		return nil, fmt.Errorf("invalid number of arguments")
	}

	if parts[0] == "g" {
		return &wsMessage{Type: msgState, Session: NewGameSessionDTO(s.State())}, nil
	}

	pt, err := parseRowCol(parts[1:])
	if err != nil {
		return nil, err
	}
	move := Open
	if parts[0] == "f" {
		move = Flag
	}
	out, state, err := applyMove(s, move, pt)
	if err != nil {
		return nil, err
	}
	return &wsMessage{
		Type:    msgMove,
		Outcome: &out,
		Result:  out.Phase.Result(),
		Session: NewGameSessionDTO(state),
	}, nil
}

func (g GameHandler) ConnectWS(w http.ResponseWriter, r *http.Request) {
	s, ok := g.lookup(w, r)
	if !ok {
		return
	}

	conn, err := g.ws.Upgrader.Upgrade(w, r, nil) // headers sent here
	if err != nil {
		g.logger.Error("unable to upgrade", slog.Any("error", err))
		return
	}
	defer conn.Close()

	logger := g.logger.With(slog.String("session", s.ID))
	logger.Debug("established WS connection")

	updates, unsubscribe := s.Subscribe()
	defer unsubscribe()

	replies := make(chan *wsMessage, 8)
	eg, ctx := errgroup.WithContext(r.Context())

	eg.Go(func() error {
		return g.wsRead(ctx, conn, s, replies, logger)
	})
	eg.Go(func() error {
		return g.wsWrite(ctx, conn, updates, replies)
	})
	eg.Go(func() error {
		// unblocks the reader once the writer is done
		<-ctx.Done()
		conn.Close()
		return nil
	})

	err = eg.Wait()
	switch {
	case errors.Is(err, errClientGone), errors.Is(err, errSessionClosed):
		logger.Debug("closed WS connection", slog.Any("reason", err))
	default:
		logger.Warn("error in ws loop", slog.Any("error", err))
	}
}

func (g GameHandler) wsRead(
	ctx context.Context,
	conn *websocket.Conn,
	s *session.Session,
	replies chan<- *wsMessage,
	logger *slog.Logger,
) error {
	for {
		mt, buf, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return errClientGone
			}
			return err
		}
		if mt != websocket.TextMessage {
			return errClientGone
		}

		message := strings.TrimSpace(string(buf))
		logger.Debug(fmt.Sprintf("\t> %s", message))
		for line := range strings.SplitSeq(message, "\n") {
			reply, err := execute(s, line)
			if errors.Is(err, session.ErrClosed) {
				return errSessionClosed
			}
			if err != nil {
				reply = &wsMessage{Type: msgError, Error: err.Error()}
			}
			select {
			case replies <- reply:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (g GameHandler) wsWrite(
	ctx context.Context,
	conn *websocket.Conn,
	updates <-chan mines.Outcome,
	replies <-chan *wsMessage,
) error {
	send := func(m *wsMessage) error {
		conn.SetWriteDeadline(time.Now().Add(g.ws.WriteTimeout))
		if err := conn.WriteJSON(m); err != nil {
			return fmt.Errorf("unable to write json: %w", err)
		}
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m := <-replies:
			if err := send(m); err != nil {
				return err
			}
		case out, ok := <-updates:
			if !ok {
				conn.SetWriteDeadline(time.Now().Add(g.ws.WriteTimeout))
				conn.WriteMessage(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game discarded"),
				)
				return errSessionClosed
			}
			m := &wsMessage{Type: msgTick, Outcome: &out, Result: out.Phase.Result()}
			if err := send(m); err != nil {
				return err
			}
		}
	}
}

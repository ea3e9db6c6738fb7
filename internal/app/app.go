package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vancomm/lifesweeper/internal/clock"
	"github.com/vancomm/lifesweeper/internal/config"
	"github.com/vancomm/lifesweeper/internal/middleware"
	"github.com/vancomm/lifesweeper/internal/session"
)

type App struct {
	logger   *slog.Logger
	router   *http.ServeMux
	registry *session.Registry
	presets  config.Presets
	ws       *config.WebSocket
	ttl      time.Duration
}

func New(logger *slog.Logger) *App {
	router := http.NewServeMux()

	app := &App{
		logger: logger,
		router: router,
	}

	return app
}

func (a *App) setup(ctx context.Context) error {
	presets, err := config.LoadPresets()
	if err != nil {
		return err
	}
	a.presets = presets

	ws, err := config.NewWebSocket()
	if err != nil {
		return err
	}
	a.ws = ws

	interval, err := config.TickInterval()
	if err != nil {
		return err
	}
	if a.ttl, err = config.SessionTTL(); err != nil {
		return err
	}

	a.registry = session.NewRegistry(ctx, a.logger, interval, createRand())
	a.loadRoutes()
	return nil
}

func (a *App) Handler() http.Handler {
	return middleware.Wrap(
		a.router,
		middleware.Logging(a.logger),
		middleware.Cors(),
	)
}

// Start serves until ctx is cancelled, then shuts the server down and
// discards every game in progress.
func (a *App) Start(ctx context.Context) error {
	if err := a.setup(ctx); err != nil {
		return fmt.Errorf("unable to configure app: %w", err)
	}
	defer a.registry.CloseAll()

	port := config.Port()
	server := &http.Server{
		Addr:    port,
		Handler: a.Handler(),
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	sweeper := clock.Start(ctx, sweepInterval(a.ttl), func() bool {
		a.registry.Sweep(a.ttl)
		return true
	})
	defer sweeper.Stop()

	a.logger.Info(
		"server listening",
		slog.String("addr", port),
		slog.String("base path", config.BasePath()),
		slog.Any("presets", a.presets.Names()),
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to listen and serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

const minSweepInterval = time.Second

// sweepInterval checks a few times per TTL, but never busy-loops on a tiny one.
func sweepInterval(ttl time.Duration) time.Duration {
	return max(ttl/4, minSweepInterval)
}

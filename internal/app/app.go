package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/palchat-server/internal/audit"
	"github.com/vovakirdan/palchat-server/internal/config"
	"github.com/vovakirdan/palchat-server/internal/core"
	"github.com/vovakirdan/palchat-server/internal/log"
	"github.com/vovakirdan/palchat-server/internal/metrics"
	"github.com/vovakirdan/palchat-server/internal/store"
	"github.com/vovakirdan/palchat-server/internal/store/sqlite"
	transporthttp "github.com/vovakirdan/palchat-server/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	store           store.Store
	recorder        *audit.Recorder
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	observer, err := metrics.NewHub(reg)
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	opts := []core.Option{
		core.WithLogger(log.Component(logger, "hub")),
		core.WithObserver(observer),
		core.WithSessionBuffer(cfg.SessionBuffer),
	}

	a := &App{
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             logger,
	}

	deps := transporthttp.Deps{Gatherer: reg}
	if cfg.AuditDBPath != "" {
		st, err := sqlite.New(cfg.AuditDBPath)
		if err != nil {
			return nil, fmt.Errorf("init audit store: %w", err)
		}
		logger.Info().Str("db_path", cfg.AuditDBPath).Msg("audit journal enabled")

		a.store = st
		a.recorder = audit.NewRecorder(st, log.Component(logger, "audit"))
		opts = append(opts, core.WithRecorder(a.recorder))
		deps.Audit = st
	}

	a.hub = core.NewHub(core.NewModel(), opts...)
	a.server = transporthttp.NewServer(a.hub, cfg, log.Component(logger, "http"), deps)
	return a, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	hubCtx, stopHub := context.WithCancel(ctx)
	hubDone := make(chan struct{})
	go func() {
		a.hub.Run(hubCtx)
		close(hubDone)
	}()

	recorderCtx, stopRecorder := context.WithCancel(context.Background())
	recorderDone := make(chan struct{})
	if a.recorder != nil {
		go func() {
			a.recorder.Run(recorderCtx)
			close(recorderDone)
		}()
	} else {
		close(recorderDone)
	}

	// The recorder outlives the hub so the last disconnects reach the journal.
	stop := func() {
		stopHub()
		<-hubDone
		stopRecorder()
		<-recorderDone
		a.cleanup()
	}

	go func() {
		a.log.Info().Str("addr", a.server.Addr).Msg("http server listening")
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		stop()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			stop()
			return err
		}

		stop()
		return <-serverErr
	}
}

// cleanup closes database and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}

package app

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/chanserv/internal/audit"
	"github.com/vovakirdan/chanserv/internal/config"
	"github.com/vovakirdan/chanserv/internal/core"
	"github.com/vovakirdan/chanserv/internal/store"
	"github.com/vovakirdan/chanserv/internal/store/sqlite"
	transporthttp "github.com/vovakirdan/chanserv/internal/transport/http"
	transportirc "github.com/vovakirdan/chanserv/internal/transport/irc"
)

// App wires together core, audit and transport layers.
type App struct {
	server          *stdhttp.Server
	lines           *transportirc.Server
	lineAddr        string
	shutdownTimeout time.Duration
	hub             *core.Hub
	store           store.Store
	audit           *audit.Writer
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	a := &App{
		lineAddr:        cfg.LineAddr,
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             logger,
	}

	opts := []core.HubOption{
		core.WithLogger(logger),
		core.WithClientBuffer(cfg.ClientBuffer),
	}

	if cfg.AuditPath != "" {
		st, err := sqlite.New(cfg.AuditPath)
		if err != nil {
			return nil, fmt.Errorf("init audit store: %w", err)
		}
		logger.Info().Str("audit_path", cfg.AuditPath).Msg("audit trail enabled")
		a.store = st
		a.audit = audit.NewWriter(st, 0, logger)
		opts = append(opts, core.WithAudit(a.audit))
	}

	a.hub = core.NewHub(opts...)

	var auditStore store.AuditStore
	if a.store != nil {
		auditStore = a.store
	}
	a.server = transporthttp.NewServer(a.hub, auditStore, cfg, logger)

	if cfg.LineAddr != "" {
		a.lines = transportirc.NewServer(a.hub, int(cfg.MaxMessageBytes), logger)
	}

	return a, nil
}

// Run starts every listener and blocks until context cancellation or a fatal error.
func (a *App) Run(ctx context.Context) error {
	hubCtx, stopHub := context.WithCancel(context.Background())
	var background sync.WaitGroup
	defer func() {
		stopHub()
		background.Wait()
		a.cleanup()
	}()

	background.Add(1)
	go func() {
		defer background.Done()
		a.hub.Run(hubCtx)
	}()
	if a.audit != nil {
		background.Add(1)
		go func() {
			defer background.Done()
			a.audit.Run(hubCtx)
		}()
	}

	serverErr := make(chan error, 2)

	go func() {
		a.log.Info().Str("addr", a.server.Addr).Msg("http listening")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErr <- fmt.Errorf("http: %w", err)
		}
	}()

	linesCtx, stopLines := context.WithCancel(ctx)
	defer stopLines()
	if a.lines != nil {
		go func() {
			if err := a.lines.ListenAndServe(linesCtx, a.lineAddr); err != nil {
				serverErr <- fmt.Errorf("line transport: %w", err)
			}
		}()
	}

	select {
	case err := <-serverErr:
		a.shutdownHTTP()
		return err
	case <-ctx.Done():
		return a.shutdownHTTP()
	}
}

func (a *App) shutdownHTTP() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	a.log.Info().Msg("shutting down http server")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http: %w", err)
	}
	return nil
}

// cleanup closes the audit store once the writer has flushed.
func (a *App) cleanup() {
	if a.store == nil {
		return
	}
	if dropped := a.audit.Dropped(); dropped > 0 {
		a.log.Warn().Int64("dropped", dropped).Msg("audit entries dropped")
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn().Err(err).Msg("failed to close store")
	} else {
		a.log.Info().Msg("store closed")
	}
}

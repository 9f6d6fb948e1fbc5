// Package server ties the HTTP server, the rate stream and the event
// publisher into one application lifecycle.
package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	drepo "ShipQuote/internal/domain/repository"
	"ShipQuote/internal/service/ratestream"
	"ShipQuote/pkg/config"
	xhttp "ShipQuote/pkg/http"
	applogger "ShipQuote/pkg/logger"
)

// App encapsulates the application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	handler    xhttp.Handler
	httpServer *xhttp.Server
	rateStream *ratestream.Client
	publisher  drepo.EventPublisher
}

// New creates the application from its wired dependencies. rateStream and
// publisher may be nil when the corresponding features are disabled.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	handler xhttp.Handler,
	rateStream *ratestream.Client,
	publisher drepo.EventPublisher,
) *App {
	return &App{
		cfg:        cfg,
		logger:     logger,
		handler:    handler,
		rateStream: rateStream,
		publisher:  publisher,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(a.logger),
	)

	if a.rateStream != nil {
		go a.rateStream.Run(ctx)
		a.logger.Info("rate stream started", applogger.Strings("lanes", a.cfg.RateStream.Lanes))
	}

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("server started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.Strings("carriers", a.cfg.Providers.Enabled),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if a.rateStream != nil {
		if err := a.rateStream.Close(); err != nil {
			a.logger.Warn("rate stream close error", applogger.Error(err))
		}
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("publisher close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}

// Package app runs the risk-warden webhook service: the HTTP server in front
// and the assessment worker pool behind it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sevigo/risk-warden/internal/config"
	"github.com/sevigo/risk-warden/internal/core"
	"github.com/sevigo/risk-warden/internal/server"
)

type App struct {
	cfg        *config.Config
	server     *server.Server
	dispatcher core.JobDispatcher
	logger     *slog.Logger
}

// NewApp checks that the service can authenticate webhooks and act on the
// repositories that send them.
func NewApp(cfg *config.Config, srv *server.Server, dispatcher core.JobDispatcher, logger *slog.Logger) (*App, error) {
	if cfg.GitHub.WebhookSecret == "" {
		return nil, errors.New("github.webhook_secret must be set to run the server")
	}
	if err := cfg.GitHub.RequireApp(); err != nil && cfg.GitHub.Token == "" {
		return nil, fmt.Errorf("no GitHub credentials configured: %w", err)
	}

	logger.Info("risk-warden initialized",
		"llm_provider", cfg.AI.LLMProvider,
		"generator_model", cfg.AI.GeneratorModel,
		"retrieval_enabled", cfg.Pipeline.RetrievalEnabled,
		"database", cfg.Database.Driver,
		"max_workers", cfg.Server.MaxWorkers,
	)
	return &App{cfg: cfg, server: srv, dispatcher: dispatcher, logger: logger}, nil
}

// Start blocks serving webhooks until Stop is called.
func (a *App) Start() error {
	a.logger.Info("starting risk-warden", "server_port", a.cfg.Server.Port)
	if err := a.server.Start(); err != nil {
		a.logger.Error("failed to start HTTP server", "error", err)
		return err
	}
	return nil
}

// Stop refuses new webhooks first, then lets queued assessments finish.
func (a *App) Stop(ctx context.Context) error {
	a.logger.Info("shutting down risk-warden")

	serverErr := a.server.Stop(ctx)
	if serverErr != nil {
		a.logger.Error("error during HTTP server shutdown", "error", serverErr)
	}

	a.dispatcher.Stop()

	if serverErr != nil {
		return serverErr
	}
	a.logger.Info("risk-warden stopped")
	return nil
}

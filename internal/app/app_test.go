package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/risk-warden/internal/config"
	"github.com/sevigo/risk-warden/internal/core"
	"github.com/sevigo/risk-warden/internal/logger"
	"github.com/sevigo/risk-warden/internal/server"
)

type stubDispatcher struct{ stopped bool }

func (d *stubDispatcher) Dispatch(context.Context, *core.AssessmentEvent) error { return nil }
func (d *stubDispatcher) Stop()                                                 { d.stopped = true }

func TestNewApp_RequiresCredentials(t *testing.T) {
	cfg := &config.Config{}
	_, err := NewApp(cfg, nil, &stubDispatcher{}, logger.Discard())
	assert.Error(t, err, "webhook secret is required")

	cfg.GitHub.WebhookSecret = "s"
	_, err = NewApp(cfg, nil, &stubDispatcher{}, logger.Discard())
	assert.Error(t, err, "either an App or a token is required")

	cfg.GitHub.Token = "ghp_x"
	_, err = NewApp(cfg, nil, &stubDispatcher{}, logger.Discard())
	assert.NoError(t, err)
}

func TestApp_StopDrainsDispatcher(t *testing.T) {
	cfg := &config.Config{GitHub: config.GitHubConfig{WebhookSecret: "s", AppID: 1}}
	cfg.Server.Port = "0"
	d := &stubDispatcher{}
	a, err := NewApp(cfg, server.NewServer(cfg, d, logger.Discard()), d, logger.Discard())
	require.NoError(t, err)

	require.NoError(t, a.Stop(context.Background()))
	assert.True(t, d.stopped)
}

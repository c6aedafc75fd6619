package server

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sevigo/risk-warden/internal/config"
	"github.com/sevigo/risk-warden/internal/logger"
)

func TestRouter_Health(t *testing.T) {
	r := NewRouter(&config.Config{}, nil, logger.Discard())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestRouter_WebhookRequiresPost(t *testing.T) {
	r := NewRouter(&config.Config{}, nil, logger.Discard())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/webhook/github", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_WebhookPayloadTooLarge(t *testing.T) {
	r := NewRouter(&config.Config{}, nil, logger.Discard())

	body := strings.NewReader(strings.Repeat("x", MaxWebhookBytes+1))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/github", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", "pull_request")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRouter_LogsRequestsThroughSlog(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := NewRouter(&config.Config{}, nil, log)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-GitHub-Delivery", "d-1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	assert.Contains(t, out, "msg=\"http request\"")
	assert.Contains(t, out, "path=/health")
	assert.Contains(t, out, "status=200")
	assert.Contains(t, out, "github_delivery=d-1")
}

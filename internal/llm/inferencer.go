package llm

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/sevigo/goframe/llms"

	"github.com/sevigo/risk-warden/internal/core"
)

// ErrEmptyResponse is returned when the model answers with only whitespace.
var ErrEmptyResponse = errors.New("model returned an empty response")

// ModelInferencer adapts a goframe model to core.Inferencer. Every call is
// bounded by its own timeout.
type ModelInferencer struct {
	model   llms.Model
	timeout time.Duration
	logger  *slog.Logger
}

var _ core.Inferencer = (*ModelInferencer)(nil)

func NewModelInferencer(model llms.Model, timeout time.Duration, logger *slog.Logger) *ModelInferencer {
	return &ModelInferencer{model: model, timeout: timeout, logger: logger}
}

func (m *ModelInferencer) Classify(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	resp, err := generateWithTimeout(ctx, m.model, prompt, m.timeout)
	if err != nil {
		m.logger.Warn("inference call failed", "duration", time.Since(start), "error", err)
		return "", err
	}
	if strings.TrimSpace(resp) == "" {
		return "", ErrEmptyResponse
	}
	m.logger.Debug("inference call completed", "duration", time.Since(start), "response_len", len(resp))
	return resp, nil
}

// generateWithTimeout returns as soon as the deadline passes, even if the
// model client ignores cancellation.
func generateWithTimeout(ctx context.Context, model llms.Model, prompt string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		resp string
		err  error
	}
	resultCh := make(chan result, 1)

	go func() {
		resp, err := llms.GenerateFromSinglePrompt(ctx, model, prompt)
		resultCh <- result{resp, err}
	}()

	select {
	case res := <-resultCh:
		return res.resp, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

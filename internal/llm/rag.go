// Package llm provides the model-facing parts of an assessment: prompt
// templates, the inference adapter, the change classifier and retrieval of
// prior findings.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sevigo/risk-warden/internal/core"
)

// DefaultRetrievalLimit is how many prior findings are fetched per run.
const DefaultRetrievalLimit = 5

// ContextRetriever fetches snippets of earlier audit documents relevant to a
// pull request. Retrieval enriches a run and is never required for it.
type ContextRetriever struct {
	index   core.SearchIndex
	limit   int
	timeout time.Duration
	logger  *slog.Logger
}

func NewContextRetriever(index core.SearchIndex, limit int, timeout time.Duration, logger *slog.Logger) *ContextRetriever {
	if limit <= 0 {
		limit = DefaultRetrievalLimit
	}
	return &ContextRetriever{index: index, limit: limit, timeout: timeout, logger: logger}
}

// RetrievalQuery is the search text used for a pull request.
func RetrievalQuery(prNumber int) string {
	return fmt.Sprintf("PR #%d risky patterns", prNumber)
}

// Retrieve returns at most limit snippets in relevance order. Errors and
// timeouts yield an empty result. The pull request's own earlier audit entry
// is skipped so that reruns see the same context as the first run.
func (r *ContextRetriever) Retrieve(ctx context.Context, prNumber int) []string {
	if r.index == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// One extra in case the current PR is among the hits.
	snippets, err := r.index.Search(ctx, RetrievalQuery(prNumber), r.limit+1)
	if err != nil {
		r.logger.Warn("context retrieval failed, continuing without context", "pr", prNumber, "error", err)
		return nil
	}

	out := make([]string, 0, r.limit)
	for _, s := range snippets {
		if s.PRNumber == prNumber || s.Text == "" {
			continue
		}
		out = append(out, s.Text)
		if len(out) == r.limit {
			break
		}
	}
	r.logger.Debug("retrieved prior findings", "pr", prNumber, "count", len(out))
	return out
}

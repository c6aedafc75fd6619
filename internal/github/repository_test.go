package github

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/risk-warden/internal/logger"
)

func newTestRepository(t *testing.T, mux *http.ServeMux, opts RepositoryOptions) *Repository {
	t.Helper()
	opts.MaxElapsed = 5 * time.Second
	return NewRepository(newTestClient(t, mux), "acme", "api", opts, logger.Discard())
}

func TestRepository_FetchPullRequest(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/api/pulls/9", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{
			"number": 9,
			"title":  "Rotate signing keys",
			"user":   map[string]any{"login": "alice"},
			"head":   map[string]any{"sha": "abc123"},
			"labels": []map[string]any{{"name": "security"}},
		})
	})

	repo := newTestRepository(t, mux, RepositoryOptions{})
	pr, err := repo.FetchPullRequest(context.Background(), 9)
	require.NoError(t, err)

	assert.Equal(t, "acme/api", repo.Repository())
	assert.Equal(t, 9, pr.Number)
	assert.Equal(t, "alice", pr.Author)
	assert.Equal(t, "abc123", pr.HeadSHA)
	assert.Equal(t, []string{"security"}, pr.Labels)
}

func TestRepository_RetriesTransientReads(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/api/pulls/9/files", func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, `{"message":"boom"}`, http.StatusBadGateway)
			return
		}
		writeJSON(t, w, []map[string]any{{"filename": "a.go", "changes": 1}})
	})

	repo := newTestRepository(t, mux, RepositoryOptions{})
	files, err := repo.FetchFiles(context.Background(), 9)
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRepository_NotFoundIsPermanent(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/api/pulls/404", func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	})

	repo := newTestRepository(t, mux, RepositoryOptions{})
	_, err := repo.FetchPullRequest(context.Background(), 404)
	assert.ErrorIs(t, err, ErrPRNotFound)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRepository_ActingIdentityOverride(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /user", func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatal("identity lookup must not happen when overridden")
	})

	repo := newTestRepository(t, mux, RepositoryOptions{ActingLogin: "ops-bot"})
	login, err := repo.ActingIdentity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ops-bot", login)
}

func TestRepository_OpenPullRequests(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/api/pulls", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "open", r.URL.Query().Get("state"))
		writeJSON(t, w, []map[string]any{{"number": 3}, {"number": 5}})
	})

	repo := newTestRepository(t, mux, RepositoryOptions{})
	numbers, err := repo.OpenPullRequests(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{3, 5}, numbers)
}

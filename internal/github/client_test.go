package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/google/go-github/v73/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/risk-warden/internal/logger"
)

func newTestClient(t *testing.T, handler http.Handler) *gitHubClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := github.NewClient(server.Client())
	u, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client.BaseURL = u

	return &gitHubClient{client: client, logger: logger.Discard()}
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestGetChangedFiles_Paginates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/api/pulls/7/files", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			writeJSON(t, w, []map[string]any{
				{"filename": "logo.png", "changes": 0},
			})
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<%s?page=2>; rel="next"`, r.URL.Path))
		writeJSON(t, w, []map[string]any{
			{"filename": "auth/login.go", "changes": 12, "patch": "@@ -1 +1 @@\n-a\n+b"},
		})
	})

	c := newTestClient(t, mux)
	files, err := c.GetChangedFiles(context.Background(), "acme", "api", 7)
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, "auth/login.go", files[0].Filename)
	assert.Equal(t, 12, files[0].Changes)
	assert.NotEmpty(t, files[0].Patch)
	assert.Equal(t, "logo.png", files[1].Filename)
	assert.Empty(t, files[1].Patch, "binary files carry no patch")
}

func TestApprovePullRequest_SendsApproveEvent(t *testing.T) {
	var event string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/acme/api/pulls/3/reviews", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		event, _ = body["event"].(string)
		writeJSON(t, w, map[string]any{"id": 1})
	})

	c := newTestClient(t, mux)
	require.NoError(t, c.ApprovePullRequest(context.Background(), "acme", "api", 3, "ok"))
	assert.Equal(t, "APPROVE", event)
}

func TestMergePullRequest(t *testing.T) {
	var method string
	var merged atomic.Bool
	merged.Store(true)

	mux := http.NewServeMux()
	mux.HandleFunc("PUT /repos/acme/api/pulls/3/merge", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		method, _ = body["merge_method"].(string)
		writeJSON(t, w, map[string]any{"merged": merged.Load(), "message": "not mergeable"})
	})

	c := newTestClient(t, mux)
	require.NoError(t, c.MergePullRequest(context.Background(), "acme", "api", 3, "squash", "title"))
	assert.Equal(t, "squash", method)

	merged.Store(false)
	err := c.MergePullRequest(context.Background(), "acme", "api", 3, "squash", "title")
	assert.ErrorContains(t, err, "not mergeable")
}

func TestAuthenticatedLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /user", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{"login": "release-bot"})
	})

	c := newTestClient(t, mux)
	login, err := c.AuthenticatedLogin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "release-bot", login)

	c.login = "warden[bot]"
	login, err = c.AuthenticatedLogin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "warden[bot]", login)
}

func TestAuthenticatedLogin_Unknown(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /user", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"Resource not accessible by integration"}`, http.StatusForbidden)
	})

	c := newTestClient(t, mux)
	_, err := c.AuthenticatedLogin(context.Background())
	assert.ErrorIs(t, err, ErrUnknownIdentity)
}

func TestBotLogin(t *testing.T) {
	assert.Equal(t, "risk-warden[bot]", botLogin("risk-warden"))
	assert.Empty(t, botLogin(""))
}

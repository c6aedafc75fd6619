package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	gogithub "github.com/google/go-github/v73/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sevigo/risk-warden/internal/config"
	"github.com/sevigo/risk-warden/internal/core"
	"github.com/sevigo/risk-warden/internal/db"
	"github.com/sevigo/risk-warden/internal/github"
	"github.com/sevigo/risk-warden/internal/llm"
	"github.com/sevigo/risk-warden/internal/logger"
	"github.com/sevigo/risk-warden/internal/storage"
	"github.com/sevigo/risk-warden/mocks"
)

func testConfig() *config.Config {
	return &config.Config{
		GitHub: config.GitHubConfig{MergeMethod: "squash", ActingLogin: "risk-warden[bot]"},
		AI:     config.AIConfig{LLMProvider: "ollama", EmbedderModel: "nomic-embed-text"},
		Pipeline: config.PipelineConfig{
			RetrievalEnabled: true,
			RetrievalLimit:   3,
			ChunkSize:        6000,
			SearchTimeout:    time.Second,
			InferenceTimeout: time.Second,
			ActionTimeout:    time.Second,
			PersistAttempts:  1,
		},
	}
}

func testStore(t *testing.T) storage.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", url.PathEscape(t.Name()))
	conn, err := db.OpenSQLite(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, conn.RunMigrations())
	return storage.NewStore(conn.DB)
}

func fakeGitHub(t *testing.T, merged *atomic.Bool) github.Client {
	t.Helper()
	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(v))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/api/pulls/3", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"number": 3, "user": map[string]any{"login": "alice"}, "head": map[string]any{"sha": "abc"}})
	})
	mux.HandleFunc("GET /repos/acme/api/pulls/3/files", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, []map[string]any{{"filename": "docs/usage.md", "changes": 4, "patch": "+more docs"}})
	})
	mux.HandleFunc("POST /repos/acme/api/issues/3/comments", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, map[string]any{"id": 1})
	})
	mux.HandleFunc("POST /repos/acme/api/pulls/3/reviews", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"id": 2, "state": "APPROVED"})
	})
	mux.HandleFunc("PUT /repos/acme/api/pulls/3/merge", func(w http.ResponseWriter, _ *http.Request) {
		merged.Store(true)
		writeJSON(w, map[string]any{"merged": true, "sha": "def"})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := gogithub.NewClient(server.Client())
	u, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client.BaseURL = u
	return github.NewGitHubClient(client, logger.Discard())
}

func TestAssessmentJob_RunsPipelineAndPersists(t *testing.T) {
	ctrl := gomock.NewController(t)
	inf := mocks.NewMockInferencer(ctrl)
	inf.EXPECT().Classify(gomock.Any(), gomock.Any()).Return("complexity: low\nsecurity_risk: false", nil)

	prompts, err := llm.NewPromptManager()
	require.NoError(t, err)
	store := testStore(t)
	assessor := NewAssessor(testConfig(), store, nil, inf, prompts, nil, logger.Discard())

	var merged atomic.Bool
	client := fakeGitHub(t, &merged)
	job := NewAssessmentJob(assessor, func(context.Context, *core.AssessmentEvent) (github.Client, error) {
		return client, nil
	}, logger.Discard())

	require.NoError(t, job.Run(context.Background(), testEvent(3)))
	assert.True(t, merged.Load())

	doc, err := store.GetAudit(context.Background(), "acme/api", 3)
	require.NoError(t, err)
	assert.Equal(t, core.DecisionMerge, doc.Decision)
	assert.Equal(t, core.CategoryDocumentation, doc.Metadata.Category)
	require.NotNil(t, doc.Execution)
	assert.True(t, doc.Execution.Merged)
}

func TestAssessmentJob_ClientFailure(t *testing.T) {
	assessor := NewAssessor(testConfig(), nil, nil, nil, nil, nil, logger.Discard())
	job := NewAssessmentJob(assessor, func(context.Context, *core.AssessmentEvent) (github.Client, error) {
		return nil, errors.New("bad key")
	}, logger.Discard())

	err := job.Run(context.Background(), testEvent(3))
	assert.ErrorContains(t, err, "bad key")
}

func TestNewClientFactory_NoCredentials(t *testing.T) {
	factory := NewClientFactory(&config.GitHubConfig{}, logger.Discard())
	_, err := factory(context.Background(), testEvent(1))
	assert.Error(t, err)
}

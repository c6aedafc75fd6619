package wire

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/sevigo/goframe/embeddings"
	"github.com/sevigo/goframe/llms"
	"github.com/sevigo/goframe/llms/gemini"
	"github.com/sevigo/goframe/llms/ollama"

	"github.com/sevigo/risk-warden/internal/app"
	"github.com/sevigo/risk-warden/internal/config"
	"github.com/sevigo/risk-warden/internal/core"
	"github.com/sevigo/risk-warden/internal/db"
	"github.com/sevigo/risk-warden/internal/jobs"
	"github.com/sevigo/risk-warden/internal/llm"
	"github.com/sevigo/risk-warden/internal/logger"
	"github.com/sevigo/risk-warden/internal/server"
	"github.com/sevigo/risk-warden/internal/storage"
)

// AssessorSet builds everything needed to run an assessment.
var AssessorSet = wire.NewSet(
	provideLoggerConfig,
	provideSlogLogger,
	provideDBConfig,
	db.NewDatabase,
	provideStore,
	provideGeneratorLLM,
	provideInferencer,
	provideVectorStore,
	provideRiskPolicy,
	llm.NewPromptManager,
	jobs.NewAssessor,
)

// AppSet adds the webhook server and worker pool on top of AssessorSet.
var AppSet = wire.NewSet(
	AssessorSet,
	jobs.NewClientFactory,
	provideGitHubConfig,
	provideJob,
	provideDispatcher,
	server.NewServer,
	app.NewApp,
)

func provideLoggerConfig(cfg *config.Config) logger.Config {
	return cfg.Logging
}

func provideSlogLogger(cfg logger.Config) *slog.Logger {
	return logger.NewLogger(cfg, nil)
}

func provideDBConfig(cfg *config.Config) *config.DBConfig {
	return &cfg.Database
}

func provideGitHubConfig(cfg *config.Config) *config.GitHubConfig {
	return &cfg.GitHub
}

func provideStore(conn *db.DB) storage.Store {
	return storage.NewStore(conn.DB)
}

func provideRiskPolicy(cfg *config.Config) (*core.RiskPolicy, error) {
	return config.ResolvePolicy(cfg.Pipeline)
}

func provideGeneratorLLM(ctx context.Context, cfg *config.Config, logger *slog.Logger) (llms.Model, error) {
	switch cfg.AI.LLMProvider {
	case "gemini":
		if cfg.AI.GeminiAPIKey == "" {
			return nil, fmt.Errorf("gemini api key is not set")
		}
		return gemini.New(ctx, gemini.WithModel(cfg.AI.GeneratorModel), gemini.WithAPIKey(cfg.AI.GeminiAPIKey))
	case "ollama":
		return ollama.New(
			ollama.WithServerURL(cfg.AI.OllamaHost),
			ollama.WithHTTPClient(newOllamaHTTPClient()),
			ollama.WithModel(cfg.AI.GeneratorModel),
			ollama.WithLogger(logger),
		)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.AI.LLMProvider)
	}
}

func provideInferencer(model llms.Model, cfg *config.Config, logger *slog.Logger) core.Inferencer {
	return llm.NewModelInferencer(model, cfg.Pipeline.InferenceTimeout, logger)
}

// provideVectorStore returns nil when no Qdrant host is configured; audit
// search then ranks by risk from the SQL store alone.
func provideVectorStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.VectorStore, error) {
	if cfg.AI.QdrantHost == "" {
		logger.Info("qdrant host not configured, audit search uses the database only")
		return nil, nil
	}

	var (
		embedder embeddings.Embedder
		err      error
	)
	switch cfg.AI.EmbedderProvider {
	case "gemini":
		embedderLLM, gerr := gemini.New(ctx,
			gemini.WithEmbeddingModel(cfg.AI.EmbedderModel),
			gemini.WithAPIKey(cfg.AI.GeminiAPIKey),
		)
		if gerr != nil {
			return nil, fmt.Errorf("failed to create embedder LLM: %w", gerr)
		}
		embedder, err = embeddings.NewEmbedder(embedderLLM)
	case "ollama":
		embedderLLM, oerr := ollama.New(
			ollama.WithServerURL(cfg.AI.OllamaHost),
			ollama.WithModel(cfg.AI.EmbedderModel),
			ollama.WithHTTPClient(newOllamaHTTPClient()),
			ollama.WithLogger(logger),
		)
		if oerr != nil {
			return nil, fmt.Errorf("failed to create embedder LLM: %w", oerr)
		}
		embedder, err = embeddings.NewEmbedder(embedderLLM)
	default:
		return nil, fmt.Errorf("unsupported embedder provider: %s", cfg.AI.EmbedderProvider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return storage.NewQdrantVectorStore(cfg.AI.QdrantHost, embedder, logger), nil
}

func provideJob(assessor *jobs.Assessor, newClient jobs.ClientFactory, logger *slog.Logger) core.Job {
	return jobs.NewAssessmentJob(assessor, newClient, logger)
}

func provideDispatcher(job core.Job, cfg *config.Config, logger *slog.Logger) core.JobDispatcher {
	return jobs.NewDispatcher(job, cfg.Server.MaxWorkers, cfg.Server.QueueSize, logger)
}

func newOllamaHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        100,
			MaxConnsPerHost:     10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
		Timeout: 15 * time.Minute,
	}
}

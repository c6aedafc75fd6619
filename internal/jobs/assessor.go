package jobs

import (
	"context"
	"log/slog"

	"github.com/sevigo/risk-warden/internal/config"
	"github.com/sevigo/risk-warden/internal/core"
	"github.com/sevigo/risk-warden/internal/executor"
	"github.com/sevigo/risk-warden/internal/github"
	"github.com/sevigo/risk-warden/internal/llm"
	"github.com/sevigo/risk-warden/internal/pipeline"
	"github.com/sevigo/risk-warden/internal/storage"
	"github.com/sevigo/risk-warden/internal/util"
)

// Assessor assembles a pipeline for a repository and runs it. It is shared by
// the webhook job and the CLI so that both go through the same wiring and the
// same per-PR locks.
type Assessor struct {
	cfg        *config.Config
	store      storage.Store
	vectors    storage.VectorStore
	inferencer core.Inferencer
	prompts    *llm.PromptManager
	policy     *core.RiskPolicy
	locks      *pipeline.KeyedMutex
	logger     *slog.Logger
}

// NewAssessor creates an Assessor. vectors may be nil, in which case search
// falls back to the SQL store.
func NewAssessor(
	cfg *config.Config,
	store storage.Store,
	vectors storage.VectorStore,
	inferencer core.Inferencer,
	prompts *llm.PromptManager,
	policy *core.RiskPolicy,
	logger *slog.Logger,
) *Assessor {
	if policy == nil {
		policy = core.DefaultRiskPolicy()
	}
	return &Assessor{
		cfg:        cfg,
		store:      store,
		vectors:    vectors,
		inferencer: inferencer,
		prompts:    prompts,
		policy:     policy,
		locks:      pipeline.NewKeyedMutex(),
		logger:     logger,
	}
}

// Store exposes the audit store for read-only commands.
func (a *Assessor) Store() storage.Store { return a.store }

// Repository binds client to owner/name with the configured GitHub options.
func (a *Assessor) Repository(client github.Client, owner, name string) *github.Repository {
	return github.NewRepository(client, owner, name, github.RepositoryOptions{
		MergeMethod: a.cfg.GitHub.MergeMethod,
		ActingLogin: a.cfg.GitHub.ActingLogin,
	}, a.logger)
}

// Orchestrator builds the pipeline for one repository.
func (a *Assessor) Orchestrator(sc core.SourceControl) *pipeline.Orchestrator {
	p := a.cfg.Pipeline
	repo := sc.Repository()
	index := storage.NewAuditIndex(repo, a.store, a.vectors, util.GenerateCollectionName(repo, a.cfg.AI.EmbedderModel), a.logger)

	return pipeline.New(pipeline.Deps{
		Source:     sc,
		Retriever:  llm.NewContextRetriever(index, p.RetrievalLimit, p.SearchTimeout, a.logger),
		Classifier: llm.NewChangeClassifier(a.inferencer, a.prompts, llm.ModelProvider(a.cfg.AI.LLMProvider), p.ChunkSize, a.logger),
		Executor: executor.New(sc, index, executor.Options{
			ActionTimeout:   p.ActionTimeout,
			PersistAttempts: p.PersistAttempts,
		}, a.logger),
		Policy: a.policy,
		Locks:  a.locks,
		Logger: a.logger,
	}, pipeline.Options{RetrievalEnabled: p.RetrievalEnabled})
}

// Assess runs one assessment of owner/name#number through client.
func (a *Assessor) Assess(ctx context.Context, client github.Client, owner, name string, number int) (*pipeline.Result, error) {
	return a.Orchestrator(a.Repository(client, owner, name)).Run(ctx, number)
}

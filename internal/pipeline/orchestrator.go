// Package pipeline sequences one pull request assessment:
// metadata, retrieval, classification, scoring, decision and execution.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sevigo/risk-warden/internal/core"
	"github.com/sevigo/risk-warden/internal/executor"
	"github.com/sevigo/risk-warden/internal/llm"
	"github.com/sevigo/risk-warden/internal/risk"
	"github.com/sevigo/risk-warden/internal/util"
)

// Retriever supplies prior findings. It must not fail.
type Retriever interface {
	Retrieve(ctx context.Context, prNumber int) []string
}

// Classifier produces the complexity and security verdict. It must not fail.
type Classifier interface {
	Classify(ctx context.Context, req llm.ClassifyRequest) core.Analysis
}

// Executor applies the decision.
type Executor interface {
	Execute(ctx context.Context, rec *core.ReviewRecord) (executor.Report, error)
}

// Deps are the collaborators of one repository's pipeline.
type Deps struct {
	Source     core.SourceControl
	Retriever  Retriever
	Classifier Classifier
	Executor   Executor
	Policy     *core.RiskPolicy
	// Locks is shared by all pipelines in the process.
	Locks  *KeyedMutex
	Logger *slog.Logger
}

type Options struct {
	RetrievalEnabled bool
}

// Result describes one finished or failed run.
type Result struct {
	RunID      string
	Repository string
	PRNumber   int
	State      core.PipelineState
	Record     *core.ReviewRecord
	Report     executor.Report
	Duration   time.Duration
	Warnings   []string
}

// Document is the audit document the run produced.
func (r *Result) Document() core.AuditDocument {
	return r.Record.AuditDocument(r.Repository)
}

type Orchestrator struct {
	deps Deps
	opts Options
}

func New(deps Deps, opts Options) *Orchestrator {
	if deps.Policy == nil {
		deps.Policy = core.DefaultRiskPolicy()
	}
	if deps.Locks == nil {
		deps.Locks = NewKeyedMutex()
	}
	return &Orchestrator{deps: deps, opts: opts}
}

// run tracks the state machine of a single execution.
type run struct {
	result *Result
	logger *slog.Logger
}

var stageOrder = map[core.PipelineState]core.PipelineState{
	core.StateCreated:          core.StateMetadataLoaded,
	core.StateMetadataLoaded:   core.StateContextRetrieved,
	core.StateContextRetrieved: core.StateClassified,
	core.StateClassified:       core.StateScored,
	core.StateScored:           core.StateDecided,
	core.StateDecided:          core.StateExecuted,
	core.StateExecuted:         core.StateDone,
}

func (r *run) advance(to core.PipelineState) {
	if next, ok := stageOrder[r.result.State]; !ok || next != to {
		panic(fmt.Sprintf("illegal pipeline transition %s -> %s", r.result.State, to))
	}
	r.result.State = to
	r.logger.Debug("stage completed", "stage", to)
}

func (r *run) fail(err error) (*Result, error) {
	r.result.State = core.StateFailed
	r.logger.Error("assessment failed", "error", err)
	return r.result, err
}

// Run assesses one pull request. At most one run per repository and PR is
// in flight at a time; a second caller waits for the first to finish. The
// returned error is non-nil only for runs that end in the failed state or
// could not start.
func (o *Orchestrator) Run(ctx context.Context, prNumber int) (*Result, error) {
	repo := o.deps.Source.Repository()
	unlock, err := o.deps.Locks.Lock(ctx, util.LockKey(repo, prNumber))
	if err != nil {
		return nil, fmt.Errorf("waiting for in-flight assessment of %s#%d: %w", repo, prNumber, err)
	}
	defer unlock()

	start := time.Now()
	runID := uuid.NewString()
	r := &run{
		result: &Result{
			RunID:      runID,
			Repository: repo,
			PRNumber:   prNumber,
			State:      core.StateCreated,
			Record:     core.NewReviewRecord(prNumber),
		},
		logger: o.deps.Logger.With("repo", repo, "pr", prNumber, "run_id", runID),
	}
	defer func() { r.result.Duration = time.Since(start) }()
	rec := r.result.Record

	md, err := o.loadMetadata(ctx, prNumber)
	if err != nil {
		return r.fail(err)
	}
	if err := rec.SetMetadata(md); err != nil {
		return r.fail(err)
	}
	r.advance(core.StateMetadataLoaded)

	if o.opts.RetrievalEnabled && o.deps.Retriever != nil {
		if err := rec.AppendContext(o.deps.Retriever.Retrieve(ctx, prNumber)...); err != nil {
			return r.fail(err)
		}
	}
	rec.SealContext()
	r.advance(core.StateContextRetrieved)

	analysis := o.deps.Classifier.Classify(ctx, llm.ClassifyRequest{
		Repository: repo,
		Files:      md.Files,
		Context:    rec.RetrievedContext(),
		Policy:     o.deps.Policy,
	})
	if analysis.Degraded {
		r.result.Warnings = append(r.result.Warnings, "classification degraded: fail-open defaults used")
	}
	if err := rec.SetAnalysis(analysis); err != nil {
		return r.fail(err)
	}
	r.advance(core.StateClassified)

	score := risk.Score(md, analysis)
	if err := rec.SetRiskScore(score); err != nil {
		return r.fail(err)
	}
	r.advance(core.StateScored)

	decision := risk.Decide(score)
	if err := rec.SetDecision(decision); err != nil {
		return r.fail(err)
	}
	r.advance(core.StateDecided)

	report, err := o.deps.Executor.Execute(ctx, rec)
	if err != nil {
		return r.fail(err)
	}
	r.result.Report = report
	r.result.Warnings = append(r.result.Warnings, report.Warnings...)
	r.advance(core.StateExecuted)
	r.advance(core.StateDone)

	r.logger.Info("assessment completed",
		"score", score,
		"decision", decision,
		"complexity", analysis.Complexity,
		"security_risk", analysis.SecurityRisk,
		"guard", report.Outcome.Guard,
		"merged", report.Outcome.Merged,
		"warnings", len(r.result.Warnings),
	)
	return r.result, nil
}

func (o *Orchestrator) loadMetadata(ctx context.Context, prNumber int) (core.Metadata, error) {
	pr, err := o.deps.Source.FetchPullRequest(ctx, prNumber)
	if err != nil {
		return core.Metadata{}, errors.Join(ErrMetadataUnavailable, err)
	}
	files, err := o.deps.Source.FetchFiles(ctx, prNumber)
	if err != nil {
		return core.Metadata{}, errors.Join(ErrMetadataUnavailable, err)
	}
	return core.NewMetadata(*pr, files, o.deps.Policy.CorePatterns), nil
}

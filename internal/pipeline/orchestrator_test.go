package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sevigo/risk-warden/internal/core"
	"github.com/sevigo/risk-warden/internal/executor"
	"github.com/sevigo/risk-warden/internal/llm"
	"github.com/sevigo/risk-warden/internal/logger"
	"github.com/sevigo/risk-warden/mocks"
)

type fixture struct {
	sc    *mocks.MockSourceControl
	index *mocks.MockSearchIndex
	inf   *mocks.MockInferencer
	orch  *Orchestrator
}

func newFixture(t *testing.T, retrieval bool) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		sc:    mocks.NewMockSourceControl(ctrl),
		index: mocks.NewMockSearchIndex(ctrl),
		inf:   mocks.NewMockInferencer(ctrl),
	}
	f.sc.EXPECT().Repository().Return("acme/api").AnyTimes()

	prompts, err := llm.NewPromptManager()
	require.NoError(t, err)
	log := logger.Discard()

	f.orch = New(Deps{
		Source:     f.sc,
		Retriever:  llm.NewContextRetriever(f.index, 3, time.Second, log),
		Classifier: llm.NewChangeClassifier(f.inf, prompts, llm.DefaultProvider, 0, log),
		Executor: executor.New(f.sc, f.index, executor.Options{
			ActionTimeout:          time.Second,
			PersistAttempts:        2,
			PersistInitialInterval: time.Millisecond,
		}, log),
		Logger: log,
	}, Options{RetrievalEnabled: retrieval})
	return f
}

func (f *fixture) expectPR(number int, author string, files ...core.FileChange) {
	f.sc.EXPECT().FetchPullRequest(gomock.Any(), number).Return(&core.PullRequest{Number: number, Author: author}, nil)
	f.sc.EXPECT().FetchFiles(gomock.Any(), number).Return(files, nil)
}

// Core auth change with a high-complexity security verdict is blocked.
func TestRun_HighRiskCoreChangeIsBlocked(t *testing.T) {
	f := newFixture(t, true)
	f.expectPR(1, "alice", core.FileChange{Filename: "internal/auth/token.go", Changes: 120, Patch: "+func Verify() {}"})
	f.index.EXPECT().Search(gomock.Any(), llm.RetrievalQuery(1), 4).Return([]core.Snippet{
		{PRNumber: 1, Text: "own earlier entry"},
		{PRNumber: 7, Text: "PR #7 weakened token checks"},
	}, nil)
	f.inf.EXPECT().Classify(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, prompt string) (string, error) {
		assert.Contains(t, prompt, "PR #7 weakened token checks")
		assert.NotContains(t, prompt, "own earlier entry")
		return "complexity: high\nsecurity_risk: true", nil
	})
	f.sc.EXPECT().PostComment(gomock.Any(), 1, gomock.Any()).DoAndReturn(func(_ context.Context, _ int, body string) error {
		assert.Contains(t, body, "90/100")
		return nil
	})
	f.index.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)

	res, err := f.orch.Run(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, core.StateDone, res.State)
	assert.NotEmpty(t, res.RunID)
	doc := res.Document()
	assert.Equal(t, 90, doc.RiskScore)
	assert.Equal(t, core.DecisionBlock, doc.Decision)
	assert.Equal(t, []string{"PR #7 weakened token checks"}, doc.RetrievedContext)
	require.NotNil(t, doc.Execution)
	assert.Equal(t, core.GuardNotMergeable, doc.Execution.Guard)
	assert.False(t, doc.Execution.Merged)
}

// A small docs change by someone else is approved and merged.
func TestRun_LowRiskChangeIsMerged(t *testing.T) {
	f := newFixture(t, false)
	f.expectPR(2, "bob", core.FileChange{Filename: "README.md", Changes: 2, Patch: "+typo"})
	f.inf.EXPECT().Classify(gomock.Any(), gomock.Any()).Return("complexity: low\nsecurity_risk: false", nil)

	gomock.InOrder(
		f.sc.EXPECT().PostComment(gomock.Any(), 2, gomock.Any()).Return(nil),
		f.sc.EXPECT().ActingIdentity(gomock.Any()).Return("risk-warden[bot]", nil),
		f.sc.EXPECT().Approve(gomock.Any(), 2).Return(nil),
		f.sc.EXPECT().Merge(gomock.Any(), 2).Return(nil),
		f.index.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil),
	)

	res, err := f.orch.Run(context.Background(), 2)
	require.NoError(t, err)
	doc := res.Document()
	assert.Equal(t, 0, doc.RiskScore)
	assert.Equal(t, core.DecisionMerge, doc.Decision)
	assert.True(t, doc.Execution.Merged)
	assert.True(t, res.Report.Persisted)
}

// A medium core change lands exactly on the review threshold.
func TestRun_MediumCoreChangeNeedsReview(t *testing.T) {
	f := newFixture(t, false)
	f.expectPR(3, "carol", core.FileChange{Filename: "pkg/core/loop.go", Changes: 40, Patch: "+for {}"})
	f.inf.EXPECT().Classify(gomock.Any(), gomock.Any()).Return("complexity: medium\nsecurity_risk: false", nil)
	f.sc.EXPECT().PostComment(gomock.Any(), 3, gomock.Any()).Return(nil)
	f.index.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)

	res, err := f.orch.Run(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 30, res.Document().RiskScore)
	assert.Equal(t, core.DecisionReview, res.Document().Decision)
}

func TestRun_MetadataFailureHasNoSideEffects(t *testing.T) {
	f := newFixture(t, true)
	f.sc.EXPECT().FetchPullRequest(gomock.Any(), 4).Return(nil, errors.New("404 Not Found"))

	res, err := f.orch.Run(context.Background(), 4)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMetadataUnavailable)
	assert.Equal(t, core.StateFailed, res.State)
	_, ok := res.Record.Decision()
	assert.False(t, ok)
}

// PostComment and Upsert carry no expectations, so the controller fails the
// test if either is reached.
func TestRun_FileListFailureHasNoSideEffects(t *testing.T) {
	f := newFixture(t, true)
	listErr := errors.New("502 Bad Gateway")
	f.sc.EXPECT().FetchPullRequest(gomock.Any(), 6).Return(&core.PullRequest{Number: 6, Author: "erin"}, nil)
	f.sc.EXPECT().FetchFiles(gomock.Any(), 6).Return(nil, listErr)

	res, err := f.orch.Run(context.Background(), 6)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMetadataUnavailable)
	assert.ErrorIs(t, err, listErr)
	assert.Equal(t, core.StateFailed, res.State)
	_, ok := res.Record.Metadata()
	assert.False(t, ok, "a partial fetch must not leave metadata behind")
}

func TestRun_ClassifierOutageFailsOpenToLowRisk(t *testing.T) {
	f := newFixture(t, false)
	f.expectPR(5, "dave", core.FileChange{Filename: "cmd/main.go", Changes: 5, Patch: "+x"})
	f.inf.EXPECT().Classify(gomock.Any(), gomock.Any()).Return("", errors.New("connection refused"))
	f.sc.EXPECT().PostComment(gomock.Any(), 5, gomock.Any()).DoAndReturn(func(_ context.Context, _ int, body string) error {
		assert.True(t, strings.Contains(body, "WARNING"), "degraded runs must say so in the comment")
		return nil
	})
	f.sc.EXPECT().ActingIdentity(gomock.Any()).Return("risk-warden[bot]", nil)
	f.sc.EXPECT().Approve(gomock.Any(), 5).Return(nil)
	f.sc.EXPECT().Merge(gomock.Any(), 5).Return(nil)
	f.index.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)

	res, err := f.orch.Run(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, res.Document().Analysis.Degraded)
	assert.Equal(t, core.DecisionMerge, res.Document().Decision)
	assert.NotEmpty(t, res.Warnings)
}

func TestRun_ReplayProducesSameDocument(t *testing.T) {
	f := newFixture(t, true)
	files := []core.FileChange{{Filename: "internal/core/state.go", Changes: 12, Patch: "+state"}}

	f.sc.EXPECT().FetchPullRequest(gomock.Any(), 6).Return(&core.PullRequest{Number: 6, Author: "erin"}, nil).Times(2)
	f.sc.EXPECT().FetchFiles(gomock.Any(), 6).Return(files, nil).Times(2)
	f.inf.EXPECT().Classify(gomock.Any(), gomock.Any()).Return("complexity: medium, security_risk: false", nil).Times(2)
	f.sc.EXPECT().PostComment(gomock.Any(), 6, gomock.Any()).Return(nil).Times(2)

	var stored []core.AuditDocument
	f.index.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, doc core.AuditDocument) error {
		stored = append(stored, doc)
		return nil
	}).Times(2)
	// The first run's own entry comes back on the replay and must be skipped.
	gomock.InOrder(
		f.index.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil),
		f.index.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any()).Return([]core.Snippet{{PRNumber: 6, Text: "prior run"}}, nil),
	)

	first, err := f.orch.Run(context.Background(), 6)
	require.NoError(t, err)
	second, err := f.orch.Run(context.Background(), 6)
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	require.Len(t, stored, 2)
	assert.Equal(t, stored[0], stored[1])
}

func TestRun_PersistFailureIsWarningOnly(t *testing.T) {
	f := newFixture(t, false)
	f.expectPR(8, "frank", core.FileChange{Filename: "internal/auth/x.go", Changes: 1, Patch: "+y"})
	f.inf.EXPECT().Classify(gomock.Any(), gomock.Any()).Return("complexity: high\nsecurity_risk: false", nil)
	f.sc.EXPECT().PostComment(gomock.Any(), 8, gomock.Any()).Return(nil)
	f.index.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(errors.New("db down")).Times(2)

	res, err := f.orch.Run(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, core.StateDone, res.State)
	assert.False(t, res.Report.Persisted)
	assert.NotEmpty(t, res.Warnings)
}

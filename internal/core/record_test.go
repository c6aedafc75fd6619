package core

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetadata(t *testing.T) {
	pr := PullRequest{Number: 7, Author: "alice", Title: "Rework login"}
	files := []FileChange{
		{Filename: "internal/Auth/login.go", Changes: 12, Patch: "@@ -1 +1 @@"},
		{Filename: "README.md", Changes: 3},
	}

	md := NewMetadata(pr, files, DefaultCorePatterns)

	assert.Equal(t, 15, md.TotalChanges)
	assert.Equal(t, 2, md.FileCount)
	assert.True(t, md.TouchesCore, "path match must be case-insensitive")
	assert.Equal(t, "alice", md.Author)
	assert.Equal(t, CategoryCode, md.Category)

	md.Files[0].Filename = "mutated"
	assert.Equal(t, "internal/Auth/login.go", files[0].Filename, "metadata must not alias caller slices")
}

func TestNewMetadata_NoCoreMatch(t *testing.T) {
	md := NewMetadata(PullRequest{}, []FileChange{{Filename: "docs/guide.md", Changes: 1}}, []string{"auth", " "})
	assert.False(t, md.TouchesCore)
	assert.Equal(t, CategoryDocumentation, md.Category)
}

func TestReviewRecord_WriteOnce(t *testing.T) {
	r := NewReviewRecord(42)

	require.NoError(t, r.SetMetadata(Metadata{FileCount: 1}))
	assert.ErrorIs(t, r.SetMetadata(Metadata{}), ErrFieldAlreadySet)

	require.NoError(t, r.AppendContext("a"))
	require.NoError(t, r.AppendContext("b"))
	r.SealContext()
	assert.ErrorIs(t, r.AppendContext("c"), ErrFieldAlreadySet)
	assert.Equal(t, []string{"a", "b"}, r.RetrievedContext())

	require.NoError(t, r.SetAnalysis(Analysis{Complexity: ComplexityHigh}))
	assert.ErrorIs(t, r.SetAnalysis(Analysis{}), ErrFieldAlreadySet)

	require.NoError(t, r.SetRiskScore(50))
	assert.ErrorIs(t, r.SetRiskScore(10), ErrFieldAlreadySet)

	require.NoError(t, r.SetDecision(DecisionReview))
	assert.ErrorIs(t, r.SetDecision(DecisionMerge), ErrFieldAlreadySet)

	require.NoError(t, r.SetExecution(ExecutionOutcome{CommentPosted: true}))
	assert.ErrorIs(t, r.SetExecution(ExecutionOutcome{}), ErrFieldAlreadySet)

	score, ok := r.RiskScore()
	assert.True(t, ok)
	assert.Equal(t, 50, score)
}

func TestReviewRecord_GettersReturnCopies(t *testing.T) {
	r := NewReviewRecord(1)
	require.NoError(t, r.SetMetadata(Metadata{Files: []FileChange{{Filename: "a.go"}}}))

	md, _ := r.Metadata()
	md.Files[0].Filename = "b.go"

	again, _ := r.Metadata()
	assert.Equal(t, "a.go", again.Files[0].Filename)
}

func TestReviewRecord_AuditDocument(t *testing.T) {
	r := NewReviewRecord(9)
	require.NoError(t, r.SetMetadata(Metadata{Author: "bob", TouchesCore: true}))
	r.SealContext()
	require.NoError(t, r.SetAnalysis(Analysis{Complexity: ComplexityMedium}))
	require.NoError(t, r.SetRiskScore(30))
	require.NoError(t, r.SetDecision(DecisionReview))

	doc := r.AuditDocument("acme/api")

	assert.Equal(t, "acme/api", doc.Repository)
	assert.Equal(t, 9, doc.PRNumber)
	assert.Equal(t, 30, doc.RiskScore)
	assert.Equal(t, DecisionReview, doc.Decision)
	assert.Nil(t, doc.Execution)
	assert.Contains(t, doc.SearchText(), "PR #9 in acme/api: risk 30/100, decision review")
	assert.Contains(t, doc.SearchText(), "touches core")
}

func TestAuditDocument_SearchTextCapsFiles(t *testing.T) {
	var files []FileChange
	for i := range 25 {
		files = append(files, FileChange{Filename: fmt.Sprintf("pkg/file%02d.go", i)})
	}
	doc := AuditDocument{Repository: "acme/api", PRNumber: 3, Metadata: Metadata{Files: files}}

	text := doc.SearchText()
	assert.Contains(t, text, "pkg/file19.go and 5 more")
	assert.NotContains(t, text, "pkg/file20.go")
}

func TestCategorizeChange(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
		files  []string
		want   string
	}{
		{name: "labels win", labels: []string{"Bug", "Security"}, files: []string{"main.go"}, want: "bug, security"},
		{name: "docs only", files: []string{"docs/intro.txt", "CHANGELOG.md"}, want: CategoryDocumentation},
		{name: "tests", files: []string{"pkg/foo_test.go", "pkg/foo.go"}, want: CategoryTests},
		{name: "ci", files: []string{".github/workflows/ci.yml"}, want: CategoryCICD},
		{name: "code", files: []string{"cmd/main.go"}, want: CategoryCode},
		{name: "other", files: []string{"assets/logo.png"}, want: CategoryOther},
		{name: "no files", want: CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var files []FileChange
			for _, f := range tt.files {
				files = append(files, FileChange{Filename: f})
			}
			assert.Equal(t, tt.want, CategorizeChange(tt.labels, files))
		})
	}
}

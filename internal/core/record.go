package core

import (
	"slices"
	"strings"
)

// Complexity is the classifier's complexity tier for a change.
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// Rank orders the tiers. Unknown values rank as low.
func (c Complexity) Rank() int {
	switch c {
	case ComplexityHigh:
		return 2
	case ComplexityMedium:
		return 1
	default:
		return 0
	}
}

// Decision is the pipeline's disposition for a pull request.
type Decision string

const (
	DecisionMerge  Decision = "merge"
	DecisionReview Decision = "review"
	DecisionBlock  Decision = "block"
)

// FileChange is a single changed file of a pull request. Patch is empty for
// binary and rename-only changes.
type FileChange struct {
	Filename string `json:"filename"`
	Changes  int    `json:"changes"`
	Patch    string `json:"patch,omitempty"`
}

// PullRequest is the source-control view of a pull request needed by the pipeline.
type PullRequest struct {
	Number  int
	Title   string
	Author  string
	HeadSHA string
	Labels  []string
}

// Metadata holds the structural facts about a change.
type Metadata struct {
	Author       string       `json:"author"`
	Title        string       `json:"title,omitempty"`
	HeadSHA      string       `json:"head_sha,omitempty"`
	Labels       []string     `json:"labels,omitempty"`
	Category     string       `json:"category"`
	TotalChanges int          `json:"total_changes"`
	FileCount    int          `json:"file_count"`
	TouchesCore  bool         `json:"touches_core"`
	Files        []FileChange `json:"files"`
}

// NewMetadata derives the structural facts of a pull request from its files.
// A file touches a sensitive area when its path contains any of corePatterns,
// compared case-insensitively.
func NewMetadata(pr PullRequest, files []FileChange, corePatterns []string) Metadata {
	md := Metadata{
		Author:    pr.Author,
		Title:     pr.Title,
		HeadSHA:   pr.HeadSHA,
		Labels:    slices.Clone(pr.Labels),
		Category:  CategorizeChange(pr.Labels, files),
		FileCount: len(files),
		Files:     slices.Clone(files),
	}
	for _, f := range files {
		md.TotalChanges += f.Changes
		if !md.TouchesCore && matchesAny(f.Filename, corePatterns) {
			md.TouchesCore = true
		}
	}
	return md
}

func matchesAny(path string, patterns []string) bool {
	lower := strings.ToLower(path)
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" && strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// Analysis is the classifier verdict.
type Analysis struct {
	Complexity   Complexity `json:"complexity"`
	SecurityRisk bool       `json:"security_risk"`

	// Degraded is set when no chunk produced a usable response and the
	// verdict is the fail-open default.
	Degraded     bool `json:"degraded"`
	ChunksTotal  int  `json:"chunks_total"`
	ChunksFailed int  `json:"chunks_failed"`
}

// GuardVerdict records why the merge-safety guard allowed or refused an
// approve+merge.
type GuardVerdict string

const (
	GuardPassed          GuardVerdict = "passed"
	GuardNotMergeable    GuardVerdict = "decision_not_merge"
	GuardSelfAuthored    GuardVerdict = "self_authored"
	GuardUnknownIdentity GuardVerdict = "identity_unknown"
	GuardCommentFailed   GuardVerdict = "comment_failed"
)

// ExecutionOutcome is what the executor attempted against the source-control
// provider.
type ExecutionOutcome struct {
	CommentPosted bool         `json:"comment_posted"`
	Guard         GuardVerdict `json:"guard"`
	Approved      bool         `json:"approved"`
	Merged        bool         `json:"merged"`
	Errors        []string     `json:"errors,omitempty"`
}

package core

import (
	"fmt"
	"strings"
)

// AuditDocument is the persisted projection of a completed ReviewRecord. It
// is keyed by PRNumber within Repository and written with upsert semantics,
// so it deliberately carries no run identifiers or timestamps.
type AuditDocument struct {
	Repository       string            `json:"repository"`
	PRNumber         int               `json:"pr_number"`
	Metadata         Metadata          `json:"metadata"`
	RetrievedContext []string          `json:"retrieved_context"`
	Analysis         Analysis          `json:"analysis"`
	RiskScore        int               `json:"risk_score"`
	Decision         Decision          `json:"decision"`
	Execution        *ExecutionOutcome `json:"execution,omitempty"`
}

// maxIndexedFiles caps the filenames listed in SearchText.
const maxIndexedFiles = 20

// Snippet is one retrieved piece of prior-analysis text.
type Snippet struct {
	PRNumber int
	Text     string
}

// SearchText renders the document as the text indexed for retrieval. Patch
// bodies are left out; filenames carry most of the signal for later queries.
func (d AuditDocument) SearchText() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "PR #%d in %s: risk %d/100, decision %s, complexity %s, security risk %t",
		d.PRNumber, d.Repository, d.RiskScore, d.Decision, d.Analysis.Complexity, d.Analysis.SecurityRisk)
	if d.Metadata.TouchesCore {
		sb.WriteString(", touches core")
	}
	if d.Metadata.Category != "" {
		fmt.Fprintf(&sb, ", category %s", d.Metadata.Category)
	}
	if len(d.Metadata.Files) > 0 {
		files := d.Metadata.Files
		names := make([]string, 0, min(len(files), maxIndexedFiles))
		for _, f := range files[:min(len(files), maxIndexedFiles)] {
			names = append(names, f.Filename)
		}
		fmt.Fprintf(&sb, ". Files: %s", strings.Join(names, ", "))
		if rest := len(files) - len(names); rest > 0 {
			fmt.Fprintf(&sb, " and %d more", rest)
		}
	}
	return sb.String()
}

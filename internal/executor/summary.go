package executor

import (
	"fmt"
	"strings"

	"github.com/sevigo/risk-warden/internal/core"
)

// SummaryInput is everything the PR comment reports.
type SummaryInput struct {
	Metadata  core.Metadata
	Analysis  core.Analysis
	RiskScore int
	Decision  core.Decision
}

// FormatSummary renders the assessment comment posted on the pull request.
func FormatSummary(in SummaryInput) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "### %s PR Risk Assessment: %s\n\n", decisionIcon(in.Decision), strings.ToUpper(string(in.Decision)))

	sb.WriteString("| Signal | Value |\n")
	sb.WriteString("|--------|-------|\n")
	fmt.Fprintf(&sb, "| Risk Score | %d/100 |\n", in.RiskScore)
	fmt.Fprintf(&sb, "| Complexity | %s %s |\n", complexityEmoji(in.Analysis.Complexity), in.Analysis.Complexity)
	fmt.Fprintf(&sb, "| Security Risk | %t |\n", in.Analysis.SecurityRisk)
	fmt.Fprintf(&sb, "| Touches Core | %t |\n", in.Metadata.TouchesCore)
	if in.Metadata.Category != "" {
		fmt.Fprintf(&sb, "| Category | %s |\n", in.Metadata.Category)
	}
	fmt.Fprintf(&sb, "| Changes | %d lines in %d files |\n", in.Metadata.TotalChanges, in.Metadata.FileCount)

	if in.Analysis.Degraded {
		sb.WriteString("\n> [!WARNING]\n")
		sb.WriteString("> The classifier was unavailable for this change. Complexity and security risk are fail-open defaults; review manually.\n")
	} else if in.Analysis.ChunksFailed > 0 {
		fmt.Fprintf(&sb, "\n> [!NOTE]\n> %d of %d diff chunks could not be classified.\n", in.Analysis.ChunksFailed, in.Analysis.ChunksTotal)
	}

	sb.WriteString("\n")
	sb.WriteString(decisionFootnote(in.Decision))
	sb.WriteString("\n")
	return sb.String()
}

func decisionIcon(d core.Decision) string {
	switch d {
	case core.DecisionMerge:
		return "✅"
	case core.DecisionReview:
		return "👀"
	case core.DecisionBlock:
		return "🚫"
	default:
		return "📝"
	}
}

func decisionFootnote(d core.Decision) string {
	switch d {
	case core.DecisionMerge:
		return "_Low risk: eligible for automatic approval and merge._"
	case core.DecisionReview:
		return "_Moderate risk: a human review is required before merging._"
	case core.DecisionBlock:
		return "_High risk: blocked from automatic merge._"
	default:
		return ""
	}
}

func complexityEmoji(c core.Complexity) string {
	switch c {
	case core.ComplexityHigh:
		return "🔴"
	case core.ComplexityMedium:
		return "🟡"
	case core.ComplexityLow:
		return "🟢"
	default:
		return "⚪"
	}
}

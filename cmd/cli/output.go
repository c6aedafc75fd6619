package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"

	"github.com/sevigo/risk-warden/internal/core"
	"github.com/sevigo/risk-warden/internal/executor"
	"github.com/sevigo/risk-warden/internal/pipeline"
)

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	dimColor     = color.New(color.FgHiBlack)
	boldColor    = color.New(color.Bold)
)

func decisionColor(d core.Decision) *color.Color {
	switch d {
	case core.DecisionMerge:
		return successColor
	case core.DecisionReview:
		return warnColor
	default:
		return errorColor
	}
}

// renderMarkdown falls back to the raw text when the terminal renderer fails.
func renderMarkdown(md string) string {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		return md
	}
	return out
}

// summaryMarkdown renders the same markdown the pull request comment carries.
func summaryMarkdown(doc core.AuditDocument) string {
	return executor.FormatSummary(executor.SummaryInput{
		Metadata:  doc.Metadata,
		Analysis:  doc.Analysis,
		RiskScore: doc.RiskScore,
		Decision:  doc.Decision,
	})
}

func printExecution(w io.Writer, out *core.ExecutionOutcome) {
	if out == nil {
		dimColor.Fprintln(w, "   No execution recorded")
		return
	}
	fmt.Fprintf(w, "   Comment posted: %t\n", out.CommentPosted)
	fmt.Fprintf(w, "   Merge guard:    %s\n", out.Guard)
	fmt.Fprintf(w, "   Approved:       %t\n", out.Approved)
	fmt.Fprintf(w, "   Merged:         %t\n", out.Merged)
	for _, e := range out.Errors {
		errorColor.Fprintf(w, "   ! %s\n", e)
	}
}

func printResult(w io.Writer, res *pipeline.Result) {
	doc := res.Document()
	fmt.Fprintln(w, renderMarkdown(summaryMarkdown(doc)))

	titleColor.Fprintln(w, strings.Repeat("─", 60))
	boldColor.Fprintf(w, "%s#%d ", res.Repository, res.PRNumber)
	decisionColor(doc.Decision).Fprintf(w, "%s (%d/100)\n", strings.ToUpper(string(doc.Decision)), doc.RiskScore)
	printExecution(w, doc.Execution)
	if !res.Report.Persisted {
		warnColor.Fprintln(w, "   Audit document was not persisted")
	}
	for _, warning := range res.Warnings {
		warnColor.Fprintf(w, "   ⚠ %s\n", warning)
	}
	if verbose {
		dimColor.Fprintf(w, "   run %s in %s, %d prior findings used\n",
			res.RunID, res.Duration.Round(time.Millisecond), len(doc.RetrievedContext))
	}
}

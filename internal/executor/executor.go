// Package executor applies an assessment's decision to the pull request:
// it comments, guards and performs approve+merge, and persists the audit
// document.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/sevigo/risk-warden/internal/core"
)

// ErrIncompleteRecord is returned when Execute is handed a record that has
// not been through scoring and decision.
var ErrIncompleteRecord = errors.New("record is not ready for execution")

type Options struct {
	// ActionTimeout bounds each external call.
	ActionTimeout time.Duration
	// PersistAttempts is the total number of persistence attempts.
	PersistAttempts int
	// PersistInitialInterval is the first backoff delay between attempts.
	PersistInitialInterval time.Duration
}

// Report is what Execute hands back to the orchestrator.
type Report struct {
	Outcome   core.ExecutionOutcome
	Persisted bool
	// Warnings are non-fatal problems worth surfacing on the run.
	Warnings []string
}

type Executor struct {
	sc     core.SourceControl
	index  core.SearchIndex
	opts   Options
	logger *slog.Logger
}

func New(sc core.SourceControl, index core.SearchIndex, opts Options, logger *slog.Logger) *Executor {
	if opts.ActionTimeout <= 0 {
		opts.ActionTimeout = 30 * time.Second
	}
	if opts.PersistAttempts <= 0 {
		opts.PersistAttempts = 3
	}
	if opts.PersistInitialInterval <= 0 {
		opts.PersistInitialInterval = 500 * time.Millisecond
	}
	return &Executor{sc: sc, index: index, opts: opts, logger: logger}
}

// Guard decides whether approve+merge may happen. It fails closed: the
// decision must be merge, the comment must be on the PR, and both identities
// must be known and different.
func Guard(decision core.Decision, commentPosted bool, author, acting string) core.GuardVerdict {
	switch {
	case !commentPosted:
		return core.GuardCommentFailed
	case decision != core.DecisionMerge:
		return core.GuardNotMergeable
	case strings.TrimSpace(author) == "" || strings.TrimSpace(acting) == "":
		return core.GuardUnknownIdentity
	case strings.EqualFold(strings.TrimSpace(author), strings.TrimSpace(acting)):
		return core.GuardSelfAuthored
	default:
		return core.GuardPassed
	}
}

// Execute runs comment, guard, approve+merge and persist in that order and
// records the outcome on rec. Action failures are captured in the outcome,
// persistence failure becomes a warning; the only error is an incomplete
// record.
func (e *Executor) Execute(ctx context.Context, rec *core.ReviewRecord) (Report, error) {
	md, okMD := rec.Metadata()
	analysis, okA := rec.Analysis()
	score, okS := rec.RiskScore()
	decision, okD := rec.Decision()
	if !okMD || !okA || !okS || !okD {
		return Report{}, ErrIncompleteRecord
	}

	pr := rec.PRNumber()
	log := e.logger.With("repo", e.sc.Repository(), "pr", pr)
	var out core.ExecutionOutcome

	body := FormatSummary(SummaryInput{Metadata: md, Analysis: analysis, RiskScore: score, Decision: decision})
	if err := e.withTimeout(ctx, func(ctx context.Context) error { return e.sc.PostComment(ctx, pr, body) }); err != nil {
		log.Error("failed to post assessment comment", "error", err)
		out.Errors = append(out.Errors, "comment: "+err.Error())
	} else {
		out.CommentPosted = true
	}

	acting := ""
	if out.CommentPosted && decision == core.DecisionMerge {
		acting = e.actingIdentity(ctx, log, &out)
	}
	out.Guard = Guard(decision, out.CommentPosted, md.Author, acting)
	if out.Guard != core.GuardPassed {
		log.Info("merge guard refused approve+merge", "guard", out.Guard, "decision", decision, "author", md.Author)
	} else {
		e.approveAndMerge(ctx, log, pr, &out)
	}

	if err := rec.SetExecution(out); err != nil {
		return Report{}, fmt.Errorf("recording execution outcome: %w", err)
	}

	report := Report{Outcome: out}
	if err := e.persist(ctx, rec.AuditDocument(e.sc.Repository())); err != nil {
		log.Warn("failed to persist audit document", "error", err)
		report.Warnings = append(report.Warnings, "persist: "+err.Error())
	} else {
		report.Persisted = true
	}
	return report, nil
}

func (e *Executor) actingIdentity(ctx context.Context, log *slog.Logger, out *core.ExecutionOutcome) string {
	var acting string
	err := e.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		acting, err = e.sc.ActingIdentity(ctx)
		return err
	})
	if err != nil {
		log.Warn("could not determine acting identity", "error", err)
		out.Errors = append(out.Errors, "identity: "+err.Error())
		return ""
	}
	return acting
}

// approveAndMerge never retries; a merge is only attempted after a
// successful approval.
func (e *Executor) approveAndMerge(ctx context.Context, log *slog.Logger, pr int, out *core.ExecutionOutcome) {
	if err := e.withTimeout(ctx, func(ctx context.Context) error { return e.sc.Approve(ctx, pr) }); err != nil {
		log.Error("failed to approve pull request", "error", err)
		out.Errors = append(out.Errors, "approve: "+err.Error())
		return
	}
	out.Approved = true

	if err := e.withTimeout(ctx, func(ctx context.Context) error { return e.sc.Merge(ctx, pr) }); err != nil {
		log.Error("failed to merge pull request", "error", err)
		out.Errors = append(out.Errors, "merge: "+err.Error())
		return
	}
	out.Merged = true
	log.Info("pull request approved and merged")
}

func (e *Executor) persist(ctx context.Context, doc core.AuditDocument) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.opts.PersistInitialInterval
	bmr := backoff.WithContext(backoff.WithMaxRetries(b, uint64(e.opts.PersistAttempts-1)), ctx)

	return backoff.Retry(func() error {
		return e.withTimeout(ctx, func(ctx context.Context) error { return e.index.Upsert(ctx, doc) })
	}, bmr)
}

func (e *Executor) withTimeout(ctx context.Context, f func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, e.opts.ActionTimeout)
	defer cancel()
	return f(ctx)
}

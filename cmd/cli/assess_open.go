package main

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sevigo/risk-warden/internal/github"
	"github.com/sevigo/risk-warden/internal/gitutil"
	"github.com/sevigo/risk-warden/internal/logger"
	"github.com/sevigo/risk-warden/internal/pipeline"
	"github.com/sevigo/risk-warden/internal/wire"
)

var concurrency int

var assessOpenCmd = &cobra.Command{
	Use:   "assess-open [owner/repo]",
	Short: "Assess every open pull request of a repository",
	Long: `List the open pull requests of a repository and assess each one. Runs
for different pull requests proceed in parallel up to --concurrency.

Examples:
  warden-cli assess-open owner/repo
  warden-cli assess-open --concurrency 2 https://github.com/owner/repo`,
	Args: cobra.ExactArgs(1),
	RunE: runAssessOpen,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	assessOpenCmd.Flags().IntVarP(&concurrency, "concurrency", "c", 4, "Maximum assessments in flight")
	rootCmd.AddCommand(assessOpenCmd)
}

type openOutcome struct {
	number int
	result *pipeline.Result
	err    error
}

func runAssessOpen(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	owner, name, err := gitutil.ParseRepository(args[0])
	if err != nil {
		return fmt.Errorf("invalid repository: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := requireToken(cfg); err != nil {
		return err
	}

	assessor, cleanup, err := wire.InitializeAssessor(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer cleanup()

	client := github.NewPATClient(ctx, cfg.GitHub.Token, logger.NewLogger(cfg.Logging, nil))
	repo := assessor.Repository(client, owner, name)
	numbers, err := repo.OpenPullRequests(ctx)
	if err != nil {
		return fmt.Errorf("failed to list open pull requests: %w", err)
	}
	if len(numbers) == 0 {
		dimColor.Fprintf(out, "No open pull requests in %s/%s\n", owner, name)
		return nil
	}
	titleColor.Fprintf(out, "Assessing %d open pull requests in %s/%s\n", len(numbers), owner, name)

	outcomes := assessAll(ctx, assessor.Orchestrator(repo), numbers, concurrency)

	failed := 0
	for _, o := range outcomes {
		if o.err != nil {
			failed++
			errorColor.Fprintf(out, "#%-5d FAILED  %v\n", o.number, o.err)
			continue
		}
		doc := o.result.Document()
		merged := ""
		if doc.Execution != nil && doc.Execution.Merged {
			merged = " merged"
		}
		decisionColor(doc.Decision).Fprintf(out, "#%-5d %-7s %3d/100%s\n", o.number, doc.Decision, doc.RiskScore, merged)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d assessments failed", failed, len(numbers))
	}
	return nil
}

// assessAll runs one assessment per pull request with at most limit in
// flight. A failed run does not cancel the others.
func assessAll(ctx context.Context, orch *pipeline.Orchestrator, numbers []int, limit int) []openOutcome {
	if limit <= 0 {
		limit = 1
	}
	var (
		mu       sync.Mutex
		outcomes = make([]openOutcome, 0, len(numbers))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, n := range numbers {
		g.Go(func() error {
			res, err := orch.Run(gctx, n)
			mu.Lock()
			outcomes = append(outcomes, openOutcome{number: n, result: res, err: err})
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].number < outcomes[j].number })
	return outcomes
}

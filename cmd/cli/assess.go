package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sevigo/risk-warden/internal/github"
	"github.com/sevigo/risk-warden/internal/gitutil"
	"github.com/sevigo/risk-warden/internal/logger"
	"github.com/sevigo/risk-warden/internal/wire"
)

var assessCmd = &cobra.Command{
	Use:   "assess [pr-url]",
	Short: "Assess a single pull request",
	Long: `Assess a single pull request: classify the diff, score it, comment the
result and approve+merge it when the score is low and the merge guard passes.

Examples:
  warden-cli assess https://github.com/owner/repo/pull/123
  warden-cli assess owner/repo#123`,
	Args: cobra.ExactArgs(1),
	RunE: runAssess,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	rootCmd.AddCommand(assessCmd)
}

func runAssess(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	owner, repo, number, err := gitutil.ParsePullRequestURL(args[0])
	if err != nil {
		return fmt.Errorf("invalid PR reference: %w\n\nExpected: https://github.com/owner/repo/pull/123 or owner/repo#123", err)
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
		return fmt.Errorf("failed to initialize: %w\n\nTip: check config.yaml and that the database and model are reachable", err)
	}
	defer cleanup()

	titleColor.Fprintf(cmd.OutOrStdout(), "Assessing %s/%s#%d\n", owner, repo, number)

	client := github.NewPATClient(ctx, cfg.GitHub.Token, logger.NewLogger(cfg.Logging, nil))
	res, err := assessor.Assess(ctx, client, owner, repo, number)
	if err != nil {
		return fmt.Errorf("assessment failed: %w", err)
	}

	printResult(cmd.OutOrStdout(), res)
	return nil
}

package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sevigo/risk-warden/internal/config"
	"github.com/sevigo/risk-warden/internal/core"
	"github.com/sevigo/risk-warden/internal/github"
)

// ClientFactory returns a GitHub client authorised for an event.
type ClientFactory func(ctx context.Context, event *core.AssessmentEvent) (github.Client, error)

// NewClientFactory prefers the App installation named by the event and
// falls back to the configured personal access token.
func NewClientFactory(cfg *config.GitHubConfig, logger *slog.Logger) ClientFactory {
	return func(ctx context.Context, event *core.AssessmentEvent) (github.Client, error) {
		if event.InstallationID > 0 && cfg.AppID != 0 {
			return github.CreateInstallationClient(ctx, github.AppCredentials{
				AppID:          cfg.AppID,
				PrivateKeyPath: cfg.PrivateKeyPath,
			}, event.InstallationID, logger)
		}
		if cfg.Token != "" {
			return github.NewPATClient(ctx, cfg.Token, logger), nil
		}
		return nil, errors.New("no GitHub credentials available for event")
	}
}

// AssessmentJob runs the pipeline for a webhook event.
type AssessmentJob struct {
	assessor  *Assessor
	newClient ClientFactory
	logger    *slog.Logger
}

var _ core.Job = (*AssessmentJob)(nil)

func NewAssessmentJob(assessor *Assessor, newClient ClientFactory, logger *slog.Logger) *AssessmentJob {
	return &AssessmentJob{assessor: assessor, newClient: newClient, logger: logger}
}

// Run executes one assessment. Only runs that end in the failed state
// return an error.
func (j *AssessmentJob) Run(ctx context.Context, event *core.AssessmentEvent) error {
	if err := validateEvent(event); err != nil {
		return fmt.Errorf("input validation failed: %w", err)
	}

	client, err := j.newClient(ctx, event)
	if err != nil {
		return fmt.Errorf("failed to create GitHub client: %w", err)
	}

	res, err := j.assessor.Assess(ctx, client, event.RepoOwner, event.RepoName, event.PRNumber)
	if err != nil {
		return fmt.Errorf("assessment of %s#%d failed: %w", event.RepoFullName, event.PRNumber, err)
	}

	for _, w := range res.Warnings {
		j.logger.Warn("assessment finished with warning", "repo", event.RepoFullName, "pr", event.PRNumber, "run_id", res.RunID, "warning", w)
	}
	return nil
}

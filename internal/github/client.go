// Package github provides functionality for interacting with the GitHub API.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	"github.com/google/go-github/v73/github"
	"github.com/gregjones/httpcache"
	"golang.org/x/oauth2"

	"github.com/sevigo/risk-warden/internal/core"
)

// ErrUnknownIdentity is returned when the login behind a credential cannot be
// determined.
var ErrUnknownIdentity = errors.New("acting identity unknown")

// Client defines the GitHub operations needed to assess and act on pull
// requests.
//
//go:generate mockgen -destination=../../mocks/mock_github_client.go -package=mocks . Client
type Client interface {
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error)
	GetChangedFiles(ctx context.Context, owner, repo string, number int) ([]core.FileChange, error)
	ListOpenPullRequests(ctx context.Context, owner, repo string) ([]*github.PullRequest, error)
	CreateComment(ctx context.Context, owner, repo string, number int, body string) error
	ApprovePullRequest(ctx context.Context, owner, repo string, number int, body string) error
	MergePullRequest(ctx context.Context, owner, repo string, number int, method, commitTitle string) error
	// AuthenticatedLogin returns the login that write operations are attributed to.
	AuthenticatedLogin(ctx context.Context) (string, error)
}

type gitHubClient struct {
	client *github.Client
	logger *slog.Logger
	// login is fixed for App installations, whose tokens cannot call /user.
	login string
}

// NewGitHubClient wraps the official go-github client to provide a focused,
// testable interface for application-specific GitHub operations.
func NewGitHubClient(client *github.Client, logger *slog.Logger) Client {
	return &gitHubClient{client: client, logger: logger}
}

// rateLimitedHTTPClient stacks ETag caching under the secondary rate limit
// middleware, which sleeps on 429 and abuse responses.
func rateLimitedHTTPClient() *http.Client {
	return github_ratelimit.NewClient(httpcache.NewMemoryCacheTransport())
}

// NewPATClient creates a GitHub client authenticated with a Personal Access
// Token. This is what the CLI uses.
func NewPATClient(ctx context.Context, token string, logger *slog.Logger) Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	base := context.WithValue(ctx, oauth2.HTTPClient, rateLimitedHTTPClient())
	tc := oauth2.NewClient(base, ts)
	return &gitHubClient{client: github.NewClient(tc), logger: logger}
}

// GetPullRequest retrieves a single pull request by its number.
func (g *gitHubClient) GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error) {
	pr, _, err := g.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		g.logger.Error("failed to get pull request", "owner", owner, "repo", repo, "pr", number, "error", err)
		return nil, err
	}
	return pr, nil
}

// GetChangedFiles retrieves every file modified in a pull request, following
// pagination. GitHub returns at most 100 files per page.
func (g *gitHubClient) GetChangedFiles(ctx context.Context, owner, repo string, number int) ([]core.FileChange, error) {
	var allFiles []core.FileChange
	opts := &github.ListOptions{PerPage: 100}

	for {
		files, resp, err := g.client.PullRequests.ListFiles(ctx, owner, repo, number, opts)
		if err != nil {
			g.logger.Error("failed to list files for pull request", "owner", owner, "repo", repo, "pr", number, "error", err)
			return nil, err
		}

		for _, file := range files {
			allFiles = append(allFiles, core.FileChange{
				Filename: file.GetFilename(),
				Changes:  file.GetChanges(),
				Patch:    file.GetPatch(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allFiles, nil
}

// ListOpenPullRequests returns all open pull requests, oldest first.
func (g *gitHubClient) ListOpenPullRequests(ctx context.Context, owner, repo string) ([]*github.PullRequest, error) {
	var all []*github.PullRequest
	opts := &github.PullRequestListOptions{
		State:       "open",
		Sort:        "created",
		Direction:   "asc",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		prs, resp, err := g.client.PullRequests.List(ctx, owner, repo, opts)
		if err != nil {
			g.logger.Error("failed to list pull requests", "owner", owner, "repo", repo, "page", opts.Page, "error", err)
			return nil, err
		}
		all = append(all, prs...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

// CreateComment creates a new comment on a pull request.
func (g *gitHubClient) CreateComment(ctx context.Context, owner, repo string, number int, body string) error {
	comment := &github.IssueComment{Body: &body}
	_, _, err := g.client.Issues.CreateComment(ctx, owner, repo, number, comment)
	if err != nil {
		g.logger.Error("failed to create comment", "owner", owner, "repo", repo, "pr", number, "error", err)
	}
	return err
}

// ApprovePullRequest submits an APPROVE review.
func (g *gitHubClient) ApprovePullRequest(ctx context.Context, owner, repo string, number int, body string) error {
	review := &github.PullRequestReviewRequest{
		Body:  github.Ptr(body),
		Event: github.Ptr("APPROVE"),
	}
	_, _, err := g.client.PullRequests.CreateReview(ctx, owner, repo, number, review)
	if err != nil {
		g.logger.Error("failed to approve pull request", "owner", owner, "repo", repo, "pr", number, "error", err)
	}
	return err
}

// MergePullRequest merges with the given method (merge, squash or rebase).
func (g *gitHubClient) MergePullRequest(ctx context.Context, owner, repo string, number int, method, commitTitle string) error {
	opts := &github.PullRequestOptions{MergeMethod: method, CommitTitle: commitTitle}
	result, _, err := g.client.PullRequests.Merge(ctx, owner, repo, number, "", opts)
	if err != nil {
		g.logger.Error("failed to merge pull request", "owner", owner, "repo", repo, "pr", number, "error", err)
		return err
	}
	if !result.GetMerged() {
		return fmt.Errorf("pull request %s/%s#%d not merged: %s", owner, repo, number, result.GetMessage())
	}
	return nil
}

// AuthenticatedLogin returns the fixed App bot login when known, otherwise the
// login of the token's user.
func (g *gitHubClient) AuthenticatedLogin(ctx context.Context) (string, error) {
	if g.login != "" {
		return g.login, nil
	}
	user, _, err := g.client.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnknownIdentity, err)
	}
	if user.GetLogin() == "" {
		return "", ErrUnknownIdentity
	}
	return user.GetLogin(), nil
}

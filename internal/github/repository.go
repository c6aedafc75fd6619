package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/go-github/v73/github"

	"github.com/sevigo/risk-warden/internal/core"
)

var ErrPRNotFound = errors.New("pull request not found")

// RepositoryOptions tune a Repository.
type RepositoryOptions struct {
	// MergeMethod is passed through to the merge API; empty means squash.
	MergeMethod string
	// ActingLogin, when set, replaces the identity lookup.
	ActingLogin string
	// MaxReadRetries bounds retries of idempotent reads.
	MaxReadRetries uint64
	// MaxElapsed bounds the total time spent retrying one read.
	MaxElapsed time.Duration
}

// Repository binds a Client to one owner/name and implements
// core.SourceControl. Reads are retried with exponential backoff; writes are
// issued exactly once.
type Repository struct {
	client Client
	owner  string
	name   string
	opts   RepositoryOptions
	logger *slog.Logger

	mu    sync.Mutex
	login string
}

var _ core.SourceControl = (*Repository)(nil)

// NewRepository returns a SourceControl bound to owner/name.
func NewRepository(client Client, owner, name string, opts RepositoryOptions, logger *slog.Logger) *Repository {
	if opts.MergeMethod == "" {
		opts.MergeMethod = "squash"
	}
	if opts.MaxReadRetries == 0 {
		opts.MaxReadRetries = 3
	}
	if opts.MaxElapsed == 0 {
		opts.MaxElapsed = 30 * time.Second
	}
	return &Repository{
		client: client,
		owner:  owner,
		name:   name,
		opts:   opts,
		logger: logger.With("repo", owner+"/"+name),
		login:  strings.TrimSpace(opts.ActingLogin),
	}
}

func (r *Repository) Repository() string {
	return r.owner + "/" + r.name
}

func (r *Repository) FetchPullRequest(ctx context.Context, number int) (*core.PullRequest, error) {
	var pr *github.PullRequest
	err := r.retryRead(ctx, func() error {
		var err error
		pr, err = r.client.GetPullRequest(ctx, r.owner, r.name, number)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("can't get pull request %d: %w", number, err)
	}
	return toPullRequest(pr), nil
}

func (r *Repository) FetchFiles(ctx context.Context, number int) ([]core.FileChange, error) {
	var files []core.FileChange
	err := r.retryRead(ctx, func() error {
		var err error
		files, err = r.client.GetChangedFiles(ctx, r.owner, r.name, number)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("can't list files of pull request %d: %w", number, err)
	}
	return files, nil
}

func (r *Repository) PostComment(ctx context.Context, number int, body string) error {
	return r.client.CreateComment(ctx, r.owner, r.name, number, body)
}

func (r *Repository) Approve(ctx context.Context, number int) error {
	return r.client.ApprovePullRequest(ctx, r.owner, r.name, number, "Low risk: approved automatically.")
}

func (r *Repository) Merge(ctx context.Context, number int) error {
	title := fmt.Sprintf("Merge pull request #%d (low risk)", number)
	return r.client.MergePullRequest(ctx, r.owner, r.name, number, r.opts.MergeMethod, title)
}

// ActingIdentity resolves the login once and caches it. Failures are not
// cached.
func (r *Repository) ActingIdentity(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.login != "" {
		return r.login, nil
	}
	login, err := r.client.AuthenticatedLogin(ctx)
	if err != nil {
		return "", err
	}
	r.login = login
	return login, nil
}

// OpenPullRequests lists the numbers of all open pull requests.
func (r *Repository) OpenPullRequests(ctx context.Context) ([]int, error) {
	var prs []*github.PullRequest
	err := r.retryRead(ctx, func() error {
		var err error
		prs, err = r.client.ListOpenPullRequests(ctx, r.owner, r.name)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("can't list open pull requests: %w", err)
	}
	numbers := make([]int, 0, len(prs))
	for _, pr := range prs {
		numbers = append(numbers, pr.GetNumber())
	}
	return numbers, nil
}

func (r *Repository) retryRead(ctx context.Context, f func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxElapsedTime = r.opts.MaxElapsed
	bmr := backoff.WithContext(backoff.WithMaxRetries(b, r.opts.MaxReadRetries), ctx)

	op := func() error {
		err := f()
		if err == nil {
			return nil
		}
		if terr := transformGitHubError(err); terr != nil {
			return backoff.Permanent(terr)
		}
		return err
	}

	if err := backoff.Retry(op, bmr); err != nil {
		r.logger.Warn("github read failed after retries", "elapsed", b.GetElapsedTime(), "error", err)
		return err
	}
	return nil
}

// transformGitHubError returns a non-nil error for responses that retrying
// cannot fix.
func transformGitHubError(err error) error {
	var er *github.ErrorResponse
	if !errors.As(err, &er) || er.Response == nil {
		return nil
	}
	switch er.Response.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", ErrPRNotFound, err)
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusUnprocessableEntity:
		return err
	}
	return nil
}

func toPullRequest(pr *github.PullRequest) *core.PullRequest {
	out := &core.PullRequest{
		Number:  pr.GetNumber(),
		Title:   pr.GetTitle(),
		Author:  pr.GetUser().GetLogin(),
		HeadSHA: pr.GetHead().GetSHA(),
	}
	for _, l := range pr.Labels {
		if name := l.GetName(); name != "" {
			out.Labels = append(out.Labels, name)
		}
	}
	return out
}

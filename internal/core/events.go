// Package core defines the record, capability interfaces and events shared by
// the assessment pipeline and the adapters around it.
package core

import (
	"fmt"
	"strings"

	"github.com/google/go-github/v73/github"
)

// AssessCommand is the pull request comment that requests a new assessment.
const AssessCommand = "/assess"

// AssessmentEvent is the internal view of a webhook that should start an
// assessment of one pull request.
type AssessmentEvent struct {
	RepoOwner    string
	RepoName     string
	RepoFullName string

	PRNumber int
	Trigger  string

	InstallationID int64
}

// EventFromPullRequest converts a pull_request webhook into an AssessmentEvent.
// Only actions that change the code under review trigger an assessment.
func EventFromPullRequest(event *github.PullRequestEvent) (*AssessmentEvent, error) {
	switch event.GetAction() {
	case "opened", "reopened", "synchronize", "ready_for_review":
	default:
		return nil, fmt.Errorf("%w: pull_request action %q", ErrIgnoredEvent, event.GetAction())
	}
	if event.GetPullRequest().GetDraft() {
		return nil, fmt.Errorf("%w: draft pull request", ErrIgnoredEvent)
	}

	return newAssessmentEvent(event.GetRepo(), event.GetNumber(), event.GetInstallation(), "pull_request."+event.GetAction())
}

// EventFromIssueComment converts an issue_comment webhook carrying the
// /assess command on a pull request into an AssessmentEvent.
func EventFromIssueComment(event *github.IssueCommentEvent) (*AssessmentEvent, error) {
	if !event.GetIssue().IsPullRequest() {
		return nil, ErrNotPullRequest
	}
	if event.GetAction() != "created" {
		return nil, fmt.Errorf("%w: issue_comment action %q", ErrIgnoredEvent, event.GetAction())
	}
	if !strings.EqualFold(strings.TrimSpace(event.GetComment().GetBody()), AssessCommand) {
		return nil, fmt.Errorf("%w: comment is not an assess command", ErrIgnoredEvent)
	}

	return newAssessmentEvent(event.GetRepo(), event.GetIssue().GetNumber(), event.GetInstallation(), "comment")
}

func newAssessmentEvent(repo *github.Repository, number int, inst *github.Installation, trigger string) (*AssessmentEvent, error) {
	if repo == nil || repo.GetOwner().GetLogin() == "" || repo.GetName() == "" {
		return nil, fmt.Errorf("repository or owner information is missing from the event")
	}
	if number <= 0 {
		return nil, fmt.Errorf("invalid pull request number: %d", number)
	}

	fullName := repo.GetFullName()
	if fullName == "" {
		fullName = repo.GetOwner().GetLogin() + "/" + repo.GetName()
	}

	return &AssessmentEvent{
		RepoOwner:      repo.GetOwner().GetLogin(),
		RepoName:       repo.GetName(),
		RepoFullName:   fullName,
		PRNumber:       number,
		Trigger:        trigger,
		InstallationID: inst.GetID(),
	}, nil
}

package core

import (
	"testing"

	"github.com/google/go-github/v73/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRepo() *github.Repository {
	return &github.Repository{
		Name:     github.Ptr("api"),
		FullName: github.Ptr("acme/api"),
		Owner:    &github.User{Login: github.Ptr("acme")},
	}
}

func TestEventFromPullRequest(t *testing.T) {
	ev, err := EventFromPullRequest(&github.PullRequestEvent{
		Action:       github.Ptr("synchronize"),
		Number:       github.Ptr(12),
		Repo:         testRepo(),
		PullRequest:  &github.PullRequest{Draft: github.Ptr(false)},
		Installation: &github.Installation{ID: github.Ptr(int64(99))},
	})
	require.NoError(t, err)
	assert.Equal(t, "acme/api", ev.RepoFullName)
	assert.Equal(t, 12, ev.PRNumber)
	assert.Equal(t, int64(99), ev.InstallationID)
	assert.Equal(t, "pull_request.synchronize", ev.Trigger)
}

func TestEventFromPullRequest_Ignored(t *testing.T) {
	_, err := EventFromPullRequest(&github.PullRequestEvent{
		Action: github.Ptr("closed"),
		Number: github.Ptr(12),
		Repo:   testRepo(),
	})
	assert.ErrorIs(t, err, ErrIgnoredEvent)

	_, err = EventFromPullRequest(&github.PullRequestEvent{
		Action:      github.Ptr("opened"),
		Number:      github.Ptr(12),
		Repo:        testRepo(),
		PullRequest: &github.PullRequest{Draft: github.Ptr(true)},
	})
	assert.ErrorIs(t, err, ErrIgnoredEvent)
}

func TestEventFromIssueComment(t *testing.T) {
	prIssue := &github.Issue{
		Number:           github.Ptr(5),
		PullRequestLinks: &github.PullRequestLinks{URL: github.Ptr("https://api.github.com/repos/acme/api/pulls/5")},
	}

	ev, err := EventFromIssueComment(&github.IssueCommentEvent{
		Action:  github.Ptr("created"),
		Issue:   prIssue,
		Comment: &github.IssueComment{Body: github.Ptr("  /ASSESS ")},
		Repo:    testRepo(),
	})
	require.NoError(t, err)
	assert.Equal(t, 5, ev.PRNumber)
	assert.Equal(t, "comment", ev.Trigger)

	_, err = EventFromIssueComment(&github.IssueCommentEvent{
		Action:  github.Ptr("created"),
		Issue:   &github.Issue{Number: github.Ptr(5)},
		Comment: &github.IssueComment{Body: github.Ptr("/assess")},
		Repo:    testRepo(),
	})
	assert.ErrorIs(t, err, ErrNotPullRequest)

	_, err = EventFromIssueComment(&github.IssueCommentEvent{
		Action:  github.Ptr("created"),
		Issue:   prIssue,
		Comment: &github.IssueComment{Body: github.Ptr("lgtm")},
		Repo:    testRepo(),
	})
	assert.ErrorIs(t, err, ErrIgnoredEvent)
}

package jobs

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/risk-warden/internal/core"
	"github.com/sevigo/risk-warden/internal/logger"
)

type jobFunc func(ctx context.Context, event *core.AssessmentEvent) error

func (f jobFunc) Run(ctx context.Context, event *core.AssessmentEvent) error { return f(ctx, event) }

func testEvent(pr int) *core.AssessmentEvent {
	return &core.AssessmentEvent{RepoOwner: "acme", RepoName: "api", RepoFullName: "acme/api", PRNumber: pr}
}

func TestDispatcher_StopDrainsQueue(t *testing.T) {
	var ran atomic.Int32
	d := NewDispatcher(jobFunc(func(context.Context, *core.AssessmentEvent) error {
		ran.Add(1)
		return nil
	}), 2, 10, logger.Discard())

	for i := 1; i <= 5; i++ {
		require.NoError(t, d.Dispatch(context.Background(), testEvent(i)))
	}
	d.Stop()

	assert.Equal(t, int32(5), ran.Load())
}

func TestDispatcher_QueueFull(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	d := NewDispatcher(jobFunc(func(context.Context, *core.AssessmentEvent) error {
		once.Do(func() { close(started) })
		<-release
		return nil
	}), 1, 1, logger.Discard())

	require.NoError(t, d.Dispatch(context.Background(), testEvent(1)))
	<-started
	require.NoError(t, d.Dispatch(context.Background(), testEvent(2)))

	assert.ErrorIs(t, d.Dispatch(context.Background(), testEvent(3)), ErrQueueFull)

	close(release)
	d.Stop()
}

func TestValidateEvent(t *testing.T) {
	assert.NoError(t, validateEvent(testEvent(1)))
	assert.Error(t, validateEvent(nil))
	assert.Error(t, validateEvent(&core.AssessmentEvent{RepoName: "api", PRNumber: 1}))
	assert.Error(t, validateEvent(&core.AssessmentEvent{RepoOwner: "acme", PRNumber: 1}))
	assert.Error(t, validateEvent(testEvent(0)))

	ev := testEvent(1)
	ev.InstallationID = -1
	assert.Error(t, validateEvent(ev))
}

package core

import (
	"context"
)

// JobDispatcher accepts assessment events and queues them for asynchronous
// processing. It decouples the webhook handler from job execution.
type JobDispatcher interface {
	// Dispatch queues the event. It returns an error when the queue is full,
	// giving the caller a backpressure signal.
	Dispatch(ctx context.Context, event *AssessmentEvent) error
	// Stop drains the queue and waits for in-flight jobs.
	Stop()
}

// Job is a single unit of work triggered by an AssessmentEvent.
type Job interface {
	Run(ctx context.Context, event *AssessmentEvent) error
}

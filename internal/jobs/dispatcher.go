// Package jobs runs assessments in the background for webhook events.
package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/sevigo/risk-warden/internal/core"
)

// ErrQueueFull is returned by Dispatch when no queue slot is free.
var ErrQueueFull = errors.New("job queue is full")

// dispatcher implements core.JobDispatcher with a fixed pool of workers
// reading from a bounded queue.
type dispatcher struct {
	job        core.Job
	jobQueue   chan *core.AssessmentEvent
	maxWorkers int
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	logger     *slog.Logger
}

// NewDispatcher starts maxWorkers workers over a queue of queueSize events.
// Non-positive values default to 1 worker and a queue of 100.
func NewDispatcher(job core.Job, maxWorkers, queueSize int, logger *slog.Logger) core.JobDispatcher {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &dispatcher{
		job:        job,
		maxWorkers: maxWorkers,
		jobQueue:   make(chan *core.AssessmentEvent, queueSize),
		ctx:        ctx,
		cancel:     cancel,
		logger:     logger,
	}
	d.startWorkers()
	return d
}

func (d *dispatcher) startWorkers() {
	for i := range d.maxWorkers {
		d.wg.Add(1)
		go d.startWorker(i)
	}
}

func (d *dispatcher) startWorker(workerID int) {
	defer d.wg.Done()
	d.logger.Debug("starting assessment worker", "id", workerID)

	for event := range d.jobQueue {
		d.processEvent(workerID, event)
	}

	d.logger.Debug("shutting down assessment worker", "id", workerID)
}

func (d *dispatcher) processEvent(workerID int, event *core.AssessmentEvent) {
	d.logger.Info("worker processing assessment",
		"worker_id", workerID,
		"repo", event.RepoFullName,
		"pr", event.PRNumber,
		"trigger", event.Trigger,
	)

	if err := d.job.Run(d.ctx, event); err != nil {
		d.logger.Error("assessment job failed",
			"repo", event.RepoFullName,
			"pr", event.PRNumber,
			"error", err,
		)
	}
}

// Dispatch queues an event without blocking.
func (d *dispatcher) Dispatch(_ context.Context, event *core.AssessmentEvent) error {
	select {
	case d.jobQueue <- event:
		d.logger.Info("queued assessment", "repo", event.RepoFullName, "pr", event.PRNumber)
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop closes the queue and waits for queued and in-flight jobs to finish.
func (d *dispatcher) Stop() {
	d.logger.Info("stopping dispatcher and waiting for jobs to finish")
	close(d.jobQueue)
	d.wg.Wait()
	d.cancel()
	d.logger.Info("all assessment jobs have finished")
}

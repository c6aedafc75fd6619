// Package handler provides the HTTP handlers of the risk-warden server.
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/go-github/v73/github"

	"github.com/sevigo/risk-warden/internal/core"
	"github.com/sevigo/risk-warden/internal/jobs"
)

// WebhookHandler turns GitHub webhooks into queued assessments.
type WebhookHandler struct {
	secret     []byte
	dispatcher core.JobDispatcher
	logger     *slog.Logger
}

func NewWebhookHandler(secret string, dispatcher core.JobDispatcher, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		secret:     []byte(secret),
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Handle validates the signature and routes pull_request and issue_comment
// events. Everything else is acknowledged and ignored.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := github.ValidatePayload(r, h.secret)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.logger.Warn("webhook payload too large", "limit", tooLarge.Limit)
		http.Error(w, "Payload too large", http.StatusRequestEntityTooLarge)
		return
	}
	if err != nil {
		h.logger.Warn("invalid webhook payload signature", "error", err)
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	event, err := github.ParseWebHook(github.WebHookType(r), payload)
	if err != nil {
		h.logger.Error("could not parse webhook", "error", err)
		http.Error(w, "Could not parse webhook", http.StatusBadRequest)
		return
	}

	var (
		assessment *core.AssessmentEvent
		convErr    error
	)
	switch e := event.(type) {
	case *github.PullRequestEvent:
		assessment, convErr = core.EventFromPullRequest(e)
	case *github.IssueCommentEvent:
		assessment, convErr = core.EventFromIssueComment(e)
	default:
		h.logger.Debug("ignoring unhandled webhook event type", "type", github.WebHookType(r))
		_, _ = fmt.Fprint(w, "Event type not handled")
		return
	}
	if convErr != nil {
		h.logger.Debug("ignoring webhook", "type", github.WebHookType(r), "reason", convErr.Error())
		_, _ = fmt.Fprint(w, "Event ignored")
		return
	}

	h.dispatch(r.Context(), w, assessment)
}

func (h *WebhookHandler) dispatch(ctx context.Context, w http.ResponseWriter, event *core.AssessmentEvent) {
	if err := h.dispatcher.Dispatch(ctx, event); err != nil {
		h.logger.Error("failed to dispatch assessment", "error", err, "repo", event.RepoFullName, "pr", event.PRNumber)
		status := http.StatusInternalServerError
		if errors.Is(err, jobs.ErrQueueFull) {
			status = http.StatusServiceUnavailable
		}
		http.Error(w, "Failed to start assessment", status)
		return
	}

	h.logger.Info("assessment dispatched", "repo", event.RepoFullName, "pr", event.PRNumber, "trigger", event.Trigger)
	w.WriteHeader(http.StatusAccepted)
	_, _ = fmt.Fprint(w, "Assessment accepted")
}

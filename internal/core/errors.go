package core

import "errors"

var (
	// ErrFieldAlreadySet is returned when a stage writes a record field that
	// has already been written.
	ErrFieldAlreadySet = errors.New("record field already set")
	// ErrNotPullRequest is returned for webhook events that do not concern a pull request.
	ErrNotPullRequest = errors.New("event is not about a pull request")
	// ErrIgnoredEvent is returned for pull request events that should not trigger an assessment.
	ErrIgnoredEvent = errors.New("event does not trigger an assessment")
)

package jobs

import (
	"errors"
	"fmt"

	"github.com/sevigo/risk-warden/internal/core"
)

// validateEvent ensures the event carries everything a run needs.
func validateEvent(event *core.AssessmentEvent) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}
	if event.RepoOwner == "" {
		return errors.New("repository owner cannot be empty")
	}
	if event.RepoName == "" {
		return errors.New("repository name cannot be empty")
	}
	if event.PRNumber <= 0 {
		return fmt.Errorf("pull request number must be positive, got: %d", event.PRNumber)
	}
	if event.InstallationID < 0 {
		return fmt.Errorf("installation ID cannot be negative, got: %d", event.InstallationID)
	}
	return nil
}

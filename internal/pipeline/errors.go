package pipeline

import "errors"

// ErrMetadataUnavailable means the pull request or its files could not be
// fetched. The run ends in the failed state with no side effects.
var ErrMetadataUnavailable = errors.New("pull request metadata unavailable")

package core

import "context"

// SourceControl is the pull request provider as seen by the pipeline. An
// implementation is bound to one repository.
//
//go:generate mockgen -destination=../../mocks/mock_source_control.go -package=mocks . SourceControl
type SourceControl interface {
	// Repository returns the "owner/name" the implementation is bound to.
	Repository() string
	FetchPullRequest(ctx context.Context, number int) (*PullRequest, error)
	// FetchFiles returns every changed file; Patch is empty when the provider
	// has no textual diff for a file.
	FetchFiles(ctx context.Context, number int) ([]FileChange, error)
	PostComment(ctx context.Context, number int, body string) error
	Approve(ctx context.Context, number int) error
	Merge(ctx context.Context, number int) error
	// ActingIdentity returns the login of the credential performing writes.
	ActingIdentity(ctx context.Context) (string, error)
}

// SearchIndex stores audit documents and answers relevance queries over them.
//
//go:generate mockgen -destination=../../mocks/mock_search_index.go -package=mocks . SearchIndex
type SearchIndex interface {
	Search(ctx context.Context, query string, limit int) ([]Snippet, error)
	// Upsert stores doc under its PRNumber, replacing any previous document.
	Upsert(ctx context.Context, doc AuditDocument) error
}

// Inferencer is an opaque text classification capability: prompt in, text out.
//
//go:generate mockgen -destination=../../mocks/mock_inferencer.go -package=mocks . Inferencer
type Inferencer interface {
	Classify(ctx context.Context, prompt string) (string, error)
}

package core

import (
	"fmt"
	"slices"
)

// PipelineState is the position of a run in the assessment state machine.
type PipelineState string

const (
	StateCreated          PipelineState = "created"
	StateMetadataLoaded   PipelineState = "metadata_loaded"
	StateContextRetrieved PipelineState = "context_retrieved"
	StateClassified       PipelineState = "classified"
	StateScored           PipelineState = "scored"
	StateDecided          PipelineState = "decided"
	StateExecuted         PipelineState = "executed"
	StateDone             PipelineState = "done"
	StateFailed           PipelineState = "failed"
)

// ReviewRecord is the record threaded through one pipeline run. Every field
// group is written once by the stage that owns it; later writes fail with
// ErrFieldAlreadySet. Getters return copies so stages cannot mutate what an
// earlier stage produced.
type ReviewRecord struct {
	prNumber int

	metadata   *Metadata
	context    []string
	contextSet bool
	analysis   *Analysis
	riskScore  *int
	decision   *Decision
	execution  *ExecutionOutcome
}

// NewReviewRecord creates an empty record for the given pull request.
func NewReviewRecord(prNumber int) *ReviewRecord {
	return &ReviewRecord{prNumber: prNumber}
}

// PRNumber returns the pull request number the record belongs to.
func (r *ReviewRecord) PRNumber() int { return r.prNumber }

// SetMetadata stores the metadata stage output.
func (r *ReviewRecord) SetMetadata(md Metadata) error {
	if r.metadata != nil {
		return fmt.Errorf("metadata: %w", ErrFieldAlreadySet)
	}
	md.Files = slices.Clone(md.Files)
	md.Labels = slices.Clone(md.Labels)
	r.metadata = &md
	return nil
}

// Metadata returns the metadata and whether it has been written.
func (r *ReviewRecord) Metadata() (Metadata, bool) {
	if r.metadata == nil {
		return Metadata{}, false
	}
	md := *r.metadata
	md.Files = slices.Clone(md.Files)
	md.Labels = slices.Clone(md.Labels)
	return md, true
}

// AppendContext appends retrieved snippets. The context may only grow while
// the retrieval stage owns it; SealContext closes it.
func (r *ReviewRecord) AppendContext(snippets ...string) error {
	if r.contextSet {
		return fmt.Errorf("retrieved context: %w", ErrFieldAlreadySet)
	}
	r.context = append(r.context, snippets...)
	return nil
}

// SealContext marks the retrieved context as final.
func (r *ReviewRecord) SealContext() {
	r.contextSet = true
}

// RetrievedContext returns the retrieved snippets in retrieval order.
func (r *ReviewRecord) RetrievedContext() []string {
	return slices.Clone(r.context)
}

// SetAnalysis stores the classifier verdict.
func (r *ReviewRecord) SetAnalysis(a Analysis) error {
	if r.analysis != nil {
		return fmt.Errorf("analysis: %w", ErrFieldAlreadySet)
	}
	r.analysis = &a
	return nil
}

// Analysis returns the classifier verdict and whether it has been written.
func (r *ReviewRecord) Analysis() (Analysis, bool) {
	if r.analysis == nil {
		return Analysis{}, false
	}
	return *r.analysis, true
}

// SetRiskScore stores the risk score.
func (r *ReviewRecord) SetRiskScore(score int) error {
	if r.riskScore != nil {
		return fmt.Errorf("risk score: %w", ErrFieldAlreadySet)
	}
	r.riskScore = &score
	return nil
}

// RiskScore returns the risk score and whether it has been written.
func (r *ReviewRecord) RiskScore() (int, bool) {
	if r.riskScore == nil {
		return 0, false
	}
	return *r.riskScore, true
}

// SetDecision stores the disposition.
func (r *ReviewRecord) SetDecision(d Decision) error {
	if r.decision != nil {
		return fmt.Errorf("decision: %w", ErrFieldAlreadySet)
	}
	r.decision = &d
	return nil
}

// Decision returns the disposition and whether it has been written.
func (r *ReviewRecord) Decision() (Decision, bool) {
	if r.decision == nil {
		return "", false
	}
	return *r.decision, true
}

// SetExecution stores what the executor did.
func (r *ReviewRecord) SetExecution(out ExecutionOutcome) error {
	if r.execution != nil {
		return fmt.Errorf("execution: %w", ErrFieldAlreadySet)
	}
	out.Errors = slices.Clone(out.Errors)
	r.execution = &out
	return nil
}

// Execution returns the execution outcome and whether it has been written.
func (r *ReviewRecord) Execution() (ExecutionOutcome, bool) {
	if r.execution == nil {
		return ExecutionOutcome{}, false
	}
	out := *r.execution
	out.Errors = slices.Clone(out.Errors)
	return out, true
}

// AuditDocument projects the record into its persisted form.
func (r *ReviewRecord) AuditDocument(repo string) AuditDocument {
	doc := AuditDocument{
		Repository:       repo,
		PRNumber:         r.prNumber,
		RetrievedContext: r.RetrievedContext(),
	}
	if md, ok := r.Metadata(); ok {
		doc.Metadata = md
	}
	if a, ok := r.Analysis(); ok {
		doc.Analysis = a
	}
	if s, ok := r.RiskScore(); ok {
		doc.RiskScore = s
	}
	if d, ok := r.Decision(); ok {
		doc.Decision = d
	}
	if out, ok := r.Execution(); ok {
		doc.Execution = &out
	}
	return doc
}

package llm

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sevigo/risk-warden/internal/core"
)

// DefaultChunkSize is the maximum number of patch bytes sent in one call.
const DefaultChunkSize = 6000

// listItemOverhead is what the templates add around each list entry ("\n- ").
const listItemOverhead = 3

// ChunkOutcome records what happened to one classification call.
type ChunkOutcome int

const (
	ChunkOK ChunkOutcome = iota
	// ChunkUnavailable means the call errored or timed out.
	ChunkUnavailable
	// ChunkMalformed means the call returned nothing usable.
	ChunkMalformed
)

// ClassifyRequest is the input to one classification.
type ClassifyRequest struct {
	Repository string
	Files      []core.FileChange
	Context    []string
	Policy     *core.RiskPolicy
}

// ChangeClassifier turns patch text into a complexity and security verdict.
// Patch text is split into bounded chunks, each classified separately, and
// the verdicts are combined with max(complexity) and OR(security).
type ChangeClassifier struct {
	inferencer core.Inferencer
	prompts    *PromptManager
	provider   ModelProvider
	chunkSize  int
	logger     *slog.Logger
}

func NewChangeClassifier(inferencer core.Inferencer, prompts *PromptManager, provider ModelProvider, chunkSize int, logger *slog.Logger) *ChangeClassifier {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &ChangeClassifier{
		inferencer: inferencer,
		prompts:    prompts,
		provider:   provider,
		chunkSize:  chunkSize,
		logger:     logger,
	}
}

type promptData struct {
	Repository   string
	Part         int
	Total        int
	Chunk        string
	Context      []string
	Instructions []string
}

// ContextBudget is the number of retrieved-context bytes one call may carry.
func (c *ChangeClassifier) ContextBudget() int { return c.chunkSize / 2 }

// InstructionBudget is the number of policy-instruction bytes one call may carry.
func (c *ChangeClassifier) InstructionBudget() int { return c.chunkSize / 4 }

// Classify never fails. With no patch text it returns the low/no-risk verdict
// without calling the model; when every call fails the verdict is the same
// but marked degraded. Each call carries at most chunkSize bytes of patch
// text plus the context and instruction budgets on top of the template.
func (c *ChangeClassifier) Classify(ctx context.Context, req ClassifyRequest) core.Analysis {
	chunks := SplitChunks(PatchText(req.Files), c.chunkSize)
	result := core.Analysis{Complexity: core.ComplexityLow, ChunksTotal: len(chunks)}
	if len(chunks) == 0 {
		return result
	}

	var instructions []string
	if req.Policy != nil {
		instructions = FitList(req.Policy.CustomInstructions, c.InstructionBudget())
	}
	retrieved := FitList(req.Context, c.ContextBudget())
	if len(retrieved) < len(req.Context) {
		c.logger.Debug("retrieved context trimmed to budget", "kept", len(retrieved), "retrieved", len(req.Context))
	}

	ok := 0
	for i, chunk := range chunks {
		prompt, err := c.prompts.Render(ClassifyPrompt, c.provider, promptData{
			Repository:   req.Repository,
			Part:         i + 1,
			Total:        len(chunks),
			Chunk:        chunk,
			Context:      retrieved,
			Instructions: instructions,
		})
		if err != nil {
			c.logger.Error("failed to render classification prompt", "chunk", i, "error", err)
			result.ChunksFailed++
			continue
		}

		verdict, outcome, err := c.classifyChunk(ctx, prompt)
		if outcome != ChunkOK {
			c.logger.Warn("classification chunk failed", "chunk", i+1, "total", len(chunks), "outcome", outcome.String(), "error", err)
			result.ChunksFailed++
			continue
		}
		ok++
		if verdict.Complexity.Rank() > result.Complexity.Rank() {
			result.Complexity = verdict.Complexity
		}
		result.SecurityRisk = result.SecurityRisk || verdict.SecurityRisk
	}

	if ok == 0 {
		result.Complexity = core.ComplexityLow
		result.SecurityRisk = false
		result.Degraded = true
	}
	return result
}

func (c *ChangeClassifier) classifyChunk(ctx context.Context, prompt string) (core.Analysis, ChunkOutcome, error) {
	resp, err := c.inferencer.Classify(ctx, prompt)
	switch {
	case errors.Is(err, ErrEmptyResponse):
		return core.Analysis{}, ChunkMalformed, err
	case err != nil:
		return core.Analysis{}, ChunkUnavailable, err
	case strings.TrimSpace(resp) == "":
		return core.Analysis{}, ChunkMalformed, ErrEmptyResponse
	}
	return ParseVerdict(resp), ChunkOK, nil
}

func (o ChunkOutcome) String() string {
	switch o {
	case ChunkOK:
		return "ok"
	case ChunkUnavailable:
		return "unavailable"
	case ChunkMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// ParseVerdict reads a model response case-insensitively: "high" wins over
// "medium", anything else is low; any "true" flags a security risk.
func ParseVerdict(text string) core.Analysis {
	t := strings.ToLower(text)
	a := core.Analysis{Complexity: core.ComplexityLow}
	switch {
	case strings.Contains(t, "high"):
		a.Complexity = core.ComplexityHigh
	case strings.Contains(t, "medium"):
		a.Complexity = core.ComplexityMedium
	}
	a.SecurityRisk = strings.Contains(t, "true")
	return a
}

// PatchText joins "filename:\npatch" for every file that has a patch, in
// order. Files without a patch contribute nothing.
func PatchText(files []core.FileChange) string {
	var parts []string
	for _, f := range files {
		if f.Patch == "" {
			continue
		}
		parts = append(parts, f.Filename+":\n"+f.Patch)
	}
	return strings.Join(parts, "\n")
}

// SplitChunks partitions text into contiguous pieces of at most size bytes,
// never splitting a UTF-8 sequence. Concatenating the result yields text.
func SplitChunks(text string, size int) []string {
	if text == "" {
		return nil
	}
	if size < utf8.UTFMax {
		size = utf8.UTFMax
	}

	var chunks []string
	for len(text) > size {
		cut := size
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		chunks = append(chunks, text[:cut])
		text = text[cut:]
	}
	return append(chunks, text)
}

// FitList keeps leading entries of items until budget bytes are spent,
// counting the list markup around each entry. The entry that crosses the
// budget is truncated on a rune boundary; later entries are dropped.
func FitList(items []string, budget int) []string {
	var out []string
	for _, item := range items {
		room := budget - listItemOverhead
		if room < utf8.UTFMax {
			break
		}
		if len(item) > room {
			item = SplitChunks(item, room)[0]
		}
		out = append(out, item)
		budget -= len(item) + listItemOverhead
	}
	return out
}

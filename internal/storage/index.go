package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sevigo/goframe/schema"

	"github.com/sevigo/risk-warden/internal/core"
)

const (
	metaRepository = "repository"
	metaPRNumber   = "pr_number"
	metaRiskScore  = "risk_score"
	metaDecision   = "decision"
)

// AuditIndex implements core.SearchIndex for one repository. The SQL store is
// authoritative; the vector store, when present, is kept in step on a best
// effort basis and used for similarity ranking.
type AuditIndex struct {
	repo       string
	store      Store
	vectors    VectorStore
	collection string
	logger     *slog.Logger
}

var _ core.SearchIndex = (*AuditIndex)(nil)

// NewAuditIndex binds an index to a repository. vectors may be nil.
func NewAuditIndex(repo string, store Store, vectors VectorStore, collection string, logger *slog.Logger) *AuditIndex {
	return &AuditIndex{
		repo:       repo,
		store:      store,
		vectors:    vectors,
		collection: collection,
		logger:     logger.With("repo", repo),
	}
}

// Upsert writes the document to SQL, then replaces the PR's vector entry.
// Only the SQL write can fail the call.
func (i *AuditIndex) Upsert(ctx context.Context, doc core.AuditDocument) error {
	if doc.Repository == "" {
		doc.Repository = i.repo
	}
	if err := i.store.UpsertAudit(ctx, doc); err != nil {
		return err
	}
	if i.vectors == nil {
		return nil
	}

	filter := map[string]any{metaRepository: doc.Repository, metaPRNumber: doc.PRNumber}
	if err := i.vectors.DeleteByFilter(ctx, i.collection, filter); err != nil {
		i.logger.Warn("failed to remove previous vector entry", "pr", doc.PRNumber, "error", err)
	}

	vdoc := schema.NewDocument(doc.SearchText(), map[string]any{
		metaRepository: doc.Repository,
		metaPRNumber:   doc.PRNumber,
		metaRiskScore:  doc.RiskScore,
		metaDecision:   string(doc.Decision),
	})
	if err := i.vectors.AddDocuments(ctx, i.collection, []schema.Document{vdoc}); err != nil {
		i.logger.Warn("failed to index audit document for similarity search", "pr", doc.PRNumber, "error", err)
	}
	return nil
}

// Search ranks by similarity when a vector store is configured and by risk
// score otherwise, or when similarity search fails.
func (i *AuditIndex) Search(ctx context.Context, query string, limit int) ([]core.Snippet, error) {
	if limit <= 0 {
		return nil, nil
	}
	if i.vectors != nil {
		snippets, err := i.similar(ctx, query, limit)
		if err == nil {
			return snippets, nil
		}
		i.logger.Warn("similarity search failed, falling back to risk ranking", "error", err)
	}

	rows, err := i.store.HighestRisk(ctx, i.repo, limit)
	if err != nil {
		return nil, err
	}
	out := make([]core.Snippet, 0, len(rows))
	for _, r := range rows {
		out = append(out, core.Snippet{PRNumber: r.PRNumber, Text: r.SearchText})
	}
	return out, nil
}

func (i *AuditIndex) similar(ctx context.Context, query string, limit int) ([]core.Snippet, error) {
	docs, err := i.vectors.SimilaritySearch(ctx, i.collection, query, limit*2, map[string]any{metaRepository: i.repo})
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	seen := make(map[int]struct{}, len(docs))
	out := make([]core.Snippet, 0, limit)
	for _, d := range docs {
		pr, ok := prNumberOf(d.Metadata)
		if !ok {
			continue
		}
		if _, dup := seen[pr]; dup {
			continue
		}
		seen[pr] = struct{}{}
		out = append(out, core.Snippet{PRNumber: pr, Text: d.PageContent})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// prNumberOf reads the PR number back from vector metadata, which may come
// back as any numeric type depending on the payload codec.
func prNumberOf(md map[string]any) (int, bool) {
	switch v := md[metaPRNumber].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sevigo/goframe/embeddings"
	"github.com/sevigo/goframe/schema"
	"github.com/sevigo/goframe/vectorstores"
	"github.com/sevigo/goframe/vectorstores/qdrant"
)

// VectorStore defines the contract for interacting with vector databases.
type VectorStore interface {
	// AddDocuments embeds and stores documents into a collection.
	AddDocuments(ctx context.Context, collectionName string, docs []schema.Document) error
	// SimilaritySearch finds the documents most relevant to query whose
	// metadata matches every entry of filters.
	SimilaritySearch(ctx context.Context, collectionName, query string, numDocs int, filters map[string]any) ([]schema.Document, error)
	// DeleteByFilter removes every document whose metadata matches filters.
	DeleteByFilter(ctx context.Context, collectionName string, filters map[string]any) error
}

// qdrantVectorStore implements VectorStore using Qdrant as the backend.
type qdrantVectorStore struct {
	qdrantHost string
	embedder   embeddings.Embedder
	logger     *slog.Logger
}

// NewQdrantVectorStore creates a new Qdrant-backed vector store.
func NewQdrantVectorStore(qdrantHost string, embedder embeddings.Embedder, logger *slog.Logger) VectorStore {
	return &qdrantVectorStore{
		qdrantHost: qdrantHost,
		embedder:   embedder,
		logger:     logger,
	}
}

func (q *qdrantVectorStore) getStoreForCollection(collectionName string) (vectorstores.VectorStore, error) {
	if strings.TrimSpace(collectionName) == "" {
		return nil, fmt.Errorf("collection name cannot be empty")
	}
	return qdrant.New(
		qdrant.WithHost(q.qdrantHost),
		qdrant.WithEmbedder(q.embedder),
		qdrant.WithCollectionName(collectionName),
		qdrant.WithLogger(q.logger),
	)
}

func (q *qdrantVectorStore) AddDocuments(ctx context.Context, collectionName string, docs []schema.Document) error {
	store, err := q.getStoreForCollection(collectionName)
	if err != nil {
		return fmt.Errorf("failed to get qdrant store for collection %s: %w", collectionName, err)
	}

	if _, err := store.AddDocuments(ctx, docs); err != nil {
		return fmt.Errorf("failed to add documents to qdrant collection %s: %w", collectionName, err)
	}
	return nil
}

func (q *qdrantVectorStore) SimilaritySearch(ctx context.Context, collectionName, query string, numDocs int, filters map[string]any) ([]schema.Document, error) {
	store, err := q.getStoreForCollection(collectionName)
	if err != nil {
		return nil, fmt.Errorf("failed to get qdrant store for collection %s: %w", collectionName, err)
	}

	var opts []vectorstores.Option
	if len(filters) > 0 {
		opts = append(opts, vectorstores.WithFilters(filters))
	}
	return store.SimilaritySearch(ctx, query, numDocs, opts...)
}

func (q *qdrantVectorStore) DeleteByFilter(ctx context.Context, collectionName string, filters map[string]any) error {
	store, err := q.getStoreForCollection(collectionName)
	if err != nil {
		return fmt.Errorf("failed to get qdrant store for collection %s: %w", collectionName, err)
	}
	return store.DeleteDocumentsByFilter(ctx, filters)
}

// Package storage persists audit documents. SQL is the system of record; an
// optional vector store adds similarity search over the same documents.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sevigo/risk-warden/internal/core"
)

var ErrAuditNotFound = errors.New("audit document not found")

// Store defines the audit document operations.
type Store interface {
	// UpsertAudit writes doc, replacing any existing document for the same
	// repository and PR number.
	UpsertAudit(ctx context.Context, doc core.AuditDocument) error
	GetAudit(ctx context.Context, repoFullName string, prNumber int) (*core.AuditDocument, error)
	// HighestRisk returns the riskiest documents of a repository, highest first.
	HighestRisk(ctx context.Context, repoFullName string, limit int) ([]AuditRow, error)
}

// AuditRow is the indexed projection of an audit document.
type AuditRow struct {
	RepoFullName string        `db:"repo_full_name"`
	PRNumber     int           `db:"pr_number"`
	RiskScore    int           `db:"risk_score"`
	Decision     core.Decision `db:"decision"`
	SearchText   string        `db:"search_text"`
}

type sqlStore struct {
	db *sqlx.DB
}

// NewStore creates a Store over either postgres or sqlite.
func NewStore(db *sqlx.DB) Store {
	return &sqlStore{db: db}
}

const upsertAuditQuery = `
INSERT INTO audit_documents (
	repo_full_name, pr_number, risk_score, decision, complexity,
	security_risk, touches_core, degraded, category, search_text, document, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (repo_full_name, pr_number) DO UPDATE SET
	risk_score    = excluded.risk_score,
	decision      = excluded.decision,
	complexity    = excluded.complexity,
	security_risk = excluded.security_risk,
	touches_core  = excluded.touches_core,
	degraded      = excluded.degraded,
	category      = excluded.category,
	search_text   = excluded.search_text,
	document      = excluded.document,
	updated_at    = CURRENT_TIMESTAMP`

func (s *sqlStore) UpsertAudit(ctx context.Context, doc core.AuditDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode audit document: %w", err)
	}

	_, err = s.db.ExecContext(ctx, s.db.Rebind(upsertAuditQuery),
		doc.Repository,
		doc.PRNumber,
		doc.RiskScore,
		string(doc.Decision),
		string(doc.Analysis.Complexity),
		doc.Analysis.SecurityRisk,
		doc.Metadata.TouchesCore,
		doc.Analysis.Degraded,
		doc.Metadata.Category,
		doc.SearchText(),
		string(body),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert audit for %s#%d: %w", doc.Repository, doc.PRNumber, err)
	}
	return nil
}

func (s *sqlStore) GetAudit(ctx context.Context, repoFullName string, prNumber int) (*core.AuditDocument, error) {
	query := s.db.Rebind(`SELECT document FROM audit_documents WHERE repo_full_name = ? AND pr_number = ?`)

	var body []byte
	err := s.db.QueryRowxContext(ctx, query, repoFullName, prNumber).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s#%d", ErrAuditNotFound, repoFullName, prNumber)
		}
		return nil, err
	}

	var doc core.AuditDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode audit document %s#%d: %w", repoFullName, prNumber, err)
	}
	return &doc, nil
}

func (s *sqlStore) HighestRisk(ctx context.Context, repoFullName string, limit int) ([]AuditRow, error) {
	query := s.db.Rebind(`
		SELECT repo_full_name, pr_number, risk_score, decision, search_text
		FROM audit_documents
		WHERE repo_full_name = ?
		ORDER BY risk_score DESC, pr_number DESC
		LIMIT ?`)

	var rows []AuditRow
	if err := s.db.SelectContext(ctx, &rows, query, repoFullName, limit); err != nil {
		return nil, fmt.Errorf("failed to list audits for %s: %w", repoFullName, err)
	}
	return rows, nil
}

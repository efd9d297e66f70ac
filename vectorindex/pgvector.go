package vectorindex

import (
	"context"
	"fmt"
	"strings"

	"finwise-backend/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgVectorIndex keeps market documents in the market_documents table and searches them
// with the pgvector L2 operator
type PgVectorIndex struct {
	db *pgxpool.Pool
}

func NewPgVectorIndex(db *pgxpool.Pool) *PgVectorIndex {
	return &PgVectorIndex{db: db}
}

func (p *PgVectorIndex) Name() string { return "pgvector" }

// formatVector formats an embedding vector as a pgvector literal
func formatVector(embedding []float64) string {
	if len(embedding) == 0 {
		return "[]"
	}
	parts := make([]string, len(embedding))
	for i, v := range embedding {
		parts[i] = fmt.Sprintf("%.6f", v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Build replaces all stored documents in a single transaction
func (p *PgVectorIndex) Build(ctx context.Context, docs []models.MarketDocument, vectors [][]float64) error {
	if _, err := validateBuild(docs, vectors); err != nil {
		return err
	}

	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM market_documents"); err != nil {
		return fmt.Errorf("failed to clear market documents: %w", err)
	}

	batch := &pgx.Batch{}
	for i, doc := range docs {
		batch.Queue(`
			INSERT INTO market_documents (id, description, risk_label, position, embedding)
			VALUES ($1, $2, $3, $4, $5::vector)`,
			doc.ID, doc.Description, string(doc.RiskLabel), i, formatVector(vectors[i]),
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert market documents: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit market documents: %w", err)
	}
	return nil
}

// Search orders by L2 distance and squares it so results match the other backends
func (p *PgVectorIndex) Search(ctx context.Context, vector []float64, k int) ([]models.Candidate, error) {
	if k <= 0 {
		return nil, ErrInvalidK
	}

	query := `
		SELECT
			id,
			description,
			risk_label,
			power(embedding <-> $1::vector, 2) AS distance
		FROM market_documents
		ORDER BY embedding <-> $1::vector, position
		LIMIT $2`

	rows, err := p.db.Query(ctx, query, formatVector(vector), k)
	if err != nil {
		return nil, fmt.Errorf("failed to query market documents: %w", err)
	}
	defer rows.Close()

	var candidates []models.Candidate
	for rows.Next() {
		var c models.Candidate
		var risk string
		if err := rows.Scan(&c.Document.ID, &c.Document.Description, &risk, &c.Distance); err != nil {
			return nil, fmt.Errorf("failed to scan market document: %w", err)
		}
		c.Document.RiskLabel = models.RiskTolerance(risk)
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating market documents: %w", err)
	}

	if len(candidates) == 0 {
		return nil, ErrEmptyIndex
	}
	return candidates, nil
}

// Documents reads the stored corpus in insertion order
func (p *PgVectorIndex) Documents(ctx context.Context) ([]models.MarketDocument, error) {
	rows, err := p.db.Query(ctx, `
		SELECT id, description, risk_label
		FROM market_documents
		ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query market documents: %w", err)
	}
	defer rows.Close()

	var docs []models.MarketDocument
	for rows.Next() {
		var doc models.MarketDocument
		var risk string
		if err := rows.Scan(&doc.ID, &doc.Description, &risk); err != nil {
			return nil, fmt.Errorf("failed to scan market document: %w", err)
		}
		doc.RiskLabel = models.RiskTolerance(risk)
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating market documents: %w", err)
	}

	if len(docs) == 0 {
		return nil, ErrEmptyIndex
	}
	return docs, nil
}

package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/lumenlabs/kbpipe/internal/domain"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// KnowledgeItemRepository persists chunk embeddings and answers
// similarity queries over them.
type KnowledgeItemRepository struct {
	db dbtx
}

func NewKnowledgeItemRepository(pool *pgxpool.Pool) *KnowledgeItemRepository {
	return &KnowledgeItemRepository{db: pool}
}

func NewKnowledgeItemRepositoryWithTx(tx pgx.Tx) *KnowledgeItemRepository {
	return &KnowledgeItemRepository{db: tx}
}

// DeleteAll removes every persisted knowledge item. Idempotent when the
// store is already empty.
func (r *KnowledgeItemRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM knowledge_items`)
	return err
}

// Insert appends one knowledge item. The store assigns identity and the
// creation timestamp; both are written back onto the item.
func (r *KnowledgeItemRepository) Insert(ctx context.Context, item *domain.KnowledgeItem) error {
	if err := domain.ValidateKnowledgeItem(item); err != nil {
		return err
	}

	return r.db.QueryRow(ctx,
		`INSERT INTO knowledge_items (content, embedding, source, category, title, chunk_index, total_chunks)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		item.Content,
		pgvector.NewVector(item.Embedding),
		item.Metadata.Source,
		item.Category,
		nullableString(item.Metadata.Title),
		item.Metadata.ChunkIndex,
		item.Metadata.TotalChunks,
	).Scan(&item.ID, &item.CreatedAt)
}

// SimilaritySearch returns up to limit items whose cosine similarity to
// the query embedding is at least threshold, most similar first.
func (r *KnowledgeItemRepository) SimilaritySearch(ctx context.Context, embedding []float32, threshold float64, limit int) ([]*domain.SimilarityResult, error) {
	if limit <= 0 {
		limit = 5
	}

	vec := pgvector.NewVector(embedding)

	rows, err := r.db.Query(ctx,
		`SELECT content, source, category, title, chunk_index, total_chunks,
		        1 - (embedding <=> $1) AS similarity
		 FROM knowledge_items
		 WHERE 1 - (embedding <=> $1) >= $2
		 ORDER BY embedding <=> $1
		 LIMIT $3`,
		vec, threshold, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]*domain.SimilarityResult, 0)
	for rows.Next() {
		var result domain.SimilarityResult
		var title *string
		if err := rows.Scan(
			&result.Content,
			&result.Metadata.Source,
			&result.Metadata.Category,
			&title,
			&result.Metadata.ChunkIndex,
			&result.Metadata.TotalChunks,
			&result.Similarity,
		); err != nil {
			return nil, err
		}
		if title != nil {
			result.Metadata.Title = *title
		}
		results = append(results, &result)
	}

	return results, rows.Err()
}

// CountAll returns the number of persisted knowledge items.
func (r *KnowledgeItemRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM knowledge_items`).Scan(&count)
	return count, err
}

// ListCategories returns the distinct categories present in the store
// with their item counts.
func (r *KnowledgeItemRepository) ListCategories(ctx context.Context) (map[domain.Category]int64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT category, COUNT(*) FROM knowledge_items GROUP BY category ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make(map[domain.Category]int64)
	for rows.Next() {
		var category domain.Category
		var count int64
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		categories[category] = count
	}

	return categories, rows.Err()
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

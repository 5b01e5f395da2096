package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"learnoted/internal/domain"
)

// HighlightRepository define el contrato de persistencia para resaltados.
type HighlightRepository interface {
	Create(ctx context.Context, highlight domain.Highlight) error
	ListByUserAndURL(ctx context.Context, userID, url string) ([]domain.Highlight, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Highlight, error)
	Delete(ctx context.Context, userID, id string) (bool, error)
}

type PgHighlightRepository struct {
	pool *pgxpool.Pool
}

func NewPgHighlightRepository(pool *pgxpool.Pool) *PgHighlightRepository {
	return &PgHighlightRepository{pool: pool}
}

func (r *PgHighlightRepository) Create(ctx context.Context, highlight domain.Highlight) error {
	const query = `
		INSERT INTO highlights (id, user_id, url, text, color, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		highlight.ID,
		highlight.UserID,
		highlight.URL,
		highlight.Text,
		highlight.Color,
		highlight.Note,
		highlight.CreatedAt,
	)
	return err
}

func (r *PgHighlightRepository) ListByUserAndURL(ctx context.Context, userID, url string) ([]domain.Highlight, error) {
	const query = `
		SELECT id, user_id, url, text, color, note, created_at
		FROM highlights
		WHERE user_id = $1 AND url = $2
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, userID, url)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanHighlights(rows)
}

func (r *PgHighlightRepository) ListByUser(ctx context.Context, userID string) ([]domain.Highlight, error) {
	const query = `
		SELECT id, user_id, url, text, color, note, created_at
		FROM highlights
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanHighlights(rows)
}

func (r *PgHighlightRepository) Delete(ctx context.Context, userID, id string) (bool, error) {
	const query = `DELETE FROM highlights WHERE user_id = $1 AND id = $2`
	tag, err := r.pool.Exec(ctx, query, userID, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanHighlights(rows pgxRows) ([]domain.Highlight, error) {
	var highlights []domain.Highlight
	for rows.Next() {
		var h domain.Highlight
		if err := rows.Scan(
			&h.ID,
			&h.UserID,
			&h.URL,
			&h.Text,
			&h.Color,
			&h.Note,
			&h.CreatedAt,
		); err != nil {
			return nil, err
		}
		highlights = append(highlights, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return highlights, nil
}

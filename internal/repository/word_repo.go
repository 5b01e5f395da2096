package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"learnoted/internal/domain"
)

// WordRepository define el contrato de persistencia para palabras guardadas.
type WordRepository interface {
	Upsert(ctx context.Context, word domain.Word) error
	GetByID(ctx context.Context, userID, id string) (domain.Word, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Word, error)
	SearchSimilar(ctx context.Context, userID string, embedding pgvector.Vector, excludeID string, k int) ([]domain.Word, error)
	Delete(ctx context.Context, userID, id string) (bool, error)
}

type PgWordRepository struct {
	pool *pgxpool.Pool
}

func NewPgWordRepository(pool *pgxpool.Pool) *PgWordRepository {
	return &PgWordRepository{pool: pool}
}

func (r *PgWordRepository) Upsert(ctx context.Context, word domain.Word) error {
	const query = `
		INSERT INTO words (id, user_id, term, definition, example, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, term) DO UPDATE
		SET definition = EXCLUDED.definition,
			example = EXCLUDED.example,
			embedding = EXCLUDED.embedding
	`
	_, err := r.pool.Exec(ctx, query,
		word.ID,
		word.UserID,
		word.Term,
		word.Definition,
		word.Example,
		word.Embedding,
		word.CreatedAt,
	)
	return err
}

func (r *PgWordRepository) GetByID(ctx context.Context, userID, id string) (domain.Word, error) {
	const query = `
		SELECT id, user_id, term, definition, example, embedding, created_at
		FROM words
		WHERE user_id = $1 AND id = $2
	`
	var w domain.Word
	err := r.pool.QueryRow(ctx, query, userID, id).Scan(
		&w.ID,
		&w.UserID,
		&w.Term,
		&w.Definition,
		&w.Example,
		&w.Embedding,
		&w.CreatedAt,
	)
	if err != nil {
		return domain.Word{}, err
	}
	return w, nil
}

func (r *PgWordRepository) ListByUser(ctx context.Context, userID string) ([]domain.Word, error) {
	const query = `
		SELECT id, user_id, term, definition, example, embedding, created_at
		FROM words
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanWords(rows)
}

func (r *PgWordRepository) SearchSimilar(ctx context.Context, userID string, embedding pgvector.Vector, excludeID string, k int) ([]domain.Word, error) {
	if k <= 0 {
		k = 5
	}
	const query = `
		SELECT id, user_id, term, definition, example, embedding, created_at
		FROM words
		WHERE user_id = $1 AND id <> $2
		ORDER BY embedding <=> $3
		LIMIT $4
	`
	rows, err := r.pool.Query(ctx, query, userID, excludeID, embedding, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanWords(rows)
}

func (r *PgWordRepository) Delete(ctx context.Context, userID, id string) (bool, error) {
	const query = `DELETE FROM words WHERE user_id = $1 AND id = $2`
	tag, err := r.pool.Exec(ctx, query, userID, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanWords(rows pgxRows) ([]domain.Word, error) {
	var words []domain.Word
	for rows.Next() {
		var w domain.Word
		if err := rows.Scan(
			&w.ID,
			&w.UserID,
			&w.Term,
			&w.Definition,
			&w.Example,
			&w.Embedding,
			&w.CreatedAt,
		); err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

// pgxRows es la porción mínima de pgx.Rows que usan los scanners, como
// interfaz para poder simularla en tests.
type pgxRows interface {
	Next() bool
	Scan(...interface{}) error
	Err() error
	Close()
}

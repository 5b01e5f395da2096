package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"learnoted/internal/domain"
)

// VideoNoteRepository define el contrato de persistencia para notas de video.
type VideoNoteRepository interface {
	Create(ctx context.Context, note domain.VideoNote) error
	ListByUserAndVideo(ctx context.Context, userID, videoID string) ([]domain.VideoNote, error)
	ListByUser(ctx context.Context, userID string) ([]domain.VideoNote, error)
	Delete(ctx context.Context, userID, id string) (bool, error)
}

type PgVideoNoteRepository struct {
	pool *pgxpool.Pool
}

func NewPgVideoNoteRepository(pool *pgxpool.Pool) *PgVideoNoteRepository {
	return &PgVideoNoteRepository{pool: pool}
}

func (r *PgVideoNoteRepository) Create(ctx context.Context, note domain.VideoNote) error {
	const query = `
		INSERT INTO video_notes (id, user_id, video_id, title, timestamp_seconds, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		note.ID,
		note.UserID,
		note.VideoID,
		note.Title,
		note.TimestampSeconds,
		note.Note,
		note.CreatedAt,
	)
	return err
}

func (r *PgVideoNoteRepository) ListByUserAndVideo(ctx context.Context, userID, videoID string) ([]domain.VideoNote, error) {
	const query = `
		SELECT id, user_id, video_id, title, timestamp_seconds, note, created_at
		FROM video_notes
		WHERE user_id = $1 AND video_id = $2
		ORDER BY timestamp_seconds ASC
	`
	rows, err := r.pool.Query(ctx, query, userID, videoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanVideoNotes(rows)
}

func (r *PgVideoNoteRepository) ListByUser(ctx context.Context, userID string) ([]domain.VideoNote, error) {
	const query = `
		SELECT id, user_id, video_id, title, timestamp_seconds, note, created_at
		FROM video_notes
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanVideoNotes(rows)
}

func (r *PgVideoNoteRepository) Delete(ctx context.Context, userID, id string) (bool, error) {
	const query = `DELETE FROM video_notes WHERE user_id = $1 AND id = $2`
	tag, err := r.pool.Exec(ctx, query, userID, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanVideoNotes(rows pgxRows) ([]domain.VideoNote, error) {
	var notes []domain.VideoNote
	for rows.Next() {
		var n domain.VideoNote
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.VideoID,
			&n.Title,
			&n.TimestampSeconds,
			&n.Note,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notes, nil
}

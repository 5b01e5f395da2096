package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"learnoted/internal/domain"
	"learnoted/internal/repository"
)

var (
	ErrVideoNoteNotFound = errors.New("video note not found")
	ErrInvalidVideoNote  = errors.New("invalid video note")
)

// VideoNoteService coordina reglas de negocio para notas de video.
type VideoNoteService struct {
	logger *zap.Logger
	notes  repository.VideoNoteRepository
}

func NewVideoNoteService(logger *zap.Logger, notes repository.VideoNoteRepository) *VideoNoteService {
	return &VideoNoteService{
		logger: logger,
		notes:  notes,
	}
}

type CreateVideoNoteInput struct {
	VideoID          string
	Title            string
	TimestampSeconds int
	Note             string
}

func (s *VideoNoteService) Create(ctx context.Context, userID string, input CreateVideoNoteInput) (domain.VideoNote, error) {
	videoID := strings.TrimSpace(input.VideoID)
	noteText := strings.TrimSpace(input.Note)
	if videoID == "" || noteText == "" || input.TimestampSeconds < 0 {
		return domain.VideoNote{}, ErrInvalidVideoNote
	}

	note := domain.VideoNote{
		ID:               uuid.NewString(),
		UserID:           userID,
		VideoID:          videoID,
		Title:            strings.TrimSpace(input.Title),
		TimestampSeconds: input.TimestampSeconds,
		Note:             noteText,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.notes.Create(ctx, note); err != nil {
		return domain.VideoNote{}, err
	}
	return note, nil
}

// List devuelve las notas del usuario; con videoID filtra por video y ordena
// por timestamp.
func (s *VideoNoteService) List(ctx context.Context, userID, videoID string) ([]domain.VideoNote, error) {
	videoID = strings.TrimSpace(videoID)
	if videoID != "" {
		return s.notes.ListByUserAndVideo(ctx, userID, videoID)
	}
	return s.notes.ListByUser(ctx, userID)
}

func (s *VideoNoteService) Delete(ctx context.Context, userID, id string) error {
	deleted, err := s.notes.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrVideoNoteNotFound
	}
	return nil
}

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
	ErrHighlightNotFound = errors.New("highlight not found")
	ErrInvalidHighlight  = errors.New("invalid highlight")
)

// HighlightService coordina reglas de negocio para resaltados web.
type HighlightService struct {
	logger     *zap.Logger
	highlights repository.HighlightRepository
}

func NewHighlightService(logger *zap.Logger, highlights repository.HighlightRepository) *HighlightService {
	return &HighlightService{
		logger:     logger,
		highlights: highlights,
	}
}

type CreateHighlightInput struct {
	URL   string
	Text  string
	Color string
	Note  string
}

func (s *HighlightService) Create(ctx context.Context, userID string, input CreateHighlightInput) (domain.Highlight, error) {
	url := strings.TrimSpace(input.URL)
	text := strings.TrimSpace(input.Text)
	if url == "" || text == "" {
		return domain.Highlight{}, ErrInvalidHighlight
	}

	highlight := domain.Highlight{
		ID:        uuid.NewString(),
		UserID:    userID,
		URL:       url,
		Text:      text,
		Color:     strings.TrimSpace(input.Color),
		Note:      strings.TrimSpace(input.Note),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.highlights.Create(ctx, highlight); err != nil {
		return domain.Highlight{}, err
	}
	return highlight, nil
}

// List devuelve los resaltados del usuario; con url filtra por página.
func (s *HighlightService) List(ctx context.Context, userID, url string) ([]domain.Highlight, error) {
	url = strings.TrimSpace(url)
	if url != "" {
		return s.highlights.ListByUserAndURL(ctx, userID, url)
	}
	return s.highlights.ListByUser(ctx, userID)
}

func (s *HighlightService) Delete(ctx context.Context, userID, id string) error {
	deleted, err := s.highlights.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrHighlightNotFound
	}
	return nil
}

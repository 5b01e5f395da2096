package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"learnoted/internal/ai"
	"learnoted/internal/domain"
	"learnoted/internal/repository"
)

var (
	ErrWordNotFound = errors.New("word not found")
	ErrInvalidTerm  = errors.New("invalid term")
)

// WordService resuelve búsquedas de vocabulario: cuota, definición generada
// y persistencia de la palabra con su embedding.
type WordService struct {
	logger *zap.Logger
	words  repository.WordRepository
	quota  *QuotaService
	ai     ai.Client
}

func NewWordService(logger *zap.Logger, words repository.WordRepository, quota *QuotaService, aiClient ai.Client) *WordService {
	return &WordService{
		logger: logger,
		words:  words,
		quota:  quota,
		ai:     aiClient,
	}
}

// Lookup ejecuta una búsqueda medida: primero el gate de cuota, después la
// definición. El débito del contador ocurre recién cuando la definición se
// obtuvo, así un fallo del proveedor no consume cuota.
func (s *WordService) Lookup(ctx context.Context, user domain.User, term string) (domain.Word, domain.User, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return domain.Word{}, user, ErrInvalidTerm
	}

	allowed, user, err := s.quota.CanPerformLookup(ctx, user)
	if err != nil {
		return domain.Word{}, user, err
	}
	if !allowed {
		return domain.Word{}, user, ErrQuotaExceeded
	}

	def, err := s.ai.Define(ctx, term)
	if err != nil {
		return domain.Word{}, user, err
	}
	embedding, err := s.ai.Embed(ctx, term+": "+def.Definition)
	if err != nil {
		return domain.Word{}, user, err
	}

	user, err = s.quota.RecordLookup(ctx, user)
	if err != nil {
		return domain.Word{}, user, err
	}

	word := domain.Word{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		Term:       term,
		Definition: def.Definition,
		Example:    def.Example,
		Embedding:  pgvector.NewVector(embedding),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.words.Upsert(ctx, word); err != nil {
		return domain.Word{}, user, err
	}

	s.logger.Info("word lookup stored",
		zap.String("user_id", user.ID),
		zap.String("term", term),
		zap.Int("word_search_count", user.WordSearchCount),
	)
	return word, user, nil
}

func (s *WordService) List(ctx context.Context, userID string) ([]domain.Word, error) {
	return s.words.ListByUser(ctx, userID)
}

// Similar busca palabras guardadas del mismo usuario cercanas por distancia
// de embeddings, excluyendo la palabra de consulta.
func (s *WordService) Similar(ctx context.Context, userID, wordID string, k int) ([]domain.Word, error) {
	word, err := s.words.GetByID(ctx, userID, wordID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWordNotFound
		}
		return nil, err
	}
	return s.words.SearchSimilar(ctx, userID, word.Embedding, word.ID, k)
}

func (s *WordService) Delete(ctx context.Context, userID, wordID string) error {
	deleted, err := s.words.Delete(ctx, userID, wordID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrWordNotFound
	}
	return nil
}

package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"learnoted/internal/ai"
	"learnoted/internal/domain"
	"learnoted/internal/service"
)

type mockWordRepo struct {
	words map[string]domain.Word
}

func newMockWordRepo() *mockWordRepo {
	return &mockWordRepo{words: make(map[string]domain.Word)}
}

func (m *mockWordRepo) Upsert(_ context.Context, word domain.Word) error {
	m.words[word.ID] = word
	return nil
}

func (m *mockWordRepo) GetByID(_ context.Context, userID, id string) (domain.Word, error) {
	w, ok := m.words[id]
	if !ok || w.UserID != userID {
		return domain.Word{}, pgx.ErrNoRows
	}
	return w, nil
}

func (m *mockWordRepo) ListByUser(_ context.Context, userID string) ([]domain.Word, error) {
	var out []domain.Word
	for _, w := range m.words {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (m *mockWordRepo) SearchSimilar(_ context.Context, userID string, _ pgvector.Vector, excludeID string, _ int) ([]domain.Word, error) {
	var out []domain.Word
	for _, w := range m.words {
		if w.UserID == userID && w.ID != excludeID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (m *mockWordRepo) Delete(_ context.Context, userID, id string) (bool, error) {
	w, ok := m.words[id]
	if !ok || w.UserID != userID {
		return false, nil
	}
	delete(m.words, id)
	return true, nil
}

func setupWordRouter(userRepo *mockUserRepo, wordRepo *mockWordRepo, aiClient ai.Client, limit int, jwtSvc *service.JWTService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	userSvc := service.NewUserService(zap.NewNop(), userRepo)
	quota := service.NewQuotaService(zap.NewNop(), userRepo, limit)
	wordSvc := service.NewWordService(zap.NewNop(), wordRepo, quota, aiClient)
	h := NewWordHandler(zap.NewNop(), userSvc, wordSvc, quota)

	r := gin.New()
	api := r.Group("")
	api.Use(JWTAuthMiddleware(jwtSvc))
	api.POST("/words/search", h.Search)
	api.GET("/words", h.List)
	api.GET("/words/:id/similar", h.Similar)
	api.DELETE("/words/:id", h.Delete)
	return r
}

func TestWordHandlerSearch_StoresWord(t *testing.T) {
	userRepo := newMockUserRepo()
	user := seedFreeUser(userRepo)
	wordRepo := newMockWordRepo()
	aiClient := &ai.MockClient{
		Def:       ai.Definition{Definition: "a greeting", Example: "Hello there."},
		Embedding: []float32{0.1, 0.2},
	}
	jwtSvc := newTestJWTService()
	r := setupWordRouter(userRepo, wordRepo, aiClient, 100, jwtSvc)

	rec := performAuthedRequest(r, http.MethodPost, "/words/search", map[string]string{
		"term": "Hello",
	}, accessTokenFor(t, jwtSvc, user))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Word            domain.Word `json:"word"`
		WordSearchCount int         `json:"word_search_count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Word.Term != "hello" || resp.Word.Definition != "a greeting" {
		t.Fatalf("unexpected word: %+v", resp.Word)
	}
	if resp.WordSearchCount != 1 {
		t.Fatalf("expected counter 1, got %d", resp.WordSearchCount)
	}
	if len(wordRepo.words) != 1 {
		t.Fatalf("expected word persisted")
	}
}

func TestWordHandlerSearch_QuotaExceededPayload(t *testing.T) {
	userRepo := newMockUserRepo()
	user := seedFreeUser(userRepo)
	stored, _ := userRepo.GetByID(context.Background(), user.ID)
	stored.WordSearchCount = 100
	userRepo.usersByID[user.ID] = stored

	wordRepo := newMockWordRepo()
	aiClient := &ai.MockClient{Def: ai.Definition{Definition: "x"}, Embedding: []float32{0.1}}
	jwtSvc := newTestJWTService()
	r := setupWordRouter(userRepo, wordRepo, aiClient, 100, jwtSvc)

	rec := performAuthedRequest(r, http.MethodPost, "/words/search", map[string]string{
		"term": "hello",
	}, accessTokenFor(t, jwtSvc, user))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Error           string `json:"error"`
		Limit           int    `json:"limit"`
		WordSearchCount int    `json:"word_search_count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Limit != 100 || resp.WordSearchCount != 100 {
		t.Fatalf("expected limit and counter in payload, got %+v", resp)
	}
	if len(wordRepo.words) != 0 {
		t.Fatalf("expected no word stored past the limit")
	}
}

func TestWordHandlerSearch_ProviderFailure(t *testing.T) {
	userRepo := newMockUserRepo()
	user := seedFreeUser(userRepo)
	aiClient := &ai.MockClient{DefErr: context.DeadlineExceeded}
	jwtSvc := newTestJWTService()
	r := setupWordRouter(userRepo, newMockWordRepo(), aiClient, 100, jwtSvc)

	rec := performAuthedRequest(r, http.MethodPost, "/words/search", map[string]string{
		"term": "hello",
	}, accessTokenFor(t, jwtSvc, user))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", rec.Code)
	}
	stored, _ := userRepo.GetByID(context.Background(), user.ID)
	if stored.WordSearchCount != 0 {
		t.Fatalf("expected counter untouched on provider failure, got %d", stored.WordSearchCount)
	}
}

func TestWordHandlerList_ReturnsUserWords(t *testing.T) {
	userRepo := newMockUserRepo()
	user := seedFreeUser(userRepo)
	wordRepo := newMockWordRepo()
	wordRepo.words["w1"] = domain.Word{ID: "w1", UserID: user.ID, Term: "hello", CreatedAt: time.Now().UTC()}
	wordRepo.words["w2"] = domain.Word{ID: "w2", UserID: "other", Term: "bye", CreatedAt: time.Now().UTC()}
	jwtSvc := newTestJWTService()
	r := setupWordRouter(userRepo, wordRepo, &ai.MockClient{}, 100, jwtSvc)

	rec := performAuthedRequest(r, http.MethodGet, "/words", nil, accessTokenFor(t, jwtSvc, user))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Words []domain.Word `json:"words"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Words) != 1 || resp.Words[0].ID != "w1" {
		t.Fatalf("expected only the user's words, got %+v", resp.Words)
	}
}

func TestWordHandlerSimilar_UnknownWord(t *testing.T) {
	userRepo := newMockUserRepo()
	user := seedFreeUser(userRepo)
	jwtSvc := newTestJWTService()
	r := setupWordRouter(userRepo, newMockWordRepo(), &ai.MockClient{}, 100, jwtSvc)

	rec := performAuthedRequest(r, http.MethodGet, "/words/missing/similar", nil, accessTokenFor(t, jwtSvc, user))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestWordHandlerDelete(t *testing.T) {
	userRepo := newMockUserRepo()
	user := seedFreeUser(userRepo)
	wordRepo := newMockWordRepo()
	wordRepo.words["w1"] = domain.Word{ID: "w1", UserID: user.ID, Term: "hello"}
	jwtSvc := newTestJWTService()
	r := setupWordRouter(userRepo, wordRepo, &ai.MockClient{}, 100, jwtSvc)

	rec := performAuthedRequest(r, http.MethodDelete, "/words/w1", nil, accessTokenFor(t, jwtSvc, user))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}

	rec = performAuthedRequest(r, http.MethodDelete, "/words/w1", nil, accessTokenFor(t, jwtSvc, user))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 on repeat delete, got %d", rec.Code)
	}
}

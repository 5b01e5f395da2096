package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"learnoted/internal/domain"
)

type mockHighlightRepo struct {
	highlights map[string]domain.Highlight
}

func newMockHighlightRepo() *mockHighlightRepo {
	return &mockHighlightRepo{highlights: make(map[string]domain.Highlight)}
}

func (m *mockHighlightRepo) Create(_ context.Context, highlight domain.Highlight) error {
	m.highlights[highlight.ID] = highlight
	return nil
}

func (m *mockHighlightRepo) ListByUserAndURL(_ context.Context, userID, url string) ([]domain.Highlight, error) {
	var out []domain.Highlight
	for _, h := range m.highlights {
		if h.UserID == userID && h.URL == url {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *mockHighlightRepo) ListByUser(_ context.Context, userID string) ([]domain.Highlight, error) {
	var out []domain.Highlight
	for _, h := range m.highlights {
		if h.UserID == userID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *mockHighlightRepo) Delete(_ context.Context, userID, id string) (bool, error) {
	h, ok := m.highlights[id]
	if !ok || h.UserID != userID {
		return false, nil
	}
	delete(m.highlights, id)
	return true, nil
}

func TestHighlightService_CreateAndListByURL(t *testing.T) {
	repo := newMockHighlightRepo()
	svc := NewHighlightService(zap.NewNop(), repo)

	created, err := svc.Create(context.Background(), "u1", CreateHighlightInput{
		URL:  "https://example.com/article",
		Text: "a passage worth keeping",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("expected generated id and timestamp, got %+v", created)
	}

	if _, err := svc.Create(context.Background(), "u1", CreateHighlightInput{
		URL:  "https://example.com/other",
		Text: "another passage",
	}); err != nil {
		t.Fatalf("create second: %v", err)
	}

	byURL, err := svc.List(context.Background(), "u1", "https://example.com/article")
	if err != nil {
		t.Fatalf("list by url: %v", err)
	}
	if len(byURL) != 1 || byURL[0].ID != created.ID {
		t.Fatalf("expected url filter applied, got %+v", byURL)
	}

	all, err := svc.List(context.Background(), "u1", "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected both highlights, got %d", len(all))
	}
}

func TestHighlightService_CreateRejectsEmptyFields(t *testing.T) {
	svc := NewHighlightService(zap.NewNop(), newMockHighlightRepo())

	if _, err := svc.Create(context.Background(), "u1", CreateHighlightInput{URL: "https://x.com"}); !errors.Is(err, ErrInvalidHighlight) {
		t.Fatalf("expected ErrInvalidHighlight without text, got %v", err)
	}
	if _, err := svc.Create(context.Background(), "u1", CreateHighlightInput{Text: "text"}); !errors.Is(err, ErrInvalidHighlight) {
		t.Fatalf("expected ErrInvalidHighlight without url, got %v", err)
	}
}

func TestHighlightService_DeleteUnknown(t *testing.T) {
	svc := NewHighlightService(zap.NewNop(), newMockHighlightRepo())

	if err := svc.Delete(context.Background(), "u1", "missing"); !errors.Is(err, ErrHighlightNotFound) {
		t.Fatalf("expected ErrHighlightNotFound, got %v", err)
	}
}

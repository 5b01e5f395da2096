package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"learnoted/internal/domain"
)

type mockVideoNoteRepo struct {
	notes map[string]domain.VideoNote
}

func newMockVideoNoteRepo() *mockVideoNoteRepo {
	return &mockVideoNoteRepo{notes: make(map[string]domain.VideoNote)}
}

func (m *mockVideoNoteRepo) Create(_ context.Context, note domain.VideoNote) error {
	m.notes[note.ID] = note
	return nil
}

func (m *mockVideoNoteRepo) ListByUserAndVideo(_ context.Context, userID, videoID string) ([]domain.VideoNote, error) {
	var out []domain.VideoNote
	for _, n := range m.notes {
		if n.UserID == userID && n.VideoID == videoID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockVideoNoteRepo) ListByUser(_ context.Context, userID string) ([]domain.VideoNote, error) {
	var out []domain.VideoNote
	for _, n := range m.notes {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockVideoNoteRepo) Delete(_ context.Context, userID, id string) (bool, error) {
	n, ok := m.notes[id]
	if !ok || n.UserID != userID {
		return false, nil
	}
	delete(m.notes, id)
	return true, nil
}

func TestVideoNoteService_CreateAndListByVideo(t *testing.T) {
	repo := newMockVideoNoteRepo()
	svc := NewVideoNoteService(zap.NewNop(), repo)

	created, err := svc.Create(context.Background(), "u1", CreateVideoNoteInput{
		VideoID:          "dQw4w9WgXcQ",
		Title:            "Some lecture",
		TimestampSeconds: 90,
		Note:             "key point here",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.TimestampSeconds != 90 {
		t.Fatalf("unexpected note: %+v", created)
	}

	if _, err := svc.Create(context.Background(), "u1", CreateVideoNoteInput{
		VideoID: "othervideo",
		Note:    "unrelated",
	}); err != nil {
		t.Fatalf("create second: %v", err)
	}

	byVideo, err := svc.List(context.Background(), "u1", "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("list by video: %v", err)
	}
	if len(byVideo) != 1 || byVideo[0].ID != created.ID {
		t.Fatalf("expected video filter applied, got %+v", byVideo)
	}
}

func TestVideoNoteService_CreateRejectsInvalidInput(t *testing.T) {
	svc := NewVideoNoteService(zap.NewNop(), newMockVideoNoteRepo())

	if _, err := svc.Create(context.Background(), "u1", CreateVideoNoteInput{Note: "x"}); !errors.Is(err, ErrInvalidVideoNote) {
		t.Fatalf("expected ErrInvalidVideoNote without video id, got %v", err)
	}
	if _, err := svc.Create(context.Background(), "u1", CreateVideoNoteInput{VideoID: "v1"}); !errors.Is(err, ErrInvalidVideoNote) {
		t.Fatalf("expected ErrInvalidVideoNote without note, got %v", err)
	}
	if _, err := svc.Create(context.Background(), "u1", CreateVideoNoteInput{
		VideoID:          "v1",
		Note:             "x",
		TimestampSeconds: -5,
	}); !errors.Is(err, ErrInvalidVideoNote) {
		t.Fatalf("expected ErrInvalidVideoNote for negative timestamp, got %v", err)
	}
}

func TestVideoNoteService_DeleteUnknown(t *testing.T) {
	svc := NewVideoNoteService(zap.NewNop(), newMockVideoNoteRepo())

	if err := svc.Delete(context.Background(), "u1", "missing"); !errors.Is(err, ErrVideoNoteNotFound) {
		t.Fatalf("expected ErrVideoNoteNotFound, got %v", err)
	}
}

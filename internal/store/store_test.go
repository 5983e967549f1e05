package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikequentel/confirmtweet/internal/feedback"
	"github.com/mikequentel/confirmtweet/internal/model"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "history.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// ===================== Append / List =====================

func TestAppendList(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	for i, text := range []string{"one", "two", "three"} {
		_, err := s.Append(ctx, Entry{
			PackageID: "abc123",
			Message:   model.Message{Text: text, Category: model.CategorySuccess},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d entries, want 3", len(all))
	}
	if all[0].Message.Text != "three" || all[2].Message.Text != "one" {
		t.Errorf("unexpected order: %q .. %q", all[0].Message.Text, all[2].Message.Text)
	}
	if all[0].ID == "" || all[0].PackageID != "abc123" || all[0].Message.Category != model.CategorySuccess {
		t.Errorf("unexpected entry %+v", all[0])
	}
	if !all[0].CreatedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("created_at = %v", all[0].CreatedAt)
	}

	two, err := s.List(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(two) != 2 {
		t.Errorf("limit 2 returned %d entries", len(two))
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.sqlite")

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Append(ctx, Entry{PackageID: "p", Message: model.Message{Text: "kept", Category: model.CategoryError}}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	got, err := s.List(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Message.Text != "kept" {
		t.Errorf("entries after reopen = %+v", got)
	}
}

// ===================== Recorder =====================

func TestRecorder(t *testing.T) {
	s := openTemp(t)
	rec := NewRecorder(s, "abc123", nil)

	feedback.Error(rec, feedback.UnknownError())

	got, err := s.List(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d entries, want 1", len(got))
	}
	if got[0].Message.Text != "Tweet not posted due to unknown error." || got[0].Message.Category != model.CategoryError {
		t.Errorf("unexpected entry %+v", got[0])
	}
}

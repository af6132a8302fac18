package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"quiz-leaderboard-service/internal/domain"
)

func TestQuizRepositoryCaches(t *testing.T) {
	loader := &countingLoader{QuizLoader: NewStaticQuizLoader(sampleQuizzes())}
	repo := NewQuizRepository(loader, time.Minute)

	if _, err := repo.ListQuizzes(context.Background()); err != nil {
		t.Fatalf("list quizzes: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	quizzes, err := repo.ListQuizzes(context.Background())
	if err != nil {
		t.Fatalf("list quizzes 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
	if len(quizzes) != 1 || quizzes[0].Title != "HTML" {
		t.Fatalf("unexpected catalog %+v", quizzes)
	}
}

func TestQuizRepositoryServesStaleCatalogOnFailure(t *testing.T) {
	loader := &countingLoader{QuizLoader: NewStaticQuizLoader(sampleQuizzes())}
	repo := NewQuizRepository(loader, time.Minute)
	now := time.Now()
	repo.clock = func() time.Time { return now }

	if _, err := repo.ListQuizzes(context.Background()); err != nil {
		t.Fatalf("list quizzes: %v", err)
	}

	loader.err = errors.New("store down")
	now = now.Add(time.Hour)
	quizzes, err := repo.ListQuizzes(context.Background())
	if err != nil {
		t.Fatalf("expected stale catalog, got %v", err)
	}
	if len(quizzes) != 1 || loader.calls != 2 {
		t.Fatalf("expected reload attempt and stale catalog, calls=%d quizzes=%d", loader.calls, len(quizzes))
	}
}

func TestQuizRepositoryFailsWithoutCatalog(t *testing.T) {
	loader := &countingLoader{QuizLoader: NewStaticQuizLoader(nil), err: errors.New("store down")}
	repo := NewQuizRepository(loader, time.Minute)
	if _, err := repo.ListQuizzes(context.Background()); err == nil {
		t.Fatalf("expected error when nothing was ever loaded")
	}
}

func TestFileQuizLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	if err := os.WriteFile(path, []byte(`{"quizzes":[{"title":"CSS","questions":[]},{"bad":true}]}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	quizzes, err := NewFileQuizLoader(path).LoadQuizzes(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(quizzes) != 1 || quizzes[0].Title != "CSS" {
		t.Fatalf("unexpected quizzes %+v", quizzes)
	}

	quizzes, err = NewFileQuizLoader(filepath.Join(dir, "missing.json")).LoadQuizzes(context.Background())
	if err != nil || len(quizzes) != 0 {
		t.Fatalf("missing file should be an empty catalog, got %v %+v", err, quizzes)
	}
}

func TestFallbackQuizLoader(t *testing.T) {
	fallback := NewStaticQuizLoader(sampleQuizzes())

	failing := &countingLoader{QuizLoader: NewStaticQuizLoader(nil), err: errors.New("unreachable")}
	quizzes, err := NewFallbackQuizLoader(failing, fallback).LoadQuizzes(context.Background())
	if err != nil || len(quizzes) != 1 {
		t.Fatalf("expected fallback catalog, got %v %+v", err, quizzes)
	}

	empty := NewStaticQuizLoader(nil)
	quizzes, err = NewFallbackQuizLoader(empty, fallback).LoadQuizzes(context.Background())
	if err != nil || len(quizzes) != 1 {
		t.Fatalf("expected fallback for empty primary, got %v %+v", err, quizzes)
	}
}

type countingLoader struct {
	QuizLoader
	calls int
	err   error
}

func (l *countingLoader) LoadQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return l.QuizLoader.LoadQuizzes(ctx)
}

func sampleQuizzes() []domain.Quiz {
	return []domain.Quiz{
		{
			Title: "HTML",
			Questions: []domain.Question{
				{
					ID:       1,
					Question: "Which tag makes a link?",
					Options:  []string{"<a>", "<link>"},
					Answer:   domain.Single("<a>"),
				},
			},
		},
	}
}

package redis

import (
	"context"
	"testing"
	"time"

	"quiz-leaderboard-service/internal/app"
	"quiz-leaderboard-service/internal/domain"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, client := startRedis(t)
	ctx := context.Background()
	store := NewSessionStore(client, time.Minute)

	session := store.GetOrCreate(ctx, "Alice")
	session.SelectQuiz(sampleQuizzes()[0], []int{1})
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("quiz:session:Alice") {
		t.Fatalf("expected redis key to be set")
	}
	if ttl := mr.TTL("quiz:session:Alice"); ttl != time.Minute {
		t.Fatalf("expected ttl of one minute, got %v", ttl)
	}

	store.Delete(ctx, "Alice")
	if mr.Exists("quiz:session:Alice") {
		t.Fatalf("expected redis key to be removed")
	}
	if _, ok := store.Get(ctx, "Alice"); ok {
		t.Fatalf("expected session gone after delete")
	}
}

func TestSessionStoreRestoresAfterRestart(t *testing.T) {
	_, client := startRedis(t)
	ctx := context.Background()

	first := NewSessionStore(client, time.Minute)
	session := first.GetOrCreate(ctx, "Alice")
	session.SelectQuiz(twoQuestionQuiz(), []int{2, 1})
	session.SubmitAnswer(2, domain.Single("b"), 0)
	session.GoNext()
	if err := first.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}

	second := NewSessionStore(client, time.Minute)
	restored, ok := second.Get(ctx, "Alice")
	if !ok {
		t.Fatalf("expected snapshot restored from redis")
	}
	if restored.State() != app.StateInProgress || len(restored.Results()) != 1 {
		t.Fatalf("unexpected restored session %+v", restored.Snapshot())
	}
	if q, _ := restored.CurrentQuestion(); q.ID != 1 {
		t.Fatalf("expected cursor on question 1, got %d", q.ID)
	}
	if again := second.GetOrCreate(ctx, "Alice"); again != restored {
		t.Fatalf("expected the restored session to be reused")
	}
}

func twoQuestionQuiz() domain.Quiz {
	return domain.Quiz{
		Title: "Letters",
		Questions: []domain.Question{
			{ID: 1, Question: "First letter?", Options: []string{"a", "b"}, Answer: domain.Single("a")},
			{ID: 2, Question: "Second letter?", Options: []string{"a", "b"}, Answer: domain.Single("b")},
		},
	}
}

package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"quiz-leaderboard-service/internal/app"
	"quiz-leaderboard-service/internal/domain"
)

func TestRecordStoreKeepsBestScore(t *testing.T) {
	mr, client := startRedis(t)
	ctx := context.Background()
	store := NewRecordStore(client)

	if src, err := store.ReadAllAttempts(ctx); err != nil || src != nil {
		t.Fatalf("expected empty source, got %v %v", src, err)
	}

	for _, score := range []float64{1.5, 2, 0.5} {
		attempt := domain.Attempt{QuizTitle: "HTML", Score: score, TotalQuestions: 2, Timestamp: time.Now().UTC(), ParticipantName: "Team Rocket"}
		if err := store.AppendAttempt(ctx, attempt); err != nil {
			t.Fatalf("append: %v", err)
		}
		if err := store.MergeParticipantBest(ctx, "Team Rocket", "HTML", score); err != nil {
			t.Fatalf("merge: %v", err)
		}
	}
	if err := store.MergeParticipantBest(ctx, "Team Rocket", "CSS", 1); err != nil {
		t.Fatalf("merge css: %v", err)
	}

	if n, _ := client.LLen(ctx, "attempts:quiz:HTML").Result(); n != 3 {
		t.Fatalf("expected three stored attempts, got %d", n)
	}
	if best := mr.HGet("best:Team_Rocket", "HTML"); best != "2" {
		t.Fatalf("expected best score 2, got %q", best)
	}
	if total, _ := client.ZScore(ctx, totalsKey, "Team_Rocket").Result(); total != 3 {
		t.Fatalf("expected total 3, got %v", total)
	}

	src, err := store.ReadAllAttempts(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	rows := app.Aggregate(src)
	if len(rows) != 1 {
		t.Fatalf("expected one row, got %+v", rows)
	}
	if rows[0].Name != "Team Rocket" || rows[0].TotalScore != 3 || rows[0].QuizzesPlayedCount != 2 {
		t.Fatalf("unexpected row %+v", rows[0])
	}
}

func TestRecordStoreConcurrentMerge(t *testing.T) {
	_, client := startRedis(t)
	ctx := context.Background()
	store := NewRecordStore(client)

	var wg sync.WaitGroup
	for _, score := range []float64{0.5, 1, 1.5, 2} {
		wg.Add(1)
		go func(score float64) {
			defer wg.Done()
			for {
				err := store.MergeParticipantBest(ctx, "Alice", "HTML", score)
				if !errors.Is(err, redis.TxFailedErr) {
					return
				}
			}
		}(score)
	}
	wg.Wait()

	if best, _ := client.HGet(ctx, "best:Alice", "HTML").Float64(); best != 2 {
		t.Fatalf("expected max to win, got %v", best)
	}
}

func TestRecordStoreReportsUnavailable(t *testing.T) {
	mr, client := startRedis(t)
	store := NewRecordStore(client)
	mr.Close()

	err := store.AppendAttempt(context.Background(), domain.Attempt{QuizTitle: "HTML", ParticipantName: "Alice"})
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected store unavailable, got %v", err)
	}
	if _, err := store.ReadAllAttempts(context.Background()); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected store unavailable on read, got %v", err)
	}
}

func startRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := newClient(mr)
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

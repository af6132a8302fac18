package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quiz-leaderboard-service/internal/domain"
)

// QuizLoader fetches the quiz catalog from a backing store (Postgres, file).
type QuizLoader interface {
	LoadQuizzes(ctx context.Context) ([]domain.Quiz, error)
}

const catalogKey = "quiz:catalog"

// QuizRepository caches the whole catalog in Redis as one JSON document and
// falls back to the loader on cache miss:
//
//	SET quiz:catalog {"quizzes":[...]} EX ttl
type QuizRepository struct {
	client *redis.Client
	loader QuizLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuizRepository(client *redis.Client, loader QuizLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuizRepository) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	if quizzes, ok := r.cached(ctx); ok {
		return quizzes, nil
	}

	result, err, _ := r.sf.Do(catalogKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if quizzes, ok := r.cached(ctx); ok {
			return quizzes, nil
		}

		quizzes, err := r.loader.LoadQuizzes(ctx)
		if err != nil {
			return nil, err
		}

		payload, err := json.Marshal(domain.Catalog{Quizzes: quizzes})
		if err == nil {
			err = r.client.Set(ctx, catalogKey, payload, r.ttlWithJitter()).Err()
		}
		if err != nil {
			log.Printf("cache catalog: %v", err)
		}
		return quizzes, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Quiz), nil
}

// Invalidate drops the cached catalog so the next read goes to the loader.
func (r *QuizRepository) Invalidate(ctx context.Context) error {
	return r.client.Del(ctx, catalogKey).Err()
}

func (r *QuizRepository) cached(ctx context.Context) ([]domain.Quiz, bool) {
	payload, err := r.client.Get(ctx, catalogKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("read cached catalog: %v", err)
		}
		return nil, false
	}
	quizzes, err := domain.DecodeCatalog(payload)
	if err != nil || len(quizzes) == 0 {
		return nil, false
	}
	return quizzes, true
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

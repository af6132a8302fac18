package memory

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"sync"
	"time"

	"quiz-leaderboard-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

const catalogKey = "catalog"

// QuizLoader fetches the quiz catalog from a backing store (file, Postgres).
type QuizLoader interface {
	LoadQuizzes(ctx context.Context) ([]domain.Quiz, error)
}

// QuizRepository caches the catalog with TTL to avoid repeated loads. When a
// reload fails the last good catalog keeps being served.
type QuizRepository struct {
	loader QuizLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	cached    []domain.Quiz
	loaded    bool
	expiresAt time.Time
}

func NewQuizRepository(loader QuizLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuizRepository) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	if quizzes, ok := r.fresh(r.clock()); ok {
		return quizzes, nil
	}

	result, err, _ := r.sf.Do(catalogKey, func() (interface{}, error) {
		now := r.clock()
		if quizzes, ok := r.fresh(now); ok {
			return quizzes, nil
		}

		quizzes, err := r.loader.LoadQuizzes(ctx)
		if err != nil {
			r.mu.RLock()
			stale, loaded := r.cached, r.loaded
			r.mu.RUnlock()
			if loaded {
				log.Printf("reload catalog: %v; serving cached catalog", err)
				return stale, nil
			}
			return nil, err
		}

		r.mu.Lock()
		r.cached = quizzes
		r.loaded = true
		r.expiresAt = now.Add(r.ttlWithJitter())
		r.mu.Unlock()
		return quizzes, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Quiz), nil
}

func (r *QuizRepository) fresh(now time.Time) ([]domain.Quiz, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.loaded && r.expiresAt.After(now) {
		return r.cached, true
	}
	return nil, false
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticQuizLoader is a simple loader backed by an in-memory catalog (useful for tests/demos).
type StaticQuizLoader struct {
	quizzes []domain.Quiz
}

func NewStaticQuizLoader(quizzes []domain.Quiz) *StaticQuizLoader {
	return &StaticQuizLoader{quizzes: quizzes}
}

func (l *StaticQuizLoader) LoadQuizzes(_ context.Context) ([]domain.Quiz, error) {
	return append([]domain.Quiz(nil), l.quizzes...), nil
}

// FileQuizLoader reads a JSON catalog document from disk on every load.
// A missing file is an empty catalog.
type FileQuizLoader struct {
	path string
}

func NewFileQuizLoader(path string) *FileQuizLoader {
	return &FileQuizLoader{path: path}
}

func (l *FileQuizLoader) LoadQuizzes(_ context.Context) ([]domain.Quiz, error) {
	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return []domain.Quiz{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", l.path, err)
	}
	return domain.DecodeCatalog(data)
}

// FallbackQuizLoader tries primary first and uses fallback when primary fails
// or holds no quizzes.
type FallbackQuizLoader struct {
	primary  QuizLoader
	fallback QuizLoader
}

func NewFallbackQuizLoader(primary, fallback QuizLoader) *FallbackQuizLoader {
	return &FallbackQuizLoader{primary: primary, fallback: fallback}
}

func (l *FallbackQuizLoader) LoadQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	quizzes, err := l.primary.LoadQuizzes(ctx)
	if err == nil && len(quizzes) > 0 {
		return quizzes, nil
	}
	if err != nil {
		log.Printf("load catalog: %v; using fallback catalog", err)
	}
	return l.fallback.LoadQuizzes(ctx)
}

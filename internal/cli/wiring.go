package cli

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"quiz-leaderboard-service/internal/app"
	"quiz-leaderboard-service/internal/config"
	"quiz-leaderboard-service/internal/infra/memory"
	pgstore "quiz-leaderboard-service/internal/infra/postgres"
	redisstore "quiz-leaderboard-service/internal/infra/redis"
)

// backends holds the shared clients behind a QuizService.
type backends struct {
	redis *redis.Client
	pool  *pgxpool.Pool
}

func (b backends) Close() {
	if b.redis != nil {
		_ = b.redis.Close()
	}
	if b.pool != nil {
		b.pool.Close()
	}
}

// buildService wires the quiz service from config. Postgres, when set, is the
// content source and the record store; Redis then caches the catalog and keeps
// orders and sessions. Without Postgres, Redis also keeps records. Without
// either, everything lives in process memory. The in-memory record store is
// always attached as the local fallback.
func buildService(ctx context.Context, cfg config.Config) (*app.QuizService, backends, error) {
	var b backends
	if cfg.Redis.Addr != "" {
		b.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.Close()
			return nil, backends{}, err
		}
		b.pool = pool
	}

	var loader memory.QuizLoader = memory.NewFileQuizLoader(cfg.Quiz.CatalogFile)
	if cfg.Quiz.CatalogFile == "" {
		loader = memory.NewStaticQuizLoader(nil)
	}
	if b.pool != nil {
		loader = memory.NewFallbackQuizLoader(pgstore.NewQuizLoader(b.pool), loader)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	var sessions app.SessionRepository
	var orders app.OrderRepository
	if b.redis != nil {
		quizRepo = redisstore.NewQuizRepository(b.redis, loader, quizTTL)
		sessions = redisstore.NewSessionStore(b.redis, redisTTL)
		orders = redisstore.NewOrderStore(b.redis)
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
		sessions = memory.NewSessionStore()
		orders = memory.NewOrderStore()
	}

	var records app.RecordStore
	switch {
	case b.pool != nil:
		records = pgstore.NewRecordStore(b.pool)
	case b.redis != nil:
		records = redisstore.NewRecordStore(b.redis)
	default:
		log.Printf("no remote record store configured; attempts are kept in memory")
	}

	service := app.NewQuizService(
		sessions,
		quizRepo,
		app.NewShuffleOrderStore(orders),
		records,
		app.WithLocalRecords(memory.NewRecordStore()),
		app.WithRecordTimeout(config.TTLDuration(cfg.Records.Timeout, 3*time.Second)),
		app.WithSingleAttempt(cfg.Quiz.SingleAttempt),
	)
	return service, b, nil
}

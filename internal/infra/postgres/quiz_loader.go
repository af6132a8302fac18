package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-leaderboard-service/internal/domain"
)

// QuizLoader loads quiz JSONB from Postgres.
type QuizLoader struct {
	pool *pgxpool.Pool
}

func NewQuizLoader(pool *pgxpool.Pool) *QuizLoader {
	return &QuizLoader{pool: pool}
}

// LoadQuizzes returns the stored catalog in authoring order. Rows whose data
// does not decode as a quiz are skipped.
func (l *QuizLoader) LoadQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	rows, err := l.pool.Query(ctx, `SELECT data FROM quizzes ORDER BY position, title`)
	if err != nil {
		return nil, fmt.Errorf("%w: load quizzes: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var entries []json.RawMessage
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		entries = append(entries, json.RawMessage(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: load quizzes: %v", domain.ErrStoreUnavailable, err)
	}
	return domain.DecodeQuizzes(entries), nil
}

// SaveQuizzes replaces the stored catalog.
func (l *QuizLoader) SaveQuizzes(ctx context.Context, quizzes []domain.Quiz) error {
	return l.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM quizzes`); err != nil {
			return fmt.Errorf("clear quizzes: %w", err)
		}
		for i, quiz := range quizzes {
			data, err := json.Marshal(quiz)
			if err != nil {
				return fmt.Errorf("marshal quiz %q: %w", quiz.Title, err)
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO quizzes (title, position, data) VALUES ($1, $2, $3::jsonb)`,
				quiz.Title, i, string(data),
			); err != nil {
				return fmt.Errorf("insert quiz %q: %w", quiz.Title, err)
			}
		}
		return nil
	})
}

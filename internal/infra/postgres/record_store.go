package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-leaderboard-service/internal/domain"
)

// RecordStore keeps attempts in an append-only table and best scores in
// participant_best, where the upsert keeps the greater score.
type RecordStore struct {
	pool *pgxpool.Pool
}

func NewRecordStore(pool *pgxpool.Pool) *RecordStore {
	return &RecordStore{pool: pool}
}

func (s *RecordStore) AppendAttempt(ctx context.Context, attempt domain.Attempt) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO attempts (quiz_title, participant_name, score, total_questions, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		attempt.QuizTitle, attempt.ParticipantName, attempt.Score, attempt.TotalQuestions, attempt.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("%w: insert attempt: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RecordStore) MergeParticipantBest(ctx context.Context, participant, quizTitle string, score float64) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO participant_best (participant_key, quiz_title, name, score)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (participant_key, quiz_title)
		 DO UPDATE SET score = GREATEST(participant_best.score, EXCLUDED.score), name = EXCLUDED.name`,
		domain.ParticipantKey(participant), quizTitle, domain.DisplayName(participant), score,
	)
	if err != nil {
		return fmt.Errorf("%w: merge best score: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

type bestRow struct {
	Name             string             `json:"name"`
	PerQuizBestScore map[string]float64 `json:"perQuizBestScore"`
}

// ReadAllAttempts returns a flat attempt list and best-score rows keyed by
// participant.
func (s *RecordStore) ReadAllAttempts(ctx context.Context) (domain.AttemptSource, error) {
	attempts, err := s.readAttempts(ctx)
	if err != nil {
		return nil, err
	}
	best, err := s.readBest(ctx)
	if err != nil {
		return nil, err
	}
	if len(attempts) == 0 && len(best) == 0 {
		return nil, nil
	}

	attemptDoc, err := json.Marshal(attempts)
	if err != nil {
		return nil, err
	}
	bestDoc, err := json.Marshal(best)
	if err != nil {
		return nil, err
	}
	return domain.AttemptSource{attemptDoc, bestDoc}, nil
}

func (s *RecordStore) readAttempts(ctx context.Context) ([]domain.Attempt, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT quiz_title, participant_name, score, total_questions, created_at FROM attempts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: read attempts: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var out []domain.Attempt
	for rows.Next() {
		var a domain.Attempt
		if err := rows.Scan(&a.QuizTitle, &a.ParticipantName, &a.Score, &a.TotalQuestions, &a.Timestamp); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *RecordStore) readBest(ctx context.Context) (map[string]bestRow, error) {
	rows, err := s.pool.Query(ctx, `SELECT participant_key, quiz_title, name, score FROM participant_best`)
	if err != nil {
		return nil, fmt.Errorf("%w: read best scores: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	out := make(map[string]bestRow)
	for rows.Next() {
		var key, title, name string
		var score float64
		if err := rows.Scan(&key, &title, &name, &score); err != nil {
			return nil, fmt.Errorf("scan best score: %w", err)
		}
		row, ok := out[key]
		if !ok {
			row = bestRow{Name: name, PerQuizBestScore: make(map[string]float64)}
		}
		row.PerQuizBestScore[title] = score
		out[key] = row
	}
	return out, rows.Err()
}

package memory

import (
	"context"
	"encoding/json"
	"sync"

	"quiz-leaderboard-service/internal/domain"
)

type bestRow struct {
	Name             string             `json:"name"`
	PerQuizBestScore map[string]float64 `json:"perQuizBestScore"`
}

// RecordStore keeps attempts and best scores in process memory. It is the
// local fallback when the remote record store is unreachable.
type RecordStore struct {
	mu       sync.Mutex
	attempts map[string][]domain.Attempt
	best     map[string]*bestRow
}

func NewRecordStore() *RecordStore {
	return &RecordStore{
		attempts: make(map[string][]domain.Attempt),
		best:     make(map[string]*bestRow),
	}
}

func (s *RecordStore) AppendAttempt(_ context.Context, attempt domain.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[attempt.QuizTitle] = append(s.attempts[attempt.QuizTitle], attempt)
	return nil
}

// MergeParticipantBest keeps max(existing, score) for the participant and quiz.
func (s *RecordStore) MergeParticipantBest(_ context.Context, participant, quizTitle string, score float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := domain.ParticipantKey(participant)
	row, ok := s.best[key]
	if !ok {
		row = &bestRow{Name: domain.DisplayName(participant), PerQuizBestScore: make(map[string]float64)}
		s.best[key] = row
	}
	if prev, seen := row.PerQuizBestScore[quizTitle]; !seen || score > prev {
		row.PerQuizBestScore[quizTitle] = score
	}
	return nil
}

// ReadAllAttempts returns two documents: attempts keyed by quiz title and best
// rows keyed by participant.
func (s *RecordStore) ReadAllAttempts(_ context.Context) (domain.AttemptSource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.attempts) == 0 && len(s.best) == 0 {
		return nil, nil
	}
	byQuiz, err := json.Marshal(s.attempts)
	if err != nil {
		return nil, err
	}
	byParticipant, err := json.Marshal(s.best)
	if err != nil {
		return nil, err
	}
	return domain.AttemptSource{byQuiz, byParticipant}, nil
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"quiz-leaderboard-service/internal/domain"
)

const (
	quizIndexKey  = "attempts:quizzes"
	totalsKey     = "leaderboard:totals"
	namesKey      = "leaderboard:names"
	maxMergeTries = 5
)

// RecordStore keeps completed attempts and best scores in Redis:
//
//	RPUSH attempts:quiz:{title} {attempt json}
//	SADD  attempts:quizzes {title}
//	HSET  best:{participantKey} {title} {score}
//	HSET  leaderboard:names {participantKey} {display name}
//	ZADD  leaderboard:totals {sum of best scores} {participantKey}
type RecordStore struct {
	client *redis.Client
}

func NewRecordStore(client *redis.Client) *RecordStore {
	return &RecordStore{client: client}
}

func (s *RecordStore) AppendAttempt(ctx context.Context, attempt domain.Attempt) error {
	payload, err := json.Marshal(attempt)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, attemptsKey(attempt.QuizTitle), payload)
		pipe.SAdd(ctx, quizIndexKey, attempt.QuizTitle)
		return nil
	})
	return unavailable(err)
}

// MergeParticipantBest keeps max(existing, score) using optimistic locking on
// the participant's hash, retrying when a concurrent writer wins.
func (s *RecordStore) MergeParticipantBest(ctx context.Context, participant, quizTitle string, score float64) error {
	key := domain.ParticipantKey(participant)
	hashKey := bestKey(key)

	txf := func(tx *redis.Tx) error {
		current, err := tx.HGetAll(ctx, hashKey).Result()
		if err != nil {
			return err
		}
		scores := parseScores(current)
		if prev, seen := scores[quizTitle]; seen && prev >= score {
			return nil
		}
		scores[quizTitle] = score
		total := 0.0
		for _, v := range scores {
			total += v
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, hashKey, quizTitle, score)
			pipe.HSet(ctx, namesKey, key, domain.DisplayName(participant))
			pipe.ZAdd(ctx, totalsKey, redis.Z{Score: total, Member: key})
			return nil
		})
		return err
	}

	for i := 0; i < maxMergeTries; i++ {
		err := s.client.Watch(ctx, txf, hashKey)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return unavailable(err)
	}
	return fmt.Errorf("merge best score for %s: %w", key, redis.TxFailedErr)
}

// ReadAllAttempts returns attempts keyed by quiz title and best-score rows
// keyed by participant. Entries that fail to parse are left for the
// aggregator to skip.
func (s *RecordStore) ReadAllAttempts(ctx context.Context) (domain.AttemptSource, error) {
	titles, err := s.client.SMembers(ctx, quizIndexKey).Result()
	if err != nil {
		return nil, unavailable(err)
	}
	byQuiz := make(map[string][]json.RawMessage, len(titles))
	for _, title := range titles {
		items, err := s.client.LRange(ctx, attemptsKey(title), 0, -1).Result()
		if err != nil {
			return nil, unavailable(err)
		}
		for _, item := range items {
			byQuiz[title] = append(byQuiz[title], json.RawMessage(item))
		}
	}

	participants, err := s.client.ZRevRange(ctx, totalsKey, 0, -1).Result()
	if err != nil {
		return nil, unavailable(err)
	}
	names, err := s.client.HGetAll(ctx, namesKey).Result()
	if err != nil {
		return nil, unavailable(err)
	}
	byParticipant := make(map[string]bestRow, len(participants))
	for _, key := range participants {
		scores, err := s.client.HGetAll(ctx, bestKey(key)).Result()
		if err != nil {
			return nil, unavailable(err)
		}
		byParticipant[key] = bestRow{Name: names[key], PerQuizBestScore: parseScores(scores)}
	}

	if len(byQuiz) == 0 && len(byParticipant) == 0 {
		return nil, nil
	}
	quizDoc, err := json.Marshal(byQuiz)
	if err != nil {
		return nil, err
	}
	participantDoc, err := json.Marshal(byParticipant)
	if err != nil {
		return nil, err
	}
	return domain.AttemptSource{quizDoc, participantDoc}, nil
}

type bestRow struct {
	Name             string             `json:"name,omitempty"`
	PerQuizBestScore map[string]float64 `json:"perQuizBestScore"`
}

func parseScores(raw map[string]string) map[string]float64 {
	scores := make(map[string]float64, len(raw))
	for title, value := range raw {
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			scores[title] = v
		}
	}
	return scores
}

func attemptsKey(quizTitle string) string {
	return "attempts:quiz:" + quizTitle
}

func bestKey(participantKey string) string {
	return "best:" + participantKey
}

func unavailable(err error) error {
	if err == nil || errors.Is(err, redis.Nil) {
		return nil
	}
	return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
}

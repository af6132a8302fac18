package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
)

// OrderStore persists shuffled question orders as JSON arrays:
//
//	SET order:{participantKey}:{title} [3,1,2]
//
// Orders carry no TTL; a participant keeps the same order until the quiz's
// question set changes.
type OrderStore struct {
	client *redis.Client
}

func NewOrderStore(client *redis.Client) *OrderStore {
	return &OrderStore{client: client}
}

func (s *OrderStore) LoadOrder(ctx context.Context, participantKey, quizTitle string) ([]int, bool, error) {
	payload, err := s.client.Get(ctx, orderKey(participantKey, quizTitle)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, unavailable(err)
	}
	var ids []int
	if err := json.Unmarshal(payload, &ids); err != nil {
		return nil, false, err
	}
	return ids, true, nil
}

func (s *OrderStore) SaveOrder(ctx context.Context, participantKey, quizTitle string, ids []int) error {
	payload, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return unavailable(s.client.Set(ctx, orderKey(participantKey, quizTitle), payload, 0).Err())
}

func orderKey(participantKey, quizTitle string) string {
	return "order:" + participantKey + ":" + quizTitle
}

package memory

import (
	"context"
	"sync"
)

// OrderStore keeps shuffled question orders in process memory.
type OrderStore struct {
	mu     sync.RWMutex
	orders map[string][]int
}

func NewOrderStore() *OrderStore {
	return &OrderStore{orders: make(map[string][]int)}
}

func (s *OrderStore) LoadOrder(_ context.Context, participantKey, quizTitle string) ([]int, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids, ok := s.orders[orderKey(participantKey, quizTitle)]
	if !ok {
		return nil, false, nil
	}
	return append([]int(nil), ids...), true, nil
}

func (s *OrderStore) SaveOrder(_ context.Context, participantKey, quizTitle string, ids []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[orderKey(participantKey, quizTitle)] = append([]int(nil), ids...)
	return nil
}

func orderKey(participantKey, quizTitle string) string {
	return "order:" + participantKey + ":" + quizTitle
}

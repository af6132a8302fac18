package app

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"
)

// OrderRepository persists shuffled question orders keyed by participant and quiz.
type OrderRepository interface {
	LoadOrder(ctx context.Context, participantKey, quizTitle string) ([]int, bool, error)
	SaveOrder(ctx context.Context, participantKey, quizTitle string, ids []int) error
}

// ShuffleOrderStore hands out a stable random question order per participant
// and quiz. An order is generated once and reused until the quiz's question set
// changes.
type ShuffleOrderStore struct {
	repo OrderRepository

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewShuffleOrderStore(repo OrderRepository) *ShuffleOrderStore {
	return NewShuffleOrderStoreWithRand(repo, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewShuffleOrderStoreWithRand allows deterministic permutations in tests.
func NewShuffleOrderStoreWithRand(repo OrderRepository, rnd *rand.Rand) *ShuffleOrderStore {
	return &ShuffleOrderStore{repo: repo, rnd: rnd}
}

// GetOrder returns the persisted order when it still matches ids, otherwise a
// fresh permutation which is then persisted. Repository failures are logged and
// the freshly shuffled order is still returned.
func (s *ShuffleOrderStore) GetOrder(ctx context.Context, participantKey, quizTitle string, ids []int) []int {
	stored, ok, err := s.repo.LoadOrder(ctx, participantKey, quizTitle)
	if err != nil {
		log.Printf("load order %s/%s: %v", participantKey, quizTitle, err)
	}
	if ok && sameIDSet(stored, ids) {
		return append([]int(nil), stored...)
	}

	order := s.shuffle(ids)
	if err := s.repo.SaveOrder(ctx, participantKey, quizTitle, order); err != nil {
		log.Printf("save order %s/%s: %v", participantKey, quizTitle, err)
	}
	return order
}

// shuffle is a Fisher-Yates permutation of a copy of ids.
func (s *ShuffleOrderStore) shuffle(ids []int) []int {
	out := append([]int(nil), ids...)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(out) - 1; i > 0; i-- {
		j := s.rnd.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func sameIDSet(stored, current []int) bool {
	if len(stored) != len(current) {
		return false
	}
	set := make(map[int]struct{}, len(current))
	for _, id := range current {
		set[id] = struct{}{}
	}
	seen := make(map[int]struct{}, len(stored))
	for _, id := range stored {
		if _, ok := set[id]; !ok {
			return false
		}
		if _, dup := seen[id]; dup {
			return false
		}
		seen[id] = struct{}{}
	}
	return true
}

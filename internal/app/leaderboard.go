package app

import (
	"math"
	"sort"
	"sync"

	"quiz-leaderboard-service/internal/domain"
)

// Aggregate normalizes a raw record snapshot and ranks participants.
func Aggregate(src domain.AttemptSource) []domain.LeaderboardRow {
	return AggregateAttempts(NormalizeAttempts(src))
}

// AggregateAttempts keeps each participant's best score per quiz and ranks by
// total score, then by number of quizzes played, then by name. Participants
// are matched by ParticipantKey, so records keyed by "Team_A" and named
// "Team A" land on one row under the spaced name.
func AggregateAttempts(attempts []domain.Attempt) []domain.LeaderboardRow {
	best := make(map[string]map[string]float64)
	names := make(map[string]string)
	for _, a := range attempts {
		if a.QuizTitle == "" {
			continue
		}
		name := domain.DisplayName(a.ParticipantName)
		key := domain.ParticipantKey(name)
		if current, ok := names[key]; !ok || (current == key && name != key) {
			names[key] = name
		}
		perQuiz, ok := best[key]
		if !ok {
			perQuiz = make(map[string]float64)
			best[key] = perQuiz
		}
		if prev, seen := perQuiz[a.QuizTitle]; !seen || a.Score > prev {
			perQuiz[a.QuizTitle] = a.Score
		}
	}

	rows := make([]domain.LeaderboardRow, 0, len(best))
	for key, perQuiz := range best {
		total := 0.0
		for _, score := range perQuiz {
			total += score
		}
		rows = append(rows, domain.LeaderboardRow{
			Name:               names[key],
			TotalScore:         roundTenth(total),
			QuizzesPlayedCount: len(perQuiz),
			PerQuizBestScore:   perQuiz,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalScore != rows[j].TotalScore {
			return rows[i].TotalScore > rows[j].TotalScore
		}
		if rows[i].QuizzesPlayedCount != rows[j].QuizzesPlayedCount {
			return rows[i].QuizzesPlayedCount > rows[j].QuizzesPlayedCount
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

// rankRows attaches ranks and catalog progress to aggregated rows.
func rankRows(rows []domain.LeaderboardRow, quizCount int) []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		progress := 0
		if quizCount > 0 {
			progress = int(math.Round(float64(row.QuizzesPlayedCount) / float64(quizCount) * 100))
		}
		entries = append(entries, domain.LeaderboardEntry{
			Rank:            i + 1,
			LeaderboardRow:  row,
			ProgressPercent: progress,
		})
	}
	return entries
}

// LeaderboardFeed fans leaderboard updates out to subscribers. Slow subscribers
// only ever see the latest update.
type LeaderboardFeed struct {
	mu          sync.Mutex
	subscribers map[chan domain.Leaderboard]struct{}
}

func NewLeaderboardFeed() *LeaderboardFeed {
	return &LeaderboardFeed{subscribers: make(map[chan domain.Leaderboard]struct{})}
}

// Subscribe returns a channel of updates. The caller must invoke the returned
// cancel function to avoid leaks.
func (f *LeaderboardFeed) Subscribe() (<-chan domain.Leaderboard, func()) {
	ch := make(chan domain.Leaderboard, 8)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers lb to every subscriber without blocking.
func (f *LeaderboardFeed) Publish(lb domain.Leaderboard) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers {
		select {
		case ch <- lb:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}

package app

import (
	"testing"
	"time"

	"quiz-leaderboard-service/internal/domain"
)

func TestIsCorrect(t *testing.T) {
	tests := []struct {
		name      string
		canonical domain.Answer
		submitted domain.Answer
		want      bool
	}{
		{name: "single match", canonical: domain.Single("A"), submitted: domain.Single("A"), want: true},
		{name: "single mismatch", canonical: domain.Single("A"), submitted: domain.Single("B"), want: false},
		{name: "single case sensitive", canonical: domain.Single("A"), submitted: domain.Single("a"), want: false},
		{name: "multi reordered", canonical: domain.Multi("A", "B"), submitted: domain.Multi("B", "A"), want: true},
		{name: "multi subset", canonical: domain.Multi("A", "B"), submitted: domain.Multi("A"), want: false},
		{name: "multi superset", canonical: domain.Multi("A", "B"), submitted: domain.Multi("A", "B", "C"), want: false},
		{name: "multi duplicate padding", canonical: domain.Multi("A", "B"), submitted: domain.Multi("A", "A"), want: false},
		{name: "empty submission", canonical: domain.Multi("A", "B"), submitted: domain.Multi(), want: false},
		{name: "empty single submission", canonical: domain.Single("A"), submitted: domain.Single(""), want: false},
		{name: "single submitted as one-element set", canonical: domain.Single("A"), submitted: domain.Multi("A"), want: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsCorrect(tc.canonical, tc.submitted); got != tc.want {
				t.Fatalf("IsCorrect = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPoints(t *testing.T) {
	policy := domain.DefaultScoringPolicy()
	ms := time.Millisecond
	tests := []struct {
		name    string
		elapsed time.Duration
		correct bool
		policy  domain.ScoringPolicy
		want    float64
	}{
		{name: "wrong is zero", elapsed: 0, correct: false, policy: policy, want: 0},
		{name: "wrong slow is zero", elapsed: 60000 * ms, correct: false, policy: policy, want: 0},
		{name: "fast", elapsed: 3000 * ms, correct: true, policy: policy, want: 1},
		{name: "full boundary inclusive", elapsed: 5000 * ms, correct: true, policy: policy, want: 1},
		{name: "midpoint rounds half up", elapsed: 7500 * ms, correct: true, policy: policy, want: 0.8},
		{name: "just after full", elapsed: 5400 * ms, correct: true, policy: policy, want: 1},
		{name: "decay", elapsed: 9000 * ms, correct: true, policy: policy, want: 0.6},
		{name: "half boundary inclusive", elapsed: 10000 * ms, correct: true, policy: policy, want: 0.5},
		{name: "slow", elapsed: 45000 * ms, correct: true, policy: policy, want: 0.5},
		{name: "untimed", elapsed: 45000 * ms, correct: true, policy: domain.ScoringPolicy{}, want: 1},
		{name: "degenerate thresholds", elapsed: 6000 * ms, correct: true, policy: domain.ScoringPolicy{TimeBasedScoring: true, FullPoints: 5000 * ms, HalfPoints: 5000 * ms}, want: 0.5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Points(tc.elapsed, tc.correct, tc.policy); got != tc.want {
				t.Fatalf("Points = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPointsStayOnTenthGrid(t *testing.T) {
	policy := domain.DefaultScoringPolicy()
	for elapsed := time.Duration(0); elapsed <= 12*time.Second; elapsed += 37 * time.Millisecond {
		p := Points(elapsed, true, policy)
		if p < 0.5 || p > 1 {
			t.Fatalf("points %v out of range at %v", p, elapsed)
		}
		if p != roundTenth(p) {
			t.Fatalf("points %v off grid at %v", p, elapsed)
		}
	}
}

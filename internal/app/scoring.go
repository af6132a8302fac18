package app

import (
	"math"
	"time"

	"quiz-leaderboard-service/internal/domain"
)

// IsCorrect compares a submission against the canonical answer. Two single
// answers must be equal strings; otherwise both sides are compared as sets with
// no partial credit.
func IsCorrect(canonical, submitted domain.Answer) bool {
	if submitted.IsEmpty() || canonical.IsEmpty() {
		return false
	}
	if !canonical.Multi && !submitted.Multi {
		return canonical.Values[0] == submitted.Values[0]
	}
	return equalSet(canonical.Values, submitted.Values)
}

func equalSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	return containsAll(a, b) && containsAll(b, a)
}

func containsAll(haystack, needles []string) bool {
	set := make(map[string]struct{}, len(haystack))
	for _, v := range haystack {
		set[v] = struct{}{}
	}
	for _, v := range needles {
		if _, ok := set[v]; !ok {
			return false
		}
	}
	return true
}

// Points maps elapsed answer time to a score in [0, 1]. Between the full and
// half thresholds the score decays linearly from 1.0 to 0.5 and is rounded to
// the nearest 0.1, halves rounding up (0.75 -> 0.8).
func Points(elapsed time.Duration, correct bool, policy domain.ScoringPolicy) float64 {
	if !correct {
		return 0
	}
	if !policy.TimeBasedScoring {
		return 1
	}
	full, half := policy.FullPoints, policy.HalfPoints
	if elapsed <= full {
		return 1
	}
	// Degenerate thresholds collapse to a step at the full threshold.
	if elapsed >= half || half <= full {
		return 0.5
	}
	ratio := float64(elapsed-full) / float64(half-full)
	return roundTenth(1 - ratio*0.5)
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

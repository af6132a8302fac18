package app

import (
	"bytes"
	"encoding/json"
	"math"

	"quiz-leaderboard-service/internal/domain"
)

// NormalizeAttempts flattens every accepted record shape into attempts. A
// document may be a flat array of attempts, or an object whose entries are
//   - quiz title -> array of attempts,
//   - participant key -> leaderboard row (name, totals or a perQuiz map),
//   - participant key -> map of quiz title to score.
//
// Anything that does not fit is skipped.
func NormalizeAttempts(src domain.AttemptSource) []domain.Attempt {
	var out []domain.Attempt
	for _, doc := range src {
		doc = bytes.TrimSpace(doc)
		if len(doc) == 0 {
			continue
		}
		if doc[0] == '[' {
			out = append(out, attemptList(doc, "")...)
			continue
		}
		var entries map[string]json.RawMessage
		if err := json.Unmarshal(doc, &entries); err != nil {
			continue
		}
		for key, raw := range entries {
			raw = bytes.TrimSpace(raw)
			if len(raw) == 0 {
				continue
			}
			switch raw[0] {
			case '[':
				out = append(out, attemptList(raw, key)...)
			case '{':
				out = append(out, participantEntry(key, raw)...)
			}
		}
	}
	return out
}

func attemptList(raw json.RawMessage, quizTitle string) []domain.Attempt {
	var items []map[string]any
	if err := json.Unmarshal(raw, &items); err != nil {
		// Fall back to element-wise decoding so one bad element does not drop the list.
		var loose []json.RawMessage
		if err := json.Unmarshal(raw, &loose); err != nil {
			return nil
		}
		for _, el := range loose {
			var item map[string]any
			if json.Unmarshal(el, &item) == nil {
				items = append(items, item)
			}
		}
	}
	out := make([]domain.Attempt, 0, len(items))
	for _, item := range items {
		if a, ok := attemptFromFields(item, quizTitle); ok {
			out = append(out, a)
		}
	}
	return out
}

func attemptFromFields(item map[string]any, quizTitle string) (domain.Attempt, bool) {
	if item == nil {
		return domain.Attempt{}, false
	}
	if title := firstString(item, "quizTitle", "quiz"); quizTitle == "" {
		quizTitle = title
	}
	if quizTitle == "" {
		return domain.Attempt{}, false
	}
	score, ok := scoreValue(item["score"])
	if !ok {
		return domain.Attempt{}, false
	}
	a := domain.Attempt{
		QuizTitle:       quizTitle,
		Score:           score,
		ParticipantName: domain.DisplayName(firstString(item, "participantName", "name", "player")),
	}
	if total, ok := scoreValue(firstPresent(item, "totalQuestions", "total")); ok {
		a.TotalQuestions = int(total)
	}
	return a, true
}

func participantEntry(key string, raw json.RawMessage) []domain.Attempt {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}

	name := key
	scores := fields
	if isLeaderboardRow(fields) {
		perQuiz, ok := firstPresent(fields, "perQuizBestScore", "perQuiz").(map[string]any)
		if !ok {
			return nil
		}
		if n := firstString(fields, "name", "participantName"); n != "" {
			name = n
		}
		scores = perQuiz
	}

	out := make([]domain.Attempt, 0, len(scores))
	for title, v := range scores {
		score, ok := scoreValue(v)
		if !ok || title == "" {
			continue
		}
		out = append(out, domain.Attempt{
			QuizTitle:       title,
			Score:           score,
			ParticipantName: domain.DisplayName(name),
		})
	}
	return out
}

var rowFields = []string{
	"perQuizBestScore", "perQuiz",
	"name", "participantName",
	"total", "totalScore",
	"playedCount", "quizzesPlayedCount",
}

// isLeaderboardRow reports whether fields look like a pre-shaped row rather
// than a bare map of quiz title to score.
func isLeaderboardRow(fields map[string]any) bool {
	for _, k := range rowFields {
		if _, ok := fields[k]; ok {
			return true
		}
	}
	return false
}

func scoreValue(v any) (float64, bool) {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return f, true
}

func firstString(fields map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := fields[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func firstPresent(fields map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := fields[k]; ok {
			return v
		}
	}
	return nil
}

package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"
)

const (
	DefaultFullPointsThreshold = 5000 * time.Millisecond
	DefaultHalfPointsThreshold = 10000 * time.Millisecond
)

// Answer is either a single option or a set of options (multi-answer).
// On the wire it is a JSON string or a JSON array of strings.
type Answer struct {
	Values []string
	Multi  bool
}

// Single builds a single-option answer.
func Single(value string) Answer {
	return Answer{Values: []string{value}}
}

// Multi builds a multi-option answer.
func Multi(values ...string) Answer {
	return Answer{Values: values, Multi: true}
}

// IsEmpty reports whether nothing was selected.
func (a Answer) IsEmpty() bool {
	for _, v := range a.Values {
		if v != "" {
			return false
		}
	}
	return true
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.Multi {
		values := a.Values
		if values == nil {
			values = []string{}
		}
		return json.Marshal(values)
	}
	if len(a.Values) == 0 {
		return []byte(`null`), nil
	}
	return json.Marshal(a.Values[0])
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = Answer{}
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var values []string
		if err := json.Unmarshal(data, &values); err != nil {
			return err
		}
		*a = Answer{Values: values, Multi: true}
		return nil
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return errors.New("answer must be a string or an array of strings")
	}
	*a = Single(value)
	return nil
}

// Question is a prompt with 2-4 options and one or more canonical answers.
type Question struct {
	ID       int      `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   Answer   `json:"answer"`
}

// QuizOptions is the stored form of a quiz's scoring and appearance settings.
// Unset fields fall back to the defaults.
type QuizOptions struct {
	TimeBasedScoring    *bool  `json:"timeBasedScoring,omitempty"`
	FullPointsThreshold *int64 `json:"fullPointsThreshold,omitempty"` // ms
	HalfPointsThreshold *int64 `json:"halfPointsThreshold,omitempty"` // ms
	IconColor           string `json:"iconColor,omitempty"`
	IconBgColor         string `json:"iconBgColor,omitempty"`
}

// ScoringPolicy controls how elapsed answer time maps to points.
type ScoringPolicy struct {
	TimeBasedScoring bool
	FullPoints       time.Duration
	HalfPoints       time.Duration
}

// DefaultScoringPolicy is time based with 5s/10s thresholds.
func DefaultScoringPolicy() ScoringPolicy {
	return ScoringPolicy{
		TimeBasedScoring: true,
		FullPoints:       DefaultFullPointsThreshold,
		HalfPoints:       DefaultHalfPointsThreshold,
	}
}

// Quiz is identified by its title within the catalog.
type Quiz struct {
	Title     string       `json:"title"`
	Icon      string       `json:"icon,omitempty"`
	BgColor   string       `json:"bgcolor,omitempty"`
	Questions []Question   `json:"questions"`
	Options   *QuizOptions `json:"options,omitempty"`
}

// Policy resolves the quiz options against the defaults.
func (q Quiz) Policy() ScoringPolicy {
	policy := DefaultScoringPolicy()
	if q.Options == nil {
		return policy
	}
	if q.Options.TimeBasedScoring != nil {
		policy.TimeBasedScoring = *q.Options.TimeBasedScoring
	}
	if q.Options.FullPointsThreshold != nil {
		policy.FullPoints = time.Duration(*q.Options.FullPointsThreshold) * time.Millisecond
	}
	if q.Options.HalfPointsThreshold != nil {
		policy.HalfPoints = time.Duration(*q.Options.HalfPointsThreshold) * time.Millisecond
	}
	return policy
}

// QuestionIDs returns the ids in authoring order.
func (q Quiz) QuestionIDs() []int {
	ids := make([]int, 0, len(q.Questions))
	for _, question := range q.Questions {
		ids = append(ids, question.ID)
	}
	return ids
}

// Catalog is the document shape of a quiz content file.
type Catalog struct {
	Quizzes []Quiz `json:"quizzes"`
}

// QuestionResult is written once per answered question.
type QuestionResult struct {
	QuestionID      int     `json:"questionId"`
	SubmittedAnswer Answer  `json:"submittedAnswer"`
	IsCorrect       bool    `json:"isCorrect"`
	PointsEarned    float64 `json:"pointsEarned"`
}

// Attempt is one persisted record of a completed session.
type Attempt struct {
	QuizTitle       string    `json:"quizTitle"`
	Score           float64   `json:"score"`
	TotalQuestions  int       `json:"totalQuestions"`
	Timestamp       time.Time `json:"timestamp"`
	ParticipantName string    `json:"participantName"`
}

// AttemptSource is a raw snapshot read from a record store. Each document is a
// JSON object in one of the accepted record shapes.
type AttemptSource []json.RawMessage

// LeaderboardRow is derived on every aggregation pass.
type LeaderboardRow struct {
	Name               string             `json:"name"`
	TotalScore         float64            `json:"totalScore"`
	QuizzesPlayedCount int                `json:"quizzesPlayedCount"`
	PerQuizBestScore   map[string]float64 `json:"perQuizBestScore"`
}

// LeaderboardEntry is a ranked row as presented to clients.
type LeaderboardEntry struct {
	Rank int `json:"rank"`
	LeaderboardRow
	ProgressPercent int `json:"progressPercent"`
}

// Leaderboard captures the ranking together with catalog totals.
type Leaderboard struct {
	Entries       []LeaderboardEntry `json:"entries"`
	TotalPossible int                `json:"totalPossible"`
	QuizCount     int                `json:"quizCount"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

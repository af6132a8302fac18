package domain

import "fmt"

const (
	minOptions = 2
	maxOptions = 4
)

// Validate checks the authoring invariants a session relies on. It reports the
// first violation wrapped in ErrInvalidQuiz.
func (q Quiz) Validate() error {
	if q.Title == "" {
		return fmt.Errorf("%w: missing title", ErrInvalidQuiz)
	}
	if len(q.Questions) == 0 {
		return fmt.Errorf("%w: %q has no questions", ErrInvalidQuiz, q.Title)
	}
	policy := q.Policy()
	if policy.TimeBasedScoring && policy.FullPoints >= policy.HalfPoints {
		return fmt.Errorf("%w: %q full points threshold must be below half points threshold", ErrInvalidQuiz, q.Title)
	}

	seen := make(map[int]struct{}, len(q.Questions))
	for _, question := range q.Questions {
		if _, dup := seen[question.ID]; dup {
			return fmt.Errorf("%w: %q duplicate question id %d", ErrInvalidQuiz, q.Title, question.ID)
		}
		seen[question.ID] = struct{}{}
		if err := question.validate(); err != nil {
			return fmt.Errorf("%w: %q question %d: %v", ErrInvalidQuiz, q.Title, question.ID, err)
		}
	}
	return nil
}

func (q Question) validate() error {
	if n := len(q.Options); n < minOptions || n > maxOptions {
		return fmt.Errorf("has %d options, want %d-%d", n, minOptions, maxOptions)
	}
	options := make(map[string]struct{}, len(q.Options))
	for _, opt := range q.Options {
		if _, dup := options[opt]; dup {
			return fmt.Errorf("duplicate option %q", opt)
		}
		options[opt] = struct{}{}
	}
	if q.Answer.IsEmpty() {
		return fmt.Errorf("missing answer")
	}
	answers := make(map[string]struct{}, len(q.Answer.Values))
	for _, value := range q.Answer.Values {
		if _, ok := options[value]; !ok {
			return fmt.Errorf("answer %q is not one of the options", value)
		}
		if _, dup := answers[value]; dup {
			return fmt.Errorf("duplicate answer %q", value)
		}
		answers[value] = struct{}{}
	}
	return nil
}

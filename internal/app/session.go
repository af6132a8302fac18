package app

import (
	"sync"
	"time"

	"quiz-leaderboard-service/internal/domain"
)

// State is the lifecycle position of a participant's session.
type State string

const (
	StateIdle       State = "idle"
	StateInProgress State = "inProgress"
	StateCompleted  State = "completed"
)

// SessionSnapshot is the persisted form of a session.
type SessionSnapshot struct {
	Participant string                  `json:"participant"`
	State       State                   `json:"state"`
	Quiz        *domain.Quiz            `json:"quiz,omitempty"`
	Order       []int                   `json:"order,omitempty"`
	Cursor      int                     `json:"cursor"`
	Results     []domain.QuestionResult `json:"results"`
	Completed   bool                    `json:"completed"`
	Score       float64                 `json:"score"`
	UpdatedAt   time.Time               `json:"updatedAt"`
}

// Session drives one participant through one quiz. Calls that do not apply to
// the current state are ignored and reported through their bool result.
type Session struct {
	participant string
	now         func() time.Time

	mu        sync.RWMutex
	state     State
	quiz      domain.Quiz
	policy    domain.ScoringPolicy
	questions []domain.Question
	cursor    int
	results   []domain.QuestionResult
	answered  map[int]struct{}
	score     float64
	updatedAt time.Time
}

// NewSession is exported for infrastructure layers that need to seed sessions.
func NewSession(participant string) *Session {
	return newSessionWithClock(participant, time.Now)
}

// NewSessionWithClock is test-only for deterministic timestamps.
func NewSessionWithClock(participant string, now func() time.Time) *Session {
	return newSessionWithClock(participant, now)
}

func newSessionWithClock(participant string, now func() time.Time) *Session {
	return &Session{
		participant: participant,
		now:         now,
		state:       StateIdle,
		answered:    make(map[int]struct{}),
		updatedAt:   now(),
	}
}

// RestoreSession rebuilds a session from a snapshot. Results for questions
// that are not part of the snapshot's quiz are dropped.
func RestoreSession(snap SessionSnapshot) *Session {
	s := NewSession(snap.Participant)
	if snap.Quiz == nil || snap.State == StateIdle || snap.State == "" {
		return s
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(*snap.Quiz, snap.Order)
	for _, result := range snap.Results {
		if !s.hasQuestionLocked(result.QuestionID) {
			continue
		}
		if _, dup := s.answered[result.QuestionID]; dup {
			continue
		}
		s.answered[result.QuestionID] = struct{}{}
		s.results = append(s.results, result)
	}
	if snap.Cursor >= 0 && snap.Cursor < len(s.questions) {
		s.cursor = snap.Cursor
	}
	if !snap.UpdatedAt.IsZero() {
		s.updatedAt = snap.UpdatedAt
	}
	if len(s.results) == len(s.questions) {
		s.completeLocked()
	}
	return s
}

// Participant returns the participant key the session belongs to.
func (s *Session) Participant() string {
	return s.participant
}

// SelectQuiz starts the quiz with questions arranged by order. It only applies
// to an idle session.
func (s *Session) SelectQuiz(quiz domain.Quiz, order []int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return false
	}
	s.loadLocked(quiz, order)
	s.updatedAt = s.now()
	return true
}

func (s *Session) loadLocked(quiz domain.Quiz, order []int) {
	byID := make(map[int]domain.Question, len(quiz.Questions))
	for _, q := range quiz.Questions {
		byID[q.ID] = q
	}
	questions := make([]domain.Question, 0, len(quiz.Questions))
	for _, id := range order {
		if q, ok := byID[id]; ok {
			questions = append(questions, q)
			delete(byID, id)
		}
	}
	// Questions the order does not mention keep their authoring position.
	for _, q := range quiz.Questions {
		if _, ok := byID[q.ID]; ok {
			questions = append(questions, q)
		}
	}

	s.quiz = quiz
	s.policy = quiz.Policy()
	s.questions = questions
	s.cursor = 0
	s.results = nil
	s.answered = make(map[int]struct{}, len(questions))
	s.score = 0
	s.state = StateInProgress
}

// SubmitAnswer scores the first submission for a question. Later submissions
// for the same question are ignored. Answering the last open question
// completes the session.
func (s *Session) SubmitAnswer(questionID int, submitted domain.Answer, elapsed time.Duration) (domain.QuestionResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return domain.QuestionResult{}, false
	}
	if _, dup := s.answered[questionID]; dup {
		return domain.QuestionResult{}, false
	}
	question, ok := s.questionLocked(questionID)
	if !ok {
		return domain.QuestionResult{}, false
	}
	if elapsed < 0 {
		elapsed = 0
	}

	correct := IsCorrect(question.Answer, submitted)
	result := domain.QuestionResult{
		QuestionID:      questionID,
		SubmittedAnswer: submitted,
		IsCorrect:       correct,
		PointsEarned:    Points(elapsed, correct, s.policy),
	}
	s.answered[questionID] = struct{}{}
	s.results = append(s.results, result)
	s.updatedAt = s.now()

	if len(s.results) == len(s.questions) {
		s.completeLocked()
	}
	return result, true
}

func (s *Session) completeLocked() {
	total := 0.0
	for _, r := range s.results {
		total += r.PointsEarned
	}
	s.score = roundTenth(total)
	s.state = StateCompleted
}

// GoNext advances the cursor; it is a no-op on the last question.
func (s *Session) GoNext() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress || s.cursor+1 >= len(s.questions) {
		return false
	}
	s.cursor++
	return true
}

// GoPrevious moves the cursor back, floored at the first question.
func (s *Session) GoPrevious() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress || s.cursor == 0 {
		return false
	}
	s.cursor--
	return true
}

// Reset returns the session to idle from any state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateIdle
	s.quiz = domain.Quiz{}
	s.policy = domain.ScoringPolicy{}
	s.questions = nil
	s.cursor = 0
	s.results = nil
	s.answered = make(map[int]struct{})
	s.score = 0
	s.updatedAt = s.now()
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// HasCompletedAll reports whether every question has a result.
func (s *Session) HasCompletedAll() bool {
	return s.State() == StateCompleted
}

// Score is the sum of earned points once the session completed, else 0.
func (s *Session) Score() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.score
}

// Quiz returns the selected quiz, if any.
func (s *Session) Quiz() (domain.Quiz, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quiz, s.state != StateIdle
}

// CurrentQuestion returns the question under the cursor.
func (s *Session) CurrentQuestion() (domain.Question, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == StateIdle || len(s.questions) == 0 {
		return domain.Question{}, false
	}
	return s.questions[s.cursor], true
}

// Results returns a copy of the recorded results in submission order.
func (s *Session) Results() []domain.QuestionResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.QuestionResult(nil), s.results...)
}

// Snapshot captures the session for persistence.
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := SessionSnapshot{
		Participant: s.participant,
		State:       s.state,
		Cursor:      s.cursor,
		Results:     append([]domain.QuestionResult(nil), s.results...),
		Completed:   s.state == StateCompleted,
		Score:       s.score,
		UpdatedAt:   s.updatedAt,
	}
	if s.state != StateIdle {
		quiz := s.quiz
		snap.Quiz = &quiz
		snap.Order = make([]int, 0, len(s.questions))
		for _, q := range s.questions {
			snap.Order = append(snap.Order, q.ID)
		}
	}
	return snap
}

func (s *Session) questionLocked(id int) (domain.Question, bool) {
	for _, q := range s.questions {
		if q.ID == id {
			return q, true
		}
	}
	return domain.Question{}, false
}

func (s *Session) hasQuestionLocked(id int) bool {
	_, ok := s.questionLocked(id)
	return ok
}

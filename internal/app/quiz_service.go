package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"quiz-leaderboard-service/internal/domain"
)

// SessionRepository abstracts where participant sessions live (in-memory, Redis, etc).
type SessionRepository interface {
	GetOrCreate(ctx context.Context, participantKey string) *Session
	Get(ctx context.Context, participantKey string) (*Session, bool)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, participantKey string)
}

// QuizRepository lists the quiz catalog (from cache/backing store).
type QuizRepository interface {
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
}

// RecordStore persists completed attempts and per-participant best scores.
// MergeParticipantBest must keep max(existing, score) atomically per participant.
type RecordStore interface {
	AppendAttempt(ctx context.Context, attempt domain.Attempt) error
	ReadAllAttempts(ctx context.Context) (domain.AttemptSource, error)
	MergeParticipantBest(ctx context.Context, participant, quizTitle string, score float64) error
}

// AnswerOutcome reports what a submission did to the session.
type AnswerOutcome struct {
	Applied   bool                  `json:"applied"`
	Result    domain.QuestionResult `json:"result"`
	Completed bool                  `json:"completed"`
	Score     float64               `json:"score"`
	Session   SessionSnapshot       `json:"session"`
}

// QuizSummary is one catalog entry as seen by a participant.
type QuizSummary struct {
	Title         string   `json:"title"`
	Icon          string   `json:"icon,omitempty"`
	BgColor       string   `json:"bgcolor,omitempty"`
	QuestionCount int      `json:"questionCount"`
	BestScore     *float64 `json:"bestScore"`
	Locked        bool     `json:"locked"`
}

// ParticipantCatalog is the catalog annotated with a participant's best scores.
type ParticipantCatalog struct {
	Participant   string        `json:"participant"`
	Quizzes       []QuizSummary `json:"quizzes"`
	TotalScore    float64       `json:"totalScore"`
	TotalPossible int           `json:"totalPossible"`
}

// Option customizes a QuizService.
type Option func(*QuizService)

// WithLocalRecords sets the store that receives records when the remote store fails.
func WithLocalRecords(local RecordStore) Option {
	return func(s *QuizService) { s.local = local }
}

// WithRecordTimeout bounds every remote record-store call.
func WithRecordTimeout(d time.Duration) Option {
	return func(s *QuizService) {
		if d > 0 {
			s.recordTimeout = d
		}
	}
}

// WithSingleAttempt refuses quizzes the participant already has a record for.
func WithSingleAttempt(enabled bool) Option {
	return func(s *QuizService) { s.singleAttempt = enabled }
}

// WithClock is test-only for deterministic attempt timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *QuizService) { s.now = now }
}

// QuizService contains the quiz gameplay and ranking use cases.
type QuizService struct {
	sessions SessionRepository
	quizzes  QuizRepository
	orders   *ShuffleOrderStore
	records  RecordStore
	local    RecordStore
	feed     *LeaderboardFeed

	mu         sync.Mutex
	lastRemote domain.AttemptSource

	recordTimeout time.Duration
	singleAttempt bool
	now           func() time.Time
}

// NewQuizService wires the service. records may be nil, in which case only the
// local store set through WithLocalRecords keeps attempts.
func NewQuizService(sessions SessionRepository, quizzes QuizRepository, orders *ShuffleOrderStore, records RecordStore, opts ...Option) *QuizService {
	s := &QuizService{
		sessions:      sessions,
		quizzes:       quizzes,
		orders:        orders,
		records:       records,
		feed:          NewLeaderboardFeed(),
		recordTimeout: 3 * time.Second,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Quizzes returns the catalog.
func (s *QuizService) Quizzes(ctx context.Context) ([]domain.Quiz, error) {
	return s.quizzes.ListQuizzes(ctx)
}

func (s *QuizService) findQuiz(ctx context.Context, title string) (domain.Quiz, error) {
	quizzes, err := s.quizzes.ListQuizzes(ctx)
	if err != nil {
		return domain.Quiz{}, err
	}
	for _, quiz := range quizzes {
		if quiz.Title == title {
			return quiz, nil
		}
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

// SelectQuiz resets the participant's session and starts the quiz in the
// participant's persisted question order. Quizzes that break authoring
// invariants are refused before any state changes.
func (s *QuizService) SelectQuiz(ctx context.Context, name, quizTitle string) (SessionSnapshot, error) {
	quiz, err := s.findQuiz(ctx, quizTitle)
	if err != nil {
		return SessionSnapshot{}, err
	}
	if err := quiz.Validate(); err != nil {
		return SessionSnapshot{}, err
	}

	key := domain.ParticipantKey(name)
	if s.singleAttempt {
		best, err := s.participantBest(ctx, key)
		if err != nil {
			return SessionSnapshot{}, err
		}
		if _, played := best[quiz.Title]; played {
			return SessionSnapshot{}, domain.ErrQuizAlreadyPlayed
		}
	}

	session := s.sessions.GetOrCreate(ctx, key)
	session.Reset()
	order := s.orders.GetOrder(ctx, key, quiz.Title, quiz.QuestionIDs())
	session.SelectQuiz(quiz, order)
	s.snapshot(ctx, session)
	return session.Snapshot(), nil
}

// SubmitAnswer records the first answer for a question and moves the cursor
// on. Submissions that do not apply to the session are ignored.
func (s *QuizService) SubmitAnswer(ctx context.Context, name string, questionID int, answer domain.Answer, elapsed time.Duration) AnswerOutcome {
	session, ok := s.sessions.Get(ctx, domain.ParticipantKey(name))
	if !ok {
		return AnswerOutcome{Session: SessionSnapshot{Participant: domain.ParticipantKey(name), State: StateIdle}}
	}

	result, applied := session.SubmitAnswer(questionID, answer, elapsed)
	if !applied {
		return AnswerOutcome{Session: session.Snapshot(), Completed: session.HasCompletedAll(), Score: session.Score()}
	}

	completed := session.HasCompletedAll()
	if !completed {
		session.GoNext()
	}
	s.snapshot(ctx, session)
	if completed {
		s.recordCompletion(ctx, name, session)
	}
	return AnswerOutcome{
		Applied:   true,
		Result:    result,
		Completed: completed,
		Score:     session.Score(),
		Session:   session.Snapshot(),
	}
}

// GoNext advances the participant's cursor.
func (s *QuizService) GoNext(ctx context.Context, name string) SessionSnapshot {
	return s.move(ctx, name, (*Session).GoNext)
}

// GoPrevious moves the participant's cursor back.
func (s *QuizService) GoPrevious(ctx context.Context, name string) SessionSnapshot {
	return s.move(ctx, name, (*Session).GoPrevious)
}

func (s *QuizService) move(ctx context.Context, name string, step func(*Session) bool) SessionSnapshot {
	session, ok := s.sessions.Get(ctx, domain.ParticipantKey(name))
	if !ok {
		return SessionSnapshot{Participant: domain.ParticipantKey(name), State: StateIdle}
	}
	if step(session) {
		s.snapshot(ctx, session)
	}
	return session.Snapshot()
}

// Reset returns the participant's session to idle. Stored attempts are kept.
func (s *QuizService) Reset(ctx context.Context, name string) SessionSnapshot {
	key := domain.ParticipantKey(name)
	session, ok := s.sessions.Get(ctx, key)
	if !ok {
		return SessionSnapshot{Participant: key, State: StateIdle}
	}
	session.Reset()
	s.sessions.Delete(ctx, key)
	return session.Snapshot()
}

// Session returns the participant's current session snapshot.
func (s *QuizService) Session(ctx context.Context, name string) (SessionSnapshot, bool) {
	session, ok := s.sessions.Get(ctx, domain.ParticipantKey(name))
	if !ok {
		return SessionSnapshot{}, false
	}
	return session.Snapshot(), true
}

// Subscribe returns a channel that receives the leaderboard after every
// completed session. The caller must invoke the returned cancel function.
func (s *QuizService) Subscribe(_ context.Context) (<-chan domain.Leaderboard, func()) {
	return s.feed.Subscribe()
}

// Leaderboard aggregates every known attempt. When the remote store is
// unreachable the ranking is built from the last successful remote read plus
// local records.
func (s *QuizService) Leaderboard(ctx context.Context) (domain.Leaderboard, error) {
	rows := Aggregate(s.readAttempts(ctx))

	lb := domain.Leaderboard{UpdatedAt: s.now()}
	quizzes, err := s.quizzes.ListQuizzes(ctx)
	if err != nil {
		log.Printf("leaderboard catalog: %v", err)
	}
	lb.QuizCount = len(quizzes)
	for _, quiz := range quizzes {
		lb.TotalPossible += len(quiz.Questions)
	}
	lb.Entries = rankRows(rows, lb.QuizCount)
	return lb, nil
}

// Catalog returns the quiz list annotated with the participant's best scores.
func (s *QuizService) Catalog(ctx context.Context, name string) (ParticipantCatalog, error) {
	quizzes, err := s.quizzes.ListQuizzes(ctx)
	if err != nil {
		return ParticipantCatalog{}, err
	}
	key := domain.ParticipantKey(name)
	best, err := s.participantBest(ctx, key)
	if err != nil {
		return ParticipantCatalog{}, err
	}

	out := ParticipantCatalog{Participant: key, Quizzes: make([]QuizSummary, 0, len(quizzes))}
	total := 0.0
	for _, quiz := range quizzes {
		summary := QuizSummary{
			Title:         quiz.Title,
			Icon:          quiz.Icon,
			BgColor:       quiz.BgColor,
			QuestionCount: len(quiz.Questions),
		}
		if score, played := best[quiz.Title]; played {
			score := score
			summary.BestScore = &score
			summary.Locked = s.singleAttempt
			total += score
		}
		out.TotalPossible += len(quiz.Questions)
		out.Quizzes = append(out.Quizzes, summary)
	}
	out.TotalScore = roundTenth(total)
	return out, nil
}

func (s *QuizService) participantBest(ctx context.Context, key string) (map[string]float64, error) {
	for _, row := range Aggregate(s.readAttempts(ctx)) {
		if domain.ParticipantKey(row.Name) == key {
			return row.PerQuizBestScore, nil
		}
	}
	return map[string]float64{}, nil
}

func (s *QuizService) readAttempts(ctx context.Context) domain.AttemptSource {
	var src domain.AttemptSource
	if s.records != nil {
		remoteCtx, cancel := context.WithTimeout(ctx, s.recordTimeout)
		docs, err := s.records.ReadAllAttempts(remoteCtx)
		cancel()
		s.mu.Lock()
		if err != nil {
			log.Printf("read attempts: %v; using last known records", err)
			docs = s.lastRemote
		} else {
			s.lastRemote = docs
		}
		s.mu.Unlock()
		src = append(src, docs...)
	}
	if s.local != nil {
		docs, err := s.local.ReadAllAttempts(ctx)
		if err != nil {
			log.Printf("read local attempts: %v", err)
		} else {
			src = append(src, docs...)
		}
	}
	return src
}

// recordCompletion persists the finished attempt. Remote failures fall back to
// the local store and are never surfaced to the participant.
func (s *QuizService) recordCompletion(ctx context.Context, name string, session *Session) {
	quiz, ok := session.Quiz()
	if !ok {
		return
	}
	attempt := domain.Attempt{
		QuizTitle:       quiz.Title,
		Score:           session.Score(),
		TotalQuestions:  len(quiz.Questions),
		Timestamp:       s.now().UTC(),
		ParticipantName: domain.DisplayName(name),
	}

	// Recording outlives a dropped client connection.
	ctx = context.WithoutCancel(ctx)
	if err := s.storeAttempt(ctx, attempt); err != nil {
		log.Printf("record attempt %s/%s: %v", attempt.ParticipantName, attempt.QuizTitle, err)
	}

	lb, err := s.Leaderboard(ctx)
	if err != nil {
		log.Printf("refresh leaderboard: %v", err)
		return
	}
	s.feed.Publish(lb)
}

func (s *QuizService) storeAttempt(ctx context.Context, attempt domain.Attempt) error {
	if s.records != nil {
		remoteCtx, cancel := context.WithTimeout(ctx, s.recordTimeout)
		err := s.records.AppendAttempt(remoteCtx, attempt)
		if err == nil {
			err = s.records.MergeParticipantBest(remoteCtx, attempt.ParticipantName, attempt.QuizTitle, attempt.Score)
		}
		cancel()
		if err == nil {
			return nil
		}
		log.Printf("remote record store: %v; keeping attempt locally", err)
	}
	if s.local == nil {
		return fmt.Errorf("no record store accepted attempt")
	}
	if err := s.local.AppendAttempt(ctx, attempt); err != nil {
		return err
	}
	return s.local.MergeParticipantBest(ctx, attempt.ParticipantName, attempt.QuizTitle, attempt.Score)
}

func (s *QuizService) snapshot(ctx context.Context, session *Session) {
	if err := s.sessions.Save(ctx, session); err != nil {
		log.Printf("save session %s: %v", session.Participant(), err)
	}
}

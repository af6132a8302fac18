package app_test

import (
	"testing"
	"time"

	"quiz-leaderboard-service/internal/app"
	"quiz-leaderboard-service/internal/domain"
)

func TestSessionCompletesAndScores(t *testing.T) {
	session := app.NewSession("Alice")
	if !session.SelectQuiz(htmlQuiz(), []int{2, 1}) {
		t.Fatalf("expected select to apply")
	}
	if q, _ := session.CurrentQuestion(); q.ID != 2 {
		t.Fatalf("expected shuffled order to start at question 2, got %d", q.ID)
	}

	first, ok := session.SubmitAnswer(1, domain.Single("<a>"), 3000*time.Millisecond)
	if !ok || !first.IsCorrect || first.PointsEarned != 1 {
		t.Fatalf("unexpected first result %+v ok=%v", first, ok)
	}
	if session.HasCompletedAll() {
		t.Fatalf("session must not complete with one open question")
	}

	second, ok := session.SubmitAnswer(2, domain.Multi("p", "div"), 7500*time.Millisecond)
	if !ok || !second.IsCorrect || second.PointsEarned != 0.8 {
		t.Fatalf("unexpected second result %+v ok=%v", second, ok)
	}
	if !session.HasCompletedAll() || session.State() != app.StateCompleted {
		t.Fatalf("expected completed session, state %s", session.State())
	}
	if session.Score() != 1.8 {
		t.Fatalf("expected score 1.8, got %v", session.Score())
	}
}

func TestSessionFirstSubmissionWins(t *testing.T) {
	session := app.NewSession("Alice")
	session.SelectQuiz(htmlQuiz(), []int{1, 2})

	if _, ok := session.SubmitAnswer(1, domain.Single("<link>"), time.Second); !ok {
		t.Fatalf("expected first submission to apply")
	}
	if _, ok := session.SubmitAnswer(1, domain.Single("<a>"), time.Second); ok {
		t.Fatalf("expected second submission to be ignored")
	}
	results := session.Results()
	if len(results) != 1 || results[0].IsCorrect || results[0].PointsEarned != 0 {
		t.Fatalf("results changed by duplicate submission: %+v", results)
	}

	session.SubmitAnswer(2, domain.Multi("div", "p"), time.Second)
	score := session.Score()
	if _, ok := session.SubmitAnswer(2, domain.Multi("div"), time.Second); ok {
		t.Fatalf("completed session accepted a submission")
	}
	if session.Score() != score || score != 1 {
		t.Fatalf("score changed after completion: %v", session.Score())
	}
}

func TestSessionIgnoresOutOfOrderCalls(t *testing.T) {
	session := app.NewSession("Alice")

	if _, ok := session.SubmitAnswer(1, domain.Single("<a>"), 0); ok {
		t.Fatalf("idle session accepted an answer")
	}
	if session.GoNext() || session.GoPrevious() {
		t.Fatalf("idle session moved its cursor")
	}
	if _, ok := session.CurrentQuestion(); ok {
		t.Fatalf("idle session has no current question")
	}

	session.SelectQuiz(htmlQuiz(), []int{1, 2})
	if session.SelectQuiz(htmlQuiz(), []int{2, 1}) {
		t.Fatalf("select must only apply from idle")
	}
	if _, ok := session.SubmitAnswer(99, domain.Single("<a>"), 0); ok {
		t.Fatalf("unknown question accepted")
	}
}

func TestSessionCursorBounds(t *testing.T) {
	session := app.NewSession("Alice")
	session.SelectQuiz(htmlQuiz(), []int{1, 2})

	if session.GoPrevious() {
		t.Fatalf("cursor must floor at zero")
	}
	if !session.GoNext() {
		t.Fatalf("expected advance")
	}
	if session.GoNext() {
		t.Fatalf("advance past last question must be a no-op")
	}
	if q, _ := session.CurrentQuestion(); q.ID != 2 {
		t.Fatalf("expected last question, got %d", q.ID)
	}

	session.SubmitAnswer(1, domain.Single("<a>"), 0)
	if !session.GoPrevious() {
		t.Fatalf("expected to move back")
	}
	if len(session.Results()) != 1 {
		t.Fatalf("moving the cursor must not alter results")
	}
}

func TestSessionResetAndSnapshotRestore(t *testing.T) {
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	session := app.NewSessionWithClock("Alice", func() time.Time { return now })
	session.SelectQuiz(htmlQuiz(), []int{2, 1})
	session.SubmitAnswer(2, domain.Multi("div", "p"), 0)
	session.GoNext()

	snap := session.Snapshot()
	if snap.State != app.StateInProgress || snap.Cursor != 1 || len(snap.Order) != 2 || !snap.UpdatedAt.Equal(now) {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	restored := app.RestoreSession(snap)
	if restored.State() != app.StateInProgress {
		t.Fatalf("restored state %s", restored.State())
	}
	if q, _ := restored.CurrentQuestion(); q.ID != 1 {
		t.Fatalf("restored cursor on question %d", q.ID)
	}
	if _, ok := restored.SubmitAnswer(2, domain.Multi("div"), 0); ok {
		t.Fatalf("restored session forgot an answered question")
	}
	if _, ok := restored.SubmitAnswer(1, domain.Single("<a>"), 0); !ok || !restored.HasCompletedAll() {
		t.Fatalf("restored session did not complete")
	}

	session.Reset()
	if session.State() != app.StateIdle || len(session.Results()) != 0 || session.Score() != 0 {
		t.Fatalf("reset left state behind")
	}
	if snap := session.Snapshot(); snap.Quiz != nil || snap.Order != nil {
		t.Fatalf("idle snapshot carries quiz data: %+v", snap)
	}
	if !session.SelectQuiz(htmlQuiz(), []int{1, 2}) {
		t.Fatalf("expected select after reset")
	}
}

func htmlQuiz() domain.Quiz {
	return domain.Quiz{
		Title: "HTML",
		Questions: []domain.Question{
			{ID: 1, Question: "Which tag makes a link?", Options: []string{"<a>", "<link>", "<href>"}, Answer: domain.Single("<a>")},
			{ID: 2, Question: "Which are block elements?", Options: []string{"div", "span", "p", "em"}, Answer: domain.Multi("div", "p")},
		},
	}
}

func TestSessionScoreIsRoundedSum(t *testing.T) {
	quiz := domain.Quiz{
		Title: "Speed",
		Questions: []domain.Question{
			{ID: 1, Question: "a?", Options: []string{"a", "b"}, Answer: domain.Single("a")},
			{ID: 2, Question: "b?", Options: []string{"a", "b"}, Answer: domain.Single("b")},
			{ID: 3, Question: "c?", Options: []string{"a", "b"}, Answer: domain.Single("a")},
		},
	}
	session := app.NewSession("Alice")
	session.SelectQuiz(quiz, []int{1, 2, 3})
	session.SubmitAnswer(1, domain.Single("a"), 8000*time.Millisecond)
	session.SubmitAnswer(2, domain.Single("b"), 9000*time.Millisecond)
	session.SubmitAnswer(3, domain.Single("a"), 7000*time.Millisecond)

	// 0.7 + 0.6 + 0.8 sums to 2.0999999999999996 in float64.
	if session.Score() != 2.1 {
		t.Fatalf("expected score 2.1, got %v", session.Score())
	}
}

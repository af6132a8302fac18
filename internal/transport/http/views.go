package http

import (
	"quiz-leaderboard-service/internal/app"
	"quiz-leaderboard-service/internal/domain"
)

// questionView is a question as shown to participants; the canonical answer
// never leaves the server.
type questionView struct {
	ID       int      `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Multi    bool     `json:"multi"`
}

type quizView struct {
	Title     string         `json:"title"`
	Icon      string         `json:"icon,omitempty"`
	BgColor   string         `json:"bgcolor,omitempty"`
	Questions []questionView `json:"questions"`
}

type sessionView struct {
	Participant       string                  `json:"participant"`
	State             app.State               `json:"state"`
	Quiz              *quizView               `json:"quiz,omitempty"`
	Cursor            int                     `json:"cursor"`
	CurrentQuestionID int                     `json:"currentQuestionId,omitempty"`
	Results           []domain.QuestionResult `json:"results"`
	Completed         bool                    `json:"completed"`
	Score             float64                 `json:"score"`
}

// newSessionView lists the quiz questions in the session's order.
func newSessionView(snap app.SessionSnapshot) sessionView {
	view := sessionView{
		Participant: snap.Participant,
		State:       snap.State,
		Cursor:      snap.Cursor,
		Results:     snap.Results,
		Completed:   snap.Completed,
		Score:       snap.Score,
	}
	if view.Results == nil {
		view.Results = []domain.QuestionResult{}
	}
	if snap.Quiz == nil {
		return view
	}

	byID := make(map[int]domain.Question, len(snap.Quiz.Questions))
	for _, q := range snap.Quiz.Questions {
		byID[q.ID] = q
	}
	quiz := &quizView{Title: snap.Quiz.Title, Icon: snap.Quiz.Icon, BgColor: snap.Quiz.BgColor}
	for _, id := range snap.Order {
		q, ok := byID[id]
		if !ok {
			continue
		}
		quiz.Questions = append(quiz.Questions, questionView{
			ID:       q.ID,
			Question: q.Question,
			Options:  q.Options,
			Multi:    q.Answer.Multi,
		})
	}
	view.Quiz = quiz
	if snap.Cursor >= 0 && snap.Cursor < len(quiz.Questions) {
		view.CurrentQuestionID = quiz.Questions[snap.Cursor].ID
	}
	return view
}

type policyView struct {
	TimeBasedScoring bool  `json:"timeBasedScoring"`
	FullPointsMs     int64 `json:"fullPointsThreshold"`
	HalfPointsMs     int64 `json:"halfPointsThreshold"`
}

type quizListing struct {
	Title         string     `json:"title"`
	Icon          string     `json:"icon,omitempty"`
	BgColor       string     `json:"bgcolor,omitempty"`
	QuestionCount int        `json:"questionCount"`
	Scoring       policyView `json:"scoring"`
}

func newQuizListing(quizzes []domain.Quiz) []quizListing {
	out := make([]quizListing, 0, len(quizzes))
	for _, q := range quizzes {
		policy := q.Policy()
		out = append(out, quizListing{
			Title:         q.Title,
			Icon:          q.Icon,
			BgColor:       q.BgColor,
			QuestionCount: len(q.Questions),
			Scoring: policyView{
				TimeBasedScoring: policy.TimeBasedScoring,
				FullPointsMs:     policy.FullPoints.Milliseconds(),
				HalfPointsMs:     policy.HalfPoints.Milliseconds(),
			},
		})
	}
	return out
}

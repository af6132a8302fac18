package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"quiz-leaderboard-service/internal/app"
	"quiz-leaderboard-service/internal/domain"
)

type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	QuizTitle string `json:"quizTitle"`
}

type answerPayload struct {
	QuestionID int           `json:"questionId"`
	Answer     domain.Answer `json:"answer"`
	ElapsedMs  int64         `json:"elapsedMs"`
}

type answerResult struct {
	QuestionID   int     `json:"questionId"`
	IsCorrect    bool    `json:"isCorrect"`
	PointsEarned float64 `json:"pointsEarned"`
}

type completedPayload struct {
	QuizTitle      string  `json:"quizTitle"`
	Score          float64 `json:"score"`
	TotalQuestions int     `json:"totalQuestions"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the quiz use cases.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	updates, cancel := h.service.Subscribe(ctx)
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Only the writer goroutine touches conn for writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "leaderboard", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	alive := enqueue(send, writerDone, h.stateMessage(ctx, name))
	for alive {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		for _, msg := range h.handle(ctx, name, inbound) {
			if alive = enqueue(send, writerDone, msg); !alive {
				break
			}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// enqueue hands msg to the writer. It reports false once the writer has
// stopped.
func enqueue(send chan<- outboundMessage[any], writerDone <-chan struct{}, msg outboundMessage[any]) bool {
	select {
	case send <- msg:
		return true
	case <-writerDone:
		return false
	}
}

func (h *WSHandler) handle(ctx context.Context, name string, inbound inboundMessage) []outboundMessage[any] {
	switch inbound.Type {
	case "select":
		var payload selectPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.QuizTitle == "" {
			return []outboundMessage[any]{errorMessage("invalid select payload")}
		}
		snap, err := h.service.SelectQuiz(ctx, name, payload.QuizTitle)
		if err != nil {
			return []outboundMessage[any]{errorMessage(err.Error())}
		}
		return []outboundMessage[any]{{Type: "state", Payload: newSessionView(snap)}}

	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return []outboundMessage[any]{errorMessage("invalid answer payload")}
		}
		elapsed := time.Duration(payload.ElapsedMs) * time.Millisecond
		outcome := h.service.SubmitAnswer(ctx, name, payload.QuestionID, payload.Answer, elapsed)
		if !outcome.Applied {
			return []outboundMessage[any]{{Type: "state", Payload: newSessionView(outcome.Session)}}
		}
		out := []outboundMessage[any]{
			{Type: "answerResult", Payload: answerResult{
				QuestionID:   outcome.Result.QuestionID,
				IsCorrect:    outcome.Result.IsCorrect,
				PointsEarned: outcome.Result.PointsEarned,
			}},
			{Type: "state", Payload: newSessionView(outcome.Session)},
		}
		if outcome.Completed && outcome.Session.Quiz != nil {
			out = append(out, outboundMessage[any]{Type: "completed", Payload: completedPayload{
				QuizTitle:      outcome.Session.Quiz.Title,
				Score:          outcome.Score,
				TotalQuestions: len(outcome.Session.Quiz.Questions),
			}})
		}
		return out

	case "next":
		return []outboundMessage[any]{{Type: "state", Payload: newSessionView(h.service.GoNext(ctx, name))}}
	case "previous":
		return []outboundMessage[any]{{Type: "state", Payload: newSessionView(h.service.GoPrevious(ctx, name))}}
	case "reset":
		return []outboundMessage[any]{{Type: "state", Payload: newSessionView(h.service.Reset(ctx, name))}}

	case "leaderboard":
		lb, err := h.service.Leaderboard(ctx)
		if err != nil {
			return []outboundMessage[any]{errorMessage(err.Error())}
		}
		return []outboundMessage[any]{{Type: "leaderboard", Payload: lb}}

	default:
		return []outboundMessage[any]{errorMessage("unsupported message type")}
	}
}

func (h *WSHandler) stateMessage(ctx context.Context, name string) outboundMessage[any] {
	snap, ok := h.service.Session(ctx, name)
	if !ok {
		snap = app.SessionSnapshot{Participant: domain.ParticipantKey(name), State: app.StateIdle}
	}
	return outboundMessage[any]{Type: "state", Payload: newSessionView(snap)}
}

func errorMessage(message string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: message}}
}

package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"quiz-leaderboard-service/internal/app"
	"quiz-leaderboard-service/internal/domain"
)

type response struct {
	OK    bool        `json:"ok"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// NewRouter mounts the REST endpoints and the websocket endpoint.
func NewRouter(service *app.QuizService) http.Handler {
	h := &restHandler{service: service}
	ws := NewWSHandler(service)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, response{OK: true})
	})
	r.Get("/ws", ws.ServeWS)

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Logger)
		api.Get("/quizzes", h.listQuizzes)
		api.Get("/participants/{name}/quizzes", h.participantCatalog)
		api.Get("/participants/{name}/session", h.participantSession)
		api.Get("/leaderboard", h.leaderboard)
	})
	return r
}

type restHandler struct {
	service *app.QuizService
}

func (h *restHandler) listQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.service.Quizzes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response{OK: true, Data: newQuizListing(quizzes)})
}

func (h *restHandler) participantCatalog(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.service.Catalog(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response{OK: true, Data: catalog})
}

func (h *restHandler) participantSession(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.service.Session(r.Context(), chi.URLParam(r, "name"))
	if !ok {
		writeError(w, domain.ErrSessionNotFound)
		return
	}
	writeJSON(w, http.StatusOK, response{OK: true, Data: newSessionView(snap)})
}

func (h *restHandler) leaderboard(w http.ResponseWriter, r *http.Request) {
	lb, err := h.service.Leaderboard(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response{OK: true, Data: lb})
}

func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrQuizNotFound), errors.Is(err, domain.ErrSessionNotFound):
		code = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidQuiz):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrQuizAlreadyPlayed):
		code = http.StatusConflict
	case errors.Is(err, domain.ErrStoreUnavailable):
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, response{OK: false, Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, payload response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}

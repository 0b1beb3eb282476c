package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/domain"
)

// APIHandler exposes the stateless question-fetch and answer-check
// endpoints. Clients that run the attempt themselves use these; the
// websocket handler covers server-driven attempts.
type APIHandler struct {
	service *app.QuizService
}

func NewAPIHandler(service *app.QuizService) *APIHandler {
	return &APIHandler{service: service}
}

// Register mounts the API routes on mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/questions", h.GetQuestions)
	mux.HandleFunc("/api/check-answers", h.CheckAnswers)
}

type questionsResponse struct {
	Questions []domain.PublicQuestion `json:"questions"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// GetQuestions handles GET /api/questions?category=&difficulty=.
// Both parameters are required; the engine never falls back to defaults.
func (h *APIHandler) GetQuestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}
	category := r.URL.Query().Get("category")
	difficulty := r.URL.Query().Get("difficulty")
	if category == "" || difficulty == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing category or difficulty"})
		return
	}

	questions, err := h.service.FetchQuestions(r.Context(), category, difficulty)
	if err != nil {
		if errors.Is(err, domain.ErrBankNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
			return
		}
		log.Printf("fetch questions failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load questions"})
		return
	}
	writeJSON(w, http.StatusOK, questionsResponse{Questions: questions})
}

// CheckAnswers handles POST /api/check-answers with a finished submission.
func (h *APIHandler) CheckAnswers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	var submission domain.AnswerSubmission
	if err := json.NewDecoder(r.Body).Decode(&submission); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid submission payload"})
		return
	}
	if submission.Category == "" || submission.Difficulty == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing category or difficulty"})
		return
	}

	result, err := h.service.CheckAnswers(r.Context(), submission)
	if err != nil {
		if errors.Is(err, domain.ErrBankNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
			return
		}
		log.Printf("check answers failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to score submission"})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response: %v", err)
	}
}

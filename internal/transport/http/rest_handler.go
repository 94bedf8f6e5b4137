package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"classquiz-service/internal/app"
	"classquiz-service/internal/domain"
)

// Pinger reports backing-store liveness for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RESTHandler exposes the polling surface of the game service. Every route
// here is sufficient on its own; the websocket push channel only adds
// timeliness.
type RESTHandler struct {
	service *app.GameService
	pinger  Pinger
}

func NewRESTHandler(service *app.GameService, pinger Pinger) *RESTHandler {
	return &RESTHandler{service: service, pinger: pinger}
}

// Register wires all routes onto mux.
func (h *RESTHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/teacher/pin", h.pin)
	mux.HandleFunc("POST /api/play/join", h.join)
	mux.HandleFunc("GET /api/teacher/players", h.players)
	mux.HandleFunc("POST /api/teacher/start-game", h.startGame)
	mux.HandleFunc("GET /api/game/state", h.state)
	mux.HandleFunc("POST /api/teacher/next-question", h.nextQuestion)
	mux.HandleFunc("POST /api/play/submit-answer", h.submitAnswer)
	mux.HandleFunc("POST /api/teacher/show-answer", h.showAnswer)
	mux.HandleFunc("POST /api/teacher/finish-game", h.finishGame)
	mux.HandleFunc("POST /api/teacher/reset", h.reset)
	mux.HandleFunc("POST /api/play/disconnect", h.disconnect)
	mux.HandleFunc("GET /api/teacher/question-answers/{index}", h.questionAnswers)
	mux.HandleFunc("POST /api/quiz", h.createQuiz)
	mux.HandleFunc("GET /api/quiz/{quizId}", h.getQuiz)
	mux.HandleFunc("GET /api/quizzes", h.listQuizzes)
	mux.HandleFunc("GET /healthz", h.health)
}

func (h *RESTHandler) pin(w http.ResponseWriter, r *http.Request) {
	pin, err := h.service.Pin(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"pin": pin})
}

func (h *RESTHandler) join(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Pin  string `json:"pin"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Pin == "" || req.Name == "" {
		writeErrorMessage(w, http.StatusBadRequest, "PIN and name are required")
		return
	}
	if err := h.service.Join(r.Context(), req.Pin, req.Name); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *RESTHandler) players(w http.ResponseWriter, r *http.Request) {
	players, err := h.service.Players(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if players == nil {
		players = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"players": players})
}

func (h *RESTHandler) startGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QuizID string `json:"quizId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QuizID == "" {
		writeErrorMessage(w, http.StatusBadRequest, "Quiz ID is required")
		return
	}
	state, err := h.service.StartGame(r.Context(), req.QuizID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *RESTHandler) state(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.State(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *RESTHandler) nextQuestion(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.NextQuestion(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *RESTHandler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerName string `json:"playerName"`
		Answer     *int   `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlayerName == "" || req.Answer == nil {
		writeErrorMessage(w, http.StatusBadRequest, "Player name and answer are required")
		return
	}
	answerTime, err := h.service.SubmitAnswer(r.Context(), req.PlayerName, *req.Answer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"answerTime": answerTime})
}

func (h *RESTHandler) showAnswer(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.ShowAnswer(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *RESTHandler) finishGame(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.FinishGame(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *RESTHandler) reset(w http.ResponseWriter, r *http.Request) {
	pin, err := h.service.Reset(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "pin": pin})
}

func (h *RESTHandler) disconnect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerName string `json:"playerName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlayerName == "" {
		writeErrorMessage(w, http.StatusBadRequest, "Player name is required")
		return
	}
	if err := h.service.Leave(r.Context(), req.PlayerName); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *RESTHandler) questionAnswers(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid question index")
		return
	}
	answers, err := h.service.QuestionAnswers(r.Context(), index)
	if err != nil {
		writeError(w, err)
		return
	}
	if answers == nil {
		answers = []domain.QuestionAnswer{}
	}
	writeJSON(w, http.StatusOK, answers)
}

func (h *RESTHandler) createQuiz(w http.ResponseWriter, r *http.Request) {
	var quiz domain.Quiz
	if err := json.NewDecoder(r.Body).Decode(&quiz); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid quiz data")
		return
	}
	if msg, ok := validateQuiz(quiz); !ok {
		writeErrorMessage(w, http.StatusBadRequest, msg)
		return
	}
	if err := h.service.CreateQuiz(r.Context(), quiz); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

func (h *RESTHandler) getQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.service.GetQuiz(r.Context(), r.PathValue("quizId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *RESTHandler) listQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.service.ListQuizzes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if quizzes == nil {
		quizzes = []domain.Quiz{}
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (h *RESTHandler) health(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func validateQuiz(quiz domain.Quiz) (string, bool) {
	if quiz.QuizID == "" || quiz.Title == "" || len(quiz.Questions) == 0 {
		return "Quiz must include quizId, title, and questions array", false
	}
	for _, question := range quiz.Questions {
		if len(question.Options) != 4 {
			return "Every question needs exactly 4 options", false
		}
		if question.CorrectAnswer < 0 || question.CorrectAnswer >= len(question.Options) {
			return "Correct answer index out of range", false
		}
	}
	return "", true
}

// Recover isolates per-request faults so one bad handler call cannot take
// down the process.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				writeErrorMessage(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrQuizNotFound):
		writeErrorMessage(w, http.StatusNotFound, "Quiz not found")
	case errors.Is(err, domain.ErrNoActiveGame):
		writeErrorMessage(w, http.StatusNotFound, "No active game")
	case errors.Is(err, domain.ErrIncorrectPin):
		writeErrorMessage(w, http.StatusBadRequest, "Incorrect PIN")
	case errors.Is(err, domain.ErrNameTaken):
		writeErrorMessage(w, http.StatusBadRequest, "Name already taken")
	case errors.Is(err, domain.ErrNoActiveQuestion),
		errors.Is(err, domain.ErrNoMoreQuestions),
		errors.Is(err, domain.ErrAlreadyAnswered),
		errors.Is(err, domain.ErrInvalidOption),
		errors.Is(err, domain.ErrGameFinished):
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("request failed: %v", err)
		writeErrorMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}

func writeErrorMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

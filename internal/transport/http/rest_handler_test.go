package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"classquiz-service/internal/app"
	"classquiz-service/internal/domain"
	"classquiz-service/internal/infra/memory"
)

// The whole game is playable over polling alone; no websocket involved.
func TestRESTGameFlow(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	// Idempotent PIN fetch.
	pin := getPin(t, server)
	if pin != getPin(t, server) {
		t.Fatalf("pin changed between fetches")
	}

	// Join with wrong then right PIN.
	resp := postJSON(t, server, "/api/play/join", map[string]string{"pin": "0000", "name": "sam"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for wrong pin, got %d", resp.StatusCode)
	}
	assertError(t, resp, "Incorrect PIN")

	resp = postJSON(t, server, "/api/play/join", map[string]string{"pin": pin, "name": "sam"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("join failed: %d", resp.StatusCode)
	}

	resp = postJSON(t, server, "/api/play/join", map[string]string{"pin": pin, "name": "sam"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate name, got %d", resp.StatusCode)
	}
	assertError(t, resp, "Name already taken")

	var playersBody struct {
		Players []string `json:"players"`
	}
	getJSON(t, server, "/api/teacher/players", &playersBody)
	if len(playersBody.Players) != 1 || playersBody.Players[0] != "sam" {
		t.Fatalf("expected [sam], got %v", playersBody.Players)
	}

	// No state before start.
	resp = get(t, server, "/api/game/state")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 before start, got %d", resp.StatusCode)
	}

	// Start, advance, answer, reveal, finish.
	var state domain.GameState
	resp = postJSON(t, server, "/api/teacher/start-game", map[string]string{"quizId": "quiz-1"})
	decode(t, resp, &state)
	if state.Status != domain.StatusWaiting {
		t.Fatalf("expected waiting, got %+v", state)
	}

	resp = postJSON(t, server, "/api/teacher/next-question", nil)
	decode(t, resp, &state)
	if state.Status != domain.StatusQuestion || state.CurrentQuestionIndex != 0 {
		t.Fatalf("expected open question 0, got %+v", state)
	}

	var answerBody struct {
		AnswerTime *int64 `json:"answerTime"`
	}
	resp = postJSON(t, server, "/api/play/submit-answer", map[string]any{"playerName": "sam", "answer": 1})
	decode(t, resp, &answerBody)
	if answerBody.AnswerTime == nil {
		t.Fatalf("expected answerTime in response")
	}

	resp = postJSON(t, server, "/api/play/submit-answer", map[string]any{"playerName": "sam", "answer": 1})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected duplicate answer rejected, got %d", resp.StatusCode)
	}

	var answers []domain.QuestionAnswer
	getJSON(t, server, "/api/teacher/question-answers/0", &answers)
	if len(answers) != 1 || answers[0].PlayerName != "sam" {
		t.Fatalf("expected sam's answer listed, got %v", answers)
	}

	resp = postJSON(t, server, "/api/teacher/show-answer", nil)
	decode(t, resp, &state)
	if state.Status != domain.StatusRevealed || state.Scores["sam"] != 1000 {
		t.Fatalf("expected sam=1000 revealed, got %+v", state)
	}

	resp = postJSON(t, server, "/api/teacher/finish-game", nil)
	decode(t, resp, &state)
	if state.Status != domain.StatusFinished {
		t.Fatalf("expected finished, got %+v", state)
	}

	// Reset mints a new pin and clears everything.
	var resetBody struct {
		Success bool   `json:"success"`
		Pin     string `json:"pin"`
	}
	resp = postJSON(t, server, "/api/teacher/reset", nil)
	decode(t, resp, &resetBody)
	if !resetBody.Success || resetBody.Pin == pin {
		t.Fatalf("expected fresh pin on reset, got %+v", resetBody)
	}
	getJSON(t, server, "/api/teacher/players", &playersBody)
	if len(playersBody.Players) != 0 {
		t.Fatalf("expected empty roster after reset, got %v", playersBody.Players)
	}
}

func TestQuizCatalogRoutes(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	quiz := domain.Quiz{
		QuizID: "quiz-2",
		Title:  "Geography",
		Questions: []domain.Question{
			{Index: 0, Text: "Capital of France?", Options: []string{"Lyon", "Paris", "Nice", "Lille"}, CorrectAnswer: 1},
		},
	}
	resp := postJSON(t, server, "/api/quiz", quiz)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	bad := quiz
	bad.Questions = []domain.Question{{Index: 0, Options: []string{"only", "three", "options"}}}
	resp = postJSON(t, server, "/api/quiz", bad)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for 3 options, got %d", resp.StatusCode)
	}

	var got domain.Quiz
	getJSON(t, server, "/api/quiz/quiz-2", &got)
	if got.Title != "Geography" {
		t.Fatalf("unexpected quiz %+v", got)
	}

	resp = get(t, server, "/api/quiz/missing")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for missing quiz, got %d", resp.StatusCode)
	}

	var quizzes []domain.Quiz
	getJSON(t, server, "/api/quizzes", &quizzes)
	if len(quizzes) != 2 {
		t.Fatalf("expected 2 quizzes, got %d", len(quizzes))
	}
}

func TestNextQuestionPastLast(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	postJSON(t, server, "/api/teacher/start-game", map[string]string{"quizId": "quiz-1"})
	postJSON(t, server, "/api/teacher/next-question", nil)
	resp := postJSON(t, server, "/api/teacher/next-question", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 past last question, got %d", resp.StatusCode)
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	loader := memory.NewStaticQuizLoader(map[string]domain.Quiz{
		"quiz-1": {
			QuizID: "quiz-1",
			Title:  "Test Quiz",
			Questions: []domain.Question{
				{Index: 0, Text: "Pick B", Options: []string{"A", "B", "C", "D"}, CorrectAnswer: 1},
			},
		},
	})
	service := app.NewGameService(
		memory.NewPinStore(time.Hour),
		memory.NewRoster(),
		memory.NewQuizRepository(loader, time.Minute),
		memory.NewSessionStore(),
	)
	mux := http.NewServeMux()
	NewRESTHandler(service, nil).Register(mux)
	return httptest.NewServer(Recover(mux))
}

func getPin(t *testing.T, server *httptest.Server) string {
	t.Helper()
	var body struct {
		Pin string `json:"pin"`
	}
	getJSON(t, server, "/api/teacher/pin", &body)
	if body.Pin == "" {
		t.Fatalf("expected a pin")
	}
	return body.Pin
}

func get(t *testing.T, server *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func getJSON(t *testing.T, server *httptest.Server, path string, out any) {
	t.Helper()
	resp := get(t, server, path)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", path, resp.StatusCode)
	}
	decode(t, resp, out)
}

func postJSON(t *testing.T, server *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	resp, err := http.Post(server.URL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func assertError(t *testing.T, resp *http.Response, want string) {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	decode(t, resp, &body)
	if body.Error != want {
		t.Fatalf("expected error %q, got %q", want, body.Error)
	}
}

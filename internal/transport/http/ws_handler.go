package http

import (
	"encoding/json"
	"log"
	"net/http"

	"classquiz-service/internal/app"
	"classquiz-service/internal/domain"
	"github.com/gorilla/websocket"
)

// WSHandler is the push channel: it relays commands into the game service and
// fans transition events out to the connection. Everything it delivers can
// also be obtained by polling the REST surface.
type WSHandler struct {
	service  *app.GameService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.GameService) *WSHandler {
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

type joinPayload struct {
	Pin  string `json:"pin"`
	Name string `json:"name"`
}

type answerPayload struct {
	Answer *int `json:"answer"`
}

type startGamePayload struct {
	QuizID string `json:"quizId"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and pumps commands and events until the peer
// goes away.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	events, cancel := h.service.Subscribe()
	defer cancel()

	send := make(chan domain.Event, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	eventsDone := make(chan struct{})

	// Single writer goroutine; gorilla connections do not allow concurrent writes.
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
		defer close(eventsDone)
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return
				}
				select {
				case send <- event:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	playerName := ""
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "join_game":
			var payload joinPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Pin == "" || payload.Name == "" {
				send <- errorEvent("join_error", "invalid join payload")
				continue
			}
			if err := h.service.Join(r.Context(), payload.Pin, payload.Name); err != nil {
				send <- errorEvent("join_error", err.Error())
				continue
			}
			playerName = payload.Name
			send <- domain.Event{Type: "join_success", Payload: domain.PlayerPayload{Name: playerName}}

		case "submit_answer":
			if playerName == "" {
				send <- errorEvent("answer_error", "player not properly connected")
				continue
			}
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Answer == nil {
				send <- errorEvent("answer_error", "invalid answer payload")
				continue
			}
			answerTime, err := h.service.SubmitAnswer(r.Context(), playerName, *payload.Answer)
			if err != nil {
				send <- errorEvent("answer_error", err.Error())
				continue
			}
			send <- domain.Event{Type: "answer_confirmed", Payload: map[string]int64{"answerTime": answerTime}}

		case "start_game":
			var payload startGamePayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.QuizID == "" {
				send <- errorEvent("game_error", "quiz id is required")
				continue
			}
			if _, err := h.service.StartGame(r.Context(), payload.QuizID); err != nil {
				send <- errorEvent("game_error", err.Error())
			}

		case "next_question":
			if _, err := h.service.NextQuestion(r.Context()); err != nil {
				send <- errorEvent("game_error", err.Error())
			}

		case "show_answer":
			if _, err := h.service.ShowAnswer(r.Context()); err != nil {
				send <- errorEvent("game_error", err.Error())
			}

		case "end_game":
			if _, err := h.service.FinishGame(r.Context()); err != nil {
				send <- errorEvent("game_error", err.Error())
			}

		default:
			send <- errorEvent("error", "unsupported message type")
		}
	}

	if playerName != "" {
		if err := h.service.Leave(r.Context(), playerName); err != nil {
			log.Printf("ws leave failed for %s: %v", playerName, err)
		}
	}

	close(closeSignals)
	<-eventsDone
	close(send)
	<-writerDone
}

func errorEvent(eventType, message string) domain.Event {
	return domain.Event{Type: eventType, Payload: errorPayload{Message: message}}
}

package domain

// Event types pushed over the optional notification channel. They mirror
// session transitions 1:1 and are advisory only; polling /api/game/state is
// always sufficient for correctness.
const (
	EventGameStarted     = "game_started"
	EventQuestionStarted = "question_started"
	EventAnswerRevealed  = "answer_revealed"
	EventGameEnded       = "game_ended"
	EventPlayersUpdate   = "players_update"
	EventAnswerReceived  = "answer_received"
	EventPlayerJoined    = "player_joined"
	EventPlayerLeft      = "player_left"
)

// Event is one push notification with a type-specific payload.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// StatePayload wraps a snapshot for state-transition events.
type StatePayload struct {
	GameState GameState `json:"gameState"`
	Pin       string    `json:"pin,omitempty"`
}

// PlayersPayload carries the roster for players_update.
type PlayersPayload struct {
	Players []string `json:"players"`
}

// AnswerReceivedPayload tells the teacher someone answered, and how fast.
type AnswerReceivedPayload struct {
	PlayerName string `json:"playerName"`
	AnswerTime int64  `json:"answerTime"`
}

// PlayerPayload names the player for join/leave events.
type PlayerPayload struct {
	Name string `json:"name"`
}

package domain

// Status enumerates the lifecycle of the live game session.
type Status string

const (
	// StatusWaiting means the game is created but no question is open yet.
	StatusWaiting Status = "waiting"
	// StatusQuestion means the current question is open for answers.
	StatusQuestion Status = "question"
	// StatusRevealed means the current question is closed and scored.
	StatusRevealed Status = "revealed"
	// StatusFinished means the game is over and scores are frozen.
	StatusFinished Status = "finished"
)

// Question models one MCQ with exactly four options. Index is authoritative
// for ordering; array position is a cache only.
type Question struct {
	Index         int      `json:"index"`
	Text          string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

// Quiz is an ordered set of questions owned by the catalog.
type Quiz struct {
	QuizID    string     `json:"quizId"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// GameState is the wire snapshot of the live session. Raw per-player answers
// never appear here; only cumulative scores do.
type GameState struct {
	QuizID               string         `json:"quizId"`
	Status               Status         `json:"status"`
	CurrentQuestionIndex int            `json:"currentQuestionIndex"`
	Scores               map[string]int `json:"scores"`
}

// QuestionAnswer is the teacher-facing view of one submission: who answered
// and how fast, never which option was picked.
type QuestionAnswer struct {
	PlayerName string `json:"playerName"`
	AnswerTime int64  `json:"answerTime"`
}

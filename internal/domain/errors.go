package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrNoActiveGame is returned when a game operation runs before start-game.
	ErrNoActiveGame = errors.New("no active game")
	// ErrNoActiveQuestion is returned when answers arrive outside an open question.
	ErrNoActiveQuestion = errors.New("no active question")
	// ErrNoMoreQuestions is returned when next-question runs past the last index.
	ErrNoMoreQuestions = errors.New("no more questions")
	// ErrAlreadyAnswered is returned on a duplicate submission for the same question.
	ErrAlreadyAnswered = errors.New("player already answered this question")
	// ErrInvalidOption is returned when the chosen option index is out of range.
	ErrInvalidOption = errors.New("invalid answer option")
	// ErrIncorrectPin is returned when a join carries a stale or wrong PIN.
	ErrIncorrectPin = errors.New("incorrect pin")
	// ErrNameTaken is returned when the player name is already on the roster.
	ErrNameTaken = errors.New("name already taken")
	// ErrGameFinished is returned when a mutation hits a finished game.
	ErrGameFinished = errors.New("game already finished")
)

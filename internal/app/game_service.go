package app

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"classquiz-service/internal/domain"
)

// PinStore holds the join code for the live session. Implementations expire
// the code after a configured idle TTL.
type PinStore interface {
	// Get returns the live PIN, or "" when none exists or it expired.
	Get(ctx context.Context) (string, error)
	// Put installs pin unless another one is already live and returns the
	// winning value, so concurrent mints converge on a single code.
	Put(ctx context.Context, pin string) (string, error)
	Clear(ctx context.Context) error
}

// Roster tracks the joined player names for the current PIN.
type Roster interface {
	// Add inserts name if absent and reports whether it was inserted.
	Add(ctx context.Context, name string) (bool, error)
	// Members returns the roster in join order.
	Members(ctx context.Context) ([]string, error)
	Remove(ctx context.Context, name string) error
	Clear(ctx context.Context) error
}

// QuizRepository is the quiz catalog (cache in front of a backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	SaveQuiz(ctx context.Context, quiz domain.Quiz) error
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
}

// SessionStore holds the single live Game and mirrors its snapshot so that
// sibling workers sharing the store can observe it.
type SessionStore interface {
	Current() (*Game, bool)
	Put(ctx context.Context, game *Game)
	Sync(ctx context.Context, state domain.GameState)
	Clear(ctx context.Context)
}

// GameService contains the live game use cases: PIN lifecycle, roster,
// the session state machine and the push-event fan-out.
type GameService struct {
	pins    PinStore
	roster  Roster
	quizzes QuizRepository
	store   SessionStore

	mu          sync.Mutex
	subscribers map[chan domain.Event]struct{}
}

func NewGameService(pins PinStore, roster Roster, quizzes QuizRepository, store SessionStore) *GameService {
	return &GameService{
		pins:        pins,
		roster:      roster,
		quizzes:     quizzes,
		store:       store,
		subscribers: make(map[chan domain.Event]struct{}),
	}
}

// Pin returns the live join code, minting one when none exists. Repeated
// calls without a reset return the same value until the PIN's idle TTL runs out.
func (s *GameService) Pin(ctx context.Context) (string, error) {
	pin, err := s.pins.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("get pin: %w", err)
	}
	if pin != "" {
		return pin, nil
	}
	pin, err = s.pins.Put(ctx, newPin())
	if err != nil {
		return "", fmt.Errorf("mint pin: %w", err)
	}
	return pin, nil
}

// Join validates the PIN and adds the player to the roster.
func (s *GameService) Join(ctx context.Context, pin, name string) error {
	current, err := s.pins.Get(ctx)
	if err != nil {
		return fmt.Errorf("validate pin: %w", err)
	}
	if current == "" || pin != current {
		return domain.ErrIncorrectPin
	}

	added, err := s.roster.Add(ctx, name)
	if err != nil {
		return fmt.Errorf("add player: %w", err)
	}
	if !added {
		return domain.ErrNameTaken
	}

	s.publish(domain.Event{Type: domain.EventPlayerJoined, Payload: domain.PlayerPayload{Name: name}})
	s.publishPlayers(ctx)
	return nil
}

// Players returns the current roster.
func (s *GameService) Players(ctx context.Context) ([]string, error) {
	return s.roster.Members(ctx)
}

// Leave removes a player from the roster; absent names are a no-op.
func (s *GameService) Leave(ctx context.Context, name string) error {
	if err := s.roster.Remove(ctx, name); err != nil {
		return fmt.Errorf("remove player: %w", err)
	}
	s.publish(domain.Event{Type: domain.EventPlayerLeft, Payload: domain.PlayerPayload{Name: name}})
	s.publishPlayers(ctx)
	return nil
}

// StartGame binds a quiz from the catalog to a fresh waiting session.
func (s *GameService) StartGame(ctx context.Context, quizID string) (domain.GameState, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.GameState{}, err
	}

	game := NewGame(quiz)
	s.store.Put(ctx, game)
	state := game.Snapshot()

	pin, err := s.Pin(ctx)
	if err != nil {
		pin = ""
	}
	s.publish(domain.Event{Type: domain.EventGameStarted, Payload: domain.StatePayload{GameState: state, Pin: pin}})
	return state, nil
}

// State returns the live session snapshot, suitable for polling.
func (s *GameService) State(context.Context) (domain.GameState, error) {
	game, ok := s.store.Current()
	if !ok {
		return domain.GameState{}, domain.ErrNoActiveGame
	}
	return game.Snapshot(), nil
}

// NextQuestion opens the next question for answers.
func (s *GameService) NextQuestion(ctx context.Context) (domain.GameState, error) {
	game, ok := s.store.Current()
	if !ok {
		return domain.GameState{}, domain.ErrNoActiveGame
	}
	state, err := game.NextQuestion()
	if err != nil {
		return domain.GameState{}, err
	}
	s.store.Sync(ctx, state)
	s.publish(domain.Event{Type: domain.EventQuestionStarted, Payload: domain.StatePayload{GameState: state}})
	return state, nil
}

// SubmitAnswer records one answer and returns its latency in milliseconds.
func (s *GameService) SubmitAnswer(ctx context.Context, playerName string, answer int) (int64, error) {
	game, ok := s.store.Current()
	if !ok {
		return 0, domain.ErrNoActiveGame
	}
	answerTime, err := game.Submit(playerName, answer)
	if err != nil {
		return 0, err
	}
	s.publish(domain.Event{Type: domain.EventAnswerReceived, Payload: domain.AnswerReceivedPayload{
		PlayerName: playerName,
		AnswerTime: answerTime,
	}})
	return answerTime, nil
}

// ShowAnswer closes the open question and applies scoring.
func (s *GameService) ShowAnswer(ctx context.Context) (domain.GameState, error) {
	game, ok := s.store.Current()
	if !ok {
		return domain.GameState{}, domain.ErrNoActiveGame
	}
	state, err := game.Reveal()
	if err != nil {
		return domain.GameState{}, err
	}
	s.store.Sync(ctx, state)
	s.publish(domain.Event{Type: domain.EventAnswerRevealed, Payload: domain.StatePayload{GameState: state}})
	return state, nil
}

// FinishGame freezes the session and its scores.
func (s *GameService) FinishGame(ctx context.Context) (domain.GameState, error) {
	game, ok := s.store.Current()
	if !ok {
		return domain.GameState{}, domain.ErrNoActiveGame
	}
	state, err := game.Finish()
	if err != nil {
		return domain.GameState{}, err
	}
	s.store.Sync(ctx, state)
	s.publish(domain.Event{Type: domain.EventGameEnded, Payload: domain.StatePayload{GameState: state}})
	return state, nil
}

// Reset discards the session and roster and mints a fresh PIN.
func (s *GameService) Reset(ctx context.Context) (string, error) {
	if err := s.pins.Clear(ctx); err != nil {
		return "", fmt.Errorf("clear pin: %w", err)
	}
	pin, err := s.pins.Put(ctx, newPin())
	if err != nil {
		return "", fmt.Errorf("mint pin: %w", err)
	}
	if err := s.roster.Clear(ctx); err != nil {
		return "", fmt.Errorf("clear roster: %w", err)
	}
	s.store.Clear(ctx)
	s.publish(domain.Event{Type: domain.EventPlayersUpdate, Payload: domain.PlayersPayload{Players: []string{}}})
	return pin, nil
}

// QuestionAnswers reports who has answered the given question, fastest first.
func (s *GameService) QuestionAnswers(_ context.Context, index int) ([]domain.QuestionAnswer, error) {
	game, ok := s.store.Current()
	if !ok {
		return nil, domain.ErrNoActiveGame
	}
	return game.QuestionAnswers(index), nil
}

// CreateQuiz stores a quiz definition in the catalog.
func (s *GameService) CreateQuiz(ctx context.Context, quiz domain.Quiz) error {
	return s.quizzes.SaveQuiz(ctx, quiz)
}

// GetQuiz loads one quiz from the catalog.
func (s *GameService) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return s.quizzes.GetQuiz(ctx, quizID)
}

// ListQuizzes lists the catalog.
func (s *GameService) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	return s.quizzes.ListQuizzes(ctx)
}

// Subscribe returns a channel of transition events. The caller must invoke
// the returned cancel function to avoid leaks. Events are advisory; polling
// State remains the source of truth.
func (s *GameService) Subscribe() (<-chan domain.Event, func()) {
	ch := make(chan domain.Event, 16)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *GameService) publish(event domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Drop the oldest pending event so slow clients never block fan-out.
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
}

func (s *GameService) publishPlayers(ctx context.Context) {
	players, err := s.roster.Members(ctx)
	if err != nil {
		return
	}
	s.publish(domain.Event{Type: domain.EventPlayersUpdate, Payload: domain.PlayersPayload{Players: players}})
}

// newPin mints a 4-digit join code, matching the classroom-facing format.
func newPin() string {
	return fmt.Sprintf("%d", 1000+rand.Intn(9000))
}

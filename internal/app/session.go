package app

import (
	"sort"
	"sync"
	"time"

	"classquiz-service/internal/domain"
)

// answerRecord is one ledger entry: which option a player picked and how long
// after the question opened. seq preserves arrival order for tie-breaks.
type answerRecord struct {
	player  string
	option  int
	elapsed time.Duration
	seq     int
}

// Game is the single live session: status, question pointer, answer ledger
// and cumulative scores. All mutations are serialized behind its mutex.
type Game struct {
	mu         sync.RWMutex
	now        func() time.Time
	quiz       domain.Quiz
	status     domain.Status
	current    int
	revealedAt time.Time
	scores     map[string]int
	answers    map[int][]answerRecord
	answered   map[int]map[string]struct{}
	seq        int
}

// NewGame binds a quiz to a fresh waiting session.
func NewGame(quiz domain.Quiz) *Game {
	return NewGameWithClock(quiz, time.Now)
}

// NewGameWithClock is test-only for deterministic answer timing.
func NewGameWithClock(quiz domain.Quiz, now func() time.Time) *Game {
	return &Game{
		now:      now,
		quiz:     quiz,
		status:   domain.StatusWaiting,
		current:  -1,
		scores:   make(map[string]int),
		answers:  make(map[int][]answerRecord),
		answered: make(map[int]map[string]struct{}),
	}
}

// NextQuestion advances the question pointer and opens it for answers.
// Advancing past the last question is rejected with ErrNoMoreQuestions
// rather than silently clamping.
func (g *Game) NextQuestion() (domain.GameState, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status == domain.StatusFinished {
		return domain.GameState{}, domain.ErrGameFinished
	}
	if g.current+1 >= len(g.quiz.Questions) {
		return domain.GameState{}, domain.ErrNoMoreQuestions
	}

	g.current++
	g.status = domain.StatusQuestion
	g.revealedAt = g.now()
	g.answers[g.current] = nil
	g.answered[g.current] = make(map[string]struct{})
	return g.snapshotLocked(), nil
}

// Submit records one answer for the open question and returns the elapsed
// milliseconds since the question opened. A second submission from the same
// player is rejected; the first durably recorded answer wins.
func (g *Game) Submit(player string, option int) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != domain.StatusQuestion {
		return 0, domain.ErrNoActiveQuestion
	}
	question := g.quiz.Questions[g.current]
	if option < 0 || option >= len(question.Options) {
		return 0, domain.ErrInvalidOption
	}
	if _, ok := g.answered[g.current][player]; ok {
		return 0, domain.ErrAlreadyAnswered
	}

	elapsed := g.now().Sub(g.revealedAt)
	g.answered[g.current][player] = struct{}{}
	g.answers[g.current] = append(g.answers[g.current], answerRecord{
		player:  player,
		option:  option,
		elapsed: elapsed,
		seq:     g.seq,
	})
	g.seq++
	return elapsed.Milliseconds(), nil
}

// Reveal closes the open question and applies speed-ranked scoring. Only the
// call that flips status from question to revealed scores, so a second
// reveal can never double-award; it fails with ErrNoActiveQuestion.
func (g *Game) Reveal() (domain.GameState, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != domain.StatusQuestion {
		return domain.GameState{}, domain.ErrNoActiveQuestion
	}
	g.status = domain.StatusRevealed

	correct := make([]answerRecord, 0, len(g.answers[g.current]))
	want := g.quiz.Questions[g.current].CorrectAnswer
	for _, record := range g.answers[g.current] {
		if record.option == want {
			correct = append(correct, record)
		}
	}
	// Fastest first; identical times resolved by arrival order into the ledger.
	sort.SliceStable(correct, func(i, j int) bool {
		if correct[i].elapsed != correct[j].elapsed {
			return correct[i].elapsed < correct[j].elapsed
		}
		return correct[i].seq < correct[j].seq
	})
	for rank, record := range correct {
		points := 1000 - 100*rank
		if points < 100 {
			points = 100
		}
		g.scores[record.player] += points
	}
	return g.snapshotLocked(), nil
}

// Finish freezes the game; only reset mutates it afterwards.
func (g *Game) Finish() (domain.GameState, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.status = domain.StatusFinished
	return g.snapshotLocked(), nil
}

// Snapshot returns the current wire state.
func (g *Game) Snapshot() domain.GameState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.snapshotLocked()
}

// QuestionAnswers lists who answered the given question and how fast,
// ordered by speed. Chosen options are deliberately withheld.
func (g *Game) QuestionAnswers(index int) []domain.QuestionAnswer {
	g.mu.RLock()
	defer g.mu.RUnlock()

	records := make([]answerRecord, len(g.answers[index]))
	copy(records, g.answers[index])
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].elapsed != records[j].elapsed {
			return records[i].elapsed < records[j].elapsed
		}
		return records[i].seq < records[j].seq
	})

	answers := make([]domain.QuestionAnswer, 0, len(records))
	for _, record := range records {
		answers = append(answers, domain.QuestionAnswer{
			PlayerName: record.player,
			AnswerTime: record.elapsed.Milliseconds(),
		})
	}
	return answers
}

func (g *Game) snapshotLocked() domain.GameState {
	scores := make(map[string]int, len(g.scores))
	for name, score := range g.scores {
		scores[name] = score
	}
	return domain.GameState{
		QuizID:               g.quiz.QuizID,
		Status:               g.status,
		CurrentQuestionIndex: g.current,
		Scores:               scores,
	}
}

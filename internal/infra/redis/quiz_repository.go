package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sort"
	"time"

	"classquiz-service/internal/domain"
	"classquiz-service/internal/infra/memory"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuizRepository caches quiz JSON in Redis (key per quiz) and falls back to a
// loader on cache miss. Quizzes are stored as: SET quiz:{quizID} {json} EX ttl.
type QuizRepository struct {
	client *redis.Client
	loader memory.QuizLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuizRepository(client *redis.Client, loader memory.QuizLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	if quiz, ok := r.cached(ctx, quizID); ok {
		return quiz, nil
	}

	result, err, _ := r.sf.Do(quizID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if quiz, ok := r.cached(ctx, quizID); ok {
			return quiz, nil
		}

		quiz, err := r.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}
		sortQuestions(&quiz)
		r.fill(ctx, quiz)
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (r *QuizRepository) SaveQuiz(ctx context.Context, quiz domain.Quiz) error {
	sortQuestions(&quiz)
	if err := r.loader.StoreQuiz(ctx, quiz); err != nil {
		return err
	}
	r.fill(ctx, quiz)
	return nil
}

// ListQuizzes always reads the backing store; the cache only serves the hot
// per-quiz lookups made by the live game.
func (r *QuizRepository) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	quizzes, err := r.loader.LoadQuizzes(ctx)
	if err != nil {
		return nil, err
	}
	for i := range quizzes {
		sortQuestions(&quizzes[i])
	}
	return quizzes, nil
}

func (r *QuizRepository) cached(ctx context.Context, quizID string) (domain.Quiz, bool) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	data, err := r.client.Get(ctx, r.key(quizID)).Bytes()
	if err != nil {
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(data, &quiz); err != nil {
		return domain.Quiz{}, false
	}
	return quiz, true
}

func (r *QuizRepository) fill(ctx context.Context, quiz domain.Quiz) {
	data, err := json.Marshal(quiz)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	_ = r.client.Set(ctx, r.key(quiz.QuizID), data, r.ttlWithJitter()).Err()
}

func (r *QuizRepository) key(quizID string) string {
	return "quiz:" + quizID
}

func sortQuestions(quiz *domain.Quiz) {
	sort.SliceStable(quiz.Questions, func(i, j int) bool {
		return quiz.Questions[i].Index < quiz.Questions[j].Index
	})
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"classquiz-service/internal/domain"
	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuizLoader loads quiz JSONB from Postgres. Transient failures are retried
// a bounded number of times before surfacing; not-found is never retried.
type QuizLoader struct {
	pool *pgxpool.Pool
}

func NewQuizLoader(pool *pgxpool.Pool) *QuizLoader {
	return &QuizLoader{pool: pool}
}

func (l *QuizLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var quiz domain.Quiz
	err := l.retry(ctx, func() error {
		var raw []byte
		if err := l.pool.QueryRow(ctx, `SELECT data FROM quizzes WHERE id=$1`, quizID).Scan(&raw); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return backoff.Permanent(domain.ErrQuizNotFound)
			}
			return fmt.Errorf("load quiz: %w", err)
		}
		if err := json.Unmarshal(raw, &quiz); err != nil {
			return backoff.Permanent(fmt.Errorf("unmarshal quiz: %w", err))
		}
		return nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

func (l *QuizLoader) StoreQuiz(ctx context.Context, quiz domain.Quiz) error {
	data, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}
	return l.retry(ctx, func() error {
		_, err := l.pool.Exec(ctx,
			`INSERT INTO quizzes (id, data) VALUES ($1, $2::jsonb)
			 ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`,
			quiz.QuizID, data)
		if err != nil {
			return fmt.Errorf("store quiz: %w", err)
		}
		return nil
	})
}

func (l *QuizLoader) LoadQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	var quizzes []domain.Quiz
	err := l.retry(ctx, func() error {
		rows, err := l.pool.Query(ctx, `SELECT data FROM quizzes ORDER BY id`)
		if err != nil {
			return fmt.Errorf("list quizzes: %w", err)
		}
		defer rows.Close()

		quizzes = quizzes[:0]
		for rows.Next() {
			var raw []byte
			if err := rows.Scan(&raw); err != nil {
				return fmt.Errorf("scan quiz: %w", err)
			}
			var quiz domain.Quiz
			if err := json.Unmarshal(raw, &quiz); err != nil {
				return backoff.Permanent(fmt.Errorf("unmarshal quiz: %w", err))
			}
			quizzes = append(quizzes, quiz)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (l *QuizLoader) retry(ctx context.Context, op func() error) error {
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	return backoff.Retry(op, policy)
}

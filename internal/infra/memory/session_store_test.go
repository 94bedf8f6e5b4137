package memory

import (
	"context"
	"testing"

	"classquiz-service/internal/app"
	"classquiz-service/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	if _, ok := store.Current(); ok {
		t.Fatalf("expected no session initially")
	}

	game := app.NewGame(domain.Quiz{QuizID: "quiz-1"})
	store.Put(ctx, game)
	current, ok := store.Current()
	if !ok || current != game {
		t.Fatalf("expected stored game back")
	}

	store.Clear(ctx)
	if _, ok := store.Current(); ok {
		t.Fatalf("expected session removed after clear")
	}
}

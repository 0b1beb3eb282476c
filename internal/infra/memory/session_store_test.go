package memory

import (
	"testing"
	"time"

	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()
	session := app.NewSession("s1", "general", "easy", []domain.PublicQuestion{
		{ID: "q1", Prompt: "First?", Options: []string{"A", "B"}},
	}, app.SessionConfig{TickInterval: time.Hour})

	store.Put(session)
	if got, ok := store.Get("s1"); !ok || got != session {
		t.Fatalf("expected stored session back, got %v %v", got, ok)
	}

	store.Delete("s1")
	if _, ok := store.Get("s1"); ok {
		t.Fatalf("expected session removed")
	}
}

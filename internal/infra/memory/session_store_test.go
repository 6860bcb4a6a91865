package memory

import (
	"math/rand"
	"testing"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()

	session, err := app.NewQuizSession([]domain.SampledQuestion{{
		RawQuestion: domain.RawQuestion{
			Text:          "q",
			CorrectAnswer: "a",
			Distractors:   []string{"b", "c", "d"},
		},
	}}, domain.ModeNormal, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	store.Put("client-1", session)
	if _, ok := store.Get("client-1"); !ok {
		t.Fatalf("expected session present")
	}

	store.Delete("client-1")
	if _, ok := store.Get("client-1"); ok {
		t.Fatalf("expected session removed")
	}
}

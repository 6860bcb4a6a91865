package memory

import (
	"context"
	"testing"

	"trivia-quiz-service/internal/domain"
)

func TestStatsStoreAggregates(t *testing.T) {
	store := NewStatsStore()
	ctx := context.Background()

	stat := domain.AnswerStat{
		CategoryID:    "history",
		SubcategoryID: "japan",
		QuestionText:  "q1",
	}
	stat.Correct = true
	_ = store.RecordAnswer(ctx, stat)
	stat.Correct = false
	_ = store.RecordAnswer(ctx, stat)
	_ = store.RecordAnswer(ctx, stat)

	stats, err := store.Stats(ctx, "history", "japan")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("expected 1 aggregated question, got %d", len(stats))
	}
	got := stats[0]
	if got.TotalAttempts != 3 || got.CorrectAttempts != 1 {
		t.Fatalf("expected 1/3 correct, got %d/%d", got.CorrectAttempts, got.TotalAttempts)
	}
	if got.CorrectPercent < 33.2 || got.CorrectPercent > 33.4 {
		t.Fatalf("expected about 33.3%%, got %f", got.CorrectPercent)
	}

	other, err := store.Stats(ctx, "history", "world")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected no stats for other subcategory, got %d", len(other))
	}
}

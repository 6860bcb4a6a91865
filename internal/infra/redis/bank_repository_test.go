package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/infra/memory"
)

func TestBankRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{
		BankLoader: memory.NewStaticBankLoader(sampleBank()),
	}
	repo := NewBankRepository(client, loader, time.Minute)

	bank, err := repo.GetBank(context.Background())
	if err != nil {
		t.Fatalf("get bank: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if len(bank.Categories) != 1 {
		t.Fatalf("expected 1 category, got %d", len(bank.Categories))
	}

	// Second call should hit cache, loader not incremented.
	bank, err = repo.GetBank(context.Background())
	if err != nil {
		t.Fatalf("get bank 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	sub := bank.Categories["history"].Subcategories["japan"]
	if len(sub.Questions) != 1 {
		t.Fatalf("cached bank lost questions: %+v", sub)
	}
}

type countingLoader struct {
	memory.BankLoader
	calls int
}

func (l *countingLoader) LoadBank(ctx context.Context) (domain.QuestionBank, error) {
	l.calls++
	return l.BankLoader.LoadBank(ctx)
}

func sampleBank() domain.QuestionBank {
	return domain.QuestionBank{Categories: map[string]domain.Category{
		"history": {
			ID:   "history",
			Name: "History",
			Subcategories: map[string]domain.Subcategory{
				"japan": {
					ID:   "japan",
					Name: "Japanese History",
					Questions: []domain.RawQuestion{
						{
							Text:          "In which year did the Edo period begin?",
							CorrectAnswer: "1603",
							Distractors:   []string{"1590", "1600", "1615"},
						},
					},
				},
			},
		},
	}}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}

package memory

import (
	"context"
	"sort"
	"sync"

	"trivia-quiz-service/internal/domain"
)

// StatsStore aggregates answer outcomes in memory, keyed by
// (category, subcategory, question text) like the relational store.
type StatsStore struct {
	mu    sync.Mutex
	stats map[statKey]*counts
}

type statKey struct {
	categoryID    string
	subcategoryID string
	questionText  string
}

type counts struct {
	total   int
	correct int
}

func NewStatsStore() *StatsStore {
	return &StatsStore{stats: make(map[statKey]*counts)}
}

func (s *StatsStore) RecordAnswer(_ context.Context, stat domain.AnswerStat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := statKey{stat.CategoryID, stat.SubcategoryID, stat.QuestionText}
	c, ok := s.stats[key]
	if !ok {
		c = &counts{}
		s.stats[key] = c
	}
	c.total++
	if stat.Correct {
		c.correct++
	}
	return nil
}

func (s *StatsStore) Stats(_ context.Context, categoryID, subcategoryID string) ([]domain.QuestionStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.QuestionStat
	for key, c := range s.stats {
		if categoryID != "" && key.categoryID != categoryID {
			continue
		}
		if subcategoryID != "" && key.subcategoryID != subcategoryID {
			continue
		}
		out = append(out, domain.QuestionStat{
			QuestionText:    key.questionText,
			TotalAttempts:   c.total,
			CorrectAttempts: c.correct,
			CorrectPercent:  percent(c.correct, c.total),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionText < out[j].QuestionText })
	return out, nil
}

func percent(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

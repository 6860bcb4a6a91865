package memory

import (
	"context"
	"sort"
	"sync"

	"trivia-quiz-service/internal/domain"
)

const leaderboardLimit = 20

// ScoreStore keeps submitted scores in memory for backend-less runs.
type ScoreStore struct {
	mu      sync.RWMutex
	records []domain.ScoreRecord
}

func NewScoreStore() *ScoreStore {
	return &ScoreStore{}
}

func (s *ScoreStore) SaveScore(_ context.Context, record domain.ScoreRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

// Leaderboard returns the top entries for the scope, best score first and
// newest first among ties.
func (s *ScoreStore) Leaderboard(_ context.Context, filter domain.ScoreFilter) ([]domain.ScoreRecord, error) {
	s.mu.RLock()
	matched := make([]domain.ScoreRecord, 0, len(s.records))
	for _, r := range s.records {
		if matches(r, filter) {
			matched = append(matched, r)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Score != matched[j].Score {
			return matched[i].Score > matched[j].Score
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if len(matched) > leaderboardLimit {
		matched = matched[:leaderboardLimit]
	}
	return matched, nil
}

func matches(r domain.ScoreRecord, filter domain.ScoreFilter) bool {
	if filter.Mode != "" && r.Mode != filter.Mode {
		return false
	}
	if filter.CategoryID != "" && r.CategoryID != filter.CategoryID {
		return false
	}
	if filter.SubcategoryID != "" && r.SubcategoryID != filter.SubcategoryID {
		return false
	}
	return true
}

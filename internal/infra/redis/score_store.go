package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"trivia-quiz-service/internal/domain"
)

const leaderboardLimit = 20

// ScoreStore keeps one sorted set per scope, scored by points with the
// marshaled record as member. Fetching reads the top slice and re-sorts
// ties newest-first in process (Redis orders equal scores lexically).
type ScoreStore struct {
	client *redis.Client
}

func NewScoreStore(client *redis.Client) *ScoreStore {
	return &ScoreStore{client: client}
}

func (s *ScoreStore) SaveScore(ctx context.Context, record domain.ScoreRecord) error {
	member, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal score: %w", err)
	}
	err = s.client.ZAdd(ctx, s.key(domain.ScoreFilter{
		Mode:          record.Mode,
		CategoryID:    record.CategoryID,
		SubcategoryID: record.SubcategoryID,
	}), redis.Z{
		Score:  float64(record.Score),
		Member: member,
	}).Err()
	if err != nil {
		return fmt.Errorf("save score: %w", err)
	}
	return nil
}

func (s *ScoreStore) Leaderboard(ctx context.Context, filter domain.ScoreFilter) ([]domain.ScoreRecord, error) {
	members, err := s.client.ZRevRange(ctx, s.key(filter), 0, leaderboardLimit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch leaderboard: %w", err)
	}

	records := make([]domain.ScoreRecord, 0, len(members))
	for _, m := range members {
		var record domain.ScoreRecord
		if err := json.Unmarshal([]byte(m), &record); err != nil {
			continue // skip unreadable legacy entries
		}
		records = append(records, record)
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Score != records[j].Score {
			return records[i].Score > records[j].Score
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

func (s *ScoreStore) key(filter domain.ScoreFilter) string {
	return fmt.Sprintf("quiz:scores:%s:%s:%s", filter.Mode, filter.CategoryID, filter.SubcategoryID)
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"trivia-quiz-service/internal/domain"
)

// StatsStore upserts per-question answer aggregates, keyed by
// (category, subcategory, question text).
type StatsStore struct {
	pool *pgxpool.Pool
}

func NewStatsStore(pool *pgxpool.Pool) *StatsStore {
	return &StatsStore{pool: pool}
}

func (s *StatsStore) RecordAnswer(ctx context.Context, stat domain.AnswerStat) error {
	correct := 0
	if stat.Correct {
		correct = 1
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO answer_stats (category_id, subcategory_id, question_text, total_attempts, correct_attempts)
		VALUES ($1, $2, $3, 1, $4)
		ON CONFLICT (category_id, subcategory_id, question_text) DO UPDATE SET
			total_attempts = answer_stats.total_attempts + 1,
			correct_attempts = answer_stats.correct_attempts + $4,
			last_answered = now()`,
		stat.CategoryID, stat.SubcategoryID, stat.QuestionText, correct,
	)
	if err != nil {
		return fmt.Errorf("record answer stat: %w", err)
	}
	return nil
}

func (s *StatsStore) Stats(ctx context.Context, categoryID, subcategoryID string) ([]domain.QuestionStat, error) {
	query := `
		SELECT question_text, total_attempts, correct_attempts,
		       ROUND(correct_attempts::numeric / total_attempts * 100, 1)
		FROM answer_stats`
	var args []interface{}

	if categoryID != "" {
		args = append(args, categoryID)
		query += fmt.Sprintf(" WHERE category_id = $%d", len(args))
		if subcategoryID != "" {
			args = append(args, subcategoryID)
			query += fmt.Sprintf(" AND subcategory_id = $%d", len(args))
		}
	}
	query += " ORDER BY last_answered DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch answer stats: %w", err)
	}
	defer rows.Close()

	var stats []domain.QuestionStat
	for rows.Next() {
		var st domain.QuestionStat
		if err := rows.Scan(&st.QuestionText, &st.TotalAttempts, &st.CorrectAttempts, &st.CorrectPercent); err != nil {
			return nil, fmt.Errorf("scan answer stat: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

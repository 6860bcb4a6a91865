package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"trivia-quiz-service/internal/domain"
)

const leaderboardLimit = 20

// ScoreStore persists finished-session scores in the rankings table.
type ScoreStore struct {
	pool *pgxpool.Pool
}

func NewScoreStore(pool *pgxpool.Pool) *ScoreStore {
	return &ScoreStore{pool: pool}
}

func (s *ScoreStore) SaveScore(ctx context.Context, record domain.ScoreRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO rankings
			(name, score, total_questions, mode, category_id, category_name,
			 subcategory_id, subcategory_name, is_quiz_king, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		record.PlayerName, record.Score, record.QuestionCount, string(record.Mode),
		record.CategoryID, record.CategoryName,
		record.SubcategoryID, record.SubcategoryName,
		record.IsQuizKing(), record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save score: %w", err)
	}
	return nil
}

// Leaderboard returns the top scores for the scope, best score first and
// newest first among ties.
func (s *ScoreStore) Leaderboard(ctx context.Context, filter domain.ScoreFilter) ([]domain.ScoreRecord, error) {
	query := `
		SELECT name, score, total_questions, mode, category_id, category_name,
		       subcategory_id, subcategory_name, created_at
		FROM rankings
		WHERE mode = $1`
	args := []interface{}{string(filter.Mode)}

	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		query += fmt.Sprintf(" AND category_id = $%d", len(args))
	}
	if filter.SubcategoryID != "" {
		args = append(args, filter.SubcategoryID)
		query += fmt.Sprintf(" AND subcategory_id = $%d", len(args))
	}
	query += fmt.Sprintf(" ORDER BY score DESC, created_at DESC LIMIT %d", leaderboardLimit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch leaderboard: %w", err)
	}
	defer rows.Close()

	var records []domain.ScoreRecord
	for rows.Next() {
		var r domain.ScoreRecord
		var mode string
		if err := rows.Scan(
			&r.PlayerName, &r.Score, &r.QuestionCount, &mode,
			&r.CategoryID, &r.CategoryName,
			&r.SubcategoryID, &r.SubcategoryName, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan ranking: %w", err)
		}
		r.Mode = domain.Mode(mode)
		records = append(records, r)
	}
	return records, rows.Err()
}

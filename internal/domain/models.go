package domain

import "time"

// QuestionBank is the full two-level topic hierarchy, keyed by category ID.
type QuestionBank struct {
	Categories map[string]Category `json:"categories"`
}

// Category groups subcategories under a display name.
type Category struct {
	ID            string                 `json:"id"`
	Name          string                 `json:"name"`
	Subcategories map[string]Subcategory `json:"subcategories"`
}

// Subcategory holds the raw question pool for one topic.
type Subcategory struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Questions []RawQuestion `json:"questions"`
}

// RawQuestion is an authored question before sampling: one correct answer
// plus exactly three distractors.
type RawQuestion struct {
	Text          string   `json:"question"`
	CorrectAnswer string   `json:"correct"`
	Distractors   []string `json:"distractors"`
}

// Valid reports whether the question can be presented as a 4-option MCQ.
// Malformed entries are excluded from sampling, never a hard failure.
func (q RawQuestion) Valid() bool {
	if q.Text == "" || q.CorrectAnswer == "" || len(q.Distractors) != 3 {
		return false
	}
	seen := map[string]bool{q.CorrectAnswer: true}
	for _, d := range q.Distractors {
		if d == "" || seen[d] {
			return false
		}
		seen[d] = true
	}
	return true
}

// SampledQuestion is a RawQuestion enriched with its provenance. Immutable
// once a session is built; presentation options are derived separately.
type SampledQuestion struct {
	RawQuestion
	CategoryID      string `json:"categoryId"`
	CategoryName    string `json:"categoryName"`
	SubcategoryID   string `json:"subcategoryId"`
	SubcategoryName string `json:"subcategoryName"`
}

// Option is one presented answer choice. Exactly one option per question
// carries Correct=true.
type Option struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Feedback is the outcome of exactly one answer or timeout per question.
// SelectedAnswer is nil exactly when the question timed out unanswered.
type Feedback struct {
	IsCorrect      bool    `json:"isCorrect"`
	SelectedAnswer *string `json:"selectedAnswer"`
	CorrectAnswer  string  `json:"correctAnswer"`
}

// Mode identifies the sampling scope of a session.
type Mode string

const (
	// ModeNormal samples one subcategory (10 questions).
	ModeNormal Mode = "normal"
	// ModeCategoryKing samples one category across its subcategories (20 questions).
	ModeCategoryKing Mode = "categoryKing"
	// ModeQuizKing samples the entire bank (30 questions).
	ModeQuizKing Mode = "quizKing"
)

// QuestionCount returns the target sample size for the mode.
func (m Mode) QuestionCount() int {
	switch m {
	case ModeCategoryKing:
		return 20
	case ModeQuizKing:
		return 30
	default:
		return 10
	}
}

// ScoreRecord is what a finished session hands to the leaderboard store.
type ScoreRecord struct {
	PlayerName      string    `json:"name"`
	Score           int       `json:"score"`
	QuestionCount   int       `json:"totalQuestions"`
	Mode            Mode      `json:"mode"`
	CategoryID      string    `json:"categoryId,omitempty"`
	CategoryName    string    `json:"categoryName,omitempty"`
	SubcategoryID   string    `json:"subcategoryId,omitempty"`
	SubcategoryName string    `json:"subcategoryName,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// IsQuizKing reports whether the record qualifies for the quiz-king board:
// 25 or more correct out of a full 30-question run.
func (r ScoreRecord) IsQuizKing() bool {
	return r.Mode == ModeQuizKing && r.QuestionCount == 30 && r.Score >= 25
}

// ScoreFilter scopes a leaderboard query.
type ScoreFilter struct {
	Mode          Mode   `json:"mode"`
	CategoryID    string `json:"categoryId,omitempty"`
	SubcategoryID string `json:"subcategoryId,omitempty"`
}

// AnswerStat is the best-effort per-answer signal recorded after each
// submit or timeout.
type AnswerStat struct {
	CategoryID    string `json:"categoryId"`
	SubcategoryID string `json:"subcategoryId"`
	QuestionText  string `json:"question"`
	Correct       bool   `json:"correct"`
}

// QuestionStat is an aggregated view of how a question has been answered.
type QuestionStat struct {
	QuestionText    string  `json:"question"`
	TotalAttempts   int     `json:"totalAttempts"`
	CorrectAttempts int     `json:"correctAttempts"`
	CorrectPercent  float64 `json:"correctPercentage"`
}

package app

import (
	"context"
	"log"
	"math/rand"
	"time"

	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/sampler"
)

// SessionRepository abstracts how active quiz sessions are stored per
// client (in-memory, Redis-backed, etc).
type SessionRepository interface {
	Put(clientID string, session *QuizSession)
	Get(clientID string) (*QuizSession, bool)
	Delete(clientID string)
}

// BankRepository loads the question bank (from cache/backing store).
type BankRepository interface {
	GetBank(ctx context.Context) (domain.QuestionBank, error)
}

// ScoreStore persists finished-session scores and serves the leaderboard.
type ScoreStore interface {
	SaveScore(ctx context.Context, record domain.ScoreRecord) error
	Leaderboard(ctx context.Context, filter domain.ScoreFilter) ([]domain.ScoreRecord, error)
}

// AnswerStatsStore aggregates per-question answer outcomes. Recording is
// best-effort; a failing store never disturbs the quiz flow.
type AnswerStatsStore interface {
	RecordAnswer(ctx context.Context, stat domain.AnswerStat) error
	Stats(ctx context.Context, categoryID, subcategoryID string) ([]domain.QuestionStat, error)
}

// QuizService contains the quiz use cases: starting a session for a
// scope, driving the answer/timeout/advance lifecycle, and the terminal
// score submission.
type QuizService struct {
	sessions SessionRepository
	bank     BankRepository
	scores   ScoreStore
	stats    AnswerStatsStore
	newRNG   func() *rand.Rand
	now      func() time.Time

	allowDuplicates bool
}

func NewQuizService(sessions SessionRepository, bank BankRepository, scores ScoreStore, stats AnswerStatsStore) *QuizService {
	return &QuizService{
		sessions: sessions,
		bank:     bank,
		scores:   scores,
		stats:    stats,
		newRNG: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
		now: time.Now,
	}
}

// SetAllowDuplicates enables the duplicate-tolerant sampler backfill for
// scopes whose valid pool is smaller than the requested count.
func (s *QuizService) SetAllowDuplicates(allow bool) {
	s.allowDuplicates = allow
}

// WithClock is test-only for deterministic timestamps and shuffles.
func (s *QuizService) WithClock(now func() time.Time, newRNG func() *rand.Rand) *QuizService {
	s.now = now
	s.newRNG = newRNG
	return s
}

// Start samples a question set for the requested scope and opens a fresh
// session for the client, replacing any previous one. A scope with no
// valid questions surfaces domain.ErrNoQuestions for the caller to render
// as a "no questions" state.
func (s *QuizService) Start(ctx context.Context, clientID string, mode domain.Mode, categoryID, subcategoryID string) (*QuizSession, error) {
	bank, err := s.bank.GetBank(ctx)
	if err != nil {
		return nil, err
	}

	rng := s.newRNG()
	smp := sampler.New(rng)
	smp.AllowDuplicates = s.allowDuplicates

	var questions []domain.SampledQuestion
	switch mode {
	case domain.ModeQuizKing:
		questions, err = smp.All(bank, mode.QuestionCount())
	case domain.ModeCategoryKing:
		questions, err = smp.Category(bank, categoryID, mode.QuestionCount())
	default:
		mode = domain.ModeNormal
		questions, err = smp.Subcategory(bank, categoryID, subcategoryID, mode.QuestionCount())
	}
	if err != nil {
		return nil, err
	}

	session, err := NewQuizSession(questions, mode, rng)
	if err != nil {
		return nil, err
	}
	s.sessions.Put(clientID, session)
	return session, nil
}

// Session returns the client's active session.
func (s *QuizService) Session(clientID string) (*QuizSession, error) {
	session, ok := s.sessions.Get(clientID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Submit records the client's answer for the current question and logs
// the outcome to the answer-stats store.
func (s *QuizService) Submit(ctx context.Context, clientID, selected string) (domain.Feedback, error) {
	session, err := s.Session(clientID)
	if err != nil {
		return domain.Feedback{}, err
	}
	question, _, _, _ := session.Current()
	fb, err := session.Submit(selected)
	if err != nil {
		return domain.Feedback{}, err
	}
	s.recordStat(ctx, question, fb.IsCorrect)
	return fb, nil
}

// Timeout scores the current question as unanswered after countdown
// expiry. Firing against an already-answered question is a no-op error
// the caller can ignore.
func (s *QuizService) Timeout(ctx context.Context, clientID string) (domain.Feedback, error) {
	session, err := s.Session(clientID)
	if err != nil {
		return domain.Feedback{}, err
	}
	question, _, _, _ := session.Current()
	fb, err := session.Timeout()
	if err != nil {
		return domain.Feedback{}, err
	}
	s.recordStat(ctx, question, false)
	return fb, nil
}

// Advance moves the client's session to the next question or finishes it.
func (s *QuizService) Advance(clientID string) (Phase, error) {
	session, err := s.Session(clientID)
	if err != nil {
		return "", err
	}
	return session.Advance()
}

// SubmitScore persists the finished session's score. The session itself
// is untouched, so a failed submission can simply be retried.
func (s *QuizService) SubmitScore(ctx context.Context, clientID, playerName string) (domain.ScoreRecord, error) {
	session, err := s.Session(clientID)
	if err != nil {
		return domain.ScoreRecord{}, err
	}
	if session.Phase() != PhaseFinished {
		return domain.ScoreRecord{}, domain.ErrSessionNotFinished
	}
	if playerName == "" {
		playerName = "anonymous"
	}
	record := session.ScoreRecord(playerName, s.now())
	if err := s.scores.SaveScore(ctx, record); err != nil {
		return domain.ScoreRecord{}, err
	}
	return record, nil
}

// Leaderboard is a pass-through query against the score store.
func (s *QuizService) Leaderboard(ctx context.Context, filter domain.ScoreFilter) ([]domain.ScoreRecord, error) {
	return s.scores.Leaderboard(ctx, filter)
}

// QuestionStats exposes the aggregated answer statistics for a scope.
func (s *QuizService) QuestionStats(ctx context.Context, categoryID, subcategoryID string) ([]domain.QuestionStat, error) {
	return s.stats.Stats(ctx, categoryID, subcategoryID)
}

// Leave discards the client's session, e.g. on disconnect or when the
// player abandons a quiz mid-run.
func (s *QuizService) Leave(clientID string) {
	s.sessions.Delete(clientID)
}

func (s *QuizService) recordStat(ctx context.Context, question domain.SampledQuestion, correct bool) {
	if s.stats == nil {
		return
	}
	stat := domain.AnswerStat{
		CategoryID:    question.CategoryID,
		SubcategoryID: question.SubcategoryID,
		QuestionText:  question.Text,
		Correct:       correct,
	}
	if err := s.stats.RecordAnswer(ctx, stat); err != nil {
		log.Printf("record answer stat: %v", err)
	}
}

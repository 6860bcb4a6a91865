package app

import (
	"math/rand"
	"sync"
	"time"

	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/sampler"
)

// Phase tags the lifecycle of a quiz session. Scope selection happens
// before a session exists, so the service only ever owns these two.
type Phase string

const (
	PhaseInProgress Phase = "inProgress"
	PhaseFinished   Phase = "finished"
)

// QuizSession progresses through a fixed, pre-shuffled question list:
// one scored answer (or timeout) per question, then an explicit advance.
// The question list never changes after construction; only the cursor,
// score, and per-question presentation state do.
type QuizSession struct {
	mu        sync.Mutex
	questions []domain.SampledQuestion
	mode      domain.Mode
	rng       *rand.Rand

	index    int
	score    int
	answered bool
	feedback *domain.Feedback
	options  []domain.Option
	phase    Phase
}

// NewQuizSession builds a session over a non-empty sampled question list.
func NewQuizSession(questions []domain.SampledQuestion, mode domain.Mode, rng *rand.Rand) (*QuizSession, error) {
	if len(questions) == 0 {
		return nil, domain.ErrNoQuestions
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s := &QuizSession{
		questions: questions,
		mode:      mode,
		rng:       rng,
		phase:     PhaseInProgress,
	}
	s.options = sampler.Options(s.questions[0], s.rng)
	return s, nil
}

// Current returns the presentation state of the current question.
func (s *QuizSession) Current() (domain.SampledQuestion, []domain.Option, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	opts := make([]domain.Option, len(s.options))
	copy(opts, s.options)
	return s.questions[s.index], opts, s.index, len(s.questions)
}

// Submit records the player's answer for the current question. A second
// submit on the same question returns ErrAlreadyAnswered and changes
// nothing; the first feedback stands.
func (s *QuizSession) Submit(selected string) (domain.Feedback, error) {
	return s.record(&selected)
}

// Timeout scores the current question as unanswered. It runs through the
// same single-answer guard as Submit, so a stale countdown firing after
// the player answered is a no-op.
func (s *QuizSession) Timeout() (domain.Feedback, error) {
	return s.record(nil)
}

func (s *QuizSession) record(selected *string) (domain.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseFinished {
		return domain.Feedback{}, domain.ErrSessionFinished
	}
	if s.answered {
		return domain.Feedback{}, domain.ErrAlreadyAnswered
	}

	question := s.questions[s.index]
	correct := selected != nil && *selected == question.CorrectAnswer
	if correct {
		s.score++
	}
	s.answered = true
	fb := domain.Feedback{
		IsCorrect:      correct,
		SelectedAnswer: selected,
		CorrectAnswer:  question.CorrectAnswer,
	}
	s.feedback = &fb
	return fb, nil
}

// Advance moves to the next question, or into the Finished phase after
// the last one. Calling it before the current question has been answered
// or timed out is a contract violation and returns ErrNotAnswered.
func (s *QuizSession) Advance() (Phase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseFinished {
		return PhaseFinished, domain.ErrSessionFinished
	}
	if !s.answered {
		return s.phase, domain.ErrNotAnswered
	}

	if s.index+1 < len(s.questions) {
		s.index++
		s.answered = false
		s.feedback = nil
		s.options = sampler.Options(s.questions[s.index], s.rng)
		return s.phase, nil
	}
	s.phase = PhaseFinished
	return s.phase, nil
}

// Phase reports the session's lifecycle tag.
func (s *QuizSession) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Score returns the running score and total question count.
func (s *QuizSession) Score() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score, len(s.questions)
}

// Mode returns the sampling scope this session was built from.
func (s *QuizSession) Mode() domain.Mode {
	return s.mode
}

// ScoreRecord snapshots a finished session for the leaderboard, scoped by
// the first question's provenance (all questions in normal and category
// modes share it).
func (s *QuizSession) ScoreRecord(playerName string, now time.Time) domain.ScoreRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := domain.ScoreRecord{
		PlayerName:    playerName,
		Score:         s.score,
		QuestionCount: len(s.questions),
		Mode:          s.mode,
		CreatedAt:     now,
	}
	first := s.questions[0]
	switch s.mode {
	case domain.ModeNormal:
		record.CategoryID = first.CategoryID
		record.CategoryName = first.CategoryName
		record.SubcategoryID = first.SubcategoryID
		record.SubcategoryName = first.SubcategoryName
	case domain.ModeCategoryKing:
		record.CategoryID = first.CategoryID
		record.CategoryName = first.CategoryName
	}
	return record
}

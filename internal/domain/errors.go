package domain

import "errors"

var (
	// ErrNoQuestions is returned when a sampling scope has zero valid questions.
	ErrNoQuestions = errors.New("no questions available")
	// ErrBankNotFound indicates the question bank could not be loaded.
	ErrBankNotFound = errors.New("question bank not found")
	// ErrCategoryNotFound indicates an unknown category ID.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrSubcategoryNotFound indicates an unknown subcategory ID.
	ErrSubcategoryNotFound = errors.New("subcategory not found")
	// ErrSessionNotFound is returned when a client acts without an active session.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionFinished is returned for question operations on a finished session.
	ErrSessionFinished = errors.New("quiz session already finished")
	// ErrSessionNotFinished is returned when a score is submitted mid-run.
	ErrSessionNotFinished = errors.New("quiz session not finished")
	// ErrAlreadyAnswered guards the at-most-one-answer-per-question rule.
	ErrAlreadyAnswered = errors.New("current question already answered")
	// ErrNotAnswered is returned when advancing before an answer or timeout.
	ErrNotAnswered = errors.New("current question not answered yet")
)

package domain

import "errors"

var (
	// ErrSessionNotFound is returned when an eligibility session has not been started or has expired.
	ErrSessionNotFound = errors.New("session not found")
	// ErrQuestionNotFound indicates a submitted question ID is not part of the catalog.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrUnexpectedQuestion is returned when an answer targets a question other than the current one.
	ErrUnexpectedQuestion = errors.New("question is not the current question")
	// ErrInvalidAnswer indicates the submitted value cannot be coerced to the question's answer kind.
	ErrInvalidAnswer = errors.New("invalid answer")
	// ErrFlowComplete is returned when answers are submitted after the questionnaire finished.
	ErrFlowComplete = errors.New("questionnaire already complete")
	// ErrCatalogMalformed reports a static catalog definition that fails validation.
	ErrCatalogMalformed = errors.New("question catalog malformed")
	// ErrSchemeNotFound indicates a scheme lookup by name failed.
	ErrSchemeNotFound = errors.New("scheme not found")
)

package services

import "errors"

var (
	// ErrPipelineBusy is returned when a run is already in flight.
	ErrPipelineBusy = errors.New("a study set is already being generated")

	// ErrGeneration wraps failures of the generative-AI service.
	ErrGeneration = errors.New("generation failed")

	// ErrCancelled marks a run aborted through Cancel.
	ErrCancelled = errors.New("generation cancelled")

	ErrInvalidInput = errors.New("invalid input")
	ErrEmptyMessage = errors.New("message is empty")
)

package domain

import "errors"

var (
	// ErrMandatorySource is returned when the orders table cannot be read.
	ErrMandatorySource = errors.New("mandatory source unavailable")
	// ErrSourceNotFound is returned by table sources for absent files.
	ErrSourceNotFound = errors.New("source not found")
	// ErrModelNotFound is returned by model stores with no persisted parameters.
	ErrModelNotFound = errors.New("model parameters not found")
	// ErrInsufficientData is returned when there are too few rows to fit.
	ErrInsufficientData = errors.New("insufficient training data")
	// ErrElaborationUnavailable marks any failure of the remote elaborator.
	ErrElaborationUnavailable = errors.New("elaboration service unavailable")
)

package models

import "errors"

// Sentinel errors surfaced to API callers. Everything else degrades to the
// fallback path or to partial results instead of failing the operation.
var (
	ErrJobNotFound         = errors.New("job profile not found")
	ErrCandidateNotFound   = errors.New("candidate profile not found")
	ErrMatchResultNotFound = errors.New("match result not found")
	ErrQueueNotFound       = errors.New("processing queue not found")
	ErrInvalidFeedback     = errors.New("invalid feedback type")
)

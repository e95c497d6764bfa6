package domain

import (
	"errors"
	"time"
)

// ErrorKind mirrors the error taxonomy for triage.
type ErrorKind string

const (
	ErrorKindValidation   ErrorKind = "validation"
	ErrorKindNotFound     ErrorKind = "not_found"
	ErrorKindUnauthorized ErrorKind = "unauthorized"
	ErrorKindConflict     ErrorKind = "conflict"
	ErrorKindUpstream     ErrorKind = "upstream"
	ErrorKindPersistence  ErrorKind = "persistence"
	ErrorKindInternal     ErrorKind = "internal"
)

// ErrorKindOf classifies err against the sentinel taxonomy.
func ErrorKindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrorKindInternal
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, ErrSchemaInvalid):
		return ErrorKindValidation
	case errors.Is(err, ErrNotFound):
		return ErrorKindNotFound
	case errors.Is(err, ErrUnauthorized):
		return ErrorKindUnauthorized
	case errors.Is(err, ErrConflict):
		return ErrorKindConflict
	case errors.Is(err, ErrUpstreamTimeout), errors.Is(err, ErrUpstreamRateLimit), errors.Is(err, ErrRateLimited):
		return ErrorKindUpstream
	default:
		return ErrorKindInternal
	}
}

// ErrorLogEntry is append-only; resolution is the only mutation.
type ErrorLogEntry struct {
	ID              string
	Source          string
	Kind            ErrorKind
	Message         string
	Stack           string
	InterviewID     string
	CandidateID     string
	CreatedAt       time.Time
	ResolvedAt      *time.Time
	ResolutionNotes string
}

package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorConstants(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"ErrInvalidArgument", ErrInvalidArgument, "invalid argument"},
		{"ErrNotFound", ErrNotFound, "not found"},
		{"ErrConflict", ErrConflict, "conflict"},
		{"ErrUnauthorized", ErrUnauthorized, "unauthorized"},
		{"ErrRateLimited", ErrRateLimited, "rate limited"},
		{"ErrUpstreamTimeout", ErrUpstreamTimeout, "upstream timeout"},
		{"ErrUpstreamRateLimit", ErrUpstreamRateLimit, "upstream rate limit"},
		{"ErrSchemaInvalid", ErrSchemaInvalid, "schema invalid"},
		{"ErrInternal", ErrInternal, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.expected {
				t.Errorf("Expected %s to be %q, got %q", tt.name, tt.expected, tt.err.Error())
			}
		})
	}
}

func TestErrorIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		target   error
		expected bool
	}{
		{"ErrInvalidArgument is ErrInvalidArgument", ErrInvalidArgument, ErrInvalidArgument, true},
		{"wrapped ErrNotFound", fmt.Errorf("op=interview.get: %w", ErrNotFound), ErrNotFound, true},
		{"ErrInvalidArgument is not ErrNotFound", ErrInvalidArgument, ErrNotFound, false},
		{"ErrNotFound is not ErrConflict", ErrNotFound, ErrConflict, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if errors.Is(tt.err, tt.target) != tt.expected {
				t.Errorf("Expected errors.Is(%v, %v) to be %v, got %v", tt.err, tt.target, tt.expected, !tt.expected)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()
	assert.True(t, IsRetryable(fmt.Errorf("op=ai.chat: %w", ErrUpstreamTimeout)))
	assert.True(t, IsRetryable(ErrUpstreamRateLimit))
	assert.True(t, IsRetryable(ErrRateLimited))
	assert.False(t, IsRetryable(ErrSchemaInvalid))
	assert.False(t, IsRetryable(nil))
}

func TestErrorKindOf(t *testing.T) {
	t.Parallel()
	assert.Equal(t, ErrorKindValidation, ErrorKindOf(fmt.Errorf("x: %w", ErrInvalidArgument)))
	assert.Equal(t, ErrorKindValidation, ErrorKindOf(ErrSchemaInvalid))
	assert.Equal(t, ErrorKindNotFound, ErrorKindOf(ErrNotFound))
	assert.Equal(t, ErrorKindUnauthorized, ErrorKindOf(ErrUnauthorized))
	assert.Equal(t, ErrorKindUpstream, ErrorKindOf(ErrUpstreamTimeout))
	assert.Equal(t, ErrorKindInternal, ErrorKindOf(errors.New("boom")))
}

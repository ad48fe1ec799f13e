package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_Error(t *testing.T) {
	err := ErrState(CodeStateCorrupt, "failed to load workflow state")
	assert.Equal(t, "[state] STATE_CORRUPT: failed to load workflow state", err.Error())

	withCause := ErrState(CodeStateCorrupt, "failed to load workflow state").
		WithCause(errors.New("unexpected end of JSON input"))
	assert.Contains(t, withCause.Error(), "unexpected end of JSON input")
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := ErrMigration(CodeMigrationStepFailed, "step failed").WithCause(cause)

	assert.ErrorIs(t, err, cause)
}

func TestDomainError_Is(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", ErrChecksum(CodeMissingChecksumData, "no checksums"))

	assert.ErrorIs(t, err, ErrChecksum(CodeMissingChecksumData, "different message"))
	assert.NotErrorIs(t, err, ErrState(CodeStateCorrupt, "no checksums"))
}

func TestSuggestionFor(t *testing.T) {
	err := ErrChecksum(CodeMissingChecksumData, "no checksums").
		WithSuggestion("re-run `docimp analyze`")

	assert.Equal(t, "re-run `docimp analyze`", SuggestionFor(err))
	assert.Equal(t, "re-run `docimp analyze`", SuggestionFor(fmt.Errorf("outer: %w", err)))
	assert.Empty(t, SuggestionFor(errors.New("plain")))
}

func TestGetCategory(t *testing.T) {
	assert.Equal(t, ErrCatValidation, GetCategory(ErrValidation(CodeInvalidConfig, "bad")))
	assert.Equal(t, ErrCatInternal, GetCategory(errors.New("plain")))
	assert.True(t, IsCategory(ErrNotFound("artifact", "plan.json"), ErrCatNotFound))
}

func TestWithDetail(t *testing.T) {
	err := ErrMigration(CodeMigrationStepFailed, "step failed").
		WithDetail("step", "1.0->1.1")

	var domErr *DomainError
	require.True(t, errors.As(err, &domErr))
	assert.Equal(t, "1.0->1.1", domErr.Details["step"])
}

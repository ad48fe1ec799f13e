package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docimp/docimp/internal/core"
)

func cs(checksums map[string]string) *core.CommandState {
	return core.NewCommandState(len(checksums), checksums)
}

func TestCompareFileChecksums_NoChanges(t *testing.T) {
	newer := cs(map[string]string{"a.ts": "abc", "b.ts": "def"})
	older := cs(map[string]string{"a.ts": "abc", "b.ts": "def"})

	diff, err := CompareFileChecksums(newer, older, core.StageAnalyze, core.StageAudit)
	require.NoError(t, err)
	assert.False(t, diff.HasChanges)
	assert.Zero(t, diff.ChangedCount)
}

func TestCompareFileChecksums_AddedAndRemoved(t *testing.T) {
	newer := cs(map[string]string{"a.ts": "abc", "b.ts": "def"})
	older := cs(map[string]string{"a.ts": "abc", "c.ts": "zzz"})

	diff, err := CompareFileChecksums(newer, older, core.StageAnalyze, core.StagePlan)
	require.NoError(t, err)
	assert.True(t, diff.HasChanges)
	assert.Equal(t, 2, diff.ChangedCount, "b.ts added, c.ts removed")
}

func TestCompareFileChecksums_Modified(t *testing.T) {
	newer := cs(map[string]string{"a.ts": "v2"})
	older := cs(map[string]string{"a.ts": "v1"})

	diff, err := CompareFileChecksums(newer, older, core.StageAnalyze, core.StageAudit)
	require.NoError(t, err)
	assert.Equal(t, 1, diff.ChangedCount)
}

func TestCompareFileChecksums_CountSymmetric(t *testing.T) {
	a := cs(map[string]string{"a.ts": "abc", "b.ts": "def", "d.ts": "v1"})
	b := cs(map[string]string{"a.ts": "abc", "c.ts": "zzz", "d.ts": "v2"})

	forward, err := CompareFileChecksums(a, b, core.StageAnalyze, core.StageAudit)
	require.NoError(t, err)
	backward, err := CompareFileChecksums(b, a, core.StageAnalyze, core.StageAudit)
	require.NoError(t, err)

	assert.Equal(t, forward.ChangedCount, backward.ChangedCount)
	assert.Equal(t, forward.HasChanges, backward.HasChanges)
}

func TestCompareFileChecksums_EmptyMapsAreValid(t *testing.T) {
	diff, err := CompareFileChecksums(cs(map[string]string{}), cs(map[string]string{}),
		core.StageAnalyze, core.StageAudit)
	require.NoError(t, err)
	assert.False(t, diff.HasChanges)
}

func TestCompareFileChecksums_MissingNewerSide(t *testing.T) {
	legacy := &core.CommandState{ItemCount: 3} // no checksum map at all
	older := cs(map[string]string{"a.ts": "abc"})

	_, err := CompareFileChecksums(legacy, older, core.StageAnalyze, core.StageAudit)
	require.Error(t, err)

	var domErr *core.DomainError
	require.True(t, errors.As(err, &domErr))
	assert.Equal(t, core.CodeMissingChecksumData, domErr.Code)
	assert.Contains(t, err.Error(), "analyze")
	assert.Contains(t, domErr.Suggestion, "docimp analyze")
}

func TestCompareFileChecksums_MissingOlderSide(t *testing.T) {
	newer := cs(map[string]string{"a.ts": "abc"})
	legacy := &core.CommandState{ItemCount: 3}

	_, err := CompareFileChecksums(newer, legacy, core.StageAnalyze, core.StagePlan)
	require.Error(t, err)

	var domErr *core.DomainError
	require.True(t, errors.As(err, &domErr))
	assert.Contains(t, err.Error(), "plan")
	assert.Contains(t, domErr.Suggestion, "docimp plan")
}

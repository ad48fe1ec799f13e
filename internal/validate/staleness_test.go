package validate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docimp/docimp/internal/core"
	"github.com/docimp/docimp/internal/state"
)

func newTestValidator(t *testing.T) (*Validator, *state.Store) {
	t.Helper()
	store := state.NewStore(t.TempDir(), nil)
	return NewValidator(store), store
}

func writeArtifact(t *testing.T, v *Validator, stage core.Stage) {
	t.Helper()
	path := v.ArtifactPath(stage)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
}

func TestIsAuditStale_NeverRun(t *testing.T) {
	ws := core.NewWorkflowState()

	res, err := IsAuditStale(ws)
	require.NoError(t, err)
	assert.False(t, res.IsStale, "nothing to compare against: not stale")

	ws.LastAnalyze = core.NewCommandState(1, map[string]string{"a.go": "x"})
	res, err = IsAuditStale(ws)
	require.NoError(t, err)
	assert.False(t, res.IsStale, "audit never ran: not stale")
}

func TestIsAuditStale_Detected(t *testing.T) {
	ws := core.NewWorkflowState()
	ws.LastAudit = core.NewCommandState(2, map[string]string{"a.go": "v1", "b.go": "x"})
	ws.LastAnalyze = core.NewCommandState(2, map[string]string{"a.go": "v2", "b.go": "x"})

	res, err := IsAuditStale(ws)
	require.NoError(t, err)
	assert.True(t, res.IsStale)
	assert.Equal(t, 1, res.ChangedCount)
}

func TestIsPlanStale_Detected(t *testing.T) {
	ws := core.NewWorkflowState()
	ws.LastPlan = core.NewCommandState(1, map[string]string{"a.go": "x"})
	ws.LastAnalyze = core.NewCommandState(2, map[string]string{"a.go": "x", "new.go": "y"})

	res, err := IsPlanStale(ws)
	require.NoError(t, err)
	assert.True(t, res.IsStale)
	assert.Equal(t, 1, res.ChangedCount)
}

func TestIsAuditStale_LegacyData(t *testing.T) {
	ws := core.NewWorkflowState()
	ws.LastAnalyze = core.NewCommandState(1, map[string]string{"a.go": "x"})
	ws.LastAudit = &core.CommandState{Timestamp: time.Now(), ItemCount: 1}

	_, err := IsAuditStale(ws)
	require.Error(t, err)
	assert.True(t, core.IsCategory(err, core.ErrCatChecksum))
}

func TestValidateAuditPrerequisites_MissingArtifact(t *testing.T) {
	v, _ := newTestValidator(t)

	res, err := v.ValidateAuditPrerequisites(false)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Error, "analyze results not found")
	assert.Contains(t, res.Suggestion, "docimp analyze")
}

func TestValidateAuditPrerequisites_MissingStateRecord(t *testing.T) {
	v, _ := newTestValidator(t)
	writeArtifact(t, v, core.StageAnalyze)

	res, err := v.ValidateAuditPrerequisites(false)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Error, "no recorded analyze run")
	assert.Contains(t, res.Suggestion, "docimp analyze")
}

func TestValidateAuditPrerequisites_Satisfied(t *testing.T) {
	v, store := newTestValidator(t)
	writeArtifact(t, v, core.StageAnalyze)
	require.NoError(t, store.UpdateCommandState(core.StageAnalyze,
		core.NewCommandState(1, map[string]string{"a.go": "x"})))

	res, err := v.ValidateAuditPrerequisites(false)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Error)
}

func TestValidateAuditPrerequisites_SkipValidation(t *testing.T) {
	v, _ := newTestValidator(t)

	// Nothing exists on disk; the override must still pass.
	res, err := v.ValidateAuditPrerequisites(true)
	require.NoError(t, err)
	assert.True(t, res.Valid)
}

func TestValidatePlanPrerequisites_RequiresBothUpstreamStages(t *testing.T) {
	v, store := newTestValidator(t)
	writeArtifact(t, v, core.StageAnalyze)
	require.NoError(t, store.UpdateCommandState(core.StageAnalyze,
		core.NewCommandState(1, map[string]string{"a.go": "x"})))

	res, err := v.ValidatePlanPrerequisites(false)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Error, "audit results not found")
	assert.Contains(t, res.Suggestion, "docimp audit")

	writeArtifact(t, v, core.StageAudit)
	require.NoError(t, store.UpdateCommandState(core.StageAudit,
		core.NewCommandState(0, map[string]string{"a.go": "x"})))

	res, err = v.ValidatePlanPrerequisites(false)
	require.NoError(t, err)
	assert.True(t, res.Valid)
}

func TestValidateImprovePrerequisites_StalePlan(t *testing.T) {
	v, store := newTestValidator(t)
	writeArtifact(t, v, core.StagePlan)

	// Plan predates the analysis it should derive from.
	ws := core.NewWorkflowState()
	ws.LastPlan = &core.CommandState{
		Timestamp:     time.Now().Add(-2 * time.Hour),
		ItemCount:     1,
		FileChecksums: map[string]string{"a.go": "x"},
	}
	ws.LastAnalyze = &core.CommandState{
		Timestamp:     time.Now().Add(-time.Hour),
		ItemCount:     1,
		FileChecksums: map[string]string{"a.go": "x"},
	}
	require.NoError(t, store.Save(ws))

	res, err := v.ValidateImprovePrerequisites(false)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Error, "older than the latest analysis")
	assert.Contains(t, res.Suggestion, "Re-run `docimp plan`")
}

func TestValidateImprovePrerequisites_FreshPlan(t *testing.T) {
	v, store := newTestValidator(t)
	writeArtifact(t, v, core.StagePlan)

	ws := core.NewWorkflowState()
	ws.LastAnalyze = &core.CommandState{
		Timestamp:     time.Now().Add(-time.Hour),
		ItemCount:     1,
		FileChecksums: map[string]string{"a.go": "x"},
	}
	ws.LastPlan = &core.CommandState{
		Timestamp:     time.Now(),
		ItemCount:     1,
		FileChecksums: map[string]string{"a.go": "x"},
	}
	require.NoError(t, store.Save(ws))

	res, err := v.ValidateImprovePrerequisites(false)
	require.NoError(t, err)
	assert.True(t, res.Valid)
}

func TestArtifactFile(t *testing.T) {
	assert.Equal(t, "analysis.json", ArtifactFile(core.StageAnalyze))
	assert.Equal(t, "audit.json", ArtifactFile(core.StageAudit))
	assert.Equal(t, "plan.json", ArtifactFile(core.StagePlan))
	assert.Equal(t, "improvements.json", ArtifactFile(core.StageImprove))
	assert.Empty(t, ArtifactFile(core.Stage("deploy")))
}

package validate

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/docimp/docimp/internal/core"
	"github.com/docimp/docimp/internal/state"
)

// StalenessResult is the verdict of a staleness check between two stages.
type StalenessResult struct {
	IsStale      bool
	ChangedCount int
}

// IsAuditStale reports whether the recorded audit no longer matches the
// current analysis. If either stage has never run there is nothing to
// compare against: the result is "not stale", and the missing run is the
// prerequisite check's concern, not this one's.
func IsAuditStale(ws *core.WorkflowState) (StalenessResult, error) {
	return stageStaleness(ws, ws.LastAudit, core.StageAudit)
}

// IsPlanStale reports whether the recorded plan no longer matches the
// current analysis.
func IsPlanStale(ws *core.WorkflowState) (StalenessResult, error) {
	return stageStaleness(ws, ws.LastPlan, core.StagePlan)
}

func stageStaleness(ws *core.WorkflowState, downstream *core.CommandState, downStage core.Stage) (StalenessResult, error) {
	if ws.LastAnalyze == nil || downstream == nil {
		return StalenessResult{}, nil
	}
	diff, err := CompareFileChecksums(ws.LastAnalyze, downstream, core.StageAnalyze, downStage)
	if err != nil {
		return StalenessResult{}, err
	}
	return StalenessResult{IsStale: diff.HasChanges, ChangedCount: diff.ChangedCount}, nil
}

// PrereqResult is the verdict of a prerequisite gate. Error and Suggestion
// are surfaced verbatim to the user when a stage refuses to run, so both
// must name the exact corrective command.
type PrereqResult struct {
	Valid      bool
	Error      string
	Suggestion string
}

// ArtifactFile returns the output artifact filename for a stage.
func ArtifactFile(stage core.Stage) string {
	switch stage {
	case core.StageAnalyze:
		return "analysis.json"
	case core.StageAudit:
		return "audit.json"
	case core.StagePlan:
		return "plan.json"
	case core.StageImprove:
		return "improvements.json"
	}
	return ""
}

// Validator gates pipeline stages on their upstream prerequisites. It is
// built on the state store (which migrates on load) and the checksum
// comparator.
type Validator struct {
	store *state.Store
}

// NewValidator creates a validator over a project's state store.
func NewValidator(store *state.Store) *Validator {
	return &Validator{store: store}
}

// ArtifactPath returns the on-disk path of a stage's output artifact.
func (v *Validator) ArtifactPath(stage core.Stage) string {
	return filepath.Join(v.store.Dir(), ArtifactFile(stage))
}

// ValidateAuditPrerequisites checks that audit can run: analyze has
// produced its artifact and its run is recorded in workflow state.
func (v *Validator) ValidateAuditPrerequisites(skipValidation bool) (PrereqResult, error) {
	if skipValidation {
		return PrereqResult{Valid: true}, nil
	}
	return v.requireUpstream(core.StageAnalyze)
}

// ValidatePlanPrerequisites checks that plan can run: both analyze and
// audit have completed.
func (v *Validator) ValidatePlanPrerequisites(skipValidation bool) (PrereqResult, error) {
	if skipValidation {
		return PrereqResult{Valid: true}, nil
	}
	for _, stage := range []core.Stage{core.StageAnalyze, core.StageAudit} {
		res, err := v.requireUpstream(stage)
		if err != nil || !res.Valid {
			return res, err
		}
	}
	return PrereqResult{Valid: true}, nil
}

// ValidateImprovePrerequisites checks that improve can run: a plan exists,
// and it is not older than the analysis it was derived from. A stale plan
// is reported distinctly from a missing one, with guidance naming the
// command to re-run.
func (v *Validator) ValidateImprovePrerequisites(skipValidation bool) (PrereqResult, error) {
	if skipValidation {
		return PrereqResult{Valid: true}, nil
	}

	res, err := v.requireUpstream(core.StagePlan)
	if err != nil || !res.Valid {
		return res, err
	}

	ws, err := v.store.Load()
	if err != nil {
		return PrereqResult{}, err
	}
	if ws.LastPlan != nil && ws.LastAnalyze != nil &&
		ws.LastPlan.Timestamp.Before(ws.LastAnalyze.Timestamp) {
		return PrereqResult{
			Valid:      false,
			Error:      "the plan is older than the latest analysis",
			Suggestion: "Re-run `docimp plan` to regenerate the plan from the current analysis",
		}, nil
	}
	return PrereqResult{Valid: true}, nil
}

// requireUpstream verifies a stage's artifact file exists on disk and its
// run is recorded in workflow state.
func (v *Validator) requireUpstream(stage core.Stage) (PrereqResult, error) {
	artifact := v.ArtifactPath(stage)
	if _, err := os.Stat(artifact); err != nil {
		return PrereqResult{
			Valid:      false,
			Error:      fmt.Sprintf("%s results not found at %s", stage, artifact),
			Suggestion: fmt.Sprintf("Run `docimp %s` first", stage),
		}, nil
	}

	ws, err := v.store.Load()
	if err != nil {
		return PrereqResult{}, err
	}
	if ws.StageState(stage) == nil {
		return PrereqResult{
			Valid:      false,
			Error:      fmt.Sprintf("no recorded %s run in workflow state", stage),
			Suggestion: fmt.Sprintf("Run `docimp %s` to record a run", stage),
		}, nil
	}
	return PrereqResult{Valid: true}, nil
}

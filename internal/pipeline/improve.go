package pipeline

import (
	"context"
	"time"

	"github.com/docimp/docimp/internal/core"
	"github.com/docimp/docimp/internal/fsutil"
)

// ImproveResult summarizes an improve run for the CLI.
type ImproveResult struct {
	ItemCount    int
	DryRun       bool
	ArtifactPath string
}

// Improve works through the plan and records the intended edits. The actual
// suggestion generation runs in an external subprocess; this stage owns the
// bookkeeping: the prerequisite gate (including the stale-plan timestamp
// check), the improvements artifact, and the workflow state record.
func (p *Pipeline) Improve(_ context.Context, skipValidation, dryRun bool) (*ImproveResult, error) {
	log := p.log.WithStage(string(core.StageImprove))

	res, err := p.validator.ValidateImprovePrerequisites(skipValidation)
	if err != nil {
		return nil, err
	}
	if !res.Valid {
		return nil, core.ErrValidation("PREREQUISITE_FAILED", res.Error).
			WithSuggestion(res.Suggestion)
	}

	var plan PlanArtifact
	if err := fsutil.ReadJSON(p.ArtifactPath(core.StagePlan), &plan); err != nil {
		return nil, core.ErrNotFound("plan artifact", p.ArtifactPath(core.StagePlan)).
			WithCause(err).
			WithSuggestion("Run `docimp plan` first")
	}

	records := make([]ImprovementRecord, 0, len(plan.Items))
	for _, item := range plan.Items {
		records = append(records, ImprovementRecord{
			Path:    item.Path,
			Action:  item.Action,
			Applied: !dryRun,
		})
	}

	artifact := ImproveArtifact{
		GeneratedAt: time.Now().UTC(),
		DryRun:      dryRun,
		Items:       records,
	}
	artifactPath := p.ArtifactPath(core.StageImprove)
	if err := fsutil.WriteJSONAtomic(artifactPath, artifact); err != nil {
		return nil, err
	}

	if dryRun {
		log.Info("improve dry run complete", "items", len(records))
		return &ImproveResult{ItemCount: len(records), DryRun: true, ArtifactPath: artifactPath}, nil
	}

	ws, err := p.store.Load()
	if err != nil {
		return nil, err
	}
	cs := core.NewCommandState(len(records), consumedChecksums(ws.LastPlan))
	if err := p.recordRun(core.StageImprove, cs); err != nil {
		return nil, err
	}

	log.Info("improve complete", "items", len(records))
	return &ImproveResult{ItemCount: len(records), ArtifactPath: artifactPath}, nil
}

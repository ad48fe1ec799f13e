package pipeline

import (
	"context"
	"sort"
	"time"

	"github.com/docimp/docimp/internal/core"
	"github.com/docimp/docimp/internal/fsutil"
	"github.com/docimp/docimp/internal/validate"
)

// PlanResult summarizes a plan run for the CLI.
type PlanResult struct {
	ItemCount    int
	Stale        *validate.StalenessResult
	ArtifactPath string
}

// Plan orders the audit findings into an improvement plan, most severe
// first, writes the plan artifact, and records the run.
func (p *Pipeline) Plan(_ context.Context, skipValidation bool) (*PlanResult, error) {
	log := p.log.WithStage(string(core.StagePlan))

	res, err := p.validator.ValidatePlanPrerequisites(skipValidation)
	if err != nil {
		return nil, err
	}
	if !res.Valid {
		return nil, core.ErrValidation("PREREQUISITE_FAILED", res.Error).
			WithSuggestion(res.Suggestion)
	}

	ws, err := p.store.Load()
	if err != nil {
		return nil, err
	}

	var stale *validate.StalenessResult
	if s, err := validate.IsPlanStale(ws); err == nil && s.IsStale {
		stale = &s
		log.Warn("previous plan is stale", "changed_files", s.ChangedCount)
	}

	var audit AuditArtifact
	if err := fsutil.ReadJSON(p.ArtifactPath(core.StageAudit), &audit); err != nil {
		return nil, core.ErrNotFound("audit artifact", p.ArtifactPath(core.StageAudit)).
			WithCause(err).
			WithSuggestion("Run `docimp audit` first")
	}

	findings := append([]AuditFinding(nil), audit.Findings...)
	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Severity != findings[j].Severity {
			return severityRank(findings[i].Severity) > severityRank(findings[j].Severity)
		}
		return findings[i].DocRatio < findings[j].DocRatio
	})

	items := make([]PlanItem, 0, len(findings))
	for i, f := range findings {
		items = append(items, PlanItem{
			Path:     f.Path,
			Priority: i + 1,
			Action:   "add documentation",
		})
	}

	artifact := PlanArtifact{
		GeneratedAt: time.Now().UTC(),
		Items:       items,
	}
	artifactPath := p.ArtifactPath(core.StagePlan)
	if err := fsutil.WriteJSONAtomic(artifactPath, artifact); err != nil {
		return nil, err
	}

	cs := core.NewCommandState(len(items), consumedChecksums(ws.LastAnalyze))
	if err := p.recordRun(core.StagePlan, cs); err != nil {
		return nil, err
	}

	log.Info("plan complete", "items", len(items))
	return &PlanResult{ItemCount: len(items), Stale: stale, ArtifactPath: artifactPath}, nil
}

func severityRank(s string) int {
	switch s {
	case "high":
		return 3
	case "medium":
		return 2
	case "low":
		return 1
	}
	return 0
}

package pipeline

import (
	"context"
	"time"

	"github.com/docimp/docimp/internal/core"
	"github.com/docimp/docimp/internal/fsutil"
	"github.com/docimp/docimp/internal/validate"
)

// AuditResult summarizes an audit run for the CLI.
type AuditResult struct {
	TotalFiles   int
	FlaggedCount int
	Stale        *validate.StalenessResult
	ArtifactPath string
}

// Audit flags under-documented files from the latest analysis, writes the
// audit artifact, and records the run. The recorded checksums are the
// analysis checksums the audit consumed, so a later re-analysis with
// different fingerprints marks this audit stale.
func (p *Pipeline) Audit(_ context.Context, skipValidation bool) (*AuditResult, error) {
	log := p.log.WithStage(string(core.StageAudit))

	res, err := p.validator.ValidateAuditPrerequisites(skipValidation)
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
	if s, err := validate.IsAuditStale(ws); err == nil && s.IsStale {
		stale = &s
		log.Warn("previous audit is stale", "changed_files", s.ChangedCount)
	}

	var analysis AnalysisArtifact
	if err := fsutil.ReadJSON(p.ArtifactPath(core.StageAnalyze), &analysis); err != nil {
		return nil, core.ErrNotFound("analysis artifact", p.ArtifactPath(core.StageAnalyze)).
			WithCause(err).
			WithSuggestion("Run `docimp analyze` first")
	}

	findings := make([]AuditFinding, 0)
	for _, f := range analysis.Files {
		if f.Lines == 0 {
			continue
		}
		ratio := float64(f.DocLines) / float64(f.Lines)
		if ratio >= p.cfg.Audit.MinDocRatio {
			continue
		}
		findings = append(findings, AuditFinding{
			Path:     f.Path,
			DocRatio: ratio,
			Severity: severityFor(ratio, p.cfg.Audit.MinDocRatio),
			Reason:   "documentation ratio below threshold",
		})
	}

	artifact := AuditArtifact{
		GeneratedAt: time.Now().UTC(),
		TotalFiles:  len(analysis.Files),
		MinDocRatio: p.cfg.Audit.MinDocRatio,
		Findings:    findings,
	}
	artifactPath := p.ArtifactPath(core.StageAudit)
	if err := fsutil.WriteJSONAtomic(artifactPath, artifact); err != nil {
		return nil, err
	}

	cs := core.NewCommandState(len(findings), consumedChecksums(ws.LastAnalyze))
	if err := p.recordRun(core.StageAudit, cs); err != nil {
		return nil, err
	}

	log.Info("audit complete", "flagged", len(findings), "total", len(analysis.Files))
	return &AuditResult{
		TotalFiles:   len(analysis.Files),
		FlaggedCount: len(findings),
		Stale:        stale,
		ArtifactPath: artifactPath,
	}, nil
}

func severityFor(ratio, threshold float64) string {
	switch {
	case ratio == 0:
		return "high"
	case ratio < threshold/2:
		return "medium"
	default:
		return "low"
	}
}

// consumedChecksums copies the upstream stage's checksum map so this
// stage's record captures exactly the inputs it read.
func consumedChecksums(upstream *core.CommandState) map[string]string {
	if upstream == nil || upstream.FileChecksums == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(upstream.FileChecksums))
	for k, v := range upstream.FileChecksums {
		out[k] = v
	}
	return out
}

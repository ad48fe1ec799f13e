package core

import (
	"time"
)

// Stage identifies one pipeline stage.
type Stage string

const (
	StageAnalyze Stage = "analyze"
	StageAudit   Stage = "audit"
	StagePlan    Stage = "plan"
	StageImprove Stage = "improve"
)

// Stages lists the pipeline stages in execution order.
var Stages = []Stage{StageAnalyze, StageAudit, StagePlan, StageImprove}

// Valid reports whether s names a known pipeline stage.
func (s Stage) Valid() bool {
	switch s {
	case StageAnalyze, StageAudit, StagePlan, StageImprove:
		return true
	}
	return false
}

// CurrentSchemaVersion is the schema version this build reads and writes.
const CurrentSchemaVersion = "1.0"

// LegacyVersion tags on-disk state written before schema versioning existed.
const LegacyVersion = "legacy"

// CommandState summarizes one stage's last successful run.
type CommandState struct {
	// Timestamp is set at creation and never mutated afterwards.
	Timestamp time.Time `json:"timestamp"`
	ItemCount int       `json:"item_count"`
	// FileChecksums maps file path to content fingerprint. A nil map means
	// the data predates checksum tracking (legacy), which is distinct from
	// an empty map meaning "no files".
	FileChecksums map[string]string `json:"file_checksums,omitempty"`
}

// NewCommandState builds a stage summary stamped with the current time.
func NewCommandState(itemCount int, checksums map[string]string) *CommandState {
	if checksums == nil {
		checksums = map[string]string{}
	}
	return &CommandState{
		Timestamp:     time.Now().UTC(),
		ItemCount:     itemCount,
		FileChecksums: checksums,
	}
}

// MigrationEntry records one applied schema migration step.
type MigrationEntry struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Timestamp time.Time `json:"timestamp"`
}

// WorkflowState is the single persisted document per project.
type WorkflowState struct {
	SchemaVersion string           `json:"schema_version"`
	MigrationLog  []MigrationEntry `json:"migration_log"`
	LastAnalyze   *CommandState    `json:"last_analyze"`
	LastAudit     *CommandState    `json:"last_audit"`
	LastPlan      *CommandState    `json:"last_plan"`
	LastImprove   *CommandState    `json:"last_improve"`
}

// NewWorkflowState returns a fresh state at the current schema version with
// no stage ever run.
func NewWorkflowState() *WorkflowState {
	return &WorkflowState{
		SchemaVersion: CurrentSchemaVersion,
		MigrationLog:  []MigrationEntry{},
	}
}

// StageState returns the recorded summary for a stage, nil if never run.
func (w *WorkflowState) StageState(stage Stage) *CommandState {
	switch stage {
	case StageAnalyze:
		return w.LastAnalyze
	case StageAudit:
		return w.LastAudit
	case StagePlan:
		return w.LastPlan
	case StageImprove:
		return w.LastImprove
	}
	return nil
}

// SetStageState replaces exactly one stage's summary, leaving the others
// untouched.
func (w *WorkflowState) SetStageState(stage Stage, cs *CommandState) error {
	switch stage {
	case StageAnalyze:
		w.LastAnalyze = cs
	case StageAudit:
		w.LastAudit = cs
	case StagePlan:
		w.LastPlan = cs
	case StageImprove:
		w.LastImprove = cs
	default:
		return ErrValidation(CodeUnknownStage, "unknown pipeline stage: "+string(stage))
	}
	return nil
}

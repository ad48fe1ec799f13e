package pipeline

import "time"

// FileStat summarizes one analyzed file.
type FileStat struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
	Lines     int    `json:"lines"`
	DocLines  int    `json:"doc_lines"`
	Checksum  string `json:"checksum"`
}

// AnalysisArtifact is the analyze stage's output (.docimp/analysis.json).
type AnalysisArtifact struct {
	GeneratedAt time.Time  `json:"generated_at"`
	ItemCount   int        `json:"item_count"`
	Files       []FileStat `json:"files"`
}

// AuditFinding flags one under-documented file.
type AuditFinding struct {
	Path     string  `json:"path"`
	DocRatio float64 `json:"doc_ratio"`
	Severity string  `json:"severity"` // low, medium, high
	Reason   string  `json:"reason"`
}

// AuditArtifact is the audit stage's output (.docimp/audit.json).
type AuditArtifact struct {
	GeneratedAt time.Time      `json:"generated_at"`
	TotalFiles  int            `json:"total_files"`
	MinDocRatio float64        `json:"min_doc_ratio"`
	Findings    []AuditFinding `json:"findings"`
}

// PlanItem orders one improvement task.
type PlanItem struct {
	Path     string `json:"path"`
	Priority int    `json:"priority"`
	Action   string `json:"action"`
}

// PlanArtifact is the plan stage's output (.docimp/plan.json).
type PlanArtifact struct {
	GeneratedAt time.Time  `json:"generated_at"`
	Items       []PlanItem `json:"items"`
}

// ImprovementRecord tracks what the improve stage did for one plan item.
type ImprovementRecord struct {
	Path    string `json:"path"`
	Action  string `json:"action"`
	Applied bool   `json:"applied"`
}

// ImproveArtifact is the improve stage's output (.docimp/improvements.json).
type ImproveArtifact struct {
	GeneratedAt time.Time           `json:"generated_at"`
	DryRun      bool                `json:"dry_run"`
	Items       []ImprovementRecord `json:"items"`
}

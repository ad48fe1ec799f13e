// Package migrate evolves persisted workflow state across schema versions.
//
// Versions form a total order and migrations are strictly forward-only: the
// engine never needs to downgrade a user's on-disk state, and supporting
// downgrades would double the number of transforms to write and test.
package migrate

import (
	"fmt"

	"github.com/docimp/docimp/internal/core"
)

// Document is the untyped on-disk representation a transform receives. The
// raw file may have been written by any historical version, so transforms
// work on parsed JSON rather than the current struct shape.
type Document = map[string]any

// StepFunc transforms a document from one schema version to the next.
type StepFunc func(Document) (Document, error)

// Step pairs a step identifier ("<from>-><to>") with its transform.
type Step struct {
	ID string
	Fn StepFunc
}

// Registry holds the ordered version list and the registered transforms.
// It is immutable after construction; tests build scoped instances instead
// of mutating shared state.
type Registry struct {
	versions []string
	index    map[string]int
	steps    map[string]StepFunc
}

// NewRegistry builds a registry over an ordered version list. The list must
// include every version the registry will be asked about, oldest first.
func NewRegistry(versions []string, steps []Step) *Registry {
	r := &Registry{
		versions: append([]string(nil), versions...),
		index:    make(map[string]int, len(versions)),
		steps:    make(map[string]StepFunc, len(steps)),
	}
	for i, v := range versions {
		r.index[v] = i
	}
	for _, s := range steps {
		r.steps[s.ID] = s.Fn
	}
	return r
}

// DefaultRegistry returns the registry for the schema versions this build
// knows about.
func DefaultRegistry() *Registry {
	return NewRegistry(
		[]string{core.LegacyVersion, "1.0"},
		[]Step{
			{ID: StepID(core.LegacyVersion, "1.0"), Fn: migrateLegacyTo10},
		},
	)
}

// StepID formats the identifier for the transform between two adjacent
// versions.
func StepID(from, to string) string {
	return from + "->" + to
}

// BuildPath computes the ordered list of step identifiers needed to move
// state from one version to another. It is pure metadata: whether a
// transform is actually registered for each step is only checked at apply
// time, so path building behaves identically regardless of which transforms
// a given runtime or test context carries.
func (r *Registry) BuildPath(from, to string) ([]string, error) {
	fromIdx, ok := r.index[from]
	if !ok {
		return nil, core.ErrMigration(core.CodeUnknownVersion,
			fmt.Sprintf("unknown schema version %q", from)).
			WithDetail("version", from)
	}
	toIdx, ok := r.index[to]
	if !ok {
		return nil, core.ErrMigration(core.CodeUnknownVersion,
			fmt.Sprintf("unknown schema version %q", to)).
			WithDetail("version", to)
	}
	if fromIdx == toIdx {
		return []string{}, nil
	}
	if fromIdx > toIdx {
		return nil, core.ErrMigration(core.CodeBackwardMigration,
			fmt.Sprintf("cannot migrate backwards from %q to %q: migrations are forward-only", from, to))
	}

	path := make([]string, 0, toIdx-fromIdx)
	for i := fromIdx; i < toIdx; i++ {
		path = append(path, StepID(r.versions[i], r.versions[i+1]))
	}
	return path, nil
}

// step looks up the registered transform for a step identifier.
func (r *Registry) step(id string) (StepFunc, bool) {
	fn, ok := r.steps[id]
	return fn, ok
}

// migrateLegacyTo10 upgrades pre-versioning state to schema 1.0. Legacy
// files carry stage summaries without file_checksums; those are left absent
// so the checksum comparator can report them as legacy data rather than
// silently treating them as empty.
func migrateLegacyTo10(doc Document) (Document, error) {
	doc["schema_version"] = "1.0"
	for _, stage := range []string{"last_analyze", "last_audit", "last_plan", "last_improve"} {
		if _, ok := doc[stage]; !ok {
			doc[stage] = nil
		}
	}
	return doc, nil
}

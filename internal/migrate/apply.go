package migrate

import (
	"fmt"
	"strings"
	"time"

	"github.com/docimp/docimp/internal/core"
)

// Applier runs migration paths over raw state documents.
type Applier struct {
	registry *Registry
	now      func() time.Time
}

// ApplierOption configures the applier.
type ApplierOption func(*Applier)

// WithClock overrides the timestamp source for migration log entries.
func WithClock(now func() time.Time) ApplierOption {
	return func(a *Applier) {
		a.now = now
	}
}

// NewApplier creates an applier over the given registry.
func NewApplier(registry *Registry, opts ...ApplierOption) *Applier {
	a := &Applier{
		registry: registry,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Apply migrates a raw document to the target version, appending one
// migration_log entry per step. The input document is never mutated: on
// failure the partially migrated copy is discarded and callers must not
// persist anything, on success the fully migrated copy is returned.
//
// A document without a schema_version key is treated as legacy data.
func (a *Applier) Apply(doc Document, target string) (Document, error) {
	source := core.LegacyVersion
	if v, ok := doc["schema_version"].(string); ok && v != "" {
		source = v
	}

	// Fast path: already at target, no log entry.
	if source == target {
		return doc, nil
	}

	path, err := a.registry.BuildPath(source, target)
	if err != nil {
		return nil, err
	}

	current := deepCopy(doc)
	if _, ok := current["migration_log"]; !ok {
		current["migration_log"] = []any{}
	}

	for _, stepID := range path {
		fn, ok := a.registry.step(stepID)
		if !ok {
			return nil, core.ErrMigration(core.CodeMigrationStepFailed,
				fmt.Sprintf("migration step %q has no registered transform", stepID)).
				WithDetail("step", stepID)
		}
		next, err := fn(current)
		if err != nil {
			return nil, core.ErrMigration(core.CodeMigrationStepFailed,
				fmt.Sprintf("migration step %q failed", stepID)).
				WithCause(err).
				WithDetail("step", stepID)
		}
		current = next
		from, to := splitStepID(stepID)
		log, _ := current["migration_log"].([]any)
		current["migration_log"] = append(log, map[string]any{
			"from":      from,
			"to":        to,
			"timestamp": a.now().UTC().Format(time.RFC3339),
		})
	}

	return current, nil
}

func splitStepID(id string) (from, to string) {
	parts := strings.SplitN(id, "->", 2)
	if len(parts) != 2 {
		return id, ""
	}
	return parts[0], parts[1]
}

// deepCopy clones a parsed JSON document so transforms cannot leak partial
// mutations into the caller's copy when a later step fails.
func deepCopy(v any) Document {
	out, _ := deepCopyValue(v).(Document)
	return out
}

func deepCopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = deepCopyValue(val)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, val := range t {
			s[i] = deepCopyValue(val)
		}
		return s
	default:
		return v
	}
}

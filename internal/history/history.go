// Package history writes immutable timestamped snapshots of workflow state
// and prunes them under a hybrid count/age retention policy.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/docimp/docimp/internal/core"
)

const (
	// DirName is the snapshot directory under .docimp.
	DirName        = "history"
	snapshotPrefix = "workflow-state-"
	snapshotSuffix = ".json"
)

// snapshotNameRe matches the snapshot naming convention, capturing the
// embedded timestamp. Stray files a user or other tool drops into the
// directory never match and are left alone.
var snapshotNameRe = regexp.MustCompile(
	`^workflow-state-(\d{4}-\d{2}-\d{2}T\d{2}-\d{2}-\d{2}-\d{3}Z)\.json$`)

// Manager owns the snapshot directory for one project.
type Manager struct {
	dir string
	now func() time.Time
}

// Option configures the manager.
type Option func(*Manager)

// WithClock overrides the timestamp source used for snapshot names.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a manager writing under <docimpDir>/history.
func NewManager(docimpDir string, opts ...Option) *Manager {
	m := &Manager{
		dir: filepath.Join(docimpDir, DirName),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Dir returns the snapshot directory path.
func (m *Manager) Dir() string {
	return m.dir
}

// SaveSnapshot writes an immutable point-in-time copy of the state and
// returns its path. The state must already be at the current schema
// version: snapshots of un-migrated data are rejected the same way the
// state store rejects them.
func (m *Manager) SaveSnapshot(state *core.WorkflowState) (string, error) {
	if state == nil {
		return "", core.ErrValidation(core.CodeInvalidStateSchema, "workflow state is nil")
	}
	if state.SchemaVersion != core.CurrentSchemaVersion {
		return "", core.ErrValidation(core.CodeInvalidStateSchema,
			fmt.Sprintf("refusing to snapshot state at schema version %q, current is %q",
				state.SchemaVersion, core.CurrentSchemaVersion))
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling snapshot: %w", err)
	}

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating history directory: %w", err)
	}

	path := filepath.Join(m.dir, snapshotPrefix+FormatTimestamp(m.now())+snapshotSuffix)
	if err := atomicWriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing snapshot: %w", err)
	}
	return path, nil
}

// List returns snapshot paths sorted newest first by embedded timestamp.
// A missing directory is not an error: it is created lazily on first
// snapshot, so before then there is simply no history.
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("listing history directory: %w", err)
	}

	type snap struct {
		path string
		ts   time.Time
	}
	snaps := make([]snap, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ts, ok := parseSnapshotName(e.Name())
		if !ok {
			continue
		}
		snaps = append(snaps, snap{path: filepath.Join(m.dir, e.Name()), ts: ts})
	}

	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].ts.After(snaps[j].ts)
	})

	paths := make([]string, len(snaps))
	for i, s := range snaps {
		paths[i] = s.path
	}
	return paths, nil
}

// Rotate prunes snapshots under the hybrid retention policy: a snapshot is
// deleted when it violates either the count bound (older than the
// maxCount-th most recent) or the age bound (file modification time older
// than maxAgeDays). The OR is deliberate: a pure count bound lets a burst
// of runs evict operationally recent snapshots, while a pure age bound lets
// a low-frequency user accumulate unbounded history.
//
// Individual deletion failures do not abort the pass; they are collected
// and returned together.
func (m *Manager) Rotate(maxCount, maxAgeDays int) error {
	if maxCount < 0 || maxAgeDays < 0 {
		return core.ErrValidation(core.CodeInvalidConfig,
			fmt.Sprintf("retention bounds must be non-negative, got maxCount=%d maxAgeDays=%d", maxCount, maxAgeDays))
	}

	paths, err := m.List()
	if err != nil {
		return err
	}

	cutoff := m.now().Add(-time.Duration(maxAgeDays) * 24 * time.Hour)

	var errs []error
	for i, path := range paths {
		tooMany := i >= maxCount
		tooOld := false
		if info, statErr := os.Stat(path); statErr == nil {
			tooOld = info.ModTime().Before(cutoff)
		}
		if !tooMany && !tooOld {
			continue
		}
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("deleting snapshot %s: %w", filepath.Base(path), rmErr))
		}
	}
	return errors.Join(errs...)
}

// FormatTimestamp renders a time as a cross-platform-safe filename token:
// UTC ISO-8601 with ':' and '.' replaced by '-', e.g. 2025-01-02T10-00-00-000Z.
func FormatTimestamp(t time.Time) string {
	iso := t.UTC().Format("2006-01-02T15:04:05.000Z")
	return strings.NewReplacer(":", "-", ".", "-").Replace(iso)
}

// parseSnapshotName extracts the embedded timestamp from a snapshot
// filename.
func parseSnapshotName(name string) (time.Time, bool) {
	m := snapshotNameRe.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, false
	}
	ts := m[1]
	// 2025-01-02T10-00-00-000Z: seconds end at index 19, millis at 20..23.
	base, err := time.Parse("2006-01-02T15-04-05", ts[:19])
	if err != nil {
		return time.Time{}, false
	}
	var millis int
	if _, err := fmt.Sscanf(ts[20:23], "%03d", &millis); err != nil {
		return time.Time{}, false
	}
	return base.Add(time.Duration(millis) * time.Millisecond).UTC(), true
}

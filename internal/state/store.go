// Package state persists the per-project workflow state file with
// atomic-write discipline and transparent forward migration on load.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/docimp/docimp/internal/core"
	"github.com/docimp/docimp/internal/migrate"
)

const (
	// StateDirName is the per-project directory holding all docimp data.
	StateDirName = ".docimp"
	stateFile    = "workflow-state.json"
)

// Store owns the single current workflow state file for one project.
// It assumes a single active writer; the temp-then-rename write protects
// against partial writes and crash-mid-write, not against two processes
// racing (last writer wins).
type Store struct {
	root    string
	applier *migrate.Applier
}

// NewStore creates a store rooted at a project directory.
func NewStore(projectRoot string, applier *migrate.Applier) *Store {
	if applier == nil {
		applier = migrate.NewApplier(migrate.DefaultRegistry())
	}
	return &Store{root: projectRoot, applier: applier}
}

// Dir returns the .docimp directory for this project.
func (s *Store) Dir() string {
	return filepath.Join(s.root, StateDirName)
}

// Path returns the workflow state file path.
func (s *Store) Path() string {
	return filepath.Join(s.Dir(), stateFile)
}

// Save validates state against the current schema and writes it atomically.
// The store never migrates on write: callers holding an old-version state
// must load (which migrates) before saving.
func (s *Store) Save(state *core.WorkflowState) error {
	if state == nil {
		return core.ErrValidation(core.CodeInvalidStateSchema, "workflow state is nil")
	}
	if state.SchemaVersion != core.CurrentSchemaVersion {
		return core.ErrValidation(core.CodeInvalidStateSchema,
			fmt.Sprintf("refusing to save state at schema version %q, current is %q: migrate before saving",
				state.SchemaVersion, core.CurrentSchemaVersion))
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling workflow state: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("round-tripping workflow state: %w", err)
	}
	if err := validateDocument(doc); err != nil {
		return err
	}

	if err := os.MkdirAll(s.Dir(), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	// Stage into the documented .tmp path, then rename over the target so a
	// concurrent reader never observes a partially written file and a crash
	// mid-write leaves the previous valid state intact.
	tmp := s.Path() + ".tmp"
	if err := writeAndSync(tmp, data); err != nil {
		return fmt.Errorf("writing state staging file: %w", err)
	}
	if err := os.Rename(tmp, s.Path()); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming state file: %w", err)
	}
	return nil
}

// Load reads the state file, migrating it to the current schema version if
// needed. A missing file is the bootstrap case and yields a fresh empty
// state, never an error.
func (s *Store) Load() (*core.WorkflowState, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return core.NewWorkflowState(), nil
		}
		return nil, fmt.Errorf("reading workflow state: %w", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, core.ErrState(core.CodeStateCorrupt, "failed to load workflow state").
			WithCause(err).
			WithSuggestion("delete " + s.Path() + " (or run `docimp reset --force`) and re-run `docimp analyze`")
	}

	migrated, err := s.applier.Apply(doc, core.CurrentSchemaVersion)
	if err != nil {
		return nil, err
	}

	if err := validateDocument(migrated); err != nil {
		return nil, err
	}

	// Decode the validated document into the typed state.
	buf, err := json.Marshal(migrated)
	if err != nil {
		return nil, fmt.Errorf("encoding migrated state: %w", err)
	}
	state := &core.WorkflowState{}
	if err := json.Unmarshal(buf, state); err != nil {
		return nil, core.ErrValidation(core.CodeInvalidStateSchema,
			"migrated workflow state does not decode").WithCause(err)
	}
	if state.MigrationLog == nil {
		state.MigrationLog = []core.MigrationEntry{}
	}
	return state, nil
}

// UpdateCommandState records a completed stage run: load, replace exactly
// the one named field, save. The other stage fields round-trip untouched.
func (s *Store) UpdateCommandState(stage core.Stage, cs *core.CommandState) error {
	state, err := s.Load()
	if err != nil {
		return err
	}
	if err := state.SetStageState(stage, cs); err != nil {
		return err
	}
	return s.Save(state)
}

// Clear deletes the state file. A missing file is success.
func (s *Store) Clear() error {
	err := os.Remove(s.Path())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clearing workflow state: %w", err)
	}
	return nil
}

// Exists probes for the state file. Existence checks never fail: any error
// is reported as "does not exist".
func (s *Store) Exists() bool {
	_, err := os.Stat(s.Path())
	return err == nil
}

func writeAndSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

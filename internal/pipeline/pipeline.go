// Package pipeline runs the four documentation-improvement stages and keeps
// the workflow state, history snapshots, and stage artifacts in sync.
package pipeline

import (
	"path/filepath"

	"github.com/docimp/docimp/internal/config"
	"github.com/docimp/docimp/internal/core"
	"github.com/docimp/docimp/internal/history"
	"github.com/docimp/docimp/internal/logging"
	"github.com/docimp/docimp/internal/state"
	"github.com/docimp/docimp/internal/validate"
)

// Pipeline wires the state engine to the stage commands.
type Pipeline struct {
	root      string
	cfg       *config.Config
	store     *state.Store
	history   *history.Manager
	validator *validate.Validator
	log       *logging.Logger
}

// New creates a pipeline for a project root.
func New(projectRoot string, cfg *config.Config, log *logging.Logger) *Pipeline {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logging.NewNop()
	}
	store := state.NewStore(projectRoot, nil)
	return &Pipeline{
		root:      projectRoot,
		cfg:       cfg,
		store:     store,
		history:   history.NewManager(store.Dir()),
		validator: validate.NewValidator(store),
		log:       log,
	}
}

// Store exposes the state store for commands that need direct access.
func (p *Pipeline) Store() *state.Store {
	return p.store
}

// History exposes the history manager.
func (p *Pipeline) History() *history.Manager {
	return p.history
}

// Validator exposes the prerequisite validator.
func (p *Pipeline) Validator() *validate.Validator {
	return p.validator
}

// ArtifactPath returns the artifact file path for a stage.
func (p *Pipeline) ArtifactPath(stage core.Stage) string {
	return filepath.Join(p.store.Dir(), validate.ArtifactFile(stage))
}

// recordRun persists a completed stage run: update the stage's slot in
// workflow state, snapshot the result, and prune history under the
// configured retention bounds.
func (p *Pipeline) recordRun(stage core.Stage, cs *core.CommandState) error {
	if err := p.store.UpdateCommandState(stage, cs); err != nil {
		return err
	}
	ws, err := p.store.Load()
	if err != nil {
		return err
	}
	snapPath, err := p.history.SaveSnapshot(ws)
	if err != nil {
		return err
	}
	p.log.Debug("saved history snapshot", "path", snapPath)

	if err := p.history.Rotate(p.cfg.History.MaxCount, p.cfg.History.MaxAgeDays); err != nil {
		// Rotation failures should not fail the stage; the run itself is
		// already durably recorded.
		p.log.Warn("history rotation reported errors", "error", err)
	}
	return nil
}

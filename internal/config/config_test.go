package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docimp/docimp/internal/core"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 50, cfg.History.MaxCount)
	assert.Equal(t, 30, cfg.History.MaxAgeDays)
	assert.NotEmpty(t, cfg.Analyze.Extensions)
	assert.Contains(t, cfg.Analyze.ExcludeDirs, ".git")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "negative max count", mutate: func(c *Config) { c.History.MaxCount = -1 }, wantErr: true},
		{name: "negative max age", mutate: func(c *Config) { c.History.MaxAgeDays = -5 }, wantErr: true},
		{name: "zero bounds allowed", mutate: func(c *Config) { c.History.MaxCount = 0; c.History.MaxAgeDays = 0 }},
		{name: "doc ratio above one", mutate: func(c *Config) { c.Audit.MinDocRatio = 1.5 }, wantErr: true},
		{name: "negative doc ratio", mutate: func(c *Config) { c.Audit.MinDocRatio = -0.1 }, wantErr: true},
		{name: "bad log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: true},
		{name: "json log format", mutate: func(c *Config) { c.Log.Format = "json" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, core.IsCategory(err, core.ErrCatValidation))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestLoader_Defaults(t *testing.T) {
	cfg, err := NewLoader().Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default().History, cfg.History)
}

func TestLoader_ProjectConfigFile(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".docimp")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
project_id: test-project
history:
  max_count: 5
  max_age_days: 7
audit:
  min_doc_ratio: 0.25
`), 0o644))

	cfg, err := NewLoader().Load(root)
	require.NoError(t, err)

	assert.Equal(t, "test-project", cfg.ProjectID)
	assert.Equal(t, 5, cfg.History.MaxCount)
	assert.Equal(t, 7, cfg.History.MaxAgeDays)
	assert.Equal(t, 0.25, cfg.Audit.MinDocRatio)
	// Untouched keys keep their defaults.
	assert.Equal(t, Default().Analyze.Extensions, cfg.Analyze.Extensions)
}

func TestLoader_InvalidConfigRejected(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".docimp")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
history:
  max_count: -3
`), 0o644))

	_, err := NewLoader().Load(root)
	require.Error(t, err)
	assert.True(t, core.IsCategory(err, core.ErrCatValidation))
}

func TestLoader_ExplicitConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("project_id: explicit\n"), 0o644))

	cfg, err := NewLoader().WithConfigFile(path).Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "explicit", cfg.ProjectID)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MalithGihan/relgraph-service/internal/apperr"
	"github.com/MalithGihan/relgraph-service/internal/extract"
	"github.com/MalithGihan/relgraph-service/internal/layout"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, layout.DefaultConfig(), cfg.Layout)
	assert.Equal(t, extract.DefaultKeywords, cfg.Extract.Keywords)
	assert.False(t, cfg.Extract.DedupeEdges)
	assert.Equal(t, 10*time.Second, cfg.HTTP.LayoutTimeout)
	assert.EqualValues(t, 4, cfg.HTTP.MaxConcurrentLayouts)
	assert.EqualValues(t, 1<<20, cfg.HTTP.MaxBodyBytes)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	file := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
port: "9000"
layout:
  width: 1024
  iterations: 80
  seed: 11
extract:
  dedupe_edges: true
  keywords: [link]
`), 0o644))

	t.Setenv("RELGRAPH_LAYOUT_ITERATIONS", "120")
	t.Setenv("PORT", "7000")

	cfg, err := Load(New(), file)
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, 1024.0, cfg.Layout.Width)
	assert.Equal(t, 120, cfg.Layout.Iterations)
	assert.EqualValues(t, 11, cfg.Layout.Seed)
	assert.Equal(t, 600.0, cfg.Layout.Height)
	assert.True(t, cfg.Extract.DedupeEdges)
	assert.Equal(t, []string{"link"}, cfg.Extract.Keywords)

	opts := cfg.ExtractOptions()
	assert.True(t, opts.DedupeEdges)
	assert.Equal(t, []string{"link"}, opts.Keywords)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load(New(), "does-not-exist.yaml")
	require.Error(t, err)
	assert.True(t, apperr.IsInvalid(err))
}

func TestLoad_RejectsBadCanvas(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RELGRAPH_LAYOUT_PADDING", "400")

	_, err := Load(New(), "")
	require.Error(t, err)
	assert.True(t, apperr.IsInvalid(err))
}

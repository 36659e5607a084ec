package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/MalithGihan/relgraph-service/internal/apperr"
	"github.com/MalithGihan/relgraph-service/internal/extract"
	"github.com/MalithGihan/relgraph-service/internal/layout"
	"github.com/MalithGihan/relgraph-service/pkg/types"
)

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestExtractFromStdin(t *testing.T) {
	out, _, err := run(t, "apple is connected to banana. banana is connected to orange", "extract")
	require.NoError(t, err)

	var res extract.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Len(t, res.Nodes, 3)
	assert.Equal(t, []types.Edge{{ID: 1, From: "apple", To: "banana"}, {ID: 2, From: "banana", To: "orange"}}, res.Edges)
}

func TestExtractNoMatchHints(t *testing.T) {
	out, stderr, err := run(t, "nothing to see", "extract", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"nodes": []`)
	assert.Contains(t, stderr, "no relationships found")
}

func TestExtractFailOnEmpty(t *testing.T) {
	_, _, err := run(t, "nothing to see", "extract", "--fail-on-empty")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNoRelations))
	assert.Equal(t, 3, exitCode(err))
}

func TestExtractFromFileAsYAML(t *testing.T) {
	file := filepath.Join(t.TempDir(), "in.txt")
	require.NoError(t, os.WriteFile(file, []byte("a -> b -> c"), 0o644))

	out, _, err := run(t, "", "extract", "--output", "yaml", file)
	require.NoError(t, err)

	var res extract.Result
	require.NoError(t, yaml.Unmarshal([]byte(out), &res))
	assert.Equal(t, 3, res.Stats.NodeCount)
	assert.Equal(t, 2, res.Stats.EdgeCount)
}

func TestLayoutSeedIsReproducible(t *testing.T) {
	in := `{"nodes":[` +
		`{"id":1,"label":"a"},{"id":2,"label":"b"},{"id":3,"label":"c"},{"id":4,"label":"d"},{"id":5,"label":"e"},` +
		`{"id":6,"label":"f"},{"id":7,"label":"g"},{"id":8,"label":"h"},{"id":9,"label":"i"},{"id":10,"label":"j"}],` +
		`"edges":[{"id":1,"from":"a","to":"b"},{"id":2,"from":"b","to":"c"},{"id":3,"from":"j","to":"a"}]}`

	first, _, err := run(t, in, "layout", "--seed", "42")
	require.NoError(t, err)
	second, _, err := run(t, in, "layout", "--seed", "42")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var res layout.Result
	require.NoError(t, json.Unmarshal([]byte(first), &res))
	assert.Equal(t, layout.ModeForce, res.Mode)
	assert.Len(t, res.Nodes, 10)
	assert.Len(t, res.Edges, 3)
}

func TestLayoutMissingEdges(t *testing.T) {
	_, _, err := run(t, `{"nodes":[]}`, "layout")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrMissingEdges))
	assert.True(t, apperr.IsInvalid(err))
}

func TestRender(t *testing.T) {
	out, _, err := run(t, "relationship: user -> api", "render")
	require.NoError(t, err)

	var res layout.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, layout.ModeCircular, res.Mode)
	// The labeled form and the bare arrow inside it both match.
	require.Len(t, res.Edges, 2)
	for _, e := range res.Edges {
		assert.Equal(t, "1", e.Source)
		assert.Equal(t, "2", e.Target)
	}
}

func TestExportPlantUML(t *testing.T) {
	out, _, err := run(t, "a -> b", "export", "--format", "puml")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "@startuml\n"))
	assert.Contains(t, out, "a --> b\n")
}

func TestExportUnknownFormat(t *testing.T) {
	_, _, err := run(t, "a -> b", "export", "--format", "png")
	require.Error(t, err)
	assert.True(t, apperr.IsInvalid(err))
}

func TestUnknownOutput(t *testing.T) {
	_, _, err := run(t, "a -> b", "extract", "--output", "xml")
	require.Error(t, err)
	assert.True(t, apperr.IsInvalid(err))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 2, exitCode(apperr.InvalidInput("flags", errors.New("bad"))))
	assert.Equal(t, 1, exitCode(errors.New("boom")))
}

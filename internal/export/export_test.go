package export

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MalithGihan/relgraph-service/internal/apperr"
	"github.com/MalithGihan/relgraph-service/internal/extract"
	"github.com/MalithGihan/relgraph-service/internal/layout"
	"github.com/MalithGihan/relgraph-service/pkg/types"
)

func sample() types.ExportGraph {
	return types.ExportGraph{
		Nodes: []types.ExportNode{
			{ID: "1", Label: "apple", Position: types.Position{X: 590, Y: 300}},
			{ID: "2", Label: "big banana", Position: types.Position{X: 210, Y: 300}},
			{ID: "3", Label: "груша", Position: types.Position{X: 400, Y: 110}},
		},
		Edges: []types.ExportEdge{
			{ID: "e1", From: "apple", To: "big banana"},
			{ID: "e2", From: "big banana", To: "груша"},
			{ID: "e3", From: "apple", To: "ghost"},
		},
	}
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, DrawIO, DetectFormat("graph.drawio"))
	assert.Equal(t, DrawIO, DetectFormat("graph.XML"))
	assert.Equal(t, PlantUML, DetectFormat("graph.plantuml"))
	assert.Equal(t, PlantUML, DetectFormat("graph.puml"))
	assert.Equal(t, JSON, DetectFormat("graph.json"))
	assert.Equal(t, Format(""), DetectFormat("graph.png"))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("PlantUML")
	require.NoError(t, err)
	assert.Equal(t, PlantUML, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, JSON, f)

	_, err = ParseFormat("png")
	assert.True(t, apperr.IsInvalid(err))
}

func TestWrite_DrawIO(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, DrawIO, sample()))

	var doc mxfile
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Diagram, 1)

	var vertices, edges []mxCell
	for _, c := range doc.Diagram[0].MxGraphModel.Root.Cells {
		switch {
		case c.Vertex == "1":
			vertices = append(vertices, c)
		case c.Edge == "1":
			edges = append(edges, c)
		}
	}
	require.Len(t, vertices, 3)
	assert.Equal(t, "big banana", vertices[1].Value)
	require.NotNil(t, vertices[0].Geometry)
	assert.Equal(t, 590.0, vertices[0].Geometry.X)

	require.Len(t, edges, 2, "dangling edge must be dropped")
	assert.Equal(t, "n1", edges[0].Source)
	assert.Equal(t, "n2", edges[0].Target)
	assert.Equal(t, "n3", edges[1].Target)
}

func TestWrite_PlantUML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, PlantUML, sample()))

	want := `@startuml
component "apple" as apple
component "big banana" as big_banana
component "груша" as n_3
apple --> big_banana
big_banana --> n_3
@enduml
`
	assert.Equal(t, want, buf.String())
}

func TestWrite_PlantUMLAliasCollision(t *testing.T) {
	g := types.ExportGraph{
		Nodes: []types.ExportNode{{ID: "1", Label: "A"}, {ID: "2", Label: "a"}},
		Edges: []types.ExportEdge{{ID: "e1", From: "A", To: "a"}},
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, PlantUML, g))
	assert.Contains(t, buf.String(), "component \"a\" as n_2\n")
	assert.Contains(t, buf.String(), "a --> n_2\n")
}

func TestWrite_PlantUMLFallbackAliasCollision(t *testing.T) {
	g := types.ExportGraph{
		Nodes: []types.ExportNode{
			{ID: "1", Label: "n_2"},
			{ID: "2", Label: "связь"},
			{ID: "3", Label: "n_2_2"},
			{ID: "4", Label: "n_2"},
		},
		Edges: []types.ExportEdge{{ID: "e1", From: "n_2", To: "связь"}},
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, PlantUML, g))

	out := buf.String()
	assert.Contains(t, out, "component \"n_2\" as n_2\n")
	assert.Contains(t, out, "component \"связь\" as n_2_2\n")
	assert.Contains(t, out, "component \"n_2_2\" as n_3\n")
	assert.Contains(t, out, "component \"n_2\" as n_4\n")
	assert.Contains(t, out, "n_2 --> n_2_2\n")

	aliases := map[string]bool{}
	for _, line := range strings.Split(out, "\n") {
		if i := strings.LastIndex(line, " as "); strings.HasPrefix(line, "component ") && i > 0 {
			alias := line[i+4:]
			assert.False(t, aliases[alias], "alias %s reused", alias)
			aliases[alias] = true
		}
	}
	assert.Len(t, aliases, 4)
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, JSON, sample()))

	var got types.ExportGraph
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sample(), got)
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, Format("svg"), sample())
	assert.True(t, apperr.IsInvalid(err))
}

func TestFromLayout(t *testing.T) {
	eng, err := layout.New(layout.DefaultConfig(), zerolog.Nop())
	require.NoError(t, err)
	res, err := eng.Layout(context.Background(), extract.Extract("a -> b -> c").Graph())
	require.NoError(t, err)

	g := FromLayout(res)
	require.Len(t, g.Nodes, 3)
	assert.Equal(t, "1", g.Nodes[0].ID)
	assert.Equal(t, res.Nodes[2].Position, g.Nodes[2].Position)
	assert.Equal(t, []types.ExportEdge{
		{ID: "e1", From: "a", To: "b"},
		{ID: "e2", From: "b", To: "c"},
	}, g.Edges)
}

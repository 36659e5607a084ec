// Package export writes a positioned graph in formats other diagram tools
// can open.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/MalithGihan/relgraph-service/internal/apperr"
	"github.com/MalithGihan/relgraph-service/internal/layout"
	"github.com/MalithGihan/relgraph-service/pkg/types"
)

type Format string

const (
	DrawIO   Format = "drawio"
	PlantUML Format = "puml"
	JSON     Format = "json"
)

// DetectFormat guesses a format from a file name. It returns "" when unknown.
func DetectFormat(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".drawio", ".xml":
		return DrawIO
	case ".puml", ".plantuml":
		return PlantUML
	case ".json":
		return JSON
	default:
		return ""
	}
}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case DrawIO, PlantUML, JSON:
		return f, nil
	case "plantuml":
		return PlantUML, nil
	case "":
		return JSON, nil
	default:
		return "", apperr.InvalidInput("export.ParseFormat", fmt.Errorf("unknown format %q", s))
	}
}

func (f Format) ContentType() string {
	switch f {
	case DrawIO:
		return "application/xml"
	case PlantUML:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

func (f Format) Extension() string {
	if f == "" {
		return ".json"
	}
	return "." + string(f)
}

// Write encodes g in format f.
func Write(w io.Writer, f Format, g types.ExportGraph) error {
	switch f {
	case DrawIO:
		return writeDrawIO(w, g)
	case PlantUML:
		return writePlantUML(w, g)
	case JSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(g)
	default:
		return apperr.InvalidInput("export.Write", fmt.Errorf("unknown format %q", f))
	}
}

// FromLayout converts a layout result to the export shape, with edges named
// by label again.
func FromLayout(res layout.Result) types.ExportGraph {
	byID := make(map[string]string, len(res.Nodes))
	g := types.ExportGraph{
		Nodes: make([]types.ExportNode, 0, len(res.Nodes)),
		Edges: make([]types.ExportEdge, 0, len(res.Edges)),
	}
	for _, n := range res.Nodes {
		id := strconv.Itoa(n.ID)
		byID[id] = n.Label
		g.Nodes = append(g.Nodes, types.ExportNode{ID: id, Label: n.Label, Position: n.Position})
	}
	for _, e := range res.Edges {
		g.Edges = append(g.Edges, types.ExportEdge{ID: e.ID, From: byID[e.Source], To: byID[e.Target]})
	}
	return g
}

// resolve maps edge labels to node ids, dropping edges that name unknown labels.
func resolve(g types.ExportGraph) (map[string]string, []types.ExportEdge) {
	ids := make(map[string]string, len(g.Nodes))
	for _, n := range g.Nodes {
		if _, ok := ids[n.Label]; !ok {
			ids[n.Label] = n.ID
		}
	}
	edges := make([]types.ExportEdge, 0, len(g.Edges))
	for _, e := range g.Edges {
		from, ok := ids[e.From]
		if !ok {
			continue
		}
		to, ok := ids[e.To]
		if !ok {
			continue
		}
		edges = append(edges, types.ExportEdge{ID: e.ID, From: from, To: to})
	}
	return ids, edges
}

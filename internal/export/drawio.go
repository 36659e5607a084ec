package export

import (
	"encoding/xml"
	"io"

	"github.com/MalithGihan/relgraph-service/pkg/types"
)

type mxfile struct {
	XMLName xml.Name  `xml:"mxfile"`
	Host    string    `xml:"host,attr"`
	Diagram []diagram `xml:"diagram"`
}
type diagram struct {
	ID           string       `xml:"id,attr"`
	Name         string       `xml:"name,attr"`
	MxGraphModel mxGraphModel `xml:"mxGraphModel"`
}
type mxGraphModel struct {
	Root root `xml:"root"`
}
type root struct {
	Cells []mxCell `xml:"mxCell"`
}

type mxCell struct {
	ID       string      `xml:"id,attr"`
	Value    string      `xml:"value,attr,omitempty"`
	Style    string      `xml:"style,attr,omitempty"`
	Vertex   string      `xml:"vertex,attr,omitempty"` // "1" if node
	Edge     string      `xml:"edge,attr,omitempty"`   // "1" if edge
	Source   string      `xml:"source,attr,omitempty"`
	Target   string      `xml:"target,attr,omitempty"`
	Parent   string      `xml:"parent,attr,omitempty"`
	Geometry *mxGeometry `xml:"mxGeometry,omitempty"`
}

type mxGeometry struct {
	X        float64 `xml:"x,attr,omitempty"`
	Y        float64 `xml:"y,attr,omitempty"`
	Width    float64 `xml:"width,attr,omitempty"`
	Height   float64 `xml:"height,attr,omitempty"`
	Relative string  `xml:"relative,attr,omitempty"`
	As       string  `xml:"as,attr"`
}

const (
	vertexWidth  = 120
	vertexHeight = 40
	vertexStyle  = "rounded=1;whiteSpace=wrap;html=1;"
	edgeStyle    = "endArrow=classic;html=1;strokeColor=#555555;strokeWidth=2;"
)

// writeDrawIO emits an uncompressed mxfile. Cells "0" and "1" are the root
// and default layer draw.io expects; node and edge cells hang off layer "1".
func writeDrawIO(w io.Writer, g types.ExportGraph) error {
	_, edges := resolve(g)

	cells := []mxCell{{ID: "0"}, {ID: "1", Parent: "0"}}
	for _, n := range g.Nodes {
		cells = append(cells, mxCell{
			ID:     "n" + n.ID,
			Value:  n.Label,
			Style:  vertexStyle,
			Vertex: "1",
			Parent: "1",
			Geometry: &mxGeometry{
				X: n.Position.X, Y: n.Position.Y,
				Width: vertexWidth, Height: vertexHeight,
				As: "geometry",
			},
		})
	}
	for _, e := range edges {
		cells = append(cells, mxCell{
			ID:       "edge-" + e.ID,
			Style:    edgeStyle,
			Edge:     "1",
			Source:   "n" + e.From,
			Target:   "n" + e.To,
			Parent:   "1",
			Geometry: &mxGeometry{Relative: "1", As: "geometry"},
		})
	}

	doc := mxfile{
		Host: "relgraph",
		Diagram: []diagram{{
			ID:           "relgraph",
			Name:         "Page-1",
			MxGraphModel: mxGraphModel{Root: root{Cells: cells}},
		}},
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

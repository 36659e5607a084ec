package types

// Node is a unique label discovered in text. IDs are 1-based, in first-seen order.
type Node struct {
	ID    int    `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// Edge references its endpoints by label until layout resolves them.
type Edge struct {
	ID   int    `json:"id" yaml:"id"`
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

type Stats struct {
	NodeCount int     `json:"nodeCount" yaml:"nodeCount"`
	EdgeCount int     `json:"edgeCount" yaml:"edgeCount"`
	Density   float64 `json:"density" yaml:"density"`
}

type Graph struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

type PositionedNode struct {
	Node     `yaml:",inline"`
	Position Position `json:"position" yaml:"position"`
	Degree   int      `json:"degree" yaml:"degree"`
}

type EdgeStyle struct {
	Stroke      string `json:"stroke" yaml:"stroke"`
	StrokeWidth int    `json:"strokeWidth" yaml:"strokeWidth"`
}

type Marker struct {
	Type  string `json:"type" yaml:"type"`
	Color string `json:"color" yaml:"color"`
}

// RenderEdge is an edge resolved to node ids, ready for a flow renderer.
type RenderEdge struct {
	ID        string    `json:"id" yaml:"id"`
	Source    string    `json:"source" yaml:"source"`
	Target    string    `json:"target" yaml:"target"`
	Animated  bool      `json:"animated" yaml:"animated"`
	Style     EdgeStyle `json:"style" yaml:"style"`
	MarkerEnd Marker    `json:"markerEnd" yaml:"markerEnd"`
}

type LayoutMetadata struct {
	TotalNodes   int     `json:"totalNodes" yaml:"totalNodes"`
	TotalEdges   int     `json:"totalEdges" yaml:"totalEdges"`
	GraphDensity float64 `json:"graphDensity" yaml:"graphDensity"`
}

// FlowNodeData and FlowNode mirror the node shape the browser client renders.
type FlowNodeData struct {
	Label       string `json:"label" yaml:"label"`
	Connections int    `json:"connections" yaml:"connections"`
}

type FlowNode struct {
	ID       string       `json:"id" yaml:"id"`
	Type     string       `json:"type" yaml:"type"`
	Position Position     `json:"position" yaml:"position"`
	Data     FlowNodeData `json:"data" yaml:"data"`
}

// ExportGraph is the body the client posts when exporting a drawn graph.
type ExportGraph struct {
	Nodes []ExportNode `json:"nodes" yaml:"nodes"`
	Edges []ExportEdge `json:"edges" yaml:"edges"`
}

type ExportNode struct {
	ID       string   `json:"id" yaml:"id"`
	Label    string   `json:"label" yaml:"label"`
	Position Position `json:"position" yaml:"position"`
}

type ExportEdge struct {
	ID   string `json:"id" yaml:"id"`
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// Package layout assigns 2-D canvas coordinates to an extracted graph and
// resolves its edges into renderable descriptors.
//
// Small graphs go on a circle. Larger ones run a short heuristic force
// simulation from random starting points; pass WithSeed or WithRand for a
// reproducible run.
package layout

import (
	"context"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/MalithGihan/relgraph-service/internal/apperr"
	"github.com/MalithGihan/relgraph-service/pkg/types"
)

type Mode string

const (
	ModeCircular Mode = "circular"
	ModeForce    Mode = "force-directed"
)

type Result struct {
	Nodes    []types.PositionedNode `json:"positionedNodes" yaml:"positionedNodes"`
	Edges    []types.RenderEdge     `json:"renderEdges" yaml:"renderEdges"`
	Mode     Mode                   `json:"mode" yaml:"mode"`
	Metadata types.LayoutMetadata   `json:"metadata" yaml:"metadata"`
}

// FlowNodes converts positioned nodes to the shape the browser client draws.
func (r Result) FlowNodes() []types.FlowNode {
	out := make([]types.FlowNode, len(r.Nodes))
	for i, n := range r.Nodes {
		out[i] = types.FlowNode{
			ID:       strconv.Itoa(n.ID),
			Type:     "customNode",
			Position: n.Position,
			Data:     types.FlowNodeData{Label: n.Label, Connections: n.Degree},
		}
	}
	return out
}

// Engine is safe for concurrent use; every call builds its own state.
type Engine struct {
	cfg Config
	log zerolog.Logger
}

func New(cfg Config, log zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, log: log}, nil
}

func (e *Engine) Config() Config { return e.cfg }

type callOptions struct {
	rng *rand.Rand
}

type Option func(*callOptions)

// WithRand supplies the random source for the force simulation.
func WithRand(r *rand.Rand) Option {
	return func(o *callOptions) { o.rng = r }
}

// WithSeed seeds the force simulation.
func WithSeed(seed uint64) Option {
	return func(o *callOptions) { o.rng = newRand(seed) }
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Layout positions g.Nodes and resolves g.Edges. Edges naming an unknown label
// are left out of Result.Edges. The context is checked between simulation
// iterations; a cancelled layout returns a Timeout error and no result.
func (e *Engine) Layout(ctx context.Context, g types.Graph, opts ...Option) (Result, error) {
	start := time.Now()
	co := callOptions{}
	for _, o := range opts {
		o(&co)
	}

	res := Result{
		Nodes:    []types.PositionedNode{},
		Edges:    []types.RenderEdge{},
		Metadata: metadata(len(g.Nodes), len(g.Edges)),
	}
	if len(g.Nodes) == 0 {
		res.Mode = ModeCircular
		return res, nil
	}

	index := labelIndex(g.Nodes)
	var positions []types.Position
	if len(g.Nodes) <= e.cfg.CircularThreshold {
		res.Mode = ModeCircular
		positions = e.circular(len(g.Nodes))
	} else {
		res.Mode = ModeForce
		rng := co.rng
		if rng == nil {
			seed := e.cfg.Seed
			if seed == 0 {
				seed = uint64(time.Now().UnixNano())
			}
			rng = newRand(seed)
		}
		var err error
		positions, err = e.simulate(ctx, len(g.Nodes), links(g.Edges, index), rng)
		if err != nil {
			return Result{}, err
		}
	}

	degree := degrees(g.Edges)
	for i, n := range g.Nodes {
		res.Nodes = append(res.Nodes, types.PositionedNode{
			Node:     n,
			Position: positions[i],
			Degree:   degree[n.Label],
		})
	}
	res.Edges = e.renderEdges(g, index)

	e.log.Debug().
		Str("mode", string(res.Mode)).
		Int("nodes", len(res.Nodes)).
		Int("edges", len(res.Edges)).
		Int("dropped_edges", len(g.Edges)-len(res.Edges)).
		Dur("took", time.Since(start)).
		Msg("layout computed")
	return res, nil
}

// Input is a layout request body. Pointers distinguish an absent array from an empty one.
type Input struct {
	Nodes *[]types.Node `json:"nodes"`
	Edges *[]types.Edge `json:"edges"`
}

func (in Input) Graph() (types.Graph, error) {
	const op = "layout.Input"
	if in.Nodes == nil {
		return types.Graph{}, apperr.InvalidInput(op, apperr.ErrMissingNodes)
	}
	if in.Edges == nil {
		return types.Graph{}, apperr.InvalidInput(op, apperr.ErrMissingEdges)
	}
	return types.Graph{Nodes: *in.Nodes, Edges: *in.Edges}, nil
}

// labelIndex maps a label to its first node.
func labelIndex(nodes []types.Node) map[string]int {
	idx := make(map[string]int, len(nodes))
	for i, n := range nodes {
		if _, ok := idx[n.Label]; !ok {
			idx[n.Label] = i
		}
	}
	return idx
}

// degrees counts edge endpoints per label; a self-loop counts twice.
func degrees(edges []types.Edge) map[string]int {
	d := make(map[string]int)
	for _, e := range edges {
		d[e.From]++
		d[e.To]++
	}
	return d
}

func (e *Engine) renderEdges(g types.Graph, index map[string]int) []types.RenderEdge {
	out := []types.RenderEdge{}
	for _, edge := range g.Edges {
		si, ok := index[edge.From]
		if !ok {
			continue
		}
		ti, ok := index[edge.To]
		if !ok {
			continue
		}
		color := e.edgeColor(edge)
		out = append(out, types.RenderEdge{
			ID:        "e" + strconv.Itoa(edge.ID),
			Source:    strconv.Itoa(g.Nodes[si].ID),
			Target:    strconv.Itoa(g.Nodes[ti].ID),
			Animated:  true,
			Style:     types.EdgeStyle{Stroke: color, StrokeWidth: 2},
			MarkerEnd: types.Marker{Type: "arrowclosed", Color: color},
		})
	}
	return out
}

// edgeColor is per edge so typed relationships can be colored later; all edges share one color today.
func (e *Engine) edgeColor(types.Edge) string {
	if e.cfg.EdgeColor == "" {
		return "#555"
	}
	return e.cfg.EdgeColor
}

// metadata reports density doubled and unclamped, as the client expects.
func metadata(nodeCount, edgeCount int) types.LayoutMetadata {
	m := types.LayoutMetadata{TotalNodes: nodeCount, TotalEdges: edgeCount}
	if nodeCount > 1 {
		m.GraphDensity = float64(edgeCount) / float64(nodeCount*(nodeCount-1)) * 2
	}
	return m
}

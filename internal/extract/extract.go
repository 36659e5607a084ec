// Package extract turns loosely structured text into a labeled directed graph
// using a fixed set of syntactic forms.
package extract

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/MalithGihan/relgraph-service/internal/apperr"
	"github.com/MalithGihan/relgraph-service/pkg/types"
)

type Options struct {
	// Keywords introduce the labeled-colon arrow form. Nil means DefaultKeywords;
	// an empty non-nil slice disables the form.
	Keywords []string
	// DedupeEdges drops an edge whose (from, to) pair was already emitted.
	DedupeEdges bool
	// MaxLabelLength rejects longer labels, counted in runes. Zero means unlimited.
	MaxLabelLength int
	Logger         *zerolog.Logger
}

type Result struct {
	Nodes    []types.Node `json:"nodes" yaml:"nodes"`
	Edges    []types.Edge `json:"edges" yaml:"edges"`
	Stats    types.Stats  `json:"stats" yaml:"stats"`
	Warnings []string     `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Graph drops the stats and warnings.
func (r Result) Graph() types.Graph {
	return types.Graph{Nodes: r.Nodes, Edges: r.Edges}
}

type Extractor struct {
	matchers []matcher
	opts     Options
	log      zerolog.Logger
}

func New(opts Options) (*Extractor, error) {
	keywords := opts.Keywords
	if keywords == nil {
		keywords = DefaultKeywords
	}
	ms, err := buildMatchers(keywords)
	if err != nil {
		return nil, apperr.Wrap(apperr.Invalid, "extract.New", err, "bad keyword set")
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	return &Extractor{matchers: ms, opts: opts, log: log}, nil
}

var defaultExtractor, _ = New(Options{})

// Extract runs the default extractor.
func Extract(text string) Result {
	return defaultExtractor.Extract(text)
}

// Extract never fails: empty input and per-match faults shrink the result
// instead of aborting it.
func (x *Extractor) Extract(text string) Result {
	reg := newRegistry()
	edges := []types.Edge{}
	var warnings []string
	seen := map[string]struct{}{}

	for _, sentence := range splitSentences(text) {
		for _, m := range x.matchers {
			m.scan(sentence, func(whole, rawFrom, rawTo string) {
				from, to, err := x.candidate(rawFrom, rawTo)
				if err != nil {
					w := fmt.Sprintf("skipping %s match %q: %v", m.name, whole, err)
					warnings = append(warnings, w)
					x.log.Warn().Str("pattern", m.name).Str("match", whole).Err(err).Msg("skipping match")
					return
				}
				if x.opts.DedupeEdges {
					key := from + "\x00" + to
					if _, dup := seen[key]; dup {
						return
					}
					seen[key] = struct{}{}
				}
				reg.add(from)
				reg.add(to)
				edges = append(edges, types.Edge{ID: len(edges) + 1, From: from, To: to})
			})
		}
	}

	nodes := reg.nodes()
	return Result{
		Nodes:    nodes,
		Edges:    edges,
		Stats:    ComputeStats(len(nodes), len(edges)),
		Warnings: warnings,
	}
}

func (x *Extractor) candidate(rawFrom, rawTo string) (string, string, error) {
	from, err := x.normalize(rawFrom)
	if err != nil {
		return "", "", fmt.Errorf("source: %w", err)
	}
	to, err := x.normalize(rawTo)
	if err != nil {
		return "", "", fmt.Errorf("target: %w", err)
	}
	return from, to, nil
}

func (x *Extractor) normalize(s string) (string, error) {
	label := strings.Join(strings.FieldsFunc(s, isSpace), " ")
	if label == "" {
		return "", apperr.ErrEmptyLabel
	}
	if x.opts.MaxLabelLength > 0 && utf8.RuneCountInString(label) > x.opts.MaxLabelLength {
		return "", apperr.ErrLabelTooLong
	}
	return label, nil
}

// isSpace agrees with the ws pattern class.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || unicode.Is(unicode.Z, r) || r == '\uFEFF'
}

// ComputeStats reports density as edges over ordered node pairs. It is not
// clamped: duplicate edges can push it past 1.
func ComputeStats(nodeCount, edgeCount int) types.Stats {
	st := types.Stats{NodeCount: nodeCount, EdgeCount: edgeCount}
	if nodeCount > 1 {
		st.Density = float64(edgeCount) / float64(nodeCount*(nodeCount-1))
	}
	return st
}

func splitSentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == ';' || r == '\n'
	})
	out := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

// registry assigns ids to labels in first-seen order.
type registry struct {
	ids    map[string]int
	labels []string
}

func newRegistry() *registry {
	return &registry{ids: map[string]int{}}
}

func (r *registry) add(label string) int {
	if id, ok := r.ids[label]; ok {
		return id
	}
	r.labels = append(r.labels, label)
	r.ids[label] = len(r.labels)
	return len(r.labels)
}

func (r *registry) nodes() []types.Node {
	out := make([]types.Node, len(r.labels))
	for i, l := range r.labels {
		out[i] = types.Node{ID: i + 1, Label: l}
	}
	return out
}

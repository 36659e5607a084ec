package layout

import (
	"context"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/MalithGihan/relgraph-service/internal/apperr"
	"github.com/MalithGihan/relgraph-service/pkg/types"
)

type link struct{ source, target int }

// links resolves edges to node indexes, skipping dangling ones.
func links(edges []types.Edge, index map[string]int) []link {
	out := make([]link, 0, len(edges))
	for _, e := range edges {
		s, ok := index[e.From]
		if !ok {
			continue
		}
		t, ok := index[e.To]
		if !ok {
			continue
		}
		out = append(out, link{source: s, target: t})
	}
	return out
}

// simulate runs the repulsion/attraction loop. Velocity is rebuilt every
// iteration; nothing carries over between steps except position.
func (e *Engine) simulate(ctx context.Context, n int, ls []link, rng *rand.Rand) ([]types.Position, error) {
	c := e.cfg
	minX, maxX := c.Padding, c.Width-c.Padding
	minY, maxY := c.Padding, c.Height-c.Padding

	pos := make([]r2.Vec, n)
	for i := range pos {
		pos[i] = r2.Vec{
			X: minX + rng.Float64()*(maxX-minX),
			Y: minY + rng.Float64()*(maxY-minY),
		}
	}
	vel := make([]r2.Vec, n)

	for iter := 0; iter < c.Iterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, apperr.FromContext("layout.simulate", err)
		}
		e.step(pos, vel, ls)
	}

	out := make([]types.Position, n)
	for i, p := range pos {
		out[i] = types.Position{X: p.X, Y: p.Y}
	}
	return out, nil
}

// step applies one iteration in place. vel is scratch space of len(pos).
func (e *Engine) step(pos, vel []r2.Vec, ls []link) {
	c := e.cfg
	minX, maxX := c.Padding, c.Width-c.Padding
	minY, maxY := c.Padding, c.Height-c.Padding

	for i := range pos {
		vel[i] = r2.Vec{}
		for j := range pos {
			if i == j {
				continue
			}
			d := r2.Sub(pos[i], pos[j])
			dist := math.Max(r2.Norm(d), 1)
			force := c.Repulsion / (dist * dist)
			vel[i] = r2.Add(vel[i], r2.Scale(force/dist, d))
		}
	}

	for _, l := range ls {
		d := r2.Sub(pos[l.target], pos[l.source])
		dist := math.Max(r2.Norm(d), 1)
		force := math.Max(0, math.Log(dist)) * c.Attraction
		pull := r2.Scale(force/dist, d)
		vel[l.source] = r2.Add(vel[l.source], pull)
		vel[l.target] = r2.Sub(vel[l.target], pull)
	}

	for i := range pos {
		pos[i].X = clamp(pos[i].X+clamp(vel[i].X, -c.MaxStep, c.MaxStep), minX, maxX)
		pos[i].Y = clamp(pos[i].Y+clamp(vel[i].Y, -c.MaxStep, c.MaxStep), minY, maxY)
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

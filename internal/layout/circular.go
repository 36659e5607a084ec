package layout

import (
	"math"

	"github.com/MalithGihan/relgraph-service/pkg/types"
)

// circular spaces n nodes evenly on a circle around the canvas center,
// starting at angle zero.
func (e *Engine) circular(n int) []types.Position {
	c := e.cfg
	cx, cy := c.Width/2, c.Height/2
	radius := math.Max(0, math.Min(c.Width, c.Height)/2.5-c.Padding)

	out := make([]types.Position, n)
	for i := range out {
		angle := float64(i) / float64(n) * 2 * math.Pi
		out[i] = types.Position{
			X: clamp(cx+radius*math.Cos(angle), c.Padding, c.Width-c.Padding),
			Y: clamp(cy+radius*math.Sin(angle), c.Padding, c.Height-c.Padding),
		}
	}
	return out
}

package layout

import (
	"fmt"

	"github.com/MalithGihan/relgraph-service/internal/apperr"
)

// Config holds the canvas and simulation constants.
type Config struct {
	Width   float64 `mapstructure:"width"`
	Height  float64 `mapstructure:"height"`
	Padding float64 `mapstructure:"padding"`

	// Graphs with at most this many nodes are placed on a circle.
	CircularThreshold int `mapstructure:"circular_threshold"`

	Iterations int     `mapstructure:"iterations"`
	Repulsion  float64 `mapstructure:"repulsion"`
	Attraction float64 `mapstructure:"attraction"`
	// MaxStep caps the per-axis movement of a node in one iteration.
	MaxStep float64 `mapstructure:"max_step"`

	// Seed makes the force simulation reproducible. Zero seeds from the clock.
	Seed uint64 `mapstructure:"seed"`

	EdgeColor string `mapstructure:"edge_color"`
}

func DefaultConfig() Config {
	return Config{
		Width:             800,
		Height:            600,
		Padding:           50,
		CircularThreshold: 8,
		Iterations:        50,
		Repulsion:         30,
		Attraction:        0.3,
		MaxStep:           10,
		EdgeColor:         "#555",
	}
}

func (c Config) Validate() error {
	const op = "layout.Config"
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return apperr.InvalidInput(op, fmt.Errorf("canvas must be positive, got %gx%g", c.Width, c.Height))
	case c.Padding < 0 || 2*c.Padding >= c.Width || 2*c.Padding >= c.Height:
		return apperr.InvalidInput(op, fmt.Errorf("padding %g does not fit a %gx%g canvas", c.Padding, c.Width, c.Height))
	case c.Iterations < 0:
		return apperr.InvalidInput(op, fmt.Errorf("iterations must not be negative, got %d", c.Iterations))
	case c.CircularThreshold < 0:
		return apperr.InvalidInput(op, fmt.Errorf("circular threshold must not be negative, got %d", c.CircularThreshold))
	case c.MaxStep <= 0:
		return apperr.InvalidInput(op, fmt.Errorf("max step must be positive, got %g", c.MaxStep))
	}
	return nil
}

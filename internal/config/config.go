// Package config resolves service settings from defaults, an optional YAML
// file, .env, environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/MalithGihan/relgraph-service/internal/apperr"
	"github.com/MalithGihan/relgraph-service/internal/extract"
	"github.com/MalithGihan/relgraph-service/internal/layout"
)

const EnvPrefix = "RELGRAPH"

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Extract struct {
	Keywords       []string `mapstructure:"keywords"`
	DedupeEdges    bool     `mapstructure:"dedupe_edges"`
	MaxLabelLength int      `mapstructure:"max_label_length"`
}

type HTTP struct {
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`
	// LayoutTimeout bounds one layout, including the wait for a free slot.
	LayoutTimeout time.Duration `mapstructure:"layout_timeout"`
	// MaxConcurrentLayouts caps simultaneous force simulations.
	MaxConcurrentLayouts int64 `mapstructure:"max_concurrent_layouts"`
	// AllowedOrigins feeds the CORS policy for browser clients.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type Config struct {
	Port    string        `mapstructure:"port"`
	Log     Log           `mapstructure:"log"`
	Extract Extract       `mapstructure:"extract"`
	Layout  layout.Config `mapstructure:"layout"`
	HTTP    HTTP          `mapstructure:"http"`
}

// New returns a viper instance with defaults and environment binding in place.
// Callers may bind flags to it before Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	d := layout.DefaultConfig()
	v.SetDefault("port", "3001")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("extract.keywords", extract.DefaultKeywords)
	v.SetDefault("extract.dedupe_edges", false)
	v.SetDefault("extract.max_label_length", 0)
	v.SetDefault("layout.width", d.Width)
	v.SetDefault("layout.height", d.Height)
	v.SetDefault("layout.padding", d.Padding)
	v.SetDefault("layout.circular_threshold", d.CircularThreshold)
	v.SetDefault("layout.iterations", d.Iterations)
	v.SetDefault("layout.repulsion", d.Repulsion)
	v.SetDefault("layout.attraction", d.Attraction)
	v.SetDefault("layout.max_step", d.MaxStep)
	v.SetDefault("layout.seed", 0)
	v.SetDefault("layout.edge_color", d.EdgeColor)
	v.SetDefault("http.max_body_bytes", 1<<20)
	v.SetDefault("http.layout_timeout", "10s")
	v.SetDefault("http.max_concurrent_layouts", 4)
	v.SetDefault("http.allowed_origins", []string{"*"})

	// PORT is honoured unprefixed, as hosting platforms set it.
	_ = v.BindEnv("port", EnvPrefix+"_PORT", "PORT")
	return v
}

// Load reads .env and the config file (if any) into v and decodes the result.
// An empty file name looks for relgraph.yaml in the working directory and
// tolerates its absence.
func Load(v *viper.Viper, file string) (*Config, error) {
	_ = godotenv.Load()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("relgraph")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, apperr.Wrap(apperr.Invalid, "config.Load", err, "read config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperr.Wrap(apperr.Invalid, "config.Load", err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := c.Layout.Validate(); err != nil {
		return err
	}
	const op = "config.Validate"
	switch {
	case c.Port == "":
		return apperr.InvalidInput(op, errors.New("port must be set"))
	case c.HTTP.MaxBodyBytes <= 0:
		return apperr.InvalidInput(op, fmt.Errorf("http.max_body_bytes must be positive, got %d", c.HTTP.MaxBodyBytes))
	case c.HTTP.LayoutTimeout <= 0:
		return apperr.InvalidInput(op, fmt.Errorf("http.layout_timeout must be positive, got %s", c.HTTP.LayoutTimeout))
	case c.HTTP.MaxConcurrentLayouts <= 0:
		return apperr.InvalidInput(op, fmt.Errorf("http.max_concurrent_layouts must be positive, got %d", c.HTTP.MaxConcurrentLayouts))
	case c.Extract.MaxLabelLength < 0:
		return apperr.InvalidInput(op, fmt.Errorf("extract.max_label_length must not be negative, got %d", c.Extract.MaxLabelLength))
	}
	return nil
}

// ExtractOptions converts the extract section for extract.New.
func (c *Config) ExtractOptions() extract.Options {
	return extract.Options{
		Keywords:       c.Extract.Keywords,
		DedupeEdges:    c.Extract.DedupeEdges,
		MaxLabelLength: c.Extract.MaxLabelLength,
	}
}

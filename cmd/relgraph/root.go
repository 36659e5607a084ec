package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MalithGihan/relgraph-service/internal/apperr"
	"github.com/MalithGihan/relgraph-service/internal/config"
	"github.com/MalithGihan/relgraph-service/internal/logging"
)

// app is shared by every subcommand; PersistentPreRunE fills cfg and log.
type app struct {
	v       *viper.Viper
	cfgFile string
	output  string
	// failEmpty turns a text without relationships into an error.
	failEmpty bool
	cfg       *config.Config
	log       zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:           "relgraph",
		Short:         "Extract relationship graphs from text and lay them out",
		Version:       logging.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd.ErrOrStderr())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default ./relgraph.yaml if present)")
	pf.StringVarP(&a.output, "output", "o", "json", "output encoding: json or yaml")
	pf.BoolVar(&a.failEmpty, "fail-on-empty", false, "exit 3 when no relationships are found")
	pf.String("log-level", "info", "log level")
	pf.String("log-format", "json", "log format: json or console")
	pf.Uint64("seed", 0, "force simulation seed (0 seeds from the clock)")
	_ = a.v.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = a.v.BindPFlag("log.format", pf.Lookup("log-format"))
	_ = a.v.BindPFlag("layout.seed", pf.Lookup("seed"))

	root.AddCommand(
		newServeCmd(a),
		newExtractCmd(a),
		newLayoutCmd(a),
		newRenderCmd(a),
		newExportCmd(a),
	)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return apperr.InvalidInput("flags", err)
	})
	return root
}

func (a *app) load(stderr io.Writer) error {
	if a.output != "json" && a.output != "yaml" {
		return apperr.InvalidInput("flags", fmt.Errorf("unknown output %q, want json or yaml", a.output))
	}
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logging.NewWithWriter(stderr, cfg.Log.Level, cfg.Log.Format)
	return nil
}

// exitCode reports err on stderr, since the root command silences cobra's own
// printing, and maps its class to a process exit code.
func exitCode(err error) int {
	fmt.Fprintln(os.Stderr, "relgraph:", err)
	switch apperr.ClassOf(err) {
	case apperr.Invalid:
		return 2
	case apperr.NoMatch:
		return 3
	default:
		return 1
	}
}

package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MalithGihan/relgraph-service/internal/apperr"
	"github.com/MalithGihan/relgraph-service/internal/export"
	"github.com/MalithGihan/relgraph-service/internal/extract"
	"github.com/MalithGihan/relgraph-service/internal/layout"
	"github.com/MalithGihan/relgraph-service/pkg/types"
)

func newExtractCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "extract [file|-]",
		Short: "Extract nodes and edges from text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			res, err := a.extract(cmd, string(text))
			if err != nil {
				return err
			}
			return encode(cmd.OutOrStdout(), a.output, res)
		},
	}
}

func newLayoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "layout [file|-]",
		Short: "Lay out a graph read as extraction JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			var in layout.Input
			if err := json.Unmarshal(body, &in); err != nil {
				return apperr.InvalidInput("layout", err)
			}
			g, err := in.Graph()
			if err != nil {
				return err
			}
			res, err := a.layout(cmd.Context(), g)
			if err != nil {
				return err
			}
			return encode(cmd.OutOrStdout(), a.output, res)
		},
	}
}

func newRenderCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "render [file|-]",
		Short: "Extract and lay out text in one step",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.render(cmd, args)
			if err != nil {
				return err
			}
			return encode(cmd.OutOrStdout(), a.output, res)
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export [file|-]",
		Short: "Extract, lay out and write text as draw.io, PlantUML or JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			res, err := a.render(cmd, args)
			if err != nil {
				return err
			}
			return export.Write(cmd.OutOrStdout(), f, export.FromLayout(res))
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "drawio, puml or json")
	return cmd
}

func (a *app) extract(cmd *cobra.Command, text string) (extract.Result, error) {
	opts := a.cfg.ExtractOptions()
	opts.Logger = &a.log
	x, err := extract.New(opts)
	if err != nil {
		return extract.Result{}, err
	}
	res := x.Extract(text)
	if len(res.Edges) == 0 {
		if a.failEmpty {
			return res, apperr.Wrap(apperr.NoMatch, "extract", apperr.ErrNoRelations, "")
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s; try \"A is connected to B\" or \"A -> B\"\n", apperr.ErrNoRelations)
	}
	return res, nil
}

func (a *app) layout(ctx context.Context, g types.Graph) (layout.Result, error) {
	eng, err := layout.New(a.cfg.Layout, a.log)
	if err != nil {
		return layout.Result{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, a.cfg.HTTP.LayoutTimeout)
	defer cancel()
	return eng.Layout(ctx, g)
}

func (a *app) render(cmd *cobra.Command, args []string) (layout.Result, error) {
	text, err := readInput(cmd, args)
	if err != nil {
		return layout.Result{}, err
	}
	ex, err := a.extract(cmd, string(text))
	if err != nil {
		return layout.Result{}, err
	}
	return a.layout(cmd.Context(), ex.Graph())
}

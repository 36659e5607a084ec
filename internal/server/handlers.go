package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/MalithGihan/relgraph-service/internal/apperr"
	"github.com/MalithGihan/relgraph-service/internal/export"
	"github.com/MalithGihan/relgraph-service/internal/extract"
	"github.com/MalithGihan/relgraph-service/internal/layout"
	"github.com/MalithGihan/relgraph-service/internal/validate"
	"github.com/MalithGihan/relgraph-service/pkg/types"
)

var errBusy = errors.New("layout capacity exhausted")

type textRequest struct {
	Text string `json:"text"`
}

type healthResp struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

type visualResp struct {
	Nodes    []types.FlowNode     `json:"nodes"`
	Edges    []types.RenderEdge   `json:"edges"`
	Layout   string               `json:"layout"`
	Theme    string               `json:"theme"`
	Metadata types.LayoutMetadata `json:"metadata"`
}

type pipelineResp struct {
	visualResp
	Stats    types.Stats `json:"stats"`
	Warnings []string    `json:"warnings,omitempty"`
}

type errorResp struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResp{
		Status:    "ok",
		Service:   "relgraph",
		Timestamp: s.now().UTC().Format(time.RFC3339Nano),
	})
}

func (s *Server) handleParseText(w http.ResponseWriter, r *http.Request) {
	req, err := s.readText(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res := s.runExtract(r, req.Text)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGenerateVisual(w http.ResponseWriter, r *http.Request) {
	body, err := s.readRaw(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var in layout.Input
	if err := json.Unmarshal(body, &in); err != nil {
		s.writeError(w, r, apperr.InvalidInput("generate-visual", err))
		return
	}
	g, err := in.Graph()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validate.Body(validate.GenerateVisual, body); err != nil {
		s.writeError(w, r, err)
		return
	}

	logger(r).Info().Int("nodes", len(g.Nodes)).Int("edges", len(g.Edges)).Msg("generating visualization")
	res, err := s.runLayout(r.Context(), g)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toVisual(res))
}

// handleVisualize runs extraction and layout in one round trip.
func (s *Server) handleVisualize(w http.ResponseWriter, r *http.Request) {
	req, err := s.readText(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ex := s.runExtract(r, req.Text)
	res, err := s.runLayout(r.Context(), ex.Graph())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pipelineResp{visualResp: toVisual(res), Stats: ex.Stats, Warnings: ex.Warnings})
}

func (s *Server) handleExportGraph(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	body, err := s.readRaw(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validate.Body(validate.ExportGraph, body); err != nil {
		s.writeError(w, r, err)
		return
	}
	var g types.ExportGraph
	if err := json.Unmarshal(body, &g); err != nil {
		s.writeError(w, r, apperr.InvalidInput("export-graph", err))
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="graph`+format.Extension()+`"`)
	if err := export.Write(w, format, g); err != nil {
		logger(r).Error().Err(err).Str("format", string(format)).Msg("export failed")
	}
}

// readText reports any unusable body as a missing text; browser clients only
// check for that one message.
func (s *Server) readText(w http.ResponseWriter, r *http.Request) (textRequest, error) {
	var req textRequest
	body, err := s.readRaw(w, r)
	if err != nil {
		return req, err
	}
	if err := validate.Body(validate.ParseText, body); err != nil {
		return req, apperr.Wrap(apperr.Invalid, "parse-text", apperr.ErrMissingText, err.Error())
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, apperr.InvalidInput("parse-text", err)
	}
	return req, nil
}

// readRaw reads at most http.max_body_bytes.
func (s *Server) readRaw(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.HTTP.MaxBodyBytes))
	if err != nil {
		return nil, apperr.InvalidInput("read body", err)
	}
	return body, nil
}

func (s *Server) runExtract(r *http.Request, text string) extract.Result {
	res := s.extractor.Extract(text)
	s.metrics.ObserveExtraction(len(res.Nodes), len(res.Edges), len(res.Warnings))
	logger(r).Info().
		Int("nodeCount", res.Stats.NodeCount).
		Int("edgeCount", res.Stats.EdgeCount).
		Int("skipped", len(res.Warnings)).
		Msg("parsed text")
	return res
}

// runLayout applies the layout timeout and, for graphs that need the force
// simulation, waits for a concurrency slot within that same deadline.
func (s *Server) runLayout(ctx context.Context, g types.Graph) (layout.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.HTTP.LayoutTimeout)
	defer cancel()

	mode := string(layout.ModeCircular)
	if len(g.Nodes) > s.cfg.Layout.CircularThreshold {
		mode = string(layout.ModeForce)
		if err := s.slots.Acquire(ctx, 1); err != nil {
			// Only a deadline spent waiting means the server is full.
			if !errors.Is(err, context.DeadlineExceeded) {
				s.metrics.ObserveLayout(mode, "canceled", 0, 0)
				return layout.Result{}, apperr.FromContext("layout.acquire", err)
			}
			s.metrics.ObserveLayout(mode, "busy", 0, 0)
			return layout.Result{}, errBusy
		}
		defer s.slots.Release(1)
		s.metrics.LayoutsInFlight.Inc()
		defer s.metrics.LayoutsInFlight.Dec()
	}

	start := s.now()
	res, err := s.engine.Layout(ctx, g)
	if err != nil {
		outcome := "error"
		switch {
		case errors.Is(err, context.Canceled):
			outcome = "canceled"
		case apperr.IsTimeout(err):
			outcome = "timeout"
		}
		s.metrics.ObserveLayout(mode, outcome, 0, 0)
		return layout.Result{}, err
	}
	s.metrics.ObserveLayout(string(res.Mode), "ok", s.now().Sub(start), len(g.Edges)-len(res.Edges))
	return res, nil
}

func toVisual(res layout.Result) visualResp {
	return visualResp{
		Nodes:    res.FlowNodes(),
		Edges:    res.Edges,
		Layout:   string(res.Mode),
		Theme:    "light",
		Metadata: res.Metadata,
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	resp := errorResp{Error: "internal error", Details: err.Error()}

	switch {
	case errors.Is(err, errBusy):
		status = http.StatusServiceUnavailable
		resp = errorResp{Error: errBusy.Error()}
	case apperr.IsInvalid(err):
		status = http.StatusBadRequest
		resp = errorResp{Error: publicMessage(err), Details: err.Error()}
	case apperr.IsTimeout(err):
		status = http.StatusGatewayTimeout
		resp = errorResp{Error: "layout timed out"}
	}

	lvl := zerolog.WarnLevel
	if status >= http.StatusInternalServerError {
		lvl = zerolog.ErrorLevel
	}
	logger(r).WithLevel(lvl).Err(err).Int("status", status).Msg("request failed")
	writeJSON(w, status, resp)
}

// publicMessage prefers a known sentinel over the wrapped validator output.
func publicMessage(err error) string {
	for _, known := range []error{apperr.ErrMissingText, apperr.ErrMissingNodes, apperr.ErrMissingEdges} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "invalid request"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func logger(r *http.Request) *zerolog.Logger {
	return zerolog.Ctx(r.Context())
}

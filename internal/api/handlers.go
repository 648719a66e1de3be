package api

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/jigsaw/pkg/buildinfo"
	"github.com/matzehuels/jigsaw/pkg/errors"
	"github.com/matzehuels/jigsaw/pkg/httputil"
	"github.com/matzehuels/jigsaw/pkg/observability"
	"github.com/matzehuels/jigsaw/pkg/pipeline"
	"github.com/matzehuels/jigsaw/pkg/puzzle"
	"github.com/matzehuels/jigsaw/pkg/store"
)

// handlerFunc is a handler that reports failures instead of writing them.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func (s *Server) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}
		route := chi.RouteContext(r.Context()).RoutePattern()
		observability.HTTP().OnError(r.Context(), r.Method, route, err)
		if status := httputil.WriteError(w, err); status >= http.StatusInternalServerError {
			s.logger.Error("request failed", "method", r.Method, "route", route, "err", err)
		}
	}
}

var errNoStore = errors.New(errors.ErrCodeUnsupported, "run storage is disabled on this server")

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
	Store  bool           `json:"store"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) error {
	httputil.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get(), Store: s.store != nil})
	return nil
}

type statsBody struct {
	Rows       int     `json:"rows"`
	Cols       int     `json:"cols"`
	Pieces     int     `json:"pieces"`
	Edges      int     `json:"edges"`
	Warnings   int     `json:"warnings"`
	GenerateMS float64 `json:"generate_ms"`
	OffsetMS   float64 `json:"offset_ms,omitempty"`
	RenderMS   float64 `json:"render_ms"`
}

type cacheBody struct {
	Puzzle bool `json:"puzzle"`
	Render bool `json:"render"`
}

type generateResponse struct {
	ID           string            `json:"id,omitempty"`
	Seed         uint64            `json:"seed"`
	SeedExplicit bool              `json:"seed_explicit"`
	Stats        statsBody         `json:"stats"`
	Cache        cacheBody         `json:"cache"`
	Warnings     []puzzle.Warning  `json:"warnings,omitempty"`
	Artifacts    map[string]string `json:"artifacts"`
	Document     puzzle.Document   `json:"document"`
}

func millis(d time.Duration) float64 { return float64(d.Microseconds()) / 1000 }

func (s *Server) createPuzzle(w http.ResponseWriter, r *http.Request) error {
	var opts pipeline.Options
	if err := httputil.DecodeJSON(w, r, &opts); err != nil {
		return err
	}
	if opts.MaxPieces <= 0 || opts.MaxPieces > s.maxPieces {
		opts.MaxPieces = s.maxPieces
	}
	opts.Logger = s.logger

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	result, err := s.runner.Execute(ctx, opts)
	if err != nil {
		return err
	}

	resp := generateResponse{
		Seed:         result.Seed,
		SeedExplicit: result.SeedExplicit,
		Stats: statsBody{
			Rows:       result.Stats.Rows,
			Cols:       result.Stats.Cols,
			Pieces:     result.Stats.Pieces,
			Edges:      result.Stats.Edges,
			Warnings:   result.Stats.Warnings,
			GenerateMS: millis(result.Stats.GenerateTime),
			OffsetMS:   millis(result.Stats.OffsetTime),
			RenderMS:   millis(result.Stats.RenderTime),
		},
		Cache:     cacheBody{Puzzle: result.CacheInfo.PuzzleHit, Render: result.CacheInfo.RenderHit},
		Warnings:  result.Document.Warnings,
		Artifacts: make(map[string]string, len(result.Artifacts)),
		Document:  result.Document,
	}
	for format, data := range result.Artifacts {
		resp.Artifacts[format] = string(data)
	}

	status := http.StatusOK
	if s.store != nil {
		// Record the seed that was actually used so the run can be replayed.
		opts.Seed = &result.Seed
		rec, err := store.NewRecord(result.Document, opts)
		if err == nil {
			err = s.store.Save(r.Context(), rec)
		}
		if err != nil {
			s.logger.Warn("run not stored", "err", err)
		} else {
			resp.ID = rec.ID
			w.Header().Set("Location", "/v1/puzzles/"+rec.ID)
			status = http.StatusCreated
		}
	}

	httputil.WriteJSON(w, status, resp)
	return nil
}

func (s *Server) listPuzzles(w http.ResponseWriter, r *http.Request) error {
	if s.store == nil {
		return errNoStore
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "limit must be a non-negative integer, got %q", v)
		}
		limit = n
	}
	runs, err := s.store.List(r.Context(), limit)
	if err != nil {
		return err
	}
	if runs == nil {
		runs = []store.Record{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string][]store.Record{"runs": runs})
	return nil
}

func (s *Server) getPuzzle(w http.ResponseWriter, r *http.Request) error {
	rec, err := s.record(r)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
	return nil
}

var contentTypes = map[string]string{
	pipeline.FormatSVG:       "image/svg+xml",
	pipeline.FormatJSON:      "application/json",
	pipeline.FormatDOT:       "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatInterlock: "image/svg+xml",
}

func (s *Server) renderPuzzle(w http.ResponseWriter, r *http.Request) error {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		return err
	}
	rec, err := s.record(r)
	if err != nil {
		return err
	}
	doc, err := rec.Decode()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "stored run %s is unreadable", rec.ID)
	}

	labels, _ := strconv.ParseBool(r.URL.Query().Get("labels"))
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	artifacts, _, err := s.runner.RenderWithCacheInfo(ctx, doc, pipeline.Options{
		Formats: []string{format},
		Labels:  labels,
		Logger:  s.logger,
	})
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
	return nil
}

func (s *Server) deletePuzzle(w http.ResponseWriter, r *http.Request) error {
	if s.store == nil {
		return errNoStore
	}
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		return notFound(err, id)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (s *Server) record(r *http.Request) (store.Record, error) {
	if s.store == nil {
		return store.Record{}, errNoStore
	}
	id := chi.URLParam(r, "id")
	rec, err := s.store.Get(r.Context(), id)
	if err != nil {
		return store.Record{}, notFound(err, id)
	}
	return rec, nil
}

func notFound(err error, id string) error {
	if stderrors.Is(err, store.ErrNotFound) {
		return httputil.NotFound("run %q not found", id)
	}
	return err
}

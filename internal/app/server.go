package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vk/fxgraph/internal/ctxlog"
	"github.com/vk/fxgraph/internal/graph"
	"github.com/vk/fxgraph/internal/render"
	"golang.org/x/sync/errgroup"
)

// Handler returns the HTTP surface of the app.
func (a *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", a.healthHandler)
	r.Handle("/metrics", promhttp.HandlerFor(a.promReg, promhttp.HandlerOpts{}))
	r.Get("/scenes", a.listScenes)
	r.Get("/scenes/{name}/graph", a.sceneGraph)
	r.Get("/scenes/{name}/eval", a.evalScene)
	return r
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

type sceneInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (a *App) listScenes(w http.ResponseWriter, _ *http.Request) {
	scenes := a.Scenes()
	out := make([]sceneInfo, len(scenes))
	for i, s := range scenes {
		out[i] = sceneInfo{Name: s.Name, Description: s.Description}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		a.logger.Error("Failed to encode scenes.", "error", err)
	}
}

func (a *App) sceneGraph(w http.ResponseWriter, r *http.Request) {
	g, _, err := a.BuildScene(chi.URLParam(r, "name"))
	if err != nil {
		a.writeError(w, statusFor(err), err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, render.Mermaid(g, nil))
}

// evalScene evaluates a scene. Query parameters: "slot" (repeatable,
// slot=EXPR), "want" (repeatable, instance.port) and "format" (json or yaml).
func (a *App) evalScene(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	format := render.FormatJSON
	if f := q.Get("format"); f != "" {
		var err error
		if format, err = render.ParseFormat(f); err != nil {
			a.writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	sets, err := ParseAssignments(q["slot"])
	if err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}

	_, res, err := a.RunScene(r.Context(), chi.URLParam(r, "name"), sets, q["want"])
	if err != nil {
		a.writeError(w, statusFor(err), err)
		return
	}

	switch format {
	case render.FormatJSON:
		w.Header().Set("Content-Type", "application/json")
	case render.FormatYAML:
		w.Header().Set("Content-Type", "application/yaml")
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	if err := render.WriteResult(w, res, format); err != nil {
		a.logger.Error("Failed to write result.", "error", err)
	}
}

// statusFor maps engine errors to HTTP statuses: unknown scenes are 404,
// graph and input problems 422, node failures 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrUnknownScene):
		return http.StatusNotFound
	case errors.Is(err, graph.ErrEvaluation):
		return http.StatusInternalServerError
	case errors.Is(err, graph.ErrUnboundInput),
		errors.Is(err, graph.ErrCycle),
		errors.Is(err, graph.ErrTypeMismatch),
		errors.Is(err, graph.ErrUnknownInstance),
		errors.Is(err, graph.ErrUnknownPort):
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

func (a *App) writeError(w http.ResponseWriter, status int, err error) {
	a.logger.Debug("Request failed.", "status", status, "error", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// Serve runs the HTTP server on the configured address until ctx is done,
// then shuts it down gracefully.
func (a *App) Serve(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	srv := &http.Server{
		Addr:              a.config.ListenAddr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		logger.Info("Shutting down HTTP server...")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown failed", "error", err)
			return err
		}
		logger.Debug("HTTP server shut down gracefully.")
		return nil
	})
	return g.Wait()
}

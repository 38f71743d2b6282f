package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vk/fxgraph/internal/ctxlog"
	"github.com/vk/fxgraph/internal/evaluator"
	"github.com/vk/fxgraph/internal/graph"
	"github.com/vk/fxgraph/internal/graphstore"
	"github.com/vk/fxgraph/internal/observability"
	"github.com/vk/fxgraph/internal/port"
	"github.com/vk/fxgraph/internal/registry"
	"github.com/vk/fxgraph/modules/spatial"
	"github.com/zclconf/go-cty/cty"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	ctx      context.Context
	config   *Config
	registry *registry.Registry
	world    *spatial.World
	promReg  *prometheus.Registry
	eval     *evaluator.Evaluator
	scenes   map[string]Scene
	graphs   *graphstore.Store
}

// NewApp is the constructor for the main application. Results and printed
// values go to outW, logs to logW. With no modules the core modules are
// registered. Manifests found under cfg.ModulesPath are bound alongside the
// built-in ones.
func NewApp(outW, logW io.Writer, cfg *Config, modules ...registry.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	a := &App{
		outW:    outW,
		logger:  logger,
		ctx:     ctx,
		config:  cfg,
		world:   spatial.NewWorld(),
		promReg: prometheus.NewRegistry(),
		scenes:  make(map[string]Scene, len(builtinScenes)),
		graphs:  graphstore.New(),
	}
	if err := seedWorld(a.world); err != nil {
		return nil, fmt.Errorf("failed to seed world: %w", err)
	}

	a.registry = registry.New()
	if len(modules) == 0 {
		modules = a.coreModules()
	}
	a.registry.RegisterModules(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules))

	if cfg.ModulesPath != "" {
		if err := a.registry.LoadManifests(ctx, os.DirFS(cfg.ModulesPath), "."); err != nil {
			return nil, err
		}
	}
	if err := a.registry.Bind(ctx); err != nil {
		return nil, err
	}
	logger.Debug("Registry validation passed.", "definitions", len(a.registry.Definitions()))

	metrics, err := observability.NewMetrics(a.promReg)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	a.eval = evaluator.New(
		evaluator.WithHooks(observability.Combine(observability.LogHooks(), metrics.Hooks())),
		evaluator.WithWorkers(cfg.Workers),
	)

	for _, s := range builtinScenes {
		a.scenes[s.Name] = s
	}
	return a, nil
}

// Registry returns the application's registry.
func (a *App) Registry() *registry.Registry { return a.registry }

// World returns the world the spatial nodes act on.
func (a *App) World() *spatial.World { return a.world }

// Config returns the validated configuration.
func (a *App) Config() *Config { return a.config }

// Context returns a background context carrying the app's logger.
func (a *App) Context() context.Context { return a.ctx }

// Evaluate runs one pass over g with the app's evaluator, hooks and metrics.
func (a *App) Evaluate(ctx context.Context, g *graph.Graph, externals map[string]cty.Value, wanted ...port.Ref) (evaluator.Result, error) {
	return a.eval.Evaluate(ctxlog.WithLogger(ctx, a.logger), g, externals, wanted...)
}

// BuildScene returns the graph of the named built-in scene. Each scene is
// built once per app and shared by later callers, which must not modify it.
func (a *App) BuildScene(name string) (*graph.Graph, Scene, error) {
	s, err := a.Scene(name)
	if err != nil {
		return nil, Scene{}, err
	}
	g, err := a.graphs.GetOrBuild(name, func() (*graph.Graph, error) {
		return s.Build(a.registry)
	})
	if err != nil {
		return nil, Scene{}, err
	}
	return g, s, nil
}

// RunScene builds the named scene and evaluates it. sets maps slot names to
// HCL expressions; wants are "instance.port" references, defaulting to the
// scene's own.
func (a *App) RunScene(ctx context.Context, name string, sets map[string]string, wants []string) (*graph.Graph, evaluator.Result, error) {
	g, s, err := a.BuildScene(name)
	if err != nil {
		return nil, nil, err
	}

	externals, err := ParseExternals(g, sets)
	if err != nil {
		return g, nil, err
	}

	wanted, err := s.Wanted(wants)
	if err != nil {
		return g, nil, err
	}

	res, err := a.Evaluate(ctx, g, externals, wanted...)
	return g, res, err
}

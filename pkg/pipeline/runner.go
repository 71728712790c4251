package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/taloscope/taloscope/pkg/cache"
	"github.com/taloscope/taloscope/pkg/collision"
	errs "github.com/taloscope/taloscope/pkg/errors"
	"github.com/taloscope/taloscope/pkg/graph"
	"github.com/taloscope/taloscope/pkg/layout"
	"github.com/taloscope/taloscope/pkg/observability"
	"github.com/taloscope/taloscope/pkg/resource"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner holds no pipeline results; multiple goroutines can share one.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Engine *layout.Engine
	Logger *log.Logger
	TTL    time.Duration
	// SpecOwners derives machine ownership from spec references when a
	// machine has no owner references.
	SpecOwners bool
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer uses
// cache.DefaultKeyer, a nil engine uses layout.DefaultConfig and a nil logger
// uses log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, engine *layout.Engine, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if engine == nil {
		engine = layout.NewEngine(layout.DefaultConfig(), logger)
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Engine: engine,
		Logger: logger,
		TTL:    DefaultCacheTTL,
	}
}

type cachedLayout struct {
	Graph    *graph.Graph  `json:"graph"`
	Report   layout.Report `json:"report"`
	Rejected []string      `json:"rejected,omitempty"`
}

// Key returns the cache key for laying out c with the runner's engine.
func (r *Runner) Key(c resource.Collections) (string, error) {
	data, err := resource.Encode(c)
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeInternal, err, "encode resources")
	}
	opts := keyOpts(r.Engine.Config)
	opts.SpecOwners = r.SpecOwners
	return r.Keyer.LayoutKey(cache.Hash(data), opts), nil
}

func keyOpts(c layout.Config) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		NodeWidth:   c.NodeWidth,
		NodeHeight:  c.NodeHeight,
		RankSep:     c.RankSep,
		NodeSep:     c.NodeSep,
		AlignGap:    c.AlignGap,
		Passes:      c.Passes,
		BreakCycles: c.BreakCycles,
	}
}

// Run builds, lays out and aligns c, using the cache when possible.
//
// Resources rejected by the builder do not fail the run; they are reported
// in Result.Rejected and logged.
func (r *Runner) Run(ctx context.Context, c resource.Collections) (*Result, error) {
	key, err := r.Key(c)
	if err != nil {
		return nil, err
	}

	if res, ok := r.lookup(ctx, key); ok {
		r.Logger.Debug("layout cache hit", "key", key)
		return res, nil
	}

	res := &Result{}
	hooks := observability.Pipeline()

	hooks.OnBuildStart(ctx, c.Len())
	start := time.Now()
	opts := []graph.BuildOption{graph.WithFootprint(r.Engine.Footprint()), graph.WithLogger(r.Logger)}
	if r.SpecOwners {
		opts = append(opts, graph.WithSpecOwners())
	}
	g, buildErr := graph.Build(c, opts...)
	res.Stats.BuildTime = time.Since(start)
	hooks.OnBuildComplete(ctx, len(g.Nodes), len(g.Edges), res.Stats.BuildTime, buildErr)
	for _, e := range errs.Split(buildErr) {
		res.Rejected = append(res.Rejected, errs.UserMessage(e))
		r.Logger.Warn("rejected resource", "err", e)
	}
	res.Stats.Nodes, res.Stats.Edges = len(g.Nodes), len(g.Edges)
	r.Logger.Info("built graph",
		"nodes", res.Stats.Nodes,
		"edges", res.Stats.Edges,
		"duration", res.Stats.BuildTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hooks.OnLayoutStart(ctx, len(g.Nodes))
	start = time.Now()
	laid, rep := r.Engine.Layout(g)
	res.Graph = r.Engine.Align(laid)
	res.Report = rep
	res.Stats.LayoutTime = time.Since(start)
	hooks.OnLayoutComplete(ctx, rep.Ranks, rep.Crossings, res.Stats.LayoutTime, nil)
	r.Logger.Info("computed layout",
		"ranks", rep.Ranks,
		"crossings", rep.Crossings,
		"duration", res.Stats.LayoutTime)

	r.store(ctx, key, res)
	return res, nil
}

func (r *Runner) lookup(ctx context.Context, key string) (*Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache lookup failed", "key", key, "err", err)
		return nil, false
	}
	if !hit {
		return nil, false
	}
	var cl cachedLayout
	if err := json.Unmarshal(data, &cl); err != nil || cl.Graph == nil {
		r.Logger.Warn("discarding unreadable cache entry", "key", key)
		_ = r.Cache.Delete(ctx, key)
		return nil, false
	}
	return &Result{
		Graph:    cl.Graph,
		Report:   cl.Report,
		Rejected: cl.Rejected,
		Stats:    Stats{Nodes: len(cl.Graph.Nodes), Edges: len(cl.Graph.Edges)},
		CacheHit: true,
	}, true
}

func (r *Runner) store(ctx context.Context, key string, res *Result) {
	data, err := json.Marshal(cachedLayout{Graph: res.Graph, Report: res.Report, Rejected: res.Rejected})
	if err != nil {
		r.Logger.Warn("encode cache entry", "err", err)
		return
	}
	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
	}
}

// Resolve moves node id of g to proposed and resolves collisions against
// every other node. It returns a copy of g with the corrected position; g
// is not modified.
func (r *Runner) Resolve(ctx context.Context, g *graph.Graph, id string, proposed graph.Position) (*graph.Graph, ResolveResult, error) {
	out := g.Clone()
	n, ok := out.Node(id)
	if !ok {
		return nil, ResolveResult{}, errs.New(errs.ErrCodeNotFound, "node %q not found", id)
	}

	resolver := collision.Resolver{Default: r.Engine.Footprint()}
	start := time.Now()
	pos, trace := resolver.ResolveTrace(id, proposed, out.Nodes)
	n.Position = pos
	residual := resolver.Residual(id, pos, n.Size, out.Nodes)
	observability.Pipeline().OnResolve(ctx, len(trace), len(residual), time.Since(start))

	r.Logger.Debug("resolved drag",
		"node", id,
		"proposed", proposed,
		"position", pos,
		"corrections", len(trace),
		"residual", residual)

	return out, ResolveResult{
		NodeID:      id,
		Proposed:    proposed,
		Position:    pos,
		Corrections: trace,
		Residual:    residual,
	}, nil
}

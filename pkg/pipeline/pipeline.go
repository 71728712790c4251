// Package pipeline runs the build → layout → align pipeline for Talos
// resource collections.
//
// The CLI, the HTTP adapter and the drag TUI all go through a [Runner] so
// caching, logging and instrumentation behave the same everywhere.
//
// # Stages
//
//  1. Build: resource collections → graph (pkg/graph)
//  2. Layout: layered Sugiyama layout (pkg/layout)
//  3. Align: worker/control-plane alignment (pkg/layout)
//
// A layout is a pure function of the input resources and the layout
// configuration, so the aligned graph is cached under a key derived from
// both. Collision resolution runs per drag event and is never cached.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, layout.NewEngine(layout.DefaultConfig(), logger), logger)
//	res, err := runner.Run(ctx, collections)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	moved, rr, err := runner.Resolve(ctx, res.Graph, "wk1", graph.Position{X: 10, Y: 20})
package pipeline

import (
	"time"

	"github.com/taloscope/taloscope/pkg/collision"
	"github.com/taloscope/taloscope/pkg/graph"
	"github.com/taloscope/taloscope/pkg/layout"
)

// DefaultCacheTTL is how long cached layouts are kept.
const DefaultCacheTTL = 24 * time.Hour

// Result is the output of [Runner.Run].
type Result struct {
	Graph  *graph.Graph  `json:"graph"`
	Report layout.Report `json:"report"`
	// Rejected holds one message per resource the builder refused. The
	// remaining resources are still laid out.
	Rejected []string `json:"rejected,omitempty"`
	Stats    Stats    `json:"-"`
	CacheHit bool     `json:"-"`
}

// Stats records stage timings.
type Stats struct {
	BuildTime  time.Duration
	LayoutTime time.Duration
	Nodes      int
	Edges      int
}

// ResolveResult describes one collision resolution.
type ResolveResult struct {
	NodeID      string                 `json:"node"`
	Proposed    graph.Position         `json:"proposed"`
	Position    graph.Position         `json:"position"`
	Corrections []collision.Correction `json:"corrections,omitempty"`
	// Residual lists nodes the resolved position still overlaps.
	Residual []string `json:"residual,omitempty"`
}

// Package pkg provides the core libraries behind taloscope, the resource
// graph view of a Talos management console.
//
// # Overview
//
// taloscope turns the Talos custom resources of a management cluster
// (TalosCluster, TalosControlPlane, TalosWorker, TalosMachine) into a graph,
// lays the graph out in ranks, and keeps nodes from overlapping while a user
// drags them around. The pkg directory is organized as:
//
//  1. [resource] - Decoding resource collections from JSON or YAML
//  2. [graph] - The node/edge model and the builder that derives it
//  3. [dag] - Layering, cycle breaking and crossing reduction
//  4. [layout] - Coordinate assignment and the alignment pass
//  5. [collision] - Pushing a dragged node clear of its neighbours
//  6. [session] - Drag gestures over a live graph
//  7. [pipeline] - Orchestration (load → build → layout → cache → render)
//  8. [cache], [config], [observability], [render/dot] - Supporting layers
//
// # Architecture
//
//	Resource collections (JSON, YAML, Kubernetes List)
//	         ↓
//	    [resource] package (decode)
//	         ↓
//	    [graph] package (nodes, reference and ownership edges)
//	         ↓
//	    [layout] package (ranks, ordering, coordinates, alignment)
//	         ↓
//	    [collision] / [session] packages (interactive moves)
//	         ↓
//	    JSON / DOT / SVG output
//
// # Quick Start
//
//	import (
//	    "github.com/taloscope/taloscope/pkg/collision"
//	    "github.com/taloscope/taloscope/pkg/graph"
//	    "github.com/taloscope/taloscope/pkg/layout"
//	    "github.com/taloscope/taloscope/pkg/resource"
//	)
//
//	c, _ := resource.ReadFile("cluster.yaml")
//	g, err := graph.Build(c)    // err lists rejected resources; g is usable
//
//	eng := layout.NewEngine(layout.DefaultConfig(), nil)
//	laid, report := eng.Layout(g)
//	laid = eng.Align(laid)
//
//	pos := collision.Resolver{}.Resolve("m1", graph.Position{X: -100, Y: 50}, laid.Nodes)
//
// The [pipeline] package wraps these steps with caching and hooks, and is
// what the CLI and HTTP server use.
package pkg

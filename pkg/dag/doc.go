// Package dag provides the directed graph used as the workspace of the
// layered layout engine.
//
// # Overview
//
// Layered drawing places nodes into horizontal rows so that edges point
// downward, then orders each row to reduce edge crossings. This package holds
// the graph structure those steps operate on: nodes with a row and a
// footprint, directed edges, and a row index.
//
// Node order is deterministic. [DAG.Nodes], [DAG.Sources] and
// [DAG.NodesInRow] list nodes in insertion order, so feeding the same input
// in the same order always produces the same layout.
//
// # Basic Usage
//
//	g := dag.New()
//	g.AddNode(dag.Node{ID: "c1", Width: 250, Height: 100})
//	g.AddNode(dag.Node{ID: "cp1", Width: 250, Height: 100})
//	g.AddEdge(dag.Edge{From: "c1", To: "cp1"})
//
// Rows are usually assigned afterwards with [DAG.SetRows] once a layering
// has been computed.
//
// # Node Kinds
//
//   - [NodeKindRegular]: nodes from the input graph
//   - [NodeKindVirtual]: zero-size nodes that split edges spanning several
//     rows, so every edge joins consecutive rows
//
// # Edge Crossings
//
// [CountCrossings] and [CountLayerCrossings] count crossings between
// consecutive rows with a Fenwick tree in O(E log V). [CountPairCrossings]
// answers the local question of whether swapping two neighbours helps.
//
// # Concurrency
//
// A DAG is not safe for concurrent use. The layout engine builds a fresh DAG
// for every call and never shares it.
//
// # Related Packages
//
// The [transform] subpackage assigns rows, breaks cycles and subdivides long
// edges. The [ordering] subpackage orders nodes within rows.
//
// [transform]: github.com/taloscope/taloscope/pkg/dag/transform
// [ordering]: github.com/taloscope/taloscope/pkg/dag/ordering
package dag

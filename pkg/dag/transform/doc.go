// Package transform prepares a layout workspace for crossing reduction.
//
// # Overview
//
// Crossing reduction works row by row and assumes every edge joins two
// consecutive rows. The functions here establish that form:
//
//   - [AssignLayers] places nodes on rows by longest path (Kahn's algorithm)
//   - [DropNonDownwardEdges] removes edges a cycle left pointing sideways or up
//   - [Subdivide] splits long edges with zero-size virtual nodes
//   - [BreakCycles] optionally removes back edges before layering
//
// [Normalize] applies them in order and reports what changed.
//
// # Cycles
//
// Well-formed resource graphs are acyclic, but nothing rejects a cycle on
// input. By default cycle members are left unranked: they land on row 0 and
// are reported in [Result.Unranked]. With cycle breaking enabled, back edges
// are removed first so the remaining graph layers normally.
//
// # Usage
//
//	res := transform.Normalize(g, false)
//	if len(res.Unranked) > 0 {
//	    logger.Warn("cycle detected", "nodes", res.Unranked)
//	}
package transform

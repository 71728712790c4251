// Package layout positions the resource graph.
//
// [Engine.Layout] is a Sugiyama-style layered drawing: rank assignment by
// longest path, barycentric crossing reduction within ranks, then coordinate
// assignment with each rank centred on x = 0. [Align] is the post-pass that
// puts each worker group level with the control plane it references and its
// machines directly beneath it.
//
//	eng := layout.NewEngine(layout.DefaultConfig(), logger)
//	positioned, report := eng.Layout(g)
//	final := eng.Align(positioned)
//
// Neither step mutates its input, and neither keeps state between calls.
package layout

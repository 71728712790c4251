package layout

import (
	"github.com/taloscope/taloscope/pkg/graph"
	"github.com/taloscope/taloscope/pkg/resource"
)

// Align returns a copy of g with domain alignment applied to node positions.
// Two rules run in order:
//
//  1. A worker with a Reference edge to a control plane takes that control
//     plane's Y.
//  2. A machine that a worker aligned in step 1 owns is placed directly
//     below it, at workerY + workerHeight + gap.
//
// An unmeasured worker counts as fallback high; a zero fallback means
// [graph.DefaultFootprint].
//
// Only Y coordinates change. Control planes are never moved, so applying
// Align to its own output changes nothing.
func Align(g *graph.Graph, gap float64, fallback graph.Size) *graph.Graph {
	if !fallback.Measured() {
		fallback = graph.DefaultFootprint
	}
	out := g.Clone()
	index := out.Index()
	kindOf := func(id string) resource.Kind {
		if i, ok := index[id]; ok {
			return out.Nodes[i].Kind
		}
		return ""
	}

	aligned := make(map[string]bool)
	for _, e := range out.EdgesOf(graph.Reference) {
		if kindOf(e.Source) != resource.KindWorker || kindOf(e.Target) != resource.KindControlPlane {
			continue
		}
		worker := &out.Nodes[index[e.Source]]
		worker.Position.Y = out.Nodes[index[e.Target]].Position.Y
		aligned[e.Source] = true
	}

	for _, e := range out.EdgesOf(graph.Ownership) {
		if !aligned[e.Source] || kindOf(e.Target) != resource.KindMachine {
			continue
		}
		worker := out.Nodes[index[e.Source]]
		height := worker.Size.Height
		if !worker.Size.Measured() {
			height = fallback.Height
		}
		out.Nodes[index[e.Target]].Position.Y = worker.Position.Y + height + gap
	}
	return out
}

// Align applies [Align] with the engine's configured gap and footprint.
func (e *Engine) Align(g *graph.Graph) *graph.Graph {
	return Align(g, e.Config.AlignGap, e.Footprint())
}

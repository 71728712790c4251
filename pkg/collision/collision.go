// Package collision keeps a dragged node from overlapping the others.
//
// [Resolver.Resolve] is a single minimum-translation pass: the moved node's
// candidate rectangle is tested against every other node in order, and each
// overlap is removed by pushing the candidate along the axis of smaller
// overlap. A later push may reintroduce an overlap with a node handled
// earlier; the pass does not iterate to a fixed point, so it always finishes
// in one sweep.
package collision

import (
	"github.com/taloscope/taloscope/pkg/graph"
)

// Resolver corrects proposed positions for a node being dragged. It has no
// state between calls and is safe for concurrent use.
type Resolver struct {
	// Default is the footprint assumed for nodes with no measured size.
	// Zero means graph.DefaultFootprint.
	Default graph.Size
}

// Axis identifies the axis a correction was applied on.
type Axis int

const (
	Horizontal Axis = iota
	Vertical
)

func (a Axis) String() string {
	if a == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// MarshalText encodes the axis by name.
func (a Axis) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// Correction records one push applied while resolving.
type Correction struct {
	Against string         `json:"against"`
	Axis    Axis           `json:"axis"`
	From    graph.Position `json:"from"`
	To      graph.Position `json:"to"`
}

// Overlaps reports whether a and b share interior area. Rectangles that only
// touch along an edge do not overlap.
func Overlaps(a, b graph.Rect) bool {
	return a.Left() < b.Right() && a.Right() > b.Left() &&
		a.Top() < b.Bottom() && a.Bottom() > b.Top()
}

// Overlap returns the width and height of the intersection of a and b.
// Either value is zero or negative when they do not overlap.
func Overlap(a, b graph.Rect) (x, y float64) {
	x = min(a.Right(), b.Right()) - max(a.Left(), b.Left())
	y = min(a.Bottom(), b.Bottom()) - max(a.Top(), b.Top())
	return x, y
}

func (r Resolver) footprint() graph.Size {
	if r.Default.Measured() {
		return r.Default
	}
	return graph.DefaultFootprint
}

// Resolve returns the corrected position for movedID at proposed, given the
// current nodes. When nothing overlaps, proposed is returned unchanged.
func (r Resolver) Resolve(movedID string, proposed graph.Position, nodes []graph.Node) graph.Position {
	pos, _ := r.ResolveTrace(movedID, proposed, nodes)
	return pos
}

// ResolveTrace is [Resolver.Resolve] that also returns the corrections
// applied, in order.
//
// For each other node whose rectangle overlaps the candidate, the overlap
// depth on each axis is computed. The candidate moves along the axis with the
// smaller overlap; equal overlaps resolve vertically. On the horizontal axis
// a candidate whose left edge is left of the other's is pushed to end at the
// other's left edge, otherwise to start at its right edge. The vertical axis
// works the same way with top and bottom.
func (r Resolver) ResolveTrace(movedID string, proposed graph.Position, nodes []graph.Node) (graph.Position, []Correction) {
	fallback := r.footprint()

	size := fallback
	for _, n := range nodes {
		if n.ID == movedID {
			if n.Size.Measured() {
				size = n.Size
			}
			break
		}
	}

	pos := proposed
	var trace []Correction
	for _, other := range nodes {
		if other.ID == movedID {
			continue
		}
		cand := graph.Rect{X: pos.X, Y: pos.Y, Width: size.Width, Height: size.Height}
		obst := other.Rect(fallback)
		if !Overlaps(cand, obst) {
			continue
		}

		from := pos
		ox, oy := Overlap(cand, obst)
		axis := Vertical
		if ox < oy {
			axis = Horizontal
		}
		switch axis {
		case Horizontal:
			if cand.Left() < obst.Left() {
				pos.X = obst.Left() - cand.Width
			} else {
				pos.X = obst.Right()
			}
		case Vertical:
			if cand.Top() < obst.Top() {
				pos.Y = obst.Top() - cand.Height
			} else {
				pos.Y = obst.Bottom()
			}
		}
		trace = append(trace, Correction{Against: other.ID, Axis: axis, From: from, To: pos})
	}
	return pos, trace
}

// Residual returns the ids of nodes that a node of the given size at pos
// still overlaps. movedID is skipped.
func (r Resolver) Residual(movedID string, pos graph.Position, size graph.Size, nodes []graph.Node) []string {
	if !size.Measured() {
		size = r.footprint()
	}
	cand := graph.Rect{X: pos.X, Y: pos.Y, Width: size.Width, Height: size.Height}
	var ids []string
	for _, n := range nodes {
		if n.ID != movedID && Overlaps(cand, n.Rect(r.footprint())) {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

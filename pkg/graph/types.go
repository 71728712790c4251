package graph

import (
	"encoding/json"
	"slices"

	"github.com/taloscope/taloscope/pkg/resource"
)

// Relation is the kind of relationship an edge encodes.
type Relation string

const (
	// Reference edges run from the dependent resource to the one it names
	// in a spec reference field.
	Reference Relation = "Reference"
	// Ownership edges run from the owner to the owned resource.
	Ownership Relation = "Ownership"
)

// DefaultFootprint is the size given to nodes whose size is unknown.
var DefaultFootprint = Size{Width: 250, Height: 100}

// Size is a node footprint.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Measured reports whether both dimensions are positive.
func (s Size) Measured() bool { return s.Width > 0 && s.Height > 0 }

// Position is a node's top-left corner.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a positioned, sized visual representation of one resource.
type Node struct {
	ID       string          `json:"id"`
	Kind     resource.Kind   `json:"kind"`
	Label    string          `json:"label"`
	Position Position        `json:"position"`
	Size     Size            `json:"size"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// Rect returns the node's rectangle, using fallback when the node has not
// been measured.
func (n Node) Rect(fallback Size) Rect {
	s := n.Size
	if !s.Measured() {
		s = fallback
	}
	return Rect{X: n.Position.X, Y: n.Position.Y, Width: s.Width, Height: s.Height}
}

// Edge is a directed relationship between two nodes.
type Edge struct {
	ID       string   `json:"id"`
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	Relation Relation `json:"relationKind"`
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

func (r Rect) Left() float64   { return r.X }
func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Top() float64    { return r.Y }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Union returns the smallest rectangle containing r and o.
func (r Rect) Union(o Rect) Rect {
	left, top := min(r.Left(), o.Left()), min(r.Top(), o.Top())
	right, bottom := max(r.Right(), o.Right()), max(r.Bottom(), o.Bottom())
	return Rect{X: left, Y: top, Width: right - left, Height: bottom - top}
}

// Graph is the node set and edge set handed to layout and presentation.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node returns a pointer to the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i], true
		}
	}
	return nil, false
}

// Index maps node ids to their position in Nodes.
func (g *Graph) Index() map[string]int {
	m := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		m[n.ID] = i
	}
	return m
}

// EdgesOf returns the edges with the given relation, in order.
func (g *Graph) EdgesOf(rel Relation) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Relation == rel {
			out = append(out, e)
		}
	}
	return out
}

// Clone returns a copy that shares payload bytes but no slices.
func (g *Graph) Clone() *Graph {
	return &Graph{
		Nodes: slices.Clone(g.Nodes),
		Edges: slices.Clone(g.Edges),
	}
}

// Bounds returns the rectangle enclosing every node. Unmeasured nodes count
// with the default footprint. An empty graph has zero bounds.
func (g *Graph) Bounds() Rect {
	if len(g.Nodes) == 0 {
		return Rect{}
	}
	b := g.Nodes[0].Rect(DefaultFootprint)
	for _, n := range g.Nodes[1:] {
		b = b.Union(n.Rect(DefaultFootprint))
	}
	return b
}

// Positions returns a copy of every node position keyed by id.
func (g *Graph) Positions() map[string]Position {
	m := make(map[string]Position, len(g.Nodes))
	for _, n := range g.Nodes {
		m[n.ID] = n.Position
	}
	return m
}

package transform

import (
	"fmt"

	"github.com/taloscope/taloscope/pkg/dag"
)

// Subdivide replaces every edge that spans more than one row with a chain of
// single-row edges through virtual nodes:
//
//	Before: c1 (row 0) → cp1 (row 2)
//	After:  c1 → c1~cp1@1 → cp1
//
// Virtual nodes have a zero footprint and record the original source in
// Origin. IDs have the form "src~dst@row"; a numeric suffix is appended on
// collision. It returns the number of virtual nodes added.
func Subdivide(g *dag.DAG) int {
	gen := newIDGen(g.Nodes())
	added := 0

	var toRemove []dag.Edge
	for _, e := range g.Edges() {
		src, srcOK := g.Node(e.From)
		dst, dstOK := g.Node(e.To)
		if !srcOK || !dstOK || dst.Row <= src.Row+1 {
			continue
		}

		toRemove = append(toRemove, e)
		prevID := src.ID
		for row := src.Row + 1; row < dst.Row; row++ {
			prevID = addVirtual(g, gen, prevID, src.ID, dst.ID, row)
			added++
		}
		if err := g.AddEdge(dag.Edge{From: prevID, To: dst.ID}); err != nil {
			panic(err)
		}
	}

	for _, e := range toRemove {
		g.RemoveEdge(e.From, e.To)
	}
	return added
}

func addVirtual(g *dag.DAG, gen *idGen, from, src, dst string, row int) string {
	id := gen.next(src, dst, row)
	if err := g.AddNode(dag.Node{
		ID:     id,
		Row:    row,
		Kind:   dag.NodeKindVirtual,
		Origin: src,
	}); err != nil {
		panic(err)
	}
	if err := g.AddEdge(dag.Edge{From: from, To: id}); err != nil {
		panic(err)
	}
	return id
}

type idGen struct {
	used map[string]struct{}
}

func newIDGen(nodes []*dag.Node) *idGen {
	m := make(map[string]struct{}, len(nodes)*2)
	for _, n := range nodes {
		m[n.ID] = struct{}{}
	}
	return &idGen{used: m}
}

func (gen *idGen) next(src, dst string, row int) string {
	prefix := fmt.Sprintf("%s~%s@%d", src, dst, row)
	id := prefix
	for i := 1; ; i++ {
		if _, exists := gen.used[id]; !exists {
			gen.used[id] = struct{}{}
			return id
		}
		id = fmt.Sprintf("%s#%d", prefix, i)
	}
}

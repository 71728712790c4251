package transform

import (
	"testing"

	"github.com/taloscope/taloscope/pkg/dag"
)

func TestSubdivide(t *testing.T) {
	g := build([]string{"c1", "wk1", "cp1"},
		[2]string{"c1", "cp1"}, [2]string{"c1", "wk1"}, [2]string{"wk1", "cp1"})
	AssignLayers(g)

	if added := Subdivide(g); added != 1 {
		t.Fatalf("Subdivide() added %d virtual nodes, want 1", added)
	}
	if err := g.ValidateLayered(); err != nil {
		t.Fatalf("ValidateLayered() = %v", err)
	}

	v, ok := g.Node("c1~cp1@1")
	if !ok {
		t.Fatalf("virtual node missing, nodes = %v", dag.NodeIDs(g.Nodes()))
	}
	if !v.IsVirtual() || v.Origin != "c1" || v.Row != 1 || v.Width != 0 || v.Height != 0 {
		t.Errorf("virtual node = %+v", v)
	}
	if g.HasEdge("c1", "cp1") {
		t.Error("long edge was not removed")
	}
}

func TestSubdivideIDCollision(t *testing.T) {
	g := dag.New()
	_ = g.AddNode(dag.Node{ID: "a", Row: 0})
	_ = g.AddNode(dag.Node{ID: "a~b@1", Row: 1})
	_ = g.AddNode(dag.Node{ID: "b", Row: 2})
	_ = g.AddEdge(dag.Edge{From: "a", To: "b"})

	Subdivide(g)
	if _, ok := g.Node("a~b@1#1"); !ok {
		t.Errorf("expected suffixed id, nodes = %v", dag.NodeIDs(g.Nodes()))
	}
}

package layout

import (
	"reflect"
	"testing"

	"github.com/taloscope/taloscope/pkg/graph"
	"github.com/taloscope/taloscope/pkg/resource"
)

func placed(id string, kind resource.Kind, x, y float64) graph.Node {
	n := node(id, kind)
	n.Position = graph.Position{X: x, Y: y}
	return n
}

func TestAlign(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			placed("cp1", resource.KindControlPlane, 0, 300),
			placed("wk1", resource.KindWorker, -300, 150),
			placed("wk2", resource.KindWorker, 300, 150),
			placed("m1", resource.KindMachine, 0, 600),
			placed("m2", resource.KindMachine, 300, 600),
			placed("c1", resource.KindCluster, 0, 0),
		},
		Edges: []graph.Edge{
			ref("c1", "cp1"),
			ref("wk1", "cp1"),
			owns("wk1", "m1"),
			owns("wk2", "m2"), // wk2 references nothing, so m2 stays
		},
	}
	out := Align(g, 50, graph.Size{})
	pos := out.Positions()

	want := map[string]graph.Position{
		"cp1": {X: 0, Y: 300},
		"wk1": {X: -300, Y: 300},
		"wk2": {X: 300, Y: 150},
		"m1":  {X: 0, Y: 450},
		"m2":  {X: 300, Y: 600},
		"c1":  {X: 0, Y: 0},
	}
	if !reflect.DeepEqual(pos, want) {
		t.Errorf("positions = %v, want %v", pos, want)
	}
	if g.Nodes[1].Position.Y != 150 {
		t.Error("Align modified its input")
	}
}

func TestAlignIdempotent(t *testing.T) {
	eng := testEngine(DefaultConfig())
	positioned, _ := eng.Layout(scenarioGraph())
	once := eng.Align(positioned)
	twice := eng.Align(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("align(align(g)) != align(g):\n%v\n%v", once.Positions(), twice.Positions())
	}
}

func TestAlignIgnoresOwnershipBetweenOtherKinds(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			placed("cp1", resource.KindControlPlane, 0, 100),
			placed("wk1", resource.KindWorker, 0, 0),
			placed("cp-owned", resource.KindControlPlane, 0, 900),
		},
		Edges: []graph.Edge{ref("wk1", "cp1"), owns("wk1", "cp-owned")},
	}
	out := Align(g, 50, graph.Size{})
	if n, _ := out.Node("cp-owned"); n.Position.Y != 900 {
		t.Errorf("non-machine child moved to %v", n.Position.Y)
	}
}

func TestAlignUnmeasuredWorker(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			placed("cp1", resource.KindControlPlane, 0, 10),
			{ID: "wk1", Kind: resource.KindWorker},
			placed("m1", resource.KindMachine, 0, 0),
		},
		Edges: []graph.Edge{ref("wk1", "cp1"), owns("wk1", "m1")},
	}
	out := Align(g, 5, graph.Size{})
	if n, _ := out.Node("m1"); n.Position.Y != 10+graph.DefaultFootprint.Height+5 {
		t.Errorf("m1.y = %v", n.Position.Y)
	}
}

func TestAlignUsesEngineFootprint(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			{ID: "cp1", Kind: resource.KindControlPlane},
			{ID: "wk1", Kind: resource.KindWorker},
			{ID: "m1", Kind: resource.KindMachine},
		},
		Edges: []graph.Edge{ref("wk1", "cp1"), owns("wk1", "m1")},
	}
	cfg := CompactConfig()
	eng := testEngine(cfg)
	positioned, _ := eng.Layout(g)
	out := eng.Align(positioned)

	wk, _ := out.Node("wk1")
	m, _ := out.Node("m1")
	if got, want := m.Position.Y-wk.Position.Y, cfg.NodeHeight+cfg.AlignGap; got != want {
		t.Errorf("machine sits %v below worker top, want %v", got, want)
	}
}

func TestAlignExplicitFallback(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			placed("cp1", resource.KindControlPlane, 0, 10),
			{ID: "wk1", Kind: resource.KindWorker},
			placed("m1", resource.KindMachine, 0, 0),
		},
		Edges: []graph.Edge{ref("wk1", "cp1"), owns("wk1", "m1")},
	}
	out := Align(g, 5, graph.Size{Width: 150, Height: 50})
	if n, _ := out.Node("m1"); n.Position.Y != 65 {
		t.Errorf("m1.y = %v, want 65", n.Position.Y)
	}
}

package dot

import (
	"context"
	"strings"
	"testing"

	"github.com/taloscope/taloscope/pkg/graph"
	"github.com/taloscope/taloscope/pkg/resource"
)

func sample() *graph.Graph {
	return &graph.Graph{
		Nodes: []graph.Node{
			{ID: "c1", Kind: resource.KindCluster, Label: "Cluster: c1", Position: graph.Position{X: -72, Y: 0}},
			{ID: "cp1", Kind: resource.KindControlPlane, Label: "TalosControlPlane: cp1", Position: graph.Position{X: 25, Y: 300}},
			{ID: "m1", Kind: resource.KindMachine, Position: graph.Position{X: -288, Y: 432}, Size: graph.Size{Width: 144, Height: 72}},
		},
		Edges: []graph.Edge{
			{ID: "e-c1-cp1", Source: "c1", Target: "cp1", Relation: graph.Reference},
			{ID: "e-cp1-m1-owner", Source: "cp1", Target: "m1", Relation: graph.Ownership},
		},
	}
}

func TestToDOT(t *testing.T) {
	src := ToDOT(sample(), Options{Footprint: graph.Size{Width: 144, Height: 72}})

	for _, want := range []string{
		`"c1" [label="Cluster: c1", pos="0,-0.5!", width=2, height=1, fillcolor="#dbeafe"];`,
		`"m1" [label="m1", pos="-3,-6.5!", width=2, height=1, fillcolor="#e5e7eb"];`,
		`"c1" -> "cp1";`,
		`"cp1" -> "m1" [style=dashed];`,
	} {
		if !strings.Contains(src, want) {
			t.Errorf("DOT missing %s\n%s", want, src)
		}
	}
	if !strings.HasPrefix(src, "digraph G {") || !strings.HasSuffix(src, "}\n") {
		t.Error("DOT is not a complete digraph")
	}
}

func TestToDOTDetailed(t *testing.T) {
	src := ToDOT(sample(), Options{Detailed: true})
	if !strings.Contains(src, `label="Cluster: c1\nkind: Cluster\nx: -72 y: 0"`) {
		t.Errorf("detailed label missing:\n%s", src)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(sample(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	s := string(svg)
	if !strings.Contains(s, "<svg") || !strings.Contains(s, "Cluster: c1") {
		t.Errorf("unexpected SVG output: %.200s", s)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.50 200.00"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.50 200.00" width="100" height="200"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox = %s", got)
	}

	plain := []byte(`<svg><g/></svg>`)
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("svg without viewBox should be unchanged")
	}
}

package transform

import (
	"testing"

	"github.com/taloscope/taloscope/pkg/dag"
)

func build(ids []string, edges ...[2]string) *dag.DAG {
	g := dag.New()
	for _, id := range ids {
		_ = g.AddNode(dag.Node{ID: id})
	}
	for _, e := range edges {
		_ = g.AddEdge(dag.Edge{From: e[0], To: e[1]})
	}
	return g
}

func TestBreakCycles(t *testing.T) {
	tests := []struct {
		name        string
		ids         []string
		edges       [][2]string
		wantRemoved int
		wantEdges   int
	}{
		{
			name:      "no cycles",
			ids:       []string{"a", "b", "c"},
			edges:     [][2]string{{"a", "b"}, {"b", "c"}},
			wantEdges: 2,
		},
		{
			name:        "two-cycle",
			ids:         []string{"a", "b"},
			edges:       [][2]string{{"a", "b"}, {"b", "a"}},
			wantRemoved: 1,
			wantEdges:   1,
		},
		{
			name:        "triangle",
			ids:         []string{"a", "b", "c"},
			edges:       [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}},
			wantRemoved: 1,
			wantEdges:   2,
		},
		{
			name:        "two separate cycles",
			ids:         []string{"a", "b", "c", "d"},
			edges:       [][2]string{{"a", "b"}, {"b", "a"}, {"c", "d"}, {"d", "c"}},
			wantRemoved: 2,
			wantEdges:   2,
		},
		{
			name:        "cycle below a source",
			ids:         []string{"root", "a", "b"},
			edges:       [][2]string{{"root", "a"}, {"a", "b"}, {"b", "a"}},
			wantRemoved: 1,
			wantEdges:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := build(tt.ids, tt.edges...)
			removed := BreakCycles(g)
			if len(removed) != tt.wantRemoved {
				t.Errorf("removed %v, want %d edges", removed, tt.wantRemoved)
			}
			if g.EdgeCount() != tt.wantEdges {
				t.Errorf("EdgeCount() = %d, want %d", g.EdgeCount(), tt.wantEdges)
			}
			if err := g.Validate(); err != nil {
				t.Errorf("Validate() after BreakCycles = %v", err)
			}
		})
	}
}

func TestBreakCyclesRemovesBackEdge(t *testing.T) {
	g := build([]string{"root", "a", "b"}, [2]string{"root", "a"}, [2]string{"a", "b"}, [2]string{"b", "a"})
	removed := BreakCycles(g)
	if len(removed) != 1 || removed[0] != (dag.Edge{From: "b", To: "a"}) {
		t.Errorf("removed = %v, want [b→a]", removed)
	}
}

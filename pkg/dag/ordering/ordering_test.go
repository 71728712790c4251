package ordering

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/taloscope/taloscope/pkg/dag"
)

// layered builds a graph from rows of ids and edges between them.
func layered(rows [][]string, edges [][2]string) *dag.DAG {
	g := dag.New()
	for r, ids := range rows {
		for _, id := range ids {
			_ = g.AddNode(dag.Node{ID: id, Row: r})
		}
	}
	for _, e := range edges {
		_ = g.AddEdge(dag.Edge{From: e[0], To: e[1]})
	}
	return g
}

func TestInsertionOrder(t *testing.T) {
	g := layered([][]string{{"b", "a"}, {"z", "y"}}, [][2]string{{"b", "y"}, {"a", "z"}})
	got := InsertionOrder{}.OrderRows(g)
	want := map[int][]string{0: {"b", "a"}, 1: {"z", "y"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("OrderRows() = %v, want %v", got, want)
	}
}

func TestBarycentricNeverWorse(t *testing.T) {
	tests := []struct {
		name  string
		rows  [][]string
		edges [][2]string
	}{
		{
			name:  "crossing pair",
			rows:  [][]string{{"a", "b"}, {"x", "y"}},
			edges: [][2]string{{"a", "y"}, {"b", "x"}},
		},
		{
			name:  "complete bipartite",
			rows:  [][]string{{"a", "b"}, {"x", "y"}},
			edges: [][2]string{{"a", "x"}, {"a", "y"}, {"b", "x"}, {"b", "y"}},
		},
		{
			name: "three rows",
			rows: [][]string{{"c1", "c2"}, {"w1", "w2", "w3"}, {"m1", "m2", "m3"}},
			edges: [][2]string{
				{"c1", "w3"}, {"c2", "w1"}, {"c2", "w2"},
				{"w1", "m3"}, {"w2", "m1"}, {"w3", "m2"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := layered(tt.rows, tt.edges)
			initial := dag.CountCrossings(g, InsertionOrder{}.OrderRows(g))
			orders := Barycentric{}.OrderRows(g)
			if got := dag.CountCrossings(g, orders); got > initial {
				t.Errorf("crossings = %d, worse than insertion order %d", got, initial)
			}
			for r, ids := range tt.rows {
				if len(orders[r]) != len(ids) {
					t.Errorf("row %d = %v, lost nodes from %v", r, orders[r], ids)
				}
			}
		})
	}
}

func TestBarycentricThreeRowsCrossingFree(t *testing.T) {
	g := layered(
		[][]string{{"c1", "c2"}, {"w1", "w2", "w3"}, {"m1", "m2", "m3"}},
		[][2]string{{"c1", "w3"}, {"c2", "w1"}, {"c2", "w2"}, {"w1", "m3"}, {"w2", "m1"}, {"w3", "m2"}},
	)
	orders := Barycentric{}.OrderRows(g)
	if c := dag.CountCrossings(g, orders); c != 0 {
		t.Errorf("crossings = %d, want 0 (orders %v)", c, orders)
	}
}

func TestBarycentricDeterministic(t *testing.T) {
	var rows [][]string
	var edges [][2]string
	for r := 0; r < 4; r++ {
		var ids []string
		for i := 0; i < 5; i++ {
			ids = append(ids, fmt.Sprintf("n%d_%d", r, i))
		}
		rows = append(rows, ids)
	}
	for r := 0; r < 3; r++ {
		for i := 0; i < 5; i++ {
			edges = append(edges, [2]string{rows[r][i], rows[r+1][(i*3+1)%5]})
		}
	}

	first := Barycentric{}.OrderRows(layered(rows, edges))
	for range 10 {
		if got := (Barycentric{}).OrderRows(layered(rows, edges)); !reflect.DeepEqual(got, first) {
			t.Fatalf("non-deterministic ordering:\n%v\n%v", got, first)
		}
	}
}

func TestBarycentricSingleRow(t *testing.T) {
	g := layered([][]string{{"b", "a"}}, nil)
	got := Barycentric{}.OrderRows(g)
	if !reflect.DeepEqual(got, map[int][]string{0: {"b", "a"}}) {
		t.Errorf("OrderRows() = %v", got)
	}
}

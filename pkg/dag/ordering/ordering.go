package ordering

import (
	"maps"
	"slices"

	"github.com/taloscope/taloscope/pkg/dag"
)

// DefaultPasses is the number of sweeps [Barycentric] runs when Passes is 0.
const DefaultPasses = 8

// Orderer determines the left-to-right sequence of nodes in each row.
type Orderer interface {
	OrderRows(g *dag.DAG) map[int][]string
}

// InsertionOrder lists each row in the order its nodes were added.
type InsertionOrder struct{}

func (InsertionOrder) OrderRows(g *dag.DAG) map[int][]string {
	orders := make(map[int][]string, g.RowCount())
	for _, r := range g.RowIDs() {
		orders[r] = dag.NodeIDs(g.NodesInRow(r))
	}
	return orders
}

// Barycentric reduces crossings with alternating barycenter sweeps.
type Barycentric struct {
	// Passes is the number of sweeps; odd passes sweep down, even passes
	// sweep up. Zero means DefaultPasses.
	Passes int
}

func (b Barycentric) OrderRows(g *dag.DAG) map[int][]string {
	orders := InsertionOrder{}.OrderRows(g)
	rows := g.RowIDs()
	if len(rows) < 2 {
		return orders
	}

	passes := b.Passes
	if passes <= 0 {
		passes = DefaultPasses
	}

	best := cloneOrders(orders)
	bestCrossings := dag.CountCrossings(g, orders)

	for pass := 0; pass < passes && bestCrossings > 0; pass++ {
		if pass%2 == 0 {
			for i := 1; i < len(rows); i++ {
				orders[rows[i]] = sortByBarycenter(orders[rows[i]], dag.PosMap(orders[rows[i-1]]), g.Parents)
			}
		} else {
			for i := len(rows) - 2; i >= 0; i-- {
				orders[rows[i]] = sortByBarycenter(orders[rows[i]], dag.PosMap(orders[rows[i+1]]), g.Children)
			}
		}
		transpose(g, rows, orders)

		if c := dag.CountCrossings(g, orders); c < bestCrossings {
			bestCrossings = c
			best = cloneOrders(orders)
		}
	}
	return best
}

func sortByBarycenter(row []string, ref map[string]int, neighbors func(string) []string) []string {
	type weighted struct {
		id     string
		weight float64
	}
	ws := make([]weighted, len(row))
	for i, id := range row {
		sum, n := 0, 0
		for _, nb := range neighbors(id) {
			if p, ok := ref[nb]; ok {
				sum += p
				n++
			}
		}
		w := float64(i)
		if n > 0 {
			w = float64(sum) / float64(n)
		}
		ws[i] = weighted{id, w}
	}
	slices.SortStableFunc(ws, func(a, b weighted) int {
		switch {
		case a.weight < b.weight:
			return -1
		case a.weight > b.weight:
			return 1
		}
		return 0
	})
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.id
	}
	return out
}

// transpose swaps adjacent nodes while doing so strictly reduces crossings
// with both neighbouring rows. Each row is scanned at most len(row) times.
func transpose(g *dag.DAG, rows []int, orders map[int][]string) {
	for i, r := range rows {
		row := orders[r]
		var above, below map[string]int
		if i > 0 {
			above = dag.PosMap(orders[rows[i-1]])
		}
		if i < len(rows)-1 {
			below = dag.PosMap(orders[rows[i+1]])
		}
		for range len(row) {
			improved := false
			for j := 0; j+1 < len(row); j++ {
				v, w := row[j], row[j+1]
				if pairCrossings(g, w, v, above, below) < pairCrossings(g, v, w, above, below) {
					row[j], row[j+1] = w, v
					improved = true
				}
			}
			if !improved {
				break
			}
		}
	}
}

func pairCrossings(g *dag.DAG, left, right string, above, below map[string]int) int {
	c := 0
	if above != nil {
		c += dag.CountPairCrossings(g, left, right, above, true)
	}
	if below != nil {
		c += dag.CountPairCrossings(g, left, right, below, false)
	}
	return c
}

func cloneOrders(orders map[int][]string) map[int][]string {
	out := make(map[int][]string, len(orders))
	for _, r := range slices.Sorted(maps.Keys(orders)) {
		out[r] = slices.Clone(orders[r])
	}
	return out
}

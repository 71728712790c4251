package transform

import "github.com/taloscope/taloscope/pkg/dag"

// AssignLayers assigns every node a row by longest path from the sources.
//
// It runs Kahn's topological traversal: sources start at row 0 and each child
// is placed one row below its deepest parent. A node is placed only after all
// of its parents have been, so every edge of an acyclic graph points strictly
// downward.
//
// # Cycles
//
// Members of a cycle never reach in-degree zero, and neither does anything
// reachable only through one. The traversal visits each node and edge at most
// once, so it terminates regardless; nodes it could not place are put on row
// 0 and returned, in insertion order, so the caller can report them.
//
// Existing row assignments are overwritten. Runs in O(V + E).
func AssignLayers(g *dag.DAG) (unranked []string) {
	nodes := g.Nodes()
	inDegree := make(map[string]int, len(nodes))
	rows := make(map[string]int, len(nodes))
	placed := make(map[string]bool, len(nodes))
	queue := make([]string, 0, len(nodes))

	for _, n := range nodes {
		degree := g.InDegree(n.ID)
		inDegree[n.ID] = degree
		if degree == 0 {
			queue = append(queue, n.ID)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		placed[curr] = true

		for _, child := range g.Children(curr) {
			if row := rows[curr] + 1; row > rows[child] {
				rows[child] = row
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	for _, n := range nodes {
		if !placed[n.ID] {
			rows[n.ID] = 0
			unranked = append(unranked, n.ID)
		}
	}

	g.SetRows(rows)
	return unranked
}

// DropNonDownwardEdges removes every edge whose target is not on a lower row
// than its source. After [AssignLayers] these are exactly the edges touching
// unranked nodes. The removed edges are returned in insertion order.
func DropNonDownwardEdges(g *dag.DAG) []dag.Edge {
	var dropped []dag.Edge
	for _, e := range g.Edges() {
		src, _ := g.Node(e.From)
		dst, _ := g.Node(e.To)
		if dst.Row <= src.Row {
			dropped = append(dropped, e)
		}
	}
	for _, e := range dropped {
		g.RemoveEdge(e.From, e.To)
	}
	return dropped
}

package transform

import "github.com/taloscope/taloscope/pkg/dag"

// Result describes what [Normalize] changed.
type Result struct {
	// Unranked lists nodes that could not be layered because of a cycle.
	// They were placed on row 0.
	Unranked []string
	// BrokenEdges are back edges removed before layering when cycle
	// breaking was requested.
	BrokenEdges []dag.Edge
	// Dropped are edges excluded from ordering because they do not point
	// downward.
	Dropped []dag.Edge
	// Virtual is the number of virtual nodes inserted by [Subdivide].
	Virtual int
}

// Normalize prepares g for ordering: it optionally breaks cycles, assigns
// rows, drops edges that do not point downward and subdivides long edges.
// Afterwards every edge joins consecutive rows.
func Normalize(g *dag.DAG, breakCycles bool) Result {
	var res Result
	if breakCycles {
		res.BrokenEdges = BreakCycles(g)
	}
	res.Unranked = AssignLayers(g)
	res.Dropped = DropNonDownwardEdges(g)
	res.Virtual = Subdivide(g)
	return res
}

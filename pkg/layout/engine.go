package layout

import (
	"github.com/charmbracelet/log"

	"github.com/taloscope/taloscope/pkg/dag"
	"github.com/taloscope/taloscope/pkg/dag/ordering"
	"github.com/taloscope/taloscope/pkg/dag/transform"
	"github.com/taloscope/taloscope/pkg/graph"
)

// Report summarises one layout computation.
type Report struct {
	Ranks int `json:"ranks"`
	// Unranked lists nodes caught in a cycle; they were placed on rank 0.
	Unranked []string `json:"unranked,omitempty"`
	// BrokenEdges counts back edges removed when cycle breaking is on.
	BrokenEdges int `json:"broken_edges,omitempty"`
	// Ignored counts input edges left out of ranking: self loops, repeats of
	// an already seen pair, and edges with unknown endpoints.
	Ignored int `json:"ignored,omitempty"`
	// Dropped counts edges excluded from ordering because a cycle left them
	// pointing sideways or up.
	Dropped   int `json:"dropped,omitempty"`
	Virtual   int `json:"virtual"`
	Crossings int `json:"crossings"`
}

// Engine computes layered layouts. It holds configuration only; every call
// to [Engine.Layout] builds its own workspace.
type Engine struct {
	Config  Config
	Orderer ordering.Orderer
	Logger  *log.Logger
}

// NewEngine creates an engine with a barycentric orderer. A nil logger uses
// log.Default().
func NewEngine(cfg Config, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		Config:  cfg,
		Orderer: ordering.Barycentric{Passes: cfg.Passes},
		Logger:  logger,
	}
}

// Footprint returns the size used for unmeasured nodes.
func (e *Engine) Footprint() graph.Size {
	return graph.Size{Width: e.Config.NodeWidth, Height: e.Config.NodeHeight}
}

// Layout returns a copy of g with every node positioned. g is not modified.
//
// Nodes are ranked top to bottom by longest path, ordered within ranks by
// barycenter sweeps, and placed so each rank is centred on x = 0. A rank's
// top is the sum of the heights of the ranks above it plus RankSep each, and
// each node's centre sits at its slot centre: position = slotCenter − size/2.
// Coordinates may be negative.
//
// Identical input, including node and edge order, yields identical output.
func (e *Engine) Layout(g *graph.Graph) (*graph.Graph, Report) {
	out := g.Clone()
	var rep Report
	if len(out.Nodes) == 0 {
		return out, rep
	}

	ws, ignored := e.workspace(out)
	rep.Ignored = ignored

	res := transform.Normalize(ws, e.Config.BreakCycles)
	rep.Unranked = res.Unranked
	rep.BrokenEdges = len(res.BrokenEdges)
	rep.Dropped = len(res.Dropped)
	rep.Virtual = res.Virtual
	rep.Ranks = ws.RowCount()
	if len(res.Unranked) > 0 {
		e.Logger.Warn("cycle detected, placing unranked nodes on rank 0", "nodes", res.Unranked)
	}
	for _, be := range res.BrokenEdges {
		e.Logger.Debug("broke cycle edge", "from", be.From, "to", be.To)
	}

	orders := e.orderer().OrderRows(ws)
	rep.Crossings = dag.CountCrossings(ws, orders)

	e.assignCoordinates(ws, orders, out)
	e.Logger.Debug("layout computed", "nodes", len(out.Nodes), "ranks", rep.Ranks,
		"virtual", rep.Virtual, "crossings", rep.Crossings)
	return out, rep
}

func (e *Engine) orderer() ordering.Orderer {
	if e.Orderer == nil {
		return ordering.Barycentric{Passes: e.Config.Passes}
	}
	return e.Orderer
}

// workspace builds a fresh DAG from g. Parallel edges collapse to one and
// self loops are skipped; neither affects ranking.
func (e *Engine) workspace(g *graph.Graph) (*dag.DAG, int) {
	ws := dag.New()
	fallback := e.Footprint()
	for _, n := range g.Nodes {
		s := n.Size
		if !s.Measured() {
			s = fallback
		}
		if err := ws.AddNode(dag.Node{ID: n.ID, Width: s.Width, Height: s.Height}); err != nil {
			e.Logger.Warn("skipping node", "id", n.ID, "err", err)
		}
	}

	ignored := 0
	for _, edge := range g.Edges {
		if ws.HasEdge(edge.Source, edge.Target) {
			ignored++
			continue
		}
		if err := ws.AddEdge(dag.Edge{From: edge.Source, To: edge.Target}); err != nil {
			e.Logger.Debug("edge left out of layout", "edge", edge.ID, "err", err)
			ignored++
		}
	}
	return ws, ignored
}

func (e *Engine) assignCoordinates(ws *dag.DAG, orders map[int][]string, out *graph.Graph) {
	index := out.Index()
	top := 0.0
	for _, r := range ws.RowIDs() {
		ids := orders[r]

		rankHeight, rowWidth := 0.0, 0.0
		for i, id := range ids {
			n, _ := ws.Node(id)
			rankHeight = max(rankHeight, n.Height)
			rowWidth += n.Width
			if i > 0 {
				rowWidth += e.Config.NodeSep
			}
		}

		centerY := top + rankHeight/2
		cursor := -rowWidth / 2
		for _, id := range ids {
			n, _ := ws.Node(id)
			centerX := cursor + n.Width/2
			cursor += n.Width + e.Config.NodeSep
			if n.IsVirtual() {
				continue
			}
			out.Nodes[index[id]].Position = graph.Position{
				X: centerX - n.Width/2,
				Y: centerY - n.Height/2,
			}
		}
		top += rankHeight + e.Config.RankSep
	}
}

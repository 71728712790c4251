package layout

// Config holds the spacing constants of a layout.
type Config struct {
	// NodeWidth and NodeHeight are the footprint used for nodes whose size
	// has not been measured.
	NodeWidth  float64
	NodeHeight float64
	// RankSep is the vertical gap between consecutive ranks.
	RankSep float64
	// NodeSep is the horizontal gap between neighbours in a rank.
	NodeSep float64
	// AlignGap is the gap left between an aligned worker and the machines
	// placed below it.
	AlignGap float64
	// Passes is the number of crossing-reduction sweeps. Zero uses the
	// orderer's default.
	Passes int
	// BreakCycles removes back edges before ranking instead of placing
	// cycle members on rank 0.
	BreakCycles bool
}

const (
	DefaultNodeWidth  = 250
	DefaultNodeHeight = 100
	DefaultRankSep    = 50
	DefaultNodeSep    = 50
	DefaultAlignGap   = 50

	CompactNodeWidth  = 150
	CompactNodeHeight = 50
)

// DefaultConfig returns the standard 250×100 layout.
func DefaultConfig() Config {
	return Config{
		NodeWidth:  DefaultNodeWidth,
		NodeHeight: DefaultNodeHeight,
		RankSep:    DefaultRankSep,
		NodeSep:    DefaultNodeSep,
		AlignGap:   DefaultAlignGap,
	}
}

// CompactConfig returns the 150×50 variant used for dense views.
func CompactConfig() Config {
	c := DefaultConfig()
	c.NodeWidth = CompactNodeWidth
	c.NodeHeight = CompactNodeHeight
	return c
}

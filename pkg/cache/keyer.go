package cache

// KeyVersion is bumped whenever the cached layout format changes.
const KeyVersion = "v1"

// LayoutKeyOpts are the layout settings that influence the cached result.
type LayoutKeyOpts struct {
	NodeWidth   float64 `json:"nw"`
	NodeHeight  float64 `json:"nh"`
	RankSep     float64 `json:"rs"`
	NodeSep     float64 `json:"ns"`
	AlignGap    float64 `json:"ag"`
	Passes      int     `json:"p"`
	BreakCycles bool    `json:"bc,omitempty"`
	SpecOwners  bool    `json:"so,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey returns the key for a layout of the input with the given hash.
	LayoutKey(inputHash string, opts LayoutKeyOpts) string
}

// DefaultKeyer hashes the input hash and options into "layout:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(inputHash string, opts LayoutKeyOpts) string {
	return digestKey("layout", KeyVersion, inputHash, opts)
}

package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	errs "github.com/taloscope/taloscope/pkg/errors"
	"github.com/taloscope/taloscope/pkg/graph"
	"github.com/taloscope/taloscope/pkg/render/dot"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// Formats lists the supported output formats.
var Formats = []string{FormatJSON, FormatDOT, FormatSVG}

// FormatFromPath infers the output format from a file extension, defaulting
// to JSON.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".dot", ".gv":
		return FormatDOT
	case ".svg":
		return FormatSVG
	default:
		return FormatJSON
	}
}

// Render encodes a positioned graph in the given format.
func (r *Runner) Render(ctx context.Context, g *graph.Graph, format string, detailed bool) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		return graph.MarshalGraph(g)
	case FormatDOT:
		return []byte(dot.ToDOT(g, r.dotOptions(detailed))), nil
	case FormatSVG:
		svg, err := dot.RenderSVG(ctx, dot.ToDOT(g, r.dotOptions(detailed)))
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInternal, err, "render svg")
		}
		return svg, nil
	default:
		return nil, errs.New(errs.ErrCodeUnsupported, "unsupported format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

func (r *Runner) dotOptions(detailed bool) dot.Options {
	return dot.Options{Detailed: detailed, Footprint: r.Engine.Footprint()}
}

// String implements fmt.Stringer for logging.
func (s Stats) String() string {
	return fmt.Sprintf("nodes=%d edges=%d build=%s layout=%s", s.Nodes, s.Edges, s.BuildTime, s.LayoutTime)
}

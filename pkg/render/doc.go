// Package render holds output renderers for positioned resource graphs.
//
// The [dot] subpackage exports a laid-out graph as Graphviz DOT with pinned
// node positions and renders it to SVG:
//
//	src := dot.ToDOT(g, dot.Options{})
//	svg, err := dot.RenderSVG(ctx, src)
//
// [dot]: github.com/taloscope/taloscope/pkg/render/dot
package render

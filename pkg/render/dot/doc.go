// Package dot exports positioned graphs as Graphviz DOT and renders them.
//
// Positions computed by the layout engine are pinned with pos="x,y!" so
// Graphviz draws the graph exactly as laid out instead of running its own
// layout. The neato engine honours pinned positions.
//
//	src := dot.ToDOT(g, dot.Options{})
//	svg, err := dot.RenderSVG(ctx, src)
//
// Coordinates are converted from pixels to inches (72 per inch) and the
// y axis is flipped, since Graphviz grows upward.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package dot

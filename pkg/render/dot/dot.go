package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/taloscope/taloscope/pkg/graph"
	"github.com/taloscope/taloscope/pkg/resource"
)

const pointsPerInch = 72

// Options configures DOT generation.
type Options struct {
	// Detailed adds the node kind and position to each label.
	Detailed bool
	// Footprint is the size drawn for unmeasured nodes. Zero uses
	// graph.DefaultFootprint.
	Footprint graph.Size
}

var fill = map[resource.Kind]string{
	resource.KindCluster:      "#dbeafe",
	resource.KindControlPlane: "#fde68a",
	resource.KindWorker:       "#bbf7d0",
	resource.KindMachine:      "#e5e7eb",
}

// ToDOT converts a positioned graph to DOT with every node pinned.
// Ownership edges are drawn dashed.
func ToDOT(g *graph.Graph, opts Options) string {
	fp := opts.Footprint
	if !fp.Measured() {
		fp = graph.DefaultFootprint
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=line;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fixedsize=true, fontsize=12];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		r := n.Rect(fp)
		cx := (r.X + r.Width/2) / pointsPerInch
		cy := -(r.Y + r.Height/2) / pointsPerInch
		attrs := []string{
			fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed)),
			fmt.Sprintf("pos=\"%s,%s!\"", ftoa(cx), ftoa(cy)),
			fmt.Sprintf("width=%s", ftoa(r.Width/pointsPerInch)),
			fmt.Sprintf("height=%s", ftoa(r.Height/pointsPerInch)),
		}
		if c, ok := fill[n.Kind]; ok {
			attrs = append(attrs, fmt.Sprintf("fillcolor=%q", c))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		if e.Relation == graph.Ownership {
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed];\n", e.Source, e.Target)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n graph.Node, detailed bool) string {
	label := n.Label
	if label == "" {
		label = n.ID
	}
	if !detailed {
		return label
	}
	return fmt.Sprintf("%s\nkind: %s\nx: %s y: %s", label, n.Kind, ftoa(n.Position.X), ftoa(n.Position.Y))
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// RenderSVG renders DOT source to SVG with the neato engine so pinned
// positions are kept.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

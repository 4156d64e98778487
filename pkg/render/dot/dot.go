package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/gmplayout/pkg/facility"
)

// pointsPerInch converts canvas pixels to Graphviz inches for node sizes.
const pointsPerInch = 72.0

// Options configures floor-plan rendering.
type Options struct {
	// Title is drawn above the plan. Defaults to the layout name.
	Title string
	// HideRelationships omits all edges.
	HideRelationships bool
	// Detailed adds type and class to room labels.
	Detailed bool
}

var classFill = map[facility.CleanroomClass]string{
	facility.ClassA:    "#d7263d",
	facility.ClassB:    "#f49d37",
	facility.ClassC:    "#f6d55c",
	facility.ClassD:    "#3caea3",
	facility.ClassCNC:  "#a6cee3",
	facility.ClassNone: "#eeeeee",
}

var edgeStyle = map[facility.RelationType]string{
	facility.MaterialFlow:   `color="#1f78b4", penwidth=2`,
	facility.PersonnelFlow:  `color="#33a02c", style=dashed`,
	facility.AdjacentTo:     `color="#888888", dir=none`,
	facility.ProhibitedNear: `color="#e31a1c", style=dotted, dir=none, penwidth=2`,
}

// ToDOT converts a layout to Graphviz DOT. Unplaced rooms are skipped, as
// are relationships touching them.
func ToDOT(l *facility.Layout, opts Options) string {
	var buf bytes.Buffer
	title := opts.Title
	if title == "" {
		title = l.Name
	}

	maxY := 0.0
	for _, r := range l.Rooms {
		if r.Placed() {
			maxY = max(maxY, r.Bounds().MaxY)
		}
	}

	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"white\";\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	if title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n  fontsize=20;\n", title)
	}
	buf.WriteString("  node [shape=box, style=filled, fixedsize=true, fontsize=11, fontname=\"Helvetica\"];\n")
	buf.WriteString("  edge [fontsize=9];\n\n")

	placed := make(map[string]bool, len(l.Rooms))
	for _, r := range l.Rooms {
		if !r.Placed() {
			continue
		}
		placed[r.ID] = true
		c := r.Center()
		attrs := []string{
			fmt.Sprintf("label=%q", label(r, opts.Detailed)),
			fmt.Sprintf("pos=\"%s,%s!\"", num(c.X), num(maxY-c.Y)),
			fmt.Sprintf("width=%s", num(r.Size.W/pointsPerInch)),
			fmt.Sprintf("height=%s", num(r.Size.H/pointsPerInch)),
			fmt.Sprintf("fillcolor=%q", fill(r.Class)),
		}
		if r.Class == facility.ClassA {
			attrs = append(attrs, "fontcolor=white")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", r.ID, strings.Join(attrs, ", "))
	}

	if !opts.HideRelationships {
		buf.WriteString("\n")
		for _, rel := range l.Relationships {
			if !placed[rel.Source] || !placed[rel.Target] {
				continue
			}
			style := edgeStyle[rel.Type]
			if style == "" {
				style = `color="#000000"`
			}
			fmt.Fprintf(&buf, "  %q -- %q [%s", rel.Source, rel.Target, style)
			if rel.Type.IsFlow() {
				buf.WriteString(", dir=forward")
			}
			buf.WriteString("];\n")
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func label(r *facility.Room, detailed bool) string {
	name := r.Name
	if name == "" {
		name = r.ID
	}
	if !detailed {
		return name
	}
	parts := []string{name}
	if r.Type != "" {
		parts = append(parts, r.Type)
	}
	if r.Class != facility.ClassNone {
		parts = append(parts, "Grade "+string(r.Class))
	}
	return strings.Join(parts, "\n")
}

func fill(c facility.CleanroomClass) string {
	if f, ok := classFill[c]; ok {
		return f
	}
	return classFill[facility.ClassNone]
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RenderSVG renders DOT source to SVG with the neato engine.
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

// normalizeViewBox replaces Graphviz's pt-sized root element with a
// scalable one.
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

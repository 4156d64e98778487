// Package render turns layouts into pictures.
//
// The [dot] subpackage writes a layout as Graphviz DOT with every room
// pinned at its computed position and renders it to SVG in-process with
// go-graphviz. [ToPDF] and [ToPNG] convert any SVG further using the
// external rsvg-convert tool (from librsvg).
//
//	src := dot.ToDOT(layout, dot.Options{})
//	svg, err := dot.RenderSVG(ctx, src)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [dot]: github.com/matzehuels/gmplayout/pkg/render/dot
package render

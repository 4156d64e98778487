// Package dot renders layouts as floor-plan sketches using Graphviz.
//
// [ToDOT] writes every placed room as a box of its real footprint, pinned
// at its position (neato "pos" with "!"), filled by cleanroom class.
// Relationships become edges styled by type:
//
//   - MATERIAL_FLOW: solid blue arrow
//   - PERSONNEL_FLOW: dashed green arrow
//   - ADJACENT_TO: grey line without arrowhead
//   - PROHIBITED_NEAR: dotted red line
//
// Canvas pixels map to points (1 px = 1 pt) and the y axis is flipped so
// the sketch reads like the canvas, origin top-left.
//
// [RenderSVG] lays the DOT out with the neato engine in-process through
// [github.com/goccy/go-graphviz]; no Graphviz installation is needed.
package dot

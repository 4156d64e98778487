// Package geom provides the 2D primitives used to place rooms on a floor plan.
//
// All coordinates are canvas units with the origin at the top-left corner and
// y growing downward. A room's position is the centre of its footprint, so a
// footprint is always built with [RectAround].
//
// Every function in this package is pure and safe for concurrent use.
package geom

import "math"

// Point is a location on the canvas.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is the width and height of a footprint.
type Size struct {
	W float64 `json:"width"`
	H float64 `json:"height"`
}

// Area returns W×H.
func (s Size) Area() float64 { return s.W * s.H }

// IsZero reports whether either dimension is unset.
func (s Size) IsZero() bool { return s.W <= 0 || s.H <= 0 }

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p scaled by f.
func (p Point) Scale(f float64) Point { return Point{p.X * f, p.Y * f} }

// Len returns the Euclidean length of p taken as a vector.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// Rect is an axis-aligned bounding box.
type Rect struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// RectAround returns the box of the given size centred on c.
func RectAround(c Point, s Size) Rect {
	return Rect{
		MinX: c.X - s.W/2,
		MinY: c.Y - s.H/2,
		MaxX: c.X + s.W/2,
		MaxY: c.Y + s.H/2,
	}
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Area returns the box area.
func (r Rect) Area() float64 { return r.Width() * r.Height() }

// Center returns the centre point of the box.
func (r Rect) Center() Point {
	return Point{(r.MinX + r.MaxX) / 2, (r.MinY + r.MaxY) / 2}
}

// Expand grows the box by d on every side. A negative d shrinks it.
func (r Rect) Expand(d float64) Rect {
	return Rect{r.MinX - d, r.MinY - d, r.MaxX + d, r.MaxY + d}
}

// Union returns the smallest box containing r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		MinX: math.Min(r.MinX, o.MinX),
		MinY: math.Min(r.MinY, o.MinY),
		MaxX: math.Max(r.MaxX, o.MaxX),
		MaxY: math.Max(r.MaxY, o.MaxY),
	}
}

// Overlaps reports whether the interiors of r and o intersect.
// Boxes that only share an edge do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.MinX < o.MaxX && o.MinX < r.MaxX &&
		r.MinY < o.MaxY && o.MinY < r.MaxY
}

// Intersects reports whether r and o come closer than clearance.
// It is Overlaps with both boxes grown by clearance/2.
func (r Rect) Intersects(o Rect, clearance float64) bool {
	h := clearance / 2
	return r.Expand(h).Overlaps(o.Expand(h))
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Y >= r.MinY && p.Y <= r.MaxY
}

// Gap returns the shortest distance between the two boxes, 0 when they touch
// or overlap.
func (r Rect) Gap(o Rect) float64 {
	dx := math.Max(0, math.Max(o.MinX-r.MaxX, r.MinX-o.MaxX))
	dy := math.Max(0, math.Max(o.MinY-r.MaxY, r.MinY-o.MaxY))
	return math.Hypot(dx, dy)
}

// Penetration returns how far r and o overlap on each axis, counting the
// clearance as part of the overlap. Non-positive values mean separated on
// that axis.
func (r Rect) Penetration(o Rect, clearance float64) (dx, dy float64) {
	dx = math.Min(r.MaxX, o.MaxX) - math.Max(r.MinX, o.MinX) + clearance
	dy = math.Min(r.MaxY, o.MaxY) - math.Max(r.MinY, o.MinY) + clearance
	return dx, dy
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Centroid returns the arithmetic mean of pts. The second result is false
// when pts is empty.
func Centroid(pts []Point) (Point, bool) {
	if len(pts) == 0 {
		return Point{}, false
	}
	var c Point
	for _, p := range pts {
		c.X += p.X
		c.Y += p.Y
	}
	n := float64(len(pts))
	return Point{c.X / n, c.Y / n}, true
}

// PointSegmentDistance returns the distance from p to the segment a–b.
func PointSegmentDistance(p, a, b Point) float64 {
	ab := b.Sub(a)
	l2 := ab.X*ab.X + ab.Y*ab.Y
	if l2 == 0 {
		return Distance(p, a)
	}
	t := ((p.X-a.X)*ab.X + (p.Y-a.Y)*ab.Y) / l2
	t = Clamp(t, 0, 1)
	return Distance(p, a.Add(ab.Scale(t)))
}

// Snap rounds v to the nearest multiple of grid. A non-positive grid
// returns v unchanged.
func Snap(v, grid float64) float64 {
	if grid <= 0 {
		return v
	}
	return math.Round(v/grid) * grid
}

// SnapPoint snaps both coordinates of p.
func SnapPoint(p Point, grid float64) Point {
	return Point{Snap(p.X, grid), Snap(p.Y, grid)}
}

// Clamp limits v to [lo, hi]. When lo > hi the midpoint is returned.
func Clamp(v, lo, hi float64) float64 {
	if lo > hi {
		return (lo + hi) / 2
	}
	return math.Max(lo, math.Min(hi, v))
}

// Canvas is the drawable area rooms are placed on.
type Canvas struct {
	Width   float64 `json:"width" toml:"width"`
	Height  float64 `json:"height" toml:"height"`
	Padding float64 `json:"padding" toml:"padding"`
}

// Center returns the middle of the canvas.
func (c Canvas) Center() Point { return Point{c.Width / 2, c.Height / 2} }

// Diagonal returns the canvas diagonal length.
func (c Canvas) Diagonal() float64 { return math.Hypot(c.Width, c.Height) }

// Bounds returns the padded rectangle room centres may occupy for a room of
// size s, so the whole footprint stays inside the padding.
func (c Canvas) Bounds(s Size) Rect {
	return Rect{
		MinX: c.Padding + s.W/2,
		MinY: c.Padding + s.H/2,
		MaxX: c.Width - c.Padding - s.W/2,
		MaxY: c.Height - c.Padding - s.H/2,
	}
}

// ClampCenter keeps a room centre of size s inside the padded canvas.
func (c Canvas) ClampCenter(p Point, s Size) Point {
	b := c.Bounds(s)
	return Point{Clamp(p.X, b.MinX, b.MaxX), Clamp(p.Y, b.MinY, b.MaxY)}
}

// SnapInside snaps p to the grid and pulls it back inside the padded bounds
// in whole grid steps.
func (c Canvas) SnapInside(p Point, s Size, grid float64) Point {
	b := c.Bounds(s)
	q := SnapPoint(c.ClampCenter(p, s), grid)
	if grid > 0 {
		for q.X < b.MinX && q.X+grid <= b.MaxX {
			q.X += grid
		}
		for q.X > b.MaxX && q.X-grid >= b.MinX {
			q.X -= grid
		}
		for q.Y < b.MinY && q.Y+grid <= b.MaxY {
			q.Y += grid
		}
		for q.Y > b.MaxY && q.Y-grid >= b.MinY {
			q.Y -= grid
		}
	}
	return q
}

// Widen returns the canvas grown by factor on both axes.
func (c Canvas) Widen(factor float64) Canvas {
	return Canvas{Width: c.Width * factor, Height: c.Height * factor, Padding: c.Padding}
}

package geom

import (
	"math"
	"testing"
)

func TestRectOverlaps(t *testing.T) {
	a := RectAround(Point{100, 100}, Size{100, 80})
	tests := []struct {
		name string
		b    Rect
		want bool
	}{
		{"Same", a, true},
		{"Partial", RectAround(Point{150, 120}, Size{100, 80}), true},
		{"SharedEdge", RectAround(Point{200, 100}, Size{100, 80}), false},
		{"Apart", RectAround(Point{400, 400}, Size{10, 10}), false},
		{"Contained", RectAround(Point{100, 100}, Size{10, 10}), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Overlaps(tt.b); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
			if got := tt.b.Overlaps(a); got != tt.want {
				t.Errorf("Overlaps is not symmetric")
			}
		})
	}
}

func TestRectIntersectsClearance(t *testing.T) {
	a := RectAround(Point{100, 100}, Size{100, 100})
	b := RectAround(Point{205, 100}, Size{100, 100}) // 5 units apart
	if a.Overlaps(b) {
		t.Fatal("boxes should not overlap")
	}
	if !a.Intersects(b, 10) {
		t.Error("boxes 5 apart should violate a clearance of 10")
	}
	if a.Intersects(b, 4) {
		t.Error("boxes 5 apart should satisfy a clearance of 4")
	}
}

func TestGap(t *testing.T) {
	a := RectAround(Point{0, 0}, Size{2, 2})
	b := RectAround(Point{5, 0}, Size{2, 2})
	if got := a.Gap(b); got != 3 {
		t.Errorf("Gap = %v, want 3", got)
	}
	if got := a.Gap(a); got != 0 {
		t.Errorf("Gap to self = %v, want 0", got)
	}
}

func TestCentroid(t *testing.T) {
	if _, ok := Centroid(nil); ok {
		t.Error("Centroid(nil) should report false")
	}
	c, ok := Centroid([]Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}})
	if !ok || c != (Point{5, 5}) {
		t.Errorf("Centroid = %v, %v", c, ok)
	}
}

func TestPointSegmentDistance(t *testing.T) {
	tests := []struct {
		p, a, b Point
		want    float64
	}{
		{Point{5, 5}, Point{0, 0}, Point{10, 0}, 5},
		{Point{-3, 4}, Point{0, 0}, Point{10, 0}, 5},
		{Point{3, 4}, Point{0, 0}, Point{0, 0}, 5},
	}
	for _, tt := range tests {
		if got := PointSegmentDistance(tt.p, tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("PointSegmentDistance(%v,%v,%v) = %v, want %v", tt.p, tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSnap(t *testing.T) {
	tests := []struct {
		v, grid, want float64
	}{
		{29, 20, 20},
		{31, 20, 40},
		{-11, 20, -20},
		{7.3, 0, 7.3},
	}
	for _, tt := range tests {
		if got := Snap(tt.v, tt.grid); got != tt.want {
			t.Errorf("Snap(%v,%v) = %v, want %v", tt.v, tt.grid, got, tt.want)
		}
	}
}

func TestCanvasSnapInside(t *testing.T) {
	c := Canvas{Width: 400, Height: 300, Padding: 10}
	s := Size{100, 100}
	p := c.SnapInside(Point{-50, 1000}, s, 20)
	b := c.Bounds(s)
	if !b.Contains(p) {
		t.Errorf("SnapInside = %v, outside %v", p, b)
	}
	if math.Mod(p.X, 20) != 0 || math.Mod(p.Y, 20) != 0 {
		t.Errorf("SnapInside = %v, not on grid", p)
	}
}

func TestClampInverted(t *testing.T) {
	if got := Clamp(5, 10, 0); got != 5 {
		t.Errorf("Clamp with lo>hi = %v, want midpoint 5", got)
	}
}

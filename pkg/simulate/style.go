package simulate

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/matzehuels/gmplayout/pkg/facility"
	"github.com/matzehuels/gmplayout/pkg/geom"
)

// Style selects the initial arrangement.
type Style string

const (
	StyleGrid      Style = "grid"
	StyleCircular  Style = "circular"
	StyleLinear    Style = "linear"
	StyleRandom    Style = "random"
	StyleClustered Style = "clustered"
)

// Styles lists the supported styles.
var Styles = []Style{StyleGrid, StyleCircular, StyleLinear, StyleRandom, StyleClustered}

// ParseStyle resolves a style name case-insensitively. The empty string is
// the grid style.
func ParseStyle(s string) (Style, error) {
	v := Style(strings.ToLower(strings.TrimSpace(s)))
	if v == "" {
		return StyleGrid, nil
	}
	for _, k := range Styles {
		if k == v {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStyle, s)
}

// Random reports whether the style uses the seeded generator.
func (s Style) Random() bool { return s == StyleRandom || s == StyleClustered }

// initialPositions arranges rooms according to style.
func (s *Simulator) initialPositions(rooms []*facility.Room, rels []facility.Relationship, style Style) []geom.Point {
	switch style {
	case StyleCircular:
		return s.circular(rooms)
	case StyleLinear:
		return s.linear(rooms, rels)
	case StyleRandom, StyleClustered:
		return s.random(rooms)
	default:
		return s.grid(rooms)
	}
}

func (s *Simulator) usable() (x0, y0, w, h float64) {
	c := s.params.Canvas
	return c.Padding, c.Padding, c.Width - 2*c.Padding, c.Height - 2*c.Padding
}

func (s *Simulator) grid(rooms []*facility.Room) []geom.Point {
	n := len(rooms)
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	rows := (n + cols - 1) / cols
	return s.cells(n, cols, rows)
}

// cells centres n rooms in a cols×rows table, filled row by row.
func (s *Simulator) cells(n, cols, rows int) []geom.Point {
	x0, y0, w, h := s.usable()
	cw, ch := w/float64(cols), h/float64(rows)
	out := make([]geom.Point, n)
	for i := range out {
		r, c := i/cols, i%cols
		out[i] = geom.Point{X: x0 + (float64(c)+0.5)*cw, Y: y0 + (float64(r)+0.5)*ch}
	}
	return out
}

func (s *Simulator) circular(rooms []*facility.Room) []geom.Point {
	n := len(rooms)
	center := s.params.Canvas.Center()
	if n == 1 {
		return []geom.Point{center}
	}
	var maxDim float64
	for _, r := range rooms {
		maxDim = math.Max(maxDim, math.Max(r.Size.W, r.Size.H))
	}
	_, _, w, h := s.usable()
	radius := math.Max(math.Min(w, h)/2-maxDim/2, 0)
	out := make([]geom.Point, n)
	for i := range out {
		a := 2*math.Pi*float64(i)/float64(n) - math.Pi/2
		out[i] = geom.Point{X: center.X + radius*math.Cos(a), Y: center.Y + radius*math.Sin(a)}
	}
	return out
}

// linear lays rooms left to right in MATERIAL_FLOW order on the canvas
// mid-line, wrapping into extra rows when they do not fit side by side.
func (s *Simulator) linear(rooms []*facility.Room, rels []facility.Relationship) []geom.Point {
	order := flowOrder(rooms, rels)
	n := len(rooms)

	var maxW float64
	for _, r := range rooms {
		maxW = math.Max(maxW, r.Size.W)
	}
	_, _, w, _ := s.usable()
	perRow := n
	if w/float64(n) < maxW+s.params.Clearance {
		perRow = max(1, int(w/(maxW+s.params.Clearance)))
	}
	rows := (n + perRow - 1) / perRow
	slots := s.cells(n, perRow, rows)

	out := make([]geom.Point, n)
	for rank, idx := range order {
		out[idx] = slots[rank]
	}
	return out
}

// flowOrder returns room indices topologically sorted over MATERIAL_FLOW
// edges. Ready rooms are taken in input order; rooms left over by cycles
// follow in input order.
func flowOrder(rooms []*facility.Room, rels []facility.Relationship) []int {
	idx := make(map[string]int, len(rooms))
	for i, r := range rooms {
		idx[r.ID] = i
	}
	indeg := make([]int, len(rooms))
	succ := make([][]int, len(rooms))
	for _, rel := range rels {
		if rel.Type != facility.MaterialFlow {
			continue
		}
		s, ok1 := idx[rel.Source]
		t, ok2 := idx[rel.Target]
		if !ok1 || !ok2 || s == t {
			continue
		}
		succ[s] = append(succ[s], t)
		indeg[t]++
	}

	done := make([]bool, len(rooms))
	order := make([]int, 0, len(rooms))
	for {
		next := -1
		for i := range rooms {
			if !done[i] && indeg[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			break
		}
		done[next] = true
		order = append(order, next)
		for _, t := range succ[next] {
			indeg[t]--
		}
	}
	for i := range rooms {
		if !done[i] {
			order = append(order, i)
		}
	}
	return order
}

func (s *Simulator) random(rooms []*facility.Room) []geom.Point {
	seed := s.params.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]geom.Point, len(rooms))
	for i, r := range rooms {
		b := s.params.Canvas.Bounds(r.Size)
		out[i] = geom.Point{
			X: b.MinX + rng.Float64()*math.Max(b.Width(), 0),
			Y: b.MinY + rng.Float64()*math.Max(b.Height(), 0),
		}
	}
	return out
}

package placement

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/matzehuels/gmplayout/pkg/facility"
	"github.com/matzehuels/gmplayout/pkg/geom"
)

// ErrNoCandidates is returned when no valid position exists for a room,
// typically because the canvas is too small.
var ErrNoCandidates = errors.New("no valid candidate positions")

// ringDirections are the eight unit vectors at 45° increments, starting east
// and turning clockwise on screen.
var ringDirections = func() [8]geom.Point {
	var dirs [8]geom.Point
	for k := range dirs {
		a := float64(k) * math.Pi / 4
		dirs[k] = geom.Point{X: math.Round(math.Cos(a)*1e9) / 1e9, Y: math.Round(math.Sin(a)*1e9) / 1e9}
	}
	return dirs
}()

// Generator proposes candidate positions for a room.
type Generator struct {
	params Params
}

// NewGenerator creates a generator. Zero params fields take their defaults.
func NewGenerator(p Params) *Generator {
	return &Generator{params: p.withDefaults()}
}

// Generate returns grid-snapped, de-duplicated candidate positions for room
// that keep the minimum clearance to every placed room in others.
//
// With no placed peers the only candidate is the canvas centre.
// ErrNoCandidates is returned when every proposal collides.
func (g *Generator) Generate(room *facility.Room, others []*facility.Room, rels []facility.Relationship) ([]geom.Point, error) {
	return g.generate(newView(room, others, rels))
}

func (g *Generator) generate(v *view) ([]geom.Point, error) {
	canvas := g.params.Canvas
	if len(v.peers) == 0 {
		return []geom.Point{canvas.SnapInside(canvas.Center(), v.room.Size, g.params.GridSize)}, nil
	}

	set := newCandidateSet(g.params, v)

	for _, anchor := range g.anchors(v) {
		set.ring(anchor.Center())
	}

	if v.room.Class != facility.ClassNone {
		var pts []geom.Point
		for _, p := range v.peers {
			if p.Class == v.room.Class {
				pts = append(pts, p.Center())
			}
		}
		if c, ok := geom.Centroid(pts); ok {
			set.ring(c)
		}
	}

	g.scan(set)

	if len(set.points) == 0 {
		return nil, fmt.Errorf("%w for room %q", ErrNoCandidates, v.room.ID)
	}
	return set.points, nil
}

// anchors returns up to MaxAnchors related placed rooms, most important
// relationship first.
func (g *Generator) anchors(v *view) []*facility.Room {
	rels := append([]facility.Relationship(nil), v.rels...)
	sort.SliceStable(rels, func(i, j int) bool { return rels[i].Priority < rels[j].Priority })

	seen := make(map[string]bool)
	var out []*facility.Room
	for _, rel := range rels {
		if rel.Type == facility.ProhibitedNear {
			continue
		}
		other, _ := rel.Other(v.room.ID)
		if seen[other] {
			continue
		}
		seen[other] = true
		out = append(out, v.placed[other])
		if len(out) == g.params.MaxAnchors {
			break
		}
	}
	return out
}

// scan walks a coarse grid row by row and keeps the first empty cells.
func (g *Generator) scan(set *candidateSet) {
	b := g.params.Canvas.Bounds(set.room.Size)
	step := g.params.ScanStep
	added := 0
	for y := b.MinY; y <= b.MaxY; y += step {
		for x := b.MinX; x <= b.MaxX; x += step {
			if set.add(geom.Point{X: x, Y: y}) {
				added++
				if added == g.params.MaxGridCells {
					return
				}
			}
		}
	}
}

// candidateSet accumulates unique, valid candidates in insertion order.
type candidateSet struct {
	params Params
	room   *facility.Room
	peers  []*facility.Room
	seen   map[geom.Point]bool
	points []geom.Point
}

func newCandidateSet(p Params, v *view) *candidateSet {
	return &candidateSet{params: p, room: v.room, peers: v.peers, seen: make(map[geom.Point]bool)}
}

func (s *candidateSet) ring(center geom.Point) {
	r := s.params.IdealSpacing
	for _, d := range ringDirections {
		s.add(center.Add(d.Scale(r)))
	}
}

// add snaps p into the canvas and keeps it when new and collision free.
func (s *candidateSet) add(p geom.Point) bool {
	q := s.params.Canvas.SnapInside(p, s.room.Size, s.params.GridSize)
	if s.seen[q] {
		return false
	}
	s.seen[q] = true
	box := s.room.BoundsAt(q)
	for _, peer := range s.peers {
		if box.Intersects(peer.Bounds(), s.params.Clearance) {
			return false
		}
	}
	s.points = append(s.points, q)
	return true
}

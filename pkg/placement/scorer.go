package placement

import (
	"math"

	"github.com/matzehuels/gmplayout/pkg/facility"
	"github.com/matzehuels/gmplayout/pkg/geom"
)

// Breakdown is a score split into its objectives. Every field is in [0,1].
type Breakdown struct {
	Overlap    float64 `json:"overlap"`
	Adjacency  float64 `json:"adjacency"`
	Similarity float64 `json:"similarity"`
	Flow       float64 `json:"flow"`
	Zone       float64 `json:"zone"`
	Total      float64 `json:"total"`
}

// Scorer rates candidate positions for one room.
type Scorer struct {
	params Params
}

// NewScorer creates a scorer. Zero params fields take their defaults.
func NewScorer(p Params) *Scorer {
	return &Scorer{params: p.withDefaults()}
}

// Params returns the scorer's effective parameters.
func (s *Scorer) Params() Params { return s.params }

// Score returns the weighted score of placing room at c, in [0,1].
// Unplaced rooms in others are ignored.
func (s *Scorer) Score(c geom.Point, room *facility.Room, others []*facility.Room, rels []facility.Relationship) float64 {
	return s.Breakdown(c, room, others, rels).Total
}

// Breakdown is Score with the per-objective values.
func (s *Scorer) Breakdown(c geom.Point, room *facility.Room, others []*facility.Room, rels []facility.Relationship) Breakdown {
	return s.evaluate(c, newView(room, others, rels))
}

// view is the read-only neighbourhood of the room being placed. It is built
// once per placement and shared by all candidate evaluations.
type view struct {
	room   *facility.Room
	peers  []*facility.Room
	placed map[string]*facility.Room
	rels   []facility.Relationship // relationships touching room with a placed other end
}

func newView(room *facility.Room, others []*facility.Room, rels []facility.Relationship) *view {
	v := &view{room: room, placed: make(map[string]*facility.Room, len(others))}
	for _, o := range others {
		if o == nil || o.ID == room.ID || !o.Placed() {
			continue
		}
		v.peers = append(v.peers, o)
		v.placed[o.ID] = o
	}
	for _, rel := range rels {
		other, ok := rel.Other(room.ID)
		if !ok {
			continue
		}
		if _, placed := v.placed[other]; placed {
			v.rels = append(v.rels, rel)
		}
	}
	return v
}

func (s *Scorer) evaluate(c geom.Point, v *view) Breakdown {
	b := Breakdown{
		Overlap:    s.overlap(c, v),
		Adjacency:  s.adjacency(c, v),
		Similarity: s.similarity(c, v),
		Flow:       s.flow(c, v),
		Zone:       s.zone(c, v),
	}
	b.Total = (WeightOverlap*b.Overlap +
		WeightAdjacency*b.Adjacency +
		WeightSimilarity*b.Similarity +
		WeightFlow*b.Flow +
		WeightZone*b.Zone) / objectiveCount
	return b
}

func (s *Scorer) overlap(c geom.Point, v *view) float64 {
	box := v.room.BoundsAt(c)
	for _, p := range v.peers {
		if box.Intersects(p.Bounds(), s.params.Clearance) {
			return 0
		}
	}
	return 1
}

// AdjacencyFit scores a centre distance against the ideal spacing:
// 1 at the ideal, falling linearly to 0 at zero or twice the ideal.
func AdjacencyFit(d, ideal float64) float64 {
	return math.Max(0, 1-math.Abs(d-ideal)/ideal)
}

func (s *Scorer) adjacency(c geom.Point, v *view) float64 {
	var sum float64
	var n int
	for _, rel := range v.rels {
		if rel.Type != facility.AdjacentTo {
			continue
		}
		other, _ := rel.Other(v.room.ID)
		sum += AdjacencyFit(geom.Distance(c, v.placed[other].Center()), s.params.IdealSpacing)
		n++
	}
	if n == 0 {
		return 1
	}
	return sum / float64(n)
}

func (s *Scorer) similarity(c geom.Point, v *view) float64 {
	var pts []geom.Point
	for _, p := range v.peers {
		sameClass := v.room.Class != facility.ClassNone && p.Class == v.room.Class
		if p.Category == v.room.Category || sameClass {
			pts = append(pts, p.Center())
		}
	}
	return s.closeness(c, pts)
}

func (s *Scorer) zone(c geom.Point, v *view) float64 {
	if v.room.Class == facility.ClassNone {
		return 1
	}
	var pts []geom.Point
	for _, p := range v.peers {
		if p.Class == v.room.Class {
			pts = append(pts, p.Center())
		}
	}
	return s.closeness(c, pts)
}

// closeness is 1 at the centroid of pts, 0 a canvas diagonal away, 0.5 when
// pts is empty.
func (s *Scorer) closeness(c geom.Point, pts []geom.Point) float64 {
	centroid, ok := geom.Centroid(pts)
	if !ok {
		return 0.5
	}
	diag := s.params.Canvas.Diagonal()
	return 1 - math.Min(1, geom.Distance(c, centroid)/diag)
}

func (s *Scorer) flow(c geom.Point, v *view) float64 {
	var scores []float64
	for _, t := range []facility.RelationType{facility.MaterialFlow, facility.PersonnelFlow} {
		var up, down []geom.Point
		for _, rel := range v.rels {
			if rel.Type != t {
				continue
			}
			if rel.Target == v.room.ID {
				up = append(up, v.placed[rel.Source].Center())
			} else {
				down = append(down, v.placed[rel.Target].Center())
			}
		}
		switch {
		case len(up) > 0 && len(down) > 0:
			for _, u := range up {
				for _, d := range down {
					scores = append(scores, detourRatio(u, c, d))
				}
			}
		default:
			for _, p := range append(up, down...) {
				scores = append(scores, math.Min(1, s.params.IdealSpacing/math.Max(geom.Distance(c, p), 1e-9)))
			}
		}
	}
	if len(scores) == 0 {
		return 1
	}
	var sum float64
	for _, x := range scores {
		sum += x
	}
	return sum / float64(len(scores))
}

// detourRatio is |u-d| / (|u-c| + |c-d|): 1 when c lies on the straight
// path from u to d.
func detourRatio(u, c, d geom.Point) float64 {
	detour := geom.Distance(u, c) + geom.Distance(c, d)
	if detour == 0 {
		return 1
	}
	return geom.Distance(u, d) / detour
}

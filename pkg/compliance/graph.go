package compliance

import (
	"github.com/matzehuels/gmplayout/pkg/facility"
)

// DefaultMinSeparation is the footprint gap PROHIBITED_NEAR endpoints must
// keep, equal to the default ideal room spacing.
const DefaultMinSeparation = 150.0

// Graph is the read-only room/relationship graph evaluators run against.
type Graph struct {
	idx *facility.Index

	// MinSeparation is the smallest footprint gap allowed between
	// PROHIBITED_NEAR endpoints.
	MinSeparation float64
}

// NewGraph indexes rooms and rels.
func NewGraph(rooms []*facility.Room, rels []facility.Relationship) *Graph {
	return &Graph{idx: facility.NewIndex(rooms, rels), MinSeparation: DefaultMinSeparation}
}

// Rooms returns the rooms in layout order.
func (g *Graph) Rooms() []*facility.Room { return g.idx.Rooms() }

// Relationships returns every relationship in layout order.
func (g *Graph) Relationships() []facility.Relationship { return g.idx.Relationships() }

// Room looks a room up by id.
func (g *Graph) Room(id string) (*facility.Room, bool) { return g.idx.Room(id) }

// Adjacent returns the rooms sharing an ADJACENT_TO relationship with id,
// in either direction.
func (g *Graph) Adjacent(id string) []*facility.Room {
	return g.idx.Neighbors(id, facility.AdjacentTo)
}

// Upstream returns the sources of relationships of type t into id.
func (g *Graph) Upstream(id string, t facility.RelationType) []*facility.Room {
	return g.idx.Upstream(id, t)
}

// Edges returns the relationships of type t whose endpoints both resolve.
func (g *Graph) Edges(t facility.RelationType) []Edge {
	var out []Edge
	for _, rel := range g.idx.Relationships() {
		if rel.Type != t {
			continue
		}
		src, ok1 := g.idx.Room(rel.Source)
		dst, ok2 := g.idx.Room(rel.Target)
		if ok1 && ok2 {
			out = append(out, Edge{Rel: rel, Source: src, Target: dst})
		}
	}
	return out
}

// Edge is a relationship with its endpoints resolved.
type Edge struct {
	Rel    facility.Relationship
	Source *facility.Room
	Target *facility.Room
}

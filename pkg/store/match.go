package store

import (
	"strings"

	"github.com/matzehuels/gmplayout/pkg/facility"
)

// RoomPattern selects rooms. Empty fields match anything. Name matches a
// case-insensitive substring of the room name or type.
type RoomPattern struct {
	Type     string                  `json:"type,omitempty"`
	Category facility.Category       `json:"category,omitempty"`
	Class    facility.CleanroomClass `json:"class,omitempty"`
	Name     string                  `json:"name,omitempty"`
}

// Matches reports whether r satisfies the pattern.
func (p RoomPattern) Matches(r *facility.Room) bool {
	if p.Type != "" && r.Type != p.Type {
		return false
	}
	if p.Category != "" && r.Category != p.Category {
		return false
	}
	if p.Class != facility.ClassNone && r.Class != p.Class {
		return false
	}
	if p.Name != "" {
		needle := strings.ToLower(p.Name)
		if !strings.Contains(strings.ToLower(r.Name), needle) && !strings.Contains(strings.ToLower(r.Type), needle) {
			return false
		}
	}
	return true
}

// Pattern is a graph query. Without a Neighbor it selects single rooms.
// With a Neighbor it selects room pairs joined by a relationship of type
// Relation (any type when empty). Direction is source to neighbor, except
// for ADJACENT_TO which is read both ways.
type Pattern struct {
	Room     RoomPattern           `json:"room"`
	Relation facility.RelationType `json:"relation,omitempty"`
	Neighbor *RoomPattern          `json:"neighbor,omitempty"`
}

// Match is one pattern hit.
type Match struct {
	LayoutID       string `json:"layout_id"`
	RoomID         string `json:"room_id"`
	NeighborID     string `json:"neighbor_id,omitempty"`
	RelationshipID string `json:"relationship_id,omitempty"`
}

// MatchLayout evaluates p against a single layout.
func MatchLayout(l *facility.Layout, p Pattern) []Match {
	var out []Match
	if p.Neighbor == nil {
		for _, r := range l.Rooms {
			if p.Room.Matches(r) {
				out = append(out, Match{LayoutID: l.ID, RoomID: r.ID})
			}
		}
		return out
	}

	for _, rel := range l.Relationships {
		if p.Relation != "" && rel.Type != p.Relation {
			continue
		}
		ends := [][2]string{{rel.Source, rel.Target}}
		if rel.Type.Symmetric() {
			ends = append(ends, [2]string{rel.Target, rel.Source})
		}
		for _, e := range ends {
			a, okA := l.Room(e[0])
			b, okB := l.Room(e[1])
			if okA && okB && p.Room.Matches(a) && p.Neighbor.Matches(b) {
				out = append(out, Match{LayoutID: l.ID, RoomID: a.ID, NeighborID: b.ID, RelationshipID: rel.ID})
			}
		}
	}
	return out
}

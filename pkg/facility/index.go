package facility

// Index is a read-only adjacency index over a room set and its
// relationships. Build it once per layout and share it between the scorer
// and the compliance evaluators instead of rescanning the relationship list.
type Index struct {
	rooms    map[string]*Room
	order    []*Room
	rels     []Relationship
	incident map[string][]int // room id -> positions in rels
}

// NewIndex builds an index. Relationships whose endpoints are not in rooms
// are kept in Relationships but not indexed.
func NewIndex(rooms []*Room, rels []Relationship) *Index {
	idx := &Index{
		rooms:    make(map[string]*Room, len(rooms)),
		order:    rooms,
		rels:     rels,
		incident: make(map[string][]int, len(rooms)),
	}
	for _, r := range rooms {
		idx.rooms[r.ID] = r
	}
	for i, rel := range rels {
		if _, ok := idx.rooms[rel.Source]; !ok {
			continue
		}
		if _, ok := idx.rooms[rel.Target]; !ok {
			continue
		}
		idx.incident[rel.Source] = append(idx.incident[rel.Source], i)
		if rel.Target != rel.Source {
			idx.incident[rel.Target] = append(idx.incident[rel.Target], i)
		}
	}
	return idx
}

// Index builds an adjacency index over the layout.
func (l *Layout) Index() *Index { return NewIndex(l.Rooms, l.Relationships) }

// Room returns the room with the given id.
func (x *Index) Room(id string) (*Room, bool) {
	r, ok := x.rooms[id]
	return r, ok
}

// Rooms returns the rooms in their original order.
func (x *Index) Rooms() []*Room { return x.order }

// Relationships returns every relationship, indexed or not.
func (x *Index) Relationships() []Relationship { return x.rels }

// Incident returns the relationships touching id, optionally filtered by
// type. With no types every incident relationship is returned.
func (x *Index) Incident(id string, types ...RelationType) []Relationship {
	var out []Relationship
	for _, i := range x.incident[id] {
		rel := x.rels[i]
		if len(types) > 0 && !hasType(types, rel.Type) {
			continue
		}
		out = append(out, rel)
	}
	return out
}

// Neighbors returns the rooms on the other end of id's relationships of the
// given types, without duplicates, in relationship order.
func (x *Index) Neighbors(id string, types ...RelationType) []*Room {
	seen := make(map[string]bool)
	var out []*Room
	for _, rel := range x.Incident(id, types...) {
		other, _ := rel.Other(id)
		if seen[other] {
			continue
		}
		seen[other] = true
		out = append(out, x.rooms[other])
	}
	return out
}

// Upstream returns the sources of relationships of type t pointing at id.
func (x *Index) Upstream(id string, t RelationType) []*Room {
	var out []*Room
	for _, rel := range x.Incident(id, t) {
		if rel.Target == id {
			out = append(out, x.rooms[rel.Source])
		}
	}
	return out
}

// Downstream returns the targets of relationships of type t leaving id.
func (x *Index) Downstream(id string, t RelationType) []*Room {
	var out []*Room
	for _, rel := range x.Incident(id, t) {
		if rel.Source == id {
			out = append(out, x.rooms[rel.Target])
		}
	}
	return out
}

func hasType(types []RelationType, t RelationType) bool {
	for _, k := range types {
		if k == t {
			return true
		}
	}
	return false
}

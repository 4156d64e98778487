package facility

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/gmplayout/pkg/geom"
)

var (
	// ErrInvalidRoomID is returned by [Layout.AddRoom] when the room id is empty.
	ErrInvalidRoomID = errors.New("room ID must not be empty")

	// ErrDuplicateRoomID is returned by [Layout.AddRoom] when a room with the
	// same id already exists. Room ids are unique within a layout.
	ErrDuplicateRoomID = errors.New("duplicate room ID")

	// ErrUnknownSource is returned by [Layout.AddRelationship] when the
	// source room does not exist in the layout.
	ErrUnknownSource = errors.New("unknown source room")

	// ErrUnknownTarget is returned by [Layout.AddRelationship] when the
	// target room does not exist in the layout.
	ErrUnknownTarget = errors.New("unknown target room")

	// ErrUnknownRelationType is returned for relationship types outside
	// [RelationTypes].
	ErrUnknownRelationType = errors.New("unknown relationship type")

	// ErrSelfRelationship is returned when source and target are the same room.
	ErrSelfRelationship = errors.New("relationship source and target are the same room")
)

// Layout is a diagram: rooms, the relationships between them and
// bookkeeping timestamps.
//
// The zero value is usable but has no id; use NewLayout to get one.
type Layout struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Rooms         []*Room        `json:"rooms"`
	Relationships []Relationship `json:"relationships"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`

	byID map[string]*Room
}

// NewLayout creates an empty layout with a fresh id.
func NewLayout(name string) *Layout {
	now := time.Now().UTC()
	return &Layout{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		byID:      make(map[string]*Room),
	}
}

// NewID returns a random identifier for rooms and relationships.
func NewID() string { return uuid.NewString() }

func (l *Layout) ensureIndex() {
	if l.byID != nil && len(l.byID) == len(l.Rooms) {
		return
	}
	l.byID = make(map[string]*Room, len(l.Rooms))
	for _, r := range l.Rooms {
		if r != nil {
			l.byID[r.ID] = r
		}
	}
}

// AddRoom appends a room. The layout keeps the pointer, so later position
// updates through the returned room are visible in the layout.
func (l *Layout) AddRoom(r *Room) error {
	if r == nil || r.ID == "" {
		return ErrInvalidRoomID
	}
	l.ensureIndex()
	if _, exists := l.byID[r.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateRoomID, r.ID)
	}
	l.Rooms = append(l.Rooms, r)
	l.byID[r.ID] = r
	l.touch()
	return nil
}

// AddRelationship appends a relationship after checking that both endpoints
// exist. An empty id is replaced by a fresh one and a zero priority by
// [DefaultPriority].
func (l *Layout) AddRelationship(rel Relationship) error {
	if err := l.checkRelationship(rel); err != nil {
		return err
	}
	if rel.ID == "" {
		rel.ID = NewID()
	}
	if rel.Priority == 0 {
		rel.Priority = DefaultPriority
	}
	l.Relationships = append(l.Relationships, rel)
	l.touch()
	return nil
}

func (l *Layout) checkRelationship(rel Relationship) error {
	if !rel.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownRelationType, rel.Type)
	}
	l.ensureIndex()
	if _, ok := l.byID[rel.Source]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSource, rel.Source)
	}
	if _, ok := l.byID[rel.Target]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTarget, rel.Target)
	}
	if rel.Source == rel.Target {
		return fmt.Errorf("%w: %q", ErrSelfRelationship, rel.Source)
	}
	return nil
}

// HasRelationship reports whether an equivalent relationship already exists.
func (l *Layout) HasRelationship(t RelationType, source, target string) bool {
	for _, r := range l.Relationships {
		if r.Type == t && r.Connects(source, target) {
			return true
		}
	}
	return false
}

// Room returns the room with the given id.
func (l *Layout) Room(id string) (*Room, bool) {
	l.ensureIndex()
	r, ok := l.byID[id]
	return r, ok
}

// RoomCount returns the number of rooms.
func (l *Layout) RoomCount() int { return len(l.Rooms) }

// RelationshipCount returns the number of relationships.
func (l *Layout) RelationshipCount() int { return len(l.Relationships) }

// Validate checks the layout invariants on a layout that was not built
// through AddRoom/AddRelationship, typically one decoded from JSON.
// All problems are joined into a single error.
func (l *Layout) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(l.Rooms))
	for i, r := range l.Rooms {
		switch {
		case r == nil || r.ID == "":
			errs = append(errs, fmt.Errorf("room %d: %w", i, ErrInvalidRoomID))
			continue
		case seen[r.ID]:
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateRoomID, r.ID))
		}
		seen[r.ID] = true
		if r.Category != "" && !r.Category.Valid() {
			errs = append(errs, fmt.Errorf("room %s: unknown category %q", r.ID, r.Category))
		}
		if !r.Class.Valid() {
			errs = append(errs, fmt.Errorf("room %s: unknown cleanroom class %q", r.ID, r.Class))
		}
	}
	l.byID = nil
	l.ensureIndex()
	for _, rel := range l.Relationships {
		if err := l.checkRelationship(rel); err != nil {
			errs = append(errs, fmt.Errorf("relationship %s: %w", rel.ID, err))
		}
	}
	return errors.Join(errs...)
}

// Clone returns a deep copy. Position updates on the copy do not affect l.
func (l *Layout) Clone() *Layout {
	c := &Layout{
		ID:            l.ID,
		Name:          l.Name,
		Rooms:         make([]*Room, len(l.Rooms)),
		Relationships: slices.Clone(l.Relationships),
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
	for i, r := range l.Rooms {
		c.Rooms[i] = r.Clone()
	}
	c.ensureIndex()
	return c
}

// Positions returns the positions of all placed rooms keyed by id.
func (l *Layout) Positions() map[string]geom.Point {
	out := make(map[string]geom.Point, len(l.Rooms))
	for _, r := range l.Rooms {
		if r.Position != nil {
			out[r.ID] = *r.Position
		}
	}
	return out
}

// ApplyPositions sets positions for the listed rooms. Unknown ids are ignored.
func (l *Layout) ApplyPositions(pos map[string]geom.Point) {
	for _, r := range l.Rooms {
		if p, ok := pos[r.ID]; ok {
			r.SetPosition(p)
		}
	}
	l.touch()
}

// RelationshipsOfType returns relationships of type t in insertion order.
func (l *Layout) RelationshipsOfType(t RelationType) []Relationship {
	var out []Relationship
	for _, r := range l.Relationships {
		if r.Type == t {
			out = append(out, r)
		}
	}
	return out
}

// RoomsByCategory returns rooms of category c in insertion order.
func (l *Layout) RoomsByCategory(c Category) []*Room {
	var out []*Room
	for _, r := range l.Rooms {
		if r.Category == c {
			out = append(out, r)
		}
	}
	return out
}

// SortedRoomIDs returns all room ids in lexical order.
func (l *Layout) SortedRoomIDs() []string {
	ids := make([]string, len(l.Rooms))
	for i, r := range l.Rooms {
		ids[i] = r.ID
	}
	sort.Strings(ids)
	return ids
}

func (l *Layout) touch() {
	l.UpdatedAt = time.Now().UTC()
}

package facility

import (
	"errors"
	"testing"

	"github.com/matzehuels/gmplayout/pkg/geom"
)

func newTestLayout(t *testing.T) *Layout {
	t.Helper()
	l := NewLayout("test")
	for _, r := range []*Room{
		{ID: "wh", Name: "Raw Material Warehouse", Category: CategoryWarehouse},
		{ID: "gran", Name: "Granulation", Category: CategoryProduction, Class: ClassD},
		{ID: "fill", Name: "Aseptic Filling", Category: CategoryProduction, Class: ClassA},
		{ID: "al", Name: "Personnel Airlock", Category: CategoryPersonnel, Class: ClassB},
	} {
		if err := l.AddRoom(r); err != nil {
			t.Fatalf("AddRoom(%s): %v", r.ID, err)
		}
	}
	return l
}

func TestAddRoom(t *testing.T) {
	l := newTestLayout(t)

	if err := l.AddRoom(&Room{}); !errors.Is(err, ErrInvalidRoomID) {
		t.Errorf("empty id: err = %v, want ErrInvalidRoomID", err)
	}
	if err := l.AddRoom(&Room{ID: "gran"}); !errors.Is(err, ErrDuplicateRoomID) {
		t.Errorf("duplicate: err = %v, want ErrDuplicateRoomID", err)
	}
	if l.RoomCount() != 4 {
		t.Errorf("RoomCount = %d, want 4", l.RoomCount())
	}
	if r, ok := l.Room("fill"); !ok || r.Class != ClassA {
		t.Errorf("Room(fill) = %v, %v", r, ok)
	}
}

func TestAddRelationship(t *testing.T) {
	l := newTestLayout(t)

	tests := []struct {
		name string
		rel  Relationship
		want error
	}{
		{"Valid", Relationship{Type: MaterialFlow, Source: "wh", Target: "gran"}, nil},
		{"UnknownSource", Relationship{Type: MaterialFlow, Source: "nope", Target: "gran"}, ErrUnknownSource},
		{"UnknownTarget", Relationship{Type: MaterialFlow, Source: "wh", Target: "nope"}, ErrUnknownTarget},
		{"UnknownType", Relationship{Type: "NEAR", Source: "wh", Target: "gran"}, ErrUnknownRelationType},
		{"Self", Relationship{Type: AdjacentTo, Source: "wh", Target: "wh"}, ErrSelfRelationship},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := l.AddRelationship(tt.rel)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	rel := l.Relationships[0]
	if rel.ID == "" {
		t.Error("AddRelationship should assign an id")
	}
	if rel.Priority != DefaultPriority {
		t.Errorf("Priority = %d, want %d", rel.Priority, DefaultPriority)
	}
}

func TestValidate(t *testing.T) {
	l := &Layout{
		Rooms: []*Room{{ID: "a"}, {ID: "a"}, {ID: ""}},
		Relationships: []Relationship{
			{ID: "r1", Type: AdjacentTo, Source: "a", Target: "missing"},
		},
	}
	err := l.Validate()
	if err == nil {
		t.Fatal("Validate should fail")
	}
	for _, want := range []error{ErrDuplicateRoomID, ErrInvalidRoomID, ErrUnknownTarget} {
		if !errors.Is(err, want) {
			t.Errorf("Validate error %v does not contain %v", err, want)
		}
	}

	if err := newTestLayout(t).Validate(); err != nil {
		t.Errorf("valid layout: %v", err)
	}
}

func TestClone(t *testing.T) {
	l := newTestLayout(t)
	l.Rooms[0].SetPosition(geom.Point{X: 10, Y: 20})

	c := l.Clone()
	c.Rooms[0].Position.X = 99
	c.Rooms[0].Name = "changed"

	if l.Rooms[0].Position.X != 10 {
		t.Error("Clone shares positions with the original")
	}
	if l.Rooms[0].Name == "changed" {
		t.Error("Clone shares rooms with the original")
	}
	if r, ok := c.Room("wh"); !ok || r != c.Rooms[0] {
		t.Error("Clone index should point at cloned rooms")
	}
}

func TestIndex(t *testing.T) {
	l := newTestLayout(t)
	_ = l.AddRelationship(Relationship{Type: MaterialFlow, Source: "wh", Target: "gran"})
	_ = l.AddRelationship(Relationship{Type: AdjacentTo, Source: "al", Target: "fill"})
	_ = l.AddRelationship(Relationship{Type: PersonnelFlow, Source: "al", Target: "fill"})

	idx := l.Index()

	if got := len(idx.Incident("fill")); got != 2 {
		t.Errorf("Incident(fill) = %d, want 2", got)
	}
	if got := len(idx.Incident("fill", AdjacentTo)); got != 1 {
		t.Errorf("Incident(fill, ADJACENT_TO) = %d, want 1", got)
	}
	if n := idx.Neighbors("fill"); len(n) != 1 || n[0].ID != "al" {
		t.Errorf("Neighbors(fill) = %v, want [al]", n)
	}
	if up := idx.Upstream("gran", MaterialFlow); len(up) != 1 || up[0].ID != "wh" {
		t.Errorf("Upstream(gran) = %v", up)
	}
	if down := idx.Downstream("gran", MaterialFlow); len(down) != 0 {
		t.Errorf("Downstream(gran) = %v, want none", down)
	}
}

func TestRoomPredicates(t *testing.T) {
	tests := []struct {
		name                                        string
		airlock, gowning, washroom, waste, highRisk bool
	}{
		{name: "Personnel Airlock", airlock: true},
		{name: "PAL to Grade B", airlock: true},
		{name: "Principal Office"},
		{name: "Gowning Room", gowning: true},
		{name: "Staff Toilet", washroom: true},
		{name: "Waste Disposal", waste: true},
		{name: "Beta-Lactam Production", highRisk: true},
		{name: "Penicillin Filling", highRisk: true},
		{name: "Tablet Compression"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Room{Name: tt.name}
			if r.IsAirlock() != tt.airlock {
				t.Errorf("IsAirlock = %v", r.IsAirlock())
			}
			if r.IsGowning() != tt.gowning {
				t.Errorf("IsGowning = %v", r.IsGowning())
			}
			if r.IsWashroom() != tt.washroom {
				t.Errorf("IsWashroom = %v", r.IsWashroom())
			}
			if r.IsWaste() != tt.waste {
				t.Errorf("IsWaste = %v", r.IsWaste())
			}
			if r.IsHighRisk() != tt.highRisk {
				t.Errorf("IsHighRisk = %v", r.IsHighRisk())
			}
		})
	}
}

func TestClassRank(t *testing.T) {
	tests := []struct {
		class CleanroomClass
		rank  int
	}{
		{ClassA, 1}, {ClassB, 2}, {ClassC, 3}, {ClassD, 4}, {ClassCNC, 5}, {ClassNone, 5},
	}
	for _, tt := range tests {
		if got := tt.class.Rank(); got != tt.rank {
			t.Errorf("%q.Rank() = %d, want %d", tt.class, got, tt.rank)
		}
	}
	if c, ok := ParseClass("Grade b"); !ok || c != ClassB {
		t.Errorf("ParseClass(Grade b) = %q, %v", c, ok)
	}
	if _, ok := ParseClass("E"); ok {
		t.Error("ParseClass(E) should fail")
	}
}

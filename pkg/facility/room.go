package facility

import (
	"slices"
	"strings"

	"github.com/matzehuels/gmplayout/pkg/geom"
)

// Room is a functional area of the facility.
//
// Position is nil until the room is placed. Size may be zero when the room
// was created without dimensions; the catalog fills it in during assembly.
type Room struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Type      string         `json:"type,omitempty"`
	Category  Category       `json:"category"`
	Class     CleanroomClass `json:"cleanroom_class,omitempty"`
	Position  *geom.Point    `json:"position,omitempty"`
	Size      geom.Size      `json:"size"`
	Equipment []string       `json:"equipment,omitempty"`
}

// Placed reports whether the room has a position.
func (r *Room) Placed() bool { return r.Position != nil }

// Center returns the room position, or the zero point when unplaced.
func (r *Room) Center() geom.Point {
	if r.Position == nil {
		return geom.Point{}
	}
	return *r.Position
}

// SetPosition stores a copy of p as the room position.
func (r *Room) SetPosition(p geom.Point) {
	r.Position = &geom.Point{X: p.X, Y: p.Y}
}

// Bounds returns the footprint of the room. Unplaced rooms are treated as
// centred on the origin.
func (r *Room) Bounds() geom.Rect {
	return geom.RectAround(r.Center(), r.Size)
}

// BoundsAt returns the footprint the room would have at p.
func (r *Room) BoundsAt(p geom.Point) geom.Rect {
	return geom.RectAround(p, r.Size)
}

// Area returns the footprint area.
func (r *Room) Area() float64 { return r.Size.Area() }

// Clone returns a deep copy of the room.
func (r *Room) Clone() *Room {
	c := *r
	if r.Position != nil {
		p := *r.Position
		c.Position = &p
	}
	c.Equipment = slices.Clone(r.Equipment)
	return &c
}

// Keyword groups used by the name predicates. Keywords match whole words of
// the lower-cased name and type id.
var (
	airlockKeywords  = []string{"airlock", "air lock", "pal", "mal", "pass-through", "pass box"}
	gowningKeywords  = []string{"gowning", "gown", "change room", "changing"}
	washroomKeywords = []string{"washroom", "wash room", "toilet", "restroom", "lavatory", "locker", "shower"}
	wasteKeywords    = []string{"waste", "disposal"}
	highRiskKeywords = []string{"beta-lactam", "beta lactam", "betalactam", "penicillin", "cephalosporin", "cytotoxic", "hormone", "oncology", "potent"}
)

func (r *Room) matches(keywords []string) bool {
	name := strings.ToLower(r.Name + " " + r.Type)
	for _, k := range keywords {
		if containsWord(name, k) {
			return true
		}
	}
	return false
}

// containsWord reports whether k occurs in s at word boundaries. Short
// acronyms like "pal" must not match inside "principal".
func containsWord(s, k string) bool {
	for i := 0; ; {
		j := strings.Index(s[i:], k)
		if j < 0 {
			return false
		}
		start := i + j
		end := start + len(k)
		if boundary(s, start-1) && boundary(s, end) {
			return true
		}
		i = start + 1
	}
}

func boundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	c := s[i]
	return !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9')
}

// IsAirlock reports whether the room name denotes an airlock
// (personnel/material airlocks, pass-throughs).
func (r *Room) IsAirlock() bool { return r.matches(airlockKeywords) }

// IsGowning reports whether the room is a gowning or change room.
func (r *Room) IsGowning() bool { return r.matches(gowningKeywords) }

// IsWashroom reports whether the room is a washing, toilet or locker facility.
func (r *Room) IsWashroom() bool { return r.matches(washroomKeywords) }

// IsWaste reports whether the room handles waste disposal.
func (r *Room) IsWaste() bool { return r.matches(wasteKeywords) }

// IsHighRisk reports whether the room handles sensitising or highly potent
// products such as beta-lactams.
func (r *Room) IsHighRisk() bool { return r.matches(highRiskKeywords) }

// Package catalog holds the static room-type catalog and facility templates.
//
// The catalog is reference data: it maps a room-type identifier to its
// category, default cleanroom class and default footprint, and it describes
// predefined facility templates (room lists plus relationships). The default
// catalog is embedded as TOML and decoded with BurntSushi/toml; callers may
// load their own with [Load].
//
// A Catalog is immutable after loading and safe for concurrent use.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/gmplayout/pkg/facility"
	"github.com/matzehuels/gmplayout/pkg/geom"
)

//go:embed catalog.toml
var defaultCatalog []byte

// RoomType describes one entry of the room-type catalog.
type RoomType struct {
	ID        string                  `toml:"id" json:"id"`
	Name      string                  `toml:"name" json:"name"`
	Category  facility.Category       `toml:"category" json:"category"`
	Class     facility.CleanroomClass `toml:"class" json:"cleanroom_class,omitempty"`
	Width     float64                 `toml:"width" json:"width"`
	Height    float64                 `toml:"height" json:"height"`
	Order     int                     `toml:"order" json:"order,omitempty"`
	Equipment []string                `toml:"equipment" json:"equipment,omitempty"`
}

// Size returns the default footprint.
func (t RoomType) Size() geom.Size { return geom.Size{W: t.Width, H: t.Height} }

// OnProcessLine reports whether the room type is part of the main
// production sequence.
func (t RoomType) OnProcessLine() bool {
	return t.Category == facility.CategoryProduction && t.Order > 0
}

// TemplateRelationship is a relationship between two template rooms,
// addressed by room-type id.
type TemplateRelationship struct {
	Type     facility.RelationType `toml:"type" json:"type"`
	Source   string                `toml:"source" json:"source"`
	Target   string                `toml:"target" json:"target"`
	Priority int                   `toml:"priority" json:"priority"`
	Reason   string                `toml:"reason" json:"reason"`
}

// Template is a predefined facility: a list of room types plus the
// relationships between them.
type Template struct {
	ID                  string                 `toml:"id" json:"id"`
	Name                string                 `toml:"name" json:"name"`
	FacilityType        string                 `toml:"facility_type" json:"facility_type"`
	ReferenceBatch      float64                `toml:"reference_batch" json:"reference_batch"`
	ReferenceThroughput float64                `toml:"reference_throughput" json:"reference_throughput"`
	Rooms               []string               `toml:"rooms" json:"rooms"`
	Relationships       []TemplateRelationship `toml:"relationships" json:"relationships"`
}

// file is the on-disk shape of the catalog.
type file struct {
	RoomTypes []RoomType `toml:"room_types"`
	Templates []Template `toml:"templates"`
}

// Catalog is the loaded, validated catalog.
type Catalog struct {
	types     map[string]RoomType
	typeOrder []string
	templates map[string]Template
	tplOrder  []string
}

// Default decodes the embedded catalog.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(defaultCatalog))
}

// MustDefault is Default for package initialisation and tests.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// LoadFile decodes a catalog file.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes and validates a TOML catalog.
func Load(r io.Reader) (*Catalog, error) {
	var raw file
	if _, err := toml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{
		types:     make(map[string]RoomType, len(raw.RoomTypes)),
		templates: make(map[string]Template, len(raw.Templates)),
	}
	for _, t := range raw.RoomTypes {
		if err := validateRoomType(t); err != nil {
			return nil, err
		}
		if _, dup := c.types[t.ID]; dup {
			return nil, fmt.Errorf("room type %q defined twice", t.ID)
		}
		c.types[t.ID] = t
		c.typeOrder = append(c.typeOrder, t.ID)
	}
	for _, tpl := range raw.Templates {
		if err := c.validateTemplate(tpl); err != nil {
			return nil, err
		}
		c.templates[tpl.ID] = tpl
		c.tplOrder = append(c.tplOrder, tpl.ID)
	}
	return c, nil
}

func validateRoomType(t RoomType) error {
	switch {
	case t.ID == "":
		return fmt.Errorf("room type with empty id")
	case !t.Category.Valid():
		return fmt.Errorf("room type %q: unknown category %q", t.ID, t.Category)
	case !t.Class.Valid():
		return fmt.Errorf("room type %q: unknown cleanroom class %q", t.ID, t.Class)
	case t.Width <= 0 || t.Height <= 0:
		return fmt.Errorf("room type %q: width and height must be positive", t.ID)
	}
	return nil
}

func (c *Catalog) validateTemplate(tpl Template) error {
	if tpl.ID == "" {
		return fmt.Errorf("template with empty id")
	}
	present := make(map[string]bool, len(tpl.Rooms))
	for _, id := range tpl.Rooms {
		if _, ok := c.types[id]; !ok {
			return fmt.Errorf("template %q: unknown room type %q", tpl.ID, id)
		}
		present[id] = true
	}
	for _, rel := range tpl.Relationships {
		if !rel.Type.Valid() {
			return fmt.Errorf("template %q: unknown relationship type %q", tpl.ID, rel.Type)
		}
		if !present[rel.Source] || !present[rel.Target] {
			return fmt.Errorf("template %q: relationship %s→%s references a room not in the template", tpl.ID, rel.Source, rel.Target)
		}
	}
	return nil
}

// RoomType looks up a room type by id.
func (c *Catalog) RoomType(id string) (RoomType, bool) {
	t, ok := c.types[id]
	return t, ok
}

// RoomTypes returns all room types in catalog order.
func (c *Catalog) RoomTypes() []RoomType {
	out := make([]RoomType, len(c.typeOrder))
	for i, id := range c.typeOrder {
		out[i] = c.types[id]
	}
	return out
}

// Template looks up a template by id.
func (c *Catalog) Template(id string) (Template, bool) {
	t, ok := c.templates[id]
	return t, ok
}

// TemplateForFacility returns the first template whose facility type
// matches.
func (c *Catalog) TemplateForFacility(facilityType string) (Template, bool) {
	for _, id := range c.tplOrder {
		if t := c.templates[id]; t.FacilityType == facilityType || t.ID == facilityType {
			return t, true
		}
	}
	return Template{}, false
}

// Templates returns all templates in catalog order.
func (c *Catalog) Templates() []Template {
	out := make([]Template, len(c.tplOrder))
	for i, id := range c.tplOrder {
		out[i] = c.templates[id]
	}
	return out
}

// ProcessLine returns the production room types of ids that lie on the main
// process line, sorted by their order. Types not in the catalog are skipped.
func (c *Catalog) ProcessLine(ids []string) []string {
	var line []string
	for _, id := range ids {
		if t, ok := c.types[id]; ok && t.OnProcessLine() {
			line = append(line, id)
		}
	}
	sort.SliceStable(line, func(i, j int) bool {
		return c.types[line[i]].Order < c.types[line[j]].Order
	})
	return line
}

// NewRoom instantiates a room of the given type with the given id.
func (c *Catalog) NewRoom(typeID, roomID string) (*facility.Room, error) {
	t, ok := c.types[typeID]
	if !ok {
		return nil, fmt.Errorf("unknown room type %q", typeID)
	}
	return &facility.Room{
		ID:        roomID,
		Name:      t.Name,
		Type:      t.ID,
		Category:  t.Category,
		Class:     t.Class,
		Size:      t.Size(),
		Equipment: append([]string(nil), t.Equipment...),
	}, nil
}

// FillDefaults sets missing size, category and class on r from its type.
// Rooms without a known type are left untouched and false is returned.
func (c *Catalog) FillDefaults(r *facility.Room) bool {
	t, ok := c.types[r.Type]
	if !ok {
		return false
	}
	if r.Size.IsZero() {
		r.Size = t.Size()
	}
	if r.Category == "" {
		r.Category = t.Category
	}
	if r.Class == facility.ClassNone {
		r.Class = t.Class
	}
	if r.Name == "" {
		r.Name = t.Name
	}
	return true
}

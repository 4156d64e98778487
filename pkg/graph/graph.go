package graph

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/matzehuels/gmplayout/pkg/facility"
	"github.com/matzehuels/gmplayout/pkg/geom"
)

// =============================================================================
// Node-link format
// =============================================================================

// Graph is the node-link encoding of a layout.
type Graph struct {
	ID    string `json:"id,omitempty" bson:"id,omitempty"`
	Name  string `json:"name,omitempty" bson:"name,omitempty"`
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Node is a room.
type Node struct {
	ID        string                  `json:"id" bson:"id"`
	Label     string                  `json:"label,omitempty" bson:"label,omitempty"` // Display name (defaults to ID)
	Type      string                  `json:"type,omitempty" bson:"type,omitempty"`
	Category  facility.Category       `json:"category,omitempty" bson:"category,omitempty"`
	Class     facility.CleanroomClass `json:"class,omitempty" bson:"class,omitempty"`
	X         *float64                `json:"x,omitempty" bson:"x,omitempty"`
	Y         *float64                `json:"y,omitempty" bson:"y,omitempty"`
	Width     float64                 `json:"width,omitempty" bson:"width,omitempty"`
	Height    float64                 `json:"height,omitempty" bson:"height,omitempty"`
	Equipment []string                `json:"equipment,omitempty" bson:"equipment,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is a relationship.
type Edge struct {
	ID       string                `json:"id,omitempty" bson:"id,omitempty"`
	From     string                `json:"from" bson:"from"`
	To       string                `json:"to" bson:"to"`
	Type     facility.RelationType `json:"type" bson:"type"`
	Priority int                   `json:"priority,omitempty" bson:"priority,omitempty"`
	Reason   string                `json:"reason,omitempty" bson:"reason,omitempty"`

	FlowDirection facility.FlowDirection `json:"flow_direction,omitempty" bson:"flow_direction,omitempty"`
	FlowType      string                 `json:"flow_type,omitempty" bson:"flow_type,omitempty"`
}

// FromLayout converts a layout to node-link form.
func FromLayout(l *facility.Layout) Graph {
	g := Graph{
		ID:    l.ID,
		Name:  l.Name,
		Nodes: make([]Node, 0, len(l.Rooms)),
		Edges: make([]Edge, 0, len(l.Relationships)),
	}
	for _, r := range l.Rooms {
		n := Node{
			ID:        r.ID,
			Type:      r.Type,
			Category:  r.Category,
			Class:     r.Class,
			Width:     r.Size.W,
			Height:    r.Size.H,
			Equipment: r.Equipment,
		}
		if r.Name != r.ID {
			n.Label = r.Name
		}
		if r.Position != nil {
			x, y := r.Position.X, r.Position.Y
			n.X, n.Y = &x, &y
		}
		g.Nodes = append(g.Nodes, n)
	}
	for _, rel := range l.Relationships {
		g.Edges = append(g.Edges, Edge{
			ID:       rel.ID,
			From:     rel.Source,
			To:       rel.Target,
			Type:     rel.Type,
			Priority: rel.Priority,
			Reason:   rel.Reason,

			FlowDirection: rel.FlowDirection,
			FlowType:      rel.FlowType,
		})
	}
	return g
}

// ToLayout converts node-link form to a layout, enforcing the layout
// invariants. A node without coordinates becomes an unplaced room.
func ToLayout(g Graph) (*facility.Layout, error) {
	l := facility.NewLayout(g.Name)
	if g.ID != "" {
		l.ID = g.ID
	}
	for _, n := range g.Nodes {
		r := &facility.Room{
			ID:        n.ID,
			Name:      n.DisplayLabel(),
			Type:      n.Type,
			Category:  n.Category,
			Class:     n.Class,
			Size:      geom.Size{W: n.Width, H: n.Height},
			Equipment: n.Equipment,
		}
		if n.X != nil && n.Y != nil {
			r.SetPosition(geom.Point{X: *n.X, Y: *n.Y})
		}
		if err := l.AddRoom(r); err != nil {
			return nil, fmt.Errorf("node %q: %w", n.ID, err)
		}
	}
	for _, e := range g.Edges {
		rel := facility.Relationship{
			ID:       e.ID,
			Type:     e.Type,
			Source:   e.From,
			Target:   e.To,
			Priority: e.Priority,
			Reason:   e.Reason,

			FlowDirection: e.FlowDirection,
			FlowType:      e.FlowType,
		}
		if err := l.AddRelationship(rel); err != nil {
			return nil, fmt.Errorf("edge %s->%s: %w", e.From, e.To, err)
		}
	}
	return l, nil
}

// WriteGraph writes l in node-link form.
func WriteGraph(l *facility.Layout, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromLayout(l)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

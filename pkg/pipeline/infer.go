package pipeline

import (
	"sort"

	"github.com/matzehuels/gmplayout/pkg/catalog"
	gerrors "github.com/matzehuels/gmplayout/pkg/errors"
	"github.com/matzehuels/gmplayout/pkg/facility"
)

// infer adds template or heuristic relationships, then the caller's own.
// Caller relationships that do not resolve are dropped with a warning.
func (r *Runner) infer(g *generation) error {
	l := g.layout
	if g.template != nil {
		for _, tr := range g.template.Relationships {
			rel := facility.Relationship{
				Type:     tr.Type,
				Source:   tr.Source,
				Target:   tr.Target,
				Priority: tr.Priority,
				Reason:   tr.Reason,
			}
			if err := l.AddRelationship(rel); err != nil {
				return gerrors.Wrap(gerrors.ErrCodeInternal, err, "template %s", g.template.ID)
			}
		}
		g.explain("Applied %d relationships from the template.", len(g.template.Relationships))
	} else {
		inferred := InferRelationships(l.Rooms, r.Catalog)
		for _, rel := range inferred {
			if err := l.AddRelationship(rel); err != nil {
				return gerrors.Wrap(gerrors.ErrCodeInternal, err, "inferred relationship")
			}
		}
		g.explain("Inferred %d relationships from process order, airlocks, gowning and waste handling.", len(inferred))
	}

	for _, rel := range g.req.Relationships {
		if l.HasRelationship(rel.Type, rel.Source, rel.Target) {
			continue
		}
		if err := l.AddRelationship(rel); err != nil {
			g.warn("dropped relationship %s %s->%s: %v", rel.Type, rel.Source, rel.Target, err)
		}
	}
	return nil
}

// InferRelationships derives the heuristic relationship set for rooms
// without a template:
//
//   - MATERIAL_FLOW along the catalog's production order
//   - ADJACENT_TO from every airlock to every grade A/B room
//   - PERSONNEL_FLOW from every gowning room to every grade A/B room
//   - MATERIAL_FLOW from the first warehouse to the first production room
//   - MATERIAL_FLOW from the last production room to the first QC room
//   - PROHIBITED_NEAR from every waste room to every grade A/B room
//
// Airlocks and gowning rooms are never targets of the A/B edges.
func InferRelationships(rooms []*facility.Room, cat *catalog.Catalog) []facility.Relationship {
	var out []facility.Relationship
	seen := make(map[[3]string]bool)
	add := func(t facility.RelationType, source, target string, priority int, reason string) {
		if source == target {
			return
		}
		k := [3]string{string(t), source, target}
		if seen[k] {
			return
		}
		seen[k] = true
		out = append(out, facility.Relationship{
			ID:       facility.NewID(),
			Type:     t,
			Source:   source,
			Target:   target,
			Priority: priority,
			Reason:   reason,
		})
	}

	line := processLine(rooms, cat)
	for i := 1; i < len(line); i++ {
		add(facility.MaterialFlow, line[i-1].ID, line[i].ID, 1, "Process sequence")
	}

	var aseptic, airlocks, gowning, waste []*facility.Room
	var firstWarehouse, firstQC *facility.Room
	var production []*facility.Room
	for _, room := range rooms {
		switch {
		case room.IsAirlock():
			airlocks = append(airlocks, room)
		case room.IsGowning():
			gowning = append(gowning, room)
		case room.Class.Aseptic():
			aseptic = append(aseptic, room)
		}
		if room.IsWaste() {
			waste = append(waste, room)
		}
		switch room.Category {
		case facility.CategoryWarehouse:
			if firstWarehouse == nil {
				firstWarehouse = room
			}
		case facility.CategoryQualityControl:
			if firstQC == nil {
				firstQC = room
			}
		case facility.CategoryProduction:
			production = append(production, room)
		}
	}
	if len(line) > 0 {
		production = line
	}

	for _, a := range airlocks {
		for _, t := range aseptic {
			add(facility.AdjacentTo, a.ID, t.ID, 1, "Airlock buffers the grade A/B room")
		}
	}
	for _, gr := range gowning {
		for _, t := range aseptic {
			add(facility.PersonnelFlow, gr.ID, t.ID, 2, "Personnel gown before entering grade A/B areas")
		}
	}
	if firstWarehouse != nil && len(production) > 0 {
		add(facility.MaterialFlow, firstWarehouse.ID, production[0].ID, 2, "Materials are issued from the warehouse")
	}
	if firstQC != nil && len(production) > 0 {
		add(facility.MaterialFlow, production[len(production)-1].ID, firstQC.ID, 3, "Samples go to quality control")
	}
	for _, w := range waste {
		for _, t := range aseptic {
			add(facility.ProhibitedNear, w.ID, t.ID, 1, "Waste is kept away from aseptic areas")
		}
	}
	return out
}

// processLine returns the rooms whose type is on the catalog's production
// line, in process order. Rooms of equal order keep their input order.
func processLine(rooms []*facility.Room, cat *catalog.Catalog) []*facility.Room {
	var line []*facility.Room
	for _, room := range rooms {
		if t, ok := cat.RoomType(room.Type); ok && t.OnProcessLine() {
			line = append(line, room)
		}
	}
	sort.SliceStable(line, func(i, j int) bool {
		a, _ := cat.RoomType(line[i].Type)
		b, _ := cat.RoomType(line[j].Type)
		return a.Order < b.Order
	})
	return line
}

package compliance

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/gmplayout/pkg/facility"
)

// Verdict is an evaluator's outcome for one rule.
type Verdict struct {
	Passed   bool
	Message  string
	Affected []string
}

// Evaluator checks one rule against a graph. Evaluators are pure: they
// only read the graph.
type Evaluator func(g *Graph) Verdict

// Registry maps rule ids to evaluators. Build it once at startup and treat
// it as read-only afterwards.
type Registry map[string]Evaluator

// DefaultRegistry returns the evaluators for the built-in rulebook.
func DefaultRegistry() Registry {
	return Registry{
		"airlock-adequacy":      AirlockAdequacy,
		"cleanroom-progression": CleanroomProgression,
		"flow-separation":       FlowSeparation,
		"hazardous-segregation": HazardousSegregation,
		"washroom-separation":   WashroomSeparation,
		"waste-separation":      WasteSeparation,
		"gowning-sequence":      GowningSequence,
		"qc-separation":         QCSeparation,
		"prohibited-proximity":  ProhibitedProximity,
	}
}

// Register adds or replaces an evaluator.
func (r Registry) Register(id string, e Evaluator) { r[id] = e }

// IDs returns the registered rule ids, sorted.
func (r Registry) IDs() []string {
	return slices.Sorted(maps.Keys(r))
}

// affected collects room ids once each, in first-seen order.
type affected struct {
	seen map[string]bool
	ids  []string
}

func (a *affected) add(ids ...string) {
	if a.seen == nil {
		a.seen = make(map[string]bool)
	}
	for _, id := range ids {
		if !a.seen[id] {
			a.seen[id] = true
			a.ids = append(a.ids, id)
		}
	}
}

func (a *affected) verdict(pass, fail string) Verdict {
	if len(a.ids) == 0 {
		return Verdict{Passed: true, Message: pass}
	}
	return Verdict{Message: fmt.Sprintf(fail, strings.Join(a.ids, ", ")), Affected: a.ids}
}

// forbiddenAdjacency fails every ADJACENT_TO edge joining a room matching
// subject to a room matching other.
func forbiddenAdjacency(g *Graph, subject, other func(*facility.Room) bool) *affected {
	var a affected
	for _, r := range g.Rooms() {
		if !subject(r) {
			continue
		}
		for _, n := range g.Adjacent(r.ID) {
			if other(n) {
				a.add(r.ID, n.ID)
			}
		}
	}
	return &a
}

func aseptic(r *facility.Room) bool { return r.Class.Aseptic() }

// AirlockAdequacy requires every Grade A/B room, other than airlocks, to be
// adjacent to an airlock.
func AirlockAdequacy(g *Graph) Verdict {
	var a affected
	for _, r := range g.Rooms() {
		if !aseptic(r) || r.IsAirlock() {
			continue
		}
		if !slices.ContainsFunc(g.Adjacent(r.ID), (*facility.Room).IsAirlock) {
			a.add(r.ID)
		}
	}
	return a.verdict("All Grade A/B rooms are served by an airlock",
		"Grade A/B rooms without an adjacent airlock: %s")
}

// CleanroomProgression fails ADJACENT_TO edges spanning more than two
// cleanroom grades.
func CleanroomProgression(g *Graph) Verdict {
	var a affected
	for _, e := range g.Edges(facility.AdjacentTo) {
		gap := e.Source.Class.Rank() - e.Target.Class.Rank()
		if gap < -2 || gap > 2 {
			a.add(e.Source.ID, e.Target.ID)
		}
	}
	return a.verdict("Adjacent rooms step down at most two grades",
		"Adjacent rooms skip a buffer zone between grades: %s")
}

// FlowSeparation fails MATERIAL_FLOW edges duplicated by a PERSONNEL_FLOW
// with the same source and target. Opposite directions are not compared.
func FlowSeparation(g *Graph) Verdict {
	personnel := make(map[[2]string]bool)
	for _, e := range g.Edges(facility.PersonnelFlow) {
		personnel[[2]string{e.Rel.Source, e.Rel.Target}] = true
	}
	var a affected
	for _, e := range g.Edges(facility.MaterialFlow) {
		if personnel[[2]string{e.Rel.Source, e.Rel.Target}] {
			a.add(e.Rel.Source, e.Rel.Target)
		}
	}
	return a.verdict("Material and personnel flows use separate routes",
		"Material and personnel share a route between: %s")
}

// HazardousSegregation keeps high-risk production rooms off other
// production rooms.
func HazardousSegregation(g *Graph) Verdict {
	a := forbiddenAdjacency(g, (*facility.Room).IsHighRisk, func(r *facility.Room) bool {
		return r.Category == facility.CategoryProduction
	})
	return a.verdict("High-risk production is segregated",
		"High-risk production shares a boundary with other production: %s")
}

// WashroomSeparation keeps washrooms, toilets and lockers off production
// and storage.
func WashroomSeparation(g *Graph) Verdict {
	a := forbiddenAdjacency(g, (*facility.Room).IsWashroom, func(r *facility.Room) bool {
		return r.Category == facility.CategoryProduction || r.Category == facility.CategoryWarehouse
	})
	return a.verdict("Washrooms do not open onto production or storage",
		"Washrooms adjacent to production or storage: %s")
}

// WasteSeparation keeps waste handling off Grade A, B and C rooms.
func WasteSeparation(g *Graph) Verdict {
	a := forbiddenAdjacency(g, (*facility.Room).IsWaste, func(r *facility.Room) bool {
		return r.Class.Rank() <= facility.ClassC.Rank()
	})
	return a.verdict("Waste handling is separated from Grade A-C rooms",
		"Waste handling adjacent to Grade A-C rooms: %s")
}

// GowningSequence requires every Grade A/B room, other than airlocks and
// gowning rooms, to be reached from a gowning room by PERSONNEL_FLOW or to
// be adjacent to one.
func GowningSequence(g *Graph) Verdict {
	var a affected
	for _, r := range g.Rooms() {
		if !aseptic(r) || r.IsAirlock() || r.IsGowning() {
			continue
		}
		if slices.ContainsFunc(g.Upstream(r.ID, facility.PersonnelFlow), (*facility.Room).IsGowning) {
			continue
		}
		if slices.ContainsFunc(g.Adjacent(r.ID), (*facility.Room).IsGowning) {
			continue
		}
		a.add(r.ID)
	}
	return a.verdict("Grade A/B rooms are entered through gowning",
		"Grade A/B rooms without a gowning step: %s")
}

// QCSeparation keeps QC laboratories off production rooms.
func QCSeparation(g *Graph) Verdict {
	a := forbiddenAdjacency(g, func(r *facility.Room) bool {
		return r.Category == facility.CategoryQualityControl
	}, func(r *facility.Room) bool {
		return r.Category == facility.CategoryProduction
	})
	return a.verdict("QC laboratories are separated from production",
		"QC laboratories adjacent to production: %s")
}

// ProhibitedProximity fails placed PROHIBITED_NEAR endpoints whose
// footprints are closer than the graph's minimum separation. Unplaced rooms
// are skipped.
func ProhibitedProximity(g *Graph) Verdict {
	var a affected
	for _, e := range g.Edges(facility.ProhibitedNear) {
		if !e.Source.Placed() || !e.Target.Placed() {
			continue
		}
		if e.Source.Bounds().Gap(e.Target.Bounds()) < g.MinSeparation {
			a.add(e.Source.ID, e.Target.ID)
		}
	}
	return a.verdict("Prohibited pairs are kept apart",
		"Rooms that must be kept apart are too close: %s")
}

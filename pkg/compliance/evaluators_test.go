package compliance

import (
	"slices"
	"testing"

	"github.com/matzehuels/gmplayout/pkg/facility"
	"github.com/matzehuels/gmplayout/pkg/geom"
)

func TestEvaluators(t *testing.T) {
	fill := func() *facility.Room {
		return newRoom("fill", "Aseptic Filling", facility.CategoryProduction, facility.ClassA)
	}
	tests := []struct {
		name     string
		eval     Evaluator
		rooms    []*facility.Room
		rels     []facility.Relationship
		pass     bool
		affected []string
	}{
		{
			name:  "airlock present",
			eval:  AirlockAdequacy,
			rooms: []*facility.Room{fill(), newRoom("pal", "Personnel Airlock", facility.CategoryPersonnel, facility.ClassB)},
			rels:  []facility.Relationship{adj("pal", "fill")},
			pass:  true,
		},
		{
			name:  "grade B airlock needs no airlock of its own",
			eval:  AirlockAdequacy,
			rooms: []*facility.Room{newRoom("mal", "Material Airlock", facility.CategoryPersonnel, facility.ClassB)},
			pass:  true,
		},
		{
			name: "grade B airlock does not excuse an unserved neighbour",
			eval: AirlockAdequacy,
			rooms: []*facility.Room{
				newRoom("mal", "Material Airlock", facility.CategoryPersonnel, facility.ClassB),
				newRoom("prep", "Solution Preparation", facility.CategoryProduction, facility.ClassB),
			},
			affected: []string{"prep"},
		},
		{
			name:  "airlock not required for grade D",
			eval:  AirlockAdequacy,
			rooms: []*facility.Room{newRoom("gran", "Granulation", facility.CategoryProduction, facility.ClassD)},
			pass:  true,
		},
		{
			name: "same direction flows",
			eval: FlowSeparation,
			rooms: []*facility.Room{
				newRoom("a", "A", facility.CategoryProduction, facility.ClassD),
				newRoom("b", "B", facility.CategoryProduction, facility.ClassD),
			},
			rels: []facility.Relationship{
				{Type: facility.MaterialFlow, Source: "a", Target: "b"},
				{Type: facility.PersonnelFlow, Source: "a", Target: "b"},
			},
			affected: []string{"a", "b"},
		},
		{
			name: "opposite flows are not compared",
			eval: FlowSeparation,
			rooms: []*facility.Room{
				newRoom("a", "A", facility.CategoryProduction, facility.ClassD),
				newRoom("b", "B", facility.CategoryProduction, facility.ClassD),
			},
			rels: []facility.Relationship{
				{Type: facility.MaterialFlow, Source: "a", Target: "b"},
				{Type: facility.PersonnelFlow, Source: "b", Target: "a"},
			},
			pass: true,
		},
		{
			name: "beta-lactam next to production",
			eval: HazardousSegregation,
			rooms: []*facility.Room{
				newRoom("bl", "Beta-Lactam Production", facility.CategoryProduction, facility.ClassC),
				newRoom("comp", "Compression", facility.CategoryProduction, facility.ClassD),
				newRoom("wh", "Warehouse", facility.CategoryWarehouse, facility.ClassNone),
			},
			rels:     []facility.Relationship{adj("comp", "bl"), adj("bl", "wh")},
			affected: []string{"bl", "comp"},
		},
		{
			name: "locker next to warehouse",
			eval: WashroomSeparation,
			rooms: []*facility.Room{
				newRoom("lock", "Locker Room", facility.CategoryPersonnel, facility.ClassNone),
				newRoom("wh", "Warehouse", facility.CategoryWarehouse, facility.ClassNone),
			},
			rels:     []facility.Relationship{adj("lock", "wh")},
			affected: []string{"lock", "wh"},
		},
		{
			name: "waste next to grade D is allowed",
			eval: WasteSeparation,
			rooms: []*facility.Room{
				newRoom("waste", "Waste Disposal", facility.CategorySupport, facility.ClassNone),
				newRoom("pack", "Visual Inspection", facility.CategoryProduction, facility.ClassD),
			},
			rels: []facility.Relationship{adj("waste", "pack")},
			pass: true,
		},
		{
			name: "waste next to grade C",
			eval: WasteSeparation,
			rooms: []*facility.Room{
				newRoom("waste", "Waste Disposal", facility.CategorySupport, facility.ClassNone),
				newRoom("prep", "Solution Preparation", facility.CategoryProduction, facility.ClassC),
			},
			rels:     []facility.Relationship{adj("prep", "waste")},
			affected: []string{"waste", "prep"},
		},
		{
			name: "gowning by personnel flow",
			eval: GowningSequence,
			rooms: []*facility.Room{
				fill(),
				newRoom("gown", "Gowning Secondary", facility.CategoryPersonnel, facility.ClassB),
			},
			rels: []facility.Relationship{{Type: facility.PersonnelFlow, Source: "gown", Target: "fill"}},
			pass: true,
		},
		{
			name: "gowning flow in the wrong direction",
			eval: GowningSequence,
			rooms: []*facility.Room{
				fill(),
				newRoom("gown", "Gowning Secondary", facility.CategoryPersonnel, facility.ClassB),
			},
			rels:     []facility.Relationship{{Type: facility.PersonnelFlow, Source: "fill", Target: "gown"}},
			affected: []string{"fill"},
		},
		{
			name: "qc next to production",
			eval: QCSeparation,
			rooms: []*facility.Room{
				newRoom("qc", "QC Lab", facility.CategoryQualityControl, facility.ClassNone),
				newRoom("pack", "Packaging", facility.CategoryProduction, facility.ClassCNC),
			},
			rels:     []facility.Relationship{adj("pack", "qc")},
			affected: []string{"qc", "pack"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := tt.eval(NewGraph(tt.rooms, tt.rels))
			if v.Passed != tt.pass {
				t.Errorf("Passed = %v, want %v (%s)", v.Passed, tt.pass, v.Message)
			}
			if !slices.Equal(v.Affected, tt.affected) {
				t.Errorf("Affected = %v, want %v", v.Affected, tt.affected)
			}
		})
	}
}

func TestProhibitedProximity(t *testing.T) {
	waste := newRoom("waste", "Waste Disposal", facility.CategorySupport, facility.ClassNone)
	fill := newRoom("fill", "Aseptic Filling", facility.CategoryProduction, facility.ClassA)
	rels := []facility.Relationship{{Type: facility.ProhibitedNear, Source: "waste", Target: "fill"}}

	if v := ProhibitedProximity(NewGraph([]*facility.Room{waste, fill}, rels)); !v.Passed {
		t.Errorf("unplaced rooms should be skipped: %s", v.Message)
	}

	waste.SetPosition(geom.Point{X: 100, Y: 100})
	fill.SetPosition(geom.Point{X: 300, Y: 100})
	if v := ProhibitedProximity(NewGraph([]*facility.Room{waste, fill}, rels)); v.Passed {
		t.Error("100 unit gap should fail the 150 unit separation")
	}

	fill.SetPosition(geom.Point{X: 400, Y: 100})
	if v := ProhibitedProximity(NewGraph([]*facility.Room{waste, fill}, rels)); !v.Passed {
		t.Errorf("200 unit gap should pass: %s", v.Message)
	}
}

package pipeline

import (
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/gmplayout/pkg/facility"
	"github.com/matzehuels/gmplayout/pkg/geom"
)

// Contamination risk contributions per PROHIBITED_NEAR pair.
const (
	riskPerPair      = 0.1
	riskPerViolation = 0.3
)

// ComputeMetrics derives the layout figures. ideal is the wanted
// centre-to-centre distance of related rooms; minSeparation is the footprint
// gap PROHIBITED_NEAR pairs must keep. Unplaced rooms count toward areas but
// not toward distances.
func ComputeMetrics(l *facility.Layout, ideal, minSeparation float64) Metrics {
	var m Metrics
	var bounds geom.Rect
	var classified float64
	first := true
	for _, room := range l.Rooms {
		area := room.Area()
		m.TotalArea += area
		if room.Class.Classified() {
			classified += area
		}
		if !room.Placed() {
			continue
		}
		if first {
			bounds, first = room.Bounds(), false
		} else {
			bounds = bounds.Union(room.Bounds())
		}
	}
	if !first {
		m.BoundingArea = bounds.Area()
	}
	if m.TotalArea > 0 {
		m.CleanroomUtilization = round2(100 * classified / m.TotalArea)
	}

	idx := l.Index()
	var matSum, perSum, effSum float64
	var matN, perN, effN int
	var risk float64
	for _, rel := range l.Relationships {
		a, okA := idx.Room(rel.Source)
		b, okB := idx.Room(rel.Target)
		if !okA || !okB || !a.Placed() || !b.Placed() {
			continue
		}
		d := geom.Distance(a.Center(), b.Center())
		switch rel.Type {
		case facility.MaterialFlow:
			matSum += d
			matN++
		case facility.PersonnelFlow:
			perSum += d
			perN++
		case facility.ProhibitedNear:
			risk += riskPerPair
			if a.Bounds().Gap(b.Bounds()) < minSeparation {
				risk += riskPerViolation
			}
			continue
		default:
			continue
		}
		effSum += math.Min(1, ideal/math.Max(d, 1))
		effN++
	}
	if matN > 0 {
		m.AvgMaterialFlowDistance = round2(matSum / float64(matN))
	}
	if perN > 0 {
		m.AvgPersonnelFlowDistance = round2(perSum / float64(perN))
	}
	m.FlowEfficiency = 1
	if effN > 0 {
		m.FlowEfficiency = round2(effSum / float64(effN))
	}
	m.ContaminationRisk = round2(math.Min(1, risk))
	m.TotalArea = round2(m.TotalArea)
	m.BoundingArea = round2(m.BoundingArea)
	return m
}

// ComputeZones groups rooms by category, then by cleanroom class. Empty
// groups are left out. Bounds cover the placed rooms of the group.
func ComputeZones(l *facility.Layout) []Zone {
	var zones []Zone
	for _, c := range facility.Categories {
		z := zone(ZoneKindCategory, string(c), string(c), l.Rooms, func(r *facility.Room) bool { return r.Category == c })
		if z != nil {
			zones = append(zones, *z)
		}
	}
	classes := []facility.CleanroomClass{facility.ClassA, facility.ClassB, facility.ClassC, facility.ClassD, facility.ClassCNC}
	for _, c := range classes {
		name := "Grade " + string(c)
		if c == facility.ClassCNC {
			name = "Controlled not classified"
		}
		z := zone(ZoneKindClass, string(c), name, l.Rooms, func(r *facility.Room) bool { return r.Class == c })
		if z != nil {
			zones = append(zones, *z)
		}
	}
	return zones
}

func zone(kind, key, name string, rooms []*facility.Room, match func(*facility.Room) bool) *Zone {
	z := &Zone{
		ID:   fmt.Sprintf("%s-%s", kind, strings.ReplaceAll(strings.ToLower(key), " ", "-")),
		Kind: kind,
		Name: name,
	}
	first := true
	for _, r := range rooms {
		if !match(r) {
			continue
		}
		z.RoomIDs = append(z.RoomIDs, r.ID)
		z.Area += r.Area()
		if !r.Placed() {
			continue
		}
		if first {
			z.Bounds, first = r.Bounds(), false
		} else {
			z.Bounds = z.Bounds.Union(r.Bounds())
		}
	}
	if len(z.RoomIDs) == 0 {
		return nil
	}
	return z
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

package simulate

import (
	"math"

	"github.com/matzehuels/gmplayout/pkg/facility"
	"github.com/matzehuels/gmplayout/pkg/geom"
)

// resolve pushes overlapping rooms apart along their axis of least
// penetration, in whole grid steps, until no pair collides or the pass budget
// runs out. Rooms never swap sides along the axis they are pushed on. It
// returns the number of pairs still colliding.
func (s *Simulator) resolve(st *state) int {
	n := len(st.pos)
	for range s.params.ResolvePasses {
		changed := false
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if s.separate(st, i, j) {
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}
	return s.countOverlaps(st)
}

func (s *Simulator) separate(st *state, i, j int) bool {
	ri, rj := st.rooms[i], st.rooms[j]
	bi, bj := ri.BoundsAt(st.pos[i]), rj.BoundsAt(st.pos[j])
	if !bi.Intersects(bj, s.params.Clearance) {
		return false
	}
	grid := s.params.GridSize
	px, py := bi.Penetration(bj, s.params.Clearance)

	var shift geom.Point
	if px <= py {
		half := math.Ceil(math.Ceil(px/grid)/2) * grid
		shift = geom.Point{X: direction(st.pos[j].X-st.pos[i].X) * half}
	} else {
		half := math.Ceil(math.Ceil(py/grid)/2) * grid
		shift = geom.Point{Y: direction(st.pos[j].Y-st.pos[i].Y) * half}
	}

	c := s.params.Canvas
	ni := c.SnapInside(st.pos[i].Sub(shift), ri.Size, grid)
	nj := c.SnapInside(st.pos[j].Add(shift), rj.Size, grid)
	changed := ni != st.pos[i] || nj != st.pos[j]
	st.pos[i], st.pos[j] = ni, nj
	return changed
}

// direction is the sign of d, with ties sending the later room forward.
func direction(d float64) float64 {
	if d < 0 {
		return -1
	}
	return 1
}

func (s *Simulator) countOverlaps(st *state) int {
	var count int
	for i := range st.pos {
		for j := i + 1; j < len(st.pos); j++ {
			if st.rooms[i].BoundsAt(st.pos[i]).Intersects(st.rooms[j].BoundsAt(st.pos[j]), s.params.Clearance) {
				count++
			}
		}
	}
	return count
}

// CountOverlaps returns how many room pairs in positions sit closer than
// clearance. Rooms missing from positions are ignored.
func CountOverlaps(rooms []*facility.Room, positions map[string]geom.Point, clearance float64) int {
	var count int
	for i, a := range rooms {
		pa, ok := positions[a.ID]
		if !ok {
			continue
		}
		for _, b := range rooms[i+1:] {
			pb, ok := positions[b.ID]
			if ok && a.BoundsAt(pa).Intersects(b.BoundsAt(pb), clearance) {
				count++
			}
		}
	}
	return count
}

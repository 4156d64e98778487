package simulate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/gmplayout/pkg/facility"
	"github.com/matzehuels/gmplayout/pkg/geom"
)

var (
	// ErrUnknownStyle is returned for a style name that is not supported.
	ErrUnknownStyle = errors.New("unknown layout style")
	// ErrUnknownRoom is returned when a relationship or an initial position
	// names a room that is not part of the simulation.
	ErrUnknownRoom = errors.New("unknown room")
	// ErrDuplicateRoom is returned when two rooms share an id.
	ErrDuplicateRoom = errors.New("duplicate room id")
)

// goldenAngle spreads coincident rooms in distinct directions.
const goldenAngle = 2.399963229728653

// minDistance bounds the repulsion denominator.
const minDistance = 1.0

// Result is the outcome of a simulation run.
type Result struct {
	Positions  map[string]geom.Point `json:"positions"`
	Iterations int                   `json:"iterations"`
	Converged  bool                  `json:"converged"`
	// Overlaps counts room pairs still closer than the clearance after the
	// resolution pass.
	Overlaps int `json:"overlaps"`
}

// Simulator runs force-directed relaxations. It holds only configuration
// and is safe for concurrent use.
type Simulator struct {
	params Params
}

// New creates a simulator. Zero params fields take their defaults.
func New(p Params) *Simulator {
	return &Simulator{params: p.withDefaults()}
}

// Params returns the simulator's effective parameters.
func (s *Simulator) Params() Params { return s.params }

// state is the mutable data of one run.
type state struct {
	rooms []*facility.Room
	pos   []geom.Point
	vel   []geom.Point
	force []geom.Point
	edges []edge
}

type edge struct {
	a, b  int
	repel bool
}

// Simulate computes final positions for rooms. The rooms themselves are not
// modified; apply [Result.Positions] to commit them.
//
// initial pins the starting point of the listed rooms and overrides the
// style for them. Relationships must reference rooms in the set.
func (s *Simulator) Simulate(ctx context.Context, rooms []*facility.Room, rels []facility.Relationship, initial map[string]geom.Point, style Style) (Result, error) {
	if style == "" {
		style = StyleGrid
	}
	if _, err := ParseStyle(string(style)); err != nil {
		return Result{}, err
	}
	res := Result{Positions: make(map[string]geom.Point, len(rooms))}
	if len(rooms) == 0 {
		res.Converged = true
		return res, nil
	}

	st, err := s.newState(rooms, rels, initial, style)
	if err != nil {
		return Result{}, err
	}

	for res.Iterations < s.params.Iterations {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		moved, err := s.tick(ctx, st)
		if err != nil {
			return Result{}, err
		}
		res.Iterations++
		if moved < s.params.Threshold {
			res.Converged = true
			break
		}
	}

	for i, r := range st.rooms {
		st.pos[i] = s.params.Canvas.SnapInside(st.pos[i], r.Size, s.params.GridSize)
	}
	res.Overlaps = s.resolve(st)
	for i, r := range st.rooms {
		res.Positions[r.ID] = st.pos[i]
	}
	return res, nil
}

func (s *Simulator) newState(rooms []*facility.Room, rels []facility.Relationship, initial map[string]geom.Point, style Style) (*state, error) {
	idx := make(map[string]int, len(rooms))
	for i, r := range rooms {
		if _, dup := idx[r.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateRoom, r.ID)
		}
		idx[r.ID] = i
	}
	for id := range initial {
		if _, ok := idx[id]; !ok {
			return nil, fmt.Errorf("%w in initial positions: %q", ErrUnknownRoom, id)
		}
	}

	st := &state{
		rooms: rooms,
		pos:   s.initialPositions(rooms, rels, style),
		vel:   make([]geom.Point, len(rooms)),
		force: make([]geom.Point, len(rooms)),
	}
	for i, r := range rooms {
		if p, ok := initial[r.ID]; ok {
			st.pos[i] = p
		}
		st.pos[i] = s.params.Canvas.ClampCenter(st.pos[i], r.Size)
	}

	for _, rel := range rels {
		a, ok := idx[rel.Source]
		if !ok {
			return nil, fmt.Errorf("%w: relationship source %q", ErrUnknownRoom, rel.Source)
		}
		b, ok := idx[rel.Target]
		if !ok {
			return nil, fmt.Errorf("%w: relationship target %q", ErrUnknownRoom, rel.Target)
		}
		if a == b {
			continue
		}
		st.edges = append(st.edges, edge{a: a, b: b, repel: rel.Type == facility.ProhibitedNear})
	}
	return st, nil
}

// tick advances the simulation by one step and returns the largest
// displacement of any room.
func (s *Simulator) tick(ctx context.Context, st *state) (float64, error) {
	if err := s.repulse(ctx, st); err != nil {
		return 0, err
	}
	for _, e := range st.edges {
		delta := st.pos[e.b].Sub(st.pos[e.a])
		var f geom.Point
		if e.repel {
			f = s.repulsion(st.pos[e.a], st.pos[e.b], e.a, e.b, len(st.pos))
		} else {
			f = delta.Scale(s.params.Attraction)
		}
		st.force[e.a] = st.force[e.a].Add(f)
		st.force[e.b] = st.force[e.b].Sub(f)
	}

	var moved float64
	for i, r := range st.rooms {
		v := st.vel[i].Add(st.force[i]).Scale(s.params.Damping)
		if l := v.Len(); l > s.params.MaxStep {
			v = v.Scale(s.params.MaxStep / l)
		}
		st.vel[i] = v
		next := s.params.Canvas.ClampCenter(st.pos[i].Add(v), r.Size)
		moved = math.Max(moved, geom.Distance(next, st.pos[i]))
		st.pos[i] = next
	}
	return moved, nil
}

// repulse fills st.force with the pairwise repulsion on every room. Each
// room's sum is independent, so large sets fan out with one goroutine per
// room slot and join before attraction is applied.
func (s *Simulator) repulse(ctx context.Context, st *state) error {
	n := len(st.pos)
	sum := func(i int) {
		var f geom.Point
		for j := range n {
			if j != i {
				f = f.Add(s.repulsion(st.pos[i], st.pos[j], i, j, n))
			}
		}
		st.force[i] = f
	}

	if n < s.params.ParallelThreshold {
		for i := range n {
			sum(i)
		}
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range n {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sum(i)
			return nil
		})
	}
	return g.Wait()
}

// repulsion is the force j exerts on i. Coincident rooms are separated
// along a direction derived from the pair indices, opposite for the two
// ends.
func (s *Simulator) repulsion(pi, pj geom.Point, i, j, n int) geom.Point {
	delta := pi.Sub(pj)
	d := delta.Len()
	var dir geom.Point
	if d < 1e-9 {
		lo, hi, sign := i, j, 1.0
		if lo > hi {
			lo, hi, sign = j, i, -1.0
		}
		a := goldenAngle * float64(lo*n+hi)
		dir = geom.Point{X: math.Cos(a), Y: math.Sin(a)}.Scale(sign)
	} else {
		dir = delta.Scale(1 / d)
	}
	d = math.Max(d, minDistance)
	return dir.Scale(s.params.Repulsion / (d * d))
}

package pipeline

import (
	"context"
	"errors"

	gerrors "github.com/matzehuels/gmplayout/pkg/errors"
	"github.com/matzehuels/gmplayout/pkg/facility"
	"github.com/matzehuels/gmplayout/pkg/geom"
	"github.com/matzehuels/gmplayout/pkg/placement"
	"github.com/matzehuels/gmplayout/pkg/simulate"
)

// position places every room. Rooms the caller already positioned seed
// the run. The canvas is widened by [WidenFactor] at most once: when a room
// does not fit at all, when incremental placement runs out of candidates,
// or when the simulation leaves overlaps.
func (r *Runner) position(ctx context.Context, g *generation) error {
	req := g.req
	padding := r.SimParams.Canvas.Padding
	if padding <= 0 {
		padding = simulate.DefaultPadding
	}
	canvas := geom.Canvas{Width: req.Width, Height: req.Height, Padding: padding}

	if big := oversized(g.layout.Rooms, canvas); big != nil {
		canvas = canvas.Widen(WidenFactor)
		g.sim.Widened = true
		if room := oversized(g.layout.Rooms, canvas); room != nil {
			return gerrors.New(gerrors.ErrCodeUnsatisfiable, "room %s (%gx%g) does not fit on a %gx%g canvas",
				room.ID, room.Size.W, room.Size.H, canvas.Width, canvas.Height)
		}
		g.warn("room %s did not fit; canvas widened to %gx%g", big.ID, canvas.Width, canvas.Height)
	}

	var err error
	if req.Style == StyleIncremental {
		canvas, err = r.placeIncremental(ctx, g, canvas)
	} else {
		canvas, err = r.runSimulation(ctx, g, canvas)
	}
	if err != nil {
		return err
	}
	g.canvas = canvas
	if g.sim.Overlaps > 0 {
		g.warn("%d room pairs still overlap; layout accepted with overlaps", g.sim.Overlaps)
	}
	return nil
}

func (r *Runner) runSimulation(ctx context.Context, g *generation, canvas geom.Canvas) (geom.Canvas, error) {
	l := g.layout
	style, err := simulate.ParseStyle(g.req.Style)
	if err != nil {
		return canvas, gerrors.Wrap(gerrors.ErrCodeInvalidStyle, err, "style")
	}
	initial := l.Positions()

	run := func(c geom.Canvas) (simulate.Result, error) {
		p := r.SimParams
		p.Canvas = c
		p.Seed = g.req.Seed
		return simulate.New(p).Simulate(ctx, l.Rooms, l.Relationships, initial, style)
	}

	res, err := run(canvas)
	if err != nil {
		return canvas, err
	}
	if res.Overlaps > 0 && !g.sim.Widened {
		g.warn("%d room pairs overlapped on a %gx%g canvas; widened by 25%% and retried", res.Overlaps, canvas.Width, canvas.Height)
		canvas = canvas.Widen(WidenFactor)
		g.sim.Widened = true
		if res, err = run(canvas); err != nil {
			return canvas, err
		}
	}

	l.ApplyPositions(res.Positions)
	g.sim.Iterations = res.Iterations
	g.sim.Converged = res.Converged
	g.sim.Overlaps = res.Overlaps
	return canvas, nil
}

func (r *Runner) placeIncremental(ctx context.Context, g *generation, canvas geom.Canvas) (geom.Canvas, error) {
	l := g.layout
	run := func(c geom.Canvas) ([]placement.Placement, error) {
		p := r.PlaceParams
		p.Canvas = c
		work := make([]*facility.Room, len(l.Rooms))
		for i, room := range l.Rooms {
			work[i] = room.Clone()
		}
		placed, err := placement.NewPlacer(p).PlaceAll(ctx, work, l.Relationships)
		if err != nil {
			return nil, err
		}
		for i, room := range work {
			l.Rooms[i].Position = room.Position
		}
		return placed, nil
	}

	placed, err := run(canvas)
	if errors.Is(err, placement.ErrNoCandidates) && !g.sim.Widened {
		g.warn("%v; canvas widened by 25%% and retried", err)
		canvas = canvas.Widen(WidenFactor)
		g.sim.Widened = true
		placed, err = run(canvas)
	}
	if errors.Is(err, placement.ErrNoCandidates) {
		return canvas, gerrors.Wrap(gerrors.ErrCodeUnsatisfiable, err, "cannot place every room")
	}
	if err != nil {
		return canvas, err
	}

	g.sim.Iterations = len(placed)
	g.sim.Converged = true
	g.sim.Overlaps = simulate.CountOverlaps(l.Rooms, l.Positions(), r.PlaceParams.Clearance)
	return canvas, nil
}

// oversized returns the first room whose footprint cannot fit inside the
// padded canvas.
func oversized(rooms []*facility.Room, c geom.Canvas) *facility.Room {
	for _, room := range rooms {
		if room.Size.W > c.Width-2*c.Padding || room.Size.H > c.Height-2*c.Padding {
			return room
		}
	}
	return nil
}

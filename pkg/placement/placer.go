package placement

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/gmplayout/pkg/facility"
	"github.com/matzehuels/gmplayout/pkg/geom"
)

// Placement is the outcome of placing one room.
type Placement struct {
	RoomID     string     `json:"room_id"`
	Position   geom.Point `json:"position"`
	Score      Breakdown  `json:"score"`
	Candidates int        `json:"candidates"`
	// Scored is false when the room was the first one and went straight to
	// the canvas centre.
	Scored bool `json:"scored"`
}

// Placer places rooms one at a time using a Generator and a Scorer.
type Placer struct {
	gen    *Generator
	scorer *Scorer
}

// NewPlacer creates a placer sharing one set of parameters between its
// generator and scorer.
func NewPlacer(p Params) *Placer {
	p = p.withDefaults()
	return &Placer{gen: NewGenerator(p), scorer: NewScorer(p)}
}

// Params returns the placer's effective parameters.
func (pl *Placer) Params() Params { return pl.scorer.params }

// Place picks the best position for room among the generated candidates.
// room itself is not modified.
//
// Candidates are scored concurrently once there are enough of them; each
// goroutine writes only its own result slot. Ties keep the earliest
// candidate, so the result is deterministic.
func (pl *Placer) Place(ctx context.Context, room *facility.Room, others []*facility.Room, rels []facility.Relationship) (Placement, error) {
	v := newView(room, others, rels)
	cands, err := pl.gen.generate(v)
	if err != nil {
		return Placement{}, err
	}
	if len(v.peers) == 0 {
		return Placement{RoomID: room.ID, Position: cands[0], Candidates: 1}, nil
	}

	scores := make([]Breakdown, len(cands))
	if len(cands) < pl.scorer.params.ParallelScore {
		for i, c := range cands {
			scores[i] = pl.scorer.evaluate(c, v)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(runtime.GOMAXPROCS(0))
		for i, c := range cands {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				scores[i] = pl.scorer.evaluate(c, v)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return Placement{}, err
		}
	}

	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i].Total > scores[best].Total {
			best = i
		}
	}
	return Placement{
		RoomID:     room.ID,
		Position:   cands[best],
		Score:      scores[best],
		Candidates: len(cands),
		Scored:     true,
	}, nil
}

// PlaceAll places every unplaced room of rooms in order, updating each
// room's position as it goes. Rooms that already have a position stay put.
// The first failure aborts and names the room.
func (pl *Placer) PlaceAll(ctx context.Context, rooms []*facility.Room, rels []facility.Relationship) ([]Placement, error) {
	var out []Placement
	for _, r := range rooms {
		if r.Placed() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return out, err
		}
		p, err := pl.Place(ctx, r, rooms, rels)
		if err != nil {
			return out, fmt.Errorf("place %s: %w", r.ID, err)
		}
		r.SetPosition(p.Position)
		out = append(out, p)
	}
	return out, nil
}

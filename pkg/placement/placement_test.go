package placement

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/matzehuels/gmplayout/pkg/facility"
	"github.com/matzehuels/gmplayout/pkg/geom"
)

func room(id string, cat facility.Category, class facility.CleanroomClass) *facility.Room {
	return &facility.Room{ID: id, Name: id, Category: cat, Class: class, Size: geom.Size{W: 100, H: 100}}
}

func placedRoom(id string, cat facility.Category, x, y float64) *facility.Room {
	r := room(id, cat, facility.ClassNone)
	r.SetPosition(geom.Point{X: x, Y: y})
	return r
}

func TestScoreAdjacencyMonotonic(t *testing.T) {
	s := NewScorer(DefaultParams())
	a := placedRoom("a", facility.CategoryWarehouse, 400, 400)
	b := room("b", facility.CategoryProduction, facility.ClassNone)
	rels := []facility.Relationship{{Type: facility.AdjacentTo, Source: "b", Target: "a", Priority: 5}}
	others := []*facility.Room{a}

	tests := []struct {
		x       float64
		wantAdj float64
	}{
		{550, 1},
		{625, 0.5},
		{700, 0},
	}
	prev := math.Inf(1)
	for _, tt := range tests {
		bd := s.Breakdown(geom.Point{X: tt.x, Y: 400}, b, others, rels)
		if math.Abs(bd.Adjacency-tt.wantAdj) > 1e-9 {
			t.Errorf("x=%v: Adjacency = %v, want %v", tt.x, bd.Adjacency, tt.wantAdj)
		}
		if bd.Total >= prev {
			t.Errorf("x=%v: Total = %v, want below %v", tt.x, bd.Total, prev)
		}
		if bd.Total < 0 || bd.Total > 1 {
			t.Errorf("x=%v: Total = %v out of [0,1]", tt.x, bd.Total)
		}
		prev = bd.Total
	}
}

func TestScoreOverlap(t *testing.T) {
	s := NewScorer(DefaultParams())
	a := placedRoom("a", facility.CategoryWarehouse, 400, 400)
	b := room("b", facility.CategoryWarehouse, facility.ClassNone)

	if got := s.Breakdown(geom.Point{X: 420, Y: 400}, b, []*facility.Room{a}, nil).Overlap; got != 0 {
		t.Errorf("overlapping Overlap = %v, want 0", got)
	}
	// 105 apart leaves a 5 unit gap, below the 10 unit clearance.
	if got := s.Breakdown(geom.Point{X: 505, Y: 400}, b, []*facility.Room{a}, nil).Overlap; got != 0 {
		t.Errorf("within clearance Overlap = %v, want 0", got)
	}
	if got := s.Breakdown(geom.Point{X: 600, Y: 400}, b, []*facility.Room{a}, nil).Overlap; got != 1 {
		t.Errorf("separated Overlap = %v, want 1", got)
	}
}

func TestScoreNoRelationships(t *testing.T) {
	s := NewScorer(DefaultParams())
	b := room("b", facility.CategoryProduction, facility.ClassNone)
	bd := s.Breakdown(geom.Point{X: 600, Y: 400}, b, nil, nil)
	want := Breakdown{Overlap: 1, Adjacency: 1, Similarity: 0.5, Flow: 1, Zone: 1}
	want.Total = (WeightOverlap + WeightAdjacency + 0.5*WeightSimilarity + WeightFlow + WeightZone) / objectiveCount
	if math.Abs(bd.Total-want.Total) > 1e-9 || bd.Similarity != want.Similarity {
		t.Errorf("Breakdown = %+v, want %+v", bd, want)
	}
}

func TestScoreFlowPrefersStraightPath(t *testing.T) {
	s := NewScorer(DefaultParams())
	up := placedRoom("up", facility.CategoryProduction, 200, 400)
	down := placedRoom("down", facility.CategoryProduction, 800, 400)
	mid := room("mid", facility.CategoryProduction, facility.ClassNone)
	rels := []facility.Relationship{
		{Type: facility.MaterialFlow, Source: "up", Target: "mid"},
		{Type: facility.MaterialFlow, Source: "mid", Target: "down"},
	}
	others := []*facility.Room{up, down}

	onPath := s.Breakdown(geom.Point{X: 500, Y: 400}, mid, others, rels).Flow
	offPath := s.Breakdown(geom.Point{X: 500, Y: 700}, mid, others, rels).Flow
	if math.Abs(onPath-1) > 1e-9 {
		t.Errorf("on-path Flow = %v, want 1", onPath)
	}
	if offPath >= onPath {
		t.Errorf("off-path Flow = %v, want below %v", offPath, onPath)
	}
}

func TestScoreZoneCohesion(t *testing.T) {
	s := NewScorer(DefaultParams())
	b1 := room("b1", facility.CategoryProduction, facility.ClassB)
	b1.SetPosition(geom.Point{X: 300, Y: 300})
	b := room("b", facility.CategoryProduction, facility.ClassB)

	near := s.Breakdown(geom.Point{X: 460, Y: 300}, b, []*facility.Room{b1}, nil).Zone
	far := s.Breakdown(geom.Point{X: 1000, Y: 700}, b, []*facility.Room{b1}, nil).Zone
	if near <= far {
		t.Errorf("Zone near = %v, far = %v; want near > far", near, far)
	}
}

func TestGenerateIsolatedRoom(t *testing.T) {
	g := NewGenerator(DefaultParams())
	r := room("only", facility.CategoryProduction, facility.ClassNone)

	got, err := g.Generate(r, nil, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := geom.Point{X: 600, Y: 400}
	if len(got) != 1 || got[0] != want {
		t.Errorf("Generate = %v, want [%v]", got, want)
	}
}

func TestGenerateCandidatesValid(t *testing.T) {
	p := DefaultParams()
	g := NewGenerator(p)
	a := placedRoom("a", facility.CategoryProduction, 600, 400)
	c := placedRoom("c", facility.CategoryWarehouse, 300, 200)
	b := room("b", facility.CategoryProduction, facility.ClassNone)
	rels := []facility.Relationship{{Type: facility.MaterialFlow, Source: "a", Target: "b", Priority: 2}}

	got, err := g.Generate(b, []*facility.Room{a, c}, rels)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("no candidates")
	}
	seen := make(map[geom.Point]bool)
	bounds := p.Canvas.Bounds(b.Size)
	for _, pt := range got {
		if seen[pt] {
			t.Errorf("duplicate candidate %v", pt)
		}
		seen[pt] = true
		if math.Mod(pt.X, p.GridSize) != 0 || math.Mod(pt.Y, p.GridSize) != 0 {
			t.Errorf("candidate %v is off grid", pt)
		}
		if !bounds.Contains(pt) {
			t.Errorf("candidate %v outside %v", pt, bounds)
		}
		for _, o := range []*facility.Room{a, c} {
			if b.BoundsAt(pt).Intersects(o.Bounds(), p.Clearance) {
				t.Errorf("candidate %v collides with %s", pt, o.ID)
			}
		}
	}
	// The first ring sits around the anchor, starting east.
	if got[0] != (geom.Point{X: 760, Y: 400}) {
		t.Errorf("first candidate = %v, want east of anchor", got[0])
	}
}

func TestGenerateNoCandidates(t *testing.T) {
	p := DefaultParams()
	p.Canvas = geom.Canvas{Width: 200, Height: 200}
	g := NewGenerator(p)

	a := &facility.Room{ID: "a", Size: geom.Size{W: 150, H: 150}}
	a.SetPosition(geom.Point{X: 100, Y: 100})
	b := &facility.Room{ID: "b", Size: geom.Size{W: 150, H: 150}}

	_, err := g.Generate(b, []*facility.Room{a}, nil)
	if !errors.Is(err, ErrNoCandidates) {
		t.Errorf("err = %v, want ErrNoCandidates", err)
	}
}

func TestPlaceFirstRoomUnscored(t *testing.T) {
	pl := NewPlacer(DefaultParams())
	r := room("first", facility.CategoryProduction, facility.ClassD)

	got, err := pl.Place(context.Background(), r, []*facility.Room{r}, nil)
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if got.Scored {
		t.Error("first room should not be scored")
	}
	if got.Position != (geom.Point{X: 600, Y: 400}) {
		t.Errorf("Position = %v, want canvas centre", got.Position)
	}
	if r.Placed() {
		t.Error("Place must not modify the room")
	}
}

func TestPlaceParallelMatchesSequential(t *testing.T) {
	a := placedRoom("a", facility.CategoryProduction, 600, 400)
	w := placedRoom("w", facility.CategoryWarehouse, 200, 200)
	b := room("b", facility.CategoryProduction, facility.ClassNone)
	rels := []facility.Relationship{
		{Type: facility.AdjacentTo, Source: "b", Target: "a"},
		{Type: facility.MaterialFlow, Source: "w", Target: "b"},
	}
	others := []*facility.Room{a, w}

	seqParams := DefaultParams()
	seqParams.ParallelScore = 1 << 20
	parParams := DefaultParams()
	parParams.ParallelScore = 1

	seq, err := NewPlacer(seqParams).Place(context.Background(), b, others, rels)
	if err != nil {
		t.Fatalf("sequential Place: %v", err)
	}
	par, err := NewPlacer(parParams).Place(context.Background(), b, others, rels)
	if err != nil {
		t.Fatalf("parallel Place: %v", err)
	}
	if seq.Position != par.Position || seq.Score != par.Score {
		t.Errorf("parallel = %+v, sequential = %+v", par, seq)
	}
	if !seq.Scored || seq.Score.Overlap != 1 {
		t.Errorf("best placement = %+v, want scored and collision free", seq)
	}
}

func TestPlaceAll(t *testing.T) {
	pl := NewPlacer(DefaultParams())
	rooms := []*facility.Room{
		room("disp", facility.CategoryProduction, facility.ClassD),
		room("gran", facility.CategoryProduction, facility.ClassD),
		room("comp", facility.CategoryProduction, facility.ClassD),
		room("pack", facility.CategoryProduction, facility.ClassNone),
		room("qc", facility.CategoryQualityControl, facility.ClassNone),
	}
	rels := []facility.Relationship{
		{Type: facility.MaterialFlow, Source: "disp", Target: "gran"},
		{Type: facility.MaterialFlow, Source: "gran", Target: "comp"},
		{Type: facility.MaterialFlow, Source: "comp", Target: "pack"},
		{Type: facility.AdjacentTo, Source: "qc", Target: "pack"},
	}

	placements, err := pl.PlaceAll(context.Background(), rooms, rels)
	if err != nil {
		t.Fatalf("PlaceAll: %v", err)
	}
	if len(placements) != len(rooms) {
		t.Fatalf("placements = %d, want %d", len(placements), len(rooms))
	}
	if placements[0].Scored {
		t.Error("first placement should be unscored")
	}
	for i, r := range rooms {
		if !r.Placed() {
			t.Fatalf("%s not placed", r.ID)
		}
		for _, o := range rooms[i+1:] {
			if r.Bounds().Intersects(o.Bounds(), DefaultClearance) {
				t.Errorf("%s and %s collide", r.ID, o.ID)
			}
		}
	}
}

func TestPlaceAllKeepsPlacedRooms(t *testing.T) {
	pl := NewPlacer(DefaultParams())
	fixed := placedRoom("fixed", facility.CategoryWarehouse, 200, 200)
	free := room("free", facility.CategoryWarehouse, facility.ClassNone)

	placements, err := pl.PlaceAll(context.Background(), []*facility.Room{fixed, free}, nil)
	if err != nil {
		t.Fatalf("PlaceAll: %v", err)
	}
	if len(placements) != 1 || placements[0].RoomID != "free" {
		t.Errorf("placements = %+v, want only free", placements)
	}
	if fixed.Center() != (geom.Point{X: 200, Y: 200}) {
		t.Errorf("fixed moved to %v", fixed.Center())
	}
}

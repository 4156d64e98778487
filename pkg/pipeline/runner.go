package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gmplayout/pkg/buildinfo"
	"github.com/matzehuels/gmplayout/pkg/cache"
	"github.com/matzehuels/gmplayout/pkg/catalog"
	"github.com/matzehuels/gmplayout/pkg/compliance"
	gerrors "github.com/matzehuels/gmplayout/pkg/errors"
	"github.com/matzehuels/gmplayout/pkg/facility"
	"github.com/matzehuels/gmplayout/pkg/interpret"
	"github.com/matzehuels/gmplayout/pkg/observability"
	"github.com/matzehuels/gmplayout/pkg/placement"
	"github.com/matzehuels/gmplayout/pkg/simulate"
)

// Runner executes generations with caching.
// Both CLI and API use it so the stage sequencing lives in one place.
//
// The Runner keeps no per-request state. Multiple goroutines can safely
// use the same Runner with different requests.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	Catalog     *catalog.Catalog
	Engine      *compliance.Engine
	Interpreter interpret.Interpreter // optional; needed for description-only requests

	SimParams   simulate.Params
	PlaceParams placement.Params
}

// NewRunner creates a runner with the embedded catalog and rulebook.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	engine, err := compliance.DefaultEngine()
	if err != nil {
		panic(err)
	}
	return &Runner{
		Cache:       c,
		Keyer:       keyer,
		Logger:      logger,
		Catalog:     catalog.MustDefault(),
		Engine:      engine,
		SimParams:   simulate.DefaultParams(),
		PlaceParams: placement.DefaultParams(),
	}
}

// Generate runs every stage for req. A cached result for the same
// normalised request is returned unless req.Refresh is set.
func (r *Runner) Generate(ctx context.Context, req Request) (*Result, error) {
	r.applyLogger(&req)
	stats := Stats{StageTimes: make(map[Stage]time.Duration, len(Stages))}

	// Stage 1: Resolve
	if err := r.stage(ctx, StageResolve, 0, &stats, func() error {
		return r.resolve(ctx, &req)
	}); err != nil {
		return nil, err
	}

	reqHash, err := requestHash(req)
	if err != nil {
		return nil, &StageError{Stage: StageResolve, Err: gerrors.Wrap(gerrors.ErrCodeInternal, err, "hash request")}
	}
	cacheKey := r.Keyer.ResultKey(reqHash, req.ResultKeyOpts(buildinfo.Version))
	if !req.Refresh {
		if res := r.cachedResult(ctx, cacheKey); res != nil {
			req.Logger.Info("result from cache", "request", reqHash[:12])
			return res, nil
		}
	}

	g := newGeneration(&req)

	// Stage 2: Assemble
	if err := r.stage(ctx, StageAssemble, 0, &stats, func() error {
		return r.assemble(g)
	}); err != nil {
		return nil, err
	}

	// Stage 3: Infer
	if err := r.stage(ctx, StageInfer, g.roomCount(), &stats, func() error {
		return r.infer(g)
	}); err != nil {
		return nil, err
	}

	// Stage 4: Simulate
	if err := r.stage(ctx, StageSimulate, g.roomCount(), &stats, func() error {
		return r.position(ctx, g)
	}); err != nil {
		return nil, err
	}
	g.explainPositioning()

	// Stage 5: Compliance
	var report *compliance.Report
	if err := r.stage(ctx, StageCompliance, g.roomCount(), &stats, func() error {
		var err error
		report, err = r.Engine.Check(ctx, g.layout, compliance.Jurisdiction(req.Jurisdiction))
		return err
	}); err != nil {
		return nil, err
	}
	g.explain("Compliance (%s): %s", report.Jurisdiction, report.Summary)

	// Stage 6: Metrics
	var metrics Metrics
	var zones []Zone
	if err := r.stage(ctx, StageMetrics, g.roomCount(), &stats, func() error {
		metrics = ComputeMetrics(g.layout, r.PlaceParams.IdealSpacing, r.Engine.MinSeparation())
		zones = ComputeZones(g.layout)
		return nil
	}); err != nil {
		return nil, err
	}

	stats.RoomCount = g.layout.RoomCount()
	stats.RelationshipCount = g.layout.RelationshipCount()
	res := &Result{
		Layout:      g.layout,
		Zones:       zones,
		Compliance:  report,
		Metrics:     metrics,
		Rationale:   g.rationale,
		Warnings:    g.warnings,
		Suggestions: suggest(report, metrics),
		Style:       req.Style,
		Canvas:      g.canvas,
		Simulation:  g.sim,
		RequestHash: reqHash,
		Stats:       stats,
	}
	if g.template != nil {
		res.Template = g.template.ID
	}
	r.storeResult(ctx, cacheKey, res)

	observability.Pipeline().OnGenerated(ctx, req.FacilityType, stats.RoomCount, report.Score)
	req.Logger.Info("generated layout",
		"rooms", stats.RoomCount,
		"relationships", stats.RelationshipCount,
		"score", report.Score,
		"warnings", len(res.Warnings))
	return res, nil
}

// stage times fn, reports it to the pipeline hooks and wraps its error.
func (r *Runner) stage(ctx context.Context, s Stage, rooms int, stats *Stats, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return &StageError{Stage: s, Err: err}
	}
	start := time.Now()
	observability.Pipeline().OnStageStart(ctx, string(s), rooms)
	err := fn()
	d := time.Since(start)
	observability.Pipeline().OnStageComplete(ctx, string(s), d, err)
	stats.StageTimes[s] = d
	if err != nil {
		return &StageError{Stage: s, Err: err}
	}
	r.Logger.Debug("stage complete", "stage", s, "rooms", rooms, "duration", d)
	return nil
}

// requestHash hashes the normalised request. Refresh does not change the
// outcome and is left out.
func requestHash(req Request) (string, error) {
	req.Refresh = false
	return cache.HashJSON(req)
}

func (r *Runner) cachedResult(ctx context.Context, key string) *Result {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "result")
		return nil
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil || res.Layout == nil {
		observability.Cache().OnCacheMiss(ctx, "result")
		return nil
	}
	observability.Cache().OnCacheHit(ctx, "result")
	res.CacheInfo.ResultHit = true

	// Every generation is a new layout. Reusing the cached id would let a
	// save overwrite a stored layout edited since.
	now := time.Now().UTC()
	res.Layout.ID = facility.NewID()
	res.Layout.CreatedAt, res.Layout.UpdatedAt = now, now
	if res.Compliance != nil {
		res.Compliance.LayoutID = res.Layout.ID
	}
	return &res
}

func (r *Runner) storeResult(ctx context.Context, key string, res *Result) {
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, cache.TTLResult); err != nil {
		r.Logger.Warn("cache write failed", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "result", len(data))
}

// =============================================================================
// Check and placement against existing layouts
// =============================================================================

// Check evaluates an existing layout for a jurisdiction.
func (r *Runner) Check(ctx context.Context, l *facility.Layout, jurisdiction string) (*compliance.Report, error) {
	report, _, err := r.CheckWithCacheInfo(ctx, l, jurisdiction)
	return report, err
}

// CheckWithCacheInfo is Check that also reports whether the report came
// from the cache.
func (r *Runner) CheckWithCacheInfo(ctx context.Context, l *facility.Layout, jurisdiction string) (*compliance.Report, bool, error) {
	if l == nil {
		return nil, false, gerrors.New(gerrors.ErrCodeInvalidInput, "layout is required")
	}
	zone, err := compliance.ParseJurisdiction(jurisdiction)
	if err != nil {
		return nil, false, gerrors.Wrap(gerrors.ErrCodeInvalidJurisdiction, err, "invalid jurisdiction %q", jurisdiction)
	}
	if err := l.Validate(); err != nil {
		return nil, false, gerrors.Wrap(gerrors.ErrCodeInvalidLayout, err, "layout %s", l.ID)
	}

	graphHash, err := cache.HashJSON(struct {
		ID            string
		Rooms         []*facility.Room
		Relationships []facility.Relationship
	}{l.ID, l.Rooms, l.Relationships})
	if err != nil {
		return nil, false, gerrors.Wrap(gerrors.ErrCodeInternal, err, "hash layout")
	}
	key := r.Keyer.CheckKey(graphHash, string(zone))
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		var report compliance.Report
		if json.Unmarshal(data, &report) == nil {
			observability.Cache().OnCacheHit(ctx, "check")
			return &report, true, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "check")

	report, err := r.Engine.Check(ctx, l, zone)
	if err != nil {
		return nil, false, err
	}
	if data, err := json.Marshal(report); err == nil {
		if r.Cache.Set(ctx, key, data, cache.TTLCheck) == nil {
			observability.Cache().OnCacheSet(ctx, "check", len(data))
		}
	}
	observability.Pipeline().OnCheck(ctx, string(zone), report.Score, report.Failed)
	r.Logger.Debug("checked layout", "layout", l.ID, "jurisdiction", zone, "score", report.Score)
	return report, false, nil
}

// PlaceRoom adds room and rels to a copy of l and places the room at its
// best scoring candidate. l itself is not modified.
func (r *Runner) PlaceRoom(ctx context.Context, l *facility.Layout, room *facility.Room, rels []facility.Relationship) (*facility.Layout, placement.Placement, error) {
	if l == nil || room == nil {
		return nil, placement.Placement{}, gerrors.New(gerrors.ErrCodeInvalidInput, "layout and room are required")
	}
	if err := gerrors.ValidateRoomID(room.ID); err != nil {
		return nil, placement.Placement{}, err
	}
	rm := room.Clone()
	rm.Position = nil
	if !r.Catalog.FillDefaults(rm) && rm.Size.IsZero() {
		return nil, placement.Placement{}, gerrors.New(gerrors.ErrCodeInvalidRoomType,
			"room %s: unknown room type %q and no size", rm.ID, rm.Type)
	}
	if !rm.Class.Valid() {
		return nil, placement.Placement{}, gerrors.New(gerrors.ErrCodeInvalidInput, "room %s: unknown cleanroom class %q", rm.ID, rm.Class)
	}

	out := l.Clone()
	if err := out.AddRoom(rm); err != nil {
		return nil, placement.Placement{}, gerrors.Wrap(gerrors.ErrCodeInvalidInput, err, "add room %s", rm.ID)
	}
	for _, rel := range rels {
		if err := out.AddRelationship(rel); err != nil {
			return nil, placement.Placement{}, gerrors.Wrap(gerrors.ErrCodeInvalidRelationship, err,
				"relationship %s %s->%s", rel.Type, rel.Source, rel.Target)
		}
	}

	p, err := placement.NewPlacer(r.PlaceParams).Place(ctx, rm, out.Rooms, out.Relationships)
	if errors.Is(err, placement.ErrNoCandidates) {
		return nil, placement.Placement{}, gerrors.Wrap(gerrors.ErrCodeUnsatisfiable, err, "place room %s", rm.ID)
	}
	if err != nil {
		return nil, placement.Placement{}, err
	}
	rm.SetPosition(p.Position)
	r.Logger.Debug("placed room", "room", rm.ID, "x", p.Position.X, "y", p.Position.Y, "candidates", p.Candidates)
	return out, p, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on the request if not already set.
func (r *Runner) applyLogger(req *Request) {
	if req.Logger == nil {
		req.Logger = r.Logger
	}
}

// Package pipeline turns a facility request into a placed, checked layout.
//
// A generation runs six synchronous stages on one room/relationship graph:
//
//  1. Resolve: interpret a free-text description (once) and validate the
//     structured constraints
//  2. Assemble: instantiate a template or synthesise rooms from room types
//  3. Infer: template relationships or the heuristic relationship set
//  4. Simulate: position every room (force-directed or incremental)
//  5. Compliance: evaluate the rulebook for the requested jurisdiction
//  6. Metrics: areas, flow distances, zone groupings and narrative
//
// A failing stage aborts the request with a [*StageError] naming it. Input
// problems that can be relaxed (unknown room types, dangling relationships,
// residual overlaps) are recorded as warnings instead.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Generate(ctx, pipeline.Request{
//	    FacilityType: "sterile",
//	    BatchSize:    80,
//	    Jurisdiction: "EU",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Compliance.Summary)
//
// Check and place against an existing layout:
//
//	report, err := runner.Check(ctx, layout, "US")
//	updated, placed, err := runner.PlaceRoom(ctx, layout, room, rels)
package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gmplayout/pkg/cache"
	"github.com/matzehuels/gmplayout/pkg/compliance"
	gerrors "github.com/matzehuels/gmplayout/pkg/errors"
	"github.com/matzehuels/gmplayout/pkg/facility"
	"github.com/matzehuels/gmplayout/pkg/geom"
	"github.com/matzehuels/gmplayout/pkg/simulate"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default canvas width.
	DefaultWidth = 1200.0

	// DefaultHeight is the default canvas height.
	DefaultHeight = 800.0

	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)

	// DefaultStyle is the default initialisation style.
	DefaultStyle = string(simulate.StyleGrid)

	// DefaultJurisdiction is checked when a request names none.
	DefaultJurisdiction = string(compliance.JurisdictionEU)

	// StyleIncremental places rooms one by one with the scorer instead of
	// running the force simulation.
	StyleIncremental = "incremental"

	// WidenFactor grows the canvas on the single retry after overlaps.
	WidenFactor = 1.25

	// MinScale and MaxScale bound the template batch-size scaling.
	MinScale = 0.75
	MaxScale = 2.0

	// MaxThroughputFactor caps how much warehouse area throughput adds.
	MaxThroughputFactor = 2.0

	// MaxRooms bounds the room count of one request.
	MaxRooms = 250
)

// Styles lists every accepted Request.Style value.
func Styles() []string {
	out := make([]string, 0, len(simulate.Styles)+1)
	for _, s := range simulate.Styles {
		out = append(out, string(s))
	}
	return append(out, StyleIncremental)
}

// =============================================================================
// Stages
// =============================================================================

// Stage names one step of a generation.
type Stage string

const (
	StageResolve    Stage = "resolve"
	StageAssemble   Stage = "assemble"
	StageInfer      Stage = "infer"
	StageSimulate   Stage = "simulate"
	StageCompliance Stage = "compliance"
	StageMetrics    Stage = "metrics"
)

// Stages lists the stages in execution order.
var Stages = []Stage{StageResolve, StageAssemble, StageInfer, StageSimulate, StageCompliance, StageMetrics}

// StageError reports which stage aborted a generation.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// =============================================================================
// Request - Generation Input
// =============================================================================

// Request describes the facility to generate. It supports JSON for the API.
//
// Either Description or at least one of FacilityType, RoomTypes and Rooms
// must be set. When only a description is given, the runner's interpreter
// fills the structured fields.
type Request struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`

	// Structured constraints
	FacilityType     string                  `json:"facility_type,omitempty"`
	RoomTypes        []string                `json:"room_types,omitempty"`
	Rooms            []*facility.Room        `json:"rooms,omitempty"`
	Relationships    []facility.Relationship `json:"relationships,omitempty"`
	BatchSize        float64                 `json:"batch_size,omitempty"`
	Throughput       float64                 `json:"throughput,omitempty"`
	CleanroomCeiling string                  `json:"cleanroom_ceiling,omitempty"`
	Jurisdiction     string                  `json:"jurisdiction,omitempty"`

	// Layout preferences
	Style  string  `json:"style,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Seed   uint64  `json:"seed,omitempty"`

	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// Structured reports whether any structured constraint is set.
func (r *Request) Structured() bool {
	return r.FacilityType != "" || len(r.RoomTypes) > 0 || len(r.Rooms) > 0
}

// ValidateAndSetDefaults checks the request and applies defaults.
// It is idempotent. Errors carry codes from pkg/errors.
func (r *Request) ValidateAndSetDefaults() error {
	if r.validated {
		return nil
	}
	if !r.Structured() {
		if strings.TrimSpace(r.Description) == "" {
			return gerrors.New(gerrors.ErrCodeInvalidInput, "facility_type, room_types, rooms or description is required")
		}
		return gerrors.New(gerrors.ErrCodeInvalidInput, "description did not resolve to a facility type or room types")
	}
	if n := len(r.RoomTypes) + len(r.Rooms); n > MaxRooms {
		return gerrors.New(gerrors.ErrCodeInvalidInput, "too many rooms: %d (max %d)", n, MaxRooms)
	}
	for _, f := range []struct {
		name string
		v    float64
	}{{"batch_size", r.BatchSize}, {"throughput", r.Throughput}, {"width", r.Width}, {"height", r.Height}} {
		if err := gerrors.ValidatePositive(f.name, f.v); err != nil {
			return err
		}
	}

	r.FacilityType = strings.ToLower(strings.TrimSpace(r.FacilityType))
	if r.Name == "" {
		r.Name = defaultName(r.FacilityType)
	}
	if err := gerrors.ValidateLayoutName(r.Name); err != nil {
		return err
	}

	if r.Style == "" {
		r.Style = DefaultStyle
	}
	r.Style = strings.ToLower(r.Style)
	if r.Style != StyleIncremental {
		if _, err := simulate.ParseStyle(r.Style); err != nil {
			return gerrors.Wrap(gerrors.ErrCodeInvalidStyle, err, "style must be one of %s", strings.Join(Styles(), ", "))
		}
	}

	zone, err := compliance.ParseJurisdiction(r.Jurisdiction)
	if err != nil {
		return gerrors.Wrap(gerrors.ErrCodeInvalidJurisdiction, err, "invalid jurisdiction %q", r.Jurisdiction)
	}
	r.Jurisdiction = string(zone)

	if r.CleanroomCeiling != "" {
		class, ok := facility.ParseClass(r.CleanroomCeiling)
		if !ok {
			return gerrors.New(gerrors.ErrCodeInvalidInput, "invalid cleanroom_ceiling %q", r.CleanroomCeiling)
		}
		r.CleanroomCeiling = string(class)
	}

	if r.Width == 0 {
		r.Width = DefaultWidth
	}
	if r.Height == 0 {
		r.Height = DefaultHeight
	}
	if r.Seed == 0 {
		r.Seed = DefaultSeed
	}
	if r.Logger == nil {
		r.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	r.validated = true
	return nil
}

// Ceiling returns the parsed cleanroom ceiling, empty when unset.
func (r *Request) Ceiling() facility.CleanroomClass {
	return facility.CleanroomClass(r.CleanroomCeiling)
}

// ResultKeyOpts returns the cache key options for the request.
func (r *Request) ResultKeyOpts(version string) cache.ResultKeyOpts {
	return cache.ResultKeyOpts{
		Style:   r.Style,
		Width:   r.Width,
		Height:  r.Height,
		Seed:    r.Seed,
		Version: version,
	}
}

func defaultName(facilityType string) string {
	if facilityType == "" {
		return "Custom facility"
	}
	return fmt.Sprintf("%s facility", facilityType)
}

// =============================================================================
// Result - Generation Output
// =============================================================================

// Result is a generated layout with everything derived from it.
type Result struct {
	Layout      *facility.Layout   `json:"layout"`
	Zones       []Zone             `json:"zones"`
	Compliance  *compliance.Report `json:"compliance"`
	Metrics     Metrics            `json:"metrics"`
	Rationale   []string           `json:"rationale"`
	Warnings    []string           `json:"warnings"`
	Suggestions []string           `json:"suggestions"`

	Template   string         `json:"template,omitempty"`
	Style      string         `json:"style"`
	Canvas     geom.Canvas    `json:"canvas"`
	Simulation SimulationInfo `json:"simulation"`

	// RequestHash identifies the normalised request.
	RequestHash string `json:"request_hash"`

	Stats     Stats     `json:"stats"`
	CacheInfo CacheInfo `json:"-"`
}

// SimulationInfo summarises the positioning run.
type SimulationInfo struct {
	Iterations int  `json:"iterations"`
	Converged  bool `json:"converged"`
	Overlaps   int  `json:"overlaps"`
	Widened    bool `json:"widened"`
}

// Stats contains execution statistics.
type Stats struct {
	RoomCount         int                     `json:"room_count"`
	RelationshipCount int                     `json:"relationship_count"`
	StageTimes        map[Stage]time.Duration `json:"stage_times"`
}

// CacheInfo tracks whether the result came from the cache.
type CacheInfo struct {
	ResultHit bool
}

// Zone groups rooms sharing a category or a cleanroom class.
type Zone struct {
	ID      string    `json:"id"`
	Kind    string    `json:"kind"`
	Name    string    `json:"name"`
	RoomIDs []string  `json:"room_ids"`
	Bounds  geom.Rect `json:"bounds"`
	Area    float64   `json:"area"`
}

// Zone kinds.
const (
	ZoneKindCategory = "category"
	ZoneKindClass    = "class"
)

// Metrics are the computed layout figures.
type Metrics struct {
	// TotalArea is the summed room footprint.
	TotalArea float64 `json:"total_area"`
	// BoundingArea is the area of the box enclosing every room.
	BoundingArea float64 `json:"bounding_area"`

	AvgMaterialFlowDistance  float64 `json:"avg_material_flow_distance"`
	AvgPersonnelFlowDistance float64 `json:"avg_personnel_flow_distance"`

	// CleanroomUtilization is the classified (A-D) share of TotalArea in
	// percent.
	CleanroomUtilization float64 `json:"cleanroom_utilization"`

	// FlowEfficiency is 1 when every flow spans no more than the ideal
	// spacing and falls toward 0 as flows stretch.
	FlowEfficiency float64 `json:"flow_efficiency"`

	// ContaminationRisk grows with PROHIBITED_NEAR pairs, more so when a pair
	// ends up closer than the minimum separation.
	ContaminationRisk float64 `json:"contamination_risk"`
}

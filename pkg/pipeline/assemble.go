package pipeline

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gmplayout/pkg/catalog"
	gerrors "github.com/matzehuels/gmplayout/pkg/errors"
	"github.com/matzehuels/gmplayout/pkg/facility"
	"github.com/matzehuels/gmplayout/pkg/geom"
	"github.com/matzehuels/gmplayout/pkg/interpret"
)

// fallbackSize is given to caller rooms that have neither a size nor a
// known room type.
var fallbackSize = geom.Size{W: 100, H: 80}

// generation is the state one request carries from stage to stage.
type generation struct {
	req      *Request
	logger   *log.Logger
	layout   *facility.Layout
	template *catalog.Template
	canvas   geom.Canvas
	sim      SimulationInfo

	rationale   []string
	warnings    []string
	suggestions []string
}

func newGeneration(req *Request) *generation {
	return &generation{req: req, logger: req.Logger}
}

func (g *generation) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	g.warnings = append(g.warnings, msg)
	g.logger.Warn(msg)
}

func (g *generation) explain(format string, args ...any) {
	g.rationale = append(g.rationale, fmt.Sprintf(format, args...))
}

func (g *generation) roomCount() int {
	if g.layout == nil {
		return 0
	}
	return g.layout.RoomCount()
}

// =============================================================================
// Resolve
// =============================================================================

// resolve interprets a description-only request and validates the result.
func (r *Runner) resolve(ctx context.Context, req *Request) error {
	if !req.Structured() && strings.TrimSpace(req.Description) != "" {
		if r.Interpreter == nil {
			return gerrors.New(gerrors.ErrCodeUnsupported, "free-text descriptions need an interpreter; set facility_type or room_types")
		}
		c, err := r.Interpreter.Interpret(ctx, req.Description)
		if err != nil {
			return gerrors.Wrap(gerrors.ErrCodeExternal, err, "interpret description")
		}
		req.Apply(c)
		req.Logger.Debug("interpreted description", "facility_type", c.FacilityType, "room_types", len(c.RoomTypes))
	}
	return req.ValidateAndSetDefaults()
}

// Apply copies interpreted constraints into fields the caller left empty.
func (r *Request) Apply(c interpret.Constraints) {
	if r.FacilityType == "" {
		r.FacilityType = c.FacilityType
	}
	if len(r.RoomTypes) == 0 {
		r.RoomTypes = slices.Clone(c.RoomTypes)
	}
	if r.BatchSize == 0 {
		r.BatchSize = c.BatchSize
	}
	if r.Throughput == 0 {
		r.Throughput = c.Throughput
	}
	if r.CleanroomCeiling == "" {
		r.CleanroomCeiling = c.CleanroomCeiling
	}
	if r.Jurisdiction == "" {
		r.Jurisdiction = c.Jurisdiction
	}
	if r.Style == "" {
		r.Style = c.Style
	}
}

// =============================================================================
// Assemble
// =============================================================================

// assemble builds the room set: template rooms, then requested room types
// the template lacks, then caller rooms.
func (r *Runner) assemble(g *generation) error {
	req := g.req
	l := facility.NewLayout(req.Name)
	g.layout = l

	if req.FacilityType != "" {
		tpl, ok := r.Catalog.TemplateForFacility(req.FacilityType)
		switch {
		case ok:
			g.template = &tpl
		case len(req.RoomTypes) == 0 && len(req.Rooms) == 0:
			return gerrors.New(gerrors.ErrCodeInvalidInput, "unknown facility type %q", req.FacilityType)
		default:
			g.warn("unknown facility type %q; rooms synthesised from the requested room types", req.FacilityType)
		}
	}

	if g.template != nil {
		for _, typeID := range g.template.Rooms {
			room, err := r.Catalog.NewRoom(typeID, typeID)
			if err != nil {
				return gerrors.Wrap(gerrors.ErrCodeInternal, err, "template %s", g.template.ID)
			}
			if err := l.AddRoom(room); err != nil {
				return gerrors.Wrap(gerrors.ErrCodeInternal, err, "template %s", g.template.ID)
			}
		}
		g.explain("Started from the %s template with %d rooms.", g.template.Name, len(g.template.Rooms))
	}

	added := 0
	for _, raw := range req.RoomTypes {
		typeID := strings.ToLower(strings.TrimSpace(raw))
		if g.template != nil && slices.Contains(g.template.Rooms, typeID) {
			continue
		}
		room, err := r.Catalog.NewRoom(typeID, uniqueID(l, typeID))
		if err != nil {
			g.warn("dropped unknown room type %q", raw)
			continue
		}
		if err := l.AddRoom(room); err != nil {
			return gerrors.Wrap(gerrors.ErrCodeInternal, err, "room type %s", typeID)
		}
		added++
	}
	if added > 0 {
		g.explain("Added %d rooms from the requested room types.", added)
	}

	for _, in := range req.Rooms {
		if in == nil {
			continue
		}
		if err := gerrors.ValidateRoomID(in.ID); err != nil {
			return err
		}
		room := in.Clone()
		if !room.Class.Valid() {
			return gerrors.New(gerrors.ErrCodeInvalidInput, "room %s: unknown cleanroom class %q", room.ID, room.Class)
		}
		if !r.Catalog.FillDefaults(room) {
			if room.Type != "" {
				g.warn("room %s: unknown room type %q", room.ID, room.Type)
			}
			if room.Size.IsZero() {
				room.Size = fallbackSize
				g.warn("room %s has no size; using %gx%g", room.ID, fallbackSize.W, fallbackSize.H)
			}
		}
		if err := l.AddRoom(room); err != nil {
			return gerrors.Wrap(gerrors.ErrCodeInvalidInput, err, "room %s", room.ID)
		}
	}

	if l.RoomCount() == 0 {
		return gerrors.New(gerrors.ErrCodeInvalidRoomType, "no known room types in the request")
	}
	r.scale(g)
	relaxCeiling(g)
	return nil
}

// uniqueID returns base, or base-2, base-3... when taken.
func uniqueID(l *facility.Layout, base string) string {
	id := base
	for n := 2; ; n++ {
		if _, taken := l.Room(id); !taken {
			return id
		}
		id = fmt.Sprintf("%s-%d", base, n)
	}
}

// scale sizes template rooms for the requested batch and throughput.
// Production and warehouse rooms grow with the square root of the batch
// ratio; throughput above the template's reference enlarges warehouses.
func (r *Runner) scale(g *generation) {
	tpl, req := g.template, g.req
	if tpl == nil {
		return
	}
	grid := r.SimParams.GridSize
	if req.BatchSize > 0 && tpl.ReferenceBatch > 0 {
		f := geom.Clamp(math.Sqrt(req.BatchSize/tpl.ReferenceBatch), MinScale, MaxScale)
		if f != 1 {
			for _, room := range g.layout.Rooms {
				if room.Category == facility.CategoryProduction || room.Category == facility.CategoryWarehouse {
					resize(room, f, grid)
				}
			}
			g.explain("Scaled production and warehouse rooms by %.2f for a %g kg batch (template reference %g kg).",
				f, req.BatchSize, tpl.ReferenceBatch)
		}
	}
	if tpl.ReferenceThroughput > 0 && req.Throughput > tpl.ReferenceThroughput {
		f := math.Min(req.Throughput/tpl.ReferenceThroughput, MaxThroughputFactor)
		for _, room := range g.layout.RoomsByCategory(facility.CategoryWarehouse) {
			resize(room, math.Sqrt(f), grid)
		}
		g.explain("Enlarged warehouse area %.2fx for a throughput of %g units/day.", f, req.Throughput)
	}
}

func resize(room *facility.Room, f, grid float64) {
	room.Size = geom.Size{
		W: math.Max(grid, geom.Snap(room.Size.W*f, grid)),
		H: math.Max(grid, geom.Snap(room.Size.H*f, grid)),
	}
}

// relaxCeiling lowers rooms stricter than the requested ceiling to it.
func relaxCeiling(g *generation) {
	ceiling := g.req.Ceiling()
	if ceiling == facility.ClassNone {
		return
	}
	var relaxed []string
	for _, room := range g.layout.Rooms {
		if room.Class != facility.ClassNone && room.Class.StricterThan(ceiling) {
			room.Class = ceiling
			relaxed = append(relaxed, room.ID)
		}
	}
	if len(relaxed) > 0 {
		g.warn("cleanroom ceiling %s: relaxed %s", ceiling, strings.Join(relaxed, ", "))
	}
}

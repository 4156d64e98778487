package compliance

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"runtime"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/gmplayout/pkg/facility"
)

var (
	// ErrUnknownJurisdiction is returned for an unsupported regulatory zone.
	ErrUnknownJurisdiction = errors.New("unknown jurisdiction")
	// ErrMissingEvaluator is returned by NewEngine when a checkable rule has
	// no registered evaluator.
	ErrMissingEvaluator = errors.New("checkable rule without evaluator")
)

// Engine evaluates a rulebook against layouts. It is immutable after
// construction and safe for concurrent use.
type Engine struct {
	book          *Rulebook
	registry      Registry
	minSeparation float64
	now           func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithMinSeparation sets the footprint gap PROHIBITED_NEAR rooms must keep.
func WithMinSeparation(d float64) Option {
	return func(e *Engine) {
		if d > 0 {
			e.minSeparation = d
		}
	}
}

// WithClock replaces the clock used for CheckedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine pairs a rulebook with evaluators. Every checkable rule must
// have an evaluator.
func NewEngine(book *Rulebook, registry Registry, opts ...Option) (*Engine, error) {
	var missing []string
	for _, r := range book.rules {
		if r.Checkable && registry[r.ID] == nil {
			missing = append(missing, r.ID)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrMissingEvaluator, missing)
	}
	e := &Engine{
		book:          book,
		registry:      maps.Clone(registry),
		minSeparation: DefaultMinSeparation,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// DefaultEngine builds an engine over the embedded rulebook and the
// built-in evaluators.
func DefaultEngine(opts ...Option) (*Engine, error) {
	book, err := DefaultRulebook()
	if err != nil {
		return nil, err
	}
	return NewEngine(book, DefaultRegistry(), opts...)
}

// Rulebook returns the engine's rulebook.
func (e *Engine) Rulebook() *Rulebook { return e.book }

// MinSeparation returns the footprint gap PROHIBITED_NEAR rooms must keep.
func (e *Engine) MinSeparation() float64 { return e.minSeparation }

// Check evaluates every checkable rule in force in zone against the layout.
// Failing rules are report content, not errors; errors are returned only for
// an unknown zone or a cancelled context.
func (e *Engine) Check(ctx context.Context, l *facility.Layout, zone Jurisdiction) (*Report, error) {
	return e.CheckRooms(ctx, l.ID, l.Rooms, l.Relationships, zone)
}

// CheckRooms is Check for a room set that is not wrapped in a Layout.
//
// Rules run concurrently; each writes only its own result slot, so results
// keep rulebook order.
func (e *Engine) CheckRooms(ctx context.Context, layoutID string, rooms []*facility.Room, rels []facility.Relationship, zone Jurisdiction) (*Report, error) {
	if !slices.Contains(Jurisdictions, zone) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownJurisdiction, zone)
	}
	g := NewGraph(rooms, rels)
	g.MinSeparation = e.minSeparation

	rules := e.book.Applicable(zone)
	results := make([]CheckResult, len(rules))

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, rule := range rules {
		eval := e.registry[rule.ID]
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}
			results[i] = result(rule, eval(g))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	rep := newReport(layoutID, zone, results)
	rep.CheckedAt = e.now()
	return rep, nil
}

func result(rule Rule, v Verdict) CheckResult {
	res := CheckResult{
		RuleID:   rule.ID,
		Citation: rule.Citation(),
		Passed:   v.Passed,
		Severity: rule.Severity,
		Message:  v.Message,
	}
	if !v.Passed {
		res.Affected = slices.Clone(v.Affected)
		res.Remediation = rule.Remediation
		res.AutoFix = rule.AutoFix
	}
	return res
}

// Package interpret turns a free-text facility description into structured
// generation constraints.
//
// The layout engine never parses prose itself. A generation request that
// carries only a description is handed to an [Interpreter] once, before any
// computation starts; the result fills the structured request fields. The
// production implementation calls an OpenAI-compatible chat completion
// endpoint ([OpenAI]); [Cached] memoises responses through pkg/cache.
package interpret

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/matzehuels/gmplayout/pkg/cache"
	"github.com/matzehuels/gmplayout/pkg/observability"
)

// ErrEmptyDescription is returned when there is nothing to interpret.
var ErrEmptyDescription = errors.New("empty description")

// Constraints are the structured fields a description resolves to. Every
// field is optional; the orchestrator validates them afterwards.
type Constraints struct {
	FacilityType     string   `json:"facility_type,omitempty"`
	RoomTypes        []string `json:"room_types,omitempty"`
	BatchSize        float64  `json:"batch_size,omitempty"`
	Throughput       float64  `json:"throughput,omitempty"`
	CleanroomCeiling string   `json:"cleanroom_ceiling,omitempty"`
	Jurisdiction     string   `json:"jurisdiction,omitempty"`
	Style            string   `json:"style,omitempty"`
}

// Empty reports whether no field is set.
func (c Constraints) Empty() bool {
	return c.FacilityType == "" && len(c.RoomTypes) == 0 && c.BatchSize == 0 &&
		c.Throughput == 0 && c.CleanroomCeiling == "" && c.Jurisdiction == "" && c.Style == ""
}

// Interpreter resolves a description into constraints.
type Interpreter interface {
	Interpret(ctx context.Context, description string) (Constraints, error)
}

// Func adapts a function to [Interpreter].
type Func func(ctx context.Context, description string) (Constraints, error)

// Interpret implements Interpreter.
func (f Func) Interpret(ctx context.Context, description string) (Constraints, error) {
	return f(ctx, description)
}

// Parse decodes a model reply into constraints. Replies wrapped in a
// markdown code fence are accepted.
func Parse(reply string) (Constraints, error) {
	s := strings.TrimSpace(reply)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	var c Constraints
	if err := json.Unmarshal([]byte(s), &c); err != nil {
		return Constraints{}, fmt.Errorf("decode constraints: %w", err)
	}
	c.FacilityType = strings.ToLower(strings.TrimSpace(c.FacilityType))
	for i, t := range c.RoomTypes {
		c.RoomTypes[i] = strings.ToLower(strings.TrimSpace(t))
	}
	return c, nil
}

// =============================================================================
// Cached
// =============================================================================

// Cached memoises another interpreter's answers.
type Cached struct {
	inner Interpreter
	cache cache.Cache
	keyer cache.Keyer
	model string
}

// NewCached wraps inner. model is part of the cache key so a model change
// invalidates earlier answers.
func NewCached(inner Interpreter, c cache.Cache, keyer cache.Keyer, model string) *Cached {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Cached{inner: inner, cache: c, keyer: keyer, model: model}
}

// Interpret implements Interpreter.
func (c *Cached) Interpret(ctx context.Context, description string) (Constraints, error) {
	key := c.keyer.InterpretKey(c.model, strings.TrimSpace(description))
	if data, hit, err := c.cache.Get(ctx, key); err == nil && hit {
		var out Constraints
		if json.Unmarshal(data, &out) == nil {
			observability.Cache().OnCacheHit(ctx, "interpret")
			return out, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "interpret")

	out, err := c.inner.Interpret(ctx, description)
	if err != nil {
		return Constraints{}, err
	}
	if data, err := json.Marshal(out); err == nil {
		if c.cache.Set(ctx, key, data, cache.TTLInterpret) == nil {
			observability.Cache().OnCacheSet(ctx, "interpret", len(data))
		}
	}
	return out, nil
}

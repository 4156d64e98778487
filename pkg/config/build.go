package config

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gmplayout/pkg/cache"
	"github.com/matzehuels/gmplayout/pkg/catalog"
	"github.com/matzehuels/gmplayout/pkg/compliance"
	gerrors "github.com/matzehuels/gmplayout/pkg/errors"
	"github.com/matzehuels/gmplayout/pkg/interpret"
	"github.com/matzehuels/gmplayout/pkg/pipeline"
	"github.com/matzehuels/gmplayout/pkg/store"
)

// =============================================================================
// Factories
// =============================================================================

// OpenCache opens the configured cache backend. noCache forces NullCache.
func (c *Config) OpenCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Cache.Backend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{URL: c.Cache.RedisURL, Prefix: c.Cache.Prefix})
		if err != nil {
			return nil, gerrors.Wrap(gerrors.ErrCodeExternal, err, "open redis cache")
		}
		return rc, nil
	default:
		dir, err := c.CacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

// OpenStore opens the configured layout store.
func (c *Config) OpenStore(ctx context.Context) (store.Store, error) {
	switch c.Store.Backend {
	case BackendMemory:
		return store.NewMemoryStore(), nil
	case BackendMongo:
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:        c.Store.MongoURI,
			Database:   c.Store.Database,
			Collection: c.Store.Collection,
		})
	default:
		return store.NewFileStore(c.Store.Dir)
	}
}

// NewRunner builds a pipeline runner over c: canvas and tuning parameters,
// optional catalog and rulebook files, and an OpenAI interpreter when an
// API key is configured.
func (c *Config) NewRunner(ch cache.Cache, logger *log.Logger) (*pipeline.Runner, error) {
	var keyer cache.Keyer
	if c.Cache.Namespace != "" {
		keyer = cache.NewScopedKeyer(nil, c.Cache.Namespace+":")
	}
	r := pipeline.NewRunner(ch, keyer, logger)

	if c.Catalog.Path != "" {
		cat, err := catalog.LoadFile(c.Catalog.Path)
		if err != nil {
			return nil, gerrors.Wrap(gerrors.ErrCodeInvalidInput, err, "load catalog")
		}
		r.Catalog = cat
	}

	book, err := compliance.DefaultRulebook()
	if c.Compliance.Rulebook != "" {
		book, err = compliance.LoadRulebookFile(c.Compliance.Rulebook)
	}
	if err != nil {
		return nil, gerrors.Wrap(gerrors.ErrCodeInvalidInput, err, "load rulebook")
	}
	engine, err := compliance.NewEngine(book, compliance.DefaultRegistry(), compliance.WithMinSeparation(c.Compliance.MinSeparation))
	if err != nil {
		return nil, gerrors.Wrap(gerrors.ErrCodeInvalidInput, err, "build compliance engine")
	}
	r.Engine = engine

	c.applySimulation(r)
	c.applyPlacement(r)

	if c.Interpreter.APIKey != "" {
		ai, err := interpret.NewOpenAI(interpret.OpenAIConfig{
			APIKey:    c.Interpreter.APIKey,
			BaseURL:   c.Interpreter.BaseURL,
			Model:     c.Interpreter.Model,
			RoomTypes: roomTypeIDs(r.Catalog),
			Logger:    r.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("interpreter: %w", err)
		}
		r.Interpreter = interpret.NewCached(ai, r.Cache, r.Keyer, ai.Model())
	}
	return r, nil
}

func (c *Config) applySimulation(r *pipeline.Runner) {
	p := &r.SimParams
	p.Canvas.Padding = c.Canvas.Padding
	if c.Placement.GridSize > 0 {
		p.GridSize = c.Placement.GridSize
	}
	if c.Placement.Clearance > 0 {
		p.Clearance = c.Placement.Clearance
	}
	if c.Simulation.Iterations > 0 {
		p.Iterations = c.Simulation.Iterations
	}
	if c.Simulation.Damping > 0 {
		p.Damping = c.Simulation.Damping
	}
	if c.Simulation.Repulsion > 0 {
		p.Repulsion = c.Simulation.Repulsion
	}
	if c.Simulation.Attraction > 0 {
		p.Attraction = c.Simulation.Attraction
	}
	if c.Simulation.MaxStep > 0 {
		p.MaxStep = c.Simulation.MaxStep
	}
	if c.Simulation.Threshold > 0 {
		p.Threshold = c.Simulation.Threshold
	}
}

func (c *Config) applyPlacement(r *pipeline.Runner) {
	p := &r.PlaceParams
	p.Canvas.Padding = c.Canvas.Padding
	if c.Placement.GridSize > 0 {
		p.GridSize = c.Placement.GridSize
	}
	if c.Placement.IdealSpacing > 0 {
		p.IdealSpacing = c.Placement.IdealSpacing
	}
	if c.Placement.Clearance > 0 {
		p.Clearance = c.Placement.Clearance
	}
}

// Request returns a generation request seeded with the configured canvas,
// style, seed and jurisdiction.
func (c *Config) Request() pipeline.Request {
	return pipeline.Request{
		Style:        c.Canvas.Style,
		Width:        c.Canvas.Width,
		Height:       c.Canvas.Height,
		Seed:         c.Canvas.Seed,
		Jurisdiction: c.Compliance.Jurisdiction,
	}
}

func roomTypeIDs(cat *catalog.Catalog) []string {
	types := cat.RoomTypes()
	ids := make([]string, len(types))
	for i, t := range types {
		ids[i] = t.ID
	}
	return ids
}

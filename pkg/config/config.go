// Package config loads gmplayout settings from a TOML file and the
// environment.
//
// Lookup order, later wins:
//  1. built-in defaults (the pipeline, simulator and placement defaults)
//  2. the config file, $XDG_CONFIG_HOME/gmplayout/config.toml by default
//  3. environment overrides: GMPLAYOUT_REDIS_URL, GMPLAYOUT_MONGO_URI,
//     GMPLAYOUT_ADDR and OPENAI_API_KEY
//
// A minimal file:
//
//	[canvas]
//	width = 1600
//	height = 1000
//
//	[compliance]
//	jurisdiction = "FDA"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/gmplayout/pkg/compliance"
	gerrors "github.com/matzehuels/gmplayout/pkg/errors"
	"github.com/matzehuels/gmplayout/pkg/pipeline"
	"github.com/matzehuels/gmplayout/pkg/placement"
	"github.com/matzehuels/gmplayout/pkg/simulate"
)

// appName is used for directories and environment prefixes.
const appName = "gmplayout"

// Environment variables that override the file.
const (
	EnvRedisURL = "GMPLAYOUT_REDIS_URL"
	EnvMongoURI = "GMPLAYOUT_MONGO_URI"
	EnvAddr     = "GMPLAYOUT_ADDR"
	EnvOpenAI   = "OPENAI_API_KEY"
)

// Backend names.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// =============================================================================
// Sections
// =============================================================================

// Config is the full configuration.
type Config struct {
	Canvas      Canvas      `toml:"canvas"`
	Simulation  Simulation  `toml:"simulation"`
	Placement   Placement   `toml:"placement"`
	Compliance  Compliance  `toml:"compliance"`
	Catalog     Catalog     `toml:"catalog"`
	Cache       Cache       `toml:"cache"`
	Store       Store       `toml:"store"`
	Server      Server      `toml:"server"`
	Interpreter Interpreter `toml:"interpreter"`
}

// Canvas holds generation defaults.
type Canvas struct {
	Width   float64 `toml:"width"`
	Height  float64 `toml:"height"`
	Padding float64 `toml:"padding"`
	Style   string  `toml:"style"`
	Seed    uint64  `toml:"seed"`
}

// Simulation tunes the force-directed simulator.
type Simulation struct {
	Iterations int     `toml:"iterations"`
	Damping    float64 `toml:"damping"`
	Repulsion  float64 `toml:"repulsion"`
	Attraction float64 `toml:"attraction"`
	MaxStep    float64 `toml:"max_step"`
	Threshold  float64 `toml:"threshold"`
}

// Placement tunes the scorer and candidate generator.
type Placement struct {
	GridSize     float64 `toml:"grid_size"`
	IdealSpacing float64 `toml:"ideal_spacing"`
	Clearance    float64 `toml:"clearance"`
}

// Compliance selects the default jurisdiction and an optional rulebook.
type Compliance struct {
	Jurisdiction  string  `toml:"jurisdiction"`
	MinSeparation float64 `toml:"min_separation"`
	Rulebook      string  `toml:"rulebook"` // path; empty uses the embedded rulebook
}

// Catalog optionally replaces the embedded room catalog.
type Catalog struct {
	Path string `toml:"path"`
}

// Cache selects the result cache backend.
type Cache struct {
	Backend  string `toml:"backend"` // none, file or redis
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	Prefix   string `toml:"prefix"`
	// Namespace scopes result, check and interpretation keys so that
	// configurations with different catalogs or rulebooks can share a cache.
	Namespace string `toml:"namespace"`
}

// Store selects the layout store backend.
type Store struct {
	Backend    string `toml:"backend"` // memory, file or mongo
	Dir        string `toml:"dir"`
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Server configures the HTTP API.
type Server struct {
	Addr           string   `toml:"addr"`
	RequestTimeout Duration `toml:"request_timeout"`
	MaxBodyBytes   int64    `toml:"max_body_bytes"`
}

// Interpreter configures the text-to-request collaborator.
type Interpreter struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

// Duration is a time.Duration written as a string ("30s") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// =============================================================================
// Defaults
// =============================================================================

// Server defaults.
const (
	DefaultAddr           = ":8080"
	DefaultRequestTimeout = 60 * time.Second
	DefaultMaxBodyBytes   = 1 << 20
)

// Default returns the built-in configuration.
func Default() *Config {
	sim := simulate.DefaultParams()
	place := placement.DefaultParams()
	return &Config{
		Canvas: Canvas{
			Width:   pipeline.DefaultWidth,
			Height:  pipeline.DefaultHeight,
			Padding: sim.Canvas.Padding,
			Style:   pipeline.DefaultStyle,
			Seed:    pipeline.DefaultSeed,
		},
		Simulation: Simulation{
			Iterations: sim.Iterations,
			Damping:    sim.Damping,
			Repulsion:  sim.Repulsion,
			Attraction: sim.Attraction,
			MaxStep:    sim.MaxStep,
			Threshold:  sim.Threshold,
		},
		Placement: Placement{
			GridSize:     place.GridSize,
			IdealSpacing: place.IdealSpacing,
			Clearance:    place.Clearance,
		},
		Compliance: Compliance{
			Jurisdiction:  pipeline.DefaultJurisdiction,
			MinSeparation: compliance.DefaultMinSeparation,
		},
		Cache: Cache{Backend: BackendFile},
		Store: Store{Backend: BackendFile},
		Server: Server{
			Addr:           DefaultAddr,
			RequestTimeout: Duration{DefaultRequestTimeout},
			MaxBodyBytes:   DefaultMaxBodyBytes,
		},
	}
}

// =============================================================================
// Loading
// =============================================================================

// Load reads path on top of the defaults and applies the environment. An
// empty path uses DefaultPath; a missing default file is not an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := cfg.decode(bytes.NewReader(data)); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode reads TOML from r on top of the defaults. The environment is not
// consulted.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(r); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	md, err := toml.NewDecoder(r).Decode(c)
	if err != nil {
		return gerrors.Wrap(gerrors.ErrCodeInvalidInput, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return gerrors.New(gerrors.ErrCodeInvalidInput, "unknown config key %q", undecoded[0].String())
	}
	return nil
}

// ApplyEnv applies environment overrides read through getenv. Setting a
// Redis URL or Mongo URI also selects that backend.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvRedisURL); v != "" {
		c.Cache.RedisURL = v
		c.Cache.Backend = BackendRedis
	}
	if v := getenv(EnvMongoURI); v != "" {
		c.Store.MongoURI = v
		c.Store.Backend = BackendMongo
	}
	if v := getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := getenv(EnvOpenAI); v != "" {
		c.Interpreter.APIKey = v
	}
}

// Validate checks value ranges and backend names.
func (c *Config) Validate() error {
	switch {
	case c.Canvas.Width <= 0 || c.Canvas.Height <= 0:
		return gerrors.New(gerrors.ErrCodeInvalidInput, "canvas width and height must be positive")
	case c.Canvas.Padding < 0 || 2*c.Canvas.Padding >= min(c.Canvas.Width, c.Canvas.Height):
		return gerrors.New(gerrors.ErrCodeInvalidInput, "canvas padding %g does not fit the canvas", c.Canvas.Padding)
	case c.Simulation.Iterations < 0:
		return gerrors.New(gerrors.ErrCodeInvalidInput, "simulation iterations must not be negative")
	case c.Simulation.Damping < 0 || c.Simulation.Damping > 1:
		return gerrors.New(gerrors.ErrCodeInvalidInput, "simulation damping must be within [0,1]")
	case c.Placement.GridSize < 0 || c.Placement.IdealSpacing < 0 || c.Placement.Clearance < 0:
		return gerrors.New(gerrors.ErrCodeInvalidInput, "placement values must not be negative")
	}
	if !validStyle(c.Canvas.Style) {
		return gerrors.New(gerrors.ErrCodeInvalidStyle, "unknown style %q", c.Canvas.Style)
	}
	if _, err := compliance.ParseJurisdiction(c.Compliance.Jurisdiction); err != nil {
		return gerrors.Wrap(gerrors.ErrCodeInvalidJurisdiction, err, "compliance.jurisdiction")
	}
	switch c.Cache.Backend {
	case BackendNone, BackendFile:
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			return gerrors.New(gerrors.ErrCodeInvalidInput, "cache backend redis needs redis_url or %s", EnvRedisURL)
		}
	default:
		return gerrors.New(gerrors.ErrCodeInvalidInput, "unknown cache backend %q", c.Cache.Backend)
	}
	switch c.Store.Backend {
	case BackendMemory, BackendFile:
	case BackendMongo:
		if c.Store.MongoURI == "" {
			return gerrors.New(gerrors.ErrCodeInvalidInput, "store backend mongo needs mongo_uri or %s", EnvMongoURI)
		}
	default:
		return gerrors.New(gerrors.ErrCodeInvalidInput, "unknown store backend %q", c.Store.Backend)
	}
	return nil
}

func validStyle(s string) bool {
	for _, v := range pipeline.Styles() {
		if v == s {
			return true
		}
	}
	return false
}

// =============================================================================
// Paths
// =============================================================================

// DefaultPath returns $XDG_CONFIG_HOME/gmplayout/config.toml
// (~/.config/gmplayout/config.toml).
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// CacheDir returns the cache directory: the configured one, else
// $XDG_CACHE_HOME/gmplayout (~/.cache/gmplayout).
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

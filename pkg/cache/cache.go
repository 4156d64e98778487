// Package cache stores generated layouts, compliance reports and
// interpreter responses between runs.
//
// Three backends implement [Cache]: [NullCache] disables caching,
// [FileCache] keeps entries on disk for the CLI, and [RedisCache] shares
// them between server replicas. Keys come from a [Keyer] so the CLI and the
// HTTP server address the same entries for the same request.
package cache

import (
	"context"
	"time"
)

// Time-to-live values per entry kind.
const (
	// TTLResult is how long a generated layout stays cached. Generation is
	// deterministic for a fixed request, so entries only age out to bound
	// disk use.
	TTLResult = 7 * 24 * time.Hour

	// TTLCheck is how long a compliance report stays cached.
	TTLCheck = 24 * time.Hour

	// TTLInterpret is how long a text interpretation stays cached.
	TTLInterpret = 30 * 24 * time.Hour
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the entry for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backend.
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// ResultKey addresses a generation result by the hash of its
	// normalised request.
	ResultKey(requestHash string, opts ResultKeyOpts) string
	// CheckKey addresses a compliance report for a layout graph.
	CheckKey(layoutHash, jurisdiction string) string
	// InterpretKey addresses an interpreter response for a description.
	InterpretKey(model, description string) string
}

// ResultKeyOpts are the generation settings that change the output for the
// same request.
type ResultKeyOpts struct {
	Style   string  `json:"style"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Seed    uint64  `json:"seed"`
	Version string  `json:"version"`
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ResultKey implements Keyer.
func (DefaultKeyer) ResultKey(requestHash string, opts ResultKeyOpts) string {
	return hashKey("result", requestHash, opts)
}

// CheckKey implements Keyer.
func (DefaultKeyer) CheckKey(layoutHash, jurisdiction string) string {
	return hashKey("check", layoutHash, jurisdiction)
}

// InterpretKey implements Keyer.
func (DefaultKeyer) InterpretKey(model, description string) string {
	return hashKey("interpret", model, description)
}

// Package observability lets the binaries attach metrics to the engine
// without the engine importing a metrics backend.
//
// Libraries emit events through the registered hooks; main registers real
// implementations at startup (see internal/metrics for Prometheus). The
// defaults are no-ops, so library code and tests never need to check for
// nil:
//
//	observability.Pipeline().OnStageStart(ctx, "simulate", len(rooms))
//	// ... run the stage ...
//	observability.Pipeline().OnStageComplete(ctx, "simulate", time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from layout generation.
type PipelineHooks interface {
	// OnStageStart fires when a generation stage begins.
	OnStageStart(ctx context.Context, stage string, rooms int)
	// OnStageComplete fires when a stage ends, with its error if any.
	OnStageComplete(ctx context.Context, stage string, duration time.Duration, err error)
	// OnGenerated fires once per successful generation.
	OnGenerated(ctx context.Context, facilityType string, rooms, complianceScore int)
	// OnCheck fires once per compliance check.
	OnCheck(ctx context.Context, jurisdiction string, score, failed int)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache lookups.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Interpreter Hooks
// =============================================================================

// InterpreterHooks receives events from the text interpretation
// collaborator.
type InterpreterHooks interface {
	OnRequest(ctx context.Context, model string)
	OnResponse(ctx context.Context, model string, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks ignores every event.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnStageStart(context.Context, string, int)                     {}
func (NoopPipelineHooks) OnStageComplete(context.Context, string, time.Duration, error) {}
func (NoopPipelineHooks) OnGenerated(context.Context, string, int, int)                 {}
func (NoopPipelineHooks) OnCheck(context.Context, string, int, int)                     {}

// NoopCacheHooks ignores every event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopInterpreterHooks ignores every event.
type NoopInterpreterHooks struct{}

func (NoopInterpreterHooks) OnRequest(context.Context, string)                        {}
func (NoopInterpreterHooks) OnResponse(context.Context, string, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	hooksMu          sync.RWMutex
	pipelineHooks    PipelineHooks    = NoopPipelineHooks{}
	cacheHooks       CacheHooks       = NoopCacheHooks{}
	interpreterHooks InterpreterHooks = NoopInterpreterHooks{}
)

// SetPipelineHooks registers pipeline hooks. Nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetInterpreterHooks registers interpreter hooks. Nil is ignored.
func SetInterpreterHooks(h InterpreterHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		interpreterHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Interpreter returns the registered interpreter hooks.
func Interpreter() InterpreterHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return interpreterHooks
}

// Reset restores the no-op hooks. Tests call it to undo registrations.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	interpreterHooks = NoopInterpreterHooks{}
}

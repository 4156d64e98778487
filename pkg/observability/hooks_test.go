package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnStageStart(ctx, "simulate", 12)
	p.OnStageComplete(ctx, "simulate", time.Second, nil)
	p.OnGenerated(ctx, "sterile", 19, 100)
	p.OnCheck(ctx, "EU", 89, 1)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "result")
	c.OnCacheMiss(ctx, "check")
	c.OnCacheSet(ctx, "result", 2048)

	i := NoopInterpreterHooks{}
	i.OnRequest(ctx, "gpt-4o-mini")
	i.OnResponse(ctx, "gpt-4o-mini", time.Second, errors.New("timeout"))
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should default to NoopPipelineHooks")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should default to NoopCacheHooks")
	}
	if _, ok := Interpreter().(NoopInterpreterHooks); !ok {
		t.Error("Interpreter() should default to NoopInterpreterHooks")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should register custom hooks")
	}
	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should register custom hooks")
	}
	customInterp := &testInterpreterHooks{}
	SetInterpreterHooks(customInterp)
	if Interpreter() != customInterp {
		t.Error("SetInterpreterHooks should register custom hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)
	SetPipelineHooks(nil)
	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}
}

type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testInterpreterHooks struct{ NoopInterpreterHooks }

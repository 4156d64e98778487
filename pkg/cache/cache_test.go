package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = %q, %v, %v; want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	if _, hit, _ := c.Get(ctx, "missing"); hit {
		t.Error("Get on empty cache should miss")
	}
	if err := c.Set(ctx, "layout", []byte(`{"rooms":[]}`), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "layout")
	if err != nil || !hit || string(data) != `{"rooms":[]}` {
		t.Errorf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "layout"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "layout"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "layout"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	if err := c.Set(ctx, "short", []byte("x"), time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry should miss")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}
	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("Get after Clear should miss")
	}
}

func TestHash(t *testing.T) {
	if Hash([]byte("hello")) != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if Hash([]byte("hello")) == Hash([]byte("world")) {
		t.Error("different inputs should hash differently")
	}
	if n := len(Hash([]byte("hello"))); n != 64 {
		t.Errorf("Hash length = %d, want 64", n)
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	r1 := k.ResultKey("req", ResultKeyOpts{Style: "grid", Width: 1200})
	r2 := k.ResultKey("req", ResultKeyOpts{Style: "linear", Width: 1200})
	if r1 == r2 {
		t.Error("different ResultKeyOpts should produce different keys")
	}
	if !strings.HasPrefix(r1, "result:") {
		t.Errorf("ResultKey = %s, want result: prefix", r1)
	}
	if k.CheckKey("h", "EU") == k.CheckKey("h", "US") {
		t.Error("CheckKey should include the jurisdiction")
	}
	if k.InterpretKey("m", "a plant") != k.InterpretKey("m", "a plant") {
		t.Error("InterpretKey should be deterministic")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(nil, "tenant:42:")
	if key := scoped.CheckKey("h", "EU"); !strings.HasPrefix(key, "tenant:42:check:") {
		t.Errorf("CheckKey = %s, want scoped prefix", key)
	}
	if key := scoped.ResultKey("h", ResultKeyOpts{}); !strings.HasPrefix(key, "tenant:42:result:") {
		t.Errorf("ResultKey = %s, want scoped prefix", key)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
	err := Retryable(ErrNetwork)
	if !IsRetryable(err) {
		t.Error("IsRetryable should be true for wrapped error")
	}
	if !errors.Is(err, ErrNetwork) {
		t.Error("wrapped error should unwrap to ErrNetwork")
	}
	if IsRetryable(ErrRateLimited) {
		t.Error("unwrapped error should not be retryable")
	}
}

func TestRetry(t *testing.T) {
	ctx := context.Background()

	calls := 0
	err := retry(ctx, 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return Retryable(ErrNetwork)
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Errorf("err = %v after %d calls, want success after 3", err, calls)
	}

	calls = 0
	err = retry(ctx, 3, time.Millisecond, func() error {
		calls++
		return ErrRateLimited
	})
	if !errors.Is(err, ErrRateLimited) || calls != 1 {
		t.Errorf("err = %v after %d calls, want immediate ErrRateLimited", err, calls)
	}

	calls = 0
	err = retry(ctx, 2, time.Millisecond, func() error {
		calls++
		return Retryable(ErrNetwork)
	})
	if !errors.Is(err, ErrNetwork) || calls != 2 {
		t.Errorf("err = %v after %d calls, want ErrNetwork after 2", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrNetwork)
	})
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestNewRedisCacheErrors(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := NewRedisCache(ctx, RedisConfig{URL: "not-a-url://"}); err == nil {
		t.Error("invalid URL should fail")
	}
	// Port 1 refuses connections on any sane test host.
	_, err := NewRedisCache(ctx, RedisConfig{Addr: "127.0.0.1:1"})
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("err = %v, want ErrNetwork", err)
	}
}

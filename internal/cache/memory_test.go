package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	t.Cleanup(func() { _ = c.Close() })
	ctx := context.Background()

	if _, err := c.Get(ctx, "missing"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get(missing) error = %v, want ErrCacheMiss", err)
	}

	if err := c.Set(ctx, "ticker", []byte(`{"indices":[]}`), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := c.Get(ctx, "ticker")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != `{"indices":[]}` {
		t.Errorf("Get() = %q", got)
	}

	if err := c.Delete(ctx, "ticker"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := c.Get(ctx, "ticker"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get(deleted) error = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	t.Cleanup(func() { _ = c.Close() })
	ctx := context.Background()

	if err := c.Set(ctx, "blip", []byte("x"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	if _, err := c.Get(ctx, "blip"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get(expired) error = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCacheCopiesValues(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	t.Cleanup(func() { _ = c.Close() })
	ctx := context.Background()

	src := []byte("original")
	_ = c.Set(ctx, "k", src, 0)
	src[0] = 'X'

	got, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "original" {
		t.Errorf("cached value mutated externally: %q", got)
	}

	got[0] = 'Y'
	again, _ := c.Get(ctx, "k")
	if string(again) != "original" {
		t.Errorf("cached value mutated via returned slice: %q", again)
	}
}

func TestMemoryCacheClosed(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	_ = c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 0); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Set() after Close error = %v, want ErrCacheClosed", err)
	}
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Get() after Close error = %v, want ErrCacheClosed", err)
	}
	// Closing twice is fine.
	if err := c.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestNewFallsBackToMemory(t *testing.T) {
	// An unreachable Redis must not prevent startup.
	c := New(Options{RedisURL: "redis://127.0.0.1:1/0", DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = c.Close() })

	if _, ok := c.(*MemoryCache); !ok {
		t.Errorf("New() with unreachable redis returned %T, want *MemoryCache", c)
	}
}

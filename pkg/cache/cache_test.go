package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestCache_TTLExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := New[int](WithClock(clock), WithTTL(60*time.Second))

	calls := 0
	fetch := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}

	ctx := context.Background()
	if v, _ := c.Get(ctx, "k", fetch); v != 1 {
		t.Fatalf("first get = %d, want 1", v)
	}

	clock.Advance(59 * time.Second)
	if v, _ := c.Get(ctx, "k", fetch); v != 1 {
		t.Fatalf("get inside window = %d, want cached 1", v)
	}

	clock.Advance(time.Second)
	if v, _ := c.Get(ctx, "k", fetch); v != 2 {
		t.Fatalf("get after window = %d, want refetched 2", v)
	}
	if calls != 2 {
		t.Fatalf("fetch calls = %d, want 2", calls)
	}
}

func TestCache_ForeverNeverExpires(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	c := New[string](WithClock(clock))

	ctx := context.Background()
	_, _ = c.Get(ctx, "schema", func(context.Context) (string, error) { return "v1", nil })
	clock.Advance(24 * 365 * time.Hour)

	got, err := c.Get(ctx, "schema", func(context.Context) (string, error) { return "v2", nil })
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "v1" {
		t.Fatalf("got %q, want v1", got)
	}
}

func TestCache_ErrorsAreNotStored(t *testing.T) {
	c := New[int]()
	ctx := context.Background()
	boom := errors.New("boom")

	if _, err := c.Get(ctx, "k", func(context.Context) (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, ok := c.Peek("k"); ok {
		t.Fatalf("failed fetch should not be cached")
	}
}

func TestCache_Invalidate(t *testing.T) {
	c := New[int]()
	ctx := context.Background()
	_, _ = c.Get(ctx, "k", func(context.Context) (int, error) { return 1, nil })
	c.Invalidate("k")
	if _, ok := c.Peek("k"); ok {
		t.Fatalf("expected key to be invalidated")
	}
}

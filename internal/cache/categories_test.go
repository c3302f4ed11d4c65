package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gatherly/gatherly/internal/model"
)

// fakeLister counts store hits so tests can verify read-through behavior.
type fakeLister struct {
	categories []model.Category
	err        error
	calls      int
}

func (f *fakeLister) ListCategories(_ context.Context) ([]model.Category, error) {
	f.calls++
	return f.categories, f.err
}

func TestCategories_ReadThrough(t *testing.T) {
	backend := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = backend.Close() })

	lister := &fakeLister{categories: []model.Category{{Name: "Concert"}, {Name: "Meetup"}}}
	c := NewCategories(backend, lister, time.Minute)
	ctx := context.Background()

	first, err := c.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(first) != 2 || first[0].Name != "Concert" {
		t.Fatalf("unexpected categories: %+v", first)
	}

	// Second read should come from cache, not the store.
	second, err := c.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(second) != 2 {
		t.Fatalf("unexpected categories: %+v", second)
	}
	if lister.calls != 1 {
		t.Errorf("store called %d times; want 1", lister.calls)
	}
}

func TestCategories_StoreError(t *testing.T) {
	backend := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = backend.Close() })

	wantErr := errors.New("connection reset")
	c := NewCategories(backend, &fakeLister{err: wantErr}, time.Minute)

	if _, err := c.List(context.Background()); !errors.Is(err, wantErr) {
		t.Errorf("List = %v; want store error", err)
	}
}

func TestCategories_Invalidate(t *testing.T) {
	backend := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = backend.Close() })

	lister := &fakeLister{categories: []model.Category{{Name: "Party"}}}
	c := NewCategories(backend, lister, time.Minute)
	ctx := context.Background()

	_, _ = c.List(ctx)
	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate error: %v", err)
	}
	_, _ = c.List(ctx)

	if lister.calls != 2 {
		t.Errorf("store called %d times after invalidation; want 2", lister.calls)
	}
}

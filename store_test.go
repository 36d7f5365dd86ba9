package docbind

import (
	"context"
	"errors"
	"testing"
)

// mapCache is a minimal in-process Cache for store tests
type mapCache struct {
	docs map[string]Params
}

func newMapCache() *mapCache {
	return &mapCache{docs: make(map[string]Params)}
}

func (c *mapCache) Get(ctx context.Context, index, id string) (Params, bool) {
	doc, ok := c.docs[index+"/"+id]
	return doc, ok
}

func (c *mapCache) Set(ctx context.Context, index, id string, doc Params) {
	c.docs[index+"/"+id] = doc
}

func (c *mapCache) Invalidate(ctx context.Context, index, id string) {
	delete(c.docs, index+"/"+id)
}

func TestStore_GetServedFromCache(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{getResp: Params{"id": "1", "title": "x"}}
	cache := newMapCache()
	metrics := NewInMemoryMetrics()
	store := NewStoreWithObservability(backend, &NoOpLogger{}, metrics).WithCache(cache)

	// Cold read goes to the backend and warms the cache
	if _, err := store.GetDocument(ctx, "/items", "1", false); err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if len(backend.getCalls) != 1 {
		t.Fatalf("Expected 1 backend call, got %d", len(backend.getCalls))
	}

	// Warm read never touches the backend
	if _, err := store.GetDocument(ctx, "/items", "1", false); err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if len(backend.getCalls) != 1 {
		t.Errorf("Expected cached read, backend saw %d calls", len(backend.getCalls))
	}

	if metrics.Counters[MetricCacheHits] != 1 || metrics.Counters[MetricCacheMisses] != 1 {
		t.Errorf("Expected 1 hit and 1 miss, got hits=%d misses=%d",
			metrics.Counters[MetricCacheHits], metrics.Counters[MetricCacheMisses])
	}
}

func TestStore_VolatileBypassesCache(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{getResp: Params{"id": "1", "title": "fresh"}}
	cache := newMapCache()
	cache.Set(ctx, "/items", "1", Params{"id": "1", "title": "stale"})
	store := NewStore(backend).WithCache(cache)

	doc, err := store.GetDocument(ctx, "/items", "1", true)
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if doc["title"] != "fresh" {
		t.Errorf("Volatile read must bypass the cache, got %v", doc)
	}
	if !backend.getCalls[0].volatile {
		t.Error("Expected volatile forwarded to the backend")
	}
}

func TestStore_PutRefreshesCache(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{putResp: Params{"id": "1", "title": "new"}}
	cache := newMapCache()
	store := NewStore(backend).WithCache(cache)

	if _, err := store.PutDocument(ctx, "/items", Params{"title": "new"}, "1", nil); err != nil {
		t.Fatalf("PutDocument failed: %v", err)
	}

	doc, ok := cache.Get(ctx, "/items", "1")
	if !ok || doc["title"] != "new" {
		t.Errorf("Expected write-through cache refresh, got %v (ok=%v)", doc, ok)
	}
}

func TestStore_DeleteInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{}
	cache := newMapCache()
	cache.Set(ctx, "/items", "1", Params{"id": "1"})
	store := NewStore(backend).WithCache(cache)

	if err := store.DeleteDocument(ctx, "/items", "1"); err != nil {
		t.Fatalf("DeleteDocument failed: %v", err)
	}
	if _, ok := cache.Get(ctx, "/items", "1"); ok {
		t.Error("Expected cache entry invalidated on delete")
	}
}

func TestStore_SchemaRetryWithoutSchema(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{putErrs: []error{ErrSchemaMissing, nil}}
	store := NewStore(backend)

	// No schema supplied: the schema-missing failure propagates
	_, err := store.PutDocument(ctx, "/items", Params{"title": "x"}, "", nil)
	if !IsSchemaMissing(err) {
		t.Fatalf("Expected ErrSchemaMissing, got %v", err)
	}
	if len(backend.putCalls) != 1 {
		t.Errorf("Expected no retry without a schema, got %d calls", len(backend.putCalls))
	}
}

func TestStore_RetriesAtMostOnce(t *testing.T) {
	ctx := context.Background()
	// The retry itself fails schema-missing: no third attempt
	backend := &fakeBackend{putErrs: []error{ErrSchemaMissing, ErrSchemaMissing}}
	store := NewStore(backend)

	_, err := store.PutDocument(ctx, "/items", Params{"title": "x"}, "", &Schema{})
	if !IsSchemaMissing(err) {
		t.Fatalf("Expected ErrSchemaMissing, got %v", err)
	}
	if len(backend.putCalls) != 2 {
		t.Errorf("Expected exactly 2 attempts, got %d", len(backend.putCalls))
	}
}

func TestStore_Metrics(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{
		putResp:    Params{"id": "1"},
		searchResp: &SearchResponse{Hits: []Params{{"id": "1"}}},
	}
	metrics := NewInMemoryMetrics()
	store := NewStoreWithObservability(backend, &NoOpLogger{}, metrics)

	store.PutDocument(ctx, "/items", Params{"title": "x"}, "1", nil)
	store.SearchIndex(ctx, "/items", SearchRequest{})
	store.DeleteDocument(ctx, "/items", "1")

	for _, name := range []string{MetricPutSuccess, MetricSearchSuccess, MetricDeleteSuccess} {
		if metrics.Counters[name] != 1 {
			t.Errorf("Expected counter %s=1, got %d", name, metrics.Counters[name])
		}
	}
	if len(metrics.Timings[MetricPutDuration]) != 1 {
		t.Error("Expected put duration recorded")
	}
	if len(metrics.Histograms[MetricSearchResults]) != 1 {
		t.Error("Expected search result count recorded")
	}
}

func TestStore_ErrorMetrics(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{getErr: ErrNotFound, searchErr: errors.New("boom")}
	metrics := NewInMemoryMetrics()
	store := NewStoreWithObservability(backend, &NoOpLogger{}, metrics)

	store.GetDocument(ctx, "/items", "1", true)
	store.SearchIndex(ctx, "/items", SearchRequest{})

	if metrics.Counters[MetricGetError] != 1 || metrics.Counters[MetricSearchError] != 1 {
		t.Errorf("Expected error counters incremented, got %v", metrics.Counters)
	}
}

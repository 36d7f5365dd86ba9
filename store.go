package docbind

import (
	"context"
	"time"
)

// Store provides document operations on top of a Backend, with
// logging, metrics, an optional read-through cache, and the one-shot
// schema-provisioning retry on writes. It is the single place remote
// calls go through; Managers and Models delegate here.
type Store struct {
	backend Backend
	cache   Cache
	logger  Logger
	metrics Metrics
}

// NewStore creates a new store with no-op logger, metrics and cache
func NewStore(backend Backend) *Store {
	return &Store{
		backend: backend,
		cache:   &NoOpCache{},
		logger:  &NoOpLogger{},
		metrics: &NoOpMetrics{},
	}
}

// NewStoreWithLogger creates a new store with a custom logger
func NewStoreWithLogger(backend Backend, logger Logger) *Store {
	return &Store{
		backend: backend,
		cache:   &NoOpCache{},
		logger:  logger,
		metrics: &NoOpMetrics{},
	}
}

// NewStoreWithObservability creates a new store with logging and metrics
func NewStoreWithObservability(backend Backend, logger Logger, metrics Metrics) *Store {
	return &Store{
		backend: backend,
		cache:   &NoOpCache{},
		logger:  logger,
		metrics: metrics,
	}
}

// SetLogger updates the logger for this store
func (s *Store) SetLogger(logger Logger) {
	s.logger = logger
}

// SetMetrics updates the metrics collector for this store
func (s *Store) SetMetrics(metrics Metrics) {
	s.metrics = metrics
}

// WithCache sets the document cache for this store
func (s *Store) WithCache(cache Cache) *Store {
	s.cache = cache
	return s
}

// Bind returns a Manager for the given model definition. Custom
// managers embed the returned *Manager.
func (s *Store) Bind(def *Definition) *Manager {
	return NewManager(s, def)
}

// PutDocument upserts a document at an index path. An empty id asks
// the server to assign one. When the write fails because the index has
// no schema and a schema is supplied, the write is retried exactly once
// with the schema attached under SchemaKey; any other failure
// propagates unchanged.
func (s *Store) PutDocument(ctx context.Context, index string, body Params, id string, schema *Schema) (Params, error) {
	start := time.Now()
	data, err := s.backend.Put(ctx, index, body, id)
	if IsSchemaMissing(err) && schema != nil {
		s.logger.Debug("provisioning index schema", "index", index)
		s.metrics.Increment(MetricSchemaProvision)
		retry := cloneParams(body)
		retry[SchemaKey] = schema
		data, err = s.backend.Put(ctx, index, retry, id)
	}
	s.metrics.Timing(MetricPutDuration, time.Since(start))

	if err != nil {
		s.metrics.Increment(MetricPutError)
		s.logger.Error("put failed", "index", index, "id", id, "error", err)
		return nil, err
	}
	s.metrics.Increment(MetricPutSuccess)

	// Write-through: the response is the freshest view of the document
	if storedID, ok := data["id"].(string); ok && storedID != "" {
		s.cache.Set(ctx, index, storedID, data)
	}
	return data, nil
}

// GetDocument fetches a document by id. Non-volatile reads consult the
// cache first; volatile reads bypass it and are forwarded verbatim to
// the backend, which bypasses the server-side cache too.
func (s *Store) GetDocument(ctx context.Context, index, id string, volatile bool) (Params, error) {
	if !volatile {
		if doc, ok := s.cache.Get(ctx, index, id); ok {
			s.metrics.Increment(MetricCacheHits)
			return doc, nil
		}
		s.metrics.Increment(MetricCacheMisses)
	}

	start := time.Now()
	data, err := s.backend.Get(ctx, index, id, volatile)
	s.metrics.Timing(MetricGetDuration, time.Since(start))

	if err != nil {
		s.metrics.Increment(MetricGetError)
		return nil, err
	}
	s.metrics.Increment(MetricGetSuccess)

	s.cache.Set(ctx, index, id, data)
	return data, nil
}

// SearchIndex runs a search against an index path
func (s *Store) SearchIndex(ctx context.Context, index string, req SearchRequest) (*SearchResponse, error) {
	start := time.Now()
	resp, err := s.backend.Search(ctx, index, req)
	s.metrics.Timing(MetricSearchDuration, time.Since(start))

	if err != nil {
		s.metrics.Increment(MetricSearchError)
		s.logger.Error("search failed", "index", index, "query", req.Query, "error", err)
		return nil, err
	}
	s.metrics.Increment(MetricSearchSuccess)
	s.metrics.Histogram(MetricSearchResults, float64(len(resp.Hits)))
	return resp, nil
}

// DeleteDocument removes a document by id
func (s *Store) DeleteDocument(ctx context.Context, index, id string) error {
	start := time.Now()
	err := s.backend.Delete(ctx, index, id)
	s.metrics.Timing(MetricDeleteDuration, time.Since(start))

	if err != nil {
		s.metrics.Increment(MetricDeleteError)
		return err
	}
	s.metrics.Increment(MetricDeleteSuccess)

	s.cache.Invalidate(ctx, index, id)
	return nil
}

// Backend returns the underlying backend (for advanced use cases)
func (s *Store) Backend() Backend {
	return s.backend
}

// Ping checks backend health
func (s *Store) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

// Close releases resources held by the store and backend
func (s *Store) Close() error {
	return s.backend.Close()
}

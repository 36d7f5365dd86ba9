package docbind

import (
	"context"
	"encoding/json"
	"time"
)

// Backend defines the interface to the remote Index Service.
// This allows docbind to work with the HTTP service, the in-memory
// development backend, or any compatible implementation.
type Backend interface {
	// Put upserts a document into an index path. An empty id asks the
	// server to assign one. The returned data is the server's view of
	// the stored document. Fails with ErrSchemaMissing when the target
	// index has no schema yet.
	Put(ctx context.Context, index string, body Params, id string) (Params, error)

	// Get fetches a document by id. volatile bypasses server-side
	// caching for freshness.
	Get(ctx context.Context, index, id string, volatile bool) (Params, error)

	// Search runs a query against an index path
	Search(ctx context.Context, index string, req SearchRequest) (*SearchResponse, error)

	// Delete removes a document by id
	Delete(ctx context.Context, index, id string) error

	// Health check
	Ping(ctx context.Context) error

	// Resource cleanup
	Close() error
}

// SearchRequest carries the search parameters forwarded to the backend.
// Zero values mean "not set" and are omitted from the wire request.
type SearchRequest struct {
	Query        string // query string, "" matches all documents
	Limit        int    // maximum number of hits to return
	Offset       int    // hits to skip, for pagination
	Sort         string // sort expression accepted by the service
	CheckAtLeast int    // minimum documents to check for count estimation
}

// SearchResponse is the backend's view of one search result page.
// Total is the service's estimate of all matches and may exceed the
// number of hits actually returned.
type SearchResponse struct {
	Hits         []Params
	Count        int
	Total        int
	Aggregations json.RawMessage // nil when the response carries none
}

// BackendConfig holds configuration for the HTTP backend
type BackendConfig struct {
	Endpoint  string        // base URL of the Index Service
	AuthToken string        // optional bearer token
	Timeout   time.Duration // per-request timeout, 0 = DefaultHTTPTimeout
}

// Validate checks if the BackendConfig is valid
func (c BackendConfig) Validate() error {
	if c.Endpoint == "" {
		return WithContext(ErrInvalidConfig, map[string]interface{}{
			"field":  "Endpoint",
			"reason": "index service endpoint is required",
		})
	}
	if c.Timeout < 0 {
		return WithContext(ErrInvalidConfig, map[string]interface{}{
			"field":  "Timeout",
			"value":  c.Timeout,
			"reason": "must be non-negative",
		})
	}
	return nil
}

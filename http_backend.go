package docbind

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultHTTPTimeout is the per-request timeout used when BackendConfig
// does not set one.
const DefaultHTTPTimeout = 30 * time.Second

// HTTPBackend talks to the Index Service over HTTP:
//
//	PUT    {index}/{id}      upsert with explicit id
//	POST   {index}           upsert with server-assigned id
//	GET    {index}/{id}      fetch (?volatile=true bypasses the server cache)
//	POST   {index}/:search   search
//	DELETE {index}/{id}      remove
//
// A 412 response means the target index has no schema yet and is
// surfaced as ErrSchemaMissing so the Store can retry with the model's
// schema attached.
type HTTPBackend struct {
	baseURL   string
	authToken string
	client    *http.Client
	logger    Logger
}

// NewHTTPBackend creates an HTTP backend from config
func NewHTTPBackend(config BackendConfig) (*HTTPBackend, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultHTTPTimeout
	}

	return &HTTPBackend{
		baseURL:   strings.TrimRight(config.Endpoint, "/"),
		authToken: config.AuthToken,
		client:    &http.Client{Timeout: timeout},
		logger:    &NoOpLogger{},
	}, nil
}

// SetLogger updates the logger for this backend
func (b *HTTPBackend) SetLogger(logger Logger) {
	b.logger = logger
}

// Put upserts a document. An empty id POSTs to the index path so the
// server assigns one; otherwise the document is PUT at {index}/{id}.
func (b *HTTPBackend) Put(ctx context.Context, index string, body Params, id string) (Params, error) {
	method := http.MethodPost
	path := index
	if id != "" {
		method = http.MethodPut
		path = index + "/" + url.PathEscape(id)
	}

	data, err := b.do(ctx, method, path, nil, body)
	if err != nil {
		return nil, err
	}

	var stored Params
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, WithContext(ErrRequestFailed, map[string]interface{}{
			"path":   path,
			"reason": "invalid response body: " + err.Error(),
		})
	}
	return stored, nil
}

// Get fetches a document by id
func (b *HTTPBackend) Get(ctx context.Context, index, id string, volatile bool) (Params, error) {
	var query url.Values
	if volatile {
		query = url.Values{"volatile": {"true"}}
	}

	path := index + "/" + url.PathEscape(id)
	data, err := b.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}

	var doc Params
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, WithContext(ErrRequestFailed, map[string]interface{}{
			"path":   path,
			"reason": "invalid response body: " + err.Error(),
		})
	}
	return doc, nil
}

// Search runs a query against an index path
func (b *HTTPBackend) Search(ctx context.Context, index string, req SearchRequest) (*SearchResponse, error) {
	body := make(map[string]interface{})
	if req.Query != "" {
		body["_query"] = req.Query
	}
	if req.Limit > 0 {
		body["_limit"] = req.Limit
	}
	if req.Offset > 0 {
		body["_offset"] = req.Offset
	}
	if req.Sort != "" {
		body["_sort"] = req.Sort
	}
	if req.CheckAtLeast > 0 {
		body["_check_at_least"] = req.CheckAtLeast
	}

	path := index + "/:search"
	data, err := b.do(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Hits         []Params        `json:"hits"`
		Count        int             `json:"count"`
		Total        int             `json:"total"`
		Aggregations json.RawMessage `json:"aggregations"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, WithContext(ErrRequestFailed, map[string]interface{}{
			"path":   path,
			"reason": "invalid response body: " + err.Error(),
		})
	}

	return &SearchResponse{
		Hits:         raw.Hits,
		Count:        raw.Count,
		Total:        raw.Total,
		Aggregations: raw.Aggregations,
	}, nil
}

// Delete removes a document by id
func (b *HTTPBackend) Delete(ctx context.Context, index, id string) error {
	path := index + "/" + url.PathEscape(id)
	_, err := b.do(ctx, http.MethodDelete, path, nil, nil)
	return err
}

// Ping checks service health
func (b *HTTPBackend) Ping(ctx context.Context) error {
	_, err := b.do(ctx, http.MethodGet, "/", nil, nil)
	return err
}

// Close releases resources held by the backend
func (b *HTTPBackend) Close() error {
	b.client.CloseIdleConnections()
	return nil
}

// do performs one request and maps failure statuses onto the error
// taxonomy. It never retries; the single schema-provisioning retry is
// the Store's responsibility.
func (b *HTTPBackend) do(ctx context.Context, method, path string, query url.Values, body interface{}) ([]byte, error) {
	target := b.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if b.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+b.authToken)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, WithContext(ErrBackendUnavailable, map[string]interface{}{
			"method": method,
			"path":   path,
			"reason": err.Error(),
		})
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, WithContext(ErrRequestFailed, map[string]interface{}{
			"method": method,
			"path":   path,
			"reason": "failed to read response: " + err.Error(),
		})
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, nil
	}

	b.logger.Debug("index service request failed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
	)
	return nil, statusError(resp.StatusCode, method, path)
}

// statusError maps an HTTP failure status onto the sentinel taxonomy
func statusError(status int, method, path string) error {
	var base error
	switch {
	case status == http.StatusNotFound:
		base = ErrNotFound
	case status == http.StatusPreconditionFailed:
		base = ErrSchemaMissing
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		base = ErrUnauthorized
	case status >= 500:
		base = ErrBackendUnavailable
	default:
		base = ErrRequestFailed
	}
	return WithContext(base, map[string]interface{}{
		"status": status,
		"method": method,
		"path":   path,
	})
}

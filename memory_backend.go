package docbind

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemoryBackend is an in-process Backend for development and tests.
// It enforces the same schema-provisioning handshake as the real
// service: the first write to an unknown index fails with
// ErrSchemaMissing unless the body carries a schema under SchemaKey.
//
// Search support is deliberately naive: a "field:value" query matches
// one field exactly, anything else matches case-insensitively against
// any string field value. Sort accepts a single field name, optionally
// prefixed with "-" for descending.
type MemoryBackend struct {
	mu      sync.RWMutex
	indexes map[string]*memoryIndex
}

type memoryIndex struct {
	schema interface{}
	docs   map[string]Params
	order  []string // insertion order, for stable search results
}

// NewMemoryBackend creates an empty in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		indexes: make(map[string]*memoryIndex),
	}
}

// Put upserts a document, provisioning the index schema on first use
func (b *MemoryBackend) Put(ctx context.Context, index string, body Params, id string) (Params, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexes[index]
	if idx == nil {
		schema, ok := body[SchemaKey]
		if !ok {
			return nil, WithContext(ErrSchemaMissing, map[string]interface{}{
				"index": index,
			})
		}
		idx = &memoryIndex{
			schema: schema,
			docs:   make(map[string]Params),
		}
		b.indexes[index] = idx
	}

	if id == "" {
		id = NewID()
	}

	stored := make(Params, len(body)+1)
	for k, v := range body {
		if k == SchemaKey {
			continue
		}
		stored[k] = v
	}
	stored["id"] = id

	if _, exists := idx.docs[id]; !exists {
		idx.order = append(idx.order, id)
	}
	idx.docs[id] = stored

	return cloneParams(stored), nil
}

// Get fetches a document by id. volatile is accepted for interface
// parity; there is no cache to bypass here.
func (b *MemoryBackend) Get(ctx context.Context, index, id string, volatile bool) (Params, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	idx := b.indexes[index]
	if idx == nil {
		return nil, WithContext(ErrNotFound, map[string]interface{}{
			"index": index,
			"id":    id,
		})
	}
	doc, ok := idx.docs[id]
	if !ok {
		return nil, WithContext(ErrNotFound, map[string]interface{}{
			"index": index,
			"id":    id,
		})
	}
	return cloneParams(doc), nil
}

// Search runs a naive substring query against an index
func (b *MemoryBackend) Search(ctx context.Context, index string, req SearchRequest) (*SearchResponse, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	idx := b.indexes[index]
	if idx == nil {
		return &SearchResponse{Hits: []Params{}}, nil
	}

	var matches []Params
	for _, id := range idx.order {
		doc := idx.docs[id]
		if req.Query == "" || matchesQuery(doc, req.Query) {
			matches = append(matches, doc)
		}
	}

	if req.Sort != "" {
		sortDocs(matches, req.Sort)
	}

	total := len(matches)

	if req.Offset > 0 {
		if req.Offset >= len(matches) {
			matches = nil
		} else {
			matches = matches[req.Offset:]
		}
	}
	if req.Limit > 0 && req.Limit < len(matches) {
		matches = matches[:req.Limit]
	}

	hits := make([]Params, len(matches))
	for i, doc := range matches {
		hits[i] = cloneParams(doc)
	}

	return &SearchResponse{
		Hits:  hits,
		Count: len(hits),
		Total: total,
	}, nil
}

// Delete removes a document by id
func (b *MemoryBackend) Delete(ctx context.Context, index, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexes[index]
	if idx == nil {
		return WithContext(ErrNotFound, map[string]interface{}{
			"index": index,
			"id":    id,
		})
	}
	if _, ok := idx.docs[id]; !ok {
		return WithContext(ErrNotFound, map[string]interface{}{
			"index": index,
			"id":    id,
		})
	}
	delete(idx.docs, id)
	for i, existing := range idx.order {
		if existing == id {
			idx.order = append(idx.order[:i], idx.order[i+1:]...)
			break
		}
	}
	return nil
}

// Ping always succeeds
func (b *MemoryBackend) Ping(ctx context.Context) error {
	return nil
}

// Close releases nothing
func (b *MemoryBackend) Close() error {
	return nil
}

// HasSchema reports whether an index has been provisioned. Useful in
// tests asserting the schema handshake.
func (b *MemoryBackend) HasSchema(index string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	idx := b.indexes[index]
	return idx != nil && idx.schema != nil
}

func matchesQuery(doc Params, query string) bool {
	// "field:value" terms (value optionally quoted) match one field
	// exactly; anything else is a substring scan of string fields.
	if i := strings.IndexByte(query, ':'); i > 0 && !strings.ContainsAny(query[:i], ` "`) {
		field := query[:i]
		value := strings.Trim(query[i+1:], `"`)
		v, ok := doc[field]
		return ok && strings.EqualFold(fmt.Sprintf("%v", v), value)
	}

	needle := strings.ToLower(query)
	for _, v := range doc {
		if s, ok := v.(string); ok && strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}

func sortDocs(docs []Params, expr string) {
	field := expr
	descending := false
	if strings.HasPrefix(expr, "-") {
		field = expr[1:]
		descending = true
	}
	sort.SliceStable(docs, func(i, j int) bool {
		a := fmt.Sprintf("%v", docs[i][field])
		b := fmt.Sprintf("%v", docs[j][field])
		if descending {
			return a > b
		}
		return a < b
	})
}

func cloneParams(p Params) Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

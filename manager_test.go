package docbind

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

// fakeBackend records every call and replays scripted responses.
// Shared by the manager, model and store tests.
type fakeBackend struct {
	putCalls []putCall
	putErrs  []error // consumed one per Put call, nil = success
	putResp  Params

	getCalls []getCall
	getResp  Params
	getErr   error

	searchCalls []searchCall
	searchResp  *SearchResponse
	searchErr   error

	deleteCalls []deleteCall
	deleteErr   error
}

type putCall struct {
	index string
	body  Params
	id    string
}

type getCall struct {
	index    string
	id       string
	volatile bool
}

type searchCall struct {
	index string
	req   SearchRequest
}

type deleteCall struct {
	index string
	id    string
}

func (f *fakeBackend) Put(ctx context.Context, index string, body Params, id string) (Params, error) {
	f.putCalls = append(f.putCalls, putCall{index: index, body: cloneParams(body), id: id})
	if len(f.putErrs) > 0 {
		err := f.putErrs[0]
		f.putErrs = f.putErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return cloneParams(f.putResp), nil
}

func (f *fakeBackend) Get(ctx context.Context, index, id string, volatile bool) (Params, error) {
	f.getCalls = append(f.getCalls, getCall{index: index, id: id, volatile: volatile})
	if f.getErr != nil {
		return nil, f.getErr
	}
	return cloneParams(f.getResp), nil
}

func (f *fakeBackend) Search(ctx context.Context, index string, req SearchRequest) (*SearchResponse, error) {
	f.searchCalls = append(f.searchCalls, searchCall{index: index, req: req})
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searchResp, nil
}

func (f *fakeBackend) Delete(ctx context.Context, index, id string) error {
	f.deleteCalls = append(f.deleteCalls, deleteCall{index: index, id: id})
	return f.deleteErr
}

func (f *fakeBackend) Ping(ctx context.Context) error { return nil }
func (f *fakeBackend) Close() error                   { return nil }

var productSchema = &Schema{
	Fields: map[string]Field{
		"name":  {Type: "text", Required: true},
		"price": {Type: "float"},
	},
}

func productManager(t *testing.T, backend Backend) *Manager {
	t.Helper()
	def := MustDefine("Product", "/products/{category}", productSchema)
	return NewStore(backend).Bind(def)
}

func TestManager_Create_ResolvesIndexAndSplitsFields(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{putResp: Params{"id": "srv-1", "name": "Phone"}}
	products := productManager(t, backend)

	model, err := products.Create(ctx, "", Params{"category": "electronics", "name": "Phone"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if len(backend.putCalls) != 1 {
		t.Fatalf("Expected 1 put call, got %d", len(backend.putCalls))
	}
	call := backend.putCalls[0]
	if call.index != "/products/electronics" {
		t.Errorf("Expected index /products/electronics, got %s", call.index)
	}
	if call.id != "" {
		t.Errorf("Expected empty id (server-assigned), got %q", call.id)
	}
	if _, ok := call.body["category"]; ok {
		t.Error("Template parameter leaked into document body")
	}
	if call.body["name"] != "Phone" {
		t.Errorf("Expected body name=Phone, got %v", call.body["name"])
	}

	// Instance data matches the server response verbatim
	if model.ID() != "srv-1" {
		t.Errorf("Expected id srv-1, got %s", model.ID())
	}
	if got := model.IndexParams()["category"]; got != "electronics" {
		t.Errorf("Expected stashed category=electronics, got %v", got)
	}
}

func TestManager_Create_ExplicitID(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{putResp: Params{"id": "42", "name": "Phone"}}
	products := productManager(t, backend)

	_, err := products.Create(ctx, "42", Params{"category": "electronics", "name": "Phone"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if backend.putCalls[0].id != "42" {
		t.Errorf("Expected explicit id forwarded, got %q", backend.putCalls[0].id)
	}
}

func TestManager_Create_SchemaRetry(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{
		putErrs: []error{ErrSchemaMissing, nil},
		putResp: Params{"id": "srv-1", "name": "Phone"},
	}
	products := productManager(t, backend)

	model, err := products.Create(ctx, "", Params{"category": "electronics", "name": "Phone"})
	if err != nil {
		t.Fatalf("Create failed after schema retry: %v", err)
	}

	if len(backend.putCalls) != 2 {
		t.Fatalf("Expected 2 put calls, got %d", len(backend.putCalls))
	}
	if _, ok := backend.putCalls[0].body[SchemaKey]; ok {
		t.Error("First write must not carry the schema")
	}
	retry := backend.putCalls[1]
	if retry.body[SchemaKey] != productSchema {
		t.Errorf("Retry must carry the model's exact schema, got %v", retry.body[SchemaKey])
	}
	if retry.index != "/products/electronics" || retry.body["name"] != "Phone" {
		t.Errorf("Retry must repeat the original write, got %+v", retry)
	}
	if model.ID() != "srv-1" {
		t.Errorf("Expected instance built from retry response, got id %s", model.ID())
	}
}

func TestManager_Create_OtherErrorPropagates(t *testing.T) {
	ctx := context.Background()
	boom := WithContext(ErrBackendUnavailable, map[string]interface{}{"status": 503})
	backend := &fakeBackend{putErrs: []error{boom}}
	products := productManager(t, backend)

	_, err := products.Create(ctx, "", Params{"category": "electronics", "name": "Phone"})
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("Expected backend error to propagate, got %v", err)
	}
	if len(backend.putCalls) != 1 {
		t.Errorf("Expected no retry on non-schema errors, got %d calls", len(backend.putCalls))
	}
}

func TestManager_Create_MissingTemplateParam(t *testing.T) {
	ctx := context.Background()
	products := productManager(t, &fakeBackend{})

	_, err := products.Create(ctx, "", Params{"name": "Phone"})
	if !errors.Is(err, ErrUnresolvedParam) {
		t.Fatalf("Expected ErrUnresolvedParam, got %v", err)
	}
}

func TestManager_Get_ForwardsVolatile(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{getResp: Params{"id": "42", "name": "Phone"}}
	products := productManager(t, backend)

	model, err := products.GetVolatile(ctx, "42", Params{"category": "electronics"})
	if err != nil {
		t.Fatalf("GetVolatile failed: %v", err)
	}

	call := backend.getCalls[0]
	if !call.volatile {
		t.Error("Expected volatile=true forwarded to backend")
	}
	if call.index != "/products/electronics" || call.id != "42" {
		t.Errorf("Unexpected get call: %+v", call)
	}
	if model.ID() != "42" {
		t.Errorf("Expected id 42, got %s", model.ID())
	}
}

func TestManager_Get_NotFoundPropagates(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{getErr: ErrNotFound}
	products := productManager(t, backend)

	_, err := products.Get(ctx, "missing", Params{"category": "electronics"})
	if !IsNotFound(err) {
		t.Fatalf("Expected not-found to propagate, got %v", err)
	}
}

func TestManager_Filter_WrapsHits(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{
		searchResp: &SearchResponse{
			Hits: []Params{
				{"id": "1", "name": "Phone"},
				{"id": "2", "name": "Tablet"},
			},
			Count: 2,
			Total: 240,
		},
	}
	products := productManager(t, backend)

	res, err := products.Filter(ctx, SearchRequest{Query: "name:*", Limit: 2, Sort: "-price", CheckAtLeast: 500},
		Params{"category": "electronics"})
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}

	call := backend.searchCalls[0]
	if call.index != "/products/electronics" {
		t.Errorf("Expected index /products/electronics, got %s", call.index)
	}
	if call.req.Query != "name:*" || call.req.Limit != 2 || call.req.Sort != "-price" || call.req.CheckAtLeast != 500 {
		t.Errorf("Search parameters not forwarded verbatim: %+v", call.req)
	}

	if res.Count != len(res.Models) {
		t.Errorf("Count must equal the number of wrapped hits: count=%d models=%d", res.Count, len(res.Models))
	}
	if res.Total != 240 {
		t.Errorf("Expected estimated total 240, got %d", res.Total)
	}
	if res.Aggregations != nil {
		t.Error("Expected nil aggregations when the server returned none")
	}

	// Every hit carries the index params used for the search
	for _, m := range res.Models {
		index, err := m.Index()
		if err != nil {
			t.Fatalf("Index resolution on hit failed: %v", err)
		}
		if index != "/products/electronics" {
			t.Errorf("Expected hit bound to /products/electronics, got %s", index)
		}
	}
}

func TestManager_Filter_Aggregations(t *testing.T) {
	ctx := context.Background()
	aggs := json.RawMessage(`{"price_stats":{"avg":42.5,"max":99}}`)
	backend := &fakeBackend{
		searchResp: &SearchResponse{Hits: []Params{}, Aggregations: aggs},
	}
	products := productManager(t, backend)

	res, err := products.Filter(ctx, SearchRequest{}, Params{"category": "electronics"})
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	if !res.HasAggregations() {
		t.Fatal("Expected aggregations payload")
	}
	if got := res.Aggregation("price_stats.avg").Float(); got != 42.5 {
		t.Errorf("Expected price_stats.avg=42.5, got %v", got)
	}
}

func TestManager_Filter_NoPlaceholderTemplate(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{searchResp: &SearchResponse{Hits: []Params{{"id": "1"}}}}
	items := NewStore(backend).Bind(MustDefine("Item", "/items", nil))

	res, err := items.Filter(ctx, SearchRequest{}, nil)
	if err != nil {
		t.Fatalf("Filter on placeholder-free template failed: %v", err)
	}
	if backend.searchCalls[0].index != "/items" {
		t.Errorf("Expected constant index /items, got %s", backend.searchCalls[0].index)
	}
	if res.Count != 1 {
		t.Errorf("Expected 1 hit, got %d", res.Count)
	}
}

func TestManager_New_UnsavedInstance(t *testing.T) {
	products := productManager(t, &fakeBackend{})

	model := products.New(Params{"name": "Phone"}, Params{"category": "electronics"})
	if model.ID() != "" {
		t.Errorf("Unsaved instance must have no id, got %q", model.ID())
	}
	index, err := model.Index()
	if err != nil {
		t.Fatalf("Index failed: %v", err)
	}
	if index != "/products/electronics" {
		t.Errorf("Expected /products/electronics, got %s", index)
	}
}

// Specialized managers embed *Manager and add their own operations.
type publishedProducts struct {
	*Manager
}

func (p *publishedProducts) Published(ctx context.Context, category string) (*SearchResults, error) {
	return p.Filter(ctx, SearchRequest{Query: "published:true"}, Params{"category": category})
}

func TestManager_Embedding(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{searchResp: &SearchResponse{Hits: []Params{{"id": "1"}}}}
	custom := &publishedProducts{Manager: productManager(t, backend)}

	res, err := custom.Published(ctx, "books")
	if err != nil {
		t.Fatalf("Published failed: %v", err)
	}
	if backend.searchCalls[0].req.Query != "published:true" {
		t.Errorf("Expected custom query, got %q", backend.searchCalls[0].req.Query)
	}
	if res.Count != 1 {
		t.Errorf("Expected 1 hit, got %d", res.Count)
	}
}

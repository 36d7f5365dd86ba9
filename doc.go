// Package docbind maps model definitions onto a remote document-index
// service. Application code declares a model kind (a name, an
// index-path template and a static field schema) and gets back
// class-level create/get/filter operations plus per-instance
// save/delete, with index paths resolved from the template and schemas
// provisioned lazily on first write.
//
// # Quick Start
//
//	backend, _ := docbind.NewHTTPBackend(docbind.BackendConfig{
//	    Endpoint: "http://search.internal:8880",
//	})
//	store := docbind.NewStore(backend)
//
//	products := store.Bind(docbind.MustDefine("Product", "/products/{category}", &docbind.Schema{
//	    Fields: map[string]docbind.Field{
//	        "name":  {Type: "text", Required: true},
//	        "price": {Type: "float"},
//	    },
//	}))
//
//	// Create: "category" is a template parameter, everything else is
//	// document data. The write lands at /products/electronics.
//	phone, _ := products.Create(ctx, "", docbind.Params{
//	    "category": "electronics",
//	    "name":     "Phone",
//	    "price":    399.0,
//	})
//
//	// Instance-level persistence
//	phone.SetField("price", 349.0)
//	_ = phone.Save(ctx)
//
//	// Search
//	res, _ := products.Filter(ctx, docbind.SearchRequest{Query: "phone", Limit: 10},
//	    docbind.Params{"category": "electronics"})
//
// # Core Concepts
//
// Backend: the Index Service contract (put/get/search/delete on
// hierarchical index paths). HTTPBackend talks to the real service;
// MemoryBackend is an in-process stand-in for development and tests.
//
// Store: wraps a Backend with logging, metrics, an optional
// read-through document cache, and the schema-provisioning retry. All
// remote calls go through it.
//
// Definition and Manager: a Definition is one model kind; binding it to
// a Store yields its Manager, which resolves index paths from the
// template and performs the class-level operations.
//
// Model and Document: a Model is one document instance. Field data
// lives in an explicit Document container; names with the reserved "_"
// prefix are kept out of document data and never serialized.
//
// # Schema Provisioning
//
// The service rejects writes to an index that has no schema yet with a
// distinguishable precondition failure. When that happens, the write is
// retried exactly once with the definition's schema attached under the
// reserved "_schema" key. Any other failure propagates to the caller
// unchanged; nothing is ever retried more than once.
//
// # Volatile Reads
//
// Get serves from the client-side cache (when one is configured with
// Store.WithCache) and allows the service to answer from its own cache.
// GetVolatile bypasses both for read-your-writes freshness.
//
// # Observability
//
// Logger and Metrics are small interfaces with no-op defaults. ZapLogger
// adapts go.uber.org/zap; PrometheusMetrics adapts
// github.com/prometheus/client_golang. RedisCache implements the
// document cache on Redis.
package docbind

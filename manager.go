package docbind

import "context"

// Definition describes one model kind: its name, the index-path
// template its documents live under, and the static schema sent to the
// server when an index is written for the first time. Definitions are
// immutable after construction.
type Definition struct {
	Name     string
	Template *Template
	Schema   *Schema
}

// Define builds a model definition, parsing the index-path template.
// Binding a definition to a Store (Store.Bind) yields its Manager;
// there is no implicit registration.
func Define(name, template string, schema *Schema) (*Definition, error) {
	if name == "" {
		return nil, WithContext(ErrInvalidConfig, map[string]interface{}{
			"field":  "name",
			"reason": "model kind name is required",
		})
	}
	t, err := ParseTemplate(template)
	if err != nil {
		return nil, err
	}
	return &Definition{Name: name, Template: t, Schema: schema}, nil
}

// MustDefine is like Define but panics on error.
// Intended for package-level model definitions.
func MustDefine(name, template string, schema *Schema) *Definition {
	def, err := Define(name, template, schema)
	if err != nil {
		panic(err)
	}
	return def
}

// Manager performs the class-level operations for one model kind:
// create, get and filter. Each call resolves a concrete index path
// from the definition's template and delegates to the Store.
//
// Specialized managers embed *Manager and add their own methods.
type Manager struct {
	store *Store
	def   *Definition
}

// NewManager binds a definition to a store
func NewManager(store *Store, def *Definition) *Manager {
	return &Manager{store: store, def: def}
}

// Definition returns the model definition this manager is bound to
func (m *Manager) Definition() *Definition {
	return m.def
}

// Store returns the store this manager operates through
func (m *Manager) Store() *Store {
	return m.store
}

// New wraps raw field data in an unsaved Model instance. indexParams
// may be nil when the template has no placeholders or the data itself
// carries the placeholder fields.
func (m *Manager) New(data Params, indexParams Params) *Model {
	return newModel(m.store, m.def, data, cloneParams(indexParams))
}

// Create writes a new document and returns its Model. fields holds
// both document fields and index-template parameters; the template
// parameters are separated out, used to resolve the index path, and
// stashed on the returned instance for later Save/Delete calls. An
// empty id asks the server to assign one.
//
// A schema-missing failure is retried exactly once with the
// definition's schema attached; any other failure propagates.
func (m *Manager) Create(ctx context.Context, id string, fields Params) (*Model, error) {
	body := cloneParams(fields)
	indexParams := m.def.Template.ExtractParams(body)
	index, err := m.def.Template.Resolve(indexParams)
	if err != nil {
		return nil, err
	}

	data, err := m.store.PutDocument(ctx, index, body, id, m.def.Schema)
	if err != nil {
		return nil, err
	}
	return newModel(m.store, m.def, data, indexParams), nil
}

// Get fetches one document by id. params supplies the index-template
// parameters (e.g. the tenant for "/{tenant}/profiles").
func (m *Manager) Get(ctx context.Context, id string, params Params) (*Model, error) {
	return m.get(ctx, id, params, false)
}

// GetVolatile is Get with server-side caching bypassed for freshness.
// The client-side cache is skipped as well.
func (m *Manager) GetVolatile(ctx context.Context, id string, params Params) (*Model, error) {
	return m.get(ctx, id, params, true)
}

func (m *Manager) get(ctx context.Context, id string, params Params, volatile bool) (*Model, error) {
	indexParams := m.def.Template.ExtractParams(cloneParams(params))
	index, err := m.def.Template.Resolve(indexParams)
	if err != nil {
		return nil, err
	}

	data, err := m.store.GetDocument(ctx, index, id, volatile)
	if err != nil {
		return nil, err
	}
	return newModel(m.store, m.def, data, indexParams), nil
}

// Filter searches the resolved index and wraps every hit in a Model
// carrying the same index params. The result's Count always equals the
// number of wrapped hits; Total is the service's estimate and may be
// larger. Absent aggregations yield a nil payload, not an error.
func (m *Manager) Filter(ctx context.Context, req SearchRequest, params Params) (*SearchResults, error) {
	indexParams := m.def.Template.ExtractParams(cloneParams(params))
	index, err := m.def.Template.Resolve(indexParams)
	if err != nil {
		return nil, err
	}

	resp, err := m.store.SearchIndex(ctx, index, req)
	if err != nil {
		return nil, err
	}

	models := make([]*Model, len(resp.Hits))
	for i, hit := range resp.Hits {
		models[i] = newModel(m.store, m.def, hit, indexParams)
	}

	return &SearchResults{
		Models:       models,
		Count:        len(models),
		Total:        resp.Total,
		Aggregations: resp.Aggregations,
	}, nil
}

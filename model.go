package docbind

import (
	"context"
	"encoding/json"
	"fmt"
)

// Model is one document instance of a model kind. It holds the field
// data, the index params captured when the instance was created or
// fetched, and performs its own persistence (Save/Delete) by resolving
// the definition's template.
type Model struct {
	store       *Store
	def         *Definition
	doc         *Document
	indexParams Params
}

func newModel(store *Store, def *Definition, data Params, indexParams Params) *Model {
	if indexParams == nil {
		indexParams = make(Params)
	}
	return &Model{
		store:       store,
		def:         def,
		doc:         NewDocument(def.Name, data),
		indexParams: indexParams,
	}
}

// Kind returns the model kind name
func (m *Model) Kind() string {
	return m.def.Name
}

// Document returns the underlying field container
func (m *Model) Document() *Document {
	return m.doc
}

// Field returns the value of a document field, or a *FieldError when
// it is not set.
func (m *Model) Field(name string) (interface{}, error) {
	return m.doc.Get(name)
}

// SetField stores a document field. Reserved-prefixed names go to the
// document's meta map and are never persisted.
func (m *Model) SetField(name string, value interface{}) {
	m.doc.Set(name, value)
}

// ID returns the document's id field, or "" when the document has not
// been written yet.
func (m *Model) ID() string {
	return m.doc.ID()
}

// IndexParams returns a copy of the index params stashed on this
// instance.
func (m *Model) IndexParams() Params {
	return cloneParams(m.indexParams)
}

// Index resolves this instance's concrete index path from the union of
// current field data and the stashed index params. Index params win on
// key collision: they were separated from document fields exactly so a
// field with a placeholder's name cannot redirect the document.
func (m *Model) Index() (string, error) {
	merged := m.doc.Fields()
	for k, v := range m.indexParams {
		merged[k] = v
	}
	return m.def.Template.Resolve(merged)
}

// Save writes the current field data to the server, addressing the
// document by its id field when present (otherwise the server assigns
// one). A schema-missing failure is retried exactly once with the
// definition's schema attached. On success all field data is replaced
// with the server's response, which may carry normalized or added
// fields.
func (m *Model) Save(ctx context.Context) error {
	index, err := m.Index()
	if err != nil {
		return err
	}

	data, err := m.store.PutDocument(ctx, index, m.doc.Fields(), m.doc.ID(), m.def.Schema)
	if err != nil {
		return err
	}
	m.doc.Replace(data)
	return nil
}

// Delete removes this document from the server by its id field.
// Local state is left untouched on success.
func (m *Model) Delete(ctx context.Context) error {
	index, err := m.Index()
	if err != nil {
		return err
	}
	return m.store.DeleteDocument(ctx, index, m.doc.ID())
}

// String renders the kind name and current field data
func (m *Model) String() string {
	return m.doc.String()
}

// As decodes a model's field data into a caller-defined struct,
// eliminating manual field-by-field reads.
//
// Example:
//
//	product, err := docbind.As[Product](model)
func As[T any](m *Model) (*T, error) {
	data, err := json.Marshal(m.doc.Fields())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s fields: %w", m.Kind(), err)
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode %s into %T: %w", m.Kind(), out, err)
	}
	return &out, nil
}

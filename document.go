package docbind

import (
	"fmt"
	"sort"
	"strings"
)

// Params is a generic field-name to value mapping. It is used both for
// document bodies and for index-template parameters.
type Params map[string]interface{}

// Reserved marks implementation-private field names. Names starting
// with this prefix ("_schema", "_foreign", ...) are kept out of
// document data and are never serialized on save.
const Reserved = "_"

// Document is an explicit key-value container for one remote document.
// Field values live in a plain map behind small typed accessors instead
// of any attribute-interception machinery; names with the Reserved
// prefix are diverted to a side-channel meta map that never reaches the
// server.
type Document struct {
	kind   string
	fields Params
	meta   Params
}

// NewDocument creates a document for the given model kind, copying the
// initial field data. Reserved-prefixed keys in data go to the meta map.
func NewDocument(kind string, data Params) *Document {
	d := &Document{
		kind:   kind,
		fields: make(Params, len(data)),
		meta:   make(Params),
	}
	for k, v := range data {
		d.Set(k, v)
	}
	return d
}

// Kind returns the model kind this document belongs to
func (d *Document) Kind() string {
	return d.kind
}

// Get returns the value of a field, or a *FieldError naming the kind
// and field when it is not set.
func (d *Document) Get(name string) (interface{}, error) {
	if strings.HasPrefix(name, Reserved) {
		if v, ok := d.meta[name]; ok {
			return v, nil
		}
		return nil, &FieldError{Kind: d.kind, Field: name}
	}
	v, ok := d.fields[name]
	if !ok {
		return nil, &FieldError{Kind: d.kind, Field: name}
	}
	return v, nil
}

// Set stores a field value. Reserved-prefixed names bypass document
// data and land in the meta map, which determines what gets serialized
// on save.
func (d *Document) Set(name string, value interface{}) {
	if strings.HasPrefix(name, Reserved) {
		d.meta[name] = value
		return
	}
	d.fields[name] = value
}

// Has reports whether a non-reserved field is set
func (d *Document) Has(name string) bool {
	_, ok := d.fields[name]
	return ok
}

// GetString returns a field as a string. Non-string values are
// formatted with %v.
func (d *Document) GetString(name string) (string, error) {
	v, err := d.Get(name)
	if err != nil {
		return "", err
	}
	if s, ok := v.(string); ok {
		return s, nil
	}
	return fmt.Sprintf("%v", v), nil
}

// GetInt returns a field as an int64, converting the numeric types
// JSON decoding produces.
func (d *Document) GetInt(name string) (int64, error) {
	v, err := d.Get(name)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		return int64(n), nil
	default:
		return 0, WithContext(ErrRequestFailed, map[string]interface{}{
			"field":  name,
			"reason": fmt.Sprintf("not a number: %T", v),
		})
	}
}

// GetFloat returns a field as a float64
func (d *Document) GetFloat(name string) (float64, error) {
	v, err := d.Get(name)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, WithContext(ErrRequestFailed, map[string]interface{}{
			"field":  name,
			"reason": fmt.Sprintf("not a number: %T", v),
		})
	}
}

// GetBool returns a field as a bool
func (d *Document) GetBool(name string) (bool, error) {
	v, err := d.Get(name)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, WithContext(ErrRequestFailed, map[string]interface{}{
			"field":  name,
			"reason": fmt.Sprintf("not a bool: %T", v),
		})
	}
	return b, nil
}

// ID returns the document's "id" field, or "" when unset.
// Writes use it to address the document; creates leave it to the server.
func (d *Document) ID() string {
	if v, ok := d.fields["id"]; ok {
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprintf("%v", v)
	}
	return ""
}

// Fields returns a copy of the serializable document data. The meta
// map is excluded.
func (d *Document) Fields() Params {
	out := make(Params, len(d.fields))
	for k, v := range d.fields {
		out[k] = v
	}
	return out
}

// Replace swaps the document data wholesale. Used after a successful
// write, because the server may normalize or add fields (timestamps,
// generated ids). The meta map is untouched.
func (d *Document) Replace(data Params) {
	d.fields = make(Params, len(data))
	for k, v := range data {
		if strings.HasPrefix(k, Reserved) {
			d.meta[k] = v
			continue
		}
		d.fields[k] = v
	}
}

// Len returns the number of non-reserved fields
func (d *Document) Len() int {
	return len(d.fields)
}

// String renders the kind and field data with stable key order for
// debuggability.
func (d *Document) String() string {
	keys := make([]string, 0, len(d.fields))
	for k := range d.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(d.kind)
	b.WriteString("{")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %v", k, d.fields[k])
	}
	b.WriteString("}")
	return b.String()
}

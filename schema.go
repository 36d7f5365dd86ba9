package docbind

import "encoding/json"

// SchemaKey is the reserved body key the schema is attached under when a
// write is retried after a schema-missing failure.
const SchemaKey = "_schema"

// Field describes one field of a model's index schema, using the Index
// Service's underscore-key convention on the wire.
type Field struct {
	Type      string `json:"_type,omitempty"`
	Required  bool   `json:"_required,omitempty"`
	WriteOnly bool   `json:"_write_only,omitempty"`
	Src       string `json:"_src,omitempty"`
	Label     string `json:"_label,omitempty"`
	HelpText  string `json:"_help_text,omitempty"`
}

// Schema is the static field schema for one model kind. It is defined
// once per kind and treated as immutable; the library only ever sends
// it to the server, it never interprets it.
//
// Foreign, when set, points the index at a shared schema document
// (e.g. ".schema/Profile") instead of an inline definition; inline
// Fields are merged alongside it.
type Schema struct {
	Foreign string
	Fields  map[string]Field
}

// MarshalJSON flattens the schema into the service's wire shape:
// field names as top-level keys, plus "_foreign" when set.
func (s *Schema) MarshalJSON() ([]byte, error) {
	body := make(map[string]interface{}, len(s.Fields)+1)
	if s.Foreign != "" {
		body["_foreign"] = s.Foreign
	}
	for name, field := range s.Fields {
		body[name] = field
	}
	return json.Marshal(body)
}

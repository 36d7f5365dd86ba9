package docbind

import (
	"fmt"
	"strings"
)

// Template is an index-path template with named placeholders, e.g.
// "/products/{category}". Placeholders are resolved per operation from
// index params (and, for instance-level saves, document fields).
//
// A template with no placeholders is valid and always resolves to the
// same path.
type Template struct {
	raw      string
	segments []segment
	fields   []string
}

// segment is one literal or placeholder piece of a parsed template
type segment struct {
	text  string
	param bool
}

// ParseTemplate parses an index-path template. Literal braces can be
// escaped as "{{" and "}}".
func ParseTemplate(raw string) (*Template, error) {
	t := &Template{raw: raw}
	seen := make(map[string]bool)

	var literal strings.Builder
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '{':
			if i+1 < len(raw) && raw[i+1] == '{' {
				literal.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(raw[i+1:], '}')
			if end < 0 {
				return nil, WithContext(ErrBadTemplate, map[string]interface{}{
					"template": raw,
					"reason":   "unclosed placeholder",
				})
			}
			name := raw[i+1 : i+1+end]
			if name == "" {
				return nil, WithContext(ErrBadTemplate, map[string]interface{}{
					"template": raw,
					"reason":   "empty placeholder",
				})
			}
			if literal.Len() > 0 {
				t.segments = append(t.segments, segment{text: literal.String()})
				literal.Reset()
			}
			t.segments = append(t.segments, segment{text: name, param: true})
			if !seen[name] {
				seen[name] = true
				t.fields = append(t.fields, name)
			}
			i += end + 1
		case '}':
			if i+1 < len(raw) && raw[i+1] == '}' {
				literal.WriteByte('}')
				i++
				continue
			}
			return nil, WithContext(ErrBadTemplate, map[string]interface{}{
				"template": raw,
				"reason":   "unmatched '}'",
			})
		default:
			literal.WriteByte(raw[i])
		}
	}
	if literal.Len() > 0 {
		t.segments = append(t.segments, segment{text: literal.String()})
	}
	return t, nil
}

// MustParseTemplate is like ParseTemplate but panics on error.
// Intended for package-level model definitions.
func MustParseTemplate(raw string) *Template {
	t, err := ParseTemplate(raw)
	if err != nil {
		panic(err)
	}
	return t
}

// String returns the raw template text
func (t *Template) String() string {
	return t.raw
}

// Fields returns the placeholder names in order of first appearance
func (t *Template) Fields() []string {
	fields := make([]string, len(t.fields))
	copy(fields, t.fields)
	return fields
}

// HasField reports whether name is one of the template's placeholders
func (t *Template) HasField(name string) bool {
	for _, f := range t.fields {
		if f == name {
			return true
		}
	}
	return false
}

// Resolve formats the template into a concrete index path. Every
// placeholder must be present in params or resolution fails.
func (t *Template) Resolve(params Params) (string, error) {
	var path strings.Builder
	for _, seg := range t.segments {
		if !seg.param {
			path.WriteString(seg.text)
			continue
		}
		value, ok := params[seg.text]
		if !ok {
			return "", WithContext(ErrUnresolvedParam, map[string]interface{}{
				"template": t.raw,
				"param":    seg.text,
			})
		}
		path.WriteString(fmt.Sprintf("%v", value))
	}
	return path.String(), nil
}

// ExtractParams partitions params in place: every key that names one of
// the template's placeholders is removed from params and returned. Keys
// that are not placeholders stay untouched. The returned map is never
// nil, so a placeholder-free template behaves identically to a
// templated one.
func (t *Template) ExtractParams(params Params) Params {
	extracted := make(Params)
	for _, f := range t.fields {
		if v, ok := params[f]; ok {
			extracted[f] = v
			delete(params, f)
		}
	}
	return extracted
}

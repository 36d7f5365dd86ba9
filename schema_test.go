package docbind

import (
	"encoding/json"
	"testing"
)

func TestSchema_MarshalInlineFields(t *testing.T) {
	schema := &Schema{
		Fields: map[string]Field{
			"name": {Type: "text", Required: true, Label: "Name"},
		},
	}

	data, err := json.Marshal(schema)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var wire map[string]map[string]interface{}
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	name, ok := wire["name"]
	if !ok {
		t.Fatal("Expected field name as a top-level key")
	}
	if name["_type"] != "text" || name["_required"] != true || name["_label"] != "Name" {
		t.Errorf("Unexpected field encoding: %v", name)
	}
	if _, ok := name["_src"]; ok {
		t.Error("Empty attributes must be omitted")
	}
}

func TestSchema_MarshalForeign(t *testing.T) {
	schema := &Schema{
		Foreign: ".schema/Profile",
		Fields: map[string]Field{
			"id": {Type: "uuid", Src: "_id"},
		},
	}

	data, err := json.Marshal(schema)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var wire map[string]interface{}
	json.Unmarshal(data, &wire)

	if wire["_foreign"] != ".schema/Profile" {
		t.Errorf("Expected _foreign reference, got %v", wire["_foreign"])
	}
	if _, ok := wire["id"]; !ok {
		t.Error("Inline fields must be merged alongside _foreign")
	}
}

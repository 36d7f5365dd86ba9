package docbind

import "testing"

func TestNewID(t *testing.T) {
	id := NewID()
	if !IsValidID(id) {
		t.Errorf("NewID produced an invalid UUID: %q", id)
	}

	if NewID() == id {
		t.Error("Expected unique ids")
	}
}

func TestIsValidID(t *testing.T) {
	if IsValidID("not-a-uuid") {
		t.Error("Expected false for garbage")
	}
	if _, err := ParseID(NewID()); err != nil {
		t.Errorf("ParseID failed on a generated id: %v", err)
	}
}

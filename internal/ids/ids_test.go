package ids

import (
	"strings"
	"testing"
)

func TestNew_LengthAndCharset(t *testing.T) {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	id := New(6)
	if len(id) != 6 {
		t.Fatalf("len=%d want=6", len(id))
	}
	for _, r := range id {
		if !strings.ContainsRune(alphabet, r) {
			t.Fatalf("unexpected character %q in %s", r, id)
		}
	}
	if New(0) == "" {
		t.Fatalf("zero length should fall back to the default")
	}
}

func TestNew_Distinct(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := New(8)
		if seen[id] {
			t.Fatalf("duplicate id %s after %d draws", id, i)
		}
		seen[id] = true
	}
}

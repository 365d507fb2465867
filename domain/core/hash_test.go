package core

import (
	"testing"
)

func TestNewFingerprint_Stable(t *testing.T) {
	dataHash := NewHash([]byte("rows"))

	a := NewFingerprint(42, dataHash, map[string]string{"variant": "pooled", "chains": "4"})
	b := NewFingerprint(42, dataHash, map[string]string{"chains": "4", "variant": "pooled"})
	if a != b {
		t.Errorf("field order changed the fingerprint")
	}

	c := NewFingerprint(43, dataHash, map[string]string{"variant": "pooled", "chains": "4"})
	if a == c {
		t.Errorf("different seeds produced the same fingerprint")
	}

	d := NewFingerprint(42, dataHash, map[string]string{"variant": "unpooled", "chains": "4"})
	if a == d {
		t.Errorf("different configs produced the same fingerprint")
	}
}

func TestNewID_Unique(t *testing.T) {
	seen := map[ID]bool{}
	for i := 0; i < 100; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Fatal("empty ID")
		}
		if seen[id] {
			t.Fatalf("duplicate ID %s", id)
		}
		seen[id] = true
	}
}

package idgen

import (
	"strings"
	"testing"
)

func TestNanoID_LengthAndAlphabet(t *testing.T) {
	for _, length := range []int{8, 12, 24} {
		gen := NanoID(length)
		id := gen()
		if len(id) != length {
			t.Fatalf("NanoID(%d): got length %d", length, len(id))
		}
		for _, c := range id {
			if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'z')) {
				t.Fatalf("NanoID: unexpected character %q in %q", c, id)
			}
		}
	}
}

func TestUUIDv7_Format(t *testing.T) {
	id := UUIDv7()()
	if len(id) != 36 || strings.Count(id, "-") != 4 {
		t.Fatalf("UUIDv7: unexpected format %q", id)
	}
}

func TestPrefixed(t *testing.T) {
	id := Definition()
	if !strings.HasPrefix(id, "def_") {
		t.Fatalf("Definition id %q missing def_ prefix", id)
	}
}

func TestRun_SortsByTime(t *testing.T) {
	// Run IDs embed a UTC timestamp so report filenames sort chronologically.
	a := Run()
	b := Run()
	if strings.Compare(a[:16], b[:16]) > 0 {
		t.Fatalf("run ids not time-ordered: %q then %q", a, b)
	}
}

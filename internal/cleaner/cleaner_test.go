package cleaner

import (
	"strings"
	"testing"
)

func TestClean(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"whitespace collapse", "  123   Main  St  ", "123 Main St"},
		{"comma spacing", "123 Main St ,Austin ,TX", "123 Main St, Austin, TX"},
		{"diacritics", "123 Peña Blvd, Denver, CO", "123 Pena Blvd, Denver, CO"},
		{"po box dots", "P.O. Box 42, Portland, OR", "PO BOX 42, Portland, OR"},
		{"post office box", "Post Office Box 42", "PO BOX 42"},
		{"po box spaced", "p o box 7", "PO BOX 7"},
		{"empty", "   ", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Clean(tc.in); got != tc.want {
				t.Errorf("Clean(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("123 Main St, Austin, TX")
	b := Fingerprint("  123  main st,austin, tx ")
	if a != b {
		t.Errorf("fingerprints differ for equivalent inputs:\n%s\n%s", a, b)
	}
	if !strings.HasPrefix(a, "sha256:") {
		t.Errorf("fingerprint missing prefix: %s", a)
	}

	c := Fingerprint("124 Main St, Austin, TX")
	if a == c {
		t.Error("distinct addresses share a fingerprint")
	}
}

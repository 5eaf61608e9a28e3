package domain

import (
	"strings"
	"testing"
)

func TestIsStorageID(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{NewID(), true},
		{"temp-99", false},
		{"new-1700000000", false},
		{"", false},
		{strings.ToUpper(NewID()), false},
		{"6f1c2a9e5b4d4e3f8a7b6c5d4e3f2a1b", false},
	}
	for _, tt := range tests {
		if got := IsStorageID(tt.in); got != tt.want {
			t.Errorf("IsStorageID(%q) = %v; want %v", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeSubdocuments(t *testing.T) {
	keep := NewID()
	a := &About{
		Sections: []AboutSection{
			{ID: keep, Title: "History"},
			{ID: "temp-99", Title: "New"},
			{Title: "Blank"},
		},
		Leadership: []Leader{{ID: "new-1", Name: "N"}},
	}

	if n := SanitizeSubdocuments(a); n != 2 {
		t.Fatalf("cleared = %d; want 2", n)
	}
	if len(a.Sections) != 3 || len(a.Leadership) != 1 {
		t.Fatalf("entries must be kept: %+v", a)
	}
	if a.Sections[0].ID != keep {
		t.Fatalf("storage id changed: %q", a.Sections[0].ID)
	}
	if a.Sections[1].ID != "" || a.Sections[1].Title != "New" {
		t.Fatalf("placeholder not cleared: %+v", a.Sections[1])
	}
	if a.Leadership[0].ID != "" || a.Leadership[0].Name != "N" {
		t.Fatalf("leader placeholder not cleared: %+v", a.Leadership[0])
	}

	// Second pass is a no-op.
	if n := SanitizeSubdocuments(a); n != 0 {
		t.Fatalf("second pass cleared %d; want 0", n)
	}
	if SanitizeSubdocuments(nil) != 0 {
		t.Fatalf("nil document should be a no-op")
	}
}

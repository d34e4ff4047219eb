package sharing

import (
	"strings"
	"testing"
)

func TestNewSlug_LengthAndAlphabet(t *testing.T) {
	slug, err := NewSlug()
	if err != nil {
		t.Fatalf("expected slug generation to succeed, got %v", err)
	}
	if len(slug) != SlugLength {
		t.Fatalf("expected slug length %d, got %d", SlugLength, len(slug))
	}
	for _, ch := range slug {
		if !strings.ContainsRune(slugAlphabet, ch) {
			t.Fatalf("slug contains character %q outside the url-safe alphabet", ch)
		}
	}
}

func TestNewSlug_Distinct(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		slug, err := NewSlug()
		if err != nil {
			t.Fatalf("expected slug generation to succeed, got %v", err)
		}
		if seen[slug] {
			t.Fatalf("slug %q generated twice in 100 draws", slug)
		}
		seen[slug] = true
	}
}

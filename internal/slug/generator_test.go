package slug

import (
	"errors"
	"strings"
	"testing"
)

func TestGenerateLength(t *testing.T) {
	for _, length := range []int{5, 8, 12} {
		g := New(length)
		s, err := g.Generate()
		if err != nil {
			t.Fatalf("Generate() error: %v", err)
		}
		if len(s) != length {
			t.Errorf("Generate() length = %d, want %d", len(s), length)
		}
	}
}

func TestGenerateCharset(t *testing.T) {
	g := New(32)
	for i := 0; i < 10; i++ {
		s, err := g.Generate()
		if err != nil {
			t.Fatalf("Generate() error: %v", err)
		}
		for _, r := range s {
			if !strings.ContainsRune(defaultSymbols, r) {
				t.Fatalf("Generate() produced %q with invalid rune %q", s, r)
			}
		}
	}
}

func TestGenerateUniqueness(t *testing.T) {
	g := New(8)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		s, err := g.Generate()
		if err != nil {
			t.Fatalf("Generate() error: %v", err)
		}
		if seen[s] {
			t.Fatalf("duplicate slug %q in 100 generations", s)
		}
		seen[s] = true
	}
}

func TestGenerateUnique(t *testing.T) {
	g := New(8)

	// First two candidates collide, third is free.
	calls := 0
	s, err := g.GenerateUnique(func(string) bool {
		calls++
		return calls <= 2
	})
	if err != nil {
		t.Fatalf("GenerateUnique() error: %v", err)
	}
	if s == "" {
		t.Fatal("GenerateUnique() returned empty slug")
	}
	if calls != 3 {
		t.Errorf("expected 3 existence checks, got %d", calls)
	}
}

func TestGenerateUniqueExhausted(t *testing.T) {
	g := New(8)
	_, err := g.GenerateUnique(func(string) bool { return true })
	if !errors.Is(err, ErrExhausted) {
		t.Errorf("expected ErrExhausted, got %v", err)
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		slug string
		want bool
	}{
		{"abc12345", true},
		{"zzz", true},
		{"ab", false},
		{"ABC12345", false},
		{"abc-1234", false},
		{"", false},
		{strings.Repeat("a", 33), false},
	}

	for _, tt := range tests {
		if got := IsValid(tt.slug); got != tt.want {
			t.Errorf("IsValid(%q) = %v, want %v", tt.slug, got, tt.want)
		}
	}
}

package slug

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

// Symbols used for slug generation (lowercase letters and digits)
const defaultSymbols = "abcdefghijklmnopqrstuvwxyz0123456789"

// Bounds on accepted slug lengths. Configured generation lengths must
// stay inside them, or every generated id would fail validation.
const (
	MinLength = 3
	MaxLength = 32
)

// ErrExhausted is returned when no free slug could be found. With an
// 8-character slug over a 36-symbol alphabet this only happens when the
// id space is effectively saturated; callers should treat it as a
// server-side fault rather than retry.
var ErrExhausted = errors.New("slug space exhausted")

// Generator produces random slugs with collision detection against the
// caller's live index.
type Generator struct {
	symbols string
	length  int
}

// New creates a slug generator for slugs of the given length.
func New(length int) *Generator {
	return &Generator{
		symbols: defaultSymbols,
		length:  length,
	}
}

// Generate creates a random slug of the configured length using a
// cryptographically secure source.
func (g *Generator) Generate() (string, error) {
	result := make([]byte, g.length)
	symbolsLen := big.NewInt(int64(len(g.symbols)))

	for i := 0; i < g.length; i++ {
		n, err := rand.Int(rand.Reader, symbolsLen)
		if err != nil {
			return "", err
		}
		result[i] = g.symbols[n.Int64()]
	}

	return string(result), nil
}

// GenerateUnique generates slugs until one does not collide according to
// exists. The attempt bound is far beyond what a non-saturated index can
// reach; hitting it yields ErrExhausted.
func (g *Generator) GenerateUnique(exists func(string) bool) (string, error) {
	const maxAttempts = 1000

	for attempt := 0; attempt < maxAttempts; attempt++ {
		s, err := g.Generate()
		if err != nil {
			return "", err
		}
		if !exists(s) {
			return s, nil
		}
	}

	return "", ErrExhausted
}

// IsValid reports whether s is a well-formed slug: only symbols from the
// generation alphabet, with a sane length.
func IsValid(s string) bool {
	if len(s) < MinLength || len(s) > MaxLength {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune(defaultSymbols, r) {
			return false
		}
	}
	return true
}

// Package token mints public share tokens.
package token

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// Alphabet is the 64-symbol URL-safe set.
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"
	// Length gives 60 bits of entropy per token.
	Length = 10
)

type Generator struct {
	length int
	gen    func(alphabet string, size int) (string, error)
}

func New() *Generator {
	return &Generator{length: Length, gen: gonanoid.Generate}
}

func (g *Generator) Mint() (string, error) {
	t, err := g.gen(Alphabet, g.length)
	if err != nil {
		return "", fmt.Errorf("generate share token: %w", err)
	}
	return t, nil
}

// Valid reports whether s has the shape of a share token. It is a cheap
// pre-check before hitting the registry.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_' || c == '-') {
			return false
		}
	}
	return true
}

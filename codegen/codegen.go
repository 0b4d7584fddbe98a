// Package codegen produces random short codes. Generators make no
// uniqueness guarantee; the links table's unique index is what rejects
// collisions.
package codegen

import (
	"crypto/rand"
	"errors"
)

const (
	hexChars    = "0123456789abcdef"
	base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

// DefaultLength is the length of generated codes.
const DefaultLength = 6

// Generator generates short codes.
// Implementations must be safe for concurrent use.
type Generator interface {
	Generate(length int) (string, error)
}

type alphabetGenerator struct {
	alphabet string
}

// NewHex returns a generator drawing from the lowercase hexadecimal
// alphabet. This is the service default.
func NewHex() Generator {
	return &alphabetGenerator{alphabet: hexChars}
}

// NewBase62 returns a generator drawing from the full alphanumeric
// alphabet, for callers that want denser codes at the same length.
func NewBase62() Generator {
	return &alphabetGenerator{alphabet: base62Chars}
}

// Generate returns a random code of the given length.
func (g *alphabetGenerator) Generate(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("length must be positive")
	}

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	for i := range b {
		b[i] = g.alphabet[int(b[i])%len(g.alphabet)]
	}

	return string(b), nil
}

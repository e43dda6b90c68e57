// Package credentials generates and verifies API key secret material.
//
// A generated secret is a 40-character random string. Its first 8 characters
// form a non-secret prefix stored alongside the bcrypt hash so that lookups
// are indexed instead of scanning and hashing every stored key per request.
package credentials

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

const (
	// SecretLength is the length of a generated raw secret.
	SecretLength = 40
	// PrefixLength is the length of the non-secret lookup prefix.
	PrefixLength = 8
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Generate produces a new raw secret, its bcrypt hash, and its lookup prefix.
// The raw secret must be handed to the caller exactly once and never stored.
func Generate() (secret, hash, prefix string, err error) {
	buf := make([]byte, SecretLength)
	max := big.NewInt(int64(len(alphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", "", "", fmt.Errorf("generate secret: %w", err)
		}
		buf[i] = alphabet[n.Int64()]
	}
	secret = string(buf)

	h, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", "", "", fmt.Errorf("hash secret: %w", err)
	}

	return secret, string(h), secret[:PrefixLength], nil
}

// Verify reports whether candidate matches the stored bcrypt hash. Raw
// string comparison is never used.
func Verify(candidate, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(candidate)) == nil
}

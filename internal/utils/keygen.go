package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateSecret returns n random bytes hex encoded, suitable for JWT_SECRET.
func GenerateSecret(n int) (string, error) {
	if n < 16 {
		return "", fmt.Errorf("secret must be at least 16 bytes, got %d", n)
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

package utils

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"
)

const refAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomRef returns an uppercase alphanumeric reference of length n.
func RandomRef(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic("failed to read random bytes: " + err.Error())
	}
	for i := range b {
		b[i] = refAlphabet[int(b[i])%len(refAlphabet)]
	}
	return string(b)
}

// OrderID allocates a globally unique order reference.
func OrderID() string {
	return fmt.Sprintf("ORDER_%d_%s", time.Now().UnixMilli(), RandomRef(9))
}

// RefundID allocates a globally unique refund reference.
func RefundID() string {
	return fmt.Sprintf("REFUND_%d_%s", time.Now().UnixMilli(), RandomRef(9))
}

// LinkID allocates a globally unique payment-link reference.
func LinkID() string {
	return fmt.Sprintf("LINK_%d_%s", time.Now().UnixMilli(), RandomRef(9))
}

// GenerateSecureToken returns a hex token suitable for verification and
// password-reset links.
func GenerateSecureToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenerateSecureCode returns a URL-safe secret.
func GenerateSecureCode() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// Package cryptox holds the small primitives shared by the gateway: random
// order keys, constant-time key checks and payload fingerprints.
package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"github.com/gowebpki/jcs"
)

// TokenSize128 provides 128 bits of entropy (22 chars base64url).
const TokenSize128 = 16

// OrderKeyPrefix marks order keys the way the host's keys are recognisable.
const OrderKeyPrefix = "wc_order_"

// GenerateToken creates a cryptographically secure random token of the specified byte length.
// The token is returned as a base64url-encoded string (URL-safe, no padding).
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// GenerateOrderKey returns a fresh opaque order key. It travels in buyer
// URLs, so 128 bits keep it short without making it guessable.
func GenerateOrderKey() (string, error) {
	token, err := GenerateToken(TokenSize128)
	if err != nil {
		return "", err
	}
	return OrderKeyPrefix + token, nil
}

// EqualKeys compares two secrets in constant time. Empty values never match.
func EqualKeys(want, got string) bool {
	if want == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}

// FingerprintJSON canonicalises a JSON document (RFC 8785) and fingerprints
// it, so the same payload with reordered keys or different whitespace yields
// the same value. Documents jcs refuses (duplicate keys, lone surrogates) are
// fingerprinted byte for byte.
func FingerprintJSON(raw []byte) string {
	canonical, err := jcs.Transform(raw)
	if err != nil {
		canonical = raw
	}
	sum := sha256.Sum256(canonical)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

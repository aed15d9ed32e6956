package cybersource

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

// SignedHeaders is the ordered header list covered by the HTTP signature.
const SignedHeaders = "(request-target) host date digest v-c-merchant-id"

// DateFormat is the RFC 1123 layout the processor expects, always in GMT.
const DateFormat = "Mon, 02 Jan 2006 15:04:05"

// FormatDate renders t in the Date header format.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateFormat) + " GMT"
}

// Digest returns the Digest header value for body: SHA-256=<base64(sha256(body))>.
func Digest(body []byte) string {
	sum := sha256.Sum256(body)
	return "SHA-256=" + base64.StdEncoding.EncodeToString(sum[:])
}

// SignatureInput holds every value that feeds the signature string.
type SignatureInput struct {
	Host       string
	Resource   string
	Date       string
	Digest     string
	MerchantID string
}

// SigningString builds the canonical string. Lines are joined by "\n" with no
// trailing newline. The request target is always "post" with the resource
// path lowercased.
func (in SignatureInput) SigningString() string {
	return strings.Join([]string{
		"(request-target): post " + strings.ToLower(in.Resource),
		"host: " + in.Host,
		"date: " + in.Date,
		"digest: " + in.Digest,
		"v-c-merchant-id: " + in.MerchantID,
	}, "\n")
}

// SigningKey decodes the shared secret. When the secret is not valid base64
// the raw string bytes are used as the key.
func SigningKey(secret string) []byte {
	decoded, err := base64.StdEncoding.Strict().DecodeString(secret)
	if err != nil {
		return []byte(secret)
	}
	return decoded
}

// Sign returns the base64 HMAC-SHA256 of the signing string.
func Sign(in SignatureInput, secret string) string {
	mac := hmac.New(sha256.New, SigningKey(secret))
	mac.Write([]byte(in.SigningString()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// SignatureHeader returns the full Signature header value for the input.
func SignatureHeader(in SignatureInput, keyID, secret string) string {
	return fmt.Sprintf(
		`keyid="%s", algorithm="HmacSHA256", headers="%s", signature="%s"`,
		keyID, SignedHeaders, Sign(in, secret),
	)
}

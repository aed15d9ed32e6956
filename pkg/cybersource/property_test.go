package cybersource

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestSignatureDeterminism checks that equal inputs always sign equally and
// that changing the merchant id or digest changes the signature.
func TestSignatureDeterminism(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("same input, same header", prop.ForAll(
		func(host, resource, merchant, secret string, body []byte) bool {
			in := SignatureInput{
				Host:       host,
				Resource:   "/" + resource,
				Date:       "Thu, 15 Oct 2026 10:00:00 GMT",
				Digest:     Digest(body),
				MerchantID: merchant,
			}
			return SignatureHeader(in, "kid", secret) == SignatureHeader(in, "kid", secret)
		},
		gen.AlphaString(),
		gen.AlphaString(),
		gen.AlphaString(),
		gen.AlphaString(),
		gen.SliceOf(gen.UInt8()),
	))

	properties.Property("different merchant, different signature", prop.ForAll(
		func(a, b string) bool {
			if a == b {
				return true
			}
			in := SignatureInput{Host: SandboxHost, Resource: ResourcePayments, Date: "d", Digest: Digest(nil)}
			inA, inB := in, in
			inA.MerchantID, inB.MerchantID = a, b
			return Sign(inA, "c2VjcmV0") != Sign(inB, "c2VjcmV0")
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.Property("different body, different digest", prop.ForAll(
		func(a, b string) bool {
			if a == b {
				return true
			}
			return Digest([]byte(a)) != Digest([]byte(b))
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

// TestEnvelopeClassification checks ok == status in [200,300) for every status.
func TestEnvelopeClassification(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	properties.Property("ok iff 2xx", prop.ForAll(
		func(status int) bool {
			env := NewEnvelope(status, []byte(`{}`))
			return env.OK == (status >= 200 && status < 300)
		},
		gen.IntRange(100, 599),
	))

	properties.TestingRun(t)
}

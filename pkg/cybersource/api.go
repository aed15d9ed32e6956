package cybersource

import (
	"context"
	"net/http"
	"strings"
)

// CreateAuthenticationSetup starts a 3DS attempt. Only the client reference
// is sent; the response carries the reference id for the enrollment call.
func (c *Client) CreateAuthenticationSetup(ctx context.Context, order OrderInfo) Envelope {
	return c.Request(ctx, http.MethodPost, ResourceAuthenticationSetups, setupRequest{
		ClientReferenceInformation: clientReference{Code: order.Reference},
	})
}

// CheckEnrollment asks whether the card needs an interactive challenge.
// challengeCode is passed through unmodified; an empty value falls back to
// DefaultChallengeCode.
func (c *Client) CheckEnrollment(
	ctx context.Context,
	order OrderInfo,
	card Card,
	setupID, returnURL, challengeCode string,
) Envelope {
	if challengeCode == "" {
		challengeCode = DefaultChallengeCode
	}

	return c.Request(ctx, http.MethodPost, ResourceAuthentications, enrollmentRequest{
		ClientReferenceInformation: clientReference{Code: order.Reference},
		PaymentInformation: paymentInformation{Card: cardInfo{
			Number:          StripWhitespace(card.Number),
			ExpirationMonth: card.ExpMonth,
			ExpirationYear:  card.ExpYear,
		}},
		OrderInformation: order.information(),
		ConsumerAuthenticationInformation: enrollmentAuthentication{
			ReferenceID:   setupID,
			ReturnURL:     returnURL,
			ChallengeCode: challengeCode,
		},
	})
}

// ValidateAuthentication submits the issuer's challenge result. Whichever of
// cres and pares is non-empty is sent; with neither the processor rejects
// the call.
func (c *Client) ValidateAuthentication(
	ctx context.Context,
	order OrderInfo,
	authTransactionID string,
	result ChallengeResult,
) Envelope {
	return c.Request(ctx, http.MethodPost, ResourceAuthentications, validationRequest{
		ClientReferenceInformation: clientReference{Code: order.Reference},
		ConsumerAuthenticationInformation: validationAuthentication{
			AuthenticationTransactionID: authTransactionID,
			CRes:                        result.CRes,
			PARes:                       result.PARes,
		},
	})
}

// CreatePayment authorizes and captures. The liability evidence block is
// omitted entirely when cavv, xid and eciRaw are all empty.
func (c *Client) CreatePayment(ctx context.Context, order OrderInfo, card Card, auth Body) Envelope {
	indicator, evidence := EvidenceFrom(auth)

	req := paymentRequest{
		ClientReferenceInformation: clientReference{Code: order.Reference},
		ProcessingInformation: processingInformation{
			Capture:           true,
			CommerceIndicator: indicator,
		},
		PaymentInformation: paymentInformation{Card: cardInfo{
			Number:          StripWhitespace(card.Number),
			ExpirationMonth: card.ExpMonth,
			ExpirationYear:  card.ExpYear,
			SecurityCode:    card.SecurityCode,
		}},
		OrderInformation: order.information(),
	}
	if !evidence.IsEmpty() {
		req.ConsumerAuthenticationInformation = &evidence
	}

	return c.Request(ctx, http.MethodPost, ResourcePayments, req)
}

// EvidenceFrom reads the commerce indicator and liability evidence from an
// authentication response's consumerAuthenticationInformation block.
func EvidenceFrom(auth Body) (string, LiabilityEvidence) {
	cai, ok := auth.Object("consumerAuthenticationInformation")
	if !ok {
		return DefaultCommerceIndicator, LiabilityEvidence{}
	}

	return cai.StringOr(DefaultCommerceIndicator, "commerceIndicator"), LiabilityEvidence{
		CAVV:   cai.StringOr("", "cavv"),
		XID:    cai.StringOr("", "xid"),
		ECIRaw: cai.StringOr("", "eciRaw"),
	}
}

// SetupReferenceID extracts consumerAuthenticationInformation.referenceId.
func SetupReferenceID(setup Body) string {
	return setup.StringOr("", "consumerAuthenticationInformation", "referenceId")
}

// Enrollment is the decision carried by an enrollment response.
type Enrollment struct {
	ChallengeRequired bool
	// VeresEnrolled is the processor's opaque enrollment class (Y, N, U or "").
	VeresEnrolled               string
	AuthenticationTransactionID string
	StepUpURL                   string
	AccessToken                 string
	PAReq                       string
}

// ParseEnrollment reads the enrollment decision. Only the literal "Y" marks a
// challenge as required.
func ParseEnrollment(body Body) Enrollment {
	cai, _ := body.Object("consumerAuthenticationInformation")
	return Enrollment{
		ChallengeRequired:           cai.StringOr("", "challengeRequired") == "Y",
		VeresEnrolled:               cai.StringOr("", "veresEnrolled"),
		AuthenticationTransactionID: cai.StringOr("", "authenticationTransactionId"),
		StepUpURL:                   cai.StringOr("", "stepUpUrl"),
		AccessToken:                 cai.StringOr("", "accessToken"),
		PAReq:                       cai.StringOr("", "pareq"),
	}
}

// Decision outcomes of a payment call that count as success.
var successfulDecisions = map[string]struct{}{
	"AUTHORIZED": {},
	"PENDING":    {},
	"COMPLETED":  {},
}

// Payment is the capture decision carried by a payment response.
type Payment struct {
	Status        string
	TransactionID string
	ResponseCode  string
}

// ParsePayment reads the payment decision fields.
func ParsePayment(body Body) Payment {
	return Payment{
		Status:        body.StringOr("", "status"),
		TransactionID: body.StringOr("", "id"),
		ResponseCode:  body.StringOr("", "processorInformation", "responseCode"),
	}
}

// Succeeded matches the status case-insensitively against the success set.
func (p Payment) Succeeded() bool {
	_, ok := successfulDecisions[strings.ToUpper(p.Status)]
	return ok
}

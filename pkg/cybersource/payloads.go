package cybersource

import (
	"strings"
	"unicode"
)

// Resource paths of the processor REST API.
const (
	ResourceAuthenticationSetups = "/risk/v1/authentication-setups"
	ResourceAuthentications      = "/risk/v1/authentications"
	ResourcePayments             = "/pts/v2/payments"
)

// DefaultChallengeCode requests a challenge when the issuer supports it.
const DefaultChallengeCode = "04"

// DefaultCommerceIndicator is used when the authentication response does not
// carry one.
const DefaultCommerceIndicator = "internet"

// Card is the raw card input for a single checkout attempt.
type Card struct {
	Number       string `json:"number" validate:"required,number,min=12,max=19"`
	ExpMonth     string `json:"exp_month" validate:"required,number,max=2"`
	ExpYear      string `json:"exp_year" validate:"required,number,max=4"`
	SecurityCode string `json:"cvc" validate:"required,number,min=3,max=4"`
}

// Normalized strips whitespace from every field and all interior whitespace
// from the card number.
func (c Card) Normalized() Card {
	c.Number = StripWhitespace(c.Number)
	c.ExpMonth = strings.TrimSpace(c.ExpMonth)
	c.ExpYear = strings.TrimSpace(c.ExpYear)
	c.SecurityCode = strings.TrimSpace(c.SecurityCode)
	return c
}

// Validate checks the card fields.
func (c Card) Validate() error {
	return validate.Struct(c)
}

// StripWhitespace removes every unicode whitespace rune from s.
func StripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// BillTo is the billing contact sent with enrollment and payment calls.
type BillTo struct {
	FirstName          string `json:"firstName"`
	LastName           string `json:"lastName"`
	Address1           string `json:"address1"`
	Locality           string `json:"locality"`
	AdministrativeArea string `json:"administrativeArea"`
	PostalCode         string `json:"postalCode"`
	Country            string `json:"country"`
	Email              string `json:"email"`
	PhoneNumber        string `json:"phoneNumber"`
}

// OrderInfo is what the client needs to know about the host order.
type OrderInfo struct {
	// Reference is sent as clientReferenceInformation.code.
	Reference string
	// TotalAmount is a decimal string with two fraction digits.
	TotalAmount string
	Currency    string
	BillTo      BillTo
}

// ChallengeResult carries the issuer's posted result. CRes is the 3DS 2.x
// format, PARes the legacy one.
type ChallengeResult struct {
	CRes  string
	PARes string
}

type clientReference struct {
	Code string `json:"code"`
}

type cardInfo struct {
	Number          string `json:"number"`
	ExpirationMonth string `json:"expirationMonth"`
	ExpirationYear  string `json:"expirationYear"`
	SecurityCode    string `json:"securityCode,omitempty"`
}

type paymentInformation struct {
	Card cardInfo `json:"card"`
}

type amountDetails struct {
	TotalAmount string `json:"totalAmount"`
	Currency    string `json:"currency"`
}

type orderInformation struct {
	AmountDetails amountDetails `json:"amountDetails"`
	BillTo        BillTo        `json:"billTo"`
}

type setupRequest struct {
	ClientReferenceInformation clientReference `json:"clientReferenceInformation"`
}

type enrollmentAuthentication struct {
	ReferenceID   string `json:"referenceId"`
	ReturnURL     string `json:"returnUrl"`
	ChallengeCode string `json:"challengeCode"`
}

type enrollmentRequest struct {
	ClientReferenceInformation        clientReference          `json:"clientReferenceInformation"`
	PaymentInformation                paymentInformation       `json:"paymentInformation"`
	OrderInformation                  orderInformation         `json:"orderInformation"`
	ConsumerAuthenticationInformation enrollmentAuthentication `json:"consumerAuthenticationInformation"`
}

type validationAuthentication struct {
	AuthenticationTransactionID string `json:"authenticationTransactionId"`
	CRes                        string `json:"cres,omitempty"`
	PARes                       string `json:"pares,omitempty"`
}

type validationRequest struct {
	ClientReferenceInformation        clientReference          `json:"clientReferenceInformation"`
	ConsumerAuthenticationInformation validationAuthentication `json:"consumerAuthenticationInformation"`
}

type processingInformation struct {
	Capture           bool   `json:"capture"`
	CommerceIndicator string `json:"commerceIndicator"`
}

// LiabilityEvidence is the 3DS proof forwarded to the payment call.
type LiabilityEvidence struct {
	CAVV   string `json:"cavv"`
	XID    string `json:"xid"`
	ECIRaw string `json:"eciRaw"`
}

// IsEmpty reports whether no evidence value is present.
func (e LiabilityEvidence) IsEmpty() bool {
	return e.CAVV == "" && e.XID == "" && e.ECIRaw == ""
}

type paymentRequest struct {
	ClientReferenceInformation        clientReference       `json:"clientReferenceInformation"`
	ProcessingInformation             processingInformation `json:"processingInformation"`
	PaymentInformation                paymentInformation    `json:"paymentInformation"`
	OrderInformation                  orderInformation      `json:"orderInformation"`
	ConsumerAuthenticationInformation *LiabilityEvidence    `json:"consumerAuthenticationInformation,omitempty"`
}

func (o OrderInfo) information() orderInformation {
	return orderInformation{
		AmountDetails: amountDetails{
			TotalAmount: o.TotalAmount,
			Currency:    o.Currency,
		},
		BillTo: o.BillTo,
	}
}

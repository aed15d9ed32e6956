package domain

import (
	"fmt"
	"strconv"
	"time"
)

// OrderStatus mirrors the host's order lifecycle.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderOnHold     OrderStatus = "on-hold"    // waiting on the issuer challenge
	OrderProcessing OrderStatus = "processing" // paid
	OrderFailed     OrderStatus = "failed"
)

// Address is the billing contact of an order.
type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address1  string `json:"address_1"`
	City      string `json:"city"`
	State     string `json:"state"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
}

// Order is the host order the gateway pays for. The gateway reads its
// identity, totals and billing fields and writes back status, notes, the
// transaction id and metadata.
type Order struct {
	ID            int64
	Key           string // opaque order key, checked on every buyer-facing surface
	Status        OrderStatus
	TotalMinor    int64 // total in minor units (cents)
	Currency      string
	Billing       Address
	Email         string
	Phone         string
	TransactionID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Reference is the order id as sent in clientReferenceInformation.code.
func (o Order) Reference() string {
	return strconv.FormatInt(o.ID, 10)
}

// TotalAmount formats the total as a decimal string with two fraction digits.
func (o Order) TotalAmount() string {
	minor := o.TotalMinor
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}

// IsPaid reports whether the order already captured a payment.
func (o Order) IsPaid() bool {
	return o.Status == OrderProcessing
}

// OrderNote is an append-only annotation on an order.
type OrderNote struct {
	ID        int64
	OrderID   int64
	Body      string
	CreatedAt time.Time
}

// Order metadata keys. Values are JSON documents.
const (
	MetaAuthSetup       = "cs3ds_auth_setup"
	MetaAuthInitial     = "cs3ds_auth_initial"
	MetaAuthFinal       = "cs3ds_auth_final"
	MetaPaymentResponse = "cs3ds_payment_response"
	MetaLastWebhook     = "cs3ds_last_webhook"
)

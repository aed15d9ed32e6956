package domain

import "time"

// WebhookEvent is the audit record of one accepted notification.
type WebhookEvent struct {
	ID          string // ULID
	OrderID     int64  // 0 when no order matched
	EventType   string
	Fingerprint string // SHA-256 of the canonical (RFC 8785) payload
	Payload     []byte
	ReceivedAt  time.Time
}

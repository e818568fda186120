package entity

import (
	"time"

	"github.com/google/uuid"
)

type TokenStatus string

const (
	TokenStatusActive   TokenStatus = "active"
	TokenStatusConsumed TokenStatus = "consumed"
	TokenStatusExpired  TokenStatus = "expired"
)

// AdmissionToken is the credential minted for an additional visitor slot.
// Rows are never deleted; consumed and expired tokens stay as the audit trail.
type AdmissionToken struct {
	ID         uuid.UUID   `db:"id"`
	SlotID     uuid.UUID   `db:"slot_id"`
	BookingID  uuid.UUID   `db:"booking_id"`
	IssuedAt   time.Time   `db:"issued_at"`
	ExpiresAt  time.Time   `db:"expires_at"`
	Consumed   bool        `db:"consumed"`
	ConsumedAt *time.Time  `db:"consumed_at"`
	Status     TokenStatus `db:"status"`
	Payload    string      `db:"payload"`
}

// ExpiredAt reports whether the token can no longer admit at the given time.
func (t *AdmissionToken) ExpiredAt(now time.Time) bool {
	return t.Status == TokenStatusExpired || now.After(t.ExpiresAt)
}

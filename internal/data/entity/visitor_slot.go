package entity

import (
	"time"

	"github.com/google/uuid"
)

type SlotRole string

const (
	SlotRolePrimary    SlotRole = "primary"
	SlotRoleAdditional SlotRole = "additional"
)

type SlotStatus string

const (
	SlotStatusUnclaimed  SlotStatus = "unclaimed"
	SlotStatusRegistered SlotStatus = "registered"
	SlotStatusAdmitted   SlotStatus = "admitted"
)

// VisitorSlot is one seat within a booking. Every booking has exactly one
// primary slot; additional slots each own a scannable admission token.
type VisitorSlot struct {
	Base
	BookingID  uuid.UUID  `db:"booking_id"`
	Role       SlotRole   `db:"role"`
	FullName   string     `db:"full_name"`
	Email      *string    `db:"email"`
	Status     SlotStatus `db:"status"`
	AdmittedAt *time.Time `db:"admitted_at"`
}

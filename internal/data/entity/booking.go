package entity

import (
	"time"
)

type BookingStatus string

const (
	BookingStatusPending           BookingStatus = "pending"
	BookingStatusApproved          BookingStatus = "approved"
	BookingStatusPartiallyAdmitted BookingStatus = "partially_admitted"
	BookingStatusFullyAdmitted     BookingStatus = "fully_admitted"
	BookingStatusCancelled         BookingStatus = "cancelled"
	BookingStatusArchived          BookingStatus = "archived"
)

// IsActive reports whether the booking can still admit visitors.
func (s BookingStatus) IsActive() bool {
	return s != BookingStatusCancelled && s != BookingStatusArchived
}

type BookingKind string

const (
	BookingKindIndividual BookingKind = "individual"
	BookingKindGroup      BookingKind = "group"
)

type Booking struct {
	Base
	Reference    string        `db:"reference"`
	VisitDate    time.Time     `db:"visit_date"`
	TimeSlot     string        `db:"time_slot"`
	VisitorCount int           `db:"visitor_count"`
	Kind         BookingKind   `db:"kind"`
	ContactName  string        `db:"contact_name"`
	ContactEmail string        `db:"contact_email"`
	Status       BookingStatus `db:"status"`
}

package entity

import "time"

// SlotCapacity is the capacity ledger row for one time slot. Only the
// capacity service mutates Reserved, through a conditional update.
type SlotCapacity struct {
	VisitDate time.Time `db:"visit_date"`
	TimeSlot  string    `db:"time_slot"`
	Capacity  int       `db:"capacity"`
	Reserved  int       `db:"reserved"`
}

func (c *SlotCapacity) Available() int {
	return c.Capacity - c.Reserved
}

package repository

import (
	"museum-admission/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Booking  BookingRepository
	Slot     VisitorSlotRepository
	Token    AdmissionTokenRepository
	Capacity CapacityRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Booking:  NewBookingRepository(db, log),
		Slot:     NewVisitorSlotRepository(db, log),
		Token:    NewAdmissionTokenRepository(db, log),
		Capacity: NewCapacityRepository(db, log),
	}
}

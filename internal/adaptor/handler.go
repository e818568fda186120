package adaptor

import (
	"museum-admission/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Booking   *BookingHandler
	Admission *AdmissionHandler
	Visitor   *VisitorHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Booking:   NewBookingHandler(service.Booking, service.Issuer, service.Capacity, log),
		Admission: NewAdmissionHandler(service.Admission, log),
		Visitor:   NewVisitorHandler(service.Visitor, log),
	}
}

package wire

import (
	"museum-admission/internal/adaptor"
	"museum-admission/pkg/middleware"
	"museum-admission/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// POST /api/bookings - intake creates a pending booking
	r.Post("/api/bookings", bookingHandler.Create)

	// GET /api/slots/{date}/{label}/availability - seats left in a slot
	r.Get("/api/slots/{date}/{label}/availability", bookingHandler.Availability)

	// ==================== STAFF ROUTES (device auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.DeviceAuth(config.Scanner, log))

		// GET /api/bookings/{id} - booking detail with slots and tokens
		r.Get("/api/bookings/{id}", bookingHandler.GetByID)

		// POST /api/bookings/{id}/issue - reserve capacity and mint credentials
		r.Post("/api/bookings/{id}/issue", bookingHandler.Issue)

		// GET /api/bookings/{id}/codes - payloads for the code renderer
		r.Get("/api/bookings/{id}/codes", bookingHandler.Codes)
	})
}

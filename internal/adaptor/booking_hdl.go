package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"museum-admission/internal/dto/request"
	"museum-admission/internal/dto/response"
	"museum-admission/internal/usecase"
	"museum-admission/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type BookingHandler struct {
	booking  usecase.BookingService
	issuer   usecase.IssuerService
	capacity usecase.CapacityService
	log      *zap.Logger
}

func NewBookingHandler(booking usecase.BookingService, issuer usecase.IssuerService, capacity usecase.CapacityService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		booking:  booking,
		issuer:   issuer,
		capacity: capacity,
		log:      log.With(zap.String("handler", "booking")),
	}
}

// Create handles POST /api/bookings (public intake)
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	booking, err := h.booking.Create(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "create booking")
		return
	}

	utils.ResponseCreated(w, "success", booking)
}

// GetByID handles GET /api/bookings/{id} (device auth)
func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		utils.ResponseBadRequest(w, "Booking ID is required", nil)
		return
	}

	booking, err := h.booking.GetByID(r.Context(), bookingID)
	if err != nil {
		h.handleServiceError(w, err, "get booking")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// Issue handles POST /api/bookings/{id}/issue (device auth). Combines the
// capacity reservation and credential minting as one step; idempotent on
// retry.
func (h *BookingHandler) Issue(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		utils.ResponseBadRequest(w, "Booking ID is required", nil)
		return
	}

	tokens, err := h.issuer.ReserveAndIssue(r.Context(), bookingID)
	if err != nil {
		h.handleServiceError(w, err, "issue credentials")
		return
	}

	tokenResponses := make([]response.TokenResponse, len(tokens))
	for i, token := range tokens {
		tokenResponses[i] = response.TokenToResponse(token)
	}

	utils.ResponseCreated(w, "success", tokenResponses)
}

// Codes handles GET /api/bookings/{id}/codes (device auth). Returns the
// payloads the external code renderer turns into scannable images.
func (h *BookingHandler) Codes(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		utils.ResponseBadRequest(w, "Booking ID is required", nil)
		return
	}

	payloads, err := h.issuer.Payloads(r.Context(), bookingID)
	if err != nil {
		h.handleServiceError(w, err, "get code payloads")
		return
	}

	utils.ResponseSuccess(w, "success", payloads)
}

// Availability handles GET /api/slots/{date}/{label}/availability (public)
func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	label := chi.URLParam(r, "label")

	visitDate, err := time.Parse("2006-01-02", date)
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid visit date", nil)
		return
	}

	available, err := h.capacity.Available(r.Context(), visitDate, label)
	if err != nil {
		h.handleServiceError(w, err, "get availability")
		return
	}

	utils.ResponseSuccess(w, "success", map[string]any{
		"visit_date": date,
		"time_slot":  label,
		"available":  available,
	})
}

func (h *BookingHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, usecase.ErrBookingNotFound):
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrCapacityExceeded):
		h.log.Info(operation+" rejected - slot at capacity", zap.Error(err))
		utils.ResponseUnprocessable(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrBookingInactive):
		utils.ResponseUnprocessable(w, err.Error(), nil)

	case strings.Contains(err.Error(), "validation failed"),
		strings.Contains(err.Error(), "invalid"),
		strings.Contains(err.Error(), "cannot"):
		h.log.Warn(operation+" failed - bad input", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	default:
		h.log.Error("Failed to "+operation, zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

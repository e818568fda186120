package response

import (
	"time"

	"museum-admission/internal/data/entity"
)

type BookingResponse struct {
	ID           string    `json:"id"`
	Reference    string    `json:"reference"`
	VisitDate    string    `json:"visit_date"`
	TimeSlot     string    `json:"time_slot"`
	VisitorCount int       `json:"visitor_count"`
	Kind         string    `json:"kind"`
	ContactName  string    `json:"contact_name"`
	ContactEmail string    `json:"contact_email"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

type BookingDetailResponse struct {
	BookingResponse
	Slots  []SlotResponse  `json:"slots"`
	Tokens []TokenResponse `json:"tokens"`
}

func BookingToResponse(booking *entity.Booking) BookingResponse {
	return BookingResponse{
		ID:           booking.ID.String(),
		Reference:    booking.Reference,
		VisitDate:    booking.VisitDate.Format("2006-01-02"),
		TimeSlot:     booking.TimeSlot,
		VisitorCount: booking.VisitorCount,
		Kind:         string(booking.Kind),
		ContactName:  booking.ContactName,
		ContactEmail: booking.ContactEmail,
		Status:       string(booking.Status),
		CreatedAt:    booking.CreatedAt,
	}
}

type SlotResponse struct {
	ID         string     `json:"id"`
	BookingID  string     `json:"booking_id"`
	Role       string     `json:"role"`
	FullName   string     `json:"full_name,omitempty"`
	Email      string     `json:"email,omitempty"`
	Status     string     `json:"status"`
	AdmittedAt *time.Time `json:"admitted_at,omitempty"`
}

func SlotToResponse(slot *entity.VisitorSlot) SlotResponse {
	resp := SlotResponse{
		ID:         slot.ID.String(),
		BookingID:  slot.BookingID.String(),
		Role:       string(slot.Role),
		FullName:   slot.FullName,
		Status:     string(slot.Status),
		AdmittedAt: slot.AdmittedAt,
	}
	if slot.Email != nil {
		resp.Email = *slot.Email
	}
	return resp
}

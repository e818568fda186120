package response

import (
	"time"

	"museum-admission/internal/data/entity"
)

type TokenResponse struct {
	ID         string     `json:"id"`
	SlotID     string     `json:"slot_id"`
	BookingID  string     `json:"booking_id"`
	IssuedAt   time.Time  `json:"issued_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
	Consumed   bool       `json:"consumed"`
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`
	Status     string     `json:"status"`
}

func TokenToResponse(token *entity.AdmissionToken) TokenResponse {
	return TokenResponse{
		ID:         token.ID.String(),
		SlotID:     token.SlotID.String(),
		BookingID:  token.BookingID.String(),
		IssuedAt:   token.IssuedAt,
		ExpiresAt:  token.ExpiresAt,
		Consumed:   token.Consumed,
		ConsumedAt: token.ConsumedAt,
		Status:     string(token.Status),
	}
}

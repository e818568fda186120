package response

import "time"

// Scan outcomes. Each is a distinct user-facing result: the operator's
// response to "already used" differs from "too late" and "cancelled booking".
const (
	OutcomeAdmitted        = "admitted"
	OutcomeAlreadyAdmitted = "already_admitted"
	OutcomeExpired         = "expired"
	OutcomeBookingInactive = "booking_inactive"
	OutcomeUnresolvable    = "unresolvable"
)

type ScanResult struct {
	Outcome   string             `json:"outcome"`
	Message   string             `json:"message"`
	Admission *AdmissionResponse `json:"admission,omitempty"`
}

type AdmissionResponse struct {
	SlotID        string    `json:"slot_id"`
	BookingID     string    `json:"booking_id"`
	Reference     string    `json:"reference"`
	Role          string    `json:"role"`
	VisitorName   string    `json:"visitor_name,omitempty"`
	BookingStatus string    `json:"booking_status"`
	AdmittedAt    time.Time `json:"admitted_at"`
	Strategy      string    `json:"strategy"`
}

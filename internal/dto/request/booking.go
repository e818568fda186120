package request

type CreateBookingRequest struct {
	VisitDate    string `json:"visit_date" validate:"required,datetime=2006-01-02"`
	TimeSlot     string `json:"time_slot" validate:"required,min=2,max=32"`
	VisitorCount int    `json:"visitor_count" validate:"required,min=1,max=50"`
	Kind         string `json:"kind" validate:"required,oneof=individual group"`
	ContactName  string `json:"contact_name" validate:"required,min=2,max=120"`
	ContactEmail string `json:"contact_email" validate:"required,email"`
}

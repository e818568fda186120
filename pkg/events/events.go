package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// Publisher hands domain events to the out-of-process notification and
// reporting services. Delivery is fire-and-forget from this subsystem's
// point of view.
type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

const (
	TokensIssued    = "admission.tokens.issued"
	VisitorAdmitted = "admission.visitor.admitted"
	BookingArchived = "admission.booking.archived"
)

type TokensIssuedEvent struct {
	BookingID    string    `json:"booking_id"`
	Reference    string    `json:"reference"`
	ContactEmail string    `json:"contact_email"`
	TokenCount   int       `json:"token_count"`
	VisitDate    time.Time `json:"visit_date"`
	TimeSlot     string    `json:"time_slot"`
	IssuedAt     time.Time `json:"issued_at"`
}

type VisitorAdmittedEvent struct {
	BookingID     string    `json:"booking_id"`
	SlotID        string    `json:"slot_id"`
	Role          string    `json:"role"`
	BookingStatus string    `json:"booking_status"`
	AdmittedAt    time.Time `json:"admitted_at"`
}

type BookingArchivedEvent struct {
	BookingID     string    `json:"booking_id"`
	Reference     string    `json:"reference"`
	VisitDate     time.Time `json:"visit_date"`
	TimeSlot      string    `json:"time_slot"`
	SeatsReleased int       `json:"seats_released"`
	ArchivedAt    time.Time `json:"archived_at"`
}

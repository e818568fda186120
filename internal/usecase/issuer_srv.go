package usecase

import (
	"context"
	"fmt"
	"time"

	"museum-admission/internal/data/entity"
	"museum-admission/internal/data/repository"
	"museum-admission/internal/payload"
	"museum-admission/pkg/events"
	"museum-admission/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IssuerService mints admission credentials for an approved booking: one
// implicit credential for the primary slot (its code carries the slot id)
// and one AdmissionToken per additional visitor.
type IssuerService interface {
	// ReserveAndIssue is the single entry point for the intake flow:
	// capacity reservation and token minting as one logical step. If the
	// reservation fails no tokens are minted. Re-invoking for a booking
	// that already has credentials returns the existing set untouched.
	ReserveAndIssue(ctx context.Context, bookingID string) ([]*entity.AdmissionToken, error)

	// Payloads returns what the external code renderer encodes, one
	// payload per visitor slot.
	Payloads(ctx context.Context, bookingID string) ([]payload.CodePayload, error)
}

type issuerService struct {
	repo     *repository.Repository
	capacity CapacityService
	bus      events.Publisher
	horizon  time.Duration
	log      *zap.Logger
}

func NewIssuerService(repo *repository.Repository, capacity CapacityService, bus events.Publisher, config *utils.Config, log *zap.Logger) IssuerService {
	return &issuerService{
		repo:     repo,
		capacity: capacity,
		bus:      bus,
		horizon:  time.Duration(config.Admission.TokenHorizonHours) * time.Hour,
		log:      log.With(zap.String("service", "issuer")),
	}
}

func (s *issuerService) ReserveAndIssue(ctx context.Context, bookingID string) ([]*entity.AdmissionToken, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	if !booking.Status.IsActive() {
		return nil, ErrBookingInactive
	}

	// Idempotency: a retried request must not mint a second credential
	// set or reserve seats twice.
	existing, err := s.repo.Slot.FindByBookingID(ctx, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("check existing slots: %w", err)
	}
	if len(existing) > 0 {
		s.log.Info("Issuance already done, returning existing tokens",
			zap.String("booking_id", booking.ID.String()),
			zap.Int("slot_count", len(existing)),
		)
		return s.repo.Token.FindByBookingID(ctx, booking.ID)
	}

	reservationID, err := s.capacity.Reserve(ctx, booking.VisitDate, booking.TimeSlot, booking.VisitorCount)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	slots, tokens, err := s.mint(booking, now)
	if err != nil {
		s.releaseAfterFailure(ctx, booking)
		return nil, err
	}

	if err := s.repo.Slot.CreateBatch(ctx, slots); err != nil {
		s.releaseAfterFailure(ctx, booking)
		return nil, fmt.Errorf("create visitor slots: %w", err)
	}

	if err := s.repo.Token.CreateBatch(ctx, tokens); err != nil {
		s.releaseAfterFailure(ctx, booking)
		return nil, fmt.Errorf("create admission tokens: %w", err)
	}

	if err := s.repo.Booking.UpdateStatus(ctx, booking.ID, entity.BookingStatusApproved); err != nil {
		return nil, fmt.Errorf("approve booking: %w", err)
	}

	s.log.Info("Credentials issued",
		zap.String("booking_id", booking.ID.String()),
		zap.String("reference", booking.Reference),
		zap.String("reservation_id", reservationID.String()),
		zap.Int("visitor_count", booking.VisitorCount),
		zap.Int("token_count", len(tokens)),
	)

	if s.bus != nil {
		event := events.TokensIssuedEvent{
			BookingID:    booking.ID.String(),
			Reference:    booking.Reference,
			ContactEmail: booking.ContactEmail,
			TokenCount:   len(tokens),
			VisitDate:    booking.VisitDate,
			TimeSlot:     booking.TimeSlot,
			IssuedAt:     now,
		}
		if err := s.bus.Publish(ctx, events.TokensIssued, event); err != nil {
			s.log.Warn("Failed to publish tokens issued event", zap.Error(err))
		}
	}

	return tokens, nil
}

// mint builds the slot and token rows for a booking: one primary slot plus
// one additional slot with its token per extra visitor.
func (s *issuerService) mint(booking *entity.Booking, now time.Time) ([]*entity.VisitorSlot, []*entity.AdmissionToken, error) {
	expiry := booking.VisitDate.Add(s.horizon)

	contactEmail := booking.ContactEmail
	primary := &entity.VisitorSlot{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BookingID: booking.ID,
		Role:      entity.SlotRolePrimary,
		FullName:  booking.ContactName,
		Email:     &contactEmail,
		Status:    entity.SlotStatusUnclaimed,
	}

	slots := []*entity.VisitorSlot{primary}
	var tokens []*entity.AdmissionToken

	for i := 1; i < booking.VisitorCount; i++ {
		slot := &entity.VisitorSlot{
			Base: entity.Base{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			BookingID: booking.ID,
			Role:      entity.SlotRoleAdditional,
			Status:    entity.SlotStatusUnclaimed,
		}
		slots = append(slots, slot)

		tokenID := utils.GenerateTokenID()
		snapshot, err := payload.CodePayload{
			Version:     payload.CurrentVersion,
			TokenID:     tokenID.String(),
			BookingID:   booking.ID.String(),
			Role:        string(entity.SlotRoleAdditional),
			DisplayHint: booking.ContactName,
			Email:       booking.ContactEmail,
		}.Encode()
		if err != nil {
			return nil, nil, err
		}

		tokens = append(tokens, &entity.AdmissionToken{
			ID:        tokenID,
			SlotID:    slot.ID,
			BookingID: booking.ID,
			IssuedAt:  now,
			ExpiresAt: expiry,
			Status:    entity.TokenStatusActive,
			Payload:   snapshot,
		})
	}

	return slots, tokens, nil
}

func (s *issuerService) releaseAfterFailure(ctx context.Context, booking *entity.Booking) {
	if err := s.capacity.Release(ctx, booking.VisitDate, booking.TimeSlot, booking.VisitorCount); err != nil {
		s.log.Error("Failed to release reservation after issue failure",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
	}
}

func (s *issuerService) Payloads(ctx context.Context, bookingID string) ([]payload.CodePayload, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	slots, err := s.repo.Slot.FindByBookingID(ctx, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("load visitor slots: %w", err)
	}

	payloads := make([]payload.CodePayload, 0, len(slots))
	for _, slot := range slots {
		p := payload.CodePayload{
			Version:     payload.CurrentVersion,
			BookingID:   booking.ID.String(),
			Role:        string(slot.Role),
			DisplayHint: slot.FullName,
		}
		if slot.Email != nil {
			p.Email = *slot.Email
		}

		if slot.Role == entity.SlotRolePrimary {
			p.SlotID = slot.ID.String()
		} else {
			token, err := s.repo.Token.FindBySlotID(ctx, slot.ID)
			if err != nil {
				return nil, fmt.Errorf("load token for slot %s: %w", slot.ID.String(), err)
			}
			if token == nil {
				continue
			}
			p.TokenID = token.ID.String()
		}

		payloads = append(payloads, p)
	}

	return payloads, nil
}

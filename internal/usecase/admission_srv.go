package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"museum-admission/internal/data/entity"
	"museum-admission/internal/data/repository"
	"museum-admission/internal/dto/response"
	"museum-admission/pkg/events"

	"go.uber.org/zap"
)

// AdmissionRecord is the result of one successful admission.
type AdmissionRecord struct {
	Slot          *entity.VisitorSlot
	Booking       *entity.Booking
	BookingStatus entity.BookingStatus
	AdmittedAt    time.Time
	Strategy      string
}

// AdmissionService is the state machine converting a resolved credential
// into a recorded, at-most-once visit.
type AdmissionService interface {
	// Admit validates and applies one credential. Concurrent calls for
	// the same credential serialize: exactly one wins, the rest get
	// ErrAlreadyAdmitted.
	Admit(ctx context.Context, cred *ResolvedCredential, scanTime time.Time) (*AdmissionRecord, error)

	// Scan resolves raw content and admits in one step. Business
	// outcomes land in the result; only store faults return an error.
	Scan(ctx context.Context, raw string, scanTime time.Time) (*response.ScanResult, error)
}

type admissionService struct {
	repo     *repository.Repository
	resolver ResolverService
	bus      events.Publisher
	locks    keyedLock
	log      *zap.Logger
}

func NewAdmissionService(repo *repository.Repository, resolver ResolverService, bus events.Publisher, log *zap.Logger) AdmissionService {
	return &admissionService{
		repo:     repo,
		resolver: resolver,
		bus:      bus,
		log:      log.With(zap.String("service", "admission")),
	}
}

func (s *admissionService) Admit(ctx context.Context, cred *ResolvedCredential, scanTime time.Time) (*AdmissionRecord, error) {
	unlock := s.locks.lock(cred.Slot.ID.String())
	defer unlock()

	// Re-read under the lock; the resolver's snapshot may have lost a
	// race against another scan of the same code.
	slot, err := s.repo.Slot.FindByID(ctx, cred.Slot.ID)
	if err != nil {
		return nil, fmt.Errorf("reload slot: %w", err)
	}
	if slot == nil {
		return nil, ErrSlotNotFound
	}
	if slot.Status == entity.SlotStatusAdmitted {
		return nil, ErrAlreadyAdmitted
	}

	if cred.Token != nil {
		token, err := s.repo.Token.FindByID(ctx, cred.Token.ID)
		if err != nil {
			return nil, fmt.Errorf("reload token: %w", err)
		}
		if token == nil || token.Consumed {
			return nil, ErrAlreadyAdmitted
		}
		if token.ExpiredAt(scanTime) {
			return nil, ErrExpired
		}
	}

	booking, err := s.repo.Booking.FindByID(ctx, slot.BookingID)
	if err != nil {
		return nil, fmt.Errorf("reload booking: %w", err)
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	if !booking.Status.IsActive() {
		return nil, ErrBookingInactive
	}

	admitted, err := s.repo.Slot.Admit(ctx, slot.ID, scanTime)
	if err != nil {
		return nil, fmt.Errorf("admit slot: %w", err)
	}
	if !admitted {
		return nil, ErrAlreadyAdmitted
	}

	if cred.Token != nil {
		consumed, err := s.repo.Token.Consume(ctx, cred.Token.ID, scanTime)
		if err != nil {
			return nil, fmt.Errorf("consume token: %w", err)
		}
		if !consumed {
			// The slot write won but the token was consumed by an
			// earlier run that died between the two writes. The
			// slot is the source of truth; log and continue.
			s.log.Warn("Token already consumed for freshly admitted slot",
				zap.String("token_id", cred.Token.ID.String()),
				zap.String("slot_id", slot.ID.String()),
			)
		}
	}

	status, err := s.recomputeBookingStatus(ctx, booking)
	if err != nil {
		return nil, err
	}

	slot.Status = entity.SlotStatusAdmitted
	slot.AdmittedAt = &scanTime

	s.log.Info("Visitor admitted",
		zap.String("slot_id", slot.ID.String()),
		zap.String("booking_id", booking.ID.String()),
		zap.String("role", string(slot.Role)),
		zap.String("booking_status", string(status)),
		zap.String("strategy", cred.Strategy),
	)

	if s.bus != nil {
		event := events.VisitorAdmittedEvent{
			BookingID:     booking.ID.String(),
			SlotID:        slot.ID.String(),
			Role:          string(slot.Role),
			BookingStatus: string(status),
			AdmittedAt:    scanTime,
		}
		if err := s.bus.Publish(ctx, events.VisitorAdmitted, event); err != nil {
			s.log.Warn("Failed to publish visitor admitted event", zap.Error(err))
		}
	}

	return &AdmissionRecord{
		Slot:          slot,
		Booking:       booking,
		BookingStatus: status,
		AdmittedAt:    scanTime,
		Strategy:      cred.Strategy,
	}, nil
}

// recomputeBookingStatus moves the booking to partially or fully admitted
// based on how many slots are through the door.
func (s *admissionService) recomputeBookingStatus(ctx context.Context, booking *entity.Booking) (entity.BookingStatus, error) {
	total, admitted, err := s.repo.Slot.CountByBookingID(ctx, booking.ID)
	if err != nil {
		return "", fmt.Errorf("count admitted slots: %w", err)
	}

	status := entity.BookingStatusPartiallyAdmitted
	if admitted >= total {
		status = entity.BookingStatusFullyAdmitted
	}

	if status != booking.Status {
		if err := s.repo.Booking.UpdateStatus(ctx, booking.ID, status); err != nil {
			return "", fmt.Errorf("update booking status: %w", err)
		}
	}

	return status, nil
}

func (s *admissionService) Scan(ctx context.Context, raw string, scanTime time.Time) (*response.ScanResult, error) {
	cred, err := s.resolver.Resolve(ctx, raw)
	if err != nil {
		if errors.Is(err, ErrUnresolvable) {
			return &response.ScanResult{
				Outcome: response.OutcomeUnresolvable,
				Message: "Could not read this code",
			}, nil
		}
		return nil, err
	}

	record, err := s.Admit(ctx, cred, scanTime)
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyAdmitted):
			return &response.ScanResult{
				Outcome: response.OutcomeAlreadyAdmitted,
				Message: "This code was already used",
			}, nil
		case errors.Is(err, ErrExpired):
			return &response.ScanResult{
				Outcome: response.OutcomeExpired,
				Message: "This code has expired",
			}, nil
		case errors.Is(err, ErrBookingInactive):
			return &response.ScanResult{
				Outcome: response.OutcomeBookingInactive,
				Message: "The booking for this code is no longer active",
			}, nil
		case errors.Is(err, ErrSlotNotFound), errors.Is(err, ErrBookingNotFound):
			return &response.ScanResult{
				Outcome: response.OutcomeUnresolvable,
				Message: "Could not read this code",
			}, nil
		}
		return nil, err
	}

	return &response.ScanResult{
		Outcome: response.OutcomeAdmitted,
		Message: "Welcome",
		Admission: &response.AdmissionResponse{
			SlotID:        record.Slot.ID.String(),
			BookingID:     record.Booking.ID.String(),
			Reference:     record.Booking.Reference,
			Role:          string(record.Slot.Role),
			VisitorName:   record.Slot.FullName,
			BookingStatus: string(record.BookingStatus),
			AdmittedAt:    record.AdmittedAt,
			Strategy:      record.Strategy,
		},
	}, nil
}

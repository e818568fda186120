package usecase

import (
	"context"
	"fmt"

	"museum-admission/internal/data/entity"
	"museum-admission/internal/data/repository"
	"museum-admission/internal/dto/request"
	"museum-admission/internal/dto/response"
	"museum-admission/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// VisitorService handles the out-of-band demographic registration visitors
// complete between token issuance and the visit.
type VisitorService interface {
	Register(ctx context.Context, slotID string, req *request.RegisterVisitorRequest) (*response.SlotResponse, error)
}

type visitorService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewVisitorService(repo *repository.Repository, log *zap.Logger) VisitorService {
	return &visitorService{
		repo: repo,
		log:  log.With(zap.String("service", "visitor")),
	}
}

func (s *visitorService) Register(ctx context.Context, slotID string, req *request.RegisterVisitorRequest) (*response.SlotResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Register visitor validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	id, err := uuid.Parse(slotID)
	if err != nil {
		return nil, fmt.Errorf("invalid slot ID format %s: %w", slotID, err)
	}

	slot, err := s.repo.Slot.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load visitor slot: %w", err)
	}
	if slot == nil {
		return nil, ErrSlotNotFound
	}
	if slot.Status == entity.SlotStatusAdmitted {
		return nil, ErrAlreadyAdmitted
	}

	booking, err := s.repo.Booking.FindByID(ctx, slot.BookingID)
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	if !booking.Status.IsActive() {
		return nil, ErrBookingInactive
	}

	if err := s.repo.Slot.UpdateProfile(ctx, slot.ID, req.FullName, req.Email, entity.SlotStatusRegistered); err != nil {
		return nil, fmt.Errorf("register visitor: %w", err)
	}

	s.log.Info("Visitor registered",
		zap.String("slot_id", slot.ID.String()),
		zap.String("booking_id", slot.BookingID.String()),
	)

	slot.FullName = req.FullName
	email := req.Email
	slot.Email = &email
	slot.Status = entity.SlotStatusRegistered

	resp := response.SlotToResponse(slot)
	return &resp, nil
}

package usecase

import (
	"context"
	"fmt"
	"time"

	"museum-admission/internal/data/entity"
	"museum-admission/internal/data/repository"
	"museum-admission/internal/dto/request"
	"museum-admission/internal/dto/response"
	"museum-admission/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingService covers the thin intake surface: creating a pending booking
// and the staff-desk detail view. Approval workflow lives upstream; the only
// approval path through this subsystem is the issuer's ReserveAndIssue.
type BookingService interface {
	Create(ctx context.Context, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	GetByID(ctx context.Context, bookingID string) (*response.BookingDetailResponse, error)
}

type bookingService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewBookingService(repo *repository.Repository, log *zap.Logger) BookingService {
	return &bookingService{
		repo: repo,
		log:  log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) Create(ctx context.Context, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	visitDate, err := time.Parse("2006-01-02", req.VisitDate)
	if err != nil {
		return nil, fmt.Errorf("invalid visit date %s: %w", req.VisitDate, err)
	}

	if visitDate.Before(time.Now().Truncate(24 * time.Hour)) {
		return nil, fmt.Errorf("cannot book for a past visit date")
	}

	now := time.Now()
	booking := &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Reference:    utils.GenerateBookingReference(),
		VisitDate:    visitDate,
		TimeSlot:     req.TimeSlot,
		VisitorCount: req.VisitorCount,
		Kind:         entity.BookingKind(req.Kind),
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		Status:       entity.BookingStatusPending,
	}

	if err := s.repo.Booking.Create(ctx, booking); err != nil {
		s.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("reference", booking.Reference),
		)
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("reference", booking.Reference),
		zap.String("time_slot", booking.TimeSlot),
		zap.Int("visitor_count", booking.VisitorCount),
	)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) GetByID(ctx context.Context, bookingID string) (*response.BookingDetailResponse, error) {
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

	tokens, err := s.repo.Token.FindByBookingID(ctx, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("load admission tokens: %w", err)
	}

	detail := &response.BookingDetailResponse{
		BookingResponse: response.BookingToResponse(booking),
		Slots:           make([]response.SlotResponse, len(slots)),
		Tokens:          make([]response.TokenResponse, len(tokens)),
	}
	for i, slot := range slots {
		detail.Slots[i] = response.SlotToResponse(slot)
	}
	for i, token := range tokens {
		detail.Tokens[i] = response.TokenToResponse(token)
	}

	return detail, nil
}

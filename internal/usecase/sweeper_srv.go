package usecase

import (
	"context"
	"fmt"
	"time"

	"museum-admission/internal/data/entity"
	"museum-admission/internal/data/repository"
	"museum-admission/pkg/events"
	"museum-admission/pkg/utils"

	"go.uber.org/zap"
)

// SweeperService reclaims what was never used: unconsumed tokens past their
// expiry get marked expired, and fully-unclaimed bookings whose visit window
// has elapsed get archived with their seats released. A booking with even one
// admitted slot is never touched; its remaining visitors may still be en
// route.
type SweeperService interface {
	// Sweep runs one reclamation pass. Idempotent: a second run at the
	// same instant changes nothing.
	Sweep(ctx context.Context, now time.Time) (SweepReport, error)

	// Run sweeps on the configured interval until the context is done.
	Run(ctx context.Context)
}

type SweepReport struct {
	TokensExpired    int64
	BookingsArchived int
	SeatsReleased    int
}

type sweeperService struct {
	repo     *repository.Repository
	capacity CapacityService
	bus      events.Publisher
	horizon  time.Duration
	interval time.Duration
	log      *zap.Logger
}

func NewSweeperService(repo *repository.Repository, capacity CapacityService, bus events.Publisher, config *utils.Config, log *zap.Logger) SweeperService {
	return &sweeperService{
		repo:     repo,
		capacity: capacity,
		bus:      bus,
		horizon:  time.Duration(config.Admission.TokenHorizonHours) * time.Hour,
		interval: time.Duration(config.Admission.SweepIntervalMins) * time.Minute,
		log:      log.With(zap.String("service", "sweeper")),
	}
}

func (s *sweeperService) Sweep(ctx context.Context, now time.Time) (SweepReport, error) {
	var report SweepReport

	expired, err := s.repo.Token.MarkExpiredBefore(ctx, now)
	if err != nil {
		return report, fmt.Errorf("expire tokens: %w", err)
	}
	report.TokensExpired = expired

	// A booking is reclaimable once its visit date plus the token
	// horizon has fully elapsed; approved status means no visitor was
	// ever admitted.
	cutoff := now.Add(-s.horizon)
	bookings, err := s.repo.Booking.FindArchivable(ctx, cutoff)
	if err != nil {
		return report, fmt.Errorf("find archivable bookings: %w", err)
	}

	for _, booking := range bookings {
		_, admitted, err := s.repo.Slot.CountByBookingID(ctx, booking.ID)
		if err != nil {
			s.log.Error("Failed to count slots for archivable booking",
				zap.Error(err),
				zap.String("booking_id", booking.ID.String()),
			)
			continue
		}
		if admitted > 0 {
			continue
		}

		if err := s.repo.Booking.UpdateStatus(ctx, booking.ID, entity.BookingStatusArchived); err != nil {
			s.log.Error("Failed to archive booking",
				zap.Error(err),
				zap.String("booking_id", booking.ID.String()),
			)
			continue
		}

		if err := s.capacity.Release(ctx, booking.VisitDate, booking.TimeSlot, booking.VisitorCount); err != nil {
			s.log.Error("Failed to release seats for archived booking",
				zap.Error(err),
				zap.String("booking_id", booking.ID.String()),
				zap.Int("count", booking.VisitorCount),
			)
			continue
		}

		report.BookingsArchived++
		report.SeatsReleased += booking.VisitorCount

		s.log.Info("Booking archived, seats reclaimed",
			zap.String("booking_id", booking.ID.String()),
			zap.String("reference", booking.Reference),
			zap.Int("seats_released", booking.VisitorCount),
		)

		if s.bus != nil {
			event := events.BookingArchivedEvent{
				BookingID:     booking.ID.String(),
				Reference:     booking.Reference,
				VisitDate:     booking.VisitDate,
				TimeSlot:      booking.TimeSlot,
				SeatsReleased: booking.VisitorCount,
				ArchivedAt:    now,
			}
			if err := s.bus.Publish(ctx, events.BookingArchived, event); err != nil {
				s.log.Warn("Failed to publish booking archived event", zap.Error(err))
			}
		}
	}

	if report.TokensExpired > 0 || report.BookingsArchived > 0 {
		s.log.Info("Sweep completed",
			zap.Int64("tokens_expired", report.TokensExpired),
			zap.Int("bookings_archived", report.BookingsArchived),
			zap.Int("seats_released", report.SeatsReleased),
		)
	}

	return report, nil
}

func (s *sweeperService) Run(ctx context.Context) {
	s.log.Info("Expiry sweeper started", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Expiry sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx, time.Now()); err != nil {
				s.log.Error("Sweep failed", zap.Error(err))
			}
		}
	}
}

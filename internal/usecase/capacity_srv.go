package usecase

import (
	"context"
	"fmt"
	"time"

	"museum-admission/internal/data/repository"
	"museum-admission/pkg/cache"
	"museum-admission/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CapacityService is the admission quota ledger. All reserved-seat mutations
// for one time slot go through here and are totally ordered; different time
// slots proceed in parallel.
type CapacityService interface {
	// Reserve books count seats in the slot. Returns ErrCapacityExceeded
	// when the quota would be exceeded; the reservation id is for audit
	// logging only.
	Reserve(ctx context.Context, visitDate time.Time, timeSlot string, count int) (uuid.UUID, error)

	// Release gives count seats back to the slot.
	Release(ctx context.Context, visitDate time.Time, timeSlot string, count int) error

	// Available returns the remaining seats for a slot.
	Available(ctx context.Context, visitDate time.Time, timeSlot string) (int, error)
}

type capacityService struct {
	repo         *repository.Repository
	availability cache.AvailabilityStore
	slotCapacity int
	locks        keyedLock
	log          *zap.Logger
}

func NewCapacityService(repo *repository.Repository, availability cache.AvailabilityStore, config *utils.Config, log *zap.Logger) CapacityService {
	return &capacityService{
		repo:         repo,
		availability: availability,
		slotCapacity: config.Admission.SlotCapacity,
		log:          log.With(zap.String("service", "capacity")),
	}
}

func slotLockKey(visitDate time.Time, timeSlot string) string {
	return visitDate.Format("2006-01-02") + "/" + timeSlot
}

func (s *capacityService) Reserve(ctx context.Context, visitDate time.Time, timeSlot string, count int) (uuid.UUID, error) {
	if count <= 0 {
		return uuid.Nil, fmt.Errorf("invalid reservation count %d", count)
	}

	unlock := s.locks.lock(slotLockKey(visitDate, timeSlot))
	defer unlock()

	if err := s.repo.Capacity.EnsureRow(ctx, visitDate, timeSlot, s.slotCapacity); err != nil {
		return uuid.Nil, fmt.Errorf("reserve seats: %w", err)
	}

	ok, err := s.repo.Capacity.Reserve(ctx, visitDate, timeSlot, count)
	if err != nil {
		return uuid.Nil, fmt.Errorf("reserve seats: %w", err)
	}
	if !ok {
		s.log.Info("Reservation rejected, slot at capacity",
			zap.String("time_slot", timeSlot),
			zap.Time("visit_date", visitDate),
			zap.Int("count", count),
		)
		return uuid.Nil, ErrCapacityExceeded
	}

	reservationID := utils.GenerateReservationID()

	s.log.Info("Seats reserved",
		zap.String("reservation_id", reservationID.String()),
		zap.String("time_slot", timeSlot),
		zap.Time("visit_date", visitDate),
		zap.Int("count", count),
	)

	s.refreshProjection(ctx, visitDate, timeSlot)

	return reservationID, nil
}

func (s *capacityService) Release(ctx context.Context, visitDate time.Time, timeSlot string, count int) error {
	unlock := s.locks.lock(slotLockKey(visitDate, timeSlot))
	defer unlock()

	if err := s.repo.Capacity.Release(ctx, visitDate, timeSlot, count); err != nil {
		return fmt.Errorf("release seats: %w", err)
	}

	s.log.Info("Seats released",
		zap.String("time_slot", timeSlot),
		zap.Time("visit_date", visitDate),
		zap.Int("count", count),
	)

	s.refreshProjection(ctx, visitDate, timeSlot)

	return nil
}

func (s *capacityService) Available(ctx context.Context, visitDate time.Time, timeSlot string) (int, error) {
	row, err := s.repo.Capacity.Find(ctx, visitDate, timeSlot)
	if err != nil {
		return 0, fmt.Errorf("get availability: %w", err)
	}
	if row == nil {
		// No ledger row yet means nothing reserved.
		return s.slotCapacity, nil
	}
	return row.Available(), nil
}

// refreshProjection rewrites the redis availability count read by the intake
// frontend. Best effort: the ledger table stays authoritative.
func (s *capacityService) refreshProjection(ctx context.Context, visitDate time.Time, timeSlot string) {
	if s.availability == nil {
		return
	}

	row, err := s.repo.Capacity.Find(ctx, visitDate, timeSlot)
	if err != nil || row == nil {
		return
	}

	if err := s.availability.SetAvailable(ctx, visitDate, timeSlot, row.Available()); err != nil {
		s.log.Warn("Failed to update availability projection",
			zap.Error(err),
			zap.String("time_slot", timeSlot),
		)
	}
}

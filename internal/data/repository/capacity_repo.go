package repository

import (
	"context"
	"fmt"
	"time"

	"museum-admission/internal/data/entity"
	"museum-admission/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type CapacityRepository interface {
	// EnsureRow creates the ledger row for a time slot if it does not
	// exist yet, with the configured capacity and zero reserved.
	EnsureRow(ctx context.Context, visitDate time.Time, timeSlot string, capacity int) error

	// Reserve adds count to the reserved total only if it fits within
	// capacity. Returns false when the slot is (or would go) over quota.
	Reserve(ctx context.Context, visitDate time.Time, timeSlot string, count int) (bool, error)

	// Release gives seats back, clamping at zero.
	Release(ctx context.Context, visitDate time.Time, timeSlot string, count int) error

	Find(ctx context.Context, visitDate time.Time, timeSlot string) (*entity.SlotCapacity, error)
}

type capacityRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCapacityRepository(db database.PgxIface, log *zap.Logger) CapacityRepository {
	return &capacityRepository{
		db:  db,
		log: log.With(zap.String("repository", "capacity")),
	}
}

func (r *capacityRepository) EnsureRow(ctx context.Context, visitDate time.Time, timeSlot string, capacity int) error {
	query := `
		INSERT INTO slot_capacity (visit_date, time_slot, capacity, reserved)
		VALUES ($1, $2, $3, 0)
		ON CONFLICT (visit_date, time_slot) DO NOTHING
	`

	_, err := r.db.Exec(ctx, query, visitDate, timeSlot, capacity)
	if err != nil {
		r.log.Error("Failed to ensure capacity row",
			zap.Error(err),
			zap.String("time_slot", timeSlot),
		)
		return fmt.Errorf("ensure capacity row %s: %w", timeSlot, err)
	}

	return nil
}

func (r *capacityRepository) Reserve(ctx context.Context, visitDate time.Time, timeSlot string, count int) (bool, error) {
	query := `
		UPDATE slot_capacity
		SET reserved = reserved + $3
		WHERE visit_date = $1 AND time_slot = $2 AND reserved + $3 <= capacity
	`

	result, err := r.db.Exec(ctx, query, visitDate, timeSlot, count)
	if err != nil {
		r.log.Error("Failed to reserve capacity",
			zap.Error(err),
			zap.String("time_slot", timeSlot),
			zap.Int("count", count),
		)
		return false, fmt.Errorf("reserve %d seats for %s: %w", count, timeSlot, err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *capacityRepository) Release(ctx context.Context, visitDate time.Time, timeSlot string, count int) error {
	query := `
		UPDATE slot_capacity
		SET reserved = GREATEST(reserved - $3, 0)
		WHERE visit_date = $1 AND time_slot = $2
	`

	_, err := r.db.Exec(ctx, query, visitDate, timeSlot, count)
	if err != nil {
		r.log.Error("Failed to release capacity",
			zap.Error(err),
			zap.String("time_slot", timeSlot),
			zap.Int("count", count),
		)
		return fmt.Errorf("release %d seats for %s: %w", count, timeSlot, err)
	}

	return nil
}

func (r *capacityRepository) Find(ctx context.Context, visitDate time.Time, timeSlot string) (*entity.SlotCapacity, error) {
	query := `
		SELECT visit_date, time_slot, capacity, reserved
		FROM slot_capacity
		WHERE visit_date = $1 AND time_slot = $2
	`

	var row entity.SlotCapacity
	err := r.db.QueryRow(ctx, query, visitDate, timeSlot).Scan(
		&row.VisitDate,
		&row.TimeSlot,
		&row.Capacity,
		&row.Reserved,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find capacity row",
			zap.Error(err),
			zap.String("time_slot", timeSlot),
		)
		return nil, fmt.Errorf("find capacity row %s: %w", timeSlot, err)
	}

	return &row, nil
}

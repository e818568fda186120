package repository

import (
	"context"
	"fmt"
	"time"

	"museum-admission/internal/data/entity"
	"museum-admission/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type VisitorSlotRepository interface {
	CreateBatch(ctx context.Context, slots []*entity.VisitorSlot) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.VisitorSlot, error)
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.VisitorSlot, error)
	CountByBookingID(ctx context.Context, bookingID uuid.UUID) (total int, admitted int, err error)
	UpdateProfile(ctx context.Context, slotID uuid.UUID, fullName, email string, status entity.SlotStatus) error

	// FindUnclaimedByEmailAndRole serves the legacy payload fallback only.
	// Returns matches newest-first so the caller can detect ambiguity.
	FindUnclaimedByEmailAndRole(ctx context.Context, email string, role entity.SlotRole) ([]*entity.VisitorSlot, error)

	// Admit is the single check-and-set for the at-most-once guarantee:
	// the row moves to admitted only if it is not admitted yet. Returns
	// false when a concurrent scan already won.
	Admit(ctx context.Context, slotID uuid.UUID, at time.Time) (bool, error)
}

type visitorSlotRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewVisitorSlotRepository(db database.PgxIface, log *zap.Logger) VisitorSlotRepository {
	return &visitorSlotRepository{
		db:  db,
		log: log.With(zap.String("repository", "visitor_slot")),
	}
}

const slotColumns = `id, booking_id, role, full_name, email, status, admitted_at, created_at, updated_at`

func (r *visitorSlotRepository) CreateBatch(ctx context.Context, slots []*entity.VisitorSlot) error {
	query := `
		INSERT INTO visitor_slots (` + slotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	for _, slot := range slots {
		_, err := r.db.Exec(ctx, query,
			slot.ID,
			slot.BookingID,
			slot.Role,
			slot.FullName,
			slot.Email,
			slot.Status,
			slot.AdmittedAt,
			slot.CreatedAt,
			slot.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to create visitor slot",
				zap.Error(err),
				zap.String("slot_id", slot.ID.String()),
				zap.String("booking_id", slot.BookingID.String()),
			)
			return fmt.Errorf("create visitor slot %s: %w", slot.ID.String(), err)
		}
	}

	return nil
}

func (r *visitorSlotRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.VisitorSlot, error) {
	query := `SELECT ` + slotColumns + ` FROM visitor_slots WHERE id = $1`

	slot, err := r.scanSlot(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find visitor slot by ID",
			zap.Error(err),
			zap.String("slot_id", id.String()),
		)
		return nil, fmt.Errorf("find visitor slot by ID %s: %w", id.String(), err)
	}

	return slot, nil
}

func (r *visitorSlotRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.VisitorSlot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM visitor_slots
		WHERE booking_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, bookingID)
	if err != nil {
		r.log.Error("Failed to find visitor slots by booking ID",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("find visitor slots by booking ID %s: %w", bookingID.String(), err)
	}
	defer rows.Close()

	var slots []*entity.VisitorSlot
	for rows.Next() {
		slot, err := r.scanSlot(rows)
		if err != nil {
			r.log.Error("Failed to scan visitor slot row", zap.Error(err))
			return nil, fmt.Errorf("scan visitor slot row: %w", err)
		}
		slots = append(slots, slot)
	}

	return slots, nil
}

func (r *visitorSlotRepository) CountByBookingID(ctx context.Context, bookingID uuid.UUID) (int, int, error) {
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE status = $2)
		FROM visitor_slots
		WHERE booking_id = $1
	`

	var total, admitted int
	err := r.db.QueryRow(ctx, query, bookingID, entity.SlotStatusAdmitted).Scan(&total, &admitted)
	if err != nil {
		r.log.Error("Failed to count visitor slots",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return 0, 0, fmt.Errorf("count visitor slots for booking %s: %w", bookingID.String(), err)
	}

	return total, admitted, nil
}

func (r *visitorSlotRepository) UpdateProfile(ctx context.Context, slotID uuid.UUID, fullName, email string, status entity.SlotStatus) error {
	query := `
		UPDATE visitor_slots
		SET full_name = $2, email = $3, status = $4, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, slotID, fullName, email, status)
	if err != nil {
		r.log.Error("Failed to update visitor slot profile",
			zap.Error(err),
			zap.String("slot_id", slotID.String()),
		)
		return fmt.Errorf("update visitor slot %s profile: %w", slotID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("visitor slot %s not found", slotID.String())
	}

	return nil
}

func (r *visitorSlotRepository) FindUnclaimedByEmailAndRole(ctx context.Context, email string, role entity.SlotRole) ([]*entity.VisitorSlot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM visitor_slots
		WHERE email = $1 AND role = $2 AND status IN ($3, $4)
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, email, role, entity.SlotStatusUnclaimed, entity.SlotStatusRegistered)
	if err != nil {
		r.log.Error("Failed to find unclaimed slots by email and role",
			zap.Error(err),
			zap.String("role", string(role)),
		)
		return nil, fmt.Errorf("find unclaimed slots by email and role %s: %w", string(role), err)
	}
	defer rows.Close()

	var slots []*entity.VisitorSlot
	for rows.Next() {
		slot, err := r.scanSlot(rows)
		if err != nil {
			r.log.Error("Failed to scan visitor slot row", zap.Error(err))
			return nil, fmt.Errorf("scan visitor slot row: %w", err)
		}
		slots = append(slots, slot)
	}

	return slots, nil
}

func (r *visitorSlotRepository) Admit(ctx context.Context, slotID uuid.UUID, at time.Time) (bool, error) {
	query := `
		UPDATE visitor_slots
		SET status = $2, admitted_at = $3, updated_at = NOW()
		WHERE id = $1 AND status <> $2
	`

	result, err := r.db.Exec(ctx, query, slotID, entity.SlotStatusAdmitted, at)
	if err != nil {
		r.log.Error("Failed to admit visitor slot",
			zap.Error(err),
			zap.String("slot_id", slotID.String()),
		)
		return false, fmt.Errorf("admit visitor slot %s: %w", slotID.String(), err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *visitorSlotRepository) scanSlot(row pgx.Row) (*entity.VisitorSlot, error) {
	var slot entity.VisitorSlot
	err := row.Scan(
		&slot.ID,
		&slot.BookingID,
		&slot.Role,
		&slot.FullName,
		&slot.Email,
		&slot.Status,
		&slot.AdmittedAt,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

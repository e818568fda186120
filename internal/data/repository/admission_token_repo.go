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

type AdmissionTokenRepository interface {
	CreateBatch(ctx context.Context, tokens []*entity.AdmissionToken) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.AdmissionToken, error)
	FindBySlotID(ctx context.Context, slotID uuid.UUID) (*entity.AdmissionToken, error)
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.AdmissionToken, error)

	// Consume flips the consumption flag at most once. Returns false when
	// the token was already consumed.
	Consume(ctx context.Context, tokenID uuid.UUID, at time.Time) (bool, error)

	// MarkExpiredBefore expires every unconsumed active token whose expiry
	// has passed. Returns the number of tokens expired.
	MarkExpiredBefore(ctx context.Context, now time.Time) (int64, error)
}

type admissionTokenRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewAdmissionTokenRepository(db database.PgxIface, log *zap.Logger) AdmissionTokenRepository {
	return &admissionTokenRepository{
		db:  db,
		log: log.With(zap.String("repository", "admission_token")),
	}
}

const tokenColumns = `id, slot_id, booking_id, issued_at, expires_at, consumed, consumed_at, status, payload`

func (r *admissionTokenRepository) CreateBatch(ctx context.Context, tokens []*entity.AdmissionToken) error {
	query := `
		INSERT INTO admission_tokens (` + tokenColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	for _, token := range tokens {
		_, err := r.db.Exec(ctx, query,
			token.ID,
			token.SlotID,
			token.BookingID,
			token.IssuedAt,
			token.ExpiresAt,
			token.Consumed,
			token.ConsumedAt,
			token.Status,
			token.Payload,
		)
		if err != nil {
			r.log.Error("Failed to create admission token",
				zap.Error(err),
				zap.String("token_id", token.ID.String()),
				zap.String("booking_id", token.BookingID.String()),
			)
			return fmt.Errorf("create admission token %s: %w", token.ID.String(), err)
		}
	}

	return nil
}

func (r *admissionTokenRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.AdmissionToken, error) {
	query := `SELECT ` + tokenColumns + ` FROM admission_tokens WHERE id = $1`

	token, err := r.scanToken(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find admission token by ID",
			zap.Error(err),
			zap.String("token_id", id.String()),
		)
		return nil, fmt.Errorf("find admission token by ID %s: %w", id.String(), err)
	}

	return token, nil
}

func (r *admissionTokenRepository) FindBySlotID(ctx context.Context, slotID uuid.UUID) (*entity.AdmissionToken, error) {
	query := `
		SELECT ` + tokenColumns + `
		FROM admission_tokens
		WHERE slot_id = $1
		ORDER BY issued_at DESC
		LIMIT 1
	`

	token, err := r.scanToken(r.db.QueryRow(ctx, query, slotID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find admission token by slot ID",
			zap.Error(err),
			zap.String("slot_id", slotID.String()),
		)
		return nil, fmt.Errorf("find admission token by slot ID %s: %w", slotID.String(), err)
	}

	return token, nil
}

func (r *admissionTokenRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.AdmissionToken, error) {
	query := `
		SELECT ` + tokenColumns + `
		FROM admission_tokens
		WHERE booking_id = $1
		ORDER BY issued_at
	`

	rows, err := r.db.Query(ctx, query, bookingID)
	if err != nil {
		r.log.Error("Failed to find admission tokens by booking ID",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("find admission tokens by booking ID %s: %w", bookingID.String(), err)
	}
	defer rows.Close()

	var tokens []*entity.AdmissionToken
	for rows.Next() {
		token, err := r.scanToken(rows)
		if err != nil {
			r.log.Error("Failed to scan admission token row", zap.Error(err))
			return nil, fmt.Errorf("scan admission token row: %w", err)
		}
		tokens = append(tokens, token)
	}

	return tokens, nil
}

func (r *admissionTokenRepository) Consume(ctx context.Context, tokenID uuid.UUID, at time.Time) (bool, error) {
	query := `
		UPDATE admission_tokens
		SET consumed = TRUE, consumed_at = $2, status = $3
		WHERE id = $1 AND consumed = FALSE
	`

	result, err := r.db.Exec(ctx, query, tokenID, at, entity.TokenStatusConsumed)
	if err != nil {
		r.log.Error("Failed to consume admission token",
			zap.Error(err),
			zap.String("token_id", tokenID.String()),
		)
		return false, fmt.Errorf("consume admission token %s: %w", tokenID.String(), err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *admissionTokenRepository) MarkExpiredBefore(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE admission_tokens
		SET status = $2
		WHERE consumed = FALSE AND status = $3 AND expires_at < $1
	`

	result, err := r.db.Exec(ctx, query, now, entity.TokenStatusExpired, entity.TokenStatusActive)
	if err != nil {
		r.log.Error("Failed to expire admission tokens",
			zap.Error(err),
			zap.Time("now", now),
		)
		return 0, fmt.Errorf("expire admission tokens before %s: %w", now.Format(time.RFC3339), err)
	}

	return result.RowsAffected(), nil
}

func (r *admissionTokenRepository) scanToken(row pgx.Row) (*entity.AdmissionToken, error) {
	var token entity.AdmissionToken
	err := row.Scan(
		&token.ID,
		&token.SlotID,
		&token.BookingID,
		&token.IssuedAt,
		&token.ExpiresAt,
		&token.Consumed,
		&token.ConsumedAt,
		&token.Status,
		&token.Payload,
	)
	if err != nil {
		return nil, err
	}
	return &token, nil
}

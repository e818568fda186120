package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"museum-admission/internal/data/entity"
	"museum-admission/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReserveAndIssueMintsCredentialSet(t *testing.T) {
	booking := approvedBooking(3)

	var createdSlots []*entity.VisitorSlot
	var createdTokens []*entity.AdmissionToken
	var approvedStatus entity.BookingStatus

	bookingRepo := &mockBookingRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
			return booking, nil
		},
		updateStatusFn: func(ctx context.Context, bookingID uuid.UUID, status entity.BookingStatus) error {
			approvedStatus = status
			return nil
		},
	}
	slotRepo := &mockSlotRepo{
		createBatchFn: func(ctx context.Context, slots []*entity.VisitorSlot) error {
			createdSlots = slots
			return nil
		},
	}
	tokenRepo := &mockTokenRepo{
		createBatchFn: func(ctx context.Context, tokens []*entity.AdmissionToken) error {
			createdTokens = tokens
			return nil
		},
	}

	var reservedCount int
	capacity := &mockCapacityService{
		reserveFn: func(ctx context.Context, visitDate time.Time, timeSlot string, count int) (uuid.UUID, error) {
			reservedCount = count
			return uuid.New(), nil
		},
	}
	bus := &mockPublisher{}

	svc := NewIssuerService(testRepo(bookingRepo, slotRepo, tokenRepo, nil), capacity, bus, testConfig(), zap.NewNop())

	tokens, err := svc.ReserveAndIssue(context.Background(), booking.ID.String())

	require.NoError(t, err)
	assert.Equal(t, 3, reservedCount)
	require.Len(t, createdSlots, 3)
	require.Len(t, createdTokens, 2)
	assert.Len(t, tokens, 2)

	primary := createdSlots[0]
	assert.Equal(t, entity.SlotRolePrimary, primary.Role)
	assert.Equal(t, booking.ContactName, primary.FullName)
	require.NotNil(t, primary.Email)
	assert.Equal(t, booking.ContactEmail, *primary.Email)

	for _, slot := range createdSlots[1:] {
		assert.Equal(t, entity.SlotRoleAdditional, slot.Role)
		assert.Equal(t, entity.SlotStatusUnclaimed, slot.Status)
	}
	for _, token := range createdTokens {
		assert.Equal(t, booking.VisitDate.Add(24*time.Hour), token.ExpiresAt)
		assert.Equal(t, entity.TokenStatusActive, token.Status)
		assert.False(t, token.Consumed)
		assert.NotEmpty(t, token.Payload)
	}

	assert.Equal(t, entity.BookingStatusApproved, approvedStatus)
	assert.Equal(t, 1, bus.published(events.TokensIssued))
}

func TestReserveAndIssueIsIdempotent(t *testing.T) {
	booking := approvedBooking(2)
	existingSlot := &entity.VisitorSlot{
		Base:      entity.Base{ID: uuid.New()},
		BookingID: booking.ID,
		Role:      entity.SlotRolePrimary,
		Status:    entity.SlotStatusUnclaimed,
	}
	existingToken := &entity.AdmissionToken{ID: uuid.New(), BookingID: booking.ID}

	createCalled := false
	bookingRepo := &mockBookingRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
			return booking, nil
		},
	}
	slotRepo := &mockSlotRepo{
		findByBookingFn: func(ctx context.Context, bookingID uuid.UUID) ([]*entity.VisitorSlot, error) {
			return []*entity.VisitorSlot{existingSlot}, nil
		},
		createBatchFn: func(ctx context.Context, slots []*entity.VisitorSlot) error {
			createCalled = true
			return nil
		},
	}
	tokenRepo := &mockTokenRepo{
		findByBookingFn: func(ctx context.Context, bookingID uuid.UUID) ([]*entity.AdmissionToken, error) {
			return []*entity.AdmissionToken{existingToken}, nil
		},
	}

	reserveCalled := false
	capacity := &mockCapacityService{
		reserveFn: func(ctx context.Context, visitDate time.Time, timeSlot string, count int) (uuid.UUID, error) {
			reserveCalled = true
			return uuid.New(), nil
		},
	}

	svc := NewIssuerService(testRepo(bookingRepo, slotRepo, tokenRepo, nil), capacity, nil, testConfig(), zap.NewNop())

	tokens, err := svc.ReserveAndIssue(context.Background(), booking.ID.String())

	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, existingToken.ID, tokens[0].ID)
	assert.False(t, reserveCalled, "retried issuance must not reserve seats again")
	assert.False(t, createCalled, "retried issuance must not mint new slots")
}

func TestReserveAndIssueCapacityExceededMintsNothing(t *testing.T) {
	booking := approvedBooking(5)

	createCalled := false
	bookingRepo := &mockBookingRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
			return booking, nil
		},
	}
	slotRepo := &mockSlotRepo{
		createBatchFn: func(ctx context.Context, slots []*entity.VisitorSlot) error {
			createCalled = true
			return nil
		},
	}
	capacity := &mockCapacityService{
		reserveFn: func(ctx context.Context, visitDate time.Time, timeSlot string, count int) (uuid.UUID, error) {
			return uuid.Nil, ErrCapacityExceeded
		},
	}

	svc := NewIssuerService(testRepo(bookingRepo, slotRepo, nil, nil), capacity, nil, testConfig(), zap.NewNop())

	tokens, err := svc.ReserveAndIssue(context.Background(), booking.ID.String())

	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Nil(t, tokens)
	assert.False(t, createCalled)
}

func TestReserveAndIssueReleasesSeatsWhenMintFails(t *testing.T) {
	booking := approvedBooking(4)

	bookingRepo := &mockBookingRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
			return booking, nil
		},
	}
	slotRepo := &mockSlotRepo{
		createBatchFn: func(ctx context.Context, slots []*entity.VisitorSlot) error {
			return errors.New("unique violation")
		},
	}
	capacity := &mockCapacityService{}

	svc := NewIssuerService(testRepo(bookingRepo, slotRepo, nil, nil), capacity, nil, testConfig(), zap.NewNop())

	_, err := svc.ReserveAndIssue(context.Background(), booking.ID.String())

	assert.Error(t, err)
	assert.Equal(t, []int{4}, capacity.released)
}

func TestReserveAndIssueBookingNotFound(t *testing.T) {
	svc := NewIssuerService(testRepo(nil, nil, nil, nil), &mockCapacityService{}, nil, testConfig(), zap.NewNop())

	_, err := svc.ReserveAndIssue(context.Background(), uuid.New().String())

	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestReserveAndIssueInactiveBooking(t *testing.T) {
	booking := approvedBooking(2)
	booking.Status = entity.BookingStatusCancelled

	bookingRepo := &mockBookingRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
			return booking, nil
		},
	}
	svc := NewIssuerService(testRepo(bookingRepo, nil, nil, nil), &mockCapacityService{}, nil, testConfig(), zap.NewNop())

	_, err := svc.ReserveAndIssue(context.Background(), booking.ID.String())

	assert.ErrorIs(t, err, ErrBookingInactive)
}

func TestPayloadsCoverEverySlot(t *testing.T) {
	booking := approvedBooking(2)
	contactEmail := booking.ContactEmail
	primary := &entity.VisitorSlot{
		Base:      entity.Base{ID: uuid.New()},
		BookingID: booking.ID,
		Role:      entity.SlotRolePrimary,
		FullName:  booking.ContactName,
		Email:     &contactEmail,
		Status:    entity.SlotStatusUnclaimed,
	}
	additional := &entity.VisitorSlot{
		Base:      entity.Base{ID: uuid.New()},
		BookingID: booking.ID,
		Role:      entity.SlotRoleAdditional,
		Status:    entity.SlotStatusUnclaimed,
	}
	token := &entity.AdmissionToken{ID: uuid.New(), SlotID: additional.ID, BookingID: booking.ID}

	bookingRepo := &mockBookingRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
			return booking, nil
		},
	}
	slotRepo := &mockSlotRepo{
		findByBookingFn: func(ctx context.Context, bookingID uuid.UUID) ([]*entity.VisitorSlot, error) {
			return []*entity.VisitorSlot{primary, additional}, nil
		},
	}
	tokenRepo := &mockTokenRepo{
		findBySlotIDFn: func(ctx context.Context, slotID uuid.UUID) (*entity.AdmissionToken, error) {
			if slotID == additional.ID {
				return token, nil
			}
			return nil, nil
		},
	}

	svc := NewIssuerService(testRepo(bookingRepo, slotRepo, tokenRepo, nil), &mockCapacityService{}, nil, testConfig(), zap.NewNop())

	payloads, err := svc.Payloads(context.Background(), booking.ID.String())

	require.NoError(t, err)
	require.Len(t, payloads, 2)

	assert.Equal(t, primary.ID.String(), payloads[0].SlotID)
	assert.Empty(t, payloads[0].TokenID)
	assert.Equal(t, booking.ContactEmail, payloads[0].Email)

	assert.Equal(t, token.ID.String(), payloads[1].TokenID)
	assert.Empty(t, payloads[1].SlotID)
}

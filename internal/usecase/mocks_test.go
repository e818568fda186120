package usecase

import (
	"context"
	"sync"
	"time"

	"museum-admission/internal/data/entity"
	"museum-admission/internal/data/repository"
	"museum-admission/pkg/utils"

	"github.com/google/uuid"
)

// --- Mock repositories, function-field style. Unset functions return zero
// values so tests only wire what they exercise. ---

type mockBookingRepo struct {
	createFn         func(ctx context.Context, booking *entity.Booking) error
	findByIDFn       func(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	updateStatusFn   func(ctx context.Context, bookingID uuid.UUID, status entity.BookingStatus) error
	findArchivableFn func(ctx context.Context, cutoff time.Time) ([]*entity.Booking, error)
}

func (m *mockBookingRepo) Create(ctx context.Context, booking *entity.Booking) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, booking)
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	if m.findByIDFn == nil {
		return nil, nil
	}
	return m.findByIDFn(ctx, id)
}

func (m *mockBookingRepo) FindByReference(ctx context.Context, reference string) (*entity.Booking, error) {
	return nil, nil
}

func (m *mockBookingRepo) UpdateStatus(ctx context.Context, bookingID uuid.UUID, status entity.BookingStatus) error {
	if m.updateStatusFn == nil {
		return nil
	}
	return m.updateStatusFn(ctx, bookingID, status)
}

func (m *mockBookingRepo) FindArchivable(ctx context.Context, cutoff time.Time) ([]*entity.Booking, error) {
	if m.findArchivableFn == nil {
		return nil, nil
	}
	return m.findArchivableFn(ctx, cutoff)
}

type mockSlotRepo struct {
	createBatchFn     func(ctx context.Context, slots []*entity.VisitorSlot) error
	findByIDFn        func(ctx context.Context, id uuid.UUID) (*entity.VisitorSlot, error)
	findByBookingFn   func(ctx context.Context, bookingID uuid.UUID) ([]*entity.VisitorSlot, error)
	countByBookingFn  func(ctx context.Context, bookingID uuid.UUID) (int, int, error)
	updateProfileFn   func(ctx context.Context, slotID uuid.UUID, fullName, email string, status entity.SlotStatus) error
	findUnclaimedFn   func(ctx context.Context, email string, role entity.SlotRole) ([]*entity.VisitorSlot, error)
	admitFn           func(ctx context.Context, slotID uuid.UUID, at time.Time) (bool, error)
}

func (m *mockSlotRepo) CreateBatch(ctx context.Context, slots []*entity.VisitorSlot) error {
	if m.createBatchFn == nil {
		return nil
	}
	return m.createBatchFn(ctx, slots)
}

func (m *mockSlotRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.VisitorSlot, error) {
	if m.findByIDFn == nil {
		return nil, nil
	}
	return m.findByIDFn(ctx, id)
}

func (m *mockSlotRepo) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.VisitorSlot, error) {
	if m.findByBookingFn == nil {
		return nil, nil
	}
	return m.findByBookingFn(ctx, bookingID)
}

func (m *mockSlotRepo) CountByBookingID(ctx context.Context, bookingID uuid.UUID) (int, int, error) {
	if m.countByBookingFn == nil {
		return 0, 0, nil
	}
	return m.countByBookingFn(ctx, bookingID)
}

func (m *mockSlotRepo) UpdateProfile(ctx context.Context, slotID uuid.UUID, fullName, email string, status entity.SlotStatus) error {
	if m.updateProfileFn == nil {
		return nil
	}
	return m.updateProfileFn(ctx, slotID, fullName, email, status)
}

func (m *mockSlotRepo) FindUnclaimedByEmailAndRole(ctx context.Context, email string, role entity.SlotRole) ([]*entity.VisitorSlot, error) {
	if m.findUnclaimedFn == nil {
		return nil, nil
	}
	return m.findUnclaimedFn(ctx, email, role)
}

func (m *mockSlotRepo) Admit(ctx context.Context, slotID uuid.UUID, at time.Time) (bool, error) {
	if m.admitFn == nil {
		return true, nil
	}
	return m.admitFn(ctx, slotID, at)
}

type mockTokenRepo struct {
	createBatchFn       func(ctx context.Context, tokens []*entity.AdmissionToken) error
	findByIDFn          func(ctx context.Context, id uuid.UUID) (*entity.AdmissionToken, error)
	findBySlotIDFn      func(ctx context.Context, slotID uuid.UUID) (*entity.AdmissionToken, error)
	findByBookingFn     func(ctx context.Context, bookingID uuid.UUID) ([]*entity.AdmissionToken, error)
	consumeFn           func(ctx context.Context, tokenID uuid.UUID, at time.Time) (bool, error)
	markExpiredBeforeFn func(ctx context.Context, now time.Time) (int64, error)
}

func (m *mockTokenRepo) CreateBatch(ctx context.Context, tokens []*entity.AdmissionToken) error {
	if m.createBatchFn == nil {
		return nil
	}
	return m.createBatchFn(ctx, tokens)
}

func (m *mockTokenRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.AdmissionToken, error) {
	if m.findByIDFn == nil {
		return nil, nil
	}
	return m.findByIDFn(ctx, id)
}

func (m *mockTokenRepo) FindBySlotID(ctx context.Context, slotID uuid.UUID) (*entity.AdmissionToken, error) {
	if m.findBySlotIDFn == nil {
		return nil, nil
	}
	return m.findBySlotIDFn(ctx, slotID)
}

func (m *mockTokenRepo) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.AdmissionToken, error) {
	if m.findByBookingFn == nil {
		return nil, nil
	}
	return m.findByBookingFn(ctx, bookingID)
}

func (m *mockTokenRepo) Consume(ctx context.Context, tokenID uuid.UUID, at time.Time) (bool, error) {
	if m.consumeFn == nil {
		return true, nil
	}
	return m.consumeFn(ctx, tokenID, at)
}

func (m *mockTokenRepo) MarkExpiredBefore(ctx context.Context, now time.Time) (int64, error) {
	if m.markExpiredBeforeFn == nil {
		return 0, nil
	}
	return m.markExpiredBeforeFn(ctx, now)
}

type mockCapacityRepo struct {
	ensureRowFn func(ctx context.Context, visitDate time.Time, timeSlot string, capacity int) error
	reserveFn   func(ctx context.Context, visitDate time.Time, timeSlot string, count int) (bool, error)
	releaseFn   func(ctx context.Context, visitDate time.Time, timeSlot string, count int) error
	findFn      func(ctx context.Context, visitDate time.Time, timeSlot string) (*entity.SlotCapacity, error)
}

func (m *mockCapacityRepo) EnsureRow(ctx context.Context, visitDate time.Time, timeSlot string, capacity int) error {
	if m.ensureRowFn == nil {
		return nil
	}
	return m.ensureRowFn(ctx, visitDate, timeSlot, capacity)
}

func (m *mockCapacityRepo) Reserve(ctx context.Context, visitDate time.Time, timeSlot string, count int) (bool, error) {
	if m.reserveFn == nil {
		return true, nil
	}
	return m.reserveFn(ctx, visitDate, timeSlot, count)
}

func (m *mockCapacityRepo) Release(ctx context.Context, visitDate time.Time, timeSlot string, count int) error {
	if m.releaseFn == nil {
		return nil
	}
	return m.releaseFn(ctx, visitDate, timeSlot, count)
}

func (m *mockCapacityRepo) Find(ctx context.Context, visitDate time.Time, timeSlot string) (*entity.SlotCapacity, error) {
	if m.findFn == nil {
		return nil, nil
	}
	return m.findFn(ctx, visitDate, timeSlot)
}

// --- Mock capacity service for issuer and sweeper tests ---

type mockCapacityService struct {
	reserveFn func(ctx context.Context, visitDate time.Time, timeSlot string, count int) (uuid.UUID, error)
	releaseFn func(ctx context.Context, visitDate time.Time, timeSlot string, count int) error

	mu       sync.Mutex
	released []int
}

func (m *mockCapacityService) Reserve(ctx context.Context, visitDate time.Time, timeSlot string, count int) (uuid.UUID, error) {
	if m.reserveFn == nil {
		return uuid.New(), nil
	}
	return m.reserveFn(ctx, visitDate, timeSlot, count)
}

func (m *mockCapacityService) Release(ctx context.Context, visitDate time.Time, timeSlot string, count int) error {
	m.mu.Lock()
	m.released = append(m.released, count)
	m.mu.Unlock()
	if m.releaseFn == nil {
		return nil
	}
	return m.releaseFn(ctx, visitDate, timeSlot, count)
}

func (m *mockCapacityService) Available(ctx context.Context, visitDate time.Time, timeSlot string) (int, error) {
	return 0, nil
}

// --- Mock event publisher ---

type mockPublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (m *mockPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subjects = append(m.subjects, subject)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func (m *mockPublisher) published(subject string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.subjects {
		if s == subject {
			n++
		}
	}
	return n
}

// --- Mock availability projection ---

type mockAvailability struct {
	mu     sync.Mutex
	writes map[string]int
}

func newMockAvailability() *mockAvailability {
	return &mockAvailability{writes: map[string]int{}}
}

func (m *mockAvailability) SetAvailable(ctx context.Context, visitDate time.Time, timeSlot string, available int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes[timeSlot] = available
	return nil
}

func (m *mockAvailability) GetAvailable(ctx context.Context, visitDate time.Time, timeSlot string) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.writes[timeSlot]
	return v, ok, nil
}

func (m *mockAvailability) Close() error { return nil }

// --- Shared helpers ---

func testConfig() *utils.Config {
	return &utils.Config{
		Admission: utils.AdmissionConfig{
			SlotCapacity:      10,
			TokenHorizonHours: 24,
			SweepIntervalMins: 15,
		},
	}
}

func testRepo(booking *mockBookingRepo, slot *mockSlotRepo, token *mockTokenRepo, capacity *mockCapacityRepo) *repository.Repository {
	if booking == nil {
		booking = &mockBookingRepo{}
	}
	if slot == nil {
		slot = &mockSlotRepo{}
	}
	if token == nil {
		token = &mockTokenRepo{}
	}
	if capacity == nil {
		capacity = &mockCapacityRepo{}
	}
	return &repository.Repository{
		Booking:  booking,
		Slot:     slot,
		Token:    token,
		Capacity: capacity,
	}
}

func approvedBooking(visitorCount int) *entity.Booking {
	now := time.Now()
	return &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Reference:    "MUS-20260901-101500-0001",
		VisitDate:    time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		TimeSlot:     "morning-10",
		VisitorCount: visitorCount,
		Kind:         entity.BookingKindIndividual,
		ContactName:  "Maja Novak",
		ContactEmail: "maja@example.com",
		Status:       entity.BookingStatusApproved,
	}
}

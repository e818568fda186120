package usecase

import (
	"context"
	"fmt"

	"museum-admission/internal/data/entity"
	"museum-admission/internal/data/repository"
	"museum-admission/internal/payload"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ResolvedCredential is a scanned code mapped back to its slot and booking.
// Token is nil for the primary visitor's credential.
type ResolvedCredential struct {
	Slot     *entity.VisitorSlot
	Booking  *entity.Booking
	Token    *entity.AdmissionToken
	Strategy string
}

// ResolverService turns raw, untrusted scan content into a credential. The
// content may be a current-format payload, a legacy payload missing fields,
// or garbage.
type ResolverService interface {
	Resolve(ctx context.Context, raw string) (*ResolvedCredential, error)
}

// resolveStrategy is one lookup attempt: pure function of payload and store.
// Returns nil without error when it simply does not match.
type resolveStrategy struct {
	name string
	fn   func(ctx context.Context, p *payload.CodePayload) (*ResolvedCredential, error)
}

type resolverService struct {
	repo       *repository.Repository
	strategies []resolveStrategy
	log        *zap.Logger
}

func NewResolverService(repo *repository.Repository, log *zap.Logger) ResolverService {
	s := &resolverService{
		repo: repo,
		log:  log.With(zap.String("service", "resolver")),
	}

	// Fixed priority order; first match wins.
	s.strategies = []resolveStrategy{
		{name: "token_id", fn: s.byTokenID},
		{name: "slot_id", fn: s.bySlotID},
		{name: "email_role", fn: s.byEmailAndRole},
	}

	return s
}

func (s *resolverService) Resolve(ctx context.Context, raw string) (*ResolvedCredential, error) {
	p, err := payload.Decode(raw)
	if err != nil {
		s.log.Warn("Scan content is not a readable payload",
			zap.String("raw", raw),
		)
		return nil, ErrUnresolvable
	}

	for _, strategy := range s.strategies {
		cred, err := strategy.fn(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("resolve via %s: %w", strategy.name, err)
		}

		matched := cred != nil
		s.log.Debug("Resolution strategy tried",
			zap.String("strategy", strategy.name),
			zap.Bool("matched", matched),
		)

		if matched {
			cred.Strategy = strategy.name
			s.log.Info("Scan resolved",
				zap.String("strategy", strategy.name),
				zap.String("slot_id", cred.Slot.ID.String()),
				zap.String("booking_id", cred.Booking.ID.String()),
			)
			return cred, nil
		}
	}

	s.log.Warn("Scan content matched no strategy",
		zap.String("raw", raw),
	)
	return nil, ErrUnresolvable
}

// byTokenID is the preferred path: exact token lookup, succeeds for every
// credential issued under the current scheme.
func (s *resolverService) byTokenID(ctx context.Context, p *payload.CodePayload) (*ResolvedCredential, error) {
	tokenID, err := uuid.Parse(p.TokenID)
	if err != nil {
		return nil, nil
	}

	token, err := s.repo.Token.FindByID(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, nil
	}

	return s.load(ctx, token.SlotID, token)
}

// bySlotID serves payloads that carry the visitor slot directly: the primary
// visitor's credential, which has no separate token.
func (s *resolverService) bySlotID(ctx context.Context, p *payload.CodePayload) (*ResolvedCredential, error) {
	slotID, err := uuid.Parse(p.SlotID)
	if err != nil {
		return nil, nil
	}

	slot, err := s.repo.Slot.FindByID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, nil
	}

	token, err := s.repo.Token.FindBySlotID(ctx, slot.ID)
	if err != nil {
		return nil, err
	}

	return s.assemble(ctx, slot, token)
}

// byEmailAndRole is the legacy fallback for old-format codes that only carry
// an email and a role marker. It resolves to the most recently created
// still-unclaimed matching slot, refuses ambiguous matches, and is never
// consulted when the payload names a token id.
func (s *resolverService) byEmailAndRole(ctx context.Context, p *payload.CodePayload) (*ResolvedCredential, error) {
	if p.TokenID != "" {
		return nil, nil
	}
	if p.Email == "" || p.Role == "" {
		return nil, nil
	}

	role := entity.SlotRole(p.Role)
	if role != entity.SlotRolePrimary && role != entity.SlotRoleAdditional {
		return nil, nil
	}

	slots, err := s.repo.Slot.FindUnclaimedByEmailAndRole(ctx, p.Email, role)
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return nil, nil
	}
	if len(slots) > 1 {
		s.log.Warn("Legacy fallback refused ambiguous match",
			zap.String("role", p.Role),
			zap.Int("candidates", len(slots)),
		)
		return nil, nil
	}

	slot := slots[0]
	token, err := s.repo.Token.FindBySlotID(ctx, slot.ID)
	if err != nil {
		return nil, err
	}

	return s.assemble(ctx, slot, token)
}

func (s *resolverService) load(ctx context.Context, slotID uuid.UUID, token *entity.AdmissionToken) (*ResolvedCredential, error) {
	slot, err := s.repo.Slot.FindByID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, nil
	}

	return s.assemble(ctx, slot, token)
}

func (s *resolverService) assemble(ctx context.Context, slot *entity.VisitorSlot, token *entity.AdmissionToken) (*ResolvedCredential, error) {
	booking, err := s.repo.Booking.FindByID(ctx, slot.BookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, nil
	}

	return &ResolvedCredential{
		Slot:    slot,
		Booking: booking,
		Token:   token,
	}, nil
}

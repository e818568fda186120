package usecase

import (
	"museum-admission/internal/data/repository"
	"museum-admission/pkg/cache"
	"museum-admission/pkg/events"
	"museum-admission/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Capacity  CapacityService
	Issuer    IssuerService
	Resolver  ResolverService
	Admission AdmissionService
	Sweeper   SweeperService
	Booking   BookingService
	Visitor   VisitorService
}

func NewService(repo *repository.Repository, availability cache.AvailabilityStore, bus events.Publisher, config *utils.Config, logger *zap.Logger) *Service {
	capacity := NewCapacityService(repo, availability, config, logger)
	resolver := NewResolverService(repo, logger)

	return &Service{
		Capacity:  capacity,
		Issuer:    NewIssuerService(repo, capacity, bus, config, logger),
		Resolver:  resolver,
		Admission: NewAdmissionService(repo, resolver, bus, logger),
		Sweeper:   NewSweeperService(repo, capacity, bus, config, logger),
		Booking:   NewBookingService(repo, logger),
		Visitor:   NewVisitorService(repo, logger),
	}
}

package wire

import (
	"net/http"

	"museum-admission/internal/adaptor"
	"museum-admission/internal/data/repository"
	"museum-admission/internal/usecase"
	"museum-admission/pkg/cache"
	"museum-admission/pkg/events"
	"museum-admission/pkg/middleware"
	"museum-admission/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// App holds the wired application
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Wiring initializes all dependencies
func Wiring(repo *repository.Repository, availability cache.AvailabilityStore, bus events.Publisher, config *utils.Config, logger *zap.Logger) *App {
	service := usecase.NewService(repo, availability, bus, config, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, config, logger)

	return &App{
		Router:  router,
		Service: service,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	wireBooking(r, handler.Booking, config, logger)
	wireAdmission(r, handler.Admission, config, logger)
	wireVisitor(r, handler.Visitor)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}

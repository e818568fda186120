package wire

import (
	"museum-admission/internal/adaptor"
	"museum-admission/pkg/middleware"
	"museum-admission/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAdmission(
	r chi.Router,
	admissionHandler *adaptor.AdmissionHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== SCANNER ROUTES (device auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.DeviceAuth(config.Scanner, log))

		// POST /api/scan - convert a scanned code into an admission
		r.Post("/api/scan", admissionHandler.Scan)
	})
}

package wire

import (
	"museum-admission/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireVisitor(r chi.Router, visitorHandler *adaptor.VisitorHandler) {
	// PUT /api/visitors/{id}/register - visitors complete their profile
	// from the link in their booking mail, no staff auth involved
	r.Put("/api/visitors/{id}/register", visitorHandler.Register)
}

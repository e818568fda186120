package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"museum-admission/internal/dto/request"
	"museum-admission/internal/usecase"
	"museum-admission/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type VisitorHandler struct {
	service usecase.VisitorService
	log     *zap.Logger
}

func NewVisitorHandler(service usecase.VisitorService, log *zap.Logger) *VisitorHandler {
	return &VisitorHandler{
		service: service,
		log:     log.With(zap.String("handler", "visitor")),
	}
}

// Register handles PUT /api/visitors/{id}/register (public). Visitors fill
// in their profile any time between issuance and admission.
func (h *VisitorHandler) Register(w http.ResponseWriter, r *http.Request) {
	slotID := chi.URLParam(r, "id")
	if slotID == "" {
		utils.ResponseBadRequest(w, "Visitor slot ID is required", nil)
		return
	}

	var req request.RegisterVisitorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	slot, err := h.service.Register(r.Context(), slotID, &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrSlotNotFound), errors.Is(err, usecase.ErrBookingNotFound):
			utils.ResponseNotFound(w, err.Error())
		case errors.Is(err, usecase.ErrAlreadyAdmitted):
			utils.ResponseConflict(w, err.Error(), nil)
		case errors.Is(err, usecase.ErrBookingInactive):
			utils.ResponseUnprocessable(w, err.Error(), nil)
		case strings.Contains(err.Error(), "validation failed"),
			strings.Contains(err.Error(), "invalid"):
			utils.ResponseBadRequest(w, err.Error(), nil)
		default:
			h.log.Error("Failed to register visitor", zap.Error(err))
			utils.ResponseInternalError(w, "Internal server error")
		}
		return
	}

	utils.ResponseSuccess(w, "success", slot)
}

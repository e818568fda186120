package adaptor

import (
	"encoding/json"
	"net/http"
	"time"

	"museum-admission/internal/dto/request"
	"museum-admission/internal/dto/response"
	"museum-admission/internal/usecase"
	"museum-admission/pkg/utils"

	"go.uber.org/zap"
)

type AdmissionHandler struct {
	service usecase.AdmissionService
	log     *zap.Logger
}

func NewAdmissionHandler(service usecase.AdmissionService, log *zap.Logger) *AdmissionHandler {
	return &AdmissionHandler{
		service: service,
		log:     log.With(zap.String("handler", "admission")),
	}
}

// Scan handles POST /api/scan (device auth). Every business outcome gets its
// own status code so scanner UIs can branch without parsing messages.
func (h *AdmissionHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var req request.ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	deviceID, _ := utils.GetDeviceIDFromContext(r.Context())

	result, err := h.service.Scan(r.Context(), req.Content, time.Now())
	if err != nil {
		// Only store faults reach here; the scanner may retry.
		h.log.Error("Scan failed on store error",
			zap.Error(err),
			zap.String("device_id", deviceID),
		)
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	h.log.Info("Scan processed",
		zap.String("outcome", result.Outcome),
		zap.String("device_id", deviceID),
	)

	switch result.Outcome {
	case response.OutcomeAdmitted:
		utils.ResponseSuccess(w, result.Message, result)
	case response.OutcomeAlreadyAdmitted:
		utils.ResponseConflict(w, result.Message, result)
	case response.OutcomeExpired:
		utils.ResponseGone(w, result.Message, result)
	case response.OutcomeBookingInactive:
		utils.ResponseUnprocessable(w, result.Message, result)
	default:
		utils.ResponseBadRequest(w, result.Message, result)
	}
}

package get_month_availability

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-StudioBooking/internal/api/handlers"
	getAvailability "github.com/m04kA/SMC-StudioBooking/internal/usecase/get_availability"
)

const (
	msgMissingMonth = "месяц обязателен"
	msgInvalidMonth = "некорректный формат месяца, ожидается YYYY-MM"
)

type Handler struct {
	useCase GetMonthAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase GetMonthAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/availability/month
// Query params: month (required, YYYY-MM)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	monthStr := r.URL.Query().Get("month")
	if monthStr == "" {
		h.logger.Warn("GET /availability/month - Missing month")
		handlers.RespondBadRequest(w, msgMissingMonth)
		return
	}

	req, err := ToUseCaseRequest(monthStr)
	if err != nil {
		h.logger.Warn("GET /availability/month - Invalid month format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidMonth)
		return
	}

	days, err := h.useCase.ExecuteMonth(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, getAvailability.ErrInvalidInput):
			h.logger.Warn("GET /availability/month - Invalid input: month=%s, error=%v", monthStr, err)
			handlers.RespondBadRequest(w, msgInvalidMonth)

		default:
			h.logger.Error("GET /availability/month - Failed to get month: month=%s, error=%v", monthStr, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromDomain(req, days))
}

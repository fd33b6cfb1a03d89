package get_availability

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-StudioBooking/internal/api/handlers"
	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	getAvailability "github.com/m04kA/SMC-StudioBooking/internal/usecase/get_availability"
)

const (
	msgMissingDate = "дата обязательна"
	msgInvalidDate = "некорректный формат даты, ожидается YYYY-MM-DD"
)

type Handler struct {
	useCase GetAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/availability
// Query params: date (required, YYYY-MM-DD)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /availability - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	date, err := domain.ParseDate(dateStr)
	if err != nil {
		h.logger.Warn("GET /availability - Invalid date format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	day, err := h.useCase.ExecuteDay(r.Context(), &getAvailability.DayRequest{Date: date})
	if err != nil {
		switch {
		case errors.Is(err, getAvailability.ErrInvalidInput):
			h.logger.Warn("GET /availability - Invalid input: date=%s, error=%v", dateStr, err)
			handlers.RespondBadRequest(w, msgInvalidDate)

		default:
			h.logger.Error("GET /availability - Failed to get availability: date=%s, error=%v", dateStr, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	// UNKNOWN отдаём со статусом 200: клиент показывает "нет данных", а не ошибку
	if day.Status == domain.DayUnknown {
		h.logger.Warn("GET /availability - Availability unknown: date=%s", dateStr)
	}

	handlers.RespondJSON(w, http.StatusOK, FromDomain(day))
}

package update_schedule

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-StudioBooking/internal/api/handlers"
	"github.com/m04kA/SMC-StudioBooking/internal/api/middleware"
	"github.com/m04kA/SMC-StudioBooking/internal/service/schedule"
	"github.com/m04kA/SMC-StudioBooking/internal/service/schedule/models"
)

const (
	msgMissingActor       = "отсутствует идентификатор сотрудника"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidData        = "некорректные параметры расписания"
)

type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/admin/schedule
// Частичное обновление: отсутствующие поля сохраняют текущее значение
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("PUT /admin/schedule - Missing actor")
		handlers.RespondUnauthorized(w, msgMissingActor)
		return
	}

	var req models.UpdateScheduleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /admin/schedule - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Update(r.Context(), actor, &req)
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrInvalidInput):
			h.logger.Warn("PUT /admin/schedule - Invalid schedule: actor=%s, error=%v", actor, err)
			handlers.RespondBadRequest(w, msgInvalidData)

		default:
			h.logger.Error("PUT /admin/schedule - Failed to update schedule: actor=%s, error=%v", actor, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /admin/schedule - Schedule updated: actor=%s", actor)
	handlers.RespondJSON(w, http.StatusOK, result)
}

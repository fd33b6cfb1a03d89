package change_booking_state

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-StudioBooking/internal/api/handlers"
	"github.com/m04kA/SMC-StudioBooking/internal/api/middleware"
	"github.com/m04kA/SMC-StudioBooking/internal/service/bookings/models"
	"github.com/m04kA/SMC-StudioBooking/internal/service/lifecycle"
)

const (
	msgInvalidBookingID     = "некорректный ID бронирования"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgMissingActor         = "отсутствует идентификатор сотрудника"
	msgInvalidState         = "некорректное состояние бронирования"
	msgNotFound             = "бронирование не найдено"
	msgTransitionNotAllowed = "переход в указанное состояние недопустим"
	msgConcurrentUpdate     = "бронирование было изменено, повторите запрос"
)

type Handler struct {
	service LifecycleService
	logger  Logger
}

func NewHandler(service LifecycleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/admin/bookings/{bookingId}/state
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(mux.Vars(r)["bookingId"], 10, 64)
	if err != nil || bookingID <= 0 {
		h.logger.Warn("PATCH /admin/bookings/{id}/state - Invalid booking ID: %q", mux.Vars(r)["bookingId"])
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("PATCH /admin/bookings/{id}/state - Missing actor")
		handlers.RespondUnauthorized(w, msgMissingActor)
		return
	}

	var req ChangeStateRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /admin/bookings/{id}/state - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	booking, err := h.service.ChangeState(r.Context(), req.ToServiceRequest(bookingID, actor))
	if err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrInvalidState):
			h.logger.Warn("PATCH /admin/bookings/{id}/state - Invalid state %q", req.State)
			handlers.RespondBadRequest(w, msgInvalidState)

		case errors.Is(err, lifecycle.ErrBookingNotFound):
			h.logger.Warn("PATCH /admin/bookings/{id}/state - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, lifecycle.ErrTransitionNotAllowed):
			h.logger.Warn("PATCH /admin/bookings/{id}/state - Transition rejected: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondUnprocessable(w, msgTransitionNotAllowed)

		case errors.Is(err, lifecycle.ErrConcurrentUpdate):
			h.logger.Warn("PATCH /admin/bookings/{id}/state - Concurrent update: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgConcurrentUpdate)

		default:
			h.logger.Error("PATCH /admin/bookings/{id}/state - Failed to change state: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /admin/bookings/{id}/state - Booking %s is now %s (by %s)", booking.Reference, booking.State, actor)
	handlers.RespondJSON(w, http.StatusOK, models.FromDomainBooking(booking))
}

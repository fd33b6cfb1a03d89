package reschedule_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-StudioBooking/internal/api/handlers"
	"github.com/m04kA/SMC-StudioBooking/internal/api/middleware"
	rescheduleBooking "github.com/m04kA/SMC-StudioBooking/internal/usecase/reschedule_booking"
)

const (
	msgInvalidBookingID     = "некорректный ID бронирования"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidDate          = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgMissingActor         = "отсутствует идентификатор сотрудника"
	msgInvalidInput         = "некорректные данные переноса"
	msgDateInPast           = "нельзя перенести на прошедшее время"
	msgStudioClosed         = "студия закрыта в выбранную дату"
	msgOutsideWorkingHours  = "выбранное время вне рабочих часов студии"
	msgNotFound             = "бронирование не найдено"
	msgTransitionNotAllowed = "бронирование нельзя перенести из текущего состояния"
	msgSlotNotAvailable     = "выбранное время уже занято"
	msgConcurrentUpdate     = "бронирование было изменено, повторите запрос"
)

type Handler struct {
	useCase RescheduleUseCase
	logger  Logger
}

func NewHandler(useCase RescheduleUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/admin/bookings/{bookingId}/reschedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(mux.Vars(r)["bookingId"], 10, 64)
	if err != nil || bookingID <= 0 {
		h.logger.Warn("POST /admin/bookings/{id}/reschedule - Invalid booking ID: %q", mux.Vars(r)["bookingId"])
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("POST /admin/bookings/{id}/reschedule - Missing actor")
		handlers.RespondUnauthorized(w, msgMissingActor)
		return
	}

	var req RescheduleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /admin/bookings/{id}/reschedule - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(bookingID, actor)
	if err != nil {
		h.logger.Warn("POST /admin/bookings/{id}/reschedule - Failed to parse date %q: %v", req.Date, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	resp, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, rescheduleBooking.ErrInvalidInput):
			h.logger.Warn("POST /admin/bookings/{id}/reschedule - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, rescheduleBooking.ErrInvalidDate):
			h.logger.Warn("POST /admin/bookings/{id}/reschedule - Date in past: %v", err)
			handlers.RespondBadRequest(w, msgDateInPast)

		case errors.Is(err, rescheduleBooking.ErrStudioClosed):
			h.logger.Warn("POST /admin/bookings/{id}/reschedule - Studio closed: %v", err)
			handlers.RespondBadRequest(w, msgStudioClosed)

		case errors.Is(err, rescheduleBooking.ErrOutsideWorkingHours):
			h.logger.Warn("POST /admin/bookings/{id}/reschedule - Outside working hours: %v", err)
			handlers.RespondBadRequest(w, msgOutsideWorkingHours)

		case errors.Is(err, rescheduleBooking.ErrBookingNotFound):
			h.logger.Warn("POST /admin/bookings/{id}/reschedule - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, rescheduleBooking.ErrTransitionNotAllowed):
			h.logger.Warn("POST /admin/bookings/{id}/reschedule - Transition rejected: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondUnprocessable(w, msgTransitionNotAllowed)

		case errors.Is(err, rescheduleBooking.ErrSlotNotAvailable):
			h.logger.Warn("POST /admin/bookings/{id}/reschedule - Slot not available: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, rescheduleBooking.ErrConcurrentUpdate):
			h.logger.Warn("POST /admin/bookings/{id}/reschedule - Concurrent update: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgConcurrentUpdate)

		default:
			h.logger.Error("POST /admin/bookings/{id}/reschedule - Failed to reschedule: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /admin/bookings/{id}/reschedule - Booking %s moved to %s (by %s)",
		resp.Old.Reference, resp.New.Reference, actor)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(resp))
}

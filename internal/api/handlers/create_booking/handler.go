package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-StudioBooking/internal/api/handlers"
	"github.com/m04kA/SMC-StudioBooking/internal/api/middleware"
	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/internal/service/bookings/models"
	createBooking "github.com/m04kA/SMC-StudioBooking/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgInvalidDate         = "некорректный формат даты бронирования, ожидается YYYY-MM-DD"
	msgMissingActor        = "отсутствует идентификатор сотрудника"
	msgSourceNotAllowed    = "источник бронирования может указать только администратор"
	msgInvalidInput        = "некорректные данные бронирования"
	msgInvalidPhone        = "некорректный номер телефона"
	msgInvalidPeopleCount  = "некорректное количество человек"
	msgBookingDateInPast   = "нельзя забронировать прошедшее время"
	msgStudioClosed        = "студия закрыта в выбранную дату"
	msgOutsideWorkingHours = "выбранное время вне рабочих часов студии"
	msgSlotNotAvailable    = "выбранное время уже занято"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
	admin   bool
}

// NewHandler обработчик публичного бронирования (источник website, действует клиент)
func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// NewAdminHandler обработчик бронирования сотрудником (телефон, walk-in)
func NewAdminHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
		admin:   true,
	}
}

// Handle POST /api/v1/bookings и POST /api/v1/admin/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse date %q: %v", req.Date, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	if h.admin {
		actor, ok := middleware.GetActor(r.Context())
		if !ok {
			h.logger.Warn("POST /admin/bookings - Missing actor")
			handlers.RespondUnauthorized(w, msgMissingActor)
			return
		}
		useCaseReq.Actor = actor
		useCaseReq.Source = domain.SourceAdmin
		if req.Source != nil && *req.Source != "" {
			useCaseReq.Source = domain.BookingSource(*req.Source)
		}
	} else {
		if req.Source != nil && *req.Source != "" && *req.Source != string(domain.SourceWebsite) {
			h.logger.Warn("POST /bookings - Source %q is not allowed for clients", *req.Source)
			handlers.RespondBadRequest(w, msgSourceNotAllowed)
			return
		}
		useCaseReq.Actor = domain.ActorClient
		useCaseReq.Source = domain.SourceWebsite
	}

	booking, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrSlotNotAvailable):
			h.logger.Warn("POST /bookings - Slot not available: date=%s, hours=%v", req.Date, req.Hours)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, createBooking.ErrInvalidPhone):
			h.logger.Warn("POST /bookings - Invalid phone: %v", err)
			handlers.RespondBadRequest(w, msgInvalidPhone)

		case errors.Is(err, createBooking.ErrInvalidPeopleCount):
			h.logger.Warn("POST /bookings - Invalid people count: %d", req.PeopleCount)
			handlers.RespondBadRequest(w, msgInvalidPeopleCount)

		case errors.Is(err, createBooking.ErrInvalidDate):
			h.logger.Warn("POST /bookings - Date in the past: date=%s, hours=%v", req.Date, req.Hours)
			handlers.RespondBadRequest(w, msgBookingDateInPast)

		case errors.Is(err, createBooking.ErrStudioClosed):
			h.logger.Warn("POST /bookings - Studio closed: date=%s", req.Date)
			handlers.RespondBadRequest(w, msgStudioClosed)

		case errors.Is(err, createBooking.ErrOutsideWorkingHours):
			h.logger.Warn("POST /bookings - Outside working hours: date=%s, hours=%v", req.Date, req.Hours)
			handlers.RespondBadRequest(w, msgOutsideWorkingHours)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: date=%s, hours=%v, error=%v",
				req.Date, req.Hours, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, reference=%s, source=%s",
		booking.ID, booking.Reference, booking.Source)
	handlers.RespondJSON(w, http.StatusCreated, models.FromDomainBooking(booking))
}

package get_booking_by_reference

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-StudioBooking/internal/api/handlers"
	"github.com/m04kA/SMC-StudioBooking/internal/service/bookings"
)

const (
	msgInvalidReference = "некорректный номер бронирования"
	msgNotFound         = "бронирование не найдено"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/bookings/by-reference/{reference}
// Клиент проверяет своё бронирование по номеру REF-YYYYMMDD-NNNN
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	reference := strings.ToUpper(strings.TrimSpace(mux.Vars(r)["reference"]))

	booking, err := h.service.GetByReference(r.Context(), reference)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("GET /bookings/by-reference/{reference} - Invalid reference: %q", reference)
			handlers.RespondBadRequest(w, msgInvalidReference)

		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("GET /bookings/by-reference/{reference} - Booking not found: reference=%s", reference)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("GET /bookings/by-reference/{reference} - Failed to get booking: reference=%s, error=%v",
				reference, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	// история состояний и внутренние заметки клиенту не показываются
	booking.StateHistory = nil
	booking.Notes = nil

	handlers.RespondJSON(w, http.StatusOK, booking)
}

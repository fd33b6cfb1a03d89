package change_booking_state

import (
	"strings"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/internal/service/lifecycle"
)

// ChangeStateRequest HTTP request model
type ChangeStateRequest struct {
	State string  `json:"state"` // CONFIRMED, IN_PROGRESS, COMPLETED, CANCELLED, NO_SHOW
	Notes *string `json:"notes,omitempty"`
}

// ToServiceRequest конвертирует HTTP запрос в запрос сервиса жизненного цикла
func (r *ChangeStateRequest) ToServiceRequest(bookingID int64, actor domain.Actor) lifecycle.ChangeStateRequest {
	return lifecycle.ChangeStateRequest{
		BookingID: bookingID,
		Target:    domain.BookingState(strings.ToUpper(strings.TrimSpace(r.State))),
		Actor:     actor,
		Notes:     r.Notes,
	}
}

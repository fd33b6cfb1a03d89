package reschedule_booking

import (
	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/internal/service/bookings/models"
	rescheduleBooking "github.com/m04kA/SMC-StudioBooking/internal/usecase/reschedule_booking"
)

// RescheduleRequest HTTP request model
type RescheduleRequest struct {
	Date  string   `json:"date"`  // "2026-03-20"
	Hours []string `json:"hours"` // ["14:00", "15:00"]
	Notes *string  `json:"notes,omitempty"`
}

// RescheduleResponse старое бронирование (RESCHEDULED) и новое (PENDING)
type RescheduleResponse struct {
	Old *models.BookingResponse `json:"old"`
	New *models.BookingResponse `json:"new"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RescheduleRequest) ToUseCaseRequest(bookingID int64, actor domain.Actor) (*rescheduleBooking.Request, error) {
	date, err := domain.ParseDate(r.Date)
	if err != nil {
		return nil, err
	}

	return &rescheduleBooking.Request{
		BookingID: bookingID,
		Date:      date,
		Hours:     r.Hours,
		Notes:     r.Notes,
		Actor:     actor,
	}, nil
}

// FromUseCaseResponse конвертирует результат use case в ответ
func FromUseCaseResponse(resp *rescheduleBooking.Response) *RescheduleResponse {
	return &RescheduleResponse{
		Old: models.FromDomainBooking(resp.Old),
		New: models.FromDomainBooking(resp.New),
	}
}

package reschedule_booking

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/pkg/types"
)

// validateRequest валидирует входные данные запроса и возвращает разобранные часы
func validateRequest(req *Request) ([]types.TimeString, error) {
	if req.BookingID <= 0 {
		return nil, fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if req.Notes != nil && len([]rune(*req.Notes)) > domain.MaxNotesLength {
		return nil, fmt.Errorf("%w: notes are longer than %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}
	if len(req.Hours) > domain.MaxHoursPerRequest {
		return nil, fmt.Errorf("%w: at most %d hours per request", ErrInvalidInput, domain.MaxHoursPerRequest)
	}

	hours, err := domain.ParseHours(req.Hours)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return hours, nil
}

// validateWindow проверяет новую дату и часы по расписанию студии
func validateWindow(schedule domain.ScheduleConfig, date time.Time, hours []types.TimeString, now time.Time) error {
	err := schedule.CheckBookable(date, hours, now)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrDateInPast), errors.Is(err, domain.ErrHourInPast):
		return fmt.Errorf("%w: %v", ErrInvalidDate, err)
	case errors.Is(err, domain.ErrStudioClosed):
		return fmt.Errorf("%w: %v", ErrStudioClosed, err)
	case errors.Is(err, domain.ErrOutsideWorkingHours):
		return fmt.Errorf("%w: %v", ErrOutsideWorkingHours, err)
	default:
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
}

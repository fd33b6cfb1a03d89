package create_booking

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/pkg/phone"
	"github.com/m04kA/SMC-StudioBooking/pkg/types"
	"github.com/m04kA/SMC-StudioBooking/pkg/validator"
)

// validateRequest валидирует входные данные запроса и возвращает разобранные часы
func validateRequest(req *Request) ([]types.TimeString, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if validator.Var(req.Name, fmt.Sprintf("max=%d", domain.MaxClientNameLen)) != nil {
		return nil, fmt.Errorf("%w: name is longer than %d characters", ErrInvalidInput, domain.MaxClientNameLen)
	}

	if req.PeopleCount < domain.MinPeopleCount || req.PeopleCount > domain.MaxPeopleCount {
		return nil, fmt.Errorf("%w: %d, expected %d..%d",
			ErrInvalidPeopleCount, req.PeopleCount, domain.MinPeopleCount, domain.MaxPeopleCount)
	}

	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.Source == "" {
		req.Source = domain.SourceWebsite
	}
	if !req.Source.IsValid() {
		return nil, fmt.Errorf("%w: unknown source %q", ErrInvalidInput, req.Source)
	}

	if req.Notes != nil && validator.Var(*req.Notes, fmt.Sprintf("max=%d", domain.MaxNotesLength)) != nil {
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

// normalizeContacts приводит телефон к E.164 и проверяет email
func normalizeContacts(req *Request, region string) (domain.ClientInfo, error) {
	normalized, err := phone.Normalize(req.Phone, region)
	if err != nil {
		return domain.ClientInfo{}, fmt.Errorf("%w: %v", ErrInvalidPhone, err)
	}

	client := domain.ClientInfo{Name: req.Name, Phone: normalized}

	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if email != "" {
			if err := validator.Var(email, "email"); err != nil {
				return domain.ClientInfo{}, fmt.Errorf("%w: invalid email %q", ErrInvalidInput, email)
			}
			client.Email = &email
		}
	}

	return client, nil
}

// validateWindow проверяет дату и часы по расписанию студии
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

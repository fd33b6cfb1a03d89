package create_booking

import (
	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	createBooking "github.com/m04kA/SMC-StudioBooking/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	Name        string   `json:"name"`
	Phone       string   `json:"phone"`
	Email       *string  `json:"email,omitempty"`
	Date        string   `json:"date"`  // "2026-03-15"
	Hours       []string `json:"hours"` // ["10:00", "11:00", "15:00"]
	PeopleCount int      `json:"peopleCount"`
	Notes       *string  `json:"notes,omitempty"`
	Source      *string  `json:"source,omitempty"` // только для администраторов: phone, walk-in, admin
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case (с парсингом даты)
func (r *CreateBookingRequest) ToUseCaseRequest() (*createBooking.Request, error) {
	date, err := domain.ParseDate(r.Date)
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		Name:        r.Name,
		Phone:       r.Phone,
		Email:       r.Email,
		Date:        date,
		Hours:       r.Hours,
		PeopleCount: r.PeopleCount,
		Notes:       r.Notes,
	}, nil
}

package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

var (
	// ErrInvalidState возвращается при некорректном состоянии
	ErrInvalidState = errors.New("invalid booking state")
)

const (
	// DefaultListLimit размер страницы по умолчанию
	DefaultListLimit = 50

	// MaxListLimit максимальный размер страницы
	MaxListLimit = 200
)

// Request модели

// ListBookingsRequest запрос на получение бронирований для администратора
type ListBookingsRequest struct {
	StartDate *time.Time `json:"startDate,omitempty"` // Начало периода (опционально)
	EndDate   *time.Time `json:"endDate,omitempty"`   // Конец периода (опционально)
	State     *string    `json:"state,omitempty"`     // Фильтр по состоянию (опционально)
	Phone     *string    `json:"phone,omitempty"`     // Телефон клиента в формате E.164 (опционально)
	Limit     int        `json:"limit,omitempty"`
	Offset    int        `json:"offset,omitempty"`
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListBookingsRequest) ToDomainFilter() (domain.BookingsFilter, error) {
	filter := domain.BookingsFilter{
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		Phone:     r.Phone,
		Limit:     r.Limit,
		Offset:    r.Offset,
	}

	if filter.Limit <= 0 {
		filter.Limit = DefaultListLimit
	}
	if filter.Limit > MaxListLimit {
		filter.Limit = MaxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	// Конвертируем состояние если указано
	if r.State != nil {
		state, err := ToDomainBookingState(*r.State)
		if err != nil {
			return filter, err
		}
		filter.State = &state
	}

	return filter, nil
}

// Response модели

// IntervalResponse непрерывный отрезок забронированного времени
type IntervalResponse struct {
	StartTime string `json:"startTime"` // "10:00"
	EndTime   string `json:"endTime"`   // "12:00"
}

// StateTransitionResponse запись истории состояний
type StateTransitionResponse struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Actor     string    `json:"actor"`
	Notes     *string   `json:"notes,omitempty"`
	ChangedAt time.Time `json:"changedAt"`
}

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID            int64              `json:"id"`
	Reference     string             `json:"reference"`   // "REF-20260310-0001"
	BookingDate   string             `json:"bookingDate"` // "2026-03-10"
	StartTime     string             `json:"startTime"`   // "10:00"
	EndTime       string             `json:"endTime"`     // "12:00"
	Hours         []string           `json:"hours"`       // ["10:00", "11:00"]
	Intervals     []IntervalResponse `json:"intervals"`
	DurationHours float64            `json:"durationHours"`
	PeopleCount   int                `json:"peopleCount"`
	State         string             `json:"state"`

	// Клиент
	ClientName  string  `json:"clientName"`
	ClientPhone string  `json:"clientPhone"`
	ClientEmail *string `json:"clientEmail,omitempty"`

	// Стоимость
	BasePrice  float64 `json:"basePrice"`
	ExtraFees  float64 `json:"extraFees"`
	TotalPrice float64 `json:"totalPrice"`

	Source string  `json:"source"`
	Notes  *string `json:"notes,omitempty"`

	RescheduledFrom *int64 `json:"rescheduledFrom,omitempty"`
	RescheduledTo   *int64 `json:"rescheduledTo,omitempty"`

	StateHistory []StateTransitionResponse `json:"stateHistory,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:              b.ID,
		Reference:       b.Reference,
		BookingDate:     b.DateKey(),
		StartTime:       b.StartTime.String(),
		EndTime:         b.EndTime.String(),
		Hours:           make([]string, 0, len(b.Intervals)),
		Intervals:       make([]IntervalResponse, 0, len(b.Intervals)),
		DurationHours:   b.DurationHours,
		PeopleCount:     b.PeopleCount,
		State:           string(b.State),
		ClientName:      b.Client.Name,
		ClientPhone:     b.Client.Phone,
		ClientEmail:     b.Client.Email,
		BasePrice:       b.BasePrice,
		ExtraFees:       b.ExtraFees,
		TotalPrice:      b.TotalPrice,
		Source:          string(b.Source),
		Notes:           b.Notes,
		RescheduledFrom: b.RescheduledFrom,
		RescheduledTo:   b.RescheduledTo,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}

	for _, h := range b.Hours() {
		resp.Hours = append(resp.Hours, h.String())
	}
	for _, in := range b.Intervals {
		resp.Intervals = append(resp.Intervals, IntervalResponse{
			StartTime: in.Start.String(),
			EndTime:   in.End.String(),
		})
	}
	for _, tr := range b.StateHistory {
		resp.StateHistory = append(resp.StateHistory, StateTransitionResponse{
			From:      string(tr.From),
			To:        string(tr.To),
			Actor:     string(tr.Actor),
			Notes:     tr.Notes,
			ChangedAt: tr.ChangedAt,
		})
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	result := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, b := range bookings {
		if resp := FromDomainBooking(b); resp != nil {
			result.Bookings = append(result.Bookings, *resp)
		}
	}

	return result
}

// ToDomainBookingState конвертирует строку в domain.BookingState
func ToDomainBookingState(state string) (domain.BookingState, error) {
	s := domain.BookingState(state)
	if !s.IsValid() || s == domain.StateDraft {
		return "", ErrInvalidState
	}
	return s, nil
}

package get_availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// BookingStore путь чтения хранилища бронирований
type BookingStore interface {
	FindOverlapping(ctx context.Context, date time.Time) ([]*domain.Booking, error)
	FindOccupiedInRange(ctx context.Context, from, to time.Time) ([]*domain.Booking, error)
}

// ScheduleProvider источник текущего расписания
type ScheduleProvider interface {
	Current(ctx context.Context) (domain.ScheduleConfig, error)
}

// Calculator калькулятор доступности
type Calculator interface {
	ComputeDayAvailability(date time.Time, schedule domain.ScheduleConfig, bookings []*domain.Booking) domain.DayAvailability
	ClosedDay(date time.Time, schedule domain.ScheduleConfig) domain.DayAvailability
}

// AvailabilityCache кеш доступности по дням и месяцам
// Set* пишут только если поколение ключа не изменилось с момента чтения
type AvailabilityCache interface {
	DayGeneration(date time.Time) uint64
	MonthGeneration(year int, month time.Month) uint64
	GetDay(date time.Time) (domain.DayAvailability, bool)
	SetDay(day domain.DayAvailability, gen uint64) bool
	GetMonth(year int, month time.Month) ([]domain.DaySummary, bool)
	SetMonth(year int, month time.Month, days []domain.DaySummary, gen uint64) bool
}

// Metrics счётчики доступности
type Metrics interface {
	IncAvailabilityUnknown()
	IncAvailabilityCache(hit bool)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

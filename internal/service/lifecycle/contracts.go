package lifecycle

import (
	"context"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/booking"
)

// ReservationStore интерфейс хранилища бронирований
type ReservationStore interface {
	Transition(ctx context.Context, cmd bookingRepo.TransitionCommand) (*domain.Booking, error)
}

// ScheduleProvider источник текущего расписания (часовой пояс студии)
type ScheduleProvider interface {
	Current(ctx context.Context) (domain.ScheduleConfig, error)
}

// AvailabilityCache инвалидация кеша доступности
type AvailabilityCache interface {
	InvalidateDate(date time.Time)
}

// EventNotifier будит диспетчер событий после фиксации транзакции
type EventNotifier interface {
	Kick()
}

// Metrics счётчики переходов
type Metrics interface {
	IncTransition(from, to string)
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

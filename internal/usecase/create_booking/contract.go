package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// ReservationStore атомарное резервирование часов
type ReservationStore interface {
	Reserve(ctx context.Context, draft *domain.Booking, actor domain.Actor, at time.Time) (*domain.Booking, error)
}

// ScheduleProvider источник текущего расписания
type ScheduleProvider interface {
	Current(ctx context.Context) (domain.ScheduleConfig, error)
}

// DateLocker очередь запросов на одну дату внутри процесса
type DateLocker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// AvailabilityCache инвалидация кеша доступности
type AvailabilityCache interface {
	InvalidateDate(date time.Time)
}

// EventNotifier будит диспетчер событий после фиксации транзакции
type EventNotifier interface {
	Kick()
}

// Metrics счётчики бронирований
type Metrics interface {
	IncReservation(result string)
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

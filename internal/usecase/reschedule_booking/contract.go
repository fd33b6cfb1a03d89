package reschedule_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/booking"
)

// ReservationStore хранилище бронирований
type ReservationStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	Reschedule(ctx context.Context, cmd bookingRepo.RescheduleCommand) (*domain.Booking, *domain.Booking, error)
}

// ScheduleProvider источник текущего расписания
type ScheduleProvider interface {
	Current(ctx context.Context) (domain.ScheduleConfig, error)
}

// DateLocker очередь запросов по датам внутри процесса
type DateLocker interface {
	LockMany(ctx context.Context, keys ...string) (func(), error)
}

// AvailabilityCache инвалидация кеша доступности
type AvailabilityCache interface {
	InvalidateDate(date time.Time)
}

// EventNotifier будит диспетчер событий после фиксации транзакции
type EventNotifier interface {
	Kick()
}

// Metrics счётчики бронирований и переходов
type Metrics interface {
	IncReservation(result string)
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

package bookings

import (
	"context"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований (только чтение)
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByReference(ctx context.Context, reference string) (*domain.Booking, error)
	GetHistory(ctx context.Context, bookingID int64) ([]domain.StateTransition, error)
	List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

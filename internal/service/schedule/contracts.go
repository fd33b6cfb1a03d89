package schedule

import (
	"context"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// ScheduleRepository интерфейс репозитория расписания
type ScheduleRepository interface {
	Get(ctx context.Context) (*domain.ScheduleConfig, error)
	Upsert(ctx context.Context, cfg *domain.ScheduleConfig) (*domain.ScheduleConfig, error)
}

// AvailabilityCache сброс кеша доступности после смены расписания
type AvailabilityCache interface {
	Flush()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

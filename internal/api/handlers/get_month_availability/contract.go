package get_month_availability

import (
	"context"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	getAvailability "github.com/m04kA/SMC-StudioBooking/internal/usecase/get_availability"
)

type GetMonthAvailabilityUseCase interface {
	ExecuteMonth(ctx context.Context, req *getAvailability.MonthRequest) ([]domain.DaySummary, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

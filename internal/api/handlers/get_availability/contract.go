package get_availability

import (
	"context"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	getAvailability "github.com/m04kA/SMC-StudioBooking/internal/usecase/get_availability"
)

type GetAvailabilityUseCase interface {
	ExecuteDay(ctx context.Context, req *getAvailability.DayRequest) (domain.DayAvailability, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

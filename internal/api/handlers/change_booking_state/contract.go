package change_booking_state

import (
	"context"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/internal/service/lifecycle"
)

type LifecycleService interface {
	ChangeState(ctx context.Context, req lifecycle.ChangeStateRequest) (*domain.Booking, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

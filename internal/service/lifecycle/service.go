// Package lifecycle drives booking state transitions and their side effects.
package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/booking"
)

// ChangeStateRequest запрос на смену состояния
type ChangeStateRequest struct {
	BookingID int64
	Target    domain.BookingState
	Actor     domain.Actor
	Notes     *string
}

// Service сервис жизненного цикла бронирования
type Service struct {
	store        ReservationStore
	schedule     ScheduleProvider
	cache        AvailabilityCache
	notifier     EventNotifier
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает сервис жизненного цикла
func NewService(
	store ReservationStore,
	schedule ScheduleProvider,
	cache AvailabilityCache,
	notifier EventNotifier,
	metrics Metrics,
	logger Logger,
) *Service {
	return &Service{
		store:        store,
		schedule:     schedule,
		cache:        cache,
		notifier:     notifier,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// ChangeState применяет переход; кеш даты сбрасывается до возврата результата
func (s *Service) ChangeState(ctx context.Context, req ChangeStateRequest) (*domain.Booking, error) {
	s.logger.Info("ChangeState: booking id=%d -> %s by %s", req.BookingID, req.Target, req.Actor)

	if !req.Target.IsValid() || req.Target == domain.StateDraft {
		s.logger.Warn("ChangeState: invalid target state %q", req.Target)
		return nil, fmt.Errorf("%w: %q", ErrInvalidState, req.Target)
	}

	schedule, err := s.schedule.Current(ctx)
	if err != nil {
		s.logger.Error("ChangeState: failed to load schedule: %v", err)
		return nil, fmt.Errorf("%w: load schedule: %v", ErrInternal, err)
	}

	booking, err := s.store.Transition(ctx, bookingRepo.TransitionCommand{
		BookingID: req.BookingID,
		Target:    req.Target,
		Actor:     req.Actor,
		Notes:     req.Notes,
		At:        s.timeProvider.Now(),
		Location:  schedule.Location(),
	})
	if err != nil {
		return nil, s.mapError(req, err)
	}

	s.cache.InvalidateDate(booking.BookingDate)
	s.notifier.Kick()

	from := domain.StateDraft
	if n := len(booking.StateHistory); n > 0 {
		from = booking.StateHistory[n-1].From
	}
	s.metrics.IncTransition(string(from), string(booking.State))

	s.logger.Info("ChangeState: booking id=%d moved %s -> %s", booking.ID, from, booking.State)
	return booking, nil
}

func (s *Service) mapError(req ChangeStateRequest, err error) error {
	switch {
	case errors.Is(err, bookingRepo.ErrBookingNotFound):
		s.logger.Warn("ChangeState: booking id=%d not found", req.BookingID)
		return ErrBookingNotFound
	case domain.IsTransitionError(err):
		// недопустимый переход означает ошибку вызывающей стороны
		s.logger.Error("ChangeState: rejected transition for booking id=%d to %s: %v", req.BookingID, req.Target, err)
		return fmt.Errorf("%w: %v", ErrTransitionNotAllowed, err)
	case errors.Is(err, bookingRepo.ErrVersionConflict):
		s.logger.Warn("ChangeState: concurrent update of booking id=%d", req.BookingID)
		return ErrConcurrentUpdate
	default:
		s.logger.Error("ChangeState: failed to transition booking id=%d: %v", req.BookingID, err)
		return fmt.Errorf("%w: transition: %v", ErrInternal, err)
	}
}

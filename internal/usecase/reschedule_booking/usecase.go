package reschedule_booking

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/booking"
)

// UseCase use case переноса подтверждённого бронирования
// Старое бронирование закрывается как RESCHEDULED, новое создаётся в той же транзакции
type UseCase struct {
	store        ReservationStore
	schedule     ScheduleProvider
	locker       DateLocker
	cache        AvailabilityCache
	notifier     EventNotifier
	metrics      Metrics
	settings     Settings
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	store ReservationStore,
	schedule ScheduleProvider,
	locker DateLocker,
	cache AvailabilityCache,
	notifier EventNotifier,
	metrics Metrics,
	settings Settings,
	logger Logger,
) *UseCase {
	return &UseCase{
		store:        store,
		schedule:     schedule,
		locker:       locker,
		cache:        cache,
		notifier:     notifier,
		metrics:      metrics,
		settings:     settings,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет перенос
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleBooking: booking id=%d -> %s %v by %s",
		req.BookingID, req.Date.Format(domain.DateFormat), req.Hours, req.Actor)

	// 1. Валидация входных данных
	hours, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("RescheduleBooking: validation failed: %v", err)
		return nil, err
	}

	schedule, err := uc.schedule.Current(ctx)
	if err != nil {
		uc.logger.Error("RescheduleBooking: failed to load schedule: %v", err)
		return nil, fmt.Errorf("%w: failed to load schedule: %v", ErrInternal, err)
	}

	now := uc.timeProvider.Now()
	if err := validateWindow(schedule, req.Date, hours, now); err != nil {
		uc.logger.Warn("RescheduleBooking: %v", err)
		return nil, err
	}

	// 2. Получаем исходное бронирование: клиент и количество человек переходят в новое
	current, err := uc.store.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, uc.mapError(req, err)
	}
	if current.State != domain.StateConfirmed {
		uc.logger.Warn("RescheduleBooking: booking id=%d is %s, only CONFIRMED can be rescheduled", current.ID, current.State)
		return nil, fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, current.State, domain.StateRescheduled)
	}

	draft := &domain.Booking{
		Client:      current.Client,
		BookingDate: domain.DateOnly(req.Date),
		PeopleCount: current.PeopleCount,
		State:       domain.StateDraft,
		Source:      current.Source,
		Notes:       current.Notes,
	}
	draft.ApplyIntervals(domain.MergeHours(hours))
	uc.settings.Pricing.Calculate(draft.DurationHours, draft.PeopleCount).Apply(draft)

	// 3. Блокируем обе даты в порядке возрастания
	reserveCtx, cancel := context.WithTimeout(ctx, uc.settings.ReserveTimeout)
	defer cancel()

	unlock, err := uc.locker.LockMany(reserveCtx, lockKeys(current.DateKey(), draft.DateKey())...)
	if err != nil {
		uc.logger.Error("RescheduleBooking: failed to acquire date locks: %v", err)
		return nil, fmt.Errorf("%w: acquire date locks: %v", ErrInternal, err)
	}
	defer unlock()

	oldBooking, newBooking, err := uc.store.Reschedule(reserveCtx, bookingRepo.RescheduleCommand{
		BookingID: req.BookingID,
		Draft:     draft,
		Actor:     req.Actor,
		Notes:     req.Notes,
		At:        now,
		Location:  schedule.Location(),
	})
	if err != nil {
		return nil, uc.mapError(req, err)
	}

	// 4. Сбрасываем кеш обеих дат до возврата ответа
	uc.cache.InvalidateDate(oldBooking.BookingDate)
	uc.cache.InvalidateDate(newBooking.BookingDate)
	uc.notifier.Kick()
	uc.metrics.IncTransition(string(domain.StateConfirmed), string(domain.StateRescheduled))
	uc.metrics.IncReservation("created")

	uc.logger.Info("RescheduleBooking: booking id=%d rescheduled to id=%d %s on %s",
		oldBooking.ID, newBooking.ID, newBooking.Reference, newBooking.DateKey())
	return &Response{Old: oldBooking, New: newBooking}, nil
}

func (uc *UseCase) mapError(req *Request, err error) error {
	switch {
	case errors.Is(err, bookingRepo.ErrBookingNotFound):
		uc.logger.Warn("RescheduleBooking: booking id=%d not found", req.BookingID)
		return ErrBookingNotFound
	case domain.IsTransitionError(err):
		uc.logger.Error("RescheduleBooking: rejected transition for booking id=%d: %v", req.BookingID, err)
		return fmt.Errorf("%w: %v", ErrTransitionNotAllowed, err)
	case errors.Is(err, bookingRepo.ErrSlotNotAvailable):
		uc.logger.Warn("RescheduleBooking: slot not available: %v", err)
		uc.metrics.IncReservation("conflict")
		return fmt.Errorf("%w: %v", ErrSlotNotAvailable, err)
	case errors.Is(err, bookingRepo.ErrVersionConflict):
		uc.logger.Warn("RescheduleBooking: concurrent update of booking id=%d", req.BookingID)
		return ErrConcurrentUpdate
	case errors.Is(err, bookingRepo.ErrInvalidDraft):
		uc.logger.Error("RescheduleBooking: store rejected draft: %v", err)
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	default:
		uc.logger.Error("RescheduleBooking: failed to reschedule booking id=%d: %v", req.BookingID, err)
		return fmt.Errorf("%w: reschedule: %v", ErrInternal, err)
	}
}

// lockKeys возвращает уникальные ключи дат по возрастанию
func lockKeys(keys ...string) []string {
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if len(out) > 0 && out[len(out)-1] == k {
			continue
		}
		out = append(out, k)
	}
	return out
}

package create_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/booking"
)

// Результаты попытки бронирования для метрик
const (
	resultCreated  = "created"
	resultConflict = "conflict"
	resultInvalid  = "invalid"
	resultError    = "error"
)

// UseCase use case для создания бронирования
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

// Execute выполняет use case создания бронирования
// Все часы резервируются атомарно: либо заняты все, либо ни один
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*domain.Booking, error) {
	uc.logger.Info("CreateBooking: date=%s, hours=%v, people=%d, source=%s",
		req.Date.Format(domain.DateFormat), req.Hours, req.PeopleCount, req.Source)

	// 1. Валидация входных данных
	hours, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		uc.metrics.IncReservation(resultInvalid)
		return nil, err
	}

	client, err := normalizeContacts(req, uc.settings.PhoneRegion)
	if err != nil {
		uc.logger.Warn("CreateBooking: contact validation failed: %v", err)
		uc.metrics.IncReservation(resultInvalid)
		return nil, err
	}

	// 2. Проверяем дату и часы по расписанию
	schedule, err := uc.schedule.Current(ctx)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to load schedule: %v", err)
		uc.metrics.IncReservation(resultError)
		return nil, fmt.Errorf("%w: failed to load schedule: %v", ErrInternal, err)
	}

	now := uc.timeProvider.Now()
	if err := validateWindow(schedule, req.Date, hours, now); err != nil {
		uc.logger.Warn("CreateBooking: %v", err)
		uc.metrics.IncReservation(resultInvalid)
		return nil, err
	}

	// 3. Собираем черновик и считаем стоимость
	draft := &domain.Booking{
		Client:      client,
		BookingDate: domain.DateOnly(req.Date),
		PeopleCount: req.PeopleCount,
		State:       domain.StateDraft,
		Source:      req.Source,
		Notes:       req.Notes,
	}
	draft.ApplyIntervals(domain.MergeHours(hours))
	uc.settings.Pricing.Calculate(draft.DurationHours, draft.PeopleCount).Apply(draft)

	// 4. Резервируем под блокировкой даты с ограничением по времени
	reserveCtx, cancel := context.WithTimeout(ctx, uc.settings.ReserveTimeout)
	defer cancel()

	unlock, err := uc.locker.Lock(reserveCtx, draft.DateKey())
	if err != nil {
		uc.logger.Error("CreateBooking: failed to acquire lock for %s: %v", draft.DateKey(), err)
		uc.metrics.IncReservation(resultError)
		return nil, fmt.Errorf("%w: acquire date lock: %v", ErrInternal, err)
	}
	defer unlock()

	actor := req.Actor
	if actor == "" {
		actor = domain.ActorClient
	}

	created, err := uc.store.Reserve(reserveCtx, draft, actor, now)
	if err != nil {
		return nil, uc.mapReserveError(draft, err)
	}

	// 5. Сбрасываем кеш даты до возврата ответа
	uc.cache.InvalidateDate(created.BookingDate)
	uc.notifier.Kick()
	uc.metrics.IncReservation(resultCreated)

	uc.logger.Info("CreateBooking: created booking id=%d %s on %s, %.0fh, total %.2f",
		created.ID, created.Reference, created.DateKey(), created.DurationHours, created.TotalPrice)
	return created, nil
}

func (uc *UseCase) mapReserveError(draft *domain.Booking, err error) error {
	switch {
	case errors.Is(err, bookingRepo.ErrSlotNotAvailable):
		uc.logger.Warn("CreateBooking: slot not available on %s: %v", draft.DateKey(), err)
		uc.metrics.IncReservation(resultConflict)
		return fmt.Errorf("%w: %v", ErrSlotNotAvailable, err)
	case errors.Is(err, bookingRepo.ErrInvalidDraft):
		uc.logger.Error("CreateBooking: store rejected draft: %v", err)
		uc.metrics.IncReservation(resultInvalid)
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	default:
		uc.logger.Error("CreateBooking: failed to reserve on %s: %v", draft.DateKey(), err)
		uc.metrics.IncReservation(resultError)
		return fmt.Errorf("%w: reserve: %v", ErrInternal, err)
	}
}

package get_availability

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// UseCase use case получения доступности студии
// Сбой хранилища не превращается в ошибку: день помечается UNKNOWN и не кешируется
type UseCase struct {
	store        BookingStore
	schedule     ScheduleProvider
	calculator   Calculator
	cache        AvailabilityCache
	metrics      Metrics
	group        singleflight.Group
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	store BookingStore,
	schedule ScheduleProvider,
	calculator Calculator,
	cache AvailabilityCache,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		store:        store,
		schedule:     schedule,
		calculator:   calculator,
		cache:        cache,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// ExecuteDay возвращает слоты и статус дня
func (uc *UseCase) ExecuteDay(ctx context.Context, req *DayRequest) (domain.DayAvailability, error) {
	if req.Date.IsZero() {
		return domain.DayAvailability{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	date := domain.DateOnly(req.Date)

	schedule, err := uc.schedule.Current(ctx)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to load schedule for %s: %v", date.Format(domain.DateFormat), err)
		uc.metrics.IncAvailabilityUnknown()
		return domain.UnknownDay(date), nil
	}

	// прошедшие и закрытые дни не зависят от бронирований
	if date.Before(schedule.Today(uc.timeProvider.Now())) || schedule.IsBlackout(date) {
		return uc.calculator.ClosedDay(date, schedule), nil
	}

	if day, ok := uc.cache.GetDay(date); ok {
		uc.metrics.IncAvailabilityCache(true)
		return day, nil
	}
	uc.metrics.IncAvailabilityCache(false)

	// поколение читается до снимка: запись старого снимка после инвалидации отбрасывается,
	// а запрос после инвалидации не присоединяется к старому вычислению
	gen := uc.cache.DayGeneration(date)
	key := fmt.Sprintf("day:%s:%d", date.Format(domain.DateFormat), gen)
	v, _, _ := uc.group.Do(key, func() (interface{}, error) {
		return uc.computeDay(context.WithoutCancel(ctx), date, schedule, gen), nil
	})

	return v.(domain.DayAvailability), nil
}

func (uc *UseCase) computeDay(ctx context.Context, date time.Time, schedule domain.ScheduleConfig, gen uint64) domain.DayAvailability {
	bookings, err := uc.store.FindOverlapping(ctx, date)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to load bookings for %s: %v", date.Format(domain.DateFormat), err)
		uc.metrics.IncAvailabilityUnknown()
		return domain.UnknownDay(date)
	}

	day := uc.calculator.ComputeDayAvailability(date, schedule, bookings)
	uc.cache.SetDay(day, gen)
	return day
}

// ExecuteMonth возвращает статус каждого дня месяца
func (uc *UseCase) ExecuteMonth(ctx context.Context, req *MonthRequest) ([]domain.DaySummary, error) {
	if req.Year < 1 || req.Month < time.January || req.Month > time.December {
		return nil, fmt.Errorf("%w: invalid month %d-%02d", ErrInvalidInput, req.Year, req.Month)
	}

	first := time.Date(req.Year, req.Month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	schedule, err := uc.schedule.Current(ctx)
	if err != nil {
		uc.logger.Error("GetMonthAvailability: failed to load schedule for %s: %v", first.Format(domain.MonthFormat), err)
		uc.metrics.IncAvailabilityUnknown()
		return unknownMonth(first, last, 0), nil
	}

	if days, ok := uc.cache.GetMonth(req.Year, req.Month); ok {
		uc.metrics.IncAvailabilityCache(true)
		return closePastDays(days, schedule.Today(uc.timeProvider.Now())), nil
	}
	uc.metrics.IncAvailabilityCache(false)

	gen := uc.cache.MonthGeneration(req.Year, req.Month)
	key := fmt.Sprintf("month:%s:%d", first.Format(domain.MonthFormat), gen)
	v, _, _ := uc.group.Do(key, func() (interface{}, error) {
		return uc.computeMonth(context.WithoutCancel(ctx), first, last, schedule, gen), nil
	})

	return v.([]domain.DaySummary), nil
}

func (uc *UseCase) computeMonth(ctx context.Context, first, last time.Time, schedule domain.ScheduleConfig, gen uint64) []domain.DaySummary {
	today := schedule.Today(uc.timeProvider.Now())

	bookings, err := uc.store.FindOccupiedInRange(ctx, first, last)
	if err != nil {
		uc.logger.Error("GetMonthAvailability: failed to load bookings for %s: %v", first.Format(domain.MonthFormat), err)
		uc.metrics.IncAvailabilityUnknown()
		return unknownMonth(first, last, schedule.SlotCount())
	}

	byDate := make(map[string][]*domain.Booking)
	for _, b := range bookings {
		byDate[b.DateKey()] = append(byDate[b.DateKey()], b)
	}

	days := make([]domain.DaySummary, 0, last.Day())
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		var day domain.DayAvailability
		if d.Before(today) || schedule.IsBlackout(d) {
			day = uc.calculator.ClosedDay(d, schedule)
		} else {
			day = uc.calculator.ComputeDayAvailability(d, schedule, byDate[d.Format(domain.DateFormat)])
		}
		days = append(days, domain.DaySummary{
			Date:           d,
			Status:         day.Status,
			AvailableSlots: day.AvailableCount(),
			TotalSlots:     len(day.Slots),
		})
	}

	uc.cache.SetMonth(first.Year(), first.Month(), days, gen)
	return days
}

// closePastDays закрывает дни, ставшие прошедшими после записи в кеш
func closePastDays(days []domain.DaySummary, today time.Time) []domain.DaySummary {
	out := make([]domain.DaySummary, len(days))
	copy(out, days)
	for i := range out {
		if out[i].Date.Before(today) {
			out[i].Status = domain.DayFullyBooked
			out[i].AvailableSlots = 0
		}
	}
	return out
}

func unknownMonth(first, last time.Time, totalSlots int) []domain.DaySummary {
	days := make([]domain.DaySummary, 0, last.Day())
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		days = append(days, domain.DaySummary{Date: d, Status: domain.DayUnknown, TotalSlots: totalSlots})
	}
	return days
}

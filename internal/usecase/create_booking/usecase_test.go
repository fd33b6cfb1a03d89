package create_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/booking"
	"github.com/m04kA/SMC-StudioBooking/pkg/datelock"
	"github.com/m04kA/SMC-StudioBooking/pkg/ptr"
	"github.com/m04kA/SMC-StudioBooking/pkg/types"
)

// memStore хранилище в памяти с той же семантикой конфликта, что и Postgres
type memStore struct {
	mu       sync.Mutex
	bookings []*domain.Booking
	delay    time.Duration
	err      error
	nextID   int64
}

func (s *memStore) Reserve(ctx context.Context, draft *domain.Booking, actor domain.Actor, at time.Time) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	for _, b := range s.bookings {
		if b.DateKey() != draft.DateKey() || !b.OccupiesTime() {
			continue
		}
		for _, taken := range b.Intervals {
			for _, in := range draft.Intervals {
				if in.Overlaps(taken) {
					return nil, fmt.Errorf("%w: %s-%s", bookingRepo.ErrSlotNotAvailable, taken.Start, taken.End)
				}
			}
		}
	}

	s.nextID++
	created := *draft
	created.ID = s.nextID
	created.Reference = bookingRepo.FormatReference(draft.BookingDate, int(s.nextID))
	initial, err := domain.Initialize(&created, actor, at)
	if err != nil {
		return nil, err
	}
	initial.BookingID = created.ID
	created.StateHistory = []domain.StateTransition{initial}
	s.bookings = append(s.bookings, &created)
	return &created, nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

type stubSchedule struct {
	cfg domain.ScheduleConfig
	err error
}

func (s stubSchedule) Current(ctx context.Context) (domain.ScheduleConfig, error) {
	return s.cfg, s.err
}

type recordingCache struct {
	mu          sync.Mutex
	invalidated []string
}

func (c *recordingCache) InvalidateDate(date time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, date.Format(domain.DateFormat))
}

type countingNotifier struct {
	kicks int32
}

func (n *countingNotifier) Kick() {
	atomic.AddInt32(&n.kicks, 1)
}

type recordingMetrics struct {
	mu      sync.Mutex
	results map[string]int
}

func (m *recordingMetrics) IncReservation(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.results == nil {
		m.results = make(map[string]int)
	}
	m.results[result]++
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixedTime struct {
	now time.Time
}

func (f fixedTime) Now() time.Time {
	return f.now
}

// 2026-03-10 11:00 в часовом поясе студии (UTC+3)
var testNow = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

var (
	today    = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	tomorrow = time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
)

type fixture struct {
	store    *memStore
	cache    *recordingCache
	notifier *countingNotifier
	metrics  *recordingMetrics
	uc       *UseCase
}

func newFixture(store *memStore, sched stubSchedule) *fixture {
	f := &fixture{
		store:    store,
		cache:    &recordingCache{},
		notifier: &countingNotifier{},
		metrics:  &recordingMetrics{},
	}
	settings := Settings{
		Pricing: domain.PricingPolicy{
			HourlyRate:           2000,
			FreeHeadcount:        5,
			ExtraPersonHourlyFee: 300,
		},
		ReserveTimeout: time.Second,
		PhoneRegion:    "RU",
	}
	f.uc = NewUseCase(store, sched, datelock.New(), f.cache, f.notifier, f.metrics, settings, nopLogger{})
	f.uc.timeProvider = fixedTime{now: testNow}
	return f
}

func studioSchedule() stubSchedule {
	return stubSchedule{cfg: domain.ScheduleConfig{
		UTCOffsetMinutes: 180,
		OpeningHour:      9,
		ClosingHour:      20,
		ClosedWeekdays:   []time.Weekday{time.Sunday},
	}}
}

func validRequest(hours ...string) *Request {
	return &Request{
		Name:        "Анна",
		Phone:       "8 (912) 345-67-89",
		Email:       ptr.Ptr("anna@example.com"),
		Date:        tomorrow,
		Hours:       hours,
		PeopleCount: 2,
	}
}

func confirmed(date time.Time, start, end string) *domain.Booking {
	return &domain.Booking{
		ID:          100,
		BookingDate: date,
		StartTime:   types.TimeString(start),
		EndTime:     types.TimeString(end),
		Intervals:   []domain.Interval{{Start: types.TimeString(start), End: types.TimeString(end)}},
		State:       domain.StateConfirmed,
	}
}

func TestExecute_Success(t *testing.T) {
	f := newFixture(&memStore{}, studioSchedule())

	booking, err := f.uc.Execute(context.Background(), validRequest("10:00", "11:00"))

	require.NoError(t, err)
	assert.Equal(t, domain.StatePending, booking.State)
	assert.Equal(t, "+79123456789", booking.Client.Phone)
	assert.Equal(t, domain.SourceWebsite, booking.Source)
	assert.Equal(t, types.TimeString("10:00"), booking.StartTime)
	assert.Equal(t, types.TimeString("12:00"), booking.EndTime)
	assert.Equal(t, 2.0, booking.DurationHours)
	assert.Equal(t, 4000.0, booking.TotalPrice)
	require.Len(t, booking.StateHistory, 1)
	assert.Equal(t, domain.ActorClient, booking.StateHistory[0].Actor)

	assert.Equal(t, []string{"2026-03-11"}, f.cache.invalidated)
	assert.Equal(t, int32(1), f.notifier.kicks)
	assert.Equal(t, 1, f.metrics.results[resultCreated])
}

func TestExecute_NonContiguousHoursFormOneBooking(t *testing.T) {
	f := newFixture(&memStore{}, studioSchedule())

	booking, err := f.uc.Execute(context.Background(), validRequest("15:00", "10:00", "11:00"))

	require.NoError(t, err)
	assert.Equal(t, []domain.Interval{
		{Start: "10:00", End: "12:00"},
		{Start: "15:00", End: "16:00"},
	}, booking.Intervals)
	assert.Equal(t, 3.0, booking.DurationHours)
	assert.Equal(t, 6000.0, booking.BasePrice)
	assert.Equal(t, 1, f.store.count())
}

// Студия 09-20, подтверждённая бронь 10:00-12:00
func TestExecute_ConcreteScenario(t *testing.T) {
	store := &memStore{bookings: []*domain.Booking{confirmed(tomorrow, "10:00", "12:00")}}
	f := newFixture(store, studioSchedule())

	_, err := f.uc.Execute(context.Background(), validRequest("10:00"))
	assert.ErrorIs(t, err, ErrSlotNotAvailable)

	req := validRequest("13:00")
	req.PeopleCount = 6
	booking, err := f.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 2000.0, booking.BasePrice)
	assert.Equal(t, 300.0, booking.ExtraFees)
	assert.Equal(t, 2300.0, booking.TotalPrice)
	assert.Equal(t, 1, f.metrics.results[resultConflict])
	assert.Equal(t, 1, f.metrics.results[resultCreated])
}

func TestExecute_AtomicMultiHour(t *testing.T) {
	store := &memStore{bookings: []*domain.Booking{confirmed(tomorrow, "12:00", "13:00")}}
	f := newFixture(store, studioSchedule())

	_, err := f.uc.Execute(context.Background(), validRequest("10:00", "11:00", "12:00"))

	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.Equal(t, 1, store.count())
	assert.Empty(t, f.cache.invalidated)
	assert.Zero(t, f.notifier.kicks)

	_, err = f.uc.Execute(context.Background(), validRequest("10:00", "11:00"))
	require.NoError(t, err)
	assert.Equal(t, 2, store.count())
}

func TestExecute_NoDoubleBooking(t *testing.T) {
	store := &memStore{delay: 2 * time.Millisecond}
	f := newFixture(store, studioSchedule())

	const racers = 10
	var (
		wg        sync.WaitGroup
		succeeded int32
		conflicts int32
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.Execute(context.Background(), validRequest("14:00"))
			switch {
			case err == nil:
				atomic.AddInt32(&succeeded, 1)
			case errors.Is(err, ErrSlotNotAvailable):
				atomic.AddInt32(&conflicts, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded)
	assert.Equal(t, int32(racers-1), conflicts)
	assert.Equal(t, 1, store.count())
}

func TestExecute_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Request)
		want   error
	}{
		{"empty name", func(r *Request) { r.Name = "  " }, ErrInvalidInput},
		{"no hours", func(r *Request) { r.Hours = nil }, ErrInvalidInput},
		{"unaligned hour", func(r *Request) { r.Hours = []string{"10:30"} }, ErrInvalidInput},
		{"duplicate hour", func(r *Request) { r.Hours = []string{"10:00", "10:00"} }, ErrInvalidInput},
		{"zero people", func(r *Request) { r.PeopleCount = 0 }, ErrInvalidPeopleCount},
		{"too many people", func(r *Request) { r.PeopleCount = 31 }, ErrInvalidPeopleCount},
		{"bad phone", func(r *Request) { r.Phone = "12" }, ErrInvalidPhone},
		{"bad email", func(r *Request) { r.Email = ptr.Ptr("not-an-email") }, ErrInvalidInput},
		{"email with display name", func(r *Request) { r.Email = ptr.Ptr("Anna <anna@example.com>") }, ErrInvalidInput},
		{"name too long", func(r *Request) { r.Name = strings.Repeat("я", domain.MaxClientNameLen+1) }, ErrInvalidInput},
		{"unknown source", func(r *Request) { r.Source = "fax" }, ErrInvalidInput},
		{"past date", func(r *Request) { r.Date = today.AddDate(0, 0, -1) }, ErrInvalidDate},
		{"started hour today", func(r *Request) { r.Date = today; r.Hours = []string{"11:00"} }, ErrInvalidDate},
		{"closing hour", func(r *Request) { r.Hours = []string{"20:00"} }, ErrOutsideWorkingHours},
		{"sunday", func(r *Request) { r.Date = time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC) }, ErrStudioClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(&memStore{}, studioSchedule())
			req := validRequest("10:00")
			tt.mutate(req)

			_, err := f.uc.Execute(context.Background(), req)

			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, f.store.count())
			assert.Equal(t, 1, f.metrics.results[resultInvalid])
		})
	}
}

func TestExecute_LaterHourTodayAllowed(t *testing.T) {
	f := newFixture(&memStore{}, studioSchedule())
	req := validRequest("12:00")
	req.Date = today

	_, err := f.uc.Execute(context.Background(), req)
	assert.NoError(t, err)
}

func TestExecute_AdminSourceAndActor(t *testing.T) {
	f := newFixture(&memStore{}, studioSchedule())
	req := validRequest("10:00")
	req.Source = domain.SourceWalkIn
	req.Actor = "admin:7"
	req.Email = nil

	booking, err := f.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, domain.SourceWalkIn, booking.Source)
	assert.Nil(t, booking.Client.Email)
	assert.Equal(t, domain.Actor("admin:7"), booking.StateHistory[0].Actor)
}

func TestExecute_InfrastructureFailures(t *testing.T) {
	f := newFixture(&memStore{err: errors.New("connection reset")}, studioSchedule())
	_, err := f.uc.Execute(context.Background(), validRequest("10:00"))
	assert.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, 1, f.metrics.results[resultError])

	f = newFixture(&memStore{}, stubSchedule{err: errors.New("timeout")})
	_, err = f.uc.Execute(context.Background(), validRequest("10:00"))
	assert.ErrorIs(t, err, ErrInternal)
}

package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/booking"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Transition(ctx context.Context, cmd bookingRepo.TransitionCommand) (*domain.Booking, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

type stubSchedule struct {
	err error
}

func (s stubSchedule) Current(ctx context.Context) (domain.ScheduleConfig, error) {
	return domain.DefaultSchedule(), s.err
}

type recordingCache struct {
	invalidated []time.Time
}

func (c *recordingCache) InvalidateDate(date time.Time) {
	c.invalidated = append(c.invalidated, date)
}

type countingNotifier struct {
	kicks int
}

func (n *countingNotifier) Kick() {
	n.kicks++
}

type recordingMetrics struct {
	transitions []string
}

func (m *recordingMetrics) IncTransition(from, to string) {
	m.transitions = append(m.transitions, from+"->"+to)
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

var (
	testNow  = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	testDate = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
)

type fixture struct {
	store    *MockStore
	cache    *recordingCache
	notifier *countingNotifier
	metrics  *recordingMetrics
	svc      *Service
}

func newFixture(scheduleErr error) *fixture {
	f := &fixture{
		store:    &MockStore{},
		cache:    &recordingCache{},
		notifier: &countingNotifier{},
		metrics:  &recordingMetrics{},
	}
	f.svc = NewService(f.store, stubSchedule{err: scheduleErr}, f.cache, f.notifier, f.metrics, nopLogger{})
	f.svc.timeProvider = fixedTime{now: testNow}
	return f
}

func TestChangeState_Success(t *testing.T) {
	f := newFixture(nil)

	updated := &domain.Booking{
		ID:          7,
		BookingDate: testDate,
		State:       domain.StateConfirmed,
		StateHistory: []domain.StateTransition{
			{BookingID: 7, From: domain.StatePending, To: domain.StateConfirmed, Actor: "admin:1"},
		},
	}

	f.store.On("Transition", mock.Anything, mock.MatchedBy(func(cmd bookingRepo.TransitionCommand) bool {
		return cmd.BookingID == 7 &&
			cmd.Target == domain.StateConfirmed &&
			cmd.Actor == "admin:1" &&
			cmd.At.Equal(testNow) &&
			cmd.Location != nil
	})).Return(updated, nil)

	got, err := f.svc.ChangeState(context.Background(), ChangeStateRequest{
		BookingID: 7,
		Target:    domain.StateConfirmed,
		Actor:     "admin:1",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.StateConfirmed, got.State)
	require.Len(t, f.cache.invalidated, 1)
	assert.True(t, f.cache.invalidated[0].Equal(testDate))
	assert.Equal(t, 1, f.notifier.kicks)
	assert.Equal(t, []string{"PENDING->CONFIRMED"}, f.metrics.transitions)
	f.store.AssertExpectations(t)
}

func TestChangeState_InvalidTarget(t *testing.T) {
	f := newFixture(nil)

	for _, target := range []domain.BookingState{"BOGUS", domain.StateDraft} {
		_, err := f.svc.ChangeState(context.Background(), ChangeStateRequest{BookingID: 1, Target: target, Actor: "admin:1"})
		assert.ErrorIs(t, err, ErrInvalidState)
	}

	f.store.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything)
}

func TestChangeState_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		storeErr error
		want     error
	}{
		{"not found", bookingRepo.ErrBookingNotFound, ErrBookingNotFound},
		{"illegal transition", domain.ErrTransitionNotAllowed, ErrTransitionNotAllowed},
		{"reschedule only", domain.ErrRescheduleOnly, ErrTransitionNotAllowed},
		{"no-show too early", domain.ErrNoShowTooEarly, ErrTransitionNotAllowed},
		{"version conflict", bookingRepo.ErrVersionConflict, ErrConcurrentUpdate},
		{"db failure", errors.New("connection reset"), ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(nil)
			f.store.On("Transition", mock.Anything, mock.Anything).Return(nil, tt.storeErr)

			_, err := f.svc.ChangeState(context.Background(), ChangeStateRequest{
				BookingID: 3,
				Target:    domain.StateCancelled,
				Actor:     domain.ActorClient,
			})

			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, f.cache.invalidated)
			assert.Zero(t, f.notifier.kicks)
			assert.Empty(t, f.metrics.transitions)
		})
	}
}

func TestChangeState_ScheduleFailure(t *testing.T) {
	f := newFixture(errors.New("db down"))

	_, err := f.svc.ChangeState(context.Background(), ChangeStateRequest{
		BookingID: 3,
		Target:    domain.StateCancelled,
		Actor:     domain.ActorClient,
	})

	assert.ErrorIs(t, err, ErrInternal)
	f.store.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything)
}

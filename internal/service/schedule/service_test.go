package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	scheduleRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-StudioBooking/internal/service/schedule/models"
	"github.com/m04kA/SMC-StudioBooking/pkg/ptr"
)

type MockScheduleRepository struct {
	mock.Mock
}

func (m *MockScheduleRepository) Get(ctx context.Context) (*domain.ScheduleConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScheduleConfig), args.Error(1)
}

func (m *MockScheduleRepository) Upsert(ctx context.Context, cfg *domain.ScheduleConfig) (*domain.ScheduleConfig, error) {
	args := m.Called(ctx, cfg)
	if fn, ok := args.Get(0).(func(*domain.ScheduleConfig) *domain.ScheduleConfig); ok {
		return fn(cfg), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScheduleConfig), args.Error(1)
}

type flushCounter struct {
	flushes int
}

func (c *flushCounter) Flush() {
	c.flushes++
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func TestCurrent_FallsBackToDefaults(t *testing.T) {
	repo := &MockScheduleRepository{}
	repo.On("Get", mock.Anything).Return(nil, scheduleRepo.ErrScheduleNotFound)

	defaults := domain.ScheduleConfig{UTCOffsetMinutes: 180, OpeningHour: 8, ClosingHour: 20}
	svc := NewService(repo, defaults, &flushCounter{}, nopLogger{})

	got, err := svc.Current(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 8, got.OpeningHour)
	assert.Equal(t, 20, got.ClosingHour)
}

func TestCurrent_RepositoryError(t *testing.T) {
	repo := &MockScheduleRepository{}
	repo.On("Get", mock.Anything).Return(nil, errors.New("timeout"))

	svc := NewService(repo, domain.DefaultSchedule(), &flushCounter{}, nopLogger{})

	_, err := svc.Current(context.Background())
	assert.ErrorIs(t, err, ErrInternal)
}

func TestUpdate_PartialAndFlushesCache(t *testing.T) {
	repo := &MockScheduleRepository{}
	stored := &domain.ScheduleConfig{UTCOffsetMinutes: 180, OpeningHour: 9, ClosingHour: 21}
	repo.On("Get", mock.Anything).Return(stored, nil)
	repo.On("Upsert", mock.Anything, mock.MatchedBy(func(cfg *domain.ScheduleConfig) bool {
		return cfg.OpeningHour == 8 && cfg.ClosingHour == 21 &&
			len(cfg.ClosedWeekdays) == 1 && cfg.ClosedWeekdays[0] == time.Sunday
	})).Return(func(cfg *domain.ScheduleConfig) *domain.ScheduleConfig {
		cfg.UpdatedAt = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		return cfg
	}, nil)

	cache := &flushCounter{}
	svc := NewService(repo, domain.DefaultSchedule(), cache, nopLogger{})

	resp, err := svc.Update(context.Background(), "admin:1", &models.UpdateScheduleRequest{
		OpeningHour:    ptr.Ptr(8),
		ClosedWeekdays: &[]string{"Sunday"},
	})

	require.NoError(t, err)
	assert.Equal(t, 8, resp.OpeningHour)
	assert.Equal(t, []string{"sunday"}, resp.ClosedWeekdays)
	assert.Equal(t, "UTC+03:00", resp.Timezone)
	require.NotNil(t, resp.UpdatedAt)
	assert.Equal(t, 1, cache.flushes)
	repo.AssertExpectations(t)
}

func TestUpdate_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  *models.UpdateScheduleRequest
	}{
		{"opening after closing", &models.UpdateScheduleRequest{OpeningHour: ptr.Ptr(22)}},
		{"closing past midnight", &models.UpdateScheduleRequest{ClosingHour: ptr.Ptr(25)}},
		{"unknown weekday", &models.UpdateScheduleRequest{ClosedWeekdays: &[]string{"funday"}}},
		{"bad blackout date", &models.UpdateScheduleRequest{BlackoutDates: &[]string{"2026-13-01"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockScheduleRepository{}
			repo.On("Get", mock.Anything).Return(nil, scheduleRepo.ErrScheduleNotFound)

			cache := &flushCounter{}
			svc := NewService(repo, domain.DefaultSchedule(), cache, nopLogger{})

			_, err := svc.Update(context.Background(), "admin:1", tt.req)

			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Zero(t, cache.flushes)
			repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
		})
	}
}

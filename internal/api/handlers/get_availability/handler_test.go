package get_availability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	getAvailability "github.com/m04kA/SMC-StudioBooking/internal/usecase/get_availability"
	"github.com/m04kA/SMC-StudioBooking/pkg/logger"
)

type MockUseCase struct {
	mock.Mock
}

func (m *MockUseCase) ExecuteDay(ctx context.Context, req *getAvailability.DayRequest) (domain.DayAvailability, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.DayAvailability), args.Error(1)
}

func newHandler(uc GetAvailabilityUseCase) *Handler {
	return NewHandler(uc, logger.NewWithWriter(&bytes.Buffer{}, "error"))
}

func TestHandle_Success(t *testing.T) {
	uc := new(MockUseCase)
	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	day := domain.DayAvailability{
		Date: date,
		Slots: []domain.Slot{
			{Date: date, StartTime: "09:00", EndTime: "10:00", Available: true},
			{Date: date, StartTime: "10:00", EndTime: "11:00", Available: false, OccupancyPercent: 100},
		},
		Status: domain.DayPartiallyBooked,
	}
	uc.On("ExecuteDay", mock.Anything, &getAvailability.DayRequest{Date: date}).Return(day, nil)

	w := httptest.NewRecorder()
	newHandler(uc).Handle(w, httptest.NewRequest(http.MethodGet, "/api/v1/availability?date=2026-03-15", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp DayAvailabilityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "2026-03-15", resp.Date)
	assert.Equal(t, "PARTIALLY_BOOKED", resp.Status)
	assert.Equal(t, 1, resp.AvailableSlots)
	require.Len(t, resp.Slots, 2)
	assert.Equal(t, 100, resp.Slots[1].OccupancyPercent)
}

func TestHandle_UnknownIsNotAnError(t *testing.T) {
	uc := new(MockUseCase)
	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	uc.On("ExecuteDay", mock.Anything, mock.Anything).Return(domain.UnknownDay(date), nil)

	w := httptest.NewRecorder()
	newHandler(uc).Handle(w, httptest.NewRequest(http.MethodGet, "/api/v1/availability?date=2026-03-15", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"UNKNOWN"`)
}

func TestHandle_BadRequests(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"missing date", ""},
		{"bad format", "?date=15.03.2026"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := new(MockUseCase)
			w := httptest.NewRecorder()
			newHandler(uc).Handle(w, httptest.NewRequest(http.MethodGet, "/api/v1/availability"+tt.query, nil))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			uc.AssertNotCalled(t, "ExecuteDay", mock.Anything, mock.Anything)
		})
	}
}

func TestHandle_UseCaseError(t *testing.T) {
	uc := new(MockUseCase)
	uc.On("ExecuteDay", mock.Anything, mock.Anything).Return(domain.DayAvailability{}, errors.New("boom"))

	w := httptest.NewRecorder()
	newHandler(uc).Handle(w, httptest.NewRequest(http.MethodGet, "/api/v1/availability?date=2026-03-15", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

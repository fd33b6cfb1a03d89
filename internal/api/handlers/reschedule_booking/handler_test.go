package reschedule_booking

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioBooking/internal/api/middleware"
	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	rescheduleBooking "github.com/m04kA/SMC-StudioBooking/internal/usecase/reschedule_booking"
	"github.com/m04kA/SMC-StudioBooking/pkg/logger"
	"github.com/m04kA/SMC-StudioBooking/pkg/types"
)

type MockUseCase struct {
	mock.Mock
}

func (m *MockUseCase) Execute(ctx context.Context, req *rescheduleBooking.Request) (*rescheduleBooking.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rescheduleBooking.Response), args.Error(1)
}

func serve(uc RescheduleUseCase, path, body string) *httptest.ResponseRecorder {
	h := NewHandler(uc, logger.NewWithWriter(&bytes.Buffer{}, "error"))
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/admin/bookings/{bookingId}/reschedule", h.Handle).Methods(http.MethodPost)

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req = req.WithContext(middleware.WithActor(req.Context(), "admin:anna"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func booking(id int64, ref string, state domain.BookingState, day int, start, end string) *domain.Booking {
	return &domain.Booking{
		ID:          id,
		Reference:   ref,
		BookingDate: time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC),
		StartTime:   types.TimeString(start),
		EndTime:     types.TimeString(end),
		Intervals:   []domain.Interval{{Start: types.TimeString(start), End: types.TimeString(end)}},
		State:       state,
	}
}

func TestHandle_Success(t *testing.T) {
	uc := new(MockUseCase)
	uc.On("Execute", mock.Anything, mock.MatchedBy(func(r *rescheduleBooking.Request) bool {
		return r.BookingID == 3 &&
			r.Date.Equal(time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)) &&
			len(r.Hours) == 2 &&
			r.Actor == "admin:anna"
	})).Return(&rescheduleBooking.Response{
		Old: booking(3, "REF-20260315-0003", domain.StateRescheduled, 15, "10:00", "11:00"),
		New: booking(4, "REF-20260320-0001", domain.StatePending, 20, "14:00", "16:00"),
	}, nil)

	w := serve(uc, "/api/v1/admin/bookings/3/reschedule", `{"date":"2026-03-20","hours":["14:00","15:00"]}`)

	require.Equal(t, http.StatusOK, w.Code)

	var body RescheduleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "RESCHEDULED", body.Old.State)
	assert.Equal(t, "PENDING", body.New.State)
	assert.Equal(t, "REF-20260320-0001", body.New.Reference)
	uc.AssertExpectations(t)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid input", rescheduleBooking.ErrInvalidInput, http.StatusBadRequest},
		{"past", rescheduleBooking.ErrInvalidDate, http.StatusBadRequest},
		{"closed", rescheduleBooking.ErrStudioClosed, http.StatusBadRequest},
		{"outside hours", rescheduleBooking.ErrOutsideWorkingHours, http.StatusBadRequest},
		{"not found", rescheduleBooking.ErrBookingNotFound, http.StatusNotFound},
		{"terminal", rescheduleBooking.ErrTransitionNotAllowed, http.StatusUnprocessableEntity},
		{"taken", rescheduleBooking.ErrSlotNotAvailable, http.StatusConflict},
		{"concurrent", rescheduleBooking.ErrConcurrentUpdate, http.StatusConflict},
		{"internal", rescheduleBooking.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := new(MockUseCase)
			uc.On("Execute", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := serve(uc, "/api/v1/admin/bookings/3/reschedule", `{"date":"2026-03-20","hours":["14:00"]}`)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestHandle_BadDate(t *testing.T) {
	uc := new(MockUseCase)

	w := serve(uc, "/api/v1/admin/bookings/3/reschedule", `{"date":"20.03.2026","hours":["14:00"]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	uc.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

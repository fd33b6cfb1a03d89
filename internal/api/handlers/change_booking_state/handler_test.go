package change_booking_state

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/m04kA/SMC-StudioBooking/internal/api/middleware"
	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/internal/service/lifecycle"
	"github.com/m04kA/SMC-StudioBooking/pkg/logger"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) ChangeState(ctx context.Context, req lifecycle.ChangeStateRequest) (*domain.Booking, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func serve(svc LifecycleService, path, body string, withActor bool) *httptest.ResponseRecorder {
	h := NewHandler(svc, logger.NewWithWriter(&bytes.Buffer{}, "error"))
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/admin/bookings/{bookingId}/state", h.Handle).Methods(http.MethodPatch)

	req := httptest.NewRequest(http.MethodPatch, path, strings.NewReader(body))
	if withActor {
		req = req.WithContext(middleware.WithActor(req.Context(), "admin:anna"))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandle_Confirm(t *testing.T) {
	svc := new(MockService)
	svc.On("ChangeState", mock.Anything, lifecycle.ChangeStateRequest{
		BookingID: 5,
		Target:    domain.StateConfirmed,
		Actor:     "admin:anna",
	}).Return(&domain.Booking{
		ID:          5,
		Reference:   "REF-20260315-0005",
		BookingDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		StartTime:   "10:00",
		EndTime:     "11:00",
		Intervals:   []domain.Interval{{Start: "10:00", End: "11:00"}},
		State:       domain.StateConfirmed,
	}, nil)

	w := serve(svc, "/api/v1/admin/bookings/5/state", `{"state":"confirmed"}`, true)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"state":"CONFIRMED"`)
	svc.AssertExpectations(t)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid state", lifecycle.ErrInvalidState, http.StatusBadRequest},
		{"not found", lifecycle.ErrBookingNotFound, http.StatusNotFound},
		{"transition", lifecycle.ErrTransitionNotAllowed, http.StatusUnprocessableEntity},
		{"concurrent", lifecycle.ErrConcurrentUpdate, http.StatusConflict},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("ChangeState", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := serve(svc, "/api/v1/admin/bookings/5/state", `{"state":"COMPLETED"}`, true)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestHandle_RequestValidation(t *testing.T) {
	svc := new(MockService)

	assert.Equal(t, http.StatusBadRequest, serve(svc, "/api/v1/admin/bookings/x/state", `{"state":"CONFIRMED"}`, true).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(svc, "/api/v1/admin/bookings/5/state", `{"state":"CONFIRMED"}`, false).Code)
	assert.Equal(t, http.StatusBadRequest, serve(svc, "/api/v1/admin/bookings/5/state", `{"status":"CONFIRMED"}`, true).Code)

	svc.AssertNotCalled(t, "ChangeState", mock.Anything, mock.Anything)
}

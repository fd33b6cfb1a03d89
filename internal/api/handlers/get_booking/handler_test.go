package get_booking

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/m04kA/SMC-StudioBooking/internal/service/bookings"
	"github.com/m04kA/SMC-StudioBooking/internal/service/bookings/models"
	"github.com/m04kA/SMC-StudioBooking/pkg/logger"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) GetByID(ctx context.Context, id int64) (*models.BookingResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BookingResponse), args.Error(1)
}

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/admin/bookings/{bookingId}", h.Handle).Methods(http.MethodGet)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		setup      func(svc *MockService)
		wantStatus int
	}{
		{
			name: "found with history",
			path: "/api/v1/admin/bookings/7",
			setup: func(svc *MockService) {
				svc.On("GetByID", mock.Anything, int64(7)).Return(&models.BookingResponse{
					ID:           7,
					StateHistory: []models.StateTransitionResponse{{From: "DRAFT", To: "PENDING", Actor: "client"}},
				}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "not found",
			path: "/api/v1/admin/bookings/8",
			setup: func(svc *MockService) {
				svc.On("GetByID", mock.Anything, int64(8)).Return(nil, bookings.ErrBookingNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "internal",
			path: "/api/v1/admin/bookings/9",
			setup: func(svc *MockService) {
				svc.On("GetByID", mock.Anything, int64(9)).Return(nil, errors.New("db"))
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "bad id",
			path:       "/api/v1/admin/bookings/abc",
			setup:      func(*MockService) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setup(svc)

			w := serve(NewHandler(svc, logger.NewWithWriter(&bytes.Buffer{}, "error")), tt.path)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Contains(t, w.Body.String(), `"stateHistory"`)
			}
		})
	}
}

package list_bookings

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioBooking/internal/service/bookings"
	"github.com/m04kA/SMC-StudioBooking/internal/service/bookings/models"
	"github.com/m04kA/SMC-StudioBooking/pkg/logger"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) List(ctx context.Context, req *models.ListBookingsRequest) (*models.BookingListResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BookingListResponse), args.Error(1)
}

func serve(svc BookingService, target string) *httptest.ResponseRecorder {
	h := NewHandler(svc, logger.NewWithWriter(&bytes.Buffer{}, "error"))
	w := httptest.NewRecorder()
	h.Handle(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestParseQuery(t *testing.T) {
	q := url.Values{}
	q.Set("from", "2026-03-01")
	q.Set("to", "2026-03-31")
	q.Set("state", "confirmed")
	q.Set("phone", "+79161234567")
	q.Set("limit", "20")
	q.Set("offset", "40")

	req, err := ParseQuery(q)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *req.StartDate)
	assert.Equal(t, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), *req.EndDate)
	assert.Equal(t, "CONFIRMED", *req.State)
	assert.Equal(t, "+79161234567", *req.Phone)
	assert.Equal(t, 20, req.Limit)
	assert.Equal(t, 40, req.Offset)

	empty, err := ParseQuery(url.Values{})
	require.NoError(t, err)
	assert.Nil(t, empty.StartDate)
	assert.Nil(t, empty.State)
	assert.Zero(t, empty.Limit)

	for _, bad := range []string{"from=03-01-2026", "to=tomorrow", "limit=-1", "offset=x"} {
		q, _ := url.ParseQuery(bad)
		_, err := ParseQuery(q)
		assert.Error(t, err, bad)
	}
}

func TestHandle(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		svc := new(MockService)
		svc.On("List", mock.Anything, mock.MatchedBy(func(r *models.ListBookingsRequest) bool {
			return r.State != nil && *r.State == "PENDING"
		})).Return(&models.BookingListResponse{Bookings: []models.BookingResponse{{ID: 1}, {ID: 2}}}, nil)

		w := serve(svc, "/api/v1/admin/bookings?state=pending")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"bookings":[`)
		svc.AssertExpectations(t)
	})

	t.Run("bad query", func(t *testing.T) {
		svc := new(MockService)
		w := serve(svc, "/api/v1/admin/bookings?from=bad")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})

	errCases := map[string]struct {
		err  error
		code int
	}{
		"time range": {bookings.ErrInvalidTimeRange, http.StatusBadRequest},
		"bad state":  {bookings.ErrInvalidInput, http.StatusBadRequest},
		"internal":   {bookings.ErrInternal, http.StatusInternalServerError},
	}
	for name, tc := range errCases {
		t.Run(name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("List", mock.Anything, mock.Anything).Return(nil, tc.err)
			assert.Equal(t, tc.code, serve(svc, "/api/v1/admin/bookings").Code)
		})
	}
}

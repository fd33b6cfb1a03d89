package update_schedule

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/m04kA/SMC-StudioBooking/internal/api/middleware"
	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/internal/service/schedule"
	"github.com/m04kA/SMC-StudioBooking/internal/service/schedule/models"
	"github.com/m04kA/SMC-StudioBooking/pkg/logger"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Update(ctx context.Context, actor domain.Actor, req *models.UpdateScheduleRequest) (*models.ScheduleResponse, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ScheduleResponse), args.Error(1)
}

func request(body string, withActor bool) *http.Request {
	r := httptest.NewRequest(http.MethodPut, "/api/v1/admin/schedule", strings.NewReader(body))
	if withActor {
		r = r.WithContext(middleware.WithActor(r.Context(), "admin:anna"))
	}
	return r
}

func TestHandle_Success(t *testing.T) {
	svc := new(MockService)
	h := NewHandler(svc, logger.NewWithWriter(&bytes.Buffer{}, "error"))

	svc.On("Update", mock.Anything, domain.Actor("admin:anna"), mock.MatchedBy(func(req *models.UpdateScheduleRequest) bool {
		return req.ClosingHour != nil && *req.ClosingHour == 20 && req.OpeningHour == nil
	})).Return(&models.ScheduleResponse{OpeningHour: 9, ClosingHour: 20}, nil)

	w := httptest.NewRecorder()
	h.Handle(w, request(`{"closingHour":20}`, true))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"closingHour":20`)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		withActor  bool
		serviceErr error
		wantStatus int
	}{
		{"no actor", `{}`, false, nil, http.StatusUnauthorized},
		{"broken body", `{"closingHour":`, true, nil, http.StatusBadRequest},
		{"unknown field", `{"lunchBreak":true}`, true, nil, http.StatusBadRequest},
		{"invalid schedule", `{"closingHour":5}`, true, fmt.Errorf("%w: closing before opening", schedule.ErrInvalidInput), http.StatusBadRequest},
		{"internal", `{"closingHour":20}`, true, fmt.Errorf("%w: db", schedule.ErrInternal), http.StatusInternalServerError},
		{"unexpected", `{"closingHour":20}`, true, errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			h := NewHandler(svc, logger.NewWithWriter(&bytes.Buffer{}, "error"))
			if tt.serviceErr != nil {
				svc.On("Update", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.serviceErr)
			}

			w := httptest.NewRecorder()
			h.Handle(w, request(tt.body, tt.withActor))

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

package twilio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/pkg/logger"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error) {
	args := m.Called(params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*openapi.ApiV2010Message), args.Error(1)
}

func newTestClient(api MessageCreator) *Client {
	return NewClientWithAPI(api, "+15550001111", logger.NewWithWriter(&bytes.Buffer{}, "error"))
}

func stateEvent(t *testing.T, to domain.BookingState, phone string) *domain.Event {
	t.Helper()
	payload, err := json.Marshal(domain.BookingStateChanged{
		BookingID:   5,
		Reference:   "REF-20260315-0005",
		Date:        "2026-03-15",
		From:        string(domain.StatePending),
		To:          string(to),
		Actor:       "admin:anna",
		Timestamp:   time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		ClientName:  "Ivan",
		ClientPhone: phone,
	})
	require.NoError(t, err)
	return &domain.Event{EventID: uuid.New(), BookingID: 5, Kind: domain.EventBookingStateChanged, Payload: payload}
}

func TestHandle_SendsSMSToClient(t *testing.T) {
	api := new(MockAPI)
	client := newTestClient(api)
	sid := "SM123"

	api.On("CreateMessage", mock.MatchedBy(func(p *openapi.CreateMessageParams) bool {
		return p.To != nil && *p.To == "+79161234567" &&
			p.From != nil && *p.From == "+15550001111" &&
			p.Body != nil && *p.Body != ""
	})).Return(&openapi.ApiV2010Message{Sid: &sid}, nil)

	require.NoError(t, client.Handle(context.Background(), stateEvent(t, domain.StateConfirmed, "+79161234567")))
	api.AssertExpectations(t)
}

func TestHandle_AdminOnlyEventSkipped(t *testing.T) {
	api := new(MockAPI)
	client := newTestClient(api)

	require.NoError(t, client.Handle(context.Background(), stateEvent(t, domain.StateInProgress, "+79161234567")))
	api.AssertNotCalled(t, "CreateMessage", mock.Anything)
}

func TestHandle_Errors(t *testing.T) {
	t.Run("not e164", func(t *testing.T) {
		api := new(MockAPI)
		err := newTestClient(api).Handle(context.Background(), stateEvent(t, domain.StateCancelled, "89161234567"))
		assert.ErrorIs(t, err, ErrInvalidPhone)
	})

	t.Run("api failure", func(t *testing.T) {
		api := new(MockAPI)
		api.On("CreateMessage", mock.Anything).Return(nil, errors.New("401 unauthorized"))
		err := newTestClient(api).Handle(context.Background(), stateEvent(t, domain.StateCancelled, "+79161234567"))
		assert.ErrorIs(t, err, ErrSendFailed)
	})

	t.Run("broken payload", func(t *testing.T) {
		api := new(MockAPI)
		event := &domain.Event{Kind: domain.EventBookingCreated, Payload: json.RawMessage(`[]`)}
		assert.ErrorIs(t, newTestClient(api).Handle(context.Background(), event), ErrRender)
	})
}

func TestHandle_DisabledWithoutCredentials(t *testing.T) {
	client := NewClient("", "", "", logger.NewWithWriter(&bytes.Buffer{}, "error"))
	assert.NoError(t, client.Handle(context.Background(), stateEvent(t, domain.StateConfirmed, "+79161234567")))
	assert.Equal(t, "twilio", client.Name())
}

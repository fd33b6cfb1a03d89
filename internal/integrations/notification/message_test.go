package notification

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/pkg/ptr"
)

func stateChangedEvent(t *testing.T, from, to domain.BookingState) *domain.Event {
	t.Helper()
	payload, err := json.Marshal(domain.BookingStateChanged{
		BookingID:   7,
		Reference:   "REF-20260315-0001",
		Date:        "2026-03-15",
		From:        string(from),
		To:          string(to),
		Actor:       "admin:anna",
		Notes:       ptr.Ptr("клиент попросил"),
		Timestamp:   time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		ClientName:  "Ivan",
		ClientPhone: "+79161234567",
	})
	require.NoError(t, err)
	return &domain.Event{EventID: uuid.New(), BookingID: 7, Kind: domain.EventBookingStateChanged, Payload: payload}
}

func TestRender_Created(t *testing.T) {
	event, err := domain.NewBookingCreatedEvent(&domain.Booking{
		ID:          7,
		Reference:   "REF-20260315-0001",
		BookingDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Intervals:   []domain.Interval{{Start: "10:00", End: "12:00"}},
		PeopleCount: 6,
		TotalPrice:  4600,
		Client:      domain.ClientInfo{Name: "Ivan", Phone: "+79161234567", Email: ptr.Ptr("ivan@example.com")},
		Source:      domain.SourceWebsite,
	})
	require.NoError(t, err)

	msg, err := Render(event)
	require.NoError(t, err)

	assert.Equal(t, event.EventID, msg.EventID)
	assert.True(t, msg.NotifyClient)
	assert.Equal(t, "ivan@example.com", *msg.ClientEmail)
	assert.Contains(t, msg.ClientText, "REF-20260315-0001")
	assert.Contains(t, msg.ClientText, "10:00, 11:00")
	assert.Contains(t, msg.AdminText, "Гостей: 6")
	assert.Contains(t, msg.AdminText, "website")
}

func TestRender_StateChanged(t *testing.T) {
	tests := []struct {
		name         string
		to           domain.BookingState
		notifyClient bool
	}{
		{"confirmed goes to client", domain.StateConfirmed, true},
		{"cancelled goes to client", domain.StateCancelled, true},
		{"in progress is admin only", domain.StateInProgress, false},
		{"no show is admin only", domain.StateNoShow, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Render(stateChangedEvent(t, domain.StatePending, tt.to))
			require.NoError(t, err)

			assert.Equal(t, tt.notifyClient, msg.NotifyClient)
			assert.Contains(t, msg.AdminText, string(tt.to))
			assert.Contains(t, msg.AdminText, "клиент попросил")
			if tt.notifyClient {
				assert.Contains(t, msg.ClientText, "REF-20260315-0001")
			} else {
				assert.Empty(t, msg.ClientText)
			}
		})
	}
}

func TestRender_UnsupportedKind(t *testing.T) {
	_, err := Render(&domain.Event{Kind: "booking.unknown"})
	assert.ErrorIs(t, err, ErrUnsupportedEvent)
}

func TestRender_BrokenPayload(t *testing.T) {
	_, err := Render(&domain.Event{Kind: domain.EventBookingCreated, Payload: json.RawMessage(`{`)})
	assert.Error(t, err)
}

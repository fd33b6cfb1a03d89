package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventKind тип доменного события
type EventKind string

const (
	EventBookingCreated      EventKind = "booking.created"
	EventBookingStateChanged EventKind = "booking.state_changed"
)

// Event envelope of a domain event stored in the outbox.
// EventID is the idempotency key for sinks.
type Event struct {
	ID          int64
	EventID     uuid.UUID
	BookingID   int64
	Kind        EventKind
	Payload     json.RawMessage
	Attempts    int
	LastError   *string
	CreatedAt   time.Time
	DeliveredAt *time.Time
}

// BookingCreated payload of booking.created
type BookingCreated struct {
	BookingID   int64    `json:"bookingId"`
	Reference   string   `json:"reference"`
	Date        string   `json:"date"`
	Hours       []string `json:"hours"`
	TotalPrice  float64  `json:"totalPrice"`
	PeopleCount int      `json:"peopleCount"`
	ClientName  string   `json:"clientName"`
	ClientPhone string   `json:"clientPhone"`
	ClientEmail *string  `json:"clientEmail,omitempty"`
	Source      string   `json:"source"`
}

// BookingStateChanged payload of booking.state_changed
type BookingStateChanged struct {
	BookingID   int64     `json:"bookingId"`
	Reference   string    `json:"reference"`
	Date        string    `json:"date"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	Actor       string    `json:"actor"`
	Notes       *string   `json:"notes,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	ClientName  string    `json:"clientName"`
	ClientPhone string    `json:"clientPhone"`
	ClientEmail *string   `json:"clientEmail,omitempty"`
}

// NewBookingCreatedEvent builds the outbox envelope for a committed reservation
func NewBookingCreatedEvent(b *Booking) (*Event, error) {
	hours := b.Hours()
	hs := make([]string, 0, len(hours))
	for _, h := range hours {
		hs = append(hs, h.String())
	}

	return newEvent(b.ID, EventBookingCreated, BookingCreated{
		BookingID:   b.ID,
		Reference:   b.Reference,
		Date:        b.DateKey(),
		Hours:       hs,
		TotalPrice:  b.TotalPrice,
		PeopleCount: b.PeopleCount,
		ClientName:  b.Client.Name,
		ClientPhone: b.Client.Phone,
		ClientEmail: b.Client.Email,
		Source:      string(b.Source),
	})
}

// NewStateChangedEvent builds the outbox envelope for a transition
func NewStateChangedEvent(b *Booking, tr StateTransition) (*Event, error) {
	return newEvent(b.ID, EventBookingStateChanged, BookingStateChanged{
		BookingID:   b.ID,
		Reference:   b.Reference,
		Date:        b.DateKey(),
		From:        string(tr.From),
		To:          string(tr.To),
		Actor:       string(tr.Actor),
		Notes:       tr.Notes,
		Timestamp:   tr.ChangedAt,
		ClientName:  b.Client.Name,
		ClientPhone: b.Client.Phone,
		ClientEmail: b.Client.Email,
	})
}

func newEvent(bookingID int64, kind EventKind, payload interface{}) (*Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("domain: marshal %s payload: %w", kind, err)
	}
	return &Event{
		EventID:   uuid.New(),
		BookingID: bookingID,
		Kind:      kind,
		Payload:   raw,
	}, nil
}

// DecodeCreated unmarshals a booking.created payload
func (e *Event) DecodeCreated() (*BookingCreated, error) {
	if e.Kind != EventBookingCreated {
		return nil, fmt.Errorf("domain: event %s is not %s", e.Kind, EventBookingCreated)
	}
	var p BookingCreated
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return nil, fmt.Errorf("domain: decode %s: %w", e.Kind, err)
	}
	return &p, nil
}

// DecodeStateChanged unmarshals a booking.state_changed payload
func (e *Event) DecodeStateChanged() (*BookingStateChanged, error) {
	if e.Kind != EventBookingStateChanged {
		return nil, fmt.Errorf("domain: event %s is not %s", e.Kind, EventBookingStateChanged)
	}
	var p BookingStateChanged
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return nil, fmt.Errorf("domain: decode %s: %w", e.Kind, err)
	}
	return &p, nil
}

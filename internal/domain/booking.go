package domain

import (
	"time"

	"github.com/m04kA/SMC-StudioBooking/pkg/types"
)

// BookingState represents the lifecycle state of a booking
type BookingState string

const (
	StateDraft       BookingState = "DRAFT"
	StatePending     BookingState = "PENDING"
	StateConfirmed   BookingState = "CONFIRMED"
	StateInProgress  BookingState = "IN_PROGRESS"
	StateCompleted   BookingState = "COMPLETED"
	StateCancelled   BookingState = "CANCELLED"
	StateNoShow      BookingState = "NO_SHOW"
	StateRescheduled BookingState = "RESCHEDULED"
)

// BookingSource describes the channel a booking came from
type BookingSource string

const (
	SourceWebsite BookingSource = "website"
	SourcePhone   BookingSource = "phone"
	SourceWalkIn  BookingSource = "walk-in"
	SourceAdmin   BookingSource = "admin"
)

// IsValid returns true for a known source
func (s BookingSource) IsValid() bool {
	switch s {
	case SourceWebsite, SourcePhone, SourceWalkIn, SourceAdmin:
		return true
	}
	return false
}

// Actor identifies who performed a state change ("client", "system", "admin:42")
type Actor string

const (
	ActorClient Actor = "client"
	ActorSystem Actor = "system"
)

// ClientInfo holds the contact fields of the person who booked
type ClientInfo struct {
	Name  string
	Phone string // E.164
	Email *string
}

// Interval is a half-open time range [Start, End) within one day
type Interval struct {
	Start types.TimeString
	End   types.TimeString
}

// Minutes returns the length of the interval
func (i Interval) Minutes() int {
	return i.End.Minutes() - i.Start.Minutes()
}

// Overlaps reports whether two intervals share any time (touching ends do not overlap)
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.IsBefore(other.End) && i.End.IsAfter(other.Start)
}

// OverlapMinutes returns how many minutes of [fromMin, toMin) the interval covers
func (i Interval) OverlapMinutes(fromMin, toMin int) int {
	start := max(i.Start.Minutes(), fromMin)
	end := min(i.End.Minutes(), toMin)
	if end <= start {
		return 0
	}
	return end - start
}

// StateTransition is one append-only entry of a booking's state history
type StateTransition struct {
	ID        int64
	BookingID int64
	From      BookingState
	To        BookingState
	Actor     Actor
	Notes     *string
	ChangedAt time.Time
}

// Booking represents a studio reservation
type Booking struct {
	ID        int64
	Reference string // REF-YYYYMMDD-NNNN

	Client ClientInfo

	BookingDate time.Time
	StartTime   types.TimeString // earliest interval start
	EndTime     types.TimeString // latest interval end
	Intervals   []Interval       // contiguous runs of booked time, ordered

	DurationHours float64
	PeopleCount   int
	State         BookingState

	BasePrice  float64
	ExtraFees  float64
	TotalPrice float64

	Source BookingSource
	Notes  *string

	RescheduledFrom *int64
	RescheduledTo   *int64

	Version      int
	StateHistory []StateTransition

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OccupiesTime returns true if the booking blocks its hours for others
func (b *Booking) OccupiesTime() bool {
	return b.State.OccupiesTime()
}

// IsTerminal returns true if no further transitions are possible
func (b *Booking) IsTerminal() bool {
	return b.State.IsTerminal()
}

// StartsAt returns the absolute start moment in the studio time zone
func (b *Booking) StartsAt(loc *time.Location) time.Time {
	return b.StartTime.On(b.BookingDate, loc)
}

// EndsAt returns the absolute end moment in the studio time zone
func (b *Booking) EndsAt(loc *time.Location) time.Time {
	return b.EndTime.On(b.BookingDate, loc)
}

// Hours lists the start of every hour the booking touches
func (b *Booking) Hours() []types.TimeString {
	hours := make([]types.TimeString, 0)
	for _, in := range b.Intervals {
		for h := in.Start.Minutes() / 60; h*60 < in.End.Minutes(); h++ {
			ts, err := types.FromHour(h)
			if err != nil {
				continue
			}
			hours = append(hours, ts)
		}
	}
	return hours
}

// DateKey returns the booking date as YYYY-MM-DD
func (b *Booking) DateKey() string {
	return b.BookingDate.Format(DateFormat)
}

// BookingsFilter filter for the admin read layer
type BookingsFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	State     *BookingState
	Phone     *string
	Limit     int
	Offset    int
}

package domain

import (
	"time"

	"github.com/m04kA/SMC-StudioBooking/pkg/types"
)

// DayStatus aggregate availability classification for a calendar date
type DayStatus string

const (
	DayAvailable       DayStatus = "AVAILABLE"
	DayPartiallyBooked DayStatus = "PARTIALLY_BOOKED"
	DayFullyBooked     DayStatus = "FULLY_BOOKED"
	DayUnknown         DayStatus = "UNKNOWN"
)

// Slot one bookable hour within working hours
type Slot struct {
	Date             time.Time
	StartTime        types.TimeString
	EndTime          types.TimeString
	Available        bool
	OccupancyPercent int
}

// DayAvailability slot sequence for one date with its derived status
type DayAvailability struct {
	Date   time.Time
	Slots  []Slot
	Status DayStatus
}

// AvailableCount returns the number of available slots
func (d DayAvailability) AvailableCount() int {
	n := 0
	for _, s := range d.Slots {
		if s.Available {
			n++
		}
	}
	return n
}

// SlotAt returns the slot starting at t
func (d DayAvailability) SlotAt(t types.TimeString) (Slot, bool) {
	for _, s := range d.Slots {
		if s.StartTime == t {
			return s, true
		}
	}
	return Slot{}, false
}

// DeriveStatus classifies a slot sequence; an empty sequence is FULLY_BOOKED
func DeriveStatus(slots []Slot) DayStatus {
	available := 0
	for _, s := range slots {
		if s.Available {
			available++
		}
	}
	switch {
	case available == 0:
		return DayFullyBooked
	case available == len(slots):
		return DayAvailable
	default:
		return DayPartiallyBooked
	}
}

// UnknownDay is returned when bookings could not be loaded
func UnknownDay(date time.Time) DayAvailability {
	return DayAvailability{Date: date, Slots: []Slot{}, Status: DayUnknown}
}

// DaySummary day-level status for the month calendar
type DaySummary struct {
	Date           time.Time
	Status         DayStatus
	AvailableSlots int
	TotalSlots     int
}
